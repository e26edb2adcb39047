package app

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/veridianlabs/reportforge/internal/gate"
	"github.com/veridianlabs/reportforge/internal/metrics"
	"github.com/veridianlabs/reportforge/internal/revision"
)

var titleCaser = cases.Title(language.English)

// composeDocument prepends the standard report header to the generated body.
func composeDocument(company, body string, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(titleCaser.String(company))
	sb.WriteString(" Business Report\n\n")
	sb.WriteString("*Generated on: ")
	sb.WriteString(now.Format("2006-01-02"))
	sb.WriteString("*\n\n---\n\n")
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n")
	return sb.String()
}

// slugify derives the output file stem from the company name: lowercase,
// spaces and dots become underscores, commas are dropped, "&" becomes "and".
func slugify(company string) string {
	s := strings.ToLower(strings.TrimSpace(company))
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ".", "_")
	return s
}

type runResult struct {
	RunID     string             `json:"run_id"`
	Company   string             `json:"company"`
	Model     string             `json:"model"`
	CreatedAt time.Time          `json:"created_at"`
	Passed    bool               `json:"passed"`
	Verdict   gate.Verdict       `json:"verdict"`
	Metrics   metrics.Metrics    `json:"metrics"`
	Attempts  []revision.Attempt `json:"attempts"`
}

// marshalRunResult builds the sidecar JSON describing how the run went:
// final verdict, final metrics and the per-attempt trail. Document text is
// excluded; the report file is the document of record.
func marshalRunResult(company, model string, res revision.Result) ([]byte, error) {
	out := runResult{
		RunID:     uuid.NewString(),
		Company:   company,
		Model:     model,
		CreatedAt: time.Now().UTC(),
		Passed:    res.Verdict.Passed,
		Verdict:   res.Verdict,
		Metrics:   res.Metrics,
		Attempts:  res.Attempts,
	}
	return json.MarshalIndent(out, "", "  ")
}
