package app

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/veridianlabs/reportforge/internal/gate"
	"github.com/veridianlabs/reportforge/internal/revision"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Acme Corp", "acme_corp"},
		{"Tools Inc.", "tools_inc_"},
		{"Smith, Jones & Co", "smith_jones_and_co"},
		{"  Padded  ", "padded"},
	}
	for _, c := range cases {
		if got := slugify(c.in); got != c.want {
			t.Errorf("slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestComposeDocumentHeader(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	doc := composeDocument("acme corp", "## Body\n\ntext", now)
	if !strings.HasPrefix(doc, "# Acme Corp Business Report\n\n*Generated on: 2026-08-30*\n\n---\n\n") {
		t.Fatalf("header wrong:\n%s", doc[:80])
	}
	if !strings.HasSuffix(doc, "## Body\n\ntext\n") {
		t.Fatalf("body wrong:\n%s", doc)
	}
}

func TestMarshalRunResult(t *testing.T) {
	res := revision.Result{
		Verdict: gate.Verdict{Passed: false, Deficiencies: []gate.Deficiency{{Rule: gate.RuleLength, Message: "too short"}}},
		Attempts: []revision.Attempt{
			{Index: 1, Document: "secret draft", Verdict: gate.Verdict{}},
		},
	}
	data, err := marshalRunResult("Acme", "big-model", res)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["company"] != "Acme" || decoded["model"] != "big-model" || decoded["passed"] != false {
		t.Fatalf("decoded = %v", decoded)
	}
	if decoded["run_id"] == "" {
		t.Fatal("run_id must be set")
	}
	// Draft text is excluded from the sidecar.
	if strings.Contains(string(data), "secret draft") {
		t.Fatal("attempt documents must not be serialized")
	}
}
