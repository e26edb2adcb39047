package revision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// compliantReport builds a document that clears every gate rule.
func compliantReport() string {
	titles := []string{
		"Executive Summary", "Company Overview", "Business Model", "Revenue Streams",
		"Products", "Services", "Market Analysis", "Competitive Landscape",
		"Financial Results", "Leadership Team", "Organizational Structure", "Culture",
		"Technology", "Innovation Pipeline", "Marketing", "Sales Strategy",
		"Recent News", "Industry Trends", "Future Outlook", "Risk Assessment", "Sources",
	}
	filler := strings.Repeat("The company maintains steady operations across regions and continues to refine its strategy over time. ", 10)
	var sb strings.Builder
	for i, title := range titles {
		fmt.Fprintf(&sb, "# %s\n\n", title)
		fmt.Fprintf(&sb, "Revenue grew 12%% to $%d according to the annual filing. ", 100+i)
		sb.WriteString("**Key metric:** stable. See the [investor page](https://example.com/ir) for details.\n\n")
		sb.WriteString("- first supporting point\n- second supporting point\n\n")
		sb.WriteString(filler)
		sb.WriteString("\n\n")
		if i < 3 {
			fmt.Fprintf(&sb, "## %s Detail\n\n", title)
			sb.WriteString(strings.Repeat("Subsection analysis continues with additional operational depth here. ", 10))
			sb.WriteString("\n\n### Specifics\n\nFine-grained notes.\n\n")
		}
	}
	return sb.String()
}

func TestCompliantReportPassesGate(t *testing.T) {
	eval := EvaluateDocument(compliantReport())
	if !eval.Verdict.Passed {
		t.Fatalf("fixture should pass, deficiencies: %v", eval.Verdict.Deficiencies)
	}
}

type scriptedGenerator struct {
	docs      []string
	feedbacks []string
}

func (g *scriptedGenerator) Generate(_ context.Context, feedback string) (string, error) {
	g.feedbacks = append(g.feedbacks, feedback)
	i := len(g.feedbacks) - 1
	if i >= len(g.docs) {
		i = len(g.docs) - 1
	}
	return g.docs[i], nil
}

func TestLoopStopsOnFirstPass(t *testing.T) {
	gen := &scriptedGenerator{docs: []string{"# Tiny\n\nnot enough", compliantReport()}}
	loop := &Loop{MaxAttempts: 3}
	res, err := loop.Run(context.Background(), gen)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Verdict.Passed {
		t.Fatal("expected acceptance on the second draft")
	}
	if len(gen.feedbacks) != 2 {
		t.Fatalf("generator called %d times, want 2", len(gen.feedbacks))
	}
	if len(res.Attempts) != 2 {
		t.Fatalf("attempt trail has %d entries, want 2", len(res.Attempts))
	}
}

func TestLoopExhaustionIsFailOpen(t *testing.T) {
	gen := &scriptedGenerator{docs: []string{"# Tiny\n\nnot enough"}}
	loop := &Loop{}
	res, err := loop.Run(context.Background(), gen)
	if err != nil {
		t.Fatalf("exhaustion must not be an error: %v", err)
	}
	if res.Verdict.Passed {
		t.Fatal("tiny draft cannot pass")
	}
	if len(gen.feedbacks) != 3 {
		t.Fatalf("generator called %d times, want default 3", len(gen.feedbacks))
	}
	if res.Document == "" {
		t.Fatal("best-effort document must be returned")
	}
}

func TestLoopFeedbackCarriesDeficiencies(t *testing.T) {
	gen := &scriptedGenerator{docs: []string{"# Tiny\n\nnot enough"}}
	loop := &Loop{MaxAttempts: 2}
	if _, err := loop.Run(context.Background(), gen); err != nil {
		t.Fatal(err)
	}
	if gen.feedbacks[0] != "" {
		t.Fatalf("first call must have empty feedback, got %q", gen.feedbacks[0])
	}
	second := gen.feedbacks[1]
	if !strings.HasPrefix(second, "Please improve the company report by addressing these issues:") {
		t.Fatalf("feedback header missing: %q", second)
	}
	if !strings.Contains(second, "- The report is too brief") {
		t.Fatalf("feedback should itemize the length deficiency: %q", second)
	}
}

func TestLoopPropagatesGeneratorError(t *testing.T) {
	boom := errors.New("upstream down")
	gen := GeneratorFunc(func(context.Context, string) (string, error) { return "", boom })
	loop := &Loop{MaxAttempts: 3}
	_, err := loop.Run(context.Background(), gen)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}
}

func TestLoopAnnotatesFirstDraftOnly(t *testing.T) {
	const marker = "\n\n**Note: flagged.**"
	gen := &scriptedGenerator{docs: []string{"# Tiny\n\nnot enough"}}
	loop := &Loop{MaxAttempts: 2, Annotate: func(s string) string { return s + marker }}
	res, err := loop.Run(context.Background(), gen)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Attempts[0].Document, marker) {
		t.Fatal("first draft should be annotated")
	}
	if strings.Contains(res.Attempts[1].Document, marker) {
		t.Fatal("revisions must not be annotated")
	}
}

func TestEvaluateDocumentFillsMissingTopics(t *testing.T) {
	eval := EvaluateDocument("# Executive Summary\n\nbody")
	if len(eval.Metrics.MissingTopics) == 0 {
		t.Fatal("missing topics should be attached to metrics")
	}
	for _, topic := range eval.Metrics.MissingTopics {
		if topic == "executive summary" {
			t.Fatal("found topic listed as missing")
		}
	}
}
