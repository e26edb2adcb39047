// Package revision orchestrates the draft/evaluate/regenerate loop around an
// external report generator. The loop is sequential by nature: each attempt's
// feedback is built from the previous verdict, so attempts cannot run in
// parallel.
package revision

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/veridianlabs/reportforge/internal/gate"
	"github.com/veridianlabs/reportforge/internal/metrics"
	"github.com/veridianlabs/reportforge/internal/report"
	"github.com/veridianlabs/reportforge/internal/topics"
)

// Generator produces one candidate document. Feedback is empty on the first
// call and carries the itemized deficiency list on subsequent calls. A
// generator error is an external failure class, distinct from a quality
// shortfall, and is propagated rather than retried here.
type Generator interface {
	Generate(ctx context.Context, feedback string) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, feedback string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, feedback string) (string, error) {
	return f(ctx, feedback)
}

// Attempt records one generation and evaluation cycle.
type Attempt struct {
	Index    int             `json:"index"`
	Document string          `json:"-"`
	Verdict  gate.Verdict    `json:"verdict"`
	Metrics  metrics.Metrics `json:"metrics"`
}

// Result is the loop's terminal output. On acceptance Verdict.Passed is
// true; on exhaustion the last document is returned with its failing verdict
// attached so downstream consumers can log the shortfall without crashing.
type Result struct {
	Document string          `json:"-"`
	Verdict  gate.Verdict    `json:"verdict"`
	Metrics  metrics.Metrics `json:"metrics"`
	Attempts []Attempt       `json:"attempts"`
}

// Evaluation bundles the per-document analysis the loop runs between drafts.
type Evaluation struct {
	Sections []report.Section
	Metrics  metrics.Metrics
	Verdict  gate.Verdict
}

// EvaluateDocument runs the full analysis chain on one document: parse,
// extract, match topics, gate. Pure and idempotent; evaluating the same text
// twice yields identical results.
func EvaluateDocument(text string) Evaluation {
	sections := report.ParseSections(text)
	m := metrics.Extract(text, sections)
	tr := topics.Match(sections)
	m.MissingTopics = tr.Missing
	return Evaluation{
		Sections: sections,
		Metrics:  m,
		Verdict:  gate.Evaluate(m, len(tr.Found)),
	}
}

const feedbackHeader = "Please improve the company report by addressing these issues:"

// Feedback renders deficiencies as the itemized retry instruction handed to
// the generator.
func Feedback(defs []gate.Deficiency) string {
	items := make([]string, 0, len(defs))
	for _, d := range defs {
		items = append(items, "- "+d.Message)
	}
	return feedbackHeader + "\n\n" + strings.Join(items, "\n")
}

// Loop bounds the revision cycle.
type Loop struct {
	// MaxAttempts caps generator invocations. Zero or negative means the
	// default of 3.
	MaxAttempts int
	// Annotate, when set, is applied to the first draft only, before
	// evaluation. The gate then sees the annotated text.
	Annotate func(string) string
}

const defaultMaxAttempts = 3

// Run drives Drafting -> Evaluating -> {Accepted, Regenerating} until a
// draft passes the gate or attempts are exhausted. Exhaustion is fail-open:
// the last attempt is returned with Verdict.Passed == false and a nil error.
func (l *Loop) Run(ctx context.Context, gen Generator) (Result, error) {
	max := l.MaxAttempts
	if max <= 0 {
		max = defaultMaxAttempts
	}
	feedback := ""
	attempts := make([]Attempt, 0, max)
	for i := 1; i <= max; i++ {
		doc, err := gen.Generate(ctx, feedback)
		if err != nil {
			return Result{}, fmt.Errorf("generate attempt %d: %w", i, err)
		}
		if i == 1 && l.Annotate != nil {
			doc = l.Annotate(doc)
		}
		eval := EvaluateDocument(doc)
		attempts = append(attempts, Attempt{Index: i, Document: doc, Verdict: eval.Verdict, Metrics: eval.Metrics})
		log.Info().
			Int("attempt", i).
			Bool("passed", eval.Verdict.Passed).
			Int("deficiencies", len(eval.Verdict.Deficiencies)).
			Int("length", eval.Metrics.TotalLength).
			Int("sections", eval.Metrics.SectionsCount).
			Msg("draft evaluated")
		if eval.Verdict.Passed || i == max {
			if !eval.Verdict.Passed {
				log.Warn().Int("attempts", i).Msg("report did not fully meet the rubric; returning best effort")
			}
			return Result{Document: doc, Verdict: eval.Verdict, Metrics: eval.Metrics, Attempts: attempts}, nil
		}
		feedback = Feedback(eval.Verdict.Deficiencies)
	}
	// Unreachable: the loop always returns on the final attempt.
	return Result{}, fmt.Errorf("revision loop exited without attempts")
}
