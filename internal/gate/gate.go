// Package gate applies the acceptance rubric to a report's metrics and topic
// coverage. It is the hard quality check: the verdict decides whether the
// revision loop accepts a draft or requests another attempt.
package gate

import (
	"fmt"
	"strings"

	"github.com/veridianlabs/reportforge/internal/metrics"
)

// Rubric thresholds. Each rule is evaluated unconditionally and contributes
// at most one deficiency; changing a threshold changes the pipeline's pass
// rate, so treat these as part of the output contract.
const (
	MinLength         = 15000
	MinSections       = 15
	MinTopicsFound    = 15
	MaxShallow        = 1
	MinDataPoints     = 30
	MinSources        = 15
	MinHeadingVariety = 3
	MinListItems      = 10
	MinEmphasisSpans  = 15
)

// Rule identifiers, in evaluation order.
const (
	RuleLength     = "min_length"
	RuleSections   = "min_sections"
	RuleTopics     = "topic_coverage"
	RuleShallow    = "shallow_sections"
	RuleDataPoints = "min_data_points"
	RuleSources    = "min_sources"
	RuleVariety    = "heading_variety"
	RuleListItems  = "min_list_usage"
	RuleEmphasis   = "min_emphasis_usage"
)

// Deficiency is one rubric violation with a remediation instruction suitable
// for feeding back to the generator verbatim.
type Deficiency struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Verdict is the terminal gate output for one document. Deficiencies appear
// in rule evaluation order regardless of how many rules fail.
type Verdict struct {
	Passed       bool         `json:"passed"`
	Deficiencies []Deficiency `json:"deficiencies,omitempty"`
}

// Evaluate runs every rubric rule against the extracted metrics and the
// number of required topics found. It never mutates its inputs; re-running
// it on the same values returns an identical Verdict.
func Evaluate(m metrics.Metrics, topicsFound int) Verdict {
	var defs []Deficiency
	add := func(rule, msg string) { defs = append(defs, Deficiency{Rule: rule, Message: msg}) }

	if m.TotalLength < MinLength {
		add(RuleLength, fmt.Sprintf("The report is too brief at only %d characters. Please expand it to at least 15,000 characters with detailed information across all required sections.", m.TotalLength))
	}
	if m.SectionsCount < MinSections {
		add(RuleSections, fmt.Sprintf("The report has only %d sections. Please structure it with at least 15 major sections as specified in the requirements.", m.SectionsCount))
	}
	if topicsFound < MinTopicsFound {
		add(RuleTopics, fmt.Sprintf("The report only covers %d of the required topic areas. Please ensure your report covers at least 15 of the required sections with detailed content.", topicsFound))
	}
	if len(m.ShallowSections) > MaxShallow {
		add(RuleShallow, fmt.Sprintf("These sections have insufficient content: %s. Please expand each with detailed analysis of at least 800 characters per major section.", strings.Join(m.ShallowSections, ", ")))
	}
	if m.DataPointCount < MinDataPoints {
		add(RuleDataPoints, fmt.Sprintf("The report contains only %d quantitative data points. Please include at least 30 specific figures, percentages, or metrics to support your analysis.", m.DataPointCount))
	}
	if m.SourcesCount < MinSources {
		add(RuleSources, fmt.Sprintf("The report cites only %d sources. Please include at least 15 specific sources with links to support your findings.", m.SourcesCount))
	}
	if m.HeadingLevelVariety < MinHeadingVariety {
		add(RuleVariety, "The report lacks structural depth. Please use at least 3 different heading levels (# for main sections, ## for subsections, ### for sub-subsections).")
	}
	if m.ListItemCount < MinListItems {
		add(RuleListItems, "The report lacks lists for organized information. Please use at least 10 bulleted or numbered lists to present information clearly.")
	}
	if m.EmphasisSpanCount < MinEmphasisSpans {
		add(RuleEmphasis, "The report lacks emphasis formatting. Please use bold and italic formatting to highlight at least 15 key points or important information.")
	}

	return Verdict{Passed: len(defs) == 0, Deficiencies: defs}
}
