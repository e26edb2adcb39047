// Package advisory implements the soft annotation pass applied to a first
// draft. Unlike the quality gate it never blocks acceptance and produces no
// deficiencies; it only appends human-readable notes to the document body
// when content falls short of a lower advisory bar. Keep it independent of
// the gate: the two use different thresholds and different checklists.
package advisory

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Checklist is the advisory coverage list. It overlaps the gate's topic
// vocabulary but is a separate, shorter list with broader synonyms and its
// own threshold; the two are kept verbatim and never merged.
var Checklist = []string{
	"executive summary", "company overview", "product", "service",
	"market analysis", "competitive", "financial", "leadership",
	"marketing", "technology", "innovation", "risk", "future", "sources",
}

const (
	minLength    = 15000
	minHeadings  = 5
	minChecklist = 7
	minData      = 10
	minSources   = 5
)

// Advisory patterns are simpler than the extractor's families on purpose;
// this pass predates the richer counting and its bar is lower.
var (
	headingRe     = regexp.MustCompile(`(?m)^#+\s+.+$`)
	dataPointRe   = regexp.MustCompile(`(?i)\d+%|\$\d+|\d+ million|\d+ billion|\d+\.\d+|approx\w* \d+`)
	linkRe        = regexp.MustCompile(`\[.*?\]\(.*?\)`)
	sourceRe      = regexp.MustCompile(`(?i)Source:.*?[\.,]`)
	comparativeRe = regexp.MustCompile(`(?i)compared to|versus|competition|competitors|market share|industry average`)
)

const (
	noteTooBrief    = "**Note: This report has been automatically flagged as potentially too brief. A comprehensive business report should contain detailed information across multiple business aspects.**"
	noteStructure   = "**Note: This report appears to lack proper section structure. A comprehensive report should be organized into multiple clearly defined sections.**"
	noteSections    = "**Note: This report may be missing important business analysis sections. A comprehensive report should cover multiple aspects of business operations and strategy.**"
	noteDataPoints  = "**Note: This report may lack sufficient quantitative data points such as percentages, financial figures, or market metrics.**"
	noteSources     = "**Note: This report contains few citations or sources. A comprehensive report should cite multiple reliable sources to support its findings.**"
	noteComparative = "**Note: This report may lack sufficient comparative analysis against competitors or industry benchmarks.**"
)

// Annotate appends advisory notes to the document body for each missed bar
// and returns the annotated text. The input is returned unchanged when every
// bar is met. Callers apply this once, to the first draft only, before the
// draft is evaluated, so the gate sees the annotated text.
func Annotate(text string) string {
	out := text

	if utf8.RuneCountInString(text) < minLength {
		out += "\n\n" + noteTooBrief
	}
	if len(headingRe.FindAllString(text, -1)) < minHeadings {
		out += "\n\n" + noteStructure
	}
	lower := strings.ToLower(text)
	found := 0
	for _, phrase := range Checklist {
		if strings.Contains(lower, phrase) {
			found++
		}
	}
	if found < minChecklist {
		out += "\n\n" + noteSections
	}
	if len(dataPointRe.FindAllString(text, -1)) < minData {
		out += "\n\n" + noteDataPoints
	}
	if len(linkRe.FindAllString(text, -1))+len(sourceRe.FindAllString(text, -1)) < minSources {
		out += "\n\n" + noteSources
	}
	if !comparativeRe.MatchString(text) {
		out += "\n\n" + noteComparative
	}
	return out
}
