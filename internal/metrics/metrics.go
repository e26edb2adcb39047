// Package metrics computes objective structural and content counts from a
// report document. Every function is a pure, deterministic function of its
// input; the same text always yields the same Metrics.
package metrics

import (
	"regexp"
	"unicode/utf8"

	"github.com/veridianlabs/reportforge/internal/report"
)

// Metrics holds the countable proxies the quality rubric is evaluated
// against. It is recomputed fresh per document and never mutated
// incrementally.
type Metrics struct {
	TotalLength         int      `json:"total_length"`
	SectionsCount       int      `json:"sections_count"`
	DataPointCount      int      `json:"data_point_count"`
	SourcesCount        int      `json:"sources_count"`
	ShallowSections     []string `json:"shallow_sections,omitempty"`
	MissingTopics       []string `json:"missing_topics,omitempty"`
	HeadingLevelVariety int      `json:"heading_level_variety"`
	ListItemCount       int      `json:"list_item_count"`
	EmphasisSpanCount   int      `json:"emphasis_span_count"`
}

// Pattern families are a content contract: thresholds in the quality gate
// were calibrated against exactly these alternations, including their
// overlap. Matches are never deduplicated across families, and alternation
// order matters (leftmost-first), so do not reorder or "clean up" these.
var (
	// Quantitative data points: percentages, currency, magnitude suffixes and
	// words, decimals, "approx NNN", ISO-like dates, thousands-separated ints.
	dataPointRe = regexp.MustCompile(`(?i)\d+%|\$\d+|\d+M|\d+B|\d+K|\d+ million|\d+ billion|\d+\.\d+|approx\w* \d+|\d{4}(?:-\d{2}){2}|\b\d{1,3}(?:,\d{3})+\b`)

	// Citation families, counted independently and summed.
	linkRe        = regexp.MustCompile(`\[.*?\]\(.*?\)`)
	sourcePhrase  = regexp.MustCompile(`(?i)Source:.*?[\.,]`)
	accordingToRe = regexp.MustCompile(`(?i)According to .*?[\.,]`)
	citedByRe     = regexp.MustCompile(`(?i)cited by .*?[\.,]`)

	// Bulleted or numbered list items at line start, leading whitespace ok.
	listItemRe = regexp.MustCompile(`(?m)^\s*[\*\-\+]\s+|^\s*\d+\.\s+`)

	// Paired emphasis spans. Bold and italic matches over the same text both
	// count; there is no precedence resolution between the families.
	emphasisRe = regexp.MustCompile(`\*\*.*?\*\*|\*.*?\*|__.*?__|_.*?_`)
)

// Shallow-content thresholds in runes, by heading level. Levels 3..6 are
// never flagged shallow.
const (
	shallowTopLevel   = 800
	shallowSubsection = 500
)

// Extract computes all metrics derivable from the raw text and its parsed
// sections. MissingTopics is left empty; the topic matcher owns that field
// and callers attach its result.
func Extract(text string, sections []report.Section) Metrics {
	m := Metrics{
		TotalLength:         utf8.RuneCountInString(text),
		SectionsCount:       len(sections),
		DataPointCount:      CountDataPoints(text),
		SourcesCount:        CountSources(text),
		ListItemCount:       len(listItemRe.FindAllString(text, -1)),
		EmphasisSpanCount:   len(emphasisRe.FindAllString(text, -1)),
		HeadingLevelVariety: len(report.Levels(sections)),
	}
	for _, s := range sections {
		n := utf8.RuneCountInString(s.Content)
		switch {
		case s.Level == 1 && n < shallowTopLevel:
			m.ShallowSections = append(m.ShallowSections, s.Title)
		case s.Level == 2 && n < shallowSubsection:
			m.ShallowSections = append(m.ShallowSections, s.Title+" (subsection)")
		}
	}
	return m
}

// CountDataPoints counts non-overlapping quantitative data-point matches.
func CountDataPoints(text string) int {
	return len(dataPointRe.FindAllString(text, -1))
}

// CountSources counts citation occurrences: markdown links plus the three
// phrase-anchored families, summed without cross-family deduplication.
func CountSources(text string) int {
	return len(linkRe.FindAllString(text, -1)) +
		len(sourcePhrase.FindAllString(text, -1)) +
		len(accordingToRe.FindAllString(text, -1)) +
		len(citedByRe.FindAllString(text, -1))
}
