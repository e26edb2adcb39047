// Package report parses a Markdown business report into its structural
// sections. The parser is deliberately flat: it returns sections in source
// order and captures each section's content as a contiguous textual slice,
// not a recursive tree extraction.
package report

import (
	"regexp"
	"strings"
)

// Section is one heading-delimited span of the document.
type Section struct {
	Title   string
	Level   int
	Content string
}

// headingRe matches ATX headings: 1..6 leading markers then whitespace and a
// title. Seven or more markers are body text, matching common renderers.
var headingRe = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+)$`)

// ParseSections splits markdown text into an ordered list of sections.
//
// The content span of the i-th heading at level L starts immediately after
// the heading line and ends at the next heading whose level is <= L, or at
// end of text. A level-1 section therefore contains the raw text of its
// deeper subsections verbatim; nested headings are not stripped out of the
// parent's content. Text with no headings yields an empty list, which
// callers must treat as zero structure rather than an error.
func ParseSections(text string) []Section {
	matches := headingRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	sections := make([]Section, 0, len(matches))
	for i, m := range matches {
		// m: [full0 full1 marker0 marker1 title0 title1]
		level := m[3] - m[2]
		title := strings.TrimSpace(text[m[4]:m[5]])
		start := m[1]
		end := len(text)
		for j := i + 1; j < len(matches); j++ {
			next := matches[j]
			if next[3]-next[2] <= level {
				end = next[0]
				break
			}
		}
		sections = append(sections, Section{
			Title:   title,
			Level:   level,
			Content: strings.TrimSpace(text[start:end]),
		})
	}
	return sections
}

// Levels returns the distinct heading levels present, in no particular order.
func Levels(sections []Section) map[int]struct{} {
	out := make(map[int]struct{}, 6)
	for _, s := range sections {
		out[s.Level] = struct{}{}
	}
	return out
}
