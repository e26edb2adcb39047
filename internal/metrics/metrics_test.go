package metrics

import (
	"strings"
	"testing"

	"github.com/veridianlabs/reportforge/internal/report"
)

func TestExtractTotalLengthCountsRunes(t *testing.T) {
	text := "Ääkköset tänään" // 15 runes, more bytes
	m := Extract(text, nil)
	if m.TotalLength != 15 {
		t.Fatalf("TotalLength = %d, want 15", m.TotalLength)
	}
}

func TestCountDataPoints(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"growth of 50% year over year", 1},
		{"revenue of $200 last quarter", 1},
		{"10M users and 2B requests and 30K downloads", 3},
		{"5 million units, 3 billion impressions", 2},
		{"a rating of 4.5 stars", 1},
		{"approximately 7 offices worldwide", 1},
		{"founded on 2015-03-01", 1},
		{"headcount of 12,500 staff", 1},
		{"no numbers here at all", 0},
	}
	for _, c := range cases {
		if got := CountDataPoints(c.text); got != c.want {
			t.Errorf("CountDataPoints(%q) = %d, want %d", c.text, got, c.want)
		}
	}
}

func TestCountSourcesSumsFamilies(t *testing.T) {
	text := "See [the filing](https://example.com/f). Source: annual report. " +
		"According to the CEO, things are fine. This figure was cited by Reuters."
	if got := CountSources(text); got != 4 {
		t.Fatalf("CountSources = %d, want 4", got)
	}
}

func TestCountSourcesMonotonic(t *testing.T) {
	base := "Source: one report."
	more := base + " According to analysts, demand rose."
	if CountSources(more) <= CountSources(base) {
		t.Fatalf("adding a citation should not decrease the count")
	}
}

func TestListItemCount(t *testing.T) {
	text := "- a\n* b\n+ c\n1. d\n  2. e\nnot - a list item\n"
	m := Extract(text, nil)
	if m.ListItemCount != 5 {
		t.Fatalf("ListItemCount = %d, want 5", m.ListItemCount)
	}
}

func TestEmphasisSpanCount(t *testing.T) {
	text := "**bold** then *italic* then __strong__ then _light_"
	m := Extract(text, nil)
	if m.EmphasisSpanCount != 4 {
		t.Fatalf("EmphasisSpanCount = %d, want 4", m.EmphasisSpanCount)
	}
}

func TestShallowSections(t *testing.T) {
	long := strings.Repeat("a", 900)
	doc := "# Deep Dive\n" + long + "\n# Thin\nshort\n## Thin Sub\nalso short\n### Tiny\nx"
	secs := report.ParseSections(doc)
	m := Extract(doc, secs)
	want := []string{"Thin", "Thin Sub (subsection)"}
	if len(m.ShallowSections) != len(want) {
		t.Fatalf("ShallowSections = %v, want %v", m.ShallowSections, want)
	}
	for i := range want {
		if m.ShallowSections[i] != want[i] {
			t.Fatalf("ShallowSections = %v, want %v", m.ShallowSections, want)
		}
	}
}

func TestHeadingLevelVariety(t *testing.T) {
	doc := "# A\n## B\n### C\n## D\n"
	secs := report.ParseSections(doc)
	m := Extract(doc, secs)
	if m.HeadingLevelVariety != 3 {
		t.Fatalf("HeadingLevelVariety = %d, want 3", m.HeadingLevelVariety)
	}
	if m.SectionsCount != 4 {
		t.Fatalf("SectionsCount = %d, want 4", m.SectionsCount)
	}
}

func TestExtractLeavesMissingTopicsAlone(t *testing.T) {
	m := Extract("# A\nbody", report.ParseSections("# A\nbody"))
	if m.MissingTopics != nil {
		t.Fatalf("MissingTopics should be nil until the topic matcher fills it, got %v", m.MissingTopics)
	}
}
