package report

import (
	"strings"
	"testing"
)

func TestParseSectionsNoHeadings(t *testing.T) {
	got := ParseSections("Just a plain paragraph.\n\nAnother one.")
	if len(got) != 0 {
		t.Fatalf("expected no sections, got %d", len(got))
	}
}

func TestParseSectionsSpans(t *testing.T) {
	doc := "# Top\nintro text\n## Sub\nsub body\n# Next\nend"
	got := ParseSections(doc)
	if len(got) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(got))
	}
	top := got[0]
	if top.Title != "Top" || top.Level != 1 {
		t.Fatalf("unexpected first section: %+v", top)
	}
	// A parent span runs to the next heading at its own level or above, so
	// the nested subsection text stays inside it verbatim.
	if !strings.Contains(top.Content, "## Sub") || !strings.Contains(top.Content, "sub body") {
		t.Fatalf("parent content should include nested heading text, got %q", top.Content)
	}
	if got[1].Title != "Sub" || got[1].Level != 2 || got[1].Content != "sub body" {
		t.Fatalf("unexpected subsection: %+v", got[1])
	}
	if got[2].Content != "end" {
		t.Fatalf("unexpected last section content %q", got[2].Content)
	}
}

func TestParseSectionsConsecutiveHeadings(t *testing.T) {
	got := ParseSections("# One\n# Two\nbody")
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got))
	}
	if got[0].Content != "" {
		t.Fatalf("section before an adjacent heading should have empty content, got %q", got[0].Content)
	}
	if got[1].Content != "body" {
		t.Fatalf("got %q", got[1].Content)
	}
}

func TestParseSectionsSkippedLevels(t *testing.T) {
	got := ParseSections("# A\n### Deep\ndeep body\n# B\nb body")
	if len(got) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(got))
	}
	if got[1].Level != 3 {
		t.Fatalf("expected level 3, got %d", got[1].Level)
	}
	if !strings.Contains(got[0].Content, "deep body") {
		t.Fatalf("level-1 span should include the level-3 body, got %q", got[0].Content)
	}
}

func TestParseSectionsSevenHashesIsBody(t *testing.T) {
	got := ParseSections("# Real\n####### not a heading\ntext")
	if len(got) != 1 {
		t.Fatalf("expected 1 section, got %d", len(got))
	}
	if !strings.Contains(got[0].Content, "####### not a heading") {
		t.Fatalf("seven hashes should stay in body, got %q", got[0].Content)
	}
}

func TestParseSectionsExactSpanLength(t *testing.T) {
	body := strings.Repeat("x", 400)
	got := ParseSections("# A\n" + body + "\n# B\n")
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got))
	}
	if got[0].Content != body {
		t.Fatalf("content length %d, want 400", len(got[0].Content))
	}
	if got[1].Content != "" {
		t.Fatalf("trailing section should be empty, got %q", got[1].Content)
	}
}

func TestLevels(t *testing.T) {
	secs := ParseSections("# A\n## B\n## C\n### D\n")
	levels := Levels(secs)
	if len(levels) != 3 {
		t.Fatalf("expected 3 distinct levels, got %d", len(levels))
	}
	for _, want := range []int{1, 2, 3} {
		if _, ok := levels[want]; !ok {
			t.Fatalf("missing level %d", want)
		}
	}
}
