// Package topics matches report section titles against the fixed vocabulary
// of required coverage areas for a company business report.
package topics

import (
	"strings"

	"github.com/veridianlabs/reportforge/internal/report"
)

// Required is the fixed vocabulary of topic phrases a complete report is
// expected to cover. Order is preserved in Missing output.
var Required = []string{
	"executive summary", "company overview", "business model", "revenue streams",
	"products", "services", "market analysis", "competitive landscape",
	"financial", "leadership", "organizational structure", "company culture",
	"technology", "innovation", "marketing", "sales strategy",
	"recent news", "developments", "industry trends", "future outlook",
	"risk assessment", "sources", "citations", "job listings",
}

// Result holds the found and missing topic sets, both in vocabulary order.
type Result struct {
	Found   []string
	Missing []string
}

// Match tests each section title against the vocabulary. A phrase counts as
// found when it appears as a substring of the lowercased title, or when ANY
// single whitespace-delimited word of the phrase does. The word-level rule is
// intentionally lenient (a "Our Culture" section satisfies "company culture"
// via the word "culture" alone); it trades precision for recall and the gate
// thresholds are calibrated around it, so it must not be tightened. The
// first vocabulary phrase a section matches wins and ends the scan for that
// section.
func Match(sections []report.Section) Result {
	found := make(map[string]bool, len(Required))
	for _, s := range sections {
		title := strings.ToLower(s.Title)
		for _, phrase := range Required {
			if matchesTitle(title, phrase) {
				found[phrase] = true
				break
			}
		}
	}
	var res Result
	for _, phrase := range Required {
		if found[phrase] {
			res.Found = append(res.Found, phrase)
		} else {
			res.Missing = append(res.Missing, phrase)
		}
	}
	return res
}

func matchesTitle(lowerTitle, phrase string) bool {
	if strings.Contains(lowerTitle, phrase) {
		return true
	}
	for _, word := range strings.Fields(phrase) {
		if strings.Contains(lowerTitle, word) {
			return true
		}
	}
	return false
}
