// Package synth is the report generator: it prompts a chat model to write
// the company business report from the gathered facts, and splices revision
// feedback into follow-up attempts. It implements revision.Generator.
package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/veridianlabs/reportforge/internal/cache"
	"github.com/veridianlabs/reportforge/internal/facts"
	"github.com/veridianlabs/reportforge/internal/llm"
)

// ErrNoSubstantiveBody indicates the model produced no usable report text.
var ErrNoSubstantiveBody = errors.New("no substantive body")

// Generator holds everything one revision lineage needs. Feedback arrives
// per call; all other inputs are fixed for the lineage.
type Generator struct {
	Client llm.Client
	Cache  *cache.LLMCache
	Model  string

	Company           string
	AdditionalContext string
	CurrentDate       string
	Facts             facts.Facts

	// SystemPrompt, when non-empty, overrides the built-in research prompt.
	SystemPrompt string
	// PerSourceChars caps each fact excerpt in the dossier. Zero means 4000.
	PerSourceChars int
}

// Generate requests one candidate Markdown report. An empty feedback string
// means first draft; otherwise feedback is the itemized deficiency list from
// the previous attempt. Transport errors get a single short-backoff retry;
// other failures propagate to the caller.
func (g *Generator) Generate(ctx context.Context, feedback string) (string, error) {
	if g.Client == nil || strings.TrimSpace(g.Model) == "" {
		return "", errors.New("generator not configured")
	}
	system := g.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = buildSystemMessage(g.Company, g.AdditionalContext, g.CurrentDate)
	}
	user := buildUserMessage(g.Company, g.Facts, feedback, g.perSourceChars())

	// Cache by model+prompt so re-runs of the same lineage are deterministic.
	// Feedback is part of the prompt, so each revision keys separately.
	if g.Cache != nil {
		key := cache.KeyFrom(g.Model, system+"\n\n"+user)
		if raw, ok, _ := g.Cache.Get(ctx, key); ok {
			var out struct {
				Markdown string `json:"markdown"`
			}
			if err := json.Unmarshal(raw, &out); err == nil && strings.TrimSpace(out.Markdown) != "" {
				return out.Markdown, nil
			}
		}
	}

	req := openai.ChatCompletionRequest{
		Model: g.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.1,
		N:           1,
	}
	resp, err := g.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		sleep(100)
		resp, err = g.Client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", fmt.Errorf("generation call (after retry): %w", err)
		}
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoSubstantiveBody
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrNoSubstantiveBody
	}
	if g.Cache != nil {
		payload, _ := json.Marshal(map[string]string{"markdown": out})
		_ = g.Cache.Save(ctx, cache.KeyFrom(g.Model, system+"\n\n"+user), payload)
	}
	return out, nil
}

func (g *Generator) perSourceChars() int {
	if g.PerSourceChars > 0 {
		return g.PerSourceChars
	}
	return 4000
}

func buildSystemMessage(company, additionalContext, currentDate string) string {
	var sb strings.Builder
	sb.WriteString("You are a professional business research analyst specializing in creating EXTREMELY COMPREHENSIVE and DETAILED company reports.\n")
	sb.WriteString(fmt.Sprintf("Your task is to produce an EXHAUSTIVE and THOROUGH research report about %q.\n\n", company))
	if currentDate != "" {
		sb.WriteString("Today's date is " + currentDate + ".\n\n")
	}
	sb.WriteString(`REPORT REQUIREMENTS:

1. LENGTH: Your report MUST be at least 15,000 characters in length. Shorter reports will be rejected.

2. STRUCTURE: Your report MUST include ALL of the following major sections, each with multiple detailed subsections:
    - EXECUTIVE SUMMARY (concise overview of key findings)
    - COMPANY OVERVIEW (detailed history, mission, vision, values, founding story)
    - BUSINESS MODEL & REVENUE STREAMS (in-depth analysis of how the company makes money)
    - PRODUCTS & SERVICES (comprehensive breakdown of all offerings)
    - MARKET ANALYSIS (market size, trends, growth projections, TAM/SAM/SOM)
    - COMPETITIVE LANDSCAPE (thorough analysis of direct and indirect competitors, SWOT analysis)
    - FINANCIAL INFORMATION (revenue, profitability, funding, investment rounds, key metrics)
    - JOB LISTINGS (detailed analysis of job listings, including job titles, descriptions, and locations)
    - LEADERSHIP & ORGANIZATIONAL STRUCTURE (detailed profiles of key executives and teams)
    - COMPANY CULTURE (workplace environment, values in practice, employee reviews)
    - TECHNOLOGY & INNOVATION (tech stack, R&D focus, patents, unique technologies)
    - MARKETING & SALES STRATEGY (acquisition channels, customer journey, brand positioning)
    - RECENT NEWS & DEVELOPMENTS (key announcements, product launches, strategic moves)
    - INDUSTRY TRENDS & FUTURE OUTLOOK (where the company is heading, challenges and opportunities)
    - RISK ASSESSMENT (thorough analysis of business, operational, market and financial risks)
    - SOURCES & CITATIONS (comprehensive list of all information sources)

3. DATA POINTS: Your analysis MUST include at least 30 specific quantitative data points (percentages, figures, statistics, dates).

4. SOURCES: You MUST cite at least 15 distinct sources throughout your report, with proper attribution.

5. DEPTH: Each major section MUST contain multiple paragraphs with detailed analysis, not just surface-level information.

6. VISUAL STRUCTURE: Use Markdown formatting extensively with:
    - Multiple heading levels (# ## ###)
    - Bulleted and numbered lists
    - Tables to present comparative data more effectively, such as competitor analysis or financial metrics.
    - Bold and italic for emphasis
    - Block quotes for significant information

7. BALANCED PERSPECTIVE: Include both positive attributes and critical analysis/challenges the company faces.

Base your report on the research dossier provided by the user. Before submitting, verify your report includes ALL required sections and meets or exceeds ALL length, data point, and citation requirements.

Output only the Markdown report. Do not include any prose outside the document.`)
	if strings.TrimSpace(additionalContext) != "" {
		sb.WriteString("\n\nADDITIONAL CONTEXT: ")
		sb.WriteString(additionalContext)
	}
	return sb.String()
}

func buildUserMessage(company string, f facts.Facts, feedback string, capChars int) string {
	var sb strings.Builder
	sb.WriteString("Company: ")
	sb.WriteString(company)
	sb.WriteString("\n\nResearch dossier (gathered from external sources; use it as your factual basis):\n")
	writeDossier(&sb, f, capChars)
	if strings.TrimSpace(feedback) != "" {
		sb.WriteString("\n\n")
		sb.WriteString(feedback)
	}
	return sb.String()
}

func writeDossier(sb *strings.Builder, f facts.Facts, capChars int) {
	if f.Homepage.Text != "" {
		sb.WriteString("\n## Company website snapshot\n")
		if f.Homepage.Title != "" {
			sb.WriteString("Title: " + f.Homepage.Title + "\n")
		}
		sb.WriteString(clip(f.Homepage.Text, capChars) + "\n")
	}
	if len(f.SearchResults) > 0 {
		sb.WriteString("\n## Web search findings\n")
		for i, p := range f.SearchResults {
			sb.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, p.Title, p.URL))
			sb.WriteString(clip(p.Markdown, capChars) + "\n\n")
		}
	}
	if len(f.SitePages) > 0 {
		sb.WriteString("\n## Crawled site pages\n")
		for i, p := range f.SitePages {
			sb.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, p.Title, p.URL))
			sb.WriteString(clip(p.Markdown, capChars) + "\n\n")
		}
	}
	if f.Profile != nil {
		sb.WriteString("\n## Company profile\n")
		sb.WriteString(fmt.Sprintf("Name: %s\nIndustry: %s\nEmployees: %d\nWebsite: %s\nAddress: %s\n",
			f.Profile.Name, f.Profile.Industry, f.Profile.Employees, f.Profile.Website, f.Profile.Address))
		if len(f.Profile.Specialties) > 0 {
			sb.WriteString("Specialties: " + strings.Join(f.Profile.Specialties, ", ") + "\n")
		}
		if f.Profile.Description != "" {
			sb.WriteString(clip(f.Profile.Description, capChars) + "\n")
		}
	}
	if len(f.Places) > 0 {
		sb.WriteString("\n## Locations and local reviews\n")
		for _, pl := range f.Places {
			sb.WriteString(fmt.Sprintf("- %s (%s), %s, %s - rating %.1f from %d reviews\n",
				pl.Title, pl.CategoryName, pl.Address, pl.CountryCode, pl.TotalScore, pl.ReviewsCount))
			for _, r := range pl.Reviews {
				if strings.TrimSpace(r.Text) == "" {
					continue
				}
				sb.WriteString(fmt.Sprintf("  - %d★ (%s): %s\n", r.Stars, r.PublishAt, clip(r.Text, 400)))
			}
		}
	}
	if f.Traffic != nil {
		t := f.Traffic
		sb.WriteString("\n## Website analytics\n")
		sb.WriteString(fmt.Sprintf("Global rank: %d\nFounded: %d\nEmployees: %d-%d\nMonthly visits: %.0f\nBounce rate: %.2f\nPages per visit: %.2f\n",
			t.GlobalRank, t.CompanyYearFounded, t.EmployeesMin, t.EmployeesMax, t.TotalVisits, t.BounceRate, t.PagesPerVisit))
		if len(t.TopSimilarityCompetitors) > 0 {
			sb.WriteString("Similar sites:")
			for _, c := range t.TopSimilarityCompetitors {
				sb.WriteString(" " + c.Domain)
			}
			sb.WriteString("\n")
		}
	}
	if len(f.Jobs) > 0 {
		sb.WriteString("\n## Open positions\n")
		for _, j := range f.Jobs {
			sb.WriteString(fmt.Sprintf("- %s (%s, %s) %s\n", j.PositionName, j.JobType, j.Location, j.Salary))
			if j.Description != "" {
				sb.WriteString("  " + clip(j.Description, 600) + "\n")
			}
		}
	}
	if len(f.Reviews) > 0 {
		sb.WriteString("\n## Customer reviews\n")
		for _, r := range f.Reviews {
			sb.WriteString(fmt.Sprintf("- %d★ %s (%s, %s): %s\n", r.RatingValue, r.ReviewHeadline, r.AuthorName, r.DatePublished, clip(r.ReviewBody, 600)))
		}
	}
	if f.Empty() {
		sb.WriteString("\n(No external data could be gathered; write from general knowledge and clearly mark estimates.)\n")
	}
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	// Avoid splitting a multi-byte rune at the cap boundary.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + "…"
}

// sleepFunc lets tests replace the retry backoff; milliseconds.
var sleepFunc func(ms int)

func sleep(ms int) {
	if sleepFunc != nil {
		sleepFunc(ms)
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
