package facts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
)

// ErrNotConfigured is returned by gateway calls when no gateway base URL was
// provided. Callers treat it as "this fact source is unavailable", not as a
// pipeline failure.
var ErrNotConfigured = errors.New("facts: gateway not configured")

// Actor identifiers on the scraping gateway. The gateway exposes hosted
// scrapers ("actors") behind a run-synchronously endpoint that returns the
// run's dataset items directly.
const (
	actorWebSearch  = "apify~rag-web-browser"
	actorSiteCrawl  = "apify~website-content-crawler"
	actorPlaces     = "compass~crawler-google-places"
	actorLinkedIn   = "icypeas_official~linkedin-company-scraper"
	actorIndeedJobs = "misceres~indeed-scraper"
	actorSimilarWeb = "tri_angle~similarweb-scraper"
	actorTrustpilot = "nikita-sviridenko~trustpilot-reviews-scraper"
)

// Gateway is a thin client for the scraping gateway. Every method issues one
// synchronous actor run and decodes the dataset items.
type Gateway struct {
	BaseURL    string
	Token      string
	UserAgent  string
	HTTPClient *http.Client
	// MaxAttempts bounds transient retries per run. Zero means 3.
	MaxAttempts int
}

func (g *Gateway) configured() bool {
	return g != nil && strings.TrimSpace(g.BaseURL) != ""
}

// run starts the actor synchronously and decodes its dataset items into out,
// which must be a pointer to a slice. Transient failures (network errors,
// 429, 5xx) are retried with backoff; anything else fails immediately.
func (g *Gateway) run(ctx context.Context, actor string, memoryMB int, input any, out any) error {
	if !g.configured() {
		return ErrNotConfigured
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("encode actor input: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items", strings.TrimRight(g.BaseURL, "/"), actor)
	q := url.Values{}
	if g.Token != "" {
		q.Set("token", g.Token)
	}
	if memoryMB > 0 {
		q.Set("memory", strconv.Itoa(memoryMB))
	}
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	client := g.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			if g.UserAgent != "" {
				req.Header.Set("User-Agent", g.UserAgent)
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			switch {
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return fmt.Errorf("actor %s: status %d", actor, resp.StatusCode)
			case resp.StatusCode < 200 || resp.StatusCode > 299:
				return retry.Unrecoverable(fmt.Errorf("actor %s: status %d: %s", actor, resp.StatusCode, truncate(string(body), 200)))
			}
			if err := json.Unmarshal(body, out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("actor %s: decode items: %w", actor, err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// SearchWeb returns organic web search results with page content.
func (g *Gateway) SearchWeb(ctx context.Context, query string, maxResults int) ([]Page, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("facts: empty query")
	}
	input := map[string]any{
		"query":        query,
		"maxResults":   maxResults,
		"scrapingTool": "raw-http",
	}
	var items []struct {
		Markdown string `json:"markdown"`
		Metadata struct {
			URL   string `json:"url"`
			Title string `json:"title"`
		} `json:"metadata"`
	}
	if err := g.run(ctx, actorWebSearch, 256, input, &items); err != nil {
		return nil, err
	}
	pages := make([]Page, 0, len(items))
	for _, it := range items {
		if it.Metadata.URL == "" || it.Markdown == "" {
			continue
		}
		pages = append(pages, Page{URL: it.Metadata.URL, Title: it.Metadata.Title, Markdown: it.Markdown})
	}
	return pages, nil
}

// CrawlSite crawls the given site and returns per-page markdown content.
func (g *Gateway) CrawlSite(ctx context.Context, siteURL string, maxDepth, maxPages int) ([]Page, error) {
	if strings.TrimSpace(siteURL) == "" {
		return nil, errors.New("facts: empty crawl URL")
	}
	input := map[string]any{
		"startUrls":     []map[string]string{{"url": siteURL}},
		"crawlerType":   "cheerio",
		"maxCrawlDepth": maxDepth,
		"maxCrawlPages": maxPages,
	}
	var items []struct {
		URL      string `json:"url"`
		Markdown string `json:"markdown"`
		Metadata struct {
			Title string `json:"title"`
		} `json:"metadata"`
	}
	if err := g.run(ctx, actorSiteCrawl, 1024, input, &items); err != nil {
		return nil, err
	}
	pages := make([]Page, 0, len(items))
	for _, it := range items {
		if it.URL == "" || it.Markdown == "" {
			continue
		}
		pages = append(pages, Page{URL: it.URL, Title: it.Metadata.Title, Markdown: it.Markdown})
	}
	return pages, nil
}

// SearchPlaces looks the company up on the map service and returns the top
// place with its rating distribution and recent reviews.
func (g *Gateway) SearchPlaces(ctx context.Context, query string, maxReviews int) ([]Place, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("facts: empty query")
	}
	input := map[string]any{
		"searchStringsArray": []string{query},
		"maxCrawledPlaces":   1,
		"maxReviews":         maxReviews,
		"language":           "en",
	}
	var items []Place
	if err := g.run(ctx, actorPlaces, 1024, input, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CompanyProfile fetches the company's LinkedIn profile.
func (g *Gateway) CompanyProfile(ctx context.Context, linkedinURL string) (*CompanyProfile, error) {
	if strings.TrimSpace(linkedinURL) == "" {
		return nil, errors.New("facts: empty LinkedIn URL")
	}
	input := map[string]any{"linkedinUrls": []string{linkedinURL}}
	// The profile actor nests the record two levels deep.
	var items []struct {
		Data []struct {
			Result struct {
				Name              string `json:"name"`
				Description       string `json:"description"`
				Industry          string `json:"industry"`
				NumberOfEmployees int    `json:"numberOfEmployees"`
				Website           string `json:"website"`
				Specialties       []struct {
					Value string `json:"value"`
				} `json:"specialties"`
				Address string `json:"address"`
			} `json:"result"`
		} `json:"data"`
	}
	if err := g.run(ctx, actorLinkedIn, 128, input, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 || len(items[0].Data) == 0 {
		return nil, nil
	}
	r := items[0].Data[0].Result
	p := &CompanyProfile{
		Name:        r.Name,
		Description: r.Description,
		Industry:    r.Industry,
		Employees:   r.NumberOfEmployees,
		Website:     r.Website,
		Address:     r.Address,
	}
	for _, s := range r.Specialties {
		p.Specialties = append(p.Specialties, s.Value)
	}
	return p, nil
}

// Jobs fetches job listings from the company's job-board page. The URL must
// be a company page (…/cmp/<name>); search URLs are rejected.
func (g *Gateway) Jobs(ctx context.Context, companyURL string, maxItems int) ([]JobPosting, error) {
	if !strings.Contains(companyURL, "indeed.com/cmp/") {
		return nil, fmt.Errorf("facts: job listings need an indeed.com/cmp/ company URL, got %q", companyURL)
	}
	if !strings.HasSuffix(companyURL, "/jobs") {
		companyURL += "/jobs"
	}
	input := map[string]any{
		"startUrls":         []map[string]string{{"url": companyURL, "method": "GET"}},
		"maxItemsPerSearch": maxItems,
	}
	var items []JobPosting
	if err := g.run(ctx, actorIndeedJobs, 256, input, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Traffic fetches website analytics for a domain.
func (g *Gateway) Traffic(ctx context.Context, domain string) (*TrafficStats, error) {
	if strings.TrimSpace(domain) == "" {
		return nil, errors.New("facts: empty domain")
	}
	input := map[string]any{"websites": []string{domain}}
	var items []TrafficStats
	if err := g.run(ctx, actorSimilarWeb, 1024, input, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// Reviews fetches customer reviews for a domain.
func (g *Gateway) Reviews(ctx context.Context, domain string, maxReviews int) ([]Review, error) {
	if strings.TrimSpace(domain) == "" {
		return nil, errors.New("facts: empty domain")
	}
	input := map[string]any{"companyDomain": domain, "count": maxReviews}
	var items []Review
	if err := g.run(ctx, actorTrustpilot, 1024, input, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
