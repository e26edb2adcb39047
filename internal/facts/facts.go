// Package facts gathers supporting data about a company from external
// scraping services before the first draft is written. All sources are
// optional and independent: a failed source is logged and skipped, never
// fatal. The report engine itself consumes the gathered Facts as plain,
// already-resolved data and never calls back into this package.
package facts

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/veridianlabs/reportforge/internal/extract"
	"github.com/veridianlabs/reportforge/internal/fetch"
)

// Page is one scraped web page in markdown form.
type Page struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

// Place is a map-service hit for the company.
type Place struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	CategoryName string        `json:"categoryName"`
	Address      string        `json:"address"`
	City         string        `json:"city"`
	CountryCode  string        `json:"countryCode"`
	Website      string        `json:"website"`
	Phone        string        `json:"phone"`
	TotalScore   float64       `json:"totalScore"`
	ReviewsCount int           `json:"reviewsCount"`
	Reviews      []PlaceReview `json:"reviews"`
}

// PlaceReview is one review attached to a Place.
type PlaceReview struct {
	Text      string `json:"text"`
	Stars     int    `json:"stars"`
	PublishAt string `json:"publishAt"`
}

// CompanyProfile is the professional-network profile of the company.
type CompanyProfile struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Industry    string   `json:"industry"`
	Employees   int      `json:"employees"`
	Website     string   `json:"website"`
	Specialties []string `json:"specialties"`
	Address     string   `json:"address"`
}

// JobPosting is one open position scraped from the company's job board page.
type JobPosting struct {
	PositionName string `json:"positionName"`
	JobType      string `json:"jobType"`
	Location     string `json:"location"`
	Salary       string `json:"salary"`
	Company      string `json:"company"`
	URL          string `json:"url"`
	PostedAt     string `json:"postedAt"`
	Description  string `json:"description"`
}

// TrafficStats is the analytics summary for the company's website.
type TrafficStats struct {
	Name                     string       `json:"name"`
	Description              string       `json:"description"`
	GlobalRank               int          `json:"globalRank"`
	CompanyName              string       `json:"companyName"`
	CompanyYearFounded       int          `json:"companyYearFounded"`
	EmployeesMin             int          `json:"companyEmployeesMin"`
	EmployeesMax             int          `json:"companyEmployeesMax"`
	AnnualRevenueMin         float64      `json:"companyAnnualRevenueMin"`
	TotalVisits              float64      `json:"totalVisits"`
	BounceRate               float64      `json:"bounceRate"`
	PagesPerVisit            float64      `json:"pagesPerVisit"`
	TopSimilarityCompetitors []Competitor `json:"topSimilarityCompetitors"`
}

// Competitor is a similar site from the analytics provider.
type Competitor struct {
	Domain           string `json:"domain"`
	VisitsTotalCount int    `json:"visitsTotalCount"`
}

// Review is one customer review from the review platform.
type Review struct {
	AuthorName     string `json:"authorName"`
	DatePublished  string `json:"datePublished"`
	ReviewHeadline string `json:"reviewHeadline"`
	ReviewBody     string `json:"reviewBody"`
	RatingValue    int    `json:"ratingValue"`
	CountryCode    string `json:"consumerCountryCode"`
}

// Facts bundles everything gathered about one company. Empty fields mean the
// source was unavailable or failed; the generator writes around gaps.
type Facts struct {
	Company  string
	Website  string
	Homepage extract.Page

	SearchResults []Page
	SitePages     []Page
	Places        []Place
	Profile       *CompanyProfile
	Jobs          []JobPosting
	Traffic       *TrafficStats
	Reviews       []Review
}

// Empty reports whether nothing at all was gathered.
func (f Facts) Empty() bool {
	return f.Homepage.Text == "" && len(f.SearchResults) == 0 && len(f.SitePages) == 0 &&
		len(f.Places) == 0 && f.Profile == nil && len(f.Jobs) == 0 && f.Traffic == nil && len(f.Reviews) == 0
}

// Gatherer coordinates the fact sources. Gateway and Fetcher are both
// optional; whatever is configured is used.
type Gatherer struct {
	Gateway *Gateway
	Fetcher *fetch.Client

	MaxSearchResults int
	MaxCrawlDepth    int
	MaxCrawlPages    int
	MaxReviews       int
	MaxJobs          int

	// LinkedInURL and JobsURL point at the company's profile and job-board
	// pages when known; the matching sources are skipped otherwise.
	LinkedInURL string
	JobsURL     string

	// MaxConcurrent bounds in-flight source fetches. Zero means 4.
	MaxConcurrent int
}

// Gather runs every configured fact source concurrently and returns whatever
// succeeded. Each source failure is isolated: it is logged at warn level and
// its field stays empty. Gather itself never fails; callers decide whether an
// Empty result is acceptable.
func (g *Gatherer) Gather(ctx context.Context, company, website string) Facts {
	f := Facts{Company: company, Website: website}
	domain := domainOf(website)

	eg, ctx := errgroup.WithContext(ctx)
	limit := g.MaxConcurrent
	if limit <= 0 {
		limit = 4
	}
	eg.SetLimit(limit)

	if g.Fetcher != nil && website != "" {
		eg.Go(func() error {
			body, _, err := g.Fetcher.Get(ctx, website)
			if err != nil {
				log.Warn().Err(err).Str("url", website).Msg("homepage snapshot failed; skipping")
				return nil
			}
			f.Homepage = extract.FromHTML(body)
			return nil
		})
	}
	if g.Gateway.configured() {
		eg.Go(func() error {
			pages, err := g.Gateway.SearchWeb(ctx, company, orDefault(g.MaxSearchResults, 10))
			if err != nil {
				log.Warn().Err(err).Str("company", company).Msg("web search failed; skipping")
				return nil
			}
			f.SearchResults = pages
			return nil
		})
		if website != "" {
			eg.Go(func() error {
				pages, err := g.Gateway.CrawlSite(ctx, website, orDefault(g.MaxCrawlDepth, 1), orDefault(g.MaxCrawlPages, 10))
				if err != nil {
					log.Warn().Err(err).Str("url", website).Msg("site crawl failed; skipping")
					return nil
				}
				f.SitePages = pages
				return nil
			})
		}
		eg.Go(func() error {
			places, err := g.Gateway.SearchPlaces(ctx, company, orDefault(g.MaxReviews, 10))
			if err != nil {
				log.Warn().Err(err).Str("company", company).Msg("places lookup failed; skipping")
				return nil
			}
			f.Places = places
			return nil
		})
		if g.LinkedInURL != "" {
			eg.Go(func() error {
				profile, err := g.Gateway.CompanyProfile(ctx, g.LinkedInURL)
				if err != nil {
					log.Warn().Err(err).Str("url", g.LinkedInURL).Msg("company profile failed; skipping")
					return nil
				}
				f.Profile = profile
				return nil
			})
		}
		if g.JobsURL != "" {
			eg.Go(func() error {
				jobs, err := g.Gateway.Jobs(ctx, g.JobsURL, orDefault(g.MaxJobs, 10))
				if err != nil {
					log.Warn().Err(err).Str("url", g.JobsURL).Msg("job listings failed; skipping")
					return nil
				}
				f.Jobs = jobs
				return nil
			})
		}
		if domain != "" {
			eg.Go(func() error {
				stats, err := g.Gateway.Traffic(ctx, domain)
				if err != nil {
					log.Warn().Err(err).Str("domain", domain).Msg("traffic stats failed; skipping")
					return nil
				}
				f.Traffic = stats
				return nil
			})
			eg.Go(func() error {
				reviews, err := g.Gateway.Reviews(ctx, domain, orDefault(g.MaxReviews, 10))
				if err != nil {
					log.Warn().Err(err).Str("domain", domain).Msg("reviews failed; skipping")
					return nil
				}
				f.Reviews = reviews
				return nil
			})
		}
	}
	// Goroutines only write their own field and always return nil.
	_ = eg.Wait()
	return f
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// domainOf reduces a website URL to its bare host for the analytics and
// review providers, e.g. "https://www.example.com/x" -> "example.com".
func domainOf(website string) string {
	s := strings.TrimSpace(website)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	return host
}
