package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/veridianlabs/reportforge/internal/app"
	"github.com/veridianlabs/reportforge/internal/synth"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		company      string
		companyCtx   string
		website      string
		linkedinURL  string
		jobsURL      string
		gatewayURL   string
		gatewayToken string
		llmBaseURL   string
		llmModel     string
		llmKey       string
		maxAttempts  int
		maxResults   int
		maxDepth     int
		maxPages     int
		maxReviews   int
		maxJobs      int
		outputDir    string
		cacheDir     string
		cacheMaxAge  time.Duration
		cacheClear   bool
		enablePDF    bool
		enableHTML   bool
		verbose      bool
		configPath   string
		synthPrompt  string
	)

	flag.StringVar(&company, "company", os.Getenv("COMPANY_NAME"), "Company to research and report on")
	flag.StringVar(&companyCtx, "context", os.Getenv("COMPANY_CONTEXT"), "Extra context to disambiguate the company (industry, country)")
	flag.StringVar(&website, "website", os.Getenv("COMPANY_WEBSITE"), "Company website URL for crawling and analytics")
	flag.StringVar(&linkedinURL, "linkedin", os.Getenv("COMPANY_LINKEDIN"), "LinkedIn company page URL")
	flag.StringVar(&jobsURL, "jobs", os.Getenv("COMPANY_JOBS_URL"), "Indeed company page URL (indeed.com/cmp/...) for job listings")
	flag.StringVar(&gatewayURL, "gateway.url", os.Getenv("GATEWAY_URL"), "Scraping gateway base URL")
	flag.StringVar(&gatewayToken, "gateway.token", os.Getenv("GATEWAY_TOKEN"), "Scraping gateway API token")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", os.Getenv("LLM_MODEL"), "Model name")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for OpenAI-compatible server")
	flag.IntVar(&maxAttempts, "max.attempts", 3, "Maximum draft attempts before accepting the report as-is")
	flag.IntVar(&maxResults, "max.searchResults", 0, "Maximum web search results to gather (0 uses default)")
	flag.IntVar(&maxDepth, "max.crawlDepth", 0, "Maximum site crawl depth (0 uses default)")
	flag.IntVar(&maxPages, "max.crawlPages", 0, "Maximum site pages to crawl (0 uses default)")
	flag.IntVar(&maxReviews, "max.reviews", 0, "Maximum customer reviews to gather (0 uses default)")
	flag.IntVar(&maxJobs, "max.jobs", 0, "Maximum job listings to gather (0 uses default)")
	flag.StringVar(&outputDir, "output", ".", "Directory to write the report and artifacts into")
	flag.StringVar(&cacheDir, "cache.dir", ".reportforge-cache", "Cache directory path")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear cache directory before run")
	flag.BoolVar(&enablePDF, "enable.pdf", false, "Also write a PDF rendition of the report")
	flag.BoolVar(&enableHTML, "enable.html", false, "Also write an HTML rendition of the report")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.StringVar(&configPath, "config", os.Getenv("REPORTFORGE_CONFIG"), "Path to YAML or JSON config file")
	flag.StringVar(&synthPrompt, "synth.systemPrompt", os.Getenv("SYNTH_SYSTEM_PROMPT"), "Override report system prompt (inline string)")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		Company:           company,
		AdditionalContext: companyCtx,
		Website:           website,
		LinkedInURL:       linkedinURL,
		JobsURL:           jobsURL,
		GatewayURL:        gatewayURL,
		GatewayToken:      gatewayToken,
		LLMBaseURL:        llmBaseURL,
		LLMModel:          llmModel,
		LLMAPIKey:         llmKey,
		MaxAttempts:       maxAttempts,
		MaxSearchResults:  maxResults,
		MaxCrawlDepth:     maxDepth,
		MaxCrawlPages:     maxPages,
		MaxReviews:        maxReviews,
		MaxJobs:           maxJobs,
		OutputDir:         outputDir,
		CacheDir:          cacheDir,
		CacheMaxAge:       cacheMaxAge,
		CacheClear:        cacheClear,
		EnablePDF:         enablePDF,
		EnableHTML:        enableHTML,
		Verbose:           verbose,
		SynthSystemPrompt: synthPrompt,
	}

	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("config file")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		// Exit code policy: 2 when generation produced nothing usable,
		// 1 for configuration errors, 0 otherwise (completed with warnings).
		if errors.Is(err, synth.ErrNoSubstantiveBody) {
			os.Exit(2)
		}
		if isConfigError(err) {
			os.Exit(1)
		}
		os.Exit(0)
	}
}

// isConfigError keeps the policy narrow: only validation failures from the
// config layer map to exit 1.
func isConfigError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "config:")
}

func run(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
