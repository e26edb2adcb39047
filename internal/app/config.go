package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	Company           string
	AdditionalContext string
	Website           string
	LinkedInURL       string
	JobsURL           string

	// Scraping gateway
	GatewayURL   string
	GatewayToken string

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Quality loop
	MaxAttempts int

	// Gathering limits
	MaxSearchResults int
	MaxCrawlDepth    int
	MaxCrawlPages    int
	MaxReviews       int
	MaxJobs          int

	// Output
	OutputDir  string
	EnablePDF  bool
	EnableHTML bool

	// Behavior
	CacheDir    string
	CacheMaxAge time.Duration
	CacheClear  bool
	Verbose     bool

	// SynthSystemPrompt overrides the built-in report prompt when non-empty.
	SynthSystemPrompt string
}
