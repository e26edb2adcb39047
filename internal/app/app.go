package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/veridianlabs/reportforge/internal/advisory"
	"github.com/veridianlabs/reportforge/internal/cache"
	"github.com/veridianlabs/reportforge/internal/facts"
	"github.com/veridianlabs/reportforge/internal/fetch"
	"github.com/veridianlabs/reportforge/internal/llm"
	"github.com/veridianlabs/reportforge/internal/revision"
	"github.com/veridianlabs/reportforge/internal/synth"
)

type App struct {
	cfg       Config
	ai        llm.Client
	httpCache *cache.HTTPCache
}

func New(ctx context.Context, cfg Config) (*App, error) {
	transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		transportCfg.BaseURL = cfg.LLMBaseURL
	}
	transportCfg.HTTPClient = newHighThroughputHTTPClient()
	client := openai.NewClientWithConfig(transportCfg)

	a := &App{cfg: cfg, ai: &llm.OpenAIProvider{Inner: client}}
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			_ = cache.ClearDir(cfg.CacheDir)
		}
		if cfg.CacheMaxAge > 0 {
			// Purge by age; ignore errors to avoid failing startup.
			_, _ = cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
		}
		a.httpCache = &cache.HTTPCache{Dir: cfg.CacheDir}
	}

	// Quick connectivity check by listing models. Preflight is best-effort:
	// we warn and continue so downstream generation surfaces real errors and
	// the CLI can apply its exit code policy.
	if lister, ok := a.ai.(llm.ModelLister); ok {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		models, err := lister.ListModels(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("LLM model list failed; continuing")
		case len(models.Models) > 0:
			log.Info().Int("count", len(models.Models)).Msg("LLM models available")
		default:
			log.Warn().Msg("LLM returned zero models")
		}
	}

	return a, nil
}

func (a *App) Close() {
	// nothing yet
}

// Run executes the full pipeline: gather facts, draft the report, evaluate it
// against the quality bar, revise until it passes or attempts run out, then
// write the report and its artifacts.
func (a *App) Run(ctx context.Context) error {
	if err := ValidateConfig(a.cfg); err != nil {
		return err
	}

	// 1) Gather external facts. Each source fails independently; an empty
	// dossier still produces a report from model knowledge.
	fetcher := &fetch.Client{
		HTTPClient:        newHighThroughputHTTPClient(),
		UserAgent:         "reportforge/1.0 (+https://github.com/veridianlabs/reportforge)",
		MaxAttempts:       2,
		PerRequestTimeout: 15 * time.Second,
		Cache:             a.httpCache,
		RedirectMaxHops:   5,
	}
	gatherer := &facts.Gatherer{
		Gateway: &facts.Gateway{
			BaseURL:    a.cfg.GatewayURL,
			Token:      a.cfg.GatewayToken,
			UserAgent:  "reportforge/1.0",
			HTTPClient: newHighThroughputHTTPClient(),
		},
		Fetcher:          fetcher,
		MaxSearchResults: a.cfg.MaxSearchResults,
		MaxCrawlDepth:    a.cfg.MaxCrawlDepth,
		MaxCrawlPages:    a.cfg.MaxCrawlPages,
		MaxReviews:       a.cfg.MaxReviews,
		MaxJobs:          a.cfg.MaxJobs,
		LinkedInURL:      a.cfg.LinkedInURL,
		JobsURL:          a.cfg.JobsURL,
	}
	dossier := gatherer.Gather(ctx, a.cfg.Company, a.cfg.Website)
	if dossier.Empty() {
		log.Warn().Str("company", a.cfg.Company).Msg("no external facts gathered; drafting from model knowledge")
	}

	// 2) Draft, evaluate and revise.
	gen := &synth.Generator{
		Client:            a.ai,
		Cache:             llmCacheFor(a.cfg.CacheDir),
		Model:             a.cfg.LLMModel,
		Company:           a.cfg.Company,
		AdditionalContext: a.cfg.AdditionalContext,
		CurrentDate:       time.Now().Format("2006-01-02"),
		Facts:             dossier,
		SystemPrompt:      a.cfg.SynthSystemPrompt,
	}
	loop := &revision.Loop{
		MaxAttempts: a.cfg.MaxAttempts,
		Annotate:    advisory.Annotate,
	}
	result, err := loop.Run(ctx, gen)
	if err != nil {
		return fmt.Errorf("draft report: %w", err)
	}
	if !result.Verdict.Passed {
		log.Warn().Int("attempts", len(result.Attempts)).
			Int("deficiencies", len(result.Verdict.Deficiencies)).
			Msg("quality bar not met; keeping best effort")
	}

	// 3) Assemble and write the final document plus artifacts.
	doc := composeDocument(a.cfg.Company, result.Document, time.Now())
	outDir := a.cfg.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	base := filepath.Join(outDir, slugify(a.cfg.Company))
	reportPath := base + "_report.md"
	if err := os.WriteFile(reportPath, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("out", reportPath).Bool("passed", result.Verdict.Passed).Msg("wrote report")

	if data, err := marshalRunResult(a.cfg.Company, a.cfg.LLMModel, result); err == nil {
		_ = os.WriteFile(base+"_result.json", data, 0o644)
	}
	if a.cfg.EnableHTML {
		if err := writeHTMLArtifact(doc, base+"_report.html"); err != nil {
			log.Warn().Err(err).Msg("HTML artifact failed")
		}
	}
	if a.cfg.EnablePDF {
		if err := writeSimplePDF(doc, base+"_report.pdf"); err != nil {
			log.Warn().Err(err).Msg("PDF artifact failed")
		}
	}
	return nil
}

func llmCacheFor(dir string) *cache.LLMCache {
	if dir == "" {
		return nil
	}
	return &cache.LLMCache{Dir: dir}
}
