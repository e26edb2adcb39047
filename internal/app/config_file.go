package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
// Nested sections improve readability and map naturally to flags/env.
type FileConfig struct {
	Company  string `yaml:"company" json:"company"`
	Context  string `yaml:"context" json:"context"`
	Website  string `yaml:"website" json:"website"`
	LinkedIn string `yaml:"linkedin" json:"linkedin"`
	JobsURL  string `yaml:"jobs" json:"jobs"`
	Output   string `yaml:"output" json:"output"`

	Gateway struct {
		URL   string `yaml:"url" json:"url"`
		Token string `yaml:"token" json:"token"`
	} `yaml:"gateway" json:"gateway"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Max struct {
		Attempts      int `yaml:"attempts" json:"attempts"`
		SearchResults int `yaml:"searchResults" json:"searchResults"`
		CrawlDepth    int `yaml:"crawlDepth" json:"crawlDepth"`
		CrawlPages    int `yaml:"crawlPages" json:"crawlPages"`
		Reviews       int `yaml:"reviews" json:"reviews"`
		Jobs          int `yaml:"jobs" json:"jobs"`
	} `yaml:"max" json:"max"`

	Cache struct {
		Dir    string   `yaml:"dir" json:"dir"`
		MaxAge duration `yaml:"maxAge" json:"maxAge"`
		Clear  bool     `yaml:"clear" json:"clear"`
	} `yaml:"cache" json:"cache"`

	EnablePDF  bool `yaml:"enablePDF" json:"enablePDF"`
	EnableHTML bool `yaml:"enableHTML" json:"enableHTML"`
	Verbose    bool `yaml:"verbose" json:"verbose"`

	Prompts struct {
		SynthSystemPrompt     string `yaml:"synthSystemPrompt" json:"synthSystemPrompt"`
		SynthSystemPromptFile string `yaml:"synthSystemPromptFile" json:"synthSystemPromptFile"`
	} `yaml:"prompts" json:"prompts"`
}

// duration accepts human-readable values like "24h" in both YAML and JSON.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	v, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = duration(v)
	return nil
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("parse duration %s: want string or nanoseconds", b)
	}
	*d = duration(n)
	return nil
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	// A prompt file path is resolved relative to the config file so configs
	// stay portable. An inline prompt wins over the file variant.
	if fc.Prompts.SynthSystemPrompt == "" && fc.Prompts.SynthSystemPromptFile != "" {
		p := fc.Prompts.SynthSystemPromptFile
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), p)
		}
		pb, err := os.ReadFile(p)
		if err != nil {
			return fc, fmt.Errorf("read prompt file: %w", err)
		}
		fc.Prompts.SynthSystemPrompt = string(pb)
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset/zero in cfg. Flags should already have been parsed; this
// function lets file config supply defaults while preserving explicit flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	// Defaults from flag parsing that file config may override when flags not set
	const (
		outputDefault      = "."
		cacheDirDefault    = ".reportforge-cache"
		maxAttemptsDefault = 3
	)

	if cfg.Company == "" && fc.Company != "" {
		cfg.Company = fc.Company
	}
	if cfg.AdditionalContext == "" && fc.Context != "" {
		cfg.AdditionalContext = fc.Context
	}
	if cfg.Website == "" && fc.Website != "" {
		cfg.Website = fc.Website
	}
	if cfg.LinkedInURL == "" && fc.LinkedIn != "" {
		cfg.LinkedInURL = fc.LinkedIn
	}
	if cfg.JobsURL == "" && fc.JobsURL != "" {
		cfg.JobsURL = fc.JobsURL
	}
	if (cfg.OutputDir == "" || cfg.OutputDir == outputDefault) && fc.Output != "" {
		cfg.OutputDir = fc.Output
	}

	if cfg.GatewayURL == "" && fc.Gateway.URL != "" {
		cfg.GatewayURL = fc.Gateway.URL
	}
	if cfg.GatewayToken == "" && fc.Gateway.Token != "" {
		cfg.GatewayToken = fc.Gateway.Token
	}

	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}

	if (cfg.MaxAttempts == 0 || cfg.MaxAttempts == maxAttemptsDefault) && fc.Max.Attempts > 0 {
		cfg.MaxAttempts = fc.Max.Attempts
	}
	if cfg.MaxSearchResults == 0 && fc.Max.SearchResults > 0 {
		cfg.MaxSearchResults = fc.Max.SearchResults
	}
	if cfg.MaxCrawlDepth == 0 && fc.Max.CrawlDepth > 0 {
		cfg.MaxCrawlDepth = fc.Max.CrawlDepth
	}
	if cfg.MaxCrawlPages == 0 && fc.Max.CrawlPages > 0 {
		cfg.MaxCrawlPages = fc.Max.CrawlPages
	}
	if cfg.MaxReviews == 0 && fc.Max.Reviews > 0 {
		cfg.MaxReviews = fc.Max.Reviews
	}
	if cfg.MaxJobs == 0 && fc.Max.Jobs > 0 {
		cfg.MaxJobs = fc.Max.Jobs
	}

	if (cfg.CacheDir == "" || cfg.CacheDir == cacheDirDefault) && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = time.Duration(fc.Cache.MaxAge)
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}

	if !cfg.EnablePDF && fc.EnablePDF {
		cfg.EnablePDF = true
	}
	if !cfg.EnableHTML && fc.EnableHTML {
		cfg.EnableHTML = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}

	if cfg.SynthSystemPrompt == "" && fc.Prompts.SynthSystemPrompt != "" {
		cfg.SynthSystemPrompt = fc.Prompts.SynthSystemPrompt
	}
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Company) == "" {
		return errors.New("config: company name is required")
	}
	if strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required (or set LLM_MODEL)")
	}
	if cfg.MaxAttempts < 0 || cfg.MaxSearchResults < 0 || cfg.MaxCrawlPages < 0 || cfg.MaxReviews < 0 || cfg.MaxJobs < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
