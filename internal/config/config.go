// Package config provides configuration loading and validation for the
// server and the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/cold-outreach/internal/composer"
	"github.com/jonathan/cold-outreach/internal/llm"
)

// Portfolio sources
const (
	SourceCSV = "csv"
	SourceS3  = "s3"
	SourceDB  = "db"
)

// Duration is a time.Duration written as a Go duration string ("30s", "1m")
// in config files.
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.parse(s)
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// MarshalJSON writes the duration string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalYAML accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var secs float64
	if err := value.Decode(&secs); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	return d.parse(value.Value)
}

func (d *Duration) parse(s string) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Models names the model used for each tier. Empty fields keep the default.
type Models struct {
	Lite     string `json:"lite,omitempty" yaml:"lite,omitempty"`
	Standard string `json:"standard,omitempty" yaml:"standard,omitempty"`
	Advanced string `json:"advanced,omitempty" yaml:"advanced,omitempty"`
}

// Config is the application configuration. Zero values are filled from
// Defaults by Load.
type Config struct {
	// Generation
	APIKey     string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Provider   string   `json:"provider,omitempty" yaml:"provider,omitempty"` // gemini or genai
	BaseURL    string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Models     Models   `json:"models,omitempty" yaml:"models,omitempty"`
	MaxRetries *int     `json:"max_retries,omitempty" yaml:"max_retries,omitempty"` // nil means unset; 0 disables retries
	GenTimeout Duration `json:"generation_timeout,omitempty" yaml:"generation_timeout,omitempty"`

	// Portfolio
	PortfolioSource  string   `json:"portfolio_source,omitempty" yaml:"portfolio_source,omitempty"` // csv, s3 or db
	PortfolioCSV     string   `json:"portfolio_csv,omitempty" yaml:"portfolio_csv,omitempty"`
	PortfolioS3URI   string   `json:"portfolio_s3_uri,omitempty" yaml:"portfolio_s3_uri,omitempty"`
	S3Endpoint       string   `json:"s3_endpoint,omitempty" yaml:"s3_endpoint,omitempty"`
	TopK             int      `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	ReloadPerRequest bool     `json:"reload_per_request,omitempty" yaml:"reload_per_request,omitempty"`
	CatalogTimeout   Duration `json:"catalog_timeout,omitempty" yaml:"catalog_timeout,omitempty"`

	// Fetching
	FetchTimeout Duration `json:"fetch_timeout,omitempty" yaml:"fetch_timeout,omitempty"`
	UseBrowser   bool     `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`

	// Pipeline
	JobTimeout Duration `json:"job_timeout,omitempty" yaml:"job_timeout,omitempty"`

	// Server
	Port        int      `json:"port,omitempty" yaml:"port,omitempty"`
	DatabaseURL string   `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
	RateLimit   int      `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"` // generation requests per minute per client
	RateBurst   int      `json:"rate_burst,omitempty" yaml:"rate_burst,omitempty"`

	Sender composer.SenderProfile `json:"sender,omitempty" yaml:"sender,omitempty"`
	// ForbiddenPhrases reject a composed email when any appears in it.
	ForbiddenPhrases []string `json:"forbidden_phrases,omitempty" yaml:"forbidden_phrases,omitempty"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Provider:        string(llm.ProviderGemini),
		MaxRetries:      intPtr(2),
		GenTimeout:      Duration(30 * time.Second),
		PortfolioSource: SourceCSV,
		PortfolioCSV:    "portfolio.csv",
		TopK:            2,
		CatalogTimeout:  Duration(30 * time.Second),
		FetchTimeout:    Duration(30 * time.Second),
		JobTimeout:      Duration(60 * time.Second),
		Port:            8080,
		CORSOrigins:     []string{"*"},
		RateLimit:       10,
		RateBurst:       3,
		Sender:          composer.DefaultSender(),
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load builds the effective configuration: the file at path (if any), then
// environment overrides, then defaults for anything still unset.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	return &merged, nil
}

// ApplyEnv overrides fields from environment variables. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&c.APIKey, "GEMINI_API_KEY")
	setString(&c.Provider, "LLM_PROVIDER")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.PortfolioCSV, "PORTFOLIO_CSV")
	setString(&c.PortfolioS3URI, "PORTFOLIO_S3_URI")
	setString(&c.PortfolioSource, "PORTFOLIO_SOURCE")
	setString(&c.S3Endpoint, "S3_ENDPOINT")

	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = port
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.PortfolioSource == "" {
		result.PortfolioSource = defaults.PortfolioSource
	}
	if result.PortfolioCSV == "" {
		result.PortfolioCSV = defaults.PortfolioCSV
	}
	if result.PortfolioS3URI == "" {
		result.PortfolioS3URI = defaults.PortfolioS3URI
	}
	if result.S3Endpoint == "" {
		result.S3Endpoint = defaults.S3Endpoint
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Models.Lite == "" {
		result.Models.Lite = defaults.Models.Lite
	}
	if result.Models.Standard == "" {
		result.Models.Standard = defaults.Models.Standard
	}
	if result.Models.Advanced == "" {
		result.Models.Advanced = defaults.Models.Advanced
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}

	// Numeric fields: use default if zero
	if result.MaxRetries == nil && defaults.MaxRetries != nil {
		result.MaxRetries = intPtr(*defaults.MaxRetries)
	}
	if result.GenTimeout == 0 {
		result.GenTimeout = defaults.GenTimeout
	}
	if result.TopK == 0 {
		result.TopK = defaults.TopK
	}
	if result.CatalogTimeout == 0 {
		result.CatalogTimeout = defaults.CatalogTimeout
	}
	if result.FetchTimeout == 0 {
		result.FetchTimeout = defaults.FetchTimeout
	}
	if result.JobTimeout == 0 {
		result.JobTimeout = defaults.JobTimeout
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateLimit == 0 {
		result.RateLimit = defaults.RateLimit
	}
	if result.RateBurst == 0 {
		result.RateBurst = defaults.RateBurst
	}

	// Sender is replaced as a whole so personas are never mixed
	if result.Sender.Name == "" && result.Sender.Company == "" {
		result.Sender = defaults.Sender
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Retries returns the configured retry count, or 0 when unset.
func (c *Config) Retries() int {
	if c.MaxRetries == nil {
		return 0
	}
	return *c.MaxRetries
}

func intPtr(n int) *int { return &n }

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if _, err := llm.ParseProvider(c.Provider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Validate numeric ranges
	if c.MaxRetries != nil && *c.MaxRetries < 0 {
		return fmt.Errorf("config error: 'max_retries' must be non-negative")
	}
	if c.TopK < 0 {
		return fmt.Errorf("config error: 'top_k' must be non-negative")
	}
	if c.GenTimeout < 0 || c.FetchTimeout < 0 || c.JobTimeout < 0 || c.CatalogTimeout < 0 {
		return fmt.Errorf("config error: timeouts must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("config error: rate limits must be non-negative")
	}

	switch c.PortfolioSource {
	case "", SourceCSV:
		if c.PortfolioCSV == "" {
			return fmt.Errorf("config error: 'portfolio_csv' is required for the csv source")
		}
		if _, err := os.Stat(c.PortfolioCSV); os.IsNotExist(err) {
			return fmt.Errorf("config error: portfolio file not found: %s", c.PortfolioCSV)
		}
	case SourceS3:
		if c.PortfolioS3URI == "" {
			return fmt.Errorf("config error: 'portfolio_s3_uri' is required for the s3 source")
		}
	case SourceDB:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the db source")
		}
	default:
		return fmt.Errorf("config error: unknown portfolio_source %q (want csv, s3 or db)", c.PortfolioSource)
	}

	return nil
}

// LLMConfig returns the generation settings derived from c.
func (c *Config) LLMConfig() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.Provider)
	if err != nil {
		return nil, err
	}

	cfg := llm.DefaultConfig()
	cfg.Provider = provider
	cfg.BaseURL = c.BaseURL
	for tier, model := range map[llm.ModelTier]string{
		llm.TierLite:     c.Models.Lite,
		llm.TierStandard: c.Models.Standard,
		llm.TierAdvanced: c.Models.Advanced,
	} {
		if model != "" {
			cfg = cfg.WithModel(tier, model)
		}
	}
	return cfg, nil
}
