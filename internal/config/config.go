// Package config provides configuration loading and validation for the CLI and the server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides of non-secret keys,
// e.g. CVOPT_THRESHOLD or CVOPT_SERVER_PORT.
const EnvPrefix = "CVOPT"

// Config holds every tunable of a pipeline deployment.
type Config struct {
	// Optimization loop
	Threshold       int  `mapstructure:"threshold"`
	MaxIterations   int  `mapstructure:"max_iterations"`
	ContinueOnError bool `mapstructure:"continue_on_error"`

	// Job hunting
	SearchResults      int           `mapstructure:"search_results"`
	FetchTimeout       time.Duration `mapstructure:"fetch_timeout"`
	FetchRatePerSecond float64       `mapstructure:"fetch_rate_per_second"`
	MaxJobTextChars    int           `mapstructure:"max_job_text_chars"`
	UseBrowser         bool          `mapstructure:"use_browser"`

	// CV ingestion
	MinCVTextChars int `mapstructure:"min_cv_text_chars"`

	// Output tail
	OutputDir string `mapstructure:"output_dir"`
	RenderPDF bool   `mapstructure:"render_pdf"`
	SendEmail bool   `mapstructure:"send_email"`

	// Models overrides the model name per tier ("lite", "standard", "advanced").
	Models map[string]string `mapstructure:"models"`

	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`

	// Secrets, read from their conventional environment variable names.
	GeminiAPIKey       string `mapstructure:"gemini_api_key"`
	SearchAPIKey       string `mapstructure:"google_search_api_key"`
	SearchCX           string `mapstructure:"google_search_cx"`
	DatabaseURL        string `mapstructure:"database_url"`
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	GmailRefreshToken  string `mapstructure:"gmail_refresh_token"`
	EncryptionKey      string `mapstructure:"encryption_key"`
}

// ServerConfig configures `cv_agent serve`.
type ServerConfig struct {
	Port       int    `mapstructure:"port"`
	CORSOrigin string `mapstructure:"cors_origin"`
	// RunsPerHour caps optimize requests per client; 0 disables the limit.
	RunsPerHour int    `mapstructure:"runs_per_hour"`
	UploadDir   string `mapstructure:"upload_dir"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

var secretEnv = map[string]string{
	"gemini_api_key":        "GEMINI_API_KEY",
	"google_search_api_key": "GOOGLE_SEARCH_API_KEY",
	"google_search_cx":      "GOOGLE_SEARCH_CX",
	"database_url":          "DATABASE_URL",
	"google_client_id":      "GOOGLE_CLIENT_ID",
	"google_client_secret":  "GOOGLE_CLIENT_SECRET",
	"gmail_refresh_token":   "GMAIL_REFRESH_TOKEN",
	"encryption_key":        "ENCRYPTION_KEY",
}

// DefaultConfig returns the configuration used when no file or environment override is set.
func DefaultConfig() Config {
	return Config{
		Threshold:          75,
		MaxIterations:      2,
		SearchResults:      2,
		FetchTimeout:       10 * time.Second,
		FetchRatePerSecond: 2,
		MaxJobTextChars:    10000,
		MinCVTextChars:     50,
		OutputDir:          "output",
		RenderPDF:          true,
		Server: ServerConfig{
			Port:        8080,
			CORSOrigin:  "*",
			RunsPerHour: 10,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("threshold", d.Threshold)
	v.SetDefault("max_iterations", d.MaxIterations)
	v.SetDefault("continue_on_error", d.ContinueOnError)
	v.SetDefault("search_results", d.SearchResults)
	v.SetDefault("fetch_timeout", d.FetchTimeout)
	v.SetDefault("fetch_rate_per_second", d.FetchRatePerSecond)
	v.SetDefault("max_job_text_chars", d.MaxJobTextChars)
	v.SetDefault("use_browser", d.UseBrowser)
	v.SetDefault("min_cv_text_chars", d.MinCVTextChars)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("render_pdf", d.RenderPDF)
	v.SetDefault("send_email", d.SendEmail)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.cors_origin", d.Server.CORSOrigin)
	v.SetDefault("server.runs_per_hour", d.Server.RunsPerHour)
	v.SetDefault("server.upload_dir", d.Server.UploadDir)
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// Load reads configuration from path (JSON or YAML, optional) and the environment.
// Precedence: environment > file > defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range secretEnv {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has usable values.
// Secrets are not required here; each component checks the ones it needs.
func (c *Config) Validate() error {
	var errs []error
	if c.Threshold < 0 || c.Threshold > 100 {
		errs = append(errs, fmt.Errorf("config error: 'threshold' must be within [0,100], got %d", c.Threshold))
	}
	if c.MaxIterations < 0 {
		errs = append(errs, fmt.Errorf("config error: 'max_iterations' must be non-negative"))
	}
	if c.SearchResults < 1 {
		errs = append(errs, fmt.Errorf("config error: 'search_results' must be at least 1"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("config error: 'fetch_timeout' must be positive"))
	}
	if c.MaxJobTextChars <= 0 {
		errs = append(errs, fmt.Errorf("config error: 'max_job_text_chars' must be positive"))
	}
	if c.MinCVTextChars < 0 {
		errs = append(errs, fmt.Errorf("config error: 'min_cv_text_chars' must be non-negative"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("config error: 'server.port' out of range"))
	}
	if c.Server.RunsPerHour < 0 {
		errs = append(errs, fmt.Errorf("config error: 'server.runs_per_hour' must be non-negative"))
	}
	return errors.Join(errs...)
}

// DeliveryConfigured reports whether the Gmail credentials needed to send email are present.
func (c *Config) DeliveryConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GmailRefreshToken != ""
}
