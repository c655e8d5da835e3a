package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.Threshold)
	assert.Equal(t, 2, cfg.MaxIterations)
	assert.Equal(t, 2, cfg.SearchResults)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 10000, cfg.MaxJobTextChars)
	assert.Equal(t, 50, cfg.MinCVTextChars)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.RenderPDF)
	assert.False(t, cfg.ContinueOnError)
}

func TestLoad_JSONFile(t *testing.T) {
	content := `{
		"threshold": 80,
		"max_iterations": 3,
		"fetch_timeout": "5s",
		"server": {"port": 9000},
		"models": {"advanced": "gemini-2.5-flash"}
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Threshold)
	assert.Equal(t, 3, cfg.MaxIterations)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.Models["advanced"])
	// untouched keys keep defaults
	assert.Equal(t, 2, cfg.SearchResults)
}

func TestLoad_YAMLFile(t *testing.T) {
	content := "threshold: 60\nsend_email: true\nlog:\n  json: true\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Threshold)
	assert.True(t, cfg.SendEmail)
	assert.True(t, cfg.Log.JSON)

	// keys absent from the file keep their defaults
	assert.Equal(t, 2, cfg.MaxIterations)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.RunsPerHour)
	assert.True(t, cfg.RenderPDF)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CVOPT_THRESHOLD", "90")
	t.Setenv("CVOPT_SERVER_PORT", "7000")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Threshold)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.GeminiAPIKey)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{ invalid json }`), 0644))

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"threshold too high", func(c *Config) { c.Threshold = 101 }, "threshold"},
		{"negative iterations", func(c *Config) { c.MaxIterations = -1 }, "max_iterations"},
		{"no search results", func(c *Config) { c.SearchResults = 0 }, "search_results"},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }, "fetch_timeout"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDeliveryConfigured(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.DeliveryConfigured())

	cfg.GoogleClientID = "id"
	cfg.GoogleClientSecret = "secret"
	cfg.GmailRefreshToken = "token"
	assert.True(t, cfg.DeliveryConfigured())
}
