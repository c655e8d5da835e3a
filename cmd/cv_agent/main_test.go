package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"classify", "https://jobs.example.com/123"}, "url"},
		{[]string{"classify", "Senior", "Go", "Engineer"}, "title"},
		{[]string{"classify", "Backend role\n- Go\n- Postgres"}, "text"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetArgs(tt.args)
			require.NoError(t, rootCmd.Execute())
			assert.Equal(t, tt.want, strings.TrimSpace(out.String()))
		})
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: 60\nmax_iterations: 4\noutput_dir: from-file\n"), 0o600))

	old := configPath
	configPath = path
	t.Cleanup(func() { configPath = old })

	require.NoError(t, runCommand.Flags().Set("threshold", "90"))
	t.Cleanup(func() {
		runThreshold = 0
		runCommand.Flags().Lookup("threshold").Changed = false
	})

	cfg, err := loadConfig(runCommand)
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Threshold)
	assert.Equal(t, 4, cfg.MaxIterations)
	assert.Equal(t, "from-file", cfg.OutputDir)
	assert.True(t, cfg.RenderPDF)
}

func TestLoadConfig_RejectsInvalidOverride(t *testing.T) {
	old := configPath
	configPath = ""
	t.Cleanup(func() { configPath = old })

	require.NoError(t, runCommand.Flags().Set("threshold", "150"))
	t.Cleanup(func() {
		runThreshold = 0
		runCommand.Flags().Lookup("threshold").Changed = false
	})

	_, err := loadConfig(runCommand)
	assert.ErrorContains(t, err, "threshold")
}

func TestBuildApp_RequiresGeminiKey(t *testing.T) {
	cfg, err := loadConfig(classifyCmd)
	require.NoError(t, err)
	cfg.GeminiAPIKey = ""

	_, err = buildApp(t.Context(), cfg, nil, allStages)
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}
