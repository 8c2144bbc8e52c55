package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"addr": ":9090",
		"taxonomy": "content",
		"workers": 16,
		"sources": ["google_news"],
		"trend_source": "dataforseo",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "content", cfg.Taxonomy)
	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, []string{SourceGoogleNews}, cfg.Sources)
	assert.Equal(t, TrendSourceDataForSEO, cfg.TrendSource)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid config file")
}

func TestLoadConfig_SchemaRejectsUnknownKeys(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"wokers": 4}`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "wokers")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		errMsg string
	}{
		{"defaults", Defaults(), ""},
		{"empty", Config{}, ""},
		{"bad taxonomy", Config{Taxonomy: "both"}, "taxonomy"},
		{"bad trend source", Config{TrendSource: "bing"}, "trend_source"},
		{"unknown source", Config{Sources: []string{"twitter"}}, "unknown source"},
		{"negative workers", Config{Workers: -1}, "workers"},
		{"missing gazetteer", Config{GazetteerPath: "/nonexistent/gazetteer.yaml"}, "gazetteer file not found"},
		{"missing bias csv tolerated", Config{MediaBiasPath: "/nonexistent/bias.csv"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		Addr:    ":9999",
		Workers: 2,
	}

	merged := partial.MergeWithDefaults(Defaults())

	// Custom values should be preserved
	assert.Equal(t, ":9999", merged.Addr)
	assert.Equal(t, 2, merged.Workers)

	// Default values should fill in empty fields
	assert.Equal(t, "source", merged.Taxonomy)
	assert.Equal(t, 1, merged.MinOverlap)
	assert.Equal(t, 8, merged.NewsDataTimeoutSecs)
	assert.Equal(t, 10, merged.GoogleNewsTimeoutSecs)
	assert.ElementsMatch(t, []string{SourceGoogleNews, SourceNewsData, SourceCustomSearch}, merged.Sources)
	assert.Equal(t, time.Hour, merged.JobTTL())
	assert.Equal(t, 10*time.Second, merged.BackfillTimeout())
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Addr: ":1234"}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, ":1234", merged.Addr)
	assert.Empty(t, merged.Sources)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvNewsDataAPIKey, "nd-key")
	t.Setenv(EnvDataForSEOLogin, "login")
	t.Setenv(EnvCSECX, "")

	cfg := Config{CSECX: "from-file", NewsDataAPIKey: "file-key"}
	cfg.ApplyEnv()

	assert.Equal(t, "nd-key", cfg.NewsDataAPIKey)
	assert.Equal(t, "login", cfg.DataForSEOLogin)
	assert.Equal(t, "from-file", cfg.CSECX, "empty env keeps file value")
}

func TestSourceEnabled(t *testing.T) {
	cfg := Config{Sources: []string{SourceNewsData}}
	assert.True(t, cfg.SourceEnabled(SourceNewsData))
	assert.False(t, cfg.SourceEnabled(SourceGoogleNews))
}
