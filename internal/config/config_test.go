package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techscope/hypecycle/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	_ = os.Unsetenv("HYPECYCLE_STORAGE_ENGINE")
	_ = os.Unsetenv("HYPECYCLE_DATA_PATH")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.StorageEngine,
		"Default storage engine must be sqlite")
	assert.Equal(t, "./data", cfg.Storage.DataPath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 1.0, cfg.Collectors.RequestsPerSecond)
}

func TestLoadConfig_CanOverrideStorageEngine(t *testing.T) {
	t.Setenv("HYPECYCLE_STORAGE_ENGINE", "postgres")
	t.Setenv("HYPECYCLE_POSTGRES_DSN", "postgres://localhost/hypecycle?sslmode=disable")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.StorageEngine)
	assert.Equal(t, "postgres://localhost/hypecycle?sslmode=disable", cfg.Storage.PostgresDSN)
}

func TestLoadConfig_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("HYPECYCLE_REQUEST_BURST", "not-a-number")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Collectors.RequestBurst)
}

func TestLoadThresholds_EmptyPathReturnsDefaults(t *testing.T) {
	thresholds, err := config.LoadThresholds("")
	require.NoError(t, err)

	assert.Equal(t, 100, thresholds.Paper.HighCitationThreshold)
	assert.Equal(t, 0.25, thresholds.Patent.HighHHI)
	assert.Equal(t, 30, thresholds.News.LowArticleCount)
}

func TestLoadThresholds_FileOverridesSelectively(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	content := []byte("paper:\n  high_citation_threshold: 200\n  citation_growth_high: 30.0\n  citation_growth_moderate: 10.0\n  basic_research_high: 70.0\n  applied_research_high: 60.0\n  applied_research_very_high: 80.0\n  peak_recency_years: 3\n  min_papers_for_analysis: 100\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	thresholds, err := config.LoadThresholds(path)
	require.NoError(t, err)

	assert.Equal(t, 200, thresholds.Paper.HighCitationThreshold,
		"YAML value must override the default")
	assert.Equal(t, 0.25, thresholds.Patent.HighHHI,
		"Sections absent from the file keep their defaults")
}

func TestLoadThresholds_MissingFileReturnsError(t *testing.T) {
	_, err := config.LoadThresholds("/nonexistent/thresholds.yaml")
	assert.Error(t, err)
}
