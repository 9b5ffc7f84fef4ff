package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debtmap/debtmap/pkg/config"
)

func TestLoad_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	emptyPath := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyPath, []byte(""), 0o600))

	cfg, err := config.Load(emptyPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.InDelta(t, config.DefaultMaxDebtDensity, cfg.Validation.MaxDebtDensity, 1e-9)
	assert.Equal(t, config.DefaultBlastRadiusCap, cfg.CallGraph.BlastRadiusCap)
}

func TestLoad_MalformedYAML_ReturnsError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	content := "validation:\n  max_debt_density: [invalid yaml\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_UnknownKeys_NoError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "unknown.yaml")
	content := "unknown_section:\n  unknown_key: \"value\"\nvalidation:\n  max_debt_density: 30\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, cfg.Validation.MaxDebtDensity, 1e-9)
}

func TestLoad_PartialConfig_MergesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "partial.yaml")
	content := "validation:\n  min_coverage_percentage: 70\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	assert.InDelta(t, 70.0, cfg.Validation.MinCoveragePercentage, 1e-9)
	assert.InDelta(t, config.DefaultMaxDebtDensity, cfg.Validation.MaxDebtDensity, 1e-9)
	assert.True(t, cfg.CallGraph.ExcludeStdMethods)
}

func TestLoad_ExplicitPath_NotFound_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load("/nonexistent/path/debtmap.yaml")
	require.Error(t, err)
	assert.Nil(t, cfg)
}
