package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debtmap/debtmap/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.InDelta(t, 50.0, cfg.Validation.MaxDebtDensity, 1e-9)
	assert.InDelta(t, 10.0, cfg.Validation.MaxAverageComplexity, 1e-9)
	assert.InDelta(t, 7.0, cfg.Validation.MaxCodebaseRiskScore, 1e-9)
	assert.Equal(t, 10000, int(cfg.Validation.MaxTotalDebtScore))
	assert.True(t, cfg.CallGraph.ExcludeStdMethods)
	assert.Equal(t, 10000, cfg.CallGraph.BlastRadiusCap)
	assert.False(t, cfg.Context.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	configContent := `
validation:
  max_debt_density: 80
  min_coverage_percentage: 60

call_graph:
  exclude_std_methods: false
  additional_exclusions: ["custom_helper"]

context:
  enabled: true
`

	tmpDir := t.TempDir()

	tmpFile, err := os.CreateTemp(tmpDir, "test-config-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(configContent)
	require.NoError(t, writeErr)

	tmpFile.Close()

	cfg, loadErr := config.Load(tmpFile.Name())
	require.NoError(t, loadErr)

	assert.InDelta(t, 80.0, cfg.Validation.MaxDebtDensity, 1e-9)
	assert.InDelta(t, 60.0, cfg.Validation.MinCoveragePercentage, 1e-9)
	assert.False(t, cfg.CallGraph.ExcludeStdMethods)
	assert.Equal(t, []string{"custom_helper"}, cfg.CallGraph.AdditionalExclusions)
	assert.True(t, cfg.Context.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DEBTMAP_VALIDATION_MAX_DEBT_DENSITY", "75")
	t.Setenv("DEBTMAP_CONTEXT_ENABLED", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.InDelta(t, 75.0, cfg.Validation.MaxDebtDensity, 1e-9)
	assert.True(t, cfg.Context.Enabled)
}

func TestLoad_RejectsNegativeDebtDensity(t *testing.T) {
	t.Parallel()

	configContent := "validation:\n  max_debt_density: -1\n"

	tmpDir := t.TempDir()

	tmpFile, err := os.CreateTemp(tmpDir, "test-invalid-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(configContent)
	require.NoError(t, writeErr)

	tmpFile.Close()

	_, loadErr := config.Load(tmpFile.Name())
	require.Error(t, loadErr)
	assert.ErrorIs(t, loadErr, config.ErrInvalidDebtDensity)
}
