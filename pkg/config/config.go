// Package config provides configuration loading and validation for debtmap.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidDebtDensity       = errors.New("max debt density must be non-negative")
	ErrInvalidAverageComplexity = errors.New("max average complexity must be non-negative")
	ErrInvalidRiskScore         = errors.New("max codebase risk score must be non-negative")
	ErrInvalidCoverage          = errors.New("min coverage percentage must be in [0, 100]")
	ErrInvalidTotalDebtScore    = errors.New("max total debt score must be positive")
	ErrInvalidBlastRadiusCap    = errors.New("call graph blast radius cap must be positive")
)

// Config holds all recognized configuration options of spec §6.
type Config struct {
	Validation ValidationConfig `mapstructure:"validation"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	CallGraph  CallGraphConfig  `mapstructure:"call_graph"`
	Context    ContextConfig    `mapstructure:"context"`
}

// ValidationConfig holds the density-gate thresholds of spec §4.12.
type ValidationConfig struct {
	MaxDebtDensity        float64 `mapstructure:"max_debt_density"`
	MaxAverageComplexity  float64 `mapstructure:"max_average_complexity"`
	MaxCodebaseRiskScore  float64 `mapstructure:"max_codebase_risk_score"`
	MinCoveragePercentage float64 `mapstructure:"min_coverage_percentage"`
	MaxTotalDebtScore     float64 `mapstructure:"max_total_debt_score"`

	// Deprecated absolute counters, accepted with a warning (spec §4.12).
	MaxHighComplexityCount int `mapstructure:"max_high_complexity_count"`
	MaxDebtItems           int `mapstructure:"max_debt_items"`
	MaxHighRiskFunctions   int `mapstructure:"max_high_risk_functions"`
}

// ScoringConfig holds the scoring.data_flow.* options of spec §6.
type ScoringConfig struct {
	DataFlow DataFlowConfig `mapstructure:"data_flow"`
}

// DataFlowConfig tunes the refactorability/pattern signals of §4.9.
type DataFlowConfig struct {
	Enabled               bool    `mapstructure:"enabled"`
	PurityWeight          float64 `mapstructure:"purity_weight"`
	RefactorabilityWeight float64 `mapstructure:"refactorability_weight"`
	PatternWeight         float64 `mapstructure:"pattern_weight"`
	MinDeadStoreRatio     float64 `mapstructure:"min_dead_store_ratio"`
	DeadStoreBoost        float64 `mapstructure:"dead_store_boost"`
}

// CallGraphConfig holds the call_graph.* options of spec §6.
type CallGraphConfig struct {
	ExcludeStdMethods    bool     `mapstructure:"exclude_std_methods"`
	AdditionalExclusions []string `mapstructure:"additional_exclusions"`
	BlastRadiusCap       int      `mapstructure:"blast_radius_cap"`
}

// ContextConfig holds the context.* options of spec §6.
type ContextConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	FrameworkPatternsPath string `mapstructure:"framework_patterns_path"`
}

// Load loads configuration from configPath (or the conventional search
// path when empty) and the DEBTMAP_-prefixed environment, applying
// defaults and validating the result.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("debtmap")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/debtmap")
	}

	viperCfg.SetEnvPrefix("DEBTMAP")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if readErr := viperCfg.ReadInConfig(); readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var cfg Config

	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets the documented defaults of spec §6.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("validation.max_debt_density", DefaultMaxDebtDensity)
	viperCfg.SetDefault("validation.max_average_complexity", DefaultMaxAverageComplexity)
	viperCfg.SetDefault("validation.max_codebase_risk_score", DefaultMaxCodebaseRiskScore)
	viperCfg.SetDefault("validation.min_coverage_percentage", DefaultMinCoveragePercentage)
	viperCfg.SetDefault("validation.max_total_debt_score", DefaultMaxTotalDebtScore)

	viperCfg.SetDefault("scoring.data_flow.enabled", DefaultDataFlowEnabled)
	viperCfg.SetDefault("scoring.data_flow.purity_weight", DefaultPurityWeight)
	viperCfg.SetDefault("scoring.data_flow.refactorability_weight", DefaultRefactorabilityWeight)
	viperCfg.SetDefault("scoring.data_flow.pattern_weight", DefaultPatternWeight)
	viperCfg.SetDefault("scoring.data_flow.min_dead_store_ratio", DefaultMinDeadStoreRatio)
	viperCfg.SetDefault("scoring.data_flow.dead_store_boost", DefaultDeadStoreBoost)

	viperCfg.SetDefault("call_graph.exclude_std_methods", DefaultExcludeStdMethods)
	viperCfg.SetDefault("call_graph.additional_exclusions", []string{})
	viperCfg.SetDefault("call_graph.blast_radius_cap", DefaultBlastRadiusCap)

	viperCfg.SetDefault("context.enabled", DefaultContextEnabled)
	viperCfg.SetDefault("context.framework_patterns_path", "")
}

func validate(cfg *Config) error {
	v := cfg.Validation

	if v.MaxDebtDensity < 0 {
		return fmt.Errorf("%w: %f", ErrInvalidDebtDensity, v.MaxDebtDensity)
	}

	if v.MaxAverageComplexity < 0 {
		return fmt.Errorf("%w: %f", ErrInvalidAverageComplexity, v.MaxAverageComplexity)
	}

	if v.MaxCodebaseRiskScore < 0 {
		return fmt.Errorf("%w: %f", ErrInvalidRiskScore, v.MaxCodebaseRiskScore)
	}

	if v.MinCoveragePercentage < 0 || v.MinCoveragePercentage > 100 {
		return fmt.Errorf("%w: %f", ErrInvalidCoverage, v.MinCoveragePercentage)
	}

	if v.MaxTotalDebtScore <= 0 {
		return fmt.Errorf("%w: %f", ErrInvalidTotalDebtScore, v.MaxTotalDebtScore)
	}

	if cfg.CallGraph.BlastRadiusCap <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlastRadiusCap, cfg.CallGraph.BlastRadiusCap)
	}

	return nil
}
