package config

// Validation (density gate) defaults, per spec §6.
const (
	DefaultMaxDebtDensity        = 50.0
	DefaultMaxAverageComplexity  = 10.0
	DefaultMaxCodebaseRiskScore  = 7.0
	DefaultMinCoveragePercentage = 0.0
	DefaultMaxTotalDebtScore     = 10000
)

// Scoring data-flow defaults, per spec §6.
const (
	DefaultDataFlowEnabled               = false
	DefaultPurityWeight                  = 1.0
	DefaultRefactorabilityWeight         = 1.0
	DefaultPatternWeight                 = 1.0
	DefaultMinDeadStoreRatio             = 0.0
	DefaultDeadStoreBoost                = 0.0
)

// Call-graph defaults, per spec §6 and §5 ("blast radius" cap).
const (
	DefaultExcludeStdMethods = true
	DefaultBlastRadiusCap    = 10000
)

// Context-provider defaults, per spec §6.
const (
	DefaultContextEnabled = false
)
