// Package validation implements the scale-independent density gate: a
// batch pass/fail check over a whole analysis run's debt items, per spec
// §4.12. Density ratios (not absolute counts) are authoritative; legacy
// absolute-count thresholds are accepted for backward compatibility but
// only ever produce a warning, never a failure.
package validation

import "fmt"

// highComplexityThreshold is the per-item cyclomatic complexity above
// which an item counts toward the deprecated max_high_complexity_count.
const highComplexityThreshold = 10

// highRiskScoreThreshold is the per-item final_score above which an item
// counts toward the deprecated max_high_risk_functions.
const highRiskScoreThreshold = 75.0

// Item is the minimal view of a scored debt item the gate needs: enough
// to recompute the density metrics without depending on pkg/debt's full
// UnifiedDebtItem shape.
type Item struct {
	FinalScore         float64
	Cyclomatic         int
	CoveragePercentage float64 // -1 means unknown
}

// Thresholds are the recognized gate options of spec §6, with their
// documented defaults.
type Thresholds struct {
	MaxDebtDensity        float64
	MaxAverageComplexity  float64
	MaxCodebaseRiskScore  float64
	MinCoveragePercentage float64
	MaxTotalDebtScore     float64

	// Deprecated absolute counters: accepted, produce a warning when
	// exceeded, never fail the gate on their own (spec §4.12).
	MaxHighComplexityCount int
	MaxDebtItems           int
	MaxHighRiskFunctions   int
}

// DefaultThresholds returns the documented defaults of spec §6.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxDebtDensity:        50.0,
		MaxAverageComplexity:  10.0,
		MaxCodebaseRiskScore:  7.0,
		MinCoveragePercentage: 0.0,
		MaxTotalDebtScore:     10000,
	}
}

// MetricResult is one graded metric of the gate evaluation.
type MetricResult struct {
	Name      string
	Value     float64
	Threshold float64
	Pass      bool
}

// Report is the full density-gate evaluation result.
type Report struct {
	Pass     bool
	Metrics  []MetricResult
	Warnings []string
}

// Evaluate computes the density metrics over items (scaled by totalLOC)
// and grades each against th, per spec §4.12. The gate passes only when
// every primary and safety-net metric passes; deprecated counters never
// affect Pass, only Warnings.
func Evaluate(items []Item, totalLOC int, th Thresholds) Report {
	var report Report

	debtDensity := densityOf(items, totalLOC)
	avgComplexity := averageComplexity(items)
	riskScore := codebaseRiskScore(items)
	totalDebt := totalDebtScore(items)

	report.Metrics = append(report.Metrics,
		gradeAtMost("debt_density", debtDensity, th.MaxDebtDensity),
		gradeAtMost("average_complexity", avgComplexity, th.MaxAverageComplexity),
		gradeAtMost("codebase_risk_score", riskScore, th.MaxCodebaseRiskScore),
		gradeAtMost("total_debt_score", totalDebt, th.MaxTotalDebtScore),
	)

	if cov, ok := averageCoverage(items); ok {
		report.Metrics = append(report.Metrics, gradeAtLeast("coverage_percentage", cov, th.MinCoveragePercentage))
	}

	report.Warnings = append(report.Warnings, deprecatedCounterWarnings(items, th)...)

	report.Pass = true

	for _, m := range report.Metrics {
		if !m.Pass {
			report.Pass = false
		}
	}

	return report
}

func densityOf(items []Item, totalLOC int) float64 {
	if totalLOC == 0 {
		return 0
	}

	return sumFinalScores(items) * 1000 / float64(totalLOC)
}

func sumFinalScores(items []Item) float64 {
	sum := 0.0
	for _, it := range items {
		sum += it.FinalScore
	}

	return sum
}

func averageComplexity(items []Item) float64 {
	if len(items) == 0 {
		return 0
	}

	sum := 0
	for _, it := range items {
		sum += it.Cyclomatic
	}

	return float64(sum) / float64(len(items))
}

// codebaseRiskScore normalizes the mean final_score (0-100) onto a 0-10
// scale, matching the documented default threshold of 7.0.
func codebaseRiskScore(items []Item) float64 {
	if len(items) == 0 {
		return 0
	}

	return sumFinalScores(items) / float64(len(items)) / 10.0
}

func totalDebtScore(items []Item) float64 {
	return sumFinalScores(items)
}

func averageCoverage(items []Item) (float64, bool) {
	sum, count := 0.0, 0

	for _, it := range items {
		if it.CoveragePercentage < 0 {
			continue
		}

		sum += it.CoveragePercentage
		count++
	}

	if count == 0 {
		return 0, false
	}

	return sum / float64(count), true
}

func gradeAtMost(name string, value, threshold float64) MetricResult {
	return MetricResult{Name: name, Value: value, Threshold: threshold, Pass: value <= threshold}
}

func gradeAtLeast(name string, value, threshold float64) MetricResult {
	return MetricResult{Name: name, Value: value, Threshold: threshold, Pass: value >= threshold}
}

// deprecatedCounterWarnings checks the legacy absolute-count thresholds
// and reports a warning (never a failure) when any is exceeded and
// configured (non-zero).
func deprecatedCounterWarnings(items []Item, th Thresholds) []string {
	var warnings []string

	if th.MaxHighComplexityCount > 0 {
		count := countAbove(items, func(it Item) bool { return it.Cyclomatic > highComplexityThreshold })
		if count > th.MaxHighComplexityCount {
			warnings = append(warnings, fmt.Sprintf("deprecated max_high_complexity_count exceeded (%d > %d); no longer authoritative", count, th.MaxHighComplexityCount))
		}
	}

	if th.MaxDebtItems > 0 && len(items) > th.MaxDebtItems {
		warnings = append(warnings, fmt.Sprintf("deprecated max_debt_items exceeded (%d > %d); no longer authoritative", len(items), th.MaxDebtItems))
	}

	if th.MaxHighRiskFunctions > 0 {
		count := countAbove(items, func(it Item) bool { return it.FinalScore > highRiskScoreThreshold })
		if count > th.MaxHighRiskFunctions {
			warnings = append(warnings, fmt.Sprintf("deprecated max_high_risk_functions exceeded (%d > %d); no longer authoritative", count, th.MaxHighRiskFunctions))
		}
	}

	return warnings
}

func countAbove(items []Item, pred func(Item) bool) int {
	count := 0

	for _, it := range items {
		if pred(it) {
			count++
		}
	}

	return count
}
