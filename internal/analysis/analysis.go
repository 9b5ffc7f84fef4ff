// Package analysis glues the core packages into the single process-level
// entry point spec §6 describes: a configuration, a file set, an optional
// LCOV path, and a cancellation token in, a ranked item set, a validation
// report, and a gate verdict out. It owns nothing language-specific
// itself — parsing, file discovery, and git-history reading remain
// external collaborators the caller supplies (spec §1) — it only wires
// the core packages together the way the teacher's
// cmd/codefang/commands/analyze.go wires its analyzer set into one
// Service.
package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/debtmap/debtmap/internal/orchestrator"
	"github.com/debtmap/debtmap/pkg/callgraph"
	"github.com/debtmap/debtmap/pkg/config"
	debtcontext "github.com/debtmap/debtmap/pkg/context"
	"github.com/debtmap/debtmap/pkg/coverage"
	"github.com/debtmap/debtmap/pkg/debt"
	"github.com/debtmap/debtmap/pkg/diagnostics"
	"github.com/debtmap/debtmap/pkg/validation"
)

// Dependencies are the external collaborators this package does not
// define itself (spec §1's "out of scope" list): the per-language
// extraction capability, any context providers the host wires up for
// the optional context.enabled config flag, and optional per-node
// purity/refactorability/pattern/arch-role hints.
type Dependencies struct {
	Analyzer   orchestrator.FileAnalyzer
	Providers  []debtcontext.Provider
	ScoreHints orchestrator.ScoreHintsFunc
	Logger     *slog.Logger
}

// Request is one analysis run's input: the recognized configuration, the
// file set to analyze, an optional LCOV coverage report, and the total
// lines of source under analysis (needed for the debt-density gate's
// ratio; line counting is file-discovery territory, out of core scope
// per spec §1, so the caller supplies it).
type Request struct {
	Config   config.Config
	Files    []string
	LCOVPath string
	TotalLOC int
}

// Result is the process-level output of spec §6: the ranked item set,
// the call-graph validator's structural report, the density-gate
// verdict, and a primary-scope-plus-related-ranges context suggestion
// per function item (§6's "serialization-ready context suggestion...
// with a 500-line default total budget").
type Result struct {
	Items              []debt.Item
	Validation         callgraph.ValidationReport
	Gate               validation.Report
	ContextSuggestions map[string]ContextSuggestion
	Diagnostics        []diagnostics.Entry
	Partial            bool
}

// Run executes one full analysis pass.
func Run(ctx context.Context, req Request, deps Dependencies) (Result, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	diag := diagnostics.NewStream()

	covIdx, err := loadCoverage(req.LCOVPath, diag)
	if err != nil {
		return Result{}, err
	}

	var providers []debtcontext.Provider
	if req.Config.Context.Enabled {
		providers = deps.Providers
	}

	agg := debtcontext.New(logger, providers...)

	cfg := req.Config

	orchCfg := orchestrator.Config{
		Resolver: callgraph.ResolverConfig{
			ExcludeStdMethods:    cfg.CallGraph.ExcludeStdMethods,
			AdditionalExclusions: cfg.CallGraph.AdditionalExclusions,
		},
		BlastRadiusCap: cfg.CallGraph.BlastRadiusCap,
	}

	orch := orchestrator.New(orchCfg, deps.Analyzer, debtcontext.NewHandle(agg), covIdx, diag, deps.ScoreHints)

	orchResult, err := orch.Run(ctx, req.Files)
	if err != nil {
		return Result{Validation: orchResult.Validation, Diagnostics: diag.Entries(), Partial: true}, err
	}

	gate := validation.Evaluate(gateItems(orchResult.Items), req.TotalLOC, thresholdsOf(cfg.Validation))

	return Result{
		Items:              orchResult.Items,
		Validation:         orchResult.Validation,
		Gate:               gate,
		ContextSuggestions: buildContextSuggestions(orchResult.Items, defaultContextBudget),
		Diagnostics:        diag.Entries(),
		Partial:            orchResult.Partial,
	}, nil
}

// loadCoverage parses path as LCOV, recording one CoverageParseError
// diagnostic per malformed record (spec §7) rather than failing the run.
// An empty path means no coverage was supplied.
func loadCoverage(path string, diag *diagnostics.Stream) (*coverage.Index, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lcov file: %w", err)
	}
	defer f.Close()

	return parseCoverage(f, diag)
}

func parseCoverage(r io.Reader, diag *diagnostics.Stream) (*coverage.Index, error) {
	idx, errs := coverage.Parse(r, coverage.DefaultDemangler)

	for _, parseErr := range errs {
		if lcovErr, ok := parseErr.(*coverage.ParseError); ok { //nolint:errorlint // coverage.Parse returns concrete *ParseError values
			diag.CoverageParseError(lcovErr.Line, lcovErr.Reason)

			continue
		}

		diag.CoverageParseError(0, parseErr.Error())
	}

	return idx, nil
}

func gateItems(items []debt.Item) []validation.Item {
	out := make([]validation.Item, 0, len(items))

	for _, item := range items {
		if item.Kind != debt.KindFunction {
			continue
		}

		coveragePct := -1.0
		if item.Coverage != nil {
			coveragePct = item.Coverage.CoveragePercentage
		}

		out = append(out, validation.Item{
			FinalScore:         item.UnifiedScore.FinalScore.Value(),
			Cyclomatic:         item.Complexity.Cyclomatic,
			CoveragePercentage: coveragePct,
		})
	}

	return out
}

func thresholdsOf(v config.ValidationConfig) validation.Thresholds {
	return validation.Thresholds{
		MaxDebtDensity:         v.MaxDebtDensity,
		MaxAverageComplexity:   v.MaxAverageComplexity,
		MaxCodebaseRiskScore:   v.MaxCodebaseRiskScore,
		MinCoveragePercentage:  v.MinCoveragePercentage,
		MaxTotalDebtScore:      v.MaxTotalDebtScore,
		MaxHighComplexityCount: v.MaxHighComplexityCount,
		MaxDebtItems:           v.MaxDebtItems,
		MaxHighRiskFunctions:   v.MaxHighRiskFunctions,
	}
}
