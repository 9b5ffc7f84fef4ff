// Package orchestrator drives one end-to-end analysis run: it fans
// per-file extraction and complexity computation across a worker pool,
// merges the results into a single call graph sequentially, resolves
// calls (read-only candidate search parallelized, graph writes
// serialized), validates the merged graph's structural invariants, and
// scores every node into a ranked, deterministic debt.Item set (spec
// §4.13, §5).
package orchestrator

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/debtmap/debtmap/pkg/callgraph"
	debtcontext "github.com/debtmap/debtmap/pkg/context"
	"github.com/debtmap/debtmap/pkg/coverage"
	"github.com/debtmap/debtmap/pkg/debt"
	"github.com/debtmap/debtmap/pkg/diagnostics"
)

// Config parameterizes one Orchestrator run.
type Config struct {
	// Workers caps the per-file and per-node worker pools; <= 0 defaults
	// to runtime.NumCPU() (spec §5: "worker pool sized to available
	// cores").
	Workers int

	// Resolver configures the merged graph's call resolver.
	Resolver callgraph.ResolverConfig

	// BlastRadiusCap bounds BlastRadius queries during scoring; <= 0
	// uses callgraph.DefaultBlastRadiusCap.
	BlastRadiusCap int

	// Budget, if positive, is a wall-clock ceiling for the whole run.
	// There are no per-operation timeouts (spec §5); exceeding the
	// budget yields a Partial Result rather than an error.
	Budget time.Duration
}

// Result is the process-level output of one Run: the ranked item set
// plus the call-graph validator's structural report (spec §6).
type Result struct {
	Items      []debt.Item
	Validation callgraph.ValidationReport

	// Partial is true when the run was cut short by cancellation or the
	// configured Budget; Items and Validation reflect whatever completed
	// before that point.
	Partial bool
}

// Orchestrator holds everything a Run needs beyond the file list itself:
// the language-specific per-file capability, the shared context
// aggregator handle, the (optional, read-only) coverage index, and the
// diagnostics stream every phase reports into.
type Orchestrator struct {
	cfg         Config
	analyzer    FileAnalyzer
	aggregator  debtcontext.AggregatorHandle
	coverage    *coverage.Index
	diagnostics *diagnostics.Stream
	scoreHints  ScoreHintsFunc
}

// New creates an Orchestrator. aggregator is shared by reference-count
// across every worker — it is never cloned by copy (spec §4.13). covIdx
// may be nil when no LCOV input was supplied. diag may be nil, in which
// case a fresh Stream is created. scoreHints may be nil when no
// per-language purity/refactorability/pattern/arch-role signal is
// available beyond complexity and coverage.
func New(cfg Config, analyzer FileAnalyzer, aggregator debtcontext.AggregatorHandle, covIdx *coverage.Index, diag *diagnostics.Stream, scoreHints ScoreHintsFunc) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	if diag == nil {
		diag = diagnostics.NewStream()
	}

	return &Orchestrator{
		cfg:         cfg,
		analyzer:    analyzer,
		aggregator:  aggregator,
		coverage:    covIdx,
		diagnostics: diag,
		scoreHints:  scoreHints,
	}
}

// Diagnostics returns the stream this run records recoverable and fatal
// diagnostics to.
func (o *Orchestrator) Diagnostics() *diagnostics.Stream { return o.diagnostics }

// Run executes the full pipeline over files. It returns a non-nil error
// only for a graph-invariant violation (spec §7's only fatal kind);
// cancellation or an exceeded Budget instead yield a Partial Result
// built from whatever completed before that point.
func (o *Orchestrator) Run(ctx context.Context, files []string) (Result, error) {
	if o.cfg.Budget > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, o.cfg.Budget)
		defer cancel()
	}

	outcomes := o.analyzeFiles(ctx, files)

	if ctx.Err() != nil {
		o.diagnostics.Cancelled()

		return Result{Partial: true}, nil
	}

	graph, queue, traits, complexityIndex, containers := o.merge(outcomes)

	if ctx.Err() != nil {
		o.diagnostics.Cancelled()

		return Result{Partial: true}, nil
	}

	o.resolve(graph, traits, queue)

	report := callgraph.NewValidator().Validate(graph)
	if err := o.checkInvariants(report); err != nil {
		return Result{Validation: report, Partial: true}, err
	}

	if ctx.Err() != nil {
		o.diagnostics.Cancelled()

		return Result{Validation: report, Partial: true}, nil
	}

	items := o.score(ctx, graph, complexityIndex)
	items = append(items, o.scoreFiles(containers)...)

	return Result{
		Items:      debt.Rank(items),
		Validation: report,
		Partial:    ctx.Err() != nil,
	}, nil
}

// checkInvariants records and reports a fatal diagnostic for every
// dangling edge or duplicate node the validator found: both indicate a
// bug in extraction or merge, not a recoverable per-file condition (spec
// §7 GraphInvariant). The first one encountered aborts the run.
func (o *Orchestrator) checkInvariants(report callgraph.ValidationReport) error {
	for _, d := range report.DanglingEdges {
		what := fmt.Sprintf("dangling edge %s -> %s", d.Call.Caller.Name, d.Call.Callee.Name)
		if err := o.diagnostics.GraphInvariant(what); err != nil {
			return err
		}
	}

	for _, d := range report.Duplicates {
		if err := o.diagnostics.GraphInvariant(fmt.Sprintf("duplicate node %s", d.ID.Name)); err != nil {
			return err
		}
	}

	return nil
}
