package orchestrator

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/debtmap/debtmap/pkg/callgraph"
	"github.com/debtmap/debtmap/pkg/complexity"
	debtcontext "github.com/debtmap/debtmap/pkg/context"
	"github.com/debtmap/debtmap/pkg/coverage"
	"github.com/debtmap/debtmap/pkg/debt"
	"github.com/debtmap/debtmap/pkg/funcid"
	"github.com/debtmap/debtmap/pkg/godobject"
	"github.com/debtmap/debtmap/pkg/scoring"
)

// ScoreHints carries the optional purity/refactorability/pattern/
// arch-role signals scoring.Score accepts beyond complexity and
// coverage, for callers with richer per-language analysis available. A
// nil ScoreHintsFunc contributes none of these; they simply stay nil
// (neutral) in the resulting UnifiedScore, per scoring.Inputs' contract.
type ScoreHints struct {
	Purity          *callgraph.PurityLevel
	Refactorability *scoring.RefactorabilityInputs
	Pattern         *scoring.PatternKind
	ArchRole        *scoring.ArchRole
}

// ScoreHintsFunc supplies ScoreHints for one node.
type ScoreHintsFunc func(node callgraph.FunctionNode) ScoreHints

// score computes a debt.Item for every node in graph, fanned out across
// a worker pool: the context Aggregator's cache is a lock-free sharded
// map safe for concurrent Analyze calls, the CoverageIndex is read-only
// by this point, and the Graph itself is no longer mutated once merge
// and resolve have completed (spec §5's "shared resources"). A node
// whose turn never comes because ctx was cancelled mid-pass is simply
// omitted, yielding a Partial Result rather than a zero-value Item.
func (o *Orchestrator) score(ctx context.Context, graph *callgraph.Graph, complexityIndex map[funcid.ExactKey]complexity.Metrics) []debt.Item {
	nodes := graph.Nodes()
	items := make([]debt.Item, len(nodes))
	done := make([]bool, len(nodes))

	p := pool.New().WithMaxGoroutines(o.cfg.Workers)

	for i, node := range nodes {
		i, node := i, node

		p.Go(func() {
			if ctx.Err() != nil {
				return
			}

			items[i] = o.scoreOne(ctx, graph, node, complexityIndex)
			done[i] = true
		})
	}

	p.Wait()

	out := make([]debt.Item, 0, len(nodes))

	for i, ok := range done {
		if ok {
			out = append(out, items[i])
		}
	}

	return out
}

func (o *Orchestrator) scoreOne(ctx context.Context, graph *callgraph.Graph, node callgraph.FunctionNode, complexityIndex map[funcid.ExactKey]complexity.Metrics) debt.Item {
	metrics := complexityIndex[node.ID.Exact()]

	var cov *coverage.Entry

	if o.coverage != nil {
		if entry, ok := o.coverage.Lookup(node.ID.File, node.ID.Name); ok {
			cov = &entry
		}
	}

	var ctxMap debtcontext.Map

	if agg := o.aggregator.Aggregator(); agg != nil {
		ctxMap = agg.Analyze(ctx, debtcontext.Target{File: node.ID.File, Function: node.ID.Name})
	}

	inputs := scoring.Inputs{
		Complexity: scoring.Complexity{
			Cyclomatic: float64(metrics.Cyclomatic),
			Cognitive:  float64(metrics.Cognitive),
		},
	}

	if o.scoreHints != nil {
		hints := o.scoreHints(node)
		inputs.Purity = hints.Purity
		inputs.Refactorability = hints.Refactorability
		inputs.Pattern = hints.Pattern
		inputs.ArchRole = hints.ArchRole
	}

	unified := scoring.Score(node, graph, o.coverage, ctxMap, inputs)

	return debt.BuildFunctionItem(node, graph, unified, metrics, cov, ctxMap, o.cfg.BlastRadiusCap)
}

// scoreFiles runs the god-object analysis over every merged container
// and assembles a KindFile Item for each, independent of the function
// scoring pass (spec §4.11 is a separate analyzer whose output still
// ranks on the same final_score axis).
func (o *Orchestrator) scoreFiles(containers []godobject.Container) []debt.Item {
	items := make([]debt.Item, 0, len(containers))

	for _, c := range containers {
		items = append(items, debt.BuildFileItem(c.File, godobject.Analyze(c)))
	}

	return items
}
