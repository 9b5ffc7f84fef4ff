package orchestrator

import (
	"golang.org/x/sync/errgroup"

	"github.com/debtmap/debtmap/pkg/callgraph"
)

// resolveBatchSize bounds how many unresolved calls one errgroup worker
// matches before reporting back, balancing goroutine overhead against
// how finely the read-only candidate search is parallelized.
const resolveBatchSize = 64

// matchResult is one call's outcome from the read-only resolution pass,
// not yet applied to the graph.
type matchResult struct {
	call callgraph.UnresolvedCall
	edge callgraph.FunctionCall
	ok   bool
}

// resolve runs the candidate search for queue concurrently via errgroup
// (spec §5: "sequential in this spec but internally parallelizable over
// independent unresolved calls"), then serializes every graph.AddEdge
// call back on the calling goroutine, since the merged Graph is mutated
// only single-threaded. Calls that never find a unique candidate are
// recorded as recoverable LookupAmbiguous diagnostics, never guessed.
func (o *Orchestrator) resolve(graph *callgraph.Graph, traits *callgraph.TraitRegistry, queue []callgraph.UnresolvedCall) {
	if len(queue) == 0 {
		return
	}

	resolver := callgraph.NewResolver(graph, traits, o.cfg.Resolver)

	batches := batchCalls(queue, resolveBatchSize)
	matched := make([][]matchResult, len(batches))

	var g errgroup.Group

	for i, batch := range batches {
		i, batch := i, batch

		g.Go(func() error {
			results := make([]matchResult, len(batch))

			for j, call := range batch {
				edge, ok := resolver.ResolveMatch(call)
				results[j] = matchResult{call: call, edge: edge, ok: ok}
			}

			matched[i] = results

			return nil
		})
	}

	_ = g.Wait() // ResolveMatch never errors; every worker always returns nil.

	for _, batch := range matched {
		for _, m := range batch {
			if !m.ok {
				o.diagnostics.LookupAmbiguous(m.call.CalleeName, nil)

				continue
			}

			if err := graph.AddEdge(m.edge); err != nil {
				o.diagnostics.LookupAmbiguous(m.call.CalleeName, nil)

				continue
			}

			if m.edge.CallKind == callgraph.ViaTrait {
				resolver.ResolvedTraitMethodCount++
			}
		}
	}
}

func batchCalls(queue []callgraph.UnresolvedCall, size int) [][]callgraph.UnresolvedCall {
	var batches [][]callgraph.UnresolvedCall

	for i := 0; i < len(queue); i += size {
		end := i + size
		if end > len(queue) {
			end = len(queue)
		}

		batches = append(batches, queue[i:end])
	}

	return batches
}
