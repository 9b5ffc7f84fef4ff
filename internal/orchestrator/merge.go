package orchestrator

import (
	"sort"

	"github.com/debtmap/debtmap/pkg/callgraph"
	"github.com/debtmap/debtmap/pkg/complexity"
	"github.com/debtmap/debtmap/pkg/funcid"
	"github.com/debtmap/debtmap/pkg/godobject"
)

// merge runs the single-threaded merge phase: every node and unresolved
// call from every file is folded into one Graph, one TraitRegistry, one
// complexity index, and one container list. Outcomes are sorted by path
// first so the merged graph never depends on the arbitrary order in
// which parallel workers finished (spec §5's ordering guarantee); the
// Graph itself is mutated only here, never concurrently (spec §5's
// "shared resources" rule).
func (o *Orchestrator) merge(outcomes []fileOutcome) (*callgraph.Graph, []callgraph.UnresolvedCall, *callgraph.TraitRegistry, map[funcid.ExactKey]complexity.Metrics, []godobject.Container) {
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].path < outcomes[j].path })

	graph := callgraph.New()
	traits := callgraph.NewTraitRegistry()
	complexityIndex := make(map[funcid.ExactKey]complexity.Metrics)

	var (
		queue      []callgraph.UnresolvedCall
		containers []godobject.Container
	)

	for _, oc := range outcomes {
		for _, node := range oc.result.Extraction.Nodes {
			graph.AddFunction(node)
		}

		queue = append(queue, oc.result.Extraction.Calls...)

		callgraph.MergeTraitRegistry(traits, oc.result.Extraction)

		for key, metrics := range oc.result.Complexity {
			complexityIndex[key] = metrics
		}

		containers = append(containers, oc.result.Containers...)
	}

	return graph, queue, traits, complexityIndex, containers
}
