package callgraph

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/debtmap/debtmap/pkg/funcid"
)

// DefaultBlastRadiusCap bounds the transitive-closure traversal performed
// by BlastRadius, per spec §4.3.
const DefaultBlastRadiusCap = 10000

// Graph is an append-only directed graph of FunctionNode vertices and
// FunctionCall edges, grounded on the arena/index-based adjacency-list
// shape of pkg/toposort.IntGraph, generalized from integer nodes to
// FunctionId-identified nodes with three lookup indices.
//
// Nodes are never removed once inserted within a run (§3 invariant).
type Graph struct {
	nodes []FunctionNode

	exactIndex  map[funcid.ExactKey]int
	fuzzyIndex  map[funcid.FuzzyKey][]int
	simpleIndex map[funcid.SimpleKey][]int

	// callerAdj[i] = set of node indices i calls (callees).
	// calleeAdj[i] = set of node indices that call i (callers). Transpose
	// of callerAdj, maintained together so both lookups are O(1).
	callerAdj []map[int]struct{}
	calleeAdj []map[int]struct{}

	edgeKeys map[dedupKey]struct{}
	edges    []FunctionCall
}

// New creates an empty call graph.
func New() *Graph {
	return &Graph{
		exactIndex:  make(map[funcid.ExactKey]int),
		fuzzyIndex:  make(map[funcid.FuzzyKey][]int),
		simpleIndex: make(map[funcid.SimpleKey][]int),
		edgeKeys:    make(map[dedupKey]struct{}),
	}
}

// AddFunction inserts node, updating all three indices. Inserting a node
// whose ExactKey already exists is a no-op (idempotent), per spec §4.3.
func (g *Graph) AddFunction(node FunctionNode) int {
	key := node.ID.Exact()
	if idx, ok := g.exactIndex[key]; ok {
		return idx
	}

	idx := len(g.nodes)
	g.nodes = append(g.nodes, node)
	g.callerAdj = append(g.callerAdj, make(map[int]struct{}))
	g.calleeAdj = append(g.calleeAdj, make(map[int]struct{}))

	g.exactIndex[key] = idx
	g.fuzzyIndex[node.ID.Fuzzy()] = append(g.fuzzyIndex[node.ID.Fuzzy()], idx)
	g.simpleIndex[node.ID.Simple()] = append(g.simpleIndex[node.ID.Simple()], idx)

	return idx
}

// AddEdge inserts a resolved call. Both endpoints must already be present
// as nodes (an error if not); duplicate (caller, callee, call_site_type)
// edges are silently deduplicated.
func (g *Graph) AddEdge(call FunctionCall) error {
	callerIdx, ok := g.exactIndex[call.Caller.Exact()]
	if !ok {
		return fmt.Errorf("callgraph: add edge: caller %v not present as a node", call.Caller)
	}

	calleeIdx, ok := g.exactIndex[call.Callee.Exact()]
	if !ok {
		return fmt.Errorf("callgraph: add edge: callee %v not present as a node", call.Callee)
	}

	key := call.dedupKey()
	if _, dup := g.edgeKeys[key]; dup {
		return nil
	}

	g.edgeKeys[key] = struct{}{}
	g.edges = append(g.edges, call)
	g.callerAdj[callerIdx][calleeIdx] = struct{}{}
	g.calleeAdj[calleeIdx][callerIdx] = struct{}{}

	return nil
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Nodes returns all nodes, in insertion order.
func (g *Graph) Nodes() []FunctionNode {
	out := make([]FunctionNode, len(g.nodes))
	copy(out, g.nodes)

	return out
}

// Edges returns all edges, in insertion order.
func (g *Graph) Edges() []FunctionCall {
	out := make([]FunctionCall, len(g.edges))
	copy(out, g.edges)

	return out
}

// GetCallees returns the set of functions id calls.
func (g *Graph) GetCallees(id funcid.FunctionId) []funcid.FunctionId {
	idx, ok := g.exactIndex[id.Exact()]
	if !ok {
		return nil
	}

	return g.idsOf(g.callerAdj[idx])
}

// GetCallers returns the set of functions that call id.
func (g *Graph) GetCallers(id funcid.FunctionId) []funcid.FunctionId {
	idx, ok := g.exactIndex[id.Exact()]
	if !ok {
		return nil
	}

	return g.idsOf(g.calleeAdj[idx])
}

func (g *Graph) idsOf(set map[int]struct{}) []funcid.FunctionId {
	out := make([]funcid.FunctionId, 0, len(set))
	for idx := range set {
		out = append(out, g.nodes[idx].ID)
	}

	return out
}

// FindFunction runs the three-strategy lookup chain against the graph.
func (g *Graph) FindFunction(query funcid.FunctionId, hint funcid.Query) (funcid.Match, bool) {
	return funcid.Lookup(graphIndex{g}, query, hint)
}

// MarkAsEntryPoint sets the entry-point role annotation on id, if present.
func (g *Graph) MarkAsEntryPoint(id funcid.FunctionId) {
	if idx, ok := g.exactIndex[id.Exact()]; ok {
		g.nodes[idx].Metadata.IsEntryPoint = true
		g.nodes[idx].Role = RoleMain
	}
}

// MarkAsTraitEntryPoint sets the trait-entry-point role annotation on id,
// if present. traitName is currently recorded only via the role; callers
// needing the trait name should consult the extractor's trait registry.
func (g *Graph) MarkAsTraitEntryPoint(id funcid.FunctionId, traitName string) {
	if idx, ok := g.exactIndex[id.Exact()]; ok {
		g.nodes[idx].Metadata.IsTraitEntryPoint = true
		g.nodes[idx].Role = RoleTraitEntryPoint
		_ = traitName
	}
}

// Merge unions other into g: all nodes and edges are preserved, duplicates
// are deduplicated. Per spec §3, merge is associative and commutative up
// to edge order.
func (g *Graph) Merge(other *Graph) error {
	for _, node := range other.nodes {
		g.AddFunction(node)
	}

	for _, edge := range other.edges {
		if err := g.AddEdge(edge); err != nil {
			return fmt.Errorf("callgraph: merge: %w", err)
		}
	}

	return nil
}

// BlastRadius returns the size of the transitive closure of id's downstream
// callees, capped at cap (DefaultBlastRadiusCap if cap <= 0). Traversal
// uses a Roaring bitmap for compact visited-set membership, grounded on
// the teacher pack's HierarchicalBitSet reachability idiom.
func (g *Graph) BlastRadius(id funcid.FunctionId, cap int) int {
	if cap <= 0 {
		cap = DefaultBlastRadiusCap
	}

	startIdx, ok := g.exactIndex[id.Exact()]
	if !ok {
		return 0
	}

	visited := roaring.New()
	visited.Add(uint32(startIdx))

	queue := []int{startIdx}

	for len(queue) > 0 && int(visited.GetCardinality())-1 < cap {
		current := queue[0]
		queue = queue[1:]

		for callee := range g.callerAdj[current] {
			if visited.Contains(uint32(callee)) {
				continue
			}

			visited.Add(uint32(callee))
			queue = append(queue, callee)

			if int(visited.GetCardinality())-1 >= cap {
				break
			}
		}
	}

	size := int(visited.GetCardinality()) - 1 // exclude the start node itself
	if size > cap {
		size = cap
	}

	if size < 0 {
		size = 0
	}

	return size
}

// graphIndex adapts *Graph to funcid.Index for the lookup chain.
type graphIndex struct{ g *Graph }

func (gi graphIndex) ByExact(key funcid.ExactKey) (funcid.FunctionId, bool) {
	idx, ok := gi.g.exactIndex[key]
	if !ok {
		return funcid.FunctionId{}, false
	}

	return gi.g.nodes[idx].ID, true
}

func (gi graphIndex) ByFuzzy(key funcid.FuzzyKey) []funcid.FunctionId {
	return gi.g.idList(gi.g.fuzzyIndex[key])
}

func (gi graphIndex) BySimple(key funcid.SimpleKey) []funcid.FunctionId {
	return gi.g.idList(gi.g.simpleIndex[key])
}

func (g *Graph) idList(indices []int) []funcid.FunctionId {
	out := make([]funcid.FunctionId, len(indices))
	for i, idx := range indices {
		out[i] = g.nodes[idx].ID
	}

	return out
}
