package callgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debtmap/debtmap/pkg/callgraph"
	"github.com/debtmap/debtmap/pkg/funcid"
)

func node(name string, line int) callgraph.FunctionNode {
	return callgraph.FunctionNode{ID: funcid.FunctionId{File: "a.rs", Name: name, Line: line}}
}

func TestAddFunction_Idempotent(t *testing.T) {
	g := callgraph.New()
	n := node("foo", 1)

	first := g.AddFunction(n)
	second := g.AddFunction(n)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, g.NodeCount())
}

func TestAddEdge_RequiresBothEndpoints(t *testing.T) {
	g := callgraph.New()
	a := node("a", 1)
	g.AddFunction(a)

	b := funcid.FunctionId{File: "a.rs", Name: "missing", Line: 2}
	err := g.AddEdge(callgraph.FunctionCall{Caller: a.ID, Callee: b})
	require.Error(t, err)
}

func TestAddEdge_Dedup(t *testing.T) {
	g := callgraph.New()
	a := node("a", 1)
	b := node("b", 2)
	g.AddFunction(a)
	g.AddFunction(b)

	call := callgraph.FunctionCall{Caller: a.ID, Callee: b.ID}
	require.NoError(t, g.AddEdge(call))
	require.NoError(t, g.AddEdge(call))

	assert.Len(t, g.Edges(), 1)
}

func TestGetCallersAndCallees(t *testing.T) {
	g := callgraph.New()
	a := node("a", 1)
	b := node("b", 2)
	g.AddFunction(a)
	g.AddFunction(b)
	require.NoError(t, g.AddEdge(callgraph.FunctionCall{Caller: a.ID, Callee: b.ID}))

	assert.ElementsMatch(t, []funcid.FunctionId{b.ID}, g.GetCallees(a.ID))
	assert.ElementsMatch(t, []funcid.FunctionId{a.ID}, g.GetCallers(b.ID))
}

// TestFalsePositiveElimination is scenario 1 of spec §8: a() calls
// ContextMatcher::any() (a Static site), and fifteen unrelated functions
// each call items.iter().any(...) (Instance sites with unknown receiver
// type, a std-excluded shape). get_callers(ContextMatcher::any) must
// return exactly {a}.
func TestFalsePositiveElimination(t *testing.T) {
	g := callgraph.New()
	target := node("ContextMatcher::any", 1)
	g.AddFunction(target)

	a := node("a", 2)
	g.AddFunction(a)

	registry := callgraph.NewTraitRegistry()
	resolver := callgraph.NewResolver(g, registry, callgraph.DefaultResolverConfig())

	calls := []callgraph.UnresolvedCall{
		{Caller: a.ID, CalleeName: "ContextMatcher::any", CallSiteType: callgraph.CallSiteType{Kind: callgraph.SiteStatic}},
	}

	for i := 0; i < 15; i++ {
		other := node("noise_fn", 100+i)
		g.AddFunction(other)

		calls = append(calls, callgraph.UnresolvedCall{
			Caller:       other.ID,
			CalleeName:   "any",
			CallSiteType: callgraph.CallSiteType{Kind: callgraph.SiteInstance},
		})
	}

	dropped := resolver.Resolve(calls)
	assert.Len(t, dropped, 15)

	callers := g.GetCallers(target.ID)
	require.Len(t, callers, 1)
	assert.Equal(t, a.ID, callers[0])
}

func TestBlastRadius(t *testing.T) {
	g := callgraph.New()
	a, b, c := node("a", 1), node("b", 2), node("c", 3)
	g.AddFunction(a)
	g.AddFunction(b)
	g.AddFunction(c)
	require.NoError(t, g.AddEdge(callgraph.FunctionCall{Caller: a.ID, Callee: b.ID}))
	require.NoError(t, g.AddEdge(callgraph.FunctionCall{Caller: b.ID, Callee: c.ID}))

	assert.Equal(t, 2, g.BlastRadius(a.ID, 0))
	assert.Equal(t, 1, g.BlastRadius(b.ID, 0))
	assert.Equal(t, 0, g.BlastRadius(c.ID, 0))
}

func TestBlastRadius_Cap(t *testing.T) {
	g := callgraph.New()
	root := node("root", 1)
	g.AddFunction(root)

	prev := root.ID
	for i := 0; i < 20; i++ {
		n := node("n", 10+i)
		g.AddFunction(n)
		require.NoError(t, g.AddEdge(callgraph.FunctionCall{Caller: prev, Callee: n.ID}))
		prev = n.ID
	}

	assert.Equal(t, 5, g.BlastRadius(root.ID, 5))
}

func TestMerge_PreservesAllNodesAndEdges(t *testing.T) {
	g1 := callgraph.New()
	a := node("a", 1)
	b := node("b", 2)
	g1.AddFunction(a)
	g1.AddFunction(b)
	require.NoError(t, g1.AddEdge(callgraph.FunctionCall{Caller: a.ID, Callee: b.ID}))

	g2 := callgraph.New()
	g2.AddFunction(a)
	c := node("c", 3)
	g2.AddFunction(c)
	require.NoError(t, g2.AddEdge(callgraph.FunctionCall{Caller: a.ID, Callee: c.ID}))

	require.NoError(t, g1.Merge(g2))

	assert.Equal(t, 3, g1.NodeCount())
	assert.Len(t, g1.Edges(), 2)
}
