package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/debtmap/debtmap/pkg/callgraph"
	"github.com/debtmap/debtmap/pkg/funcid"
	"github.com/debtmap/debtmap/pkg/scoring"
)

func TestScore_PureFunctionScoresZero(t *testing.T) {
	node := callgraph.FunctionNode{
		ID:   funcid.FunctionId{File: "a.rs", Name: "pure_fn"},
		Role: callgraph.RoleNormal,
	}

	graph := callgraph.New()
	graph.AddFunction(node)

	pure := callgraph.StrictlyPure

	result := scoring.Score(node, graph, nil, nil, scoring.Inputs{
		Complexity: scoring.Complexity{Cyclomatic: 10, Cognitive: 10},
		Purity:     &pure,
	})

	// purity_factor == 0.0 must force final_score == 0 regardless of the
	// other factors (spec §8 quantified invariant).
	assert.InDelta(t, 0.0, result.FinalScore.Value(), 1e-9)
}

func TestScore_NoCallersEntryPointUsesMidRange(t *testing.T) {
	node := callgraph.FunctionNode{
		ID:   funcid.FunctionId{File: "a.rs", Name: "main"},
		Role: callgraph.RoleMain,
	}

	graph := callgraph.New()
	graph.AddFunction(node)

	result := scoring.Score(node, graph, nil, nil, scoring.Inputs{})
	assert.InDelta(t, scoring.DependencyMidRange, result.DependencyFactor, 1e-9)
}

func TestScore_FactorsAttachedWhenPresent(t *testing.T) {
	node := callgraph.FunctionNode{ID: funcid.FunctionId{File: "a.rs", Name: "f"}}
	graph := callgraph.New()
	graph.AddFunction(node)

	pattern := scoring.PatternBusinessLogic
	result := scoring.Score(node, graph, nil, nil, scoring.Inputs{Pattern: &pattern})

	if result.PatternFactor == nil {
		t.Fatal("expected PatternFactor to be attached")
	}

	assert.InDelta(t, 1.0, *result.PatternFactor, 1e-9)
	assert.Nil(t, result.PurityFactor)
}

func TestScore_ArchRolePureLogicOutweighsIOWrapper(t *testing.T) {
	node := callgraph.FunctionNode{ID: funcid.FunctionId{File: "a.rs", Name: "f"}}
	graph := callgraph.New()
	graph.AddFunction(node)

	pure := scoring.ArchRolePureLogic
	wrapper := scoring.ArchRoleIOWrapper

	pureResult := scoring.Score(node, graph, nil, nil, scoring.Inputs{ArchRole: &pure})
	wrapperResult := scoring.Score(node, graph, nil, nil, scoring.Inputs{ArchRole: &wrapper})

	assert.Greater(t, pureResult.FinalScore.Value(), wrapperResult.FinalScore.Value())
	assert.InDelta(t, 1.3, *pureResult.ArchRoleFactor, 1e-9)
	assert.InDelta(t, 0.5, *wrapperResult.ArchRoleFactor, 1e-9)
}

func TestScore_Deterministic(t *testing.T) {
	node := callgraph.FunctionNode{ID: funcid.FunctionId{File: "a.rs", Name: "f"}}
	graph := callgraph.New()
	graph.AddFunction(node)

	in := scoring.Inputs{Complexity: scoring.Complexity{Cyclomatic: 5, Cognitive: 3}}

	first := scoring.Score(node, graph, nil, nil, in)
	second := scoring.Score(node, graph, nil, nil, in)

	assert.Equal(t, first.FinalScore.Value(), second.FinalScore.Value())
}
