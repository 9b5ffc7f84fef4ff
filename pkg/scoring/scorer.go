// Package scoring combines complexity, coverage, dependency, purity,
// refactorability, pattern, role, and context signals into a single
// Score0To100 per function, per spec §4.9.
package scoring

import (
	"math"

	"github.com/debtmap/debtmap/pkg/callgraph"
	debtcontext "github.com/debtmap/debtmap/pkg/context"
	"github.com/debtmap/debtmap/pkg/coverage"
	"github.com/debtmap/debtmap/pkg/score"
)

// DefaultBaseScale calibrates the factor product onto the 0-100 scale so
// that a 95th-percentile item on a representative corpus lands near 90.
// See DESIGN.md Open Question 1.
const DefaultBaseScale = 40.0

// DependencyMidRange is used for dependency_factor when a node is an
// entry point or constructor with no direct callers: rather than the
// full no-caller penalty, such nodes receive a configured mid-range
// value (spec §4.9).
const DependencyMidRange = 1.5

// UnifiedScore is the full factor breakdown behind one FinalScore,
// retained for explainability (spec §4.9: "every factor present is
// attached... for explainability").
type UnifiedScore struct {
	FinalScore score.Score0To100
	BaseScore  *score.Score0To100

	ComplexityFactor  float64
	CoverageFactor    float64
	DependencyFactor  float64
	RoleMultiplier    float64
	PurityFactor      *float64
	RefactorabilityFactor *float64
	PatternFactor     *float64
	ArchRoleFactor    *float64
	ContextMultiplier *float64
}

// RefactorabilityInputs carries the data-flow signals behind
// refactorability_factor, §4.9: (1 + dead_store_ratio) * (1 - 0.5 *
// escape_ratio).
type RefactorabilityInputs struct {
	DeadStoreRatio float64
	EscapeRatio    float64
}

// PatternKind discriminates the detected-pattern factor inputs.
type PatternKind int

const (
	// PatternUnknown means no pattern classification was performed.
	PatternUnknown PatternKind = iota
	// PatternDataFlow is a data-flow/pipeline-shaped function (factor 0.7).
	PatternDataFlow
	// PatternBusinessLogic is ordinary business logic (factor 1.0).
	PatternBusinessLogic
	// PatternMixed is a mix of the two (factor 0.85).
	PatternMixed
)

// ArchRole classifies a function's architectural purpose within the
// codebase, distinct from callgraph.FunctionRole (which classifies the
// function *declaration*, e.g. constructor or trait impl). ArchRole is an
// analysis-derived judgment of what the function's body actually does,
// per spec §4.9's role_multiplier table.
type ArchRole int

const (
	// ArchRoleUnknown means no architectural-role classification was
	// performed or the signals were inconclusive; neutral factor.
	ArchRoleUnknown ArchRole = iota
	// ArchRolePureLogic is a side-effect-free computation at the heart of
	// the domain; debt here is the highest-leverage to fix (factor 1.3).
	ArchRolePureLogic
	// ArchRoleEntryPoint is a top-level handler or command dispatch point
	// (factor 1.2).
	ArchRoleEntryPoint
	// ArchRoleOrchestrator coordinates calls to other functions without
	// much logic of its own (factor 1.1).
	ArchRoleOrchestrator
	// ArchRolePatternMatch is a dispatch/branch table with little
	// independent logic per arm (factor 0.6).
	ArchRolePatternMatch
	// ArchRoleIOWrapper is a thin wrapper around an I/O call; bugs here
	// are usually in the callee, not the wrapper (factor 0.5).
	ArchRoleIOWrapper
)

// Inputs bundles everything Score needs for one function, beyond
// the graph/coverage/context it is given directly.
type Inputs struct {
	Complexity Complexity

	// HasCoverage distinguishes "0% covered" from "no coverage data was
	// supplied"; in the latter case coverage_factor is 1.0 (neutral).
	HasCoverage    bool
	CoverageRatio  float64 // 0..1, only meaningful when HasCoverage

	// Purity/refactorability/pattern are *optional* signals (nil means
	// "unknown"); when unknown their factor contributes neutrally (1.0)
	// to the final product but is omitted (nil) from the returned score.
	Purity          *callgraph.PurityLevel
	Refactorability *RefactorabilityInputs
	Pattern         *PatternKind
	ArchRole        *ArchRole

	BaseScale float64 // 0 means DefaultBaseScale
}

// Complexity is the subset of complexity signals the scorer consumes.
type Complexity struct {
	Cyclomatic float64
	Cognitive  float64
}

// Score computes the UnifiedScore for node within graph, optionally
// informed by a coverage index and a context Map. It is a pure function:
// the same inputs always produce the same output (spec §8 determinism).
func Score(node callgraph.FunctionNode, graph *callgraph.Graph, covIdx *coverage.Index, ctxMap debtcontext.Map, in Inputs) UnifiedScore {
	complexityFactor := complexityFactor(in.Complexity)
	coverageFactor := coverageFactorOf(in.HasCoverage, in.CoverageRatio, covIdx, node)
	dependencyFactor := dependencyFactor(node, graph)
	roleMultiplier := roleMultiplierOf(node.Role)

	base := complexityFactor * coverageFactor * dependencyFactor * roleMultiplier

	final := base

	var purityFactorPtr *float64

	if in.Purity != nil {
		pf := purityFactor(*in.Purity)
		purityFactorPtr = &pf
		final *= pf
	}

	var refactorFactorPtr *float64

	if in.Refactorability != nil {
		rf := refactorabilityFactor(*in.Refactorability)
		refactorFactorPtr = &rf
		final *= rf
	}

	var patternFactorPtr *float64

	if in.Pattern != nil {
		pf := patternFactor(*in.Pattern)
		patternFactorPtr = &pf
		final *= pf
	}

	var archRoleFactorPtr *float64

	if in.ArchRole != nil {
		af := archRoleFactor(*in.ArchRole)
		archRoleFactorPtr = &af
		final *= af
	}

	var contextMultiplierPtr *float64

	if ctxMap != nil {
		cm := contextMultiplier(ctxMap)
		contextMultiplierPtr = &cm
		final *= cm
	}

	baseScale := in.BaseScale
	if baseScale <= 0 {
		baseScale = DefaultBaseScale
	}

	baseScore := score.New0To100(base * baseScale)
	finalScore := score.New0To100(final * baseScale)

	return UnifiedScore{
		FinalScore:            finalScore,
		BaseScore:             &baseScore,
		ComplexityFactor:      complexityFactor,
		CoverageFactor:        coverageFactor,
		DependencyFactor:      dependencyFactor,
		RoleMultiplier:        roleMultiplier,
		PurityFactor:          purityFactorPtr,
		RefactorabilityFactor: refactorFactorPtr,
		PatternFactor:         patternFactorPtr,
		ArchRoleFactor:        archRoleFactorPtr,
		ContextMultiplier:     contextMultiplierPtr,
	}
}

// complexityFactor is a monotone function of cyclomatic and cognitive
// complexity, always >= 1.
func complexityFactor(c Complexity) float64 {
	return 1.0 + math.Log1p(c.Cyclomatic+c.Cognitive)/4.0
}

// coverageFactorOf computes 1.0 + gap^1.5 where gap = 1 - coverage_ratio;
// 1.0 when no coverage data is available at all.
func coverageFactorOf(hasCoverage bool, ratio float64, covIdx *coverage.Index, node callgraph.FunctionNode) float64 {
	if covIdx != nil {
		if entry, ok := covIdx.Lookup(node.ID.File, node.ID.Name); ok {
			gap := 1.0 - entry.CoveragePercentage/100.0

			return 1.0 + math.Pow(math.Max(0, gap), 1.5)
		}
	}

	if !hasCoverage {
		return 1.0
	}

	gap := 1.0 - ratio

	return 1.0 + math.Pow(math.Max(0, gap), 1.5)
}

// dependencyFactor is a function of upstream caller count. Entry points
// and constructors with no direct callers use DependencyMidRange rather
// than the full no-caller penalty (spec §4.9).
func dependencyFactor(node callgraph.FunctionNode, graph *callgraph.Graph) float64 {
	callerCount := 0
	if graph != nil {
		callerCount = len(graph.GetCallers(node.ID))
	}

	if callerCount == 0 {
		if isEntryPointOrConstructor(node.Role) {
			return DependencyMidRange
		}

		return 1.0
	}

	return 1.0 + math.Log1p(float64(callerCount))/3.0
}

// isEntryPointOrConstructor reports whether r is one of the roles that
// legitimately has no direct callers by construction (an entry point or
// a constructor/trait-entry-point invoked only through dispatch).
func isEntryPointOrConstructor(r callgraph.FunctionRole) bool {
	return r == callgraph.RoleMain || r == callgraph.RoleConstructor || r == callgraph.RoleTraitEntryPoint
}

// roleMultiplierOf maps FunctionRole to its scoring multiplier, per spec §4.9.
func roleMultiplierOf(role callgraph.FunctionRole) float64 {
	switch role {
	case callgraph.RoleMain, callgraph.RoleTraitEntryPoint:
		return 1.2
	case callgraph.RoleConstructor:
		return 1.1
	case callgraph.RoleNormal:
		return 1.0
	default:
		return 1.0
	}
}

// purityFactor maps PurityLevel to its [0,1] scoring factor, per spec §4.9.
func purityFactor(p callgraph.PurityLevel) float64 {
	switch p {
	case callgraph.StrictlyPure:
		return 0.0
	case callgraph.LocallyPure:
		return 0.3
	case callgraph.IOIsolated:
		return 0.6
	case callgraph.IOMixed:
		return 0.9
	case callgraph.Impure:
		return 1.0
	default:
		return 1.0
	}
}

// refactorabilityFactor implements (1 + dead_store_ratio) * (1 - 0.5 *
// escape_ratio), per spec §4.9.
func refactorabilityFactor(in RefactorabilityInputs) float64 {
	return (1 + in.DeadStoreRatio) * (1 - 0.5*in.EscapeRatio)
}

// patternFactor maps PatternKind to its scoring factor, per spec §4.9.
func patternFactor(p PatternKind) float64 {
	switch p {
	case PatternDataFlow:
		return 0.7
	case PatternBusinessLogic:
		return 1.0
	case PatternMixed:
		return 0.85
	default:
		return 1.0
	}
}

// archRoleFactor maps ArchRole to its scoring multiplier, per spec §4.9's
// role_multiplier table.
func archRoleFactor(r ArchRole) float64 {
	switch r {
	case ArchRolePureLogic:
		return 1.3
	case ArchRoleEntryPoint:
		return 1.2
	case ArchRoleOrchestrator:
		return 1.1
	case ArchRolePatternMatch:
		return 0.6
	case ArchRoleIOWrapper:
		return 0.5
	default:
		return 1.0
	}
}

// contextMultiplier combines the provider Details present in ctxMap into
// a single risk multiplier: 1.0 is neutral, >1 increases risk, <1
// decreases it (e.g. test files are dampened).
func contextMultiplier(ctxMap debtcontext.Map) float64 {
	multiplier := 1.0

	if ft, ok := ctxMap["file_type"]; ok && ft.FileKind == debtcontext.FileKindTest {
		multiplier *= 0.3
	}

	if cp, ok := ctxMap["critical_path"]; ok && cp.OnCriticalPath {
		multiplier *= 1.0 + 0.05*float64(cp.PathLength)
	}

	if dep, ok := ctxMap["dependency"]; ok {
		multiplier *= 1.0 + 0.2*dep.Instability
	}

	if hist, ok := ctxMap["git_history"]; ok {
		multiplier *= 1.0 + 0.1*hist.BugDensity
	}

	return multiplier
}
