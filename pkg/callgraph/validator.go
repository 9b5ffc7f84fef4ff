package callgraph

import "github.com/debtmap/debtmap/pkg/funcid"

// StructuralClass is the per-node classification produced by the validator.
type StructuralClass int

const (
	// ClassNormal has both callers and callees; no record is emitted.
	ClassNormal StructuralClass = iota
	// ClassEntryPoint is informational, never an issue.
	ClassEntryPoint
	// ClassRecursive is informational, never an issue.
	ClassRecursive
	// ClassLeafFunction has callers but no callees; informational.
	ClassLeafFunction
	// ClassUnreachableFunction has callees but no callers; dead code.
	ClassUnreachableFunction
	// ClassIsolatedFunction has neither callers nor callees; an orphan.
	ClassIsolatedFunction
)

// StructuralIssue is a validator finding attached to one node.
type StructuralIssue struct {
	ID    funcid.FunctionId
	Class StructuralClass
}

// DanglingEdgeIssue records an edge whose endpoint is missing from the graph
// (a bug in extraction).
type DanglingEdgeIssue struct {
	Call FunctionCall
}

// DuplicateNodeIssue records a duplicate node discovered after merge (keyed
// by ExactKey).
type DuplicateNodeIssue struct {
	ID funcid.FunctionId
}

// ValidationStatistics tallies the node classifications of one run.
type ValidationStatistics struct {
	Total              int
	EntryPoints        int
	LeafFunctions      int
	UnreachableFunctions int
	IsolatedFunctions  int
	RecursiveFunctions int
	TraitEntryPoints   int
}

// ValidationReport is the full output of CallGraphValidator.Validate.
type ValidationReport struct {
	HealthScore      float64
	Statistics       ValidationStatistics
	StructuralIssues []StructuralIssue
	DanglingEdges    []DanglingEdgeIssue
	Duplicates       []DuplicateNodeIssue
	Warnings         int
}

// Validator classifies every node in a Graph exactly once and computes a
// weighted health score, per spec §4.6.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator { return &Validator{} }

// Validate runs the full classification and health-score computation over graph.
func (v *Validator) Validate(graph *Graph) ValidationReport {
	report := ValidationReport{}
	report.Statistics.Total = graph.NodeCount()
	report.Duplicates = v.findDuplicates(graph)
	report.DanglingEdges = v.findDanglingEdges(graph)

	for _, node := range graph.nodes {
		hasCallers := len(graph.GetCallers(node.ID)) > 0
		hasCallees := len(graph.GetCallees(node.ID)) > 0
		isEntryPoint := node.Metadata.IsEntryPoint || node.Role == RoleMain
		isSelfReferential := isSelfReferentialNode(graph, node.ID)

		if node.Metadata.IsTraitEntryPoint {
			report.Statistics.TraitEntryPoints++
		}

		class, isIssue := classify(hasCallers, hasCallees, isEntryPoint, isSelfReferential)
		tallyStatistics(&report.Statistics, class)

		if isIssue {
			report.StructuralIssues = append(report.StructuralIssues, StructuralIssue{ID: node.ID, Class: class})
		}
	}

	report.HealthScore = computeHealthScore(report)

	return report
}

// classify implements the decision table of spec §4.6 exactly once per node.
func classify(hasCallers, hasCallees, isEntryPoint, isSelfReferential bool) (StructuralClass, bool) {
	switch {
	case isEntryPoint:
		return ClassEntryPoint, false
	case isSelfReferential:
		return ClassRecursive, false
	case hasCallers && !hasCallees:
		return ClassLeafFunction, false
	case !hasCallers && hasCallees:
		return ClassUnreachableFunction, true
	case !hasCallers && !hasCallees:
		return ClassIsolatedFunction, true
	default:
		return ClassNormal, false
	}
}

func tallyStatistics(stats *ValidationStatistics, class StructuralClass) {
	switch class {
	case ClassEntryPoint:
		stats.EntryPoints++
	case ClassRecursive:
		stats.RecursiveFunctions++
	case ClassLeafFunction:
		stats.LeafFunctions++
	case ClassUnreachableFunction:
		stats.UnreachableFunctions++
	case ClassIsolatedFunction:
		stats.IsolatedFunctions++
	case ClassNormal:
		// No record; not tallied beyond Total.
	}
}

func isSelfReferentialNode(graph *Graph, id funcid.FunctionId) bool {
	for _, callee := range graph.GetCallees(id) {
		if callee.Exact() == id.Exact() {
			return true
		}
	}

	return false
}

func (v *Validator) findDuplicates(graph *Graph) []DuplicateNodeIssue {
	seen := make(map[funcid.ExactKey]int)

	var dups []DuplicateNodeIssue

	for _, node := range graph.nodes {
		key := node.ID.Exact()
		seen[key]++

		if seen[key] == 2 {
			dups = append(dups, DuplicateNodeIssue{ID: node.ID})
		}
	}

	return dups
}

func (v *Validator) findDanglingEdges(graph *Graph) []DanglingEdgeIssue {
	var dangling []DanglingEdgeIssue

	for _, edge := range graph.edges {
		_, callerOK := graph.exactIndex[edge.Caller.Exact()]
		_, calleeOK := graph.exactIndex[edge.Callee.Exact()]

		if !callerOK || !calleeOK {
			dangling = append(dangling, DanglingEdgeIssue{Call: edge})
		}
	}

	return dangling
}

// Health score weights, per spec §4.6.
const (
	weightDanglingEdge = 10.0
	weightDuplicate    = 5.0
	weightUnreachable  = 1.0
	weightIsolated     = 0.5
	weightWarning      = 2.0
)

func computeHealthScore(report ValidationReport) float64 {
	health := 100.0
	health -= weightDanglingEdge * float64(len(report.DanglingEdges))
	health -= weightDuplicate * float64(len(report.Duplicates))
	health -= weightUnreachable * float64(report.Statistics.UnreachableFunctions)
	health -= weightIsolated * float64(report.Statistics.IsolatedFunctions)
	health -= weightWarning * float64(report.Warnings)

	if health < 0 {
		health = 0
	}

	if health > 100 {
		health = 100
	}

	return health
}
