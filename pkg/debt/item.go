// Package debt assembles the final UnifiedDebtItem output atom from a
// scored function or file and ranks the resulting set, per spec §3's
// lifecycle steps 8-9.
package debt

import (
	"fmt"
	"sort"

	"github.com/debtmap/debtmap/pkg/callgraph"
	"github.com/debtmap/debtmap/pkg/complexity"
	debtcontext "github.com/debtmap/debtmap/pkg/context"
	"github.com/debtmap/debtmap/pkg/coverage"
	"github.com/debtmap/debtmap/pkg/funcid"
	"github.com/debtmap/debtmap/pkg/godobject"
	"github.com/debtmap/debtmap/pkg/score"
	"github.com/debtmap/debtmap/pkg/scoring"
)

// Kind discriminates whether an item describes a function or a whole file.
type Kind int

const (
	// KindFunction is a per-function debt item.
	KindFunction Kind = iota
	// KindFile is a per-file (god-object) debt item.
	KindFile
)

// Category is a coarse classification of why an item ranks where it does,
// used by formatters to group output.
type Category string

const (
	CategoryComplexityHotspot Category = "complexity_hotspot"
	CategoryCoverageGap       Category = "coverage_gap"
	CategoryGodObject         Category = "god_object"
	CategoryDeadCode          Category = "dead_code"
	CategoryOrchestration     Category = "orchestration"
	CategoryGeneral           Category = "general"
)

// Location pinpoints where an item lives in source.
type Location struct {
	File     string
	Line     int
	Function string // empty for KindFile items
}

// Dependencies is the upstream/downstream call-graph neighborhood of a
// function item, capped per spec §6 ("upstream_callers[<=10],
// downstream_callees[<=10]").
type Dependencies struct {
	UpstreamCallers   []funcid.FunctionId
	DownstreamCallees []funcid.FunctionId
	UpstreamCount     int
	DownstreamCount   int
	BlastRadius       int
	OnCriticalPath    bool
}

const maxListedDependencies = 10

// Item is the UnifiedDebtItem output atom of spec §3.
type Item struct {
	ID   funcid.FunctionId
	Kind Kind

	Location     Location
	UnifiedScore scoring.UnifiedScore

	Complexity complexity.Metrics
	Coverage   *coverage.Entry

	Dependencies Dependencies

	Purity           *callgraph.PurityLevel
	DetectedPattern  *scoring.PatternKind
	ContextualRisk   *float64
	FileContext      *debtcontext.Details
	Recommendation   string
	Category         Category
}

// BuildFunctionItem assembles a KindFunction Item for node, given its
// already-computed unified score, complexity metrics, and the call graph
// it belongs to (used to derive Dependencies). cov and ctxMap may be nil.
func BuildFunctionItem(node callgraph.FunctionNode, graph *callgraph.Graph, unified scoring.UnifiedScore, metrics complexity.Metrics, cov *coverage.Entry, ctxMap debtcontext.Map, blastRadiusCap int) Item {
	deps := buildDependencies(node.ID, graph, ctxMap, blastRadiusCap)

	item := Item{
		ID:   node.ID,
		Kind: KindFunction,
		Location: Location{
			File:     node.ID.File,
			Line:     node.ID.Line,
			Function: node.ID.Name,
		},
		UnifiedScore: unified,
		Complexity:   metrics,
		Coverage:     cov,
		Dependencies: deps,
		Purity:       purityOf(node),
	}

	if ft, ok := ctxMap["file_type"]; ok {
		item.FileContext = &ft
	}

	item.Category = categorize(item)
	item.Recommendation = recommend(item)

	return item
}

// BuildFileItem assembles a KindFile Item from a god-object analysis of
// one container, so file-level and function-level items rank together
// through the same FinalScore axis (spec §4.11's GodObjectScore is
// already on the 0-100 scale). An analysis below the god-object
// threshold still produces an Item (its FinalScore simply ranks low),
// so callers can decide to filter rather than having the decision made
// here.
func BuildFileItem(file string, analysis godobject.Analysis) Item {
	return Item{
		Kind: KindFile,
		Location: Location{
			File: file,
		},
		UnifiedScore: scoring.UnifiedScore{
			FinalScore: score.New0To100(analysis.GodObjectScore),
		},
		Category:       CategoryGodObject,
		Recommendation: fileRecommendation(analysis),
	}
}

func fileRecommendation(analysis godobject.Analysis) string {
	if !analysis.IsGodObject {
		return "no specific action indicated"
	}

	if analysis.Recommendation != "" {
		return analysis.Recommendation
	}

	return fmt.Sprintf("%s accumulates %d responsibilities across %d methods; split by cluster", analysis.Container, analysis.ResponsibilityCount, analysis.MethodCount)
}

func purityOf(node callgraph.FunctionNode) *callgraph.PurityLevel {
	if node.Metadata.Purity == callgraph.PurityUnknown {
		return nil
	}

	p := node.Metadata.Purity

	return &p
}

func buildDependencies(id funcid.FunctionId, graph *callgraph.Graph, ctxMap debtcontext.Map, blastRadiusCap int) Dependencies {
	var deps Dependencies

	if graph == nil {
		return deps
	}

	callers := graph.GetCallers(id)
	callees := graph.GetCallees(id)

	deps.UpstreamCount = len(callers)
	deps.DownstreamCount = len(callees)
	deps.UpstreamCallers = capList(callers, maxListedDependencies)
	deps.DownstreamCallees = capList(callees, maxListedDependencies)

	if blastRadiusCap > 0 {
		deps.BlastRadius = graph.BlastRadius(id, blastRadiusCap)
	}

	if ctxMap != nil {
		if cp, ok := ctxMap["critical_path"]; ok {
			deps.OnCriticalPath = cp.OnCriticalPath
		}
	}

	return deps
}

func capList(ids []funcid.FunctionId, max int) []funcid.FunctionId {
	if len(ids) <= max {
		return ids
	}

	return ids[:max]
}

// categorize derives a coarse Category from item's signals; this never
// inspects config, only the item's own already-computed fields.
func categorize(item Item) Category {
	switch {
	case item.Dependencies.UpstreamCount == 0 && item.Dependencies.DownstreamCount > 0:
		return CategoryDeadCode
	case item.Coverage != nil && item.Coverage.CoveragePercentage < 50:
		return CategoryCoverageGap
	case item.Complexity.Cyclomatic >= 10 || item.Complexity.Cognitive >= 15:
		return CategoryComplexityHotspot
	case item.Dependencies.DownstreamCount >= 5 && item.Complexity.Cyclomatic < 5:
		return CategoryOrchestration
	default:
		return CategoryGeneral
	}
}

// recommend produces a short, category-specific recommendation string.
func recommend(item Item) string {
	switch item.Category {
	case CategoryDeadCode:
		return "no callers found; verify this is reachable and remove if not"
	case CategoryCoverageGap:
		return "add tests to close the coverage gap before further changes"
	case CategoryComplexityHotspot:
		return "extract smaller functions to reduce branching complexity"
	case CategoryOrchestration:
		return "low complexity but broad fan-out; keep as a thin coordination layer"
	default:
		return "no specific action indicated"
	}
}

// Rank sorts items by final_score descending, with ties broken by
// (file, line, name) lexicographically, per spec §5's ordering guarantee.
func Rank(items []Item) []Item {
	ranked := make([]Item, len(items))
	copy(ranked, items)

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]

		if a.UnifiedScore.FinalScore.Value() != b.UnifiedScore.FinalScore.Value() {
			return a.UnifiedScore.FinalScore.Value() > b.UnifiedScore.FinalScore.Value()
		}

		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}

		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}

		return a.Location.Function < b.Location.Function
	})

	return ranked
}
