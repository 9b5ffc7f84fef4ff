package analysis

import (
	"fmt"

	"github.com/debtmap/debtmap/pkg/debt"
)

// defaultContextBudget is the default total line budget a context
// suggestion may spend across its primary scope and all related ranges
// combined, per spec §6.
const defaultContextBudget = 500

// minEstimatedLines and cyclomaticLineFactor turn a function's cyclomatic
// complexity into a rough line-count estimate for its primary scope: the
// assembled Item carries complexity metrics and a start line, never an
// end line, since no component downstream of extraction tracks function
// extent. This is a deliberately coarse proxy, good enough to budget
// related ranges against, not a claim about the function's real length.
const (
	minEstimatedLines    = 10
	cyclomaticLineFactor = 4
)

// relatedWindowLines is the nominal span attributed to each related range
// (a caller or callee's own declaration), also a proxy rather than a real
// extent.
const relatedWindowLines = 10

// Range is a primary-scope or related span of one file, line-inclusive.
type Range struct {
	File      string
	StartLine int
	EndLine   int
}

func (r Range) lines() int {
	n := r.EndLine - r.StartLine + 1
	if n < 1 {
		return 1
	}

	return n
}

// ContextSuggestion is the serialization-ready context suggestion of spec
// §6: a primary scope (the item's own function) plus related ranges
// (its nearest callers and callees), bounded by a total line budget.
type ContextSuggestion struct {
	Primary Range
	Related []Range
}

// buildContextSuggestions assembles one ContextSuggestion per
// KindFunction item, keyed by "file:function" so callers can look a
// suggestion up by the same identity debt.Item.Location carries.
func buildContextSuggestions(items []debt.Item, budget int) map[string]ContextSuggestion {
	out := make(map[string]ContextSuggestion, len(items))

	for _, item := range items {
		if item.Kind != debt.KindFunction {
			continue
		}

		out[contextKey(item)] = buildOneSuggestion(item, budget)
	}

	return out
}

func contextKey(item debt.Item) string {
	return fmt.Sprintf("%s:%s", item.Location.File, item.Location.Function)
}

func buildOneSuggestion(item debt.Item, budget int) ContextSuggestion {
	estimated := minEstimatedLines + item.Complexity.Cyclomatic*cyclomaticLineFactor

	primary := Range{
		File:      item.Location.File,
		StartLine: item.Location.Line,
		EndLine:   item.Location.Line + estimated,
	}

	remaining := budget - primary.lines()

	var related []Range

	for _, id := range item.Dependencies.UpstreamCallers {
		r, ok := takeRelatedRange(id.File, id.Line, &remaining)
		if !ok {
			break
		}

		related = append(related, r)
	}

	for _, id := range item.Dependencies.DownstreamCallees {
		r, ok := takeRelatedRange(id.File, id.Line, &remaining)
		if !ok {
			break
		}

		related = append(related, r)
	}

	return ContextSuggestion{Primary: primary, Related: related}
}

func takeRelatedRange(file string, line int, remaining *int) (Range, bool) {
	r := Range{File: file, StartLine: line, EndLine: line + relatedWindowLines}

	cost := r.lines()
	if cost > *remaining {
		return Range{}, false
	}

	*remaining -= cost

	return r, true
}
