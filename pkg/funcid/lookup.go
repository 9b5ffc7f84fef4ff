package funcid

// Confidence is the strength of a lookup match, carried downstream and
// recorded in diagnostics when below 1.0.
type Confidence float64

const (
	// ConfidenceExact is returned by a successful ExactKey match.
	ConfidenceExact Confidence = 1.0
	// ConfidenceFuzzy is returned by a successful FuzzyKey match.
	ConfidenceFuzzy Confidence = 0.8
	// ConfidenceNameOnly is returned by a successful SimpleKey match.
	ConfidenceNameOnly Confidence = 0.5
)

// Match pairs a resolved FunctionId with the confidence of the strategy
// that found it.
type Match struct {
	ID         FunctionId
	Confidence Confidence
}

// Index is the minimal read surface a Lookup chain needs: resolution of
// each key type against the set of known functions. CallGraph implements
// this; tests may provide a bare map-backed stub.
type Index interface {
	ByExact(ExactKey) (FunctionId, bool)
	ByFuzzy(FuzzyKey) []FunctionId
	BySimple(SimpleKey) []FunctionId
}

// Query describes the caller-side context a lookup is performed from,
// used to disambiguate multi-candidate fuzzy/name-only matches.
type Query struct {
	CallerFile   string
	CallerModule string
	Line         int
}

// Lookup resolves id against idx using the three-strategy chain: exact,
// then fuzzy, then name-only. It returns the first strategy to produce an
// unambiguous hit, or false if none does.
func Lookup(idx Index, id FunctionId, q Query) (Match, bool) {
	if hit, ok := idx.ByExact(id.Exact()); ok {
		return Match{ID: hit, Confidence: ConfidenceExact}, true
	}

	if hit, ok := fuzzyLookup(idx, id, q); ok {
		return Match{ID: hit, Confidence: ConfidenceFuzzy}, true
	}

	if hit, ok := nameOnlyLookup(idx, id, q); ok {
		return Match{ID: hit, Confidence: ConfidenceNameOnly}, true
	}

	return Match{}, false
}

// fuzzyLookup resolves on FuzzyKey. Among multiple candidates, it prefers
// the caller's module (q.CallerModule), then the smallest line distance,
// then any.
func fuzzyLookup(idx Index, id FunctionId, q Query) (FunctionId, bool) {
	candidates := idx.ByFuzzy(id.Fuzzy())
	if len(candidates) == 0 {
		return FunctionId{}, false
	}

	if len(candidates) == 1 {
		return candidates[0], true
	}

	if sameModule := filterSameModule(candidates, q.CallerModule); len(sameModule) > 0 {
		candidates = sameModule
	}

	best := candidates[0]
	bestDist := lineDistance(best.Line, q.Line)

	for _, c := range candidates[1:] {
		d := lineDistance(c.Line, q.Line)
		if d < bestDist {
			best, bestDist = c, d
		}
	}

	return best, true
}

// nameOnlyLookup resolves on SimpleKey. Among multiple candidates, it
// prefers the caller's own file, then the caller's directory (treated as
// crate/module boundary), else returns false rather than guess.
func nameOnlyLookup(idx Index, id FunctionId, q Query) (FunctionId, bool) {
	candidates := idx.BySimple(id.Simple())
	if len(candidates) == 0 {
		return FunctionId{}, false
	}

	if len(candidates) == 1 {
		return candidates[0], true
	}

	if sameFile := filterSameFile(candidates, q.CallerFile); len(sameFile) == 1 {
		return sameFile[0], true
	}

	if sameDir := filterSameDirectory(candidates, q.CallerFile); len(sameDir) == 1 {
		return sameDir[0], true
	}

	return FunctionId{}, false
}

func filterSameModule(candidates []FunctionId, module string) []FunctionId {
	if module == "" {
		return nil
	}

	var out []FunctionId

	for _, c := range candidates {
		if c.ModulePath == module {
			out = append(out, c)
		}
	}

	return out
}

func filterSameFile(candidates []FunctionId, file string) []FunctionId {
	var out []FunctionId

	for _, c := range candidates {
		if c.File == file {
			out = append(out, c)
		}
	}

	return out
}

func filterSameDirectory(candidates []FunctionId, file string) []FunctionId {
	dir := directoryOf(file)
	if dir == "" {
		return nil
	}

	var out []FunctionId

	for _, c := range candidates {
		if directoryOf(c.File) == dir {
			out = append(out, c)
		}
	}

	return out
}

func directoryOf(path string) string {
	idx := lastSlash(path)
	if idx < 0 {
		return ""
	}

	return path[:idx]
}

func lastSlash(path string) int {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return i
		}
	}

	return -1
}

func lineDistance(a, b int) int {
	if a > b {
		return a - b
	}

	return b - a
}
