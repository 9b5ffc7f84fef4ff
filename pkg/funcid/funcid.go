// Package funcid defines the identity of a function within an analysis run:
// its canonical location, its normalized qualified name, and the derived
// lookup keys used by the call-graph resolver.
package funcid

import (
	"path/filepath"
	"strings"
)

// NormalizationMode controls how aggressively generic parameters are
// stripped from a qualified function name when deriving lookup keys.
type NormalizationMode int

const (
	// StripAll removes every top-level generic parameter list. Default.
	StripAll NormalizationMode = iota
	// PreserveOneLevel keeps the outermost generic bound and strips only
	// nested parameter lists. Opt-in; see SPEC_FULL.md Open Questions.
	PreserveOneLevel
)

// FunctionId identifies a function definition within a source tree.
type FunctionId struct {
	File       string // canonical path
	Name       string // qualified symbol, e.g. "Module::Type::method"
	ModulePath string // dotted or colon-separated container path
	Line       int
}

// ExactKey uniquely identifies a FunctionId across all four fields.
type ExactKey struct {
	File       string
	Name       string
	ModulePath string
	Line       int
}

// FuzzyKey identifies a FunctionId by canonical file and generic-stripped
// name only, ignoring line number and module path.
type FuzzyKey struct {
	File string
	Name string
}

// SimpleKey identifies a FunctionId by generic-stripped name alone.
type SimpleKey struct {
	Name string
}

// Exact returns the ExactKey for id.
func (id FunctionId) Exact() ExactKey {
	return ExactKey{File: id.File, Name: id.Name, ModulePath: id.ModulePath, Line: id.Line}
}

// Fuzzy returns the FuzzyKey for id.
func (id FunctionId) Fuzzy() FuzzyKey {
	return FuzzyKey{File: id.File, Name: StripGenerics(id.Name, StripAll)}
}

// Simple returns the SimpleKey for id.
func (id FunctionId) Simple() SimpleKey {
	return SimpleKey{Name: StripGenerics(id.Name, StripAll)}
}

// Normalize returns a copy of id with its file canonicalized and its name
// generic-stripped and whitespace-collapsed, per mode.
func Normalize(id FunctionId, mode NormalizationMode) FunctionId {
	id.File = CanonicalizePath(id.File)
	id.Name = collapseWhitespace(StripGenerics(id.Name, mode))

	return id
}

// CanonicalizePath normalizes path separators to "/". Absolute-path and
// symlink resolution is the responsibility of the file-discovery
// collaborator (out of core scope, §1); this function only normalizes what
// it is given so that two differently-separated spellings of the same path
// compare equal.
func CanonicalizePath(path string) string {
	cleaned := filepath.ToSlash(filepath.Clean(strings.ReplaceAll(path, `\`, "/")))

	return cleaned
}

// StripGenerics removes generic parameter lists from name. With StripAll,
// every top-level "<...>" span is removed. With PreserveOneLevel, only the
// outermost span's interior angle-bracket nesting is stripped, keeping the
// outermost bound token (e.g. "foo<T>" stays "foo<T>" but "foo<T<U>>"
// becomes "foo<T>").
func StripGenerics(name string, mode NormalizationMode) string {
	switch mode {
	case PreserveOneLevel:
		return stripNestedGenerics(name)
	default:
		return stripAllGenerics(name)
	}
}

func stripAllGenerics(name string) string {
	var b strings.Builder

	depth := 0

	for _, r := range name {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// stripNestedGenerics keeps the first level of "<...>" but removes any
// generic brackets nested inside it.
func stripNestedGenerics(name string) string {
	start := strings.IndexRune(name, '<')
	if start < 0 {
		return name
	}

	end := matchingAngle(name, start)
	if end < 0 {
		return stripAllGenerics(name)
	}

	inner := name[start+1 : end]
	innerStripped := stripAllGenerics(inner)

	return name[:start+1] + innerStripped + name[end:]
}

func matchingAngle(s string, start int) int {
	depth := 0

	for i := start; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)

	return strings.Join(fields, " ")
}
