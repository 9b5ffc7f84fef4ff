package callgraph

import "github.com/debtmap/debtmap/pkg/funcid"

// FileAst is the opaque, already-parsed syntax tree handed to an
// Extractor by the external parsing capability (§1, out of core scope).
// This spec does not fix its shape; it is consumed only through the
// Extractor implementation's own traversal, which returns the products
// below.
type FileAst interface {
	// Path returns the canonical source file path this AST was parsed from.
	Path() string
}

// TraitDef is a trait/interface definition discovered during extraction.
type TraitDef struct {
	Name string
	File string
}

// ImplDef records that ReceiverType implements MethodName for TraitName
// (TraitName is empty for inherent impls).
type ImplDef struct {
	TraitName    string
	ReceiverType string
	MethodName   string
	QualifiedFn  string // fully qualified name of the implementing function
}

// ExtractionResult is everything one Extractor invocation over one file
// produces: function definitions (as graph nodes), unresolved calls, and
// trait-registry contributions.
type ExtractionResult struct {
	Nodes     []FunctionNode
	Calls     []UnresolvedCall
	Traits    []TraitDef
	Impls     []ImplDef
}

// Extractor is the language-parameterized capability set of spec §4.5 /
// §9 ("Polymorphism across language analyzers"): one implementation per
// supported language, each emitting the same product shapes so the
// orchestrator can stay language-agnostic.
type Extractor interface {
	// Language returns the name of the language this extractor handles
	// (e.g. "rust", "python", "typescript").
	Language() string

	// Extract walks ast and produces function definitions, calls, and
	// trait/impl registrations. It must be pure except for reading ast.
	Extract(ast FileAst) (ExtractionResult, error)
}

// MergeTraitRegistry registers every trait impl of an ExtractionResult (each
// Impl with a non-empty TraitName) into registry. Inherent impls and trait
// definitions are not recorded.
func MergeTraitRegistry(registry *TraitRegistry, result ExtractionResult) {
	for _, impl := range result.Impls {
		traitName := impl.TraitName
		if traitName == "" {
			continue
		}

		registry.RegisterImpl(traitName, impl.QualifiedFn)
	}
}

// RoleHeuristics implements the role-classification rules of spec §4.5:
// main -> Main; test-shaped name/path -> Test; bench-shaped -> Benchmark;
// examples/ directory -> Example; trait-impl for a known std-like trait,
// or a constructor-shaped name -> TraitEntryPoint/Constructor.
type RoleHeuristics struct {
	KnownStdTraits    map[string]struct{}
	ConstructorNames  map[string]struct{}
}

// DefaultRoleHeuristics returns the spec's default heuristic tables.
func DefaultRoleHeuristics() RoleHeuristics {
	return RoleHeuristics{
		KnownStdTraits: map[string]struct{}{
			"Default": {}, "Clone": {}, "From": {}, "Into": {},
			"Drop": {}, "Display": {}, "Debug": {},
		},
		ConstructorNames: map[string]struct{}{
			"new": {}, "builder": {},
		},
	}
}

// ClassifyRole determines a FunctionRole for a bare function, given its
// simple name, its file path (not consulted by these rules), the trait it
// implements (empty when it is not a trait-impl method), and whether it was
// found in test, bench, or example code. A with_* constructor prefix is
// detected from simpleName itself.
func (h RoleHeuristics) ClassifyRole(simpleName, file, implTrait string, isTest, isBench, isExample bool) FunctionRole {
	switch {
	case simpleName == "main":
		return RoleMain
	case isTest:
		return RoleTest
	case isBench:
		return RoleBenchmark
	case isExample:
		return RoleExample
	}

	if implTrait != "" {
		if _, known := h.KnownStdTraits[implTrait]; known {
			return RoleTraitEntryPoint
		}
	}

	if _, ctor := h.ConstructorNames[simpleName]; ctor {
		return RoleConstructor
	}

	if hasWithPrefix(simpleName) {
		return RoleConstructor
	}

	return RoleNormal
}

func hasWithPrefix(name string) bool {
	return len(name) > len("with_") && name[:len("with_")] == "with_"
}

// callerKey is used internally by callers wanting a quick funcid.ExactKey
// for a node produced during extraction.
func callerKey(id funcid.FunctionId) funcid.ExactKey { return id.Exact() }
