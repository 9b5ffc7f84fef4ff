// Package callgraph builds and resolves the whole-program call graph:
// nodes are function definitions, edges are resolved calls between them.
package callgraph

import "github.com/debtmap/debtmap/pkg/funcid"

// FunctionRole classifies a node's architectural position.
type FunctionRole int

const (
	// RoleNormal is the default role for a function with no special status.
	RoleNormal FunctionRole = iota
	// RoleMain marks a program entry point function named "main".
	RoleMain
	// RoleTest marks a test function.
	RoleTest
	// RoleBenchmark marks a benchmark function.
	RoleBenchmark
	// RoleExample marks an example function under an examples/ directory.
	RoleExample
	// RolePublicLibExport marks an exported library function.
	RolePublicLibExport
	// RoleTraitEntryPoint marks an implementation method of a known
	// standard-library-like trait (Default, Clone, From, Display, ...).
	RoleTraitEntryPoint
	// RoleConstructor marks a constructor-shaped function (new, builder, with_*).
	RoleConstructor
)

// PurityLevel classifies how side-effecting a function is, from pure to impure.
type PurityLevel int

const (
	// PurityUnknown means no purity analysis was performed.
	PurityUnknown PurityLevel = iota
	// StrictlyPure functions have no observable side effects whatsoever.
	StrictlyPure
	// LocallyPure functions mutate only their own locals.
	LocallyPure
	// IOIsolated functions perform I/O behind a narrow, isolated boundary.
	IOIsolated
	// IOMixed functions interleave I/O with logic.
	IOMixed
	// Impure functions have broad, unisolated side effects.
	Impure
)

// CoerceLegacyPurity converts a legacy boolean purity flag into a
// PurityLevel, used only when no richer PurityLevel is available.
// See SPEC_FULL.md §3 / DESIGN.md Open Question 3.
func CoerceLegacyPurity(isPure bool) PurityLevel {
	if isPure {
		return StrictlyPure
	}

	return Impure
}

// FrameworkTag identifies a framework convention a function participates
// in (e.g. a web handler, a test fixture). Empty string means none.
type FrameworkTag string

// Metadata holds per-function metrics and classification populated during
// extraction and refined during validation.
type Metadata struct {
	Purity            PurityLevel
	Framework         FrameworkTag
	Cyclomatic        int
	Cognitive         int
	Nesting           int
	Length            int
	IsTest            bool
	IsEntryPoint      bool
	IsTraitEntryPoint bool
}

// FunctionNode is a vertex in the call graph.
type FunctionNode struct {
	ID       funcid.FunctionId
	Role     FunctionRole
	Metadata Metadata
}

// CallSiteKind discriminates the four call-site shapes the extractor can emit.
type CallSiteKind int

const (
	// SiteStatic is a qualified-path call: Path::func(args).
	SiteStatic CallSiteKind = iota
	// SiteInstance is a method call with an (optionally known) receiver type.
	SiteInstance
	// SiteTraitMethod is a method call dispatched through a trait.
	SiteTraitMethod
	// SiteIndirect is a call through an opaque callable (closure, fn pointer).
	SiteIndirect
)

// CallSiteType is the call-site classification of an edge or unresolved call.
type CallSiteType struct {
	Kind          CallSiteKind
	ReceiverType  string // set for SiteInstance/SiteTraitMethod when known
	TraitName     string // set for SiteTraitMethod
}

// CallKind further classifies how an edge's call was ultimately dispatched.
type CallKind int

const (
	// Direct is a normal, statically-dispatched call.
	Direct CallKind = iota
	// ViaTrait is a call dispatched through trait resolution.
	ViaTrait
	// ViaCallback is a call dispatched indirectly through a stored callable.
	ViaCallback
)

// FunctionCall is a directed, resolved edge in the call graph.
type FunctionCall struct {
	Caller       funcid.FunctionId
	Callee       funcid.FunctionId
	CallSiteType CallSiteType
	CallKind     CallKind
}

// dedupKey is the (caller, callee, call_site_type) triple edges are
// deduplicated on.
type dedupKey struct {
	caller funcid.ExactKey
	callee funcid.ExactKey
	site   CallSiteType
}

func (c FunctionCall) dedupKey() dedupKey {
	return dedupKey{caller: c.Caller.Exact(), callee: c.Callee.Exact(), site: c.CallSiteType}
}

// UnresolvedCall is emitted by the extractor and consumed by the resolver.
type UnresolvedCall struct {
	Caller       funcid.FunctionId
	CalleeName   string
	CallSiteType CallSiteType
	SameFileHint bool
}
