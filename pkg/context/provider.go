// Package context defines pluggable, read-only context providers and the
// aggregator that fans a target out to all of them, caching the combined
// result behind a lock-free sharded map so it can be shared safely across
// parallel analysis workers.
package context

import "context"

// Target identifies the function or file a provider gathers context for.
type Target struct {
	File     string
	Function string
}

// DetailsKind discriminates the ContextDetails tagged-variant payload.
type DetailsKind int

const (
	// DetailsHistorical carries git-history-derived signals.
	DetailsHistorical DetailsKind = iota
	// DetailsCriticalPath carries critical-path membership signals.
	DetailsCriticalPath
	// DetailsDependency carries afferent/efferent coupling signals.
	DetailsDependency
	// DetailsFileType carries a coarse file classification.
	DetailsFileType
)

// FileKind classifies a file for scoring-dampening purposes.
type FileKind int

const (
	// FileKindSource is an ordinary source file.
	FileKindSource FileKind = iota
	// FileKindTest is a test file; dampens risk in the scorer.
	FileKindTest
	// FileKindGenerated is machine-generated code.
	FileKindGenerated
	// FileKindVendored is third-party/vendored code.
	FileKindVendored
)

// Details is the typed payload of one provider's contribution, carrying
// only the fields relevant to its Kind.
type Details struct {
	Kind DetailsKind

	// DetailsHistorical
	ChangeFrequency float64
	BugDensity      float64
	AgeDays         int
	AuthorCount     int

	// DetailsCriticalPath
	OnCriticalPath bool
	PathLength     int

	// DetailsDependency
	Afferent    int
	Efferent    int
	Instability float64

	// DetailsFileType
	FileKind FileKind
}

// Map is an immutable mapping from provider name to its Details, owned by
// the aggregator's cache and cheaply shareable once built.
type Map map[string]Details

// Clone returns a shallow copy of m so callers can treat their own copy as
// mutable without affecting the cached original.
func (m Map) Clone() Map {
	clone := make(Map, len(m))
	for k, v := range m {
		clone[k] = v
	}

	return clone
}

// Provider is a pluggable, read-only capability: it gathers Details for a
// target without mutating any shared state and without other observable
// side effects (spec §4.8). Implementations take the receiver by value
// semantics (a pointer receiver is fine, but Gather itself must not
// mutate provider-owned state).
type Provider interface {
	// Name identifies this provider in a Map, e.g. "git_history".
	Name() string

	// Gather produces Details for target, or an error if unavailable.
	// An error is never fatal to the aggregator: the provider is simply
	// omitted from the target's Map (spec §7 ProviderError).
	Gather(ctx context.Context, target Target) (Details, error)
}
