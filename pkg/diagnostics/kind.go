// Package diagnostics aggregates recoverable errors from analysis runs into
// a single stream, matching spec §7's error taxonomy: most failures are
// attributable to one file, record, or provider and should not abort the
// whole run, while a handful indicate a bug in extraction and must.
package diagnostics

import "fmt"

// Kind identifies one of the recoverable or fatal error categories of §7.
type Kind string

const (
	// KindParseFailure means AST parsing failed for a file; the file is
	// skipped but the run continues.
	KindParseFailure Kind = "parse_failure"

	// KindCoverageParseError means an LCOV record was malformed; the
	// specific record (and possibly its source block) is skipped.
	KindCoverageParseError Kind = "coverage_parse_error"

	// KindProviderError means a context provider failed for one target;
	// the provider is omitted from that target's context map.
	KindProviderError Kind = "provider_error"

	// KindLookupAmbiguous means the identity resolver could not choose
	// among several call-site candidates; the call is dropped rather
	// than guessed.
	KindLookupAmbiguous Kind = "lookup_ambiguous"

	// KindGraphInvariant means a dangling edge or duplicate node survived
	// merge; this indicates a bug in extraction and aborts the run.
	KindGraphInvariant Kind = "graph_invariant"

	// KindCancelled means cooperative cancellation interrupted the run;
	// a partial result may still be returned.
	KindCancelled Kind = "cancelled"
)

// Fatal reports whether an entry of this kind should abort the run.
// Only GraphInvariant is fatal; everything else is recovered locally and
// aggregated (§7's propagation policy).
func (k Kind) Fatal() bool {
	return k == KindGraphInvariant
}

// Entry is one recorded diagnostic: a kind plus the fields §7 attaches to
// it (file/offset for ParseFailure, line/reason for CoverageParseError,
// provider/reason for ProviderError, name/candidates for LookupAmbiguous,
// what for GraphInvariant).
type Entry struct {
	Kind Kind

	File       string
	Offset     int
	Line       int
	Reason     string
	Provider   string
	Name       string
	Candidates []string
	What       string
}

// Error renders the entry as a human-readable message, matching the shape
// a user-visible failure report (§7) would print per line.
func (e Entry) Error() string {
	switch e.Kind {
	case KindParseFailure:
		if e.Offset > 0 {
			return fmt.Sprintf("parse failure in %s at offset %d: %s", e.File, e.Offset, e.Reason)
		}

		return fmt.Sprintf("parse failure in %s: %s", e.File, e.Reason)
	case KindCoverageParseError:
		return fmt.Sprintf("coverage parse error at line %d: %s", e.Line, e.Reason)
	case KindProviderError:
		return fmt.Sprintf("provider %q failed: %s", e.Provider, e.Reason)
	case KindLookupAmbiguous:
		return fmt.Sprintf("ambiguous lookup for %q: %d candidates", e.Name, len(e.Candidates))
	case KindGraphInvariant:
		return fmt.Sprintf("call graph invariant violated: %s", e.What)
	case KindCancelled:
		return "analysis cancelled"
	default:
		return fmt.Sprintf("diagnostic(%s): %s", e.Kind, e.Reason)
	}
}
