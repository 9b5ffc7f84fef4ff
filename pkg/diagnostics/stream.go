package diagnostics

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrGraphInvariant is the sentinel returned when a fatal graph-invariant
// diagnostic is recorded; callers check with errors.Is to distinguish it
// from ordinary recoverable diagnostics.
var ErrGraphInvariant = errors.New("call graph invariant violated")

// Stream aggregates diagnostics from concurrent analysis workers. Record is
// safe to call from many goroutines at once (the orchestrator shards
// per-file analysis across a worker pool); per-kind counts are atomic so
// callers can poll progress without taking the entries lock.
type Stream struct {
	mu      sync.Mutex
	entries []Entry

	counts [numKinds]atomic.Int64
}

// NewStream returns an empty diagnostics stream.
func NewStream() *Stream {
	return &Stream{}
}

// numKinds bounds the counts array; kindIndex must stay in sync with Kind's
// constant set.
const numKinds = 6

func kindIndex(k Kind) int {
	switch k {
	case KindParseFailure:
		return 0
	case KindCoverageParseError:
		return 1
	case KindProviderError:
		return 2
	case KindLookupAmbiguous:
		return 3
	case KindGraphInvariant:
		return 4
	case KindCancelled:
		return 5
	default:
		return 5
	}
}

// Record appends entry to the stream and bumps its kind's counter. Returns
// ErrGraphInvariant when entry is fatal, so callers can abort the run
// immediately while the entry is still preserved for the final report.
func (s *Stream) Record(entry Entry) error {
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	s.counts[kindIndex(entry.Kind)].Add(1)

	if entry.Kind.Fatal() {
		return ErrGraphInvariant
	}

	return nil
}

// ParseFailure records a parse_failure diagnostic (always recoverable).
func (s *Stream) ParseFailure(file string, offset int, reason string) {
	_ = s.Record(Entry{Kind: KindParseFailure, File: file, Offset: offset, Reason: reason})
}

// CoverageParseError records a coverage_parse_error diagnostic.
func (s *Stream) CoverageParseError(line int, reason string) {
	_ = s.Record(Entry{Kind: KindCoverageParseError, Line: line, Reason: reason})
}

// ProviderError records a provider_error diagnostic.
func (s *Stream) ProviderError(provider, reason string) {
	_ = s.Record(Entry{Kind: KindProviderError, Provider: provider, Reason: reason})
}

// LookupAmbiguous records a lookup_ambiguous diagnostic.
func (s *Stream) LookupAmbiguous(name string, candidates []string) {
	_ = s.Record(Entry{Kind: KindLookupAmbiguous, Name: name, Candidates: candidates})
}

// GraphInvariant records a fatal graph_invariant diagnostic and returns
// ErrGraphInvariant so the caller can abort the run.
func (s *Stream) GraphInvariant(what string) error {
	return s.Record(Entry{Kind: KindGraphInvariant, What: what})
}

// Cancelled records a cancellation diagnostic.
func (s *Stream) Cancelled() {
	_ = s.Record(Entry{Kind: KindCancelled})
}

// Entries returns a snapshot copy of all recorded diagnostics, in record order.
func (s *Stream) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)

	return out
}

// Count returns the number of diagnostics recorded for kind so far.
func (s *Stream) Count(k Kind) int64 {
	return s.counts[kindIndex(k)].Load()
}

// EntriesOf returns a snapshot of only the diagnostics of the given kind.
func (s *Stream) EntriesOf(k Kind) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, s.counts[kindIndex(k)].Load())

	for _, e := range s.entries {
		if e.Kind == k {
			out = append(out, e)
		}
	}

	return out
}

// Empty reports whether no diagnostics of any kind have been recorded.
func (s *Stream) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries) == 0
}
