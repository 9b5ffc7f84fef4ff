package diagnostics_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debtmap/debtmap/pkg/diagnostics"
)

func TestStream_RecoverableKindsDoNotError(t *testing.T) {
	t.Parallel()

	s := diagnostics.NewStream()

	s.ParseFailure("main.go", 42, "unexpected token")
	s.CoverageParseError(7, "malformed SF record")
	s.ProviderError("GitHistoryProvider", "repository not found")
	s.LookupAmbiguous("helper", []string{"pkg/a.helper", "pkg/b.helper"})
	s.Cancelled()

	assert.False(t, s.Empty())
	assert.Equal(t, int64(1), s.Count(diagnostics.KindParseFailure))
	assert.Equal(t, int64(1), s.Count(diagnostics.KindCoverageParseError))
	assert.Equal(t, int64(1), s.Count(diagnostics.KindProviderError))
	assert.Equal(t, int64(1), s.Count(diagnostics.KindLookupAmbiguous))
	assert.Equal(t, int64(1), s.Count(diagnostics.KindCancelled))
	assert.Equal(t, int64(0), s.Count(diagnostics.KindGraphInvariant))

	assert.Len(t, s.Entries(), 5)
}

func TestStream_GraphInvariantIsFatal(t *testing.T) {
	t.Parallel()

	s := diagnostics.NewStream()

	err := s.GraphInvariant("dangling edge after merge")
	require.Error(t, err)
	assert.True(t, errors.Is(err, diagnostics.ErrGraphInvariant))

	assert.Equal(t, int64(1), s.Count(diagnostics.KindGraphInvariant))

	entries := s.EntriesOf(diagnostics.KindGraphInvariant)
	require.Len(t, entries, 1)
	assert.Equal(t, "dangling edge after merge", entries[0].What)
}

func TestStream_ConcurrentRecordIsSafe(t *testing.T) {
	t.Parallel()

	s := diagnostics.NewStream()

	const workers = 50

	var wg sync.WaitGroup

	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()

			s.ParseFailure("file.go", n, "boom")
		}(i)
	}

	wg.Wait()

	assert.Equal(t, int64(workers), s.Count(diagnostics.KindParseFailure))
	assert.Len(t, s.Entries(), workers)
}

func TestEntry_ErrorFormatsEachKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		entry diagnostics.Entry
		want  string
	}{
		{
			name:  "parse_failure_with_offset",
			entry: diagnostics.Entry{Kind: diagnostics.KindParseFailure, File: "a.go", Offset: 10, Reason: "bad token"},
			want:  "parse failure in a.go at offset 10: bad token",
		},
		{
			name:  "coverage_parse_error",
			entry: diagnostics.Entry{Kind: diagnostics.KindCoverageParseError, Line: 3, Reason: "malformed"},
			want:  "coverage parse error at line 3: malformed",
		},
		{
			name:  "provider_error",
			entry: diagnostics.Entry{Kind: diagnostics.KindProviderError, Provider: "DependencyProvider", Reason: "timeout"},
			want:  `provider "DependencyProvider" failed: timeout`,
		},
		{
			name:  "lookup_ambiguous",
			entry: diagnostics.Entry{Kind: diagnostics.KindLookupAmbiguous, Name: "run", Candidates: []string{"a.run", "b.run"}},
			want:  `ambiguous lookup for "run": 2 candidates`,
		},
		{
			name:  "graph_invariant",
			entry: diagnostics.Entry{Kind: diagnostics.KindGraphInvariant, What: "duplicate node"},
			want:  "call graph invariant violated: duplicate node",
		},
		{
			name:  "cancelled",
			entry: diagnostics.Entry{Kind: diagnostics.KindCancelled},
			want:  "analysis cancelled",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.entry.Error())
		})
	}
}
