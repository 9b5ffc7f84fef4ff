package orchestrator

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/debtmap/debtmap/pkg/callgraph"
	"github.com/debtmap/debtmap/pkg/complexity"
	"github.com/debtmap/debtmap/pkg/funcid"
	"github.com/debtmap/debtmap/pkg/godobject"
)

// FileAnalyzer is the per-file, language-specific capability the
// orchestrator fans out across workers: obtaining a FileAst for path
// (via whatever parsing oracle the caller wires in, spec §6), extracting
// call-graph nodes/calls/trait registrations, and computing complexity
// and god-object signals. One implementation per supported language,
// selected by the caller before Run (spec §4.5/§9's "polymorphism across
// language analyzers"); this package stays language-agnostic and only
// consumes the product shapes below.
type FileAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string) (FileResult, error)
}

// FileResult is everything one file contributes to a run: the same
// extraction product callgraph.Extractor emits, the per-function
// complexity metrics computed from that file's own traversal, and any
// god-object containers (impl/class/module blocks) it defines.
type FileResult struct {
	Extraction callgraph.ExtractionResult
	Complexity map[funcid.ExactKey]complexity.Metrics
	Containers []godobject.Container
}

// fileOutcome pairs a file's path with its result, for deterministic
// re-sorting before merge (completion order is arbitrary; the merged
// graph must not depend on it, per spec §5).
type fileOutcome struct {
	path   string
	result FileResult
}

// analyzeFiles runs analyzer over files on a worker pool sized to
// cfg.Workers, grounded on the teacher pack's conc/pool file-fan-out
// idiom. A file whose analysis errors is recorded as a recoverable
// ParseFailure diagnostic and skipped; the run continues (spec §7).
// Cancellation is checked before each file is dispatched and again
// inside the worker before doing any work — never mid-file, since no
// work has started yet at that check (spec §5).
func (o *Orchestrator) analyzeFiles(ctx context.Context, files []string) []fileOutcome {
	if len(files) == 0 {
		return nil
	}

	var mu sync.Mutex

	outcomes := make([]fileOutcome, 0, len(files))

	p := pool.New().WithMaxGoroutines(o.cfg.Workers).WithContext(ctx)

	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		path := path

		p.Go(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			result, err := o.analyzer.AnalyzeFile(ctx, path)
			if err != nil {
				o.diagnostics.ParseFailure(path, 0, err.Error())

				return nil
			}

			mu.Lock()
			outcomes = append(outcomes, fileOutcome{path: path, result: result})
			mu.Unlock()

			return nil
		})
	}

	_ = p.Wait()

	return outcomes
}
