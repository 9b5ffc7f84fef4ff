package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/debtmap/debtmap/internal/orchestrator"
	"github.com/debtmap/debtmap/pkg/callgraph"
	"github.com/debtmap/debtmap/pkg/complexity"
	"github.com/debtmap/debtmap/pkg/funcid"
	"github.com/debtmap/debtmap/pkg/godobject"
)

// Spec §1 treats AST parsing as an external collaborator the core only
// consumes through an opaque FileAst oracle; this CLI mirrors the
// teacher's analyze command, which likewise never parses source itself
// and instead decodes an already-produced structured artifact (UAST JSON
// over stdin). manifestAnalyzer plays the same role here: it reads one
// JSON document mapping each source path to its already-extracted
// callgraph/complexity/god-object product, as a real per-language
// extractor front-end would produce, and implements
// orchestrator.FileAnalyzer over that.
type manifestAnalyzer struct {
	files map[string]fileExtraction
}

// fileExtraction is the JSON-friendly shape of one orchestrator.FileResult.
// Complexity is a slice rather than a map because funcid.ExactKey is not
// a valid JSON object key.
type fileExtraction struct {
	Nodes      []callgraph.FunctionNode   `json:"nodes"`
	Calls      []callgraph.UnresolvedCall `json:"calls"`
	Traits     []callgraph.TraitDef       `json:"traits"`
	Impls      []callgraph.ImplDef        `json:"impls"`
	Complexity []complexityEntry          `json:"complexity"`
	Containers []godobject.Container      `json:"containers"`
}

type complexityEntry struct {
	Key     funcid.ExactKey    `json:"key"`
	Metrics complexity.Metrics `json:"metrics"`
}

// loadManifestAnalyzer reads and decodes the extraction manifest at path.
func loadManifestAnalyzer(path string) (*manifestAnalyzer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read extraction manifest: %w", err)
	}

	var files map[string]fileExtraction

	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, fmt.Errorf("decode extraction manifest: %w", err)
	}

	return &manifestAnalyzer{files: files}, nil
}

func (m *manifestAnalyzer) AnalyzeFile(_ context.Context, path string) (orchestrator.FileResult, error) {
	fx, ok := m.files[path]
	if !ok {
		return orchestrator.FileResult{}, fmt.Errorf("no extraction entry for %q in manifest", path)
	}

	complexityIndex := make(map[funcid.ExactKey]complexity.Metrics, len(fx.Complexity))
	for _, entry := range fx.Complexity {
		complexityIndex[entry.Key] = entry.Metrics
	}

	return orchestrator.FileResult{
		Extraction: callgraph.ExtractionResult{
			Nodes:  fx.Nodes,
			Calls:  fx.Calls,
			Traits: fx.Traits,
			Impls:  fx.Impls,
		},
		Complexity: complexityIndex,
		Containers: fx.Containers,
	}, nil
}

// filePaths returns every source path the manifest covers, in map-iteration
// (unspecified) order; analyze and validate use it as the file set that
// AnalyzeFile is driven over.
func (m *manifestAnalyzer) filePaths() []string {
	paths := make([]string, 0, len(m.files))
	for path := range m.files {
		paths = append(paths, path)
	}

	return paths
}
