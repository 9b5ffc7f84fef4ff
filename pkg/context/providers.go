package context

import (
	"context"
	"fmt"
)

// GitHistoryFunc is the narrow collaborator GitHistoryProvider consumes:
// it looks up change-history signals for a file from whatever git-reading
// capability the host application wires in (§1: git history reading is
// treated as a contextual signal, not mined in full by this package).
type GitHistoryFunc func(file string) (changeFrequency, bugDensity float64, ageDays, authorCount int, err error)

// GitHistoryProvider reports Historical context details.
type GitHistoryProvider struct {
	lookup GitHistoryFunc
}

// NewGitHistoryProvider creates a GitHistoryProvider backed by lookup.
func NewGitHistoryProvider(lookup GitHistoryFunc) *GitHistoryProvider {
	return &GitHistoryProvider{lookup: lookup}
}

// Name implements Provider.
func (p *GitHistoryProvider) Name() string { return "git_history" }

// Gather implements Provider.
func (p *GitHistoryProvider) Gather(_ context.Context, target Target) (Details, error) {
	freq, bugDensity, age, authors, err := p.lookup(target.File)
	if err != nil {
		return Details{}, fmt.Errorf("git history: %w", err)
	}

	return Details{
		Kind:            DetailsHistorical,
		ChangeFrequency: freq,
		BugDensity:      bugDensity,
		AgeDays:         age,
		AuthorCount:     authors,
	}, nil
}

// DependencyFunc supplies afferent/efferent coupling counts for a file,
// from whatever dependency-graph collaborator the host wires in.
type DependencyFunc func(file string) (afferent, efferent int, err error)

// DependencyProvider reports Dependency context details.
type DependencyProvider struct {
	lookup DependencyFunc
}

// NewDependencyProvider creates a DependencyProvider backed by lookup.
func NewDependencyProvider(lookup DependencyFunc) *DependencyProvider {
	return &DependencyProvider{lookup: lookup}
}

// Name implements Provider.
func (p *DependencyProvider) Name() string { return "dependency" }

// Gather implements Provider.
func (p *DependencyProvider) Gather(_ context.Context, target Target) (Details, error) {
	afferent, efferent, err := p.lookup(target.File)
	if err != nil {
		return Details{}, fmt.Errorf("dependency: %w", err)
	}

	return Details{
		Kind:        DetailsDependency,
		Afferent:    afferent,
		Efferent:    efferent,
		Instability: instability(afferent, efferent),
	}, nil
}

// instability computes efferent / (afferent + efferent); 0 = stable.
func instability(afferent, efferent int) float64 {
	total := afferent + efferent
	if total == 0 {
		return 0
	}

	return float64(efferent) / float64(total)
}

// CriticalPathFunc reports whether target lies on a critical path and, if
// so, its path length, from whatever critical-path collaborator the host
// wires in.
type CriticalPathFunc func(target Target) (onPath bool, pathLength int, err error)

// CriticalPathProvider reports CriticalPath context details.
type CriticalPathProvider struct {
	lookup CriticalPathFunc
}

// NewCriticalPathProvider creates a CriticalPathProvider backed by lookup.
func NewCriticalPathProvider(lookup CriticalPathFunc) *CriticalPathProvider {
	return &CriticalPathProvider{lookup: lookup}
}

// Name implements Provider.
func (p *CriticalPathProvider) Name() string { return "critical_path" }

// Gather implements Provider.
func (p *CriticalPathProvider) Gather(_ context.Context, target Target) (Details, error) {
	onPath, length, err := p.lookup(target)
	if err != nil {
		return Details{}, fmt.Errorf("critical path: %w", err)
	}

	return Details{Kind: DetailsCriticalPath, OnCriticalPath: onPath, PathLength: length}, nil
}

// FileTypeFunc classifies a file, from whatever file-classification
// collaborator the host wires in (often simple path-pattern matching).
type FileTypeFunc func(file string) (FileKind, error)

// FileTypeProvider reports FileType context details.
type FileTypeProvider struct {
	classify FileTypeFunc
}

// NewFileTypeProvider creates a FileTypeProvider backed by classify.
func NewFileTypeProvider(classify FileTypeFunc) *FileTypeProvider {
	return &FileTypeProvider{classify: classify}
}

// Name implements Provider.
func (p *FileTypeProvider) Name() string { return "file_type" }

// Gather implements Provider.
func (p *FileTypeProvider) Gather(_ context.Context, target Target) (Details, error) {
	kind, err := p.classify(target.File)
	if err != nil {
		return Details{}, fmt.Errorf("file type: %w", err)
	}

	return Details{Kind: DetailsFileType, FileKind: kind}, nil
}
