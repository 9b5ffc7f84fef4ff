// Package coverage parses the LCOV textual coverage format, demangles and
// consolidates function entries, and builds an O(1) coverage index.
package coverage

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/debtmap/debtmap/pkg/funcid"
)

// Entry is one consolidated function coverage record.
type Entry struct {
	File             string
	FunctionName     string
	StartLine        int
	ExecutionCount   int64
	CoveragePercentage float64
	UncoveredLines   []uint32
}

// Key identifies an Entry within the Index.
type Key struct {
	File string
	Name string
}

// Index is an O(1) mapping from (canonical file, normalized function name)
// to its consolidated coverage entry.
type Index struct {
	entries map[Key]Entry
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{entries: make(map[Key]Entry)}
}

// Lookup returns the coverage entry for (file, functionName), if any.
func (idx *Index) Lookup(file, functionName string) (Entry, bool) {
	key := Key{File: funcid.CanonicalizePath(file), Name: functionName}
	entry, ok := idx.entries[key]

	return entry, ok
}

// Len returns the number of consolidated entries in the index.
func (idx *Index) Len() int { return len(idx.entries) }

// ParseError is returned for a malformed LCOV record; the offending
// record line is skipped and parsing continues with the next line.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("coverage: parse error at line %d: %s", e.Line, e.Reason)
}

// rawFunction accumulates FN:/FNDA: data for one mangled or demangled
// function name before normalization and consolidation.
type rawFunction struct {
	name           string
	startLine      int
	executionCount int64
}

// Demangler converts a compiler-mangled symbol into its human-readable
// form. Returns ok=false if name is not recognized as mangled or cannot
// be demangled, in which case the caller falls back to the original name.
type Demangler func(name string) (demangled string, ok bool)

// Parse reads an LCOV-formatted stream and returns a consolidated Index.
// Per-record malformations are collected as errors and only the malformed
// line is skipped; parsing continues with the next line of the same SF:
// block.
func Parse(r io.Reader, demangle Demangler) (*Index, []error) {
	idx := NewIndex()

	var errs []error

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0

	var (
		currentFile string
		functions   map[string]*rawFunction // by raw (possibly mangled) name
		daHits      map[int]int64           // line -> hit count
		order       []string                // insertion order of function names
	)

	resetBlock := func() {
		currentFile = ""
		functions = make(map[string]*rawFunction)
		daHits = make(map[int]int64)
		order = nil
	}
	resetBlock()

	flush := func() {
		if currentFile == "" {
			return
		}

		consolidateBlock(idx, currentFile, functions, order, daHits, demangle)
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "SF:"):
			flush()
			resetBlock()
			currentFile = funcid.CanonicalizePath(strings.TrimPrefix(line, "SF:"))

		case strings.HasPrefix(line, "FN:"):
			name, startLine, err := parseFN(strings.TrimPrefix(line, "FN:"))
			if err != nil {
				errs = append(errs, &ParseError{Line: lineNo, Reason: err.Error()})

				continue
			}

			if _, exists := functions[name]; !exists {
				order = append(order, name)
			}

			fn := functions[name]
			if fn == nil {
				fn = &rawFunction{name: name}
				functions[name] = fn
			}

			fn.startLine = startLine

		case strings.HasPrefix(line, "FNDA:"):
			count, name, err := parseFNDA(strings.TrimPrefix(line, "FNDA:"))
			if err != nil {
				errs = append(errs, &ParseError{Line: lineNo, Reason: err.Error()})

				continue
			}

			fn := functions[name]
			if fn == nil {
				fn = &rawFunction{name: name}
				functions[name] = fn
				order = append(order, name)
			}

			fn.executionCount += count

		case strings.HasPrefix(line, "DA:"):
			lineNum, hits, err := parseDA(strings.TrimPrefix(line, "DA:"))
			if err != nil {
				errs = append(errs, &ParseError{Line: lineNo, Reason: err.Error()})

				continue
			}

			daHits[lineNum] += hits

		case line == "end_of_record":
			flush()
			resetBlock()

		default:
			// BRDA:, LF:, LH:, and any other record kinds are tolerated and ignored.
		}
	}

	flush()

	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("coverage: scan: %w", err))
	}

	return idx, errs
}

func parseFN(rest string) (name string, startLine int, err error) {
	parts := strings.SplitN(rest, ",", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("malformed FN record: %q", rest)
	}

	line, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return "", 0, fmt.Errorf("malformed FN line number: %q", parts[0])
	}

	return strings.TrimSpace(parts[1]), line, nil
}

func parseFNDA(rest string) (count int64, name string, err error) {
	parts := strings.SplitN(rest, ",", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("malformed FNDA record: %q", rest)
	}

	count, err = strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed FNDA count: %q", parts[0])
	}

	return count, strings.TrimSpace(parts[1]), nil
}

func parseDA(rest string) (line int, hits int64, err error) {
	parts := strings.SplitN(rest, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed DA record: %q", rest)
	}

	line, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed DA line number: %q", parts[0])
	}

	hits, err = strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed DA hit count: %q", parts[1])
	}

	return line, hits, nil
}

// consolidatedFunction is the working accumulator for one normalized
// symbol while a block is being consolidated.
type consolidatedFunction struct {
	executionCount int64
	startLine      int
	uncovered      map[uint32]struct{}
	totalLines     int
	coveredLines   int
}

// consolidateBlock normalizes and consolidates the raw FN/FNDA data of one
// SF: block into idx, per the demangle-then-strip-generics consolidation
// rule of spec §4.7.
func consolidateBlock(idx *Index, file string, functions map[string]*rawFunction, order []string, daHits map[int]int64, demangle Demangler) {
	byNormalized := make(map[string]*consolidatedFunction)

	var normalizedOrder []string

	for _, rawName := range order {
		fn := functions[rawName]
		if fn == nil {
			continue
		}

		normalized := normalizeSymbol(fn.name, demangle)

		entry, exists := byNormalized[normalized]
		if !exists {
			entry = &consolidatedFunction{startLine: fn.startLine, uncovered: make(map[uint32]struct{})}
			byNormalized[normalized] = entry
			normalizedOrder = append(normalizedOrder, normalized)
		}

		if fn.executionCount > entry.executionCount {
			entry.executionCount = fn.executionCount
		}

		if fn.startLine < entry.startLine {
			entry.startLine = fn.startLine
		}
	}

	// Attribute every DA: line to the nearest preceding function start
	// line within the block, tallying covered vs. total so coverage
	// percentage reflects actual line hits rather than a crude
	// executed/not-executed binary.
	starts := sortedStarts(byNormalized, normalizedOrder)

	for line, hits := range daHits {
		owner := ownerFor(line, starts)
		if owner == "" {
			continue
		}

		entry := byNormalized[owner]
		entry.totalLines++

		if hits > 0 {
			entry.coveredLines++
		} else {
			entry.uncovered[uint32(line)] = struct{}{}
		}
	}

	for _, normalized := range normalizedOrder {
		entry := byNormalized[normalized]

		uncoveredLines := make([]uint32, 0, len(entry.uncovered))
		for ln := range entry.uncovered {
			uncoveredLines = append(uncoveredLines, ln)
		}

		sort.Slice(uncoveredLines, func(i, j int) bool { return uncoveredLines[i] < uncoveredLines[j] })

		key := Key{File: file, Name: normalized}
		idx.entries[key] = Entry{
			File:               file,
			FunctionName:       normalized,
			StartLine:          entry.startLine,
			ExecutionCount:     entry.executionCount,
			CoveragePercentage: coveragePercentage(entry),
			UncoveredLines:     uncoveredLines,
		}
	}
}

func coveragePercentage(entry *consolidatedFunction) float64 {
	if entry.totalLines > 0 {
		return 100.0 * float64(entry.coveredLines) / float64(entry.totalLines)
	}

	if entry.executionCount > 0 {
		return 100.0
	}

	return 0.0
}

type startEntry struct {
	line int
	name string
}

func sortedStarts(byNormalized map[string]*consolidatedFunction, order []string) []startEntry {
	starts := make([]startEntry, 0, len(order))
	for _, name := range order {
		starts = append(starts, startEntry{line: byNormalized[name].startLine, name: name})
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].line < starts[j].line })

	return starts
}

func ownerFor(line int, starts []startEntry) string {
	owner := ""

	for _, s := range starts {
		if s.line <= line {
			owner = s.name
		} else {
			break
		}
	}

	return owner
}

// mangledPrefixes are the recognized compiler-mangling schemes: Rust v0
// ("_RNv...") and Itanium C++ ("_ZN...").
var mangledPrefixes = []string{"_RNv", "_ZN"}

// normalizeSymbol demangles name if it looks mangled, falling back to the
// original name on demangle failure, then strips generic parameters to
// produce the consolidation key.
func normalizeSymbol(name string, demangle Demangler) string {
	demangled := name

	if looksMangled(name) && demangle != nil {
		if result, ok := demangle(name); ok {
			demangled = result
		}
	}

	return funcid.StripGenerics(demangled, funcid.StripAll)
}

func looksMangled(name string) bool {
	for _, prefix := range mangledPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}
