package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/debtmap/debtmap/internal/analysis"
	"github.com/debtmap/debtmap/pkg/config"
	"github.com/debtmap/debtmap/pkg/debt"
)

// AnalyzeCommand holds the flags for the analyze command.
type AnalyzeCommand struct {
	configPath string
	extraction string
	lcovPath   string
	totalLOC   int
	format     string
	output     string
	verbose    *bool
	noColor    *bool
}

// NewAnalyzeCommand creates and configures the analyze command.
func NewAnalyzeCommand(verbose, noColor *bool) *cobra.Command {
	ac := &AnalyzeCommand{verbose: verbose, noColor: noColor}

	cobraCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Rank functions and files by technical-debt priority",
		Long: `Analyze runs the full pipeline - extraction merge, call resolution,
validation, and unified scoring - and prints the ranked debt item set.`,
		RunE: ac.Run,
	}

	cobraCmd.Flags().StringVarP(&ac.configPath, "config", "c", "", "path to debtmap config file (default: search ./debtmap.yaml)")
	cobraCmd.Flags().StringVar(&ac.extraction, "extraction", "", "path to a JSON extraction manifest (required)")
	cobraCmd.Flags().StringVar(&ac.lcovPath, "lcov", "", "path to an LCOV coverage report (optional)")
	cobraCmd.Flags().IntVar(&ac.totalLOC, "total-loc", 0, "total lines of source under analysis, for the debt-density gate")
	cobraCmd.Flags().StringVarP(&ac.format, "format", "f", "text", "output format: text or json")
	cobraCmd.Flags().StringVarP(&ac.output, "output", "o", "", "output file (default: stdout)")

	_ = cobraCmd.MarkFlagRequired("extraction")

	return cobraCmd
}

// Run executes the analyze command.
func (ac *AnalyzeCommand) Run(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(ac.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	manifest, err := loadManifestAnalyzer(ac.extraction)
	if err != nil {
		return err
	}

	req := analysis.Request{
		Config:   *cfg,
		Files:    manifest.filePaths(),
		LCOVPath: ac.lcovPath,
		TotalLOC: ac.totalLOC,
	}

	result, err := analysis.Run(context.Background(), req, analysis.Dependencies{Analyzer: manifest})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	writer, err := ac.openOutput()
	if err != nil {
		return err
	}
	defer writer.Close()

	switch ac.format {
	case "json":
		return writeJSON(writer, result)
	default:
		return ac.writeText(writer, result)
	}
}

func (ac *AnalyzeCommand) openOutput() (outputWriter, error) {
	if ac.output == "" {
		return stdoutWriter{}, nil
	}

	f, err := os.Create(ac.output)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	return f, nil
}

// outputWriter is the minimal io.WriteCloser surface the text/JSON
// formatters need.
type outputWriter interface {
	Write(p []byte) (int, error)
	Close() error
}

type stdoutWriter struct{}

func (stdoutWriter) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdoutWriter) Close() error                { return nil }

func writeJSON(w outputWriter, result analysis.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}

func (ac *AnalyzeCommand) writeText(w outputWriter, result analysis.Result) error {
	noColor := ac.noColor != nil && *ac.noColor
	color.NoColor = noColor //nolint:reassign // intentional override of library global, per --no-color

	fmt.Fprintf(w, "%s\n\n", color.New(color.Bold).Sprintf("debtmap analysis - %s", humanize.Comma(int64(len(result.Items)))+" items")) //nolint:errcheck

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Rank", "Score", "Kind", "Location", "Category", "Recommendation"})

	verbose := ac.verbose != nil && *ac.verbose

	maxRows := len(result.Items)
	if !verbose && maxRows > defaultTextRowLimit {
		maxRows = defaultTextRowLimit
	}

	for i, item := range result.Items[:maxRows] {
		tbl.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("%.1f", item.UnifiedScore.FinalScore.Value()),
			kindLabel(item.Kind),
			locationLabel(item),
			string(item.Category),
			item.Recommendation,
		})
	}

	tbl.Render()

	if !verbose && len(result.Items) > defaultTextRowLimit {
		fmt.Fprintf(w, "\n(%d more items omitted; pass --verbose to show all)\n", len(result.Items)-defaultTextRowLimit) //nolint:errcheck
	}

	return nil
}

// defaultTextRowLimit caps the non-verbose text table, matching the
// teacher's "truncate unless --verbose" output convention.
const defaultTextRowLimit = 25

func kindLabel(k debt.Kind) string {
	if k == debt.KindFile {
		return "file"
	}

	return "function"
}

func locationLabel(item debt.Item) string {
	if item.Location.Function == "" {
		return item.Location.File
	}

	return fmt.Sprintf("%s:%d %s", item.Location.File, item.Location.Line, item.Location.Function)
}
