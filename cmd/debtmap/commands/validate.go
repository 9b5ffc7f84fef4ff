package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/debtmap/debtmap/internal/analysis"
	"github.com/debtmap/debtmap/pkg/config"
)

// ValidateCommand holds the flags for the validate command.
type ValidateCommand struct {
	configPath string
	extraction string
	lcovPath   string
	totalLOC   int
	noColor    *bool
}

// NewValidateCommand creates and configures the validate command.
func NewValidateCommand(noColor *bool) *cobra.Command {
	vc := &ValidateCommand{noColor: noColor}

	cobraCmd := &cobra.Command{
		Use:   "validate",
		Short: "Grade the codebase against the debt-density gate",
		Long: `Validate runs the full pipeline and reports pass/fail against each
configured threshold (debt density, average complexity, codebase risk,
coverage, and more). Exits non-zero when the gate fails.`,
		RunE: vc.Run,
	}

	cobraCmd.Flags().StringVarP(&vc.configPath, "config", "c", "", "path to debtmap config file (default: search ./debtmap.yaml)")
	cobraCmd.Flags().StringVar(&vc.extraction, "extraction", "", "path to a JSON extraction manifest (required)")
	cobraCmd.Flags().StringVar(&vc.lcovPath, "lcov", "", "path to an LCOV coverage report (optional)")
	cobraCmd.Flags().IntVar(&vc.totalLOC, "total-loc", 0, "total lines of source under analysis, for the debt-density gate")

	_ = cobraCmd.MarkFlagRequired("extraction")

	return cobraCmd
}

// Run executes the validate command.
func (vc *ValidateCommand) Run(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(vc.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	manifest, err := loadManifestAnalyzer(vc.extraction)
	if err != nil {
		return err
	}

	req := analysis.Request{
		Config:   *cfg,
		Files:    manifest.filePaths(),
		LCOVPath: vc.lcovPath,
		TotalLOC: vc.totalLOC,
	}

	result, err := analysis.Run(context.Background(), req, analysis.Dependencies{Analyzer: manifest})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	color.NoColor = vc.noColor != nil && *vc.noColor //nolint:reassign // intentional override of library global, per --no-color

	vc.renderGate(os.Stdout, result)

	if !result.Gate.Pass {
		return fmt.Errorf("validation gate failed (%d metric(s) over threshold)", failedMetricCount(result))
	}

	return nil
}

func (vc *ValidateCommand) renderGate(w outputWriter, result analysis.Result) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Metric", "Value", "Threshold", "Status"})

	for _, m := range result.Gate.Metrics {
		tbl.AppendRow(table.Row{m.Name, fmt.Sprintf("%.2f", m.Value), fmt.Sprintf("%.2f", m.Threshold), statusLabel(m.Pass)})
	}

	tbl.Render()

	fmt.Fprintln(w) //nolint:errcheck

	for _, warning := range result.Gate.Warnings {
		fmt.Fprintf(w, "%s %s\n", color.YellowString("warning:"), warning) //nolint:errcheck
	}

	if result.Gate.Pass {
		fmt.Fprintln(w, color.GreenString("PASS")) //nolint:errcheck
	} else {
		fmt.Fprintln(w, color.RedString("FAIL")) //nolint:errcheck
	}
}

func statusLabel(pass bool) string {
	if pass {
		return color.GreenString("pass")
	}

	return color.RedString("fail")
}

func failedMetricCount(result analysis.Result) int {
	count := 0

	for _, m := range result.Gate.Metrics {
		if !m.Pass {
			count++
		}
	}

	return count
}
