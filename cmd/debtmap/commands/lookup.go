package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/debtmap/debtmap/pkg/callgraph"
	"github.com/debtmap/debtmap/pkg/funcid"
)

// LookupCommand holds the flags for the lookup command.
type LookupCommand struct {
	extraction   string
	file         string
	name         string
	modulePath   string
	line         int
	callerFile   string
	callerModule string
}

// NewLookupCommand creates and configures the lookup command.
func NewLookupCommand() *cobra.Command {
	lc := &LookupCommand{}

	cobraCmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve a function identity against a merged call graph",
		Long: `Lookup builds a call graph from an extraction manifest (nodes only, no
scoring) and resolves one function query through the exact/fuzzy/
name-only matching chain, reporting the match and its confidence.`,
		RunE: lc.Run,
	}

	cobraCmd.Flags().StringVar(&lc.extraction, "extraction", "", "path to a JSON extraction manifest (required)")
	cobraCmd.Flags().StringVar(&lc.file, "file", "", "candidate file path of the function to resolve")
	cobraCmd.Flags().StringVar(&lc.name, "name", "", "qualified function name to resolve (required)")
	cobraCmd.Flags().StringVar(&lc.modulePath, "module", "", "candidate module path of the function to resolve")
	cobraCmd.Flags().IntVar(&lc.line, "line", 0, "candidate source line of the function to resolve")
	cobraCmd.Flags().StringVar(&lc.callerFile, "caller-file", "", "file of the call site driving this lookup, for name-only-match tie-breaking (same file, then same directory)")
	cobraCmd.Flags().StringVar(&lc.callerModule, "caller-module", "", "module of the call site driving this lookup, for fuzzy-match tie-breaking")

	_ = cobraCmd.MarkFlagRequired("extraction")
	_ = cobraCmd.MarkFlagRequired("name")

	return cobraCmd
}

// Run executes the lookup command.
func (lc *LookupCommand) Run(_ *cobra.Command, _ []string) error {
	manifest, err := loadManifestAnalyzer(lc.extraction)
	if err != nil {
		return err
	}

	graph := callgraph.New()

	for _, fx := range manifest.files {
		for _, node := range fx.Nodes {
			graph.AddFunction(node)
		}
	}

	query := funcid.FunctionId{
		File:       lc.file,
		Name:       lc.name,
		ModulePath: lc.modulePath,
		Line:       lc.line,
	}

	hint := funcid.Query{
		CallerFile:   lc.callerFile,
		CallerModule: lc.callerModule,
		Line:         lc.line,
	}

	match, ok := graph.FindFunction(query, hint)
	if !ok {
		fmt.Println(color.RedString("no match for %q", lc.name)) //nolint:errcheck

		return fmt.Errorf("no match for %q", lc.name)
	}

	fmt.Printf("%s %s:%d %s (confidence %.2f)\n",
		color.GreenString("match:"), match.ID.File, match.ID.Line, match.ID.Name, float64(match.Confidence)) //nolint:errcheck

	return nil
}
