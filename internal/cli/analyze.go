package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlasm-tools/hlasmcore/internal/diag"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze an HLASM source file and print its diagnostics.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := runAnalysis(args[0])
		if err != nil {
			fatalf("analyze: %v", err)
		}

		for _, d := range result.Diagnostics() {
			fmt.Printf("%s %s %d:%d %s\n", d.Code, severityLabel(d.Severity), d.Range.Start.Line+1, d.Range.Start.Character+1, d.Message)
		}

		m := result.Metrics()
		fmt.Printf("\n%d lines, %d statements, %d symbols, %d macros, %d copy expansions, %d diagnostics\n",
			m.Lines, m.Statements, m.DefinedSymbols, m.MacrosDefined, m.CopyExpansions, len(result.Diagnostics()))
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func severityLabel(s diag.Severity) string {
	switch s {
	case diag.SeverityError:
		return "error"
	case diag.SeverityWarning:
		return "warning"
	case diag.SeverityInfo:
		return "info"
	default:
		return "hint"
	}
}
