package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
)

var symbolQuery string

var symbolsCmd = &cobra.Command{
	Use:   "symbols <file>",
	Short: "Print the symbols defined in an HLASM source file.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := runAnalysis(args[0])
		if err != nil {
			fatalf("symbols: %v", err)
		}

		var entries []struct {
			name, detail string
		}

		if symbolQuery != "" {
			for _, e := range result.Index().Search(symbolQuery, 0) {
				entries = append(entries, struct{ name, detail string }{e.Name, e.Detail})
			}
		} else {
			loc := reslocation.New("file://" + args[0])
			for _, e := range result.Index().DocumentSymbols(loc) {
				entries = append(entries, struct{ name, detail string }{e.Name, e.Detail})
			}
		}

		for _, e := range entries {
			fmt.Printf("%s %s\n", e.name, e.detail)
		}
	},
}

func init() {
	symbolsCmd.Flags().StringVar(&symbolQuery, "query", "", "substring filter, searching the whole index instead of just this file")
	rootCmd.AddCommand(symbolsCmd)
}
