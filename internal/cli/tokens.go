package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Print the semantic tokens collected for an HLASM source file.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := runAnalysis(args[0])
		if err != nil {
			fatalf("tokens: %v", err)
		}

		for _, t := range result.SemanticTokens() {
			fmt.Printf("%d:%d+%d type=%d mods=%#x\n", t.Line+1, t.StartChar+1, t.Length, t.TokenType, t.Modifiers)
		}
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}
