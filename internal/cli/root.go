// Package cli implements hlasmcore's command tree: analyze, tokens and
// symbols, each a thin driver over pkg/analyzer.Analyze.
//
// Grounded on the teacher's cmd/go-dws-lsp/main.go for the flag set and
// logging setup (retargeted from flag to cobra per this module's
// sirupsen/logrus + spf13/cobra ambient stack) and on
// Consensys-go-corset's pkg/cmd package split (one file per subcommand,
// each registering itself on rootCmd from its own init, Execute() as the
// single entry point main calls).
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	libraryDir string
)

// rootCmd is the base command when hlasmcore is called without a
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "hlasmcore",
	Short: "A semantic analyzer for HLASM source.",
	Long:  "hlasmcore drives the conditional- and ordinary-assembly analysis pipeline over a single HLASM source file and prints its results.",
}

// Execute adds every subcommand to rootCmd and runs it. Called once from
// main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&libraryDir, "library-dir", "", "directory of COPY/macro members to preload as the library provider")
}

// setupLogging configures logrus the way the teacher's setupLogging
// configures the standard log package, except driven by a level name
// instead of log.SetFlags.
func setupLogging() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.ErrorLevel
	}

	log.SetLevel(level)

	return logrus.NewEntry(log)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
