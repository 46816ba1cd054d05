// Command hlasmcore is a minimal demonstration driver for pkg/analyzer:
// it reads one HLASM source file and prints diagnostics, semantic tokens
// or the symbol index, depending on the subcommand. It is not a transport
// implementation — an LSP server or build-pipeline integration is a
// distribution concern left to its own host.
package main

import (
	"github.com/hlasm-tools/hlasmcore/internal/cli"
)

func main() {
	cli.Execute()
}
