package preprocess

import (
	"fmt"
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/library"
	"github.com/hlasm-tools/hlasmcore/internal/task"
)

// CICS rewrites "EXEC CICS ... END-EXEC" command blocks into a single
// call to a synthesized DFHECALL macro invocation, naming the CICS
// command as its operand. No library access is involved, so this stage
// never suspends.
type CICS struct {
	statements []SyntheticStatement
}

// NewCICS creates a CICS preprocessor.
func NewCICS() *CICS {
	return &CICS{}
}

func (p *CICS) Name() string { return "CICS" }

func (p *CICS) GenerateReplacement(h *task.Handle, provider library.Provider, doc *Document) *Document {
	out := &Document{Diagnostics: append([]diag.Diagnostic(nil), doc.Diagnostics...)}
	p.statements = nil

	i := 0
	for i < len(doc.Lines) {
		line := doc.Lines[i]
		trimmed := strings.TrimSpace(line.Text)

		if !isExecCommand(trimmed, "CICS") {
			out.Lines = append(out.Lines, line)
			i++
			continue
		}

		command := execCommandName(trimmed, "CICS")
		blockEnd := i

		for blockEnd < len(doc.Lines) && !strings.Contains(strings.ToUpper(doc.Lines[blockEnd].Text), "END-EXEC") {
			blockEnd++
		}

		if blockEnd < len(doc.Lines) {
			blockEnd++ // include the END-EXEC line itself in the span consumed
		}

		rewritten := fmt.Sprintf("          DFHECALL %s", command)
		newLine := Line{Text: rewritten, Origin: line.Origin, LineNumber: line.LineNumber}
		out.Lines = append(out.Lines, newLine)
		p.statements = append(p.statements, SyntheticStatement{
			Text:   rewritten,
			Origin: line.Origin,
			Range:  newLine.Range(),
		})

		i = blockEnd
	}

	return out
}

func (p *CICS) TakeStatements() []SyntheticStatement { return p.statements }

func (p *CICS) ViewIncludedMembers() []string { return nil }

// isExecCommand reports whether trimmed begins an "EXEC <lang> ..." block.
func isExecCommand(trimmed, lang string) bool {
	upper := strings.ToUpper(trimmed)
	prefix := "EXEC " + lang

	return strings.HasPrefix(upper, prefix)
}

// execCommandName extracts the first token after "EXEC <lang>", the
// command or statement name the block invokes.
func execCommandName(trimmed, lang string) string {
	upper := strings.ToUpper(trimmed)
	rest := strings.TrimSpace(upper[len("EXEC "+lang):])

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "UNKNOWN"
	}

	return fields[0]
}
