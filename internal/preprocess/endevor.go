package preprocess

import (
	"fmt"
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/library"
	"github.com/hlasm-tools/hlasmcore/internal/task"
)

// Endevor rewrites "-INC member" lines into "COPY member". It is the
// simplest of the three preprocessors: a pure line rewrite with no
// library access and therefore no suspension point.
type Endevor struct {
	statements []SyntheticStatement
}

// NewEndevor creates an Endevor preprocessor.
func NewEndevor() *Endevor {
	return &Endevor{}
}

func (p *Endevor) Name() string { return "ENDEVOR" }

func (p *Endevor) GenerateReplacement(h *task.Handle, provider library.Provider, doc *Document) *Document {
	out := &Document{Diagnostics: append([]diag.Diagnostic(nil), doc.Diagnostics...)}
	p.statements = nil

	for _, line := range doc.Lines {
		trimmed := strings.TrimSpace(line.Text)

		if member, ok := cutIncPrefix(trimmed); ok {
			rewritten := fmt.Sprintf("          COPY  %s", member)
			newLine := Line{Text: rewritten, Origin: line.Origin, LineNumber: line.LineNumber}
			out.Lines = append(out.Lines, newLine)
			p.statements = append(p.statements, SyntheticStatement{
				Text:   rewritten,
				Origin: line.Origin,
				Range:  newLine.Range(),
			})

			continue
		}

		out.Lines = append(out.Lines, line)
	}

	return out
}

func (p *Endevor) TakeStatements() []SyntheticStatement { return p.statements }

func (p *Endevor) ViewIncludedMembers() []string { return nil }

func cutIncPrefix(trimmed string) (member string, ok bool) {
	const prefix = "-INC "
	if !strings.HasPrefix(strings.ToUpper(trimmed), prefix) {
		return "", false
	}

	return strings.TrimSpace(trimmed[len(prefix):]), true
}
