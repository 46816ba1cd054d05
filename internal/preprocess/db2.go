package preprocess

import (
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/library"
	"github.com/hlasm-tools/hlasmcore/internal/task"
)

// DB2 rewrites "EXEC SQL ... END-EXEC" blocks into DFHRESP-free assembler
// MNOTE/DS-shaped statement stubs. An "INCLUDE member" sub-statement
// inside the block is resolved through the library.Provider instead — a
// genuine suspension point, since the member may not be immediately
// available.
type DB2 struct {
	statements []SyntheticStatement
	included   []string
}

// NewDB2 creates a DB2 preprocessor.
func NewDB2() *DB2 {
	return &DB2{}
}

func (p *DB2) Name() string { return "DB2" }

func (p *DB2) GenerateReplacement(h *task.Handle, provider library.Provider, doc *Document) *Document {
	out := &Document{Diagnostics: append([]diag.Diagnostic(nil), doc.Diagnostics...)}
	p.statements = nil
	p.included = nil

	i := 0
	for i < len(doc.Lines) {
		line := doc.Lines[i]
		trimmed := strings.TrimSpace(line.Text)

		if !isExecCommand(trimmed, "SQL") {
			out.Lines = append(out.Lines, line)
			i++
			continue
		}

		blockStart := i
		blockEnd := i

		for blockEnd < len(doc.Lines) && !strings.Contains(strings.ToUpper(doc.Lines[blockEnd].Text), "END-EXEC") {
			blockEnd++
		}

		if blockEnd < len(doc.Lines) {
			blockEnd++
		}

		block := doc.Lines[blockStart:blockEnd]

		if member, ok := findIncludeMember(block); ok {
			out = p.spliceInclude(h, provider, out, line, member)
		} else {
			out.Lines = append(out.Lines, p.stubLines(line)...)
		}

		i = blockEnd
	}

	return out
}

// spliceInclude fetches member through provider, suspending the task
// body via h, and appends either the fetched member's lines (as a
// virtual file rooted at the fetch's reported location) or an MNOTE
// diagnostic line if the fetch failed.
func (p *DB2) spliceInclude(h *task.Handle, provider library.Provider, out *Document, at Line, member string) *Document {
	fut := provider.GetLibrary(member)
	result, err := task.Await(h, fut)

	if err != nil {
		out.Diagnostics = append(out.Diagnostics, diag.Diagnostic{
			Code:     diag.CodeE058,
			Severity: diag.SeverityError,
			Range:    at.Range(),
			Location: at.Origin,
			Message:  "DB2 INCLUDE member " + member + " not found",
		})
		out.Lines = append(out.Lines, p.stubLines(at)...)

		return out
	}

	p.included = append(p.included, member)

	origin := result.Location
	if origin.IsEmpty() {
		origin = at.Origin.Join(member)
	}

	for lineNo, text := range strings.Split(result.Text, "\n") {
		text = strings.TrimSuffix(text, "\r")
		out.Lines = append(out.Lines, Line{Text: text, Origin: origin, LineNumber: uint32(lineNo)})
	}

	return out
}

// stubLines renders an EXEC SQL block as an MNOTE plus a DS 0H, matching
// the rest of the stream's statement shape without modeling the SQL call
// itself.
func (p *DB2) stubLines(at Line) []Line {
	mnote := Line{
		Text:       "          MNOTE 4,'DB2 EXEC SQL block replaced with stub'",
		Origin:     at.Origin,
		LineNumber: at.LineNumber,
	}
	ds := Line{
		Text:       "          DS    0H",
		Origin:     at.Origin,
		LineNumber: at.LineNumber,
	}

	p.statements = append(p.statements,
		SyntheticStatement{Text: mnote.Text, Origin: mnote.Origin, Range: mnote.Range()},
		SyntheticStatement{Text: ds.Text, Origin: ds.Origin, Range: ds.Range()},
	)

	return []Line{mnote, ds}
}

func (p *DB2) TakeStatements() []SyntheticStatement { return p.statements }

func (p *DB2) ViewIncludedMembers() []string { return p.included }

// findIncludeMember scans a block of lines for "INCLUDE member", the one
// DB2 sub-statement that names a library member.
func findIncludeMember(block []Line) (member string, ok bool) {
	for _, line := range block {
		trimmed := strings.TrimSpace(line.Text)
		upper := strings.ToUpper(trimmed)

		if strings.HasPrefix(upper, "INCLUDE ") {
			return strings.TrimSpace(trimmed[len("INCLUDE "):]), true
		}
	}

	return "", false
}
