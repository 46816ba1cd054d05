// Package preprocess implements the preprocessor chain of spec §4.3: zero
// or more Preprocessor stages, composed in order, each rewriting a
// Document (a line array with per-line origins) into another Document.
// Some stages suspend mid-rewrite to fetch a library member; all share
// the task trampoline of internal/task rather than owning their own
// concurrency.
package preprocess

import (
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
)

// Line is one physical line of a Document: its text and where it came
// from (the host document, or a virtual file synthesized by an earlier
// preprocessor stage).
type Line struct {
	Text       string
	Origin     reslocation.Location
	LineNumber uint32
}

// Document is spec §4.3's "line array with origins." It is treated as
// immutable from a Preprocessor's point of view: GenerateReplacement
// returns a new Document rather than mutating the one it was given.
type Document struct {
	Lines       []Line
	Diagnostics []diag.Diagnostic
}

// NewDocument splits text into lines against a single origin, the
// starting point of the chain before any stage has run.
func NewDocument(text string, origin reslocation.Location) *Document {
	raw := strings.Split(text, "\n")
	lines := make([]Line, len(raw))

	for i, t := range raw {
		lines[i] = Line{Text: strings.TrimSuffix(t, "\r"), Origin: origin, LineNumber: uint32(i)}
	}

	return &Document{Lines: lines}
}

// Range returns the full-line range for l, for diagnostics and synthetic
// statements that point at a whole rewritten line.
func (l Line) Range() lexspan.Range {
	return lexspan.SingleLine(l.LineNumber, 0, l.Text)
}

// SyntheticStatement is a lightweight record of one line a preprocessor
// produced, kept so the host can jump to preprocessor-generated lines
// (spec §4.3's take_statements) without the preprocessor needing its own
// identifier pool or parser dependency.
type SyntheticStatement struct {
	Text     string
	Origin   reslocation.Location
	Range    lexspan.Range
}
