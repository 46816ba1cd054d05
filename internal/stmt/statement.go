package stmt

import (
	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
)

// StatementKind discriminates the three-way sum of spec §3 "Statement":
// resolved, deferred, or error.
type StatementKind int

const (
	StatementResolved StatementKind = iota
	StatementDeferred
	StatementError
)

// Statement is a parsed source line. Only the fields relevant to Kind are
// populated: Operands/Literals for Resolved, RawOperandText for Deferred,
// only Diagnostics for Error.
type Statement struct {
	Kind StatementKind

	Label      ids.Id
	LabelText  string
	LabelRange lexspan.Range

	Instruction      string // uppercased opcode mnemonic
	InstructionRange lexspan.Range

	Operands []Operand // populated for Resolved

	RawOperandText  string // populated for Deferred: unparsed because the opcode's form is unknown
	OperandRange    lexspan.Range

	Remarks      string
	RemarksRange lexspan.Range

	Literals []Literal

	Diagnostics []diag.Diagnostic

	Status   ProcessingStatus
	Location reslocation.Location
	Range    lexspan.Range
}

// CacheKey identifies a cached (statement, processing-status) pairing, per
// spec §3's statement-lifecycle invariant: a deferred statement is
// reparsed and cached once per distinct processing status it is seen
// under.
type CacheKey struct {
	StatementIndex int
	Status         ProcessingStatus
}

// LogicalLine is one assembled source line ready for Parse: any
// continuation lines have already been merged into Text, and ICTL column
// declarations already applied by the statement provider that produced it.
type LogicalLine struct {
	Text                string
	Location            reslocation.Location
	Range               lexspan.Range
	ContinuationRanges  []lexspan.Range
}

// HasLabel reports whether the statement's label field was non-empty.
func (s Statement) HasLabel() bool {
	return s.Label != ids.Empty
}
