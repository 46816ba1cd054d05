package stmt

import (
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
)

// OperandKind discriminates the closed set of operand shapes an operand
// field can hold.
type OperandKind int

const (
	OperandExpr OperandKind = iota
	OperandString
	OperandDataDef
	OperandKeyword // name=value, e.g. macro keyword parameters, PART(name,...)
	OperandList    // a parenthesized sub-list, e.g. USING base,end groups
	OperandOmitted // a comma-delimited gap, e.g. "ORG ,4096,"
)

// Operand is one comma-separated entry in a statement's operand field.
type Operand struct {
	Kind    OperandKind
	Range   lexspan.Range
	Expr    *Expr
	Str     string
	DataDef *DataDefinition
	Keyword ids.Id
	Value   *Operand
	List    []Operand
}

// DataDefinition is the parsed operand of a DC/DS directive: type letter,
// optional duplication factor, optional length/scale modifiers, and the
// raw nominal-value text (its own sub-grammar depends on TypeLetter and is
// evaluated by the ordinary processor at reservation time, not by the
// parser).
type DataDefinition struct {
	TypeLetter  rune
	Duplication *Expr
	Length      *Expr
	Scale       *Expr
	Nominal     string
	Range       lexspan.Range
}

// Literal is one entry accumulated in the current literal pool, flushed by
// LTORG or at the end of the current CSECT.
type Literal struct {
	Id      ids.Id
	DataDef DataDefinition
	Range   lexspan.Range
}
