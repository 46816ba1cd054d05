package hlparser

import (
	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// dataDefinitionInstructions names the instructions whose operand field
// follows the DC/DS type-letter grammar rather than plain comma/expr
// syntax (spec §4.6's data-definition processor).
var dataDefinitionInstructions = map[string]bool{
	"DC":  true,
	"DS":  true,
	"DXD": true,
	"CXD": true,
}

func isDataDefinitionInstruction(instr string) bool {
	return dataDefinitionInstructions[instr]
}

// parseDataDefOperands parses a DC/DS-shaped operand field: one or more
// comma-separated data-definition entries, each
// [duplication]TypeLetter[L length][S scale]['nominal'].
func parseDataDefOperands(pool *ids.Pool, text string, line, col uint32, loc reslocation.Location) ([]stmt.Operand, []diag.Diagnostic) {
	if text == "" {
		return nil, nil
	}

	var (
		operands []stmt.Operand
		diags    []diag.Diagnostic
		pos      = col
	)

	for _, field := range splitTopLevel(text) {
		op, d := parseOneDataDef(pool, field, line, pos, loc)
		operands = append(operands, op)
		diags = append(diags, d...)
		pos += uint32(len(field)) + 1
	}

	return operands, diags
}

func parseOneDataDef(pool *ids.Pool, field string, line, col uint32, loc reslocation.Location) (stmt.Operand, []diag.Diagnostic) {
	r := rangeAt(line, col, field)

	if field == "" {
		return stmt.Operand{Kind: stmt.OperandOmitted, Range: r}, nil
	}

	ep := newExprParser(pool, field, line, col, loc)

	dd := &stmt.DataDefinition{Range: r}

	if ep.peek() == '(' || isDigit(ep.peek()) {
		dd.Duplication = ep.parseFactorNoTypeLetter()
	}

	if ep.pos >= len(ep.text) {
		ep.errorf(diag.CodeA001, ep.rangeFrom(ep.pos), "missing data-definition type letter")
		return stmt.Operand{Kind: stmt.OperandDataDef, Range: r, DataDef: dd}, ep.diags
	}

	dd.TypeLetter = rune(upperByte(ep.text[ep.pos]))
	ep.pos++

	for ep.pos < len(ep.text) {
		switch upperByte(ep.peek()) {
		case 'L':
			ep.pos++
			dd.Length = ep.parseFactorNoTypeLetter()
		case 'S':
			ep.pos++
			dd.Scale = ep.parseFactorNoTypeLetter()
		default:
			goto nominal
		}
	}

nominal:
	if ep.pos < len(ep.text) && ep.text[ep.pos] == '\'' {
		dd.Nominal = ep.scanQuoted()
	} else if ep.pos < len(ep.text) {
		ep.errorf(diag.CodeA001, ep.rangeFrom(ep.pos), "expected a quoted nominal value")
	}

	return stmt.Operand{Kind: stmt.OperandDataDef, Range: r, DataDef: dd}, ep.diags
}

// parseFactorNoTypeLetter parses a duplication/length/scale modifier:
// either a decimal integer or a parenthesized expression.
func (p *exprParser) parseFactorNoTypeLetter() *stmt.Expr {
	if p.peek() == '(' {
		return p.parsePrimary()
	}

	start := p.pos

	for p.pos < len(p.text) && isDigit(p.text[p.pos]) {
		p.pos++
	}

	if p.pos == start {
		p.errorf(diag.CodeA001, p.rangeFrom(start), "expected a decimal modifier")
		return nil
	}

	return p.parseSelfDefiningOrNumber(start)
}
