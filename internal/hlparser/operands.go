package hlparser

import (
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// splitTopLevel splits text on commas that are not nested inside
// parentheses or an apostrophe-quoted string, the comma-delimited operand
// list grammar every HLASM statement form shares.
func splitTopLevel(text string) []string {
	var parts []string

	depth := 0
	inQuote := false
	start := 0

	for i := 0; i < len(text); i++ {
		c := text[i]

		switch {
		case inQuote:
			if c == '\'' {
				if i+1 < len(text) && text[i+1] == '\'' {
					i++
					continue
				}

				inQuote = false
			}

		case c == '\'':
			inQuote = true

		case c == '(':
			depth++

		case c == ')':
			if depth > 0 {
				depth--
			}

		case c == ',' && depth == 0:
			parts = append(parts, text[start:i])
			start = i + 1
		}
	}

	parts = append(parts, text[start:])

	return parts
}

// parseOperands parses a statement's operand field into the comma
// separated []stmt.Operand list of spec §3, for the forms (machine,
// assembler, conditional-assembly) that share plain comma/keyword/sublist
// syntax. Data-definition (DC/DS) nominal values are left as a single
// OperandDataDef with an unparsed Nominal string, since that grammar is
// type-letter-specific and belongs to the ordinary processor (spec §4.6).
func parseOperands(pool *ids.Pool, text string, line, col uint32, loc reslocation.Location) ([]stmt.Operand, []diag.Diagnostic) {
	if text == "" {
		return nil, nil
	}

	var (
		operands []stmt.Operand
		diags    []diag.Diagnostic
		pos      = col
	)

	for _, field := range splitTopLevel(text) {
		op, d := parseOneOperand(pool, field, line, pos, loc)
		operands = append(operands, op)
		diags = append(diags, d...)
		pos += uint32(len(field)) + 1 // +1 for the consumed comma
	}

	return operands, diags
}

func parseOneOperand(pool *ids.Pool, field string, line, col uint32, loc reslocation.Location) (stmt.Operand, []diag.Diagnostic) {
	r := rangeAt(line, col, field)

	if field == "" {
		return stmt.Operand{Kind: stmt.OperandOmitted, Range: r}, nil
	}

	if eq := findTopLevelEquals(field); eq >= 0 {
		name := field[:eq]
		valueText := field[eq+1:]

		valueOp, diags := parseOneOperand(pool, valueText, line, col+uint32(eq)+1, loc)

		return stmt.Operand{
			Kind:    stmt.OperandKeyword,
			Range:   r,
			Keyword: pool.Intern(name),
			Value:   &valueOp,
		}, diags
	}

	if name, paren, ok := splitCallForm(field); ok {
		listOp, diags := parseOneOperand(pool, paren, line, col+uint32(len(name)), loc)

		return stmt.Operand{
			Kind:    stmt.OperandKeyword,
			Range:   r,
			Keyword: pool.Intern(name),
			Value:   &listOp,
		}, diags
	}

	if strings.HasPrefix(field, "(") && strings.HasSuffix(field, ")") && isBalancedList(field) {
		inner := field[1 : len(field)-1]

		var (
			list  []stmt.Operand
			diags []diag.Diagnostic
			pos   = col + 1
		)

		for _, sub := range splitTopLevel(inner) {
			op, d := parseOneOperand(pool, sub, line, pos, loc)
			list = append(list, op)
			diags = append(diags, d...)
			pos += uint32(len(sub)) + 1
		}

		return stmt.Operand{Kind: stmt.OperandList, Range: r, List: list}, diags
	}

	if strings.HasPrefix(field, "'") {
		ep := newExprParser(pool, field, line, col, loc)
		str := ep.scanQuoted()

		return stmt.Operand{Kind: stmt.OperandString, Range: r, Str: str}, ep.diags
	}

	ep := newExprParser(pool, field, line, col, loc)
	expr := ep.parseExpr()

	if ep.pos < len(ep.text) {
		ep.errorf(diag.CodeA001, ep.rangeFrom(ep.pos), "unexpected trailing text in operand")
	}

	return stmt.Operand{Kind: stmt.OperandExpr, Range: r, Expr: expr}, ep.diags
}

// findTopLevelEquals locates a depth-0, non-quoted '=' that marks a
// keyword operand (name=value), or -1 if there is none.
func findTopLevelEquals(field string) int {
	depth := 0
	inQuote := false

	for i := 0; i < len(field); i++ {
		c := field[i]

		switch {
		case inQuote:
			if c == '\'' {
				if i+1 < len(field) && field[i+1] == '\'' {
					i++
					continue
				}

				inQuote = false
			}

		case c == '\'':
			inQuote = true

		case c == '(':
			depth++

		case c == ')':
			if depth > 0 {
				depth--
			}

		case c == '=' && depth == 0:
			return i
		}
	}

	return -1
}

// splitCallForm recognizes a name(...) sub-operand, e.g. EXTRN's
// PART(member,...): a symbol-shaped prefix immediately followed by a
// balanced parenthesized list running to the end of field. Returns the
// name and the parenthesized remainder (including its parens, so the
// caller can hand it straight to the OperandList branch).
func splitCallForm(field string) (name, paren string, ok bool) {
	i := 0
	for i < len(field) && isSymbolChar(field[i]) {
		i++
	}

	if i == 0 || i >= len(field) || field[i] != '(' || !strings.HasSuffix(field, ")") {
		return "", "", false
	}

	if !isBalancedList(field[i:]) {
		return "", "", false
	}

	return field[:i], field[i:], true
}

func isBalancedList(field string) bool {
	depth := 0
	inQuote := false

	for i := 0; i < len(field); i++ {
		c := field[i]

		switch {
		case inQuote:
			if c == '\'' {
				if i+1 < len(field) && field[i+1] == '\'' {
					i++
					continue
				}

				inQuote = false
			}

		case c == '\'':
			inQuote = true

		case c == '(':
			depth++

		case c == ')':
			depth--

			if depth == 0 && i != len(field)-1 {
				return false
			}
		}
	}

	return depth == 0
}
