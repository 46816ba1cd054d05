package hlparser

import "github.com/hlasm-tools/hlasmcore/internal/lexspan"

// fieldSplit is the column-free but field-ordered split of one logical
// line into label/instruction/operand/remarks, before any field's
// contents are interpreted.
type fieldSplit struct {
	label      string
	labelCol   uint32
	instr      string
	instrCol   uint32
	operand    string
	operandCol uint32
	remarks    string
	remarksCol uint32
	comment    bool
}

// splitFields implements HLASM's free-format field grammar: a line
// beginning with '*' is entirely a comment; otherwise a non-blank first
// column starts the label field, the next whitespace-delimited field is
// the instruction, the next is the operand field (which may itself
// contain embedded spaces inside quotes or parentheses), and anything
// left over is remarks.
func splitFields(text string) fieldSplit {
	if len(text) > 0 && text[0] == '*' {
		return fieldSplit{comment: true, remarks: text[1:], remarksCol: 1}
	}

	var fs fieldSplit
	pos := 0

	if pos < len(text) && !isSpace(text[pos]) {
		tok, end := scanToken(text, pos)
		fs.label = tok
		fs.labelCol = uint32(pos)
		pos = end
	}

	pos = skipSpaces(text, pos)

	if pos < len(text) {
		tok, end := scanToken(text, pos)
		fs.instr = tok
		fs.instrCol = uint32(pos)
		pos = end
	}

	pos = skipSpaces(text, pos)

	if pos < len(text) {
		tok, end := scanToken(text, pos)
		fs.operand = tok
		fs.operandCol = uint32(pos)
		pos = end
	}

	pos = skipSpaces(text, pos)

	if pos < len(text) {
		fs.remarks = text[pos:]
		fs.remarksCol = uint32(pos)
	}

	return fs
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

func skipSpaces(text string, pos int) int {
	for pos < len(text) && isSpace(text[pos]) {
		pos++
	}

	return pos
}

// scanToken reads a single whitespace-delimited field starting at pos,
// treating parenthesis nesting and apostrophe-quoted strings (with ''
// as an escaped apostrophe) as space-transparent, per HLASM's operand
// grammar.
func scanToken(text string, pos int) (string, int) {
	start := pos
	depth := 0
	inQuote := false

	for pos < len(text) {
		c := text[pos]

		switch {
		case inQuote:
			if c == '\'' {
				if pos+1 < len(text) && text[pos+1] == '\'' {
					pos += 2
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

		case isSpace(c) && depth == 0:
			return text[start:pos], pos
		}

		pos++
	}

	return text[start:pos], pos
}

func rangeAt(line uint32, col uint32, text string) lexspan.Range {
	return lexspan.SingleLine(line, col, text)
}
