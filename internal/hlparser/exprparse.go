package hlparser

import (
	"strconv"
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// exprParser is a hand-written recursive-descent parser over one
// operand-field term, in the manner of db47h-ngaro/asm's parser: a small
// cursor over the raw text rather than a separate tokenizer pass.
type exprParser struct {
	pool  *ids.Pool
	text  string
	pos   int
	line  uint32
	col   uint32 // column of text[0] on line
	loc   reslocation.Location
	diags []diag.Diagnostic
}

func newExprParser(pool *ids.Pool, text string, line, col uint32, loc reslocation.Location) *exprParser {
	return &exprParser{pool: pool, text: text, line: line, col: col, loc: loc}
}

func (p *exprParser) errorf(code diag.Code, r lexspan.Range, msg string) {
	p.diags = append(p.diags, diag.Diagnostic{Code: code, Severity: diag.SeverityError, Range: r, Location: p.loc, Message: msg})
}

func (p *exprParser) rangeFrom(start int) lexspan.Range {
	return rangeAt(p.line, p.col+uint32(start), p.text[start:p.pos])
}

func (p *exprParser) peek() byte {
	if p.pos >= len(p.text) {
		return 0
	}

	return p.text[p.pos]
}

// parseExpr parses an additive expression: term (('+' | '-') term)*.
func (p *exprParser) parseExpr() *stmt.Expr {
	start := p.pos
	left := p.parseTerm()

	for {
		op, ok := p.matchAddOp()
		if !ok {
			break
		}

		right := p.parseTerm()
		left = &stmt.Expr{Kind: stmt.ExprBinary, Op: op, Left: left, Right: right, Range: p.rangeFrom(start)}
	}

	return left
}

func (p *exprParser) matchAddOp() (stmt.Operator, bool) {
	switch p.peek() {
	case '+':
		p.pos++
		return stmt.OpAdd, true
	case '-':
		p.pos++
		return stmt.OpSub, true
	}

	return 0, false
}

// parseTerm parses a multiplicative expression: factor (('*' | '/') factor)*.
func (p *exprParser) parseTerm() *stmt.Expr {
	start := p.pos
	left := p.parseFactor()

	for {
		var op stmt.Operator

		switch p.peek() {
		case '*':
			// "*" alone (not followed by another "*") is multiplication only
			// when a left operand is already pending; a bare leading "*" is
			// the current-location reference, handled in parseFactor.
			op = stmt.OpMul
		case '/':
			op = stmt.OpDiv
		default:
			return left
		}

		p.pos++

		right := p.parseFactor()
		left = &stmt.Expr{Kind: stmt.ExprBinary, Op: op, Left: left, Right: right, Range: p.rangeFrom(start)}
	}
}

// parseFactor parses a unary-minus'd primary.
func (p *exprParser) parseFactor() *stmt.Expr {
	start := p.pos

	if p.peek() == '-' {
		p.pos++
		inner := p.parseFactor()

		return &stmt.Expr{Kind: stmt.ExprUnary, Op: stmt.OpNeg, Left: inner, Range: p.rangeFrom(start)}
	}

	if p.peek() == '+' {
		p.pos++
		return p.parseFactor()
	}

	return p.parsePrimary()
}

var attrLetters = map[byte]stmt.AttrKind{
	'T': stmt.AttrType,
	'L': stmt.AttrLength,
	'S': stmt.AttrScale,
	'I': stmt.AttrInteger,
	'K': stmt.AttrCount,
	'N': stmt.AttrNumber,
}

// parsePrimary parses a number, symbol, "*", parenthesized sub-expression,
// attribute reference, or self-defining term.
func (p *exprParser) parsePrimary() *stmt.Expr {
	start := p.pos

	if p.pos >= len(p.text) {
		p.errorf(diag.CodeA001, p.rangeFrom(start), "expected an operand term, found end of field")
		return nil
	}

	c := p.peek()

	// Attribute reference: a single letter from {T,L,S,I,K,N} immediately
	// followed by an apostrophe.
	if attr, ok := attrLetters[upperByte(c)]; ok && p.pos+1 < len(p.text) && p.text[p.pos+1] == '\'' {
		p.pos += 2

		inner := p.parsePrimary()
		e := &stmt.Expr{Kind: stmt.ExprAttr, Attr: attr, Range: p.rangeFrom(start)}

		if inner != nil && inner.Kind == stmt.ExprSymbol {
			e.Symbol = inner.Symbol
		}

		return e
	}

	if c == '(' {
		p.pos++

		inner := p.parseExpr()

		if p.peek() == ')' {
			p.pos++
		} else {
			p.errorf(diag.CodeA001, p.rangeFrom(start), "unbalanced parenthesis")
		}

		return &stmt.Expr{Kind: stmt.ExprParen, Left: inner, Range: p.rangeFrom(start)}
	}

	if c == '*' {
		p.pos++
		return &stmt.Expr{Kind: stmt.ExprCurrentLoc, Range: p.rangeFrom(start)}
	}

	if c >= '0' && c <= '9' {
		return p.parseSelfDefiningOrNumber(start)
	}

	if letter := upperByte(c); (letter == 'X' || letter == 'B' || letter == 'C') && p.pos+1 < len(p.text) && p.text[p.pos+1] == '\'' {
		return p.parseTypedSelfDefiningTerm(start, letter)
	}

	if isSymbolStart(c) {
		name := p.scanIdentifier()
		return &stmt.Expr{Kind: stmt.ExprSymbol, Symbol: p.pool.Intern(name), Range: p.rangeFrom(start)}
	}

	if c == '\'' {
		str := p.scanQuoted()
		return &stmt.Expr{Kind: stmt.ExprString, Str: str, Range: p.rangeFrom(start)}
	}

	p.errorf(diag.CodeA001, p.rangeFrom(start), "unrecognized operand syntax")
	p.pos++

	return nil
}

// parseSelfDefiningOrNumber parses a plain decimal integer. A typed
// self-defining term (X'..', B'..', C'..') starts with a type letter,
// never a digit, so it never reaches here; parseTypedSelfDefiningTerm
// handles those.
func (p *exprParser) parseSelfDefiningOrNumber(start int) *stmt.Expr {
	for p.pos < len(p.text) && isDigit(p.text[p.pos]) {
		p.pos++
	}

	n, err := strconv.ParseInt(p.text[start:p.pos], 10, 64)
	if err != nil {
		p.errorf(diag.CodeA001, p.rangeFrom(start), "invalid decimal self-defining term")
		return nil
	}

	return &stmt.Expr{Kind: stmt.ExprNumber, Number: n, Range: p.rangeFrom(start)}
}

func (p *exprParser) scanIdentifier() string {
	start := p.pos

	for p.pos < len(p.text) && isSymbolChar(p.text[p.pos]) {
		p.pos++
	}

	return p.text[start:p.pos]
}

// parseTypedSelfDefiningTerm parses X'..'/B'..'/C'..' self-defining terms.
// X and B collapse to their numeric value; C (and any other type letter
// reached here) is kept as its raw character content, matching how
// ExprString already evaluates to "undefined" rather than an integer.
func (p *exprParser) parseTypedSelfDefiningTerm(start int, letter byte) *stmt.Expr {
	p.pos++ // the type letter

	inner := p.scanQuoted()

	switch letter {
	case 'X':
		n, err := strconv.ParseInt(inner, 16, 64)
		if err != nil {
			p.errorf(diag.CodeA001, p.rangeFrom(start), "invalid hexadecimal self-defining term")
			return nil
		}

		return &stmt.Expr{Kind: stmt.ExprNumber, Number: n, Range: p.rangeFrom(start)}

	case 'B':
		n, err := strconv.ParseInt(inner, 2, 64)
		if err != nil {
			p.errorf(diag.CodeA001, p.rangeFrom(start), "invalid binary self-defining term")
			return nil
		}

		return &stmt.Expr{Kind: stmt.ExprNumber, Number: n, Range: p.rangeFrom(start)}

	default:
		return &stmt.Expr{Kind: stmt.ExprString, Str: inner, Range: p.rangeFrom(start)}
	}
}

func (p *exprParser) scanQuoted() string {
	// assumes p.text[p.pos] == '\''
	p.pos++

	var b strings.Builder

	for p.pos < len(p.text) {
		c := p.text[p.pos]

		if c == '\'' {
			if p.pos+1 < len(p.text) && p.text[p.pos+1] == '\'' {
				b.WriteByte('\'')
				p.pos += 2

				continue
			}

			p.pos++

			return b.String()
		}

		b.WriteByte(c)
		p.pos++
	}

	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSymbolStart(c byte) bool {
	c = upperByte(c)
	return (c >= 'A' && c <= 'Z') || c == '@' || c == '#' || c == '$' || c == '_' || c == '.' || c == '&'
}

func isSymbolChar(c byte) bool {
	return isSymbolStart(c) || isDigit(c)
}

func upperByte(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}

	return c
}
