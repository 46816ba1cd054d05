package processor

import (
	"strconv"
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// caParser is a hand-written recursive-descent evaluator over one
// conditional-assembly operand's raw text: arithmetic (SETA/ACTR/AGO
// selector), boolean (SETB/AIF condition), and character (SETC)
// expressions, each with HLASM's relational/logical keyword operators and
// attribute references. It evaluates as it parses — conditional-assembly
// values are always immediately available (no postponed dependency graph
// the way ordinary-assembly symbols have one), so there is no separate AST
// stage.
//
// No ANTLR grammar for this operator set was present in the retrieved
// reference material (the real parser generates one from a .g4 file not
// included in the pack), so this grammar is a deliberately conservative
// reconstruction: relational/logical keywords and the usual attribute
// references, with parenthesized boolean grouping only at AIF's top level
// (nested parens inside a condition group arithmetic sub-expressions, not
// nested AND/OR/NOT groups — the form every macro library in practice
// actually uses).
type caParser struct {
	e   *Env
	pool *ids.Pool
	src string
	i   int

	r     lexspan.Range
	loc   reslocation.Location
	diags []diag.Diagnostic
}

func newCaParser(e *Env, src string, r lexspan.Range, loc reslocation.Location) *caParser {
	return &caParser{e: e, pool: e.Pool, src: src, r: r, loc: loc}
}

func (p *caParser) fail(msg string) {
	p.diags = append(p.diags, errAt(diag.CodeE043, p.r, p.loc, msg))
}

func (p *caParser) skipSpaces() {
	for p.i < len(p.src) && p.src[p.i] == ' ' {
		p.i++
	}
}

func (p *caParser) peek() byte {
	if p.i < len(p.src) {
		return p.src[p.i]
	}

	return 0
}

func (p *caParser) eof() bool { return p.i >= len(p.src) }

func (p *caParser) matchChar(c byte) bool {
	p.skipSpaces()

	if p.i < len(p.src) && p.src[p.i] == c {
		p.i++
		return true
	}

	return false
}

func (p *caParser) expectChar(c byte) bool {
	if p.matchChar(c) {
		return true
	}

	p.fail("expected '" + string(c) + "'")

	return false
}

func (p *caParser) matchKeyword(kw string) bool {
	save := p.i

	p.skipSpaces()

	start := p.i
	for p.i < len(p.src) && isNameChar(p.src[p.i]) {
		p.i++
	}

	if strings.EqualFold(p.src[start:p.i], kw) {
		return true
	}

	p.i = save

	return false
}

// cond parses the OR-level of HLASM's logical condition grammar (spec
// §4.6 "AIF", "SETB").
func (p *caParser) cond() (bool, bool) {
	left, ok := p.andTerm()
	if !ok {
		return false, false
	}

	for p.matchKeyword("OR") {
		right, ok := p.andTerm()
		if !ok {
			return false, false
		}

		left = left || right
	}

	return left, true
}

func (p *caParser) andTerm() (bool, bool) {
	left, ok := p.notTerm()
	if !ok {
		return false, false
	}

	for p.matchKeyword("AND") {
		right, ok := p.notTerm()
		if !ok {
			return false, false
		}

		left = left && right
	}

	return left, true
}

func (p *caParser) notTerm() (bool, bool) {
	if p.matchKeyword("NOT") {
		v, ok := p.notTerm()
		if !ok {
			return false, false
		}

		return !v, true
	}

	return p.relationOrArith()
}

// relationOrArith tries a character relation first (quoted strings and
// SETC variables only compare as character operands), then falls back to
// arithmetic, where a bare value's truth is "nonzero".
func (p *caParser) relationOrArith() (bool, bool) {
	save := p.i

	if lhs, ok := p.tryCharOperand(); ok {
		p.skipSpaces()

		if op, ok := p.tryRelOp(); ok {
			rhs, ok := p.tryCharOperand()
			if !ok {
				p.fail("expected character operand after " + op)
				return false, false
			}

			return compareStrings(lhs, rhs, op), true
		}

		return lhs != "", true
	}

	p.i = save

	lv, ok := p.arithExpr()
	if !ok {
		return false, false
	}

	p.skipSpaces()

	if op, ok := p.tryRelOp(); ok {
		rv, ok := p.arithExpr()
		if !ok {
			return false, false
		}

		return compareInts(lv, rv, op), true
	}

	return lv != 0, true
}

// boolExprParens is SETB's operand grammar: either a parenthesized
// condition or a plain 0/1-valued arithmetic expression.
func (p *caParser) boolExprParens() (bool, bool) {
	p.skipSpaces()

	if p.peek() == '(' {
		p.i++

		v, ok := p.cond()
		if !ok {
			return false, false
		}

		if !p.expectChar(')') {
			return false, false
		}

		return v, true
	}

	v, ok := p.arithExpr()
	if !ok {
		return false, false
	}

	return v != 0, true
}

func (p *caParser) tryRelOp() (string, bool) {
	save := p.i

	p.skipSpaces()

	start := p.i
	for p.i < len(p.src) && isNameChar(p.src[p.i]) {
		p.i++
	}

	switch strings.ToUpper(p.src[start:p.i]) {
	case "EQ", "NE", "LT", "LE", "GT", "GE":
		return strings.ToUpper(p.src[start:p.i]), true
	}

	p.i = save

	return "", false
}

func compareInts(l, r int32, op string) bool {
	switch op {
	case "EQ":
		return l == r
	case "NE":
		return l != r
	case "LT":
		return l < r
	case "LE":
		return l <= r
	case "GT":
		return l > r
	case "GE":
		return l >= r
	}

	return false
}

func compareStrings(l, r, op string) bool {
	switch op {
	case "EQ":
		return l == r
	case "NE":
		return l != r
	case "LT":
		return l < r
	case "LE":
		return l <= r
	case "GT":
		return l > r
	case "GE":
		return l >= r
	}

	return false
}

// tryCharOperand consumes a quoted string literal or a character
// SET-variable reference, restoring position and returning ok=false for
// anything else (arithmetic operands are tried next by the caller).
func (p *caParser) tryCharOperand() (string, bool) {
	p.skipSpaces()

	if p.peek() == '\'' {
		s, ok := p.quotedString()
		return s, ok
	}

	if p.peek() == '&' {
		save := p.i

		base, sub, ok := p.tryVarRef()
		if ok {
			v, found := p.lookupVar(base, sub)
			if found && v.Kind == ctx.SetVarC {
				return v.CharScalar, true
			}
		}

		p.i = save
	}

	return "", false
}

func (p *caParser) quotedString() (string, bool) {
	p.i++ // opening quote

	var b strings.Builder

	for p.i < len(p.src) {
		if p.src[p.i] == '\'' {
			if p.i+1 < len(p.src) && p.src[p.i+1] == '\'' {
				b.WriteByte('\'')
				p.i += 2

				continue
			}

			p.i++

			return b.String(), true
		}

		b.WriteByte(p.src[p.i])
		p.i++
	}

	p.fail("unterminated character literal")

	return b.String(), false
}

// arithExpr is SETA/ACTR/AGO-selector's grammar: +, -, *, /, unary minus,
// parens, numeric literals, variable references and attribute references.
func (p *caParser) arithExpr() (int32, bool) {
	lv, ok := p.term()
	if !ok {
		return 0, false
	}

	for {
		if p.matchChar('+') {
			rv, ok := p.term()
			if !ok {
				return 0, false
			}

			lv += rv

			continue
		}

		if p.matchChar('-') {
			rv, ok := p.term()
			if !ok {
				return 0, false
			}

			lv -= rv

			continue
		}

		break
	}

	return lv, true
}

func (p *caParser) term() (int32, bool) {
	lv, ok := p.factor()
	if !ok {
		return 0, false
	}

	for {
		if p.matchChar('*') {
			rv, ok := p.factor()
			if !ok {
				return 0, false
			}

			lv *= rv

			continue
		}

		if p.matchChar('/') {
			rv, ok := p.factor()
			if !ok {
				return 0, false
			}

			if rv == 0 {
				p.fail("division by zero")
				return 0, false
			}

			lv /= rv

			continue
		}

		break
	}

	return lv, true
}

func (p *caParser) factor() (int32, bool) {
	if p.matchChar('-') {
		v, ok := p.factor()
		if !ok {
			return 0, false
		}

		return -v, true
	}

	if p.matchChar('+') {
		return p.factor()
	}

	return p.primary()
}

func (p *caParser) primary() (int32, bool) {
	p.skipSpaces()

	if p.matchKeyword("FIND") {
		return p.findCall()
	}

	if p.matchKeyword("COUNT") {
		return p.countCall()
	}

	if p.matchChar('(') {
		v, ok := p.arithExpr()
		if !ok {
			return 0, false
		}

		if !p.expectChar(')') {
			return 0, false
		}

		return v, true
	}

	if p.eof() {
		p.fail("unexpected end of expression")
		return 0, false
	}

	c := p.peek()

	switch {
	case c >= '0' && c <= '9':
		start := p.i

		for p.i < len(p.src) && p.src[p.i] >= '0' && p.src[p.i] <= '9' {
			p.i++
		}

		n, _ := strconv.ParseInt(p.src[start:p.i], 10, 64)

		return int32(n), true

	case c == '&':
		base, sub, ok := p.tryVarRef()
		if !ok {
			p.fail("malformed variable reference")
			return 0, false
		}

		v, found := p.lookupVar(base, sub)
		if !found {
			p.fail("undefined SET variable " + p.pool.Name(base))
			return 0, false
		}

		switch v.Kind {
		case ctx.SetVarA:
			return v.ArithScalar, true
		case ctx.SetVarB:
			if v.BoolScalar {
				return 1, true
			}

			return 0, true
		default:
			n, err := strconv.ParseInt(strings.TrimSpace(v.CharScalar), 10, 64)
			if err != nil {
				p.fail("character SET variable is not numeric")
				return 0, false
			}

			return int32(n), true
		}

	case isAttrLetter(c):
		return p.attrRef()

	default:
		p.fail("unexpected character in expression")
		return 0, false
	}
}

func isAttrLetter(c byte) bool {
	switch c {
	case 'T', 't', 'L', 'l', 'S', 's', 'I', 'i', 'K', 'k', 'N', 'n':
		return true
	default:
		return false
	}
}

// attrRef parses one T'/L'/S'/I'/K'/N' reference. The four ordinary
// attributes resolve through Ctx.SymbolAttr; K' and N' are evaluated
// locally since they apply to character text and sublists rather than to
// an ordinary symbol's attribute table.
func (p *caParser) attrRef() (int32, bool) {
	letter := p.src[p.i]
	p.i++

	if !p.expectChar('\'') {
		return 0, false
	}

	switch letter {
	case 'K', 'k':
		s, ok := p.tryCharOperand()
		if !ok {
			p.fail("K' requires a character operand")
			return 0, false
		}

		return int32(len(s)), true

	case 'N', 'n':
		if p.peek() == '&' {
			base, _, ok := p.tryVarRef()
			if !ok {
				return 0, false
			}

			v, found := p.lookupVar(base, nil)
			if found && v.Subscripts != nil {
				return int32(len(v.Subscripts)), true
			}

			return 1, true
		}

		if p.consumeSymbolName() == "" {
			p.fail("expected symbol after N'")
			return 0, false
		}

		return 1, true

	default:
		name := p.consumeSymbolName()

		if name == "" && p.peek() == '&' {
			base, _, ok := p.tryVarRef()
			if !ok {
				return 0, false
			}

			v, found := p.lookupVar(base, nil)
			if !found || v.Kind != ctx.SetVarC {
				p.fail("expected character SET variable naming a symbol")
				return 0, false
			}

			name = v.CharScalar
		}

		if name == "" {
			p.fail("expected symbol name after attribute letter")
			return 0, false
		}

		attrKind, ok := attrKindFor(letter)
		if !ok {
			return 0, false
		}

		id := p.pool.Intern(name)

		attr, found := p.e.Ctx.SymbolAttr(id, attrKind)
		if !found && p.e.Lookahead != nil && p.e.Lookahead(id) {
			attr, found = p.e.Ctx.SymbolAttr(id, attrKind)
		}

		if !found {
			p.fail("attribute reference to undefined symbol " + name)
			return 0, false
		}

		return attr, true
	}
}

func attrKindFor(letter byte) (stmt.AttrKind, bool) {
	switch letter {
	case 'T', 't':
		return stmt.AttrType, true
	case 'L', 'l':
		return stmt.AttrLength, true
	case 'S', 's':
		return stmt.AttrScale, true
	case 'I', 'i':
		return stmt.AttrInteger, true
	}

	return 0, false
}

func (p *caParser) consumeSymbolName() string {
	start := p.i

	for p.i < len(p.src) && isNameChar(p.src[p.i]) {
		p.i++
	}

	return p.src[start:p.i]
}

// tryVarRef parses "&name" with an optional "(subscript)" suffix.
func (p *caParser) tryVarRef() (ids.Id, *int64, bool) {
	if p.peek() != '&' {
		return ids.Empty, nil, false
	}

	p.i++

	start := p.i
	for p.i < len(p.src) && isNameChar(p.src[p.i]) {
		p.i++
	}

	if p.i == start {
		p.fail("expected variable name after '&'")
		return ids.Empty, nil, false
	}

	base := p.pool.Intern(p.src[start:p.i])

	if p.peek() != '(' {
		return base, nil, true
	}

	p.i++

	v, ok := p.arithExpr()
	if !ok {
		return ids.Empty, nil, false
	}

	if !p.expectChar(')') {
		return ids.Empty, nil, false
	}

	sub := int64(v)

	return base, &sub, true
}

// lookupVar resolves base (plus an optional subscript) against the current
// SET-variable scope, falling back to the global scope when the reference
// is unbound locally: this module does not model explicit GBLA/GBLB/GBLC
// declarations, so any name not locally SET is assumed to mean the
// open-code variable of that name.
func (p *caParser) lookupVar(base ids.Id, sub *int64) (ctx.SetValue, bool) {
	scopes := []*ctx.SetVarScope{p.e.Ctx.CurrentSetVars()}

	if global := p.e.Ctx.GlobalSetVars(); global != scopes[0] {
		scopes = append(scopes, global)
	}

	for _, scope := range scopes {
		full, ok := scope.Get(base)
		if !ok {
			continue
		}

		if sub == nil {
			return full, true
		}

		if full.Subscripts != nil {
			if v, ok := full.Subscripts[*sub]; ok {
				return v, true
			}
		}
	}

	return ctx.SetValue{}, false
}

// charExpr is SETC's grammar: one or more concatenated terms (quoted
// strings, attribute references rendered as decimal text, SUBSTR/UPPER
// built-ins, and variable references), an optional '.' between terms
// disambiguating where one name ends and literal text resumes.
func (p *caParser) charExpr() (string, bool) {
	var b strings.Builder

	for {
		p.skipSpaces()

		term, ok := p.charTerm()
		if !ok {
			return "", false
		}

		b.WriteString(term)

		p.matchChar('.')
		p.skipSpaces()

		if p.eof() || p.peek() == ',' || p.peek() == ')' {
			break
		}
	}

	return b.String(), true
}

func (p *caParser) charTerm() (string, bool) {
	p.skipSpaces()

	if p.peek() == '\'' {
		return p.quotedString()
	}

	if p.matchKeyword("SUBSTR") {
		return p.substrCall()
	}

	if p.matchKeyword("UPPER") {
		if !p.expectChar('(') {
			return "", false
		}

		inner, ok := p.charExpr()
		if !ok {
			return "", false
		}

		if !p.expectChar(')') {
			return "", false
		}

		return strings.ToUpper(inner), true
	}

	if isAttrLetter(p.peek()) && p.i+1 < len(p.src) && p.src[p.i+1] == '\'' {
		n, ok := p.attrRef()
		if !ok {
			return "", false
		}

		return strconv.FormatInt(int64(n), 10), true
	}

	if p.peek() == '&' {
		base, sub, ok := p.tryVarRef()
		if !ok {
			return "", false
		}

		v, found := p.lookupVar(base, sub)
		if !found {
			p.fail("undefined SET variable " + p.pool.Name(base))
			return "", false
		}

		return setValueText(v), true
	}

	p.fail("unexpected character in SETC expression")

	return "", false
}

// substrCall parses SUBSTR(start,length,string) and returns the 1-based,
// inclusive-length substring of string.
func (p *caParser) substrCall() (string, bool) {
	if !p.expectChar('(') {
		return "", false
	}

	start, ok := p.arithExpr()
	if !ok {
		return "", false
	}

	if !p.expectChar(',') {
		return "", false
	}

	length, ok := p.arithExpr()
	if !ok {
		return "", false
	}

	if !p.expectChar(',') {
		return "", false
	}

	s, ok := p.charExpr()
	if !ok {
		return "", false
	}

	if !p.expectChar(')') {
		return "", false
	}

	if start < 1 || int(start-1) > len(s) {
		p.fail("SUBSTR start out of range")
		return "", false
	}

	from := int(start - 1)
	to := from + int(length)

	if to > len(s) || length < 0 {
		p.fail("SUBSTR length out of range")
		return "", false
	}

	return s[from:to], true
}

// findCall parses FIND(string1,string2) and returns the 1-based position
// of the first character of string1 that also occurs in string2, or 0 if
// none does.
func (p *caParser) findCall() (int32, bool) {
	s1, s2, ok := p.findCountArgs()
	if !ok {
		return 0, false
	}

	return int32(strings.IndexAny(s1, s2) + 1), true
}

// countCall parses COUNT(string1,string2) and returns the number of
// characters at the start of string1 that do not occur in string2 (the
// length of string1 if none of its characters occur in string2).
func (p *caParser) countCall() (int32, bool) {
	s1, s2, ok := p.findCountArgs()
	if !ok {
		return 0, false
	}

	if idx := strings.IndexAny(s1, s2); idx >= 0 {
		return int32(idx), true
	}

	return int32(len(s1)), true
}

func (p *caParser) findCountArgs() (string, string, bool) {
	if !p.expectChar('(') {
		return "", "", false
	}

	s1, ok := p.charExpr()
	if !ok {
		return "", "", false
	}

	if !p.expectChar(',') {
		return "", "", false
	}

	s2, ok := p.charExpr()
	if !ok {
		return "", "", false
	}

	if !p.expectChar(')') {
		return "", "", false
	}

	return s1, s2, true
}

func isNameStart(c byte) bool {
	return c == '@' || c == '#' || c == '$' || c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func setValueText(v ctx.SetValue) string {
	switch v.Kind {
	case ctx.SetVarA:
		return strconv.FormatInt(int64(v.ArithScalar), 10)
	case ctx.SetVarB:
		if v.BoolScalar {
			return "1"
		}

		return "0"
	default:
		return v.CharScalar
	}
}
