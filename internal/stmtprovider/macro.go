package stmtprovider

import (
	"strconv"
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/hlparser"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// Macro is spec §4.4's macro provider: it replays a macro's stored body,
// substituting &-variables bound in scope before each line is (re)parsed,
// and concatenating continuation chains the same way the definition was
// originally read (already merged into one body statement per logical
// line by the macro-definition processor, so no further merging happens
// here).
type Macro struct {
	pool     *ids.Pool
	def      *ctx.MacroDef
	scope    *ctx.SetVarScope
	location reslocation.Location

	pos   int
	cache *reparseCache
}

// NewMacro creates a Macro provider replaying def's body with &-variables
// resolved against scope (the frame PushMacroFrame returned, already
// populated with the call's positional/keyword argument bindings).
func NewMacro(pool *ids.Pool, def *ctx.MacroDef, scope *ctx.SetVarScope, callLocation reslocation.Location) *Macro {
	return &Macro{pool: pool, def: def, scope: scope, location: callLocation, cache: newReparseCache()}
}

func (m *Macro) Name() string { return m.pool.Name(m.def.Name) }

func (m *Macro) GetNext(hint stmt.ProcessingStatus) (*stmt.Statement, bool) {
	if m.pos >= len(m.def.Body) {
		return nil, false
	}

	index := m.pos
	line := m.expand(m.def.Body[index])
	m.pos++

	if cached, ok := m.cache.get(index, hint); ok {
		return cached, true
	}

	s, _ := hlparser.Parse(m.pool, line, hint)
	m.cache.put(index, hint, &s)

	return &s, true
}

func (m *Macro) StatementIndex() int { return m.pos }

func (m *Macro) Seek(index int) bool {
	if index < 0 || index > len(m.def.Body) {
		return false
	}

	m.pos = index

	return true
}

func (m *Macro) Peek() []stmt.Statement {
	var out []stmt.Statement

	for i := m.pos; i < len(m.def.Body); i++ {
		line := m.expand(m.def.Body[i])
		s, _ := hlparser.Parse(m.pool, line, stmt.ProcessingStatus{Form: stmt.FormUnknown, Kind: stmt.KindLookahead})
		out = append(out, s)
	}

	return out
}

// expand substitutes every &-variable reference in tmpl's raw fields
// against m.scope and reassembles a LogicalLine ready for (re)parsing.
func (m *Macro) expand(tmpl stmt.Statement) stmt.LogicalLine {
	get := func(name string) (string, bool) {
		id, ok := m.pool.Lookup(name)
		if !ok {
			return "", false
		}

		v, ok := m.scope.Get(id)
		if !ok {
			return "", false
		}

		return setValueText(v), true
	}

	label := substituteVars(tmpl.LabelText, get)
	operand := substituteVars(tmpl.RawOperandText, get)

	text := buildLine(label, tmpl.Instruction, operand, tmpl.Remarks)

	return newLogicalLineFromText(text, tmpl.Range.Start.Line, m.location)
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

// buildLine reassembles a HLASM line from its field texts. A blank label
// must still leave column 0 blank, or the instruction field would be
// misread as a label by the field splitter.
func buildLine(label, instr, operand, remarks string) string {
	var b strings.Builder

	if label != "" {
		b.WriteString(label)
	} else {
		b.WriteByte(' ')
	}

	b.WriteByte(' ')
	b.WriteString(instr)

	if operand != "" {
		b.WriteByte(' ')
		b.WriteString(operand)
	}

	if remarks != "" {
		b.WriteByte(' ')
		b.WriteString(remarks)
	}

	return b.String()
}

// substituteVars replaces every "&name" reference in text with get(name)'s
// result, leaving unresolved references (get returns ok=false) untouched
// so a diagnostic further downstream can still point at the literal text.
func substituteVars(text string, get func(name string) (string, bool)) string {
	if !strings.Contains(text, "&") {
		return text
	}

	var b strings.Builder

	i := 0
	for i < len(text) {
		c := text[i]

		if c == '&' && i+1 < len(text) && isNameStart(text[i+1]) {
			j := i + 1
			for j < len(text) && isNameChar(text[j]) {
				j++
			}

			name := text[i+1 : j]

			if val, ok := get(name); ok {
				b.WriteString(val)
				i = j

				continue
			}
		}

		b.WriteByte(c)
		i++
	}

	return b.String()
}

func isNameStart(c byte) bool {
	return c == '@' || c == '#' || c == '$' || c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
