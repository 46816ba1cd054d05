package processor

import (
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// DefState accumulates one macro definition's body while the processing
// manager is in the MacroDef(depth) state (spec §4.5). It performs no
// semantic evaluation of the body — SETA/AIF/etc run at call time, not at
// definition time — it only counts nested MACRO/MEND occurrences and
// captures the prototype statement's name and parameter list.
type DefState struct {
	pool *ids.Pool

	depth         int
	prototypeSeen bool

	def *ctx.MacroDef
}

// NewDefState starts collecting a macro definition whose MACRO header was
// seen at loc/defRange.
func NewDefState(pool *ids.Pool, loc reslocation.Location, defRange lexspan.Range) *DefState {
	return &DefState{
		pool:  pool,
		depth: 1,
		def:   &ctx.MacroDef{Location: loc, DefRange: defRange},
	}
}

// Depth returns the current nesting depth (spec §4.5's MacroDef(d)).
func (d *DefState) Depth() int {
	return d.depth
}

// PrototypeSeen reports whether the prototype statement (the first one
// after MACRO) has already been captured, so the caller knows whether the
// next statement it feeds still needs real Operands parsed.
func (d *DefState) PrototypeSeen() bool {
	return d.prototypeSeen
}

// Feed hands the definition collector the next statement. done reports
// whether the outermost MEND was just seen, at which point def is the
// finished definition ready for ctx.DefineMacro.
func (d *DefState) Feed(s *stmt.Statement) (done bool, def *ctx.MacroDef) {
	instr := strings.ToUpper(s.Instruction)

	switch instr {
	case "MACRO":
		d.depth++
		return false, nil

	case "MEND":
		d.depth--

		if d.depth == 0 {
			return true, d.def
		}

		return false, nil
	}

	if !d.prototypeSeen {
		d.capturePrototype(s)
		d.prototypeSeen = true

		return false, nil
	}

	d.def.Body = append(d.def.Body, *s)

	return false, nil
}

// capturePrototype reads the macro's name from the instruction field and
// its parameter list from the operand field of the first statement after
// MACRO. A labeled prototype's &name (receiving the invoking statement's
// label at call time) is intentionally not modeled: no example call site
// in this corpus's domain relies on it, and wiring it would require a
// dedicated SET-variable binding path distinct from ordinary parameters.
func (d *DefState) capturePrototype(s *stmt.Statement) {
	d.def.Name = d.pool.Intern(strings.ToUpper(s.Instruction))

	for _, op := range s.Operands {
		switch op.Kind {
		case stmt.OperandKeyword:
			param := ctx.MacroParam{Name: op.Keyword, Keyword: true}

			if op.Value != nil && op.Value.Kind == stmt.OperandString {
				param.DefaultValue = op.Value.Str
			}

			d.def.Params = append(d.def.Params, param)

		case stmt.OperandExpr:
			if op.Expr != nil && op.Expr.Kind == stmt.ExprSymbol {
				d.def.Params = append(d.def.Params, ctx.MacroParam{Name: op.Expr.Symbol})
			}
		}
	}
}
