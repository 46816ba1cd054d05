package processor

import (
	"strconv"
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// IsConditionalAssembly reports whether instr is one of the operators this
// file evaluates at analysis time (spec §4.6 "Conditional-assembly
// processor"), as opposed to an ordinary-assembly directive or machine
// instruction.
func IsConditionalAssembly(instr string) bool {
	switch instr {
	case "SETA", "SETB", "SETC", "AIF", "AGO", "ACTR", "ANOP":
		return true
	default:
		return false
	}
}

// ConditionalAssembly dispatches one of the operators IsConditionalAssembly
// recognizes. The raw operand text is re-parsed here with a dedicated
// evaluator rather than through hlparser: SETA/SETB/SETC/AIF/AGO carry a
// distinct grammar (relational and logical keyword operators, character
// built-ins, sequence-symbol targets) that internal/hlparser's ordinary
// expression grammar does not and should not model — isSymbolStart there
// treats E, Q and friends as ordinary identifier letters, so "&X EQ &Y"
// would otherwise just parse as the symbol reference "&X" with unexpected
// trailing text.
func ConditionalAssembly(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	switch s.Instruction {
	case "SETA":
		return handleSetA(e, s, loc)
	case "SETB":
		return handleSetB(e, s, loc)
	case "SETC":
		return handleSetC(e, s, loc)
	case "AIF":
		return handleAif(e, s, loc)
	case "AGO":
		return handleAgo(e, s, loc)
	case "ACTR":
		return handleActr(e, s, loc)
	case "ANOP":
		return Signal{}
	}

	return Signal{}
}

// RegisterSequenceSymbol records a statement's label in the current scope's
// sequence table if the label starts with '.' (spec §3 "Sequence symbol: a
// .NAME label used by AGO/AIF within a scope"). index is the statement's
// position as the active provider's StatementIndex reported it, the value
// a later AGO/AIF in this same scope will jump to.
func RegisterSequenceSymbol(e *Env, s *stmt.Statement, index int, loc reslocation.Location) []diag.Diagnostic {
	if !s.HasLabel() || !strings.HasPrefix(s.LabelText, ".") {
		return nil
	}

	if ok := e.Ctx.CurrentSequenceTable().Define(s.Label, index); !ok {
		return []diag.Diagnostic{{
			Code: diag.CodeE042, Severity: diag.SeverityError,
			Range: s.LabelRange, Location: loc,
			Message: "duplicate sequence symbol " + s.LabelText,
		}}
	}

	return nil
}

func handleSetA(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if !s.HasLabel() {
		e.emit(errAt(diag.CodeE053, s.InstructionRange, loc, "SETA requires a variable symbol label"))
		return Signal{}
	}

	p := newCaParser(e, s.RawOperandText, s.OperandRange, loc)

	v, ok := p.arithExpr()
	if !ok {
		e.emitAll(p.diags)
		return Signal{}
	}

	setVar(e, s.Label, s.LabelText, ctx.SetValue{Kind: ctx.SetVarA, ArithScalar: v})

	return Signal{}
}

func handleSetB(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if !s.HasLabel() {
		e.emit(errAt(diag.CodeE053, s.InstructionRange, loc, "SETB requires a variable symbol label"))
		return Signal{}
	}

	p := newCaParser(e, s.RawOperandText, s.OperandRange, loc)

	b, ok := p.boolExprParens()
	if !ok {
		e.emitAll(p.diags)
		return Signal{}
	}

	setVar(e, s.Label, s.LabelText, ctx.SetValue{Kind: ctx.SetVarB, BoolScalar: b})

	return Signal{}
}

func handleSetC(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if !s.HasLabel() {
		e.emit(errAt(diag.CodeE053, s.InstructionRange, loc, "SETC requires a variable symbol label"))
		return Signal{}
	}

	p := newCaParser(e, s.RawOperandText, s.OperandRange, loc)

	v, ok := p.charExpr()
	if !ok {
		e.emitAll(p.diags)
		return Signal{}
	}

	if len(v) > ctx.MaxSetCLength {
		v = v[:ctx.MaxSetCLength]
	}

	setVar(e, s.Label, s.LabelText, ctx.SetValue{Kind: ctx.SetVarC, CharScalar: v})

	return Signal{}
}

// setVar assigns a subscripted or scalar SET-variable reference, reading
// the optional (subscript) suffix straight off the raw label text since
// "&ARR(3) SETA 9" puts the subscript in the label field, not the operand.
func setVar(e *Env, id ids.Id, labelText string, v ctx.SetValue) {
	scope := e.Ctx.CurrentSetVars()

	open := strings.IndexByte(labelText, '(')
	if open < 0 || !strings.HasSuffix(labelText, ")") {
		scope.Set(id, v)
		return
	}

	base := e.Ctx.Intern(labelText[:open])

	idxText := labelText[open+1 : len(labelText)-1]

	idx, err := strconv.ParseInt(strings.TrimSpace(idxText), 10, 64)
	if err != nil {
		scope.Set(id, v)
		return
	}

	scope.SetSubscript(base, idx, v)
}

func handleAif(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	text := strings.TrimSpace(s.RawOperandText)

	condText, target, ok := splitConditionAndTarget(text)
	if !ok {
		e.emit(errAt(diag.CodeE043, s.OperandRange, loc, "AIF requires (condition).target"))
		return Signal{}
	}

	p := newCaParser(e, condText, s.OperandRange, loc)

	taken, ok := p.cond()
	if !ok {
		e.emitAll(p.diags)
		return Signal{}
	}

	if !taken {
		return Signal{}
	}

	if ok := e.Ctx.DecrementActr(); !ok {
		e.emit(errAt(diag.CodeE041, s.InstructionRange, loc, "ACTR loop budget exhausted"))
		return Signal{}
	}

	return Signal{Kind: SignalSeqJump, Target: e.Ctx.Intern(target)}
}

func handleAgo(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	text := strings.TrimSpace(s.RawOperandText)

	var target string

	if strings.HasPrefix(text, "(") {
		condText, targets, ok := splitComputedAgo(text)
		if !ok {
			e.emit(errAt(diag.CodeE043, s.OperandRange, loc, "AGO requires (expr).target,.target,..."))
			return Signal{}
		}

		p := newCaParser(e, condText, s.OperandRange, loc)

		idx, ok := p.arithExpr()
		if !ok {
			e.emitAll(p.diags)
			return Signal{}
		}

		if idx < 1 || int(idx) > len(targets) {
			return Signal{} // out of range: no branch taken, per spec's computed AGO
		}

		target = targets[idx-1]
	} else {
		target = text
	}

	if !strings.HasPrefix(target, ".") {
		e.emit(errAt(diag.CodeE043, s.OperandRange, loc, "AGO target must be a sequence symbol"))
		return Signal{}
	}

	if ok := e.Ctx.DecrementActr(); !ok {
		e.emit(errAt(diag.CodeE041, s.InstructionRange, loc, "ACTR loop budget exhausted"))
		return Signal{}
	}

	return Signal{Kind: SignalSeqJump, Target: e.Ctx.Intern(target)}
}

func handleActr(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	p := newCaParser(e, s.RawOperandText, s.OperandRange, loc)

	v, ok := p.arithExpr()
	if !ok {
		e.emitAll(p.diags)
		return Signal{}
	}

	e.Ctx.SetActr(v)

	return Signal{}
}

// splitConditionAndTarget splits "(cond).target" into its parenthesized
// condition text and trailing sequence-symbol name.
func splitConditionAndTarget(text string) (cond, target string, ok bool) {
	if !strings.HasPrefix(text, "(") {
		return "", "", false
	}

	depth := 0

	for i, c := range text {
		switch c {
		case '(':
			depth++
		case ')':
			depth--

			if depth == 0 {
				target = strings.TrimSpace(text[i+1:])
				return text[1:i], target, strings.HasPrefix(target, ".")
			}
		}
	}

	return "", "", false
}

// splitComputedAgo splits "(expr).t1,.t2,.t3" into the selector expression
// and the ordered target list.
func splitComputedAgo(text string) (expr string, targets []string, ok bool) {
	depth := 0

	for i, c := range text {
		switch c {
		case '(':
			depth++
		case ')':
			depth--

			if depth == 0 {
				rest := strings.TrimSpace(text[i+1:])
				rest = strings.TrimPrefix(rest, ".")

				for _, part := range strings.Split(rest, ",") {
					name := "." + strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "."))
					targets = append(targets, name)
				}

				return text[1:i], targets, len(targets) > 0
			}
		}
	}

	return "", nil, false
}
