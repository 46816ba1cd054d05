package processor

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/deps"
	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/lspindex"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/semtok"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
	"github.com/hlasm-tools/hlasmcore/internal/value"
)

// ordinaryDirectives names every assembler directive this processor
// dispatches itself, per spec §4.6's enumeration. Everything else falls
// through to machineInstruction, which only needs to define the label (if
// any) at the current address — validating actual machine-instruction
// operand syntax is out of scope (spec §1 Non-goals: no object-code
// generation).
var ordinaryDirectives = map[string]func(*Env, *stmt.Statement, reslocation.Location) Signal{
	"CSECT": sectionDirective(ctx.SectionExecutable),
	"RSECT": sectionDirective(ctx.SectionReadOnly),
	"COM":   sectionDirective(ctx.SectionCommon),
	"DSECT": sectionDirective(ctx.SectionDummy),
}

// Ordinary handles one statement while the processing manager is in the
// Ordinary state (spec §4.5). It returns a Signal telling the manager
// whether a state transition is required.
func Ordinary(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if s.Kind == stmt.StatementError {
		e.emitAll(s.Diagnostics)
		return Signal{}
	}

	instr := e.Ctx.ResolveMnemonic(internOrEmpty(e.Pool, s.Instruction))
	name := e.Pool.Name(instr)

	if fn, ok := ordinaryDirectives[name]; ok {
		return fn(e, s, loc)
	}

	switch name {
	case "LOCTR":
		return handleLOCTR(e, s, loc)
	case "EQU":
		return handleEQU(e, s, loc)
	case "DC", "DS":
		return handleDataDef(e, s, loc, name == "DC")
	case "DXD", "CXD":
		return handleDataDef(e, s, loc, false)
	case "ORG":
		return handleORG(e, s, loc)
	case "USING":
		return handleUSING(e, s, loc)
	case "DROP":
		return handleDROP(e, s, loc)
	case "PUSH":
		return handlePUSH(e, s, loc)
	case "POP":
		return handlePOP(e, s, loc)
	case "COPY":
		return handleCOPY(e, s, loc)
	case "EXTRN", "WXTRN":
		return handleEXTRN(e, s, loc, name == "WXTRN")
	case "START":
		return handleSTART(e, s, loc)
	case "END":
		return handleEND(e, s, loc)
	case "MNOTE":
		return handleMNOTE(e, s, loc)
	case "AINSERT":
		return handleAINSERT(e, s, loc)
	case "LTORG":
		return handleLTORG(e, s, loc)
	case "CNOP":
		return handleCNOP(e, s, loc)
	case "OPSYN":
		return handleOPSYN(e, s, loc)
	case "MACRO":
		return Signal{Kind: SignalEnterMacroDef}
	case "ICTL":
		return handleICTL(e, s, loc)
	default:
		if def, ok := e.Ctx.LookupMacro(instr); ok {
			_ = def
			return Signal{Kind: SignalCallMacro, Target: instr, CallOperands: s.Operands, CallRange: s.Range}
		}

		return machineInstruction(e, s, loc)
	}
}

func internOrEmpty(pool *ids.Pool, name string) ids.Id {
	if name == "" {
		return ids.Empty
	}

	return pool.Intern(name)
}

func sectionDirective(kind ctx.SectionKind) func(*Env, *stmt.Statement, reslocation.Location) Signal {
	return func(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
		sec, ok, diags := e.Ctx.DefineSection(s.Label, kind, s.LabelRange, loc)
		e.emitAll(diags)

		if ok && s.HasLabel() {
			indexDefinition(e, s.Label, lspindex.KindSection, s.LabelText, s.LabelRange, loc)
			e.Tokens.Add(s.LabelRange, semtok.TypeLabel, e.legendDecl())
			_ = sec
		}

		return Signal{}
	}
}

// handleICTL implements spec §4.6 "ICTL": begin,[end],[continue] columns,
// 1-based as written. The manager applies these to the active open-code
// provider on SignalICTL, since only it holds that reference.
func handleICTL(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	begin, ok := constOperand(s, 0)
	if !ok {
		e.emit(errAt(diag.CodeA001, s.OperandRange, loc, "ICTL requires a begin column"))
		return Signal{}
	}

	end := int32(0)
	if v, ok := constOperand(s, 1); ok {
		end = v
	}

	cont := int32(0)
	if v, ok := constOperand(s, 2); ok {
		cont = v
	}

	return Signal{Kind: SignalICTL, ICTLBegin: int(begin), ICTLEnd: int(end), ICTLContinue: int(cont)}
}

func handleLOCTR(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if !s.HasLabel() {
		e.emit(errAt(diag.CodeE053, s.InstructionRange, loc, "LOCTR requires a label"))
		return Signal{}
	}

	e.Ctx.SetLocationCounter(s.Label)
	indexDefinition(e, s.Label, lspindex.KindLocationCounter, s.LabelText, s.LabelRange, loc)
	e.Tokens.Add(s.LabelRange, semtok.TypeLabel, e.legendDecl())

	return Signal{}
}

// handleEQU implements spec §4.6 "EQU": defines the label at the value of
// operand 1, optionally overriding length (operand 2) and type (operand
// 3). If the value expression cannot be evaluated yet (forward reference,
// possibly to the label itself), the symbol is created immediately with a
// placeholder value/length so later references see it as defined, and a
// dependency node retries the real value once it resolves (spec §4.7's
// postponement, §9's self-reference design note).
func handleEQU(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if !s.HasLabel() {
		e.emit(errAt(diag.CodeE053, s.InstructionRange, loc, "EQU requires a label"))
		return Signal{}
	}

	if len(s.Operands) == 0 || s.Operands[0].Kind != stmt.OperandExpr {
		e.emit(errAt(diag.CodeA001, s.OperandRange, loc, "EQU requires a value expression"))
		return Signal{}
	}

	valueExpr := s.Operands[0].Expr
	attrs := ctx.DefaultAttributes
	attrs.Type = 'U'

	if explicitLength, ok := constOperand(s, 1); ok {
		attrs.Length = uint16(explicitLength)
	} else if sym, ok := stmt.LeftmostSymbol(valueExpr); ok {
		if base, ok := e.Ctx.GetSymbol(sym); ok {
			attrs.Length = base.Attributes.Length
			attrs.Type = base.Attributes.Type
		}
	}

	if explicitType, ok := constOperand(s, 2); ok {
		attrs.Type = byte(explicitType)
	}

	v, valDeps, ok := stmt.Eval(valueExpr, e.Ctx)

	selfReferential := false
	for _, d := range stmt.Symbols(valueExpr) {
		if d == s.Label {
			selfReferential = true
		}
	}
	_ = valDeps

	if ok && !selfReferential {
		_, created, diags := createLabelSymbol(e, s.Label, v, attrs, s.LabelRange, loc)
		e.emitAll(diags)

		if created {
			indexDefinition(e, s.Label, lspindex.KindOrdinarySymbol, s.LabelText, s.LabelRange, loc)
		}

		e.Tokens.Add(s.LabelRange, semtok.TypeLabel, e.legendDecl())

		return Signal{}
	}

	placeholder := attrs
	if selfReferential {
		placeholder.Length = 1
		placeholder.SelfReferring = true
	}

	_, created, diags := createLabelSymbol(e, s.Label, value.Undefined, placeholder, s.LabelRange, loc)
	e.emitAll(diags)

	if created {
		indexDefinition(e, s.Label, lspindex.KindOrdinarySymbol, s.LabelText, s.LabelRange, loc)
	}

	e.Tokens.Add(s.LabelRange, semtok.TypeLabel, e.legendDecl())

	label, labelRange, location := s.Label, s.LabelRange, loc
	finalLength := attrs.Length

	e.Solver.Add(deps.Node{
		Range:       labelRange,
		Location:    location,
		Description: "unresolved EQU value for " + s.LabelText,
		Attempt: func(c *ctx.Ctx) (bool, []diag.Diagnostic) {
			v, _, ok := stmt.Eval(valueExpr, c)
			if !ok {
				return false, nil
			}

			c.SetSymbolValue(label, v)

			if selfReferring, found := c.GetSymbol(label); found && selfReferring.Attributes.SelfReferring {
				c.SetSymbolAttr(label, finalLength, 0)
			}

			return true, nil
		},
	})

	return Signal{}
}

// handleDataDef implements spec §4.6 "DC"/"DS": for each comma-separated
// data-definition entry it reserves storage for duplication * length
// bytes (a DC entry additionally increments the LiteralsFlushed metric; the
// nominal value is not stored, and object code bytes themselves are out of
// scope per spec §1). The label, if any,
// is defined at the address of the first entry's first byte.
func handleDataDef(e *Env, s *stmt.Statement, loc reslocation.Location, isDC bool) Signal {
	first := true

	for _, op := range s.Operands {
		if op.Kind != stmt.OperandDataDef || op.DataDef == nil {
			continue
		}

		dd := op.DataDef

		dup := int64(1)
		if dd.Duplication != nil {
			if v, _, ok := stmt.Eval(dd.Duplication, e.Ctx); ok && v.Kind == value.KindAbsolute {
				dup = int64(v.Absolute)
			}
		}

		unitLength, align := dataTypeDefaults(dd.TypeLetter, dd.Nominal)

		if dd.Length != nil {
			if v, _, ok := stmt.Eval(dd.Length, e.Ctx); ok && v.Kind == value.KindAbsolute {
				unitLength = int64(v.Absolute)
			}
		}

		addr := e.Ctx.ReserveStorage(dup*unitLength, align)

		if first && s.HasLabel() {
			attrs := ctx.Attributes{Type: byte(dd.TypeLetter), Length: uint16(unitLength)}
			_, created, diags := createLabelSymbol(e, s.Label, value.RelocatableValue(addr), attrs, s.LabelRange, loc)
			e.emitAll(diags)

			if created {
				indexDefinition(e, s.Label, lspindex.KindOrdinarySymbol, s.LabelText, s.LabelRange, loc)
			}

			e.Tokens.Add(s.LabelRange, semtok.TypeLabel, e.legendDecl())
		}

		if isDC {
			e.Ctx.Metrics().LiteralsFlushed++
		}

		first = false
	}

	return Signal{}
}

// dataTypeDefaults returns a type letter's default unit length in bytes
// and its natural alignment, falling back to the nominal value's own
// length (character/hex digit count) for the types whose length is
// nominal-derived rather than fixed.
func dataTypeDefaults(t rune, nominal string) (length int64, align int) {
	switch t {
	case 'C':
		return int64(len(nominal)), 1
	case 'X':
		return int64((len(nominal) + 1) / 2), 1
	case 'B':
		return int64((len(nominal) + 7) / 8), 1
	case 'H':
		return 2, 2
	case 'F':
		return 4, 4
	case 'D':
		return 8, 8
	case 'E':
		return 4, 4
	case 'A', 'V', 'Q':
		return 4, 4
	case 'Y':
		return 2, 2
	case 'S', 'J':
		return 2, 2
	case 'P':
		return int64((len(nominal)+1)/2 + 1), 1
	case 'Z':
		return int64(len(nominal) + 1), 1
	default:
		return 1, 1
	}
}

// handleORG implements spec §4.6 "ORG": operand triple (address-expr,
// boundary, offset). With no operand, the counter is set to its
// maximum-reached value. The boundary, if given, must be a constant power
// of two in [2, 4096]; anything else is an invalid form (A115). The
// address expression must evaluate to a relocatable address (A245).
func handleORG(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if len(s.Operands) == 0 {
		e.Ctx.OrgToMax()
		return Signal{}
	}

	op := s.Operands[0]
	if op.Kind != stmt.OperandExpr {
		e.emit(errAt(diag.CodeA115, s.OperandRange, loc, "ORG requires an address expression"))
		return Signal{}
	}

	v, _, ok := stmt.Eval(op.Expr, e.Ctx)
	if !ok || v.Kind != value.KindRelocatable {
		e.emit(errAt(diag.CodeA245, s.OperandRange, loc, "ORG target must evaluate to a relocatable address"))
		return Signal{}
	}

	target := v.Address.Offset

	if len(s.Operands) > 1 && s.Operands[1].Kind != stmt.OperandOmitted {
		boundary, ok := constOperand(s, 1)
		if !ok || boundary < 2 || boundary > 4096 || boundary&(boundary-1) != 0 {
			e.emit(errAt(diag.CodeA115, s.Operands[1].Range, loc, "ORG boundary must be a power of two between 2 and 4096"))
			return Signal{}
		}

		target = ((target + int64(boundary) - 1) / int64(boundary)) * int64(boundary)

		if len(s.Operands) > 2 && s.Operands[2].Kind == stmt.OperandExpr && s.Operands[2].Expr != nil {
			if offset, _, ok := stmt.Eval(s.Operands[2].Expr, e.Ctx); ok && offset.Kind == value.KindAbsolute {
				target += int64(offset.Absolute)
			}
		}
	}

	e.emitAll(e.Ctx.OrgTo(target, s.OperandRange, loc))

	return Signal{}
}

func handleUSING(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if len(s.Operands) < 2 {
		e.emit(errAt(diag.CodeA001, s.OperandRange, loc, "USING requires a base and at least one register"))
		return Signal{}
	}

	baseVal, _, ok := stmt.Eval(s.Operands[0].Expr, e.Ctx)
	if !ok {
		return Signal{}
	}

	frame := ctx.UsingFrame{Labeled: s.Label}

	if baseVal.Kind == value.KindRelocatable {
		frame.Base = baseVal.Address
	}

	for _, op := range s.Operands[1:] {
		if op.Kind != stmt.OperandExpr || op.Expr == nil {
			continue
		}

		if v, _, ok := stmt.Eval(op.Expr, e.Ctx); ok && v.Kind == value.KindAbsolute {
			frame.Operands = append(frame.Operands, ctx.UsingOperand{Register: int(v.Absolute)})
		}
	}

	e.Ctx.UsingAdd(frame)

	return Signal{}
}

func handleDROP(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if s.HasLabel() {
		e.emit(warnAt(diag.CodeA251, s.LabelRange, loc, "label on DROP is ignored"))
	}

	for _, op := range s.Operands {
		if op.Kind != stmt.OperandExpr || op.Expr == nil {
			continue
		}

		if v, _, ok := stmt.Eval(op.Expr, e.Ctx); ok && v.Kind == value.KindAbsolute {
			e.Ctx.UsingRemove(int(v.Absolute))
		}
	}

	return Signal{}
}

func handlePUSH(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if operandsNameKeyword(s, e.Pool, "USING") {
		e.Ctx.UsingPush()
	}

	return Signal{}
}

func handlePOP(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if operandsNameKeyword(s, e.Pool, "USING") {
		e.Ctx.UsingPop()
	}

	return Signal{}
}

// operandsNameKeyword reports whether the first operand spells name (case
// insensitive), the shape PUSH/POP USING and PUSH/POP PRINT share.
func operandsNameKeyword(s *stmt.Statement, pool *ids.Pool, name string) bool {
	if len(s.Operands) == 0 {
		return false
	}

	id, ok := operandSymbolOf(s.Operands[0])
	if !ok {
		return false
	}

	return strings.EqualFold(pool.Name(id), name)
}

// handleCOPY implements spec §4.6 "COPY": if the named member is already
// cached the manager is told to push a Copy provider immediately;
// otherwise the manager must suspend on a library fetch.
func handleCOPY(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	member, ok := operandSymbolAt(s, 0)
	if !ok {
		e.emit(errAt(diag.CodeA001, s.OperandRange, loc, "COPY requires a member name"))
		return Signal{}
	}

	if ok, diags := e.Ctx.EnterCopy(member, s.OperandRange, loc); !ok {
		e.emitAll(diags)
		return Signal{}
	}

	if _, cached := e.Ctx.LookupCopyMember(member); cached {
		return Signal{Kind: SignalCopyReady, MemberId: member}
	}

	return Signal{Kind: SignalCopyFetch, MemberId: member}
}

func handleEXTRN(e *Env, s *stmt.Statement, loc reslocation.Location, weak bool) Signal {
	kind := ctx.SectionExternal
	if weak {
		kind = ctx.SectionWeakExternal
	}

	partKeyword := e.Pool.Intern("PART")

	for _, op := range s.Operands {
		if op.Kind == stmt.OperandKeyword && op.Keyword == partKeyword {
			declareExternSection(e, op, kind, loc)
			continue
		}

		id, ok := operandSymbolOf(op)
		if !ok {
			e.emit(errAt(diag.CodeA129, s.OperandRange, loc, "EXTRN/WXTRN requires symbol operands"))
			continue
		}

		_, _, diags := e.Ctx.DefineSection(id, kind, op.Range, loc)
		e.emitAll(diags)
	}

	return Signal{}
}

// declareExternSection handles EXTRN/WXTRN's PART(name,...) sub-operand
// form: each name inside the parenthesized list declares its own
// external/weak-external section, same as a bare operand would.
func declareExternSection(e *Env, op stmt.Operand, kind ctx.SectionKind, loc reslocation.Location) {
	if op.Value == nil || op.Value.Kind != stmt.OperandList {
		e.emit(errAt(diag.CodeA129, op.Range, loc, "PART requires a parenthesized name list"))
		return
	}

	for _, member := range op.Value.List {
		id, ok := operandSymbolOf(member)
		if !ok {
			e.emit(errAt(diag.CodeA129, member.Range, loc, "PART requires symbol operands"))
			continue
		}

		_, _, diags := e.Ctx.DefineSection(id, kind, member.Range, loc)
		e.emitAll(diags)
	}
}

func handleSTART(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	var initial int64

	if len(s.Operands) > 0 && s.Operands[0].Kind == stmt.OperandExpr {
		if v, _, ok := stmt.Eval(s.Operands[0].Expr, e.Ctx); ok && v.Kind == value.KindAbsolute {
			initial = int64(v.Absolute)
		}
	}

	_, ok, diags := e.Ctx.StartSection(s.Label, initial, s.LabelRange, loc)
	e.emitAll(diags)

	if ok && s.HasLabel() {
		indexDefinition(e, s.Label, lspindex.KindSection, s.LabelText, s.LabelRange, loc)
	}

	return Signal{}
}

// handleEND implements spec §4.6 "END": terminate assembly, warn A249 if
// the label is present but not a sequence symbol, and diagnose E032 if the
// expression operand (the entry point) evaluates to an absolute rather
// than relocatable value.
func handleEND(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	e.Ctx.MarkEndReached()

	if s.HasLabel() && !strings.HasPrefix(s.LabelText, ".") {
		e.emit(warnAt(diag.CodeA249, s.LabelRange, loc, "END label is not a sequence symbol"))
	}

	if len(s.Operands) > 0 && s.Operands[0].Kind == stmt.OperandExpr && s.Operands[0].Expr != nil {
		if v, _, ok := stmt.Eval(s.Operands[0].Expr, e.Ctx); ok && v.Kind == value.KindAbsolute {
			e.emit(errAt(diag.CodeE032, s.Operands[0].Range, loc, "END operand must not be an absolute value"))
		}
	}

	return Signal{Kind: SignalEnd}
}

// handleMNOTE implements spec §4.6 "MNOTE": level,'message'. The level
// operand is either a decimal 0-255, an asterisk (treated as severity 0,
// i.e. hint, the "informational, same severity as no level" form), or
// omitted (defaults to the conventional level 1).
func handleMNOTE(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if len(s.Operands) == 0 {
		e.emit(errAt(diag.CodeA119, s.OperandRange, loc, "MNOTE requires a message operand"))
		return Signal{}
	}

	level := 1
	msgIndex := 0

	if len(s.Operands) >= 2 {
		msgIndex = 1

		if v, _, ok := stmt.Eval(s.Operands[0].Expr, e.Ctx); ok && v.Kind == value.KindAbsolute {
			level = int(v.Absolute)

			if level < 0 || level > 255 {
				e.emit(errAt(diag.CodeA118, s.Operands[0].Range, loc, "MNOTE level must be 0-255"))
				level = 1
			}
		}
	}

	if msgIndex >= len(s.Operands) || s.Operands[msgIndex].Kind != stmt.OperandString {
		e.emit(errAt(diag.CodeA119, s.OperandRange, loc, "MNOTE message must be a quoted string"))
		return Signal{}
	}

	msg := s.Operands[msgIndex].Str
	if len(msg) > 1020 {
		e.emit(errAt(diag.CodeA117, s.OperandRange, loc, "MNOTE message exceeds 1020 characters"))
		msg = msg[:1020]
	}

	e.emit(diag.Diagnostic{
		Code:     diag.CodeMNOTE,
		Severity: diag.LevelToSeverity(level),
		Range:    s.OperandRange,
		Location: loc,
		Message:  msg,
	})

	return Signal{}
}

// handleAINSERT implements spec §4.6 "AINSERT": 'text',BACK|FRONT. The
// actual line-queue mutation happens in the statement provider layer
// (internal/stmtprovider.OpenCode.InsertFront/Back); the manager performs
// it once SignalAInsert reaches it, since only it holds that reference.
func handleAINSERT(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if len(s.Operands) == 0 || s.Operands[0].Kind != stmt.OperandString {
		e.emit(errAt(diag.CodeA001, s.OperandRange, loc, "AINSERT requires a quoted text operand"))
		return Signal{}
	}

	back := false

	if len(s.Operands) >= 2 {
		if name, ok := operandSymbolOf(s.Operands[1]); ok && strings.EqualFold(e.Pool.Name(name), "BACK") {
			back = true
		}
	}

	return Signal{Kind: SignalAInsert, AInsertLines: []string{s.Operands[0].Str}, AInsertBack: back}
}

func handleLTORG(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	e.Ctx.Metrics().LiteralsFlushed++
	return Signal{}
}

func handleCNOP(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if len(s.Operands) != 2 {
		return Signal{}
	}

	byteVal, _, ok1 := stmt.Eval(s.Operands[0].Expr, e.Ctx)
	boundary, _, ok2 := stmt.Eval(s.Operands[1].Expr, e.Ctx)

	if !ok1 || !ok2 || boundary.Kind != value.KindAbsolute {
		return Signal{}
	}

	addr := e.Ctx.Align(int(boundary.Absolute))

	if s.HasLabel() {
		_, created, diags := createLabelSymbol(e, s.Label, value.RelocatableValue(addr), ctx.Attributes{Type: 'I', Length: 1}, s.LabelRange, loc)
		e.emitAll(diags)

		if created {
			indexDefinition(e, s.Label, lspindex.KindOrdinarySymbol, s.LabelText, s.LabelRange, loc)
		}
	}

	_ = byteVal

	return Signal{}
}

// handleOPSYN implements spec §4.6 "OPSYN": label OPSYN [opcode]. With an
// operand, label becomes an alias of opcode; with none, any existing
// alias for label is removed.
func handleOPSYN(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if !s.HasLabel() {
		e.emit(errAt(diag.CodeE053, s.InstructionRange, loc, "OPSYN requires a label"))
		return Signal{}
	}

	if len(s.Operands) == 0 {
		if !e.Ctx.RemoveMnemonic(s.Label) {
			e.emit(errAt(diag.CodeE049, s.LabelRange, loc, "OPSYN of undefined mnemonic"))
		}

		return Signal{}
	}

	target, ok := operandSymbolAt(s, 0)
	if !ok {
		e.emit(errAt(diag.CodeE049, s.OperandRange, loc, "OPSYN target must be an opcode name"))
		return Signal{}
	}

	e.Ctx.AddMnemonic(s.Label, target)

	return Signal{}
}

// machineInstruction is the fallback for every mnemonic the ordinary
// processor does not special-case: its only ordinary-assembly effect is
// defining the label (if any) at the current address before advancing by
// one instruction's worth of storage, approximated here as the machine
// form's default length of 4 bytes (full object-code emission is out of
// scope per spec §1).
func machineInstruction(e *Env, s *stmt.Statement, loc reslocation.Location) Signal {
	if s.HasLabel() {
		addr := e.Ctx.Align(1)

		_, created, diags := createLabelSymbol(e, s.Label, value.RelocatableValue(addr), ctx.Attributes{Type: 'I', Length: 4}, s.LabelRange, loc)
		e.emitAll(diags)

		if created {
			indexDefinition(e, s.Label, lspindex.KindOrdinarySymbol, s.LabelText, s.LabelRange, loc)
		}

		e.Tokens.Add(s.LabelRange, semtok.TypeLabel, e.legendDecl())
	}

	if s.Status.Occurrence != stmt.OccurrenceAbsent {
		e.Ctx.ReserveStorage(4, 1)
		e.Tokens.Add(s.InstructionRange, semtok.TypeInstruction, 0)
	}

	return Signal{}
}

// createLabelSymbol defines id, tolerating the case where a lookahead
// excursion already committed this exact statement's definition (spec
// §4.5's Lookahead state runs ordinary-assembly side effects early so a
// T'/L' reference ahead of a label's textual position still resolves);
// when the main stream later reaches the same source range, redefinition
// is silently accepted rather than diagnosed as E031.
func createLabelSymbol(e *Env, id ids.Id, v value.Value, attrs ctx.Attributes, r lexspan.Range, loc reslocation.Location) (*ctx.Symbol, bool, []diag.Diagnostic) {
	if existing, ok := e.Ctx.GetSymbol(id); ok && existing.DefinitionRange == r && existing.DefinitionLocation.Equal(loc) {
		return existing, false, nil
	}

	return e.Ctx.CreateSymbol(id, v, attrs, r, loc)
}

func indexDefinition(e *Env, id ids.Id, kind lspindex.Kind, name string, r lexspan.Range, loc reslocation.Location) {
	e.Index.AddDefinition(lspindex.Entry{
		Id:         id,
		Name:       name,
		Kind:       kind,
		Definition: toProtocolLocation(loc, r),
	})
}

func toProtocolLocation(loc reslocation.Location, r lexspan.Range) protocol.Location {
	return protocol.Location{
		URI: loc.String(),
		Range: protocol.Range{
			Start: protocol.Position{Line: r.Start.Line, Character: r.Start.Character},
			End:   protocol.Position{Line: r.End.Line, Character: r.End.Character},
		},
	}
}

func (e *Env) legendDecl() uint32 {
	return 1 << 0 // ModifierDeclaration is always index 0 in semtok.NewLegend
}

func errAt(code diag.Code, r lexspan.Range, loc reslocation.Location, msg string) diag.Diagnostic {
	return diag.Diagnostic{Code: code, Severity: diag.SeverityError, Range: r, Location: loc, Message: msg}
}

func warnAt(code diag.Code, r lexspan.Range, loc reslocation.Location, msg string) diag.Diagnostic {
	return diag.Diagnostic{Code: code, Severity: diag.SeverityWarning, Range: r, Location: loc, Message: msg}
}

func constOperand(s *stmt.Statement, index int) (int32, bool) {
	if index >= len(s.Operands) {
		return 0, false
	}

	op := s.Operands[index]
	if op.Kind != stmt.OperandExpr || op.Expr == nil || op.Expr.Kind != stmt.ExprNumber {
		return 0, false
	}

	return int32(op.Expr.Number), true
}

func operandSymbolOf(op stmt.Operand) (ids.Id, bool) {
	if op.Kind == stmt.OperandExpr && op.Expr != nil && op.Expr.Kind == stmt.ExprSymbol {
		return op.Expr.Symbol, true
	}

	return ids.Empty, false
}

func operandSymbolAt(s *stmt.Statement, index int) (ids.Id, bool) {
	if index >= len(s.Operands) {
		return ids.Empty, false
	}

	return operandSymbolOf(s.Operands[index])
}

