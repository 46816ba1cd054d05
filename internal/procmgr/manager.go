// Package procmgr implements spec §4.5's processing manager: the state
// machine that drives the statement providers (internal/stmtprovider) and
// the processors (internal/processor), reacting to each Process call's
// Signal by pushing/popping providers, entering/leaving macro-definition
// collection, redirecting a provider for a sequence-symbol jump, or
// suspending on a library fetch.
//
// Grounded on spec §4.5's transition table directly — there is no teacher
// analog for a pull-based multi-source statement stream with cooperative
// suspension, so this package's shape follows the spec's own state
// diagram, built from the primitives (internal/task, internal/processor,
// internal/stmtprovider) the rest of the module already established in
// the teacher's idiom.
package procmgr

import (
	"strconv"
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/hlparser"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/library"
	"github.com/hlasm-tools/hlasmcore/internal/processor"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
	"github.com/hlasm-tools/hlasmcore/internal/stmtprovider"
	"github.com/hlasm-tools/hlasmcore/internal/task"
)

// providerFrame is one entry of the active provider stack: the provider
// itself, plus what the manager must do when it is popped.
type providerFrame struct {
	p         stmtprovider.Provider
	kind      stmt.Kind
	popAction func()
}

// Manager drives one analysis to completion. It is not safe for concurrent
// use; the whole point of spec §5's cooperative model is that only one
// side ever runs at a time.
type Manager struct {
	e        *processor.Env
	lib      library.Provider
	openCode *stmtprovider.OpenCode

	providers []providerFrame
	def       *processor.DefState
	defLoc    reslocation.Location

	curLoc   reslocation.Location
	curRange lexspan.Range
	ended    bool
}

// New creates a Manager whose root provider is openCode. lib supplies
// library members for COPY (spec §6's LibraryProvider); pass library.None
// for an analysis that should never suspend on a fetch.
func New(e *processor.Env, openCode *stmtprovider.OpenCode, lib library.Provider) *Manager {
	m := &Manager{e: e, lib: lib, openCode: openCode}
	m.providers = []providerFrame{{p: openCode, kind: stmt.KindOrdinary}}

	e.Lookahead = m.lookahead

	return m
}

// lookahead is installed as processor.Env.Lookahead: a conditional-
// assembly attribute reference that found target undefined asks the
// active provider to scan its own not-yet-served statements for target's
// definition. This does not cross a library boundary (a COPY or macro
// fetch still pending further up the provider stack is not pursued);
// see DESIGN.md for why that's a deliberate limit.
// lookahead runs a Lookahead excursion and then immediately revalidates the
// dependency solver: the excursion just ran a statement out of source
// order, which may have defined a symbol some other pending node was
// waiting on (spec §9 Open Question 2).
func (m *Manager) lookahead(target ids.Id) bool {
	top := m.providers[len(m.providers)-1].p
	found := processor.Lookahead(m.e, top.Peek(), target, m.curLoc)

	m.emitAll(m.e.Solver.Revalidate(m.e.Ctx))

	return found
}

// Run drives the whole analysis on h's task body, suspending through h
// whenever a COPY member must be fetched from the library. It returns once
// an END statement has been processed and the dependency solver has run to
// a fixed point, or once the root provider is exhausted without an END.
func (m *Manager) Run(h *task.Handle) {
	for !m.ended {
		if len(m.providers) == 0 {
			break
		}

		top := &m.providers[len(m.providers)-1]

		startIndex := top.p.StatementIndex()

		raw, ok := top.p.GetNext(stmt.ProcessingStatus{Form: stmt.FormUnknown, Kind: m.activeKind()})
		if !ok {
			if len(m.providers) == 1 {
				break
			}

			m.popProvider()

			continue
		}

		m.e.Ctx.AddStatement()
		m.curLoc = raw.Location
		m.curRange = raw.Range

		if m.def != nil {
			m.feedDef(raw)
			continue
		}

		for _, d := range processor.RegisterSequenceSymbol(m.e, raw, startIndex, m.curLoc) {
			m.e.Sink.Add(d)
		}

		m.dispatch(h, raw)
	}

	m.finish()
}

// activeKind picks the processing-status Kind the manager asks the active
// provider's statements to be parsed under, so EQU/OPSYN/DC see the right
// reparse cache partition when a copy member or macro body is reprocessed
// under a different excursion later.
func (m *Manager) activeKind() stmt.Kind {
	if m.def != nil {
		return stmt.KindMacroDef
	}

	top := m.providers[len(m.providers)-1]

	return top.kind
}

func (m *Manager) dispatch(h *task.Handle, raw *stmt.Statement) {
	instr := strings.ToUpper(raw.Instruction)

	kind := m.activeKind()

	var sig processor.Signal

	if processor.IsConditionalAssembly(instr) {
		reparsed, diags := hlparser.Reparse(m.e.Pool, *raw, stmt.ProcessingStatus{Form: stmt.FormConditionalAssembly, Kind: kind})
		m.emitAll(diags)

		sig = processor.ConditionalAssembly(m.e, &reparsed, m.curLoc)
	} else {
		reparsed, diags := hlparser.Reparse(m.e.Pool, *raw, stmt.ProcessingStatus{Form: stmt.FormAssembler, Kind: kind})
		m.emitAll(diags)

		sig = processor.Ordinary(m.e, &reparsed, m.curLoc)
	}

	m.handleSignal(h, sig)
}

// feedDef hands one statement to the active macro-definition collector.
// Only the prototype statement (the first one after MACRO) needs real
// Operands, for DefState.capturePrototype; every later body statement is
// stored by its raw text fields and reparsed fresh on each call by
// stmtprovider.Macro, so FormUnknown's deferred parse is enough for those.
func (m *Manager) feedDef(raw *stmt.Statement) {
	instr := strings.ToUpper(raw.Instruction)

	s := raw

	if instr != "MACRO" && instr != "MEND" && !m.def.PrototypeSeen() {
		reparsed, diags := hlparser.Reparse(m.e.Pool, *raw, stmt.ProcessingStatus{Form: stmt.FormMacro, Kind: stmt.KindMacroDef})
		m.emitAll(diags)

		s = &reparsed
	}

	done, def := m.def.Feed(s)
	if !done {
		return
	}

	m.e.Ctx.DefineMacro(def)
	m.def = nil
}

func (m *Manager) handleSignal(h *task.Handle, sig processor.Signal) {
	switch sig.Kind {
	case processor.SignalNone:
		return

	case processor.SignalEnterMacroDef:
		m.def = processor.NewDefState(m.e.Pool, m.curLoc, m.curRange)

	case processor.SignalCallMacro:
		m.enterMacro(sig)

	case processor.SignalCopyReady:
		m.enterCachedCopy(sig.MemberId)

	case processor.SignalCopyFetch:
		m.fetchCopy(h, sig.MemberId)

	case processor.SignalSeqJump:
		m.seqJump(sig.Target)

	case processor.SignalICTL:
		m.openCode.SetColumns(sig.ICTLBegin, sig.ICTLEnd, sig.ICTLContinue)

	case processor.SignalAInsert:
		m.ainsert(sig)

	case processor.SignalLookahead:
		if m.lookahead(sig.Target) {
			return
		}

	case processor.SignalEnd:
		m.ended = true
	}
}

func (m *Manager) enterMacro(sig processor.Signal) {
	def, ok := m.e.Ctx.LookupMacro(sig.Target)
	if !ok {
		return
	}

	scope := m.e.Ctx.PushMacroFrame()
	bindArgs(m.e.Pool, scope, def, sig.CallOperands)

	mp := stmtprovider.NewMacro(m.e.Pool, def, scope, m.curLoc)

	m.providers = append(m.providers, providerFrame{
		p:    mp,
		kind: stmt.KindOrdinary,
		popAction: func() {
			m.e.Ctx.PopMacroFrame()
		},
	})
}

// bindArgs binds a macro call's positional and keyword operands to def's
// parameter list in scope, per spec §4.6's macro-call rule. Positional
// operands bind in order to def's positional parameters; OperandKeyword
// operands bind to the matching keyword parameter by name regardless of
// position. Extra call operands beyond def's positional parameter count
// are silently ignored (real HLASM diagnoses this; out of scope here,
// matching spec §1's non-goal of exhaustive macro-call validation).
func bindArgs(pool *ids.Pool, scope *ctx.SetVarScope, def *ctx.MacroDef, operands []stmt.Operand) {
	positional := make([]ids.Id, 0, len(def.Params))

	for _, p := range def.Params {
		if !p.Keyword {
			positional = append(positional, p.Name)
		} else if p.DefaultValue != "" {
			scope.Set(p.Name, ctx.SetValue{Kind: ctx.SetVarC, CharScalar: p.DefaultValue})
		}
	}

	posIndex := 0

	for _, op := range operands {
		if op.Kind == stmt.OperandKeyword {
			var text string
			if op.Value != nil {
				text = operandText(pool, op.Value)
			}

			scope.Set(op.Keyword, ctx.SetValue{Kind: ctx.SetVarC, CharScalar: text})

			continue
		}

		if posIndex >= len(positional) {
			continue
		}

		scope.Set(positional[posIndex], ctx.SetValue{Kind: ctx.SetVarC, CharScalar: operandText(pool, &op)})
		posIndex++
	}
}

// operandText renders one macro-call operand back to the text a &parameter
// substitution should see: a sublist's parenthesized text for
// OperandList, the literal string for OperandString, and for OperandExpr
// the symbol name or decimal literal the common call forms (MAC A,5) use.
// Arbitrary arithmetic expressions as call arguments fall back to "" since
// the parser does not retain each operand's original source span text
// separately from its parsed Expr.
func operandText(pool *ids.Pool, op *stmt.Operand) string {
	switch op.Kind {
	case stmt.OperandString:
		return op.Str
	case stmt.OperandList:
		parts := make([]string, len(op.List))
		for i := range op.List {
			parts[i] = operandText(pool, &op.List[i])
		}

		return "(" + strings.Join(parts, ",") + ")"
	case stmt.OperandExpr:
		if op.Expr == nil {
			return ""
		}

		switch op.Expr.Kind {
		case stmt.ExprSymbol:
			return pool.Name(op.Expr.Symbol)
		case stmt.ExprNumber:
			return strconv.FormatInt(op.Expr.Number, 10)
		default:
			return ""
		}
	default:
		return ""
	}
}

func (m *Manager) enterCachedCopy(id ids.Id) {
	member, ok := m.e.Ctx.LookupCopyMember(id)
	if !ok {
		m.e.Ctx.ExitCopy()
		return
	}

	m.pushCopy(member)
}

func (m *Manager) pushCopy(member *ctx.CopyMember) {
	cp := stmtprovider.NewCopy(m.e.Pool, member.Id, member.Lines)

	m.providers = append(m.providers, providerFrame{
		p:    cp,
		kind: stmt.KindCopy,
		popAction: func() {
			m.e.Ctx.ExitCopy()
		},
	})
}

// fetchCopy suspends the task body on the library fetch for a COPY member
// that was not already cached, per spec §5's first suspension point.
func (m *Manager) fetchCopy(h *task.Handle, id ids.Id) {
	future := m.lib.GetLibrary(m.e.Pool.Name(id))

	result, err := task.Await(h, future)
	if err != nil || result == nil {
		m.e.Sink.Add(diag.Diagnostic{
			Code:     diag.CodeE058,
			Severity: diag.SeverityError,
			Range:    m.curRange,
			Location: m.curLoc,
			Message:  "COPY member " + m.e.Pool.Name(id) + " not found",
		})
		m.e.Ctx.ExitCopy()

		return
	}

	lines := splitIntoLogicalLines(result.Text, result.Location)

	member := &ctx.CopyMember{Id: id, Lines: lines}
	m.e.Ctx.CacheCopyMember(member)

	m.pushCopy(member)
}

func (m *Manager) seqJump(target ids.Id) {
	index, ok := m.e.Ctx.CurrentSequenceTable().Lookup(target)
	if !ok {
		m.e.Sink.Add(diag.Diagnostic{
			Code:     diag.CodeE040,
			Severity: diag.SeverityError,
			Range:    m.curRange,
			Location: m.curLoc,
			Message:  "sequence symbol not found in scope",
		})

		return
	}

	top := m.providers[len(m.providers)-1].p
	if !top.Seek(index) {
		m.e.Sink.Add(diag.Diagnostic{
			Code:     diag.CodeE040,
			Severity: diag.SeverityError,
			Range:    m.curRange,
			Location: m.curLoc,
			Message:  "sequence symbol target is outside the current scope's replay window",
		})
	}
}

func (m *Manager) ainsert(sig processor.Signal) {
	for i := len(sig.AInsertLines) - 1; i >= 0; i-- {
		line := stmt.LogicalLine{Text: sig.AInsertLines[i], Location: m.curLoc}

		if sig.AInsertBack {
			m.openCode.InsertBack(line)
		} else {
			m.openCode.InsertFront(line)
		}
	}
}

func (m *Manager) popProvider() {
	n := len(m.providers)
	if n == 0 {
		return
	}

	top := m.providers[n-1]
	m.providers = m.providers[:n-1]

	if top.popAction != nil {
		top.popAction()
	}
}

func (m *Manager) finish() {
	for len(m.providers) > 1 {
		m.popProvider()
	}

	diags := m.e.Solver.RunToFixedPoint(m.e.Ctx)
	m.emitAll(diags)
}

func (m *Manager) emitAll(diags []diag.Diagnostic) {
	for _, d := range diags {
		m.e.Sink.Add(d)
	}
}

func splitIntoLogicalLines(text string, loc reslocation.Location) []stmt.LogicalLine {
	raw := strings.Split(text, "\n")
	lines := make([]stmt.LogicalLine, 0, len(raw))

	for i, t := range raw {
		t = strings.TrimSuffix(t, "\r")
		lines = append(lines, stmt.LogicalLine{
			Text:     t,
			Location: loc,
			Range:    lexspan.SingleLine(uint32(i), 0, t),
		})
	}

	return lines
}
