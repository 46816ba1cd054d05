package ctx

import (
	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// SetVarKind is the value kind of a SET-variable (spec §3).
type SetVarKind int

const (
	SetVarA SetVarKind = iota // arithmetic, i32
	SetVarB                   // boolean
	SetVarC                   // character, up to 4096 bytes
)

// MaxSetCLength is the maximum byte length of a SETC value.
const MaxSetCLength = 4096

// SetValue holds one SET-variable's value. Subscripted variables are
// represented sparsely: the scalar field matching Kind (ArithScalar,
// BoolScalar or CharScalar) is used when Subscripts is nil.
type SetValue struct {
	Kind       SetVarKind
	ArithScalar  int32
	BoolScalar   bool
	CharScalar   string
	Subscripts map[int64]SetValue
}

// SetVarScope maps identifiers to SET-variable values. Ctx keeps one
// global scope plus one per active macro frame (spec §3).
type SetVarScope struct {
	vars map[idType]*SetValue
}

func newSetVarScope() *SetVarScope {
	return &SetVarScope{vars: make(map[idType]*SetValue)}
}

// Get returns the value bound to id in this scope.
func (s *SetVarScope) Get(id idType) (SetValue, bool) {
	v, ok := s.vars[id]
	if !ok {
		return SetValue{}, false
	}

	return *v, true
}

// Set assigns id's scalar (unsubscripted) value in this scope.
func (s *SetVarScope) Set(id idType, v SetValue) {
	s.vars[id] = &v
}

// SetSubscript assigns one subscripted entry of id.
func (s *SetVarScope) SetSubscript(id idType, index int64, v SetValue) {
	existing, ok := s.vars[id]
	if !ok {
		existing = &SetValue{Kind: v.Kind, Subscripts: map[int64]SetValue{}}
		s.vars[id] = existing
	}

	if existing.Subscripts == nil {
		existing.Subscripts = map[int64]SetValue{}
	}

	existing.Subscripts[index] = v
}

// MacroParam is one entry of a macro's parameter list (spec §4.6
// "macro-definition processor").
type MacroParam struct {
	Name         idType
	Keyword      bool
	DefaultValue string // raw text of a keyword parameter's default, empty for positional
}

// MacroDef is a stored macro definition (spec §4.1 "Ctx.macros[id]").
type MacroDef struct {
	Name       idType
	Params     []MacroParam
	Body       []stmt.Statement
	Location   reslocation.Location
	DefRange   lexspan.Range
}

// SequenceTable maps sequence symbols (.NAME) to a statement index within
// the scope that owns the table (spec §3 "Sequence symbol table").
type SequenceTable struct {
	positions map[idType]int
}

func newSequenceTable() *SequenceTable {
	return &SequenceTable{positions: make(map[idType]int)}
}

// Define records the statement index of sequence symbol id. ok is false if
// already defined in this table.
func (t *SequenceTable) Define(id idType, statementIndex int) bool {
	if _, exists := t.positions[id]; exists {
		return false
	}

	t.positions[id] = statementIndex

	return true
}

// Lookup returns the statement index sequence symbol id was defined at.
func (t *SequenceTable) Lookup(id idType) (int, bool) {
	i, ok := t.positions[id]
	return i, ok
}

// CopyMember is an immutable fetched copy member, cached once fetched
// successfully (spec §3 "Copy member").
type CopyMember struct {
	Id    idType
	Lines []stmt.LogicalLine
}

// defaultActr is ACTR's implicit loop bound (spec §4.6 "ACTR bounds every
// loop (default 4096); exceeding aborts the macro") until overridden by an
// explicit ACTR statement in the same scope.
const defaultActr = 4096

type conditionalState struct {
	global         *SetVarScope
	macroFrames    []*SetVarScope
	macros         map[idType]*MacroDef
	globalSeq      *SequenceTable
	macroSeqFrames []*SequenceTable // parallel to macroFrames: fresh per invocation
	copyCache      map[idType]*CopyMember
	copyStack      []idType

	actrGlobal int
	actrFrames []int // parallel to macroFrames
}

func newConditionalState() *conditionalState {
	return &conditionalState{
		global:     newSetVarScope(),
		macros:     make(map[idType]*MacroDef),
		globalSeq:  newSequenceTable(),
		copyCache:  make(map[idType]*CopyMember),
		actrGlobal: defaultActr,
	}
}

// GlobalSetVars returns the open-code SET-variable scope.
func (c *Ctx) GlobalSetVars() *SetVarScope {
	return c.conditional.global
}

// PushMacroFrame starts a fresh SET-variable scope for a macro invocation
// and returns it. The invocation also gets its own ACTR loop-count budget
// (spec §4.6), independent of the caller's.
func (c *Ctx) PushMacroFrame() *SetVarScope {
	scope := newSetVarScope()
	c.conditional.macroFrames = append(c.conditional.macroFrames, scope)
	c.conditional.actrFrames = append(c.conditional.actrFrames, defaultActr)
	c.conditional.macroSeqFrames = append(c.conditional.macroSeqFrames, newSequenceTable())

	return scope
}

// PopMacroFrame discards the innermost macro SET-variable scope, its ACTR
// budget, and its sequence-symbol table.
func (c *Ctx) PopMacroFrame() {
	n := len(c.conditional.macroFrames)
	if n == 0 {
		return
	}

	c.conditional.macroFrames = c.conditional.macroFrames[:n-1]
	c.conditional.actrFrames = c.conditional.actrFrames[:n-1]
	c.conditional.macroSeqFrames = c.conditional.macroSeqFrames[:n-1]
}

// SetActr resets the current scope's ACTR loop-count budget (spec §4.6
// "ACTR"). A non-positive n is clamped to zero, so the very next branch
// taken in this scope aborts.
func (c *Ctx) SetActr(n int32) {
	if n < 0 {
		n = 0
	}

	if i := len(c.conditional.actrFrames); i > 0 {
		c.conditional.actrFrames[i-1] = int(n)
		return
	}

	c.conditional.actrGlobal = int(n)
}

// DecrementActr consumes one branch against the current scope's ACTR
// budget. ok is false once the budget is exhausted, at which point the
// caller must abort the enclosing macro (or analysis, in open code) rather
// than take the branch.
func (c *Ctx) DecrementActr() (ok bool) {
	if i := len(c.conditional.actrFrames); i > 0 {
		if c.conditional.actrFrames[i-1] <= 0 {
			return false
		}

		c.conditional.actrFrames[i-1]--

		return true
	}

	if c.conditional.actrGlobal <= 0 {
		return false
	}

	c.conditional.actrGlobal--

	return true
}

// CurrentSetVars returns the innermost active SET-variable scope: the top
// macro frame if any macro is active, else the global scope.
func (c *Ctx) CurrentSetVars() *SetVarScope {
	n := len(c.conditional.macroFrames)
	if n == 0 {
		return c.conditional.global
	}

	return c.conditional.macroFrames[n-1]
}

// DefineMacro stores a macro definition, overwriting any prior definition
// of the same name (HLASM allows macro redefinition; unlike ordinary
// symbols this is not diagnosed).
func (c *Ctx) DefineMacro(def *MacroDef) {
	c.conditional.macros[def.Name] = def
	c.metrics.MacrosDefined++
}

// LookupMacro returns the macro definition named id, if any.
func (c *Ctx) LookupMacro(id idType) (*MacroDef, bool) {
	m, ok := c.conditional.macros[id]
	return m, ok
}

// GlobalSequenceTable returns the sequence-symbol table for open code.
func (c *Ctx) GlobalSequenceTable() *SequenceTable {
	return c.conditional.globalSeq
}

// CurrentSequenceTable returns the innermost active sequence-symbol table:
// the top macro invocation's if any macro is active, else open code's
// (spec §4.6 "Sequence symbols are scoped to the enclosing macro or open
// code").
func (c *Ctx) CurrentSequenceTable() *SequenceTable {
	n := len(c.conditional.macroSeqFrames)
	if n == 0 {
		return c.conditional.globalSeq
	}

	return c.conditional.macroSeqFrames[n-1]
}

// EnterCopy pushes id onto the copy stack. ok is false (E062) if id is
// already present, per spec §4.1 "enter_copy(id) -> bool (fails on
// cycle)".
func (c *Ctx) EnterCopy(id idType, r lexspan.Range, loc reslocation.Location) (bool, []diag.Diagnostic) {
	for _, active := range c.conditional.copyStack {
		if active == id {
			return false, []diag.Diagnostic{{Code: diag.CodeE062, Severity: diag.SeverityError, Range: r, Location: loc, Message: "recursive COPY"}}
		}
	}

	c.conditional.copyStack = append(c.conditional.copyStack, id)

	return true, nil
}

// ExitCopy pops the most recently entered copy member.
func (c *Ctx) ExitCopy() {
	n := len(c.conditional.copyStack)
	if n == 0 {
		return
	}

	c.conditional.copyStack = c.conditional.copyStack[:n-1]
}

// WholeCopyStack returns the full stack of active copy members,
// outermost first.
func (c *Ctx) WholeCopyStack() []idType {
	return append([]idType(nil), c.conditional.copyStack...)
}

// CacheCopyMember stores a successfully fetched copy member.
func (c *Ctx) CacheCopyMember(m *CopyMember) {
	c.conditional.copyCache[m.Id] = m
	c.metrics.CopyExpansions++
}

// LookupCopyMember returns a cached copy member, if any.
func (c *Ctx) LookupCopyMember(id idType) (*CopyMember, bool) {
	m, ok := c.conditional.copyCache[id]
	return m, ok
}
