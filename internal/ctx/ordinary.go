package ctx

import (
	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
	"github.com/hlasm-tools/hlasmcore/internal/value"
)

// DefineSection creates or re-enters a section of the given kind under the
// label name (empty label = private section of that kind), per spec §4.6
// "CSECT|DSECT|RSECT|COM". ok is false (with a diagnostic appended to
// diags) when another symbol of that name already exists, or when another
// private section of a different kind already exists (DUMMY excepted).
func (c *Ctx) DefineSection(id idType, kind SectionKind, r lexspan.Range, loc reslocation.Location) (*Section, bool, []diag.Diagnostic) {
	var diags []diag.Diagnostic

	if sec, ok := c.sections[id]; ok {
		if sec.Kind != kind && kind != SectionDummy && sec.Kind != SectionDummy {
			diags = append(diags, c.errorAt(diag.CodeE031, r, loc, "symbol already defines a section of a different kind"))
			return sec, false, diags
		}

		c.currentSection = id
		return sec, true, diags
	}

	if id != emptyId {
		if _, exists := c.symbols[id]; exists {
			diags = append(diags, c.errorAt(diag.CodeE031, r, loc, "symbol already defined"))
			return nil, false, diags
		}
	}

	sec := newSection(id, kind)
	c.sections[id] = sec
	c.sectionOrder = append(c.sectionOrder, id)
	c.currentSection = id

	if kind == SectionExecutable || kind == SectionReadOnly {
		c.hasExecutable = true
	}

	return sec, true, diags
}

// StartSection establishes the first executable section at an absolute
// initial offset (spec §4.6 "START"). Diagnoses E073 if an
// executable/read-only section already exists.
func (c *Ctx) StartSection(id idType, initial int64, r lexspan.Range, loc reslocation.Location) (*Section, bool, []diag.Diagnostic) {
	if c.hasStartSeen || c.hasExecutable {
		return nil, false, []diag.Diagnostic{c.errorAt(diag.CodeE073, r, loc, "START after an executable/read-only section already exists")}
	}

	sec, ok, diags := c.DefineSection(id, SectionExecutable, r, loc)
	if ok {
		sec.current().Offset = initial
		sec.current().Max = initial
		c.hasStartSeen = true
	}

	return sec, ok, diags
}

// SetLocationCounter switches the current section to the named counter
// (spec §4.6 "LOCTR"), creating it on first use.
func (c *Ctx) SetLocationCounter(id idType) *LocationCounter {
	sec := c.CurrentSection()
	if sec == nil {
		return nil
	}

	lc := sec.ensureCounter(id)
	sec.CurrentCounter = id

	return lc
}

// CurrentSection returns the section currently receiving statements, or
// nil if none has been established yet.
func (c *Ctx) CurrentSection() *Section {
	return c.sections[c.currentSection]
}

// Align advances the current location counter to the next multiple of
// alignment. Alignment padding always has a known length, so no Space is
// created for it. With no section established yet, Align first opens the
// unnamed private executable section.
func (c *Ctx) Align(alignment int) value.Address {
	sec := c.CurrentSection()
	if sec == nil {
		sec, _, _ = c.DefineSection(emptyId, SectionExecutable, lexspan.Range{}, reslocation.Empty)
	}

	lc := sec.current()

	offset := lc.Offset
	if alignment > 1 {
		rem := offset % int64(alignment)
		if rem != 0 {
			offset += int64(alignment) - rem
		}
	}

	if c.inLookahead() {
		return value.Address{Section: sec.Id, Loctr: lc.Id, Offset: offset}
	}

	lc.Offset = offset
	if lc.Offset > lc.Max {
		lc.Max = lc.Offset
	}

	return value.Address{Section: sec.Id, Loctr: lc.Id, Offset: lc.Offset}
}

// ReserveStorage advances the current counter by length bytes after
// aligning to alignment, returning the address of the first reserved
// byte. During a lookahead excursion (spec §4.5) it reports the address
// storage would occupy without advancing the counter, since lookahead is
// read-only with respect to ordinary-assembly address side effects.
func (c *Ctx) ReserveStorage(length int64, alignment int) value.Address {
	addr := c.Align(alignment)

	if c.inLookahead() {
		return addr
	}

	sec := c.CurrentSection()
	lc := sec.current()
	lc.Offset += length

	if lc.Offset > lc.Max {
		lc.Max = lc.Offset
	}

	return addr
}

// ReserveSpace is like ReserveStorage but the length is not yet known: it
// installs a Space in the counter's chain and returns both the address at
// the space's start and the space itself, so a caller can register a
// dependency that resolves the space's length later.
func (c *Ctx) ReserveSpace(alignment int, fill *byte) (value.Address, *Space) {
	addr := c.Align(alignment)

	if c.inLookahead() {
		return addr, nil
	}

	sec := c.CurrentSection()
	lc := sec.current()
	sp := lc.newSpace(alignment, fill)

	return addr, sp
}

// ResolveSpace commits a previously opened Space's length exactly once and
// advances the counter's current offset (and its Max) by that length.
// Addresses already handed out after the space are not revised here.
func (c *Ctx) ResolveSpace(sec idType, loctr idType, spaceId value.SpaceId, length int64) bool {
	s, ok := c.sections[sec]
	if !ok {
		return false
	}

	lc, ok := s.counter(loctr)
	if !ok {
		return false
	}

	for _, sp := range lc.Spaces {
		if sp.Id == spaceId {
			if sp.Resolved() {
				return false
			}

			l := length
			sp.Length = &l
			lc.Offset += length

			if lc.Offset > lc.Max {
				lc.Max = lc.Offset
			}

			return true
		}
	}

	return false
}

// OrgTo sets the current counter's offset directly (spec §4.6 "ORG").
// Diagnoses E068 if target is before the section's origin.
func (c *Ctx) OrgTo(target int64, r lexspan.Range, loc reslocation.Location) []diag.Diagnostic {
	if target < 0 {
		return []diag.Diagnostic{c.errorAt(diag.CodeE068, r, loc, "ORG target precedes the section origin")}
	}

	if c.inLookahead() {
		return nil
	}

	sec := c.CurrentSection()
	lc := sec.current()

	lc.Offset = target
	if lc.Offset > lc.Max {
		lc.Max = lc.Offset
	}

	return nil
}

// OrgToMax sets the current counter to its maximum-reached offset, the
// no-operand form of ORG.
func (c *Ctx) OrgToMax() {
	if c.inLookahead() {
		return
	}

	lc := c.CurrentSection().current()
	lc.Offset = lc.Max
}

// inLookahead reports whether the statement currently being processed is
// running inside a Lookahead excursion (spec §4.5), so the
// counter-advancing calls above can become no-ops: lookahead resolves
// attributes of a forward symbol, it must not affect where real
// subsequent statements land.
func (c *Ctx) inLookahead() bool {
	f, ok := c.stack.Top()
	return ok && f.Kind == FrameLookahead
}

// CreateSymbol defines id with the given value and attributes. ok is false
// if id is already defined; the first definition is left intact (spec §8's
// quantified invariant).
func (c *Ctx) CreateSymbol(id idType, v value.Value, attrs Attributes, r lexspan.Range, loc reslocation.Location) (*Symbol, bool, []diag.Diagnostic) {
	if existing, ok := c.symbols[id]; ok {
		return existing, false, []diag.Diagnostic{c.errorAt(diag.CodeE031, r, loc, "symbol already defined")}
	}

	sym := &Symbol{
		Id:                      id,
		Value:                   v,
		Attributes:              attrs,
		DefinitionLocation:      loc,
		DefinitionRange:         r,
		ProcessingStackSnapshot: c.stack.Snapshot(),
	}
	c.symbols[id] = sym
	c.metrics.DefinedSymbols++

	return sym, true, nil
}

// GetSymbol returns the symbol named id, if any.
func (c *Ctx) GetSymbol(id idType) (*Symbol, bool) {
	s, ok := c.symbols[id]
	return s, ok
}

// SetSymbolValue commits a previously-placeholder symbol's value. Per
// spec §3's invariant, this must only be called once a symbol transitions
// out of undefined; callers (the dependency solver) are responsible for
// enforcing single-assignment.
func (c *Ctx) SetSymbolValue(id idType, v value.Value) bool {
	s, ok := c.symbols[id]
	if !ok {
		return false
	}

	s.Value = v

	return true
}

// SetSymbolAttr updates one attribute of a symbol whose length/scale still
// carries a self-reference marker (spec §3's invariant allows exactly this
// one post-definition mutation).
func (c *Ctx) SetSymbolAttr(id idType, length uint16, scale int16) bool {
	s, ok := c.symbols[id]
	if !ok || !s.Attributes.SelfReferring {
		return false
	}

	s.Attributes.Length = length
	s.Attributes.Scale = scale
	s.Attributes.SelfReferring = false

	return true
}

// AddMnemonic aliases new to the opcode existing, per spec §4.6 "OPSYN".
func (c *Ctx) AddMnemonic(new, existing idType) {
	c.mnemonics[new] = existing
}

// RemoveMnemonic deletes an OPSYN alias. ok is false if new was not
// defined as a mnemonic.
func (c *Ctx) RemoveMnemonic(new idType) bool {
	if _, ok := c.mnemonics[new]; !ok {
		return false
	}

	delete(c.mnemonics, new)

	return true
}

// ResolveMnemonic follows an OPSYN alias chain to the real opcode,
// returning id unchanged if it is not an alias.
func (c *Ctx) ResolveMnemonic(id idType) idType {
	seen := map[idType]bool{}

	for {
		target, ok := c.mnemonics[id]
		if !ok || seen[id] {
			return id
		}

		seen[id] = true
		id = target
	}
}

// SymbolValue implements stmt.Resolver.
func (c *Ctx) SymbolValue(id idType) (value.Value, bool) {
	s, ok := c.symbols[id]
	if !ok {
		return value.Undefined, false
	}

	return s.Value, true
}

// SymbolAttr implements stmt.Resolver.
func (c *Ctx) SymbolAttr(id idType, attr stmt.AttrKind) (int32, bool) {
	s, ok := c.symbols[id]
	if !ok {
		return 0, false
	}

	switch attr {
	case stmt.AttrType:
		return int32(s.Attributes.Type), true
	case stmt.AttrLength:
		return int32(s.Attributes.Length), true
	case stmt.AttrScale:
		return int32(s.Attributes.Scale), true
	case stmt.AttrInteger:
		return int32(s.Attributes.Integer), true
	}

	return 0, false
}

// CurrentAddress implements stmt.Resolver.
func (c *Ctx) CurrentAddress() value.Address {
	sec := c.CurrentSection()
	if sec == nil {
		return value.Address{}
	}

	lc := sec.current()

	return value.Address{Section: sec.Id, Loctr: lc.Id, Offset: lc.Offset}
}

func (c *Ctx) errorAt(code diag.Code, r lexspan.Range, loc reslocation.Location, msg string) diag.Diagnostic {
	return diag.Diagnostic{Code: code, Severity: diag.SeverityError, Range: r, Location: loc, Message: msg}
}
