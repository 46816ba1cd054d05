package ctx

import "github.com/hlasm-tools/hlasmcore/internal/value"

// UsingOperand is one register bound by a USING frame.
type UsingOperand struct {
	Register int
}

// UsingFrame is one entry of the USING map (spec §3 "USING map"): a base
// expression, optional end address, and the registers it maps.
type UsingFrame struct {
	Base     value.Address
	HasEnd   bool
	End      value.Address
	Operands []UsingOperand
	Labeled  idType // empty unless this is a labeled USING, for DROP by label
}

type usingStack struct {
	active []UsingFrame
	saved  [][]UsingFrame // PUSH/POP USING stack
}

func newUsingStack() *usingStack {
	return &usingStack{}
}

// UsingAdd pushes a new active frame.
func (c *Ctx) UsingAdd(f UsingFrame) {
	c.using.active = append(c.using.active, f)
}

// UsingRemove drops reg from every active frame's operand list, removing
// a frame entirely once it maps no registers (DROP with a register
// operand, spec §4.6 "USING"/"DROP").
func (c *Ctx) UsingRemove(reg int) {
	var kept []UsingFrame

	for _, f := range c.using.active {
		stillMapped := f.Operands[:0]

		for _, op := range f.Operands {
			if op.Register != reg {
				stillMapped = append(stillMapped, op)
			}
		}

		if len(stillMapped) > 0 {
			f.Operands = stillMapped
			kept = append(kept, f)
		}
	}

	c.using.active = kept
}

// UsingPush saves the current active USING map and starts a fresh one
// (spec §4.6 "PUSH USING").
func (c *Ctx) UsingPush() {
	c.using.saved = append(c.using.saved, c.using.active)
	c.using.active = nil
}

// UsingPop restores the most recently pushed USING map. ok is false if
// there was nothing to pop.
func (c *Ctx) UsingPop() bool {
	n := len(c.using.saved)
	if n == 0 {
		return false
	}

	c.using.active = c.using.saved[n-1]
	c.using.saved = c.using.saved[:n-1]

	return true
}

// ActiveUsings returns the currently active USING frames, most recent
// last.
func (c *Ctx) ActiveUsings() []UsingFrame {
	return c.using.active
}
