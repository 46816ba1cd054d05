package ctx

import (
	"testing"

	"github.com/hlasm-tools/hlasmcore/internal/value"
)

func TestUsingAddAndRemove(t *testing.T) {
	c := newTestCtx()

	c.UsingAdd(UsingFrame{Base: value.Address{Offset: 0}, Operands: []UsingOperand{{Register: 12}}})
	c.UsingAdd(UsingFrame{Base: value.Address{Offset: 0x100}, Operands: []UsingOperand{{Register: 13}, {Register: 14}}})

	if len(c.ActiveUsings()) != 2 {
		t.Fatalf("expected two active USING frames, got %d", len(c.ActiveUsings()))
	}

	c.UsingRemove(12)

	active := c.ActiveUsings()
	if len(active) != 1 {
		t.Fatalf("expected dropping the only register of a frame to remove it entirely, got %v", active)
	}

	if len(active[0].Operands) != 2 {
		t.Errorf("expected the untouched frame's operands to remain, got %v", active[0].Operands)
	}

	c.UsingRemove(13)

	active = c.ActiveUsings()
	if len(active) != 1 || len(active[0].Operands) != 1 || active[0].Operands[0].Register != 14 {
		t.Errorf("expected register 13 dropped and 14 to remain, got %v", active)
	}
}

func TestUsingPushPop(t *testing.T) {
	c := newTestCtx()

	c.UsingAdd(UsingFrame{Operands: []UsingOperand{{Register: 12}}})
	c.UsingPush()

	if len(c.ActiveUsings()) != 0 {
		t.Fatalf("expected PUSH USING to clear the active map")
	}

	c.UsingAdd(UsingFrame{Operands: []UsingOperand{{Register: 13}}})

	if !c.UsingPop() {
		t.Fatalf("expected POP USING to succeed")
	}

	active := c.ActiveUsings()
	if len(active) != 1 || active[0].Operands[0].Register != 12 {
		t.Errorf("expected POP USING to restore the saved map, got %v", active)
	}

	if c.UsingPop() {
		t.Errorf("expected a second POP USING with nothing saved to report failure")
	}
}
