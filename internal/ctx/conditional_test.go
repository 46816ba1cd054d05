package ctx

import (
	"testing"

	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
)

func TestSetVarScopeGetSet(t *testing.T) {
	c := newTestCtx()
	id := c.Intern("&COUNT")

	if _, ok := c.GlobalSetVars().Get(id); ok {
		t.Fatalf("expected an unset variable to be absent")
	}

	c.GlobalSetVars().Set(id, SetValue{Kind: SetVarA, ArithScalar: 7})

	v, ok := c.GlobalSetVars().Get(id)
	if !ok || v.ArithScalar != 7 {
		t.Errorf("expected ArithScalar 7, got %+v ok=%v", v, ok)
	}
}

func TestMacroFrameScopingIsIndependentOfGlobal(t *testing.T) {
	c := newTestCtx()
	id := c.Intern("&X")

	c.GlobalSetVars().Set(id, SetValue{Kind: SetVarA, ArithScalar: 1})

	frame := c.PushMacroFrame()
	frame.Set(id, SetValue{Kind: SetVarA, ArithScalar: 99})

	if v, _ := c.CurrentSetVars().Get(id); v.ArithScalar != 99 {
		t.Errorf("expected the macro frame's binding to shadow the global one, got %+v", v)
	}

	c.PopMacroFrame()

	if v, _ := c.CurrentSetVars().Get(id); v.ArithScalar != 1 {
		t.Errorf("expected popping the macro frame to restore the global binding, got %+v", v)
	}
}

func TestSequenceTableRejectsDuplicateDefinition(t *testing.T) {
	tab := newSequenceTable()
	seq := idType(1)

	if !tab.Define(seq, 3) {
		t.Fatalf("expected first definition to succeed")
	}

	if tab.Define(seq, 9) {
		t.Errorf("expected a duplicate sequence-symbol definition to fail")
	}

	if pos, ok := tab.Lookup(seq); !ok || pos != 3 {
		t.Errorf("expected the first position to be retained, got %d ok=%v", pos, ok)
	}
}

func TestEnterCopyDetectsCycle(t *testing.T) {
	c := newTestCtx()
	member := c.Intern("MYCOPY")

	ok, diags := c.EnterCopy(member, lexspan.Range{}, reslocation.Empty)
	if !ok || len(diags) != 0 {
		t.Fatalf("expected first entry to succeed, got ok=%v diags=%v", ok, diags)
	}

	ok, diags = c.EnterCopy(member, lexspan.Range{}, reslocation.Empty)
	if ok {
		t.Fatalf("expected re-entering the same copy member to fail")
	}

	if len(diags) != 1 || diags[0].Code != diag.CodeE062 {
		t.Errorf("expected E062, got %v", diags)
	}
}

func TestWholeCopyStackOrder(t *testing.T) {
	c := newTestCtx()
	outer := c.Intern("OUTER")
	inner := c.Intern("INNER")

	c.EnterCopy(outer, lexspan.Range{}, reslocation.Empty)
	c.EnterCopy(inner, lexspan.Range{}, reslocation.Empty)

	stack := c.WholeCopyStack()
	if len(stack) != 2 || stack[0] != outer || stack[1] != inner {
		t.Errorf("expected [OUTER INNER], got %v", stack)
	}

	c.ExitCopy()

	if stack := c.WholeCopyStack(); len(stack) != 1 || stack[0] != outer {
		t.Errorf("expected only OUTER to remain, got %v", stack)
	}
}

func TestDefineMacroOverwritesWithoutDiagnostic(t *testing.T) {
	c := newTestCtx()
	name := c.Intern("MYMAC")

	c.DefineMacro(&MacroDef{Name: name})
	c.DefineMacro(&MacroDef{Name: name, Params: []MacroParam{{Name: c.Intern("&P1")}}})

	def, ok := c.LookupMacro(name)
	if !ok || len(def.Params) != 1 {
		t.Errorf("expected the second definition to have replaced the first, got %+v", def)
	}
}
