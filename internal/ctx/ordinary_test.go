package ctx

import (
	"testing"

	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/value"
)

func newTestCtx() *Ctx {
	return New(nil, nil)
}

func TestDefineSectionCreatesAndReenters(t *testing.T) {
	c := newTestCtx()
	name := c.Intern("CODE")

	sec1, ok, diags := c.DefineSection(name, SectionExecutable, lexspan.Range{}, reslocation.Empty)
	if !ok || len(diags) != 0 {
		t.Fatalf("expected clean first CSECT, got ok=%v diags=%v", ok, diags)
	}

	sec2, ok, diags := c.DefineSection(name, SectionExecutable, lexspan.Range{}, reslocation.Empty)
	if !ok || len(diags) != 0 {
		t.Fatalf("expected re-entering the same CSECT to succeed, got ok=%v diags=%v", ok, diags)
	}

	if sec1 != sec2 {
		t.Errorf("expected re-entry to return the same Section")
	}
}

func TestDefineSectionConflictingKind(t *testing.T) {
	c := newTestCtx()
	name := c.Intern("AREA")

	if _, ok, _ := c.DefineSection(name, SectionExecutable, lexspan.Range{}, reslocation.Empty); !ok {
		t.Fatalf("expected first CSECT to succeed")
	}

	_, ok, diags := c.DefineSection(name, SectionReadOnly, lexspan.Range{}, reslocation.Empty)
	if ok {
		t.Fatalf("expected conflicting section kind to fail")
	}

	if len(diags) != 1 || diags[0].Code != diag.CodeE031 {
		t.Errorf("expected a single E031, got %v", diags)
	}
}

func TestStartSectionOnlyOnce(t *testing.T) {
	c := newTestCtx()
	a := c.Intern("A")
	b := c.Intern("B")

	if _, ok, diags := c.StartSection(a, 0x1000, lexspan.Range{}, reslocation.Empty); !ok || len(diags) != 0 {
		t.Fatalf("expected first START to succeed, got ok=%v diags=%v", ok, diags)
	}

	_, ok, diags := c.StartSection(b, 0x2000, lexspan.Range{}, reslocation.Empty)
	if ok {
		t.Fatalf("expected a second START to fail")
	}

	if len(diags) != 1 || diags[0].Code != diag.CodeE073 {
		t.Errorf("expected E073, got %v", diags)
	}
}

func TestReserveStorageAdvancesAndAligns(t *testing.T) {
	c := newTestCtx()
	name := c.Intern("CSECT1")
	c.DefineSection(name, SectionExecutable, lexspan.Range{}, reslocation.Empty)

	c.ReserveStorage(1, 1)
	addr := c.ReserveStorage(4, 4)

	if addr.Offset != 4 {
		t.Errorf("expected alignment to advance offset to 4, got %d", addr.Offset)
	}
}

func TestOrgToRejectsNegativeTarget(t *testing.T) {
	c := newTestCtx()
	name := c.Intern("CSECT1")
	c.DefineSection(name, SectionExecutable, lexspan.Range{}, reslocation.Empty)

	diags := c.OrgTo(-1, lexspan.Range{}, reslocation.Empty)
	if len(diags) != 1 || diags[0].Code != diag.CodeE068 {
		t.Fatalf("expected E068 for a negative ORG target, got %v", diags)
	}
}

func TestCreateSymbolKeepsFirstDefinition(t *testing.T) {
	c := newTestCtx()
	id := c.Intern("LABEL")

	first, ok, diags := c.CreateSymbol(id, value.AbsoluteValue(1), DefaultAttributes, lexspan.Range{}, reslocation.Empty)
	if !ok || len(diags) != 0 {
		t.Fatalf("expected first definition to succeed, got ok=%v diags=%v", ok, diags)
	}

	second, ok, diags := c.CreateSymbol(id, value.AbsoluteValue(2), DefaultAttributes, lexspan.Range{}, reslocation.Empty)
	if ok {
		t.Fatalf("expected redefinition to fail")
	}

	if len(diags) != 1 || diags[0].Code != diag.CodeE031 {
		t.Errorf("expected E031, got %v", diags)
	}

	if second != first || second.Value.Absolute != 1 {
		t.Errorf("expected redefinition to leave the original symbol untouched, got %+v", second)
	}
}

func TestResolveMnemonicFollowsChain(t *testing.T) {
	c := newTestCtx()
	mvcl := c.Intern("MVCL")
	alias := c.Intern("MYMOVE")

	c.AddMnemonic(alias, mvcl)

	if got := c.ResolveMnemonic(alias); got != mvcl {
		t.Errorf("expected alias to resolve to MVCL, got %v", c.Name(got))
	}

	if got := c.ResolveMnemonic(mvcl); got != mvcl {
		t.Errorf("expected a non-alias to resolve to itself")
	}
}

func TestResolveMnemonicBreaksCycles(t *testing.T) {
	c := newTestCtx()
	a := c.Intern("A")
	b := c.Intern("B")

	c.AddMnemonic(a, b)
	c.AddMnemonic(b, a)

	// Must terminate rather than loop forever.
	_ = c.ResolveMnemonic(a)
}
