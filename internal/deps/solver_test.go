package deps

import (
	"testing"

	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/value"
)

func TestRunToFixedPointResolvesInOrder(t *testing.T) {
	c := ctx.New(nil, nil)
	b := c.Intern("B")
	a := c.Intern("A")

	s := NewSolver()

	// A depends on B; B resolves immediately. A should resolve on the
	// second pass once B is defined.
	s.Add(Node{
		Description: "A",
		Attempt: func(c *ctx.Ctx) (bool, []diag.Diagnostic) {
			bv, ok := c.SymbolValue(b)
			if !ok || !bv.IsDefined() {
				return false, nil
			}

			c.CreateSymbol(a, value.AbsoluteValue(bv.Absolute+1), ctx.DefaultAttributes, lexspan.Range{}, reslocation.Empty)
			return true, nil
		},
	})

	s.Add(Node{
		Description: "B",
		Attempt: func(c *ctx.Ctx) (bool, []diag.Diagnostic) {
			c.CreateSymbol(b, value.AbsoluteValue(41), ctx.DefaultAttributes, lexspan.Range{}, reslocation.Empty)
			return true, nil
		},
	})

	diags := s.RunToFixedPoint(c)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	sym, ok := c.GetSymbol(a)
	if !ok || sym.Value.Absolute != 42 {
		t.Fatalf("expected A=42, got %+v ok=%v", sym, ok)
	}

	if s.Pending() != 0 {
		t.Errorf("expected solver to be drained, got %d pending", s.Pending())
	}
}

func TestRunToFixedPointCycleEmitsE033(t *testing.T) {
	c := ctx.New(nil, nil)

	s := NewSolver()
	s.Add(Node{
		Description: "cycle",
		Attempt: func(c *ctx.Ctx) (bool, []diag.Diagnostic) {
			return false, nil
		},
	})

	diags := s.RunToFixedPoint(c)
	if len(diags) != 1 || diags[0].Code != diag.CodeE033 {
		t.Fatalf("expected a single E033, got %v", diags)
	}

	if s.Pending() != 0 {
		t.Errorf("expected cycle nodes to be dropped after reporting, got %d pending", s.Pending())
	}
}

func TestRevalidateLeavesStillPendingNodesAlone(t *testing.T) {
	c := ctx.New(nil, nil)
	b := c.Intern("B")
	a := c.Intern("A")

	s := NewSolver()

	s.Add(Node{
		Description: "A",
		Attempt: func(c *ctx.Ctx) (bool, []diag.Diagnostic) {
			bv, ok := c.SymbolValue(b)
			if !ok || !bv.IsDefined() {
				return false, nil
			}

			c.CreateSymbol(a, value.AbsoluteValue(bv.Absolute+1), ctx.DefaultAttributes, lexspan.Range{}, reslocation.Empty)
			return true, nil
		},
	})

	diags := s.Revalidate(c)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics from an unresolved Revalidate pass, got %v", diags)
	}

	if s.Pending() != 1 {
		t.Fatalf("expected A to remain pending (B still undefined), got %d pending", s.Pending())
	}

	// A lookahead excursion defines B out of source order; Revalidate
	// should pick A back up without having diagnosed it as a cycle.
	c.CreateSymbol(b, value.AbsoluteValue(41), ctx.DefaultAttributes, lexspan.Range{}, reslocation.Empty)

	diags = s.Revalidate(c)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	sym, ok := c.GetSymbol(a)
	if !ok || sym.Value.Absolute != 42 {
		t.Fatalf("expected A=42, got %+v ok=%v", sym, ok)
	}

	if s.Pending() != 0 {
		t.Errorf("expected solver to be drained, got %d pending", s.Pending())
	}
}
