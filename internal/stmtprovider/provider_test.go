package stmtprovider

import (
	"strings"
	"testing"

	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/preprocess"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// padTo right-pads s with spaces to exactly n bytes (n must be >= len(s)).
func padTo(s string, n int) string {
	return s + strings.Repeat(" ", n-len(s))
}

func TestOpenCodeMergesContinuation(t *testing.T) {
	pool := ids.NewPool()

	first := padTo("LBL DC F'1',F'2',", defaultEndCol) + "X"
	second := padTo("", defaultContinueCol) + "F'3'"
	doc := preprocess.NewDocument(first+"\n"+second, reslocation.New("test.hlasm"))

	oc := NewOpenCode(pool, doc)

	s, ok := oc.GetNext(stmt.ProcessingStatus{Form: stmt.FormAssembler})
	if !ok {
		t.Fatalf("expected a statement")
	}

	if s.Instruction != "DC" {
		t.Fatalf("expected instruction DC, got %q", s.Instruction)
	}

	if len(s.Operands) != 3 {
		t.Fatalf("expected 3 merged operands, got %d (%v)", len(s.Operands), s.Operands)
	}
}

func TestOpenCodeAinsertFrontServedNext(t *testing.T) {
	pool := ids.NewPool()
	doc := preprocess.NewDocument(" MEND", reslocation.New("t"))
	oc := NewOpenCode(pool, doc)

	oc.InsertFront(newLogicalLineFromText(" MNOTE 'hi'", 0, reslocation.Empty))

	s, ok := oc.GetNext(stmt.ProcessingStatus{Form: stmt.FormAssembler})
	if !ok || s.Instruction != "MNOTE" {
		t.Fatalf("expected MNOTE served from the front queue first, got %+v ok=%v", s, ok)
	}
}

func TestMacroSubstitutesVariables(t *testing.T) {
	pool := ids.NewPool()
	c := ctx.New(pool, nil)

	paramName := pool.Intern("PARM")
	def := &ctx.MacroDef{
		Name:   pool.Intern("MAC"),
		Params: []ctx.MacroParam{{Name: paramName}},
		Body: []stmt.Statement{
			{Kind: stmt.StatementDeferred, Instruction: "MNOTE", RawOperandText: "'&PARM'"},
		},
	}

	scope := c.PushMacroFrame()
	scope.Set(paramName, ctx.SetValue{Kind: ctx.SetVarC, CharScalar: "hello"})

	m := NewMacro(pool, def, scope, reslocation.Empty)

	s, ok := m.GetNext(stmt.ProcessingStatus{Form: stmt.FormAssembler})
	if !ok {
		t.Fatalf("expected a replayed statement")
	}

	if s.Instruction != "MNOTE" {
		t.Fatalf("expected MNOTE, got %q", s.Instruction)
	}

	if len(s.Operands) != 1 || s.Operands[0].Str != "hello" {
		t.Fatalf("expected substituted string operand 'hello', got %+v", s.Operands)
	}
}
