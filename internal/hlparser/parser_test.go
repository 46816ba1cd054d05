package hlparser

import (
	"testing"

	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

func newLine(pool *ids.Pool, text string) stmt.LogicalLine {
	return stmt.LogicalLine{
		Text:     text,
		Location: reslocation.Empty,
		Range:    lexspan.SingleLine(0, 0, text),
	}
}

func machineHint() stmt.ProcessingStatus {
	return stmt.ProcessingStatus{Form: stmt.FormAssembler, Occurrence: stmt.OccurrencePresent, Kind: stmt.KindOrdinary}
}

func TestParseCommentLine(t *testing.T) {
	pool := ids.NewPool()
	s, diags := Parse(pool, newLine(pool, "* a remark"), machineHint())

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if s.Status.Form != stmt.FormIgnored {
		t.Errorf("expected a comment line to be FormIgnored, got %v", s.Status.Form)
	}
}

func TestParseLabelInstructionOperands(t *testing.T) {
	pool := ids.NewPool()
	s, diags := Parse(pool, newLine(pool, "LOOP     MVC   TO,FROM"), machineHint())

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if s.LabelText != "LOOP" {
		t.Errorf("expected label LOOP, got %q", s.LabelText)
	}

	if s.Instruction != "MVC" {
		t.Errorf("expected instruction MVC, got %q", s.Instruction)
	}

	if len(s.Operands) != 2 {
		t.Fatalf("expected 2 operands, got %d: %+v", len(s.Operands), s.Operands)
	}

	if s.Operands[0].Kind != stmt.OperandExpr || s.Operands[0].Expr.Kind != stmt.ExprSymbol {
		t.Errorf("expected first operand to be a symbol expr, got %+v", s.Operands[0])
	}
}

func TestParseNoLabelLeadingSpace(t *testing.T) {
	pool := ids.NewPool()
	s, _ := Parse(pool, newLine(pool, "         EQU   5"), machineHint())

	if s.LabelText != "" {
		t.Errorf("expected no label, got %q", s.LabelText)
	}

	if s.Instruction != "EQU" {
		t.Errorf("expected instruction EQU, got %q", s.Instruction)
	}
}

func TestParseDeferredWhenHintUnknown(t *testing.T) {
	pool := ids.NewPool()
	s, diags := Parse(pool, newLine(pool, "LOOP MVC TO,FROM"), stmt.ProcessingStatus{Form: stmt.FormUnknown})

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if s.Kind != stmt.StatementDeferred {
		t.Errorf("expected a deferred statement when the form is unknown, got %v", s.Kind)
	}

	if s.RawOperandText != "TO,FROM" {
		t.Errorf("expected the raw operand text preserved, got %q", s.RawOperandText)
	}
}

func TestReparseResolvesDeferredStatement(t *testing.T) {
	pool := ids.NewPool()
	deferred, _ := Parse(pool, newLine(pool, "LOOP MVC TO,FROM"), stmt.ProcessingStatus{Form: stmt.FormUnknown})

	resolved, diags := Reparse(pool, deferred, machineHint())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if resolved.Kind != stmt.StatementResolved || len(resolved.Operands) != 2 {
		t.Fatalf("expected resolution into 2 operands, got kind=%v operands=%+v", resolved.Kind, resolved.Operands)
	}
}

func TestParseParenthesizedOperandList(t *testing.T) {
	pool := ids.NewPool()
	s, diags := Parse(pool, newLine(pool, "     USING (BASE,END),12"), machineHint())

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if len(s.Operands) != 2 || s.Operands[0].Kind != stmt.OperandList || len(s.Operands[0].List) != 2 {
		t.Fatalf("expected a 2-element sublist as the first operand, got %+v", s.Operands)
	}
}

func TestParseKeywordOperand(t *testing.T) {
	pool := ids.NewPool()
	s, diags := Parse(pool, newLine(pool, "     MAC1  PARM=5"), machineHint())

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if len(s.Operands) != 1 || s.Operands[0].Kind != stmt.OperandKeyword {
		t.Fatalf("expected a single keyword operand, got %+v", s.Operands)
	}

	if pool.Name(s.Operands[0].Keyword) != "PARM" {
		t.Errorf("expected keyword PARM, got %q", pool.Name(s.Operands[0].Keyword))
	}
}

func TestParseArithmeticExpression(t *testing.T) {
	pool := ids.NewPool()
	s, diags := Parse(pool, newLine(pool, "     EQU   A+4*2"), machineHint())

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if len(s.Operands) != 1 {
		t.Fatalf("expected a single operand, got %+v", s.Operands)
	}

	e := s.Operands[0].Expr
	if e == nil || e.Kind != stmt.ExprBinary || e.Op != stmt.OpAdd {
		t.Fatalf("expected a top-level '+' node, got %+v", e)
	}

	if e.Right.Kind != stmt.ExprBinary || e.Right.Op != stmt.OpMul {
		t.Errorf("expected '*' to bind tighter than '+', got %+v", e.Right)
	}
}

func TestParseAttributeReference(t *testing.T) {
	pool := ids.NewPool()
	s, diags := Parse(pool, newLine(pool, "     EQU   L'FIELD"), machineHint())

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	e := s.Operands[0].Expr
	if e == nil || e.Kind != stmt.ExprAttr || e.Attr != stmt.AttrLength {
		t.Fatalf("expected an L' attribute reference, got %+v", e)
	}
}

func TestParseHexSelfDefiningTerm(t *testing.T) {
	pool := ids.NewPool()
	s, diags := Parse(pool, newLine(pool, "     EQU   X'1A'"), machineHint())

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	e := s.Operands[0].Expr
	if e == nil || e.Kind != stmt.ExprNumber || e.Number != 0x1A {
		t.Fatalf("expected X'1A' to evaluate to 26, got %+v", e)
	}
}

func TestParseDataDefinition(t *testing.T) {
	pool := ids.NewPool()
	s, diags := Parse(pool, newLine(pool, "FLD  DC    3CL5'ABC'"), machineHint())

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if len(s.Operands) != 1 || s.Operands[0].Kind != stmt.OperandDataDef {
		t.Fatalf("expected a single data-definition operand, got %+v", s.Operands)
	}

	dd := s.Operands[0].DataDef
	if dd.TypeLetter != 'C' || dd.Nominal != "ABC" {
		t.Errorf("expected type C nominal ABC, got %+v", dd)
	}

	if dd.Duplication == nil || dd.Duplication.Number != 3 {
		t.Errorf("expected duplication factor 3, got %+v", dd.Duplication)
	}

	if dd.Length == nil || dd.Length.Number != 5 {
		t.Errorf("expected length 5, got %+v", dd.Length)
	}
}

func TestParseUnbalancedParenReportsA001(t *testing.T) {
	pool := ids.NewPool()
	_, diags := Parse(pool, newLine(pool, "     EQU   (A+B"), machineHint())

	if len(diags) == 0 {
		t.Fatalf("expected an unbalanced-parenthesis diagnostic")
	}

	if diags[0].Code != diag.CodeA001 {
		t.Errorf("expected A001, got %s", diags[0].Code)
	}
}

func TestParseOmittedOperand(t *testing.T) {
	pool := ids.NewPool()
	s, diags := Parse(pool, newLine(pool, "     ORG   ,4096"), machineHint())

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if len(s.Operands) != 2 || s.Operands[0].Kind != stmt.OperandOmitted {
		t.Fatalf("expected the first operand to be omitted, got %+v", s.Operands)
	}
}
