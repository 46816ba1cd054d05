// Package hlparser implements spec §4.2's statement parser: a pure
// function from one logical line plus a processing-status hint to a
// Statement plus diagnostics, with no package-level state.
//
// Grounded on the teacher's internal/analysis/parse.go ParseDocument
// shape (pure function in, diagnostics + value out, nothing retained
// between calls) and on db47h-ngaro/asm/parser.go for the technique of a
// hand-written recursive-descent parser over a raw token cursor, the only
// example repo that is itself an assembler front end.
package hlparser

import (
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// Parse parses one logical line under the given processing-status hint.
// hint.Form decides how the operand field is interpreted: FormUnknown or
// FormDeferred leaves the operand field raw (spec §3's deferred-statement
// lifecycle; a later Reparse call supplies the real form once the
// instruction field's meaning is known).
func Parse(pool *ids.Pool, line stmt.LogicalLine, hint stmt.ProcessingStatus) (stmt.Statement, []diag.Diagnostic) {
	lineNo := line.Range.Start.Line
	fs := splitFields(line.Text)

	s := stmt.Statement{
		Status:   hint,
		Location: line.Location,
		Range:    line.Range,
	}

	if fs.comment {
		s.Kind = stmt.StatementResolved
		s.Status.Form = stmt.FormIgnored
		s.Remarks = fs.remarks
		s.RemarksRange = rangeAt(lineNo, fs.remarksCol, fs.remarks)

		return s, nil
	}

	if fs.label != "" {
		s.LabelText = fs.label
		s.Label = pool.Intern(fs.label)
		s.LabelRange = rangeAt(lineNo, fs.labelCol, fs.label)
	}

	s.Instruction = strings.ToUpper(fs.instr)
	s.InstructionRange = rangeAt(lineNo, fs.instrCol, fs.instr)
	s.RawOperandText = fs.operand
	s.OperandRange = rangeAt(lineNo, fs.operandCol, fs.operand)
	s.Remarks = fs.remarks
	s.RemarksRange = rangeAt(lineNo, fs.remarksCol, fs.remarks)

	if s.Instruction == "" {
		s.Status.Occurrence = stmt.OccurrenceAbsent
	}

	if hint.Form == stmt.FormUnknown || hint.Form == stmt.FormDeferred {
		s.Kind = stmt.StatementDeferred
		s.Status.Form = stmt.FormDeferred

		return s, nil
	}

	return parseOperandsForForm(pool, s, fs, lineNo)
}

// Reparse re-parses a previously deferred statement's operand field under
// a newly-known processing status, per spec §3's (statement,status)
// cached-reparse lifecycle.
func Reparse(pool *ids.Pool, s stmt.Statement, newHint stmt.ProcessingStatus) (stmt.Statement, []diag.Diagnostic) {
	lineNo := s.Range.Start.Line

	fs := fieldSplit{
		operand:    s.RawOperandText,
		operandCol: s.OperandRange.Start.Character,
	}

	s.Status = newHint

	if newHint.Form == stmt.FormUnknown || newHint.Form == stmt.FormDeferred {
		s.Kind = stmt.StatementDeferred
		s.Status.Form = stmt.FormDeferred

		return s, nil
	}

	return parseOperandsForForm(pool, s, fs, lineNo)
}

func parseOperandsForForm(pool *ids.Pool, s stmt.Statement, fs fieldSplit, lineNo uint32) (stmt.Statement, []diag.Diagnostic) {
	var diags []diag.Diagnostic

	switch {
	case s.Status.Form == stmt.FormIgnored:
		s.Kind = stmt.StatementResolved

	case s.Status.Form == stmt.FormConditionalAssembly:
		// Conditional-assembly operands (SETA/SETB/SETC/AIF/AGO/ACTR) have
		// their own grammar, evaluated directly from RawOperandText by
		// internal/processor's caParser rather than parsed into Operands
		// here; see the doc comment of ConditionalAssembly in
		// internal/processor/condasm.go for why.
		s.Kind = stmt.StatementResolved

	case isDataDefinitionInstruction(s.Instruction):
		s.Operands, diags = parseDataDefOperands(pool, fs.operand, lineNo, fs.operandCol, s.Location)
		s.Kind = kindFromDiags(diags)

	default:
		s.Operands, diags = parseOperands(pool, fs.operand, lineNo, fs.operandCol, s.Location)
		s.Kind = kindFromDiags(diags)
	}

	s.Diagnostics = diags

	return s, diags
}

func kindFromDiags(diags []diag.Diagnostic) stmt.StatementKind {
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			return stmt.StatementError
		}
	}

	return stmt.StatementResolved
}
