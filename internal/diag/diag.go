// Package diag implements the diagnostic taxonomy of spec §7: every
// anomaly the analyzer detects becomes a diagnostic, never a Go error.
// Diagnostics carry a four-character code, a severity, a range, the
// resource location they apply to, and a message.
//
// Grounded on the teacher's internal/analysis/parse.go
// (convertStructuredError / mapSeverity): a small internal representation
// converted to the LSP wire type (protocol.Diagnostic) only at the edge.
package diag

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
)

// Severity is the analyzer's own severity enum, independent of the LSP
// wire representation.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

// Code is a four-character diagnostic tag, e.g. "E031" or "MNOTE".
type Code string

// The syntax codes (§7 "Syntax (A0xx, A1xx)").
const (
	CodeA001 Code = "A001" // malformed operand syntax (unbalanced parens or quotes)
	CodeA011 Code = "A011" // wrong arity
	CodeA012 Code = "A012" // arity out of range
	CodeA115 Code = "A115" // ORG form
	CodeA117 Code = "A117" // MNOTE message too long
	CodeA118 Code = "A118" // MNOTE level outside 0-255
	CodeA119 Code = "A119" // MNOTE first operand
	CodeA129 Code = "A129" // EXTRN form
	CodeA148 Code = "A148" // SPACE value
	CodeA245 Code = "A245" // ORG expression
)

// The semantic codes (§7 "Semantic (E0xx)").
const (
	CodeE031 Code = "E031" // duplicate symbol
	CodeE032 Code = "E032" // unexpected absolute END operand
	CodeE033 Code = "E033" // dependency cycle
	CodeE049 Code = "E049" // OPSYN of undefined mnemonic
	CodeE053 Code = "E053" // missing required label
	CodeE058 Code = "E058" // unknown COPY member
	CodeE062 Code = "E062" // recursive COPY
	CodeE065 Code = "E065" // invalid created name
	CodeE068 Code = "E068" // ORG underflow
	CodeE073 Code = "E073" // START after executable section exists
	CodeE040 Code = "E040" // AGO/AIF target sequence symbol not found in scope
	CodeE041 Code = "E041" // ACTR budget exhausted
	CodeE042 Code = "E042" // duplicate sequence symbol
	CodeE043 Code = "E043" // malformed conditional-assembly expression
)

// The warning codes (§7 "Warning (W0xx, A249, A251)").
const (
	CodeW016 Code = "W016" // duplicate TITLE
	CodeA249 Code = "A249" // non-sequence label where sequence expected
	CodeA251 Code = "A251" // unexpected label on DROP
)

// CodeMNOTE is the single code used for all MNOTE diagnostics; severity is
// derived from the MNOTE level via LevelToSeverity.
const CodeMNOTE Code = "MNOTE"

// Diagnostic is the analyzer's internal representation of one anomaly.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Range    lexspan.Range
	Location reslocation.Location
	Message  string
}

// LevelToSeverity maps an MNOTE level (0-255, per §7's table) to the
// severity the MNOTE diagnostic is reported at: <=1 hint, 2-3 info, 4-7
// warning, >=8 error.
func LevelToSeverity(level int) Severity {
	switch {
	case level <= 1:
		return SeverityHint
	case level <= 3:
		return SeverityInfo
	case level <= 7:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// ToProtocol converts d to the LSP wire representation.
func (d Diagnostic) ToProtocol() protocol.Diagnostic {
	severity := toProtocolSeverity(d.Severity)
	code := protocol.IntegerOrString{Value: string(d.Code)}

	return protocol.Diagnostic{
		Range:    toProtocolRange(d.Range),
		Severity: &severity,
		Code:     &code,
		Source:   stringPtr("hlasmcore"),
		Message:  d.Message,
	}
}

func toProtocolSeverity(s Severity) protocol.DiagnosticSeverity {
	switch s {
	case SeverityError:
		return protocol.DiagnosticSeverityError
	case SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	case SeverityHint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

func toProtocolRange(r lexspan.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   protocol.Position{Line: r.End.Line, Character: r.End.Character},
	}
}

func stringPtr(s string) *string { return &s }
