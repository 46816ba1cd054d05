// Package semtok collects semantic tokens for editor highlighting, one of
// the three analyzer outputs spec §6 contracts.
//
// Grounded on the teacher's internal/server/semantic_tokens.go (the
// Legend/Token shapes and the delta-encoding loop) retargeted from
// DWScript's token set to the HLASM token kinds spec §6 lists: label,
// instruction, operand, string, macro-param, variable-symbol,
// sequence-symbol, comment, continuation.
package semtok

import protocol "github.com/tliron/glsp/protocol_3_16"

// Token is a raw semantic token: a zero-based position, a length in UTF-16
// code units, and indices into a Legend.
type Token struct {
	Line      uint32
	StartChar uint32
	Length    uint32
	TokenType uint32
	Modifiers uint32
}

// Legend defines the ordered token type and modifier vocabularies. It must
// stay consistent across every request for a given analyzer build.
type Legend struct {
	TokenTypes     []string
	TokenModifiers []string
}

// Token type names.
const (
	TypeLabel          = "label"
	TypeInstruction    = "instruction"
	TypeOperand        = "operand"
	TypeString         = "string"
	TypeNumber         = "number"
	TypeMacroParam     = "macroParam"
	TypeVariableSymbol = "variableSymbol"
	TypeSequenceSymbol = "sequenceSymbol"
	TypeComment        = "comment"
	TypeContinuation   = "continuation"
)

// Modifier names.
const (
	ModifierDeclaration = "declaration"
	ModifierReadonly    = "readonly"
	ModifierDeprecated  = "deprecated"
)

// NewLegend creates the standard HLASM semantic tokens legend.
func NewLegend() *Legend {
	return &Legend{
		TokenTypes: []string{
			TypeLabel,
			TypeInstruction,
			TypeOperand,
			TypeString,
			TypeNumber,
			TypeMacroParam,
			TypeVariableSymbol,
			TypeSequenceSymbol,
			TypeComment,
			TypeContinuation,
		},
		TokenModifiers: []string{
			ModifierDeclaration,
			ModifierReadonly,
			ModifierDeprecated,
		},
	}
}

// ToProtocolLegend converts the legend to the LSP protocol format.
func (l *Legend) ToProtocolLegend() protocol.SemanticTokensLegend {
	return protocol.SemanticTokensLegend{
		TokenTypes:     l.TokenTypes,
		TokenModifiers: l.TokenModifiers,
	}
}

// TypeIndex returns the index of a token type name, or -1 if unknown.
func (l *Legend) TypeIndex(name string) int {
	for i, t := range l.TokenTypes {
		if t == name {
			return i
		}
	}

	return -1
}

// ModifierMask returns the OR of the bit for every named modifier.
func (l *Legend) ModifierMask(names ...string) uint32 {
	var mask uint32

	for _, name := range names {
		for i, m := range l.TokenModifiers {
			if m == name {
				mask |= 1 << uint32(i)
				break
			}
		}
	}

	return mask
}

// Encode converts tokens (already sorted by position) into the LSP delta
// encoding: [deltaLine, deltaStartChar, length, tokenType, tokenModifiers]
// repeated per token.
func Encode(tokens []Token) []uint32 {
	if len(tokens) == 0 {
		return []uint32{}
	}

	encoded := make([]uint32, 0, len(tokens)*5)

	var prevLine, prevChar uint32

	for _, tok := range tokens {
		deltaLine := tok.Line - prevLine

		deltaChar := tok.StartChar
		if deltaLine == 0 {
			deltaChar = tok.StartChar - prevChar
		}

		encoded = append(encoded, deltaLine, deltaChar, tok.Length, tok.TokenType, tok.Modifiers)

		prevLine = tok.Line
		prevChar = tok.StartChar
	}

	return encoded
}
