// Package lexspan defines zero-based, UTF-16 code-unit positions and
// half-open ranges within a single logical source line, matching the LSP
// wire representation the teacher's protocol.Position/protocol.Range used.
package lexspan

import "unicode/utf16"

// Position is a zero-based line/character pair. Character counts UTF-16
// code units, as LSP requires.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is a half-open [Start, End) span. End is exclusive.
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether pos falls within r, treating End as exclusive on
// the same line and inclusive of every line strictly between Start and End.
func (r Range) Contains(pos Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}

	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}

	if pos.Line == r.End.Line && pos.Character >= r.End.Character {
		return false
	}

	return true
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// SingleLine builds a Range covering [col, col+len(text)) on the given line.
func SingleLine(line, col uint32, text string) Range {
	return Range{
		Start: Position{Line: line, Character: col},
		End:   Position{Line: line, Character: col + uint32(UTF16Len(text))},
	}
}
