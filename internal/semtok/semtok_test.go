package semtok

import (
	"testing"

	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
)

func TestCollectorSortsAndEncodes(t *testing.T) {
	legend := NewLegend()
	c := NewCollector(legend, nil)

	c.Add(lexspan.SingleLine(1, 10, "R1"), TypeOperand, 0)
	c.Add(lexspan.SingleLine(0, 0, "LABEL"), TypeLabel, legend.ModifierMask(ModifierDeclaration))
	c.Add(lexspan.SingleLine(0, 6, "MVC"), TypeInstruction, 0)

	tokens := c.Finish()
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}

	if tokens[0].Line != 0 || tokens[0].StartChar != 0 {
		t.Errorf("expected first token at (0,0), got (%d,%d)", tokens[0].Line, tokens[0].StartChar)
	}

	if tokens[2].Line != 1 {
		t.Errorf("expected last token on line 1, got %d", tokens[2].Line)
	}

	encoded := Encode(tokens)
	if len(encoded) != 15 || encoded[6] != 6 || encoded[10] != 1 || encoded[11] != 10 {
		t.Errorf("unexpected delta encoding %v", encoded)
	}
}

func TestEncodeDeltaFormat(t *testing.T) {
	tokens := []Token{
		{Line: 0, StartChar: 0, Length: 5, TokenType: 0, Modifiers: 1},
		{Line: 0, StartChar: 6, Length: 3, TokenType: 1, Modifiers: 0},
		{Line: 2, StartChar: 1, Length: 2, TokenType: 2, Modifiers: 0},
	}

	encoded := Encode(tokens)
	want := []uint32{
		0, 0, 5, 0, 1,
		0, 6, 3, 1, 0,
		2, 1, 2, 2, 0,
	}

	if len(encoded) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(encoded))
	}

	for i := range want {
		if encoded[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, encoded[i], want[i])
		}
	}
}

func TestUnknownTokenTypeDropped(t *testing.T) {
	legend := NewLegend()
	c := NewCollector(legend, nil)

	c.Add(lexspan.SingleLine(0, 0, "X"), "bogus", 0)

	if tokens := c.Finish(); len(tokens) != 0 {
		t.Errorf("expected unknown token type to be dropped, got %d tokens", len(tokens))
	}
}
