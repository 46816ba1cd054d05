package ctx

import (
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/value"
)

// Attributes are the per-symbol EBCDIC-type/length/scale/integer/origin
// attributes of spec §3 "Symbol".
type Attributes struct {
	Type    byte // single EBCDIC-coded type letter, 'U' (unknown) until set
	Length  uint16
	Scale   int16
	Integer int16
	Origin  value.Value
	// SelfReferring marks an attribute set via the §4.7/§9 self-reference
	// rule (pre-set to 1, to be resubstituted once the cycle is broken).
	SelfReferring bool
}

// DefaultAttributes is the attribute set a symbol has before anything
// assigns it one explicitly.
var DefaultAttributes = Attributes{Type: 'U', Length: 0}

// Symbol is spec §3's (id, value, attributes, definition-location) tuple.
type Symbol struct {
	Id         ids.Id
	Value      value.Value
	Attributes Attributes

	DefinitionLocation reslocation.Location
	DefinitionRange    lexspan.Range

	// ProcessingStackSnapshot records the nested macro/copy frames active
	// at first definition (spec §4.1 invariant), so a diagnostic raised
	// from a later use site can still report the expansion chain that
	// produced the definition.
	ProcessingStackSnapshot []Frame
}
