// Package value defines the symbol-value and address representation shared
// by the ordinary-assembly context and the expression/dependency layers,
// factored out on its own so those layers can refer to values without
// depending on each other (internal/ctx owns sections and symbols;
// internal/stmt owns expression trees that evaluate to a Value).
package value

import "github.com/hlasm-tools/hlasmcore/internal/ids"

// Kind discriminates the sum type a Value holds, per spec §3 "Symbol":
// value ∈ {undefined, absolute(i32), relocatable(address), multi}.
type Kind int

const (
	KindUndefined Kind = iota
	KindAbsolute
	KindRelocatable
	KindMulti
)

// Address is (section, offset, space-chain): a location-counter-relative
// address that may still have unresolved space gaps ahead of it.
type Address struct {
	Section ids.Id
	Loctr   ids.Id // the named location counter within Section, Empty for the default
	Offset  int64
	// Spaces lists the ids of any unresolved Space gaps between the
	// section/loctr's origin and this address, in order.
	Spaces []SpaceId
}

// SpaceId identifies a Space within a location counter's chain.
type SpaceId int64

// Value is a symbol's value: undefined, a plain absolute integer, a
// relocatable address, or "multi" (defined more than once with differing
// values across a conditional-assembly replay — kept distinct from
// undefined so dependents can tell "never defined" from "ambiguous").
type Value struct {
	Kind     Kind
	Absolute int32
	Address  Address
}

// Undefined is the zero Value.
var Undefined = Value{Kind: KindUndefined}

// AbsoluteValue builds a Value of kind absolute.
func AbsoluteValue(v int32) Value {
	return Value{Kind: KindAbsolute, Absolute: v}
}

// RelocatableValue builds a Value of kind relocatable.
func RelocatableValue(addr Address) Value {
	return Value{Kind: KindRelocatable, Address: addr}
}

// IsDefined reports whether the value has left the undefined state. Per
// spec §3's symbol invariant, once true this never reverts to false.
func (v Value) IsDefined() bool {
	return v.Kind != KindUndefined
}

// Resolved reports whether the value is fully resolved: defined and, if
// relocatable, free of pending space gaps.
func (v Value) Resolved() bool {
	if !v.IsDefined() {
		return false
	}

	if v.Kind == KindRelocatable {
		return len(v.Address.Spaces) == 0
	}

	return true
}
