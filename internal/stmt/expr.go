package stmt

import (
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/value"
)

// ExprKind discriminates the closed set of expression shapes HLASM
// operand arithmetic can build.
type ExprKind int

const (
	ExprNumber ExprKind = iota
	ExprSymbol
	ExprCurrentLoc // the "*" location-counter reference
	ExprString
	ExprBinary
	ExprUnary
	ExprAttr  // T'sym, L'sym, S'sym, I'sym
	ExprParen // a parenthesized sub-expression, kept for range purposes
)

// Operator is a binary or unary arithmetic operator.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpNeg // unary minus
)

// AttrKind is the attribute letter in a T'/L'/S'/I' reference.
type AttrKind int

const (
	AttrType AttrKind = iota
	AttrLength
	AttrScale
	AttrInteger
	AttrCount // K' — character count of a string
	AttrNumber // N' — number of sublist entries
)

// Expr is a closed-variant expression tree node. Only the fields relevant
// to Kind are populated; Eval switches on Kind rather than relying on
// dynamic dispatch.
type Expr struct {
	Kind   ExprKind
	Range  lexspan.Range
	Number int64
	Symbol ids.Id
	Str    string
	Op     Operator
	Attr   AttrKind
	Left   *Expr
	Right  *Expr
}

// Resolver is the minimal surface an expression evaluator needs from the
// context: symbol values and attributes, and the current address (for
// "*"). internal/ctx.Ctx satisfies this structurally without importing
// this package, keeping ctx -> stmt a one-way dependency.
type Resolver interface {
	SymbolValue(id ids.Id) (value.Value, bool)
	SymbolAttr(id ids.Id, attr AttrKind) (int32, bool)
	CurrentAddress() value.Address
}

// Eval evaluates e against r. ok is false when evaluation could not
// complete; deps lists the symbol ids a retry would need resolved.
func Eval(e *Expr, r Resolver) (v value.Value, deps []ids.Id, ok bool) {
	if e == nil {
		return value.Undefined, nil, false
	}

	switch e.Kind {
	case ExprNumber:
		return value.AbsoluteValue(int32(e.Number)), nil, true

	case ExprSymbol:
		sv, found := r.SymbolValue(e.Symbol)
		if !found || !sv.IsDefined() {
			return value.Undefined, []ids.Id{e.Symbol}, false
		}

		return sv, nil, true

	case ExprCurrentLoc:
		return value.RelocatableValue(r.CurrentAddress()), nil, true

	case ExprString:
		return value.Undefined, nil, false

	case ExprAttr:
		attr, found := r.SymbolAttr(e.Symbol, e.Attr)
		if !found {
			return value.Undefined, []ids.Id{e.Symbol}, false
		}

		return value.AbsoluteValue(attr), nil, true

	case ExprParen:
		return Eval(e.Left, r)

	case ExprUnary:
		lv, ldeps, lok := Eval(e.Left, r)
		if !lok {
			return value.Undefined, ldeps, false
		}

		if e.Op == OpNeg && lv.Kind == value.KindAbsolute {
			return value.AbsoluteValue(-lv.Absolute), nil, true
		}

		return value.Undefined, nil, false

	case ExprBinary:
		return evalBinary(e, r)
	}

	return value.Undefined, nil, false
}

func evalBinary(e *Expr, r Resolver) (value.Value, []ids.Id, bool) {
	lv, ldeps, lok := Eval(e.Left, r)
	rv, rdeps, rok := Eval(e.Right, r)

	if !lok || !rok {
		return value.Undefined, append(ldeps, rdeps...), false
	}

	// Relocatable arithmetic: address +/- absolute stays relocatable;
	// address - address (same section) collapses to absolute.
	switch {
	case lv.Kind == value.KindAbsolute && rv.Kind == value.KindAbsolute:
		return evalAbsoluteBinary(e.Op, lv.Absolute, rv.Absolute)

	case lv.Kind == value.KindRelocatable && rv.Kind == value.KindAbsolute && e.Op == OpAdd:
		addr := lv.Address
		addr.Offset += int64(rv.Absolute)

		return value.RelocatableValue(addr), nil, true

	case lv.Kind == value.KindRelocatable && rv.Kind == value.KindAbsolute && e.Op == OpSub:
		addr := lv.Address
		addr.Offset -= int64(rv.Absolute)

		return value.RelocatableValue(addr), nil, true

	case lv.Kind == value.KindRelocatable && rv.Kind == value.KindRelocatable && e.Op == OpSub && lv.Address.Section == rv.Address.Section:
		return value.AbsoluteValue(int32(lv.Address.Offset - rv.Address.Offset)), nil, true
	}

	return value.Undefined, nil, false
}

func evalAbsoluteBinary(op Operator, l, r int32) (value.Value, []ids.Id, bool) {
	switch op {
	case OpAdd:
		return value.AbsoluteValue(l + r), nil, true
	case OpSub:
		return value.AbsoluteValue(l - r), nil, true
	case OpMul:
		return value.AbsoluteValue(l * r), nil, true
	case OpDiv:
		if r == 0 {
			return value.Undefined, nil, false
		}

		return value.AbsoluteValue(l / r), nil, true
	}

	return value.Undefined, nil, false
}

// LeftmostSymbol returns the first symbol reference encountered in a
// left-to-right walk of e, used by EQU's length-attribute-inheritance rule
// (spec §4.6: "if the value expression's leftmost term is a defined
// symbol, inherit its length").
func LeftmostSymbol(e *Expr) (ids.Id, bool) {
	if e == nil {
		return ids.Empty, false
	}

	switch e.Kind {
	case ExprSymbol:
		return e.Symbol, true
	case ExprParen:
		return LeftmostSymbol(e.Left)
	case ExprUnary:
		return LeftmostSymbol(e.Left)
	case ExprBinary:
		return LeftmostSymbol(e.Left)
	}

	return ids.Empty, false
}

// Symbols returns every distinct symbol id referenced anywhere in e, used
// to seed a postponed statement's dependency edges.
func Symbols(e *Expr) []ids.Id {
	if e == nil {
		return nil
	}

	switch e.Kind {
	case ExprSymbol, ExprAttr:
		return []ids.Id{e.Symbol}
	case ExprParen, ExprUnary:
		return Symbols(e.Left)
	case ExprBinary:
		return append(Symbols(e.Left), Symbols(e.Right)...)
	}

	return nil
}
