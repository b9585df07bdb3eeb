package types

import (
	"fmt"

	"mica/internal/source"
)

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindInt
	KindFloat
	KindString
	// KindUnknown unifies with anything; the gradual-typing escape hatch.
	KindUnknown
	// KindVar is a free inference variable, bound at most once.
	KindVar
	KindFn
	KindRef
	KindStruct
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindUnknown:
		return "unknown"
	case KindVar:
		return "var"
	case KindFn:
		return "fn"
	case KindRef:
		return "ref"
	case KindStruct:
		return "struct"
	case KindGeneric:
		return "generic"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type.
// Elem/Mutable/Lifetime are meaningful for references, Name for vars and
// nominals, Payload indexes the per-kind side tables (fn signatures, nominal
// metadata) or carries the variable's serial number.
type Type struct {
	Kind     Kind
	Elem     TypeID
	Mutable  bool
	Lifetime source.StringID
	Name     source.StringID
	Payload  uint32
}

// MakeRef describes a reference to elem; mutable selects &mut over &.
// The lifetime is carried for diagnostics only, it does not participate in
// structural identity checks during unification.
func MakeRef(elem TypeID, mutable bool, lifetime source.StringID) Type {
	return Type{Kind: KindRef, Elem: elem, Mutable: mutable, Lifetime: lifetime}
}
