package types

import (
	"fmt"

	"fortio.org/safecast"

	"mica/internal/source"
)

// Builtins stores TypeIDs for the primitive types every unit needs.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	Int     TypeID
	Float   TypeID
	String  TypeID
	Unknown TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Inference variables are the exception: every NewVar call mints a distinct
// TypeID even for the same display name, because each variable binds
// independently.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	fns      []FnInfo
	nominals []NominalInfo
	varCount uint32
}

// NewInterner constructs an interner seeded with the built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	in.fns = append(in.fns, FnInfo{}) // slot 0 reserved as invalid
	in.nominals = append(in.nominals, NominalInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Unknown = in.Intern(Type{Kind: KindUnknown})
	return in
}

// Builtins returns TypeIDs for the primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// NewVar mints a fresh inference variable. The name is only for rendering;
// uniqueness comes from the serial number.
func (in *Interner) NewVar(name source.StringID) TypeID {
	in.varCount++
	return in.internRaw(Type{Kind: KindVar, Name: name, Payload: in.varCount})
}

// VarCount reports how many inference variables were minted.
func (in *Interner) VarCount() uint32 {
	return in.varCount
}

// internRaw adds the descriptor to storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("type interner overflow: %w", err))
	}
	id := TypeID(lenTypes + 1)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) > len(in.types) {
		return Type{}, false
	}
	return in.types[id-1], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len reports how many types are interned.
func (in *Interner) Len() int {
	return len(in.types)
}

type typeKey struct {
	Kind     Kind
	Elem     TypeID
	Mutable  bool
	Lifetime source.StringID
	Name     source.StringID
	Payload  uint32
}
