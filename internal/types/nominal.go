package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"mica/internal/source"
)

// StructField describes a single declared field of a struct type.
type StructField struct {
	Name source.StringID
	Type TypeID
	Size uint32 // layout size estimate in bytes, 0 when unknown
}

// NominalInfo stores metadata shared by struct and generic types: the
// declared name plus instantiation arguments. Structs additionally carry
// their resolved field list.
type NominalInfo struct {
	Name   source.StringID
	Decl   source.Span
	Args   []TypeID
	Fields []StructField
}

// RegisterStruct creates or finds a struct type for name and type args.
func (in *Interner) RegisterStruct(name source.StringID, decl source.Span, args []TypeID) TypeID {
	if id, ok := in.findNominal(KindStruct, name, args); ok {
		return id
	}
	slot := in.appendNominal(NominalInfo{Name: name, Decl: decl, Args: slices.Clone(args)})
	return in.internRaw(Type{Kind: KindStruct, Name: name, Payload: slot})
}

// RegisterGeneric creates or finds a generic type such as Vec[int].
func (in *Interner) RegisterGeneric(name source.StringID, decl source.Span, args []TypeID) TypeID {
	if id, ok := in.findNominal(KindGeneric, name, args); ok {
		return id
	}
	slot := in.appendNominal(NominalInfo{Name: name, Decl: decl, Args: slices.Clone(args)})
	return in.internRaw(Type{Kind: KindGeneric, Name: name, Payload: slot})
}

// SetStructFields stores the resolved field descriptors for a struct type.
func (in *Interner) SetStructFields(id TypeID, fields []StructField) {
	info := in.nominalInfo(id)
	if info == nil {
		return
	}
	info.Fields = slices.Clone(fields)
}

// NominalInfo returns metadata for a struct or generic TypeID.
func (in *Interner) NominalInfo(id TypeID) (*NominalInfo, bool) {
	info := in.nominalInfo(id)
	if info == nil {
		return nil, false
	}
	return info, true
}

// FieldByName finds a declared struct field, or nil.
func (in *Interner) FieldByName(id TypeID, name source.StringID) *StructField {
	info := in.nominalInfo(id)
	if info == nil {
		return nil
	}
	for i := range info.Fields {
		if info.Fields[i].Name == name {
			return &info.Fields[i]
		}
	}
	return nil
}

func (in *Interner) findNominal(kind Kind, name source.StringID, args []TypeID) (TypeID, bool) {
	for id := TypeID(1); int(id) <= len(in.types); id++ {
		tt := in.types[id-1]
		if tt.Kind != kind || tt.Name != name {
			continue
		}
		info := in.nominals[tt.Payload]
		if slices.Equal(info.Args, args) {
			return id, true
		}
	}
	return NoTypeID, false
}

func (in *Interner) nominalInfo(id TypeID) *NominalInfo {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindStruct && tt.Kind != KindGeneric) {
		return nil
	}
	if int(tt.Payload) >= len(in.nominals) {
		return nil
	}
	return &in.nominals[tt.Payload]
}

func (in *Interner) appendNominal(info NominalInfo) uint32 {
	in.nominals = append(in.nominals, info)
	slot, err := safecast.Conv[uint32](len(in.nominals) - 1)
	if err != nil {
		panic(fmt.Errorf("nominal info overflow: %w", err))
	}
	return slot
}
