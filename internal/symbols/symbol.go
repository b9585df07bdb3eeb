package symbols

import (
	"mica/internal/source"
	"mica/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolVariable
	SymbolFunction
	SymbolStruct
	SymbolEnum
	SymbolTypeAlias
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolFunction:
		return "function"
	case SymbolStruct:
		return "struct"
	case SymbolEnum:
		return "enum"
	case SymbolTypeAlias:
		return "type alias"
	default:
		return "invalid"
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint8

const (
	SymbolFlagMutable SymbolFlags = 1 << iota
	SymbolFlagBuiltin
)

// Symbol is one named entity. Type carries the variable's type, the
// function's signature type, the struct/generic type, or the alias target
// depending on Kind. Variants is populated for enums only.
type Symbol struct {
	Name     source.StringID
	Kind     SymbolKind
	Scope    ScopeID
	Span     source.Span
	Flags    SymbolFlags
	Type     types.TypeID
	Variants []source.StringID
}

// Mutable reports whether the symbol is a mutable binding.
func (s *Symbol) Mutable() bool {
	return s != nil && s.Flags&SymbolFlagMutable != 0
}

// IsType reports whether the symbol names a type: alias, struct or enum.
func (s *Symbol) IsType() bool {
	if s == nil {
		return false
	}
	switch s.Kind {
	case SymbolTypeAlias, SymbolStruct, SymbolEnum:
		return true
	}
	return false
}
