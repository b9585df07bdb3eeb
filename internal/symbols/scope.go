package symbols

import "mica/internal/source"

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeGlobal             // the always-present root with the prelude
	ScopeFunction           // function body scope
	ScopeBlock              // generic block scope
	ScopeLoop               // loop body scope
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeLoop:
		return "loop"
	default:
		return "invalid"
	}
}

// Scope is one arena slot: a lexical scope referencing its parent by index.
// Entering a scope pushes a fresh slot, exiting pops the current index; no
// pointer chains are kept, which keeps speculative clones cheap.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Span      source.Span
	NameIndex map[source.StringID]SymbolID
	Symbols   []SymbolID
}
