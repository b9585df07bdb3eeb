package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"mica/internal/diag"
	"mica/internal/source"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table is the scoped symbol table. The global scope is always present and
// seeded with the prelude; EnterScope/ExitScope maintain a stack of arena
// indices so lookup can walk innermost to outermost by following parent
// links.
type Table struct {
	Scopes   *Scopes
	Symbols  *Symbols
	Strings  *source.Interner
	reporter diag.Reporter
	stack    []ScopeID
}

// NewTable builds a table with the global scope in place. If strings is nil a
// fresh interner is allocated. The reporter receives redeclaration errors.
func NewTable(h Hints, strings *source.Interner, reporter diag.Reporter) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	t := &Table{
		Scopes:   NewScopes(scopeCap),
		Symbols:  NewSymbols(symCap),
		Strings:  strings,
		reporter: reporter,
		stack:    make([]ScopeID, 0, 8),
	}
	global := t.Scopes.New(ScopeGlobal, NoScopeID, source.Span{})
	t.stack = append(t.stack, global)
	return t
}

// GlobalScope returns the root scope ID.
func (t *Table) GlobalScope() ScopeID {
	if t.Scopes.Len() == 0 {
		return NoScopeID
	}
	return ScopeID(1)
}

// CurrentScope returns the scope at the top of the stack.
func (t *Table) CurrentScope() ScopeID {
	if len(t.stack) == 0 {
		return NoScopeID
	}
	return t.stack[len(t.stack)-1]
}

// Depth reports how many scopes are on the stack, the global one included.
func (t *Table) Depth() int {
	return len(t.stack)
}

// EnterScope pushes a fresh child of the current scope.
func (t *Table) EnterScope(kind ScopeKind, span source.Span) ScopeID {
	id := t.Scopes.New(kind, t.CurrentScope(), span)
	t.stack = append(t.stack, id)
	return id
}

// ExitScope pops the current scope. The global scope is never popped.
func (t *Table) ExitScope() {
	if len(t.stack) <= 1 {
		return
	}
	t.stack = t.stack[:len(t.stack)-1]
}

// Define installs a symbol into the current scope. A name may not be
// redeclared within the same scope; shadowing an outer scope is legal.
func (t *Table) Define(sym Symbol) (SymbolID, bool) {
	scopeID := t.CurrentScope()
	scope := t.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID, false
	}
	if prev, ok := scope.NameIndex[sym.Name]; ok {
		t.reportRedeclaration(sym, prev)
		return NoSymbolID, false
	}
	sym.Scope = scopeID
	id := t.Symbols.New(sym)
	scope.Symbols = append(scope.Symbols, id)
	scope.NameIndex[sym.Name] = id
	return id, true
}

// Lookup walks the scope chain innermost to outermost and returns the first
// symbol with the given name.
func (t *Table) Lookup(name source.StringID) (SymbolID, bool) {
	scopeID := t.CurrentScope()
	for scopeID.IsValid() {
		scope := t.Scopes.Get(scopeID)
		if scope == nil {
			break
		}
		if id, ok := scope.NameIndex[name]; ok {
			return id, true
		}
		scopeID = scope.Parent
	}
	return NoSymbolID, false
}

// LookupName is Lookup over a raw string, interning it on the way in.
func (t *Table) LookupName(name string) (SymbolID, bool) {
	return t.Lookup(t.Strings.Intern(name))
}

// Get resolves a SymbolID into its record.
func (t *Table) Get(id SymbolID) *Symbol {
	return t.Symbols.Get(id)
}

// IsType reports whether name resolves to a type: alias, struct or enum.
func (t *Table) IsType(name source.StringID) bool {
	id, ok := t.Lookup(name)
	if !ok {
		return false
	}
	return t.Symbols.Get(id).IsType()
}

func (t *Table) reportRedeclaration(sym Symbol, prev SymbolID) {
	if t.reporter == nil {
		return
	}
	name := t.Strings.MustLookup(sym.Name)
	b := diag.ReportError(t.reporter, diag.NamRedeclaration, sym.Span,
		fmt.Sprintf("'%s' is already declared in this scope", name))
	if prevSym := t.Symbols.Get(prev); prevSym != nil && !prevSym.Span.Empty() {
		b.WithNote(prevSym.Span, "previous declaration here")
	}
	b.Emit()
}

// Validate checks arena invariants: every scope's parent precedes it and all
// indexed symbols exist. Used by tests.
func (t *Table) Validate() error {
	for id := ScopeID(1); int(id) <= t.Scopes.Len(); id++ {
		scope := t.Scopes.Get(id)
		if scope.Parent.IsValid() && scope.Parent >= id {
			return fmt.Errorf("scope %d has forward parent %d", id, scope.Parent)
		}
		for _, symID := range scope.Symbols {
			if t.Symbols.Get(symID) == nil {
				return fmt.Errorf("scope %d references missing symbol %d", id, symID)
			}
		}
	}
	return nil
}
