package symbols

import (
	"testing"

	"mica/internal/diag"
	"mica/internal/source"
	"mica/internal/types"
)

func newTestTable(reporter diag.Reporter) *Table {
	return NewTable(Hints{}, nil, reporter)
}

func TestDefineAndLookup(t *testing.T) {
	table := newTestTable(nil)
	name := table.Strings.Intern("value")

	id, ok := table.Define(Symbol{Name: name, Kind: SymbolVariable})
	if !ok || !id.IsValid() {
		t.Fatalf("Define failed")
	}
	got, ok := table.Lookup(name)
	if !ok || got != id {
		t.Fatalf("Lookup = %v, %v; want %v", got, ok, id)
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestRedeclarationSameScope(t *testing.T) {
	bag := diag.NewBag(4)
	table := newTestTable(diag.BagReporter{Bag: bag})
	name := table.Strings.Intern("x")

	if _, ok := table.Define(Symbol{Name: name, Kind: SymbolVariable}); !ok {
		t.Fatalf("first Define failed")
	}
	if _, ok := table.Define(Symbol{Name: name, Kind: SymbolVariable}); ok {
		t.Fatalf("second Define in the same scope must fail")
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.NamRedeclaration {
		t.Fatalf("expected one NamRedeclaration, got %v", bag.Items())
	}
}

func TestShadowingAcrossScopes(t *testing.T) {
	table := newTestTable(nil)
	name := table.Strings.Intern("x")

	outer, _ := table.Define(Symbol{Name: name, Kind: SymbolVariable})
	table.EnterScope(ScopeBlock, source.Span{})
	inner, ok := table.Define(Symbol{Name: name, Kind: SymbolVariable, Flags: SymbolFlagMutable})
	if !ok {
		t.Fatalf("shadowing in a nested scope must succeed")
	}
	if got, _ := table.Lookup(name); got != inner {
		t.Fatalf("inner scope must see the shadowing symbol")
	}

	table.ExitScope()
	if got, _ := table.Lookup(name); got != outer {
		t.Fatalf("after ExitScope the outer symbol must be visible again")
	}
}

func TestScopingDiscipline(t *testing.T) {
	table := newTestTable(nil)
	name := table.Strings.Intern("local")

	table.EnterScope(ScopeFunction, source.Span{})
	table.Define(Symbol{Name: name, Kind: SymbolVariable})
	table.ExitScope()

	if _, ok := table.Lookup(name); ok {
		t.Fatalf("symbol defined in an exited scope must not be visible")
	}
	// The global scope can never be popped.
	table.ExitScope()
	table.ExitScope()
	if table.Depth() != 1 {
		t.Fatalf("Depth = %d, want 1", table.Depth())
	}
}

func TestIsType(t *testing.T) {
	table := newTestTable(nil)
	interner := types.NewInterner()
	InstallPrelude(table, interner)

	if !table.IsType(table.Strings.Intern("int")) {
		t.Fatalf("prelude alias 'int' must be a type")
	}
	if table.IsType(table.Strings.Intern("print")) {
		t.Fatalf("builtin function must not be a type")
	}

	point := table.Strings.Intern("Point")
	table.Define(Symbol{Name: point, Kind: SymbolStruct})
	if !table.IsType(point) {
		t.Fatalf("struct symbol must be a type")
	}
}
