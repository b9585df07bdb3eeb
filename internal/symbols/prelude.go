package symbols

import "mica/internal/types"

// InstallPrelude seeds the global scope with primitive type aliases and the
// built-in function signatures. Call once right after NewTable.
func InstallPrelude(t *Table, interner *types.Interner) {
	b := interner.Builtins()

	alias := func(name string, target types.TypeID) {
		t.Define(Symbol{
			Name:  t.Strings.Intern(name),
			Kind:  SymbolTypeAlias,
			Flags: SymbolFlagBuiltin,
			Type:  target,
		})
	}
	alias("int", b.Int)
	alias("float", b.Float)
	alias("bool", b.Bool)
	alias("string", b.String)
	alias("unit", b.Unit)

	fn := func(name string, params []types.TypeID, result types.TypeID) {
		t.Define(Symbol{
			Name:  t.Strings.Intern(name),
			Kind:  SymbolFunction,
			Flags: SymbolFlagBuiltin,
			Type:  interner.RegisterFn(params, result),
		})
	}
	fn("print", []types.TypeID{b.String}, b.Unit)
	fn("println", []types.TypeID{b.String}, b.Unit)
	fn("len", []types.TypeID{b.String}, b.Int)
	fn("int_to_string", []types.TypeID{b.Int}, b.String)
	fn("float_to_string", []types.TypeID{b.Float}, b.String)
	fn("panic", []types.TypeID{b.String}, b.Unit)
}
