package sema

import (
	"fmt"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/symbols"
	"mica/internal/types"
)

// resolveTypeExpr lowers a syntactic annotation into the canonical type
// algebra. Unresolvable names produce a diagnostic and NoTypeID.
func (inf *Inferencer) resolveTypeExpr(te ast.TypeExpr) types.TypeID {
	switch t := te.(type) {
	case *ast.UnitType:
		return inf.interner.Builtins().Unit

	case *ast.RefType:
		elem := inf.resolveTypeExpr(t.Elem)
		if elem == types.NoTypeID {
			return types.NoTypeID
		}
		life := inf.table.Strings.Intern(t.Lifetime)
		if t.Lifetime == "" {
			life = 0
		}
		return inf.interner.Intern(types.MakeRef(elem, t.Mutable, life))

	case *ast.FnType:
		params := make([]types.TypeID, 0, len(t.Params))
		for _, p := range t.Params {
			id := inf.resolveTypeExpr(p)
			if id == types.NoTypeID {
				return types.NoTypeID
			}
			params = append(params, id)
		}
		result := inf.interner.Builtins().Unit
		if t.Result != nil {
			result = inf.resolveTypeExpr(t.Result)
			if result == types.NoTypeID {
				return types.NoTypeID
			}
		}
		return inf.interner.RegisterFn(params, result)

	case *ast.NamedType:
		return inf.resolveNamedType(t)
	}

	diag.ReportError(inf.reporter, diag.TypInvalidType, te.Span(), "unsupported type annotation").Emit()
	return types.NoTypeID
}

func (inf *Inferencer) resolveNamedType(t *ast.NamedType) types.TypeID {
	nameID := inf.table.Strings.Intern(t.Name)
	symID, ok := inf.table.Lookup(nameID)
	if !ok {
		diag.ReportError(inf.reporter, diag.TypNotAType, t.At,
			fmt.Sprintf("unknown type '%s'", t.Name)).Emit()
		return types.NoTypeID
	}
	sym := inf.table.Get(symID)
	if !sym.IsType() {
		diag.ReportError(inf.reporter, diag.TypNotAType, t.At,
			fmt.Sprintf("'%s' is not a type", t.Name)).Emit()
		return types.NoTypeID
	}

	args := make([]types.TypeID, 0, len(t.Args))
	for _, a := range t.Args {
		id := inf.resolveTypeExpr(a)
		if id == types.NoTypeID {
			return types.NoTypeID
		}
		args = append(args, id)
	}

	switch sym.Kind {
	case symbols.SymbolTypeAlias:
		if len(args) > 0 {
			diag.ReportError(inf.reporter, diag.TypInvalidType, t.At,
				fmt.Sprintf("alias '%s' does not take type arguments", t.Name)).Emit()
			return types.NoTypeID
		}
		return sym.Type

	case symbols.SymbolStruct, symbols.SymbolEnum:
		if len(args) == 0 {
			return sym.Type
		}
		// An instantiation like Vec[int]: a generic over the declared nominal.
		return inf.interner.RegisterGeneric(nameID, sym.Span, args)
	}

	diag.ReportError(inf.reporter, diag.TypNotAType, t.At,
		fmt.Sprintf("'%s' is not a type", t.Name)).Emit()
	return types.NoTypeID
}
