package sema

import (
	"fmt"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/source"
	"mica/internal/symbols"
	"mica/internal/types"
)

// Inferencer assigns a type to every expression. It owns the unifier and the
// deferred constraint queue; name resolution goes through the symbol table.
// Every diagnostic is emitted through the reporter exactly once, and the
// boolean result is the fail-fast signal for the enclosing statement.
type Inferencer struct {
	interner    *types.Interner
	uni         *Unifier
	table       *symbols.Table
	reporter    diag.Reporter
	exprTypes   map[ast.Expr]types.TypeID
	constraints []constraint
}

func NewInferencer(interner *types.Interner, table *symbols.Table, reporter diag.Reporter) *Inferencer {
	return &Inferencer{
		interner:  interner,
		uni:       NewUnifier(interner),
		table:     table,
		reporter:  reporter,
		exprTypes: make(map[ast.Expr]types.TypeID),
	}
}

// Unifier exposes the underlying unifier (tests, orchestrator).
func (inf *Inferencer) Unifier() *Unifier { return inf.uni }

// ExprTypes returns the accumulated expression typing.
func (inf *Inferencer) ExprTypes() map[ast.Expr]types.TypeID { return inf.exprTypes }

// TypeOf reports the recorded type of e, resolved through bindings.
func (inf *Inferencer) TypeOf(e ast.Expr) (types.TypeID, bool) {
	id, ok := inf.exprTypes[e]
	if !ok {
		return types.NoTypeID, false
	}
	return inf.uni.Resolve(id), true
}

// AddConstraint queues an equation for SolveConstraints.
func (inf *Inferencer) AddConstraint(a, b types.TypeID, at ast.Expr) {
	c := constraint{left: a, right: b}
	if at != nil {
		c.at = at.Span()
	}
	inf.constraints = append(inf.constraints, c)
}

// SolveConstraints drains the queue through Unify, reporting each failure.
func (inf *Inferencer) SolveConstraints() bool {
	ok := true
	for _, c := range inf.constraints {
		if _, err := inf.uni.Unify(c.left, c.right); err != nil {
			inf.reportMismatch(c.at, c.left, c.right, err)
			ok = false
		}
	}
	inf.constraints = inf.constraints[:0]
	return ok
}

// InferExpr computes the type of e bottom-up. On failure a diagnostic has
// already been emitted and the second result is false.
func (inf *Inferencer) InferExpr(e ast.Expr) (types.TypeID, bool) {
	b := inf.interner.Builtins()
	switch x := e.(type) {
	case *ast.IntLit:
		return inf.record(e, b.Int), true
	case *ast.FloatLit:
		return inf.record(e, b.Float), true
	case *ast.StringLit:
		return inf.record(e, b.String), true
	case *ast.BoolLit:
		return inf.record(e, b.Bool), true
	case *ast.UnitLit:
		return inf.record(e, b.Unit), true

	case *ast.Ident:
		return inf.inferIdent(x)
	case *ast.Binary:
		return inf.inferBinary(x)
	case *ast.Unary:
		return inf.inferUnary(x)
	case *ast.Call:
		return inf.inferCall(x)
	case *ast.Lambda:
		return inf.inferLambda(x)
	case *ast.FieldAccess:
		return inf.inferFieldAccess(x)
	case *ast.Index:
		return inf.inferIndex(x)
	case *ast.Ref:
		return inf.inferRef(x)
	case *ast.Deref:
		return inf.inferDeref(x)
	case *ast.StructLit:
		return inf.inferStructLit(x)
	}

	diag.ReportError(inf.reporter, diag.StrUnsupportedFeature, e.Span(), "unsupported expression").Emit()
	return types.NoTypeID, false
}

func (inf *Inferencer) record(e ast.Expr, id types.TypeID) types.TypeID {
	inf.exprTypes[e] = id
	return id
}

func (inf *Inferencer) inferIdent(x *ast.Ident) (types.TypeID, bool) {
	symID, ok := inf.table.LookupName(x.Name)
	if !ok {
		diag.ReportError(inf.reporter, diag.NamUndefinedIdentifier, x.At,
			fmt.Sprintf("undefined identifier '%s'", x.Name)).Emit()
		return types.NoTypeID, false
	}
	sym := inf.table.Get(symID)
	switch sym.Kind {
	case symbols.SymbolVariable, symbols.SymbolFunction:
		id := sym.Type
		if id == types.NoTypeID {
			id = inf.interner.Builtins().Unknown
		}
		return inf.record(x, id), true
	}
	diag.ReportError(inf.reporter, diag.NamUndefinedIdentifier, x.At,
		fmt.Sprintf("'%s' is a type, not a value", x.Name)).Emit()
	return types.NoTypeID, false
}

func (inf *Inferencer) inferBinary(x *ast.Binary) (types.TypeID, bool) {
	left, ok := inf.InferExpr(x.Left)
	if !ok {
		return types.NoTypeID, false
	}
	right, ok := inf.InferExpr(x.Right)
	if !ok {
		return types.NoTypeID, false
	}
	b := inf.interner.Builtins()

	if x.Op.IsLogical() {
		for _, side := range []struct {
			id types.TypeID
			at ast.Expr
		}{{left, x.Left}, {right, x.Right}} {
			if _, err := inf.uni.Unify(side.id, b.Bool); err != nil {
				inf.reportMismatch(side.at.Span(), b.Bool, side.id, err)
				return types.NoTypeID, false
			}
		}
		return inf.record(x, b.Bool), true
	}

	unified, err := inf.uni.Unify(left, right)
	if err != nil {
		inf.reportMismatch(x.At, left, right, err)
		return types.NoTypeID, false
	}
	if x.Op.IsComparison() {
		return inf.record(x, b.Bool), true
	}
	return inf.record(x, unified), true
}

func (inf *Inferencer) inferUnary(x *ast.Unary) (types.TypeID, bool) {
	inner, ok := inf.InferExpr(x.X)
	if !ok {
		return types.NoTypeID, false
	}
	b := inf.interner.Builtins()
	switch x.Op {
	case ast.UnNot:
		if _, err := inf.uni.Unify(inner, b.Bool); err != nil {
			inf.reportMismatch(x.At, b.Bool, inner, err)
			return types.NoTypeID, false
		}
		return inf.record(x, b.Bool), true
	case ast.UnNeg:
		resolved := inf.uni.Resolve(inner)
		tt, _ := inf.interner.Lookup(resolved)
		switch tt.Kind {
		case types.KindInt, types.KindFloat, types.KindUnknown:
			return inf.record(x, resolved), true
		case types.KindVar:
			// Default free negation operands to int.
			if _, err := inf.uni.Unify(resolved, b.Int); err == nil {
				return inf.record(x, b.Int), true
			}
		}
		inf.reportMismatch(x.At, b.Int, resolved, nil)
		return types.NoTypeID, false
	}
	diag.ReportError(inf.reporter, diag.StrUnsupportedFeature, x.At, "unsupported unary operator").Emit()
	return types.NoTypeID, false
}

func (inf *Inferencer) inferCall(x *ast.Call) (types.TypeID, bool) {
	calleeType, ok := inf.InferExpr(x.Callee)
	if !ok {
		return types.NoTypeID, false
	}
	args := make([]types.TypeID, 0, len(x.Args))
	for _, a := range x.Args {
		id, ok := inf.InferExpr(a)
		if !ok {
			return types.NoTypeID, false
		}
		args = append(args, id)
	}

	resolved := inf.uni.Resolve(calleeType)
	tt, _ := inf.interner.Lookup(resolved)
	switch tt.Kind {
	case types.KindFn:
		info, _ := inf.interner.FnInfo(resolved)
		if len(info.Params) != len(args) {
			diag.ReportError(inf.reporter, diag.TypWrongArgumentCount, x.At,
				fmt.Sprintf("expected %d arguments, found %d", len(info.Params), len(args))).Emit()
			return types.NoTypeID, false
		}
		for i := range args {
			if _, err := inf.uni.Unify(info.Params[i], args[i]); err != nil {
				diag.ReportError(inf.reporter, diag.TypWrongArgumentType, x.Args[i].Span(),
					fmt.Sprintf("argument %d: expected %s, found %s", i+1,
						inf.format(info.Params[i]), inf.format(args[i]))).Emit()
				return types.NoTypeID, false
			}
		}
		return inf.record(x, inf.uni.Resolve(info.Result)), true

	case types.KindVar, types.KindUnknown:
		// Synthesize fn(args...) -> 'r and unify the callee against it.
		result := inf.interner.NewVar(0)
		want := inf.interner.RegisterFn(args, result)
		if _, err := inf.uni.Unify(resolved, want); err != nil {
			inf.reportMismatch(x.At, want, resolved, err)
			return types.NoTypeID, false
		}
		return inf.record(x, result), true
	}

	diag.ReportError(inf.reporter, diag.TypNotAFunction, x.Callee.Span(),
		fmt.Sprintf("'%s' is not callable", inf.format(resolved))).Emit()
	return types.NoTypeID, false
}

func (inf *Inferencer) inferLambda(x *ast.Lambda) (types.TypeID, bool) {
	inf.table.EnterScope(symbols.ScopeFunction, x.At)
	defer inf.table.ExitScope()

	params := make([]types.TypeID, 0, len(x.Params))
	for _, p := range x.Params {
		var id types.TypeID
		if p.Type != nil {
			id = inf.resolveTypeExpr(p.Type)
			if id == types.NoTypeID {
				return types.NoTypeID, false
			}
		} else {
			id = inf.interner.NewVar(inf.table.Strings.Intern(p.Name))
		}
		params = append(params, id)
		inf.table.Define(symbols.Symbol{
			Name: inf.table.Strings.Intern(p.Name),
			Kind: symbols.SymbolVariable,
			Span: p.At,
			Type: id,
		})
	}

	body, ok := inf.InferExpr(x.Body)
	if !ok {
		return types.NoTypeID, false
	}
	return inf.record(x, inf.interner.RegisterFn(params, body)), true
}

func (inf *Inferencer) inferFieldAccess(x *ast.FieldAccess) (types.TypeID, bool) {
	base, ok := inf.InferExpr(x.X)
	if !ok {
		return types.NoTypeID, false
	}
	resolved := inf.autoDeref(base)
	tt, _ := inf.interner.Lookup(resolved)

	switch tt.Kind {
	case types.KindStruct, types.KindGeneric:
		nameID := inf.table.Strings.Intern(x.Field)
		if f := inf.interner.FieldByName(resolved, nameID); f != nil {
			return inf.record(x, f.Type), true
		}
		diag.ReportError(inf.reporter, diag.NamUndefinedField, x.At,
			fmt.Sprintf("type %s has no field '%s'", inf.format(resolved), x.Field)).Emit()
		return types.NoTypeID, false
	case types.KindUnknown, types.KindVar:
		return inf.record(x, inf.interner.Builtins().Unknown), true
	}

	diag.ReportError(inf.reporter, diag.NamUndefinedField, x.At,
		fmt.Sprintf("type %s has no fields", inf.format(resolved))).Emit()
	return types.NoTypeID, false
}

func (inf *Inferencer) inferIndex(x *ast.Index) (types.TypeID, bool) {
	base, ok := inf.InferExpr(x.X)
	if !ok {
		return types.NoTypeID, false
	}
	idx, ok := inf.InferExpr(x.Idx)
	if !ok {
		return types.NoTypeID, false
	}
	b := inf.interner.Builtins()
	if _, err := inf.uni.Unify(idx, b.Int); err != nil {
		inf.reportMismatch(x.Idx.Span(), b.Int, idx, err)
		return types.NoTypeID, false
	}

	resolved := inf.autoDeref(base)
	tt, _ := inf.interner.Lookup(resolved)
	switch tt.Kind {
	case types.KindString:
		return inf.record(x, b.String), true
	case types.KindGeneric:
		info, _ := inf.interner.NominalInfo(resolved)
		if len(info.Args) > 0 {
			return inf.record(x, info.Args[0]), true
		}
	case types.KindUnknown, types.KindVar:
		return inf.record(x, b.Unknown), true
	}
	diag.ReportError(inf.reporter, diag.TypInvalidType, x.At,
		fmt.Sprintf("type %s is not indexable", inf.format(resolved))).Emit()
	return types.NoTypeID, false
}

func (inf *Inferencer) inferRef(x *ast.Ref) (types.TypeID, bool) {
	if !isPlaceExpr(x.X) {
		diag.ReportError(inf.reporter, diag.BrwInvalidRef, x.At,
			"cannot take a reference to a temporary value").Emit()
		return types.NoTypeID, false
	}
	inner, ok := inf.InferExpr(x.X)
	if !ok {
		return types.NoTypeID, false
	}
	var life source.StringID
	if x.Lifetime != "" {
		life = inf.table.Strings.Intern(x.Lifetime)
	}
	return inf.record(x, inf.interner.Intern(types.MakeRef(inf.uni.Resolve(inner), x.Mutable, life))), true
}

func (inf *Inferencer) inferDeref(x *ast.Deref) (types.TypeID, bool) {
	inner, ok := inf.InferExpr(x.X)
	if !ok {
		return types.NoTypeID, false
	}
	resolved := inf.uni.Resolve(inner)
	tt, _ := inf.interner.Lookup(resolved)
	switch tt.Kind {
	case types.KindRef:
		return inf.record(x, tt.Elem), true
	case types.KindUnknown:
		return inf.record(x, inf.interner.Builtins().Unknown), true
	}
	diag.ReportError(inf.reporter, diag.BrwInvalidDeref, x.At,
		fmt.Sprintf("cannot dereference a value of type %s", inf.format(resolved))).Emit()
	return types.NoTypeID, false
}

func (inf *Inferencer) inferStructLit(x *ast.StructLit) (types.TypeID, bool) {
	symID, ok := inf.table.LookupName(x.Name)
	if !ok {
		diag.ReportError(inf.reporter, diag.NamUndefinedStruct, x.At,
			fmt.Sprintf("undefined struct '%s'", x.Name)).Emit()
		return types.NoTypeID, false
	}
	sym := inf.table.Get(symID)
	if sym.Kind != symbols.SymbolStruct {
		diag.ReportError(inf.reporter, diag.NamUndefinedStruct, x.At,
			fmt.Sprintf("'%s' is not a struct", x.Name)).Emit()
		return types.NoTypeID, false
	}

	structType := sym.Type
	info, ok2 := inf.interner.NominalInfo(structType)
	if !ok2 {
		diag.ReportError(inf.reporter, diag.NamUndefinedStruct, x.At,
			fmt.Sprintf("struct '%s' has no layout", x.Name)).Emit()
		return types.NoTypeID, false
	}

	seen := make(map[string]bool, len(x.Fields))
	for _, init := range x.Fields {
		if seen[init.Name] {
			diag.ReportError(inf.reporter, diag.TypFieldCountMismatch, init.At,
				fmt.Sprintf("field '%s' specified more than once", init.Name)).Emit()
			return types.NoTypeID, false
		}
		seen[init.Name] = true

		field := inf.interner.FieldByName(structType, inf.table.Strings.Intern(init.Name))
		if field == nil {
			diag.ReportError(inf.reporter, diag.NamUndefinedField, init.At,
				fmt.Sprintf("struct '%s' has no field '%s'", x.Name, init.Name)).Emit()
			return types.NoTypeID, false
		}
		valType, ok := inf.InferExpr(init.Value)
		if !ok {
			return types.NoTypeID, false
		}
		if _, err := inf.uni.Unify(field.Type, valType); err != nil {
			inf.reportMismatch(init.Value.Span(), field.Type, valType, err)
			return types.NoTypeID, false
		}
	}
	// A literal may never silently default a declared field.
	if len(x.Fields) != len(info.Fields) {
		diag.ReportError(inf.reporter, diag.TypFieldCountMismatch, x.At,
			fmt.Sprintf("struct '%s' has %d fields, literal provides %d",
				x.Name, len(info.Fields), len(x.Fields))).Emit()
		return types.NoTypeID, false
	}
	return inf.record(x, structType), true
}

// autoDeref resolves the id and peels reference layers for member access.
func (inf *Inferencer) autoDeref(id types.TypeID) types.TypeID {
	resolved := inf.uni.Resolve(id)
	for {
		tt, ok := inf.interner.Lookup(resolved)
		if !ok || tt.Kind != types.KindRef {
			return resolved
		}
		resolved = inf.uni.Resolve(tt.Elem)
	}
}

func (inf *Inferencer) format(id types.TypeID) string {
	return inf.interner.Format(inf.uni.Resolve(id), inf.table.Strings)
}

func (inf *Inferencer) reportMismatch(span source.Span, expected, found types.TypeID, err *UnifyError) {
	code := diag.TypMismatch
	if err != nil && err.Rebound {
		code = diag.TypVarRebound
	}
	diag.ReportError(inf.reporter, code, span,
		fmt.Sprintf("expected %s, found %s", inf.format(expected), inf.format(found))).Emit()
}

// isPlaceExpr reports whether e denotes an addressable storage location.
func isPlaceExpr(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.Ident:
		return true
	case *ast.FieldAccess:
		return isPlaceExpr(x.X)
	case *ast.Index:
		return isPlaceExpr(x.X)
	case *ast.Deref:
		return true
	}
	return false
}
