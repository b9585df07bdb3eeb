package sema

import (
	"strings"
	"testing"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/source"
	"mica/internal/symbols"
	"mica/internal/types"
)

func newInferHarness() (*Inferencer, *symbols.Table, *types.Interner, *diag.Bag) {
	bag := diag.NewBag(32)
	rep := diag.BagReporter{Bag: bag}
	names := source.NewInterner()
	in := types.NewInterner()
	table := symbols.NewTable(symbols.Hints{}, names, rep)
	symbols.InstallPrelude(table, in)
	return NewInferencer(in, table, rep), table, in, bag
}

func defineVar(table *symbols.Table, name string, t types.TypeID) {
	table.Define(symbols.Symbol{
		Name: table.Strings.Intern(name),
		Kind: symbols.SymbolVariable,
		Type: t,
	})
}

func TestInferLiterals(t *testing.T) {
	inf, _, in, _ := newInferHarness()
	b := in.Builtins()

	cases := []struct {
		expr ast.Expr
		want types.TypeID
	}{
		{&ast.IntLit{Value: 42}, b.Int},
		{&ast.FloatLit{Value: 3.5}, b.Float},
		{&ast.StringLit{Value: "hi"}, b.String},
		{&ast.BoolLit{Value: true}, b.Bool},
		{&ast.UnitLit{}, b.Unit},
	}
	for _, tc := range cases {
		got, ok := inf.InferExpr(tc.expr)
		if !ok || got != tc.want {
			t.Fatalf("InferExpr(%T) = %d, %v; want %d", tc.expr, got, ok, tc.want)
		}
	}
}

func TestInferUndefinedIdent(t *testing.T) {
	inf, _, _, bag := newInferHarness()

	if _, ok := inf.InferExpr(&ast.Ident{Name: "nope"}); ok {
		t.Fatalf("undefined identifier must fail")
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.NamUndefinedIdentifier {
		t.Fatalf("expected NamUndefinedIdentifier, got %v", bag.Items())
	}
}

func TestInferBinary(t *testing.T) {
	inf, _, in, bag := newInferHarness()
	b := in.Builtins()

	sum := &ast.Binary{Op: ast.BinAdd, Left: &ast.IntLit{Value: 1}, Right: &ast.IntLit{Value: 2}}
	if got, ok := inf.InferExpr(sum); !ok || got != b.Int {
		t.Fatalf("1+2 = %d, %v; want int", got, ok)
	}

	cmp := &ast.Binary{Op: ast.BinLt, Left: &ast.IntLit{Value: 1}, Right: &ast.IntLit{Value: 2}}
	if got, ok := inf.InferExpr(cmp); !ok || got != b.Bool {
		t.Fatalf("1<2 = %d, %v; want bool", got, ok)
	}

	bad := &ast.Binary{Op: ast.BinAdd, Left: &ast.IntLit{Value: 1}, Right: &ast.StringLit{Value: "x"}}
	if _, ok := inf.InferExpr(bad); ok {
		t.Fatalf("int + string must fail")
	}
	if !bagHasCode(bag, diag.TypMismatch) {
		t.Fatalf("expected TypMismatch, got %v", bag.Items())
	}
}

func TestInferCallArity(t *testing.T) {
	inf, table, in, bag := newInferHarness()
	b := in.Builtins()
	defineVar(table, "f", in.RegisterFn([]types.TypeID{b.Int, b.Int, b.Int}, b.Int))

	call := &ast.Call{
		Callee: &ast.Ident{Name: "f"},
		Args:   []ast.Expr{&ast.IntLit{Value: 1}, &ast.IntLit{Value: 2}},
	}
	if _, ok := inf.InferExpr(call); ok {
		t.Fatalf("calling a 3-ary function with 2 arguments must fail")
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.TypWrongArgumentCount {
		t.Fatalf("expected TypWrongArgumentCount, got %v", items)
	}
	if !strings.Contains(items[0].Message, "expected 3 arguments, found 2") {
		t.Fatalf("message must carry both counts, got %q", items[0].Message)
	}
}

func TestInferCallArgumentType(t *testing.T) {
	inf, table, in, bag := newInferHarness()
	b := in.Builtins()
	defineVar(table, "f", in.RegisterFn([]types.TypeID{b.Int}, b.Unit))

	call := &ast.Call{
		Callee: &ast.Ident{Name: "f"},
		Args:   []ast.Expr{&ast.StringLit{Value: "no"}},
	}
	if _, ok := inf.InferExpr(call); ok {
		t.Fatalf("string argument against int parameter must fail")
	}
	if !bagHasCode(bag, diag.TypWrongArgumentType) {
		t.Fatalf("expected TypWrongArgumentType, got %v", bag.Items())
	}
}

func TestInferCallThroughFreeVar(t *testing.T) {
	inf, table, in, _ := newInferHarness()
	b := in.Builtins()
	v := in.NewVar(source.NoStringID)
	defineVar(table, "g", v)

	call := &ast.Call{Callee: &ast.Ident{Name: "g"}, Args: []ast.Expr{&ast.IntLit{Value: 7}}}
	if _, ok := inf.InferExpr(call); !ok {
		t.Fatalf("calling through a free var must synthesize a signature")
	}
	bound := inf.Unifier().Resolve(v)
	info, ok := in.FnInfo(bound)
	if !ok || len(info.Params) != 1 {
		t.Fatalf("g must be bound to a unary signature, got %d", bound)
	}
	if inf.Unifier().Resolve(info.Params[0]) != b.Int {
		t.Fatalf("synthesized parameter must be int")
	}
}

func TestInferNotAFunction(t *testing.T) {
	inf, _, _, bag := newInferHarness()

	call := &ast.Call{Callee: &ast.IntLit{Value: 3}}
	if _, ok := inf.InferExpr(call); ok {
		t.Fatalf("calling an int must fail")
	}
	if !bagHasCode(bag, diag.TypNotAFunction) {
		t.Fatalf("expected TypNotAFunction, got %v", bag.Items())
	}
}

func TestInferLambda(t *testing.T) {
	inf, _, in, _ := newInferHarness()
	b := in.Builtins()

	lam := &ast.Lambda{
		Params: []ast.LambdaParam{{Name: "x", Type: &ast.NamedType{Name: "int"}}},
		Body:   &ast.Binary{Op: ast.BinAdd, Left: &ast.Ident{Name: "x"}, Right: &ast.IntLit{Value: 1}},
	}
	got, ok := inf.InferExpr(lam)
	if !ok {
		t.Fatalf("lambda inference failed")
	}
	info, found := in.FnInfo(got)
	if !found || len(info.Params) != 1 || info.Params[0] != b.Int {
		t.Fatalf("lambda must type as fn(int) -> int, got %d", got)
	}
	if inf.Unifier().Resolve(info.Result) != b.Int {
		t.Fatalf("lambda body must resolve to int")
	}
}

func TestInferRefAndDeref(t *testing.T) {
	inf, table, in, bag := newInferHarness()
	b := in.Builtins()
	defineVar(table, "x", b.Int)

	ref := &ast.Ref{X: &ast.Ident{Name: "x"}}
	refType, ok := inf.InferExpr(ref)
	if !ok {
		t.Fatalf("&x failed")
	}
	tt, _ := in.Lookup(refType)
	if tt.Kind != types.KindRef || tt.Elem != b.Int || tt.Mutable {
		t.Fatalf("&x = %+v, want shared ref to int", tt)
	}

	deref := &ast.Deref{X: ref}
	if got, ok := inf.InferExpr(deref); !ok || got != b.Int {
		t.Fatalf("*&x = %d, %v; want int", got, ok)
	}

	if _, ok := inf.InferExpr(&ast.Ref{X: &ast.IntLit{Value: 1}}); ok {
		t.Fatalf("&1 must fail: temporaries have no address")
	}
	if !bagHasCode(bag, diag.BrwInvalidRef) {
		t.Fatalf("expected BrwInvalidRef, got %v", bag.Items())
	}

	if _, ok := inf.InferExpr(&ast.Deref{X: &ast.IntLit{Value: 1}}); ok {
		t.Fatalf("*1 must fail")
	}
	if !bagHasCode(bag, diag.BrwInvalidDeref) {
		t.Fatalf("expected BrwInvalidDeref, got %v", bag.Items())
	}
}

func TestSolveConstraintsDrainsQueue(t *testing.T) {
	inf, _, in, bag := newInferHarness()
	b := in.Builtins()

	inf.AddConstraint(b.Int, b.String, &ast.IntLit{Value: 1})
	if inf.SolveConstraints() {
		t.Fatalf("int = string must fail to solve")
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.TypMismatch {
		t.Fatalf("expected exactly one TypMismatch, got %v", bag.Items())
	}

	// The queue resets after a solve: the failed equation is not replayed.
	v := in.NewVar(source.NoStringID)
	inf.AddConstraint(v, b.Int, nil)
	if !inf.SolveConstraints() {
		t.Fatalf("v = int must solve")
	}
	if got := inf.Unifier().Resolve(v); got != b.Int {
		t.Fatalf("Resolve(v) = %d, want int (%d)", got, b.Int)
	}
	if bag.Len() != 1 {
		t.Fatalf("stale constraints re-reported: %v", bag.Items())
	}
}

func bagHasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}
