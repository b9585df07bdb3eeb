package sema

import (
	"strings"
	"testing"

	"mica/internal/ast"
	"mica/internal/diag"
)

func runCheck(t *testing.T, decls ...ast.Decl) (Result, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(64)
	c := NewChecker(Options{Reporter: diag.BagReporter{Bag: bag}})
	res := c.Check(&ast.File{Path: "test.mica", Decls: decls})
	return res, bag
}

func intT() ast.TypeExpr      { return &ast.NamedType{Name: "int"} }
func stringT() ast.TypeExpr   { return &ast.NamedType{Name: "string"} }
func ident(n string) ast.Expr { return &ast.Ident{Name: n} }
func lit(v int64) ast.Expr    { return &ast.IntLit{Value: v} }

func body(stmts ...ast.Stmt) *ast.Block { return &ast.Block{Stmts: stmts} }

func mainFn(stmts ...ast.Stmt) *ast.FuncDecl {
	return &ast.FuncDecl{Name: "main", Body: body(stmts...)}
}

func firstOfCode(bag *diag.Bag, code diag.Code) (diag.Diagnostic, bool) {
	for _, d := range bag.Items() {
		if d.Code == code {
			return d, true
		}
	}
	return diag.Diagnostic{}, false
}

func TestCheckLetAnnotationMismatch(t *testing.T) {
	res, bag := runCheck(t, mainFn(
		&ast.Let{Name: "x", Type: intT(), Init: &ast.StringLit{Value: "hello"}},
	))
	if res.OK {
		t.Fatalf("let x: int = \"hello\" must fail")
	}
	d, found := firstOfCode(bag, diag.TypMismatch)
	if !found {
		t.Fatalf("expected TypMismatch, got %v", bag.Items())
	}
	if !strings.Contains(d.Message, "expected int, found string") {
		t.Fatalf("mismatch message must name both types, got %q", d.Message)
	}
}

func TestCheckCallArityAcrossDecls(t *testing.T) {
	f := &ast.FuncDecl{
		Name: "f",
		Params: []ast.Param{
			{Name: "a", Type: intT()},
			{Name: "b", Type: intT()},
			{Name: "c", Type: intT()},
		},
		Result: intT(),
		Body:   body(&ast.Return{Value: lit(0)}),
	}
	res, bag := runCheck(t, f, mainFn(
		&ast.ExprStmt{X: &ast.Call{Callee: ident("f"), Args: []ast.Expr{lit(1), lit(2)}}},
	))
	if res.OK {
		t.Fatalf("f(1, 2) against a 3-ary signature must fail")
	}
	d, found := firstOfCode(bag, diag.TypWrongArgumentCount)
	if !found {
		t.Fatalf("expected TypWrongArgumentCount, got %v", bag.Items())
	}
	if !strings.Contains(d.Message, "expected 3 arguments, found 2") {
		t.Fatalf("wrong-arity message = %q", d.Message)
	}
}

func pointDecl() *ast.StructDecl {
	return &ast.StructDecl{
		Name: "Point",
		Fields: []ast.FieldDef{
			{Name: "x", Type: intT()},
			{Name: "y", Type: intT()},
		},
	}
}

func TestCheckStructLiteralFieldCount(t *testing.T) {
	res, bag := runCheck(t, pointDecl(), mainFn(
		&ast.Let{Name: "p", Init: &ast.StructLit{
			Name:   "Point",
			Fields: []ast.FieldInit{{Name: "x", Value: lit(1)}},
		}},
	))
	if res.OK {
		t.Fatalf("a literal missing a declared field must fail")
	}
	if _, found := firstOfCode(bag, diag.TypFieldCountMismatch); !found {
		t.Fatalf("expected TypFieldCountMismatch, got %v", bag.Items())
	}
}

func TestCheckStructLiteralUnknownField(t *testing.T) {
	res, bag := runCheck(t, pointDecl(), mainFn(
		&ast.Let{Name: "p", Init: &ast.StructLit{
			Name: "Point",
			Fields: []ast.FieldInit{
				{Name: "x", Value: lit(1)},
				{Name: "z", Value: lit(2)},
			},
		}},
	))
	if res.OK {
		t.Fatalf("a literal naming an undeclared field must fail")
	}
	if _, found := firstOfCode(bag, diag.NamUndefinedField); !found {
		t.Fatalf("expected NamUndefinedField, got %v", bag.Items())
	}
}

func TestCheckAssignMutability(t *testing.T) {
	res, bag := runCheck(t, mainFn(
		&ast.Let{Name: "x", Init: lit(1)},
		&ast.Assign{Target: ident("x"), Value: lit(2)},
	))
	if res.OK {
		t.Fatalf("assignment to an immutable binding must fail")
	}
	if _, found := firstOfCode(bag, diag.BrwCannotAssignImmutable); !found {
		t.Fatalf("expected BrwCannotAssignImmutable, got %v", bag.Items())
	}

	res, bag = runCheck(t, mainFn(
		&ast.Let{Name: "x", Mutable: true, Init: lit(1)},
		&ast.Assign{Target: ident("x"), Value: lit(2)},
	))
	if !res.OK || bag.Len() != 0 {
		t.Fatalf("assignment to a mutable binding must pass, got %v", bag.Items())
	}
}

func TestCheckAssignThroughSharedRef(t *testing.T) {
	res, bag := runCheck(t, mainFn(
		&ast.Let{Name: "v", Mutable: true, Init: lit(1)},
		&ast.Let{Name: "r", Init: &ast.Ref{X: ident("v")}},
		&ast.Assign{Target: &ast.Deref{X: ident("r")}, Value: lit(2)},
	))
	if res.OK {
		t.Fatalf("writing through a shared reference must fail")
	}
	if _, found := firstOfCode(bag, diag.BrwCannotAssignImmutable); !found {
		t.Fatalf("expected BrwCannotAssignImmutable, got %v", bag.Items())
	}
}

func TestCheckReturnRules(t *testing.T) {
	res, bag := runCheck(t, &ast.FuncDecl{Name: "f", Result: intT(), Body: body()})
	if res.OK {
		t.Fatalf("a non-void function without a return must fail")
	}
	if _, found := firstOfCode(bag, diag.FlwMissingReturnValue); !found {
		t.Fatalf("expected FlwMissingReturnValue, got %v", bag.Items())
	}

	res, bag = runCheck(t, &ast.FuncDecl{Name: "g", Body: body(&ast.Return{Value: lit(1)})})
	if res.OK {
		t.Fatalf("returning a value from a void function must fail")
	}
	if _, found := firstOfCode(bag, diag.FlwReturnValueInVoid); !found {
		t.Fatalf("expected FlwReturnValueInVoid, got %v", bag.Items())
	}

	res, bag = runCheck(t, &ast.FuncDecl{
		Name: "h", Result: intT(),
		Body: body(&ast.Return{Value: &ast.StringLit{Value: "s"}}),
	})
	if res.OK {
		t.Fatalf("returning string from an int function must fail")
	}
	if _, found := firstOfCode(bag, diag.TypMismatch); !found {
		t.Fatalf("expected TypMismatch, got %v", bag.Items())
	}
}

func colorDecl() *ast.EnumDecl {
	return &ast.EnumDecl{Name: "Color", Variants: []string{"Red", "Green", "Blue"}}
}

func matchFn(arms ...ast.MatchArm) *ast.FuncDecl {
	return &ast.FuncDecl{
		Name:   "f",
		Params: []ast.Param{{Name: "c", Type: &ast.NamedType{Name: "Color"}}},
		Body:   body(&ast.Match{Subject: ident("c"), Arms: arms}),
	}
}

func variantArm(v string) ast.MatchArm {
	return ast.MatchArm{Pattern: &ast.VariantPattern{Variant: v}, Body: body()}
}

func TestCheckMatchExhaustiveness(t *testing.T) {
	res, bag := runCheck(t, colorDecl(), matchFn(variantArm("Red"), variantArm("Green")))
	if res.OK {
		t.Fatalf("a match missing a variant must fail")
	}
	d, found := firstOfCode(bag, diag.FlwNonExhaustiveMatch)
	if !found {
		t.Fatalf("expected FlwNonExhaustiveMatch, got %v", bag.Items())
	}
	if !strings.Contains(d.Message, "Blue") {
		t.Fatalf("missing variant must be named, got %q", d.Message)
	}

	res, bag = runCheck(t, colorDecl(), matchFn(
		variantArm("Red"),
		ast.MatchArm{Body: body()}, // wildcard
	))
	if !res.OK || bag.Len() != 0 {
		t.Fatalf("a wildcard covers the rest, got %v", bag.Items())
	}
}

func TestCheckMatchDuplicateArm(t *testing.T) {
	res, bag := runCheck(t, colorDecl(), matchFn(
		variantArm("Red"), variantArm("Red"), variantArm("Green"), variantArm("Blue"),
	))
	if res.OK {
		t.Fatalf("a duplicated variant arm must fail")
	}
	if _, found := firstOfCode(bag, diag.FlwDuplicateMatchPattern); !found {
		t.Fatalf("expected FlwDuplicateMatchPattern, got %v", bag.Items())
	}
}

func TestCheckReturnedRefEscapes(t *testing.T) {
	bag := diag.NewBag(64)
	c := NewChecker(Options{Reporter: diag.BagReporter{Bag: bag}})
	res := c.Check(&ast.File{Decls: []ast.Decl{&ast.FuncDecl{
		Name:   "f",
		Result: &ast.RefType{Elem: intT()},
		Body: body(
			&ast.Let{Name: "x", Init: lit(1)},
			&ast.Return{Value: &ast.Ref{X: ident("x")}},
		),
	}}})
	if !res.OK {
		t.Fatalf("returning a reference is well-typed, got %v", bag.Items())
	}

	names := c.Table().Strings
	fn, x := names.Intern("f"), names.Intern("x")
	info := res.Escape.Info(fn, x)
	if !info.Escapes || !info.AddressTaken {
		t.Fatalf("x must be marked escaped and address-taken, got %+v", info)
	}
	if !res.Escape.ShouldAllocateOnHeap(fn, x) {
		t.Fatalf("an escaping variable must be heap-allocated")
	}
	for _, v := range res.StackVars {
		if v.Context == fn && v.Name == x {
			t.Fatalf("x must not be in the stack-eligible set")
		}
	}
}

func TestCheckLoopMetadata(t *testing.T) {
	res, bag := runCheck(t, &ast.FuncDecl{
		Name:   "f",
		Params: []ast.Param{{Name: "s", Type: stringT()}},
		Body: body(&ast.For{
			Var: "i", From: lit(0), To: lit(10),
			Body: body(&ast.Let{Name: "c", Init: &ast.Index{X: ident("s"), Idx: ident("i")}}),
		}),
	})
	if !res.OK || bag.Len() != 0 {
		t.Fatalf("counted loop must check clean, got %v", bag.Items())
	}
	if len(res.Loops) != 1 {
		t.Fatalf("expected 1 analyzed loop, got %d", len(res.Loops))
	}
	info := res.Loops[0]
	if info.TripCount != 10 || !info.CanUnroll || info.UnrollFactor != 8 {
		t.Fatalf("trip/unroll metadata wrong: %+v", info)
	}
	if info.CanParallelize {
		t.Fatalf("10 trips are not worth parallelizing")
	}
	if info.MemoryPattern != MemPatternSequential || !info.Vectorizable {
		t.Fatalf("s[i] is a sequential access: %+v", info)
	}
}

func TestCheckLoopCallMarksSideEffects(t *testing.T) {
	tick := &ast.FuncDecl{Name: "tick", Body: body()}
	res, bag := runCheck(t, tick, mainFn(
		&ast.For{
			Var: "i", From: lit(0), To: lit(10),
			Body: body(&ast.ExprStmt{X: &ast.Call{Callee: ident("tick")}}),
		},
	))
	if !res.OK || bag.Len() != 0 {
		t.Fatalf("loop with a call must check clean, got %v", bag.Items())
	}
	if len(res.Loops) != 1 {
		t.Fatalf("expected 1 analyzed loop, got %d", len(res.Loops))
	}
	info := res.Loops[0]
	if !info.HasSideEffects || info.Vectorizable {
		t.Fatalf("a call in the body must kill vectorization: %+v", info)
	}
}

func TestCheckRegionConflict(t *testing.T) {
	res, bag := runCheck(t, mainFn(
		&ast.Let{Name: "v", Mutable: true, Init: lit(1)},
		&ast.Let{Name: "a", Init: &ast.Ref{X: ident("v")}},
		&ast.Let{Name: "b", Init: &ast.Ref{Mutable: true, X: ident("v")}},
	))
	if res.OK {
		t.Fatalf("shared and mutable borrows live together must conflict")
	}
	if _, found := firstOfCode(bag, diag.BrwOverlappingBorrows); !found {
		t.Fatalf("expected BrwOverlappingBorrows, got %v", bag.Items())
	}
}

func TestCheckRegionEndsAtScopeExit(t *testing.T) {
	res, bag := runCheck(t, mainFn(
		&ast.Let{Name: "v", Mutable: true, Init: lit(1)},
		&ast.Block{Stmts: []ast.Stmt{
			&ast.Let{Name: "a", Init: &ast.Ref{X: ident("v")}},
		}},
		&ast.Let{Name: "b", Init: &ast.Ref{Mutable: true, X: ident("v")}},
	))
	if !res.OK || bag.Len() != 0 {
		t.Fatalf("the shared borrow dies with its block, got %v", bag.Items())
	}
}

func TestCheckBorrowStoredInOuterBindingOutlivesBlock(t *testing.T) {
	// The borrow of y is created inside the inner block but lands in r, which
	// is declared outside it, so its region runs until r goes out of scope.
	res, bag := runCheck(t, mainFn(
		&ast.Let{Name: "x", Mutable: true, Init: lit(1)},
		&ast.Let{Name: "y", Mutable: true, Init: lit(2)},
		&ast.Let{Name: "r", Mutable: true, Init: &ast.Ref{Mutable: true, X: ident("x")}},
		&ast.Block{Stmts: []ast.Stmt{
			&ast.Assign{Target: ident("r"), Value: &ast.Ref{Mutable: true, X: ident("y")}},
		}},
		&ast.Let{Name: "b", Init: &ast.Ref{X: ident("y")}},
	))
	if res.OK {
		t.Fatalf("borrow held by an outer binding must still be live after the block")
	}
	if _, found := firstOfCode(bag, diag.BrwOverlappingBorrows); !found {
		t.Fatalf("expected BrwOverlappingBorrows, got %v", bag.Items())
	}
}

func TestCheckAnnotatedLifetimeConflict(t *testing.T) {
	res, bag := runCheck(t, &ast.FuncDecl{
		Name:      "f",
		Lifetimes: []string{"a"},
		Params: []ast.Param{
			{Name: "x", Type: intT()},
			{Name: "y", Type: intT()},
		},
		Body: body(
			&ast.Let{Name: "r1", Init: &ast.Ref{Lifetime: "a", X: ident("x")}},
			&ast.Let{Name: "r2", Init: &ast.Ref{Lifetime: "a", Mutable: true, X: ident("y")}},
		),
	})
	if res.OK {
		t.Fatalf("a mutable borrow sharing lifetime 'a must conflict")
	}
	if _, found := firstOfCode(bag, diag.BrwMutableBorrowConflict); !found {
		t.Fatalf("expected BrwMutableBorrowConflict, got %v", bag.Items())
	}
}

func TestCheckUnknownLifetimeAnnotation(t *testing.T) {
	res, bag := runCheck(t, &ast.FuncDecl{
		Name:   "f",
		Params: []ast.Param{{Name: "x", Type: intT()}},
		Body:   body(&ast.Let{Name: "r", Init: &ast.Ref{Lifetime: "zz", X: ident("x")}}),
	})
	if res.OK {
		t.Fatalf("borrowing under an undeclared lifetime must fail")
	}
	if _, found := firstOfCode(bag, diag.BrwInvalidRef); !found {
		t.Fatalf("expected BrwInvalidRef, got %v", bag.Items())
	}
}

func TestCheckStructLayoutAdvisory(t *testing.T) {
	res, bag := runCheck(t, &ast.StructDecl{
		Name: "S",
		Fields: []ast.FieldDef{
			{Name: "a", Type: &ast.NamedType{Name: "bool"}},
			{Name: "b", Type: intT()},
			{Name: "c", Type: &ast.NamedType{Name: "bool"}},
		},
	})
	if !res.OK || bag.HasErrors() {
		t.Fatalf("a padded struct is legal, got %v", bag.Items())
	}
	d, found := firstOfCode(bag, diag.AdvStructLayout)
	if !found {
		t.Fatalf("expected AdvStructLayout advisory, got %v", bag.Items())
	}
	if d.Severity != diag.SevInfo {
		t.Fatalf("layout advisories are informational, got %v", d.Severity)
	}
}

func TestCheckFailFastPerStatementContinuesAcross(t *testing.T) {
	res, bag := runCheck(t, mainFn(
		&ast.Let{Name: "x", Type: intT(), Init: &ast.StringLit{Value: "a"}},
		&ast.Let{Name: "y", Type: intT(), Init: &ast.StringLit{Value: "b"}},
		&ast.Let{Name: "z", Init: lit(3)}, // healthy statement still checks
	))
	if res.OK {
		t.Fatalf("two bad lets must fail the unit")
	}
	count := 0
	for _, d := range bag.Items() {
		if d.Code == diag.TypMismatch {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("each bad statement reports once, got %d mismatches: %v", count, bag.Items())
	}
	if _, ok := res.Table.LookupName("z"); ok {
		// z was scoped to the function body; the point is only that the
		// statement after the failures was still processed.
		t.Fatalf("function locals must not leak into the global scope")
	}
}

func TestCheckRecursionAllowed(t *testing.T) {
	res, bag := runCheck(t, &ast.FuncDecl{
		Name:   "fib",
		Params: []ast.Param{{Name: "n", Type: intT()}},
		Result: intT(),
		Body: body(&ast.Return{Value: &ast.Call{
			Callee: ident("fib"),
			Args: []ast.Expr{&ast.Binary{
				Op: ast.BinSub, Left: ident("n"), Right: lit(1),
			}},
		}}),
	})
	if !res.OK || bag.Len() != 0 {
		t.Fatalf("self recursion must check clean, got %v", bag.Items())
	}
}

func TestCheckLambdaCaptureMarked(t *testing.T) {
	res, bag := runCheck(t, &ast.FuncDecl{
		Name: "f",
		Body: body(
			&ast.Let{Name: "total", Mutable: true, Init: lit(0)},
			&ast.Let{Name: "add", Init: &ast.Lambda{
				Params: []ast.LambdaParam{{Name: "x", Type: intT()}},
				Body:   &ast.Binary{Op: ast.BinAdd, Left: ident("x"), Right: ident("total")},
			}},
		),
	})
	if !res.OK || bag.Len() != 0 {
		t.Fatalf("capturing lambda must check clean, got %v", bag.Items())
	}
	names := res.Table.Strings
	info := res.Escape.Info(names.Intern("f"), names.Intern("total"))
	if !info.CapturedByRef {
		t.Fatalf("captured variable must be marked, got %+v", info)
	}
}
