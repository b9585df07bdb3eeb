package sema

import (
	"testing"

	"mica/internal/source"
	"mica/internal/types"
)

func TestUnifyPrimitives(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	u := NewUnifier(in)

	if got, err := u.Unify(b.Int, b.Int); err != nil || got != b.Int {
		t.Fatalf("Unify(int, int) = %v, %v", got, err)
	}
	if _, err := u.Unify(b.Int, b.String); err == nil {
		t.Fatalf("Unify(int, string) must fail")
	}
	// Symmetric: swapping the sides fails the same way.
	if _, err := u.Unify(b.String, b.Int); err == nil {
		t.Fatalf("Unify(string, int) must fail")
	}
}

func TestUnifyBindOnce(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	u := NewUnifier(in)

	v := in.NewVar(source.NoStringID)
	if _, err := u.Unify(v, b.Int); err != nil {
		t.Fatalf("binding a free var: %v", err)
	}
	if got := u.Resolve(v); got != b.Int {
		t.Fatalf("Resolve(v) = %d, want int (%d)", got, b.Int)
	}
	// Re-unifying against the same type is idempotent.
	if _, err := u.Unify(v, b.Int); err != nil {
		t.Fatalf("consistent re-unification must succeed: %v", err)
	}
	// An incompatible second binding violates bind-once.
	_, err := u.Unify(v, b.String)
	if err == nil {
		t.Fatalf("rebinding v to string must fail")
	}
	if !err.Rebound {
		t.Fatalf("failure through a bound var must be flagged Rebound")
	}
}

func TestUnifyUnknownAbsorbs(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	u := NewUnifier(in)

	if got, err := u.Unify(b.Unknown, b.Int); err != nil || got != b.Int {
		t.Fatalf("Unify(unknown, int) = %v, %v; want int", got, err)
	}
	if got, err := u.Unify(b.Float, b.Unknown); err != nil || got != b.Float {
		t.Fatalf("Unify(float, unknown) = %v, %v; want float", got, err)
	}
}

func TestUnifyRefs(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	u := NewUnifier(in)
	names := source.NewInterner()

	shared := in.Intern(types.MakeRef(b.Int, false, source.NoStringID))
	mutable := in.Intern(types.MakeRef(b.Int, true, source.NoStringID))
	if _, err := u.Unify(shared, mutable); err == nil {
		t.Fatalf("&int and &mut int must not unify")
	}

	// Lifetime identity is not part of the equation.
	annotated := in.Intern(types.MakeRef(b.Int, false, names.Intern("a")))
	if _, err := u.Unify(shared, annotated); err != nil {
		t.Fatalf("&int and &'a int must unify: %v", err)
	}

	// Element types are matched structurally through the reference.
	v := in.NewVar(source.NoStringID)
	refVar := in.Intern(types.MakeRef(v, false, source.NoStringID))
	if _, err := u.Unify(refVar, shared); err != nil {
		t.Fatalf("&'t0 and &int must unify: %v", err)
	}
	if got := u.Resolve(v); got != b.Int {
		t.Fatalf("element var must bind to int, got %d", got)
	}
}

func TestUnifyFnSignatures(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	u := NewUnifier(in)

	f2 := in.RegisterFn([]types.TypeID{b.Int, b.Int}, b.Bool)
	f1 := in.RegisterFn([]types.TypeID{b.Int}, b.Bool)
	if _, err := u.Unify(f2, f1); err == nil {
		t.Fatalf("signatures of different arity must not unify")
	}

	v := in.NewVar(source.NoStringID)
	fv := in.RegisterFn([]types.TypeID{b.Int, v}, b.Bool)
	if _, err := u.Unify(f2, fv); err != nil {
		t.Fatalf("param var must bind through the signature: %v", err)
	}
	if got := u.Resolve(v); got != b.Int {
		t.Fatalf("param var bound to %d, want int", got)
	}
}

func TestUnifyMemoizedFailure(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	u := NewUnifier(in)

	_, first := u.Unify(b.Int, b.String)
	_, second := u.Unify(b.String, b.Int)
	if first == nil || second == nil {
		t.Fatalf("both orders must fail")
	}
	if first.Expected != second.Expected || first.Found != second.Found {
		t.Fatalf("memoized failure must be stable across argument order")
	}
}
