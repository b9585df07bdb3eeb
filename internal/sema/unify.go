package sema

import (
	"fmt"

	"mica/internal/source"
	"mica/internal/types"
)

// UnifyError describes a failed unification. Expected/Found are resolved
// TypeIDs suitable for rendering.
type UnifyError struct {
	Expected types.TypeID
	Found    types.TypeID
	Rebound  bool // a bound type variable was re-unified inconsistently
}

func (e *UnifyError) Error() string {
	if e.Rebound {
		return fmt.Sprintf("type variable rebound: %d vs %d", e.Expected, e.Found)
	}
	return fmt.Sprintf("type mismatch: %d vs %d", e.Expected, e.Found)
}

type unifyKey struct {
	a, b types.TypeID // normalized so a <= b
}

type unifyMemo struct {
	result types.TypeID
	err    *UnifyError
}

// Unifier performs structural unification over interned types. Type-variable
// bindings are single-assignment: once a var is bound, later unifications go
// through the binding and an incompatible rebind is a hard error.
//
// Successful and failed unifications are memoized by the unordered pair of
// input IDs. Unification terminates because recursion strictly decreases over
// type structure; variables terminate via binding.
type Unifier struct {
	interner *types.Interner
	bindings map[types.TypeID]types.TypeID
	memo     map[unifyKey]unifyMemo
}

func NewUnifier(interner *types.Interner) *Unifier {
	return &Unifier{
		interner: interner,
		bindings: make(map[types.TypeID]types.TypeID),
		memo:     make(map[unifyKey]unifyMemo),
	}
}

// Resolve follows variable bindings until a non-var or an unbound var.
func (u *Unifier) Resolve(id types.TypeID) types.TypeID {
	for {
		tt, ok := u.interner.Lookup(id)
		if !ok || tt.Kind != types.KindVar {
			return id
		}
		bound, ok := u.bindings[id]
		if !ok {
			return id
		}
		id = bound
	}
}

// Binding reports what a variable is bound to, if anything.
func (u *Unifier) Binding(id types.TypeID) (types.TypeID, bool) {
	bound, ok := u.bindings[id]
	return bound, ok
}

// Unify matches a against b, binding free variables as a side effect, and
// returns the unified type. The operation is symmetric and idempotent.
func (u *Unifier) Unify(a, b types.TypeID) (types.TypeID, *UnifyError) {
	origA, origB := a, b
	a = u.Resolve(a)
	b = u.Resolve(b)
	if a == b {
		return a, nil
	}

	key := unifyKey{a, b}
	if b < a {
		key = unifyKey{b, a}
	}
	viaBinding := origA != a || origB != b
	if m, ok := u.memo[key]; ok {
		return m.result, decorateRebound(m.err, viaBinding)
	}

	result, err := u.unify(a, b)
	u.memo[key] = unifyMemo{result: result, err: err}
	return result, decorateRebound(err, viaBinding)
}

// decorateRebound marks a failure that surfaced through an already-bound
// variable: the caller's equation violated the bind-once invariant.
func decorateRebound(err *UnifyError, viaBinding bool) *UnifyError {
	if err == nil || !viaBinding {
		return err
	}
	return &UnifyError{Expected: err.Expected, Found: err.Found, Rebound: true}
}

func (u *Unifier) unify(a, b types.TypeID) (types.TypeID, *UnifyError) {
	ta := u.interner.MustLookup(a)
	tb := u.interner.MustLookup(b)

	// A free variable binds to the other side.
	if ta.Kind == types.KindVar {
		u.bindings[a] = b
		return b, nil
	}
	if tb.Kind == types.KindVar {
		u.bindings[b] = a
		return a, nil
	}

	// Unknown absorbs into the other side: the gradual-typing escape hatch.
	if ta.Kind == types.KindUnknown {
		return b, nil
	}
	if tb.Kind == types.KindUnknown {
		return a, nil
	}

	if ta.Kind != tb.Kind {
		return types.NoTypeID, &UnifyError{Expected: a, Found: b}
	}

	switch ta.Kind {
	case types.KindUnit, types.KindBool, types.KindInt, types.KindFloat, types.KindString:
		// Identical primitives are caught by the a == b fast path; reaching
		// here with the same kind cannot happen for interned primitives.
		return a, nil

	case types.KindRef:
		// &T vs &mut T never unify; the pointee is matched structurally and
		// lifetime identity is deliberately discarded here.
		if ta.Mutable != tb.Mutable {
			return types.NoTypeID, &UnifyError{Expected: a, Found: b}
		}
		elem, err := u.Unify(ta.Elem, tb.Elem)
		if err != nil {
			return types.NoTypeID, &UnifyError{Expected: a, Found: b}
		}
		return u.interner.Intern(types.MakeRef(elem, ta.Mutable, ta.Lifetime)), nil

	case types.KindFn:
		fa, _ := u.interner.FnInfo(a)
		fb, _ := u.interner.FnInfo(b)
		if len(fa.Params) != len(fb.Params) {
			return types.NoTypeID, &UnifyError{Expected: a, Found: b}
		}
		params := make([]types.TypeID, len(fa.Params))
		for i := range fa.Params {
			p, err := u.Unify(fa.Params[i], fb.Params[i])
			if err != nil {
				return types.NoTypeID, &UnifyError{Expected: a, Found: b}
			}
			params[i] = p
		}
		result, err := u.Unify(fa.Result, fb.Result)
		if err != nil {
			return types.NoTypeID, &UnifyError{Expected: a, Found: b}
		}
		return u.interner.RegisterFn(params, result), nil

	case types.KindStruct, types.KindGeneric:
		na, _ := u.interner.NominalInfo(a)
		nb, _ := u.interner.NominalInfo(b)
		if na.Name != nb.Name || len(na.Args) != len(nb.Args) {
			return types.NoTypeID, &UnifyError{Expected: a, Found: b}
		}
		args := make([]types.TypeID, len(na.Args))
		for i := range na.Args {
			arg, err := u.Unify(na.Args[i], nb.Args[i])
			if err != nil {
				return types.NoTypeID, &UnifyError{Expected: a, Found: b}
			}
			args[i] = arg
		}
		if ta.Kind == types.KindStruct {
			return u.interner.RegisterStruct(na.Name, na.Decl, args), nil
		}
		return u.interner.RegisterGeneric(na.Name, na.Decl, args), nil
	}

	return types.NoTypeID, &UnifyError{Expected: a, Found: b}
}

// constraint is one queued equation, kept for deferred solving.
type constraint struct {
	left  types.TypeID
	right types.TypeID
	at    source.Span
}
