package sema

import (
	"testing"

	"mica/internal/diag"
	"mica/internal/source"
)

// linearCFG builds a single block with n placeholder statements.
func linearCFG(n int) (*ControlFlowGraph, BlockID) {
	cfg := NewControlFlowGraph()
	b := cfg.NewBlock()
	for i := 0; i < n; i++ {
		cfg.Append(b, CFGStmt{Kind: CFGAssign})
	}
	return cfg, b
}

func TestNLLDisjointRegionsNoConflict(t *testing.T) {
	strings := source.NewInterner()
	cfg, b := linearCFG(4)
	a := NewNLLAnalyzer(cfg, strings)

	x := PlaceOf(strings.Intern("x"))
	// [0,1) and [2,3): the first borrow is dead before the second starts.
	a.AddBorrow(x, true, Region{Start: Loc{b, 0}, End: Loc{b, 1}}, source.Span{})
	a.AddBorrow(x, false, Region{Start: Loc{b, 2}, End: Loc{b, 3}}, source.Span{})

	a.ComputeActiveBorrows()
	bag := diag.NewBag(8)
	if !a.CheckBorrowConflicts(diag.BagReporter{Bag: bag}) {
		t.Fatalf("disjoint regions must not conflict: %v", bag.Items())
	}
	if got := a.ActiveAtExit(b); len(got) != 0 {
		t.Fatalf("no borrow should survive the block, got %v", got)
	}
}

func TestNLLOverlappingMutableConflict(t *testing.T) {
	strings := source.NewInterner()
	cfg, b := linearCFG(4)
	a := NewNLLAnalyzer(cfg, strings)

	x := PlaceOf(strings.Intern("x"))
	a.AddBorrow(x, false, Region{Start: Loc{b, 0}, End: Loc{b, 3}}, source.Span{})
	a.AddBorrow(x, true, Region{Start: Loc{b, 1}, End: Loc{b, 3}}, source.Span{})

	a.ComputeActiveBorrows()
	bag := diag.NewBag(8)
	if a.CheckBorrowConflicts(diag.BagReporter{Bag: bag}) {
		t.Fatalf("overlapping shared+mutable must conflict")
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.BrwOverlappingBorrows {
		t.Fatalf("expected one BrwOverlappingBorrows, got %v", bag.Items())
	}
}

func TestNLLSharedOverlapIsFine(t *testing.T) {
	strings := source.NewInterner()
	cfg, b := linearCFG(3)
	a := NewNLLAnalyzer(cfg, strings)

	x := PlaceOf(strings.Intern("x"))
	a.AddBorrow(x, false, Region{Start: Loc{b, 0}, End: Loc{b, 2}}, source.Span{})
	a.AddBorrow(x, false, Region{Start: Loc{b, 1}, End: Loc{b, 2}}, source.Span{})

	a.ComputeActiveBorrows()
	if !a.CheckBorrowConflicts(nil) {
		t.Fatalf("two shared borrows must coexist")
	}
}

func TestNLLDistinctPlacesNoConflict(t *testing.T) {
	strings := source.NewInterner()
	cfg, b := linearCFG(3)
	a := NewNLLAnalyzer(cfg, strings)

	a.AddBorrow(PlaceOf(strings.Intern("x")), true, Region{Start: Loc{b, 0}, End: Loc{b, 2}}, source.Span{})
	a.AddBorrow(PlaceOf(strings.Intern("y")), true, Region{Start: Loc{b, 0}, End: Loc{b, 2}}, source.Span{})

	a.ComputeActiveBorrows()
	if !a.CheckBorrowConflicts(nil) {
		t.Fatalf("borrows of different bases must not conflict")
	}
}

// TestNLLLoopConvergence exercises the fixed point on a cyclic graph: a
// borrow taken before the loop stays live through the back edge.
func TestNLLLoopConvergence(t *testing.T) {
	strings := source.NewInterner()
	cfg := NewControlFlowGraph()
	entry := cfg.NewBlock()
	head := cfg.NewBlock()
	body := cfg.NewBlock()
	after := cfg.NewBlock()
	cfg.Connect(entry, head)
	cfg.Connect(head, body)
	cfg.Connect(head, after)
	cfg.Connect(body, head) // back edge

	cfg.Append(entry, CFGStmt{Kind: CFGAssign})
	cfg.Append(body, CFGStmt{Kind: CFGAssign})
	deadLoc := cfg.Append(after, CFGStmt{Kind: CFGStorageDead})

	a := NewNLLAnalyzer(cfg, strings)
	x := PlaceOf(strings.Intern("x"))
	a.AddBorrow(x, true, Region{Start: Loc{entry, 0}, End: deadLoc}, source.Span{})

	a.ComputeActiveBorrows()
	for _, id := range []BlockID{entry, head, body} {
		if got := a.ActiveAtExit(id); len(got) != 1 {
			t.Fatalf("borrow must be live at exit of bb%d, got %v", id, got)
		}
	}
	if got := a.ActiveAtExit(after); len(got) != 0 {
		t.Fatalf("borrow must die in the after block, got %v", got)
	}
}
