package sema

import (
	"fmt"
	"sort"

	"mica/internal/diag"
	"mica/internal/source"
)

// BorrowID identifies one tracked borrow inside an NLLAnalyzer.
type BorrowID uint32

// BorrowInfo describes a borrow of a place over a region of the CFG.
// Entries are appended as analysis proceeds and never mutated afterwards.
type BorrowInfo struct {
	ID      BorrowID
	Place   Place
	Mutable bool
	Region  Region
	At      source.Span
}

type borrowSet map[BorrowID]struct{}

func (s borrowSet) clone() borrowSet {
	out := make(borrowSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

func (s borrowSet) equal(other borrowSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if _, ok := other[id]; !ok {
			return false
		}
	}
	return true
}

// NLLAnalyzer runs the flow-sensitive refinement of borrow checking: a
// worklist fixed point over the CFG that tracks which borrows are live at
// each location, then pairwise conflict detection between simultaneously
// live borrows of overlapping places.
type NLLAnalyzer struct {
	cfg     *ControlFlowGraph
	borrows []BorrowInfo
	out     map[BlockID]borrowSet
	strings *source.Interner
}

func NewNLLAnalyzer(cfg *ControlFlowGraph, strings *source.Interner) *NLLAnalyzer {
	return &NLLAnalyzer{
		cfg:     cfg,
		out:     make(map[BlockID]borrowSet),
		strings: strings,
	}
}

// AddBorrow registers a borrow with its live region and returns its ID.
func (a *NLLAnalyzer) AddBorrow(place Place, mutable bool, region Region, at source.Span) BorrowID {
	id := BorrowID(len(a.borrows) + 1)
	a.borrows = append(a.borrows, BorrowInfo{
		ID:      id,
		Place:   place,
		Mutable: mutable,
		Region:  region,
		At:      at,
	})
	return id
}

// Borrows returns the registered borrows.
func (a *NLLAnalyzer) Borrows() []BorrowInfo { return a.borrows }

// ComputeActiveBorrows runs the worklist fixed point. The per-block transfer
// starts from the union of predecessor out-sets and replays the statement
// list: a borrow whose region starts at a location is gained, one whose
// region ends there is dropped. Convergence is bounded by |blocks|*|borrows|
// since sets only move inside a finite lattice.
func (a *NLLAnalyzer) ComputeActiveBorrows() {
	if a.cfg == nil || a.cfg.Len() == 0 {
		return
	}
	preds := a.cfg.Preds()

	worklist := make([]BlockID, 0, a.cfg.Len())
	queued := make(map[BlockID]bool, a.cfg.Len())
	for _, b := range a.cfg.Blocks() {
		worklist = append(worklist, b.ID)
		queued[b.ID] = true
	}

	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		queued[id] = false

		in := make(borrowSet)
		for _, p := range preds[id] {
			for bid := range a.out[p] {
				in[bid] = struct{}{}
			}
		}

		out := a.transfer(id, in)
		if prev, ok := a.out[id]; ok && prev.equal(out) {
			continue
		}
		a.out[id] = out
		for _, succ := range a.cfg.Block(id).Succs {
			if !queued[succ] {
				worklist = append(worklist, succ)
				queued[succ] = true
			}
		}
	}
}

// ActiveAtExit returns the borrows live at the end of a block, sorted by ID.
func (a *NLLAnalyzer) ActiveAtExit(id BlockID) []BorrowID {
	set := a.out[id]
	out := make([]BorrowID, 0, len(set))
	for bid := range set {
		out = append(out, bid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (a *NLLAnalyzer) transfer(id BlockID, in borrowSet) borrowSet {
	set := in.clone()
	block := a.cfg.Block(id)
	for idx := range block.Stmts {
		loc := Loc{Block: id, Stmt: uint32(idx)}
		for i := range a.borrows {
			b := &a.borrows[i]
			if b.Region.Start == loc {
				set[b.ID] = struct{}{}
			}
			if b.Region.End == loc {
				delete(set, b.ID)
			}
		}
	}
	return set
}

// CheckBorrowConflicts reports every pair of simultaneously live borrows
// whose places overlap when at least one of the two is mutable. Call after
// ComputeActiveBorrows. Returns true when no conflict was found.
func (a *NLLAnalyzer) CheckBorrowConflicts(reporter diag.Reporter) bool {
	if a.cfg == nil {
		return true
	}
	preds := a.cfg.Preds()
	reported := make(map[pair2]bool)
	ok := true

	for _, block := range a.cfg.Blocks() {
		set := make(borrowSet)
		for _, p := range preds[block.ID] {
			for bid := range a.out[p] {
				set[bid] = struct{}{}
			}
		}
		for idx := range block.Stmts {
			loc := Loc{Block: block.ID, Stmt: uint32(idx)}
			for i := range a.borrows {
				b := &a.borrows[i]
				if b.Region.Start == loc {
					set[b.ID] = struct{}{}
				}
				if b.Region.End == loc {
					delete(set, b.ID)
				}
			}
			if !a.checkPairs(set, reported, reporter) {
				ok = false
			}
		}
	}
	return ok
}

func (a *NLLAnalyzer) checkPairs(set borrowSet, reported map[pair2]bool, reporter diag.Reporter) bool {
	ids := make([]BorrowID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	ok := true
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			x := &a.borrows[ids[i]-1]
			y := &a.borrows[ids[j]-1]
			if !x.Mutable && !y.Mutable {
				continue
			}
			if !x.Place.Overlaps(y.Place) {
				continue
			}
			key := pair2{x.ID, y.ID}
			if reported[key] {
				continue
			}
			reported[key] = true
			ok = false
			if reporter != nil {
				diag.ReportError(reporter, diag.BrwOverlappingBorrows, x.At,
					fmt.Sprintf("borrow of '%s' is still live when '%s' is borrowed%s",
						a.placeName(x.Place), a.placeName(y.Place), mutSuffix(x, y))).
					WithNote(y.At, "second borrow here").
					Emit()
			}
		}
	}
	return ok
}

type pair2 struct{ x, y BorrowID }

func mutSuffix(x, y *BorrowInfo) string {
	switch {
	case x.Mutable && y.Mutable:
		return " mutably twice"
	case y.Mutable:
		return " mutably"
	}
	return ""
}

func (a *NLLAnalyzer) placeName(p Place) string {
	if a.strings == nil {
		return p.Key()
	}
	s, _ := a.strings.Lookup(p.Base)
	return s
}
