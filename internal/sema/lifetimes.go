package sema

import (
	"fmt"

	"mica/internal/diag"
	"mica/internal/source"
)

// BorrowRecord is one recorded borrow: who borrows, under which lifetime,
// and whether mutably. Records are append-only; scope exit prunes those
// whose lifetime died, nothing else mutates them.
type BorrowRecord struct {
	Lifetime source.StringID
	Borrower source.StringID
	Mutable  bool
	At       source.Span
}

// LifetimeContext is the lexical borrow checker: a stack of active lifetimes
// plus the borrow log. It is deliberately coarse (lifetime granularity, not
// place granularity); the NLL analyzer refines it where a CFG is available.
type LifetimeContext struct {
	frames  [][]source.StringID
	active  map[source.StringID]int
	records []BorrowRecord
	strings *source.Interner
}

func NewLifetimeContext(strings *source.Interner) *LifetimeContext {
	lc := &LifetimeContext{
		active:  make(map[source.StringID]int),
		strings: strings,
	}
	lc.EnterScope() // outermost frame
	return lc
}

// EnterScope opens a frame; lifetimes declared from now on die with it.
func (lc *LifetimeContext) EnterScope() {
	lc.frames = append(lc.frames, nil)
}

// DeclareLifetime activates a named lifetime in the current frame.
func (lc *LifetimeContext) DeclareLifetime(name source.StringID) {
	if len(lc.frames) == 0 {
		lc.EnterScope()
	}
	top := len(lc.frames) - 1
	lc.frames[top] = append(lc.frames[top], name)
	lc.active[name]++
}

// IsActive reports whether the lifetime is currently in scope.
func (lc *LifetimeContext) IsActive(name source.StringID) bool {
	return lc.active[name] > 0
}

// ExitScope closes the current frame, deactivates its lifetimes and prunes
// borrow records whose lifetime is no longer active.
func (lc *LifetimeContext) ExitScope() {
	if len(lc.frames) == 0 {
		return
	}
	top := len(lc.frames) - 1
	for _, name := range lc.frames[top] {
		if lc.active[name] > 1 {
			lc.active[name]--
		} else {
			delete(lc.active, name)
		}
	}
	lc.frames = lc.frames[:top]

	kept := lc.records[:0]
	for _, rec := range lc.records {
		if lc.active[rec.Lifetime] > 0 {
			kept = append(kept, rec)
		}
	}
	lc.records = kept
}

// RecordBorrow appends a borrow record under the given lifetime.
func (lc *LifetimeContext) RecordBorrow(lifetime, borrower source.StringID, mutable bool, at source.Span) {
	lc.records = append(lc.records, BorrowRecord{
		Lifetime: lifetime,
		Borrower: borrower,
		Mutable:  mutable,
		At:       at,
	})
}

// Borrows returns the records currently held for a lifetime.
func (lc *LifetimeContext) Borrows(lifetime source.StringID) []BorrowRecord {
	var out []BorrowRecord
	for _, rec := range lc.records {
		if rec.Lifetime == lifetime {
			out = append(out, rec)
		}
	}
	return out
}

// CheckBorrows reports a conflict for every mutable borrower that shares the
// lifetime with any other borrower. Two shared borrows never conflict.
// Returns true when no conflict was found.
func (lc *LifetimeContext) CheckBorrows(lifetime source.StringID, reporter diag.Reporter) bool {
	recs := lc.Borrows(lifetime)
	ok := true
	for i, mut := range recs {
		if !mut.Mutable {
			continue
		}
		for j, other := range recs {
			if i == j {
				continue
			}
			// A mutable/mutable pair is symmetric; report it once.
			if other.Mutable && j < i {
				continue
			}
			ok = false
			if reporter != nil {
				diag.ReportError(reporter, diag.BrwMutableBorrowConflict, mut.At,
					fmt.Sprintf("mutable borrow of '%s' conflicts with borrow of '%s'",
						lc.name(mut.Borrower), lc.name(other.Borrower))).
					WithNote(other.At, "other borrow recorded here").
					Emit()
			}
		}
	}
	return ok
}

func (lc *LifetimeContext) name(id source.StringID) string {
	if lc.strings == nil {
		return fmt.Sprintf("#%d", id)
	}
	s, _ := lc.strings.Lookup(id)
	return s
}
