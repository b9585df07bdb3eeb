package sema

import (
	"mica/internal/ast"
	"mica/internal/source"
)

// cfgBuilder lowers a function body into basic blocks and registers every
// unannotated borrow with its live region on the NLL analyzer. Borrows that
// carry an explicit lifetime annotation are the lexical checker's business
// and are skipped here.
type cfgBuilder struct {
	cfg     *ControlFlowGraph
	nll     *NLLAnalyzer
	strings *source.Interner
	cur     BlockID
	scopes  []*cfgScope
}

type cfgScope struct {
	lets    []source.StringID
	borrows []pendingBorrow
}

// pendingBorrow is a borrow whose region end is unknown until the scope that
// holds its binding closes.
type pendingBorrow struct {
	place   Place
	mutable bool
	start   Loc
	at      source.Span
	binder  source.StringID // 0 when the reference is not bound by a let
}

func newCFGBuilder(strings *source.Interner) *cfgBuilder {
	cfg := NewControlFlowGraph()
	b := &cfgBuilder{
		cfg:     cfg,
		nll:     NewNLLAnalyzer(cfg, strings),
		strings: strings,
	}
	b.cur = cfg.NewBlock()
	return b
}

// build lowers the body and returns the graph plus the analyzer primed with
// every borrow's region.
func (b *cfgBuilder) build(body *ast.Block) (*ControlFlowGraph, *NLLAnalyzer) {
	b.pushScope()
	if body != nil {
		for _, s := range body.Stmts {
			b.lowerStmt(s)
		}
	}
	b.popScope(bodySpan(body))
	return b.cfg, b.nll
}

func bodySpan(body *ast.Block) source.Span {
	if body == nil {
		return source.Span{}
	}
	return body.At
}

func (b *cfgBuilder) pushScope() {
	b.scopes = append(b.scopes, &cfgScope{})
}

// popScope emits StorageDead for the scope's bindings in reverse declaration
// order and closes the regions of borrows opened inside it.
func (b *cfgBuilder) popScope(at source.Span) {
	top := len(b.scopes) - 1
	sc := b.scopes[top]
	b.scopes = b.scopes[:top]

	dead := make(map[source.StringID]Loc, len(sc.lets))
	var closeLoc Loc
	haveClose := false
	for i := len(sc.lets) - 1; i >= 0; i-- {
		name := sc.lets[i]
		loc := b.cfg.Append(b.cur, CFGStmt{Kind: CFGStorageDead, Place: PlaceOf(name), At: at})
		dead[name] = loc
		if !haveClose {
			closeLoc = loc
			haveClose = true
		}
	}

	for _, pb := range sc.borrows {
		end := closeLoc
		if loc, ok := dead[pb.binder]; ok {
			end = loc
		} else if !haveClose {
			// Nothing died here; synthesize a location so the region closes.
			end = b.cfg.Append(b.cur, CFGStmt{Kind: CFGStorageDead, At: at})
			closeLoc = end
			haveClose = true
		}
		b.nll.AddBorrow(pb.place, pb.mutable, Region{Start: pb.start, End: end}, pb.at)
	}
}

func (b *cfgBuilder) scope() *cfgScope { return b.scopes[len(b.scopes)-1] }

// owningScope resolves the scope that declared the binder, so a borrow stored
// into an outer binding outlives the block where the store happened. Unbound
// and unresolved binders stay in the current scope.
func (b *cfgBuilder) owningScope(binder source.StringID) *cfgScope {
	if binder != source.NoStringID {
		for i := len(b.scopes) - 1; i >= 0; i-- {
			sc := b.scopes[i]
			for _, name := range sc.lets {
				if name == binder {
					return sc
				}
			}
		}
	}
	return b.scope()
}

func (b *cfgBuilder) intern(name string) source.StringID {
	return b.strings.Intern(name)
}

func (b *cfgBuilder) lowerStmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.Let:
		name := b.intern(x.Name)
		b.cfg.Append(b.cur, CFGStmt{Kind: CFGStorageLive, Place: PlaceOf(name), At: x.At})
		loc := b.cfg.Append(b.cur, CFGStmt{
			Kind:  CFGAssign,
			Place: PlaceOf(name),
			Value: b.valuePlace(x.Init),
			At:    x.At,
		})
		b.scope().lets = append(b.scope().lets, name)
		b.collectBorrows(x.Init, loc, name)

	case *ast.Assign:
		loc := b.cfg.Append(b.cur, CFGStmt{
			Kind:  CFGAssign,
			Place: b.valuePlace(x.Target),
			Value: b.valuePlace(x.Value),
			At:    x.At,
		})
		var binder source.StringID
		if id := baseIdent(x.Target); id != nil {
			binder = b.intern(id.Name)
		}
		b.collectBorrows(x.Value, loc, binder)

	case *ast.ExprStmt:
		loc := b.cfg.Append(b.cur, CFGStmt{Kind: CFGAssign, At: x.At})
		b.collectBorrows(x.X, loc, 0)

	case *ast.Return:
		b.cfg.Append(b.cur, CFGStmt{Kind: CFGAssign, At: x.At})
		// Anything after a return is unreachable; give it a detached block.
		b.cur = b.cfg.NewBlock()

	case *ast.Block:
		b.pushScope()
		for _, inner := range x.Stmts {
			b.lowerStmt(inner)
		}
		b.popScope(x.At)

	case *ast.If:
		b.cfg.Append(b.cur, CFGStmt{Kind: CFGAssign, At: x.Cond.Span()})
		cond := b.cur
		join := b.cfg.NewBlock()

		then := b.cfg.NewBlock()
		b.cfg.Connect(cond, then)
		b.cur = then
		b.lowerBlock(x.Then)
		b.cfg.Connect(b.cur, join)

		if x.Else != nil {
			els := b.cfg.NewBlock()
			b.cfg.Connect(cond, els)
			b.cur = els
			b.lowerBlock(x.Else)
			b.cfg.Connect(b.cur, join)
		} else {
			b.cfg.Connect(cond, join)
		}
		b.cur = join

	case *ast.While:
		head := b.cfg.NewBlock()
		body := b.cfg.NewBlock()
		after := b.cfg.NewBlock()
		b.cfg.Connect(b.cur, head)
		b.cfg.Append(head, CFGStmt{Kind: CFGAssign, At: x.Cond.Span()})
		b.cfg.Connect(head, body)
		b.cfg.Connect(head, after)
		b.cur = body
		b.lowerBlock(x.Body)
		b.cfg.Connect(b.cur, head)
		b.cur = after

	case *ast.For:
		name := b.intern(x.Var)
		b.cfg.Append(b.cur, CFGStmt{Kind: CFGStorageLive, Place: PlaceOf(name), At: x.At})
		b.cfg.Append(b.cur, CFGStmt{Kind: CFGAssign, Place: PlaceOf(name), At: x.At})
		head := b.cfg.NewBlock()
		body := b.cfg.NewBlock()
		after := b.cfg.NewBlock()
		b.cfg.Connect(b.cur, head)
		b.cfg.Append(head, CFGStmt{Kind: CFGAssign, At: x.At})
		b.cfg.Connect(head, body)
		b.cfg.Connect(head, after)
		b.cur = body
		b.lowerBlock(x.Body)
		b.cfg.Connect(b.cur, head)
		b.cur = after
		b.cfg.Append(after, CFGStmt{Kind: CFGStorageDead, Place: PlaceOf(name), At: x.At})

	case *ast.Match:
		b.cfg.Append(b.cur, CFGStmt{Kind: CFGAssign, At: x.Subject.Span()})
		subject := b.cur
		join := b.cfg.NewBlock()
		for _, arm := range x.Arms {
			armBlock := b.cfg.NewBlock()
			b.cfg.Connect(subject, armBlock)
			b.cur = armBlock
			b.lowerBlock(arm.Body)
			b.cfg.Connect(b.cur, join)
		}
		if len(x.Arms) == 0 {
			b.cfg.Connect(subject, join)
		}
		b.cur = join
	}
}

func (b *cfgBuilder) lowerBlock(blk *ast.Block) {
	if blk == nil {
		return
	}
	b.pushScope()
	for _, s := range blk.Stmts {
		b.lowerStmt(s)
	}
	b.popScope(blk.At)
}

// collectBorrows registers every unannotated &place inside e as a pending
// borrow starting at loc. Lambda bodies are skipped: captured references are
// escape analysis territory, not region tracking.
func (b *cfgBuilder) collectBorrows(e ast.Expr, loc Loc, binder source.StringID) {
	if e == nil {
		return
	}
	walkExpr(e, func(inner ast.Expr) bool {
		switch r := inner.(type) {
		case *ast.Lambda:
			return false
		case *ast.Ref:
			if r.Lifetime != "" {
				return true
			}
			base := baseIdent(r.X)
			if base == nil {
				return true
			}
			sc := b.owningScope(binder)
			sc.borrows = append(sc.borrows, pendingBorrow{
				place:   PlaceOf(b.intern(base.Name)),
				mutable: r.Mutable,
				start:   loc,
				at:      r.At,
				binder:  binder,
			})
		}
		return true
	})
}

// valuePlace maps a place expression to its abstract place; anything else
// lowers to the empty place.
func (b *cfgBuilder) valuePlace(e ast.Expr) Place {
	if e == nil || !isPlaceExpr(e) {
		return Place{}
	}
	if id := baseIdent(e); id != nil {
		return PlaceOf(b.intern(id.Name))
	}
	return Place{}
}
