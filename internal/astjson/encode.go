package astjson

import (
	"encoding/json"
	"fmt"

	"mica/internal/ast"
	"mica/internal/source"
)

// Encode serializes a file back into the wire format. Decode(Encode(f))
// yields an equivalent tree; only file IDs inside spans are rebound.
func Encode(file *ast.File) ([]byte, error) {
	decls := make([]*node, 0, len(file.Decls))
	for i, decl := range file.Decls {
		n, err := encodeDecl(decl)
		if err != nil {
			return nil, fmt.Errorf("decl %d: %w", i, err)
		}
		decls = append(decls, n)
	}
	return json.MarshalIndent(unitEnvelope{Decls: decls}, "", "  ")
}

func encodeSpan(sp source.Span) *[2]uint32 {
	if sp.Empty() {
		return nil
	}
	return &[2]uint32{sp.Start, sp.End}
}

func encodeDecl(decl ast.Decl) (*node, error) {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		params := make([]param, 0, len(d.Params))
		for _, p := range d.Params {
			t, err := encodeType(p.Type)
			if err != nil {
				return nil, err
			}
			params = append(params, param{Name: p.Name, Type: t, Span: encodeSpan(p.At)})
		}
		var result *node
		if d.Result != nil {
			r, err := encodeType(d.Result)
			if err != nil {
				return nil, err
			}
			result = r
		}
		body, err := encodeBlock(d.Body)
		if err != nil {
			return nil, err
		}
		return &node{
			Kind: "func", Name: d.Name, Lifetimes: d.Lifetimes,
			Params: params, Result: result, Body: body, Span: encodeSpan(d.At),
		}, nil
	case *ast.StructDecl:
		fields := make([]field, 0, len(d.Fields))
		for _, f := range d.Fields {
			t, err := encodeType(f.Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field{Name: f.Name, Type: t, Span: encodeSpan(f.At)})
		}
		return &node{Kind: "struct", Name: d.Name, Fields: fields, Span: encodeSpan(d.At)}, nil
	case *ast.EnumDecl:
		return &node{Kind: "enum", Name: d.Name, Variants: d.Variants, Span: encodeSpan(d.At)}, nil
	case *ast.TypeAliasDecl:
		t, err := encodeType(d.Aliased)
		if err != nil {
			return nil, err
		}
		return &node{Kind: "alias", Name: d.Name, Type: t, Span: encodeSpan(d.At)}, nil
	case *ast.GlobalLet:
		let, err := encodeStmt(d.Let)
		if err != nil {
			return nil, err
		}
		return &node{Kind: "global", Init: let, Span: encodeSpan(d.At)}, nil
	}
	return nil, fmt.Errorf("unsupported declaration %T", decl)
}

func encodeBlock(b *ast.Block) (*node, error) {
	if b == nil {
		return nil, fmt.Errorf("nil block")
	}
	stmts := make([]*node, 0, len(b.Stmts))
	for i, s := range b.Stmts {
		n, err := encodeStmt(s)
		if err != nil {
			return nil, fmt.Errorf("stmt %d: %w", i, err)
		}
		stmts = append(stmts, n)
	}
	return &node{Kind: "block", Stmts: stmts, Span: encodeSpan(b.At)}, nil
}

func encodeStmt(stmt ast.Stmt) (*node, error) {
	switch s := stmt.(type) {
	case *ast.Let:
		n := &node{Kind: "let", Name: s.Name, Mutable: s.Mutable, Span: encodeSpan(s.At)}
		if s.Type != nil {
			t, err := encodeType(s.Type)
			if err != nil {
				return nil, err
			}
			n.Type = t
		}
		if s.Init != nil {
			init, err := encodeExpr(s.Init)
			if err != nil {
				return nil, err
			}
			n.Init = init
		}
		return n, nil
	case *ast.Assign:
		target, err := encodeExpr(s.Target)
		if err != nil {
			return nil, err
		}
		value, err := encodeExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return &node{Kind: "assign", Target: target, Value: value, Span: encodeSpan(s.At)}, nil
	case *ast.ExprStmt:
		x, err := encodeExpr(s.X)
		if err != nil {
			return nil, err
		}
		return &node{Kind: "expr", X: x, Span: encodeSpan(s.At)}, nil
	case *ast.Return:
		n := &node{Kind: "return", Span: encodeSpan(s.At)}
		if s.Value != nil {
			value, err := encodeExpr(s.Value)
			if err != nil {
				return nil, err
			}
			n.Value = value
		}
		return n, nil
	case *ast.If:
		cond, err := encodeExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		then, err := encodeBlock(s.Then)
		if err != nil {
			return nil, err
		}
		n := &node{Kind: "if", Cond: cond, Then: then, Span: encodeSpan(s.At)}
		if s.Else != nil {
			els, err := encodeBlock(s.Else)
			if err != nil {
				return nil, err
			}
			n.Else = els
		}
		return n, nil
	case *ast.While:
		cond, err := encodeExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		body, err := encodeBlock(s.Body)
		if err != nil {
			return nil, err
		}
		return &node{Kind: "while", Cond: cond, Body: body, Span: encodeSpan(s.At)}, nil
	case *ast.For:
		from, err := encodeExpr(s.From)
		if err != nil {
			return nil, err
		}
		to, err := encodeExpr(s.To)
		if err != nil {
			return nil, err
		}
		body, err := encodeBlock(s.Body)
		if err != nil {
			return nil, err
		}
		return &node{Kind: "for", Name: s.Var, From: from, To: to, Body: body, Span: encodeSpan(s.At)}, nil
	case *ast.Block:
		return encodeBlock(s)
	case *ast.Match:
		subject, err := encodeExpr(s.Subject)
		if err != nil {
			return nil, err
		}
		arms := make([]arm, 0, len(s.Arms))
		for i, a := range s.Arms {
			body, err := encodeBlock(a.Body)
			if err != nil {
				return nil, fmt.Errorf("arm %d: %w", i, err)
			}
			out := arm{Body: body, Span: encodeSpan(a.At)}
			if a.Pattern == nil {
				out.Wildcard = true
			} else {
				out.Enum = a.Pattern.Enum
				out.Variant = a.Pattern.Variant
			}
			arms = append(arms, out)
		}
		return &node{Kind: "match", Subject: subject, Arms: arms, Span: encodeSpan(s.At)}, nil
	}
	return nil, fmt.Errorf("unsupported statement %T", stmt)
}

func encodeExpr(expr ast.Expr) (*node, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		v := e.Value
		return &node{Kind: "int", Int: &v, Span: encodeSpan(e.At)}, nil
	case *ast.FloatLit:
		v := e.Value
		return &node{Kind: "float", Float: &v, Span: encodeSpan(e.At)}, nil
	case *ast.StringLit:
		v := e.Value
		return &node{Kind: "string", Str: &v, Span: encodeSpan(e.At)}, nil
	case *ast.BoolLit:
		v := e.Value
		return &node{Kind: "bool", Bool: &v, Span: encodeSpan(e.At)}, nil
	case *ast.UnitLit:
		return &node{Kind: "unit", Span: encodeSpan(e.At)}, nil
	case *ast.Ident:
		return &node{Kind: "ident", Name: e.Name, Span: encodeSpan(e.At)}, nil
	case *ast.Binary:
		left, err := encodeExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := encodeExpr(e.Right)
		if err != nil {
			return nil, err
		}
		return &node{Kind: "binary", Op: e.Op.String(), Left: left, Right: right, Span: encodeSpan(e.At)}, nil
	case *ast.Unary:
		x, err := encodeExpr(e.X)
		if err != nil {
			return nil, err
		}
		op := "-"
		if e.Op == ast.UnNot {
			op = "!"
		}
		return &node{Kind: "unary", Op: op, X: x, Span: encodeSpan(e.At)}, nil
	case *ast.Call:
		callee, err := encodeExpr(e.Callee)
		if err != nil {
			return nil, err
		}
		args := make([]*node, 0, len(e.Args))
		for i, a := range e.Args {
			n, err := encodeExpr(a)
			if err != nil {
				return nil, fmt.Errorf("arg %d: %w", i, err)
			}
			args = append(args, n)
		}
		return &node{Kind: "call", Callee: callee, Args: args, Span: encodeSpan(e.At)}, nil
	case *ast.Lambda:
		params := make([]param, 0, len(e.Params))
		for _, p := range e.Params {
			out := param{Name: p.Name, Span: encodeSpan(p.At)}
			if p.Type != nil {
				t, err := encodeType(p.Type)
				if err != nil {
					return nil, err
				}
				out.Type = t
			}
			params = append(params, out)
		}
		body, err := encodeExpr(e.Body)
		if err != nil {
			return nil, err
		}
		return &node{Kind: "lambda", Params: params, Body: body, Span: encodeSpan(e.At)}, nil
	case *ast.FieldAccess:
		x, err := encodeExpr(e.X)
		if err != nil {
			return nil, err
		}
		return &node{Kind: "field", X: x, Name: e.Field, Span: encodeSpan(e.At)}, nil
	case *ast.Index:
		x, err := encodeExpr(e.X)
		if err != nil {
			return nil, err
		}
		idx, err := encodeExpr(e.Idx)
		if err != nil {
			return nil, err
		}
		return &node{Kind: "index", X: x, Idx: idx, Span: encodeSpan(e.At)}, nil
	case *ast.Ref:
		x, err := encodeExpr(e.X)
		if err != nil {
			return nil, err
		}
		return &node{Kind: "ref", Mutable: e.Mutable, Lifetime: e.Lifetime, X: x, Span: encodeSpan(e.At)}, nil
	case *ast.Deref:
		x, err := encodeExpr(e.X)
		if err != nil {
			return nil, err
		}
		return &node{Kind: "deref", X: x, Span: encodeSpan(e.At)}, nil
	case *ast.StructLit:
		fields := make([]field, 0, len(e.Fields))
		for _, f := range e.Fields {
			v, err := encodeExpr(f.Value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			fields = append(fields, field{Name: f.Name, Value: v, Span: encodeSpan(f.At)})
		}
		return &node{Kind: "struct_lit", Name: e.Name, Fields: fields, Span: encodeSpan(e.At)}, nil
	}
	return nil, fmt.Errorf("unsupported expression %T", expr)
}

func encodeType(t ast.TypeExpr) (*node, error) {
	switch te := t.(type) {
	case *ast.NamedType:
		args := make([]*node, 0, len(te.Args))
		for i, a := range te.Args {
			n, err := encodeType(a)
			if err != nil {
				return nil, fmt.Errorf("type arg %d: %w", i, err)
			}
			args = append(args, n)
		}
		return &node{Kind: "named", Name: te.Name, Args2: args, Span: encodeSpan(te.At)}, nil
	case *ast.FnType:
		params := make([]*node, 0, len(te.Params))
		for i, p := range te.Params {
			n, err := encodeType(p)
			if err != nil {
				return nil, fmt.Errorf("fn param %d: %w", i, err)
			}
			params = append(params, n)
		}
		var result *node
		if te.Result != nil {
			r, err := encodeType(te.Result)
			if err != nil {
				return nil, err
			}
			result = r
		}
		return &node{Kind: "fn", Types: params, Result: result, Span: encodeSpan(te.At)}, nil
	case *ast.RefType:
		elem, err := encodeType(te.Elem)
		if err != nil {
			return nil, err
		}
		return &node{Kind: "ref", Mutable: te.Mutable, Lifetime: te.Lifetime, Elem: elem, Span: encodeSpan(te.At)}, nil
	case *ast.UnitType:
		return &node{Kind: "unit", Span: encodeSpan(te.At)}, nil
	}
	return nil, fmt.Errorf("unsupported type %T", t)
}
