// Package astjson serializes the program tree to and from JSON. The
// toolchain ships no parser; upstream frontends emit this format and the
// driver decodes it into ast values for analysis.
//
// Every node is an object with a "kind" tag plus the fields of that node.
// Spans are [start, end) byte pairs into the unit's source; the file ID is
// bound at decode time.
package astjson

import (
	"encoding/json"
	"fmt"

	"mica/internal/ast"
	"mica/internal/source"
)

// node is the wire envelope shared by every AST node kind. Unused fields
// stay empty and are omitted on encode.
type node struct {
	Kind string     `json:"kind"`
	Span *[2]uint32 `json:"span,omitempty"`

	Name      string   `json:"name,omitempty"`
	Mutable   bool     `json:"mutable,omitempty"`
	Lifetime  string   `json:"lifetime,omitempty"`
	Lifetimes []string `json:"lifetimes,omitempty"`
	Variants  []string `json:"variants,omitempty"`
	Op        string   `json:"op,omitempty"`

	Int   *int64   `json:"int,omitempty"`
	Float *float64 `json:"float,omitempty"`
	Str   *string  `json:"str,omitempty"`
	Bool  *bool    `json:"bool,omitempty"`

	Type   *node `json:"type,omitempty"`
	Elem   *node `json:"elem,omitempty"`
	Result *node `json:"result,omitempty"`

	X       *node   `json:"x,omitempty"`
	Left    *node   `json:"left,omitempty"`
	Right   *node   `json:"right,omitempty"`
	Callee  *node   `json:"callee,omitempty"`
	Args    []*node `json:"args,omitempty"`
	Idx     *node   `json:"idx,omitempty"`
	Init    *node   `json:"init,omitempty"`
	Target  *node   `json:"target,omitempty"`
	Value   *node   `json:"value,omitempty"`
	Cond    *node   `json:"cond,omitempty"`
	Then    *node   `json:"then,omitempty"`
	Else    *node   `json:"else,omitempty"`
	From    *node   `json:"from,omitempty"`
	To      *node   `json:"to,omitempty"`
	Subject *node   `json:"subject,omitempty"`
	Body    *node   `json:"body,omitempty"`
	Stmts   []*node `json:"stmts,omitempty"`

	Params []param `json:"params,omitempty"`
	Fields []field `json:"fields,omitempty"`
	Arms   []arm   `json:"arms,omitempty"`
	Types  []*node `json:"types,omitempty"`
	Args2  []*node `json:"type_args,omitempty"`
}

type param struct {
	Name string     `json:"name"`
	Type *node      `json:"type,omitempty"`
	Span *[2]uint32 `json:"span,omitempty"`
}

type field struct {
	Name  string     `json:"name"`
	Type  *node      `json:"type,omitempty"`
	Value *node      `json:"value,omitempty"`
	Span  *[2]uint32 `json:"span,omitempty"`
}

type arm struct {
	Wildcard bool       `json:"wildcard,omitempty"`
	Enum     string     `json:"enum,omitempty"`
	Variant  string     `json:"variant,omitempty"`
	Body     *node      `json:"body"`
	Span     *[2]uint32 `json:"span,omitempty"`
}

type unitEnvelope struct {
	Decls []*node `json:"decls"`
}

// Decode parses src into an AST for the given file.
func Decode(fileID source.FileID, path string, src []byte) (*ast.File, error) {
	var envelope unitEnvelope
	if err := json.Unmarshal(src, &envelope); err != nil {
		return nil, fmt.Errorf("invalid AST JSON: %w", err)
	}
	d := decoder{file: fileID}
	decls := make([]ast.Decl, 0, len(envelope.Decls))
	for i, n := range envelope.Decls {
		decl, err := d.decl(n)
		if err != nil {
			return nil, fmt.Errorf("decl %d: %w", i, err)
		}
		decls = append(decls, decl)
	}
	return &ast.File{Path: path, ID: fileID, Decls: decls}, nil
}

// Frontend adapts Decode to the driver's frontend signature.
func Frontend(fileID source.FileID, path string, src []byte) (*ast.File, error) {
	return Decode(fileID, path, src)
}

type decoder struct {
	file source.FileID
}

func (d decoder) span(s *[2]uint32) source.Span {
	if s == nil {
		return source.Span{File: d.file}
	}
	return source.Span{File: d.file, Start: s[0], End: s[1]}
}

func (d decoder) decl(n *node) (ast.Decl, error) {
	if n == nil {
		return nil, fmt.Errorf("null declaration")
	}
	switch n.Kind {
	case "func":
		params := make([]ast.Param, 0, len(n.Params))
		for _, p := range n.Params {
			t, err := d.typeExpr(p.Type)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", p.Name, err)
			}
			params = append(params, ast.Param{Name: p.Name, Type: t, At: d.span(p.Span)})
		}
		var result ast.TypeExpr
		if n.Result != nil {
			t, err := d.typeExpr(n.Result)
			if err != nil {
				return nil, err
			}
			result = t
		}
		body, err := d.block(n.Body)
		if err != nil {
			return nil, fmt.Errorf("func %s: %w", n.Name, err)
		}
		return &ast.FuncDecl{
			Name: n.Name, Lifetimes: n.Lifetimes,
			Params: params, Result: result, Body: body,
			At: d.span(n.Span),
		}, nil
	case "struct":
		fields := make([]ast.FieldDef, 0, len(n.Fields))
		for _, f := range n.Fields {
			t, err := d.typeExpr(f.Type)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			fields = append(fields, ast.FieldDef{Name: f.Name, Type: t, At: d.span(f.Span)})
		}
		return &ast.StructDecl{Name: n.Name, Fields: fields, At: d.span(n.Span)}, nil
	case "enum":
		return &ast.EnumDecl{Name: n.Name, Variants: n.Variants, At: d.span(n.Span)}, nil
	case "alias":
		t, err := d.typeExpr(n.Type)
		if err != nil {
			return nil, fmt.Errorf("alias %s: %w", n.Name, err)
		}
		return &ast.TypeAliasDecl{Name: n.Name, Aliased: t, At: d.span(n.Span)}, nil
	case "global":
		let, err := d.stmt(n.Init)
		if err != nil {
			return nil, err
		}
		l, ok := let.(*ast.Let)
		if !ok {
			return nil, fmt.Errorf("global must wrap a let, got %q", n.Init.Kind)
		}
		return &ast.GlobalLet{Let: l, At: d.span(n.Span)}, nil
	}
	return nil, fmt.Errorf("unknown declaration kind %q", n.Kind)
}

func (d decoder) block(n *node) (*ast.Block, error) {
	if n == nil {
		return nil, fmt.Errorf("missing block")
	}
	if n.Kind != "block" {
		return nil, fmt.Errorf("expected block, got %q", n.Kind)
	}
	stmts := make([]ast.Stmt, 0, len(n.Stmts))
	for i, sn := range n.Stmts {
		s, err := d.stmt(sn)
		if err != nil {
			return nil, fmt.Errorf("stmt %d: %w", i, err)
		}
		stmts = append(stmts, s)
	}
	return &ast.Block{Stmts: stmts, At: d.span(n.Span)}, nil
}

func (d decoder) stmt(n *node) (ast.Stmt, error) {
	if n == nil {
		return nil, fmt.Errorf("null statement")
	}
	switch n.Kind {
	case "let":
		var t ast.TypeExpr
		if n.Type != nil {
			decoded, err := d.typeExpr(n.Type)
			if err != nil {
				return nil, err
			}
			t = decoded
		}
		var init ast.Expr
		if n.Init != nil {
			e, err := d.expr(n.Init)
			if err != nil {
				return nil, err
			}
			init = e
		}
		return &ast.Let{Name: n.Name, Mutable: n.Mutable, Type: t, Init: init, At: d.span(n.Span)}, nil
	case "assign":
		target, err := d.expr(n.Target)
		if err != nil {
			return nil, err
		}
		value, err := d.expr(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Target: target, Value: value, At: d.span(n.Span)}, nil
	case "expr":
		x, err := d.expr(n.X)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x, At: d.span(n.Span)}, nil
	case "return":
		var value ast.Expr
		if n.Value != nil {
			e, err := d.expr(n.Value)
			if err != nil {
				return nil, err
			}
			value = e
		}
		return &ast.Return{Value: value, At: d.span(n.Span)}, nil
	case "if":
		cond, err := d.expr(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.block(n.Then)
		if err != nil {
			return nil, err
		}
		var els *ast.Block
		if n.Else != nil {
			b, err := d.block(n.Else)
			if err != nil {
				return nil, err
			}
			els = b
		}
		return &ast.If{Cond: cond, Then: then, Else: els, At: d.span(n.Span)}, nil
	case "while":
		cond, err := d.expr(n.Cond)
		if err != nil {
			return nil, err
		}
		body, err := d.block(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.While{Cond: cond, Body: body, At: d.span(n.Span)}, nil
	case "for":
		from, err := d.expr(n.From)
		if err != nil {
			return nil, err
		}
		to, err := d.expr(n.To)
		if err != nil {
			return nil, err
		}
		body, err := d.block(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.For{Var: n.Name, From: from, To: to, Body: body, At: d.span(n.Span)}, nil
	case "block":
		return d.block(n)
	case "match":
		subject, err := d.expr(n.Subject)
		if err != nil {
			return nil, err
		}
		arms := make([]ast.MatchArm, 0, len(n.Arms))
		for i, a := range n.Arms {
			body, err := d.block(a.Body)
			if err != nil {
				return nil, fmt.Errorf("arm %d: %w", i, err)
			}
			var pattern *ast.VariantPattern
			if !a.Wildcard {
				pattern = &ast.VariantPattern{Enum: a.Enum, Variant: a.Variant, At: d.span(a.Span)}
			}
			arms = append(arms, ast.MatchArm{Pattern: pattern, Body: body, At: d.span(a.Span)})
		}
		return &ast.Match{Subject: subject, Arms: arms, At: d.span(n.Span)}, nil
	}
	return nil, fmt.Errorf("unknown statement kind %q", n.Kind)
}

func (d decoder) expr(n *node) (ast.Expr, error) {
	if n == nil {
		return nil, fmt.Errorf("null expression")
	}
	switch n.Kind {
	case "int":
		if n.Int == nil {
			return nil, fmt.Errorf("int literal without value")
		}
		return &ast.IntLit{Value: *n.Int, At: d.span(n.Span)}, nil
	case "float":
		if n.Float == nil {
			return nil, fmt.Errorf("float literal without value")
		}
		return &ast.FloatLit{Value: *n.Float, At: d.span(n.Span)}, nil
	case "string":
		if n.Str == nil {
			return nil, fmt.Errorf("string literal without value")
		}
		return &ast.StringLit{Value: *n.Str, At: d.span(n.Span)}, nil
	case "bool":
		if n.Bool == nil {
			return nil, fmt.Errorf("bool literal without value")
		}
		return &ast.BoolLit{Value: *n.Bool, At: d.span(n.Span)}, nil
	case "unit":
		return &ast.UnitLit{At: d.span(n.Span)}, nil
	case "ident":
		return &ast.Ident{Name: n.Name, At: d.span(n.Span)}, nil
	case "binary":
		op, ok := binOps[n.Op]
		if !ok {
			return nil, fmt.Errorf("unknown binary operator %q", n.Op)
		}
		left, err := d.expr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.expr(n.Right)
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Op: op, Left: left, Right: right, At: d.span(n.Span)}, nil
	case "unary":
		op, ok := unOps[n.Op]
		if !ok {
			return nil, fmt.Errorf("unknown unary operator %q", n.Op)
		}
		x, err := d.expr(n.X)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, X: x, At: d.span(n.Span)}, nil
	case "call":
		callee, err := d.expr(n.Callee)
		if err != nil {
			return nil, err
		}
		args := make([]ast.Expr, 0, len(n.Args))
		for i, an := range n.Args {
			a, err := d.expr(an)
			if err != nil {
				return nil, fmt.Errorf("arg %d: %w", i, err)
			}
			args = append(args, a)
		}
		return &ast.Call{Callee: callee, Args: args, At: d.span(n.Span)}, nil
	case "lambda":
		params := make([]ast.LambdaParam, 0, len(n.Params))
		for _, p := range n.Params {
			var t ast.TypeExpr
			if p.Type != nil {
				decoded, err := d.typeExpr(p.Type)
				if err != nil {
					return nil, err
				}
				t = decoded
			}
			params = append(params, ast.LambdaParam{Name: p.Name, Type: t, At: d.span(p.Span)})
		}
		body, err := d.expr(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Lambda{Params: params, Body: body, At: d.span(n.Span)}, nil
	case "field":
		x, err := d.expr(n.X)
		if err != nil {
			return nil, err
		}
		return &ast.FieldAccess{X: x, Field: n.Name, At: d.span(n.Span)}, nil
	case "index":
		x, err := d.expr(n.X)
		if err != nil {
			return nil, err
		}
		idx, err := d.expr(n.Idx)
		if err != nil {
			return nil, err
		}
		return &ast.Index{X: x, Idx: idx, At: d.span(n.Span)}, nil
	case "ref":
		x, err := d.expr(n.X)
		if err != nil {
			return nil, err
		}
		return &ast.Ref{Mutable: n.Mutable, Lifetime: n.Lifetime, X: x, At: d.span(n.Span)}, nil
	case "deref":
		x, err := d.expr(n.X)
		if err != nil {
			return nil, err
		}
		return &ast.Deref{X: x, At: d.span(n.Span)}, nil
	case "struct_lit":
		fields := make([]ast.FieldInit, 0, len(n.Fields))
		for _, f := range n.Fields {
			v, err := d.expr(f.Value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			fields = append(fields, ast.FieldInit{Name: f.Name, Value: v, At: d.span(f.Span)})
		}
		return &ast.StructLit{Name: n.Name, Fields: fields, At: d.span(n.Span)}, nil
	}
	return nil, fmt.Errorf("unknown expression kind %q", n.Kind)
}

func (d decoder) typeExpr(n *node) (ast.TypeExpr, error) {
	if n == nil {
		return nil, fmt.Errorf("missing type")
	}
	switch n.Kind {
	case "named":
		args := make([]ast.TypeExpr, 0, len(n.Args2))
		for i, an := range n.Args2 {
			a, err := d.typeExpr(an)
			if err != nil {
				return nil, fmt.Errorf("type arg %d: %w", i, err)
			}
			args = append(args, a)
		}
		return &ast.NamedType{Name: n.Name, Args: args, At: d.span(n.Span)}, nil
	case "fn":
		params := make([]ast.TypeExpr, 0, len(n.Types))
		for i, pn := range n.Types {
			p, err := d.typeExpr(pn)
			if err != nil {
				return nil, fmt.Errorf("fn param %d: %w", i, err)
			}
			params = append(params, p)
		}
		var result ast.TypeExpr
		if n.Result != nil {
			r, err := d.typeExpr(n.Result)
			if err != nil {
				return nil, err
			}
			result = r
		}
		return &ast.FnType{Params: params, Result: result, At: d.span(n.Span)}, nil
	case "ref":
		elem, err := d.typeExpr(n.Elem)
		if err != nil {
			return nil, err
		}
		return &ast.RefType{Mutable: n.Mutable, Lifetime: n.Lifetime, Elem: elem, At: d.span(n.Span)}, nil
	case "unit":
		return &ast.UnitType{At: d.span(n.Span)}, nil
	}
	return nil, fmt.Errorf("unknown type kind %q", n.Kind)
}

var binOps = map[string]ast.BinOp{
	"+": ast.BinAdd, "-": ast.BinSub, "*": ast.BinMul, "/": ast.BinDiv,
	"%": ast.BinMod, "==": ast.BinEq, "!=": ast.BinNe, "<": ast.BinLt,
	"<=": ast.BinLe, ">": ast.BinGt, ">=": ast.BinGe,
	"&&": ast.BinAnd, "||": ast.BinOr,
}

var unOps = map[string]ast.UnOp{
	"-": ast.UnNeg, "!": ast.UnNot,
}
