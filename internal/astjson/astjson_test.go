package astjson

import (
	"strings"
	"testing"

	"mica/internal/ast"
)

const sampleUnit = `{
  "decls": [
    {
      "kind": "struct",
      "name": "Point",
      "fields": [
        {"name": "x", "type": {"kind": "named", "name": "int"}},
        {"name": "y", "type": {"kind": "named", "name": "int"}}
      ]
    },
    {
      "kind": "func",
      "name": "norm",
      "params": [{"name": "p", "type": {"kind": "ref", "elem": {"kind": "named", "name": "Point"}}}],
      "result": {"kind": "named", "name": "int"},
      "body": {
        "kind": "block",
        "stmts": [
          {
            "kind": "return",
            "value": {
              "kind": "binary",
              "op": "+",
              "left": {"kind": "field", "x": {"kind": "deref", "x": {"kind": "ident", "name": "p"}}, "name": "x"},
              "right": {"kind": "field", "x": {"kind": "deref", "x": {"kind": "ident", "name": "p"}}, "name": "y"}
            }
          }
        ]
      },
      "span": [0, 42]
    }
  ]
}`

func TestDecodeSampleUnit(t *testing.T) {
	file, err := Decode(3, "norm.mica", []byte(sampleUnit))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(file.Decls) != 2 {
		t.Fatalf("decls = %d, want 2", len(file.Decls))
	}

	st, ok := file.Decls[0].(*ast.StructDecl)
	if !ok || st.Name != "Point" || len(st.Fields) != 2 {
		t.Fatalf("first decl = %#v", file.Decls[0])
	}

	fn, ok := file.Decls[1].(*ast.FuncDecl)
	if !ok || fn.Name != "norm" {
		t.Fatalf("second decl = %#v", file.Decls[1])
	}
	if fn.At.File != 3 || fn.At.Start != 0 || fn.At.End != 42 {
		t.Errorf("span not rebound to unit file: %+v", fn.At)
	}
	if len(fn.Params) != 1 {
		t.Fatalf("params = %d", len(fn.Params))
	}
	if _, ok := fn.Params[0].Type.(*ast.RefType); !ok {
		t.Errorf("param type = %#v, want RefType", fn.Params[0].Type)
	}

	ret, ok := fn.Body.Stmts[0].(*ast.Return)
	if !ok {
		t.Fatalf("body stmt = %#v", fn.Body.Stmts[0])
	}
	bin, ok := ret.Value.(*ast.Binary)
	if !ok || bin.Op != ast.BinAdd {
		t.Fatalf("return value = %#v", ret.Value)
	}
}

func TestDecodeMatchAndWildcard(t *testing.T) {
	src := `{
	  "decls": [{
	    "kind": "func", "name": "main",
	    "body": {"kind": "block", "stmts": [{
	      "kind": "match",
	      "subject": {"kind": "ident", "name": "c"},
	      "arms": [
	        {"enum": "Color", "variant": "Red", "body": {"kind": "block"}},
	        {"wildcard": true, "body": {"kind": "block"}}
	      ]
	    }]}
	  }]
	}`
	file, err := Decode(0, "m.mica", []byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fn := file.Decls[0].(*ast.FuncDecl)
	m := fn.Body.Stmts[0].(*ast.Match)
	if len(m.Arms) != 2 {
		t.Fatalf("arms = %d", len(m.Arms))
	}
	if m.Arms[0].Pattern == nil || m.Arms[0].Pattern.Variant != "Red" || m.Arms[0].Pattern.Enum != "Color" {
		t.Errorf("first arm pattern = %#v", m.Arms[0].Pattern)
	}
	if m.Arms[1].Pattern != nil {
		t.Errorf("wildcard arm must decode to a nil pattern")
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"bad json", `{"decls": [}`, "invalid AST JSON"},
		{"unknown decl", `{"decls": [{"kind": "trait"}]}`, "unknown declaration kind"},
		{"unknown op", `{"decls": [{"kind": "func", "name": "f", "body": {"kind": "block", "stmts": [
			{"kind": "expr", "x": {"kind": "binary", "op": "**",
			 "left": {"kind": "int", "int": 1}, "right": {"kind": "int", "int": 2}}}]}}]}`,
			"unknown binary operator"},
		{"func without body", `{"decls": [{"kind": "func", "name": "f"}]}`, "missing block"},
		{"literal without value", `{"decls": [{"kind": "func", "name": "f", "body": {"kind": "block", "stmts": [
			{"kind": "expr", "x": {"kind": "int"}}]}}]}`, "int literal without value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(0, "bad.mica", []byte(tc.src))
			if err == nil {
				t.Fatal("Decode accepted malformed input")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want substring %q", err, tc.want)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := &ast.File{Path: "rt.mica", Decls: []ast.Decl{
		&ast.EnumDecl{Name: "Color", Variants: []string{"Red", "Green", "Blue"}},
		&ast.FuncDecl{
			Name:      "pick",
			Lifetimes: []string{"a"},
			Params:    []ast.Param{{Name: "n", Type: &ast.NamedType{Name: "int"}}},
			Result:    &ast.NamedType{Name: "Color"},
			Body: &ast.Block{Stmts: []ast.Stmt{
				&ast.Let{Name: "half", Mutable: true, Init: &ast.Binary{
					Op:   ast.BinDiv,
					Left: &ast.Ident{Name: "n"}, Right: &ast.IntLit{Value: 2},
				}},
				&ast.If{
					Cond: &ast.Binary{Op: ast.BinLt, Left: &ast.Ident{Name: "half"}, Right: &ast.IntLit{Value: 10}},
					Then: &ast.Block{Stmts: []ast.Stmt{
						&ast.Return{Value: &ast.Ident{Name: "Red"}},
					}},
				},
				&ast.Return{Value: &ast.Ident{Name: "Blue"}},
			}},
		},
	}}

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(0, "rt.mica", data)
	if err != nil {
		t.Fatalf("Decode of encoded output: %v", err)
	}

	enum := decoded.Decls[0].(*ast.EnumDecl)
	if len(enum.Variants) != 3 || enum.Variants[2] != "Blue" {
		t.Errorf("enum lost variants: %v", enum.Variants)
	}
	fn := decoded.Decls[1].(*ast.FuncDecl)
	if len(fn.Lifetimes) != 1 || fn.Lifetimes[0] != "a" {
		t.Errorf("lifetimes lost: %v", fn.Lifetimes)
	}
	if len(fn.Body.Stmts) != 3 {
		t.Fatalf("body stmts = %d, want 3", len(fn.Body.Stmts))
	}
	let := fn.Body.Stmts[0].(*ast.Let)
	if !let.Mutable || let.Name != "half" {
		t.Errorf("let lost mutability or name: %#v", let)
	}
	ifStmt := fn.Body.Stmts[1].(*ast.If)
	if ifStmt.Else != nil {
		t.Error("nil else grew a block through the round trip")
	}
}
