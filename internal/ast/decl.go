package ast

import "mica/internal/source"

type (
	// Param is a function parameter with a mandatory annotation.
	Param struct {
		Name string
		Type TypeExpr
		At   source.Span
	}

	// FuncDecl declares a named function. Result nil means unit.
	FuncDecl struct {
		Name      string
		Lifetimes []string // declared lifetime parameters, e.g. 'a
		Params    []Param
		Result    TypeExpr
		Body      *Block
		At        source.Span
	}

	// FieldDef is one declared struct field.
	FieldDef struct {
		Name string
		Type TypeExpr
		At   source.Span
	}

	// StructDecl declares a nominal struct type.
	StructDecl struct {
		Name   string
		Fields []FieldDef
		At     source.Span
	}

	// EnumDecl declares an enum as a list of bare variants.
	EnumDecl struct {
		Name     string
		Variants []string
		At       source.Span
	}

	// TypeAliasDecl binds a name to an existing type.
	TypeAliasDecl struct {
		Name    string
		Aliased TypeExpr
		At      source.Span
	}

	// GlobalLet is a top-level binding.
	GlobalLet struct {
		Let *Let
		At  source.Span
	}
)

func (d *FuncDecl) Span() source.Span      { return d.At }
func (d *StructDecl) Span() source.Span    { return d.At }
func (d *EnumDecl) Span() source.Span      { return d.At }
func (d *TypeAliasDecl) Span() source.Span { return d.At }
func (d *GlobalLet) Span() source.Span     { return d.At }

func (*FuncDecl) declNode()      {}
func (*StructDecl) declNode()    {}
func (*EnumDecl) declNode()      {}
func (*TypeAliasDecl) declNode() {}
func (*GlobalLet) declNode()     {}
