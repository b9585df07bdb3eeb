package ast

import "mica/internal/source"

// TypeExpr is a syntactic type annotation. The checker resolves it into the
// canonical types.TypeID representation; no analysis happens on TypeExprs
// themselves.
type TypeExpr interface {
	Node
	typeExprNode()
}

type (
	// NamedType is `int`, `Point`, or `Vec[int]`.
	NamedType struct {
		Name string
		Args []TypeExpr
		At   source.Span
	}

	// FnType is `fn(int, int) -> bool`.
	FnType struct {
		Params []TypeExpr
		Result TypeExpr // nil means unit
		At     source.Span
	}

	// RefType is `&T` or `&mut T`, optionally with a named lifetime.
	RefType struct {
		Mutable  bool
		Lifetime string
		Elem     TypeExpr
		At       source.Span
	}

	// UnitType is `()`.
	UnitType struct {
		At source.Span
	}
)

func (t *NamedType) Span() source.Span { return t.At }
func (t *FnType) Span() source.Span    { return t.At }
func (t *RefType) Span() source.Span   { return t.At }
func (t *UnitType) Span() source.Span  { return t.At }

func (*NamedType) typeExprNode() {}
func (*FnType) typeExprNode()    {}
func (*RefType) typeExprNode()   {}
func (*UnitType) typeExprNode()  {}
