package ast

import "mica/internal/source"

// BinOp enumerates binary operators.
type BinOp uint8

const (
	BinInvalid BinOp = iota
	BinAdd
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
)

// IsComparison reports whether the operator yields bool regardless of its
// operand type.
func (op BinOp) IsComparison() bool {
	switch op {
	case BinEq, BinNe, BinLt, BinLe, BinGt, BinGe:
		return true
	}
	return false
}

// IsLogical reports whether the operator requires bool operands.
func (op BinOp) IsLogical() bool {
	return op == BinAnd || op == BinOr
}

func (op BinOp) String() string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinMod:
		return "%"
	case BinEq:
		return "=="
	case BinNe:
		return "!="
	case BinLt:
		return "<"
	case BinLe:
		return "<="
	case BinGt:
		return ">"
	case BinGe:
		return ">="
	case BinAnd:
		return "&&"
	case BinOr:
		return "||"
	}
	return "?"
}

// UnOp enumerates unary operators.
type UnOp uint8

const (
	UnInvalid UnOp = iota
	UnNeg
	UnNot
)

type (
	// IntLit is an integer literal.
	IntLit struct {
		Value int64
		At    source.Span
	}

	// FloatLit is a floating-point literal.
	FloatLit struct {
		Value float64
		At    source.Span
	}

	// StringLit is a string literal.
	StringLit struct {
		Value string
		At    source.Span
	}

	// BoolLit is true/false.
	BoolLit struct {
		Value bool
		At    source.Span
	}

	// UnitLit is the empty value ().
	UnitLit struct {
		At source.Span
	}

	// Ident references a named binding.
	Ident struct {
		Name string
		At   source.Span
	}

	// Binary applies an infix operator.
	Binary struct {
		Op    BinOp
		Left  Expr
		Right Expr
		At    source.Span
	}

	// Unary applies a prefix operator.
	Unary struct {
		Op UnOp
		X  Expr
		At source.Span
	}

	// Call invokes a callee with positional arguments.
	Call struct {
		Callee Expr
		Args   []Expr
		At     source.Span
	}

	// LambdaParam is one lambda parameter; Type may be nil (inferred).
	LambdaParam struct {
		Name string
		Type TypeExpr
		At   source.Span
	}

	// Lambda is an anonymous function whose body is a single expression.
	Lambda struct {
		Params []LambdaParam
		Body   Expr
		At     source.Span
	}

	// FieldAccess projects a named field out of a struct value.
	FieldAccess struct {
		X     Expr
		Field string
		At    source.Span
	}

	// Index projects an element out of an indexable value.
	Index struct {
		X   Expr
		Idx Expr
		At  source.Span
	}

	// Ref takes a reference: &x or &mut x. Lifetime is optional ("" = elided).
	Ref struct {
		Mutable  bool
		Lifetime string
		X        Expr
		At       source.Span
	}

	// Deref dereferences a reference value: *x.
	Deref struct {
		X  Expr
		At source.Span
	}

	// FieldInit is one `name: value` entry of a struct literal.
	FieldInit struct {
		Name  string
		Value Expr
		At    source.Span
	}

	// StructLit constructs a struct value field by field.
	StructLit struct {
		Name   string
		Fields []FieldInit
		At     source.Span
	}
)

func (e *IntLit) Span() source.Span      { return e.At }
func (e *FloatLit) Span() source.Span    { return e.At }
func (e *StringLit) Span() source.Span   { return e.At }
func (e *BoolLit) Span() source.Span     { return e.At }
func (e *UnitLit) Span() source.Span     { return e.At }
func (e *Ident) Span() source.Span       { return e.At }
func (e *Binary) Span() source.Span      { return e.At }
func (e *Unary) Span() source.Span       { return e.At }
func (e *Call) Span() source.Span        { return e.At }
func (e *Lambda) Span() source.Span      { return e.At }
func (e *FieldAccess) Span() source.Span { return e.At }
func (e *Index) Span() source.Span       { return e.At }
func (e *Ref) Span() source.Span         { return e.At }
func (e *Deref) Span() source.Span       { return e.At }
func (e *StructLit) Span() source.Span   { return e.At }

func (*IntLit) exprNode()      {}
func (*FloatLit) exprNode()    {}
func (*StringLit) exprNode()   {}
func (*BoolLit) exprNode()     {}
func (*UnitLit) exprNode()     {}
func (*Ident) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Unary) exprNode()       {}
func (*Call) exprNode()        {}
func (*Lambda) exprNode()      {}
func (*FieldAccess) exprNode() {}
func (*Index) exprNode()       {}
func (*Ref) exprNode()         {}
func (*Deref) exprNode()       {}
func (*StructLit) exprNode()   {}
