package ast

import "mica/internal/source"

type (
	// Let declares a binding. Type may be nil (inferred from Init).
	Let struct {
		Name    string
		Mutable bool
		Type    TypeExpr
		Init    Expr
		At      source.Span
	}

	// Assign writes Value into an existing place.
	Assign struct {
		Target Expr
		Value  Expr
		At     source.Span
	}

	// ExprStmt evaluates an expression for its effects.
	ExprStmt struct {
		X  Expr
		At source.Span
	}

	// Return exits the enclosing function. Value may be nil.
	Return struct {
		Value Expr
		At    source.Span
	}

	// If branches on a condition. Else may be nil.
	If struct {
		Cond Expr
		Then *Block
		Else *Block
		At   source.Span
	}

	// While loops while the condition holds.
	While struct {
		Cond Expr
		Body *Block
		At   source.Span
	}

	// For is a counted loop over an integer range [From, To).
	For struct {
		Var  string
		From Expr
		To   Expr
		Body *Block
		At   source.Span
	}

	// Block is a brace-delimited statement list with its own scope.
	Block struct {
		Stmts []Stmt
		At    source.Span
	}

	// MatchArm is one pattern plus its body. A nil Pattern is the wildcard.
	MatchArm struct {
		Pattern *VariantPattern
		Body    *Block
		At      source.Span
	}

	// Match dispatches on the enum variant of Subject.
	Match struct {
		Subject Expr
		Arms    []MatchArm
		At      source.Span
	}
)

// VariantPattern matches one enum variant by name.
type VariantPattern struct {
	Enum    string // optional qualifier; "" when written bare
	Variant string
	At      source.Span
}

func (s *Let) Span() source.Span      { return s.At }
func (s *Assign) Span() source.Span   { return s.At }
func (s *ExprStmt) Span() source.Span { return s.At }
func (s *Return) Span() source.Span   { return s.At }
func (s *If) Span() source.Span       { return s.At }
func (s *While) Span() source.Span    { return s.At }
func (s *For) Span() source.Span      { return s.At }
func (s *Block) Span() source.Span    { return s.At }
func (s *Match) Span() source.Span    { return s.At }

func (*Let) stmtNode()      {}
func (*Assign) stmtNode()   {}
func (*ExprStmt) stmtNode() {}
func (*Return) stmtNode()   {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*For) stmtNode()      {}
func (*Block) stmtNode()    {}
func (*Match) stmtNode()    {}
