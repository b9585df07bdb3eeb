// Package ast describes the parsed program tree the semantic core consumes.
// The parser produces it; semantic analysis never mutates it.
package ast

import "mica/internal/source"

// Node is anything with a source position.
type Node interface {
	Span() source.Span
}

// Expr is the expression side of the tree.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the statement side of the tree.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// File is one compilation unit: an ordered list of top-level declarations.
type File struct {
	Path  string
	ID    source.FileID
	Decls []Decl
}
