package sema

import (
	"fmt"

	"fortio.org/safecast"

	"mica/internal/source"
)

// BlockID identifies a basic block inside one ControlFlowGraph.
type BlockID uint32

// NoBlockID marks the absence of a block.
const NoBlockID BlockID = 0

// IsValid reports whether the block ID refers to an allocated block.
func (id BlockID) IsValid() bool { return id != NoBlockID }

// Loc is a program location: a statement slot inside a basic block.
type Loc struct {
	Block BlockID
	Stmt  uint32
}

func (l Loc) String() string {
	return fmt.Sprintf("bb%d[%d]", l.Block, l.Stmt)
}

// Region is the half-open interval [Start, End) of locations during which a
// borrow is live.
type Region struct {
	Start Loc
	End   Loc
}

// CFGStmtKind enumerates the statement shapes blocks carry.
type CFGStmtKind uint8

const (
	CFGAssign CFGStmtKind = iota
	CFGStorageLive
	CFGStorageDead
)

// CFGStmt is one lowered statement. Assign writes Value into Place;
// StorageLive/StorageDead bracket a variable's allocation.
type CFGStmt struct {
	Kind  CFGStmtKind
	Place Place
	Value Place // meaningful for CFGAssign only
	At    source.Span
}

// BasicBlock holds an ordered statement list and successor edges.
type BasicBlock struct {
	ID    BlockID
	Stmts []CFGStmt
	Succs []BlockID
}

// ControlFlowGraph stores basic blocks in an arena keyed by BlockID.
type ControlFlowGraph struct {
	blocks []BasicBlock
	entry  BlockID
}

func NewControlFlowGraph() *ControlFlowGraph {
	return &ControlFlowGraph{
		blocks: make([]BasicBlock, 1, 9), // slot 0 reserved for NoBlockID
	}
}

// NewBlock allocates an empty basic block.
func (g *ControlFlowGraph) NewBlock() BlockID {
	value, err := safecast.Conv[uint32](len(g.blocks))
	if err != nil {
		panic(fmt.Errorf("cfg block overflow: %w", err))
	}
	id := BlockID(value)
	g.blocks = append(g.blocks, BasicBlock{ID: id})
	if !g.entry.IsValid() {
		g.entry = id
	}
	return id
}

// Entry returns the entry block.
func (g *ControlFlowGraph) Entry() BlockID { return g.entry }

// Block returns the block for id, or nil.
func (g *ControlFlowGraph) Block(id BlockID) *BasicBlock {
	if !id.IsValid() || int(id) >= len(g.blocks) {
		return nil
	}
	return &g.blocks[id]
}

// Blocks returns all allocated blocks in allocation order.
func (g *ControlFlowGraph) Blocks() []BasicBlock {
	if len(g.blocks) <= 1 {
		return nil
	}
	return g.blocks[1:]
}

// Len reports the number of blocks excluding the sentinel.
func (g *ControlFlowGraph) Len() int { return len(g.blocks) - 1 }

// Append adds a statement to the block and returns its location.
func (g *ControlFlowGraph) Append(id BlockID, stmt CFGStmt) Loc {
	b := g.Block(id)
	if b == nil {
		return Loc{}
	}
	loc := Loc{Block: id, Stmt: uint32(len(b.Stmts))}
	b.Stmts = append(b.Stmts, stmt)
	return loc
}

// Connect adds an edge from one block to another.
func (g *ControlFlowGraph) Connect(from, to BlockID) {
	b := g.Block(from)
	if b == nil || !to.IsValid() {
		return
	}
	for _, s := range b.Succs {
		if s == to {
			return
		}
	}
	b.Succs = append(b.Succs, to)
}

// Preds computes predecessor lists for all blocks.
func (g *ControlFlowGraph) Preds() map[BlockID][]BlockID {
	preds := make(map[BlockID][]BlockID, g.Len())
	for i := range g.blocks[1:] {
		from := BlockID(i + 1)
		for _, to := range g.blocks[from].Succs {
			preds[to] = append(preds[to], from)
		}
	}
	return preds
}
