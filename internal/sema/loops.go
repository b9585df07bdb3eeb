package sema

import "mica/internal/source"

// MemoryPattern classifies how a loop touches memory.
type MemoryPattern uint8

const (
	MemPatternUnknown MemoryPattern = iota
	MemPatternSequential
	MemPatternStrided
	MemPatternRandom
)

func (m MemoryPattern) String() string {
	switch m {
	case MemPatternSequential:
		return "sequential"
	case MemPatternStrided:
		return "strided"
	case MemPatternRandom:
		return "random"
	}
	return "unknown"
}

// LoopInfo is advisory metadata for one loop. Codegen may consult it; the
// analysis itself never fails.
type LoopInfo struct {
	Invariant      bool
	CanUnroll      bool
	UnrollFactor   uint8
	InductionVar   source.StringID
	TripCount      uint32 // 0 = statically unknown
	HasSideEffects bool
	Vectorizable   bool
	SIMDWidth      uint8
	CanParallelize bool
	MemoryPattern  MemoryPattern
	At             source.Span
}

// Unroll ceilings per policy. Trip counts above the ceiling disable
// unrolling to bound code growth.
const (
	unrollCeilingAggressive   = 64
	unrollCeilingConservative = 16
	// parallelTripCount is the trip count from which parallel execution is
	// considered profitable.
	parallelTripCount = 100
	maxUnrollDepth    = 2
)

// LoopOptimizer tracks loop nesting and produces per-loop advisory metadata.
type LoopOptimizer struct {
	policy    AllocationPolicy
	simdWidth uint8
	depth     int
	loops     []*LoopInfo
}

// NewLoopOptimizer builds an optimizer for a target with the given SIMD lane
// count (4, 8 or 16); other values fall back to 4.
func NewLoopOptimizer(policy AllocationPolicy, simdWidth uint8) *LoopOptimizer {
	switch simdWidth {
	case 4, 8, 16:
	default:
		simdWidth = 4
	}
	return &LoopOptimizer{policy: policy, simdWidth: simdWidth}
}

// Depth reports the current loop nesting depth.
func (lo *LoopOptimizer) Depth() int { return lo.depth }

// Loops returns every analyzed loop in visit order.
func (lo *LoopOptimizer) Loops() []*LoopInfo { return lo.loops }

// EnterLoop increases the nesting depth. Pair with ExitLoop.
func (lo *LoopOptimizer) EnterLoop() { lo.depth++ }

// ExitLoop decreases the nesting depth.
func (lo *LoopOptimizer) ExitLoop() {
	if lo.depth > 0 {
		lo.depth--
	}
}

// AnalyzeLoop records default metadata for the loop at the current nesting
// depth: unrolling only at shallow depth with the factor halving per level,
// vectorizable and parallelizable until proven otherwise.
func (lo *LoopOptimizer) AnalyzeLoop(induction source.StringID, at source.Span) *LoopInfo {
	canUnroll := lo.depth <= maxUnrollDepth
	factor := uint8(0)
	if canUnroll {
		factor = 8 // halves per nesting level: depth 1 -> 8, depth 2 -> 4
		for d := 1; d < lo.depth; d++ {
			factor /= 2
		}
	}
	info := &LoopInfo{
		CanUnroll:      canUnroll,
		UnrollFactor:   factor,
		InductionVar:   induction,
		Vectorizable:   true,
		SIMDWidth:      lo.simdWidth,
		CanParallelize: true,
		MemoryPattern:  MemPatternUnknown,
		At:             at,
	}
	lo.loops = append(lo.loops, info)
	return info
}

// SetTripCount refines unroll and parallelization eligibility once the trip
// count is known.
func (lo *LoopOptimizer) SetTripCount(info *LoopInfo, trips uint32) {
	if info == nil {
		return
	}
	info.TripCount = trips
	ceiling := uint32(unrollCeilingConservative)
	if lo.policy == PolicyAggressive {
		ceiling = unrollCeilingAggressive
	}
	if trips > ceiling {
		info.CanUnroll = false
		info.UnrollFactor = 0
	}
	info.CanParallelize = trips >= parallelTripCount
}

// MarkSideEffects records that the body has observable effects, which kills
// vectorization.
func (lo *LoopOptimizer) MarkSideEffects(info *LoopInfo) {
	if info == nil {
		return
	}
	info.HasSideEffects = true
	info.Vectorizable = false
}

// SetMemoryPattern records the access pattern. Strictly sequential access
// re-enables vectorization, random access disables it.
func (lo *LoopOptimizer) SetMemoryPattern(info *LoopInfo, pattern MemoryPattern) {
	if info == nil {
		return
	}
	info.MemoryPattern = pattern
	switch pattern {
	case MemPatternSequential:
		info.Vectorizable = true
	case MemPatternRandom:
		info.Vectorizable = false
	}
}
