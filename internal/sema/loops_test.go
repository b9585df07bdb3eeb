package sema

import (
	"testing"

	"mica/internal/source"
)

func TestLoopUnrollFactorHalvesWithNesting(t *testing.T) {
	lo := NewLoopOptimizer(PolicyAggressive, 8)

	lo.EnterLoop()
	outer := lo.AnalyzeLoop(0, source.Span{})
	lo.EnterLoop()
	inner := lo.AnalyzeLoop(0, source.Span{})
	lo.EnterLoop()
	third := lo.AnalyzeLoop(0, source.Span{})
	lo.ExitLoop()
	lo.ExitLoop()
	lo.ExitLoop()

	if !outer.CanUnroll || outer.UnrollFactor != 8 {
		t.Fatalf("outer loop: CanUnroll=%v factor=%d, want true/8", outer.CanUnroll, outer.UnrollFactor)
	}
	if !inner.CanUnroll || inner.UnrollFactor != 4 {
		t.Fatalf("inner loop: CanUnroll=%v factor=%d, want true/4", inner.CanUnroll, inner.UnrollFactor)
	}
	if third.CanUnroll {
		t.Fatalf("loops nested deeper than two levels must not unroll")
	}
	if lo.Depth() != 0 {
		t.Fatalf("depth must return to zero, got %d", lo.Depth())
	}
}

func TestLoopTripCountGatesUnrollAndParallel(t *testing.T) {
	lo := NewLoopOptimizer(PolicyConservative, 4)
	lo.EnterLoop()

	small := lo.AnalyzeLoop(0, source.Span{})
	lo.SetTripCount(small, 10)
	if !small.CanUnroll || small.CanParallelize {
		t.Fatalf("10 trips: unrollable but not worth parallelizing, got %+v", small)
	}

	large := lo.AnalyzeLoop(0, source.Span{})
	lo.SetTripCount(large, 1000)
	if large.CanUnroll || large.UnrollFactor != 0 {
		t.Fatalf("1000 trips exceed the conservative ceiling, got %+v", large)
	}
	if !large.CanParallelize {
		t.Fatalf("1000 trips are worth parallelizing")
	}
	lo.ExitLoop()
}

func TestLoopSideEffectsKillVectorization(t *testing.T) {
	lo := NewLoopOptimizer(PolicyAggressive, 16)
	lo.EnterLoop()
	info := lo.AnalyzeLoop(0, source.Span{})
	if !info.Vectorizable || info.SIMDWidth != 16 {
		t.Fatalf("fresh loop must default to vectorizable at the configured width")
	}
	lo.MarkSideEffects(info)
	if info.Vectorizable || !info.HasSideEffects {
		t.Fatalf("side effects must clear vectorizability")
	}
	lo.ExitLoop()
}

func TestLoopMemoryPatternDrivesVectorization(t *testing.T) {
	lo := NewLoopOptimizer(PolicyAggressive, 4)
	lo.EnterLoop()
	info := lo.AnalyzeLoop(0, source.Span{})

	lo.SetMemoryPattern(info, MemPatternRandom)
	if info.Vectorizable {
		t.Fatalf("random access must disable vectorization")
	}
	lo.SetMemoryPattern(info, MemPatternSequential)
	if !info.Vectorizable {
		t.Fatalf("sequential access re-enables vectorization")
	}
	lo.ExitLoop()
}

func TestLoopOptimizerFallbackWidth(t *testing.T) {
	lo := NewLoopOptimizer(PolicyAggressive, 7)
	lo.EnterLoop()
	info := lo.AnalyzeLoop(0, source.Span{})
	lo.ExitLoop()
	if info.SIMDWidth != 4 {
		t.Fatalf("unsupported SIMD width must fall back to 4, got %d", info.SIMDWidth)
	}
}
