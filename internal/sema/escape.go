package sema

import (
	"sort"

	"mica/internal/source"
)

// AllocationPolicy selects how eagerly values are kept on the stack.
type AllocationPolicy uint8

const (
	// PolicyAggressive keeps values on the stack up to a large threshold and
	// additionally consults recorded lifetime estimates.
	PolicyAggressive AllocationPolicy = iota
	// PolicyConservative uses a small stack ceiling and ignores lifetimes.
	PolicyConservative
)

func (p AllocationPolicy) String() string {
	if p == PolicyConservative {
		return "conservative"
	}
	return "aggressive"
}

// Default stack ceilings in bytes per policy.
const (
	DefaultAggressiveStackLimit   = 4096
	DefaultConservativeStackLimit = 1024
	// shortLifetimeLimit is the instruction-count bound under which an
	// aggressive policy keeps even large values on the stack.
	shortLifetimeLimit = 32
)

// EscapeInfo tracks why a variable escapes. Flags are monotone: once set
// they are never cleared, later discoveries only add reasons.
type EscapeInfo struct {
	Escapes       bool
	CapturedByRef bool
	AddressTaken  bool
}

// Any reports whether any escape reason is recorded.
func (e EscapeInfo) Any() bool {
	return e.Escapes || e.CapturedByRef || e.AddressTaken
}

// escapeKey is the composite map key: no string concatenation, no
// collisions between contexts.
type escapeKey struct {
	Context source.StringID
	Name    source.StringID
}

// EscapeAnalyzer classifies variables as stack- or heap-allocated based on
// recorded escape facts, sizes, and estimated lifetimes. It produces queries
// for the code generator; it performs no allocation itself.
type EscapeAnalyzer struct {
	policy     AllocationPolicy
	stackLimit uint32
	info       map[escapeKey]EscapeInfo
	sizes      map[escapeKey]uint32
	lifetimes  map[escapeKey]uint32 // in instruction-count units
}

// NewEscapeAnalyzer builds an analyzer under the given policy. A zero
// stackLimit selects the policy default.
func NewEscapeAnalyzer(policy AllocationPolicy, stackLimit uint32) *EscapeAnalyzer {
	if stackLimit == 0 {
		if policy == PolicyConservative {
			stackLimit = DefaultConservativeStackLimit
		} else {
			stackLimit = DefaultAggressiveStackLimit
		}
	}
	return &EscapeAnalyzer{
		policy:     policy,
		stackLimit: stackLimit,
		info:       make(map[escapeKey]EscapeInfo),
		sizes:      make(map[escapeKey]uint32),
		lifetimes:  make(map[escapeKey]uint32),
	}
}

// Policy returns the configured allocation policy.
func (ea *EscapeAnalyzer) Policy() AllocationPolicy { return ea.policy }

// MarkEscaped records that the variable outlives its defining scope.
func (ea *EscapeAnalyzer) MarkEscaped(ctx, name source.StringID) {
	k := escapeKey{ctx, name}
	i := ea.info[k]
	i.Escapes = true
	ea.info[k] = i
}

// MarkCapturedByRef records a by-reference capture (closure, spawned task).
func (ea *EscapeAnalyzer) MarkCapturedByRef(ctx, name source.StringID) {
	k := escapeKey{ctx, name}
	i := ea.info[k]
	i.CapturedByRef = true
	ea.info[k] = i
}

// MarkAddressTaken records that the variable's address was observed.
func (ea *EscapeAnalyzer) MarkAddressTaken(ctx, name source.StringID) {
	k := escapeKey{ctx, name}
	i := ea.info[k]
	i.AddressTaken = true
	ea.info[k] = i
}

// RecordSize notes the variable's layout size in bytes.
func (ea *EscapeAnalyzer) RecordSize(ctx, name source.StringID, size uint32) {
	ea.sizes[escapeKey{ctx, name}] = size
}

// RecordLifetime notes the variable's estimated lifetime in instructions.
func (ea *EscapeAnalyzer) RecordLifetime(ctx, name source.StringID, instructions uint32) {
	ea.lifetimes[escapeKey{ctx, name}] = instructions
}

// Info returns the recorded escape facts for the variable.
func (ea *EscapeAnalyzer) Info(ctx, name source.StringID) EscapeInfo {
	return ea.info[escapeKey{ctx, name}]
}

// ShouldAllocateOnHeap decides placement for one variable. Any recorded
// escape forces the heap. Otherwise the policy thresholds apply: a variable
// larger than the stack ceiling goes to the heap, except that the aggressive
// policy keeps variables with a recorded short lifetime on the stack; with
// no size or lifetime recorded the default is the stack.
func (ea *EscapeAnalyzer) ShouldAllocateOnHeap(ctx, name source.StringID) bool {
	k := escapeKey{ctx, name}
	if ea.info[k].Any() {
		return true
	}
	size, haveSize := ea.sizes[k]
	if !haveSize {
		return false
	}
	if size <= ea.stackLimit {
		return false
	}
	if ea.policy == PolicyAggressive {
		if life, ok := ea.lifetimes[k]; ok && life <= shortLifetimeLimit {
			return false
		}
	}
	return true
}

// StackVar names one stack-eligible variable of a context.
type StackVar struct {
	Context source.StringID
	Name    source.StringID
}

// AnalyzeStackAllocation classifies every tracked variable and returns the
// stack-eligible set in deterministic order.
func (ea *EscapeAnalyzer) AnalyzeStackAllocation() []StackVar {
	keys := make(map[escapeKey]struct{}, len(ea.info)+len(ea.sizes))
	for k := range ea.info {
		keys[k] = struct{}{}
	}
	for k := range ea.sizes {
		keys[k] = struct{}{}
	}
	for k := range ea.lifetimes {
		keys[k] = struct{}{}
	}

	out := make([]StackVar, 0, len(keys))
	for k := range keys {
		if !ea.ShouldAllocateOnHeap(k.Context, k.Name) {
			out = append(out, StackVar{Context: k.Context, Name: k.Name})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Context != out[j].Context {
			return out[i].Context < out[j].Context
		}
		return out[i].Name < out[j].Name
	})
	return out
}
