// Package driver runs semantic analysis over compilation units: one file,
// one independent checker. Units are analyzed in parallel, each with its
// own interners and symbol table, and results are merged deterministically.
package driver

import (
	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/observ"
	"mica/internal/sema"
	"mica/internal/source"
)

// Frontend builds the AST for one unit. The driver has no parser of its
// own; the embedding toolchain supplies whatever surface syntax it wants.
type Frontend func(fileID source.FileID, path string, src []byte) (*ast.File, error)

// Unit is one independent input to analysis. Either File is pre-built or
// Source is handed to the configured Frontend.
type Unit struct {
	Path   string
	FileID source.FileID
	Source []byte
	File   *ast.File
}

// UnitResult is the outcome of analyzing one unit.
type UnitResult struct {
	Path   string
	FileID source.FileID
	OK     bool
	Bag    *diag.Bag

	// Allocation and loop facts, empty when served from cache.
	StackVars []sema.StackVar
	Loops     []*sema.LoopInfo

	FromCache bool
	Timing    *observ.Report
}

// Options configure a driver run. The zero value analyzes sequentially
// with defaults and no cache.
type Options struct {
	Policy         sema.AllocationPolicy
	StackLimit     uint32
	SIMDWidth      uint8
	MaxDiagnostics int

	// Jobs bounds worker goroutines; 0 means GOMAXPROCS.
	Jobs int

	// Timing appends a per-unit phase report as an info diagnostic.
	Timing bool

	Cache       *DiskCache
	ToolVersion string

	Frontend Frontend
	Progress EventSink

	// Sink, when set, receives every unit's diagnostics as that unit
	// finishes; workers append concurrently under the sink's lock.
	Sink *diag.SinkReporter
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 100
	}
	return o.MaxDiagnostics
}

// Stage identifies where a unit currently is in the pipeline.
type Stage uint8

const (
	StageLoad Stage = iota
	StageAnalyze
)

// Status identifies a unit's progress within a stage.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event is a progress notification. Path is empty for run-wide events.
type Event struct {
	Path   string
	Stage  Stage
	Status Status
}

// EventSink receives progress events. Implementations must be safe for
// concurrent use; workers publish from their own goroutines.
type EventSink interface {
	Publish(Event)
}

// ChannelSink forwards events to a channel, dropping them when the
// receiver lags so workers never block on UI.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) Publish(ev Event) {
	if s.Ch == nil {
		return
	}
	select {
	case s.Ch <- ev:
	default:
	}
}

type nopSink struct{}

func (nopSink) Publish(Event) {}

func progressOrNop(s EventSink) EventSink {
	if s == nil {
		return nopSink{}
	}
	return s
}
