package diag

import (
	"sync"

	"mica/internal/source"
)

// SinkReporter is the cross-unit diagnostic sink. Worker goroutines analyzing
// independent compilation units report here concurrently; appends are
// serialized by a mutex. Order across units is unspecified, order within one
// unit follows program order because each unit reports from a single
// goroutine.
type SinkReporter struct {
	mu    sync.Mutex
	items []Diagnostic
}

func NewSink() *SinkReporter {
	return &SinkReporter{items: make([]Diagnostic, 0, 64)}
}

func (s *SinkReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.items = append(s.items, Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Primary: primary, Notes: notes,
	})
	s.mu.Unlock()
}

// Drain moves accumulated diagnostics out of the sink.
func (s *SinkReporter) Drain() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.items
	s.items = nil
	return out
}

// MergeBag appends a whole per-unit bag under one lock acquisition, keeping
// the unit's internal order intact.
func (s *SinkReporter) MergeBag(b *Bag) {
	if s == nil || b == nil {
		return
	}
	s.mu.Lock()
	s.items = append(s.items, b.Items()...)
	s.mu.Unlock()
}
