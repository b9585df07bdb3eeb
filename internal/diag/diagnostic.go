// Package diag defines the diagnostic model shared by all analysis phases.
//
// Diagnostic is the central record: severity, stable numeric code, message,
// primary span and optional secondary notes. Producers emit through a
// Reporter so they stay decoupled from storage and rendering; Bag aggregates
// per-unit results, SinkReporter merges results across concurrently analyzed
// units. Rendering lives in internal/diagfmt.
package diag

import "mica/internal/source"

// Note attaches secondary context to a diagnostic ("declared here", etc.).
type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
