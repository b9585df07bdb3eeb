package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"mica/internal/diag"
	"mica/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	noteColor    = color.New(color.FgWhite, color.Faint)
)

// Pretty renders diagnostics one per block:
//
//	<path>:<line>:<col>: <severity>[<CODE>]: <message>
//
// followed by the source line with a caret underline when ShowPreview is
// set, and indented notes when ShowNotes is set. The bag is expected to be
// sorted already.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeHeading(w, d, fs, opts)
		if opts.ShowPreview {
			writePreview(w, d.Primary, fs)
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				writeNote(w, n, fs, opts)
			}
		}
	}
}

func writeHeading(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	sev := severityTag(d.Severity)
	if opts.Color {
		sev = severityStyle(d.Severity).Sprint(sev)
	}
	fmt.Fprintf(w, "%s: %s[%s]: %s\n", location(d.Primary, fs), sev, d.Code.ID(), d.Message)
}

func writeNote(w io.Writer, n diag.Note, fs *source.FileSet, opts PrettyOpts) {
	label := "note"
	if opts.Color {
		label = noteColor.Sprint(label)
	}
	if n.Span.Empty() && n.Span.File == 0 {
		fmt.Fprintf(w, "  %s: %s\n", label, n.Msg)
		return
	}
	fmt.Fprintf(w, "  %s: %s: %s\n", label, location(n.Span, fs), n.Msg)
}

// writePreview prints the offending line with a ^~~~ underline. Spans that
// cross lines are underlined up to the end of the first line.
func writePreview(w io.Writer, span source.Span, fs *source.FileSet) {
	if fs == nil || span.Empty() {
		return
	}
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(span)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	prefix := fmt.Sprintf("  %4d | ", start.Line)
	fmt.Fprintf(w, "%s%s\n", prefix, line)

	underlineLen := 1
	if end.Line == start.Line && end.Col > start.Col {
		underlineLen = int(end.Col - start.Col)
	} else if end.Line > start.Line {
		underlineLen = len(line) - int(start.Col) + 1
	}
	if underlineLen < 1 {
		underlineLen = 1
	}
	pad := strings.Repeat(" ", int(start.Col)-1)
	marks := "^" + strings.Repeat("~", underlineLen-1)
	fmt.Fprintf(w, "  %4s | %s%s\n", "", pad, marks)
}

func location(span source.Span, fs *source.FileSet) string {
	if fs == nil {
		return span.String()
	}
	f := fs.Get(span.File)
	if f == nil {
		return span.String()
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col)
}

func severityTag(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func severityStyle(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

// Summary renders the closing "N errors, M warnings" line.
func Summary(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	if errs == 0 && warns == 0 {
		return
	}
	line := fmt.Sprintf("%s, %s", plural(errs, "error"), plural(warns, "warning"))
	if opts.Color && errs > 0 {
		line = errorColor.Sprint(line)
	}
	fmt.Fprintln(w, line)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
