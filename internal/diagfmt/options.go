// Package diagfmt renders diagnostics for humans and machines. It never
// produces diagnostics itself; input is a sorted Bag plus the FileSet that
// resolves its spans.
package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color       bool
	ShowNotes   bool
	ShowPreview bool // source line with caret underline
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // add line/col next to byte offsets
	IncludeNotes     bool
	Max              int // truncate output, not the Bag
}
