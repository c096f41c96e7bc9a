package diag

import "twfold/internal/source"

// Note attaches secondary context to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is a single immutable report: produced during parse (fatal) or
// during extraction/composition (advisory), then forwarded to a Reporter.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}
