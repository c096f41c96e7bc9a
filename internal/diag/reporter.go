package diag

import "twfold/internal/source"

// Reporter is the sink the engine reports through. It is owned by the
// caller: implementations decide whether to collect, log or ignore.
// Implementations here: BagReporter, NopReporter, MultiReporter.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note)
}

// ReportWarning emits an advisory diagnostic through r.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string, notes ...Note) {
	if r == nil {
		return
	}
	r.Report(code, SevWarning, primary, msg, notes)
}

// ReportError emits a fatal diagnostic through r.
func ReportError(r Reporter, code Code, primary source.Span, msg string, notes ...Note) {
	if r == nil {
		return
	}
	r.Report(code, SevError, primary, msg, notes)
}

// BagReporter appends every report to a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
	})
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, source.Span, string, []Note) {}

// MultiReporter fans a report out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	for _, r := range m {
		if r != nil {
			r.Report(code, sev, primary, msg, notes)
		}
	}
}
