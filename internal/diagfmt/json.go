package diagfmt

import (
	"encoding/json"
	"io"

	"twfold/internal/diag"
	"twfold/internal/source"
)

// LocationJSON is a span rendered for machine consumption.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON is a secondary note attached to a diagnostic.
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON is one diagnostic in the JSON output.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Name     string       `json:"name"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root structure of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	f := fs.Get(span.File)
	loc := LocationJSON{
		File:      formatPath(f, fs, pathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if includePositions {
		start, end := fs.Resolve(span)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

// BuildDiagnosticsOutput converts a bag into the serializable output form.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}

	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, len(items)),
		Count:       bag.Len(),
	}
	for _, d := range items {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Name:     d.Code.String(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{
					Message:  n.Msg,
					Location: makeLocation(n.Span, fs, opts.PathMode, opts.IncludePositions),
				})
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	return out
}

// JSON writes the bag as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
