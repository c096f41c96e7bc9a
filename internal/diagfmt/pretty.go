package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"twfold/internal/diag"
	"twfold/internal/source"
)

// Pretty renders diagnostics in a human-readable form, one block per
// diagnostic:
//
//	<path>:<line>:<col>: <SEVERITY> <code>: <message>
//	  <source line>
//	  <caret underline over the span>
//
// The Bag is expected to be sorted beforehand.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	sevColors := map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgCyan),
	}

	for _, d := range bag.Items() {
		writeHeader(w, d, fs, opts, sevColors)
		writeContext(w, d.Primary, fs, opts)
		if opts.ShowNotes {
			for _, note := range d.Notes {
				fmt.Fprintf(w, "  note: %s\n", note.Msg)
				writeContext(w, note.Span, fs, opts)
			}
		}
	}
}

func writeHeader(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, sevColors map[diag.Severity]*color.Color) {
	f := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)
	loc := fmt.Sprintf("%s:%d:%d", formatPath(f, fs, opts.PathMode), start.Line, start.Col)

	sev := d.Severity.String()
	if opts.Color {
		if c, ok := sevColors[d.Severity]; ok {
			sev = c.Sprint(sev)
		}
	}
	fmt.Fprintf(w, "%s: %s %s: %s\n", loc, sev, d.Code.ID(), d.Message)
}

// writeContext prints the first source line the span touches with a caret
// underline. Multi-line spans are underlined to the end of their first line.
func writeContext(w io.Writer, sp source.Span, fs *source.FileSet, opts PrettyOpts) {
	if sp.Empty() {
		return
	}
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)
	line := f.Line(start.Line)
	if line == "" {
		return
	}

	display := strings.ReplaceAll(line, "\t", " ")
	if opts.Width > 0 && runewidth.StringWidth(display) > opts.Width {
		display = runewidth.Truncate(display, opts.Width, "...")
	}
	fmt.Fprintf(w, "  %s\n", display)

	underlineEnd := end.Col
	if end.Line != start.Line {
		underlineEnd = uint32(len(line)) + 1
	}
	if underlineEnd <= start.Col {
		underlineEnd = start.Col + 1
	}
	prefix := runewidth.StringWidth(runewidth.Truncate(display, int(start.Col-1), ""))
	width := int(underlineEnd - start.Col)
	if opts.Width > 0 && prefix+width > opts.Width {
		width = opts.Width - prefix
	}
	if width < 1 {
		width = 1
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", prefix), strings.Repeat("^", width))
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}
