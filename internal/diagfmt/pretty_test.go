package diagfmt

import (
	"strings"
	"testing"

	"twfold/internal/diag"
	"twfold/internal/source"
)

func fixture(t *testing.T) (*source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("app.tsx", []byte("const a = 1;\nconst c = tw(dyn);\n"))

	bag := diag.NewBag(8)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.InvalidBaseClasses,
		Message:  "first argument of tw() must be a static string literal",
		Primary:  source.Span{File: id, Start: 23, End: 30},
	})
	return fs, bag
}

func TestPrettyOutput(t *testing.T) {
	fs, bag := fixture(t)
	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{})

	out := sb.String()
	if !strings.Contains(out, "app.tsx:2:11: WARNING TW2002:") {
		t.Errorf("missing header, got:\n%s", out)
	}
	if !strings.Contains(out, "const c = tw(dyn);") {
		t.Errorf("missing source line, got:\n%s", out)
	}
	if !strings.Contains(out, "^^^^^^^") {
		t.Errorf("missing caret underline, got:\n%s", out)
	}
}

func TestPrettyCaretAlignment(t *testing.T) {
	fs, bag := fixture(t)
	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{})

	lines := strings.Split(sb.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("unexpected output:\n%s", sb.String())
	}
	srcLine, caretLine := lines[1], lines[2]
	if strings.Index(srcLine, "tw(dyn)") != strings.Index(caretLine, "^") {
		t.Errorf("caret misaligned:\n%s\n%s", srcLine, caretLine)
	}
}
