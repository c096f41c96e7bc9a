package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAddVirtualAssignsSequentialIDs(t *testing.T) {
	fs := NewFileSet()
	a := fs.AddVirtual("a.tsx", []byte("one"))
	b := fs.AddVirtual("b.tsx", []byte("two"))

	if a != 0 || b != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", a, b)
	}
	if fs.Get(a).Flags&FileVirtual == 0 {
		t.Fatalf("virtual flag not set")
	}
	if string(fs.Get(b).Content) != "two" {
		t.Fatalf("content mismatch: %q", fs.Get(b).Content)
	}
}

func TestLoadNormalizesCRLFAndBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.ts")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("const a = 1;\r\nconst b = 2;\r\n")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	f := fs.Get(id)
	if f.Flags&FileHadBOM == 0 {
		t.Errorf("BOM flag not set")
	}
	if f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("CRLF flag not set")
	}
	if want := "const a = 1;\nconst b = 2;\n"; string(f.Content) != want {
		t.Errorf("normalized content mismatch: %q", f.Content)
	}
}

func TestRestoreRoundTripsLoadedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.ts")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("const a = 1;\r\nconst b = 2;\r\n")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	f := fs.Get(id)

	if got := f.Restore(f.Content); string(got) != string(raw) {
		t.Errorf("Restore(Content) = %q, want the on-disk bytes %q", got, raw)
	}
	// Rewritten text gets the same treatment.
	if got := f.Restore([]byte("const a = \"x\";\nconst b = 2;\n")); string(got) !=
		"\xEF\xBB\xBFconst a = \"x\";\r\nconst b = 2;\r\n" {
		t.Errorf("Restore(edited) = %q", got)
	}
}

func TestRestoreLeavesPlainFilesAlone(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.ts", []byte("const a = 1;\n"))
	f := fs.Get(id)
	if got := f.Restore(f.Content); string(got) != "const a = 1;\n" {
		t.Errorf("Restore changed an already-plain file: %q", got)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.ts", []byte("ab\ncd\nef"))

	start, end := fs.Resolve(Span{File: id, Start: 3, End: 7})
	if start.Line != 2 || start.Col != 1 {
		t.Errorf("start = %d:%d, want 2:1", start.Line, start.Col)
	}
	if end.Line != 3 || end.Col != 2 {
		t.Errorf("end = %d:%d, want 3:2", end.Line, end.Col)
	}
}

func TestLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.ts", []byte("ab\ncd\nef"))
	f := fs.Get(id)

	cases := []struct {
		num  uint32
		want string
	}{
		{1, "ab"},
		{2, "cd"},
		{3, "ef"},
		{4, ""},
		{0, ""},
	}
	for _, tc := range cases {
		if got := f.Line(tc.num); got != tc.want {
			t.Errorf("Line(%d) = %q, want %q", tc.num, got, tc.want)
		}
	}
}

func TestGetByPathReturnsLatest(t *testing.T) {
	fs := NewFileSet()
	fs.AddVirtual("dup.ts", []byte("old"))
	fs.AddVirtual("dup.ts", []byte("new"))

	f, ok := fs.GetByPath("dup.ts")
	if !ok {
		t.Fatal("path not found")
	}
	if string(f.Content) != "new" {
		t.Fatalf("expected latest content, got %q", f.Content)
	}
}
