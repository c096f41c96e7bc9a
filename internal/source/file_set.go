package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet owns a collection of source files and resolves spans to
// human-readable positions. It is not safe for concurrent mutation; the
// driver populates it before fanning out read-only work.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> latest id
	baseDir string
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase creates a FileSet with a base directory for relative
// path formatting.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// SetBaseDir sets the base directory used for relative path formatting.
func (fs *FileSet) SetBaseDir(dir string) {
	fs.baseDir = dir
}

// BaseDir returns the base directory, falling back to the working directory.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fs.baseDir
}

// Add stores normalized content under a fresh FileID, computing the line
// index and content hash. Adding the same path twice yields a new ID; the
// path index always points at the latest version.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	id := FileID(n)
	normalized := normalizePath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.index[normalized] = id
	return id
}

// Load reads a file from disk, strips a BOM, normalizes CRLF and calls Add.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	var flags FileFlags
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file (test input, stdin).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file for the given ID.
func (fs *FileSet) Get(id FileID) *File {
	return &fs.files[id]
}

// GetByPath returns the latest file stored under path, if any.
func (fs *FileSet) GetByPath(path string) (*File, bool) {
	if id, ok := fs.index[normalizePath(path)]; ok {
		return &fs.files[id], true
	}
	return nil, false
}

// Len returns the number of stored files.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Resolve converts a span into start and end line:col positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Position converts a byte offset in this file into a line:col pair.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// Line returns the 1-based line with the given number, without the trailing
// newline. Out-of-range line numbers yield "".
func (f *File) Line(lineNum uint32) string {
	if lineNum == 0 || lineNum > uint32(len(f.LineIdx))+1 {
		return ""
	}

	var start uint32
	if lineNum > 1 {
		start = f.LineIdx[lineNum-2] + 1
	}
	end := uint32(len(f.Content))
	if lineNum <= uint32(len(f.LineIdx)) {
		end = f.LineIdx[lineNum-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// Restore re-applies the normalization Load stripped, so rewritten text can
// go back to disk without churning lines the rewrite never touched: CRLF
// line endings are put back and a stripped BOM is prepended. A file that
// mixed CRLF with lone LF comes back uniformly CRLF.
func (f *File) Restore(text []byte) []byte {
	if f.Flags&FileNormalizedCRLF != 0 {
		out := make([]byte, 0, len(text)+len(f.LineIdx))
		for _, b := range text {
			if b == '\n' {
				out = append(out, '\r', '\n')
				continue
			}
			out = append(out, b)
		}
		text = out
	}
	if f.Flags&FileHadBOM != 0 {
		text = append([]byte{0xEF, 0xBB, 0xBF}, text...)
	}
	return text
}

// FormatPath renders the file path in one of the modes "absolute",
// "relative", "basename" or "auto".
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := filepath.Rel(baseDir, f.Path); err == nil {
			return filepath.ToSlash(rel)
		}
		return f.Path
	case "basename":
		return filepath.Base(f.Path)
	case "auto":
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return filepath.Base(f.Path)
	default:
		return f.Path
	}
}
