package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about how a source file was loaded.
	FileFlags uint8
)

const (
	// FileVirtual marks a file that was added from memory (test, stdin).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM marks a file whose UTF-8 BOM was stripped on load.
	FileHadBOM
	// FileNormalizedCRLF marks a file whose CRLF pairs were folded to LF.
	FileNormalizedCRLF
)

// File is an immutable view over one source file's text plus its identifier.
// Content is never mutated after Add; the line index and hash are computed
// once at load time.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // byte offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a human-readable position in a source file, both 1-based.
type LineCol struct {
	Line uint32
	Col  uint32
}
