package source

import (
	"path/filepath"
	"slices"
)

// normalizeCRLF folds every \r\n pair into \n, leaving lone \r untouched.
// The second result reports whether any replacement happened.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false
	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
			continue
		}
		out = append(out, content[i])
		i++
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	var out []uint32
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

// toLineCol converts a byte offset into a 1-based line:col pair using the
// precomputed newline index.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// Largest lineIdx[i] < off, found by binary search. A newline belongs
	// to the line it terminates.
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	line := hi
	if line < 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	startOff := lineIdx[line] + 1
	return LineCol{Line: uint32(line + 2), Col: off - startOff + 1}
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
