package extract

import (
	"strconv"
	"strings"
)

// decodeEscape resolves one JS escape sequence (backslash included) to its
// character value. Unrecognized escapes fall back to the escaped character
// itself, which matches how JS treats e.g. "\q".
func decodeEscape(seq string) string {
	if len(seq) < 2 || seq[0] != '\\' {
		return seq
	}
	body := seq[1:]
	switch body[0] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		if len(body) == 1 {
			return "\x00"
		}
	case 'x':
		if len(body) == 3 {
			if v, err := strconv.ParseUint(body[1:], 16, 8); err == nil {
				return string(rune(v))
			}
		}
	case 'u':
		if strings.HasPrefix(body, "u{") && strings.HasSuffix(body, "}") {
			if v, err := strconv.ParseUint(body[2:len(body)-1], 16, 32); err == nil {
				return string(rune(v))
			}
		} else if len(body) == 5 {
			if v, err := strconv.ParseUint(body[1:], 16, 16); err == nil {
				return string(rune(v))
			}
		}
	case '\n':
		// Line continuation inside a literal contributes nothing.
		return ""
	}
	return body
}
