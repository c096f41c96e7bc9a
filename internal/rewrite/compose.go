package rewrite

import (
	"strconv"
	"strings"
)

// prefixTokens trims value, splits it on runs of whitespace and prefixes
// every token with "variant:". An empty-after-trim value yields "", which
// the caller skips silently: nothing to do, not an error.
func prefixTokens(variant, value string) string {
	tokens := strings.Fields(value)
	if len(tokens) == 0 {
		return ""
	}
	for i, tok := range tokens {
		tokens[i] = variant + ":" + tok
	}
	return strings.Join(tokens, " ")
}

// quoteLiteral wraps a composed class string in double-quote delimiters.
// strconv.Quote escapes with \", \\, \n and \uXXXX forms, all of which are
// valid string-literal syntax in every grammar the engine accepts.
func quoteLiteral(s string) string {
	return strconv.Quote(s)
}
