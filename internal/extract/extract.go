// Package extract pulls static literal values out of syntax nodes. It never
// evaluates anything: a node either is a plain literal shape or the
// extraction declines, without error.
package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"twfold/internal/syntax"
)

// Entry is one accepted key/value pair of a static mapping, in declaration
// order. Key points at the key node for diagnostics positioning.
type Entry struct {
	Name  string
	Value string
	Key   *sitter.Node
}

// StaticString extracts the cooked value of a plain string literal or an
// interpolation-free template literal. Any other shape (an identifier, a
// template with `${...}` parts, a call) returns ok=false: such arguments
// cannot be statically resolved and the call site must be left alone.
func StaticString(n *sitter.Node, src []byte) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case syntax.KindString:
		return cookChunks(n, src), true
	case syntax.KindTemplateString:
		// Zero substitutions means the template has exactly one static
		// chunk; one or more makes it dynamic.
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if n.NamedChild(i).Type() == syntax.KindTemplateSubstitution {
				return "", false
			}
		}
		return cookChunks(n, src), true
	default:
		return "", false
	}
}

// StaticMapping extracts the static entries of a plain object literal, in
// declaration order. Entries whose key is not a static name or whose value
// fails StaticString are dropped one at a time; spreads, shorthands,
// methods and computed keys are likewise skipped. A non-object node yields
// nil. Partial acceptance is deliberate: spreading extra metadata into the
// mapping is an expected shape, not a mistake.
func StaticMapping(n *sitter.Node, src []byte) []Entry {
	if n == nil || n.Type() != syntax.KindObject {
		return nil
	}

	var entries []Entry
	for i := 0; i < int(n.NamedChildCount()); i++ {
		pair := n.NamedChild(i)
		if pair.Type() != syntax.KindPair {
			continue
		}
		key := pair.ChildByFieldName(syntax.FieldKey)
		name, ok := staticKey(key, src)
		if !ok {
			continue
		}
		value, ok := StaticString(pair.ChildByFieldName(syntax.FieldValue), src)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Name: name, Value: value, Key: key})
	}
	return entries
}

// staticKey accepts a bare property name or a string-literal key.
func staticKey(n *sitter.Node, src []byte) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case syntax.KindPropertyIdentifier:
		return string(src[n.StartByte():n.EndByte()]), true
	case syntax.KindString:
		return cookChunks(n, src), true
	default:
		return "", false
	}
}

// cookChunks concatenates the string_fragment children of a string or
// template node, decoding escape_sequence children along the way.
func cookChunks(n *sitter.Node, src []byte) string {
	var b strings.Builder
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case syntax.KindStringFragment:
			b.Write(src[child.StartByte():child.EndByte()])
		case syntax.KindEscapeSequence:
			b.WriteString(decodeEscape(string(src[child.StartByte():child.EndByte()])))
		}
	}
	return b.String()
}
