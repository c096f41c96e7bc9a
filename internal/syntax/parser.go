// Package syntax wraps tree-sitter parsing of JavaScript, TypeScript and
// their JSX dialects behind byte-offset spans.
package syntax

import (
	"context"
	"fmt"
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"twfold/internal/source"
)

// Dialect selects a tree-sitter grammar.
type Dialect uint8

const (
	// DialectTSX parses TypeScript with JSX. It accepts plain expressions,
	// statements, type annotations and markup all at once, which makes it
	// the default for virtual inputs.
	DialectTSX Dialect = iota
	// DialectTypeScript parses TypeScript without JSX ambiguity.
	DialectTypeScript
	// DialectJavaScript parses JavaScript including JSX.
	DialectJavaScript
)

func (d Dialect) String() string {
	switch d {
	case DialectTSX:
		return "tsx"
	case DialectTypeScript:
		return "typescript"
	case DialectJavaScript:
		return "javascript"
	}
	return "unknown"
}

func (d Dialect) language() *sitter.Language {
	switch d {
	case DialectTypeScript:
		return typescript.GetLanguage()
	case DialectJavaScript:
		return javascript.GetLanguage()
	default:
		return tsx.GetLanguage()
	}
}

// DialectFor picks a grammar from a file path. Unknown extensions get TSX,
// the most permissive of the three.
func DialectFor(p string) Dialect {
	switch strings.ToLower(path.Ext(p)) {
	case ".ts", ".mts", ".cts":
		return DialectTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return DialectJavaScript
	default:
		return DialectTSX
	}
}

// Tree is a parsed file. It owns the underlying tree-sitter tree and must be
// closed by the invocation that created it; trees are never shared.
type Tree struct {
	inner   *sitter.Tree
	content []byte
	file    source.FileID
}

// Parse parses content with the given dialect. A fresh sitter.Parser is
// created per call, so Parse is safe for concurrent use.
func Parse(ctx context.Context, fileID source.FileID, content []byte, dialect Dialect) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(dialect.language())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("syntax: %s parse: %w", dialect, err)
	}
	return &Tree{inner: tree, content: content, file: fileID}, nil
}

// Close releases the tree-sitter tree.
func (t *Tree) Close() {
	if t.inner != nil {
		t.inner.Close()
		t.inner = nil
	}
}

// Root returns the root node.
func (t *Tree) Root() *sitter.Node {
	return t.inner.RootNode()
}

// Content returns the parsed text.
func (t *Tree) Content() []byte {
	return t.content
}

// Span converts a node's byte range into a source span.
func (t *Tree) Span(n *sitter.Node) source.Span {
	return source.Span{File: t.file, Start: n.StartByte(), End: n.EndByte()}
}

// Text returns the raw text of a node.
func (t *Tree) Text(n *sitter.Node) string {
	return string(t.content[n.StartByte():n.EndByte()])
}

// FirstError returns the first ERROR or missing node in document order, or
// nil when the tree parsed cleanly. tree-sitter itself is error-tolerant;
// the engine treats any error node as a fatal parse failure for the file.
func (t *Tree) FirstError() *sitter.Node {
	root := t.Root()
	if root == nil || !root.HasError() {
		return nil
	}
	return firstErrorNode(root)
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	// HasError was set but no child carries it: the node itself is the
	// closest position we can point at.
	return n
}
