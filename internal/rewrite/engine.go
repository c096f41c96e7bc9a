// Package rewrite folds static calls to the configured target function into
// plain string literals. One invocation processes one file to completion:
// a read-only tree walk collects edits, then a single text pass applies
// them. The engine holds no state across invocations.
package rewrite

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"twfold/internal/diag"
	"twfold/internal/extract"
	"twfold/internal/source"
	"twfold/internal/sourcemap"
	"twfold/internal/syntax"
)

// Edit is one pending text substitution: the span of a whole call
// expression and the literal that replaces it. Edits are collected in walk
// order, which is ascending by start offset, and are pairwise disjoint.
type Edit struct {
	Span    source.Span
	NewText string
}

// Result is the engine's output for a file that produced at least one edit.
// A no-op invocation returns a nil Result instead: the caller must treat
// the input as unchanged and no new buffer is allocated.
type Result struct {
	Text []byte
	Map  *sourcemap.Map
	// Folded is the number of call sites rewritten.
	Folded int
}

// Rewrite locates calls to cfg.TargetName in the file's content and folds
// every statically-resolvable one into a string literal.
//
// Diagnostics go through r: a parse failure is reported once as fatal and
// returned as the error; per-call problems are advisory warnings and only
// suppress the edit for that call. For a fixed (content, path, config) the
// output and the diagnostic sequence are deterministic.
func Rewrite(ctx context.Context, file *source.File, cfg Config, r diag.Reporter) (*Result, error) {
	cfg = cfg.WithDefaults()

	tree, err := syntax.Parse(ctx, file.ID, file.Content, syntax.DialectFor(file.Path))
	if err != nil {
		diag.ReportError(r, diag.ParseFailed, source.Span{File: file.ID}, err.Error())
		return nil, err
	}
	defer tree.Close()

	if bad := tree.FirstError(); bad != nil {
		sp := tree.Span(bad)
		pos := file.Position(sp.Start)
		msg := fmt.Sprintf("%s:%d:%d: syntax error near %q", file.Path, pos.Line, pos.Col, clip(tree.Text(bad), 20))
		diag.ReportError(r, diag.ParseFailed, sp, msg)
		return nil, fmt.Errorf("rewrite: %s", msg)
	}

	w := &walker{tree: tree, src: file.Content, cfg: cfg, allowed: cfg.allowed(), reporter: r}
	w.walk(tree.Root())

	if len(w.edits) == 0 {
		return nil, nil
	}

	text, posMap := applyEdits(file.Content, w.edits)
	return &Result{Text: text, Map: posMap, Folded: len(w.edits)}, nil
}

type walker struct {
	tree     *syntax.Tree
	src      []byte
	cfg      Config
	allowed  map[string]bool
	reporter diag.Reporter
	edits    []Edit
}

// walk visits every node once, in document order. When a call produces an
// edit the walk does not descend into it: the accepted arguments are plain
// literals, and anything hiding in a silently-dropped mapping entry is
// consumed by the whole-call replacement. When no edit is produced the walk
// descends, so target calls nested in malformed arguments are located and
// processed independently.
func (w *walker) walk(n *sitter.Node) {
	if n.Type() == syntax.KindCallExpression && w.tryFold(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil {
			w.walk(child)
		}
	}
}

// tryFold inspects one call expression and appends an Edit when the call
// matches the target pattern and its arguments resolve statically.
func (w *walker) tryFold(call *sitter.Node) bool {
	callee := call.ChildByFieldName(syntax.FieldFunction)
	if callee == nil || callee.Type() != syntax.KindIdentifier {
		return false
	}
	if string(w.src[callee.StartByte():callee.EndByte()]) != w.cfg.TargetName {
		return false
	}

	callSpan := w.tree.Span(call)
	args := callArguments(call)

	if len(args) == 0 {
		diag.ReportWarning(w.reporter, diag.MissingArguments, callSpan,
			fmt.Sprintf("%s() requires at least a base classes argument", w.cfg.TargetName))
		return false
	}

	base, ok := extract.StaticString(args[0], w.src)
	if !ok {
		diag.ReportWarning(w.reporter, diag.InvalidBaseClasses, callSpan,
			fmt.Sprintf("first argument of %s() must be a static string literal", w.cfg.TargetName))
		return false
	}

	var entries []extract.Entry
	if len(args) > 1 {
		entries = extract.StaticMapping(args[1], w.src)
	}

	segments := make([]string, 0, len(entries)+1)
	if trimmed := strings.TrimSpace(base); trimmed != "" {
		segments = append(segments, trimmed)
	}
	for _, e := range entries {
		if !w.allowed[e.Name] {
			diag.ReportWarning(w.reporter, diag.UnknownVariant, w.tree.Span(e.Key),
				fmt.Sprintf("unknown variant %q (allowed: %s)", e.Name, strings.Join(w.cfg.AllowedVariants, ", ")))
			continue
		}
		seg := prefixTokens(e.Name, e.Value)
		if seg == "" {
			continue
		}
		segments = append(segments, seg)
	}

	w.edits = append(w.edits, Edit{
		Span:    callSpan,
		NewText: quoteLiteral(strings.Join(segments, " ")),
	})
	return true
}

// callArguments returns the expression arguments of a call, skipping
// comments and punctuation.
func callArguments(call *sitter.Node) []*sitter.Node {
	argsNode := call.ChildByFieldName(syntax.FieldArguments)
	if argsNode == nil {
		return nil
	}
	var args []*sitter.Node
	for i := 0; i < int(argsNode.NamedChildCount()); i++ {
		child := argsNode.NamedChild(i)
		if child.Type() == syntax.KindComment {
			continue
		}
		args = append(args, child)
	}
	return args
}

func clip(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	if len(s) <= max {
		return s
	}
	// Back off to a rune boundary so the cut never leaves invalid UTF-8.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}
