package rewrite

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"twfold/internal/diag"
	"twfold/internal/source"
	"twfold/internal/syntax"
)

// CallSite describes one occurrence of the target call.
type CallSite struct {
	Span source.Span
	// Args is the number of expression arguments.
	Args int
	// Text is the call expression verbatim.
	Text string
	// Folds reports whether the call resolves statically.
	Folds bool
	// Replacement is the literal the call would fold into, when Folds is set.
	Replacement string
}

// Locate lists every call to cfg.TargetName in the file, with the
// replacement each one would fold into, without editing anything. Unlike
// Rewrite it descends into matched calls, so nested occurrences are all
// reported, and it stays quiet: per-call diagnostics are suppressed.
func Locate(ctx context.Context, file *source.File, cfg Config) ([]CallSite, error) {
	cfg = cfg.WithDefaults()

	tree, err := syntax.Parse(ctx, file.ID, file.Content, syntax.DialectFor(file.Path))
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	w := &walker{tree: tree, src: file.Content, cfg: cfg, allowed: cfg.allowed(), reporter: diag.NopReporter{}}

	var sites []CallSite
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n.Type() == syntax.KindCallExpression {
			callee := n.ChildByFieldName(syntax.FieldFunction)
			if callee != nil && callee.Type() == syntax.KindIdentifier &&
				string(file.Content[callee.StartByte():callee.EndByte()]) == cfg.TargetName {
				site := CallSite{
					Span: tree.Span(n),
					Args: len(callArguments(n)),
					Text: tree.Text(n),
				}
				if w.tryFold(n) {
					site.Folds = true
					site.Replacement = w.edits[len(w.edits)-1].NewText
				}
				sites = append(sites, site)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child != nil {
				visit(child)
			}
		}
	}
	visit(tree.Root())
	return sites, nil
}
