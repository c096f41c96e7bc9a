package syntax

// tree-sitter node type names shared by the javascript, typescript and tsx
// grammars. The extractor pattern-matches over this closed set.
const (
	KindCallExpression       = "call_expression"
	KindArguments            = "arguments"
	KindIdentifier           = "identifier"
	KindString               = "string"
	KindStringFragment       = "string_fragment"
	KindEscapeSequence       = "escape_sequence"
	KindTemplateString       = "template_string"
	KindTemplateSubstitution = "template_substitution"
	KindObject               = "object"
	KindPair                 = "pair"
	KindPropertyIdentifier   = "property_identifier"
	KindComment              = "comment"
)

// Field names on call_expression and pair nodes.
const (
	FieldFunction  = "function"
	FieldArguments = "arguments"
	FieldKey       = "key"
	FieldValue     = "value"
)
