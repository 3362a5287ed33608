// Package decl defines the read-only declaration tree consumed by modgen and
// a small in-memory implementation that AST providers build.
package decl

// Kind is the syntactic kind of a declaration.
type Kind int

const (
	Invalid Kind = iota
	TranslationUnit
	Namespace
	// Unexposed is a generic container. Unnamed ones (extern "C" blocks,
	// export blocks) are transparent scopes; named ones are declarations the
	// provider has no dedicated kind for, such as variable templates.
	Unexposed
	Function
	FunctionTemplate
	Variable
	Struct
	Class
	Enum
	Union
	UsingDeclaration
	Typedef
	TypeAlias
	ClassTemplate
	ClassTemplatePartialSpecialization
	TypeAliasTemplate
	Concept
	NamespaceAlias
	Method
	Other
)

var kindNames = [...]string{
	Invalid:                            "invalid",
	TranslationUnit:                    "translation-unit",
	Namespace:                          "namespace",
	Unexposed:                          "unexposed",
	Function:                           "function",
	FunctionTemplate:                   "function-template",
	Variable:                           "variable",
	Struct:                             "struct",
	Class:                              "class",
	Enum:                               "enum",
	Union:                              "union",
	UsingDeclaration:                   "using-declaration",
	Typedef:                            "typedef",
	TypeAlias:                          "type-alias",
	ClassTemplate:                      "class-template",
	ClassTemplatePartialSpecialization: "class-template-partial-specialization",
	TypeAliasTemplate:                  "type-alias-template",
	Concept:                            "concept",
	NamespaceAlias:                     "namespace-alias",
	Method:                             "method",
	Other:                              "other",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// IsScope reports whether declarations directly inside a node of this kind
// live at namespace scope.
func (k Kind) IsScope() bool {
	return k == TranslationUnit || k == Namespace || k == Unexposed
}

// Linkage classifies whether a declaration is visible outside its unit.
type Linkage int

const (
	NoLinkage Linkage = iota
	Internal
	UniqueExternal
	External
)

func (l Linkage) String() string {
	switch l {
	case Internal:
		return "internal"
	case UniqueExternal:
		return "unique-external"
	case External:
		return "external"
	default:
		return "none"
	}
}

// Node is a read-only view of one declaration in a provider's tree.
// Parents of the root are the nil interface. Implementations must be
// comparable: the same declaration always yields an equal Node.
type Node interface {
	Kind() Kind
	Spelling() string
	Linkage() Linkage
	IsAnonymous() bool
	// IsInline reports an inline namespace, which is elided from qualified names.
	IsInline() bool
	LexicalParent() Node
	SemanticParent() Node
	Children() []Node
	// PrettyAliasTarget is the provider's fully qualified printing of a
	// namespace alias target. It may carry a leading keyword prefix such as
	// "namespace x = ". Empty for every other kind.
	PrettyAliasTarget() string
}
