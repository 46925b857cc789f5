package solast

// ID indexes a node inside its owning Context. Edges between nodes are
// always IDs, never pointers, so parent/child and reference cycles
// carry no ownership.
type ID int

const InvalidID ID = -1

// Src is a byte range in one of the run's source files.
type Src struct {
	Offset int
	Length int
	File   int
}

func (s Src) End() int { return s.Offset + s.Length }

type NodeKind int

// regenerate nodekind_string.go with `go generate ./internal/solast`
//
//go:generate stringer -type=NodeKind
const (
	ILLEGAL NodeKind = iota

	SOURCE_UNIT
	PRAGMA_DIRECTIVE
	IMPORT_DIRECTIVE
	CONTRACT_DEFINITION
	INHERITANCE_SPECIFIER
	IDENTIFIER_PATH
	STRUCTURED_DOCUMENTATION
	FUNCTION_DEFINITION
	PARAMETER_LIST
	VARIABLE_DECLARATION
	EVENT_DEFINITION
	STRUCT_DEFINITION
	ENUM_DEFINITION
	ENUM_VALUE

	// Statements
	BLOCK
	EXPRESSION_STATEMENT
	VARIABLE_DECLARATION_STATEMENT
	RETURN
	IF_STATEMENT
	FOR_STATEMENT
	EMIT_STATEMENT
	INLINE_ASSEMBLY

	// Expressions
	IDENTIFIER
	MEMBER_ACCESS
	INDEX_ACCESS
	FUNCTION_CALL
	BINARY_OPERATION
	UNARY_OPERATION
	CONDITIONAL
	ASSIGNMENT
	LITERAL
	TUPLE_EXPRESSION
	ELEMENTARY_TYPE_NAME_EXPRESSION

	// Type names
	ELEMENTARY_TYPE_NAME
	USER_DEFINED_TYPE_NAME
	MAPPING
	ARRAY_TYPE_NAME
)

type Node interface {
	ID() ID
	Parent() ID
	Kind() NodeKind
	Src() Src
	SetSrc(Src)

	setID(ID)
	setParent(ID)
}

// base carries the bookkeeping every variant shares. Variants embed it
// and the Context fills it in when the node is minted.
type base struct {
	id     ID
	parent ID
	src    Src
}

func (b *base) ID() ID         { return b.id }
func (b *base) Parent() ID     { return b.parent }
func (b *base) Src() Src       { return b.src }
func (b *base) SetSrc(s Src)   { b.src = s }
func (b *base) setID(id ID)    { b.id = id }
func (b *base) setParent(p ID) { b.parent = p }

// Referencer is the capability set of nodes that track the declaration
// they name. The merger and renamer rewrite edges through it.
type Referencer interface {
	Node
	ReferencedDeclaration() ID
	SetReferencedDeclaration(ID)
}
