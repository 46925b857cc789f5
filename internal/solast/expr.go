package solast

type Identifier struct {
	base
	Name     string
	Referent ID
}

func (i *Identifier) ReferencedDeclaration() ID     { return i.Referent }
func (i *Identifier) SetReferencedDeclaration(r ID) { i.Referent = r }

type MemberAccess struct {
	base
	Expression ID
	MemberName string
	Referent   ID
}

func (m *MemberAccess) ReferencedDeclaration() ID     { return m.Referent }
func (m *MemberAccess) SetReferencedDeclaration(r ID) { m.Referent = r }

type IndexAccess struct {
	base
	Base  ID
	Index ID
}

type CallKind string

const (
	CallFunction       CallKind = "functionCall"
	CallTypeConversion CallKind = "typeConversion"
	CallStructCtor     CallKind = "structConstructorCall"
)

type FunctionCall struct {
	base
	CallKind   CallKind
	Expression ID
	Arguments  []ID
}

type BinaryOperation struct {
	base
	Operator string
	Left     ID
	Right    ID
}

type UnaryOperation struct {
	base
	Operator string
	Prefix   bool
	Sub      ID
}

type Conditional struct {
	base
	Condition ID
	True      ID
	False     ID
}

type Assignment struct {
	base
	Operator string
	LHS      ID
	RHS      ID
}

type LiteralKind string

const (
	LitNumber LiteralKind = "number"
	LitBool   LiteralKind = "bool"
	LitString LiteralKind = "string"
	LitHex    LiteralKind = "hexString"
)

type Literal struct {
	base
	LiteralKind LiteralKind
	Value       string
}

type TupleExpression struct {
	base
	Components []ID
}

// ElementaryTypeNameExpression is a builtin type used as an expression,
// e.g. the callee of "uint256(x)".
type ElementaryTypeNameExpression struct {
	base
	TypeName string
}

type ElementaryTypeName struct {
	base
	Name string
}

type UserDefinedTypeName struct {
	base
	// PathNode is the IdentifierPath child carrying the spelled name.
	PathNode ID
	Referent ID
}

func (t *UserDefinedTypeName) ReferencedDeclaration() ID     { return t.Referent }
func (t *UserDefinedTypeName) SetReferencedDeclaration(r ID) { t.Referent = r }

type Mapping struct {
	base
	KeyType   ID
	ValueType ID
}

type ArrayTypeName struct {
	base
	BaseType ID
	Length   ID
}

func (*Identifier) Kind() NodeKind                   { return IDENTIFIER }
func (*MemberAccess) Kind() NodeKind                 { return MEMBER_ACCESS }
func (*IndexAccess) Kind() NodeKind                  { return INDEX_ACCESS }
func (*FunctionCall) Kind() NodeKind                 { return FUNCTION_CALL }
func (*BinaryOperation) Kind() NodeKind              { return BINARY_OPERATION }
func (*UnaryOperation) Kind() NodeKind               { return UNARY_OPERATION }
func (*Conditional) Kind() NodeKind                  { return CONDITIONAL }
func (*Assignment) Kind() NodeKind                   { return ASSIGNMENT }
func (*Literal) Kind() NodeKind                      { return LITERAL }
func (*TupleExpression) Kind() NodeKind              { return TUPLE_EXPRESSION }
func (*ElementaryTypeNameExpression) Kind() NodeKind { return ELEMENTARY_TYPE_NAME_EXPRESSION }
func (*ElementaryTypeName) Kind() NodeKind           { return ELEMENTARY_TYPE_NAME }
func (*UserDefinedTypeName) Kind() NodeKind          { return USER_DEFINED_TYPE_NAME }
func (*Mapping) Kind() NodeKind                      { return MAPPING }
func (*ArrayTypeName) Kind() NodeKind                { return ARRAY_TYPE_NAME }
