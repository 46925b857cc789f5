package solast

// SourceUnit is the root of one compiled file.
type SourceUnit struct {
	base
	AbsolutePath string
	Nodes        []ID
}

type PragmaDirective struct {
	base
	// Literals as solc splits them, e.g. ["solidity", "^", "0.8", ".17"].
	Literals []string
}

type SymbolAlias struct {
	// Foreign is the identifier node naming the imported symbol.
	Foreign ID
	// Local is the "as" name, empty when not aliased.
	Local string
}

type ImportDirective struct {
	base
	File          string
	AbsolutePath  string
	UnitAlias     string
	SymbolAliases []SymbolAlias
	// SourceUnit references the imported unit.
	SourceUnit ID
}

func (d *ImportDirective) ReferencedDeclaration() ID     { return d.SourceUnit }
func (d *ImportDirective) SetReferencedDeclaration(r ID) { d.SourceUnit = r }

type ContractKind string

const (
	KindContract  ContractKind = "contract"
	KindInterface ContractKind = "interface"
	KindLibrary   ContractKind = "library"
)

type ContractDefinition struct {
	base
	Name          string
	ContractKind  ContractKind
	Abstract      bool
	Documentation ID
	BaseContracts []ID
	Nodes         []ID
	// LinearizedBaseContracts is the C3 order, this contract first.
	LinearizedBaseContracts []ID
}

type InheritanceSpecifier struct {
	base
	BaseName ID
}

// IdentifierPath names a declaration in type position, e.g. the base
// name of an inheritance specifier.
type IdentifierPath struct {
	base
	Name     string
	Referent ID
}

func (p *IdentifierPath) ReferencedDeclaration() ID     { return p.Referent }
func (p *IdentifierPath) SetReferencedDeclaration(r ID) { p.Referent = r }

type StructuredDocumentation struct {
	base
	Text string
}

type FunctionKind string

const (
	FnKindFunction    FunctionKind = "function"
	FnKindConstructor FunctionKind = "constructor"
	FnKindFallback    FunctionKind = "fallback"
	FnKindReceive     FunctionKind = "receive"
)

type Visibility string

const (
	VisPublic   Visibility = "public"
	VisExternal Visibility = "external"
	VisInternal Visibility = "internal"
	VisPrivate  Visibility = "private"
)

type StateMutability string

const (
	MutNonpayable StateMutability = "nonpayable"
	MutPayable    StateMutability = "payable"
	MutView       StateMutability = "view"
	MutPure       StateMutability = "pure"
)

type FunctionDefinition struct {
	base
	Name             string
	FunctionKind     FunctionKind
	Visibility       Visibility
	StateMutability  StateMutability
	Virtual          bool
	Documentation    ID
	Parameters       ID
	ReturnParameters ID
	Body             ID
}

// IsExternallyVisible reports whether the function can be entered from
// outside the contract.
func (f *FunctionDefinition) IsExternallyVisible() bool {
	return f.Visibility == VisPublic || f.Visibility == VisExternal
}

// Mutates reports whether the function may write contract state.
func (f *FunctionDefinition) Mutates() bool {
	return f.StateMutability == MutNonpayable || f.StateMutability == MutPayable
}

type ParameterList struct {
	base
	Parameters []ID
}

type Mutability string

const (
	Mutable   Mutability = "mutable"
	Immutable Mutability = "immutable"
	Constant  Mutability = "constant"
)

type VariableDeclaration struct {
	base
	Name          string
	TypeName      ID
	TypeString    string
	Visibility    Visibility
	StateVariable bool
	Mutability    Mutability
	Indexed       bool
	Documentation ID
	Value         ID
}

type EventDefinition struct {
	base
	Name       string
	Anonymous  bool
	Parameters ID
}

type StructDefinition struct {
	base
	Name    string
	Members []ID
}

type EnumDefinition struct {
	base
	Name    string
	Members []ID
}

type EnumValue struct {
	base
	Name string
}

func (*SourceUnit) Kind() NodeKind              { return SOURCE_UNIT }
func (*PragmaDirective) Kind() NodeKind         { return PRAGMA_DIRECTIVE }
func (*ImportDirective) Kind() NodeKind         { return IMPORT_DIRECTIVE }
func (*ContractDefinition) Kind() NodeKind      { return CONTRACT_DEFINITION }
func (*InheritanceSpecifier) Kind() NodeKind    { return INHERITANCE_SPECIFIER }
func (*IdentifierPath) Kind() NodeKind          { return IDENTIFIER_PATH }
func (*StructuredDocumentation) Kind() NodeKind { return STRUCTURED_DOCUMENTATION }
func (*FunctionDefinition) Kind() NodeKind      { return FUNCTION_DEFINITION }
func (*ParameterList) Kind() NodeKind           { return PARAMETER_LIST }
func (*VariableDeclaration) Kind() NodeKind     { return VARIABLE_DECLARATION }
func (*EventDefinition) Kind() NodeKind         { return EVENT_DEFINITION }
func (*StructDefinition) Kind() NodeKind        { return STRUCT_DEFINITION }
func (*EnumDefinition) Kind() NodeKind          { return ENUM_DEFINITION }
func (*EnumValue) Kind() NodeKind               { return ENUM_VALUE }
