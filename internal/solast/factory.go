package solast

// Factory helpers mint wired nodes: the child edges passed in are
// adopted so parent pointers are always consistent. Generated nodes
// carry a zero Src until the printer assigns output ranges.

func (c *Context) NewSourceUnit(absolutePath string, nodes ...ID) *SourceUnit {
	u := &SourceUnit{AbsolutePath: absolutePath, Nodes: nodes}
	id := c.Register(u)
	c.Adopt(id, nodes...)
	return u
}

func (c *Context) NewPragmaDirective(literals ...string) *PragmaDirective {
	p := &PragmaDirective{Literals: literals}
	c.Register(p)
	return p
}

func (c *Context) NewImportDirective(file, absolutePath string, unit ID) *ImportDirective {
	d := &ImportDirective{File: file, AbsolutePath: absolutePath, SourceUnit: unit}
	c.Register(d)
	return d
}

func (c *Context) NewContractDefinition(name string, kind ContractKind) *ContractDefinition {
	d := &ContractDefinition{Name: name, ContractKind: kind, Documentation: InvalidID}
	id := c.Register(d)
	// A contract always linearizes to at least itself.
	d.LinearizedBaseContracts = []ID{id}
	return d
}

func (c *Context) NewIdentifierPath(name string, referent ID) *IdentifierPath {
	p := &IdentifierPath{Name: name, Referent: referent}
	c.Register(p)
	return p
}

func (c *Context) NewInheritanceSpecifier(baseName ID) *InheritanceSpecifier {
	s := &InheritanceSpecifier{BaseName: baseName}
	id := c.Register(s)
	c.Adopt(id, baseName)
	return s
}

func (c *Context) NewStructuredDocumentation(text string) *StructuredDocumentation {
	d := &StructuredDocumentation{Text: text}
	c.Register(d)
	return d
}

func (c *Context) NewFunctionDefinition(name string, kind FunctionKind, vis Visibility, mut StateMutability) *FunctionDefinition {
	f := &FunctionDefinition{
		Name:             name,
		FunctionKind:     kind,
		Visibility:       vis,
		StateMutability:  mut,
		Documentation:    InvalidID,
		Parameters:       InvalidID,
		ReturnParameters: InvalidID,
		Body:             InvalidID,
	}
	c.Register(f)
	return f
}

func (c *Context) NewParameterList(params ...ID) *ParameterList {
	p := &ParameterList{Parameters: params}
	id := c.Register(p)
	c.Adopt(id, params...)
	return p
}

func (c *Context) NewVariableDeclaration(name string, typeName ID, typeString string) *VariableDeclaration {
	v := &VariableDeclaration{
		Name:          name,
		TypeName:      typeName,
		TypeString:    typeString,
		Mutability:    Mutable,
		Documentation: InvalidID,
		Value:         InvalidID,
	}
	id := c.Register(v)
	c.Adopt(id, typeName)
	return v
}

func (c *Context) NewEventDefinition(name string, params ID) *EventDefinition {
	e := &EventDefinition{Name: name, Parameters: params}
	id := c.Register(e)
	c.Adopt(id, params)
	return e
}

func (c *Context) NewStructDefinition(name string, members ...ID) *StructDefinition {
	s := &StructDefinition{Name: name, Members: members}
	id := c.Register(s)
	c.Adopt(id, members...)
	return s
}

func (c *Context) NewEnumDefinition(name string, members ...ID) *EnumDefinition {
	e := &EnumDefinition{Name: name, Members: members}
	id := c.Register(e)
	c.Adopt(id, members...)
	return e
}

func (c *Context) NewEnumValue(name string) *EnumValue {
	v := &EnumValue{Name: name}
	c.Register(v)
	return v
}

func (c *Context) NewBlock(stmts ...ID) *Block {
	b := &Block{Statements: stmts}
	id := c.Register(b)
	c.Adopt(id, stmts...)
	return b
}

func (c *Context) NewExpressionStatement(expr ID) *ExpressionStatement {
	s := &ExpressionStatement{Expression: expr}
	id := c.Register(s)
	c.Adopt(id, expr)
	return s
}

func (c *Context) NewVariableDeclarationStatement(decl ID, value ID) *VariableDeclarationStatement {
	s := &VariableDeclarationStatement{Declarations: []ID{decl}, InitialValue: value}
	id := c.Register(s)
	c.Adopt(id, decl, value)
	return s
}

func (c *Context) NewReturn(expr ID) *Return {
	r := &Return{Expression: expr, FunctionReturnParameters: InvalidID}
	id := c.Register(r)
	c.Adopt(id, expr)
	return r
}

func (c *Context) NewIfStatement(cond, trueBody, falseBody ID) *IfStatement {
	s := &IfStatement{Condition: cond, TrueBody: trueBody, FalseBody: falseBody}
	id := c.Register(s)
	c.Adopt(id, cond, trueBody, falseBody)
	return s
}

func (c *Context) NewForStatement(init, cond, loop, body ID) *ForStatement {
	s := &ForStatement{Init: init, Condition: cond, Loop: loop, Body: body}
	id := c.Register(s)
	c.Adopt(id, init, cond, loop, body)
	return s
}

func (c *Context) NewEmitStatement(eventCall ID) *EmitStatement {
	s := &EmitStatement{EventCall: eventCall}
	id := c.Register(s)
	c.Adopt(id, eventCall)
	return s
}

func (c *Context) NewInlineAssembly(text string) *InlineAssembly {
	a := &InlineAssembly{Text: text}
	c.Register(a)
	return a
}

func (c *Context) NewIdentifier(name string, referent ID) *Identifier {
	i := &Identifier{Name: name, Referent: referent}
	c.Register(i)
	return i
}

func (c *Context) NewMemberAccess(expr ID, member string, referent ID) *MemberAccess {
	m := &MemberAccess{Expression: expr, MemberName: member, Referent: referent}
	id := c.Register(m)
	c.Adopt(id, expr)
	return m
}

func (c *Context) NewIndexAccess(baseExpr, index ID) *IndexAccess {
	a := &IndexAccess{Base: baseExpr, Index: index}
	id := c.Register(a)
	c.Adopt(id, baseExpr, index)
	return a
}

func (c *Context) NewFunctionCall(kind CallKind, callee ID, args ...ID) *FunctionCall {
	f := &FunctionCall{CallKind: kind, Expression: callee, Arguments: args}
	id := c.Register(f)
	c.Adopt(id, callee)
	c.Adopt(id, args...)
	return f
}

func (c *Context) NewBinaryOperation(op string, left, right ID) *BinaryOperation {
	b := &BinaryOperation{Operator: op, Left: left, Right: right}
	id := c.Register(b)
	c.Adopt(id, left, right)
	return b
}

func (c *Context) NewUnaryOperation(op string, prefix bool, sub ID) *UnaryOperation {
	u := &UnaryOperation{Operator: op, Prefix: prefix, Sub: sub}
	id := c.Register(u)
	c.Adopt(id, sub)
	return u
}

func (c *Context) NewConditional(cond, trueExpr, falseExpr ID) *Conditional {
	e := &Conditional{Condition: cond, True: trueExpr, False: falseExpr}
	id := c.Register(e)
	c.Adopt(id, cond, trueExpr, falseExpr)
	return e
}

func (c *Context) NewAssignment(op string, lhs, rhs ID) *Assignment {
	a := &Assignment{Operator: op, LHS: lhs, RHS: rhs}
	id := c.Register(a)
	c.Adopt(id, lhs, rhs)
	return a
}

func (c *Context) NewLiteral(kind LiteralKind, value string) *Literal {
	l := &Literal{LiteralKind: kind, Value: value}
	c.Register(l)
	return l
}

func (c *Context) NewTupleExpression(components ...ID) *TupleExpression {
	t := &TupleExpression{Components: components}
	id := c.Register(t)
	c.Adopt(id, components...)
	return t
}

func (c *Context) NewElementaryTypeNameExpression(typeName string) *ElementaryTypeNameExpression {
	e := &ElementaryTypeNameExpression{TypeName: typeName}
	c.Register(e)
	return e
}

func (c *Context) NewElementaryTypeName(name string) *ElementaryTypeName {
	t := &ElementaryTypeName{Name: name}
	c.Register(t)
	return t
}

func (c *Context) NewUserDefinedTypeName(path ID, referent ID) *UserDefinedTypeName {
	t := &UserDefinedTypeName{PathNode: path, Referent: referent}
	id := c.Register(t)
	c.Adopt(id, path)
	return t
}

func (c *Context) NewMapping(key, value ID) *Mapping {
	m := &Mapping{KeyType: key, ValueType: value}
	id := c.Register(m)
	c.Adopt(id, key, value)
	return m
}

func (c *Context) NewArrayTypeName(baseType, length ID) *ArrayTypeName {
	a := &ArrayTypeName{BaseType: baseType, Length: length}
	id := c.Register(a)
	c.Adopt(id, baseType, length)
	return a
}

// AddToContract appends a member node to a contract body.
func (c *Context) AddToContract(contract *ContractDefinition, member ID) {
	contract.Nodes = append(contract.Nodes, member)
	c.Adopt(contract.ID(), member)
}

// AddToUnit appends a top-level node to a source unit.
func (c *Context) AddToUnit(unit *SourceUnit, node ID) {
	unit.Nodes = append(unit.Nodes, node)
	c.Adopt(unit.ID(), node)
}
