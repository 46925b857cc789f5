package compiler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"scribble/internal/solast"
)

// rawNode mirrors the host compiler's JSON AST shape. Only the fields
// the core consumes are decoded; everything else is ignored.
type rawNode struct {
	ID       int    `json:"id"`
	NodeType string `json:"nodeType"`
	Src      string `json:"src"`

	// Source units and containers
	AbsolutePath string    `json:"absolutePath"`
	Nodes        []rawNode `json:"nodes"`
	Literals     []string  `json:"literals"`

	// Imports
	File          string `json:"file"`
	UnitAlias     string `json:"unitAlias"`
	SymbolAliases []struct {
		Foreign *rawNode `json:"foreign"`
		Local   string   `json:"local"`
	} `json:"symbolAliases"`

	// Contracts
	Name                    string    `json:"name"`
	ContractKind            string    `json:"contractKind"`
	Abstract                bool      `json:"abstract"`
	BaseContracts           []rawNode `json:"baseContracts"`
	LinearizedBaseContracts []int     `json:"linearizedBaseContracts"`
	BaseName                *rawNode  `json:"baseName"`
	Documentation           *rawNode  `json:"documentation"`
	Text                    string    `json:"text"`

	// Functions and variables. "parameters" holds an object on
	// function-like nodes but an array on ParameterList nodes, and
	// "value" holds an initialiser object on declarations but a plain
	// string on literals, so both stay raw until the node type is known.
	Kind             string          `json:"kind"`
	Visibility       string          `json:"visibility"`
	StateMutability  string          `json:"stateMutability"`
	Virtual          bool            `json:"virtual"`
	Parameters       json.RawMessage `json:"parameters"`
	ReturnParameters *rawNode        `json:"returnParameters"`
	Body             *rawNode        `json:"body"`
	StateVariable    bool            `json:"stateVariable"`
	Constant         bool            `json:"constant"`
	Mutability       string          `json:"mutability"`
	Indexed          bool            `json:"indexed"`
	TypeName         *rawNode        `json:"typeName"`
	Value            json.RawMessage `json:"value"`
	Anonymous        bool            `json:"anonymous"`
	Members          []rawNode       `json:"members"`
	SourceUnitRef    *int            `json:"sourceUnit"`

	// Statements
	Statements               []rawNode `json:"statements"`
	Declarations             []rawNode `json:"declarations"`
	InitialValue             *rawNode  `json:"initialValue"`
	Expression               *rawNode  `json:"expression"`
	Condition                *rawNode  `json:"condition"`
	TrueBody                 *rawNode  `json:"trueBody"`
	FalseBody                *rawNode  `json:"falseBody"`
	InitializationExpression *rawNode  `json:"initializationExpression"`
	LoopExpression           *rawNode  `json:"loopExpression"`
	EventCall                *rawNode  `json:"eventCall"`
	Operations               string    `json:"operations"`

	// Expressions
	Operator              string    `json:"operator"`
	LeftExpression        *rawNode  `json:"leftExpression"`
	RightExpression       *rawNode  `json:"rightExpression"`
	LeftHandSide          *rawNode  `json:"leftHandSide"`
	RightHandSide         *rawNode  `json:"rightHandSide"`
	Prefix                bool      `json:"prefix"`
	SubExpression         *rawNode  `json:"subExpression"`
	TrueExpression        *rawNode  `json:"trueExpression"`
	FalseExpression       *rawNode  `json:"falseExpression"`
	MemberName            string    `json:"memberName"`
	ReferencedDeclaration *int      `json:"referencedDeclaration"`
	BaseExpression        *rawNode  `json:"baseExpression"`
	IndexExpression       *rawNode  `json:"indexExpression"`
	Arguments             []rawNode `json:"arguments"`
	Components            []rawNode `json:"components"`
	HexValue              string    `json:"hexValue"`

	// Type names
	KeyType          *rawNode `json:"keyType"`
	ValueType        *rawNode `json:"valueType"`
	BaseType         *rawNode `json:"baseType"`
	Length           *rawNode `json:"length"`
	PathNode         *rawNode `json:"pathNode"`
	TypeDescriptions struct {
		TypeString string `json:"typeString"`
	} `json:"typeDescriptions"`
}

// Decoder rebuilds solast trees from host-compiler JSON output. All
// referencedDeclaration edges are remapped into the fresh id space
// after every unit of a compilation has been decoded.
type Decoder struct {
	ctx   *solast.Context
	idMap map[int]solast.ID
	// deferred reference fixups, applied once all ids are known.
	fixups []func()
}

func NewDecoder() *Decoder {
	return &Decoder{
		ctx:   solast.NewContext(),
		idMap: make(map[int]solast.ID),
	}
}

// Context returns the arena holding every decoded unit.
func (d *Decoder) Context() *solast.Context { return d.ctx }

// DecodeUnit decodes one source unit's JSON AST.
func (d *Decoder) DecodeUnit(data []byte) (solast.ID, error) {
	var root rawNode
	if err := json.Unmarshal(data, &root); err != nil {
		return solast.InvalidID, fmt.Errorf("malformed compiler AST: %w", err)
	}
	return d.decode(&root)
}

// Finish applies reference fixups; call after all units of a
// compilation are decoded.
func (d *Decoder) Finish() {
	for _, fix := range d.fixups {
		fix()
	}
	d.fixups = nil
}

func (d *Decoder) mapRef(set func(solast.ID), ref *int) {
	if ref == nil {
		return
	}
	orig := *ref
	d.fixups = append(d.fixups, func() {
		if mapped, ok := d.idMap[orig]; ok {
			set(mapped)
		}
	})
}

func (d *Decoder) child(n *rawNode) (solast.ID, error) {
	if n == nil {
		return solast.InvalidID, nil
	}
	return d.decode(n)
}

func (d *Decoder) children(list []rawNode) ([]solast.ID, error) {
	var out []solast.ID
	for i := range list {
		id, err := d.decode(&list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (d *Decoder) decode(n *rawNode) (solast.ID, error) {
	var node solast.Node

	switch n.NodeType {
	case "SourceUnit":
		kids, err := d.children(n.Nodes)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewSourceUnit(n.AbsolutePath, kids...)

	case "PragmaDirective":
		node = d.ctx.NewPragmaDirective(n.Literals...)

	case "ImportDirective":
		imp := d.ctx.NewImportDirective(n.File, n.AbsolutePath, solast.InvalidID)
		imp.UnitAlias = n.UnitAlias
		for _, alias := range n.SymbolAliases {
			foreign, err := d.child(alias.Foreign)
			if err != nil {
				return solast.InvalidID, err
			}
			imp.SymbolAliases = append(imp.SymbolAliases, solast.SymbolAlias{Foreign: foreign, Local: alias.Local})
			d.ctx.Adopt(imp.ID(), foreign)
		}
		d.mapRef(imp.SetReferencedDeclaration, n.SourceUnitRef)
		node = imp

	case "ContractDefinition":
		contract := d.ctx.NewContractDefinition(n.Name, solast.ContractKind(n.ContractKind))
		contract.Abstract = n.Abstract
		doc, err := d.child(n.Documentation)
		if err != nil {
			return solast.InvalidID, err
		}
		contract.Documentation = doc
		d.ctx.Adopt(contract.ID(), doc)
		bases, err := d.children(n.BaseContracts)
		if err != nil {
			return solast.InvalidID, err
		}
		contract.BaseContracts = bases
		d.ctx.Adopt(contract.ID(), bases...)
		kids, err := d.children(n.Nodes)
		if err != nil {
			return solast.InvalidID, err
		}
		contract.Nodes = kids
		d.ctx.Adopt(contract.ID(), kids...)
		linearized := append([]int(nil), n.LinearizedBaseContracts...)
		d.fixups = append(d.fixups, func() {
			var mapped []solast.ID
			for _, orig := range linearized {
				if id, ok := d.idMap[orig]; ok {
					mapped = append(mapped, id)
				}
			}
			if len(mapped) > 0 {
				contract.LinearizedBaseContracts = mapped
			}
		})
		node = contract

	case "InheritanceSpecifier":
		baseName, err := d.child(n.BaseName)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewInheritanceSpecifier(baseName)

	case "IdentifierPath", "UserDefinedTypeName":
		if n.NodeType == "IdentifierPath" || n.PathNode == nil {
			p := d.ctx.NewIdentifierPath(n.Name, solast.InvalidID)
			d.mapRef(p.SetReferencedDeclaration, n.ReferencedDeclaration)
			if n.NodeType == "IdentifierPath" {
				node = p
				break
			}
			t := d.ctx.NewUserDefinedTypeName(p.ID(), solast.InvalidID)
			d.mapRef(t.SetReferencedDeclaration, n.ReferencedDeclaration)
			node = t
			break
		}
		pathID, err := d.child(n.PathNode)
		if err != nil {
			return solast.InvalidID, err
		}
		t := d.ctx.NewUserDefinedTypeName(pathID, solast.InvalidID)
		d.mapRef(t.SetReferencedDeclaration, n.ReferencedDeclaration)
		node = t

	case "StructuredDocumentation":
		node = d.ctx.NewStructuredDocumentation(n.Text)

	case "FunctionDefinition":
		fn := d.ctx.NewFunctionDefinition(n.Name, solast.FunctionKind(n.Kind),
			solast.Visibility(n.Visibility), solast.StateMutability(n.StateMutability))
		fn.Virtual = n.Virtual
		doc, err := d.child(n.Documentation)
		if err != nil {
			return solast.InvalidID, err
		}
		params, err := d.child(n.paramsNode())
		if err != nil {
			return solast.InvalidID, err
		}
		rets, err := d.child(n.ReturnParameters)
		if err != nil {
			return solast.InvalidID, err
		}
		body, err := d.child(n.Body)
		if err != nil {
			return solast.InvalidID, err
		}
		fn.Documentation, fn.Parameters, fn.ReturnParameters, fn.Body = doc, params, rets, body
		d.ctx.Adopt(fn.ID(), doc, params, rets, body)
		node = fn

	case "ParameterList":
		params, err := d.children(n.paramsList())
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewParameterList(params...)

	case "VariableDeclaration":
		typeName, err := d.child(n.TypeName)
		if err != nil {
			return solast.InvalidID, err
		}
		v := d.ctx.NewVariableDeclaration(n.Name, typeName, n.TypeDescriptions.TypeString)
		v.Visibility = solast.Visibility(n.Visibility)
		v.StateVariable = n.StateVariable
		v.Indexed = n.Indexed
		switch {
		case n.Mutability != "":
			v.Mutability = solast.Mutability(n.Mutability)
		case n.Constant:
			v.Mutability = solast.Constant
		}
		value, err := d.child(n.valueNode())
		if err != nil {
			return solast.InvalidID, err
		}
		v.Value = value
		d.ctx.Adopt(v.ID(), value)
		node = v

	case "EventDefinition":
		params, err := d.child(n.paramsNode())
		if err != nil {
			return solast.InvalidID, err
		}
		ev := d.ctx.NewEventDefinition(n.Name, params)
		ev.Anonymous = n.Anonymous
		node = ev

	case "StructDefinition":
		members, err := d.children(n.Members)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewStructDefinition(n.Name, members...)

	case "EnumDefinition":
		members, err := d.children(n.Members)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewEnumDefinition(n.Name, members...)

	case "EnumValue":
		node = d.ctx.NewEnumValue(n.Name)

	case "Block", "UncheckedBlock":
		stmts, err := d.children(n.Statements)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewBlock(stmts...)

	case "ExpressionStatement":
		expr, err := d.child(n.Expression)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewExpressionStatement(expr)

	case "VariableDeclarationStatement":
		decls, err := d.children(n.Declarations)
		if err != nil {
			return solast.InvalidID, err
		}
		value, err := d.child(n.InitialValue)
		if err != nil {
			return solast.InvalidID, err
		}
		stmt := &solast.VariableDeclarationStatement{Declarations: decls, InitialValue: value}
		d.ctx.Register(stmt)
		d.ctx.Adopt(stmt.ID(), decls...)
		d.ctx.Adopt(stmt.ID(), value)
		node = stmt

	case "Return":
		expr, err := d.child(n.Expression)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewReturn(expr)

	case "IfStatement":
		cond, err := d.child(n.Condition)
		if err != nil {
			return solast.InvalidID, err
		}
		trueBody, err := d.child(n.TrueBody)
		if err != nil {
			return solast.InvalidID, err
		}
		falseBody, err := d.child(n.FalseBody)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewIfStatement(cond, trueBody, falseBody)

	case "ForStatement":
		init, err := d.child(n.InitializationExpression)
		if err != nil {
			return solast.InvalidID, err
		}
		cond, err := d.child(n.Condition)
		if err != nil {
			return solast.InvalidID, err
		}
		loop, err := d.child(n.LoopExpression)
		if err != nil {
			return solast.InvalidID, err
		}
		body, err := d.child(n.Body)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewForStatement(init, cond, loop, body)

	case "EmitStatement":
		call, err := d.child(n.EventCall)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewEmitStatement(call)

	case "InlineAssembly":
		node = d.ctx.NewInlineAssembly(n.Operations)

	case "Identifier":
		ident := d.ctx.NewIdentifier(n.Name, solast.InvalidID)
		d.mapRef(ident.SetReferencedDeclaration, n.ReferencedDeclaration)
		node = ident

	case "MemberAccess":
		base, err := d.child(n.Expression)
		if err != nil {
			return solast.InvalidID, err
		}
		m := d.ctx.NewMemberAccess(base, n.MemberName, solast.InvalidID)
		d.mapRef(m.SetReferencedDeclaration, n.ReferencedDeclaration)
		node = m

	case "IndexAccess":
		base, err := d.child(n.BaseExpression)
		if err != nil {
			return solast.InvalidID, err
		}
		index, err := d.child(n.IndexExpression)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewIndexAccess(base, index)

	case "FunctionCall":
		callee, err := d.child(n.Expression)
		if err != nil {
			return solast.InvalidID, err
		}
		args, err := d.children(n.Arguments)
		if err != nil {
			return solast.InvalidID, err
		}
		kind := solast.CallKind(n.Kind)
		if kind == "" {
			kind = solast.CallFunction
		}
		node = d.ctx.NewFunctionCall(kind, callee, args...)

	case "BinaryOperation":
		left, err := d.child(n.LeftExpression)
		if err != nil {
			return solast.InvalidID, err
		}
		right, err := d.child(n.RightExpression)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewBinaryOperation(n.Operator, left, right)

	case "UnaryOperation":
		sub, err := d.child(n.SubExpression)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewUnaryOperation(n.Operator, n.Prefix, sub)

	case "Conditional":
		cond, err := d.child(n.Condition)
		if err != nil {
			return solast.InvalidID, err
		}
		trueExpr, err := d.child(n.TrueExpression)
		if err != nil {
			return solast.InvalidID, err
		}
		falseExpr, err := d.child(n.FalseExpression)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewConditional(cond, trueExpr, falseExpr)

	case "Assignment":
		lhs, err := d.child(n.LeftHandSide)
		if err != nil {
			return solast.InvalidID, err
		}
		rhs, err := d.child(n.RightHandSide)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewAssignment(n.Operator, lhs, rhs)

	case "Literal":
		node = d.ctx.NewLiteral(solast.LiteralKind(n.Kind), n.LiteralString())

	case "TupleExpression":
		components, err := d.children(n.Components)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewTupleExpression(components...)

	case "ElementaryTypeNameExpression":
		node = d.ctx.NewElementaryTypeNameExpression(n.TypeDescriptions.TypeString)

	case "ElementaryTypeName":
		node = d.ctx.NewElementaryTypeName(n.Name)

	case "Mapping":
		key, err := d.child(n.KeyType)
		if err != nil {
			return solast.InvalidID, err
		}
		value, err := d.child(n.ValueType)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewMapping(key, value)

	case "ArrayTypeName":
		baseType, err := d.child(n.BaseType)
		if err != nil {
			return solast.InvalidID, err
		}
		length, err := d.child(n.Length)
		if err != nil {
			return solast.InvalidID, err
		}
		node = d.ctx.NewArrayTypeName(baseType, length)

	default:
		return solast.InvalidID, fmt.Errorf("unsupported compiler AST node type %q", n.NodeType)
	}

	node.SetSrc(parseSrc(n.Src))
	d.idMap[n.ID] = node.ID()
	return node.ID(), nil
}

// paramsNode decodes "parameters" as a nested ParameterList object.
func (n *rawNode) paramsNode() *rawNode {
	if len(n.Parameters) == 0 {
		return nil
	}
	var out rawNode
	if json.Unmarshal(n.Parameters, &out) != nil {
		return nil
	}
	return &out
}

// paramsList decodes "parameters" as a flat declaration array.
func (n *rawNode) paramsList() []rawNode {
	if len(n.Parameters) == 0 {
		return nil
	}
	var out []rawNode
	if json.Unmarshal(n.Parameters, &out) != nil {
		return nil
	}
	return out
}

// valueNode decodes a declaration initialiser.
func (n *rawNode) valueNode() *rawNode {
	if len(n.Value) == 0 {
		return nil
	}
	var out rawNode
	if json.Unmarshal(n.Value, &out) != nil {
		return nil
	}
	return &out
}

// LiteralString extracts a literal's value, tolerating both the plain
// string form and hex-only literals.
func (n *rawNode) LiteralString() string {
	if len(n.Value) > 0 {
		var s string
		if json.Unmarshal(n.Value, &s) == nil {
			return s
		}
	}
	return n.HexValue
}

// parseSrc decodes the host "offset:length:file" triple.
func parseSrc(src string) solast.Src {
	parts := strings.Split(src, ":")
	if len(parts) != 3 {
		return solast.Src{}
	}
	offset, _ := strconv.Atoi(parts[0])
	length, _ := strconv.Atoi(parts[1])
	file, _ := strconv.Atoi(parts[2])
	return solast.Src{Offset: offset, Length: length, File: file}
}
