package solast

import "fmt"

func cloneShallow(n Node) Node {
	switch v := n.(type) {
	case *SourceUnit:
		cp := *v
		cp.Nodes = append([]ID(nil), v.Nodes...)
		return &cp
	case *PragmaDirective:
		cp := *v
		cp.Literals = append([]string(nil), v.Literals...)
		return &cp
	case *ImportDirective:
		cp := *v
		cp.SymbolAliases = append([]SymbolAlias(nil), v.SymbolAliases...)
		return &cp
	case *ContractDefinition:
		cp := *v
		cp.BaseContracts = append([]ID(nil), v.BaseContracts...)
		cp.Nodes = append([]ID(nil), v.Nodes...)
		cp.LinearizedBaseContracts = append([]ID(nil), v.LinearizedBaseContracts...)
		return &cp
	case *InheritanceSpecifier:
		cp := *v
		return &cp
	case *IdentifierPath:
		cp := *v
		return &cp
	case *StructuredDocumentation:
		cp := *v
		return &cp
	case *FunctionDefinition:
		cp := *v
		return &cp
	case *ParameterList:
		cp := *v
		cp.Parameters = append([]ID(nil), v.Parameters...)
		return &cp
	case *VariableDeclaration:
		cp := *v
		return &cp
	case *EventDefinition:
		cp := *v
		return &cp
	case *StructDefinition:
		cp := *v
		cp.Members = append([]ID(nil), v.Members...)
		return &cp
	case *EnumDefinition:
		cp := *v
		cp.Members = append([]ID(nil), v.Members...)
		return &cp
	case *EnumValue:
		cp := *v
		return &cp
	case *Block:
		cp := *v
		cp.Statements = append([]ID(nil), v.Statements...)
		return &cp
	case *ExpressionStatement:
		cp := *v
		return &cp
	case *VariableDeclarationStatement:
		cp := *v
		cp.Declarations = append([]ID(nil), v.Declarations...)
		return &cp
	case *Return:
		cp := *v
		return &cp
	case *IfStatement:
		cp := *v
		return &cp
	case *ForStatement:
		cp := *v
		return &cp
	case *EmitStatement:
		cp := *v
		return &cp
	case *InlineAssembly:
		cp := *v
		return &cp
	case *Identifier:
		cp := *v
		return &cp
	case *MemberAccess:
		cp := *v
		return &cp
	case *IndexAccess:
		cp := *v
		return &cp
	case *FunctionCall:
		cp := *v
		cp.Arguments = append([]ID(nil), v.Arguments...)
		return &cp
	case *BinaryOperation:
		cp := *v
		return &cp
	case *UnaryOperation:
		cp := *v
		return &cp
	case *Conditional:
		cp := *v
		return &cp
	case *Assignment:
		cp := *v
		return &cp
	case *Literal:
		cp := *v
		return &cp
	case *TupleExpression:
		cp := *v
		cp.Components = append([]ID(nil), v.Components...)
		return &cp
	case *ElementaryTypeNameExpression:
		cp := *v
		return &cp
	case *ElementaryTypeName:
		cp := *v
		return &cp
	case *UserDefinedTypeName:
		cp := *v
		return &cp
	case *Mapping:
		cp := *v
		return &cp
	case *ArrayTypeName:
		cp := *v
		return &cp
	default:
		panic(fmt.Sprintf("solast: cloneShallow: unhandled node kind %T", n))
	}
}

// RemapIDs applies f to every ID slot of a node: parent, child edges
// and reference edges. Callers decide what f does with ids outside
// their mapping.
func RemapIDs(n Node, f func(ID) ID) {
	n.setParent(f(n.Parent()))

	mapAll := func(ids []ID) {
		for i := range ids {
			ids[i] = f(ids[i])
		}
	}

	switch v := n.(type) {
	case *SourceUnit:
		mapAll(v.Nodes)
	case *PragmaDirective:
	case *ImportDirective:
		for i := range v.SymbolAliases {
			v.SymbolAliases[i].Foreign = f(v.SymbolAliases[i].Foreign)
		}
		v.SourceUnit = f(v.SourceUnit)
	case *ContractDefinition:
		v.Documentation = f(v.Documentation)
		mapAll(v.BaseContracts)
		mapAll(v.Nodes)
		mapAll(v.LinearizedBaseContracts)
	case *InheritanceSpecifier:
		v.BaseName = f(v.BaseName)
	case *IdentifierPath:
		v.Referent = f(v.Referent)
	case *StructuredDocumentation:
	case *FunctionDefinition:
		v.Documentation = f(v.Documentation)
		v.Parameters = f(v.Parameters)
		v.ReturnParameters = f(v.ReturnParameters)
		v.Body = f(v.Body)
	case *ParameterList:
		mapAll(v.Parameters)
	case *VariableDeclaration:
		v.Documentation = f(v.Documentation)
		v.TypeName = f(v.TypeName)
		v.Value = f(v.Value)
	case *EventDefinition:
		v.Parameters = f(v.Parameters)
	case *StructDefinition:
		mapAll(v.Members)
	case *EnumDefinition:
		mapAll(v.Members)
	case *EnumValue:
	case *Block:
		mapAll(v.Statements)
	case *ExpressionStatement:
		v.Expression = f(v.Expression)
	case *VariableDeclarationStatement:
		mapAll(v.Declarations)
		v.InitialValue = f(v.InitialValue)
	case *Return:
		v.Expression = f(v.Expression)
		v.FunctionReturnParameters = f(v.FunctionReturnParameters)
	case *IfStatement:
		v.Condition = f(v.Condition)
		v.TrueBody = f(v.TrueBody)
		v.FalseBody = f(v.FalseBody)
	case *ForStatement:
		v.Init = f(v.Init)
		v.Condition = f(v.Condition)
		v.Loop = f(v.Loop)
		v.Body = f(v.Body)
	case *EmitStatement:
		v.EventCall = f(v.EventCall)
	case *InlineAssembly:
	case *Identifier:
		v.Referent = f(v.Referent)
	case *MemberAccess:
		v.Expression = f(v.Expression)
		v.Referent = f(v.Referent)
	case *IndexAccess:
		v.Base = f(v.Base)
		v.Index = f(v.Index)
	case *FunctionCall:
		v.Expression = f(v.Expression)
		mapAll(v.Arguments)
	case *BinaryOperation:
		v.Left = f(v.Left)
		v.Right = f(v.Right)
	case *UnaryOperation:
		v.Sub = f(v.Sub)
	case *Conditional:
		v.Condition = f(v.Condition)
		v.True = f(v.True)
		v.False = f(v.False)
	case *Assignment:
		v.LHS = f(v.LHS)
		v.RHS = f(v.RHS)
	case *Literal:
	case *TupleExpression:
		mapAll(v.Components)
	case *ElementaryTypeNameExpression:
	case *ElementaryTypeName:
	case *UserDefinedTypeName:
		v.PathNode = f(v.PathNode)
		v.Referent = f(v.Referent)
	case *Mapping:
		v.KeyType = f(v.KeyType)
		v.ValueType = f(v.ValueType)
	case *ArrayTypeName:
		v.BaseType = f(v.BaseType)
		v.Length = f(v.Length)
	default:
		panic(fmt.Sprintf("solast: RemapIDs: unhandled node kind %T", n))
	}
}

// CloneUnits deep-clones a forest of source units from src into dst,
// keeping all intra-forest edges consistent under the new id space.
// The returned table maps old ids to new ids for every cloned node.
func CloneUnits(src *Context, dst *Context, units []ID) (map[ID]ID, error) {
	remap := make(map[ID]ID)
	var order []ID

	for _, unit := range units {
		src.Walk(unit, func(n Node) bool {
			if _, seen := remap[n.ID()]; seen {
				return false
			}
			remap[n.ID()] = InvalidID
			order = append(order, n.ID())
			return true
		})
	}

	clones := make(map[ID]Node, len(order))
	for _, oldID := range order {
		orig := src.MustNode(oldID)
		cp := cloneShallow(orig)
		remap[oldID] = dst.Register(cp)
		// Register resets the parent edge; restore the source parent so
		// the remap pass below can translate it.
		cp.setParent(orig.Parent())
		clones[oldID] = cp
	}

	var missing error
	for _, oldID := range order {
		RemapIDs(clones[oldID], func(id ID) ID {
			if id == InvalidID {
				return InvalidID
			}
			newID, ok := remap[id]
			if !ok {
				if missing == nil {
					missing = fmt.Errorf("clone: node %d references %d outside the cloned forest", oldID, id)
				}
				return InvalidID
			}
			return newID
		})
	}
	if missing != nil {
		return nil, missing
	}

	// Unit roots have no parent inside the forest.
	for _, unit := range units {
		clones[unit].setParent(InvalidID)
	}
	return remap, nil
}
