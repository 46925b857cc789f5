package solast

import "fmt"

func swap(slot *ID, old, new ID) bool {
	if *slot == old {
		*slot = new
		return true
	}
	return false
}

func swapIn(list []ID, old, new ID) bool {
	for i, id := range list {
		if id == old {
			list[i] = new
			return true
		}
	}
	return false
}

// rebind finds the slot of parent that holds old and points it at new.
// One exhaustive match per variant instead of runtime property
// enumeration; adding a node kind without extending this switch panics
// on first use.
func rebind(parent Node, old, new ID) bool {
	switch v := parent.(type) {
	case *SourceUnit:
		return swapIn(v.Nodes, old, new)
	case *PragmaDirective:
		return false
	case *ImportDirective:
		for i := range v.SymbolAliases {
			if v.SymbolAliases[i].Foreign == old {
				v.SymbolAliases[i].Foreign = new
				return true
			}
		}
		return false
	case *ContractDefinition:
		return swap(&v.Documentation, old, new) ||
			swapIn(v.BaseContracts, old, new) ||
			swapIn(v.Nodes, old, new)
	case *InheritanceSpecifier:
		return swap(&v.BaseName, old, new)
	case *FunctionDefinition:
		return swap(&v.Documentation, old, new) ||
			swap(&v.Parameters, old, new) ||
			swap(&v.ReturnParameters, old, new) ||
			swap(&v.Body, old, new)
	case *ParameterList:
		return swapIn(v.Parameters, old, new)
	case *VariableDeclaration:
		return swap(&v.Documentation, old, new) ||
			swap(&v.TypeName, old, new) ||
			swap(&v.Value, old, new)
	case *EventDefinition:
		return swap(&v.Parameters, old, new)
	case *StructDefinition:
		return swapIn(v.Members, old, new)
	case *EnumDefinition:
		return swapIn(v.Members, old, new)
	case *Block:
		return swapIn(v.Statements, old, new)
	case *ExpressionStatement:
		return swap(&v.Expression, old, new)
	case *VariableDeclarationStatement:
		return swapIn(v.Declarations, old, new) || swap(&v.InitialValue, old, new)
	case *Return:
		return swap(&v.Expression, old, new)
	case *IfStatement:
		return swap(&v.Condition, old, new) ||
			swap(&v.TrueBody, old, new) ||
			swap(&v.FalseBody, old, new)
	case *ForStatement:
		return swap(&v.Init, old, new) ||
			swap(&v.Condition, old, new) ||
			swap(&v.Loop, old, new) ||
			swap(&v.Body, old, new)
	case *EmitStatement:
		return swap(&v.EventCall, old, new)
	case *MemberAccess:
		return swap(&v.Expression, old, new)
	case *IndexAccess:
		return swap(&v.Base, old, new) || swap(&v.Index, old, new)
	case *FunctionCall:
		return swap(&v.Expression, old, new) || swapIn(v.Arguments, old, new)
	case *BinaryOperation:
		return swap(&v.Left, old, new) || swap(&v.Right, old, new)
	case *UnaryOperation:
		return swap(&v.Sub, old, new)
	case *Conditional:
		return swap(&v.Condition, old, new) ||
			swap(&v.True, old, new) ||
			swap(&v.False, old, new)
	case *Assignment:
		return swap(&v.LHS, old, new) || swap(&v.RHS, old, new)
	case *TupleExpression:
		return swapIn(v.Components, old, new)
	case *UserDefinedTypeName:
		return swap(&v.PathNode, old, new)
	case *Mapping:
		return swap(&v.KeyType, old, new) || swap(&v.ValueType, old, new)
	case *ArrayTypeName:
		return swap(&v.BaseType, old, new) || swap(&v.Length, old, new)
	case *EnumValue, *StructuredDocumentation, *IdentifierPath, *Identifier,
		*Literal, *ElementaryTypeName, *ElementaryTypeNameExpression, *InlineAssembly:
		return false
	default:
		panic(fmt.Sprintf("solast: rebind: unhandled node kind %T", parent))
	}
}

// ReplaceNode rebinds the parent slot holding old so it refers to new
// instead. The old subtree stays in the arena but becomes unreachable
// from its former parent.
func (c *Context) ReplaceNode(old, new ID) error {
	oldNode := c.Node(old)
	if oldNode == nil {
		return fmt.Errorf("replace: unknown node %d", old)
	}
	parentID := oldNode.Parent()
	parent := c.Node(parentID)
	if parent == nil {
		return fmt.Errorf("replace: node %d has no parent", old)
	}
	if !rebind(parent, old, new) {
		return fmt.Errorf("replace: node %d not found in parent %d", old, parentID)
	}
	c.MustNode(new).setParent(parentID)
	return nil
}

// InsertBefore splices a statement into a block immediately before the
// statement mark, or appends when mark is InvalidID.
func (c *Context) InsertBefore(block ID, mark ID, stmt ID) error {
	b, ok := c.Node(block).(*Block)
	if !ok {
		return fmt.Errorf("insert: node %d is not a block", block)
	}
	if mark == InvalidID {
		b.Statements = append(b.Statements, stmt)
	} else {
		idx := -1
		for i, s := range b.Statements {
			if s == mark {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("insert: statement %d not in block %d", mark, block)
		}
		b.Statements = append(b.Statements[:idx], append([]ID{stmt}, b.Statements[idx:]...)...)
	}
	c.Adopt(block, stmt)
	return nil
}
