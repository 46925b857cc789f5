package solast

import "fmt"

// Context is the arena owning every node of a run. Nodes are reachable
// only through it; edges are IDs into its table.
type Context struct {
	nodes  map[ID]Node
	order  []ID
	nextID ID
}

func NewContext() *Context {
	return &Context{nodes: make(map[ID]Node)}
}

// Register mints an id for a node built outside the factory helpers
// and stores it. The zero Src is kept; generated nodes have no
// original source range until the printer assigns output ranges.
func (c *Context) Register(n Node) ID {
	id := c.nextID
	c.nextID++
	n.setID(id)
	n.setParent(InvalidID)
	c.nodes[id] = n
	c.order = append(c.order, id)
	return id
}

// Node returns the node for an id, or nil for InvalidID and unknown ids.
func (c *Context) Node(id ID) Node {
	if id == InvalidID {
		return nil
	}
	return c.nodes[id]
}

// MustNode is Node but panics on a dangling id. Used where a missing
// node indicates corruption rather than an absent optional child.
func (c *Context) MustNode(id ID) Node {
	n := c.Node(id)
	if n == nil {
		panic(fmt.Sprintf("solast: dangling node id %d", id))
	}
	return n
}

// Count returns the number of nodes in the arena.
func (c *Context) Count() int { return len(c.nodes) }

// IDs returns every node id in insertion order.
func (c *Context) IDs() []ID {
	out := make([]ID, len(c.order))
	copy(out, c.order)
	return out
}

// Adopt sets the parent edge of each child to parent.
func (c *Context) Adopt(parent ID, children ...ID) {
	for _, child := range children {
		if child == InvalidID {
			continue
		}
		c.MustNode(child).setParent(parent)
	}
}

// Children returns the child ids of a node in declaration order,
// skipping absent optionals. The switch is the single place that knows
// every variant's child slots.
func Children(n Node) []ID {
	var out []ID
	keep := func(ids ...ID) {
		for _, id := range ids {
			if id != InvalidID {
				out = append(out, id)
			}
		}
	}

	switch v := n.(type) {
	case *SourceUnit:
		keep(v.Nodes...)
	case *PragmaDirective:
	case *ImportDirective:
		for _, a := range v.SymbolAliases {
			keep(a.Foreign)
		}
	case *ContractDefinition:
		keep(v.Documentation)
		keep(v.BaseContracts...)
		keep(v.Nodes...)
	case *InheritanceSpecifier:
		keep(v.BaseName)
	case *IdentifierPath:
	case *StructuredDocumentation:
	case *FunctionDefinition:
		keep(v.Documentation, v.Parameters, v.ReturnParameters, v.Body)
	case *ParameterList:
		keep(v.Parameters...)
	case *VariableDeclaration:
		keep(v.Documentation, v.TypeName, v.Value)
	case *EventDefinition:
		keep(v.Parameters)
	case *StructDefinition:
		keep(v.Members...)
	case *EnumDefinition:
		keep(v.Members...)
	case *EnumValue:
	case *Block:
		keep(v.Statements...)
	case *ExpressionStatement:
		keep(v.Expression)
	case *VariableDeclarationStatement:
		keep(v.Declarations...)
		keep(v.InitialValue)
	case *Return:
		keep(v.Expression)
	case *IfStatement:
		keep(v.Condition, v.TrueBody, v.FalseBody)
	case *ForStatement:
		keep(v.Init, v.Condition, v.Loop, v.Body)
	case *EmitStatement:
		keep(v.EventCall)
	case *InlineAssembly:
	case *Identifier:
	case *MemberAccess:
		keep(v.Expression)
	case *IndexAccess:
		keep(v.Base, v.Index)
	case *FunctionCall:
		keep(v.Expression)
		keep(v.Arguments...)
	case *BinaryOperation:
		keep(v.Left, v.Right)
	case *UnaryOperation:
		keep(v.Sub)
	case *Conditional:
		keep(v.Condition, v.True, v.False)
	case *Assignment:
		keep(v.LHS, v.RHS)
	case *Literal:
	case *TupleExpression:
		keep(v.Components...)
	case *ElementaryTypeNameExpression:
	case *ElementaryTypeName:
	case *UserDefinedTypeName:
		keep(v.PathNode)
	case *Mapping:
		keep(v.KeyType, v.ValueType)
	case *ArrayTypeName:
		keep(v.BaseType, v.Length)
	default:
		panic(fmt.Sprintf("solast: Children: unhandled node kind %T", n))
	}
	return out
}

// Sanity verifies the structural invariants of a unit: every child
// exists, child parent edges point back, and every reference edge
// resolves inside the context. Run after every merge.
func (c *Context) Sanity(unit ID) error {
	root := c.Node(unit)
	if root == nil {
		return fmt.Errorf("unit %d not in context", unit)
	}
	if _, ok := root.(*SourceUnit); !ok {
		return fmt.Errorf("node %d is not a source unit", unit)
	}

	var check func(id ID) error
	check = func(id ID) error {
		n := c.Node(id)
		if n == nil {
			return fmt.Errorf("dangling child id %d", id)
		}
		for _, child := range Children(n) {
			cn := c.Node(child)
			if cn == nil {
				return fmt.Errorf("node %d has dangling child %d", id, child)
			}
			if cn.Parent() != id {
				return fmt.Errorf("node %d has parent %d, expected %d", child, cn.Parent(), id)
			}
			if err := check(child); err != nil {
				return err
			}
		}
		if ref, ok := n.(Referencer); ok {
			if r := ref.ReferencedDeclaration(); r != InvalidID && c.Node(r) == nil {
				return fmt.Errorf("node %d references missing declaration %d", id, r)
			}
		}
		return nil
	}
	return check(unit)
}
