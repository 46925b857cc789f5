package printer

import (
	"fmt"
	"strings"

	"scribble/internal/solast"
)

// SourceMap records, for every printed node, its byte range in the
// emitted text.
type SourceMap map[solast.ID]solast.Src

// Printer emits target-language source for a unit and the node→range
// map the metadata emitter consumes. Output is canonical, not a
// byte-level round-trip of the input.
type Printer struct {
	ctx     *solast.Context
	fileIdx int
	b       strings.Builder
	indent  int
	ranges  SourceMap
}

// Print renders one unit. fileIdx tags the emitted ranges.
func Print(ctx *solast.Context, unit *solast.SourceUnit, fileIdx int) (string, SourceMap) {
	p := &Printer{ctx: ctx, fileIdx: fileIdx, ranges: make(SourceMap)}
	p.printNode(unit.ID())
	return p.b.String(), p.ranges
}

// PrintNodes renders a slice of top-level nodes without their unit
// wrapper; the flattener uses it after stripping imports.
func PrintNodes(ctx *solast.Context, nodes []solast.ID, fileIdx int) (string, SourceMap) {
	p := &Printer{ctx: ctx, fileIdx: fileIdx, ranges: make(SourceMap)}
	for _, id := range nodes {
		p.printNode(id)
		p.write("\n")
	}
	return p.b.String(), p.ranges
}

func (p *Printer) write(s string) {
	p.b.WriteString(s)
}

func (p *Printer) writeIndent() {
	p.write(strings.Repeat("    ", p.indent))
}

func (p *Printer) printNode(id solast.ID) {
	if id == solast.InvalidID {
		return
	}
	start := p.b.Len()
	p.emit(id)
	p.ranges[id] = solast.Src{Offset: start, Length: p.b.Len() - start, File: p.fileIdx}
}

func (p *Printer) emit(id solast.ID) {
	switch n := p.ctx.MustNode(id).(type) {
	case *solast.SourceUnit:
		for i, child := range n.Nodes {
			if i > 0 {
				p.write("\n")
			}
			p.printNode(child)
			p.write("\n")
		}

	case *solast.PragmaDirective:
		p.write("pragma " + strings.Join(n.Literals, "") + ";")

	case *solast.ImportDirective:
		if len(n.SymbolAliases) > 0 {
			parts := make([]string, len(n.SymbolAliases))
			for i, alias := range n.SymbolAliases {
				name := p.identName(alias.Foreign)
				if alias.Local != "" {
					name += " as " + alias.Local
				}
				parts[i] = name
			}
			p.write(fmt.Sprintf("import {%s} from %q;", strings.Join(parts, ", "), n.File))
		} else if n.UnitAlias != "" {
			p.write(fmt.Sprintf("import %q as %s;", n.File, n.UnitAlias))
		} else {
			p.write(fmt.Sprintf("import %q;", n.File))
		}

	case *solast.ContractDefinition:
		p.printNode(n.Documentation)
		if n.Abstract {
			p.write("abstract ")
		}
		p.write(string(n.ContractKind) + " " + n.Name)
		if len(n.BaseContracts) > 0 {
			p.write(" is ")
			for i, spec := range n.BaseContracts {
				if i > 0 {
					p.write(", ")
				}
				p.printNode(spec)
			}
		}
		p.write(" {\n")
		p.indent++
		for _, member := range n.Nodes {
			p.writeIndent()
			p.printNode(member)
			if _, isFn := p.ctx.Node(member).(*solast.FunctionDefinition); !isFn {
				if _, isStruct := p.ctx.Node(member).(*solast.StructDefinition); !isStruct {
					p.write(";")
				}
			}
			p.write("\n")
		}
		p.indent--
		p.write("}")

	case *solast.InheritanceSpecifier:
		p.printNode(n.BaseName)

	case *solast.IdentifierPath:
		p.write(n.Name)

	case *solast.StructuredDocumentation:
		for _, line := range strings.Split(n.Text, "\n") {
			p.write(line + "\n")
			p.writeIndent()
		}

	case *solast.FunctionDefinition:
		p.printNode(n.Documentation)
		switch n.FunctionKind {
		case solast.FnKindConstructor:
			p.write("constructor")
		case solast.FnKindFallback:
			p.write("fallback")
		case solast.FnKindReceive:
			p.write("receive")
		default:
			p.write("function " + n.Name)
		}
		p.printNode(n.Parameters)
		p.write(" " + string(n.Visibility))
		if n.StateMutability != solast.MutNonpayable {
			p.write(" " + string(n.StateMutability))
		}
		if n.Virtual {
			p.write(" virtual")
		}
		if rets, ok := p.ctx.Node(n.ReturnParameters).(*solast.ParameterList); ok && len(rets.Parameters) > 0 {
			p.write(" returns ")
			p.printNode(n.ReturnParameters)
		}
		if n.Body == solast.InvalidID {
			p.write(";")
		} else {
			p.write(" ")
			p.printNode(n.Body)
		}

	case *solast.ParameterList:
		p.write("(")
		for i, param := range n.Parameters {
			if i > 0 {
				p.write(", ")
			}
			p.printNode(param)
		}
		p.write(")")

	case *solast.VariableDeclaration:
		p.printNode(n.Documentation)
		p.printNode(n.TypeName)
		if n.StateVariable && n.Visibility != "" {
			p.write(" " + string(n.Visibility))
		}
		if n.Mutability == solast.Constant {
			p.write(" constant")
		}
		if n.Indexed {
			p.write(" indexed")
		}
		if n.Name != "" {
			p.write(" " + n.Name)
		}
		if n.Value != solast.InvalidID {
			p.write(" = ")
			p.printNode(n.Value)
		}

	case *solast.EventDefinition:
		p.write("event " + n.Name)
		p.printNode(n.Parameters)

	case *solast.StructDefinition:
		p.write("struct " + n.Name + " {\n")
		p.indent++
		for _, member := range n.Members {
			p.writeIndent()
			p.printNode(member)
			p.write(";\n")
		}
		p.indent--
		p.writeIndent()
		p.write("}")

	case *solast.EnumDefinition:
		names := make([]string, 0, len(n.Members))
		for _, member := range n.Members {
			if v, ok := p.ctx.Node(member).(*solast.EnumValue); ok {
				names = append(names, v.Name)
			}
		}
		p.write("enum " + n.Name + " { " + strings.Join(names, ", ") + " }")

	case *solast.EnumValue:
		p.write(n.Name)

	case *solast.Block:
		p.write("{\n")
		p.indent++
		for _, stmt := range n.Statements {
			p.writeIndent()
			p.printNode(stmt)
			p.write("\n")
		}
		p.indent--
		p.writeIndent()
		p.write("}")

	case *solast.ExpressionStatement:
		p.printNode(n.Expression)
		p.write(";")

	case *solast.VariableDeclarationStatement:
		for i, decl := range n.Declarations {
			if i > 0 {
				p.write(", ")
			}
			p.printNode(decl)
		}
		if n.InitialValue != solast.InvalidID {
			p.write(" = ")
			p.printNode(n.InitialValue)
		}
		p.write(";")

	case *solast.Return:
		p.write("return")
		if n.Expression != solast.InvalidID {
			p.write(" ")
			p.printNode(n.Expression)
		}
		p.write(";")

	case *solast.IfStatement:
		p.write("if (")
		p.printNode(n.Condition)
		p.write(") ")
		p.printNode(n.TrueBody)
		if n.FalseBody != solast.InvalidID {
			p.write(" else ")
			p.printNode(n.FalseBody)
		}

	case *solast.ForStatement:
		p.write("for (")
		p.printNode(n.Init)
		p.write(" ")
		p.printNode(n.Condition)
		p.write("; ")
		p.printNode(n.Loop)
		p.write(") ")
		p.printNode(n.Body)

	case *solast.EmitStatement:
		p.write("emit ")
		p.printNode(n.EventCall)
		p.write(";")

	case *solast.InlineAssembly:
		p.write("assembly ")
		p.write(n.Text)

	case *solast.Identifier:
		p.write(n.Name)

	case *solast.MemberAccess:
		p.printNode(n.Expression)
		p.write("." + n.MemberName)

	case *solast.IndexAccess:
		p.printNode(n.Base)
		p.write("[")
		p.printNode(n.Index)
		p.write("]")

	case *solast.FunctionCall:
		p.printNode(n.Expression)
		p.write("(")
		for i, arg := range n.Arguments {
			if i > 0 {
				p.write(", ")
			}
			p.printNode(arg)
		}
		p.write(")")

	case *solast.BinaryOperation:
		p.write("(")
		p.printNode(n.Left)
		p.write(" " + n.Operator + " ")
		p.printNode(n.Right)
		p.write(")")

	case *solast.UnaryOperation:
		if n.Prefix {
			p.write(n.Operator)
			p.printNode(n.Sub)
		} else {
			p.printNode(n.Sub)
			p.write(n.Operator)
		}

	case *solast.Conditional:
		p.write("(")
		p.printNode(n.Condition)
		p.write(" ? ")
		p.printNode(n.True)
		p.write(" : ")
		p.printNode(n.False)
		p.write(")")

	case *solast.Assignment:
		p.printNode(n.LHS)
		p.write(" " + n.Operator + " ")
		p.printNode(n.RHS)

	case *solast.Literal:
		if n.LiteralKind == solast.LitString {
			p.write(fmt.Sprintf("%q", n.Value))
		} else {
			p.write(n.Value)
		}

	case *solast.TupleExpression:
		p.write("(")
		for i, comp := range n.Components {
			if i > 0 {
				p.write(", ")
			}
			p.printNode(comp)
		}
		p.write(")")

	case *solast.ElementaryTypeNameExpression:
		p.write(n.TypeName)

	case *solast.ElementaryTypeName:
		p.write(n.Name)

	case *solast.UserDefinedTypeName:
		p.printNode(n.PathNode)

	case *solast.Mapping:
		p.write("mapping(")
		p.printNode(n.KeyType)
		p.write(" => ")
		p.printNode(n.ValueType)
		p.write(")")

	case *solast.ArrayTypeName:
		p.printNode(n.BaseType)
		p.write("[")
		if n.Length != solast.InvalidID {
			p.printNode(n.Length)
		}
		p.write("]")

	default:
		panic(fmt.Sprintf("printer: unhandled node kind %T", n))
	}
}

func (p *Printer) identName(id solast.ID) string {
	if ident, ok := p.ctx.Node(id).(*solast.Identifier); ok {
		return ident.Name
	}
	return ""
}
