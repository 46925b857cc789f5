package instrument

import (
	"fmt"

	"scribble/internal/extractor"
	"scribble/internal/sast"
	"scribble/internal/solast"
)

// lowering translates one annotation's checked SAST into host nodes.
// Statements that must run before the check (old captures, quantifier
// loops, let bindings) accumulate into stmt lists supplied by the
// caller; the translation of the expression itself is returned.
type lowering struct {
	ic       *Ctx
	contract *solast.ContractDefinition
	fn       *solast.FunctionDefinition
	annot    *extractor.AnnotationMetadata

	// substitution maps binder names to generated local declarations.
	substitution map[string]solast.ID

	// oldCaptures collects prologue statements that must evaluate in
	// the pre-state, before the wrapped body runs.
	oldCaptures []solast.ID
}

func newLowering(ic *Ctx, contract *solast.ContractDefinition, fn *solast.FunctionDefinition, annot *extractor.AnnotationMetadata) *lowering {
	return &lowering{
		ic:           ic,
		contract:     contract,
		fn:           fn,
		annot:        annot,
		substitution: make(map[string]solast.ID),
	}
}

// lower translates an expression, appending any required statements to
// stmts, and returns the host expression id.
func (l *lowering) lower(expr sast.Expr, stmts *[]solast.ID) solast.ID {
	arena := l.ic.Arena

	switch v := expr.(type) {
	case *sast.NumberLiteral:
		return l.made(arena.NewLiteral(solast.LitNumber, v.Value.String()).ID())

	case *sast.HexLiteral:
		return l.made(arena.NewLiteral(solast.LitNumber, v.Raw).ID())

	case *sast.BoolLiteral:
		if v.Value {
			return l.made(arena.NewLiteral(solast.LitBool, "true").ID())
		}
		return l.made(arena.NewLiteral(solast.LitBool, "false").ID())

	case *sast.StringLiteral:
		return l.made(arena.NewLiteral(solast.LitString, v.Value).ID())

	case *sast.Identifier:
		return l.lowerIdentifier(v)

	case *sast.IndexExpr:
		base := l.lower(v.Base, stmts)
		index := l.lower(v.Index, stmts)
		return l.made(arena.NewIndexAccess(base, index).ID())

	case *sast.MemberExpr:
		base := l.lower(v.Base, stmts)
		referent := l.memberReferent(v)
		return l.made(arena.NewMemberAccess(base, v.Member, referent).ID())

	case *sast.CallExpr:
		return l.lowerCall(v, stmts)

	case *sast.UnaryExpr:
		sub := l.lower(v.Sub, stmts)
		return l.made(arena.NewUnaryOperation(v.Op, true, sub).ID())

	case *sast.BinaryExpr:
		left := l.lower(v.Left, stmts)
		right := l.lower(v.Right, stmts)
		return l.made(arena.NewBinaryOperation(v.Op, left, right).ID())

	case *sast.Conditional:
		cond := l.lower(v.Condition, stmts)
		trueExpr := l.lower(v.True, stmts)
		falseExpr := l.lower(v.False, stmts)
		return l.made(arena.NewConditional(cond, trueExpr, falseExpr).ID())

	case *sast.OldExpr:
		return l.lowerOld(v)

	case *sast.LetExpr:
		value := l.lower(v.Value, stmts)
		decl := l.declareLocal(l.ic.fresh("let_"+v.Name.Name), l.ic.Env.TypeOf(v.Value), value, stmts)
		saved, had := l.substitution[v.Name.Name]
		l.substitution[v.Name.Name] = decl
		body := l.lower(v.Body, stmts)
		if had {
			l.substitution[v.Name.Name] = saved
		} else {
			delete(l.substitution, v.Name.Name)
		}
		return body

	case *sast.Quantifier:
		return l.lowerQuantifier(v, stmts)

	case *sast.TupleExpr:
		components := make([]solast.ID, len(v.Elements))
		for i, el := range v.Elements {
			components[i] = l.lower(el, stmts)
		}
		return l.made(arena.NewTupleExpression(components...).ID())

	case *sast.CastExpr:
		sub := l.lower(v.Sub, stmts)
		callee := arena.NewElementaryTypeNameExpression(v.Target.String())
		return l.made(arena.NewFunctionCall(solast.CallTypeConversion, callee.ID(), sub).ID())
	}
	panic(fmt.Sprintf("instrument: lower: unhandled expression %T", expr))
}

func (l *lowering) lowerIdentifier(v *sast.Identifier) solast.ID {
	arena := l.ic.Arena

	if decl, ok := l.substitution[v.Name]; ok {
		return l.made(arena.NewIdentifier(localName(arena, decl), decl).ID())
	}
	if decl := l.resolveHost(v.Name); decl != solast.InvalidID {
		return l.made(arena.NewIdentifier(v.Name, decl).ID())
	}
	// Builtins (msg, block, tx, this) translate verbatim.
	return l.made(arena.NewIdentifier(v.Name, solast.InvalidID).ID())
}

// resolveHost finds the host declaration a bare name refers to:
// function parameters and returns first, then state variables through
// the linearization, then file-level constants.
func (l *lowering) resolveHost(name string) solast.ID {
	arena := l.ic.Arena
	if l.fn != nil {
		for _, listID := range []solast.ID{l.fn.Parameters, l.fn.ReturnParameters} {
			if list, ok := arena.Node(listID).(*solast.ParameterList); ok {
				for _, id := range list.Parameters {
					if v, ok := arena.Node(id).(*solast.VariableDeclaration); ok && v.Name == name {
						return v.ID()
					}
				}
			}
		}
	}
	if l.contract != nil {
		for _, baseID := range l.contract.LinearizedBaseContracts {
			base, ok := arena.Node(baseID).(*solast.ContractDefinition)
			if !ok {
				continue
			}
			for _, v := range arena.StateVariablesIn(base) {
				if v.Name == name {
					return v.ID()
				}
			}
			for _, fn := range arena.FunctionsIn(base) {
				if fn.Name == name {
					return fn.ID()
				}
			}
		}
	}
	for _, unit := range l.ic.Units {
		for _, id := range unit.Nodes {
			if v, ok := arena.Node(id).(*solast.VariableDeclaration); ok && v.Name == name {
				return v.ID()
			}
		}
	}
	return solast.InvalidID
}

func (l *lowering) memberReferent(v *sast.MemberExpr) solast.ID {
	ud, ok := l.ic.Env.TypeOf(v.Base).(*sast.UserDefinedType)
	if !ok {
		return solast.InvalidID
	}
	arena := l.ic.Arena
	switch ud.Kind {
	case sast.ContractKind:
		contract, ok := arena.Node(solast.ID(ud.Decl)).(*solast.ContractDefinition)
		if !ok {
			return solast.InvalidID
		}
		for _, baseID := range contract.LinearizedBaseContracts {
			if base, ok := arena.Node(baseID).(*solast.ContractDefinition); ok {
				for _, sv := range arena.StateVariablesIn(base) {
					if sv.Name == v.Member {
						return sv.ID()
					}
				}
				for _, fn := range arena.FunctionsIn(base) {
					if fn.Name == v.Member {
						return fn.ID()
					}
				}
			}
		}
	case sast.StructKind:
		if def, ok := arena.Node(solast.ID(ud.Decl)).(*solast.StructDefinition); ok {
			for _, id := range def.Members {
				if field, ok := arena.Node(id).(*solast.VariableDeclaration); ok && field.Name == v.Member {
					return field.ID()
				}
			}
		}
	}
	return solast.InvalidID
}

func (l *lowering) lowerCall(v *sast.CallExpr, stmts *[]solast.ID) solast.ID {
	arena := l.ic.Arena

	// Casts: the checker typed the callee as a type.
	if tt, ok := l.ic.Env.TypeOf(v.Callee).(*sast.TypeOfType); ok {
		arg := l.lower(v.Args[0], stmts)
		var callee solast.ID
		if ud, isUser := tt.Inner.(*sast.UserDefinedType); isUser {
			callee = arena.NewIdentifier(ud.Name, solast.ID(ud.Decl)).ID()
		} else {
			callee = arena.NewElementaryTypeNameExpression(tt.Inner.String()).ID()
		}
		l.made(callee)
		return l.made(arena.NewFunctionCall(solast.CallTypeConversion, callee, arg).ID())
	}

	// User-function calls dispatch to the emitted host function.
	if ident, ok := v.Callee.(*sast.Identifier); ok && l.contract != nil {
		if def := l.ic.Env.LookupUserFunction(arena, l.contract.ID(), ident.Name); def != nil {
			fnID := l.ic.emitUserFunction(def)
			args := make([]solast.ID, len(v.Args))
			for i, a := range v.Args {
				args[i] = l.lower(a, stmts)
			}
			callee := l.made(arena.NewIdentifier(userFunctionName(def), fnID).ID())
			return l.made(arena.NewFunctionCall(solast.CallFunction, callee, args...).ID())
		}
	}

	callee := l.lower(v.Callee, stmts)
	args := make([]solast.ID, len(v.Args))
	for i, a := range v.Args {
		args[i] = l.lower(a, stmts)
	}
	return l.made(arena.NewFunctionCall(solast.CallFunction, callee, args...).ID())
}

// lowerOld captures the operand into a fresh local evaluated in the
// pre-state prologue; the post-state check reads the capture.
func (l *lowering) lowerOld(v *sast.OldExpr) solast.ID {
	value := l.lower(v.Sub, &l.oldCaptures)
	decl := l.declareLocal(l.ic.fresh("old"), l.ic.Env.TypeOf(v.Sub), value, &l.oldCaptures)
	return l.made(l.ic.Arena.NewIdentifier(localName(l.ic.Arena, decl), decl).ID())
}

// lowerQuantifier unrolls a quantifier into a host loop over its
// finite range.
func (l *lowering) lowerQuantifier(v *sast.Quantifier, stmts *[]solast.ID) solast.ID {
	arena := l.ic.Arena

	initial := "true"
	combine := "&&"
	if v.Kind == sast.Exists {
		initial = "false"
		combine = "||"
	}
	okDecl := l.declareLocal(l.ic.fresh(string(v.Kind)+"_ok"), &sast.BoolType{},
		arena.NewLiteral(solast.LitBool, initial).ID(), stmts)

	binderName := l.ic.fresh("bound_" + v.Binder.Name)
	var lowExpr, condRHS solast.ID
	switch rng := v.Range.(type) {
	case *sast.RangeExpr:
		lowExpr = l.lower(rng.Low, stmts)
		condRHS = l.lower(rng.High, stmts)
	default:
		lowExpr = arena.NewLiteral(solast.LitNumber, "0").ID()
		l.made(lowExpr)
		arr := l.lower(rng, stmts)
		condRHS = l.made(arena.NewMemberAccess(arr, "length", solast.InvalidID).ID())
	}

	binder := arena.NewVariableDeclaration(binderName, arena.NewElementaryTypeName(v.BinderType.String()).ID(), v.BinderType.String())
	initStmt := arena.NewVariableDeclarationStatement(binder.ID(), lowExpr)

	condOp := "<="
	if _, overArray := v.Range.(*sast.RangeExpr); !overArray {
		condOp = "<"
	}
	cond := arena.NewBinaryOperation(condOp,
		arena.NewIdentifier(binderName, binder.ID()).ID(), condRHS)

	loop := arena.NewAssignment("=",
		arena.NewIdentifier(binderName, binder.ID()).ID(),
		arena.NewBinaryOperation("+",
			arena.NewIdentifier(binderName, binder.ID()).ID(),
			arena.NewLiteral(solast.LitNumber, "1").ID()).ID())

	saved, had := l.substitution[v.Binder.Name]
	l.substitution[v.Binder.Name] = binder.ID()
	var bodyStmts []solast.ID
	bodyExpr := l.lower(v.Body, &bodyStmts)
	if had {
		l.substitution[v.Binder.Name] = saved
	} else {
		delete(l.substitution, v.Binder.Name)
	}

	// ok = ok && body  (resp. ||) folds the iteration's verdict.
	fold := arena.NewExpressionStatement(arena.NewAssignment("=",
		arena.NewIdentifier(localName(arena, okDecl), okDecl).ID(),
		arena.NewBinaryOperation(combine,
			arena.NewIdentifier(localName(arena, okDecl), okDecl).ID(),
			bodyExpr).ID()).ID())
	bodyStmts = append(bodyStmts, fold.ID())

	body := arena.NewBlock(bodyStmts...)
	forStmt := arena.NewForStatement(initStmt.ID(), cond.ID(), loop.ID(), body.ID())
	*stmts = append(*stmts, forStmt.ID())
	l.made(binder.ID(), initStmt.ID(), cond.ID(), loop.ID(), fold.ID(), body.ID(), forStmt.ID())

	return l.made(arena.NewIdentifier(localName(arena, okDecl), okDecl).ID())
}

// declareLocal emits "T name = value;" into stmts and returns the
// declaration id.
func (l *lowering) declareLocal(name string, t sast.Type, value solast.ID, stmts *[]solast.ID) solast.ID {
	arena := l.ic.Arena
	typeName := l.typeNameFor(t)
	decl := arena.NewVariableDeclaration(name, typeName, typeString(t))
	stmt := arena.NewVariableDeclarationStatement(decl.ID(), value)
	*stmts = append(*stmts, stmt.ID())
	l.made(decl.ID(), stmt.ID())
	return decl.ID()
}

// typeNameFor rebuilds a host type-name subtree for a sast type.
func (l *lowering) typeNameFor(t sast.Type) solast.ID {
	arena := l.ic.Arena
	switch v := t.(type) {
	case *sast.ArrayType:
		var length solast.ID = solast.InvalidID
		if v.Size != nil {
			length = arena.NewLiteral(solast.LitNumber, v.Size.String()).ID()
			l.made(length)
		}
		elem := l.typeNameFor(v.Elem)
		return l.made(arena.NewArrayTypeName(elem, length).ID())
	case *sast.MappingType:
		key := l.typeNameFor(v.Key)
		value := l.typeNameFor(v.Value)
		return l.made(arena.NewMapping(key, value).ID())
	case *sast.UserDefinedType:
		pathNode := arena.NewIdentifierPath(v.Name, solast.ID(v.Decl))
		l.made(pathNode.ID())
		return l.made(arena.NewUserDefinedTypeName(pathNode.ID(), solast.ID(v.Decl)).ID())
	case *sast.IntType:
		if v.Bits == 0 {
			// Constants widen to the largest width for captures.
			if v.Signed {
				return l.made(arena.NewElementaryTypeName("int256").ID())
			}
			return l.made(arena.NewElementaryTypeName("uint256").ID())
		}
		return l.made(arena.NewElementaryTypeName(v.String()).ID())
	default:
		return l.made(arena.NewElementaryTypeName(t.String()).ID())
	}
}

func typeString(t sast.Type) string {
	if it, ok := t.(*sast.IntType); ok && it.Bits == 0 {
		if it.Signed {
			return "int256"
		}
		return "uint256"
	}
	return t.String()
}

// made tags generated nodes as belonging to the current annotation.
func (l *lowering) made(first solast.ID, rest ...solast.ID) solast.ID {
	l.ic.record(l.annot, first)
	l.ic.record(l.annot, rest...)
	return first
}

func localName(arena *solast.Context, decl solast.ID) string {
	if v, ok := arena.Node(decl).(*solast.VariableDeclaration); ok {
		return v.Name
	}
	return ""
}

// emitUserFunction lowers a define into one internal host function per
// (contract, define), reused by every call site.
func (ic *Ctx) emitUserFunction(def *sast.UserFunctionDefinition) solast.ID {
	if id, ok := ic.userFns[def]; ok {
		return id
	}
	arena := ic.Arena
	contract, _ := arena.Node(solast.ID(def.Contract)).(*solast.ContractDefinition)

	fn := arena.NewFunctionDefinition(userFunctionName(def), solast.FnKindFunction, solast.VisInternal, solast.MutView)
	ic.userFns[def] = fn.ID()

	l := newLowering(ic, contract, nil, nil)

	var params []solast.ID
	for _, p := range def.Parameters {
		decl := arena.NewVariableDeclaration(p.Name.Name, l.typeNameFor(p.Type), typeString(p.Type))
		l.substitution[p.Name.Name] = decl.ID()
		params = append(params, decl.ID())
	}
	fn.Parameters = arena.NewParameterList(params...).ID()

	ret := arena.NewVariableDeclaration("", l.typeNameFor(def.ReturnType), typeString(def.ReturnType))
	fn.ReturnParameters = arena.NewParameterList(ret.ID()).ID()
	arena.Adopt(fn.ID(), fn.Parameters, fn.ReturnParameters)

	var stmts []solast.ID
	result := l.lower(def.Body, &stmts)
	stmts = append(stmts, arena.NewReturn(result).ID())
	fn.Body = arena.NewBlock(stmts...).ID()
	arena.Adopt(fn.ID(), fn.Body)

	if contract != nil {
		arena.AddToContract(contract, fn.ID())
	}
	ic.general(fn.ID())
	return fn.ID()
}

func userFunctionName(def *sast.UserFunctionDefinition) string {
	return "__scribble_define_" + def.Name.Name
}
