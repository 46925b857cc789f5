package typecheck

import (
	"fmt"

	"scribble/internal/errors"
	"scribble/internal/extractor"
	"scribble/internal/sast"
	"scribble/internal/solast"
)

// Checker assigns a type to every specification expression and records
// semantic metadata used by later passes. One checker serves a whole
// run; the typing context is reset per annotation.
type Checker struct {
	ctx   *solast.Context
	units []*solast.SourceUnit
	env   *TypeEnv
	sem   SemanticMap

	scopes   []scope
	contract *solast.ContractDefinition
	function *solast.FunctionDefinition
	kind     sast.AnnotationKind
	annot    *extractor.AnnotationMetadata

	// checkingDefine guards against recursive define bodies.
	checkingDefine *sast.UserFunctionDefinition

	errs []errors.CompilerError
}

func NewChecker(ctx *solast.Context, units []*solast.SourceUnit, env *TypeEnv, sem SemanticMap) *Checker {
	return &Checker{ctx: ctx, units: units, env: env, sem: sem}
}

func (c *Checker) Errors() []errors.CompilerError {
	return c.errs
}

// CheckAnnotation types one extracted annotation in its target's
// context. Errors are accumulated; a nil-typed subtree means the
// annotation is unusable.
func (c *Checker) CheckAnnotation(meta *extractor.AnnotationMetadata) {
	c.scopes = nil
	c.annot = meta
	c.kind = meta.Kind
	c.contract = nil
	c.function = nil

	switch target := c.ctx.Node(meta.Target).(type) {
	case *solast.ContractDefinition:
		c.contract = target
	case *solast.FunctionDefinition:
		c.function = target
		if parent, ok := c.ctx.Node(target.Parent()).(*solast.ContractDefinition); ok {
			c.contract = parent
		}
	}

	if meta.Kind == sast.Define {
		c.checkDefine(meta.Parsed.Def)
		return
	}

	t := c.check(meta.Parsed.Expr)
	if t != nil {
		if _, ok := t.(*sast.BoolType); !ok {
			c.errorf(errors.ErrorIncompatibleTypes, meta.Parsed.Expr.NodePos(),
				"property must be boolean, found %s", t.String())
		}
	}
}

func (c *Checker) checkDefine(def *sast.UserFunctionDefinition) {
	if c.contract == nil {
		return
	}
	// The signature is registered up front so sibling annotations can
	// call it; the recursion guard rejects self-reference in the body.
	if !c.env.DefineUserFunction(c.contract.ID(), def) {
		c.errorf(errors.ErrorUnknownName, def.Name.Pos,
			"user function '%s' is already defined", def.Name.Name)
		return
	}

	c.checkingDefine = def
	defer func() { c.checkingDefine = nil }()

	c.pushScope()
	for _, p := range def.Parameters {
		c.bind(p.Name.Name, p.Type)
	}
	bodyType := c.check(def.Body)
	c.popScope()

	if bodyType != nil && !compatible(bodyType, def.ReturnType) {
		c.errorf(errors.ErrorIncompatibleTypes, def.Body.NodePos(),
			"user function body has type %s, declared %s", bodyType.String(), def.ReturnType.String())
	}
}

// check walks an expression bottom-up, assigning exactly one type per
// node. It returns nil when the subtree is ill-typed.
func (c *Checker) check(expr sast.Expr) sast.Type {
	t := c.checkInner(expr)
	if t != nil {
		if !c.env.SetType(expr, t) {
			c.errs = append(c.errs, errors.Internal(
				fmt.Sprintf("conflicting type re-assignment on %s", expr.String()), expr.NodePos()))
			return nil
		}
	}
	return t
}

func (c *Checker) checkInner(expr sast.Expr) sast.Type {
	switch v := expr.(type) {
	case *sast.NumberLiteral:
		return &sast.IntType{}

	case *sast.HexLiteral:
		// Address-sized hex literals are address constants.
		if len(v.Raw) == 42 {
			return &sast.AddressType{}
		}
		return &sast.IntType{}

	case *sast.BoolLiteral:
		return &sast.BoolType{}

	case *sast.StringLiteral:
		return &sast.StringType{}

	case *sast.Identifier:
		return c.checkIdentifier(v)

	case *sast.IndexExpr:
		return c.checkIndex(v)

	case *sast.MemberExpr:
		return c.checkMember(v)

	case *sast.CallExpr:
		return c.checkCall(v)

	case *sast.UnaryExpr:
		return c.checkUnary(v)

	case *sast.BinaryExpr:
		return c.checkBinary(v)

	case *sast.Conditional:
		return c.checkConditional(v)

	case *sast.OldExpr:
		return c.checkOld(v)

	case *sast.LetExpr:
		c.pushScope()
		valueType := c.check(v.Value)
		if valueType == nil {
			c.popScope()
			return nil
		}
		c.bind(v.Name.Name, valueType)
		bodyType := c.check(v.Body)
		c.popScope()
		c.mergeInto(v, v.Value, v.Body)
		return bodyType

	case *sast.Quantifier:
		return c.checkQuantifier(v)

	case *sast.TupleExpr:
		tuple := &sast.TupleType{}
		for _, el := range v.Elements {
			t := c.check(el)
			if t == nil {
				return nil
			}
			tuple.Elements = append(tuple.Elements, t)
			c.mergeInto(v, el)
		}
		return tuple

	case *sast.CastExpr:
		if c.check(v.Sub) == nil {
			return nil
		}
		c.mergeInto(v, v.Sub)
		return v.Target

	case *sast.RangeExpr:
		low := c.check(v.Low)
		high := c.check(v.High)
		if low == nil || high == nil {
			return nil
		}
		if !sast.IsNumeric(low) || !sast.IsNumeric(high) {
			c.errorf(errors.ErrorIncompatibleTypes, v.Pos, "range bounds must be integers")
			return nil
		}
		c.mergeInto(v, v.Low, v.High)
		return &sast.TupleType{Elements: []sast.Type{low, high}}
	}
	c.errs = append(c.errs, errors.Internal(
		fmt.Sprintf("unhandled expression %T", expr), expr.NodePos()))
	return nil
}

func (c *Checker) checkIdentifier(v *sast.Identifier) sast.Type {
	b := c.resolve(v.Name)
	if b == nil {
		err := errors.UnknownName(v.Name, v.Pos, c.similarNames(v.Name))
		err.Annotation = c.annotationText()
		c.errs = append(c.errs, err)
		return nil
	}

	switch {
	case b.local != nil:
		return b.local
	case b.variable != nil:
		if b.variable.StateVariable {
			c.sem.Info(v).ReadsState = true
		}
		t, err := c.hostType(b.variable)
		if err != nil {
			c.errorf(errors.ErrorTypeStringSyntax, v.Pos, "%v", err)
			return nil
		}
		return t
	case b.function != nil:
		t, err := c.functionType(b.function)
		if err != nil {
			c.errorf(errors.ErrorTypeStringSyntax, v.Pos, "%v", err)
			return nil
		}
		return t
	case b.userFn != nil:
		fn := &sast.FunctionType{Returns: []sast.Type{b.userFn.ReturnType}}
		for _, p := range b.userFn.Parameters {
			fn.Params = append(fn.Params, p.Type)
		}
		return fn
	case b.contract != nil:
		return &sast.TypeOfType{Inner: &sast.UserDefinedType{
			Kind: sast.ContractKind, Name: b.contract.Name, Decl: int(b.contract.ID()),
		}}
	case b.typeName != nil:
		return &sast.TypeOfType{Inner: b.typeName}
	case b.builtin == "this":
		c.sem.Info(v).ReadsState = true
		return &sast.UserDefinedType{
			Kind: sast.ContractKind, Name: c.contract.Name, Decl: int(c.contract.ID()),
		}
	case b.builtin != "":
		// msg/block/tx carry no type of their own; checkMember handles
		// their fields. A bare mention is an error.
		c.errorf(errors.ErrorUnknownName, v.Pos, "'%s' cannot be used outside member access", b.builtin)
		return nil
	case b.unit != nil:
		c.errorf(errors.ErrorUnknownName, v.Pos, "import alias '%s' cannot be used outside member access", v.Name)
		return nil
	}
	return nil
}

func (c *Checker) checkIndex(v *sast.IndexExpr) sast.Type {
	baseType := c.check(v.Base)
	indexType := c.check(v.Index)
	if baseType == nil || indexType == nil {
		return nil
	}
	c.mergeInto(v, v.Base, v.Index)

	switch bt := baseType.(type) {
	case *sast.ArrayType:
		if !sast.IsNumeric(indexType) {
			c.errorf(errors.ErrorIncompatibleTypes, v.Index.NodePos(),
				"array index must be an integer, found %s", indexType.String())
			return nil
		}
		return bt.Elem
	case *sast.MappingType:
		if !compatible(indexType, bt.Key) {
			c.errorf(errors.ErrorIncompatibleTypes, v.Index.NodePos(),
				"mapping key must be %s, found %s", bt.Key.String(), indexType.String())
			return nil
		}
		return bt.Value
	case *sast.BytesType:
		if !sast.IsNumeric(indexType) {
			c.errorf(errors.ErrorIncompatibleTypes, v.Index.NodePos(), "bytes index must be an integer")
			return nil
		}
		return &sast.FixedBytesType{Size: 1}
	}
	c.errorf(errors.ErrorIncompatibleTypes, v.Pos, "%s is not indexable", baseType.String())
	return nil
}

func (c *Checker) checkMember(v *sast.MemberExpr) sast.Type {
	// Magic globals and import aliases resolve as a unit with their
	// member, not through the base expression's type.
	if ident, ok := v.Base.(*sast.Identifier); ok {
		if b := c.resolve(ident.Name); b != nil {
			if b.builtin != "" && b.builtin != "this" {
				return c.checkBuiltinMember(v, ident, b.builtin)
			}
			if b.unit != nil {
				return c.checkUnitMember(v, ident, b.unit)
			}
		}
	}

	baseType := c.check(v.Base)
	if baseType == nil {
		return nil
	}
	c.mergeInto(v, v.Base)

	switch bt := baseType.(type) {
	case *sast.ArrayType:
		if v.Member == "length" {
			return &sast.IntType{Bits: 256}
		}
	case *sast.BytesType:
		if v.Member == "length" {
			return &sast.IntType{Bits: 256}
		}
	case *sast.AddressType:
		if v.Member == "balance" {
			return &sast.IntType{Bits: 256}
		}
	case *sast.UserDefinedType:
		switch bt.Kind {
		case sast.StructKind:
			return c.structMember(v, bt)
		case sast.ContractKind:
			return c.contractMember(v, bt)
		}
	}
	c.errorf(errors.ErrorUnknownName, v.Pos, "%s has no member '%s'", baseType.String(), v.Member)
	return nil
}

func (c *Checker) checkBuiltinMember(v *sast.MemberExpr, base *sast.Identifier, builtin string) sast.Type {
	// Keep the identifier typed so lowering can translate it verbatim.
	c.env.SetType(base, &sast.TupleType{})
	fields := builtinMembers[builtin]
	t, ok := fields[v.Member]
	if !ok {
		c.errorf(errors.ErrorUnknownName, v.Pos, "'%s' has no member '%s'", builtin, v.Member)
		return nil
	}
	return t
}

func (c *Checker) checkUnitMember(v *sast.MemberExpr, base *sast.Identifier, unit *solast.SourceUnit) sast.Type {
	c.env.SetType(base, &sast.TupleType{})
	for _, id := range unit.Nodes {
		switch node := c.ctx.Node(id).(type) {
		case *solast.VariableDeclaration:
			if node.Name == v.Member && node.Mutability == solast.Constant {
				t, err := c.hostType(node)
				if err != nil {
					c.errorf(errors.ErrorTypeStringSyntax, v.Pos, "%v", err)
					return nil
				}
				return t
			}
		case *solast.ContractDefinition:
			if node.Name == v.Member {
				return &sast.TypeOfType{Inner: &sast.UserDefinedType{
					Kind: sast.ContractKind, Name: node.Name, Decl: int(node.ID()),
				}}
			}
		}
	}
	c.errorf(errors.ErrorUnknownName, v.Pos, "unit '%s' has no member '%s'", base.Name, v.Member)
	return nil
}

func (c *Checker) structMember(v *sast.MemberExpr, bt *sast.UserDefinedType) sast.Type {
	def, ok := c.ctx.Node(solast.ID(bt.Decl)).(*solast.StructDefinition)
	if !ok {
		c.errorf(errors.ErrorUnknownName, v.Pos, "unknown struct %s", bt.Name)
		return nil
	}
	for _, id := range def.Members {
		if field, ok := c.ctx.Node(id).(*solast.VariableDeclaration); ok && field.Name == v.Member {
			t, err := c.hostType(field)
			if err != nil {
				c.errorf(errors.ErrorTypeStringSyntax, v.Pos, "%v", err)
				return nil
			}
			return t
		}
	}
	c.errorf(errors.ErrorUnknownName, v.Pos, "struct %s has no field '%s'", bt.Name, v.Member)
	return nil
}

func (c *Checker) contractMember(v *sast.MemberExpr, bt *sast.UserDefinedType) sast.Type {
	contract, ok := c.ctx.Node(solast.ID(bt.Decl)).(*solast.ContractDefinition)
	if !ok {
		c.errorf(errors.ErrorUnknownName, v.Pos, "unknown contract %s", bt.Name)
		return nil
	}
	for _, baseID := range contract.LinearizedBaseContracts {
		base, ok := c.ctx.Node(baseID).(*solast.ContractDefinition)
		if !ok {
			continue
		}
		for _, sv := range c.ctx.StateVariablesIn(base) {
			if sv.Name == v.Member {
				c.sem.Info(v).ReadsState = true
				t, err := c.hostType(sv)
				if err != nil {
					c.errorf(errors.ErrorTypeStringSyntax, v.Pos, "%v", err)
					return nil
				}
				return t
			}
		}
		for _, fn := range c.ctx.FunctionsIn(base) {
			if fn.Name == v.Member {
				c.sem.Info(v).CallsExternal = true
				t, err := c.functionType(fn)
				if err != nil {
					c.errorf(errors.ErrorTypeStringSyntax, v.Pos, "%v", err)
					return nil
				}
				return t
			}
		}
	}
	c.errorf(errors.ErrorUnknownName, v.Pos, "contract %s has no member '%s'", bt.Name, v.Member)
	return nil
}

func (c *Checker) checkCall(v *sast.CallExpr) sast.Type {
	// User functions resolve before host functions of the same name.
	if ident, ok := v.Callee.(*sast.Identifier); ok && c.contract != nil {
		if def := c.env.LookupUserFunction(c.ctx, c.contract.ID(), ident.Name); def != nil {
			if c.checkingDefine != nil && def == c.checkingDefine {
				c.errorf(errors.ErrorRecursiveDefine, v.Pos,
					"user function '%s' may not call itself", ident.Name)
				return nil
			}
			return c.checkCallArgs(v, userFunctionType(def), ident.Name)
		}
	}

	calleeType := c.check(v.Callee)
	if calleeType == nil {
		return nil
	}
	c.mergeInto(v, v.Callee)

	switch ct := calleeType.(type) {
	case *sast.TypeOfType:
		// Type conversion: uint256(x), MyContract(addr).
		if len(v.Args) != 1 {
			err := errors.ArityMismatch(v.Callee.String(), 1, len(v.Args), v.Pos)
			err.Annotation = c.annotationText()
			c.errs = append(c.errs, err)
			return nil
		}
		if c.check(v.Args[0]) == nil {
			return nil
		}
		c.mergeInto(v, v.Args[0])
		return ct.Inner

	case *sast.FunctionType:
		if fn := c.hostCallee(v.Callee); fn != nil && fn.Mutates() && c.kind != sast.IfSucceeds {
			where := "invariant"
			if c.kind == sast.Define {
				where = "define"
			}
			err := errors.NonPureCall(fn.Name, where, v.Pos)
			err.Annotation = c.annotationText()
			c.errs = append(c.errs, err)
			return nil
		}
		if fn := c.hostCallee(v.Callee); fn != nil && fn.Mutates() {
			c.sem.Info(v).MutatesState = true
		}
		return c.checkCallArgs(v, ct, v.Callee.String())
	}
	c.errorf(errors.ErrorIncompatibleTypes, v.Pos, "%s is not callable", calleeType.String())
	return nil
}

// hostCallee maps a call's callee back to the host function it names,
// when it names one. Member callees resolve through the base
// expression's contract type.
func (c *Checker) hostCallee(callee sast.Expr) *solast.FunctionDefinition {
	name := ""
	scope := c.contract
	switch e := callee.(type) {
	case *sast.Identifier:
		name = e.Name
	case *sast.MemberExpr:
		name = e.Member
		ud, ok := c.env.TypeOf(e.Base).(*sast.UserDefinedType)
		if !ok || ud.Kind != sast.ContractKind {
			return nil
		}
		scope, ok = c.ctx.Node(solast.ID(ud.Decl)).(*solast.ContractDefinition)
		if !ok {
			return nil
		}
	default:
		return nil
	}
	if scope == nil {
		return nil
	}
	for _, baseID := range scope.LinearizedBaseContracts {
		if base, ok := c.ctx.Node(baseID).(*solast.ContractDefinition); ok {
			for _, fn := range c.ctx.FunctionsIn(base) {
				if fn.Name == name {
					return fn
				}
			}
		}
	}
	return nil
}

func (c *Checker) checkCallArgs(v *sast.CallExpr, fn *sast.FunctionType, name string) sast.Type {
	if len(v.Args) != len(fn.Params) {
		err := errors.ArityMismatch(name, len(fn.Params), len(v.Args), v.Pos)
		err.Annotation = c.annotationText()
		c.errs = append(c.errs, err)
		return nil
	}
	for i, arg := range v.Args {
		argType := c.check(arg)
		if argType == nil {
			return nil
		}
		if !compatible(argType, fn.Params[i]) {
			c.errorf(errors.ErrorIncompatibleTypes, arg.NodePos(),
				"argument %d has type %s, expected %s", i+1, argType.String(), fn.Params[i].String())
			return nil
		}
		c.mergeInto(v, arg)
	}
	switch len(fn.Returns) {
	case 0:
		c.errorf(errors.ErrorIncompatibleTypes, v.Pos, "'%s' returns nothing", name)
		return nil
	case 1:
		return fn.Returns[0]
	default:
		return &sast.TupleType{Elements: fn.Returns}
	}
}

func (c *Checker) checkUnary(v *sast.UnaryExpr) sast.Type {
	subType := c.check(v.Sub)
	if subType == nil {
		return nil
	}
	c.mergeInto(v, v.Sub)

	switch v.Op {
	case "!":
		if _, ok := subType.(*sast.BoolType); !ok {
			c.errorf(errors.ErrorIncompatibleTypes, v.Pos, "'!' requires bool, found %s", subType.String())
			return nil
		}
		return subType
	case "-":
		it, ok := subType.(*sast.IntType)
		if !ok || (!it.Signed && it.Bits != 0) {
			c.errorf(errors.ErrorIncompatibleTypes, v.Pos, "unary '-' requires a signed integer")
			return nil
		}
		return &sast.IntType{Signed: true, Bits: it.Bits}
	}
	c.errorf(errors.ErrorIncompatibleTypes, v.Pos, "unknown unary operator '%s'", v.Op)
	return nil
}

func (c *Checker) checkBinary(v *sast.BinaryExpr) sast.Type {
	leftType := c.check(v.Left)
	rightType := c.check(v.Right)
	if leftType == nil || rightType == nil {
		return nil
	}
	c.mergeInto(v, v.Left, v.Right)

	switch v.Op {
	case "+", "-", "*", "/", "%", "**":
		lt, lok := leftType.(*sast.IntType)
		rt, rok := rightType.(*sast.IntType)
		if !lok || !rok {
			c.reportIncompatible(v, leftType, rightType)
			return nil
		}
		promoted := sast.PromoteInts(lt, rt)
		if promoted == nil {
			c.reportIncompatible(v, leftType, rightType)
			return nil
		}
		return promoted

	case "<", "<=", ">", ">=":
		if lt, lok := leftType.(*sast.IntType); lok {
			if rt, rok := rightType.(*sast.IntType); rok && sast.PromoteInts(lt, rt) != nil {
				return &sast.BoolType{}
			}
		}
		c.reportIncompatible(v, leftType, rightType)
		return nil

	case "==", "!=":
		if compatible(leftType, rightType) || compatible(rightType, leftType) {
			return &sast.BoolType{}
		}
		c.reportIncompatible(v, leftType, rightType)
		return nil

	case "&&", "||":
		_, lok := leftType.(*sast.BoolType)
		_, rok := rightType.(*sast.BoolType)
		if !lok || !rok {
			c.reportIncompatible(v, leftType, rightType)
			return nil
		}
		return &sast.BoolType{}
	}
	c.errorf(errors.ErrorIncompatibleTypes, v.Pos, "unknown operator '%s'", v.Op)
	return nil
}

func (c *Checker) checkConditional(v *sast.Conditional) sast.Type {
	condType := c.check(v.Condition)
	trueType := c.check(v.True)
	falseType := c.check(v.False)
	if condType == nil || trueType == nil || falseType == nil {
		return nil
	}
	c.mergeInto(v, v.Condition, v.True, v.False)

	if _, ok := condType.(*sast.BoolType); !ok {
		c.errorf(errors.ErrorIncompatibleTypes, v.Condition.NodePos(),
			"conditional guard must be bool, found %s", condType.String())
		return nil
	}
	if lt, lok := trueType.(*sast.IntType); lok {
		if rt, rok := falseType.(*sast.IntType); rok {
			if promoted := sast.PromoteInts(lt, rt); promoted != nil {
				return promoted
			}
		}
	}
	if sast.TypesEqual(trueType, falseType) {
		return trueType
	}
	c.errorf(errors.ErrorIncompatibleTypes, v.Pos,
		"conditional branches have incompatible types %s and %s", trueType.String(), falseType.String())
	return nil
}

func (c *Checker) checkOld(v *sast.OldExpr) sast.Type {
	if c.kind != sast.IfSucceeds {
		where := "invariant"
		if c.kind == sast.Define {
			where = "define"
		}
		err := errors.ForbiddenOld(where, v.Pos)
		err.Annotation = c.annotationText()
		c.errs = append(c.errs, err)
		return nil
	}
	subType := c.check(v.Sub)
	if subType == nil {
		return nil
	}
	c.mergeInto(v, v.Sub)
	c.sem.Info(v).ReadsOld = true
	return subType
}

func (c *Checker) checkQuantifier(v *sast.Quantifier) sast.Type {
	binderType, ok := v.BinderType.(*sast.IntType)
	if !ok {
		c.errorf(errors.ErrorIncompatibleTypes, v.Binder.Pos, "quantifier binders must be integers")
		return nil
	}

	rangeOK := false
	switch rng := v.Range.(type) {
	case *sast.RangeExpr:
		rangeOK = c.check(rng) != nil
	default:
		rangeType := c.check(rng)
		if rangeType == nil {
			return nil
		}
		if _, isArray := rangeType.(*sast.ArrayType); isArray {
			rangeOK = true
		} else {
			err := errors.InfiniteQuantifier(v.Range.NodePos())
			err.Annotation = c.annotationText()
			c.errs = append(c.errs, err)
			return nil
		}
	}
	if !rangeOK {
		return nil
	}
	c.mergeInto(v, v.Range)

	c.pushScope()
	c.bind(v.Binder.Name, binderType)
	bodyType := c.check(v.Body)
	c.popScope()
	if bodyType == nil {
		return nil
	}
	c.mergeInto(v, v.Body)

	if _, ok := bodyType.(*sast.BoolType); !ok {
		c.errorf(errors.ErrorIncompatibleTypes, v.Body.NodePos(),
			"quantifier body must be boolean, found %s", bodyType.String())
		return nil
	}
	return &sast.BoolType{}
}

// mergeInto folds children's semantic flags into their parent.
func (c *Checker) mergeInto(parent sast.Expr, children ...sast.Expr) {
	info := c.sem.Info(parent)
	for _, child := range children {
		ci := c.sem.Info(child)
		info.ReadsState = info.ReadsState || ci.ReadsState
		info.ReadsOld = info.ReadsOld || ci.ReadsOld
		info.CallsExternal = info.CallsExternal || ci.CallsExternal
		info.MutatesState = info.MutatesState || ci.MutatesState
	}
}

func (c *Checker) reportIncompatible(v *sast.BinaryExpr, left, right sast.Type) {
	err := errors.IncompatibleTypes(v.Op, left.String(), right.String(), v.Pos)
	err.Annotation = c.annotationText()
	c.errs = append(c.errs, err)
}

func (c *Checker) errorf(code string, pos sast.Position, format string, args ...interface{}) {
	c.errs = append(c.errs, errors.NewSpecError(code, fmt.Sprintf(format, args...), pos).
		WithAnnotation(c.annotationText()).
		Build())
}

func (c *Checker) annotationText() string {
	if c.annot == nil {
		return ""
	}
	return c.annot.OriginalText
}

func userFunctionType(def *sast.UserFunctionDefinition) *sast.FunctionType {
	fn := &sast.FunctionType{Returns: []sast.Type{def.ReturnType}}
	for _, p := range def.Parameters {
		fn.Params = append(fn.Params, p.Type)
	}
	return fn
}

// compatible reports whether a value of type "from" can flow into a
// position of type "to" without an explicit cast.
func compatible(from, to sast.Type) bool {
	if sast.TypesEqual(from, to) {
		return true
	}
	ft, fok := from.(*sast.IntType)
	tt, tok := to.(*sast.IntType)
	if fok && tok {
		return sast.PromoteInts(ft, tt) != nil
	}
	// A plain address satisfies an address payable position and back:
	// the payability of an address never changes its representation.
	if _, fok := from.(*sast.AddressType); fok {
		_, tok := to.(*sast.AddressType)
		return tok
	}
	return false
}

var builtinMembers = map[string]map[string]sast.Type{
	"msg": {
		"sender": &sast.AddressType{},
		"value":  &sast.IntType{Bits: 256},
		"data":   &sast.BytesType{},
	},
	"block": {
		"number":    &sast.IntType{Bits: 256},
		"timestamp": &sast.IntType{Bits: 256},
		"coinbase":  &sast.AddressType{Payable: true},
	},
	"tx": {
		"origin":   &sast.AddressType{},
		"gasprice": &sast.IntType{Bits: 256},
	},
}
