package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"scribble/internal/errors"
	"scribble/internal/extractor"
	"scribble/internal/sast"
	"scribble/internal/solast"
	"scribble/internal/specparse"
)

type checkFixture struct {
	ctx      *solast.Context
	units    []*solast.SourceUnit
	contract *solast.ContractDefinition
	fn       *solast.FunctionDefinition
	env      *TypeEnv
	sem      SemanticMap
}

// newCheckFixture builds:
//
//	contract Vault { uint256 total; }
//	contract Token is Vault {
//	    uint256 x; int256 signed;
//	    mapping(address => uint256) balances;
//	    uint256[] arr;
//	    function inc(uint256 by) public;
//	    function getX() public view returns (uint256);
//	}
func newCheckFixture(t *testing.T) *checkFixture {
	t.Helper()
	ctx := solast.NewContext()

	vault := ctx.NewContractDefinition("Vault", solast.KindContract)
	total := ctx.NewVariableDeclaration("total", ctx.NewElementaryTypeName("uint256").ID(), "uint256")
	total.StateVariable = true
	ctx.AddToContract(vault, total.ID())

	token := ctx.NewContractDefinition("Token", solast.KindContract)
	token.LinearizedBaseContracts = []solast.ID{token.ID(), vault.ID()}

	addState := func(name, typeString string) {
		v := ctx.NewVariableDeclaration(name, ctx.NewElementaryTypeName(typeString).ID(), typeString)
		v.StateVariable = true
		ctx.AddToContract(token, v.ID())
	}
	addState("x", "uint256")
	addState("signed", "int256")
	addState("balances", "mapping(address => uint256)")
	addState("arr", "uint256[]")

	inc := ctx.NewFunctionDefinition("inc", solast.FnKindFunction, solast.VisPublic, solast.MutNonpayable)
	by := ctx.NewVariableDeclaration("by", ctx.NewElementaryTypeName("uint256").ID(), "uint256")
	inc.Parameters = ctx.NewParameterList(by.ID()).ID()
	inc.ReturnParameters = ctx.NewParameterList().ID()
	ctx.Adopt(inc.ID(), inc.Parameters, inc.ReturnParameters)
	ctx.AddToContract(token, inc.ID())

	getX := ctx.NewFunctionDefinition("getX", solast.FnKindFunction, solast.VisPublic, solast.MutView)
	ret := ctx.NewVariableDeclaration("", ctx.NewElementaryTypeName("uint256").ID(), "uint256")
	getX.Parameters = ctx.NewParameterList().ID()
	getX.ReturnParameters = ctx.NewParameterList(ret.ID()).ID()
	ctx.Adopt(getX.ID(), getX.Parameters, getX.ReturnParameters)
	ctx.AddToContract(token, getX.ID())

	unit := ctx.NewSourceUnit("Token.sol", vault.ID(), token.ID())

	return &checkFixture{
		ctx:      ctx,
		units:    []*solast.SourceUnit{unit},
		contract: token,
		fn:       inc,
		env:      NewTypeEnv(),
		sem:      make(SemanticMap),
	}
}

// checkAnnotation parses an annotation body and checks it against the
// fixture's function (if_succeeds) or contract (invariant, define).
func (f *checkFixture) checkAnnotation(t *testing.T, text string) (*Checker, *extractor.AnnotationMetadata) {
	t.Helper()
	annot, parseErrs := specparse.ParseAnnotation(text)
	require.Empty(t, parseErrs, "annotation must parse: %s", text)

	target := f.contract.ID()
	targetKind := extractor.TargetContract
	if annot.Kind == sast.IfSucceeds {
		target = f.fn.ID()
		targetKind = extractor.TargetFunction
	}
	if annot.Def != nil {
		annot.Def.Contract = int(f.contract.ID())
	}

	meta := &extractor.AnnotationMetadata{
		Kind:         annot.Kind,
		Label:        annot.Label,
		Target:       target,
		TargetKind:   targetKind,
		OriginalText: text,
		Parsed:       annot,
	}
	checker := NewChecker(f.ctx, f.units, f.env, f.sem)
	checker.CheckAnnotation(meta)
	return checker, meta
}

func TestCheckIfSucceedsWithOld(t *testing.T) {
	f := newCheckFixture(t)
	checker, meta := f.checkAnnotation(t, `#if_succeeds old(x) + 1 == x;`)
	require.Empty(t, checker.Errors())

	assert.True(t, sast.TypesEqual(&sast.BoolType{}, f.env.TypeOf(meta.Parsed.Expr)))

	info := f.sem.Info(meta.Parsed.Expr)
	assert.True(t, info.ReadsOld)
	assert.True(t, info.ReadsState)
}

func TestTypeAssignmentIsIdempotent(t *testing.T) {
	f := newCheckFixture(t)
	checker, meta := f.checkAnnotation(t, `#if_succeeds x + by > 0;`)
	require.Empty(t, checker.Errors())
	first := f.env.TypeOf(meta.Parsed.Expr)

	again := NewChecker(f.ctx, f.units, f.env, f.sem)
	again.CheckAnnotation(meta)
	assert.Empty(t, again.Errors())
	assert.True(t, sast.TypesEqual(first, f.env.TypeOf(meta.Parsed.Expr)))
}

func TestOldForbiddenInInvariant(t *testing.T) {
	f := newCheckFixture(t)
	checker, _ := f.checkAnnotation(t, `#invariant old(x) == x;`)

	require.Len(t, checker.Errors(), 1)
	err := checker.Errors()[0]
	assert.Equal(t, errors.ErrorForbiddenOld, err.Code)
	// The diagnostic pins the old token, not the whole annotation.
	assert.Equal(t, len("#invariant "), err.Position.Offset)
}

func TestUnknownNameSuggestsSimilar(t *testing.T) {
	f := newCheckFixture(t)
	checker, _ := f.checkAnnotation(t, `#invariant totol >= 0;`)

	require.Len(t, checker.Errors(), 1)
	err := checker.Errors()[0]
	assert.Equal(t, errors.ErrorUnknownName, err.Code)
	require.NotEmpty(t, err.Suggestions)
	assert.Contains(t, err.Suggestions[0].Message, "total")
}

func TestMixedSignArithmeticRejected(t *testing.T) {
	f := newCheckFixture(t)
	checker, _ := f.checkAnnotation(t, `#invariant x + signed > 0;`)

	require.NotEmpty(t, checker.Errors())
	assert.Equal(t, errors.ErrorIncompatibleTypes, checker.Errors()[0].Code)
}

func TestInheritedStateResolves(t *testing.T) {
	f := newCheckFixture(t)
	checker, meta := f.checkAnnotation(t, `#invariant total <= x;`)
	require.Empty(t, checker.Errors())
	assert.True(t, f.sem.Info(meta.Parsed.Expr).ReadsState)
}

func TestQuantifierOverArrayAndRange(t *testing.T) {
	f := newCheckFixture(t)

	checker, _ := f.checkAnnotation(t, `#invariant forall (uint256 i in arr) arr[i] > 0;`)
	assert.Empty(t, checker.Errors())

	checker, _ = f.checkAnnotation(t, `#invariant exists (uint256 i in 0...10) arr[i] == i;`)
	assert.Empty(t, checker.Errors())
}

func TestQuantifierOverMappingRejected(t *testing.T) {
	f := newCheckFixture(t)
	checker, _ := f.checkAnnotation(t, `#invariant forall (uint256 k in balances) balances[k] >= 0;`)

	require.NotEmpty(t, checker.Errors())
	assert.Equal(t, errors.ErrorInfiniteQuantifier, checker.Errors()[0].Code)
}

func TestDefineAndCall(t *testing.T) {
	f := newCheckFixture(t)

	checker, _ := f.checkAnnotation(t, `#define twice(uint256 v) uint256 = v * 2;`)
	require.Empty(t, checker.Errors())

	checker, _ = f.checkAnnotation(t, `#invariant twice(x) >= x;`)
	assert.Empty(t, checker.Errors())

	checker, _ = f.checkAnnotation(t, `#invariant twice(x, x) >= x;`)
	require.NotEmpty(t, checker.Errors())
	assert.Equal(t, errors.ErrorArityMismatch, checker.Errors()[0].Code)
}

func TestRecursiveDefineRejected(t *testing.T) {
	f := newCheckFixture(t)
	checker, _ := f.checkAnnotation(t, `#define spiral(uint256 v) uint256 = spiral(v);`)

	require.NotEmpty(t, checker.Errors())
	assert.Equal(t, errors.ErrorRecursiveDefine, checker.Errors()[0].Code)
}

func TestMutatingCallForbiddenInInvariant(t *testing.T) {
	f := newCheckFixture(t)
	checker, _ := f.checkAnnotation(t, `#invariant inc(1) == 0;`)

	require.NotEmpty(t, checker.Errors())
	assert.Equal(t, errors.ErrorNonPureCall, checker.Errors()[0].Code)
}

func TestViewCallAllowed(t *testing.T) {
	f := newCheckFixture(t)
	checker, _ := f.checkAnnotation(t, `#invariant getX() == x;`)
	assert.Empty(t, checker.Errors())
}

func TestBuiltinMembers(t *testing.T) {
	f := newCheckFixture(t)
	checker, _ := f.checkAnnotation(t, `#if_succeeds msg.sender == tx.origin || msg.value > 0;`)
	assert.Empty(t, checker.Errors())
}

func TestMappingIndexTypes(t *testing.T) {
	f := newCheckFixture(t)

	checker, _ := f.checkAnnotation(t, `#if_succeeds balances[msg.sender] >= 0;`)
	assert.Empty(t, checker.Errors())

	checker, _ = f.checkAnnotation(t, `#if_succeeds balances[1] >= 0;`)
	require.NotEmpty(t, checker.Errors())
	assert.Equal(t, errors.ErrorIncompatibleTypes, checker.Errors()[0].Code)
}

func TestCastCall(t *testing.T) {
	f := newCheckFixture(t)
	checker, meta := f.checkAnnotation(t, `#invariant uint256(signed) >= 0;`)
	require.Empty(t, checker.Errors())

	cmp := meta.Parsed.Expr.(*sast.BinaryExpr)
	cast := cmp.Left.(*sast.CallExpr)
	assert.True(t, sast.TypesEqual(&sast.IntType{Bits: 256}, f.env.TypeOf(cast)))
	assert.IsType(t, &sast.TypeOfType{}, f.env.TypeOf(cast.Callee))
}

func TestLetBindingScopes(t *testing.T) {
	f := newCheckFixture(t)

	checker, _ := f.checkAnnotation(t, `#invariant let two := x + x in two >= x;`)
	assert.Empty(t, checker.Errors())

	checker, _ = f.checkAnnotation(t, `#invariant (let two := x in two) == two;`)
	require.NotEmpty(t, checker.Errors())
	assert.Equal(t, errors.ErrorUnknownName, checker.Errors()[0].Code)
}
