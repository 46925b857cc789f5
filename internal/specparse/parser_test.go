package specparse

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"scribble/internal/sast"
)

func TestParseIfSucceedsAnnotation(t *testing.T) {
	annot, errs := ParseAnnotation(`#if_succeeds old(x) + 1 == x;`)
	require.Empty(t, errs)
	require.NotNil(t, annot)

	assert.Equal(t, sast.IfSucceeds, annot.Kind)
	assert.Empty(t, annot.Label)

	cmp, ok := annot.Expr.(*sast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "==", cmp.Op)

	sum, ok := cmp.Left.(*sast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", sum.Op)

	old, ok := sum.Left.(*sast.OldExpr)
	require.True(t, ok)
	assert.Equal(t, "x", old.Sub.(*sast.Identifier).Name)
}

func TestParseAnnotationWithLabel(t *testing.T) {
	annot, errs := ParseAnnotation(`#invariant {:msg "balance stays funded"} x >= 0;`)
	require.Empty(t, errs)

	assert.Equal(t, sast.Invariant, annot.Kind)
	assert.Equal(t, "balance stays funded", annot.Label)

	cmp, ok := annot.Expr.(*sast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ">=", cmp.Op)
}

func TestParseDefineAnnotation(t *testing.T) {
	annot, errs := ParseAnnotation(`#define twice(uint256 v) uint256 = v * 2;`)
	require.Empty(t, errs)

	assert.Equal(t, sast.Define, annot.Kind)
	require.NotNil(t, annot.Def)
	assert.Equal(t, "twice", annot.Def.Name.Name)
	require.Len(t, annot.Def.Parameters, 1)
	assert.Equal(t, "v", annot.Def.Parameters[0].Name.Name)
	assert.True(t, sast.TypesEqual(&sast.IntType{Bits: 256}, annot.Def.Parameters[0].Type))
	assert.True(t, sast.TypesEqual(&sast.IntType{Bits: 256}, annot.Def.ReturnType))

	body, ok := annot.Def.Body.(*sast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", body.Op)
}

func TestOperatorPrecedence(t *testing.T) {
	expr, errs := ParseExpression(`a + b * c == d || e`)
	require.Empty(t, errs)

	// ((a + (b * c)) == d) || e
	or, ok := expr.(*sast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "||", or.Op)

	eq, ok := or.Left.(*sast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "==", eq.Op)

	sum, ok := eq.Left.(*sast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", sum.Op)

	mul, ok := sum.Right.(*sast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Op)
}

func TestParseConditional(t *testing.T) {
	expr, errs := ParseExpression(`a > 0 ? b : c`)
	require.Empty(t, errs)

	cond, ok := expr.(*sast.Conditional)
	require.True(t, ok)
	assert.Equal(t, "b", cond.True.(*sast.Identifier).Name)
	assert.Equal(t, "c", cond.False.(*sast.Identifier).Name)
}

func TestParseQuantifier(t *testing.T) {
	expr, errs := ParseExpression(`forall (uint256 i in 0...10) arr[i] > 0`)
	require.Empty(t, errs)

	q, ok := expr.(*sast.Quantifier)
	require.True(t, ok)
	assert.Equal(t, sast.ForAll, q.Kind)
	assert.Equal(t, "i", q.Binder.Name)
	assert.True(t, sast.TypesEqual(&sast.IntType{Bits: 256}, q.BinderType))

	rng, ok := q.Range.(*sast.RangeExpr)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(0), rng.Low.(*sast.NumberLiteral).Value)
	assert.Equal(t, big.NewInt(10), rng.High.(*sast.NumberLiteral).Value)

	idx, ok := q.Body.(*sast.BinaryExpr).Left.(*sast.IndexExpr)
	require.True(t, ok)
	assert.Equal(t, "arr", idx.Base.(*sast.Identifier).Name)
}

func TestParseLetBinding(t *testing.T) {
	expr, errs := ParseExpression(`let total := x + y in total > 0`)
	require.Empty(t, errs)

	let, ok := expr.(*sast.LetExpr)
	require.True(t, ok)
	assert.Equal(t, "total", let.Name.Name)
	assert.IsType(t, &sast.BinaryExpr{}, let.Value)
	assert.IsType(t, &sast.BinaryExpr{}, let.Body)
}

func TestParseMemberAndIndexChains(t *testing.T) {
	expr, errs := ParseExpression(`book.accounts[msg.sender].balance`)
	require.Empty(t, errs)

	outer, ok := expr.(*sast.MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "balance", outer.Member)

	idx, ok := outer.Base.(*sast.IndexExpr)
	require.True(t, ok)

	sender, ok := idx.Index.(*sast.MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "sender", sender.Member)
	assert.Equal(t, "msg", sender.Base.(*sast.Identifier).Name)
}

func TestScientificNumberLiteral(t *testing.T) {
	expr, errs := ParseExpression(`1e18`)
	require.Empty(t, errs)

	lit, ok := expr.(*sast.NumberLiteral)
	require.True(t, ok)
	expected, _ := new(big.Int).SetString("1000000000000000000", 10)
	assert.Equal(t, expected, lit.Value)
}

func TestAnnotationPositionsAreInputRelative(t *testing.T) {
	annot, errs := ParseAnnotation(`#if_succeeds x > 0;`)
	require.Empty(t, errs)

	assert.Equal(t, 0, annot.NodePos().Offset)
	// The predicate starts after "#if_succeeds ".
	assert.Equal(t, len("#if_succeeds "), annot.Expr.NodePos().Offset)
}

func TestParseErrorsCarryRanges(t *testing.T) {
	_, errs := ParseAnnotation(`#if_succeeds x + ;`)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "expected expression")
	assert.Greater(t, errs[0].Position.Offset, 0)
}

func TestTargetKindRequired(t *testing.T) {
	_, errs := ParseAnnotation(`#guarantee x > 0;`)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "expected 'if_succeeds', 'invariant' or 'define'")
}
