package solast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCounter builds "contract Counter { uint x; function inc() public { x += 1; } }"
// and returns the context plus the interesting nodes.
func buildCounter(t *testing.T) (*Context, *SourceUnit, *ContractDefinition, *FunctionDefinition, *VariableDeclaration) {
	t.Helper()
	ctx := NewContext()

	contract := ctx.NewContractDefinition("Counter", KindContract)

	x := ctx.NewVariableDeclaration("x", ctx.NewElementaryTypeName("uint256").ID(), "uint256")
	x.StateVariable = true
	x.Visibility = VisInternal
	ctx.AddToContract(contract, x.ID())

	inc := ctx.NewFunctionDefinition("inc", FnKindFunction, VisPublic, MutNonpayable)
	inc.Parameters = ctx.NewParameterList().ID()
	inc.ReturnParameters = ctx.NewParameterList().ID()
	ctx.Adopt(inc.ID(), inc.Parameters, inc.ReturnParameters)

	xRef := ctx.NewIdentifier("x", x.ID())
	one := ctx.NewLiteral(LitNumber, "1")
	assign := ctx.NewAssignment("+=", xRef.ID(), one.ID())
	body := ctx.NewBlock(ctx.NewExpressionStatement(assign.ID()).ID())
	inc.Body = body.ID()
	ctx.Adopt(inc.ID(), body.ID())
	ctx.AddToContract(contract, inc.ID())

	unit := ctx.NewSourceUnit("Counter.sol", contract.ID())
	return ctx, unit, contract, inc, x
}

func TestSanityOnWellFormedUnit(t *testing.T) {
	ctx, unit, _, _, _ := buildCounter(t)
	assert.NoError(t, ctx.Sanity(unit.ID()))
}

func TestSanityCatchesDanglingReference(t *testing.T) {
	ctx, unit, contract, _, _ := buildCounter(t)

	bad := ctx.NewIdentifier("ghost", ID(9999))
	ctx.AddToContract(contract, bad.ID())

	err := ctx.Sanity(unit.ID())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "references missing declaration")
}

func TestReplaceNodeRebindsParentSlot(t *testing.T) {
	ctx, unit, _, inc, x := buildCounter(t)

	body := ctx.Node(inc.Body).(*Block)
	oldStmt := body.Statements[0]

	call := ctx.NewFunctionCall(CallFunction, ctx.NewIdentifier("inc_original", inc.ID()).ID())
	newStmt := ctx.NewExpressionStatement(call.ID())

	require.NoError(t, ctx.ReplaceNode(oldStmt, newStmt.ID()))
	assert.Equal(t, newStmt.ID(), body.Statements[0])
	assert.Equal(t, body.ID(), newStmt.Parent())

	// The old subtree is detached but still in the arena.
	assert.NotNil(t, ctx.Node(oldStmt))
	assert.NoError(t, ctx.Sanity(unit.ID()))
	_ = x
}

func TestInsertBefore(t *testing.T) {
	ctx, _, _, inc, _ := buildCounter(t)
	body := ctx.Node(inc.Body).(*Block)
	first := body.Statements[0]

	prelude := ctx.NewExpressionStatement(ctx.NewLiteral(LitNumber, "0").ID())
	require.NoError(t, ctx.InsertBefore(body.ID(), first, prelude.ID()))
	assert.Equal(t, []ID{prelude.ID(), first}, body.Statements)

	tail := ctx.NewExpressionStatement(ctx.NewLiteral(LitNumber, "2").ID())
	require.NoError(t, ctx.InsertBefore(body.ID(), InvalidID, tail.ID()))
	assert.Equal(t, tail.ID(), body.Statements[len(body.Statements)-1])
}

func TestWalkOrder(t *testing.T) {
	ctx, unit, _, _, _ := buildCounter(t)

	var pre []NodeKind
	ctx.Walk(unit.ID(), func(n Node) bool {
		pre = append(pre, n.Kind())
		return true
	})
	require.NotEmpty(t, pre)
	assert.Equal(t, SOURCE_UNIT, pre[0])

	var post []NodeKind
	ctx.WalkPost(unit.ID(), func(n Node) {
		post = append(post, n.Kind())
	})
	assert.Equal(t, SOURCE_UNIT, post[len(post)-1])
	assert.Len(t, post, len(pre))
}

func TestCloneUnitsRemapsEdges(t *testing.T) {
	src, unit, _, inc, x := buildCounter(t)

	dst := NewContext()
	remap, err := CloneUnits(src, dst, []ID{unit.ID()})
	require.NoError(t, err)

	newUnit := dst.Node(remap[unit.ID()]).(*SourceUnit)
	assert.NoError(t, dst.Sanity(newUnit.ID()))

	// The cloned identifier must reference the cloned declaration, not
	// the original one.
	newInc := dst.Node(remap[inc.ID()]).(*FunctionDefinition)
	body := dst.Node(newInc.Body).(*Block)
	stmt := dst.Node(body.Statements[0]).(*ExpressionStatement)
	assign := dst.Node(stmt.Expression).(*Assignment)
	ident := dst.Node(assign.LHS).(*Identifier)
	assert.Equal(t, remap[x.ID()], ident.ReferencedDeclaration())

	// Mutating the clone leaves the original untouched.
	dst.Node(remap[x.ID()]).(*VariableDeclaration).Name = "renamed"
	assert.Equal(t, "x", x.Name)
}
