package flatten

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"scribble/internal/solast"
)

func contractWithUser(ctx *solast.Context, name, userOf string, referent solast.ID) (*solast.ContractDefinition, *solast.Identifier) {
	c := ctx.NewContractDefinition(name, solast.KindContract)
	if userOf == "" {
		return c, nil
	}
	// function make() public { UserOf x = UserOf(0); } — reduced to an
	// identifier reference for the test.
	fn := ctx.NewFunctionDefinition("make", solast.FnKindFunction, solast.VisPublic, solast.MutNonpayable)
	fn.Parameters = ctx.NewParameterList().ID()
	fn.ReturnParameters = ctx.NewParameterList().ID()
	ctx.Adopt(fn.ID(), fn.Parameters, fn.ReturnParameters)
	ident := ctx.NewIdentifier(userOf, referent)
	fn.Body = ctx.NewBlock(ctx.NewExpressionStatement(ident.ID()).ID()).ID()
	ctx.Adopt(fn.ID(), fn.Body)
	ctx.AddToContract(c, fn.ID())
	return c, ident
}

func TestCollisionRenaming(t *testing.T) {
	ctx := solast.NewContext()

	// Two files each declare contract C; the second file also uses its
	// own C.
	c1, _ := contractWithUser(ctx, "C", "", solast.InvalidID)
	unit1 := ctx.NewSourceUnit("first.sol", c1.ID())

	c2 := ctx.NewContractDefinition("C", solast.KindContract)
	user, ident := contractWithUser(ctx, "User", "C", c2.ID())
	unit2 := ctx.NewSourceUnit("second.sol", c2.ID(), user.ID())

	result, err := Flatten(ctx, []*solast.SourceUnit{unit1, unit2}, "0.8.17")
	require.NoError(t, err)

	// The first C keeps its name, the second becomes C_1, and the
	// reference inside the second unit follows.
	assert.Equal(t, "C", c1.Name)
	assert.Equal(t, "C_1", c2.Name)
	assert.Equal(t, "C_1", ident.Name)
	assert.Equal(t, "C_1", result.Renamed[c2.ID()])

	assert.Equal(t, 1, strings.Count(result.Text, "contract C {"))
	assert.Equal(t, 1, strings.Count(result.Text, "contract C_1 {"))
	assert.Contains(t, result.Text, "C_1;")
}

func TestTopologicalOrderAndPragma(t *testing.T) {
	ctx := solast.NewContext()

	lib, _ := contractWithUser(ctx, "Lib", "", solast.InvalidID)
	libUnit := ctx.NewSourceUnit("lib.sol", lib.ID())

	app, _ := contractWithUser(ctx, "App", "", solast.InvalidID)
	imp := ctx.NewImportDirective("./lib.sol", "lib.sol", libUnit.ID())
	appUnit := ctx.NewSourceUnit("app.sol", imp.ID(), app.ID())

	// Input order deliberately lists the importer first.
	result, err := Flatten(ctx, []*solast.SourceUnit{appUnit, libUnit}, "0.8.17")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Text, "pragma solidity 0.8.17;\n"))
	assert.NotContains(t, result.Text, "import")
	assert.Less(t, strings.Index(result.Text, "contract Lib"), strings.Index(result.Text, "contract App"),
		"imported unit precedes its importer")
	require.Len(t, result.Order, 2)
	assert.Equal(t, "lib.sol", result.Order[0].AbsolutePath)
}

func TestImportCycleFails(t *testing.T) {
	ctx := solast.NewContext()

	a, _ := contractWithUser(ctx, "A", "", solast.InvalidID)
	b, _ := contractWithUser(ctx, "B", "", solast.InvalidID)

	impA := ctx.NewImportDirective("./b.sol", "b.sol", solast.InvalidID)
	unitA := ctx.NewSourceUnit("a.sol", impA.ID(), a.ID())
	impB := ctx.NewImportDirective("./a.sol", "a.sol", unitA.ID())
	unitB := ctx.NewSourceUnit("b.sol", impB.ID(), b.ID())
	impA.SourceUnit = unitB.ID()

	_, err := Flatten(ctx, []*solast.SourceUnit{unitA, unitB}, "0.8.17")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import cycle")
}

func TestUnitQualifiedAccessCollapses(t *testing.T) {
	ctx := solast.NewContext()

	c1, _ := contractWithUser(ctx, "C", "", solast.InvalidID)
	unit1 := ctx.NewSourceUnit("first.sol", c1.ID())

	c2 := ctx.NewContractDefinition("C", solast.KindContract)
	unit2 := ctx.NewSourceUnit("second.sol", c2.ID())

	// third.sol: import "second.sol" as Second; ... Second.C ...
	imp := ctx.NewImportDirective("./second.sol", "second.sol", unit2.ID())
	imp.UnitAlias = "Second"
	holder := ctx.NewContractDefinition("Holder", solast.KindContract)
	fn := ctx.NewFunctionDefinition("use", solast.FnKindFunction, solast.VisPublic, solast.MutNonpayable)
	fn.Parameters = ctx.NewParameterList().ID()
	fn.ReturnParameters = ctx.NewParameterList().ID()
	ctx.Adopt(fn.ID(), fn.Parameters, fn.ReturnParameters)
	base := ctx.NewIdentifier("Second", imp.ID())
	access := ctx.NewMemberAccess(base.ID(), "C", c2.ID())
	fn.Body = ctx.NewBlock(ctx.NewExpressionStatement(access.ID()).ID()).ID()
	ctx.Adopt(fn.ID(), fn.Body)
	ctx.AddToContract(holder, fn.ID())
	unit3 := ctx.NewSourceUnit("third.sol", imp.ID(), holder.ID())

	result, err := Flatten(ctx, []*solast.SourceUnit{unit1, unit2, unit3}, "0.8.17")
	require.NoError(t, err)

	// Second.C collapses to the renamed direct identifier.
	assert.Contains(t, result.Text, "C_1;")
	assert.NotContains(t, result.Text, "Second.C")
}

func TestDeepMemberChainKeepsTail(t *testing.T) {
	ctx := solast.NewContext()

	inner := ctx.NewContractDefinition("Inner", solast.KindContract)
	unit1 := ctx.NewSourceUnit("inner.sol", inner.ID())

	imp := ctx.NewImportDirective("./inner.sol", "inner.sol", unit1.ID())
	imp.UnitAlias = "Pkg"
	holder := ctx.NewContractDefinition("Holder", solast.KindContract)
	fn := ctx.NewFunctionDefinition("use", solast.FnKindFunction, solast.VisPublic, solast.MutNonpayable)
	fn.Parameters = ctx.NewParameterList().ID()
	fn.ReturnParameters = ctx.NewParameterList().ID()
	ctx.Adopt(fn.ID(), fn.Parameters, fn.ReturnParameters)

	// Pkg.Inner.X: the base of the outer access is itself a member
	// access, so only the inner level collapses; the tail survives.
	base := ctx.NewIdentifier("Pkg", imp.ID())
	mid := ctx.NewMemberAccess(base.ID(), "Inner", inner.ID())
	outer := ctx.NewMemberAccess(mid.ID(), "X", solast.InvalidID)
	fn.Body = ctx.NewBlock(ctx.NewExpressionStatement(outer.ID()).ID()).ID()
	ctx.Adopt(fn.ID(), fn.Body)
	ctx.AddToContract(holder, fn.ID())
	unit2 := ctx.NewSourceUnit("use.sol", imp.ID(), holder.ID())

	result, err := Flatten(ctx, []*solast.SourceUnit{unit1, unit2}, "0.8.17")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Inner.X;")
}
