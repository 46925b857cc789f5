package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"scribble/internal/solast"
)

// buildA constructs "A.sol": contract A { uint x; }
func buildA(ctx *solast.Context) (solast.ID, *solast.ContractDefinition) {
	a := ctx.NewContractDefinition("A", solast.KindContract)
	x := ctx.NewVariableDeclaration("x", ctx.NewElementaryTypeName("uint256").ID(), "uint256")
	x.StateVariable = true
	ctx.AddToContract(a, x.ID())
	unit := ctx.NewSourceUnit("A.sol", a.ID())
	return unit.ID(), a
}

// buildB constructs "B.sol": contract B is A {} referencing the given
// A declaration from the same context.
func buildB(ctx *solast.Context, a *solast.ContractDefinition) solast.ID {
	b := ctx.NewContractDefinition("B", solast.KindContract)
	path := ctx.NewIdentifierPath("A", a.ID())
	spec := ctx.NewInheritanceSpecifier(path.ID())
	b.BaseContracts = append(b.BaseContracts, spec.ID())
	ctx.Adopt(b.ID(), spec.ID())
	b.LinearizedBaseContracts = []solast.ID{b.ID(), a.ID()}
	unit := ctx.NewSourceUnit("B.sol", b.ID())
	return unit.ID()
}

func TestMergeSingleGroup(t *testing.T) {
	ctx := solast.NewContext()
	unitA, a := buildA(ctx)
	unitB := buildB(ctx, a)

	result, err := Merge([]UnitGroup{{Ctx: ctx, Units: []solast.ID{unitA, unitB}}})
	require.NoError(t, err)
	require.Len(t, result.Units, 2)

	for _, unit := range result.Units {
		assert.NoError(t, result.Ctx.Sanity(unit.ID()))
	}
}

func TestMergeFoldsDuplicatePaths(t *testing.T) {
	ctx1 := solast.NewContext()
	unitA1, _ := buildA(ctx1)

	ctx2 := solast.NewContext()
	unitA2, a2 := buildA(ctx2)
	unitB2 := buildB(ctx2, a2)

	result, err := Merge([]UnitGroup{
		{Ctx: ctx1, Units: []solast.ID{unitA1}},
		{Ctx: ctx2, Units: []solast.ID{unitA2, unitB2}},
	})
	require.NoError(t, err)

	// A.sol appears once; B.sol survives.
	require.Len(t, result.Units, 2)
	assert.Equal(t, "A.sol", result.Units[0].AbsolutePath)
	assert.Equal(t, "B.sol", result.Units[1].AbsolutePath)

	// B's base-contract reference lands on the kept copy of A.
	keptA := result.Ctx.ContractsIn(result.Units[0])[0]
	b := result.Ctx.ContractsIn(result.Units[1])[0]
	spec := result.Ctx.Node(b.BaseContracts[0]).(*solast.InheritanceSpecifier)
	path := result.Ctx.Node(spec.BaseName).(*solast.IdentifierPath)
	assert.Equal(t, keptA.ID(), path.ReferencedDeclaration())
	assert.Equal(t, []solast.ID{b.ID(), keptA.ID()}, b.LinearizedBaseContracts)

	for _, unit := range result.Units {
		assert.NoError(t, result.Ctx.Sanity(unit.ID()))
	}
}

func TestMergeRemapTracksFolds(t *testing.T) {
	ctx1 := solast.NewContext()
	unitA1, _ := buildA(ctx1)

	ctx2 := solast.NewContext()
	unitA2, a2 := buildA(ctx2)

	result, err := Merge([]UnitGroup{
		{Ctx: ctx1, Units: []solast.ID{unitA1}},
		{Ctx: ctx2, Units: []solast.ID{unitA2}},
	})
	require.NoError(t, err)
	require.Len(t, result.Units, 1)

	// Both groups' A declarations map to the same merged node.
	keptA := result.Ctx.ContractsIn(result.Units[0])[0]
	assert.Equal(t, keptA.ID(), result.Remap[1][a2.ID()])
}

func TestMergeRejectsConflictingShapes(t *testing.T) {
	ctx1 := solast.NewContext()
	unitA1, _ := buildA(ctx1)

	// Same path, different shape: two state variables.
	ctx2 := solast.NewContext()
	a := ctx2.NewContractDefinition("A", solast.KindContract)
	x := ctx2.NewVariableDeclaration("x", ctx2.NewElementaryTypeName("uint256").ID(), "uint256")
	y := ctx2.NewVariableDeclaration("y", ctx2.NewElementaryTypeName("uint256").ID(), "uint256")
	ctx2.AddToContract(a, x.ID())
	ctx2.AddToContract(a, y.ID())
	unitA2 := ctx2.NewSourceUnit("A.sol", a.ID())

	_, err := Merge([]UnitGroup{
		{Ctx: ctx1, Units: []solast.ID{unitA1}},
		{Ctx: ctx2, Units: []solast.ID{unitA2.ID()}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicting compilations")
}
