package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"scribble/internal/solast"
)

// diamond builds A <- B, A <- C, (B,C) <- D plus an unrelated E.
func diamond(t *testing.T) (*solast.Context, []*solast.SourceUnit, map[string]*solast.ContractDefinition) {
	t.Helper()
	ctx := solast.NewContext()

	a := ctx.NewContractDefinition("A", solast.KindContract)
	b := ctx.NewContractDefinition("B", solast.KindContract)
	c := ctx.NewContractDefinition("C", solast.KindContract)
	d := ctx.NewContractDefinition("D", solast.KindContract)
	e := ctx.NewContractDefinition("E", solast.KindContract)

	b.LinearizedBaseContracts = []solast.ID{b.ID(), a.ID()}
	c.LinearizedBaseContracts = []solast.ID{c.ID(), a.ID()}
	d.LinearizedBaseContracts = []solast.ID{d.ID(), b.ID(), c.ID(), a.ID()}

	unit := ctx.NewSourceUnit("diamond.sol", a.ID(), b.ID(), c.ID(), d.ID(), e.ID())
	units := []*solast.SourceUnit{unit}
	return ctx, units, map[string]*solast.ContractDefinition{
		"A": a, "B": b, "C": c, "D": d, "E": e,
	}
}

func TestCHAEdges(t *testing.T) {
	ctx, units, cs := diamond(t)
	cha := BuildCHA(ctx, units)

	assert.ElementsMatch(t, []solast.ID{cs["B"].ID(), cs["C"].ID(), cs["A"].ID()}, cha.Parents(cs["D"].ID()))
	assert.ElementsMatch(t, []solast.ID{cs["B"].ID(), cs["C"].ID(), cs["D"].ID()}, cha.Children(cs["A"].ID()))
	assert.Empty(t, cha.Parents(cs["E"].ID()))
}

func TestCHADFSVisitsChildrenBeforeParentsOnce(t *testing.T) {
	ctx, units, _ := diamond(t)
	cha := BuildCHA(ctx, units)

	var order []string
	seen := make(map[string]int)
	cha.DFS(func(c *solast.ContractDefinition) {
		order = append(order, c.Name)
		seen[c.Name]++
	})

	require.Len(t, order, 5)
	for name, count := range seen {
		assert.Equal(t, 1, count, "contract %s visited once", name)
	}
	pos := func(name string) int {
		for i, n := range order {
			if n == name {
				return i
			}
		}
		return -1
	}
	assert.Less(t, pos("D"), pos("B"))
	assert.Less(t, pos("D"), pos("C"))
	assert.Less(t, pos("B"), pos("A"))
	assert.Less(t, pos("C"), pos("A"))
}

func TestNeedsInstrumentationIsConnectedComponent(t *testing.T) {
	ctx, units, cs := diamond(t)
	cha := BuildCHA(ctx, units)

	// Annotating B pulls in the whole diamond but not E.
	needed := cha.NeedsInstrumentation([]solast.ID{cs["B"].ID()})
	assert.True(t, needed[cs["A"].ID()])
	assert.True(t, needed[cs["B"].ID()])
	assert.True(t, needed[cs["C"].ID()], "siblings join through the shared base")
	assert.True(t, needed[cs["D"].ID()])
	assert.False(t, needed[cs["E"].ID()])

	assert.Empty(t, cha.NeedsInstrumentation(nil))
}

func TestCallGraphDirectAndVirtual(t *testing.T) {
	ctx := solast.NewContext()

	a := ctx.NewContractDefinition("A", solast.KindContract)
	ping := ctx.NewFunctionDefinition("ping", solast.FnKindFunction, solast.VisPublic, solast.MutNonpayable)
	ping.Virtual = true
	pong := ctx.NewFunctionDefinition("pong", solast.FnKindFunction, solast.VisPublic, solast.MutNonpayable)

	// pong calls ping() directly.
	call := ctx.NewFunctionCall(solast.CallFunction, ctx.NewIdentifier("ping", ping.ID()).ID())
	pong.Body = ctx.NewBlock(ctx.NewExpressionStatement(call.ID()).ID()).ID()
	ctx.Adopt(pong.ID(), pong.Body)
	ctx.AddToContract(a, ping.ID())
	ctx.AddToContract(a, pong.ID())

	// B overrides ping.
	b := ctx.NewContractDefinition("B", solast.KindContract)
	override := ctx.NewFunctionDefinition("ping", solast.FnKindFunction, solast.VisPublic, solast.MutNonpayable)
	ctx.AddToContract(b, override.ID())
	b.LinearizedBaseContracts = []solast.ID{b.ID(), a.ID()}

	unit := ctx.NewSourceUnit("ab.sol", a.ID(), b.ID())
	units := []*solast.SourceUnit{unit}
	cha := BuildCHA(ctx, units)
	graph := BuildCallGraph(ctx, units, cha)

	callees := graph.Callees(pong.ID())
	assert.Contains(t, callees, ping.ID(), "direct call")
	assert.Contains(t, callees, override.ID(), "virtual dispatch to override")
	assert.Empty(t, graph.Callees(ping.ID()))
}

func TestCallGraphSuper(t *testing.T) {
	ctx := solast.NewContext()

	a := ctx.NewContractDefinition("A", solast.KindContract)
	baseFn := ctx.NewFunctionDefinition("run", solast.FnKindFunction, solast.VisPublic, solast.MutNonpayable)
	ctx.AddToContract(a, baseFn.ID())

	b := ctx.NewContractDefinition("B", solast.KindContract)
	overrideFn := ctx.NewFunctionDefinition("run", solast.FnKindFunction, solast.VisPublic, solast.MutNonpayable)
	superIdent := ctx.NewIdentifier("super", solast.InvalidID)
	member := ctx.NewMemberAccess(superIdent.ID(), "run", solast.InvalidID)
	call := ctx.NewFunctionCall(solast.CallFunction, member.ID())
	overrideFn.Body = ctx.NewBlock(ctx.NewExpressionStatement(call.ID()).ID()).ID()
	ctx.Adopt(overrideFn.ID(), overrideFn.Body)
	ctx.AddToContract(b, overrideFn.ID())
	b.LinearizedBaseContracts = []solast.ID{b.ID(), a.ID()}

	unit := ctx.NewSourceUnit("super.sol", a.ID(), b.ID())
	units := []*solast.SourceUnit{unit}
	graph := BuildCallGraph(ctx, units, BuildCHA(ctx, units))

	assert.Equal(t, []solast.ID{baseFn.ID()}, graph.Callees(overrideFn.ID()))
}
