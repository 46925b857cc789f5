package analysis

import (
	"scribble/internal/solast"
)

// CallGraph maps every function to the set of functions it may invoke:
// direct calls, this/super member calls, and dispatch through virtual
// overrides resolved against the linearized base lists.
type CallGraph struct {
	ctx     *solast.Context
	callees map[solast.ID][]solast.ID
	order   []solast.ID
}

func BuildCallGraph(ctx *solast.Context, units []*solast.SourceUnit, cha *CHA) *CallGraph {
	g := &CallGraph{ctx: ctx, callees: make(map[solast.ID][]solast.ID)}

	for _, unit := range units {
		for _, contract := range ctx.ContractsIn(unit) {
			for _, fn := range ctx.FunctionsIn(contract) {
				g.order = append(g.order, fn.ID())
				if fn.Body == solast.InvalidID {
					continue
				}
				ctx.Walk(fn.Body, func(n solast.Node) bool {
					call, ok := n.(*solast.FunctionCall)
					if !ok || call.CallKind != solast.CallFunction {
						return true
					}
					g.resolveCall(contract, fn, call, cha)
					return true
				})
			}
		}
	}
	return g
}

// Callees returns a function's possible targets in discovery order.
func (g *CallGraph) Callees(fn solast.ID) []solast.ID {
	return g.callees[fn]
}

// Functions returns every analyzed function in insertion order.
func (g *CallGraph) Functions() []solast.ID {
	return g.order
}

func (g *CallGraph) addEdge(from, to solast.ID) {
	if !contains(g.callees[from], to) {
		g.callees[from] = append(g.callees[from], to)
	}
}

func (g *CallGraph) resolveCall(contract *solast.ContractDefinition, caller *solast.FunctionDefinition, call *solast.FunctionCall, cha *CHA) {
	switch callee := g.ctx.Node(call.Expression).(type) {
	case *solast.Identifier:
		target, ok := g.ctx.Node(callee.ReferencedDeclaration()).(*solast.FunctionDefinition)
		if !ok {
			return
		}
		g.addEdge(caller.ID(), target.ID())
		g.addOverrides(caller.ID(), contract, target, cha)

	case *solast.MemberAccess:
		base, ok := g.ctx.Node(callee.Expression).(*solast.Identifier)
		if !ok {
			return
		}
		switch base.Name {
		case "this":
			if target := g.lookupVirtual(contract, callee.MemberName); target != nil {
				g.addEdge(caller.ID(), target.ID())
				g.addOverrides(caller.ID(), contract, target, cha)
			}
		case "super":
			if target := g.lookupSuper(contract, callee.MemberName); target != nil {
				g.addEdge(caller.ID(), target.ID())
			}
		}
	}
}

// lookupVirtual resolves a name through the contract's linearization.
func (g *CallGraph) lookupVirtual(contract *solast.ContractDefinition, name string) *solast.FunctionDefinition {
	for _, baseID := range contract.LinearizedBaseContracts {
		base, ok := g.ctx.Node(baseID).(*solast.ContractDefinition)
		if !ok {
			continue
		}
		for _, fn := range g.ctx.FunctionsIn(base) {
			if fn.Name == name {
				return fn
			}
		}
	}
	return nil
}

// lookupSuper resolves a name starting after the current contract in
// its own linearization.
func (g *CallGraph) lookupSuper(contract *solast.ContractDefinition, name string) *solast.FunctionDefinition {
	for _, baseID := range contract.LinearizedBaseContracts[1:] {
		base, ok := g.ctx.Node(baseID).(*solast.ContractDefinition)
		if !ok {
			continue
		}
		for _, fn := range g.ctx.FunctionsIn(base) {
			if fn.Name == name {
				return fn
			}
		}
	}
	return nil
}

// addOverrides adds edges for dynamic dispatch: any override of the
// static target in a contract deriving from the caller's contract may
// be the one that runs.
func (g *CallGraph) addOverrides(from solast.ID, contract *solast.ContractDefinition, target *solast.FunctionDefinition, cha *CHA) {
	if !target.Virtual {
		return
	}
	for _, childID := range cha.Children(contract.ID()) {
		child, ok := g.ctx.Node(childID).(*solast.ContractDefinition)
		if !ok {
			continue
		}
		for _, fn := range g.ctx.FunctionsIn(child) {
			if fn.Name == target.Name {
				g.addEdge(from, fn.ID())
			}
		}
	}
}
