package flatten

import (
	"fmt"

	"scribble/internal/printer"
	"scribble/internal/solast"
)

// Result is the concatenated output of flat/json modes.
type Result struct {
	Text string
	// Ranges maps every printed node to its byte range in Text.
	Ranges printer.SourceMap
	// Order is the emitted unit order.
	Order []*solast.SourceUnit
	// Renamed records collision renames, node id → new name.
	Renamed map[solast.ID]string
}

// Flatten topologically orders the units, renames colliding top-level
// definitions, rewrites references to renamed entities, strips imports
// and pragmas, and concatenates everything under a single pragma for
// the selected compiler version.
func Flatten(ctx *solast.Context, units []*solast.SourceUnit, version string) (*Result, error) {
	order, err := topoSort(ctx, units)
	if err != nil {
		return nil, err
	}

	renamed := renameCollisions(ctx, order)
	rewriteReferences(ctx, order, renamed)

	text := fmt.Sprintf("pragma solidity %s;\n", version)
	ranges := make(printer.SourceMap)
	for _, unit := range order {
		var keep []solast.ID
		for _, id := range unit.Nodes {
			switch ctx.Node(id).(type) {
			case *solast.ImportDirective, *solast.PragmaDirective:
				continue
			default:
				keep = append(keep, id)
			}
		}
		unitText, unitRanges := printer.PrintNodes(ctx, keep, 0)
		base := len(text)
		for id, src := range unitRanges {
			ranges[id] = solast.Src{Offset: base + src.Offset, Length: src.Length, File: 0}
		}
		text += unitText
	}

	return &Result{Text: text, Ranges: ranges, Order: order, Renamed: renamed}, nil
}

// topoSort orders units so every import precedes its importer. A cycle
// means the host compiler accepted one, which is a bug.
func topoSort(ctx *solast.Context, units []*solast.SourceUnit) ([]*solast.SourceUnit, error) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[solast.ID]int)
	byID := make(map[solast.ID]*solast.SourceUnit)
	for _, unit := range units {
		byID[unit.ID()] = unit
	}

	var order []*solast.SourceUnit
	var visit func(unit *solast.SourceUnit) error
	visit = func(unit *solast.SourceUnit) error {
		switch state[unit.ID()] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("import cycle through %q; the host compiler should have rejected this", unit.AbsolutePath)
		}
		state[unit.ID()] = visiting
		for _, id := range unit.Nodes {
			imp, ok := ctx.Node(id).(*solast.ImportDirective)
			if !ok {
				continue
			}
			if dep, ok := byID[imp.SourceUnit]; ok {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		state[unit.ID()] = done
		order = append(order, unit)
		return nil
	}

	for _, unit := range units {
		if err := visit(unit); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// topLevelName returns the definition name of a unit-level node, or ""
// for nodes that do not introduce one.
func topLevelName(n solast.Node) string {
	switch v := n.(type) {
	case *solast.ContractDefinition:
		return v.Name
	case *solast.StructDefinition:
		return v.Name
	case *solast.EnumDefinition:
		return v.Name
	case *solast.FunctionDefinition:
		return v.Name
	case *solast.VariableDeclaration:
		return v.Name
	}
	return ""
}

func setTopLevelName(n solast.Node, name string) {
	switch v := n.(type) {
	case *solast.ContractDefinition:
		v.Name = name
	case *solast.StructDefinition:
		v.Name = name
	case *solast.EnumDefinition:
		v.Name = name
	case *solast.FunctionDefinition:
		v.Name = name
	case *solast.VariableDeclaration:
		v.Name = name
	}
}

// renameCollisions keeps the first definition of each name and renames
// later ones to name_1, name_2, ... in unit order.
func renameCollisions(ctx *solast.Context, order []*solast.SourceUnit) map[solast.ID]string {
	taken := make(map[string]bool)
	counters := make(map[string]int)
	renamed := make(map[solast.ID]string)

	for _, unit := range order {
		for _, id := range unit.Nodes {
			node := ctx.Node(id)
			name := topLevelName(node)
			if name == "" {
				continue
			}
			if !taken[name] {
				taken[name] = true
				continue
			}
			for {
				counters[name]++
				candidate := fmt.Sprintf("%s_%d", name, counters[name])
				if !taken[candidate] {
					setTopLevelName(node, candidate)
					taken[candidate] = true
					renamed[id] = candidate
					break
				}
			}
		}
	}
	return renamed
}

// rewriteReferences updates identifiers, type names and unit-qualified
// member accesses whose referent is a renamed top-level definition.
// References to locals, parameters and intra-contract members keep
// their spelling. Member-access bases deeper than one unit level are
// left alone (known edge case, covered by tests).
func rewriteReferences(ctx *solast.Context, order []*solast.SourceUnit, renamed map[solast.ID]string) {
	isTopLevel := func(id solast.ID) bool {
		n := ctx.Node(id)
		if n == nil {
			return false
		}
		_, ok := ctx.Node(n.Parent()).(*solast.SourceUnit)
		return ok
	}

	for _, unit := range order {
		var replacements [][2]solast.ID
		ctx.Walk(unit.ID(), func(n solast.Node) bool {
			switch v := n.(type) {
			case *solast.Identifier:
				if name, ok := renamed[v.Referent]; ok && isTopLevel(v.Referent) {
					v.Name = name
				} else if target := aliasTarget(ctx, v.Referent); target != solast.InvalidID {
					// import {a as b}: rewrite the alias to the (possibly
					// renamed) definition name.
					v.Referent = target
					v.Name = definitionName(ctx, target)
				}
			case *solast.IdentifierPath:
				if name, ok := renamed[v.Referent]; ok && isTopLevel(v.Referent) {
					v.Name = name
				}
			case *solast.MemberAccess:
				base, ok := ctx.Node(v.Expression).(*solast.Identifier)
				if !ok {
					return true
				}
				baseRef := ctx.Node(base.Referent)
				_, isUnit := baseRef.(*solast.SourceUnit)
				_, isImport := baseRef.(*solast.ImportDirective)
				if !isUnit && !isImport {
					return true
				}
				// Unit.Name collapses to a direct identifier of the
				// (possibly renamed) definition.
				target := v.ReferencedDeclaration()
				if target == solast.InvalidID {
					return true
				}
				direct := ctx.NewIdentifier(definitionName(ctx, target), target)
				replacements = append(replacements, [2]solast.ID{v.ID(), direct.ID()})
				return false
			}
			return true
		})
		for _, pair := range replacements {
			_ = ctx.ReplaceNode(pair[0], pair[1])
		}
	}
}

// aliasTarget resolves an identifier bound to a symbol-aliased import
// to the aliased declaration, or InvalidID.
func aliasTarget(ctx *solast.Context, referent solast.ID) solast.ID {
	ident, ok := ctx.Node(referent).(*solast.Identifier)
	if !ok {
		return solast.InvalidID
	}
	if _, ok := ctx.Node(ident.Parent()).(*solast.ImportDirective); !ok {
		return solast.InvalidID
	}
	return ident.ReferencedDeclaration()
}

func definitionName(ctx *solast.Context, id solast.ID) string {
	if n := ctx.Node(id); n != nil {
		return topLevelName(n)
	}
	return ""
}
