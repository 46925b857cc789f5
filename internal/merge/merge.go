package merge

import (
	"fmt"

	"scribble/internal/errors"
	"scribble/internal/solast"
)

// UnitGroup is the forest produced by one host compilation. Node ids
// are only unique within a group.
type UnitGroup struct {
	Ctx   *solast.Context
	Units []solast.ID
}

// Result is the unified id space all later passes operate on.
type Result struct {
	Ctx   *solast.Context
	Units []*solast.SourceUnit

	// Remap translates (group index, old id) to the merged id, after
	// duplicate folding.
	Remap []map[solast.ID]solast.ID
}

// Merge deep-clones every group into a fresh identifier space. When
// two groups contain a unit with the same absolute path, the first
// copy is kept and all references into the second copy are redirected
// onto the first. The host sanity predicate runs on every kept unit.
func Merge(groups []UnitGroup) (*Result, error) {
	merged := solast.NewContext()
	result := &Result{Ctx: merged}
	byPath := make(map[string]solast.ID)

	for gi, group := range groups {
		remap, err := solast.CloneUnits(group.Ctx, merged, group.Units)
		if err != nil {
			return nil, mergeError("cloning group %d: %v", gi, err)
		}
		result.Remap = append(result.Remap, remap)

		// Fold units whose path already has a kept copy.
		fold := make(map[solast.ID]solast.ID)
		var kept []*solast.SourceUnit
		for _, oldID := range group.Units {
			unit := merged.Node(remap[oldID]).(*solast.SourceUnit)
			first, seen := byPath[unit.AbsolutePath]
			if !seen {
				byPath[unit.AbsolutePath] = unit.ID()
				kept = append(kept, unit)
				continue
			}
			if err := correspond(merged, unit.ID(), first, fold); err != nil {
				return nil, err
			}
		}

		if len(fold) > 0 {
			redirect := func(id solast.ID) solast.ID {
				if target, ok := fold[id]; ok {
					return target
				}
				return id
			}
			for _, newID := range remap {
				if _, dropped := fold[newID]; dropped {
					continue
				}
				solast.RemapIDs(merged.MustNode(newID), redirect)
			}
			// Later groups may also reference this path; make them
			// land on the kept copy too.
			for old, target := range fold {
				for gi2 := range result.Remap {
					for k, v := range result.Remap[gi2] {
						if v == old {
							result.Remap[gi2][k] = target
						}
					}
				}
			}
		}

		result.Units = append(result.Units, kept...)
	}

	for _, unit := range result.Units {
		if err := merged.Sanity(unit.ID()); err != nil {
			return nil, mergeError("merged unit %s failed sanity check: %v", unit.AbsolutePath, err)
		}
	}
	return result, nil
}

// correspond walks two clones of the same source file in parallel and
// records the duplicate→kept mapping for every node. Shape divergence
// means the two compilations disagree about the file and is fatal.
func correspond(ctx *solast.Context, dup, kept solast.ID, fold map[solast.ID]solast.ID) error {
	dupNode := ctx.MustNode(dup)
	keptNode := ctx.MustNode(kept)
	if dupNode.Kind() != keptNode.Kind() {
		return conflictError(ctx, dup, kept)
	}
	fold[dup] = kept

	dupKids := solast.Children(dupNode)
	keptKids := solast.Children(keptNode)
	if len(dupKids) != len(keptKids) {
		return conflictError(ctx, dup, kept)
	}
	for i := range dupKids {
		if err := correspond(ctx, dupKids[i], keptKids[i], fold); err != nil {
			return err
		}
	}
	return nil
}

func conflictError(ctx *solast.Context, dup, kept solast.ID) error {
	path := ""
	for id := kept; id != solast.InvalidID; id = ctx.MustNode(id).Parent() {
		if unit, ok := ctx.Node(id).(*solast.SourceUnit); ok {
			path = unit.AbsolutePath
			break
		}
	}
	return fmt.Errorf("[%s] conflicting compilations of unit %q", errors.ErrorConflictingUnits, path)
}

func mergeError(format string, args ...interface{}) error {
	return fmt.Errorf("[%s] %s", errors.ErrorMergeSanity, fmt.Sprintf(format, args...))
}
