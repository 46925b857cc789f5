package typecheck

import (
	"scribble/internal/sast"
	"scribble/internal/solast"
)

type userFunctionKey struct {
	contract solast.ID
	name     string
}

// TypeEnv records the single type of every checked SAST expression and
// the user functions introduced by define annotations. Type assignment
// is idempotent: re-checking a tree reproduces identical entries.
type TypeEnv struct {
	exprTypes map[sast.Expr]sast.Type
	userFns   map[userFunctionKey]*sast.UserFunctionDefinition
}

func NewTypeEnv() *TypeEnv {
	return &TypeEnv{
		exprTypes: make(map[sast.Expr]sast.Type),
		userFns:   make(map[userFunctionKey]*sast.UserFunctionDefinition),
	}
}

func (env *TypeEnv) TypeOf(e sast.Expr) sast.Type {
	return env.exprTypes[e]
}

// SetType stores the type of an expression. A conflicting re-assignment
// reports false; assigning an equal type is a no-op.
func (env *TypeEnv) SetType(e sast.Expr, t sast.Type) bool {
	if prev, ok := env.exprTypes[e]; ok {
		return sast.TypesEqual(prev, t)
	}
	env.exprTypes[e] = t
	return true
}

// DefineUserFunction registers a define-introduced function for a
// contract. Redefinition reports false.
func (env *TypeEnv) DefineUserFunction(contract solast.ID, def *sast.UserFunctionDefinition) bool {
	key := userFunctionKey{contract: contract, name: def.Name.Name}
	if _, exists := env.userFns[key]; exists {
		return false
	}
	env.userFns[key] = def
	return true
}

// LookupUserFunction resolves a user function from the query scope,
// traversing the linearized base-contract list.
func (env *TypeEnv) LookupUserFunction(ctx *solast.Context, scope solast.ID, name string) *sast.UserFunctionDefinition {
	contract, ok := ctx.Node(scope).(*solast.ContractDefinition)
	if !ok {
		return env.userFns[userFunctionKey{contract: scope, name: name}]
	}
	for _, base := range contract.LinearizedBaseContracts {
		if def := env.userFns[userFunctionKey{contract: base, name: name}]; def != nil {
			return def
		}
	}
	return nil
}

// SemanticInfo is the per-node semantic flag set.
type SemanticInfo struct {
	ReadsState    bool
	ReadsOld      bool
	CallsExternal bool
	MutatesState  bool
}

// Pure reports whether the node neither reads nor writes host state.
func (s SemanticInfo) Pure() bool {
	return !s.ReadsState && !s.MutatesState && !s.CallsExternal
}

// SemanticMap attaches semantic flags to SAST nodes.
type SemanticMap map[sast.Expr]*SemanticInfo

func (m SemanticMap) Info(e sast.Expr) *SemanticInfo {
	if info, ok := m[e]; ok {
		return info
	}
	info := &SemanticInfo{}
	m[e] = info
	return info
}
