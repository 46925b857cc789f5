package typecheck

import (
	"scribble/internal/sast"
	"scribble/internal/solast"
	"scribble/internal/specparse"
)

// binding is the result of resolving a name: exactly one field is set.
type binding struct {
	// local is a quantifier/let binder or define parameter type.
	local sast.Type
	// variable is a host variable (parameter, return value, state
	// variable or file-level constant).
	variable *solast.VariableDeclaration
	// function is a host function.
	function *solast.FunctionDefinition
	// userFn is a define-introduced specification function.
	userFn *sast.UserFunctionDefinition
	// contract is a contract named in expression position.
	contract *solast.ContractDefinition
	// unit is an import alias naming a whole source unit.
	unit *solast.SourceUnit
	// typeName is an elementary type in cast position.
	typeName sast.Type
	// builtin is one of the magic globals (msg, block, tx, this).
	builtin string
}

// scope is one frame of binder names.
type scope map[string]sast.Type

func (c *Checker) pushScope() {
	c.scopes = append(c.scopes, scope{})
}

func (c *Checker) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *Checker) bind(name string, t sast.Type) {
	c.scopes[len(c.scopes)-1][name] = t
}

// resolve looks a name up through the §4.4 chain: binders, function
// parameters and returns, contract state across the linearization,
// file constants, imported units, contracts in scope, and built-ins.
func (c *Checker) resolve(name string) *binding {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i][name]; ok {
			return &binding{local: t}
		}
	}

	if c.function != nil {
		if v := c.paramByName(c.function.Parameters, name); v != nil {
			return &binding{variable: v}
		}
		if v := c.paramByName(c.function.ReturnParameters, name); v != nil {
			return &binding{variable: v}
		}
	}

	if c.contract != nil {
		if def := c.env.LookupUserFunction(c.ctx, c.contract.ID(), name); def != nil {
			return &binding{userFn: def}
		}
		for _, baseID := range c.contract.LinearizedBaseContracts {
			base, ok := c.ctx.Node(baseID).(*solast.ContractDefinition)
			if !ok {
				continue
			}
			for _, v := range c.ctx.StateVariablesIn(base) {
				if v.Name == name {
					return &binding{variable: v}
				}
			}
			for _, fn := range c.ctx.FunctionsIn(base) {
				if fn.Name == name {
					return &binding{function: fn}
				}
			}
		}
	}

	if b := c.resolveTopLevel(name); b != nil {
		return b
	}

	if t := specparse.Elementary(name); t != nil {
		return &binding{typeName: t}
	}

	switch name {
	case "msg", "block", "tx":
		return &binding{builtin: name}
	case "this":
		if c.contract != nil {
			return &binding{builtin: "this"}
		}
	}
	return nil
}

// resolveTopLevel scans the enclosing unit and imported units for
// file-level constants, contracts and import aliases.
func (c *Checker) resolveTopLevel(name string) *binding {
	for _, unit := range c.units {
		for _, id := range unit.Nodes {
			switch node := c.ctx.Node(id).(type) {
			case *solast.VariableDeclaration:
				if node.Name == name && node.Mutability == solast.Constant {
					return &binding{variable: node}
				}
			case *solast.ContractDefinition:
				if node.Name == name {
					return &binding{contract: node}
				}
			case *solast.ImportDirective:
				if node.UnitAlias == name {
					if u, ok := c.ctx.Node(node.SourceUnit).(*solast.SourceUnit); ok {
						return &binding{unit: u}
					}
				}
			}
		}
	}
	return nil
}

func (c *Checker) paramByName(listID solast.ID, name string) *solast.VariableDeclaration {
	list, ok := c.ctx.Node(listID).(*solast.ParameterList)
	if !ok {
		return nil
	}
	for _, id := range list.Parameters {
		if v, ok := c.ctx.Node(id).(*solast.VariableDeclaration); ok && v.Name == name && v.Name != "" {
			return v
		}
	}
	return nil
}

// hostType rebuilds the sast type of a host variable from its
// compiler-reported type string.
func (c *Checker) hostType(v *solast.VariableDeclaration) (sast.Type, error) {
	return specparse.ParseTypeString(v.TypeString, func(kind sast.UserDefinedKind, name string) int {
		return int(c.findDeclaration(kind, name))
	})
}

// findDeclaration locates a named contract, struct or enum anywhere in
// the merged units.
func (c *Checker) findDeclaration(kind sast.UserDefinedKind, name string) solast.ID {
	for _, unit := range c.units {
		var found solast.ID = solast.InvalidID
		c.ctx.Walk(unit.ID(), func(n solast.Node) bool {
			if found != solast.InvalidID {
				return false
			}
			switch node := n.(type) {
			case *solast.ContractDefinition:
				if kind == sast.ContractKind && node.Name == name {
					found = node.ID()
					return false
				}
			case *solast.StructDefinition:
				if kind == sast.StructKind && node.Name == name {
					found = node.ID()
					return false
				}
			case *solast.EnumDefinition:
				if kind == sast.EnumKind && node.Name == name {
					found = node.ID()
					return false
				}
			}
			return true
		})
		if found != solast.InvalidID {
			return found
		}
	}
	return solast.InvalidID
}

// functionType builds the sast view of a host function's signature.
func (c *Checker) functionType(fn *solast.FunctionDefinition) (*sast.FunctionType, error) {
	out := &sast.FunctionType{}
	params, _ := c.ctx.Node(fn.Parameters).(*solast.ParameterList)
	if params != nil {
		for _, id := range params.Parameters {
			v, ok := c.ctx.Node(id).(*solast.VariableDeclaration)
			if !ok {
				continue
			}
			t, err := c.hostType(v)
			if err != nil {
				return nil, err
			}
			out.Params = append(out.Params, t)
		}
	}
	rets, _ := c.ctx.Node(fn.ReturnParameters).(*solast.ParameterList)
	if rets != nil {
		for _, id := range rets.Parameters {
			v, ok := c.ctx.Node(id).(*solast.VariableDeclaration)
			if !ok {
				continue
			}
			t, err := c.hostType(v)
			if err != nil {
				return nil, err
			}
			out.Returns = append(out.Returns, t)
		}
	}
	return out, nil
}

// similarNames collects in-scope names for did-you-mean suggestions.
func (c *Checker) similarNames(name string) []string {
	var out []string
	add := func(candidate string) {
		if candidate == "" || candidate == name {
			return
		}
		if editDistanceAtMost(candidate, name, 2) {
			out = append(out, candidate)
		}
	}
	for _, s := range c.scopes {
		for n := range s {
			add(n)
		}
	}
	if c.contract != nil {
		for _, baseID := range c.contract.LinearizedBaseContracts {
			if base, ok := c.ctx.Node(baseID).(*solast.ContractDefinition); ok {
				for _, v := range c.ctx.StateVariablesIn(base) {
					add(v.Name)
				}
			}
		}
	}
	return out
}

// editDistanceAtMost is a cheap bounded Levenshtein check.
func editDistanceAtMost(a, b string, bound int) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(b)-len(a) > bound {
		return false
	}
	prev := make([]int, len(a)+1)
	cur := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(b); j++ {
		cur[0] = j
		best := cur[0]
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[i] = min(prev[i]+1, min(cur[i-1]+1, prev[i-1]+cost))
			if cur[i] < best {
				best = cur[i]
			}
		}
		if best > bound {
			return false
		}
		prev, cur = cur, prev
	}
	return prev[len(a)] <= bound
}
