package solast

// Walk visits the subtree rooted at id in pre-order. Returning false
// from the visitor prunes the subtree below the current node.
func (c *Context) Walk(id ID, visit func(Node) bool) {
	n := c.Node(id)
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, child := range Children(n) {
		c.Walk(child, visit)
	}
}

// WalkPost visits the subtree rooted at id in post-order, children
// before parents.
func (c *Context) WalkPost(id ID, visit func(Node)) {
	n := c.Node(id)
	if n == nil {
		return
	}
	for _, child := range Children(n) {
		c.WalkPost(child, visit)
	}
	visit(n)
}

// ContractsIn returns the contract definitions of a unit in source order.
func (c *Context) ContractsIn(unit *SourceUnit) []*ContractDefinition {
	var out []*ContractDefinition
	for _, id := range unit.Nodes {
		if cd, ok := c.Node(id).(*ContractDefinition); ok {
			out = append(out, cd)
		}
	}
	return out
}

// FunctionsIn returns the function definitions of a contract in source order.
func (c *Context) FunctionsIn(contract *ContractDefinition) []*FunctionDefinition {
	var out []*FunctionDefinition
	for _, id := range contract.Nodes {
		if fd, ok := c.Node(id).(*FunctionDefinition); ok {
			out = append(out, fd)
		}
	}
	return out
}

// StateVariablesIn returns the state variable declarations of a
// contract in source order.
func (c *Context) StateVariablesIn(contract *ContractDefinition) []*VariableDeclaration {
	var out []*VariableDeclaration
	for _, id := range contract.Nodes {
		if vd, ok := c.Node(id).(*VariableDeclaration); ok && vd.StateVariable {
			out = append(out, vd)
		}
	}
	return out
}
