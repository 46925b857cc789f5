package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"scribble/internal/solast"
)

// counterAST is a trimmed host-compiler AST for:
//
//	contract Counter { uint256 x; function inc() public { x += 1; } }
const counterAST = `{
  "id": 20, "nodeType": "SourceUnit", "src": "0:120:0",
  "absolutePath": "Counter.sol",
  "nodes": [
    {"id": 1, "nodeType": "PragmaDirective", "src": "0:23:0",
     "literals": ["solidity", "^", "0.8", ".17"]},
    {"id": 19, "nodeType": "ContractDefinition", "src": "25:95:0",
     "name": "Counter", "contractKind": "contract",
     "linearizedBaseContracts": [19],
     "documentation": {"id": 2, "nodeType": "StructuredDocumentation",
       "src": "25:24:0", "text": "/// #invariant x >= 0;"},
     "nodes": [
       {"id": 4, "nodeType": "VariableDeclaration", "src": "50:9:0",
        "name": "x", "stateVariable": true, "visibility": "internal",
        "typeDescriptions": {"typeString": "uint256"},
        "typeName": {"id": 3, "nodeType": "ElementaryTypeName", "src": "50:7:0", "name": "uint256"}},
       {"id": 18, "nodeType": "FunctionDefinition", "src": "65:50:0",
        "name": "inc", "kind": "function", "visibility": "public",
        "stateMutability": "nonpayable",
        "parameters": {"id": 5, "nodeType": "ParameterList", "src": "77:2:0", "parameters": []},
        "returnParameters": {"id": 6, "nodeType": "ParameterList", "src": "87:0:0", "parameters": []},
        "body": {"id": 17, "nodeType": "Block", "src": "87:28:0",
          "statements": [
            {"id": 16, "nodeType": "ExpressionStatement", "src": "95:8:0",
             "expression": {"id": 15, "nodeType": "Assignment", "src": "95:7:0",
               "operator": "+=",
               "leftHandSide": {"id": 13, "nodeType": "Identifier", "src": "95:1:0",
                 "name": "x", "referencedDeclaration": 4},
               "rightHandSide": {"id": 14, "nodeType": "Literal", "src": "100:1:0",
                 "kind": "number", "value": "1"}}}
          ]}}
     ]}
  ]
}`

func TestDecodeCounterUnit(t *testing.T) {
	d := NewDecoder()
	unitID, err := d.DecodeUnit([]byte(counterAST))
	require.NoError(t, err)
	d.Finish()

	ctx := d.Context()
	unit := ctx.Node(unitID).(*solast.SourceUnit)
	assert.Equal(t, "Counter.sol", unit.AbsolutePath)
	require.NoError(t, ctx.Sanity(unitID))

	contracts := ctx.ContractsIn(unit)
	require.Len(t, contracts, 1)
	counter := contracts[0]
	assert.Equal(t, "Counter", counter.Name)
	assert.Equal(t, []solast.ID{counter.ID()}, counter.LinearizedBaseContracts)

	doc := ctx.Node(counter.Documentation).(*solast.StructuredDocumentation)
	assert.Equal(t, "/// #invariant x >= 0;", doc.Text)
	assert.Equal(t, solast.Src{Offset: 25, Length: 24, File: 0}, doc.Src())

	vars := ctx.StateVariablesIn(counter)
	require.Len(t, vars, 1)
	assert.Equal(t, "uint256", vars[0].TypeString)

	fns := ctx.FunctionsIn(counter)
	require.Len(t, fns, 1)
	inc := fns[0]
	assert.True(t, inc.IsExternallyVisible())
	assert.True(t, inc.Mutates())

	// The identifier's reference edge was remapped into the new id
	// space.
	body := ctx.Node(inc.Body).(*solast.Block)
	stmt := ctx.Node(body.Statements[0]).(*solast.ExpressionStatement)
	assign := ctx.Node(stmt.Expression).(*solast.Assignment)
	ident := ctx.Node(assign.LHS).(*solast.Identifier)
	assert.Equal(t, vars[0].ID(), ident.ReferencedDeclaration())
}

func TestDecodeStandardJSONOrdersByFileIndex(t *testing.T) {
	doc := `{
	  "sources": {
	    "B.sol": {"id": 1, "ast": {"id": 1, "nodeType": "SourceUnit", "src": "0:0:1", "absolutePath": "B.sol", "nodes": []}},
	    "A.sol": {"id": 0, "ast": {"id": 2, "nodeType": "SourceUnit", "src": "0:0:0", "absolutePath": "A.sol", "nodes": []}}
	  }
	}`
	group, files, err := DecodeStandardJSON([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"A.sol", "B.sol"}, files)
	require.Len(t, group.Units, 2)
	assert.Equal(t, "A.sol", group.Ctx.Node(group.Units[0]).(*solast.SourceUnit).AbsolutePath)
}

func TestDecodeStandardJSONSurfacesCompilerErrors(t *testing.T) {
	doc := `{
	  "errors": [{"severity": "error", "formattedMessage": "ParserError: expected ';'"}],
	  "sources": {}
	}`
	_, _, err := DecodeStandardJSON([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ParserError")
}

func TestDecodeRejectsUnknownNodeType(t *testing.T) {
	_, err := NewDecoder().DecodeUnit([]byte(`{"id":1,"nodeType":"Quantum","src":"0:0:0"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Quantum")
}
