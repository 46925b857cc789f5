package extractor

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"scribble/internal/sast"
	"scribble/internal/solast"
)

// fixture builds a unit for the given source with one contract and one
// function, attaching structured documentation nodes whose ranges are
// located by marker search in the source text.
type fixture struct {
	ctx      *solast.Context
	unit     *solast.SourceUnit
	contract *solast.ContractDefinition
	fn       *solast.FunctionDefinition
	source   string
}

func newFixture(t *testing.T, source string, contractDoc, fnDoc string) *fixture {
	t.Helper()
	ctx := solast.NewContext()

	contract := ctx.NewContractDefinition("Token", solast.KindContract)
	contract.SetSrc(solast.Src{Offset: strings.Index(source, "contract Token"), Length: 14})

	if contractDoc != "" {
		doc := ctx.NewStructuredDocumentation(contractDoc)
		doc.SetSrc(solast.Src{Offset: strings.Index(source, contractDoc), Length: len(contractDoc)})
		contract.Documentation = doc.ID()
		ctx.Adopt(contract.ID(), doc.ID())
	}

	fn := ctx.NewFunctionDefinition("inc", solast.FnKindFunction, solast.VisPublic, solast.MutNonpayable)
	fn.SetSrc(solast.Src{Offset: strings.Index(source, "function inc"), Length: 12})
	if fnDoc != "" {
		doc := ctx.NewStructuredDocumentation(fnDoc)
		doc.SetSrc(solast.Src{Offset: strings.Index(source, fnDoc), Length: len(fnDoc)})
		fn.Documentation = doc.ID()
		ctx.Adopt(fn.ID(), doc.ID())
	}
	ctx.AddToContract(contract, fn.ID())

	unit := ctx.NewSourceUnit("Token.sol", contract.ID())
	return &fixture{ctx: ctx, unit: unit, contract: contract, fn: fn, source: source}
}

func extract(t *testing.T, f *fixture, filter AnnotationFilter) ([]*AnnotationMetadata, *Extractor) {
	t.Helper()
	nextID := 0
	e := New(f.ctx, "Token.sol", f.source, 0, filter, &nextID)
	return e.ExtractUnit(f.unit), e
}

func TestExtractContractInvariant(t *testing.T) {
	source := `/// #invariant x >= 0;
contract Token {
    uint x;
    function inc() public { x++; }
}`
	f := newFixture(t, source, "/// #invariant x >= 0;", "")

	annots, e := extract(t, f, AnnotationFilter{})
	require.Empty(t, e.Errors())
	require.Len(t, annots, 1)

	a := annots[0]
	assert.Equal(t, sast.Invariant, a.Kind)
	assert.Equal(t, TargetContract, a.TargetKind)
	assert.Equal(t, f.contract.ID(), a.Target)
	assert.Equal(t, "#invariant x >= 0;", a.OriginalText)

	// The annotation range covers "#invariant x >= 0;" in the file.
	assert.Equal(t, strings.Index(source, "#invariant"), a.AnnotationRange.Offset)
	assert.Equal(t, len("#invariant x >= 0;"), a.AnnotationRange.Length)

	// The predicate range covers exactly "x >= 0".
	pred := source[a.PredicateRange.Offset : a.PredicateRange.Offset+a.PredicateRange.Length]
	assert.Equal(t, "x >= 0", pred)
}

func TestExtractIfSucceedsWithLabel(t *testing.T) {
	source := `contract Token {
    uint x;
    /// #if_succeeds {:msg "increments"} old(x) + 1 == x;
    function inc() public { x++; }
}`
	f := newFixture(t, source, "", `/// #if_succeeds {:msg "increments"} old(x) + 1 == x;`)

	annots, e := extract(t, f, AnnotationFilter{})
	require.Empty(t, e.Errors())
	require.Len(t, annots, 1)

	a := annots[0]
	assert.Equal(t, sast.IfSucceeds, a.Kind)
	assert.Equal(t, "increments", a.Label)
	assert.Equal(t, TargetFunction, a.TargetKind)
	assert.Equal(t, f.fn.ID(), a.Target)

	// Parsed SAST positions are lifted to file coordinates.
	pos := a.Parsed.Expr.NodePos()
	assert.Equal(t, "Token.sol", pos.Filename)
	assert.Equal(t, strings.Index(source, "old(x)"), pos.Offset)
}

func TestFallbackRawCommentScan(t *testing.T) {
	source := `contract Token {
    uint x;
    /// #if_succeeds x > 0;
    function inc() public { x++; }
}`
	// No structured documentation node: the extractor must find the
	// comment by scanning backwards from the declaration.
	f := newFixture(t, source, "", "")

	annots, e := extract(t, f, AnnotationFilter{})
	require.Empty(t, e.Errors())
	require.Len(t, annots, 1)
	assert.Equal(t, "#if_succeeds x > 0;", annots[0].OriginalText)
}

func TestMultipleAnnotationsInOneComment(t *testing.T) {
	doc := `/// #invariant x >= 0;
/// #define half(uint256 v) uint256 = v / 2;`
	source := doc + `
contract Token {
    uint x;
    function inc() public { x++; }
}`
	f := newFixture(t, source, doc, "")

	annots, e := extract(t, f, AnnotationFilter{})
	require.Empty(t, e.Errors())
	require.Len(t, annots, 2)
	assert.Equal(t, sast.Invariant, annots[0].Kind)
	assert.Equal(t, sast.Define, annots[1].Kind)
	assert.Equal(t, 0, annots[0].ID)
	assert.Equal(t, 1, annots[1].ID)
	require.NotNil(t, annots[1].Parsed.Def)
	assert.Equal(t, "half", annots[1].Parsed.Def.Name.Name)
}

func TestFilterByTypeAndMessage(t *testing.T) {
	doc := `/// #invariant {:msg "solvent"} x >= 0;
/// #invariant {:msg "bounded"} x <= 100;`
	source := doc + `
contract Token {
    function inc() public {}
}`
	f := newFixture(t, source, doc, "")

	annots, _ := extract(t, f, AnnotationFilter{Message: regexp.MustCompile("solv")})
	require.Len(t, annots, 1)
	assert.Equal(t, "solvent", annots[0].Label)

	annots, _ = extract(t, f, AnnotationFilter{Type: regexp.MustCompile("^if_succeeds$")})
	assert.Empty(t, annots)
}

func TestInvariantOnFunctionRejected(t *testing.T) {
	source := `contract Token {
    /// #invariant x >= 0;
    function inc() public { x++; }
}`
	f := newFixture(t, source, "", "/// #invariant x >= 0;")

	annots, e := extract(t, f, AnnotationFilter{})
	assert.Empty(t, annots)
	require.Len(t, e.Errors(), 1)
	assert.Equal(t, "S0002", e.Errors()[0].Code)
	assert.Contains(t, e.Errors()[0].Message, "invariant")
}

func TestSyntaxErrorIsPositioned(t *testing.T) {
	doc := `/// #invariant x >= ;`
	source := doc + `
contract Token {
    function inc() public {}
}`
	f := newFixture(t, source, doc, "")

	annots, e := extract(t, f, AnnotationFilter{})
	assert.Empty(t, annots)
	require.Len(t, e.Errors(), 1)

	err := e.Errors()[0]
	assert.Equal(t, "S0001", err.Code)
	assert.Equal(t, 1, err.Position.Line)
	// The diagnostic points at the offending token, inside the comment.
	assert.Greater(t, err.Position.Offset, strings.Index(source, "#invariant"))
	assert.Contains(t, err.Annotation, "#invariant")
}

func TestBlankCommentLineEndsAnnotation(t *testing.T) {
	doc := `/**
 * #invariant x >= 0;
 *
 * prose that is not part of the annotation
 */`
	source := doc + `
contract Token {
    function inc() public {}
}`
	f := newFixture(t, source, doc, "")

	annots, e := extract(t, f, AnnotationFilter{})
	require.Empty(t, e.Errors())
	require.Len(t, annots, 1)
	assert.Equal(t, "#invariant x >= 0;", annots[0].OriginalText)
}
