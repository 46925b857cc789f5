package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"scribble/internal/sast"
)

func TestErrorReporter(t *testing.T) {
	source := `contract Test {
    /// #if_succeeds old(x) + 1 == y;
    function inc() public { x++; }
}`

	reporter := NewErrorReporter("Test.sol", source)

	err := UnknownName("y", sast.Position{Filename: "Test.sol", Line: 2, Column: 34}, []string{"x"})
	formatted := reporter.FormatError(err)

	// Should contain error level and code
	assert.Contains(t, formatted, "error["+ErrorUnknownName+"]")
	assert.Contains(t, formatted, "unknown identifier")
	assert.Contains(t, formatted, "'y'")

	// Should contain location
	assert.Contains(t, formatted, "Test.sol:2:34")

	// Should contain suggestions
	assert.Contains(t, formatted, "did you mean")
	assert.Contains(t, formatted, "'x'")
}

func TestOneLineForm(t *testing.T) {
	err := ForbiddenOld("invariant", sast.Position{Filename: "A.sol", Line: 3, Column: 17})
	err.Annotation = "#invariant old(x) == x;"

	line := err.OneLine()
	assert.Contains(t, line, "A.sol:3:17 semantic:")
	assert.Contains(t, line, "#invariant old(x) == x;")
}

func TestKindMapping(t *testing.T) {
	assert.Equal(t, KindSyntax, KindOf(ErrorSpecSyntax))
	assert.Equal(t, KindTargetMismatch, KindOf(ErrorFreeFunctionAnnotation))
	assert.Equal(t, KindType, KindOf(ErrorArityMismatch))
	assert.Equal(t, KindSemantic, KindOf(ErrorInfiniteQuantifier))
	assert.Equal(t, KindMerge, KindOf(ErrorMergeSanity))
	assert.Equal(t, KindAmbiguousVersion, KindOf(ErrorAmbiguousVersion))
	assert.Equal(t, KindInternal, KindOf("bogus"))
}

func TestPositionAt(t *testing.T) {
	reporter := NewErrorReporter("f.sol", "ab\ncd\nef")

	pos := reporter.PositionAt(0)
	assert.Equal(t, 1, pos.Line)
	assert.Equal(t, 1, pos.Column)

	pos = reporter.PositionAt(4)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 2, pos.Column)

	pos = reporter.PositionAt(6)
	assert.Equal(t, 3, pos.Line)
	assert.Equal(t, 1, pos.Column)
}
