package errors

import (
	"fmt"
	"strings"

	"scribble/internal/sast"
)

// SpecErrorBuilder provides a fluent interface for creating
// specification errors with suggestions.
type SpecErrorBuilder struct {
	err CompilerError
}

// NewSpecError creates a new specification error builder
func NewSpecError(code, message string, pos sast.Position) *SpecErrorBuilder {
	return &SpecErrorBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// WithLength sets the length of the error span
func (b *SpecErrorBuilder) WithLength(length int) *SpecErrorBuilder {
	b.err.Length = length
	return b
}

// WithAnnotation attaches the raw annotation text echoed after the
// one-line form.
func (b *SpecErrorBuilder) WithAnnotation(text string) *SpecErrorBuilder {
	b.err.Annotation = text
	return b
}

// WithSuggestion adds a suggestion to the error
func (b *SpecErrorBuilder) WithSuggestion(message string) *SpecErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithNote adds a note to the error
func (b *SpecErrorBuilder) WithNote(note string) *SpecErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error
func (b *SpecErrorBuilder) WithHelp(help string) *SpecErrorBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed compiler error
func (b *SpecErrorBuilder) Build() CompilerError {
	return b.err
}

// Common error constructors

// UnknownName creates an error for unresolved identifiers with suggestions
func UnknownName(name string, pos sast.Position, similarNames []string) CompilerError {
	builder := NewSpecError(ErrorUnknownName, fmt.Sprintf("unknown identifier '%s'", name), pos).
		WithLength(len(name))

	if len(similarNames) > 0 {
		if len(similarNames) == 1 {
			builder = builder.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similarNames[0]))
		} else {
			suggestions := strings.Join(similarNames, "', '")
			builder = builder.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", suggestions))
		}
	} else {
		builder = builder.WithNote("names resolve against binders, parameters, state variables, inherited state and built-ins")
	}

	return builder.Build()
}

// IncompatibleTypes creates an error for operand type mismatches
func IncompatibleTypes(op, left, right string, pos sast.Position) CompilerError {
	return NewSpecError(ErrorIncompatibleTypes,
		fmt.Sprintf("operator '%s' cannot combine %s and %s", op, left, right), pos).
		WithNote("mixed-sign arithmetic requires an explicit cast").
		Build()
}

// ArityMismatch creates an error for calls with the wrong argument count
func ArityMismatch(name string, want, got int, pos sast.Position) CompilerError {
	return NewSpecError(ErrorArityMismatch,
		fmt.Sprintf("'%s' expects %d argument(s), got %d", name, want, got), pos).
		WithLength(len(name)).
		Build()
}

// ForbiddenOld creates an error for old() in a non-post-state position
func ForbiddenOld(where string, pos sast.Position) CompilerError {
	return NewSpecError(ErrorForbiddenOld,
		fmt.Sprintf("old() is not allowed inside %s", where), pos).
		WithLength(len("old")).
		WithHelp("old() compares pre-state to post-state and is only meaningful under if_succeeds").
		Build()
}

// NonPureCall creates an error for state-mutating calls in pure contexts
func NonPureCall(name, where string, pos sast.Position) CompilerError {
	return NewSpecError(ErrorNonPureCall,
		fmt.Sprintf("call to state-mutating function '%s' inside %s", name, where), pos).
		WithLength(len(name)).
		Build()
}

// InfiniteQuantifier creates an error for quantifiers over unbounded ranges
func InfiniteQuantifier(pos sast.Position) CompilerError {
	return NewSpecError(ErrorInfiniteQuantifier,
		"quantifier range is not finite", pos).
		WithSuggestion("quantify over an integer range low...high or an array's index space").
		Build()
}

// TargetMismatch creates an error for annotation kinds on the wrong target
func TargetMismatch(kind, target string, pos sast.Position) CompilerError {
	return NewSpecError(ErrorTargetMismatch,
		fmt.Sprintf("'%s' annotations cannot target a %s", kind, target), pos).
		Build()
}

// Internal wraps a violated invariant; seeing one of these is a bug.
func Internal(message string, pos sast.Position) CompilerError {
	return NewSpecError(ErrorInternal, message, pos).
		WithNote("this is a scribble bug; please report it").
		Build()
}
