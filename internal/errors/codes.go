package errors

// Error codes for the scribble annotation compiler.
// These codes are used in error messages and documentation
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// S0001-S0099: Annotation extraction errors
// S0100-S0199: Specification parser errors
// S0200-S0299: Type checking errors
// S0300-S0399: Semantic restriction errors
// S0400-S0499: Merge errors
// S0500-S0599: Compiler-version and host-compile errors
// S0900-S0999: Internal errors

const (
	// S0001: Malformed annotation body
	ErrorAnnotationSyntax = "S0001"

	// S0002: Annotation kind placed on an incompatible target
	ErrorTargetMismatch = "S0002"

	// S0003: Annotation on a free-standing function
	ErrorFreeFunctionAnnotation = "S0003"

	// S0100: Specification expression syntax errors
	ErrorSpecSyntax = "S0100"

	// S0101: Host type-string syntax errors
	ErrorTypeStringSyntax = "S0101"

	// S0200: Name resolution errors
	ErrorUnknownName = "S0200"

	// S0201: Call arity errors
	ErrorArityMismatch = "S0201"

	// S0202: Operand compatibility errors
	ErrorIncompatibleTypes = "S0202"

	// S0203: Recursive user-function definitions
	ErrorRecursiveDefine = "S0203"

	// S0300: old() outside a post-state position
	ErrorForbiddenOld = "S0300"

	// S0301: State-mutating call inside a pure context
	ErrorNonPureCall = "S0301"

	// S0302: Quantifier over an unbounded range
	ErrorInfiniteQuantifier = "S0302"

	// S0400: Post-merge sanity check failures
	ErrorMergeSanity = "S0400"

	// S0401: Conflicting units for one absolute path
	ErrorConflictingUnits = "S0401"

	// S0500: Multiple detected compiler versions, none selected
	ErrorAmbiguousVersion = "S0500"

	// S0501: The host compiler rejected its input
	ErrorHostCompile = "S0501"

	// S0900: Internal invariant violations; always a scribble bug
	ErrorInternal = "S0900"
)

// Kind is the user-facing error taxonomy. Every code above maps to
// exactly one kind; the reporter prints the kind in the one-line form.
type Kind string

const (
	KindSyntax           Kind = "syntax"
	KindTargetMismatch   Kind = "target-mismatch"
	KindType             Kind = "type"
	KindSemantic         Kind = "semantic"
	KindMerge            Kind = "merge"
	KindAmbiguousVersion Kind = "ambiguous-version"
	KindHostCompile      Kind = "host-compile"
	KindInternal         Kind = "internal"
)

var codeKinds = map[string]Kind{
	ErrorAnnotationSyntax:       KindSyntax,
	ErrorTargetMismatch:         KindTargetMismatch,
	ErrorFreeFunctionAnnotation: KindTargetMismatch,
	ErrorSpecSyntax:             KindSyntax,
	ErrorTypeStringSyntax:       KindSyntax,
	ErrorUnknownName:            KindType,
	ErrorArityMismatch:          KindType,
	ErrorIncompatibleTypes:      KindType,
	ErrorRecursiveDefine:        KindType,
	ErrorForbiddenOld:           KindSemantic,
	ErrorNonPureCall:            KindSemantic,
	ErrorInfiniteQuantifier:     KindSemantic,
	ErrorMergeSanity:            KindMerge,
	ErrorConflictingUnits:       KindMerge,
	ErrorAmbiguousVersion:       KindAmbiguousVersion,
	ErrorHostCompile:            KindHostCompile,
	ErrorInternal:               KindInternal,
}

// KindOf returns the taxonomy kind of an error code.
func KindOf(code string) Kind {
	if k, ok := codeKinds[code]; ok {
		return k
	}
	return KindInternal
}
