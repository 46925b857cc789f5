package sast

type NodeType int

// regenerate nodetype_string.go with `go generate ./internal/sast`
//
//go:generate stringer -type=NodeType
const (
	ILLEGAL NodeType = iota

	// Literals
	NUMBER_LITERAL
	BOOL_LITERAL
	STRING_LITERAL
	HEX_LITERAL

	// Expressions
	IDENTIFIER
	INDEX_EXPR
	MEMBER_EXPR
	CALL_EXPR
	UNARY_EXPR
	BINARY_EXPR
	CONDITIONAL
	OLD_EXPR
	LET_EXPR
	QUANTIFIER
	TUPLE_EXPR
	CAST_EXPR
	RANGE_EXPR

	// Top-level annotation constructs
	ANNOTATION
	USER_FUNCTION_DEFINITION
)
