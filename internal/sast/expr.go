package sast

import "math/big"

type Expr interface {
	Node
	isExpr()
}

// NumberLiteral is an integer literal, decimal or scientific.
// Example: "42", "1e18"
type NumberLiteral struct {
	Pos    Position
	EndPos Position
	Value  *big.Int
	Raw    string
}

type BoolLiteral struct {
	Pos    Position
	EndPos Position
	Value  bool
}

type StringLiteral struct {
	Pos    Position
	EndPos Position
	Value  string
}

// HexLiteral covers hex numbers and address-sized constants.
// Example: "0xdeadbeef"
type HexLiteral struct {
	Pos    Position
	EndPos Position
	Value  *big.Int
	Raw    string
}

// Identifier names a binder, parameter, state variable, user function or built-in.
// Resolution happens in the type checker; the node records only the name.
type Identifier struct {
	Pos    Position
	EndPos Position
	Name   string
}

// IndexExpr is array/mapping indexing: "balances[addr]"
type IndexExpr struct {
	Pos    Position
	EndPos Position
	Base   Expr
	Index  Expr
}

// MemberExpr is member access: "msg.sender", "s.balance"
type MemberExpr struct {
	Pos    Position
	EndPos Position
	Base   Expr
	Member string
}

type CallExpr struct {
	Pos    Position
	EndPos Position
	Callee Expr
	Args   []Expr
}

type UnaryExpr struct {
	Pos    Position
	EndPos Position
	Op     string
	Sub    Expr
}

type BinaryExpr struct {
	Pos    Position
	EndPos Position
	Op     string
	Left   Expr
	Right  Expr
}

// Conditional is "cond ? a : b"
type Conditional struct {
	Pos       Position
	EndPos    Position
	Condition Expr
	True      Expr
	False     Expr
}

// OldExpr captures the pre-state value of its operand: "old(x)".
// Valid only under if_succeeds; the checker enforces placement.
type OldExpr struct {
	Pos    Position
	EndPos Position
	Sub    Expr
}

// LetExpr binds a name for the scope of Body: "let x := e in body"
type LetExpr struct {
	Pos    Position
	EndPos Position
	Name   Identifier
	Value  Expr
	Body   Expr
}

type QuantifierKind string

const (
	ForAll QuantifierKind = "forall"
	Exists QuantifierKind = "exists"
)

// Quantifier is "forall (T x in R) e" or "exists (T x in R) e".
// Range must be finite; the checker rejects unbounded binders.
type Quantifier struct {
	Pos        Position
	EndPos     Position
	Kind       QuantifierKind
	BinderType Type
	Binder     Identifier
	Range      Expr
	Body       Expr
}

type TupleExpr struct {
	Pos      Position
	EndPos   Position
	Elements []Expr
}

// CastExpr is a type conversion: "uint256(x)". The parser produces a
// CallExpr for this form and the checker keeps it as a call, typing the
// type-named callee as TypeOfType; no pass builds a CastExpr, though the
// checker and lowering accept one.
type CastExpr struct {
	Pos    Position
	EndPos Position
	Target Type
	Sub    Expr
}

// RangeExpr is the finite integer range form "low...high" accepted as a
// quantifier range.
type RangeExpr struct {
	Pos    Position
	EndPos Position
	Low    Expr
	High   Expr
}

func (*NumberLiteral) isExpr() {}

func (*BoolLiteral) isExpr() {}

func (*StringLiteral) isExpr() {}

func (*HexLiteral) isExpr() {}

func (*Identifier) isExpr() {}

func (*IndexExpr) isExpr() {}

func (*MemberExpr) isExpr() {}

func (*CallExpr) isExpr() {}

func (*UnaryExpr) isExpr() {}

func (*BinaryExpr) isExpr() {}

func (*Conditional) isExpr() {}

func (*OldExpr) isExpr() {}

func (*LetExpr) isExpr() {}

func (*Quantifier) isExpr() {}

func (*TupleExpr) isExpr() {}

func (*CastExpr) isExpr() {}

func (*RangeExpr) isExpr() {}
