package sast

// Position tracks location information for error reporting and tooling.
// Offsets are byte offsets; the extractor lifts parser-relative positions
// to file positions before annotations leave the front-end.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

type Node interface {
	NodePos() Position
	NodeEndPos() Position
	NodeType() NodeType
	String() string
}

func (n *NumberLiteral) NodePos() Position    { return n.Pos }
func (n *NumberLiteral) NodeEndPos() Position { return n.EndPos }
func (*NumberLiteral) NodeType() NodeType     { return NUMBER_LITERAL }

func (b *BoolLiteral) NodePos() Position    { return b.Pos }
func (b *BoolLiteral) NodeEndPos() Position { return b.EndPos }
func (*BoolLiteral) NodeType() NodeType     { return BOOL_LITERAL }

func (s *StringLiteral) NodePos() Position    { return s.Pos }
func (s *StringLiteral) NodeEndPos() Position { return s.EndPos }
func (*StringLiteral) NodeType() NodeType     { return STRING_LITERAL }

func (h *HexLiteral) NodePos() Position    { return h.Pos }
func (h *HexLiteral) NodeEndPos() Position { return h.EndPos }
func (*HexLiteral) NodeType() NodeType     { return HEX_LITERAL }

func (i *Identifier) NodePos() Position    { return i.Pos }
func (i *Identifier) NodeEndPos() Position { return i.EndPos }
func (*Identifier) NodeType() NodeType     { return IDENTIFIER }

func (i *IndexExpr) NodePos() Position    { return i.Pos }
func (i *IndexExpr) NodeEndPos() Position { return i.EndPos }
func (*IndexExpr) NodeType() NodeType     { return INDEX_EXPR }

func (m *MemberExpr) NodePos() Position    { return m.Pos }
func (m *MemberExpr) NodeEndPos() Position { return m.EndPos }
func (*MemberExpr) NodeType() NodeType     { return MEMBER_EXPR }

func (c *CallExpr) NodePos() Position    { return c.Pos }
func (c *CallExpr) NodeEndPos() Position { return c.EndPos }
func (*CallExpr) NodeType() NodeType     { return CALL_EXPR }

func (u *UnaryExpr) NodePos() Position    { return u.Pos }
func (u *UnaryExpr) NodeEndPos() Position { return u.EndPos }
func (*UnaryExpr) NodeType() NodeType     { return UNARY_EXPR }

func (b *BinaryExpr) NodePos() Position    { return b.Pos }
func (b *BinaryExpr) NodeEndPos() Position { return b.EndPos }
func (*BinaryExpr) NodeType() NodeType     { return BINARY_EXPR }

func (c *Conditional) NodePos() Position    { return c.Pos }
func (c *Conditional) NodeEndPos() Position { return c.EndPos }
func (*Conditional) NodeType() NodeType     { return CONDITIONAL }

func (o *OldExpr) NodePos() Position    { return o.Pos }
func (o *OldExpr) NodeEndPos() Position { return o.EndPos }
func (*OldExpr) NodeType() NodeType     { return OLD_EXPR }

func (l *LetExpr) NodePos() Position    { return l.Pos }
func (l *LetExpr) NodeEndPos() Position { return l.EndPos }
func (*LetExpr) NodeType() NodeType     { return LET_EXPR }

func (q *Quantifier) NodePos() Position    { return q.Pos }
func (q *Quantifier) NodeEndPos() Position { return q.EndPos }
func (*Quantifier) NodeType() NodeType     { return QUANTIFIER }

func (t *TupleExpr) NodePos() Position    { return t.Pos }
func (t *TupleExpr) NodeEndPos() Position { return t.EndPos }
func (*TupleExpr) NodeType() NodeType     { return TUPLE_EXPR }

func (c *CastExpr) NodePos() Position    { return c.Pos }
func (c *CastExpr) NodeEndPos() Position { return c.EndPos }
func (*CastExpr) NodeType() NodeType     { return CAST_EXPR }

func (r *RangeExpr) NodePos() Position    { return r.Pos }
func (r *RangeExpr) NodeEndPos() Position { return r.EndPos }
func (*RangeExpr) NodeType() NodeType     { return RANGE_EXPR }

func (a *Annotation) NodePos() Position    { return a.Pos }
func (a *Annotation) NodeEndPos() Position { return a.EndPos }
func (*Annotation) NodeType() NodeType     { return ANNOTATION }

func (d *UserFunctionDefinition) NodePos() Position    { return d.Pos }
func (d *UserFunctionDefinition) NodeEndPos() Position { return d.EndPos }
func (*UserFunctionDefinition) NodeType() NodeType     { return USER_FUNCTION_DEFINITION }
