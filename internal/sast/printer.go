package sast

import (
	"fmt"
	"strings"
)

// Canonical printing is used for diagnostics only; it never has to
// round-trip through the parser.

func (n *NumberLiteral) String() string {
	if n.Raw != "" {
		return n.Raw
	}
	return n.Value.String()
}

func (b *BoolLiteral) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

func (s *StringLiteral) String() string {
	return fmt.Sprintf("%q", s.Value)
}

func (h *HexLiteral) String() string {
	if h.Raw != "" {
		return h.Raw
	}
	return "0x" + h.Value.Text(16)
}

func (i *Identifier) String() string {
	return i.Name
}

func (i *IndexExpr) String() string {
	return fmt.Sprintf("%s[%s]", i.Base.String(), i.Index.String())
}

func (m *MemberExpr) String() string {
	return fmt.Sprintf("%s.%s", m.Base.String(), m.Member)
}

func (c *CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee.String(), strings.Join(args, ", "))
}

func (u *UnaryExpr) String() string {
	return u.Op + u.Sub.String()
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op, b.Right.String())
}

func (c *Conditional) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", c.Condition.String(), c.True.String(), c.False.String())
}

func (o *OldExpr) String() string {
	return fmt.Sprintf("old(%s)", o.Sub.String())
}

func (l *LetExpr) String() string {
	return fmt.Sprintf("let %s := %s in %s", l.Name.Name, l.Value.String(), l.Body.String())
}

func (q *Quantifier) String() string {
	return fmt.Sprintf("%s (%s %s in %s) %s",
		q.Kind, q.BinderType.String(), q.Binder.Name, q.Range.String(), q.Body.String())
}

func (t *TupleExpr) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (c *CastExpr) String() string {
	return fmt.Sprintf("%s(%s)", c.Target.String(), c.Sub.String())
}

func (r *RangeExpr) String() string {
	return fmt.Sprintf("%s...%s", r.Low.String(), r.High.String())
}

func (a *Annotation) String() string {
	var b strings.Builder
	b.WriteString("#")
	b.WriteString(string(a.Kind))
	if a.Label != "" {
		b.WriteString(fmt.Sprintf(" {:msg %q}", a.Label))
	}
	b.WriteString(" ")
	if a.Def != nil {
		b.WriteString(a.Def.String())
	} else if a.Expr != nil {
		b.WriteString(a.Expr.String())
	}
	b.WriteString(";")
	return b.String()
}

func (d *UserFunctionDefinition) String() string {
	params := make([]string, len(d.Parameters))
	for i, p := range d.Parameters {
		params[i] = p.Type.String() + " " + p.Name.Name
	}
	return fmt.Sprintf("%s(%s) %s = %s",
		d.Name.Name, strings.Join(params, ", "), d.ReturnType.String(), d.Body.String())
}
