package specparse

import (
	"math/big"
	"strconv"
	"strings"

	"scribble/internal/sast"
)

var binaryPrecedence = map[TokenType]int{
	OR:            1,
	AND:           2,
	EQUAL_EQUAL:   3,
	BANG_EQUAL:    3,
	LESS:          4,
	LESS_EQUAL:    4,
	GREATER:       4,
	GREATER_EQUAL: 4,
	PLUS:          5,
	MINUS:         5,
	STAR:          6,
	SLASH:         6,
	PERCENT:       6,
	STAR_STAR:     7,
}

func (p *Parser) parseExpr() sast.Expr {
	return p.parseConditional()
}

func (p *Parser) parseConditional() sast.Expr {
	cond := p.parsePrattExpr(1)
	if !p.match(QUESTION) {
		return cond
	}
	trueExpr := p.parseConditional()
	p.consume(COLON, "expected ':' in conditional")
	falseExpr := p.parseConditional()
	return &sast.Conditional{
		Pos:       cond.NodePos(),
		EndPos:    falseExpr.NodeEndPos(),
		Condition: cond,
		True:      trueExpr,
		False:     falseExpr,
	}
}

func (p *Parser) parsePrattExpr(minPrec int) sast.Expr {
	expr := p.parsePrefixExpr()

	for {
		tok := p.peek()
		prec, ok := binaryPrecedence[tok.Type]
		if !ok || prec < minPrec {
			break
		}

		p.advance()
		right := p.parsePrattExpr(prec + 1)

		expr = &sast.BinaryExpr{
			Pos:    expr.NodePos(),
			EndPos: right.NodeEndPos(),
			Op:     tok.Lexeme,
			Left:   expr,
			Right:  right,
		}
	}

	return expr
}

func (p *Parser) parsePrefixExpr() sast.Expr {
	if p.match(MINUS, BANG) {
		op := p.previous()
		value := p.parsePrefixExpr()
		return &sast.UnaryExpr{
			Pos:    p.makePos(op),
			EndPos: value.NodeEndPos(),
			Op:     op.Lexeme,
			Sub:    value,
		}
	}

	return p.parsePostfixExpr(p.parsePrimaryExpr())
}

func (p *Parser) parsePostfixExpr(expr sast.Expr) sast.Expr {
	for {
		if p.match(DOT) {
			member := p.consume(IDENTIFIER, "expected member name after '.'")
			expr = &sast.MemberExpr{
				Pos:    expr.NodePos(),
				EndPos: p.makeEndPos(member),
				Base:   expr,
				Member: member.Lexeme,
			}
		} else if p.check(LEFT_PAREN) {
			p.advance()
			args := p.parseExprList()
			end := p.consume(RIGHT_PAREN, "expected ')' after arguments")
			expr = &sast.CallExpr{
				Pos:    expr.NodePos(),
				EndPos: p.makeEndPos(end),
				Callee: expr,
				Args:   args,
			}
		} else if p.check(LEFT_BRACKET) {
			p.advance()
			index := p.parseExpr()
			end := p.consume(RIGHT_BRACKET, "expected ']' after index")
			expr = &sast.IndexExpr{
				Pos:    expr.NodePos(),
				EndPos: p.makeEndPos(end),
				Base:   expr,
				Index:  index,
			}
		} else {
			break
		}
	}

	return expr
}

func (p *Parser) parseExprList() []sast.Expr {
	var args []sast.Expr
	if p.check(RIGHT_PAREN) {
		return args
	}
	for {
		args = append(args, p.parseExpr())
		if !p.match(COMMA) {
			break
		}
	}
	return args
}

func (p *Parser) parsePrimaryExpr() sast.Expr {
	switch {
	case p.match(NUMBER):
		return numberFromToken(p.previous(), p)

	case p.match(HEX_NUMBER):
		tok := p.previous()
		value, ok := new(big.Int).SetString(strings.TrimPrefix(tok.Lexeme, "0x"), 16)
		if !ok {
			p.errorAt(tok, "malformed hex literal")
			value = big.NewInt(0)
		}
		return &sast.HexLiteral{Pos: p.makePos(tok), EndPos: p.makeEndPos(tok), Value: value, Raw: tok.Lexeme}

	case p.match(STRING):
		tok := p.previous()
		return &sast.StringLiteral{Pos: p.makePos(tok), EndPos: p.makeEndPos(tok), Value: unquote(tok.Lexeme)}

	case p.match(TRUE, FALSE):
		tok := p.previous()
		return &sast.BoolLiteral{Pos: p.makePos(tok), EndPos: p.makeEndPos(tok), Value: tok.Type == TRUE}

	case p.match(OLD):
		tok := p.previous()
		p.consume(LEFT_PAREN, "expected '(' after 'old'")
		sub := p.parseExpr()
		end := p.consume(RIGHT_PAREN, "expected ')' after old operand")
		return &sast.OldExpr{Pos: p.makePos(tok), EndPos: p.makeEndPos(end), Sub: sub}

	case p.match(LET):
		return p.parseLet()

	case p.match(FORALL, EXISTS):
		return p.parseQuantifier()

	case p.match(IDENTIFIER):
		tok := p.previous()
		return &sast.Identifier{Pos: p.makePos(tok), EndPos: p.makeEndPos(tok), Name: tok.Lexeme}

	case p.check(LEFT_PAREN):
		return p.parseParenOrTuple()
	}

	p.errorAtCurrent("expected expression")
	tok := p.peek()
	p.advance()
	return &sast.Identifier{Pos: p.makePos(tok), EndPos: p.makePos(tok), Name: ""}
}

func (p *Parser) parseLet() sast.Expr {
	start := p.previous()
	name := p.consume(IDENTIFIER, "expected binder name after 'let'")
	p.consume(COLON_EQUAL, "expected ':=' in let binding")
	value := p.parseExpr()
	p.consume(IN, "expected 'in' after let value")
	body := p.parseExpr()
	return &sast.LetExpr{
		Pos:    p.makePos(start),
		EndPos: body.NodeEndPos(),
		Name:   sast.Identifier{Pos: p.makePos(name), EndPos: p.makeEndPos(name), Name: name.Lexeme},
		Value:  value,
		Body:   body,
	}
}

func (p *Parser) parseQuantifier() sast.Expr {
	start := p.previous()
	kind := sast.ForAll
	if start.Type == EXISTS {
		kind = sast.Exists
	}

	p.consume(LEFT_PAREN, "expected '(' after quantifier")
	binderType := p.parseType()
	binder := p.consume(IDENTIFIER, "expected binder name in quantifier")
	p.consume(IN, "expected 'in' after quantifier binder")
	rng := p.parseQuantifierRange()
	p.consume(RIGHT_PAREN, "expected ')' after quantifier range")
	body := p.parseExpr()

	return &sast.Quantifier{
		Pos:        p.makePos(start),
		EndPos:     body.NodeEndPos(),
		Kind:       kind,
		BinderType: binderType,
		Binder:     sast.Identifier{Pos: p.makePos(binder), EndPos: p.makeEndPos(binder), Name: binder.Lexeme},
		Range:      rng,
		Body:       body,
	}
}

// parseQuantifierRange accepts either an expression (an array whose
// index space is quantified) or a finite integer range "low...high".
func (p *Parser) parseQuantifierRange() sast.Expr {
	low := p.parsePrattExpr(1)
	if !p.match(ELLIPSIS) {
		return low
	}
	high := p.parsePrattExpr(1)
	return &sast.RangeExpr{
		Pos:    low.NodePos(),
		EndPos: high.NodeEndPos(),
		Low:    low,
		High:   high,
	}
}

func (p *Parser) parseParenOrTuple() sast.Expr {
	open := p.peek()
	p.advance()
	first := p.parseExpr()
	if !p.check(COMMA) {
		p.consume(RIGHT_PAREN, "expected ')' after expression")
		return first
	}
	elements := []sast.Expr{first}
	for p.match(COMMA) {
		elements = append(elements, p.parseExpr())
	}
	end := p.consume(RIGHT_PAREN, "expected ')' after tuple")
	return &sast.TupleExpr{
		Pos:      p.makePos(open),
		EndPos:   p.makeEndPos(end),
		Elements: elements,
	}
}

func numberFromToken(tok Token, p *Parser) *sast.NumberLiteral {
	raw := tok.Lexeme
	var value *big.Int
	if mantissa, exp, found := strings.Cut(raw, "e"); found {
		m, okM := new(big.Int).SetString(mantissa, 10)
		e, errE := strconv.Atoi(exp)
		if !okM || errE != nil {
			p.errorAt(tok, "malformed number literal")
			value = big.NewInt(0)
		} else {
			value = m.Mul(m, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(e)), nil))
		}
	} else {
		var ok bool
		value, ok = new(big.Int).SetString(raw, 10)
		if !ok {
			p.errorAt(tok, "malformed number literal")
			value = big.NewInt(0)
		}
	}
	return &sast.NumberLiteral{Pos: p.makePos(tok), EndPos: p.makeEndPos(tok), Value: value, Raw: raw}
}

// Elementary returns the sast type for an elementary type spelling, or
// nil when the name is not elementary.
func Elementary(name string) sast.Type {
	return elementaryType(name)
}

// elementaryType maps an elementary type spelling to its sast type, or
// nil when the name is not elementary.
func elementaryType(name string) sast.Type {
	switch name {
	case "address":
		return &sast.AddressType{}
	case "bool":
		return &sast.BoolType{}
	case "string":
		return &sast.StringType{}
	case "bytes":
		return &sast.BytesType{}
	case "uint":
		return &sast.IntType{Bits: 256}
	case "int":
		return &sast.IntType{Signed: true, Bits: 256}
	}
	if rest, ok := strings.CutPrefix(name, "bytes"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 32 {
			return &sast.FixedBytesType{Size: n}
		}
		return nil
	}
	signed := false
	numPart := name
	if rest, ok := strings.CutPrefix(name, "uint"); ok {
		numPart = rest
	} else if rest, ok := strings.CutPrefix(name, "int"); ok {
		signed = true
		numPart = rest
	} else {
		return nil
	}
	if n, err := strconv.Atoi(numPart); err == nil && n >= 8 && n <= 256 && n%8 == 0 {
		return &sast.IntType{Signed: signed, Bits: n}
	}
	return nil
}
