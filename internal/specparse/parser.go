package specparse

import (
	"strings"

	"scribble/internal/sast"
)

// Parser consumes the token stream of one annotation body or
// expression. Positions on the produced SAST are relative to the
// parser input; the extractor lifts them to file coordinates.
type Parser struct {
	tokens  []Token
	current int
	errors  []ParseError
}

// ParseAnnotation parses a full annotation: "#kind {:msg \"...\"}? body ;".
// The leading '#' is optional so callers may pass the body with or
// without the introducer character.
func ParseAnnotation(source string) (*sast.Annotation, []ParseError) {
	p, scanErrors := newParser(source)
	if len(scanErrors) > 0 {
		return nil, scanErrors
	}
	annot := p.parseAnnotation()
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return annot, nil
}

// ParseExpression parses a bare specification expression.
func ParseExpression(source string) (sast.Expr, []ParseError) {
	p, scanErrors := newParser(source)
	if len(scanErrors) > 0 {
		return nil, scanErrors
	}
	expr := p.parseExpr()
	if !p.isAtEnd() {
		p.errorAtCurrent("unexpected trailing input")
	}
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return expr, nil
}

func newParser(source string) (*Parser, []ParseError) {
	tokens, errors := NewScanner(source).ScanTokens()
	return &Parser{tokens: tokens}, errors
}

func (p *Parser) parseAnnotation() *sast.Annotation {
	start := p.peek()
	p.match(POUND)

	var kind sast.AnnotationKind
	switch {
	case p.match(IF_SUCCEEDS):
		kind = sast.IfSucceeds
	case p.match(INVARIANT):
		kind = sast.Invariant
	case p.match(DEFINE):
		kind = sast.Define
	default:
		p.errorAtCurrent("expected 'if_succeeds', 'invariant' or 'define'")
		return nil
	}

	label := p.parseLabel()

	annot := &sast.Annotation{
		Pos:   p.makePos(start),
		Kind:  kind,
		Label: label,
	}

	if kind == sast.Define {
		annot.Def = p.parseDefinition()
	} else {
		annot.Expr = p.parseExpr()
	}

	end := p.consume(SEMICOLON, "expected ';' after annotation body")
	annot.EndPos = p.makeEndPos(end)
	if !p.isAtEnd() {
		p.errorAtCurrent("unexpected input after annotation")
	}
	return annot
}

// parseLabel parses the optional "{:msg \"text\"}" label.
func (p *Parser) parseLabel() string {
	if !p.check(LEFT_BRACE) {
		return ""
	}
	p.advance()
	p.consume(COLON, "expected ':' after '{' in label")
	name := p.consume(IDENTIFIER, "expected 'msg' in label")
	if name.Lexeme != "msg" {
		p.errorAt(name, "only 'msg' labels are supported")
	}
	text := p.consume(STRING, "expected string literal in label")
	p.consume(RIGHT_BRACE, "expected '}' after label")
	return unquote(text.Lexeme)
}

// parseDefinition parses "name(params) type = expr".
func (p *Parser) parseDefinition() *sast.UserFunctionDefinition {
	name := p.consume(IDENTIFIER, "expected user function name")
	def := &sast.UserFunctionDefinition{
		Pos:  p.makePos(name),
		Name: sast.Identifier{Pos: p.makePos(name), EndPos: p.makeEndPos(name), Name: name.Lexeme},
	}

	p.consume(LEFT_PAREN, "expected '(' after user function name")
	if !p.check(RIGHT_PAREN) {
		for {
			ptype := p.parseType()
			pname := p.consume(IDENTIFIER, "expected parameter name")
			def.Parameters = append(def.Parameters, sast.Parameter{
				Name: sast.Identifier{Pos: p.makePos(pname), EndPos: p.makeEndPos(pname), Name: pname.Lexeme},
				Type: ptype,
			})
			if !p.match(COMMA) {
				break
			}
		}
	}
	p.consume(RIGHT_PAREN, "expected ')' after parameters")

	def.ReturnType = p.parseType()
	p.consume(EQUAL, "expected '=' before user function body")
	def.Body = p.parseExpr()
	if def.Body != nil {
		def.EndPos = def.Body.NodeEndPos()
	}
	return def
}

// parseType parses the specification surface of host types:
// elementary names, user identifiers, mapping(K => V) and array
// suffixes.
func (p *Parser) parseType() sast.Type {
	if p.match(MAPPING) {
		p.consume(LEFT_PAREN, "expected '(' after 'mapping'")
		key := p.parseType()
		p.consume(FAT_ARROW, "expected '=>' in mapping type")
		value := p.parseType()
		p.consume(RIGHT_PAREN, "expected ')' after mapping type")
		return p.parseTypeSuffix(&sast.MappingType{Key: key, Value: value})
	}

	tok := p.consume(IDENTIFIER, "expected type name")
	base := elementaryType(tok.Lexeme)
	if base == nil {
		// Contract, struct and enum names resolve during checking.
		base = &sast.UserDefinedType{Name: tok.Lexeme, Decl: -1}
	}
	return p.parseTypeSuffix(base)
}

func (p *Parser) parseTypeSuffix(base sast.Type) sast.Type {
	for p.check(LEFT_BRACKET) {
		p.advance()
		var size *sast.NumberLiteral
		if p.check(NUMBER) {
			tok := p.advance()
			size = numberFromToken(tok, p)
		}
		p.consume(RIGHT_BRACKET, "expected ']' in array type")
		arr := &sast.ArrayType{Elem: base}
		if size != nil {
			arr.Size = size.Value
		}
		base = arr
	}
	return base
}

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(tt TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tt
}

func (p *Parser) match(types ...TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(tt TokenType, message string) Token {
	if p.check(tt) {
		return p.advance()
	}
	p.errorAtCurrent(message)
	illegal := Token{Type: ILLEGAL, Position: p.peek().Position}
	p.advance()
	return illegal
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == EOF
}

func (p *Parser) errorAtCurrent(message string) {
	p.errorAt(p.peek(), message)
}

func (p *Parser) errorAt(tok Token, message string) {
	length := len(tok.Lexeme)
	if length == 0 {
		length = 1
	}
	p.errors = append(p.errors, ParseError{
		Message:  message,
		Position: tok.Position,
		Length:   length,
	})
}

func (p *Parser) makePos(tok Token) sast.Position {
	return sast.Position{
		Offset: tok.Position.Offset,
		Line:   tok.Position.Line,
		Column: tok.Position.Column,
	}
}

func (p *Parser) makeEndPos(tok Token) sast.Position {
	return sast.Position{
		Offset: tok.Position.Offset + len(tok.Lexeme),
		Line:   tok.Position.Line,
		Column: tok.Position.Column + len(tok.Lexeme),
	}
}

func unquote(lexeme string) string {
	s := strings.TrimPrefix(lexeme, `"`)
	s = strings.TrimSuffix(s, `"`)
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}
