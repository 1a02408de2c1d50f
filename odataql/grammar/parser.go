package grammar

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/odata-query-go/odataql/ast"
)

// Parse tokenizes and parses a filter expression into an AST.
func Parse(input string) (ast.Node, error) {
	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		return nil, errors.Wrap(err, "tokenize filter")
	}
	if len(tokens) == 0 {
		return nil, errors.New("empty filter expression")
	}

	p := &Parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenEOF {
		return nil, errors.Errorf("unexpected token after expression: %s at position %d",
			p.current(), p.current().Position)
	}
	return node, nil
}

var comparisonKeywords = map[string]ast.ComparisonOp{
	"eq": ast.OpEq,
	"ne": ast.OpNe,
	"gt": ast.OpGt,
	"ge": ast.OpGe,
	"lt": ast.OpLt,
	"le": ast.OpLe,
}

var arithmeticKeywords = map[string]ast.ArithmeticOp{
	"add": ast.OpAdd,
	"sub": ast.OpSub,
	"mul": ast.OpMul,
	"div": ast.OpDiv,
}

// Parser parses a token stream into an AST. Precedence, loosest first:
// or, and, not, comparison, add/sub, mul/div, primary.
type Parser struct {
	tokens []Token
	pos    int
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Position: p.lastPosition()}
	}
	return p.tokens[p.pos]
}

func (p *Parser) lastPosition() int {
	if len(p.tokens) == 0 {
		return 0
	}
	last := p.tokens[len(p.tokens)-1]
	return last.Position + len(last.Value)
}

func (p *Parser) advance() Token {
	token := p.current()
	p.pos++
	return token
}

func (p *Parser) expect(tokenType TokenType) (Token, error) {
	token := p.current()
	if token.Type != tokenType {
		return token, errors.Errorf("expected %s, got %s at position %d", tokenType, token, token.Position)
	}
	return p.advance(), nil
}

// atKeyword reports whether the current token is the given bare identifier.
func (p *Parser) atKeyword(kw string) bool {
	t := p.current()
	return t.Type == TokenIdentifier && t.Value == kw
}

func (p *Parser) parseOr() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("or") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.Or(left, right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("and") {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = ast.And(left, right)
	}
	return left, nil
}

func (p *Parser) parseNot() (ast.Node, error) {
	if p.atKeyword("not") {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.Not(operand), nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (ast.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	t := p.current()
	if t.Type != TokenIdentifier {
		return left, nil
	}

	if op, ok := comparisonKeywords[t.Value]; ok {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return ast.Comparison(left, op, right), nil
	}

	if t.Value == "in" {
		p.advance()
		values, err := p.parseLiteralList()
		if err != nil {
			return nil, err
		}
		return ast.In(left, values...), nil
	}

	return left, nil
}

// parseLiteralList parses the parenthesized literal list of an in-expression.
func (p *Parser) parseLiteralList() ([]ast.LiteralNode, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	var values []ast.LiteralNode
	for {
		node, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		lit, ok := node.(ast.LiteralNode)
		if !ok {
			return nil, errors.Errorf("in-expression values must be literals, got %s", node.Kind())
		}
		values = append(values, lit)
		if p.current().Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return values, nil
}

func (p *Parser) parseAdditive() (ast.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		t := p.current()
		if t.Type != TokenIdentifier {
			return left, nil
		}
		op, ok := arithmeticKeywords[t.Value]
		if !ok || (op != ast.OpAdd && op != ast.OpSub) {
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.Arithmetic(left, op, right)
	}
}

func (p *Parser) parseMultiplicative() (ast.Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.current()
		if t.Type != TokenIdentifier {
			return left, nil
		}
		op, ok := arithmeticKeywords[t.Value]
		if !ok || (op != ast.OpMul && op != ast.OpDiv) {
			return left, nil
		}
		p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = ast.Arithmetic(left, op, right)
	}
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	t := p.current()

	switch t.Type {
	case TokenLParen:
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return ast.Paren(expr), nil

	case TokenString:
		p.advance()
		return ast.Literal(ast.LiteralString, unquote(t.Value)), nil

	case TokenNumber:
		p.advance()
		return ast.Literal(ast.LiteralNumber, t.Value), nil

	case TokenDateTime:
		p.advance()
		return ast.Literal(ast.LiteralDateTime, t.Value), nil

	case TokenGUID:
		p.advance()
		return ast.Literal(ast.LiteralGUID, t.Value), nil

	case TokenIdentifier:
		switch t.Value {
		case "true", "false":
			p.advance()
			return ast.Literal(ast.LiteralBoolean, t.Value), nil
		case "null":
			p.advance()
			return ast.Literal(ast.LiteralNull, t.Value), nil
		}
		p.advance()
		if p.current().Type == TokenLParen {
			return p.parseCall(t.Value)
		}
		return ast.Ident(t.Value), nil

	default:
		return nil, errors.Errorf("unexpected token %s at position %d", t, t.Position)
	}
}

// parseCall parses the argument list of a method call whose name was
// already consumed.
func (p *Parser) parseCall(function string) (ast.Node, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	var args []ast.Node
	if p.current().Type != TokenRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.current().Type == TokenComma {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return ast.Call(function, args...), nil
}

// unquote strips surrounding single quotes and unescapes doubled quotes.
func unquote(s string) string {
	s = s[1 : len(s)-1]
	return strings.ReplaceAll(s, "''", "'")
}
