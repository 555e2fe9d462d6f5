package parser

import (
	"errors"
	"fmt"

	"github.com/titivuk/apl/ast"
	"github.com/titivuk/apl/lexer"
	"github.com/titivuk/apl/token"
)

// ErrSyntax is matched by every syntax error the parser returns.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports a lookahead token that the current rule did not expect.
type SyntaxError struct {
	Expected token.TokenType
	Got      token.Token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: expecting %s and found %s '%s'", e.Expected, e.Got.Type, e.Got.Literal)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Parser is a recursive descent parser with a single token of lookahead.
// Every grammar rule has its own method; the first error aborts the parse.
type Parser struct {
	src token.Source

	currToken token.Token
	primed    bool
}

func New(src token.Source) *Parser {
	return &Parser{src: src}
}

// ParseString parses one line of source text as a program.
func ParseString(input string) (*ast.Program, error) {
	return New(lexer.New(input)).Parse()
}

// Parse reads a whole program and requires the input to end right after it.
//
//	program := instruction*
func (p *Parser) Parse() (*ast.Program, error) {
	if err := p.prime(); err != nil {
		return nil, err
	}

	program, err := p.parseProgram()
	if err != nil {
		return nil, err
	}

	if !p.currTokenIs(token.EOF) {
		return nil, p.unexpected(token.EOF)
	}

	return program, nil
}

// ParseExpression reads a single expression, optionally followed by ';'.
// It is meant for evaluating bare expressions outside of a program.
func (p *Parser) ParseExpression() (ast.Expression, error) {
	if err := p.prime(); err != nil {
		return nil, err
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.currTokenIs(token.SEMICOLON) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
	}

	if !p.currTokenIs(token.EOF) {
		return nil, p.unexpected(token.EOF)
	}

	return expr, nil
}

func (p *Parser) prime() error {
	if p.primed {
		return nil
	}

	p.primed = true
	return p.nextToken()
}

func (p *Parser) nextToken() error {
	tok, err := p.src.NextToken()
	if err != nil {
		return err
	}

	p.currToken = tok
	return nil
}

func (p *Parser) currTokenIs(t token.TokenType) bool {
	return p.currToken.Type == t
}

// consume checks the type of the current token and only if it matches advances to the next one
func (p *Parser) consume(t token.TokenType) (token.Token, error) {
	tok := p.currToken
	if tok.Type != t {
		return tok, p.unexpected(t)
	}

	return tok, p.nextToken()
}

func (p *Parser) unexpected(expected token.TokenType) error {
	return &SyntaxError{Expected: expected, Got: p.currToken}
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	program := &ast.Program{Instructions: []*ast.Assignation{}}

	// parse until we reach the end
	for !p.currTokenIs(token.EOF) {
		ins, err := p.parseInstruction()
		if err != nil {
			return nil, err
		}

		program.Instructions = append(program.Instructions, ins)
	}

	return program, nil
}

// instruction := assignment ';'
func (p *Parser) parseInstruction() (*ast.Assignation, error) {
	ins, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(token.SEMICOLON); err != nil {
		return nil, err
	}

	return ins, nil
}

// assignment := left_operand '=' expression
func (p *Parser) parseAssignment() (*ast.Assignation, error) {
	target, err := p.parseLeftOperand()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(token.ASSIGN); err != nil {
		return nil, err
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ast.Assignation{Target: target, Value: value}, nil
}

// left_operand := 'var' IDENTIFIER | IDENTIFIER
func (p *Parser) parseLeftOperand() (ast.Target, error) {
	if p.currTokenIs(token.VAR) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}

		name, err := p.consume(token.IDENT)
		if err != nil {
			return nil, err
		}

		return &ast.VarInit{Token: name, Name: name.Literal}, nil
	}

	name, err := p.consume(token.IDENT)
	if err != nil {
		return nil, err
	}

	return &ast.Var{Token: name, Name: name.Literal}, nil
}

// expression := term (('+'|'-') term)*
func (p *Parser) parseExpression() (ast.Expression, error) {
	node, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.currTokenIs(token.PLUS) || p.currTokenIs(token.MINUS) {
		operator := p.currToken
		if err := p.nextToken(); err != nil {
			return nil, err
		}

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		// left-associative: the tree built so far becomes the left operand
		node = &ast.BinaryOperator{Operator: operator, Left: node, Right: right}
	}

	return node, nil
}

// term := factor (('*'|'/') factor)*
func (p *Parser) parseTerm() (ast.Expression, error) {
	node, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.currTokenIs(token.ASTERISK) || p.currTokenIs(token.SLASH) {
		operator := p.currToken
		if err := p.nextToken(); err != nil {
			return nil, err
		}

		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}

		node = &ast.BinaryOperator{Operator: operator, Left: node, Right: right}
	}

	return node, nil
}

// factor := NUMBER | '(' expression ')' | IDENTIFIER
func (p *Parser) parseFactor() (ast.Expression, error) {
	switch p.currToken.Type {
	case token.NUMBER:
		tok, err := p.consume(token.NUMBER)
		if err != nil {
			return nil, err
		}

		return &ast.Number{Token: tok}, nil
	case token.LPAREN:
		if _, err := p.consume(token.LPAREN); err != nil {
			return nil, err
		}

		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, err := p.consume(token.RPAREN); err != nil {
			return nil, err
		}

		return expr, nil
	case token.IDENT:
		tok, err := p.consume(token.IDENT)
		if err != nil {
			return nil, err
		}

		return &ast.VarEval{Token: tok, Name: tok.Literal}, nil
	default:
		return nil, p.unexpected(token.NUMBER)
	}
}
