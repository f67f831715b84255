package parser

import (
	"fmt"
	"strconv"

	domainerrors "github.com/leengari/linkplanner/internal/domain/errors"
	"github.com/leengari/linkplanner/internal/domain/spec"
	"github.com/leengari/linkplanner/internal/parser/ast"
	"github.com/leengari/linkplanner/internal/parser/lexer"
)

type Parser struct {
	input   string
	tokens  []lexer.Token
	curPos  int
	curTok  lexer.Token
	peekTok lexer.Token
}

func New(input string, tokens []lexer.Token) *Parser {
	p := &Parser{input: input, tokens: tokens, curPos: 0}
	// Read two tokens to set curTok and peekTok
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	if p.curPos < len(p.tokens) {
		p.peekTok = p.tokens[p.curPos]
		p.curPos++
	} else {
		p.peekTok = lexer.Token{Type: lexer.EOF}
	}
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return domainerrors.NewParseError(p.input, p.curTok.Line, p.curTok.Column, p.curTok.Literal, fmt.Sprintf(format, args...))
}

// ParseMeasure parses a filter expression such as trigrams(x.name,y.name) or
// MAX(jaro(x.a,y.a)|0.5, 0.3*qgrams(x.b,y.b)|0.2)
func ParseMeasure(input string) (ast.Expression, error) {
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		return nil, err
	}
	p := New(input, tokens)
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.curTok.Type != lexer.EOF {
		return nil, p.errorf("unexpected trailing input")
	}
	return expr, nil
}

// ParseSpecification parses a textual link specification:
//
//	AND(levenshtein(x.name,y.name)|0.8, OR(jaro(x.a,y.a)|0.9, qgrams(x.b,y.b)|0.7)|0.5)|0.3
//
// Operator calls (AND, OR, XOR, MINUS) become composite nodes; anything else
// becomes an atomic node whose filter is the normalized expression text.
func ParseSpecification(input string) (*spec.Node, error) {
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		return nil, err
	}
	p := New(input, tokens)
	arg, err := p.parseArgument()
	if err != nil {
		return nil, err
	}
	if p.curTok.Type != lexer.EOF {
		return nil, p.errorf("unexpected trailing input")
	}
	var threshold float64
	if arg.Threshold != nil {
		threshold = *arg.Threshold
	}
	return p.toNode(arg.Value, threshold)
}

func (p *Parser) toNode(expr ast.Expression, threshold float64) (*spec.Node, error) {
	switch e := expr.(type) {
	case *ast.CallExpression:
		op, isOperator := spec.LookupOperator(e.Name)
		if !isOperator {
			return spec.Atomic(e.String(), threshold), nil
		}
		node := spec.Composite(op, threshold)
		for _, a := range e.Args {
			var childThreshold float64
			if a.Threshold != nil {
				childThreshold = *a.Threshold
			}
			child, err := p.toNode(a.Value, childThreshold)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
		return node, nil
	case *ast.ScaledExpression:
		return spec.Atomic(e.String(), threshold), nil
	default:
		return nil, domainerrors.NewParseError(p.input, 0, 0, expr.String(), "expected a measure or an operator")
	}
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	switch {
	case p.curTok.Type == lexer.NUMBER:
		num, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		if p.curTok.Type != lexer.ASTERISK {
			return num, nil
		}
		p.nextToken()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.ScaledExpression{Factor: num, Value: value}, nil

	case p.curTok.Type == lexer.IDENTIFIER:
		name := p.curTok.Literal
		p.nextToken()
		if p.curTok.Type != lexer.PAREN_OPEN {
			return &ast.Identifier{TokenLiteralValue: name, Value: name}, nil
		}
		return p.parseCall(name)

	case p.curTok.Type.IsKeyword():
		name := p.curTok.Literal
		p.nextToken()
		if p.curTok.Type != lexer.PAREN_OPEN {
			return nil, p.errorf("expected ( after %s", name)
		}
		return p.parseCall(name)

	default:
		return nil, p.errorf("unexpected token in expression")
	}
}

func (p *Parser) parseCall(name string) (*ast.CallExpression, error) {
	call := &ast.CallExpression{Name: name}

	// (
	p.nextToken()

	arg, err := p.parseArgument()
	if err != nil {
		return nil, err
	}
	call.Args = append(call.Args, arg)

	for p.curTok.Type == lexer.COMMA {
		p.nextToken()
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}

	if p.curTok.Type != lexer.PAREN_CLOSE {
		return nil, p.errorf("expected ) to close %s", name)
	}
	p.nextToken()

	return call, nil
}

func (p *Parser) parseArgument() (*ast.Argument, error) {
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	arg := &ast.Argument{Value: value}

	if p.curTok.Type == lexer.PIPE {
		p.nextToken()
		if p.curTok.Type != lexer.NUMBER {
			return nil, p.errorf("expected threshold after |")
		}
		num, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		arg.Threshold = &num.Value
	}

	return arg, nil
}

func (p *Parser) parseNumber() (*ast.NumberLiteral, error) {
	lit := p.curTok.Literal
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, p.errorf("invalid number")
	}
	p.nextToken()
	return &ast.NumberLiteral{TokenLiteralValue: lit, Value: v}, nil
}
