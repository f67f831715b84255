package ast

import (
	"bytes"
	"strconv"
)

// Node is the base interface for all AST nodes
type Node interface {
	TokenLiteral() string
	String() string
}

// Expression represents a measure expression or one of its operands
type Expression interface {
	Node
	expressionNode()
}

// Identifier represents a property path such as x.name
type Identifier struct {
	TokenLiteralValue string
	Value             string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.TokenLiteralValue }
func (i *Identifier) String() string       { return i.Value }

// NumberLiteral represents a numeric constant (weights, thresholds)
type NumberLiteral struct {
	TokenLiteralValue string
	Value             float64
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.TokenLiteralValue }
func (n *NumberLiteral) String() string       { return n.TokenLiteralValue }

// Argument is one operand of a call, optionally followed by |threshold
type Argument struct {
	Value     Expression
	Threshold *float64
}

func (a *Argument) String() string {
	if a.Threshold == nil {
		return a.Value.String()
	}
	return a.Value.String() + "|" + strconv.FormatFloat(*a.Threshold, 'f', -1, 64)
}

// CallExpression: name(arg, arg, ...), e.g. trigrams(x.name,y.name) or
// AND(jaro(x.a,y.a)|0.9, qgrams(x.b,y.b)|0.7)
type CallExpression struct {
	Name string
	Args []*Argument
}

func (c *CallExpression) expressionNode()      {}
func (c *CallExpression) TokenLiteral() string { return c.Name }
func (c *CallExpression) String() string {
	var out bytes.Buffer
	out.WriteString(c.Name)
	out.WriteString("(")
	for i, a := range c.Args {
		out.WriteString(a.String())
		if i < len(c.Args)-1 {
			out.WriteString(",")
		}
	}
	out.WriteString(")")
	return out.String()
}

// ScaledExpression: factor*expression, used inside weighted combinations
type ScaledExpression struct {
	Factor *NumberLiteral
	Value  Expression
}

func (s *ScaledExpression) expressionNode()      {}
func (s *ScaledExpression) TokenLiteral() string { return "*" }
func (s *ScaledExpression) String() string {
	return s.Factor.String() + "*" + s.Value.String()
}

// Walk visits expr and every nested operand depth-first. Returning false from
// visit skips the children of that node.
func Walk(expr Expression, visit func(Expression) bool) {
	if expr == nil || !visit(expr) {
		return
	}
	switch e := expr.(type) {
	case *CallExpression:
		for _, a := range e.Args {
			Walk(a.Value, visit)
		}
	case *ScaledExpression:
		Walk(e.Value, visit)
	}
}
