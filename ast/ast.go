package ast

import (
	"strings"

	"github.com/titivuk/apl/token"
)

// Node is implemented only by the node types of this package,
// so a type switch over them is exhaustive.
type Node interface {
	TokenLiteral() string
	String() string
	aplNode()
}

// Expression nodes produce a number.
type Expression interface {
	Node
	expressionNode()
}

// Target nodes name the variable an Assignation writes to.
type Target interface {
	Node
	targetNode()
	Ident() string
}

// root node of AST
type Program struct {
	Instructions []*Assignation
}

func (p *Program) aplNode() {}

func (p *Program) TokenLiteral() string {
	if len(p.Instructions) > 0 {
		return p.Instructions[0].TokenLiteral()
	}

	return ""
}

func (p *Program) String() string {
	var b strings.Builder

	b.WriteString("Program[")
	for i, ins := range p.Instructions {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ins.String())
	}
	b.WriteString("]")

	return b.String()
}

type Assignation struct {
	Target Target     // Var or VarInit
	Value  Expression // expression that produces the value
}

func (a *Assignation) aplNode() {}

func (a *Assignation) TokenLiteral() string {
	return a.Target.TokenLiteral()
}

func (a *Assignation) String() string {
	return "Assignation(" + a.Target.String() + ", " + a.Value.String() + ")"
}

type BinaryOperator struct {
	Operator token.Token // one of + - * /
	Left     Expression
	Right    Expression
}

func (bo *BinaryOperator) aplNode()        {}
func (bo *BinaryOperator) expressionNode() {}

func (bo *BinaryOperator) TokenLiteral() string {
	return bo.Operator.Literal
}

func (bo *BinaryOperator) String() string {
	return "BinaryOperator(" + bo.Operator.Literal + ", " + bo.Left.String() + ", " + bo.Right.String() + ")"
}

type Number struct {
	Token token.Token // the token.NUMBER token
}

func (n *Number) aplNode()        {}
func (n *Number) expressionNode() {}

func (n *Number) TokenLiteral() string {
	return n.Token.Literal
}

func (n *Number) String() string {
	return "Number(" + n.Token.Literal + ")"
}

// Var is an assignment to a variable that must already exist.
type Var struct {
	Token token.Token // the token.IDENT token
	Name  string
}

func (v *Var) aplNode()    {}
func (v *Var) targetNode() {}

func (v *Var) Ident() string {
	return v.Name
}

func (v *Var) TokenLiteral() string {
	return v.Token.Literal
}

func (v *Var) String() string {
	return "Var(" + v.Name + ")"
}

// VarInit declares a variable; it follows the var keyword.
type VarInit struct {
	Token token.Token // the token.IDENT token after token.VAR
	Name  string
}

func (v *VarInit) aplNode()    {}
func (v *VarInit) targetNode() {}

func (v *VarInit) Ident() string {
	return v.Name
}

func (v *VarInit) TokenLiteral() string {
	return v.Token.Literal
}

func (v *VarInit) String() string {
	return "VarInit(" + v.Name + ")"
}

// VarEval reads the current value of a variable.
type VarEval struct {
	Token token.Token // the token.IDENT token
	Name  string
}

func (v *VarEval) aplNode()        {}
func (v *VarEval) expressionNode() {}

func (v *VarEval) TokenLiteral() string {
	return v.Token.Literal
}

func (v *VarEval) String() string {
	return "VarEval(" + v.Name + ")"
}
