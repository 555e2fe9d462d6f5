package ast

import (
	"errors"
	"testing"

	"github.com/titivuk/apl/token"
)

func num(lit string) *Number {
	return &Number{Token: token.Token{Type: token.NUMBER, Literal: lit}}
}

func ident(name string) token.Token {
	return token.Token{Type: token.IDENT, Literal: name}
}

func op(lit string) token.Token {
	return token.Token{Type: token.TokenType(lit), Literal: lit}
}

func sample() *Program {
	return &Program{
		Instructions: []*Assignation{
			{
				Target: &VarInit{Token: ident("x"), Name: "x"},
				Value: &BinaryOperator{
					Operator: op("+"),
					Left:     num("2"),
					Right:    &BinaryOperator{Operator: op("*"), Left: num("3"), Right: num("4")},
				},
			},
			{
				Target: &Var{Token: ident("x"), Name: "x"},
				Value:  &BinaryOperator{Operator: op("-"), Left: &VarEval{Token: ident("x"), Name: "x"}, Right: num("1.5")},
			},
		},
	}
}

func TestString(t *testing.T) {
	want := "Program[" +
		"Assignation(VarInit(x), BinaryOperator(+, Number(2), BinaryOperator(*, Number(3), Number(4)))), " +
		"Assignation(Var(x), BinaryOperator(-, VarEval(x), Number(1.5)))]"

	if got := sample().String(); got != want {
		t.Fatalf("program.String() wrong.\nexpected=%q\ngot=%q", want, got)
	}

	if got := (&Program{}).String(); got != "Program[]" {
		t.Fatalf("empty program.String() wrong. got=%q", got)
	}
}

func TestTokenLiteral(t *testing.T) {
	p := sample()
	if p.TokenLiteral() != "x" {
		t.Fatalf("expected x, got %q", p.TokenLiteral())
	}
	if (&Program{}).TokenLiteral() != "" {
		t.Fatalf("expected empty literal for empty program")
	}
}

// counter counts the nodes of each variant it walks through
type counter map[string]int

func (c counter) VisitProgram(p *Program) (int, error) {
	c["Program"]++
	total := 1
	for _, ins := range p.Instructions {
		n, err := Visit[int](c, ins)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (c counter) VisitAssignation(a *Assignation) (int, error) {
	c["Assignation"]++
	l, err := Visit[int](c, a.Target)
	if err != nil {
		return 0, err
	}
	r, err := Visit[int](c, a.Value)
	if err != nil {
		return 0, err
	}
	return 1 + l + r, nil
}

func (c counter) VisitBinaryOperator(b *BinaryOperator) (int, error) {
	c["BinaryOperator"]++
	l, err := Visit[int](c, b.Left)
	if err != nil {
		return 0, err
	}
	r, err := Visit[int](c, b.Right)
	if err != nil {
		return 0, err
	}
	return 1 + l + r, nil
}

func (c counter) VisitNumber(*Number) (int, error)   { c["Number"]++; return 1, nil }
func (c counter) VisitVar(*Var) (int, error)         { c["Var"]++; return 1, nil }
func (c counter) VisitVarInit(*VarInit) (int, error) { c["VarInit"]++; return 1, nil }
func (c counter) VisitVarEval(*VarEval) (int, error) { c["VarEval"]++; return 1, nil }

func TestVisit(t *testing.T) {
	c := counter{}

	total, err := Visit[int](c, sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 13 {
		t.Fatalf("expected 13 nodes, got %d", total)
	}

	want := map[string]int{
		"Program": 1, "Assignation": 2, "BinaryOperator": 3,
		"Number": 4, "Var": 1, "VarInit": 1, "VarEval": 1,
	}
	for k, v := range want {
		if c[k] != v {
			t.Errorf("%s: expected %d, got %d", k, v, c[k])
		}
	}
}

func TestVisitUnhandled(t *testing.T) {
	_, err := Visit[int](counter{}, nil)

	var unhandled *UnhandledNodeError
	if !errors.As(err, &unhandled) {
		t.Fatalf("expected *UnhandledNodeError, got %T", err)
	}
	if err.Error() != "no handler for variant <nil>" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestFingerprint(t *testing.T) {
	if Fingerprint(sample()) != Fingerprint(sample()) {
		t.Fatalf("identical trees must have the same fingerprint")
	}

	other := sample()
	other.Instructions = other.Instructions[:1]
	if Fingerprint(sample()) == Fingerprint(other) {
		t.Fatalf("different trees should not collide here")
	}
}
