package interpreter

import (
	"errors"
	"testing"

	"github.com/titivuk/apl/evaluator"
	"github.com/titivuk/apl/lexer"
	"github.com/titivuk/apl/object"
	"github.com/titivuk/apl/parser"
	"github.com/titivuk/apl/token"
)

func TestRunProgram(t *testing.T) {
	s := NewSession()

	res, err := s.Run("var x = 2 + 3 * 4;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Kind != KindProgram {
		t.Fatalf("expected a program, got %s", res.Kind)
	}
	if res.Value != object.UNIT {
		t.Fatalf("expected UNIT, got %v", res.Value)
	}
	if got := s.Store().String(); got != "{x: 14}" {
		t.Fatalf("unexpected store %s", got)
	}
	if res.Node.String() != "Program[Assignation(VarInit(x), BinaryOperator(+, Number(2), BinaryOperator(*, Number(3), Number(4))))]" {
		t.Fatalf("unexpected tree %s", res.Node)
	}
}

func TestRunExpressionFallback(t *testing.T) {
	s := NewSession()
	if _, err := s.Run("var x = 4;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3;", "7"},
		{"(1 + 2) * 3", "9"},
		{"x", "4"},
		{"x / 8;", "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res, err := s.Run(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Kind != KindExpression {
				t.Fatalf("expected an expression, got %s", res.Kind)
			}
			if res.Value.Inspect() != tt.expected {
				t.Fatalf("expected %s, got %s", tt.expected, res.Value.Inspect())
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		input string
		stage string
	}{
		{"var x = 1 $", "lexical"},
		{"var = 1;", "syntax"},
		{"var x = ;", "syntax"},
		{"1 +", "syntax"},
		{"y = 1;", "evaluation"},
		{"5 / 0", "evaluation"},
	}

	for _, tt := range tests {
		_, err := NewSession().Run(tt.input)
		if err == nil {
			t.Fatalf("%q: expected an error", tt.input)
		}
		if got := Stage(err); got != tt.stage {
			t.Fatalf("%q: expected stage %s, got %s (%v)", tt.input, tt.stage, got, err)
		}
	}
}

func TestRunKeepsProgramSyntaxError(t *testing.T) {
	// neither a program nor an expression: the program error wins
	_, err := NewSession().Run("var x 1;")

	var syntaxErr *parser.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *parser.SyntaxError, got %T", err)
	}
	if syntaxErr.Expected != "=" {
		t.Fatalf("expected the program error, got %v", err)
	}
}

func TestRunLexicalError(t *testing.T) {
	_, err := NewSession().Run("12 $")

	var lexErr *lexer.LexicalError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *lexer.LexicalError, got %T", err)
	}
	if lexErr.Index != 3 {
		t.Fatalf("expected index 3, got %d", lexErr.Index)
	}
}

func TestRunNoRollback(t *testing.T) {
	s := NewSession()

	_, err := s.Run("var a = 1; b = 2; var c = 3;")

	var undeclared *evaluator.UndeclaredVariableError
	if !errors.As(err, &undeclared) || undeclared.Name != "b" {
		t.Fatalf("expected undeclared b, got %v", err)
	}
	if got := s.Store().String(); got != "{a: 1}" {
		t.Fatalf("expected {a: 1}, got %s", got)
	}
}

func TestSessionWithStoreAndReset(t *testing.T) {
	store := object.NewStore()
	store.Declare("n", &object.Integer{Value: 41})

	s := NewSession(WithStore(store))
	if _, err := s.Run("n = n + 1;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.String(); got != "{n: 42}" {
		t.Fatalf("expected the shared store to change, got %s", got)
	}

	s.Reset()
	if store.Len() != 0 {
		t.Fatalf("expected an empty store, got %s", store)
	}
}

func TestStage(t *testing.T) {
	if Stage(nil) != "" {
		t.Fatalf("nil has no stage")
	}
	if Stage(errors.New("boom")) != "internal" {
		t.Fatalf("unknown errors are internal")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		tree  string
	}{
		{"var x = 1;", KindProgram, "Program[Assignation(VarInit(x), Number(1))]"},
		{"", KindProgram, "Program[]"},
		{"x * 2", KindExpression, "BinaryOperator(*, VarEval(x), Number(2))"},
	}

	for _, tt := range tests {
		node, kind, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.input, err)
		}
		if kind != tt.kind || node.String() != tt.tree {
			t.Fatalf("%q: expected %s %s, got %s %s", tt.input, tt.kind, tt.tree, kind, node)
		}
	}
}

func TestParseTokensFallsBackToExpression(t *testing.T) {
	toks := []token.Token{
		{Type: token.IDENT, Literal: "n", Pos: 0},
		{Type: token.ASTERISK, Literal: "*", Pos: 2},
		{Type: token.NUMBER, Literal: "2", Pos: 4},
		{Type: token.EOF, Pos: 5},
	}

	node, kind, err := ParseTokens(toks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != KindExpression || node.String() != "BinaryOperator(*, VarEval(n), Number(2))" {
		t.Fatalf("unexpected %s %s", kind, node)
	}

	// the program attempt must not have used up the expression's tokens
	toks = append(toks[:len(toks)-1], token.Token{Type: token.SEMICOLON, Literal: ";", Pos: 5}, token.Token{Type: token.EOF, Pos: 6})
	if _, kind, err := ParseTokens(toks); err != nil || kind != KindExpression {
		t.Fatalf("expected an expression, got %s %v", kind, err)
	}
}

func TestParseLexesOnce(t *testing.T) {
	// the program parse fails at '=' before '$' but the line is lexed first
	_, _, err := Parse("var = $")

	var lexErr *lexer.LexicalError
	if !errors.As(err, &lexErr) || lexErr.Index != 6 {
		t.Fatalf("expected a lexical error at 6, got %v", err)
	}
}

func TestTrimLine(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{" \tvar x = 1;\r\n", "var x = 1;"},
		{"\vvar x = 1;\f", "\vvar x = 1;\f"},
		{" x", " x"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := TrimLine(tt.input); got != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}
