// Package interpreter runs source lines through the lexer, parser and
// evaluator against one persistent store.
package interpreter

import (
	"errors"
	"strings"

	"github.com/titivuk/apl/ast"
	"github.com/titivuk/apl/evaluator"
	"github.com/titivuk/apl/lexer"
	"github.com/titivuk/apl/object"
	"github.com/titivuk/apl/parser"
	"github.com/titivuk/apl/token"
)

type Kind int

const (
	KindProgram Kind = iota
	KindExpression
)

func (k Kind) String() string {
	switch k {
	case KindProgram:
		return "program"
	case KindExpression:
		return "expression"
	default:
		return "unknown"
	}
}

// Result describes one successful Run.
type Result struct {
	Value object.Value
	Node  ast.Node
	Kind  Kind
}

type Option func(*Session)

// WithStore makes the session evaluate against an existing store.
func WithStore(store *object.Store) Option {
	return func(s *Session) {
		s.store = store
	}
}

// Session is not safe for concurrent use.
type Session struct {
	store *object.Store
	eval  *evaluator.Evaluator
}

func NewSession(opts ...Option) *Session {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = object.NewStore()
	}
	s.eval = evaluator.New(s.store)

	return s
}

func (s *Session) Store() *object.Store {
	return s.store
}

func (s *Session) Reset() {
	s.store.Reset()
}

// Parse reads line as a program. A line that is not a program but parses
// as a single expression is returned as one instead. The line is lexed
// once, so a lexical error anywhere in it is reported before any syntax
// error.
func Parse(line string) (ast.Node, Kind, error) {
	toks, err := lexer.Tokenize(line)
	if err != nil {
		return nil, KindProgram, err
	}

	return ParseTokens(toks)
}

// ParseTokens is Parse over tokens that were already lexed. Both parse
// attempts read from their own queue of the same tokens. When both fail
// the program's syntax error is returned.
func ParseTokens(toks []token.Token) (ast.Node, Kind, error) {
	program, err := parser.New(token.NewQueue(toks...)).Parse()
	if err == nil {
		return program, KindProgram, nil
	}

	if !errors.Is(err, parser.ErrSyntax) {
		return nil, KindProgram, err
	}

	expr, exprErr := parser.New(token.NewQueue(toks...)).ParseExpression()
	if exprErr != nil {
		return nil, KindProgram, err
	}

	return expr, KindExpression, nil
}

// Run parses line and evaluates it against the session store.
func (s *Session) Run(line string) (Result, error) {
	node, kind, err := Parse(line)
	if err != nil {
		return Result{Kind: kind}, err
	}

	v, err := s.eval.Eval(node)
	return Result{Value: v, Node: node, Kind: kind}, err
}

// TrimLine drops line endings and the blanks the lexer skips from both ends
// of line. Any other whitespace is left for the lexer to reject.
func TrimLine(line string) string {
	return strings.Trim(line, " \t\r\n")
}

// Stage names the pipeline step an error came from: "lexical", "syntax"
// or "evaluation". It returns "" for nil and "internal" for anything else.
func Stage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, lexer.ErrLex):
		return "lexical"
	case errors.Is(err, parser.ErrSyntax):
		return "syntax"
	case errors.Is(err, evaluator.ErrEvaluation):
		return "evaluation"
	default:
		return "internal"
	}
}
