package lexer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/titivuk/apl/token"
)

// ErrLex is matched by every error the lexer returns.
var ErrLex = errors.New("lex error")

// LexicalError reports that no rule consumed any input at Index.
type LexicalError struct {
	Input string
	Index int
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("no matching token at index %d", e.Index)
}

func (e *LexicalError) Unwrap() error {
	return ErrLex
}

// Caret renders the input line with a marker under the failing column.
func (e *LexicalError) Caret() string {
	return "\t" + e.Input + "\n\t" + caret(e.Input, e.Index)
}

// caret pads one column per rune of input[:index] and keeps tabs, so the
// marker lines up with the failing byte however the line is displayed
func caret(input string, index int) string {
	var b strings.Builder
	for _, r := range input[:index] {
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('^')

	return b.String()
}

// Lexer works on bytes: every rule in token.Rules is ASCII
// so positions are byte offsets into input
type Lexer struct {
	input    string
	position int // current position in input (points to the next unread byte)
}

func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Pos returns the index of the next byte to be scanned.
func (l *Lexer) Pos() int {
	return l.position
}

func (l *Lexer) NextToken() (token.Token, error) {
	for {
		if l.position >= len(l.input) {
			return token.Token{Type: token.EOF, Pos: len(l.input)}, nil
		}

		rule, n := match(l.input, l.position)
		if n == 0 {
			return token.Token{}, &LexicalError{Input: l.input, Index: l.position}
		}

		start := l.position
		l.position += n

		if rule.Emits() {
			return token.Token{Type: rule.Type, Literal: l.input[start:l.position], Pos: start}, nil
		}
	}
}

// Tokenize lexes the whole input, EOF token included, and stops at the
// first lexical error.
func Tokenize(input string) ([]token.Token, error) {
	var tokens []token.Token

	l := New(input)
	for {
		tok, err := l.NextToken()
		if err != nil {
			return tokens, err
		}

		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

// TokenizeAll lexes the whole input in one go. It never fails: on the first
// unmatched position it stops and describes the problem in the returned
// messages instead. The EOF token is not included.
func TokenizeAll(input string) ([]token.Token, []string) {
	tokens, err := Tokenize(input)
	if err != nil {
		var lexErr *LexicalError
		if !errors.As(err, &lexErr) {
			return tokens, []string{err.Error()}
		}

		return tokens, []string{
			fmt.Sprintf("No matching token @ index:%d", lexErr.Index),
			"\t" + input,
			"\t" + caret(input, lexErr.Index),
		}
	}

	return tokens[:len(tokens)-1], nil
}

// match returns the first rule that consumes input at pos and how much it consumed
func match(input string, pos int) (token.Rule, int) {
	for _, rule := range token.Rules {
		if n := rule.Match(input, pos); n > 0 {
			return rule, n
		}
	}

	return token.Rule{}, 0
}
