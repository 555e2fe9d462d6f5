package token

import "fmt"

const (
	EOF = "EOF" // EOF stands for "end of file", which tells the parser it can stop

	// skipped, never emitted
	SPACE = "SPACE"
	TAB   = "TAB"

	// identifiers + literals
	IDENT  = "IDENT"  // x, total, foo_1
	NUMBER = "NUMBER" // 12, 3.5
	STRING = "STRING" // "text", lexed but not part of the grammar

	// operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"

	// Delimeters
	SEMICOLON = ";"
	LPAREN    = "("
	RPAREN    = ")"

	// Keywords
	VAR = "VAR"
)

type TokenType string

type Token struct {
	Type    TokenType
	Literal string
	Pos     int // byte index of the first character in the input line
}

func (t Token) String() string {
	if t.Type == EOF {
		return "Token(EOF)"
	}

	return fmt.Sprintf("Token(%s, '%s')", t.Type, t.Literal)
}

// Source is anything the parser can pull tokens from.
// Once the input is exhausted it must keep returning an EOF token.
type Source interface {
	NextToken() (Token, error)
}
