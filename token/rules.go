package token

import "regexp"

// MatchMode tells a rule how to look at the input.
type MatchMode int

const (
	// Skip consumes one literal character and produces nothing.
	Skip MatchMode = iota
	// SingleChar consumes one literal character and produces a token.
	SingleChar
	// Pattern consumes the longest match of an anchored regular expression.
	Pattern
)

func (m MatchMode) String() string {
	switch m {
	case Skip:
		return "SKIP"
	case SingleChar:
		return "SINGLE_CHAR"
	case Pattern:
		return "PATTERN"
	default:
		return "UNKNOWN"
	}
}

// Rule is one entry of the lexical rule table.
type Rule struct {
	Type    TokenType
	Mode    MatchMode
	Pattern string

	re *regexp.Regexp
}

// Rules is the rule table in priority order: at a given position the first
// rule that consumes input wins.
var Rules = []Rule{
	literal(SPACE, Skip, " "),
	literal(TAB, Skip, "\t"),
	literal(LPAREN, SingleChar, "("),
	literal(RPAREN, SingleChar, ")"),
	literal(PLUS, SingleChar, "+"),
	literal(MINUS, SingleChar, "-"),
	literal(ASTERISK, SingleChar, "*"),
	literal(SLASH, SingleChar, "/"),
	literal(ASSIGN, SingleChar, "="),
	literal(SEMICOLON, SingleChar, ";"),
	pattern(VAR, `var\b`),
	pattern(NUMBER, `[0-9]+(\.[0-9]+)?`),
	// matches the empty string, so it must stay behind every specific rule
	pattern(IDENT, `[a-zA-Z0-9_]*`),
	pattern(STRING, `".*"`),
}

func literal(t TokenType, mode MatchMode, ch string) Rule {
	return Rule{Type: t, Mode: mode, Pattern: ch}
}

func pattern(t TokenType, expr string) Rule {
	return Rule{Type: t, Mode: Pattern, Pattern: expr, re: regexp.MustCompile(`^(?:` + expr + `)`)}
}

// Match reports how many bytes of input, starting at pos, the rule consumes.
// Zero means the rule does not apply; an empty regexp match counts as zero.
func (r Rule) Match(input string, pos int) int {
	if pos >= len(input) {
		return 0
	}

	switch r.Mode {
	case Skip, SingleChar:
		if input[pos] == r.Pattern[0] {
			return 1
		}
		return 0
	case Pattern:
		loc := r.re.FindStringIndex(input[pos:])
		if loc == nil {
			return 0
		}
		return loc[1]
	default:
		return 0
	}
}

// Emits reports whether a match of this rule produces a token.
func (r Rule) Emits() bool {
	return r.Mode != Skip
}
