package ruleengine

import "regexp"

// TokenType classifies a lexical token.
type TokenType int

const (
	// TokenWord is an identifier, number literal or bare string.
	TokenWord TokenType = iota
	// TokenQuoted is a single-quoted string; the quotes are kept in Value.
	TokenQuoted
	// TokenComparison is one of >, < or =.
	TokenComparison
	// TokenAnd is the AND keyword.
	TokenAnd
	// TokenOr is the OR keyword.
	TokenOr
	// TokenLParen is an opening parenthesis.
	TokenLParen
	// TokenRParen is a closing parenthesis.
	TokenRParen
)

// String returns the token type name.
func (t TokenType) String() string {
	switch t {
	case TokenWord:
		return "WORD"
	case TokenQuoted:
		return "QUOTED"
	case TokenComparison:
		return "COMPARISON"
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	default:
		return "UNKNOWN"
	}
}

// Token is a lexical atom of a rule. Tokens carry no position; their order in
// the slice returned by Tokenize is the only relationship kept.
type Token struct {
	Type  TokenType
	Value string
}

// String returns the raw token text.
func (t Token) String() string {
	return t.Value
}

// tokenPattern is tried left to right at each position. Decimal literals come
// before plain word runs so that 3.5 stays a single token.
var tokenPattern = regexp.MustCompile(`'[^']*'|\d+\.\d+|\w+|[()<>=]`)

// Tokenize splits a rule into tokens. Whitespace and characters outside the
// grammar are skipped silently, so Tokenize never fails.
func Tokenize(rule string) []Token {
	matches := tokenPattern.FindAllString(rule, -1)
	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, Token{Type: classify(m), Value: m})
	}
	return tokens
}

// classify maps raw token text to its type. Keywords are only recognised as
// whole word runs, so ORDER and ANDROID are words.
func classify(s string) TokenType {
	switch s {
	case "(":
		return TokenLParen
	case ")":
		return TokenRParen
	case "AND":
		return TokenAnd
	case "OR":
		return TokenOr
	case ">", "<", "=":
		return TokenComparison
	}
	if s[0] == '\'' {
		return TokenQuoted
	}
	return TokenWord
}
