// Package grammar implements the primary OData v4 filter grammar: a
// regex-table lexer and a recursive-descent parser producing odataql/ast
// trees.
//
// The grammar deliberately mirrors the limits of a conformant OData v4
// parser: slash-delimited member paths (a/b/c) and collection lambda
// expressions (any/all) are rejected here and handled by the caller's
// fallback path.
package grammar

import (
	"fmt"
	"regexp"
)

// TokenType represents the type of a token.
type TokenType string

const (
	TokenLParen     TokenType = "LPAREN"
	TokenRParen     TokenType = "RPAREN"
	TokenComma      TokenType = "COMMA"
	TokenString     TokenType = "STRING"
	TokenGUID       TokenType = "GUID"
	TokenDateTime   TokenType = "DATETIME"
	TokenNumber     TokenType = "NUMBER"
	TokenIdentifier TokenType = "IDENTIFIER"
	TokenWhitespace TokenType = "WHITESPACE"
	TokenEOF        TokenType = "EOF"
)

// Token represents a token in the filter expression.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q)", t.Type, t.Value)
}

type tokenPattern struct {
	Type    TokenType
	Pattern *regexp.Regexp
}

// Lexer tokenizes filter expressions.
type Lexer struct {
	text     string
	position int
	tokens   []Token
	patterns []tokenPattern
}

// NewLexer creates a new Lexer for the given text.
func NewLexer(text string) *Lexer {
	return &Lexer{
		text: text,
		patterns: []tokenPattern{
			{TokenLParen, regexp.MustCompile(`^\(`)},
			{TokenRParen, regexp.MustCompile(`^\)`)},
			{TokenComma, regexp.MustCompile(`^,`)},
			{TokenString, regexp.MustCompile(`^'(?:[^']|'')*'`)},
			{TokenGUID, regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)},
			{TokenDateTime, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(?:T\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|[+-]\d{2}:\d{2})?)?`)},
			{TokenNumber, regexp.MustCompile(`^-?\d+(?:\.\d+)?`)},
			{TokenIdentifier, regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)},
			{TokenWhitespace, regexp.MustCompile(`^\s+`)},
		},
	}
}

// Tokenize tokenizes the input text. Whitespace tokens are dropped.
// Characters outside the grammar (notably the path separator '/') stop
// tokenization with an error.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.position < len(l.text) {
		matched := false
		remaining := l.text[l.position:]

		for _, pattern := range l.patterns {
			loc := pattern.Pattern.FindStringIndex(remaining)
			if loc == nil || loc[0] != 0 {
				continue
			}
			if pattern.Type != TokenWhitespace {
				l.tokens = append(l.tokens, Token{
					Type:     pattern.Type,
					Value:    remaining[:loc[1]],
					Position: l.position,
				})
			}
			l.position += loc[1]
			matched = true
			break
		}

		if !matched {
			return nil, fmt.Errorf("unexpected character at position %d: %c", l.position, l.text[l.position])
		}
	}

	return l.tokens, nil
}
