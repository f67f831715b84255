package lexer

import (
	"fmt"
	"strings"

	domainerrors "github.com/leengari/linkplanner/internal/domain/errors"
)

type TokenType int

const (
	// Special
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENTIFIER // trigrams, x.name, y.rdfs:label
	NUMBER     // 0.8, 1, .5

	// Keywords (specification operators)
	AND
	OR
	XOR
	MINUS

	// Operators & Punctuation
	ASTERISK    // *
	COMMA       // ,
	PIPE        // |
	PAREN_OPEN  // (
	PAREN_CLOSE // )
)

var keywords = map[string]TokenType{
	"AND":   AND,
	"OR":    OR,
	"XOR":   XOR,
	"MINUS": MINUS,
}

var tokenNames = map[TokenType]string{
	ILLEGAL:     "ILLEGAL",
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	NUMBER:      "NUMBER",
	AND:         "AND",
	OR:          "OR",
	XOR:         "XOR",
	MINUS:       "MINUS",
	ASTERISK:    "*",
	COMMA:       ",",
	PIPE:        "|",
	PAREN_OPEN:  "(",
	PAREN_CLOSE: ")",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// IsKeyword reports whether the token is one of the specification operators
func (t TokenType) IsKeyword() bool {
	return t == AND || t == OR || t == XOR || t == MINUS
}

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q)", t.Type, t.Literal)
}

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// exponentFollows reports whether the e under examination starts an
// exponent: digits, optionally after a sign
func (l *Lexer) exponentFollows() bool {
	i := l.readPosition
	if i < len(l.input) && (l.input[i] == '+' || l.input[i] == '-') {
		i++
	}
	return i < len(l.input) && isDigit(l.input[i])
}

func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	tok.Line = l.line
	tok.Column = l.column

	switch l.ch {
	case '*':
		tok = newToken(ASTERISK, l.ch, l.line, l.column)
	case ',':
		tok = newToken(COMMA, l.ch, l.line, l.column)
	case '|':
		tok = newToken(PIPE, l.ch, l.line, l.column)
	case '(':
		tok = newToken(PAREN_OPEN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(PAREN_CLOSE, l.ch, l.line, l.column)
	case 0:
		tok.Literal = ""
		tok.Type = EOF
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
			tok.Type = NUMBER
			tok.Literal = l.readNumber()
			return tok
		} else {
			tok = newToken(ILLEGAL, l.ch, l.line, l.column)
		}
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
}

// readIdentifier reads measure names and property paths. Paths may carry a
// variable prefix and a namespace: x.name, y.rdfs:label, x.birth-date
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '.' || l.ch == ':' || l.ch == '-' {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	// Support simple floats
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	// and exponents, e.g. 1e-05
	if (l.ch == 'e' || l.ch == 'E') && l.exponentFollows() {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position]
}

func newToken(tokenType TokenType, ch byte, line, col int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: col}
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return IDENTIFIER
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Tokenize lexes the entire input at once
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		if tok.Type == ILLEGAL {
			return nil, domainerrors.NewParseError(input, tok.Line, tok.Column, tok.Literal, "illegal character")
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
