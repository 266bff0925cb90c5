package lexer

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ebpl/ebplc/token"
)

// Lex converts source into tokens terminated by an EOF token.
// It stops at the first character it cannot classify.
func Lex(source string) ([]token.Token, error) {
	lexer := lexer{
		source: source,
		tokens: []token.Token{},
		line:   1,
		column: 1,
	}

	for !lexer.isAtEnd() {
		if err := lexer.scanToken(); err != nil {
			return nil, err
		}
	}

	lexer.tokens = append(lexer.tokens, token.Token{Kind: token.EOF, Lexeme: "", Line: lexer.line, Column: lexer.column})

	return lexer.tokens, nil
}

type lexer struct {
	source string
	tokens []token.Token

	start   int // start of current lexeme
	current int // current position in source
	line    int // current line number
	column  int // current column, counted in runes

	startLine   int
	startColumn int
}

func (l lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l lexer) peek() rune {
	if l.isAtEnd() {
		return '\x00'
	}
	runeValue, _ := utf8.DecodeRuneInString(l.source[l.current:])

	return runeValue
}

func (l lexer) peekNext() rune {
	if l.isAtEnd() {
		return '\x00'
	}
	_, width := utf8.DecodeRuneInString(l.source[l.current:])
	if l.current+width >= len(l.source) {
		return '\x00'
	}
	runeValue, _ := utf8.DecodeRuneInString(l.source[l.current+width:])

	return runeValue
}

func (l *lexer) advance() rune {
	runeValue, width := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += width
	if runeValue == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}

	return runeValue
}

func (l *lexer) addToken(kind token.Kind, lexeme string) {
	l.tokens = append(l.tokens, token.Token{Kind: kind, Lexeme: lexeme, Line: l.startLine, Column: l.startColumn})
}

type UnexpectedCharacterError struct {
	Line   int
	Column int
	Char   rune
}

func (e UnexpectedCharacterError) Error() string {
	return fmt.Sprintf("unexpected character '%c' at line %d, column %d", e.Char, e.Line, e.Column)
}

type UnterminatedStringError struct {
	Line   int
	Column int
}

func (e UnterminatedStringError) Error() string {
	return fmt.Sprintf("unterminated string literal at line %d, column %d", e.Line, e.Column)
}

// IsLexError reports whether err comes from the lexer.
func IsLexError(err error) bool {
	var unexpected UnexpectedCharacterError
	var unterminated UnterminatedStringError

	return errors.As(err, &unexpected) || errors.As(err, &unterminated)
}

var singleChars = map[rune]token.Kind{
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.MULTIPLY,
	'/': token.DIVIDE,
	'=': token.EQUALS,
	'(': token.LPAREN,
	')': token.RPAREN,
}

func (l *lexer) scanToken() error {
	l.start = l.current
	l.startLine, l.startColumn = l.line, l.column
	char := l.advance()
	switch char {
	case ' ', '\t', '\r':
		// ignore whitespace
		return nil
	case '\n':
		l.addToken(token.NEWLINE, "\n")

		return nil
	case '"':
		return l.string()
	default:
		if k, ok := singleChars[char]; ok {
			l.addToken(k, string(char))

			return nil
		}
		if isDigit(char) {
			l.number()

			return nil
		}
		if isAlpha(char) {
			l.identifier()

			return nil
		}
	}

	return UnexpectedCharacterError{Line: l.startLine, Column: l.startColumn, Char: char}
}

// string scans up to the closing quote. The literal must close on the line it opens.
func (l *lexer) string() error {
	for l.peek() != '"' {
		if l.isAtEnd() || l.peek() == '\n' {
			return UnterminatedStringError{Line: l.startLine, Column: l.startColumn}
		}
		l.advance()
	}
	l.advance()

	l.addToken(token.STRING, l.source[l.start+1:l.current-1])

	return nil
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c rune) bool {
	return isAlpha(c) || isDigit(c)
}

func (l *lexer) number() {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	l.addToken(token.NUMBER, l.source[l.start:l.current])
}

func (l *lexer) identifier() {
	for isAlphaNumeric(l.peek()) {
		l.advance()
	}

	// A comparison phrase starts with the word just scanned.
	if phrase, end, ok := matchPhrase(l.source, l.start); ok {
		for l.current < end {
			l.advance()
		}
		l.addToken(phrase.Kind, strings.Join(phrase.Words, " "))

		return
	}

	value := l.source[l.start:l.current]
	if k, ok := token.Keywords[strings.ToLower(value)]; ok {
		l.addToken(k, value)
	} else {
		l.addToken(token.IDENTIFIER, value)
	}
}

// matchPhrase tries every comparison phrase at pos and returns the first
// match with the byte offset just past its last word.
func matchPhrase(source string, pos int) (token.Phrase, int, bool) {
	for _, phrase := range token.Phrases {
		if end, ok := matchWords(source, pos, phrase.Words); ok {
			return phrase, end, true
		}
	}

	return token.Phrase{}, 0, false
}

func matchWords(source string, pos int, words []string) (int, bool) {
	for i, want := range words {
		if i > 0 {
			for pos < len(source) && (source[pos] == ' ' || source[pos] == '\t') {
				pos++
			}
		}
		end := pos
		for end < len(source) && isAlphaNumeric(rune(source[end])) {
			end++
		}
		if end == pos || !strings.EqualFold(source[pos:end], want) {
			return 0, false
		}
		pos = end
	}

	return pos, true
}
