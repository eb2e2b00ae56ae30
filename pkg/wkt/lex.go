package wkt

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokNumber
	tokLParen
	tokRParen
	tokComma
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokWord:
		return "keyword"
	case tokNumber:
		return "number"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	default:
		return "token"
	}
}

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
	// gap is the number of whitespace bytes between this token and the previous one.
	gap int
}

// lexer splits WKT text into tokens. Keywords are upper-cased; numbers are
// parsed eagerly so malformed literals fail at the offending position.
type lexer struct {
	line string
	pos  int
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.line) {
		return 0
	}
	return rune(l.line[l.pos])
}

func (l *lexer) next() rune {
	c := l.peek()
	if l.pos < len(l.line) {
		l.pos++
	}
	return c
}

func (l *lexer) trimLeft() int {
	start := l.pos
	for l.pos < len(l.line) && unicode.IsSpace(l.peek()) {
		l.pos++
	}
	return l.pos - start
}

func isNumRune(r rune) bool {
	switch r {
	case '-', '+', '.', 'e', 'E':
		return true
	default:
		return r >= '0' && r <= '9'
	}
}

func (l *lexer) lex() (token, error) {
	gap := l.trimLeft()
	start := l.pos
	c := l.peek()
	switch {
	case l.pos >= len(l.line):
		return token{kind: tokEOF, pos: start, gap: gap}, nil
	case c == '(':
		l.next()
		return token{kind: tokLParen, text: "(", pos: start, gap: gap}, nil
	case c == ')':
		l.next()
		return token{kind: tokRParen, text: ")", pos: start, gap: gap}, nil
	case c == ',':
		l.next()
		return token{kind: tokComma, text: ",", pos: start, gap: gap}, nil
	case unicode.IsLetter(c):
		var b strings.Builder
		for unicode.IsLetter(l.peek()) {
			b.WriteRune(unicode.ToUpper(l.next()))
		}
		return token{kind: tokWord, text: b.String(), pos: start, gap: gap}, nil
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		for isNumRune(l.peek()) {
			l.next()
		}
		text := l.line[start:l.pos]
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, l.errorAt(start, "invalid number "+strconv.Quote(text))
		}
		return token{kind: tokNumber, text: text, num: f, pos: start, gap: gap}, nil
	default:
		return token{}, l.errorAt(start, "unexpected character "+strconv.QuoteRune(c))
	}
}

func (l *lexer) errorAt(pos int, problem string) *ParseError {
	return &ParseError{Input: l.line, Pos: pos, Problem: problem}
}
