package lexer

import (
	"fave/internal/token"
)

// Lexer produces tokens on demand. It is finite and not restartable: once
// EOF is returned every later call returns EOF again.
type Lexer struct {
	input string

	start    int // first byte of the token being scanned
	position int // current byte

	line      int // 1-based
	col       int // 1-based column of input[position]
	startLine int
	startCol  int
}

func New(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	l.start = l.position
	l.startLine, l.startCol = l.line, l.col

	if l.atEnd() {
		return l.newToken(token.EOF)
	}

	ch := l.advance()

	if isAlpha(ch) {
		return l.identifier()
	}
	if isDigit(ch) {
		return l.number()
	}

	switch ch {
	case '(':
		return l.newToken(token.LPAREN)
	case ')':
		return l.newToken(token.RPAREN)
	case '{':
		return l.newToken(token.LBRACE)
	case '}':
		return l.newToken(token.RBRACE)
	case ';':
		return l.newToken(token.SEMICOLON)
	case ',':
		return l.newToken(token.COMMA)
	case '.':
		return l.newToken(token.DOT)
	case '-':
		return l.newToken(token.MINUS)
	case '+':
		return l.newToken(token.PLUS)
	case '/':
		return l.newToken(token.SLASH)
	case '*':
		return l.newToken(token.STAR)
	case '!':
		if l.match('=') {
			return l.newToken(token.NE)
		}
		return l.newToken(token.BANG)
	case '=':
		if l.match('=') {
			return l.newToken(token.EQ)
		}
		return l.newToken(token.ASSIGN)
	case '<':
		if l.match('=') {
			return l.newToken(token.LE)
		}
		return l.newToken(token.LT)
	case '>':
		if l.match('=') {
			return l.newToken(token.GE)
		}
		return l.newToken(token.GT)
	case '"':
		return l.str()
	}

	return l.errorToken("Unexpected character.")
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) advance() byte {
	ch := l.input[l.position]
	l.position++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.input[l.position]
}

func (l *Lexer) peekNext() byte {
	if l.position+1 >= len(l.input) {
		return 0
	}
	return l.input[l.position+1]
}

func (l *Lexer) match(expected byte) bool {
	if l.atEnd() || l.input[l.position] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.peek() {
		case ' ', '\r', '\t', '\n':
			l.advance()
		case '/':
			if l.peekNext() != '/' {
				return
			}
			// A comment goes until the end of the line.
			for l.peek() != '\n' && !l.atEnd() {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) identifier() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	return l.newToken(token.LookupIdent(l.input[l.start:l.position]))
}

func (l *Lexer) number() token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance() // consume '.'
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.newToken(token.NUMBER)
}

func (l *Lexer) str() token.Token {
	for l.peek() != '"' && !l.atEnd() {
		l.advance()
	}
	if l.atEnd() {
		return l.errorToken("Unterminated string.")
	}
	l.advance() // closing quote
	return l.newToken(token.STRING)
}

func (l *Lexer) newToken(t token.Type) token.Token {
	return token.Token{
		Type:   t,
		Lexeme: l.input[l.start:l.position],
		Line:   l.startLine,
		Col:    l.startCol,
	}
}

func (l *Lexer) errorToken(message string) token.Token {
	return token.Token{
		Type:   token.ERROR,
		Lexeme: message,
		Line:   l.line,
		Col:    l.startCol,
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
