// Package lexer turns Plox source text into a token stream, collecting
// every lexical error it finds rather than stopping at the first one.
package lexer

import (
	"strconv"
	"strings"

	"github.com/sdecook/plox/internal/ploxerr"
	"github.com/sdecook/plox/internal/token"
)

// Lexer scans a single source string into tokens.
type Lexer struct {
	src   []byte
	line  int
	idx   int // index of the current character
	ch    byte
	diags []ploxerr.Diagnostic
}

// New creates a Lexer over source, ready to Scan.
func New(source string) *Lexer {
	return &Lexer{src: []byte(source), line: 1, idx: -1}
}

// Scan runs the lexer to completion and returns the token stream (always
// terminated by a single EOF token) plus any diagnostics collected along
// the way. A non-empty diagnostics slice means the parser must not run on
// this token stream.
func (l *Lexer) Scan() ([]token.Token, []ploxerr.Diagnostic) {
	toks := make([]token.Token, 0, len(l.src)/2+1)

	for l.advance() {
		switch l.ch {
		case ' ', '\t', '\r':
			// nothing
		case '\n':
			l.line++
		case '(':
			toks = append(toks, l.simple(token.LEFT_PAREN))
		case ')':
			toks = append(toks, l.simple(token.RIGHT_PAREN))
		case '{':
			toks = append(toks, l.simple(token.LEFT_BRACE))
		case '}':
			toks = append(toks, l.simple(token.RIGHT_BRACE))
		case ',':
			toks = append(toks, l.simple(token.COMMA))
		case '.':
			toks = append(toks, l.simple(token.DOT))
		case '-':
			toks = append(toks, l.simple(token.MINUS))
		case '+':
			toks = append(toks, l.simple(token.PLUS))
		case ';':
			toks = append(toks, l.simple(token.SEMICOLON))
		case '*':
			toks = append(toks, l.simple(token.STAR))
		case '/':
			if l.peek() == '/' {
				l.skipLineComment()
			} else {
				toks = append(toks, l.simple(token.SLASH))
			}
		case '=':
			toks = append(toks, l.compound('=', token.EQUAL_EQUAL, token.EQUAL))
		case '!':
			toks = append(toks, l.compound('=', token.BANG_EQUAL, token.BANG))
		case '<':
			toks = append(toks, l.compound('=', token.LESS_EQUAL, token.LESS))
		case '>':
			toks = append(toks, l.compound('=', token.GREATER_EQUAL, token.GREATER))
		case '"':
			if tok, ok := l.scanString(); ok {
				toks = append(toks, tok)
			}
		default:
			switch {
			case isDigit(l.ch):
				toks = append(toks, l.scanNumber())
			case isAlpha(l.ch):
				toks = append(toks, l.scanIdentifier())
			default:
				l.errorf("Unexpected character: %s", string(l.ch))
			}
		}
	}

	toks = append(toks, token.Token{Kind: token.EOF, Line: l.line})
	return toks, l.diags
}

func (l *Lexer) advance() bool {
	if l.idx >= len(l.src)-1 {
		return false
	}
	l.idx++
	l.ch = l.src[l.idx]
	return true
}

func (l *Lexer) peek() byte {
	if l.idx >= len(l.src)-1 {
		return 0
	}
	return l.src[l.idx+1]
}

func (l *Lexer) peekTwo() byte {
	if l.idx >= len(l.src)-2 {
		return 0
	}
	return l.src[l.idx+2]
}

func (l *Lexer) simple(kind token.Kind) token.Token {
	return token.Token{Kind: kind, Lexeme: string(l.ch), Line: l.line}
}

// compound peeks for `follow`; on a match it consumes it and emits `matched`,
// otherwise it emits `unmatched` for the single character already read.
func (l *Lexer) compound(follow byte, matched, unmatched token.Kind) token.Token {
	if l.peek() == follow {
		start := l.ch
		l.advance()
		return token.Token{Kind: matched, Lexeme: string(start) + string(follow), Line: l.line}
	}
	return l.simple(unmatched)
}

func (l *Lexer) skipLineComment() {
	for l.peek() != '\n' && l.peek() != 0 {
		l.advance()
	}
}

// scanString reads a "..."-delimited literal. The text inside the quotes is
// copied verbatim: Plox has no escape sequences.
func (l *Lexer) scanString() (token.Token, bool) {
	startLine := l.line
	var sb strings.Builder
	for {
		if l.peek() == 0 {
			l.errorf("Unterminated string.")
			return token.Token{}, false
		}
		if l.peek() == '"' {
			l.advance()
			break
		}
		l.advance()
		if l.ch == '\n' {
			l.line++
		}
		sb.WriteByte(l.ch)
	}
	return token.Token{Kind: token.STRING, Lexeme: sb.String(), Literal: sb.String(), Line: startLine}, true
}

func (l *Lexer) scanNumber() token.Token {
	start := l.idx
	startLine := l.line
	dots := 0
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' {
		dots++
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	// A second '.' immediately following a completed number is malformed:
	// report it but keep the first number as a token so scanning continues.
	if l.peek() == '.' && isDigit(l.peekTwo()) {
		l.errorf("Malformed number: too many decimal points.")
	}

	lexeme := string(l.src[start : l.idx+1])
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		l.errorf("Malformed number literal: %s", lexeme)
		f = 0
	}
	return token.Token{Kind: token.NUMBER, Lexeme: lexeme, Literal: strconv.FormatFloat(f, 'g', -1, 64), Line: startLine}
}

func (l *Lexer) scanIdentifier() token.Token {
	start := l.idx
	for isAlphaNumeric(l.peek()) {
		l.advance()
	}
	text := string(l.src[start : l.idx+1])
	if kind, ok := token.Keywords[text]; ok {
		return token.Token{Kind: kind, Lexeme: text, Line: l.line}
	}
	return token.Token{Kind: token.IDENTIFIER, Lexeme: text, Literal: text, Line: l.line}
}

func (l *Lexer) errorf(format string, args ...any) {
	l.diags = append(l.diags, ploxerr.NewLexical(l.line, format, args...))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool { return isAlpha(c) || isDigit(c) }
