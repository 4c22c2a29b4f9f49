package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sdecook/plox/internal/token"
)

type tokenCase struct {
	Input    string
	Expected []token.Kind
}

func TestScan_Punctuation(t *testing.T) {
	tests := []tokenCase{
		{
			Input:    `( ) { } , . - + ; * /`,
			Expected: []token.Kind{token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE, token.COMMA, token.DOT, token.MINUS, token.PLUS, token.SEMICOLON, token.STAR, token.SLASH, token.EOF},
		},
		{
			Input:    `= == ! != < <= > >=`,
			Expected: []token.Kind{token.EQUAL, token.EQUAL_EQUAL, token.BANG, token.BANG_EQUAL, token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL, token.EOF},
		},
	}
	for _, tt := range tests {
		toks, diags := New(tt.Input).Scan()
		assert.Empty(t, diags)
		assert.Len(t, toks, len(tt.Expected))
		for i, k := range tt.Expected {
			assert.Equal(t, k, toks[i].Kind)
		}
	}
}

func TestScan_Keywords(t *testing.T) {
	toks, diags := New(`class fun var if else while print return break this super __init__ and or true false nil for`).Scan()
	assert.Empty(t, diags)
	want := []token.Kind{
		token.CLASS, token.FUN, token.VAR, token.IF, token.ELSE, token.WHILE, token.PRINT,
		token.RETURN, token.BREAK, token.THIS, token.SUPER, token.CONSTRUCTOR, token.AND, token.OR,
		token.TRUE, token.FALSE, token.NIL, token.FOR, token.EOF,
	}
	assert.Len(t, toks, len(want))
	for i, k := range want {
		assert.Equal(t, k, toks[i].Kind)
	}
}

func TestScan_StringNoEscapes(t *testing.T) {
	toks, diags := New(`"hello\nworld"`).Scan()
	assert.Empty(t, diags)
	assert.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, `hello\nworld`, toks[0].Literal)
}

func TestScan_UnterminatedString(t *testing.T) {
	_, diags := New(`"oops`).Scan()
	assert.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "Unterminated string")
}

func TestScan_Numbers(t *testing.T) {
	toks, diags := New(`123 1.5 0.25`).Scan()
	assert.Empty(t, diags)
	assert.Equal(t, "123", toks[0].Literal)
	assert.Equal(t, "1.5", toks[1].Literal)
	assert.Equal(t, "0.25", toks[2].Literal)
}

func TestScan_CollectsMultipleErrors(t *testing.T) {
	_, diags := New("@ var x = 1; #").Scan()
	assert.Len(t, diags, 2)
}

func TestScan_LineComment(t *testing.T) {
	toks, diags := New("// a comment\nvar x;").Scan()
	assert.Empty(t, diags)
	assert.Equal(t, token.VAR, toks[0].Kind)
	assert.Equal(t, 2, toks[0].Line)
}
