package scanner_test

import (
	"testing"

	"github.com/lox-lang/loxvm/lang/scanner"
	"github.com/lox-lang/loxvm/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	s := scanner.New([]byte(src))
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, "(){};,+-*!===<=>=!=")
	require.True(t, len(toks) > 1)
	kinds := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []token.Kind{
		token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE,
		token.SEMICOLON, token.COMMA, token.PLUS, token.MINUS, token.STAR,
		token.BANG_EQUAL, token.EQUAL_EQUAL, token.LESS_EQUAL, token.GREATER_EQUAL,
		token.BANG_EQUAL, token.EOF,
	}, kinds)
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll(t, "var orchid = fun or nil")
	kinds := []token.Kind{token.VAR, token.IDENTIFIER, token.EQUAL, token.FUN, token.OR, token.NIL, token.EOF}
	require.Len(t, toks, len(kinds))
	for i, k := range kinds {
		assert.Equalf(t, k, toks[i].Kind, "token %d", i)
	}
	assert.Equal(t, "orchid", toks[1].Lexeme)
}

func TestScanStringAndNumber(t *testing.T) {
	toks := scanAll(t, `"hi there" 3.14 7`)
	require.Len(t, toks, 4)
	assert.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, `"hi there"`, toks[0].Lexeme)
	assert.Equal(t, token.NUMBER, toks[1].Kind)
	assert.Equal(t, "3.14", toks[1].Lexeme)
	assert.Equal(t, token.NUMBER, toks[2].Kind)
	assert.Equal(t, "7", toks[2].Lexeme)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"unterminated`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.ERROR, toks[0].Kind)
	assert.Equal(t, "Unterminated string.", toks[0].Lexeme)
}

func TestScanLineTracking(t *testing.T) {
	toks := scanAll(t, "var a = 1;\nvar b = 2;")
	var line2 int
	for _, tok := range toks {
		if tok.Kind == token.VAR && line2 == 0 && tok.Line == 1 {
			continue
		}
		if tok.Kind == token.VAR && tok.Line == 2 {
			line2 = tok.Line
		}
	}
	assert.Equal(t, 2, line2)
}

func TestScanCommentsSkipped(t *testing.T) {
	toks := scanAll(t, "// a comment\nvar a = 1;")
	assert.Equal(t, token.VAR, toks[0].Kind)
	assert.Equal(t, 2, toks[0].Line)
}
