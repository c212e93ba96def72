package repl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexRecognizesTokenKinds(t *testing.T) {
	tokens, err := Lex("reboot delay 150ms retries=2, --force 42\n")
	require.NoError(t, err)

	kinds := make([]TokenKind, 0, len(tokens))
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenKind{
		TokenIdent, TokenIdent, TokenDuration, TokenIdent, TokenEquals,
		TokenInteger, TokenComma, TokenFlag, TokenInteger, TokenEol,
	}, kinds)
}

func TestLexDurationTakesPriorityOverInteger(t *testing.T) {
	tokens, err := Lex("100ms 2s 30")
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, TokenDuration, tokens[0].Kind)
	assert.Equal(t, "100ms", tokens[0].Lexeme)
	assert.Equal(t, TokenDuration, tokens[1].Kind)
	assert.Equal(t, "2s", tokens[1].Lexeme)
	assert.Equal(t, TokenInteger, tokens[2].Kind)
}

func TestLexTracksByteSpans(t *testing.T) {
	tokens, err := Lex("help reboot")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, 0, tokens[0].Start)
	assert.Equal(t, 4, tokens[0].End)
	assert.Equal(t, 5, tokens[1].Start)
	assert.Equal(t, 11, tokens[1].End)
}

func TestLexEmitsErrorTokenForUnknownSymbol(t *testing.T) {
	tokens, err := Lex("reboot now$")
	require.NoError(t, err)
	last := tokens[len(tokens)-1]
	assert.Equal(t, TokenError, last.Kind)
	assert.Equal(t, "$", last.Lexeme)
}

func TestLexCombinesCarriageReturnLineFeed(t *testing.T) {
	tokens, err := Lex("status\r\n")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, TokenEol, tokens[1].Kind)
	assert.Equal(t, "\r\n", tokens[1].Lexeme)
}

func TestLexRejectsOverlongInput(t *testing.T) {
	line := strings.Repeat("a ", MaxTokens+1)
	_, err := Lex(line)
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrTooManyTokens, perr.Kind)
}
