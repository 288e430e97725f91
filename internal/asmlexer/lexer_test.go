package asmlexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexerBasicInstruction(t *testing.T) {
	toks, err := New("t.vasm", "add x, a, b\n").Tokens()
	require.NoError(t, err)
	assert.Equal(t, []Kind{Ident, Ident, Comma, Ident, Comma, Ident, Newline, EOF}, kinds(toks))
	assert.Equal(t, "add", toks[0].Text)
}

func TestLexerDirectiveAndLabel(t *testing.T) {
	toks, err := New("t.vasm", ".text\nloop:\n  jmp loop\n").Tokens()
	require.NoError(t, err)
	assert.Equal(t, Directive, toks[0].Kind)
	assert.Equal(t, "text", toks[0].Text)
	assert.Equal(t, Ident, toks[2].Kind)
	assert.Equal(t, Colon, toks[3].Kind)
}

func TestLexerLocalLabel(t *testing.T) {
	toks, err := New("t.vasm", ".loop:\n  jmp .loop\n").Tokens()
	require.NoError(t, err)
	assert.Equal(t, Label, toks[0].Kind)
	assert.Equal(t, ".loop", toks[0].Text)
	assert.Equal(t, Colon, toks[1].Kind)
	assert.Equal(t, Label, toks[4].Kind)
	assert.Equal(t, ".loop", toks[4].Text)
}

func TestLexerComments(t *testing.T) {
	toks, err := New("t.vasm", "; a comment\nadd x, a, b ; trailing\n").Tokens()
	require.NoError(t, err)
	assert.Equal(t, []Kind{Newline, Ident, Ident, Comma, Ident, Comma, Ident, Newline, EOF}, kinds(toks))
}

func TestLexerNumbers(t *testing.T) {
	toks, err := New("t.vasm", "-42 3.14 2.5e-3\n").Tokens()
	require.NoError(t, err)
	assert.Equal(t, "-42", toks[0].Text)
	assert.Equal(t, "3.14", toks[1].Text)
	assert.Equal(t, "2.5e-3", toks[2].Text)
}

func TestLexerString(t *testing.T) {
	toks, err := New("t.vasm", `"hi\n"` + "\n").Tokens()
	require.NoError(t, err)
	assert.Equal(t, String, toks[0].Kind)
	assert.Equal(t, "hi\n", toks[0].Text)
}

func TestLexerUnterminatedString(t *testing.T) {
	_, err := New("t.vasm", `"oops`).Tokens()
	assert.Error(t, err)
}

func TestLexerUnexpectedChar(t *testing.T) {
	_, err := New("t.vasm", "@").Tokens()
	assert.Error(t, err)
}
