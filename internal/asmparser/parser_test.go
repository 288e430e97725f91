package asmparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varvm/internal/asmlexer"
)

func parse(t *testing.T, src string) []Item {
	t.Helper()
	toks, err := asmlexer.New("t.vasm", src).Tokens()
	require.NoError(t, err)
	items, err := New("t.vasm", toks).Parse()
	require.NoError(t, err)
	return items
}

func TestParserSections(t *testing.T) {
	items := parse(t, ".data\nglobal i32 counter\n.text\nadd x, a, b\n")
	require.Len(t, items, 4)
	assert.Equal(t, SectionDirective, items[0].Kind)
	assert.Equal(t, "data", items[0].Section)
	assert.Equal(t, Stmt, items[1].Kind)
	assert.Equal(t, "global", items[1].Mnemonic)
	assert.Equal(t, SectionDirective, items[2].Kind)
	assert.Equal(t, "text", items[2].Section)
}

func TestParserLabelAndJump(t *testing.T) {
	items := parse(t, "loop:\n  jmp loop\n")
	require.Len(t, items, 2)
	assert.Equal(t, LabelDef, items[0].Kind)
	assert.Equal(t, "loop", items[0].Label)
	assert.Equal(t, "jmp", items[1].Mnemonic)
	require.Len(t, items[1].Operands, 1)
	assert.Equal(t, "loop", items[1].Operands[0].Text)
}

func TestParserCallWithUnderscoreResult(t *testing.T) {
	items := parse(t, "call _, f, a, b\n")
	require.Len(t, items, 1)
	require.Len(t, items[0].Operands, 4)
	assert.Equal(t, OpUnderscore, items[0].Operands[0].Kind)
}

func TestParserNumberAndStringOperands(t *testing.T) {
	items := parse(t, `set x, -5` + "\n" + `print "hi"` + "\n")
	require.Len(t, items, 2)
	assert.Equal(t, OpNumber, items[0].Operands[1].Kind)
	assert.Equal(t, OpString, items[1].Operands[0].Kind)
}

func TestParserTrailingGarbageOnLine(t *testing.T) {
	toks, err := asmlexer.New("t.vasm", "add x, a, b extra\n").Tokens()
	require.NoError(t, err)
	_, err = New("t.vasm", toks).Parse()
	assert.Error(t, err)
}
