package disasm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varvm/internal/assembler"
)

type noopLoader struct{}

func (noopLoader) Load(fromFile, path string) (string, string, error) { return path, "", nil }

func TestDisassembleSimple(t *testing.T) {
	src := strings.Join([]string{
		".data",
		"global i32, result",
		"",
		".text",
		"main:",
		"func_begin main, i32",
		"local i32 n",
		"set n, 5",
		"print n",
		"ret 0",
		"func_end",
	}, "\n") + "\n"

	prog, err := assembler.New(noopLoader{}).Assemble("test.vasm", src)
	require.NoError(t, err)

	out := Disassemble(prog)

	assert.Contains(t, out, ".data")
	assert.Contains(t, out, "i32, result")
	assert.Contains(t, out, "main:")
	assert.Contains(t, out, "func_begin main, i32")
	assert.Contains(t, out, "local i32 n")
	assert.Contains(t, out, "set n, 5")
	assert.Contains(t, out, "print n")
	assert.Contains(t, out, "ret 0")
	assert.Contains(t, out, "func_end")
}

func TestDisassembleVoidCall(t *testing.T) {
	src := strings.Join([]string{
		".text",
		"helper:",
		"func_begin helper, void",
		"ret",
		"func_end",
		"main:",
		"func_begin main, i32",
		"call _, helper",
		"ret 0",
		"func_end",
	}, "\n") + "\n"

	prog, err := assembler.New(noopLoader{}).Assemble("test.vasm", src)
	require.NoError(t, err)

	out := Disassemble(prog)
	assert.Contains(t, out, "call _, helper")
}
