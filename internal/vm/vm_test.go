package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varvm/internal/assembler"
)

type noopLoader struct{}

func (noopLoader) Load(fromFile, path string) (string, string, error) {
	return path, "", nil
}

func assemble(t *testing.T, src string) *VM {
	t.Helper()
	prog, err := assembler.New(noopLoader{}).Assemble("main.vasm", src)
	require.NoError(t, err)
	var out bytes.Buffer
	return New(prog, WithStdout(&out))
}

func assembleWithOutput(t *testing.T, src string) (*VM, *bytes.Buffer) {
	t.Helper()
	prog, err := assembler.New(noopLoader{}).Assemble("main.vasm", src)
	require.NoError(t, err)
	var out bytes.Buffer
	return New(prog, WithStdout(&out)), &out
}

func TestArithmeticProgram(t *testing.T) {
	src := strings.Join([]string{
		".text",
		"main:",
		"func_begin main, i32",
		"local i32 a",
		"local i32 b",
		"local i32 sum",
		"set a, 2",
		"set b, 3",
		"add sum, a, b",
		"ret sum",
		"func_end",
	}, "\n") + "\n"
	v := assemble(t, src)
	require.NoError(t, v.Run())
	assert.Equal(t, 5, v.ExitCode())
}

func TestFactorialRecursive(t *testing.T) {
	src := strings.Join([]string{
		".text",
		"main:",
		"func_begin main, i32",
		"local i32 n",
		"local i32 result",
		"set n, 5",
		"push_arg n",
		"call result, fact, n",
		"ret result",
		"func_end",
		"fact:",
		"func_begin fact, i32",
		"local i32 n",
		"local i32 isbase",
		"local i32 nminus1",
		"local i32 rec",
		"local i32 result",
		"pop_arg n",
		"le isbase, n, 1",
		"jz isbase, .recurse",
		"ret n",
		".recurse:",
		"sub nminus1, n, 1",
		"push_arg nminus1",
		"call rec, fact, nminus1",
		"mul result, n, rec",
		"ret result",
		"func_end",
	}, "\n") + "\n"
	v := assemble(t, src)
	require.NoError(t, v.Run())
	assert.Equal(t, 120, v.ExitCode())
}

func TestHeapAllocStoreLoadFree(t *testing.T) {
	src := strings.Join([]string{
		".text",
		"main:",
		"func_begin main, i32",
		"local i32 p",
		"local i32 x",
		"local i32 y",
		"alloc p, 4",
		"set x, 42",
		"store p, x, i32",
		"load y, p, i32",
		"free p",
		"ret y",
		"func_end",
	}, "\n") + "\n"
	v := assemble(t, src)
	require.NoError(t, v.Run())
	assert.Equal(t, 42, v.ExitCode())
}

func TestGetAddrIsStableAcrossRepeatedCalls(t *testing.T) {
	src := strings.Join([]string{
		".text",
		"main:",
		"func_begin main, i32",
		"local i32 x",
		"local ptr p1",
		"local ptr p2",
		"local i32 same",
		"set x, 7",
		"get_addr p1, x",
		"get_addr p2, x",
		"eq same, p1, p2",
		"ret same",
		"func_end",
	}, "\n") + "\n"
	v := assemble(t, src)
	require.NoError(t, v.Run())
	assert.Equal(t, 1, v.ExitCode())
}

func TestCastSaturatesFloatToInt(t *testing.T) {
	src := strings.Join([]string{
		".text",
		"main:",
		"func_begin main, i32",
		"local f64 f",
		"local i32 i",
		"set f, 1000000000000.0",
		"cast i, f, i32",
		"ret i",
		"func_end",
	}, "\n") + "\n"
	v := assemble(t, src)
	require.NoError(t, v.Run())
	assert.Equal(t, 2147483647, v.ExitCode())
}

func TestPrintWritesToStdout(t *testing.T) {
	src := strings.Join([]string{
		".text",
		"main:",
		"func_begin main, i32",
		"local i32 x",
		"set x, 7",
		"print x",
		"ret x",
		"func_end",
	}, "\n") + "\n"
	v, out := assembleWithOutput(t, src)
	require.NoError(t, v.Run())
	assert.Equal(t, "x: i32(7)\n", out.String())
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	src := strings.Join([]string{
		".text",
		"main:",
		"func_begin main, i32",
		"print ghost",
		"ret",
		"func_end",
	}, "\n") + "\n"
	v := assemble(t, src)
	assert.Error(t, v.Run())
}

func TestFuncBeginFallthroughSkipsNextFunction(t *testing.T) {
	src := strings.Join([]string{
		".text",
		"main:",
		"func_begin main, i32",
		"local i32 x",
		"set x, 1",
		"func_end",
		"helper:",
		"func_begin helper, i32",
		"local i32 y",
		"set y, 99",
		"ret y",
		"func_end",
	}, "\n") + "\n"
	v := assemble(t, src)
	// main falls off its own func_end without returning; execution must
	// skip straight over helper's body rather than run it under main's
	// frame, so it runs off the end of the program instead of exiting
	// with helper's unrelated return value.
	err := v.Run()
	require.Error(t, err)
	assert.NotEqual(t, 99, v.ExitCode())
}

func TestExitStopsImmediately(t *testing.T) {
	src := strings.Join([]string{
		".text",
		"main:",
		"func_begin main, i32",
		"exit 9",
		"ret 0",
		"func_end",
	}, "\n") + "\n"
	v := assemble(t, src)
	require.NoError(t, v.Run())
	assert.Equal(t, 9, v.ExitCode())
}
