package assembler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varvm/internal/opcode"
	"varvm/internal/value"
)

type memLoader map[string]string

func (m memLoader) Load(fromFile, path string) (string, string, error) {
	src, ok := m[path]
	if !ok {
		return "", "", fmt.Errorf("no such file %q", path)
	}
	return path, src, nil
}

func TestAssembleSimpleArithmetic(t *testing.T) {
	src := ".data\nglobal i32 result\n.text\nlocal i32 a\nlocal i32 b\nset a, 2\nset b, 3\nadd result, a, b\nexit 0\n"
	prog, err := New(memLoader{}).Assemble("main.vasm", src)
	require.NoError(t, err)
	assert.Len(t, prog.Globals, 1)
	found := false
	for _, op := range prog.Instructions {
		if _, ok := op.(opcode.Add); ok {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAssembleFuncBeginRequiresLabel(t *testing.T) {
	src := ".text\nfunc_begin main, i32\nfunc_end\n"
	_, err := New(memLoader{}).Assemble("main.vasm", src)
	assert.Error(t, err)
}

func TestAssembleFuncBeginEndRecordsRange(t *testing.T) {
	src := ".text\nmain:\nfunc_begin main, i32\nlocal i32 x\nfunc_end\n"
	prog, err := New(memLoader{}).Assemble("main.vasm", src)
	require.NoError(t, err)
	fn, ok := prog.Functions["main"]
	require.True(t, ok)
	assert.Equal(t, 0, fn.StartIP)
	assert.True(t, fn.EndIP > fn.StartIP)
}

func TestAssembleIncludeCycleDetected(t *testing.T) {
	loader := memLoader{
		"b.vasm": ".data\ninclude \"a.vasm\"\n.text\n",
	}
	src := ".data\ninclude \"b.vasm\"\n.text\n"
	loader["a.vasm"] = src
	_, err := New(loader).Assemble("a.vasm", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Circular include")
}

func TestAssembleDefineSubstitution(t *testing.T) {
	src := ".data\ndefine SIZE 16\n.text\nlocal i32 p\nalloc p, SIZE\n"
	prog, err := New(memLoader{}).Assemble("main.vasm", src)
	require.NoError(t, err)
	var alloc opcode.Alloc
	for _, op := range prog.Instructions {
		if a, ok := op.(opcode.Alloc); ok {
			alloc = a
		}
	}
	assert.Equal(t, "p", alloc.Dest)
	assert.Equal(t, value.Immediate(value.I32V(16)), alloc.Size)
}

func TestAssembleLocalLabelQualification(t *testing.T) {
	src := ".text\nmain:\nfunc_begin main, i32\n.loop:\njmp .loop\nfunc_end\n"
	prog, err := New(memLoader{}).Assemble("main.vasm", src)
	require.NoError(t, err)
	_, ok := prog.Labels["main:.loop"]
	assert.True(t, ok)
}

func TestAssembleCallUnderscoreResult(t *testing.T) {
	src := ".text\nmain:\nfunc_begin main, void\nlocal i32 a\ncall _, other, a\nfunc_end\n"
	prog, err := New(memLoader{}).Assemble("main.vasm", src)
	require.NoError(t, err)
	var call opcode.Call
	for _, op := range prog.Instructions {
		if c, ok := op.(opcode.Call); ok {
			call = c
		}
	}
	assert.Nil(t, call.Result)
}

func TestAssembleWrongArityFails(t *testing.T) {
	src := ".text\nadd x, a\n"
	_, err := New(memLoader{}).Assemble("main.vasm", src)
	assert.Error(t, err)
}
