package replconsole

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varvm/internal/assembler"
	"varvm/internal/vm"
)

type noopLoader struct{}

func (noopLoader) Load(fromFile, path string) (string, string, error) { return path, "", nil }

const sampleSrc = `.text
main:
func_begin main, i32
local i32 a
set a, 41
add a, a, a
ret a
func_end
`

func buildVM(t *testing.T) *vm.VM {
	t.Helper()
	prog, err := assembler.New(noopLoader{}).Assemble("main.vasm", sampleSrc)
	require.NoError(t, err)
	m := vm.New(prog)
	require.NoError(t, m.Start())
	return m
}

func TestContinueRunsToCompletion(t *testing.T) {
	m := buildVM(t)
	var out bytes.Buffer
	c := New(strings.NewReader("continue\n"), &out)

	require.NoError(t, c.Run(m))
	assert.Equal(t, 82, m.ExitCode())
	assert.Contains(t, out.String(), "varvm Debugger")
}

func TestUnknownCommandReportsError(t *testing.T) {
	m := buildVM(t)
	var out bytes.Buffer
	c := New(strings.NewReader("bogus\ncontinue\n"), &out)

	require.NoError(t, c.Run(m))
	assert.Contains(t, out.String(), "unknown command")
}

func TestQuitStopsWithoutFinishing(t *testing.T) {
	m := buildVM(t)
	var out bytes.Buffer
	c := New(strings.NewReader("quit\n"), &out)

	require.NoError(t, c.Run(m))
	assert.Contains(t, out.String(), "Exiting debugger")
	assert.NotEqual(t, 82, m.ExitCode())
}
