package debugger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varvm/internal/assembler"
	"varvm/internal/vm"
)

type noopLoader struct{}

func (noopLoader) Load(fromFile, path string) (string, string, error) { return path, "", nil }

func buildVM(t *testing.T, src string) *vm.VM {
	t.Helper()
	prog, err := assembler.New(noopLoader{}).Assemble("main.vasm", src)
	require.NoError(t, err)
	m := vm.New(prog)
	require.NoError(t, m.Start())
	return m
}

const sampleSrc = `.text
main:
func_begin main, i32
local i32 a
local i32 b
local i32 sum
set a, 2
set b, 3
add sum, a, b
ret sum
func_end
`

func TestBreakpointStopsExecution(t *testing.T) {
	m := buildVM(t, sampleSrc)
	d := New()

	fn := m.Program.Functions["main"]
	breakIP := fn.EndIP - 2 // the "add sum, a, b" instruction
	_, err := d.Execute(m, Command{Kind: Break, IP: breakIP})
	require.NoError(t, err)

	running, err := d.RunUntilPause(m)
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, breakIP, m.IP())
	assert.True(t, d.IsPaused())
}

func TestStepAdvancesOneInstruction(t *testing.T) {
	m := buildVM(t, sampleSrc)
	d := New()
	start := m.IP()

	_, err := d.Execute(m, Command{Kind: Step})
	require.NoError(t, err)
	running, err := d.RunUntilPause(m)
	require.NoError(t, err)
	assert.True(t, running)
	assert.Greater(t, m.IP(), start)
}

func TestContinueRunsToCompletion(t *testing.T) {
	m := buildVM(t, sampleSrc)
	d := New()

	_, err := d.Execute(m, Command{Kind: Continue})
	require.NoError(t, err)
	running, err := d.RunUntilPause(m)
	require.NoError(t, err)
	assert.False(t, running)
	assert.Equal(t, 5, m.ExitCode())
}

func TestPrintLocalsAfterSteppingPastSet(t *testing.T) {
	m := buildVM(t, sampleSrc)
	d := New()

	fn := m.Program.Functions["main"]
	breakIP := fn.EndIP - 2 // the "add sum, a, b" instruction
	_, err := d.Execute(m, Command{Kind: Break, IP: breakIP})
	require.NoError(t, err)
	_, err = d.RunUntilPause(m)
	require.NoError(t, err)

	out, err := d.Execute(m, Command{Kind: Locals})
	require.NoError(t, err)
	assert.Contains(t, out, "a:")

	out, err = d.Execute(m, Command{Kind: Print, Arg: "a"})
	require.NoError(t, err)
	assert.Contains(t, out, "a:")
}

func TestBreakFunctionUnknownErrors(t *testing.T) {
	m := buildVM(t, sampleSrc)
	d := New()
	_, err := d.Execute(m, Command{Kind: BreakFunction, Arg: "ghost"})
	assert.Error(t, err)
}

func TestHelpAndDisasm(t *testing.T) {
	m := buildVM(t, sampleSrc)
	d := New()

	help, err := d.Execute(m, Command{Kind: Help})
	require.NoError(t, err)
	assert.True(t, strings.Contains(help, "Execution Control"))

	dis, err := d.Execute(m, Command{Kind: Disasm})
	require.NoError(t, err)
	assert.Contains(t, dis, "main:")
}
