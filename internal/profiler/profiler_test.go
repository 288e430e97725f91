package profiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"varvm/internal/assembler"
	"varvm/internal/opcode"
	"varvm/internal/vm"
)

type noopLoader struct{}

func (noopLoader) Load(fromFile, path string) (string, string, error) { return path, "", nil }

func runProfiled(t *testing.T, src string) *Data {
	t.Helper()
	prog, err := assembler.New(noopLoader{}).Assemble("main.vasm", src)
	require.NoError(t, err)

	p := New()
	m := vm.New(prog, p.Option())
	require.NoError(t, m.Run())
	return p.Data()
}

func TestRecordsInstructionCounts(t *testing.T) {
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

	data := runProfiled(t, src)
	assert.Greater(t, data.TotalInstructions, uint64(0))
	assert.Equal(t, uint64(2), data.InstructionCounts["SetVar"])
	assert.Equal(t, uint64(1), data.InstructionCounts["Add"])
}

func TestRecordsFunctionCalls(t *testing.T) {
	src := strings.Join([]string{
		".text",
		"main:",
		"func_begin main, i32",
		"local i32 r",
		"push_arg r",
		"call r, helper",
		"ret r",
		"func_end",
		"helper:",
		"func_begin helper, i32",
		"local i32 x",
		"set x, 1",
		"ret x",
		"func_end",
	}, "\n") + "\n"

	data := runProfiled(t, src)
	assert.Equal(t, uint64(1), data.FunctionCalls["helper"])
}

func TestReportContainsSections(t *testing.T) {
	data := NewData()
	data.Record(0, opcode.Print{Var: "x"})
	report := data.Report(5)
	assert.Contains(t, report, "=== varvm Profile Report ===")
	assert.Contains(t, report, "Total Instructions: 1")
	assert.Contains(t, report, "Instruction Breakdown:")
	assert.Contains(t, report, "Hot Spots")
}

func TestReportYAMLRoundTrips(t *testing.T) {
	data := NewData()
	data.Record(0, opcode.Print{Var: "x"})
	data.Record(1, opcode.Print{Var: "x"})

	out, err := data.ReportYAML(5)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &parsed))
	assert.EqualValues(t, 2, parsed["total_instructions"])
}
