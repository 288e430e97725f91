package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varvm/internal/opcode"
	"varvm/internal/program"
	"varvm/internal/value"
)

func TestMagicBytes(t *testing.T) {
	assert.Equal(t, [4]byte{0x00, 0x43, 0x42, 0x56}, Magic)
}

func buildSample() *program.Program {
	p := program.New()
	p.AddGlobal(program.NewVariable("counter", value.I32, true))
	p.Emit(opcode.Label{Name: "main"})
	p.AddFunction(program.Function{Name: "main", ReturnType: value.I32, StartIP: 0, EndIP: 3})
	p.Emit(opcode.FuncBegin{Name: "main", ReturnType: value.I32})
	p.Emit(opcode.Add{Dest: "counter", Left: value.Immediate(value.I32V(1)), Right: value.Immediate(value.I32V(2))})
	p.Emit(opcode.FuncEnd{})
	p.AddString("greeting", "hi")
	return p
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := buildSample()
	data, err := Encode(p)
	require.NoError(t, err)
	require.Equal(t, Magic[:], data[:4])

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded.Globals, 1)
	assert.Equal(t, "counter", decoded.Globals[0].Name)
	require.Len(t, decoded.Instructions, 4)
	add, ok := decoded.Instructions[2].(opcode.Add)
	require.True(t, ok)
	assert.Equal(t, "counter", add.Dest)
	require.Len(t, decoded.Strings, 1)
	assert.Equal(t, "hi", decoded.Strings[0].Content)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode([]byte{0, 0, 0, 0, 1})
	assert.Error(t, err)
}

func TestDecodeRejectsTruncated(t *testing.T) {
	p := buildSample()
	data, err := Encode(p)
	require.NoError(t, err)
	_, err = Decode(data[:len(data)-3])
	assert.Error(t, err)
}

func TestImmediateOnlyEncodesFourArms(t *testing.T) {
	w := &writer{}
	err := w.immediate(value.I8V(1))
	assert.Error(t, err)

	w2 := &writer{}
	err = w2.immediate(value.I32V(1))
	assert.NoError(t, err)
}
