package stdlib

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varvm/internal/assembler"
)

func TestGetAcceptsAllLookupNames(t *testing.T) {
	for _, name := range []string{"prelude", "prelude.vasm", "stdlib/prelude.vasm"} {
		src, ok := Get(name)
		require.Truef(t, ok, "expected %q to resolve", name)
		assert.Contains(t, src, "is_even")
	}
	for _, name := range []string{"math", "math.vasm", "stdlib/math.vasm"} {
		src, ok := Get(name)
		require.Truef(t, ok, "expected %q to resolve", name)
		assert.Contains(t, src, "hypot")
	}
}

func TestGetUnknownName(t *testing.T) {
	_, ok := Get("nonsense")
	assert.False(t, ok)
}

func TestListIsStable(t *testing.T) {
	assert.Equal(t, []string{"prelude.vasm", "math.vasm"}, List())
}

// stdlibLoader lets the assembler resolve `include` statements against
// the embedded library, the same shape a CLI-level include resolver uses.
type stdlibLoader struct{}

func (stdlibLoader) Load(fromFile, path string) (string, string, error) {
	src, ok := Get(path)
	if !ok {
		return "", "", assertErr(path)
	}
	return path, src, nil
}

func assertErr(path string) error {
	return &notFoundError{path}
}

type notFoundError struct{ path string }

func (e *notFoundError) Error() string { return "stdlib: no such file " + e.path }

func TestPreludeAssembles(t *testing.T) {
	src := strings.Join([]string{
		"include \"prelude\"",
		"",
		".text",
		"main:",
		"func_begin main, i32",
		"local i32 n",
		"local i32 r",
		"set n, 4",
		"push_arg n",
		"call r, is_even, n",
		"ret r",
		"func_end",
	}, "\n") + "\n"

	prog, err := assembler.New(stdlibLoader{}).Assemble("main.vasm", src)
	require.NoError(t, err)
	assert.Contains(t, prog.Functions, "is_even")
	assert.Contains(t, prog.Functions, "main")
}
