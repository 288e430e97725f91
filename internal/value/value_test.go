package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	assert.Equal(t, I32V(0), Default(I32))
	assert.Equal(t, PtrV(0), Default(Ptr))
	assert.True(t, Default(F64).IsZero())
}

func TestArithmeticRestrictedToI32I64F32F64(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		ok   bool
	}{
		{"i32+i32", I32V(1), I32V(2), true},
		{"i64+i64", I64V(1), I64V(2), true},
		{"f32+f32", F32V(1), F32V(2), true},
		{"f64+f64", F64V(1), F64V(2), true},
		{"i8+i8", I8V(1), I8V(2), false},
		{"u32+u32", U32V(1), U32V(2), false},
		{"i32+i64", I32V(1), I64V(2), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.a.Add(tc.b)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	_, err := I32V(1).Div(I32V(0))
	assert.Error(t, err)

	v, err := F64V(1).Div(F64V(0))
	require.NoError(t, err)
	assert.True(t, v.raw.(float64) > 1e300 || v.String() == "+Inf")
}

func TestBitwiseAllIntegerArms(t *testing.T) {
	for _, dt := range []DataType{I8, I16, I32, I64, U8, U16, U32, U64} {
		a, b := Default(dt), Default(dt)
		_, err := a.And(b)
		assert.NoError(t, err, dt.String())
	}
	_, err := F32V(1).And(F32V(1))
	assert.Error(t, err)
	_, err = PtrV(1).And(PtrV(1))
	assert.Error(t, err)
}

func TestShiftWraps(t *testing.T) {
	// shifting an 8-bit value by 9 wraps to a shift of 1 (9 % 8).
	v, err := U8V(1).ShiftLeft(I32V(9))
	require.NoError(t, err)
	assert.Equal(t, U8V(2), v)
}

func TestEqualsCrossArm(t *testing.T) {
	assert.True(t, I32V(5).Equals(I64V(5)))
	assert.True(t, U8V(5).Equals(I32V(5)))
	assert.True(t, F32V(5).Equals(F64V(5)))
	assert.True(t, I32V(5).Equals(F64V(5)))
	assert.False(t, I32V(5).Equals(I32V(6)))
}

func TestCastSaturatesFloatToInt(t *testing.T) {
	v, err := F64V(1e30).Cast(I32)
	require.NoError(t, err)
	assert.Equal(t, I32V(2147483647), v)

	v, err = F64V(-1e30).Cast(U32)
	require.NoError(t, err)
	assert.Equal(t, U32V(0), v)
}

func TestCastIntToIntTruncatesBits(t *testing.T) {
	v, err := U8V(200).Cast(I8)
	require.NoError(t, err)
	assert.Equal(t, I8V(-56), v)
}

func TestCastToVoidFails(t *testing.T) {
	_, err := I32V(1).Cast(Void)
	assert.Error(t, err)
}

func TestCastToPtrRequiresNonNegative(t *testing.T) {
	_, err := I32V(-1).Cast(Ptr)
	assert.Error(t, err)

	v, err := I32V(42).Cast(Ptr)
	require.NoError(t, err)
	assert.Equal(t, PtrV(42), v)
}

func TestAsUsize(t *testing.T) {
	_, err := I32V(-1).AsUsize()
	assert.Error(t, err)

	u, err := U32V(5).AsUsize()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), u)
}
