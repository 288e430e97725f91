package value

import (
	"fmt"
	"math"
)

func floatArm(v Value) (float64, error) {
	if v.Type != F32 && v.Type != F64 {
		return 0, fmt.Errorf("math function requires a float operand, got %s", v.Type)
	}
	return v.asFloat64(), nil
}

// Sqrt, Sin, Cos and Tan operate on F32/F64 only and return a value of
// the same arm as the input.
func (v Value) Sqrt() (Value, error) { return unaryFloatFn(v, math.Sqrt) }
func (v Value) Sin() (Value, error)  { return unaryFloatFn(v, math.Sin) }
func (v Value) Cos() (Value, error)  { return unaryFloatFn(v, math.Cos) }
func (v Value) Tan() (Value, error)  { return unaryFloatFn(v, math.Tan) }

func unaryFloatFn(v Value, fn func(float64) float64) (Value, error) {
	f, err := floatArm(v)
	if err != nil {
		return Value{}, err
	}
	r := fn(f)
	if v.Type == F32 {
		return F32V(float32(r)), nil
	}
	return F64V(r), nil
}

// Abs negates a negative I32/I64/F32/F64 value in place, same arm in
// and out (the same restriction as arithmetic).
func (v Value) Abs() (Value, error) {
	switch v.Type {
	case I32:
		n := v.raw.(int32)
		if n < 0 {
			n = -n
		}
		return I32V(n), nil
	case I64:
		n := v.raw.(int64)
		if n < 0 {
			n = -n
		}
		return I64V(n), nil
	case F32:
		return F32V(float32(math.Abs(float64(v.raw.(float32))))), nil
	case F64:
		return F64V(math.Abs(v.raw.(float64))), nil
	default:
		return Value{}, typeMismatch("abs", v, v)
	}
}

// Pow raises v to the power exp; both must be the same float arm.
func (v Value) Pow(exp Value) (Value, error) {
	if !sameArm(v, exp) || (v.Type != F32 && v.Type != F64) {
		return Value{}, typeMismatch("pow", v, exp)
	}
	base, _ := floatArm(v)
	e, _ := floatArm(exp)
	r := math.Pow(base, e)
	if v.Type == F32 {
		return F32V(float32(r)), nil
	}
	return F64V(r), nil
}

// Min and Max compare same-arm I32/I64/F32/F64 values, mirroring the
// arithmetic arm restriction.
func (v Value) Min(other Value) (Value, error) { return minMax(v, other, true) }
func (v Value) Max(other Value) (Value, error) { return minMax(v, other, false) }

func minMax(a, b Value, wantMin bool) (Value, error) {
	if !sameArm(a, b) || !numericArithArm(a.Type) {
		return Value{}, typeMismatch("min/max", a, b)
	}
	lt, err := a.Lt(b)
	if err != nil {
		return Value{}, err
	}
	if lt == wantMin {
		return a, nil
	}
	return b, nil
}

func numericArithArm(t DataType) bool {
	return t == I32 || t == I64 || t == F32 || t == F64
}
