package value

import "fmt"

// Add, Sub, Mul, Div, Modulo are defined only for same-arm I32/I64/F32/F64
// pairs; every other combination is a type-mismatch error. Integer
// division/modulo by zero errors; float division propagates NaN/Inf.

func (a Value) Add(b Value) (Value, error) { return arith("add", a, b, addOp) }
func (a Value) Sub(b Value) (Value, error) { return arith("sub", a, b, subOp) }
func (a Value) Mul(b Value) (Value, error) { return arith("mul", a, b, mulOp) }
func (a Value) Div(b Value) (Value, error) { return arith("div", a, b, divOp) }
func (a Value) Modulo(b Value) (Value, error) { return arith("modulo", a, b, modOp) }

type arithFn func(a, b Value) (Value, error)

func arith(name string, a, b Value, fn arithFn) (Value, error) {
	if !sameArm(a, b) {
		return Value{}, typeMismatch(name, a, b)
	}
	switch a.Type {
	case I32, I64, F32, F64:
		return fn(a, b)
	default:
		return Value{}, fmt.Errorf("%s: unsupported type %s", name, a.Type)
	}
}

func addOp(a, b Value) (Value, error) {
	switch a.Type {
	case I32:
		return I32V(a.raw.(int32) + b.raw.(int32)), nil
	case I64:
		return I64V(a.raw.(int64) + b.raw.(int64)), nil
	case F32:
		return F32V(a.raw.(float32) + b.raw.(float32)), nil
	case F64:
		return F64V(a.raw.(float64) + b.raw.(float64)), nil
	}
	panic("unreachable")
}

func subOp(a, b Value) (Value, error) {
	switch a.Type {
	case I32:
		return I32V(a.raw.(int32) - b.raw.(int32)), nil
	case I64:
		return I64V(a.raw.(int64) - b.raw.(int64)), nil
	case F32:
		return F32V(a.raw.(float32) - b.raw.(float32)), nil
	case F64:
		return F64V(a.raw.(float64) - b.raw.(float64)), nil
	}
	panic("unreachable")
}

func mulOp(a, b Value) (Value, error) {
	switch a.Type {
	case I32:
		return I32V(a.raw.(int32) * b.raw.(int32)), nil
	case I64:
		return I64V(a.raw.(int64) * b.raw.(int64)), nil
	case F32:
		return F32V(a.raw.(float32) * b.raw.(float32)), nil
	case F64:
		return F64V(a.raw.(float64) * b.raw.(float64)), nil
	}
	panic("unreachable")
}

func divOp(a, b Value) (Value, error) {
	switch a.Type {
	case I32:
		d := b.raw.(int32)
		if d == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return I32V(a.raw.(int32) / d), nil
	case I64:
		d := b.raw.(int64)
		if d == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return I64V(a.raw.(int64) / d), nil
	case F32:
		return F32V(a.raw.(float32) / b.raw.(float32)), nil
	case F64:
		return F64V(a.raw.(float64) / b.raw.(float64)), nil
	}
	panic("unreachable")
}

func modOp(a, b Value) (Value, error) {
	switch a.Type {
	case I32:
		d := b.raw.(int32)
		if d == 0 {
			return Value{}, fmt.Errorf("modulo by zero")
		}
		return I32V(a.raw.(int32) % d), nil
	case I64:
		d := b.raw.(int64)
		if d == 0 {
			return Value{}, fmt.Errorf("modulo by zero")
		}
		return I64V(a.raw.(int64) % d), nil
	default:
		return Value{}, fmt.Errorf("modulo: not defined on floats")
	}
}

// Neg is defined only for I32/I64/F32/F64.
func (a Value) Neg() (Value, error) {
	switch a.Type {
	case I32:
		return I32V(-a.raw.(int32)), nil
	case I64:
		return I64V(-a.raw.(int64)), nil
	case F32:
		return F32V(-a.raw.(float32)), nil
	case F64:
		return F64V(-a.raw.(float64)), nil
	default:
		return Value{}, fmt.Errorf("neg: unsupported type %s", a.Type)
	}
}

// Equals is cross-arm and numeric: if either side is a float arm, both
// widen to float64 and compare with IEEE equality; otherwise both widen
// to signed int64 (Ptr widens as its bit pattern). Never fails.
func (a Value) Equals(b Value) bool {
	if a.Type.IsFloat() || b.Type.IsFloat() {
		return a.numericFloat() == b.numericFloat()
	}
	return a.numericInt() == b.numericInt()
}

func (v Value) numericFloat() float64 {
	if v.Type.IsFloat() {
		return v.asFloat64()
	}
	if v.Type.IsInteger() {
		if isSignedArm(v.Type) {
			return float64(v.asInt64())
		}
		return float64(v.asUint64())
	}
	if v.Type == Ptr {
		return float64(v.asUint64())
	}
	return 0
}

func (v Value) numericInt() int64 {
	if isSignedArm(v.Type) {
		return v.asInt64()
	}
	if v.Type == Ptr || isUnsignedArm(v.Type) {
		return int64(v.asUint64())
	}
	return 0
}

func isSignedArm(d DataType) bool {
	switch d {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

func isUnsignedArm(d DataType) bool {
	switch d {
	case U8, U16, U32, U64:
		return true
	default:
		return false
	}
}
