package value

import "fmt"

// And, Or, Xor are defined for all eight integer arms (not float, not Ptr).
func (a Value) And(b Value) (Value, error) { return bitwiseOp("and", a, b, func(x, y uint64) uint64 { return x & y }) }
func (a Value) Or(b Value) (Value, error)  { return bitwiseOp("or", a, b, func(x, y uint64) uint64 { return x | y }) }
func (a Value) Xor(b Value) (Value, error) { return bitwiseOp("xor", a, b, func(x, y uint64) uint64 { return x ^ y }) }

func bitwiseOp(name string, a, b Value, fn func(x, y uint64) uint64) (Value, error) {
	if !sameArm(a, b) {
		return Value{}, typeMismatch(name, a, b)
	}
	if !a.Type.IsInteger() {
		return Value{}, fmt.Errorf("%s: unsupported type %s", name, a.Type)
	}
	return fromBits(a.Type, fn(a.bitsU64(), b.bitsU64())), nil
}

// Not (bitwise complement) is defined for all eight integer arms.
func (a Value) Not() (Value, error) {
	if !a.Type.IsInteger() {
		return Value{}, fmt.Errorf("not: unsupported type %s", a.Type)
	}
	return fromBits(a.Type, ^a.bitsU64()), nil
}

// ShiftLeft, ShiftRight shift the value's bit pattern by amount, which
// must resolve to a non-negative I32 or a U32. The shift amount wraps
// modulo the operand's bit width (Rust's wrapping_shl/wrapping_shr), so
// an over-wide shift never panics.
func (a Value) ShiftLeft(amount Value) (Value, error) {
	return shiftOp("shl", a, amount, func(bits uint64, width uint, n uint) uint64 {
		return bits << (n % width)
	})
}

func (a Value) ShiftRight(amount Value) (Value, error) {
	return shiftOp("shr", a, amount, func(bits uint64, width uint, n uint) uint64 {
		return bits >> (n % width)
	})
}

func shiftOp(name string, a, amount Value, fn func(bits uint64, width uint, n uint) uint64) (Value, error) {
	if !a.Type.IsInteger() {
		return Value{}, fmt.Errorf("%s: unsupported type %s", name, a.Type)
	}
	n, err := shiftAmount(amount)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", name, err)
	}
	width := uint(a.Type.Size() * 8)
	masked := maskBits(a.Type, a.bitsU64())
	return fromBits(a.Type, fn(masked, width, n)), nil
}

func shiftAmount(amount Value) (uint, error) {
	switch amount.Type {
	case I32:
		n := amount.raw.(int32)
		if n < 0 {
			return 0, fmt.Errorf("shift amount must be non-negative, got %d", n)
		}
		return uint(n), nil
	case U32:
		return uint(amount.raw.(uint32)), nil
	default:
		return 0, fmt.Errorf("shift amount must be i32 or u32, got %s", amount.Type)
	}
}

// maskBits clamps a 64-bit-extended bit pattern down to the arm's actual
// width before a shift, so sign-extended bits above the width don't leak
// into the shifted result.
func maskBits(dtype DataType, bits uint64) uint64 {
	width := uint(dtype.Size() * 8)
	if width >= 64 {
		return bits
	}
	return bits & ((uint64(1) << width) - 1)
}

// fromBits reinterprets a raw bit pattern as dtype's Go-native
// representation, truncating to the arm's width.
func fromBits(dtype DataType, bits uint64) Value {
	switch dtype {
	case I8:
		return I8V(int8(bits))
	case I16:
		return I16V(int16(bits))
	case I32:
		return I32V(int32(bits))
	case I64:
		return I64V(int64(bits))
	case U8:
		return U8V(uint8(bits))
	case U16:
		return U16V(uint16(bits))
	case U32:
		return U32V(uint32(bits))
	case U64:
		return U64V(bits)
	case Ptr:
		return PtrV(bits)
	default:
		panic("fromBits on non-integer type")
	}
}
