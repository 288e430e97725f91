package value

import (
	"fmt"
	"math"
)

// Cast converts v to target by the natural lossy/saturating numeric
// conversion: int-to-int truncates the bit pattern (two's-complement
// reinterpretation, matching Rust's `as`); float-to-int saturates to the
// target's range (NaN becomes zero); int/float-to-float rounds, and
// narrowing f64->f32 saturates to +/-Inf on overflow. Casting to Ptr
// requires a non-negative source; casting to Void always fails.
func (v Value) Cast(target DataType) (Value, error) {
	if target == Void {
		return Value{}, fmt.Errorf("cast: cannot cast to void")
	}

	if target == Ptr {
		u, err := v.AsUsize()
		if err != nil {
			return Value{}, fmt.Errorf("cast to ptr: %w", err)
		}
		return PtrV(u), nil
	}

	if target.IsFloat() {
		var f float64
		switch {
		case v.Type.IsFloat():
			f = v.asFloat64()
		case isSignedArm(v.Type):
			f = float64(v.asInt64())
		default:
			f = float64(v.asUint64())
		}
		if target == F32 {
			return F32V(float32(f)), nil
		}
		return F64V(f), nil
	}

	// target is a fixed-width integer arm.
	if v.Type.IsFloat() {
		f := v.asFloat64()
		if isSignedArm(target) {
			return fromBits(target, uint64(saturateFloatToSignedBits(f, target))), nil
		}
		return fromBits(target, saturateFloatToUnsignedBits(f, target)), nil
	}

	// int-to-int: truncate the bit pattern.
	return fromBits(target, v.bitsU64()), nil
}

// saturateFloatToSignedBits clamps f into target's signed range (NaN ->
// 0) and returns the two's-complement bit pattern of that clamped value.
func saturateFloatToSignedBits(f float64, target DataType) int64 {
	if math.IsNaN(f) {
		return 0
	}
	bits := uint(target.Size() * 8)
	min := -math.Exp2(float64(bits - 1))
	max := math.Exp2(float64(bits-1)) - 1
	if f <= min {
		return int64(min)
	}
	if f >= max {
		return int64(max)
	}
	return int64(f)
}

// saturateFloatToUnsignedBits clamps f into target's unsigned range
// (NaN/negative -> 0) and returns the bit pattern of that clamped value.
func saturateFloatToUnsignedBits(f float64, target DataType) uint64 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	bits := uint(target.Size() * 8)
	var max float64
	if bits >= 64 {
		max = math.MaxUint64
	} else {
		max = math.Exp2(float64(bits)) - 1
	}
	if f >= max {
		return uint64(max)
	}
	return uint64(f)
}
