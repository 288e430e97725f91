package vm

import (
	"encoding/binary"
	"math"

	"varvm/internal/value"
)

// decodeTyped reinterprets a little-endian byte slice of exactly
// dtype.Size() bytes as a Value of that type.
func decodeTyped(dtype value.DataType, b []byte) value.Value {
	switch dtype {
	case value.I8:
		return value.I8V(int8(b[0]))
	case value.I16:
		return value.I16V(int16(binary.LittleEndian.Uint16(b)))
	case value.I32:
		return value.I32V(int32(binary.LittleEndian.Uint32(b)))
	case value.I64:
		return value.I64V(int64(binary.LittleEndian.Uint64(b)))
	case value.U8:
		return value.U8V(b[0])
	case value.U16:
		return value.U16V(binary.LittleEndian.Uint16(b))
	case value.U32:
		return value.U32V(binary.LittleEndian.Uint32(b))
	case value.U64:
		return value.U64V(binary.LittleEndian.Uint64(b))
	case value.F32:
		return value.F32V(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case value.F64:
		return value.F64V(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	case value.Ptr:
		return value.PtrV(binary.LittleEndian.Uint64(b))
	default:
		return value.Default(dtype)
	}
}

// encodeTyped writes v's payload (reinterpreted/truncated to dtype) as
// little-endian bytes into b, which must be exactly dtype.Size() long.
func encodeTyped(dtype value.DataType, v value.Value, b []byte) {
	cast, err := v.Cast(dtype)
	if err != nil {
		cast = value.Default(dtype)
	}
	switch dtype {
	case value.I8, value.U8:
		bits, _ := bitsOf(cast)
		b[0] = byte(bits)
	case value.I16, value.U16:
		bits, _ := bitsOf(cast)
		binary.LittleEndian.PutUint16(b, uint16(bits))
	case value.I32, value.U32:
		bits, _ := bitsOf(cast)
		binary.LittleEndian.PutUint32(b, uint32(bits))
	case value.I64, value.U64:
		bits, _ := bitsOf(cast)
		binary.LittleEndian.PutUint64(b, bits)
	case value.F32:
		f, _ := cast.Float64()
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(f)))
	case value.F64:
		f, _ := cast.Float64()
		binary.LittleEndian.PutUint64(b, math.Float64bits(f))
	case value.Ptr:
		n, _ := cast.AsUsize()
		binary.LittleEndian.PutUint64(b, n)
	}
}

// bitsOf extracts an integer Value's raw bit pattern via its decimal
// string-free round trip through Int64/AsUsize, whichever applies.
func bitsOf(v value.Value) (uint64, error) {
	if n, err := v.AsUsize(); err == nil {
		return n, nil
	}
	i, err := v.Int64()
	if err != nil {
		return 0, err
	}
	return uint64(i), nil
}
