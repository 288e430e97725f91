package bytecode

import (
	"encoding/binary"
	"math"

	"varvm/internal/asmerr"
	"varvm/internal/value"
)

type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) u8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, asmerr.New(asmerr.Assembly, "unexpected end of binary image reading a byte")
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, asmerr.New(asmerr.Assembly, "unexpected end of binary image reading a u32")
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, asmerr.New(asmerr.Assembly, "unexpected end of binary image reading a u64")
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *reader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *reader) i64() (int64, error) {
	v, err := r.u64()
	return int64(v), err
}

func (r *reader) f32() (float32, error) {
	v, err := r.u32()
	return math.Float32frombits(v), err
}

func (r *reader) f64() (float64, error) {
	v, err := r.u64()
	return math.Float64frombits(v), err
}

func (r *reader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	if r.remaining() < int(n) {
		return "", asmerr.New(asmerr.Assembly, "unexpected end of binary image reading a %d-byte string", n)
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func (r *reader) dataType() (value.DataType, error) {
	b, err := r.u8()
	if err != nil {
		return 0, err
	}
	if b > uint8(value.Void) {
		return 0, asmerr.New(asmerr.Assembly, "invalid data type byte %d", b)
	}
	return value.DataType(b), nil
}

func (r *reader) operand() (value.Operand, error) {
	tag, err := r.u8()
	if err != nil {
		return value.Operand{}, err
	}
	switch tag {
	case tagVariable:
		name, err := r.str()
		if err != nil {
			return value.Operand{}, err
		}
		return value.Variable(name), nil
	case tagLabel:
		name, err := r.str()
		if err != nil {
			return value.Operand{}, err
		}
		return value.Label(name), nil
	case tagType:
		dt, err := r.dataType()
		if err != nil {
			return value.Operand{}, err
		}
		return value.TypeOperand(dt), nil
	case tagImmediate:
		v, err := r.immediate()
		if err != nil {
			return value.Operand{}, err
		}
		return value.Immediate(v), nil
	default:
		return value.Operand{}, asmerr.New(asmerr.Assembly, "invalid operand tag %d", tag)
	}
}

func (r *reader) immediate() (value.Value, error) {
	tag, err := r.u8()
	if err != nil {
		return value.Value{}, err
	}
	switch tag {
	case valTagI32:
		i, err := r.i32()
		if err != nil {
			return value.Value{}, err
		}
		return value.I32V(i), nil
	case valTagI64:
		i, err := r.i64()
		if err != nil {
			return value.Value{}, err
		}
		return value.I64V(i), nil
	case valTagF32:
		f, err := r.f32()
		if err != nil {
			return value.Value{}, err
		}
		return value.F32V(f), nil
	case valTagF64:
		f, err := r.f64()
		if err != nil {
			return value.Value{}, err
		}
		return value.F64V(f), nil
	default:
		return value.Value{}, asmerr.New(asmerr.Assembly, "invalid immediate value-type tag %d", tag)
	}
}
