package bytecode

import (
	"bytes"
	"encoding/binary"
	"math"

	"varvm/internal/asmerr"
	"varvm/internal/value"
)

type writer struct {
	buf bytes.Buffer
}

func (w *writer) u8(v uint8)   { w.buf.WriteByte(v) }
func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}
func (w *writer) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}
func (w *writer) i32(v int32) { w.u32(uint32(v)) }
func (w *writer) i64(v int64) { w.u64(uint64(v)) }
func (w *writer) f32(v float32) { w.u32(math.Float32bits(v)) }
func (w *writer) f64(v float64) { w.u64(math.Float64bits(v)) }

func (w *writer) str(s string) {
	w.u32(uint32(len(s)))
	w.buf.WriteString(s)
}

func (w *writer) dataType(dt value.DataType) { w.u8(uint8(dt)) }

func (w *writer) operand(op value.Operand) error {
	switch op.Kind {
	case value.OperandVariable:
		w.u8(tagVariable)
		w.str(op.Name)
	case value.OperandLabel:
		w.u8(tagLabel)
		w.str(op.Name)
	case value.OperandType:
		w.u8(tagType)
		w.dataType(op.DataType)
	case value.OperandImmediate:
		w.u8(tagImmediate)
		return w.immediate(op.Value)
	default:
		return asmerr.New(asmerr.Assembly, "unencodable operand kind %d", op.Kind)
	}
	return nil
}

// immediate encodes only the four arms that round-trip through the
// binary format: I32, I64, F32, F64. Any other arm reaching an
// Immediate operand at encode time is a programmer error upstream
// (the assembler only ever builds these four for literals).
func (w *writer) immediate(v value.Value) error {
	switch v.Type {
	case value.I32:
		w.u8(valTagI32)
		i, err := v.Int64()
		if err != nil {
			return err
		}
		w.i32(int32(i))
	case value.I64:
		w.u8(valTagI64)
		i, err := v.Int64()
		if err != nil {
			return err
		}
		w.i64(i)
	case value.F32:
		w.u8(valTagF32)
		f, err := v.Float64()
		if err != nil {
			return err
		}
		w.f32(float32(f))
	case value.F64:
		w.u8(valTagF64)
		f, err := v.Float64()
		if err != nil {
			return err
		}
		w.f64(f)
	default:
		return asmerr.New(asmerr.Assembly, "immediate operand of type %s cannot be encoded in the binary format", v.Type)
	}
	return nil
}
