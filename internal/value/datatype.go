// Package value implements the VM's tagged numeric value and data type model.
package value

import "fmt"

// DataType tags the width, signedness and float-ness of a Value. The
// numeric order matches the binary codec's fixed single-byte encoding
// (table T1 in the original assembler) and must not be reordered.
type DataType uint8

const (
	I8 DataType = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	Ptr
	Void
)

func (d DataType) String() string {
	switch d {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Ptr:
		return "ptr"
	case Void:
		return "void"
	default:
		return fmt.Sprintf("datatype(%d)", uint8(d))
	}
}

// ParseDataType maps a type keyword/name (as written in source or printed
// by the disassembler) to its DataType, or reports ok=false.
func ParseDataType(name string) (DataType, bool) {
	switch name {
	case "i8":
		return I8, true
	case "i16":
		return I16, true
	case "i32":
		return I32, true
	case "i64":
		return I64, true
	case "u8":
		return U8, true
	case "u16":
		return U16, true
	case "u32":
		return U32, true
	case "u64":
		return U64, true
	case "f32":
		return F32, true
	case "f64":
		return F64, true
	case "ptr":
		return Ptr, true
	case "void":
		return Void, true
	default:
		return 0, false
	}
}

// Size returns the byte width of dtype: 1/2/4/8 for the integer widths,
// 4/8 for floats, 8 for Ptr, 0 for Void.
func (d DataType) Size() int {
	switch d {
	case I8, U8:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32:
		return 4
	case I64, U64, F64, Ptr:
		return 8
	case Void:
		return 0
	default:
		return 0
	}
}

// IsInteger reports whether dtype is one of the eight signed/unsigned
// integer arms (bitwise operations are defined over exactly this set).
func (d DataType) IsInteger() bool {
	switch d {
	case I8, I16, I32, I64, U8, U16, U32, U64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether dtype is F32 or F64.
func (d DataType) IsFloat() bool {
	return d == F32 || d == F64
}
