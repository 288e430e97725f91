// Package bytecode encodes/decodes a program.Program to/from the
// binary image format (C7): little-endian, magic-prefixed, five
// count-prefixed sections.
package bytecode

// Magic is the four-byte file signature, 0x56424300 ("VBC\0" in
// little-endian byte order).
var Magic = [4]byte{0x00, 0x43, 0x42, 0x56}

// Version is the only binary format version this codec understands.
const Version uint8 = 1

// Operand tags.
const (
	tagVariable  uint8 = 0
	tagImmediate uint8 = 1
	tagLabel     uint8 = 2
	tagType      uint8 = 3
)

// Immediate value-type tags: only these four arms round-trip through
// the binary format's Immediate operand encoding.
const (
	valTagI32 uint8 = 0
	valTagI64 uint8 = 1
	valTagF32 uint8 = 2
	valTagF64 uint8 = 3
)
