// Package sizeval defines the primitive sized-value and register-identifier
// types shared by the CPU, bus, and disassembler packages.
package sizeval

import "fmt"

// Size tags the width of a value moving through the CPU or bus: 8, 16, or
// 32 bits. Conversions between sizes are always explicit.
type Size int

const (
	Byte Size = iota
	Word
	Long
)

// Bytes returns the width of s in bytes.
func (s Size) Bytes() int {
	switch s {
	case Byte:
		return 1
	case Word:
		return 2
	case Long:
		return 4
	default:
		panic(fmt.Sprintf("sizeval: invalid size %d", int(s)))
	}
}

// Bits returns the width of s in bits.
func (s Size) Bits() uint {
	return uint(s.Bytes()) * 8
}

func (s Size) String() string {
	switch s {
	case Byte:
		return "b"
	case Word:
		return "w"
	case Long:
		return "l"
	default:
		return fmt.Sprintf("size(%d)", int(s))
	}
}

// Mask returns the bitmask covering s's width within a 32-bit word.
func (s Size) Mask() uint32 {
	switch s {
	case Byte:
		return 0xff
	case Word:
		return 0xffff
	default:
		return 0xffffffff
	}
}

// Truncate masks v down to s's width, leaving it unsigned.
func (s Size) Truncate(v uint32) uint32 {
	return v & s.Mask()
}

// SignExtend reinterprets the low s-width bits of v as a signed quantity
// and sign-extends the result to 32 bits. This is the "signed read" of
// spec.md §3: a byte sign-extends into 32 bits, as does a word.
func (s Size) SignExtend(v uint32) int32 {
	switch s {
	case Byte:
		return int32(int8(uint8(v)))
	case Word:
		return int32(int16(uint16(v)))
	default:
		return int32(v)
	}
}

// Insert overwrites the low s-width bits of dst with the low s-width bits
// of v, leaving the remaining upper bits of dst untouched. This models a
// data register's partial-width write (spec.md §4.3): a byte write
// preserves bits 8-31, a word write preserves bits 16-31, a long write
// replaces everything.
func (s Size) Insert(dst, v uint32) uint32 {
	return (dst &^ s.Mask()) | s.Truncate(v)
}
