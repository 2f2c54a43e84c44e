package cpu

import "github.com/intuitionamiga/geniemu/internal/sizeval"

// RegisterFile holds the eight data and eight address registers plus the
// status register. Data registers support partial-width writes that
// preserve unaffected upper bytes; address registers are always written
// and read as full 32-bit quantities, sign-extending narrower writes
// (spec.md §4.3).
type RegisterFile struct {
	D  [8]uint32
	A  [8]uint32
	SR StatusRegister
}

// ReadData returns the low s-width bits of D[n] sign-extended to 32 bits,
// matching a "signed read" of a data register (spec.md §3).
func (r *RegisterFile) ReadData(s sizeval.Size, n int) int32 {
	return s.SignExtend(r.D[n])
}

// WriteData overwrites the low s-width bits of D[n], preserving the
// untouched upper bits.
func (r *RegisterFile) WriteData(s sizeval.Size, n int, v uint32) {
	r.D[n] = s.Insert(r.D[n], v)
}

// ReadAddr returns the full 32-bit value of A[n]. Address registers
// never carry partial-width values.
func (r *RegisterFile) ReadAddr(n int) uint32 {
	return r.A[n]
}

// WriteAddr replaces A[n] with v sign-extended to 32 bits at size s: a
// byte or word "write" to an address register always produces an
// observably long-sized, sign-extended result (spec.md §4.3, and the
// invariant in spec.md §3: "address-register writes are always
// long-sized observably").
func (r *RegisterFile) WriteAddr(s sizeval.Size, n int, v uint32) {
	r.A[n] = uint32(s.SignExtend(v))
}

// Read dispatches by RegisterID.Kind to ReadData/ReadAddr/the packed
// status word.
func (r *RegisterFile) Read(s sizeval.Size, id sizeval.RegisterID) int32 {
	switch id.Kind {
	case sizeval.Data:
		return r.ReadData(s, id.Num)
	case sizeval.Addr:
		return int32(r.ReadAddr(id.Num))
	case sizeval.SR:
		return int32(r.SR.Pack())
	default:
		panic("cpu: invalid register kind")
	}
}

// Write dispatches by RegisterID.Kind to WriteData/WriteAddr/the packed
// status word.
func (r *RegisterFile) Write(s sizeval.Size, id sizeval.RegisterID, v uint32) {
	switch id.Kind {
	case sizeval.Data:
		r.WriteData(s, id.Num, v)
	case sizeval.Addr:
		r.WriteAddr(s, id.Num, v)
	case sizeval.SR:
		r.SR.Unpack(uint16(v))
	default:
		panic("cpu: invalid register kind")
	}
}

// SP returns the current stack pointer, A7.
func (r *RegisterFile) SP() uint32 { return r.A[sizeval.StackPointer] }

// SetSP overwrites A7.
func (r *RegisterFile) SetSP(v uint32) { r.A[sizeval.StackPointer] = v }
