package cpu

import "github.com/intuitionamiga/geniemu/internal/sizeval"

// Bus is the subset of the memory bus router the CPU needs: sized,
// big-endian, error-returning access. Errors surface bus violations
// (spec.md §7) rather than panicking, unlike the teacher's Bus32
// interface, because this core's failure-handling policy treats every
// fatal condition as a returned error the run loop converts to a
// non-zero exit rather than an unrecovered panic.
type Bus interface {
	Read8(addr uint32) (uint8, error)
	Write8(addr uint32, v uint8) error
	Read16(addr uint32) (uint16, error)
	Write16(addr uint32, v uint16) error
	Read32(addr uint32) (uint32, error)
	Write32(addr uint32, v uint32) error
}

// busFetcher adapts a Bus plus a running program counter into the
// Fetcher interface DecodeEA consumes. It uses the sticky-error pattern
// of bufio.Scanner: FetchWord/FetchLong record the first bus error they
// hit and return zero thereafter, so a long chain of extension-word
// reads during addressing-mode decode doesn't need to thread an error
// return through every call; the caller checks Err() once after decode
// completes.
type busFetcher struct {
	bus Bus
	pc  *uint32
	err error
}

func (f *busFetcher) FetchWord() uint16 {
	if f.err != nil {
		return 0
	}
	v, err := f.bus.Read16(*f.pc)
	if err != nil {
		f.err = err
		return 0
	}
	*f.pc += 2
	return v
}

func (f *busFetcher) FetchLong() uint32 {
	if f.err != nil {
		return 0
	}
	v, err := f.bus.Read32(*f.pc)
	if err != nil {
		f.err = err
		return 0
	}
	*f.pc += 4
	return v
}

func (f *busFetcher) Err() error { return f.err }

// CPU is the whole register/decode/execute state for one instance of
// the processor core. Per spec.md §5 the core is single-threaded and
// non-cooperative: a CPU is exclusively owned by whichever goroutine
// drives the frame loop.
type CPU struct {
	Regs         RegisterFile
	Bus          Bus
	Decode       *DecodeTable
	PC           uint32
	Interrupting bool
}

func NewCPU(bus Bus, table *DecodeTable) *CPU {
	return &CPU{Bus: bus, Decode: table}
}

// Loc is a resolved operand location: a register, a RAM address, or an
// immediate value baked in at decode time. This is the sum type
// spec.md §9 calls for in place of the source's register/address/
// immediate union.
type Loc struct {
	Kind LocKind
	Reg  sizeval.RegisterID
	Addr uint32
	Imm  int32
}

type LocKind int

const (
	LocReg LocKind = iota
	LocRAM
	LocImm
)

// Resolve turns a decoded AddrMode into a concrete Loc, performing the
// side effects (post-increment/pre-decrement register updates) that
// mode implies (spec.md §4.2, §4.3).
func (c *CPU) Resolve(size sizeval.Size, am AddrMode) Loc {
	switch am.Kind {
	case AMImmByte, AMImmWord, AMImmLong:
		return Loc{Kind: LocImm, Imm: am.Imm}
	case AMDataReg:
		return Loc{Kind: LocReg, Reg: sizeval.DataReg(am.Reg)}
	case AMAddrReg:
		return Loc{Kind: LocReg, Reg: sizeval.AddrReg(am.Reg)}
	case AMAddrInd:
		return Loc{Kind: LocRAM, Addr: c.Regs.ReadAddr(am.Reg)}
	case AMPostInc:
		addr := c.Regs.ReadAddr(am.Reg)
		c.Regs.WriteAddr(sizeval.Long, am.Reg, addr+uint32(size.Bytes()))
		return Loc{Kind: LocRAM, Addr: addr}
	case AMPreDec:
		addr := c.Regs.ReadAddr(am.Reg) - uint32(size.Bytes())
		c.Regs.WriteAddr(sizeval.Long, am.Reg, addr)
		return Loc{Kind: LocRAM, Addr: addr}
	case AMAbsWord, AMAbsLong:
		return Loc{Kind: LocRAM, Addr: uint32(am.Imm)}
	case AMIndDisp:
		return Loc{Kind: LocRAM, Addr: c.Regs.ReadAddr(am.Reg) + uint32(am.Imm)}
	case AMIndIndexed:
		var base uint32
		if am.Reg >= 0 {
			base = c.Regs.ReadAddr(am.Reg)
		}
		idx := c.readIndexReg(am)
		return Loc{Kind: LocRAM, Addr: base + uint32(am.Imm) + uint32(idx)}
	default:
		panic("cpu: invalid addressing mode kind")
	}
}

func (c *CPU) readIndexReg(am AddrMode) int32 {
	if am.Reg2IsA {
		if am.IdxSize == sizeval.Long {
			return int32(c.Regs.ReadAddr(am.Reg2))
		}
		return int32(int16(c.Regs.ReadAddr(am.Reg2)))
	}
	return c.Regs.ReadData(am.IdxSize, am.Reg2)
}

// ReadLoc reads a resolved location at the given size.
func (c *CPU) ReadLoc(size sizeval.Size, loc Loc) (int32, error) {
	switch loc.Kind {
	case LocImm:
		return loc.Imm, nil
	case LocReg:
		return c.Regs.Read(size, loc.Reg), nil
	case LocRAM:
		return c.readBus(size, loc.Addr)
	default:
		panic("cpu: invalid loc kind")
	}
}

// WriteLoc writes v (truncated/sign-extended per size and loc's kind) to
// a resolved location. Writing to an immediate location is a decode-time
// bug, not a runtime condition: it is only reachable if an instruction
// spec mistakenly names an immediate addressing mode as a destination.
func (c *CPU) WriteLoc(size sizeval.Size, loc Loc, v uint32) error {
	switch loc.Kind {
	case LocImm:
		panic("cpu: attempted write to an immediate operand")
	case LocReg:
		c.Regs.Write(size, loc.Reg, v)
		return nil
	case LocRAM:
		return c.writeBus(size, loc.Addr, v)
	default:
		panic("cpu: invalid loc kind")
	}
}

func (c *CPU) readBus(size sizeval.Size, addr uint32) (int32, error) {
	switch size {
	case sizeval.Byte:
		v, err := c.Bus.Read8(addr)
		return int32(int8(v)), err
	case sizeval.Word:
		if addr%2 != 0 {
			return 0, &OddAddressError{Addr: addr, What: "word read"}
		}
		v, err := c.Bus.Read16(addr)
		return int32(int16(v)), err
	default:
		if addr%2 != 0 {
			return 0, &OddAddressError{Addr: addr, What: "long read"}
		}
		v, err := c.Bus.Read32(addr)
		return int32(v), err
	}
}

func (c *CPU) writeBus(size sizeval.Size, addr uint32, v uint32) error {
	switch size {
	case sizeval.Byte:
		return c.Bus.Write8(addr, uint8(v))
	case sizeval.Word:
		if addr%2 != 0 {
			return &OddAddressError{Addr: addr, What: "word write"}
		}
		return c.Bus.Write16(addr, uint16(v))
	default:
		if addr%2 != 0 {
			return &OddAddressError{Addr: addr, What: "long write"}
		}
		return c.Bus.Write32(addr, v)
	}
}

// Push writes value onto the stack at the given size, predecrementing
// A7 first (spec.md §4.5's RTS/RTE/JSR/BSR stack linkage).
func (c *CPU) Push(size sizeval.Size, value uint32) error {
	sp := c.Regs.SP() - uint32(size.Bytes())
	c.Regs.SetSP(sp)
	return c.writeBus(size, sp, value)
}

// Pop reads a value off the stack at the given size, postincrementing A7.
func (c *CPU) Pop(size sizeval.Size) (uint32, error) {
	sp := c.Regs.SP()
	v, err := c.readBus(size, sp)
	if err != nil {
		return 0, err
	}
	c.Regs.SetSP(sp + uint32(size.Bytes()))
	return uint32(v), nil
}
