package cpu

import "github.com/intuitionamiga/geniemu/internal/sizeval"

func bitwise(name string, a, b uint32) uint32 {
	switch name {
	case "AND", "ANDI":
		return a & b
	case "OR", "ORI":
		return a | b
	default: // EOR, EORI
		return a ^ b
	}
}

// execLogicFamily covers AND/OR/EOR's "Dn op EA" shape and the
// *I immediate-to-EA forms, all sharing the ApplyLogic flag policy
// (spec.md §4.4, §4.5). AND/OR honor the direction bit the way
// execRegEA does; EOR is always register-to-memory (spec.md §4.1: its
// spec line fixes Direction to a literal 1, so f.Direction carries no
// useful information for it, but reading it anyway keeps this dispatch
// uniform with AND/OR).
func (c *CPU) execLogicFamily(name string, f Fields, pcAfter uint32) error {
	switch name {
	case "ANDI", "ORI", "EORI":
		return c.execLogicImm(name, f, pcAfter)
	default:
		return c.execLogicRegEA(name, f, pcAfter)
	}
}

func (c *CPU) execLogicRegEA(name string, f Fields, pcAfter uint32) error {
	size := f.Size
	ea, err := c.ea(f.EA1Mode, f.EA1Reg, size, pcAfter)
	if err != nil {
		return err
	}
	eaVal, err := c.ReadLoc(size, ea)
	if err != nil {
		return err
	}
	dn := Loc{Kind: LocReg, Reg: sizeval.DataReg(f.Dn)}
	dnVal, err := c.ReadLoc(size, dn)
	if err != nil {
		return err
	}

	result := c.Regs.SR.ApplyLogic(size, bitwise(name, uint32(dnVal), uint32(eaVal)))
	if name == "EOR" || f.Direction == 1 {
		return c.WriteLoc(size, ea, result)
	}
	return c.WriteLoc(size, dn, result)
}

func (c *CPU) execLogicImm(name string, f Fields, pcAfter uint32) error {
	size := f.Size
	var imm uint32
	if size == sizeval.Long {
		imm = c.fetchLong()
	} else {
		imm = uint32(c.fetchWord())
	}
	ea, err := c.ea(f.EA1Mode, f.EA1Reg, size, c.PC)
	if err != nil {
		return err
	}
	v, err := c.ReadLoc(size, ea)
	if err != nil {
		return err
	}
	result := c.Regs.SR.ApplyLogic(size, bitwise(name, uint32(v), imm))
	return c.WriteLoc(size, ea, result)
}

// execUnary covers CLR/NEG/NOT/TST, all single-EA-operand forms (spec.md
// §4.5). TST never writes its result back; the others do.
func (c *CPU) execUnary(name string, f Fields, pcAfter uint32) error {
	size := f.Size
	ea, err := c.ea(f.EA1Mode, f.EA1Reg, size, pcAfter)
	if err != nil {
		return err
	}
	v, err := c.ReadLoc(size, ea)
	if err != nil {
		return err
	}
	switch name {
	case "CLR":
		return c.WriteLoc(size, ea, c.Regs.SR.ApplyLogic(size, 0))
	case "NEG":
		return c.WriteLoc(size, ea, c.Regs.SR.ApplyNeg(size, uint32(v)))
	case "NOT":
		return c.WriteLoc(size, ea, c.Regs.SR.ApplyLogic(size, ^uint32(v)))
	default: // TST
		c.Regs.SR.ApplyLogic(size, uint32(v))
		return nil
	}
}

// execExt sign-extends a data register's low byte into a word, or its
// low word into a long (spec.md §4.5).
func (c *CPU) execExt(f Fields) error {
	size := f.Size
	narrow := sizeval.Byte
	if size == sizeval.Long {
		narrow = sizeval.Word
	}
	v := c.Regs.ReadData(narrow, f.Dn)
	result := c.Regs.SR.ApplyLogic(size, uint32(v))
	c.Regs.WriteData(size, f.Dn, result)
	return nil
}

// execSwap exchanges the two 16-bit halves of a data register (spec.md
// §4.5), updating flags from the full 32-bit result.
func (c *CPU) execSwap(f Fields) error {
	v := uint32(c.Regs.ReadData(sizeval.Long, f.Dn))
	swapped := (v << 16) | (v >> 16)
	result := c.Regs.SR.ApplyLogic(sizeval.Long, swapped)
	c.Regs.WriteData(sizeval.Long, f.Dn, result)
	return nil
}

// execMul performs a 16x16->32 multiply, unsigned or signed, updating
// flags from the 32-bit product (spec.md §4.5, §4.4's MULU/MULS policy).
func (c *CPU) execMul(name string, f Fields, pcAfter uint32) error {
	ea, err := c.ea(f.EA1Mode, f.EA1Reg, sizeval.Word, pcAfter)
	if err != nil {
		return err
	}
	eaVal, err := c.ReadLoc(sizeval.Word, ea)
	if err != nil {
		return err
	}
	dnVal := c.Regs.ReadData(sizeval.Word, f.Dn)

	var product uint32
	if name == "MULU" {
		product = uint32(uint16(eaVal)) * uint32(uint16(dnVal))
	} else {
		product = uint32(int32(eaVal) * int32(dnVal))
	}
	result := c.Regs.SR.ApplyMulDiv(product)
	c.Regs.WriteData(sizeval.Long, f.Dn, result)
	return nil
}

// execDiv performs a 32/16->16r16 divide, unsigned or signed (spec.md
// §4.5). A zero divisor is a fatal DivideByZeroError (spec.md §7, §9),
// not a trap, diverging deliberately from the source program's undefined
// behavior.
func (c *CPU) execDiv(name string, f Fields, pcAfter, opcodePC uint32) error {
	ea, err := c.ea(f.EA1Mode, f.EA1Reg, sizeval.Word, pcAfter)
	if err != nil {
		return err
	}
	eaVal, err := c.ReadLoc(sizeval.Word, ea)
	if err != nil {
		return err
	}
	if uint16(eaVal) == 0 {
		return &DivideByZeroError{PC: opcodePC}
	}
	dividend := uint32(c.Regs.ReadData(sizeval.Long, f.Dn))

	var quotient, remainder uint32
	if name == "DIVU" {
		d, v := dividend, uint32(uint16(eaVal))
		quotient, remainder = d/v, d%v
	} else {
		d, v := int32(dividend), int32(int16(eaVal))
		quotient, remainder = uint32(d/v), uint32(d%v)
	}
	result := c.Regs.SR.ApplyMulDiv(quotient)
	packed := (remainder << 16) | (result & 0xffff)
	c.Regs.WriteData(sizeval.Long, f.Dn, packed)
	return nil
}

// execAbcd performs one byte of BCD addition between two data registers
// (spec.md §4.5; only the register-direct form is supported, matching
// the practical subset this core targets).
func (c *CPU) execAbcd(f Fields) error {
	a := uint8(c.Regs.ReadData(sizeval.Byte, f.Dn2))
	b := uint8(c.Regs.ReadData(sizeval.Byte, f.Dn))
	result := c.Regs.SR.ApplyABCD(a, b)
	c.Regs.WriteData(sizeval.Byte, f.Dn2, uint32(result))
	return nil
}

// execExg swaps the full 32-bit contents of two data registers (spec.md
// §4.5; only the data-register-pair form is supported). Flags untouched.
func (c *CPU) execExg(f Fields) error {
	a, b := c.Regs.D[f.Dn], c.Regs.D[f.Dn2]
	c.Regs.D[f.Dn], c.Regs.D[f.Dn2] = b, a
	return nil
}

// execBitOp implements BTST/BCHG/BCLR/BSET: the bit number is the low
// five (register destination) or low three (memory destination) bits of
// a source data register (spec.md §4.5). This core handles every
// destination the register way: the operand is read and written as a
// long and the bit number is always taken mod 32, memory destinations
// included.
func (c *CPU) execBitOp(name string, f Fields, pcAfter uint32) error {
	ea, err := c.ea(f.EA1Mode, f.EA1Reg, sizeval.Long, pcAfter)
	if err != nil {
		return err
	}
	bitNum := uint(c.Regs.ReadData(sizeval.Long, f.Dn)) % 32
	v, err := c.ReadLoc(sizeval.Long, ea)
	if err != nil {
		return err
	}
	uv := uint32(v)
	bit := uv&(1<<bitNum) != 0
	c.Regs.SR.ApplyBitTest(bit)
	if name == "BTST" {
		return nil
	}
	switch name {
	case "BCHG":
		uv ^= 1 << bitNum
	case "BCLR":
		uv &^= 1 << bitNum
	case "BSET":
		uv |= 1 << bitNum
	}
	return c.WriteLoc(sizeval.Long, ea, uv)
}
