package cpu

import "github.com/intuitionamiga/geniemu/internal/sizeval"

// execMove implements MOVE and MOVEA: read the source EA, write it to the
// destination EA, and update flags per the ApplyLogic policy (spec.md
// §4.4) — unless the destination is an address register, which leaves
// flags untouched (spec.md §4.4's MOVEA exception).
func (c *CPU) execMove(f Fields, pcAfter uint32) error {
	size := f.Size
	src, err := c.ea(f.EA1Mode, f.EA1Reg, size, pcAfter)
	if err != nil {
		return err
	}
	v, err := c.ReadLoc(size, src)
	if err != nil {
		return err
	}
	dst, err := c.ea(f.EA2Mode, f.EA2Reg, size, c.PC)
	if err != nil {
		return err
	}
	if dst.Kind == LocReg && dst.Reg.IsAddr() {
		return c.WriteLoc(size, dst, uint32(v))
	}
	result := c.Regs.SR.ApplyLogic(size, uint32(v))
	return c.WriteLoc(size, dst, result)
}

// execMoveq loads an 8-bit sign-extended immediate into a data register
// (spec.md §4.5), updating flags per ApplyLogic.
func (c *CPU) execMoveq(f Fields) error {
	v := sizeval.Long.SignExtend(uint32(int8(f.Data)))
	result := c.Regs.SR.ApplyLogic(sizeval.Long, uint32(v))
	c.Regs.WriteData(sizeval.Long, f.Dn, result)
	return nil
}

// execLea computes an EA's address and stores it in an address register
// without dereferencing it (spec.md §4.5). LEA never touches flags.
func (c *CPU) execLea(f Fields, pcAfter uint32) error {
	loc, err := c.ea(f.EA1Mode, f.EA1Reg, sizeval.Long, pcAfter)
	if err != nil {
		return err
	}
	if loc.Kind != LocRAM {
		return &DecodeError{Reason: "LEA source is not an addressable location"}
	}
	c.Regs.WriteAddr(sizeval.Long, f.An, loc.Addr)
	return nil
}

// execMovem transfers a register list to or from memory, consuming the
// register-selection mask as the extension word immediately following
// the opcode (spec.md §4.5). The addressing register advances by one
// element per register transferred rather than through repeated EA
// resolution, since predecrement/postincrement apply once to the whole
// list, not once per register. Flags are untouched.
func (c *CPU) execMovem(f Fields) error {
	mask := RegisterList(c.fetchWord())
	pcAfterMask := c.PC
	toMemory := f.Direction == 0
	size := f.Size
	predecrement := f.EA1Mode == 4
	postincrement := f.EA1Mode == 3

	var addr uint32
	if predecrement || postincrement {
		addr = c.Regs.ReadAddr(f.EA1Reg)
	} else {
		loc, err := c.ea(f.EA1Mode, f.EA1Reg, size, pcAfterMask)
		if err != nil {
			return err
		}
		if loc.Kind != LocRAM {
			return &DecodeError{Reason: "MOVEM memory operand is not addressable"}
		}
		addr = loc.Addr
	}

	for _, r := range mask.Registers(predecrement) {
		if predecrement {
			addr -= uint32(size.Bytes())
		}
		if toMemory {
			v := c.Regs.Read(size, r)
			if err := c.writeBus(size, addr, uint32(v)); err != nil {
				return err
			}
		} else {
			v, err := c.readBus(size, addr)
			if err != nil {
				return err
			}
			c.Regs.Write(sizeval.Long, r, uint32(sizeval.Long.SignExtend(uint32(v))))
		}
		if !predecrement {
			addr += uint32(size.Bytes())
		}
	}
	if predecrement || postincrement {
		c.Regs.WriteAddr(sizeval.Long, f.EA1Reg, addr)
	}
	return nil
}
