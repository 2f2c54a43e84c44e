package cpu

import "github.com/intuitionamiga/geniemu/internal/sizeval"

// branchDisp resolves Bcc/BSR's displacement: an 8-bit inline value, or
// (when that byte is 0) a 16-bit extension word following the opcode
// (spec.md §4.6). The extension word, when present, must be consumed
// from the live program counter so Step advances past it; a disp of 0
// read as the branch offset itself would branch onto the extension word
// and leave PC desynced from the instruction stream.
func (c *CPU) branchDisp(f Fields) int32 {
	if f.Disp != 0 {
		return int32(f.Disp)
	}
	return int32(int16(c.fetchWord()))
}

// branchTarget computes a PC-relative branch target: the displacement is
// always relative to the address immediately after the opcode word
// (spec.md §4.6), regardless of how many further extension words the
// instruction goes on to consume for other operands.
func branchTarget(pcAfterOpcode uint32, disp int32) uint32 {
	return uint32(int32(pcAfterOpcode) + disp)
}

// execBcc implements the conditional branch, including the always-taken
// T condition this core uses in place of a separate unconditional-branch
// opcode (spec.md §4.6).
func (c *CPU) execBcc(f Fields, pcAfter uint32) error {
	disp := c.branchDisp(f)
	if c.Regs.SR.Holds(f.Cond) {
		c.PC = branchTarget(pcAfter, disp)
	}
	return nil
}

// execBsr pushes the return address and branches, the call-site half of
// the BSR/RTS pairing (spec.md §4.6). The return address is c.PC after
// branchDisp has consumed any extension word, i.e. the address of the
// instruction following BSR in full, not just after its opcode word.
func (c *CPU) execBsr(f Fields, pcAfter uint32) error {
	disp := c.branchDisp(f)
	if err := c.Push(sizeval.Long, c.PC); err != nil {
		return err
	}
	c.PC = branchTarget(pcAfter, disp)
	return nil
}

// execDbcc implements the decrement-and-branch loop primitive: while the
// condition is false, decrement the low word of Dn and branch back while
// it has not wrapped past -1 (spec.md §4.6's "DBcc never checks the
// condition again once Dn reaches -1 this pass" edge case). Unlike Bcc
// and BSR, DBcc's 16-bit displacement does not fit in the opcode word
// itself (Cond, the fixed bits, and Dn already use all 16 bits) so it is
// read as a word-sized extension following the opcode.
func (c *CPU) execDbcc(f Fields, pcAfter uint32) error {
	disp := int16(c.fetchWord())
	if c.Regs.SR.Holds(f.Cond) {
		return nil
	}
	count := int16(c.Regs.ReadData(sizeval.Word, f.Dn)) - 1
	c.Regs.WriteData(sizeval.Word, f.Dn, uint32(uint16(count)))
	if count != -1 {
		c.PC = uint32(int32(pcAfter) + int32(disp))
	}
	return nil
}

// execJmp transfers control directly to an EA's address, never pushing a
// return address (spec.md §4.6).
func (c *CPU) execJmp(f Fields, pcAfter uint32) error {
	loc, err := c.ea(f.EA1Mode, f.EA1Reg, sizeval.Long, pcAfter)
	if err != nil {
		return err
	}
	if loc.Kind != LocRAM {
		return &DecodeError{Reason: "JMP target is not an addressable location"}
	}
	c.PC = loc.Addr
	return nil
}

// execJsr pushes the return address, then transfers control to an EA's
// address (spec.md §4.6).
func (c *CPU) execJsr(f Fields, pcAfter uint32) error {
	loc, err := c.ea(f.EA1Mode, f.EA1Reg, sizeval.Long, pcAfter)
	if err != nil {
		return err
	}
	if loc.Kind != LocRAM {
		return &DecodeError{Reason: "JSR target is not an addressable location"}
	}
	if err := c.Push(sizeval.Long, c.PC); err != nil {
		return err
	}
	c.PC = loc.Addr
	return nil
}

// execRts pops a return address off the stack into PC (spec.md §4.6).
func (c *CPU) execRts() error {
	addr, err := c.Pop(sizeval.Long)
	if err != nil {
		return err
	}
	c.PC = addr
	return nil
}

// execRte pops the status register then the return address, the
// exception-return sequence this core uses for the VBlank interrupt
// handler (spec.md §4.6, §5).
func (c *CPU) execRte() error {
	sr, err := c.Pop(sizeval.Word)
	if err != nil {
		return err
	}
	c.Regs.SR.Unpack(uint16(sr))
	addr, err := c.Pop(sizeval.Long)
	if err != nil {
		return err
	}
	c.PC = addr
	c.Interrupting = false
	return nil
}
