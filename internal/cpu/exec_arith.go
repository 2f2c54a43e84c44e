package cpu

import "github.com/intuitionamiga/geniemu/internal/sizeval"

// execArithFamily covers the nine two-operand arithmetic/compare forms
// that share the register<->EA or immediate<->EA shape: ADD, SUB, CMP in
// their register-and-EA form, the *I immediate-to-EA forms, the *Q
// quick-immediate forms, and CMPM's memory-to-memory compare (spec.md
// §4.5). Dispatch on name picks the operand source/destination shape;
// the flag-update policy is always the ApplyAdd/ApplySub/ApplyCmp family.
func (c *CPU) execArithFamily(name string, f Fields, pcAfter uint32) error {
	switch name {
	case "ADD", "SUB", "CMP":
		return c.execRegEA(name, f, pcAfter)
	case "ADDI", "SUBI", "CMPI":
		return c.execImmEA(name, f, pcAfter)
	case "ADDQ", "SUBQ":
		return c.execQuickEA(name, f, pcAfter)
	case "CMPM":
		return c.execCmpm(f)
	default:
		return &UnimplementedError{Name: name}
	}
}

// execRegEA implements ADD/SUB/CMP's "Dn op EA" or "EA op Dn" shape:
// Direction 0 reads the EA as the source and Dn as the destination,
// Direction 1 reverses it so the EA is the destination (spec.md §4.5's
// direction-bit convention, shared with AND/OR/EOR).
func (c *CPU) execRegEA(name string, f Fields, pcAfter uint32) error {
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

	var dst Loc
	var a, b uint32
	if f.Direction == 0 {
		dst, a, b = dn, uint32(dnVal), uint32(eaVal)
	} else {
		dst, a, b = ea, uint32(eaVal), uint32(dnVal)
	}

	switch name {
	case "ADD":
		return c.WriteLoc(size, dst, c.Regs.SR.ApplyAdd(size, a, b))
	case "SUB":
		return c.WriteLoc(size, dst, c.Regs.SR.ApplySub(size, a, b))
	default: // CMP always compares Dn-EA regardless of direction
		c.Regs.SR.ApplyCmp(size, uint32(dnVal), uint32(eaVal))
		return nil
	}
}

// execImmEA implements the ADDI/SUBI/CMPI immediate-to-EA shape: the
// immediate word/longword follows the opcode directly, before any EA
// extension words (spec.md §4.5).
func (c *CPU) execImmEA(name string, f Fields, pcAfter uint32) error {
	size := f.Size
	var imm uint32
	if size == sizeval.Long {
		imm = c.fetchLong()
	} else {
		imm = uint32(c.fetchWord())
	}
	pcAfterImm := c.PC
	ea, err := c.ea(f.EA1Mode, f.EA1Reg, size, pcAfterImm)
	if err != nil {
		return err
	}
	v, err := c.ReadLoc(size, ea)
	if err != nil {
		return err
	}
	switch name {
	case "ADDI":
		return c.WriteLoc(size, ea, c.Regs.SR.ApplyAdd(size, uint32(v), imm))
	case "SUBI":
		return c.WriteLoc(size, ea, c.Regs.SR.ApplySub(size, uint32(v), imm))
	default: // CMPI
		c.Regs.SR.ApplyCmp(size, uint32(v), imm)
		return nil
	}
}

// execQuickEA implements ADDQ/SUBQ: a 3-bit immediate (0 meaning 8) added
// to or subtracted from an EA (spec.md §4.5). When the destination is an
// address register the operation is always longword and flags are
// untouched, matching ADDA/SUBA's exception.
func (c *CPU) execQuickEA(name string, f Fields, pcAfter uint32) error {
	size := f.Size
	ea, err := c.ea(f.EA1Mode, f.EA1Reg, size, pcAfter)
	if err != nil {
		return err
	}
	if ea.Kind == LocReg && ea.Reg.IsAddr() {
		v, err := c.ReadLoc(sizeval.Long, ea)
		if err != nil {
			return err
		}
		delta := int32(f.Data)
		if name == "SUBQ" {
			delta = -delta
		}
		return c.WriteLoc(sizeval.Long, ea, uint32(v+delta))
	}
	v, err := c.ReadLoc(size, ea)
	if err != nil {
		return err
	}
	if name == "ADDQ" {
		return c.WriteLoc(size, ea, c.Regs.SR.ApplyAdd(size, uint32(v), uint32(f.Data)))
	}
	return c.WriteLoc(size, ea, c.Regs.SR.ApplySub(size, uint32(v), uint32(f.Data)))
}

// execCmpm compares two memory operands both addressed by postincrement
// (spec.md §4.5): the only two-memory-operand instruction in this set.
func (c *CPU) execCmpm(f Fields) error {
	size := f.Size
	src := c.Resolve(size, AddrMode{Kind: AMPostInc, Reg: f.An})
	srcVal, err := c.ReadLoc(size, src)
	if err != nil {
		return err
	}
	dst := c.Resolve(size, AddrMode{Kind: AMPostInc, Reg: f.An2})
	dstVal, err := c.ReadLoc(size, dst)
	if err != nil {
		return err
	}
	c.Regs.SR.ApplyCmp(size, uint32(dstVal), uint32(srcVal))
	return nil
}

// execAddrArith implements ADDA/SUBA/CMPA: an address register
// destination, word or long size, with the word form sign-extended
// before the 32-bit add/sub (spec.md §4.5). None of the three touch
// flags (spec.md §4.4: "ADDA/SUBA/CMPA (address-register variants): do
// not update flags") — CMPA computes nothing and writes nothing; it only
// resolves and reads its EA operand, so that operand's side effects
// (post-increment/pre-decrement) happen just as for ADDA/SUBA.
func (c *CPU) execAddrArith(name string, f Fields, pcAfter uint32) error {
	size := f.Size
	ea, err := c.ea(f.EA1Mode, f.EA1Reg, size, pcAfter)
	if err != nil {
		return err
	}
	v, err := c.ReadLoc(size, ea)
	if err != nil {
		return err
	}
	operand := uint32(sizeval.Long.SignExtend(uint32(v)))
	an := c.Regs.ReadAddr(f.An)

	switch name {
	case "ADDA":
		c.Regs.WriteAddr(sizeval.Long, f.An, an+operand)
	case "SUBA":
		c.Regs.WriteAddr(sizeval.Long, f.An, an-operand)
	}
	return nil
}
