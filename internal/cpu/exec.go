package cpu

import "github.com/intuitionamiga/geniemu/internal/sizeval"

// Step fetches, decodes, and executes exactly one instruction, advancing
// PC and leaving it pointing at the next opcode word (spec.md §5: the
// frame loop calls Step in a hard-coded budget per video frame).
func (c *CPU) Step() error {
	opcode, err := c.Bus.Read16(c.PC)
	if err != nil {
		return err
	}
	opcodePC := c.PC
	c.PC += 2
	dec, err := c.Decode.Decode(opcode, opcodePC)
	if err != nil {
		return err
	}
	return c.execute(dec, opcodePC)
}

// ea decodes one 6-bit mode/reg pair into a resolved Loc, consuming
// extension words from the live program counter and surfacing either a
// malformed-field error or an accumulated bus error.
func (c *CPU) ea(mode, reg int, size sizeval.Size, pcAfter uint32) (Loc, error) {
	f := &busFetcher{bus: c.Bus, pc: &c.PC}
	am, err := DecodeEA(f, mode, reg, size, pcAfter)
	if err != nil {
		return Loc{}, err
	}
	if err := f.Err(); err != nil {
		return Loc{}, err
	}
	return c.Resolve(size, am), nil
}

func (c *CPU) execute(dec Decoded, opcodePC uint32) error {
	fl := dec.Fields
	pcAfter := c.PC
	switch dec.Spec.Name {
	case "MOVE":
		return c.execMove(fl, pcAfter)
	case "MOVEQ":
		return c.execMoveq(fl)
	case "MOVEM":
		return c.execMovem(fl)
	case "LEA":
		return c.execLea(fl, pcAfter)
	case "CLR", "NEG", "NOT", "TST":
		return c.execUnary(dec.Spec.Name, fl, pcAfter)
	case "EXT":
		return c.execExt(fl)
	case "SWAP":
		return c.execSwap(fl)
	case "ADD", "ADDI", "ADDQ", "SUB", "SUBI", "SUBQ", "CMP", "CMPI", "CMPM":
		return c.execArithFamily(dec.Spec.Name, fl, pcAfter)
	case "ADDA", "SUBA", "CMPA":
		return c.execAddrArith(dec.Spec.Name, fl, pcAfter)
	case "AND", "ANDI", "OR", "ORI", "EOR", "EORI":
		return c.execLogicFamily(dec.Spec.Name, fl, pcAfter)
	case "ANDI_TO_SR":
		c.Regs.SR.Unpack(c.Regs.SR.Pack() & c.fetchWord())
		return nil
	case "ORI_TO_SR":
		c.Regs.SR.Unpack(c.Regs.SR.Pack() | c.fetchWord())
		return nil
	case "EORI_TO_SR":
		c.Regs.SR.Unpack(c.Regs.SR.Pack() ^ c.fetchWord())
		return nil
	case "MULU", "MULS":
		return c.execMul(dec.Spec.Name, fl, pcAfter)
	case "DIVU", "DIVS":
		return c.execDiv(dec.Spec.Name, fl, pcAfter, opcodePC)
	case "ABCD":
		return c.execAbcd(fl)
	case "EXG":
		return c.execExg(fl)
	case "BTST", "BCHG", "BCLR", "BSET":
		return c.execBitOp(dec.Spec.Name, fl, pcAfter)
	case "SHIFT":
		return c.execShift(fl)
	case "Bcc":
		return c.execBcc(fl, pcAfter)
	case "BSR":
		return c.execBsr(fl, pcAfter)
	case "DBcc":
		return c.execDbcc(fl, pcAfter)
	case "JMP":
		return c.execJmp(fl, pcAfter)
	case "JSR":
		return c.execJsr(fl, pcAfter)
	case "RTS":
		return c.execRts()
	case "RTE":
		return c.execRte()
	case "NOP":
		return nil
	default:
		return &UnimplementedError{Name: dec.Spec.Name, PC: opcodePC}
	}
}

// fetchWord consumes one word from the live instruction stream, used by
// the to-SR immediate instructions whose opcode carries no EA field at
// all. Errors here are rare (only an unmapped extension word) and are
// deliberately swallowed to zero per this core's general sticky-fetch
// convention; a bus violation on the following access will surface the
// same underlying condition.
func (c *CPU) fetchWord() uint16 {
	v, err := c.Bus.Read16(c.PC)
	if err != nil {
		return 0
	}
	c.PC += 2
	return v
}

func (c *CPU) fetchLong() uint32 {
	v, err := c.Bus.Read32(c.PC)
	if err != nil {
		return 0
	}
	c.PC += 4
	return v
}
