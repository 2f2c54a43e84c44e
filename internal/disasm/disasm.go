// Package disasm decodes instructions out of a cartridge image and walks
// the reachable control-flow graph from a set of known entry points
// (spec.md §9: "treat as a graph traversal... follow conditional/
// unconditional branches; stop at unconditional branches; record visited
// PCs"). Pretty-printing and the hex viewer are out of scope (spec.md
// §1); Instruction carries enough structure for a caller or test to
// inspect without needing a formatter.
package disasm

import (
	"github.com/intuitionamiga/geniemu/internal/cpu"
	"github.com/intuitionamiga/geniemu/internal/sizeval"
)

// Bus is the read-only memory the decoder walks. A cartridge ROM image
// wrapped in a bus.Memory, or a running bus.Router, both satisfy this
// structurally (the local-interface pattern used throughout this
// module).
type Bus interface {
	Read16(addr uint32) (uint16, error)
	Read32(addr uint32) (uint32, error)
}

// Instruction is one decoded opcode at a fixed address: the matched
// spec's name, its typed field record, any resolved source/destination
// operand, and the number of bytes it occupies (opcode word plus any
// extension words its addressing modes consumed).
type Instruction struct {
	PC     uint32
	Name   string
	Fields cpu.Fields
	Src    *cpu.AddrMode
	Dst    *cpu.AddrMode
	Bytes  uint32

	// RegisterMask is MOVEM's register-selection extension word; zero and
	// unused for every other instruction.
	RegisterMask uint16
}

// busFetcher adapts a Bus plus a running cursor into the cpu.Fetcher
// interface cpu.DecodeEA consumes, the same sticky-error shape as the
// CPU package's own internal busFetcher (cpu/cpu.go) — duplicated here
// rather than exported, since the cursor this package walks is never the
// live program counter of a running CPU.
type busFetcher struct {
	bus Bus
	pc  uint32
	err error
}

func (f *busFetcher) FetchWord() uint16 {
	if f.err != nil {
		return 0
	}
	v, err := f.bus.Read16(f.pc)
	if err != nil {
		f.err = err
		return 0
	}
	f.pc += 2
	return v
}

func (f *busFetcher) FetchLong() uint32 {
	if f.err != nil {
		return 0
	}
	v, err := f.bus.Read32(f.pc)
	if err != nil {
		f.err = err
		return 0
	}
	f.pc += 4
	return v
}

// DecodeOne decodes the single instruction at addr, walking whatever
// addressing-mode extension words it consumes (spec.md §4.2). Bytes
// reports the total length of the instruction, opcode word included.
func DecodeOne(bus Bus, table *cpu.DecodeTable, addr uint32) (Instruction, error) {
	opcode, err := bus.Read16(addr)
	if err != nil {
		return Instruction{}, err
	}
	dec, err := table.Decode(opcode, addr)
	if err != nil {
		return Instruction{}, err
	}

	pcAfterOpcode := addr + 2
	f := &busFetcher{bus: bus, pc: pcAfterOpcode}
	inst := Instruction{PC: addr, Name: dec.Spec.Name, Fields: dec.Fields}

	if err := walkOperands(&inst, f, dec.Fields, pcAfterOpcode); err != nil {
		return Instruction{}, err
	}
	if f.err != nil {
		return Instruction{}, f.err
	}

	inst.Bytes = f.pc - addr
	return inst, nil
}

// walkOperands consumes exactly the extension words the real executor
// would for dec.Spec.Name (spec.md §4.5, mirroring internal/cpu's
// exec*.go dispatch family-by-family so the byte count this package
// reports always matches what Step would actually advance PC by),
// resolving src/dst operands along the way.
func walkOperands(inst *Instruction, f *busFetcher, fl cpu.Fields, pcAfterOpcode uint32) error {
	size := fl.Size
	if !fl.HasSize {
		size = sizeval.Word
	}

	switch inst.Name {
	case "MOVE":
		src, err := cpu.DecodeEA(f, fl.EA1Mode, fl.EA1Reg, size, pcAfterOpcode)
		if err != nil {
			return err
		}
		inst.Src = &src
		dst, err := cpu.DecodeEA(f, fl.EA2Mode, fl.EA2Reg, size, f.pc)
		if err != nil {
			return err
		}
		inst.Dst = &dst

	case "MOVEQ":
		inst.Src = &cpu.AddrMode{Kind: cpu.AMImmByte, Imm: int32(int8(fl.Data))}
		inst.Dst = &cpu.AddrMode{Kind: cpu.AMDataReg, Reg: fl.Dn}

	case "MOVEM":
		mask := f.FetchWord()
		am, err := cpu.DecodeEA(f, fl.EA1Mode, fl.EA1Reg, size, f.pc)
		if err != nil {
			return err
		}
		if fl.Direction == 1 {
			inst.Src = &am
		} else {
			inst.Dst = &am
		}
		inst.RegisterMask = mask

	case "LEA":
		src, err := cpu.DecodeEA(f, fl.EA1Mode, fl.EA1Reg, sizeval.Long, pcAfterOpcode)
		if err != nil {
			return err
		}
		inst.Src = &src
		inst.Dst = &cpu.AddrMode{Kind: cpu.AMAddrReg, Reg: fl.An}

	case "CLR", "NEG", "NOT", "TST":
		dst, err := cpu.DecodeEA(f, fl.EA1Mode, fl.EA1Reg, size, pcAfterOpcode)
		if err != nil {
			return err
		}
		inst.Dst = &dst

	case "EXT", "SWAP", "CMPM", "ABCD", "EXG", "SHIFT":
		// Register-direct only in this core's practical subset: no
		// extension words, no addressing-mode walk needed.

	case "ADD", "SUB", "CMP", "AND", "OR", "EOR":
		ea, err := cpu.DecodeEA(f, fl.EA1Mode, fl.EA1Reg, size, pcAfterOpcode)
		if err != nil {
			return err
		}
		dn := cpu.AddrMode{Kind: cpu.AMDataReg, Reg: fl.Dn}
		switch {
		case inst.Name == "CMP":
			// CMP always compares Dn against the EA regardless of the
			// direction bit (internal/cpu's execRegEA).
			inst.Src, inst.Dst = &ea, &dn
		case fl.Direction == 0 && inst.Name != "EOR":
			inst.Src, inst.Dst = &ea, &dn
		default:
			inst.Src, inst.Dst = &dn, &ea
		}

	case "ADDI", "SUBI", "CMPI", "ANDI", "ORI", "EORI":
		var imm int32
		if size == sizeval.Long {
			imm = int32(f.FetchLong())
		} else {
			imm = int32(int16(f.FetchWord()))
		}
		ea, err := cpu.DecodeEA(f, fl.EA1Mode, fl.EA1Reg, size, f.pc)
		if err != nil {
			return err
		}
		kind := cpu.AMImmWord
		if size == sizeval.Long {
			kind = cpu.AMImmLong
		} else if size == sizeval.Byte {
			kind = cpu.AMImmByte
		}
		inst.Src = &cpu.AddrMode{Kind: kind, Imm: imm}
		inst.Dst = &ea

	case "ADDQ", "SUBQ":
		ea, err := cpu.DecodeEA(f, fl.EA1Mode, fl.EA1Reg, size, pcAfterOpcode)
		if err != nil {
			return err
		}
		inst.Src = &cpu.AddrMode{Kind: cpu.AMImmByte, Imm: int32(fl.Data)}
		inst.Dst = &ea

	case "ADDA", "SUBA", "CMPA":
		ea, err := cpu.DecodeEA(f, fl.EA1Mode, fl.EA1Reg, size, pcAfterOpcode)
		if err != nil {
			return err
		}
		inst.Src = &ea
		inst.Dst = &cpu.AddrMode{Kind: cpu.AMAddrReg, Reg: fl.An}

	case "ANDI_TO_SR", "ORI_TO_SR", "EORI_TO_SR":
		imm := f.FetchWord()
		inst.Src = &cpu.AddrMode{Kind: cpu.AMImmWord, Imm: int32(int16(imm))}

	case "MULU", "MULS", "DIVU", "DIVS":
		ea, err := cpu.DecodeEA(f, fl.EA1Mode, fl.EA1Reg, sizeval.Word, pcAfterOpcode)
		if err != nil {
			return err
		}
		inst.Src = &ea
		inst.Dst = &cpu.AddrMode{Kind: cpu.AMDataReg, Reg: fl.Dn}

	case "BTST", "BCHG", "BCLR", "BSET":
		dst, err := cpu.DecodeEA(f, fl.EA1Mode, fl.EA1Reg, sizeval.Long, pcAfterOpcode)
		if err != nil {
			return err
		}
		inst.Src = &cpu.AddrMode{Kind: cpu.AMDataReg, Reg: fl.Dn}
		inst.Dst = &dst

	case "Bcc", "BSR":
		disp := int32(fl.Disp)
		if disp == 0 {
			disp = int32(int16(f.FetchWord()))
		}
		inst.Src = &cpu.AddrMode{Kind: cpu.AMAbsLong, Imm: int32(pcAfterOpcode) + disp}

	case "DBcc":
		disp := int16(f.FetchWord())
		inst.Src = &cpu.AddrMode{Kind: cpu.AMAbsLong, Imm: int32(pcAfterOpcode) + int32(disp)}
		inst.Dst = &cpu.AddrMode{Kind: cpu.AMDataReg, Reg: fl.Dn}

	case "JMP", "JSR":
		src, err := cpu.DecodeEA(f, fl.EA1Mode, fl.EA1Reg, sizeval.Long, pcAfterOpcode)
		if err != nil {
			return err
		}
		inst.Src = &src

	case "RTS", "RTE", "NOP":
		// No operands, no extension words.
	}
	return nil
}

// IsUnconditionalJump reports whether control never falls through past
// this instruction: an always-true Bcc, or RTS/RTE/JMP (mirrors
// `original_source/heaven_ice/instruction.cpp`
// Instruction::is_unconditional_jump).
func (i Instruction) IsUnconditionalJump() bool {
	switch i.Name {
	case "Bcc":
		return i.Fields.Cond == cpu.CondT
	case "RTS", "RTE", "JMP":
		return true
	default:
		return false
	}
}

// IsConditionalJump reports whether this instruction may or may not
// transfer control, leaving a fallthrough successor live as well
// (mirrors instruction.cpp Instruction::is_conditional_jump).
func (i Instruction) IsConditionalJump() bool {
	switch i.Name {
	case "Bcc", "DBcc":
		return !i.IsUnconditionalJump()
	default:
		return false
	}
}

// IsCall reports whether this instruction pushes a return address before
// transferring control (mirrors instruction.cpp Instruction::is_fn_call).
func (i Instruction) IsCall() bool {
	switch i.Name {
	case "BSR", "JSR":
		return true
	default:
		return false
	}
}

// JumpAddr returns the statically known target address this instruction
// transfers control to, if any (mirrors instruction.cpp
// Instruction::jump_addr). JMP/JSR through a register-indirect or
// indexed effective address have no statically known target, matching
// the original's `addr_opt()` returning nothing for those AddrMode
// kinds.
func (i Instruction) JumpAddr() (uint32, bool) {
	switch i.Name {
	case "Bcc", "DBcc", "BSR", "JSR", "JMP":
		if i.Src != nil && i.Src.Kind == cpu.AMAbsLong {
			return uint32(i.Src.Imm), true
		}
		return 0, false
	default:
		return 0, false
	}
}
