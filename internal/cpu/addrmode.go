package cpu

import "github.com/intuitionamiga/geniemu/internal/sizeval"

// AddrModeKind is one of the eleven addressing-mode variants named in
// spec.md §3, with register direct split into AMDataReg and AMAddrReg,
// so the enum has twelve kinds. PC-relative modes are not among them: per spec.md §4.2
// they are resolved into an absolute address at decode time, since the
// program counter value they are relative to is already known once the
// extension word has been read.
type AddrModeKind int

const (
	AMImmByte AddrModeKind = iota
	AMImmWord
	AMImmLong
	AMAbsWord
	AMAbsLong
	AMDataReg
	AMAddrReg
	AMAddrInd
	AMPostInc
	AMPreDec
	AMIndDisp
	AMIndIndexed
)

// AddrMode is a resolved effective-address operand. Each variant
// populates only the fields it needs (spec.md §3's "register unions →
// tagged variants" design note).
type AddrMode struct {
	Kind    AddrModeKind
	Imm     int32        // immediate value / absolute address / base displacement
	Reg     int          // base register number (address or data register, per Kind)
	Reg2    int          // index register number, AMIndIndexed only
	Reg2IsA bool         // index register is an address register, AMIndIndexed only
	IdxSize sizeval.Size // index register read size, AMIndIndexed only
}

// Fetcher reads extension words from the program stream, starting at the
// current program counter and advancing it, exactly as the instruction
// fetch cursor does for the opcode word itself.
type Fetcher interface {
	FetchWord() uint16
	FetchLong() uint32
}

// DecodeEA resolves a 6-bit mode/register pair into an AddrMode,
// consuming 0, 2, or 4 bytes of extension from f as spec.md §4.2's table
// requires. pcAfterOpcode is the address of the word immediately after
// the opcode word — the base PC-relative computations use, which is
// fixed regardless of how many extension words have already been
// consumed for an earlier operand of the same instruction.
func DecodeEA(f Fetcher, mode, reg int, size sizeval.Size, pcAfterOpcode uint32) (AddrMode, error) {
	switch mode {
	case 0:
		return AddrMode{Kind: AMDataReg, Reg: reg}, nil
	case 1:
		return AddrMode{Kind: AMAddrReg, Reg: reg}, nil
	case 2:
		return AddrMode{Kind: AMAddrInd, Reg: reg}, nil
	case 3:
		return AddrMode{Kind: AMPostInc, Reg: reg}, nil
	case 4:
		return AddrMode{Kind: AMPreDec, Reg: reg}, nil
	case 5:
		disp := int16(f.FetchWord())
		return AddrMode{Kind: AMIndDisp, Reg: reg, Imm: int32(disp)}, nil
	case 6:
		idxReg, idxIsA, idxSize, disp := decodeIndexExtension(f.FetchWord())
		return AddrMode{
			Kind: AMIndIndexed, Reg: reg,
			Reg2: idxReg, Reg2IsA: idxIsA, IdxSize: idxSize,
			Imm: int32(disp),
		}, nil
	case 7:
		return decodeAbsOrPCOrImm(f, reg, size, pcAfterOpcode)
	default:
		return AddrMode{}, &DecodeError{Reason: "addressing mode out of range"}
	}
}

func decodeAbsOrPCOrImm(f Fetcher, reg int, size sizeval.Size, pcAfterOpcode uint32) (AddrMode, error) {
	switch reg {
	case 0:
		w := f.FetchWord()
		return AddrMode{Kind: AMAbsWord, Imm: int32(int16(w))}, nil
	case 1:
		return AddrMode{Kind: AMAbsLong, Imm: int32(f.FetchLong())}, nil
	case 2:
		// PC-relative with 16-bit displacement, folded into an absolute
		// address at decode time (spec.md §4.2).
		disp := int16(f.FetchWord())
		target := int32(pcAfterOpcode) + int32(disp)
		return AddrMode{Kind: AMAbsLong, Imm: target}, nil
	case 3:
		// PC-relative with indexed displacement: same extension word
		// shape as mode 6, but relative to pcAfterOpcode rather than a
		// register. The index portion is resolved by the caller at
		// execution time from Reg2/Reg2IsA/IdxSize; Imm carries the
		// already-summed PC + base displacement so the executor need
		// only add the index register's value.
		idxReg, idxIsA, idxSize, disp := decodeIndexExtension(f.FetchWord())
		return AddrMode{
			Kind: AMIndIndexed, Reg: -1, // Reg<0 signals "base is PC, not a register" to the executor
			Reg2: idxReg, Reg2IsA: idxIsA, IdxSize: idxSize,
			Imm: int32(pcAfterOpcode) + int32(disp),
		}, nil
	case 4:
		switch size {
		case sizeval.Byte:
			return AddrMode{Kind: AMImmByte, Imm: int32(int8(uint8(f.FetchWord())))}, nil
		case sizeval.Word:
			return AddrMode{Kind: AMImmWord, Imm: int32(int16(f.FetchWord()))}, nil
		default:
			return AddrMode{Kind: AMImmLong, Imm: int32(f.FetchLong())}, nil
		}
	default:
		return AddrMode{}, &DecodeError{Reason: "mode 7 register field out of range"}
	}
}

// decodeIndexExtension parses the brief extension-word format used by
// indexed addressing modes 6 and 7/3: bit 15 selects data (0) or address
// (1) register, bits 14-12 the register number, bit 11 the index read
// size (0=word sign-extended, 1=long), bits 7-0 an 8-bit signed
// displacement.
func decodeIndexExtension(w uint16) (reg int, isAddr bool, size sizeval.Size, disp int8) {
	isAddr = w&0x8000 != 0
	reg = int((w >> 12) & 7)
	if w&0x0800 != 0 {
		size = sizeval.Long
	} else {
		size = sizeval.Word
	}
	disp = int8(uint8(w))
	return
}
