package cpu

import "github.com/intuitionamiga/geniemu/internal/sizeval"

func signBitMask(size sizeval.Size) uint32 {
	return uint32(1) << (size.Bits() - 1)
}

func isNeg(size sizeval.Size, v uint32) bool {
	return v&signBitMask(size) != 0
}

// ApplyAdd computes dst+src at size, updating all five flags per the
// ADD/SUB/CMP/NEG family policy (spec.md §4.4): Overflow is the signed
// two's-complement overflow predicate, Carry the unsigned carry-out,
// Extend mirrors Carry.
func (sr *StatusRegister) ApplyAdd(size sizeval.Size, dst, src uint32) uint32 {
	d, s := size.Truncate(dst), size.Truncate(src)
	sum := d + s
	r := size.Truncate(sum)
	carry := uint64(d)+uint64(s) > uint64(size.Mask())
	dSign, sSign, rSign := isNeg(size, d), isNeg(size, s), isNeg(size, r)
	ovf := dSign == sSign && rSign != dSign
	sr.Negative, sr.Zero, sr.Overflow, sr.Carry = flagOf(rSign), flagOf(r == 0), flagOf(ovf), flagOf(carry)
	sr.Extend = sr.Carry
	return r
}

// ApplySub computes dst-src at size with the same full five-flag policy
// as ApplyAdd (spec.md §4.4, §8's `SUB(a,b)` testable property).
func (sr *StatusRegister) ApplySub(size sizeval.Size, dst, src uint32) uint32 {
	d, s := size.Truncate(dst), size.Truncate(src)
	r := size.Truncate(d - s)
	carry := d < s
	dSign, sSign, rSign := isNeg(size, d), isNeg(size, s), isNeg(size, r)
	ovf := dSign != sSign && rSign != dSign
	sr.Negative, sr.Zero, sr.Overflow, sr.Carry = flagOf(rSign), flagOf(r == 0), flagOf(ovf), flagOf(carry)
	sr.Extend = sr.Carry
	return r
}

// ApplyCmp updates flags exactly like ApplySub but the caller discards
// the numeric result (spec.md §4.4: "CMP updates flags but discards the
// numerical result").
func (sr *StatusRegister) ApplyCmp(size sizeval.Size, dst, src uint32) {
	sr.ApplySub(size, dst, src)
}

// ApplyNeg computes 0-v with the ADD/SUB/CMP/NEG family's full flag
// policy.
func (sr *StatusRegister) ApplyNeg(size sizeval.Size, v uint32) uint32 {
	return sr.ApplySub(size, 0, v)
}

// ApplyLogic sets Zero/Negative from result and clears Overflow/Carry,
// leaving Extend untouched — the shared policy for
// AND/OR/EOR/NOT/MOVE/TST/SWAP/EXT/CLR (spec.md §4.4).
func (sr *StatusRegister) ApplyLogic(size sizeval.Size, result uint32) uint32 {
	r := size.Truncate(result)
	sr.setNZ(isNeg(size, r), r == 0)
	return r
}

// ApplyMulDiv sets Zero/Negative from a 32-bit result and clears
// Overflow/Carry, the shared MULU/MULS/DIVU/DIVS policy (spec.md §4.4).
func (sr *StatusRegister) ApplyMulDiv(result uint32) uint32 {
	sr.setNZ(isNeg(sizeval.Long, result), result == 0)
	return result
}

// ApplyBitTest implements the Zero=¬bit policy shared by
// BTST/BCLR/BSET/BCHG (spec.md §4.4): no other flag is touched.
func (sr *StatusRegister) ApplyBitTest(bitSet bool) {
	sr.Zero = flagOf(!bitSet)
}

// ApplyABCD performs one byte of binary-coded-decimal addition, using
// Extend as the input carry. Zero is cleared when the result is
// non-zero but is never explicitly set on a zero result, so a chain of
// ABCD calls across multiple bytes of a multi-byte BCD value correctly
// leaves Zero reflecting the whole chain rather than just the last byte
// (spec.md §4.4, §9 — preserved literally per the design note there).
func (sr *StatusRegister) ApplyABCD(a, b uint8) uint8 {
	extIn := uint8(0)
	if sr.Extend == Set {
		extIn = 1
	}
	lo := (a & 0xf) + (b & 0xf) + extIn
	hi := (a >> 4) + (b >> 4)
	if lo >= 10 {
		lo -= 10
		hi++
	}
	carry := false
	if hi >= 10 {
		hi -= 10
		carry = true
	}
	result := (hi << 4) | lo
	sr.Extend = flagOf(carry)
	sr.Carry = flagOf(carry)
	sr.Negative = flagOf(result&0x80 != 0)
	if result != 0 {
		sr.Zero = Clear
	}
	return result
}

type shiftStep func(size sizeval.Size, v uint32) (next uint32, bitOut, signChanged bool)

func stepASL(size sizeval.Size, v uint32) (uint32, bool, bool) {
	sign := isNeg(size, v)
	next := size.Truncate(v << 1)
	return next, sign, sign != isNeg(size, next)
}

func stepLSLStep(size sizeval.Size, v uint32) (uint32, bool, bool) {
	bitOut := isNeg(size, v)
	return size.Truncate(v << 1), bitOut, false
}

func stepASR(size sizeval.Size, v uint32) (uint32, bool, bool) {
	bitOut := v&1 != 0
	sign := v & signBitMask(size)
	next := size.Truncate((v >> 1) | sign)
	return next, bitOut, false
}

func stepLSR(size sizeval.Size, v uint32) (uint32, bool, bool) {
	bitOut := v&1 != 0
	return size.Truncate(v >> 1), bitOut, false
}

func stepROL(size sizeval.Size, v uint32) (uint32, bool, bool) {
	bitOut := isNeg(size, v)
	next := v << 1
	if bitOut {
		next |= 1
	}
	return size.Truncate(next), bitOut, false
}

func stepROR(size sizeval.Size, v uint32) (uint32, bool, bool) {
	bitOut := v&1 != 0
	next := v >> 1
	if bitOut {
		next |= signBitMask(size)
	}
	return size.Truncate(next), bitOut, false
}

// applyShiftFamily drives count single-bit steps of step over v,
// updating flags per the policy shared by the six shift/rotate families
// (spec.md §4.4): Carry always reflects the last bit shifted out;
// Extend mirrors it for ASL/LSL/ASR/LSR but is untouched by ROL/ROR;
// Overflow is tracked only for ASL (set if the sign bit changed on any
// step) and otherwise always cleared. A shift/rotate by zero leaves
// Carry and Extend exactly as they were, refreshing Negative/Zero and
// clearing Overflow.
func (sr *StatusRegister) applyShiftFamily(size sizeval.Size, v uint32, count uint, step shiftStep, touchExtend, trackOverflow bool) uint32 {
	result := size.Truncate(v)
	var lastOut, anyOvf bool
	for i := uint(0); i < count; i++ {
		var changed bool
		result, lastOut, changed = step(size, result)
		if trackOverflow && changed {
			anyOvf = true
		}
	}
	if count > 0 {
		sr.Carry = flagOf(lastOut)
		if touchExtend {
			sr.Extend = flagOf(lastOut)
		}
		sr.Overflow = flagOf(anyOvf)
	} else {
		sr.Overflow = Clear
	}
	sr.Negative = flagOf(isNeg(size, result))
	sr.Zero = flagOf(result == 0)
	return result
}

func (sr *StatusRegister) ApplyASL(size sizeval.Size, v uint32, count uint) uint32 {
	return sr.applyShiftFamily(size, v, count, stepASL, true, true)
}

func (sr *StatusRegister) ApplyLSL(size sizeval.Size, v uint32, count uint) uint32 {
	return sr.applyShiftFamily(size, v, count, stepLSLStep, true, false)
}

func (sr *StatusRegister) ApplyASR(size sizeval.Size, v uint32, count uint) uint32 {
	return sr.applyShiftFamily(size, v, count, stepASR, true, false)
}

func (sr *StatusRegister) ApplyLSR(size sizeval.Size, v uint32, count uint) uint32 {
	return sr.applyShiftFamily(size, v, count, stepLSR, true, false)
}

func (sr *StatusRegister) ApplyROL(size sizeval.Size, v uint32, count uint) uint32 {
	return sr.applyShiftFamily(size, v, count, stepROL, false, false)
}

func (sr *StatusRegister) ApplyROR(size sizeval.Size, v uint32, count uint) uint32 {
	return sr.applyShiftFamily(size, v, count, stepROR, false, false)
}
