package vdp

// isWordCmd reports whether a control-port word is a register-write
// command: top three bits 100 (spec.md §4.7).
func isWordCmd(cmd uint32) bool { return cmd&0xe000 == 0x8000 }

// isLongCmd reports whether a control-port long is itself a complete
// transfer command rather than two word writes: its two low bits and
// bits 8-11 are all zero (spec.md §4.7).
func isLongCmd(cmd uint32) bool { return cmd&0xff0c == 0 }

// writeCtrlWord implements the control port's word-write state machine
// (spec.md §4.7): a second word after a latched high word completes a
// long command; otherwise a register-write command executes
// immediately; otherwise the word is latched as the pending high half.
func (v *VDP) writeCtrlWord(word uint16) error {
	if v.partialCtrl {
		v.partialCtrl = false
		return v.executeLongCmd(uint32(v.cmdHi)<<16 | uint32(word))
	}
	if isWordCmd(uint32(word)) {
		return v.executeWordCmd(uint32(word))
	}
	v.partialCtrl = true
	v.cmdHi = word
	return nil
}

// writeCtrlLong implements the control port's long-write path: either a
// single transfer command, or two sequential word commands (spec.md
// §4.7: "otherwise treat as two sequential word writes").
func (v *VDP) writeCtrlLong(long uint32) error {
	if isLongCmd(long) {
		return v.executeLongCmd(long)
	}
	if err := v.executeWordCmd(long >> 16); err != nil {
		return err
	}
	return v.executeWordCmd(long & 0xffff)
}

// executeWordCmd is a register-write command: bits 8-12 select the
// register (0-23), bits 0-7 are the value (spec.md §4.7).
func (v *VDP) executeWordCmd(cmd uint32) error {
	data := uint8(cmd & 0xff)
	regIdx := int((cmd >> 8) & 0x1f)
	if regIdx >= NumRegisters {
		return &CommandError{Reason: "register index out of range"}
	}
	v.Reg.Write(regIdx, data)
	return nil
}

// executeLongCmd parses a 32-bit transfer command and arms a Transfer,
// performing a DMA copy immediately when one is requested (spec.md
// §4.7). Bit layout: dst_addr = bits0-1 (high 2) ++ bits16-29 (low 14);
// mode_code = bits4-5 (high 2) ++ bits30-31 (low 2); vram_to_vram = bit6;
// dma = bit7.
func (v *VDP) executeLongCmd(cmd uint32) error {
	addrHi := bits(cmd, 0, 2)
	modeHi := bits(cmd, 4, 2)
	vramToVRAM := bits(cmd, 6, 1) == 1
	dma := bits(cmd, 7, 1) == 1
	addrLo := bits(cmd, 16, 14)
	modeLo := bits(cmd, 30, 2)

	dstAddr := (addrHi << 14) | addrLo
	modeCode := (modeHi << 2) | modeLo

	dst, err := targetOfCode(modeCode)
	if err != nil {
		return err
	}
	rw, err := rwOfCode(modeCode)
	if err != nil {
		return err
	}
	fill := dma && v.Reg.TxIsFill()
	length := v.Reg.TxLength()

	var src Target
	switch {
	case vramToVRAM:
		src = VRAM
	case dma && fill:
		src = DataPort
	case dma && !fill:
		src = SysBus
	default:
		src = DataPort
	}

	if rw == Read {
		src, dst = dst, src
	}

	t := Transfer{Dst: dst, Src: src, DstAddr: dstAddr, Length: length, DMA: dma, Fill: fill}
	v.transfer = nil
	if dma && !fill {
		return v.dmaCopy(t)
	}
	v.transfer = &t
	return nil
}

// writeData implements the data port's write half of spec.md §4.8: a
// fill transfer replicates the word across its whole length then
// disarms, a manual (non-DMA) transfer writes one word and advances by
// the access stride, and any other shape is unsupported.
func (v *VDP) writeData(word uint16) error {
	t := v.transfer
	if t == nil {
		return &CommandError{Reason: "data write with no transfer armed"}
	}
	switch {
	case t.DMA && t.Fill:
		for i := uint32(0); i < t.Length; i += 2 {
			if err := v.writeTarget(t.Dst, t.DstAddr+i, word); err != nil {
				return err
			}
		}
		v.transfer = nil
		return nil
	case !t.DMA:
		if err := v.writeTarget(t.Dst, t.DstAddr, word); err != nil {
			return err
		}
		t.DstAddr += v.Reg.AccessStride()
		return nil
	default:
		return &CommandError{Reason: "unsupported data write for active DMA transfer"}
	}
}

// readData implements the data port's read half: only a manual,
// data-port-destined transfer can be read back this way (spec.md §4.8).
func (v *VDP) readData() (uint16, error) {
	t := v.transfer
	if t == nil {
		return 0, &CommandError{Reason: "data read with no transfer armed"}
	}
	if t.DMA || t.Dst != DataPort {
		return 0, &CommandError{Reason: "unsupported data read for active transfer"}
	}
	word, err := v.readTarget(t.Src, t.DstAddr)
	if err != nil {
		return 0, err
	}
	t.DstAddr += v.Reg.AccessStride()
	return word, nil
}
