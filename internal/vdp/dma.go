package vdp

// dmaCopy performs a synchronous DMA copy: `Length` bytes moved from
// the source address assembled out of registers 0x15-0x17 to the
// transfer's destination, two bytes (one word) at a time
// (`original_source/heaven_ice/vdp.cpp` _dma_copy).
func (v *VDP) dmaCopy(t Transfer) error {
	length := v.Reg.TxLength()
	srcAddr := v.Reg.SrcAddr()

	for i := uint32(0); i < length; i += 2 {
		word, err := v.readTarget(t.Src, srcAddr+i)
		if err != nil {
			return err
		}
		if err := v.writeTarget(t.Dst, t.DstAddr+i, word); err != nil {
			return err
		}
	}
	return nil
}

// readTarget and writeTarget are the VDP's own "bus": every internal
// memory is word-addressed, so addr must be even (spec.md §4.8), and
// out of range the way the source program's bounds-checked
// std::array::at is (fatal, not wraparound). SysBus reads go out
// through the external system bus handle; DataPort is never a valid
// memory target for these helpers, only a marker readData/writeData
// interpret directly.
func (v *VDP) readTarget(t Target, addr uint32) (uint16, error) {
	if t == SysBus {
		if v.bus == nil {
			return 0, &CommandError{Reason: "dma read from system bus with no bus attached"}
		}
		return v.bus.Read16(addr)
	}
	if addr%2 != 0 {
		return 0, &OddAddressError{Target: t, Addr: addr}
	}
	idx := int(addr / 2)
	switch t {
	case VRAM:
		if idx >= vramWords {
			return 0, &OutOfRangeError{Target: t, Addr: addr}
		}
		return v.vram[idx], nil
	case CRAM:
		if idx >= cramWords {
			return 0, &OutOfRangeError{Target: t, Addr: addr}
		}
		return v.cram[idx], nil
	case VSRAM:
		if idx >= vsramWords {
			return 0, &OutOfRangeError{Target: t, Addr: addr}
		}
		return v.vsram[idx], nil
	default:
		return 0, &CommandError{Reason: "invalid read target"}
	}
}

func (v *VDP) writeTarget(t Target, addr uint32, word uint16) error {
	if addr%2 != 0 {
		return &OddAddressError{Target: t, Addr: addr}
	}
	idx := int(addr / 2)
	switch t {
	case VRAM:
		if idx >= vramWords {
			return &OutOfRangeError{Target: t, Addr: addr}
		}
		v.vram[idx] = word
	case CRAM:
		if idx >= cramWords {
			return &OutOfRangeError{Target: t, Addr: addr}
		}
		v.cram[idx] = word
	case VSRAM:
		if idx >= vsramWords {
			return &OutOfRangeError{Target: t, Addr: addr}
		}
		v.vsram[idx] = word
	default:
		return &CommandError{Reason: "invalid write target"}
	}
	return nil
}
