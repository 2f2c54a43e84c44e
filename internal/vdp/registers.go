// Package vdp implements the graphics coprocessor: a 24-register control
// bank, the command-port write/read state machine, the DMA engine, and
// the per-frame plane/sprite/window compositor.
package vdp

import "fmt"

// NumRegisters is the size of the VDP's control register file (spec.md
// §4.7, `original_source/heaven_ice/magic_constants.hpp` NUM_VDP_REGS).
const NumRegisters = 24

// Plane names one of the three tile layers the renderer composites.
type Plane int

const (
	Foreground Plane = iota
	Background
	Window
)

// Priority is a plane cell's or sprite's draw-order layer: the renderer
// makes two full passes, Low then High, so a High cell always overlays
// every Low cell (spec.md §4.9).
type Priority int

const (
	Low Priority = iota
	High
)

// PriorityOfCode decodes a single priority bit.
func PriorityOfCode(code uint8) (Priority, error) {
	switch code {
	case 0:
		return Low, nil
	case 1:
		return High, nil
	default:
		return 0, fmt.Errorf("vdp: invalid priority code %d", code)
	}
}

// HScrollKind selects how register 0x0b's low bits group the horizontal
// scroll table. Only WholeScreen is implemented (spec.md §4.9); the
// per-strip/per-line modes are fatal if selected.
type HScrollKind int

const (
	HScrollWholeScreen HScrollKind = iota
	HScrollPer8PixelStrips
	HScrollPerScanLine
)

func hscrollKindOfCode(code uint8) (HScrollKind, error) {
	switch code {
	case 0:
		return HScrollWholeScreen, nil
	case 2:
		return HScrollPer8PixelStrips, nil
	case 4:
		return HScrollPerScanLine, nil
	default:
		return 0, fmt.Errorf("vdp: invalid hscroll kind code %d", code)
	}
}

// VScrollKind is VScrollKind's vertical counterpart; only WholeScreen is
// implemented.
type VScrollKind int

const (
	VScrollWholeScreen VScrollKind = iota
	VScrollPer16PixelStrips
)

func vscrollKindOfCode(code uint8) (VScrollKind, error) {
	switch code {
	case 0:
		return VScrollWholeScreen, nil
	case 1:
		return VScrollPer16PixelStrips, nil
	default:
		return 0, fmt.Errorf("vdp: invalid vscroll kind code %d", code)
	}
}

// Mode decodes registers 0 and 1, the two "mode" bytes every other
// register derivation is independent of (spec.md §4.11's VBlank-enable
// check reads Mode directly).
type Mode struct {
	b1, b2 uint8
}

func (m Mode) HorizontalInterrupts() bool { return bitSet(m.b1, 4) }
func (m Mode) NormalOperation() bool      { return bitSet(m.b1, 2) }
func (m Mode) FreezeHVCounter() bool      { return bitSet(m.b1, 1) }
func (m Mode) Display() bool              { return !bitSet(m.b1, 0) }

func (m Mode) Use128K() bool            { return bitSet(m.b2, 7) }
func (m Mode) Clear() bool              { return !bitSet(m.b2, 6) }
func (m Mode) VerticalInterrupts() bool { return bitSet(m.b2, 5) }
func (m Mode) DMA() bool                { return bitSet(m.b2, 4) }
func (m Mode) PAL() bool                { return bitSet(m.b2, 3) }
func (m Mode) MDMode() bool             { return bitSet(m.b2, 2) }

// StatusWord packs the handful of VDP status bits the source program
// reports on a control-port read (spec.md §4.7 implies a status read is
// reachable through the same port; this core always reports an empty,
// non-full FIFO with the vblank-in-progress bit set).
type StatusWord struct {
	FIFOEmpty      bool
	FIFOFull       bool
	VBlankProgress bool
	PAL            bool
}

// ToWord packs the flags into the fixed base pattern the source program
// uses (`original_source/heaven_ice/vdp.cpp` VDPStatusRegister::to_word).
func (s StatusWord) ToWord() uint16 {
	w := uint16(0x3400)
	if s.FIFOEmpty {
		w |= 1 << 9
	}
	if s.FIFOFull {
		w |= 1 << 8
	}
	if s.VBlankProgress {
		w |= 1 << 3
	}
	if s.PAL {
		w |= 1 << 1
	}
	return w
}

// Registers is the VDP's 24-byte control bank plus the derivation
// methods every other VDP subsystem reads rendering/DMA parameters
// through, grounded field-for-field on
// `original_source/heaven_ice/vdp.cpp`'s VDPRegisters.
type Registers struct {
	reg     [NumRegisters]uint8
	Verbose bool
}

func (r *Registers) Write(idx int, b uint8) {
	r.reg[idx] = b
}

func (r *Registers) at(idx int) uint8 { return r.reg[idx] }

func bitSet(v uint8, bit int) bool { return (v>>uint(bit))&1 == 1 }

// bits extracts a width-bit field starting at bit pos from v.
func bits(v uint32, pos, width int) uint32 {
	return (v >> uint(pos)) & ((1 << uint(width)) - 1)
}

// SpriteTableAddr is the base VRAM address of the sprite attribute
// table, register 5's low 7 bits scaled by 0x200.
func (r *Registers) SpriteTableAddr() uint32 {
	return uint32(bits(uint32(r.at(5)), 0, 7)) * 0x200
}

func codeToPlaneSize(code uint32) (int, error) {
	switch code {
	case 0:
		return 32, nil
	case 1:
		return 64, nil
	case 3:
		return 128, nil
	default:
		return 0, fmt.Errorf("vdp: invalid plane size code %d", code)
	}
}

// PlaneWidth and PlaneHeight are the shared (width, height) in cells for
// every plane, register 0x10's two 2-bit size codes.
func (r *Registers) PlaneWidth() (int, error) {
	return codeToPlaneSize(bits(uint32(r.at(0x10)), 0, 2))
}

func (r *Registers) PlaneHeight() (int, error) {
	return codeToPlaneSize(bits(uint32(r.at(0x10)), 4, 2))
}

// PlaneAddr is plane's base VRAM address: registers 2 (Foreground), 4
// (Background), and 3 (Window) each contribute a differently-shaped
// field scaled by a different constant.
func (r *Registers) PlaneAddr(p Plane) uint32 {
	switch p {
	case Foreground:
		return uint32(bits(uint32(r.at(2)), 3, 3)) * 0x2000
	case Background:
		return uint32(bits(uint32(r.at(4)), 0, 3)) * 0x2000
	case Window:
		return uint32(bits(uint32(r.at(3)), 1, 5)) * 0x800
	default:
		panic(fmt.Sprintf("vdp: invalid plane %d", p))
	}
}

// AccessStride is the per-word advance a data-port access applies to an
// armed transfer's destination address (register 0x0f).
func (r *Registers) AccessStride() uint32 { return uint32(r.at(0x0f)) }

// VDPMode reads the two mode registers.
func (r *Registers) VDPMode() Mode { return Mode{b1: r.at(0), b2: r.at(1)} }

// SrcAddr assembles the DMA source address from registers 0x15-0x17:
// the low 16 bits come from 0x15/0x16, the high bits from 0x17 masked
// to 7 bits when bit 7 there is clear (RAM source) or 6 bits when set,
// then the whole thing is doubled (VRAM addressing is in 16-bit words).
func (r *Registers) SrcAddr() uint32 {
	fromRAM := bits(uint32(r.at(0x17)), 7, 1) == 0
	mask := uint8(0x3f)
	if fromRAM {
		mask = 0x7f
	}
	out := uint32(r.at(0x15))
	out |= uint32(r.at(0x16)) << 8
	out |= uint32(r.at(0x17)&mask) << 16
	return out * 2
}

// TxLength is the DMA/manual transfer length in bytes, registers 0x13
// (low) and 0x14 (high), doubled because the length is counted in words.
func (r *Registers) TxLength() uint32 {
	return (uint32(r.at(0x13)) | uint32(r.at(0x14))<<8) * 2
}

// TxIsFill reports whether the armed DMA transfer is a fill rather than
// a copy: register 0x17 bits 6-7 equal 2.
func (r *Registers) TxIsFill() bool {
	return bits(uint32(r.at(0x17)), 6, 2) == 2
}

func (r *Registers) HScrollKind() (HScrollKind, error) {
	return hscrollKindOfCode(uint8(bits(uint32(r.at(0x0b)), 0, 2)))
}

func (r *Registers) VScrollKind() (VScrollKind, error) {
	return vscrollKindOfCode(uint8(bits(uint32(r.at(0x0b)), 2, 1)))
}

// HScrollAddr is the base VRAM address of the horizontal scroll table,
// register 0x0d's low 6 bits scaled by 0x400.
func (r *Registers) HScrollAddr() uint32 {
	return uint32(bits(uint32(r.at(0x0d)), 0, 6)) * 0x400
}

func (r *Registers) WindowX() uint32 { return uint32(bits(uint32(r.at(0x11)), 0, 5)) * 2 * 8 }
func (r *Registers) WindowY() uint32 { return uint32(bits(uint32(r.at(0x12)), 0, 5)) * 8 }

// WindowRight and WindowBottom both read register 0x11 bit 7: the source
// program defines WindowRight identically to WindowBottom and never
// exercises the horizontal half of the split (its render_window leaves
// the horizontal-extent branch commented out with a "hack" note), so
// the window plane here is likewise always full-width — see DESIGN.md.
func (r *Registers) WindowRight() bool  { return bits(uint32(r.at(0x11)), 7, 1) == 1 }
func (r *Registers) WindowBottom() bool { return bits(uint32(r.at(0x11)), 7, 1) == 1 }

// SaveState/LoadState are provided by vdp.go, which owns the full
// register+VRAM+CRAM+VSRAM state dump.
