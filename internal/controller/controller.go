// Package controller implements the two-pad controller port: an
// 8-key-per-pad state machine multiplexed onto a 2-byte data register
// per pad via the last bit written to it (spec.md §4.10).
package controller

import "fmt"

// Key names one of the eight buttons a pad reports.
type Key int

const (
	Start Key = iota
	Right
	Left
	Up
	Down
	A
	B
	C
)

// Port addresses within the controller's mapped region
// (`original_source/heaven_ice/magic_constants.hpp`).
const (
	data1Addr = 0xa10002
	data2Addr = 0xa10003
	data3Addr = 0xa10004
	data4Addr = 0xa10005
	ctrl1Addr = 0xa10008
	ctrl2Addr = 0xa10009
	ctrl3Addr = 0xa1000a
	ctrl4Addr = 0xa1000b
	expansionPortCtrl = 0xa1000c
)

// pad is one controller's 8-key press state plus its control/data
// register pairs, grounded on
// `original_source/heaven_ice/controller.cpp`'s Control.
type pad struct {
	ctrl    [2]uint8
	data    [2]uint8
	pressed [8]bool
}

func (p *pad) keyDown(k Key) { p.pressed[k] = true }
func (p *pad) keyUp(k Key)   { p.pressed[k] = false }

// keyBit reports the wire value of k: 0 when pressed, 1 when released
// (spec.md §4.10).
func (p *pad) keyBit(k Key) uint8 {
	if p.pressed[k] {
		return 0
	}
	return 1
}

// writeData always lands in data[1] regardless of which data register
// was actually addressed, reproducing the source program's Control::data
// verbatim: it ignores its own idx parameter.
func (p *pad) writeData(selectBit uint8) {
	p.data[1] = p.makeData(selectBit)
}

// makeData packs the six active-low key bits the current select bit
// chooses, with bit 6 echoing the select bit itself so strobe code can
// tell the two halves apart (spec.md §4.10).
func (p *pad) makeData(sel uint8) uint8 {
	ret := sel << 6
	switch sel {
	case 0:
		ret |= p.keyBit(Up) << 0
		ret |= p.keyBit(Down) << 1
		ret |= p.keyBit(A) << 4
		ret |= p.keyBit(Start) << 5
	case 1:
		ret |= p.keyBit(Up) << 0
		ret |= p.keyBit(Down) << 1
		ret |= p.keyBit(Left) << 2
		ret |= p.keyBit(Right) << 3
		ret |= p.keyBit(B) << 4
		ret |= p.keyBit(C) << 5
	}
	return ret
}

// PortError reports an access to an address this controller does not
// recognize, or a write width it cannot service (spec.md §4.12).
type PortError struct {
	Addr uint32
	Op   string
}

func (e *PortError) Error() string {
	return fmt.Sprintf("controller: invalid %s at port address %#x", e.Op, e.Addr)
}

// Controller is the two-pad controller port (spec.md §4.10).
type Controller struct {
	pad1, pad2 pad
}

func New() *Controller { return &Controller{} }

func (c *Controller) padFor(id int) (*pad, error) {
	switch id {
	case 0:
		return &c.pad1, nil
	case 1:
		return &c.pad2, nil
	default:
		return nil, fmt.Errorf("controller: only pads 0 and 1 are supported, got %d", id)
	}
}

// KeyDown and KeyUp set a key's press state on the given pad (0 or 1).
func (c *Controller) KeyDown(padID int, k Key) error {
	p, err := c.padFor(padID)
	if err != nil {
		return err
	}
	p.keyDown(k)
	return nil
}

func (c *Controller) KeyUp(padID int, k Key) error {
	p, err := c.padFor(padID)
	if err != nil {
		return err
	}
	p.keyUp(k)
	return nil
}

func (c *Controller) Read8(addr uint32) (uint8, error) {
	switch addr {
	case data1Addr:
		return c.pad1.data[0], nil
	case data2Addr:
		return c.pad1.data[1], nil
	case data3Addr:
		return c.pad2.data[0], nil
	case data4Addr:
		return c.pad2.data[1], nil
	case ctrl1Addr:
		return c.pad1.ctrl[0], nil
	case ctrl2Addr:
		return c.pad1.ctrl[1], nil
	case ctrl3Addr:
		return c.pad2.ctrl[0], nil
	case ctrl4Addr:
		return c.pad2.ctrl[1], nil
	default:
		return 0, &PortError{Addr: addr, Op: "byte read"}
	}
}

func (c *Controller) Write8(addr uint32, v uint8) error {
	switch addr {
	case ctrl1Addr:
		c.pad1.ctrl[0] = v
	case ctrl2Addr:
		c.pad1.ctrl[1] = v
	case ctrl3Addr:
		c.pad2.ctrl[0] = v
	case ctrl4Addr:
		c.pad2.ctrl[1] = v
	case data1Addr, data2Addr:
		c.pad1.writeData((v >> 6) & 1)
	case data3Addr, data4Addr:
		c.pad2.writeData((v >> 6) & 1)
	default:
		return &PortError{Addr: addr, Op: "byte write"}
	}
	return nil
}

// Read16 synthesizes a word from two byte reads, except the expansion
// port control register, which this core doesn't implement beyond
// reporting a constant zero (spec.md §4.10 scopes the controller to the
// two gamepad ports; `original_source/heaven_ice/controller.cpp` `_w`
// carries a comment noting it never worked out why the ROM checks this
// port at all).
func (c *Controller) Read16(addr uint32) (uint16, error) {
	if addr == expansionPortCtrl {
		return 0, nil
	}
	hi, err := c.Read8(addr)
	if err != nil {
		return 0, err
	}
	lo, err := c.Read8(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *Controller) Read32(addr uint32) (uint32, error) {
	hi, err := c.Read16(addr)
	if err != nil {
		return 0, err
	}
	lo, err := c.Read16(addr + 2)
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

func (c *Controller) Write16(addr uint32, _ uint16) error {
	return &PortError{Addr: addr, Op: "word write"}
}

func (c *Controller) Write32(addr uint32, _ uint32) error {
	return &PortError{Addr: addr, Op: "long write"}
}
