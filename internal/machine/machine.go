// Package machine wires the CPU, bus router, VDP, and controller into
// one runnable console instance and drives the frame loop: a fixed
// instruction budget per vertical blank, conditional interrupt
// injection, and display/input ticks (spec.md §4.11,
// `original_source/heaven_ice/emulate.cpp`).
package machine

import (
	"github.com/intuitionamiga/geniemu/internal/bus"
	"github.com/intuitionamiga/geniemu/internal/controller"
	"github.com/intuitionamiga/geniemu/internal/cpu"
	"github.com/intuitionamiga/geniemu/internal/savestate"
	"github.com/intuitionamiga/geniemu/internal/sizeval"
	"github.com/intuitionamiga/geniemu/internal/vdp"
)

// InstsPerFrame is the run loop's only notion of time: one vertical
// blank every InstsPerFrame instructions, matching the source program's
// `1000000 / 60` constant (spec.md §4.11).
const InstsPerFrame = 1_000_000 / 60

// vblankVector is the fixed bus address (inside the cartridge ROM
// region) the VBlank handler's address is read from (spec.md §4.11: "load the program counter from the long at
// address 0x78").
const vblankVector = 0x78

// maxInterruptMask is the highest interrupt-priority mask value that
// still allows a VBlank to be injected (spec.md §4.11: "the status-
// register interrupt-priority mask ≤ 6", matching
// `globals.cpp`'s `GlobalsImpl::is_vblank_enabled()`:
// `int_priority_mask() <= 6 && _vdp->vblank_enabled()`).
const maxInterruptMask = 6

// ramSize is RAM_END - RAM_BEGIN from
// `original_source/heaven_ice/magic_constants.hpp` (0xff0000-0x1000000).
const ramSize = 0x1000000 - 0xff0000

// Display receives one composed frame per display/input tick (spec.md
// §4.11 step 2, §5: "submit frame" is one of the two synchronous
// operations the core talks to the display back-end through).
type Display interface {
	Submit(frame *vdp.Frame) error
}

// Input is polled once per display/input tick for control-key
// transitions (spec.md §4.11 step 3, §5: "poll events").
type Input interface {
	Poll() ([]InputEvent, error)
}

// EventKind distinguishes a key-down from a key-up input event.
type EventKind int

const (
	KeyDown EventKind = iota
	KeyUp
)

// InputEvent is one control-key transition, applied to controller pad 0
// (the only pad the source program's own event plumbing ever drives;
// `original_source/heaven_ice/globals.cpp` `_handle_events`
// unconditionally calls `_controller->key_down(0, ...)`).
type InputEvent struct {
	Kind EventKind
	Key  controller.Key
}

// Machine is one runnable console instance: the CPU, the bus router it
// executes against, and the VDP/controller peripherals the router
// dispatches to.
type Machine struct {
	CPU        *cpu.CPU
	Bus        *bus.Router
	VDP        *vdp.VDP
	Controller *controller.Controller

	Display Display
	Input   Input

	Verbose bool
}

// New builds a Machine from a cartridge ROM image and a pre-loaded
// instruction decode table, with the program counter set to the
// cartridge's entry point (spec.md §6: "execution begins at address
// 0x200").
func New(rom []byte, table *cpu.DecodeTable, verbose bool) *Machine {
	romMem := bus.NewMemoryFromROM(rom)
	ramMem := bus.NewMemory(ramSize)

	v := vdp.New(verbose)
	ctrl := controller.New()
	router := bus.NewRouter(romMem, ramMem, v, ctrl)
	v.SetBus(router)

	c := cpu.NewCPU(router, table)
	c.PC = entryPoint

	return &Machine{CPU: c, Bus: router, VDP: v, Controller: ctrl, Verbose: verbose}
}

// Run executes instructions until maxInstructions have run (0 means no
// limit) or a fatal error occurs. An *ExitRequested error returned by
// Display or Input unwinds the loop the same way any other error does;
// callers distinguish it with errors.As to choose a clean exit over a
// non-zero one (spec.md §7).
func (m *Machine) Run(maxInstructions uint64) error {
	var count uint64
	for {
		if maxInstructions != 0 && count >= maxInstructions {
			return nil
		}
		if m.CPU.PC%2 != 0 {
			return &OddPCError{PC: m.CPU.PC}
		}

		wasInterrupting := m.CPU.Interrupting
		if err := m.CPU.Step(); err != nil {
			return err
		}
		count++

		if wasInterrupting && !m.CPU.Interrupting {
			// RTE clears the interrupt-active flag and invokes the
			// display/input tick (spec.md §4.11).
			if err := m.tick(); err != nil {
				return err
			}
		}

		if count%InstsPerFrame == 0 {
			if err := m.maybeInjectVBlank(); err != nil {
				return err
			}
			if err := m.tick(); err != nil {
				return err
			}
		}
	}
}

// maybeInjectVBlank pushes the return address and status register and
// jumps to the VBlank handler when every gating condition holds,
// otherwise it's a no-op (spec.md §4.11 step 1).
func (m *Machine) maybeInjectVBlank() error {
	if !m.VDP.VBlankEnabled() {
		return nil
	}
	if m.CPU.Regs.SR.Mask > maxInterruptMask {
		return nil
	}
	if m.CPU.Interrupting {
		return nil
	}

	if err := m.CPU.Push(sizeval.Long, m.CPU.PC); err != nil {
		return err
	}
	if err := m.CPU.Push(sizeval.Word, uint32(m.CPU.Regs.SR.Pack())); err != nil {
		return err
	}
	handler, err := m.Bus.Read32(vblankVector)
	if err != nil {
		return err
	}
	m.CPU.PC = handler
	m.CPU.Interrupting = true
	return nil
}

// tick renders the current VDP state, submits it to the display, and
// applies any polled input events to controller pad 0 (spec.md §4.11
// steps 2-3).
func (m *Machine) tick() error {
	frame, err := m.VDP.RenderFrame()
	if err != nil {
		return err
	}
	if m.Display != nil {
		if err := m.Display.Submit(frame); err != nil {
			return err
		}
	}
	if m.Input == nil {
		return nil
	}
	events, err := m.Input.Poll()
	if err != nil {
		return err
	}
	for _, ev := range events {
		switch ev.Kind {
		case KeyDown:
			if err := m.Controller.KeyDown(0, ev.Key); err != nil {
				return err
			}
		case KeyUp:
			if err := m.Controller.KeyUp(0, ev.Key); err != nil {
				return err
			}
		}
	}
	return nil
}

// SaveState dumps the machine's entire state in the exact order
// spec.md §6 names for the top-level save-state concatenation: "RAM,
// VRAM, CRAM, VSRAM, VDP register file, VDP command-port latch state,
// data registers, address registers, status register, program counter,
// interrupt-active flag." Controller pad state is transient input and
// is never part of a save file (see DESIGN.md's note on
// `internal/controller`).
func (m *Machine) SaveState(w *savestate.Writer) {
	m.Bus.SaveState(w)
	m.VDP.SaveState(w)
	for _, d := range m.CPU.Regs.D {
		w.WriteUint32(d)
	}
	for _, a := range m.CPU.Regs.A {
		w.WriteUint32(a)
	}
	w.WriteUint16(m.CPU.Regs.SR.Pack())
	w.WriteUint32(m.CPU.PC)
	w.WriteUint8(boolByte(m.CPU.Interrupting))
}

// LoadState restores a Machine from a save state written by SaveState,
// in the same fixed field order. A length mismatch between the save
// file and this machine's memory sizes surfaces as the underlying
// savestate.Reader's sticky error (spec.md §4.12: "mismatched reader
// lengths are fatal").
func (m *Machine) LoadState(r *savestate.Reader) error {
	if err := m.Bus.LoadState(r); err != nil {
		return err
	}
	if err := m.VDP.LoadState(r); err != nil {
		return err
	}
	for i := range m.CPU.Regs.D {
		m.CPU.Regs.D[i] = r.ReadUint32()
	}
	for i := range m.CPU.Regs.A {
		m.CPU.Regs.A[i] = r.ReadUint32()
	}
	m.CPU.Regs.SR.Unpack(r.ReadUint16())
	m.CPU.PC = r.ReadUint32()
	m.CPU.Interrupting = r.ReadUint8() != 0
	return r.Err()
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
