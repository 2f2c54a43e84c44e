package machine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/intuitionamiga/geniemu/internal/controller"
	"github.com/intuitionamiga/geniemu/internal/cpu"
	"github.com/intuitionamiga/geniemu/internal/savestate"
	"github.com/intuitionamiga/geniemu/internal/vdp"
)

const testSpecs = `
NOP, 0100111001110001
RTE, 0100111001110011
`

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	specs, err := cpu.LoadSpecs(strings.NewReader(testSpecs))
	if err != nil {
		t.Fatalf("LoadSpecs: %v", err)
	}
	table := cpu.NewDecodeTable(specs)

	// VBlank vector (0x78) points at a handler consisting of one RTE,
	// placed past the NOP run below.
	const handlerAddr = 0x9000

	rom := make([]byte, 0x10000)
	// NOPs from the entry point up to the handler, so a Run of up to
	// InstsPerFrame+1 instructions just counts NOPs.
	for pc := entryPoint; pc < handlerAddr; pc += 2 {
		rom[pc] = 0x4e
		rom[pc+1] = 0x71
	}

	rom[0x78] = byte(handlerAddr >> 24)
	rom[0x79] = byte(handlerAddr >> 16)
	rom[0x7a] = byte(handlerAddr >> 8)
	rom[0x7b] = byte(handlerAddr & 0xff)
	rom[handlerAddr] = 0x4e
	rom[handlerAddr+1] = 0x73

	m := New(rom, table, false)
	m.CPU.Regs.SetSP(0x1000000 - 4)
	return m
}

type recordingDisplay struct{ submits int }

func (d *recordingDisplay) Submit(f *vdp.Frame) error {
	d.submits++
	return nil
}

type fakeInput struct{ events []InputEvent }

func (f fakeInput) Poll() ([]InputEvent, error) { return f.events, nil }

func TestMachine_NewSetsEntryPoint(t *testing.T) {
	m := newTestMachine(t)
	if m.CPU.PC != entryPoint {
		t.Errorf("PC = %#x, want %#x", m.CPU.PC, entryPoint)
	}
}

func TestMachine_RunRespectsInstructionLimit(t *testing.T) {
	m := newTestMachine(t)
	if err := m.Run(10); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.CPU.PC != entryPoint+20 {
		t.Errorf("PC after 10 NOPs = %#x, want %#x", m.CPU.PC, entryPoint+20)
	}
}

func TestMachine_VBlankInjectedWhenEnabled(t *testing.T) {
	m := newTestMachine(t)
	m.VDP.Reg.Write(1, 0x20) // bit5: enable VBlank interrupts.

	if err := m.Run(InstsPerFrame); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !m.CPU.Interrupting {
		t.Error("Interrupting = false after VBlank injection, want true")
	}
	if m.CPU.PC != 0x9000 {
		t.Errorf("PC = %#x, want handler address 0x9000", m.CPU.PC)
	}
}

func TestMachine_RTEClearsInterruptingAndTicks(t *testing.T) {
	m := newTestMachine(t)
	m.VDP.Reg.Write(1, 0x20)

	disp := &recordingDisplay{}
	m.Display = disp

	// Run exactly one frame (injects the interrupt) then one more step
	// to execute the handler's RTE.
	if err := m.Run(InstsPerFrame + 1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.CPU.Interrupting {
		t.Error("Interrupting still true after RTE executed")
	}
	if disp.submits == 0 {
		t.Error("display never received a submitted frame")
	}
}

func TestMachine_OddPCIsFatal(t *testing.T) {
	m := newTestMachine(t)
	m.CPU.PC = entryPoint + 1
	err := m.Run(1)
	if err == nil {
		t.Fatal("Run with odd PC: want error, got nil")
	}
	if _, ok := err.(*OddPCError); !ok {
		t.Errorf("Run with odd PC: got %T, want *OddPCError", err)
	}
}

func TestMachine_InputAppliesToControllerPadZero(t *testing.T) {
	m := newTestMachine(t)
	m.Input = fakeInput{events: []InputEvent{{Kind: KeyDown, Key: controller.Start}}}

	if err := m.tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	// A data write latches the select-0 half into the second data byte.
	if err := m.Controller.Write8(0xa10003, 0); err != nil {
		t.Fatalf("Write8: %v", err)
	}
	v, err := m.Controller.Read8(0xa10003)
	if err != nil {
		t.Fatalf("Read8: %v", err)
	}
	// select bit 0 half includes Start at bit5; pressed => bit clear.
	if v&(1<<5) != 0 {
		t.Errorf("Start not reflected as pressed: data=%#08b", v)
	}
}

func TestMachine_SaveLoadStateRoundTrips(t *testing.T) {
	m := newTestMachine(t)
	m.CPU.Regs.D[3] = 0xdeadbeef
	m.CPU.Regs.A[5] = 0x00ff1234
	m.CPU.PC = entryPoint + 2
	m.CPU.Interrupting = true

	var buf bytes.Buffer
	w := savestate.NewWriter(&buf)
	m.SaveState(w)
	if err := w.Err(); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	m2 := newTestMachine(t)
	r := savestate.NewReader(&buf)
	if err := m2.LoadState(r); err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if m2.CPU.Regs.D[3] != 0xdeadbeef {
		t.Errorf("D3 = %#x, want 0xdeadbeef", m2.CPU.Regs.D[3])
	}
	if m2.CPU.Regs.A[5] != 0x00ff1234 {
		t.Errorf("A5 = %#x, want 0xff1234", m2.CPU.Regs.A[5])
	}
	if m2.CPU.PC != entryPoint+2 {
		t.Errorf("PC = %#x, want %#x", m2.CPU.PC, entryPoint+2)
	}
	if !m2.CPU.Interrupting {
		t.Error("Interrupting = false after load, want true")
	}
}

func TestParseHeader(t *testing.T) {
	rom := make([]byte, 0x200)
	for i := range rom[headerOffset:] {
		rom[headerOffset+i] = ' '
	}
	copy(rom[headerOffset:], []byte("SEGA MEGA DRIVE "))
	copy(rom[headerOffset+32:], []byte("TEST GAME"))

	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.SystemType != "SEGA MEGA DRIVE" {
		t.Errorf("SystemType = %q, want %q", h.SystemType, "SEGA MEGA DRIVE")
	}
	if h.GameTitleDomestic != "TEST GAME" {
		t.Errorf("GameTitleDomestic = %q, want %q", h.GameTitleDomestic, "TEST GAME")
	}
}

func TestParseHeader_TooShort(t *testing.T) {
	if _, err := ParseHeader(make([]byte, 0x10)); err == nil {
		t.Error("ParseHeader on short ROM: want error, got nil")
	}
}
