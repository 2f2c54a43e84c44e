package disasm

import (
	"os"
	"testing"

	"github.com/intuitionamiga/geniemu/internal/bus"
	"github.com/intuitionamiga/geniemu/internal/cpu"
)

func loadTable(t *testing.T) *cpu.DecodeTable {
	t.Helper()
	f, err := os.Open("../../testdata/opcodes.txt")
	if err != nil {
		t.Fatalf("open opcodes.txt: %v", err)
	}
	defer f.Close()
	specs, err := cpu.LoadSpecs(f)
	if err != nil {
		t.Fatalf("LoadSpecs: %v", err)
	}
	return cpu.NewDecodeTable(specs)
}

func putWord(mem *bus.Memory, addr uint32, v uint16) {
	if err := mem.Write16(addr, v); err != nil {
		panic(err)
	}
}

func putLong(mem *bus.Memory, addr uint32, v uint32) {
	if err := mem.Write32(addr, v); err != nil {
		panic(err)
	}
}

func TestDecodeOne_NOP(t *testing.T) {
	table := loadTable(t)
	mem := bus.NewMemory(0x100)
	putWord(mem, 0x10, 0x4e71) // NOP

	inst, err := DecodeOne(mem, table, 0x10)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	if inst.Name != "NOP" || inst.Bytes != 2 {
		t.Errorf("got %+v, want NOP/2 bytes", inst)
	}
	if inst.IsUnconditionalJump() || inst.IsConditionalJump() || inst.IsCall() {
		t.Error("NOP must not classify as a jump, conditional branch, or call")
	}
	if _, ok := inst.JumpAddr(); ok {
		t.Error("NOP must have no jump address")
	}
}

func TestDecodeOne_JMPAbsoluteLong(t *testing.T) {
	table := loadTable(t)
	mem := bus.NewMemory(0x2000)
	putWord(mem, 0x200, 0x4ef9) // JMP (xxx).L
	putLong(mem, 0x202, 0x00001000)

	inst, err := DecodeOne(mem, table, 0x200)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	if inst.Name != "JMP" || inst.Bytes != 6 {
		t.Fatalf("got %+v, want JMP/6 bytes", inst)
	}
	if !inst.IsUnconditionalJump() {
		t.Error("JMP must be an unconditional jump")
	}
	target, ok := inst.JumpAddr()
	if !ok || target != 0x1000 {
		t.Errorf("JumpAddr() = (%#x, %v), want (0x1000, true)", target, ok)
	}
}

func TestDecodeOne_BccConditionalVsUnconditional(t *testing.T) {
	table := loadTable(t)
	mem := bus.NewMemory(0x2000)
	// Bcc EQ, inline displacement 4: conditional, falls through as well.
	putWord(mem, 0x200, 0b0110_0111_0000_0100)
	// Bcc T (always), inline displacement 4: unconditional.
	putWord(mem, 0x300, 0b0110_0000_0000_0100)

	cond, err := DecodeOne(mem, table, 0x200)
	if err != nil {
		t.Fatalf("DecodeOne cond: %v", err)
	}
	if !cond.IsConditionalJump() || cond.IsUnconditionalJump() {
		t.Errorf("EQ branch misclassified: %+v", cond)
	}
	if target, ok := cond.JumpAddr(); !ok || target != 0x200+2+4 {
		t.Errorf("JumpAddr() = (%#x, %v), want (%#x, true)", target, ok, 0x200+2+4)
	}

	uncond, err := DecodeOne(mem, table, 0x300)
	if err != nil {
		t.Fatalf("DecodeOne uncond: %v", err)
	}
	if uncond.IsConditionalJump() || !uncond.IsUnconditionalJump() {
		t.Errorf("always-true branch misclassified: %+v", uncond)
	}
}

func TestDecodeOne_BSRIsCall(t *testing.T) {
	table := loadTable(t)
	mem := bus.NewMemory(0x2000)
	putWord(mem, 0x200, 0b0110_0001_0000_0010) // BSR, disp=2

	inst, err := DecodeOne(mem, table, 0x200)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	if !inst.IsCall() {
		t.Error("BSR must report IsCall")
	}
	if target, ok := inst.JumpAddr(); !ok || target != 0x200+2+2 {
		t.Errorf("JumpAddr() = (%#x, %v), want (%#x, true)", target, ok, 0x200+2+2)
	}
}

func TestDecodeOne_MOVETwoOperand(t *testing.T) {
	table := loadTable(t)
	mem := bus.NewMemory(0x2000)
	// MOVE.W (abs.L), D1 — see disasm.go's walkOperands MOVE case.
	putWord(mem, 0x200, 0x3239)
	putLong(mem, 0x202, 0x00001800)

	inst, err := DecodeOne(mem, table, 0x200)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	if inst.Name != "MOVE" || inst.Bytes != 6 {
		t.Fatalf("got %+v, want MOVE/6 bytes", inst)
	}
	if inst.Src == nil || inst.Src.Kind != cpu.AMAbsLong || inst.Src.Imm != 0x1800 {
		t.Errorf("Src = %+v, want AMAbsLong 0x1800", inst.Src)
	}
	if inst.Dst == nil || inst.Dst.Kind != cpu.AMDataReg || inst.Dst.Reg != 1 {
		t.Errorf("Dst = %+v, want AMDataReg D1", inst.Dst)
	}
}

func TestWalk_StopsAtUnconditionalJumpAndFollowsTargets(t *testing.T) {
	table := loadTable(t)
	mem := bus.NewMemory(0x1000)
	// Entry: unconditional branch (Bcc T, disp=4) from 0x200 targets
	// 0x202+4 = 0x206, which holds an RTS.
	putWord(mem, 0x200, 0b0110_0000_0000_0100)
	putWord(mem, 0x206, 0x4e75)

	prog := Walk(mem, table, []uint32{0x200})

	if _, ok := prog.Instructions[0x200]; !ok {
		t.Error("entry point not visited")
	}
	if _, ok := prog.Instructions[0x206]; !ok {
		t.Error("branch target not visited")
	}
	if !prog.Labels[0x206] {
		t.Error("branch target not recorded as a label")
	}
	if len(prog.Instructions) != 2 {
		t.Errorf("visited %d instructions, want 2 (walk must stop at each unconditional jump)", len(prog.Instructions))
	}
}

func TestWalk_SwallowsDecodeErrorsAtUnreachableQueueEntries(t *testing.T) {
	table := loadTable(t)
	mem := bus.NewMemory(0x10) // too small for an entry point far out of range

	prog := Walk(mem, table, []uint32{0x1000})
	if len(prog.Instructions) != 0 {
		t.Errorf("expected no instructions decoded from an out-of-bounds entry, got %d", len(prog.Instructions))
	}
}
