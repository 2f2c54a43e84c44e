package bus

import (
	"bytes"
	"testing"

	"github.com/intuitionamiga/geniemu/internal/savestate"
)

func TestMemory_Word32ReadWriteBigEndian(t *testing.T) {
	m := NewMemory(16)
	if err := m.Write16(0, 0x1234); err != nil {
		t.Fatalf("Write16: %v", err)
	}
	if m.bytes[0] != 0x12 || m.bytes[1] != 0x34 {
		t.Errorf("bytes = %02x %02x, want 12 34 (big-endian)", m.bytes[0], m.bytes[1])
	}
	v, err := m.Read16(0)
	if err != nil || v != 0x1234 {
		t.Errorf("Read16 = %#x, err=%v, want 0x1234", v, err)
	}

	if err := m.Write32(4, 0xdeadbeef); err != nil {
		t.Fatalf("Write32: %v", err)
	}
	if m.bytes[4] != 0xde || m.bytes[7] != 0xef {
		t.Errorf("Write32 byte order wrong: %02x .. %02x", m.bytes[4], m.bytes[7])
	}
	lv, err := m.Read32(4)
	if err != nil || lv != 0xdeadbeef {
		t.Errorf("Read32 = %#x, err=%v, want 0xdeadbeef", lv, err)
	}
}

func TestMemory_OutOfBoundsAccessIsError(t *testing.T) {
	m := NewMemory(4)
	if _, err := m.Read16(3); err == nil {
		t.Error("Read16 straddling the end: want error, got nil")
	}
	if err := m.Write32(1, 0); err == nil {
		t.Error("Write32 past the end: want error, got nil")
	}
	if _, ok := interface{}(&OutOfBoundsError{}).(error); !ok {
		t.Fatal("OutOfBoundsError must implement error")
	}
}

func TestMemory_NewMemoryFromROMWrapsWithoutCopy(t *testing.T) {
	rom := []byte{1, 2, 3, 4}
	m := NewMemoryFromROM(rom)
	rom[0] = 0xff
	v, err := m.Read8(0)
	if err != nil || v != 0xff {
		t.Errorf("NewMemoryFromROM copied instead of wrapping: Read8 = %#x, err=%v", v, err)
	}
}

func TestMemory_SaveLoadStateRoundTrips(t *testing.T) {
	m := NewMemory(8)
	m.Write32(0, 0x11223344)
	m.Write32(4, 0x55667788)

	var buf bytes.Buffer
	w := savestate.NewWriter(&buf)
	m.SaveState(w)
	if err := w.Err(); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	m2 := NewMemory(8)
	r := savestate.NewReader(&buf)
	if err := m2.LoadState(r); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	v, _ := m2.Read32(0)
	if v != 0x11223344 {
		t.Errorf("after round trip, word 0 = %#x, want 0x11223344", v)
	}
}
