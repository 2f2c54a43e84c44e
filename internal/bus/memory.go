// Package bus implements the console's 24-bit address space: a flat,
// bounds-checked RAM block and the region router that dispatches ROM,
// RAM, VDP, controller, and system-register accesses across it.
package bus

import (
	"encoding/binary"
	"fmt"

	"github.com/intuitionamiga/geniemu/internal/savestate"
)

// Memory is a flat, bounds-checked byte array with big-endian word/long
// accessors, used for both cartridge ROM (read-only from the router's
// point of view) and the console's work RAM (spec.md §4.6: "all
// multi-byte accesses are big-endian", matching the 68000 family rather
// than the teacher's little-endian MachineBus).
type Memory struct {
	bytes []byte
}

// NewMemory allocates a zeroed block of size bytes.
func NewMemory(size int) *Memory {
	return &Memory{bytes: make([]byte, size)}
}

// NewMemoryFromROM wraps rom image bytes directly, with no extra
// allocation or copy (spec.md §4.6: ROM is loaded once at boot and never
// written to through the bus).
func NewMemoryFromROM(rom []byte) *Memory {
	return &Memory{bytes: rom}
}

func (m *Memory) Len() int { return len(m.bytes) }

// OutOfBoundsError reports an access past the end of a Memory block.
type OutOfBoundsError struct {
	Addr, Size, Len uint32
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("bus: memory access out of bounds: addr=%#x size=%d len=%#x", e.Addr, e.Size, e.Len)
}

func (m *Memory) bounds(addr uint32, n int) error {
	if uint64(addr)+uint64(n) > uint64(len(m.bytes)) {
		return &OutOfBoundsError{Addr: addr, Size: uint32(n), Len: uint32(len(m.bytes))}
	}
	return nil
}

func (m *Memory) Read8(addr uint32) (uint8, error) {
	if err := m.bounds(addr, 1); err != nil {
		return 0, err
	}
	return m.bytes[addr], nil
}

func (m *Memory) Write8(addr uint32, v uint8) error {
	if err := m.bounds(addr, 1); err != nil {
		return err
	}
	m.bytes[addr] = v
	return nil
}

func (m *Memory) Read16(addr uint32) (uint16, error) {
	if err := m.bounds(addr, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(m.bytes[addr:]), nil
}

func (m *Memory) Write16(addr uint32, v uint16) error {
	if err := m.bounds(addr, 2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(m.bytes[addr:], v)
	return nil
}

func (m *Memory) Read32(addr uint32) (uint32, error) {
	if err := m.bounds(addr, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(m.bytes[addr:]), nil
}

func (m *Memory) Write32(addr uint32, v uint32) error {
	if err := m.bounds(addr, 4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(m.bytes[addr:], v)
	return nil
}

// SaveState appends the whole memory block to w, matching the source
// program's save-state field order of writing RAM as a flat byte dump
// (spec.md §6, `original_source/heaven_ice/memory.cpp` `save_state`).
func (m *Memory) SaveState(w *savestate.Writer) {
	w.WriteBytes(m.bytes)
}

// LoadState overwrites the memory block from r. The block must already
// be sized correctly; load never resizes it.
func (m *Memory) LoadState(r *savestate.Reader) error {
	return r.ReadBytes(m.bytes)
}
