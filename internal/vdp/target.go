package vdp

import "fmt"

// Target names one endpoint of a VDP transfer: one of the three
// internal memories, the external system bus (a DMA copy's source when
// reading from ROM/RAM), or the CPU-facing data port (the other end of
// a manual, non-DMA transfer).
type Target int

const (
	VRAM Target = iota
	CRAM
	VSRAM
	SysBus
	DataPort
)

func (t Target) String() string {
	switch t {
	case VRAM:
		return "VRAM"
	case CRAM:
		return "CRAM"
	case VSRAM:
		return "VSRAM"
	case SysBus:
		return "BUS"
	case DataPort:
		return "DATA"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

// RW is the direction a long command's mode_code selects.
type RW int

const (
	Read RW = iota
	Write
)

// targetOfCode maps a long command's 3-bit mode_code to the memory it
// addresses (spec.md §4.7: "targets {0,1}=VRAM, {8,3}=CRAM, {4,5}=VSRAM").
func targetOfCode(code uint32) (Target, error) {
	switch code {
	case 0, 1:
		return VRAM, nil
	case 8, 3:
		return CRAM, nil
	case 4, 5:
		return VSRAM, nil
	default:
		return 0, fmt.Errorf("vdp: invalid transfer mode code %d", code)
	}
}

// rwOfCode maps the same mode_code to a direction (spec.md §4.7:
// "{0,4,8} = read; {1,3,5} = write").
func rwOfCode(code uint32) (RW, error) {
	switch code {
	case 0, 4, 8:
		return Read, nil
	case 1, 3, 5:
		return Write, nil
	default:
		return 0, fmt.Errorf("vdp: invalid transfer mode code %d", code)
	}
}

// Transfer is an in-flight data-port or DMA operation armed by a long
// command, held until either the DMA engine completes it synchronously
// or enough data-port accesses drain/fill it (spec.md §4.7-§4.8).
type Transfer struct {
	Dst, Src Target
	DstAddr  uint32
	Length   uint32
	DMA      bool
	Fill     bool
}
