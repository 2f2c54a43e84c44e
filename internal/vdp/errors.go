package vdp

import "fmt"

// OddAddressError reports a VDP memory access at an odd address; every
// VRAM/CRAM/VSRAM access is word-sized (spec.md §4.8: "All VDP addresses
// must be even; odd addresses are fatal").
type OddAddressError struct {
	Target Target
	Addr   uint32
}

func (e *OddAddressError) Error() string {
	return fmt.Sprintf("vdp: odd address for %s: %#x", e.Target, e.Addr)
}

// OutOfRangeError reports a VDP memory access past the end of its
// target array, matching the source program's bounds-checked
// std::array::at (fatal rather than wrapping).
type OutOfRangeError struct {
	Target Target
	Addr   uint32
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("vdp: address out of range for %s: %#x", e.Target, e.Addr)
}

// CommandError reports a control-port write or read this core does not
// model: an out-of-range register index, an unsupported scroll kind, or
// a data-port access with no transfer armed. An invalid transfer mode
// code is reported as a plain error, not a CommandError.
type CommandError struct {
	Reason string
}

func (e *CommandError) Error() string { return fmt.Sprintf("vdp: %s", e.Reason) }

// PortError reports an access to an address this VDP does not recognize
// as one of its four port addresses, or a write size it cannot service
// (spec.md §4.12: every fatal condition aborts with a descriptive error).
type PortError struct {
	Addr uint32
	Op   string
}

func (e *PortError) Error() string {
	return fmt.Sprintf("vdp: invalid %s at port address %#x", e.Op, e.Addr)
}
