package cpu

import "fmt"

// DecodeError reports that no instruction spec matched a given opcode,
// or a narrower "decode failure" case: the extracted fields name an
// addressing-mode combination this core does not support (spec.md §7).
type DecodeError struct {
	Opcode uint16
	PC     uint32
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cpu: decode failure at pc=%#x opcode=%#04x: %s", e.PC, e.Opcode, e.Reason)
}

// UnimplementedError reports that a decoded instruction reached the
// executor but its semantics are not modelled (spec.md §7).
type UnimplementedError struct {
	Name string
	PC   uint32
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("cpu: execution unimplemented: %s at pc=%#x", e.Name, e.PC)
}

// DivideByZeroError reports a DIVS/DIVU with a zero divisor. The source
// program this core supersedes leaves this case as undefined behavior;
// spec.md §4.4/§7 mandates it be fatal rather than trapped.
type DivideByZeroError struct {
	PC uint32
}

func (e *DivideByZeroError) Error() string {
	return fmt.Sprintf("cpu: division by zero at pc=%#x", e.PC)
}

// OddAddressError reports an attempted word/long access, or program
// counter value, at an odd address (spec.md §3, §4.6).
type OddAddressError struct {
	Addr uint32
	What string
}

func (e *OddAddressError) Error() string {
	return fmt.Sprintf("cpu: odd address for %s: %#x", e.What, e.Addr)
}
