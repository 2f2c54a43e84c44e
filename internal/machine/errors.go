package machine

import "fmt"

// ExitRequested is not a fatal condition: the display back-end closed
// or input playback ended. The run loop unwinds cleanly rather than
// reporting a non-zero exit status (spec.md §7 "Exit requested").
type ExitRequested struct {
	Reason string
}

func (e *ExitRequested) Error() string { return fmt.Sprintf("machine: exit requested: %s", e.Reason) }

// OddPCError reports the program counter landing on an odd address,
// fatal per spec.md §4.11/§7 ("odd PC" is a bus violation).
type OddPCError struct {
	PC uint32
}

func (e *OddPCError) Error() string { return fmt.Sprintf("machine: PC cannot be odd: %#x", e.PC) }
