package disasm

import "github.com/intuitionamiga/geniemu/internal/cpu"

// Program is the result of a reachability walk: every instruction
// discovered, keyed by address, plus the set of addresses referenced as
// a jump/call target by some discovered instruction (mirrors
// `original_source/heaven_ice/disasm.cpp`'s Program{insts, labels}; this
// package leaves label naming to the caller, since the pretty-printer is
// out of scope).
type Program struct {
	Instructions map[uint32]Instruction
	Labels       map[uint32]bool
}

// Walk performs a recursive-descent reachability traversal starting from
// entryPoints, following every conditional/unconditional branch and call
// it finds and stopping a given linear run at an unconditional jump or
// at an address already visited (spec.md §9: "Recursive PC walk for disassembly and
// reachability"). A decode error at a reached address is swallowed (not
// every reachable-looking address is actually code — self-modifying or
// data-in-code regions decode to garbage) rather than aborting the
// whole walk, matching `disasm_all`'s per-address `bail` only ever
// failing the one queue entry being processed.
func Walk(bus Bus, table *cpu.DecodeTable, entryPoints []uint32) Program {
	insts := make(map[uint32]Instruction)
	labels := make(map[uint32]bool)

	queue := append([]uint32(nil), entryPoints...)
	for len(queue) > 0 {
		pc := queue[0]
		queue = queue[1:]

		for {
			if _, seen := insts[pc]; seen {
				break
			}
			inst, err := DecodeOne(bus, table, pc)
			if err != nil {
				break
			}
			insts[pc] = inst

			if target, ok := inst.JumpAddr(); ok {
				labels[target] = true
				queue = append(queue, target)
			}
			if inst.IsUnconditionalJump() {
				break
			}
			pc += inst.Bytes
		}
	}

	return Program{Instructions: insts, Labels: labels}
}
