package cpu

import "github.com/intuitionamiga/geniemu/internal/sizeval"

// RegisterList is the 16-bit MOVEM register-selection mask that follows a
// MOVEM opcode word as an extension word. Bit order depends on the
// addressing mode the opcode names as its memory operand: predecrement
// mode stores registers in descending order (A7 down to D0) so the bit
// numbering is reversed relative to every other mode (spec.md §4.5).
type RegisterList uint16

// Registers returns the registers named by the mask in the order MOVEM
// must process them: ascending D0..D7,A0..A7 for every mode but
// predecrement, where the source program walks the list in reverse so
// the first register written lands at the highest address (it is then
// stored moving downward as each subsequent register predecrements the
// pointer further).
func (m RegisterList) Registers(predecrement bool) []sizeval.RegisterID {
	var regs []sizeval.RegisterID
	for i := 0; i < 16; i++ {
		if m&(1<<uint(i)) == 0 {
			continue
		}
		if predecrement {
			if i < 8 {
				regs = append(regs, sizeval.AddrReg(7-i))
			} else {
				regs = append(regs, sizeval.DataReg(7-(i-8)))
			}
		} else {
			if i < 8 {
				regs = append(regs, sizeval.DataReg(i))
			} else {
				regs = append(regs, sizeval.AddrReg(i-8))
			}
		}
	}
	return regs
}
