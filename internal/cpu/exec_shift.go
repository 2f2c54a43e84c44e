package cpu

// execShift covers ASL/ASR/LSL/LSR/ROL/ROR in their register-direct,
// immediate-count form (spec.md §4.5): Mode selects the family (0
// arithmetic, 1 logical, 3 rotate) and Direction selects left (1) or
// right (0), matching the bare M:2 field's instruction-specific meaning
// this spec line assigns it.
func (c *CPU) execShift(f Fields) error {
	v := uint32(c.Regs.ReadData(f.Size, f.Dn))
	count := uint(f.Data)

	var result uint32
	switch {
	case f.Mode == 0 && f.Direction == 1:
		result = c.Regs.SR.ApplyASL(f.Size, v, count)
	case f.Mode == 0 && f.Direction == 0:
		result = c.Regs.SR.ApplyASR(f.Size, v, count)
	case f.Mode == 1 && f.Direction == 1:
		result = c.Regs.SR.ApplyLSL(f.Size, v, count)
	case f.Mode == 1 && f.Direction == 0:
		result = c.Regs.SR.ApplyLSR(f.Size, v, count)
	case f.Mode == 3 && f.Direction == 1:
		result = c.Regs.SR.ApplyROL(f.Size, v, count)
	default:
		result = c.Regs.SR.ApplyROR(f.Size, v, count)
	}
	c.Regs.WriteData(f.Size, f.Dn, result)
	return nil
}
