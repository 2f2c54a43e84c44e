package cpu

// DecodeTable holds the ordered instruction specs loaded from the
// textual spec file. Decoding always returns the first matching spec in
// declared order (spec.md §4.1); the order in the spec file is the
// designer's tie-break between overlapping bit patterns.
type DecodeTable struct {
	specs []*InstructionSpec
}

func NewDecodeTable(specs []*InstructionSpec) *DecodeTable {
	return &DecodeTable{specs: specs}
}

// Decoded is one fully decoded instruction word: the matched spec and
// its extracted fields record.
type Decoded struct {
	Spec   *InstructionSpec
	Fields Fields
}

// Decode returns the first spec whose mask/masked pair matches opcode,
// along with its extracted fields. Every 16-bit opcode must either
// decode or be rejected (spec.md §4.1, §8): a DecodeError is returned
// when none match.
func (t *DecodeTable) Decode(opcode uint16, pc uint32) (Decoded, error) {
	for _, s := range t.specs {
		if s.Matches(opcode) {
			return Decoded{Spec: s, Fields: s.extractFields(opcode)}, nil
		}
	}
	return Decoded{}, &DecodeError{Opcode: opcode, PC: pc, Reason: "no instruction spec matches"}
}

// Specs returns the underlying ordered spec list, used by the
// reachability-walk disassembler and by decoder property tests.
func (t *DecodeTable) Specs() []*InstructionSpec {
	return t.specs
}
