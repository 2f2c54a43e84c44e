package cpu

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/intuitionamiga/geniemu/internal/sizeval"
)

// InstructionSpec is one parsed line of the instruction-spec file: a
// name and the ordered field list that together consume all 16 bits of
// an opcode word (spec.md §4.1, §6). mask/masked are precomputed so
// matching an opcode is a single AND-and-compare.
type InstructionSpec struct {
	Name   string
	fields []field
	Mask   uint16
	Masked uint16
}

// LoadSpecs parses the textual instruction table described in spec.md
// §6: one `NAME, FIELD_LIST` instruction per non-blank, non-comment
// line. Lines beginning with '#' are comments, matching the convention
// of every other text-format asset in this corpus.
func LoadSpecs(r io.Reader) ([]*InstructionSpec, error) {
	var specs []*InstructionSpec
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		spec, err := parseSpecLine(line)
		if err != nil {
			return nil, fmt.Errorf("cpu: spec file line %d: %w", lineNo, err)
		}
		specs = append(specs, spec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("cpu: reading spec file: %w", err)
	}
	return specs, nil
}

func parseSpecLine(line string) (*InstructionSpec, error) {
	name, fieldList, ok := strings.Cut(line, ",")
	if !ok {
		return nil, fmt.Errorf("missing ',' separating name from field list: %q", line)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty instruction name: %q", line)
	}

	toks := strings.Fields(fieldList)
	if len(toks) == 0 {
		return nil, fmt.Errorf("%s: empty field list", name)
	}

	fields := make([]field, 0, len(toks))
	for _, tok := range toks {
		f, err := parseField(tok)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		fields = append(fields, f)
	}

	total := 0
	for _, f := range fields {
		total += f.width
	}
	if total != 16 {
		return nil, fmt.Errorf("%s: field widths sum to %d, want 16", name, total)
	}

	pos := 16
	var mask, masked uint16
	for i := range fields {
		pos -= fields[i].width
		fields[i].pos = pos
		if fields[i].kind == kindLiteral {
			bits := uint16(1<<uint(fields[i].width)) - 1
			mask |= bits << uint(pos)
			masked |= fields[i].literal << uint(pos)
		}
	}

	return &InstructionSpec{Name: name, fields: fields, Mask: mask, Masked: masked}, nil
}

// Matches reports whether spec is the first-match decode of opcode.
func (s *InstructionSpec) Matches(opcode uint16) bool {
	return opcode&s.Mask == s.Masked
}

// Fields is the typed record of every non-literal field extracted from a
// matched opcode (spec.md §4.1's "typed fields record").
type Fields struct {
	Size      sizeval.Size
	HasSize   bool
	Dn, Dn2   int
	An, An2   int
	Xn        int
	Direction uint16
	EA1Mode   int
	EA1Reg    int
	EA2Mode   int
	EA2Reg    int
	Vector    uint16
	Data      uint16
	Cond      Condition
	Disp      int8
	Mode      uint16 // raw value of a bare M:n field, meaning is instruction-specific
}

// swapHalves exchanges the high and low 3-bit halves of a 6-bit value.
// EA2's mode/register sub-fields are stored register-first in the opcode
// word (the destination operand of MOVE, per spec.md §4.1); swapping
// restores the usual mode-then-register interpretation shared with EA1.
func swapHalves(v uint16) uint16 {
	return (v >> 3) | ((v & 7) << 3)
}

func decodeSize2(v uint16) sizeval.Size {
	switch v {
	case 0:
		return sizeval.Byte
	case 1:
		return sizeval.Word
	default:
		return sizeval.Long
	}
}

func decodeSizeMove(v uint16) sizeval.Size {
	switch v {
	case 1:
		return sizeval.Byte
	case 3:
		return sizeval.Word
	default:
		return sizeval.Long
	}
}

func decodeSize1(v uint16) sizeval.Size {
	if v == 0 {
		return sizeval.Word
	}
	return sizeval.Long
}

// decodeData3 applies the 3-bit immediate-data special case: a stored 0
// means 8, everything else is literal (spec.md §4.1, used by ADDQ/SUBQ
// and by SHIFT's immediate count).
func decodeData3(v uint16) uint16 {
	if v == 0 {
		return 8
	}
	return v
}

// extractFields reads every non-literal field of s out of opcode.
func (s *InstructionSpec) extractFields(opcode uint16) Fields {
	var f Fields
	for _, fl := range s.fields {
		raw := fl.extract(opcode)
		switch fl.kind {
		case kindLiteral:
			// contributes nothing to the extracted record
		case kindS:
			f.Size, f.HasSize = decodeSize1(raw), true
		case kindS2:
			f.Size, f.HasSize = decodeSize2(raw), true
		case kindSM:
			f.Size, f.HasSize = decodeSizeMove(raw), true
		case kindM:
			f.Mode = raw
		case kindAn:
			f.An = int(raw)
		case kindAn2:
			f.An2 = int(raw)
		case kindDn:
			f.Dn = int(raw)
		case kindDn2:
			f.Dn2 = int(raw)
		case kindXn:
			f.Xn = int(raw)
		case kindD:
			f.Direction = raw
		case kindEA1:
			f.EA1Mode, f.EA1Reg = int(raw>>3), int(raw&7)
		case kindEA2:
			sw := swapHalves(raw)
			f.EA2Mode, f.EA2Reg = int(sw>>3), int(sw&7)
		case kindVector:
			f.Vector = raw
		case kindData3:
			f.Data = decodeData3(raw)
		case kindData8:
			f.Data = raw
		case kindCond:
			f.Cond = Condition(raw)
		case kindDisp:
			f.Disp = int8(raw)
		}
	}
	return f
}
