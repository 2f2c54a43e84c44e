package cpu

import (
	"fmt"
	"strconv"
	"strings"
)

// fieldKind names the semantic role of one token in an instruction-spec
// line (spec.md §6's FIELD_LIST grammar). literal runs of 0/1 characters
// carry no fieldKind of their own — they contribute directly to the
// opcode mask/match pair instead of being extracted.
type fieldKind int

const (
	kindLiteral fieldKind = iota
	kindS       // S:1  - 1-bit size: 0=word,1=long
	kindS2      // S:2  - 2-bit size: 00=byte,01=word,10=long
	kindSM      // SM:2 - 2-bit "move" size: 01=byte,11=word,10=long
	kindM       // M:1/M:2/M:3 - bare mode/type sub-field, width-tagged
	kindAn      // An:3
	kindAn2     // An2:3
	kindDn      // Dn:3
	kindDn2     // Dn2:3
	kindXn      // Xn:3
	kindD       // D:1  - direction bit
	kindEA1     // EA1:6 - mode:3 | reg:3
	kindEA2     // EA2:6 - reg:3 | mode:3 (register half first; swapped on read)
	kindVector  // Vector:4
	kindData3   // Data:3 (0 maps to 8)
	kindData8   // Data:8
	kindCond    // Cond:4
	kindDisp    // Disp:8
)

// field is one parsed token of a spec line: either a fixed bit pattern
// (kindLiteral) or a named, width-tagged extraction site. pos is the bit
// position of the field's least-significant bit within the 16-bit
// opcode, computed once the whole line has been parsed (fields are
// listed most-significant first, per spec.md §4.1).
type field struct {
	kind    fieldKind
	name    string // the token's name as written, e.g. "M" for M:2 (kept for error messages and disassembly)
	width   int
	literal uint16 // only meaningful when kind == kindLiteral
	pos     int
}

var namedFieldWidths = map[string][]int{
	"S":      {1, 2},
	"SM":     {2},
	"M":      {1, 2, 3},
	"An":     {3},
	"An2":    {3},
	"Dn":     {3},
	"Dn2":    {3},
	"Xn":     {3},
	"D":      {1},
	"EA1":    {6},
	"EA2":    {6},
	"Vector": {4},
	"Data":   {3, 8},
	"Cond":   {4},
	"Disp":   {8},
}

func isLiteralToken(tok string) bool {
	if tok == "" {
		return false
	}
	for _, c := range tok {
		if c != '0' && c != '1' {
			return false
		}
	}
	return true
}

// parseField parses one whitespace-separated token of a FIELD_LIST line.
func parseField(tok string) (field, error) {
	if isLiteralToken(tok) {
		v, err := strconv.ParseUint(tok, 2, 16)
		if err != nil {
			return field{}, fmt.Errorf("cpu: bad literal field %q: %w", tok, err)
		}
		return field{kind: kindLiteral, name: tok, width: len(tok), literal: uint16(v)}, nil
	}

	name, widthStr, ok := strings.Cut(tok, ":")
	if !ok {
		return field{}, fmt.Errorf("cpu: field %q has neither a literal bit pattern nor a NAME:WIDTH form", tok)
	}
	width, err := strconv.Atoi(widthStr)
	if err != nil {
		return field{}, fmt.Errorf("cpu: field %q has non-numeric width: %w", tok, err)
	}
	allowed, known := namedFieldWidths[name]
	if !known {
		return field{}, fmt.Errorf("cpu: unknown field name %q", name)
	}
	if !contains(allowed, width) {
		return field{}, fmt.Errorf("cpu: field %q has unsupported width %d for %s", tok, width, name)
	}

	kind, err := kindForNamedField(name, width)
	if err != nil {
		return field{}, err
	}
	return field{kind: kind, name: name, width: width}, nil
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func kindForNamedField(name string, width int) (fieldKind, error) {
	switch name {
	case "S":
		if width == 1 {
			return kindS, nil
		}
		return kindS2, nil
	case "SM":
		return kindSM, nil
	case "M":
		return kindM, nil
	case "An":
		return kindAn, nil
	case "An2":
		return kindAn2, nil
	case "Dn":
		return kindDn, nil
	case "Dn2":
		return kindDn2, nil
	case "Xn":
		return kindXn, nil
	case "D":
		return kindD, nil
	case "EA1":
		return kindEA1, nil
	case "EA2":
		return kindEA2, nil
	case "Vector":
		return kindVector, nil
	case "Data":
		if width == 3 {
			return kindData3, nil
		}
		return kindData8, nil
	case "Cond":
		return kindCond, nil
	case "Disp":
		return kindDisp, nil
	default:
		return 0, fmt.Errorf("cpu: unknown field name %q", name)
	}
}

// extract pulls this field's raw bit-value out of a 16-bit opcode, given
// the field's already-computed bit position.
func (f field) extract(opcode uint16) uint16 {
	mask := uint16(1<<uint(f.width)) - 1
	return (opcode >> uint(f.pos)) & mask
}
