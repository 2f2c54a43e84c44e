package sizeval

import "fmt"

// RegisterKind distinguishes the three register identifier families: data
// registers, address registers (one of which doubles as the stack
// pointer), and the status register.
type RegisterKind int

const (
	Data RegisterKind = iota
	Addr
	SR
)

// RegisterID names one of the sixteen general registers or the status
// register. This replaces the register/immediate/address union of the
// source program with a sum type: every consumer of a RegisterID matches
// exhaustively on Kind rather than reading a union field that may not be
// populated.
type RegisterID struct {
	Kind RegisterKind
	Num  int // 0-7, meaningful only when Kind is Data or Addr
}

// StackPointer is address register 7, which doubles as the user stack
// pointer (spec.md §3).
const StackPointer = 7

func DataReg(n int) RegisterID { return RegisterID{Kind: Data, Num: n} }
func AddrReg(n int) RegisterID { return RegisterID{Kind: Addr, Num: n} }
func StatusReg() RegisterID    { return RegisterID{Kind: SR} }

// IsAddr reports whether r names an address register (any of A0-A7,
// including the stack pointer).
func (r RegisterID) IsAddr() bool { return r.Kind == Addr }

func (r RegisterID) String() string {
	switch r.Kind {
	case Data:
		return fmt.Sprintf("D%d", r.Num)
	case Addr:
		if r.Num == StackPointer {
			return "A7"
		}
		return fmt.Sprintf("A%d", r.Num)
	case SR:
		return "SR"
	default:
		return "??"
	}
}
