package sizeval

import "testing"

func TestSize_BytesAndBits(t *testing.T) {
	cases := []struct {
		s         Size
		wantBytes int
		wantBits  uint
	}{
		{Byte, 1, 8},
		{Word, 2, 16},
		{Long, 4, 32},
	}
	for _, tc := range cases {
		if got := tc.s.Bytes(); got != tc.wantBytes {
			t.Errorf("%s.Bytes() = %d, want %d", tc.s, got, tc.wantBytes)
		}
		if got := tc.s.Bits(); got != tc.wantBits {
			t.Errorf("%s.Bits() = %d, want %d", tc.s, got, tc.wantBits)
		}
	}
}

func TestSize_SignExtend(t *testing.T) {
	if got := Byte.SignExtend(0xff); got != -1 {
		t.Errorf("Byte.SignExtend(0xff) = %d, want -1", got)
	}
	if got := Word.SignExtend(0x8000); got != -32768 {
		t.Errorf("Word.SignExtend(0x8000) = %d, want -32768", got)
	}
	if got := Long.SignExtend(0xffffffff); got != -1 {
		t.Errorf("Long.SignExtend(0xffffffff) = %d, want -1", got)
	}
}

func TestSize_TruncateMasksToWidth(t *testing.T) {
	if got := Byte.Truncate(0xaabbccdd); got != 0xdd {
		t.Errorf("Byte.Truncate = %#x, want 0xdd", got)
	}
	if got := Word.Truncate(0xaabbccdd); got != 0xccdd {
		t.Errorf("Word.Truncate = %#x, want 0xccdd", got)
	}
	if got := Long.Truncate(0xaabbccdd); got != 0xaabbccdd {
		t.Errorf("Long.Truncate = %#x, want 0xaabbccdd", got)
	}
}

func TestSize_InsertPreservesUpperBits(t *testing.T) {
	if got := Byte.Insert(0xaabbcc00, 0xff); got != 0xaabbccff {
		t.Errorf("Byte.Insert = %#x, want 0xaabbccff", got)
	}
	if got := Word.Insert(0xaabb0000, 0xccdd); got != 0xaabbccdd {
		t.Errorf("Word.Insert = %#x, want 0xaabbccdd", got)
	}
	if got := Long.Insert(0xaabbccdd, 0x11223344); got != 0x11223344 {
		t.Errorf("Long.Insert = %#x, want 0x11223344", got)
	}
}

func TestRegisterID_Constructors(t *testing.T) {
	d := DataReg(3)
	if d.Kind != Data || d.Num != 3 || d.IsAddr() {
		t.Errorf("DataReg(3) = %+v", d)
	}
	a := AddrReg(StackPointer)
	if a.Kind != Addr || !a.IsAddr() || a.String() != "A7" {
		t.Errorf("AddrReg(7) = %+v, String() = %q, want A7", a, a.String())
	}
	sr := StatusReg()
	if sr.Kind != SR || sr.String() != "SR" {
		t.Errorf("StatusReg() = %+v, String() = %q, want SR", sr, sr.String())
	}
}

func TestRegisterID_StringFormatsDataAndAddr(t *testing.T) {
	if got := DataReg(5).String(); got != "D5" {
		t.Errorf("DataReg(5).String() = %q, want D5", got)
	}
	if got := AddrReg(2).String(); got != "A2" {
		t.Errorf("AddrReg(2).String() = %q, want A2", got)
	}
}
