package display

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/intuitionamiga/geniemu/internal/controller"
	"github.com/intuitionamiga/geniemu/internal/machine"
	"github.com/intuitionamiga/geniemu/internal/vdp"
)

func testFrame(fill byte) *vdp.Frame {
	pix := make([]byte, vdp.ScreenWidth*vdp.ScreenHeight*4)
	for i := range pix {
		pix[i] = fill
	}
	return &vdp.Frame{Pix: pix, Width: vdp.ScreenWidth, Height: vdp.ScreenHeight}
}

func TestHashDisplay_SubmitAppendsOneDigestPerFrame(t *testing.T) {
	d := NewHashDisplay()
	if d.Last() != "" {
		t.Errorf("Last() before any Submit = %q, want empty", d.Last())
	}

	if err := d.Submit(testFrame(0x11)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := d.Submit(testFrame(0x22)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if len(d.Digests) != 2 {
		t.Fatalf("len(Digests) = %d, want 2", len(d.Digests))
	}
	if d.Digests[0] == d.Digests[1] {
		t.Error("distinct frames produced the same digest")
	}
	if d.Last() != d.Digests[1] {
		t.Errorf("Last() = %q, want %q", d.Last(), d.Digests[1])
	}
}

func TestHashDisplay_SameFrameContentHashesIdentically(t *testing.T) {
	d := NewHashDisplay()
	d.Submit(testFrame(0x42))
	d.Submit(testFrame(0x42))
	if d.Digests[0] != d.Digests[1] {
		t.Error("identical frame contents produced different digests")
	}
}

func TestHashDisplay_SatisfiesMachineDisplay(t *testing.T) {
	var _ machine.Display = NewHashDisplay()
}

func TestFileDisplay_SubmitWritesNumberedFiles(t *testing.T) {
	dir := t.TempDir()
	d, err := NewFileDisplay(dir)
	if err != nil {
		t.Fatalf("NewFileDisplay: %v", err)
	}

	if err := d.Submit(testFrame(0xaa)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := d.Submit(testFrame(0xbb)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	for _, name := range []string{"screenshot_000001.bmp", "screenshot_000002.bmp"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestFileDisplay_SatisfiesMachineDisplay(t *testing.T) {
	d, err := NewFileDisplay(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileDisplay: %v", err)
	}
	var _ machine.Display = d
}

func TestTerminalInput_RouteQueuesDownThenUp(t *testing.T) {
	ti := NewTerminalInput()
	ti.route('w')
	ti.route('x') // unmapped byte: ignored
	ti.route('\r')

	events, err := ti.Poll()
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	want := []machine.InputEvent{
		{Kind: machine.KeyDown, Key: controller.Up},
		{Kind: machine.KeyUp, Key: controller.Up},
		{Kind: machine.KeyDown, Key: controller.Start},
		{Kind: machine.KeyUp, Key: controller.Start},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestTerminalInput_PollDrainsQueue(t *testing.T) {
	ti := NewTerminalInput()
	ti.route('j')
	if _, err := ti.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	events, err := ti.Poll()
	if err != nil {
		t.Fatalf("second Poll: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("second Poll returned %d events, want 0", len(events))
	}
}

func TestTerminalInput_SatisfiesMachineInput(t *testing.T) {
	var _ machine.Input = NewTerminalInput()
}

func TestEbitenDisplay_SubmitRejectsWrongSizedFrame(t *testing.T) {
	d := NewEbitenDisplay()
	wrong := &vdp.Frame{Pix: make([]byte, 4), Width: 1, Height: 1}
	if err := d.Submit(wrong); err == nil {
		t.Error("Submit with mismatched frame size: want error, got nil")
	}
}

func TestEbitenDisplay_SubmitCopiesPixels(t *testing.T) {
	d := NewEbitenDisplay()
	frame := testFrame(0x77)
	if err := d.Submit(frame); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if d.pix[0] != 0x77 {
		t.Errorf("pix[0] = %#x, want 0x77", d.pix[0])
	}
}

func TestEbitenDisplay_SatisfiesMachineDisplayAndInput(t *testing.T) {
	d := NewEbitenDisplay()
	var _ machine.Display = d
	var _ machine.Input = d
}
