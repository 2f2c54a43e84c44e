// Package display implements the console's external display/input
// boundary: adapters that satisfy `internal/machine`'s local Display
// and Input interfaces (spec.md §4.11 step 2-3, §5: "submit frame" /
// "poll events" are the two synchronous operations the core talks to
// the display back-end through). Grounded on
// `original_source/heaven_ice/globals.cpp`'s `create_display` factory,
// which picks one of exactly these backend shapes by name ("pnm",
// "sdl", "ffmpeg", "hash", "none"), and on the teacher's
// `video_backend_ebiten.go`/`terminal_host.go` for the Go idiom each
// adapter is built in.
package display

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/intuitionamiga/geniemu/internal/controller"
	"github.com/intuitionamiga/geniemu/internal/machine"
	"github.com/intuitionamiga/geniemu/internal/vdp"
)

// keyMap is this console's analogue of `globals.cpp`'s
// to_control_key(sdl::KeyCode): WASD for the d-pad, J/K/L for A/B/C,
// Enter for Start. The original also special-cases Escape to request
// an exit; this package leaves that to the caller (ebiten.Termination
// on window close already covers it).
var keyMap = map[ebiten.Key]controller.Key{
	ebiten.KeyW:     controller.Up,
	ebiten.KeyS:     controller.Down,
	ebiten.KeyA:     controller.Left,
	ebiten.KeyD:     controller.Right,
	ebiten.KeyJ:     controller.A,
	ebiten.KeyK:     controller.B,
	ebiten.KeyL:     controller.C,
	ebiten.KeyEnter: controller.Start,
}

// EbitenDisplay windows the composed frame and reports key transitions
// for pad 0, grounded on the teacher's EbitenOutput
// (`video_backend_ebiten.go`): ebiten.RunGame driven from a goroutine,
// a mutex-guarded frame buffer copied in from Submit, and a buffered
// vsyncChan used to block Start() until the first real Draw.
type EbitenDisplay struct {
	mu     sync.Mutex
	pix    []byte
	width  int
	height int
	window *ebiten.Image

	events    []machine.InputEvent
	vsyncChan chan struct{}
	started   bool
}

// NewEbitenDisplay builds a display sized to the VDP's documented
// active resolution (spec.md §4.9).
func NewEbitenDisplay() *EbitenDisplay {
	return &EbitenDisplay{
		width:     vdp.ScreenWidth,
		height:    vdp.ScreenHeight,
		pix:       make([]byte, vdp.ScreenWidth*vdp.ScreenHeight*4),
		vsyncChan: make(chan struct{}, 1),
	}
}

// Start opens the window on a background goroutine and blocks until
// the first Draw call, mirroring EbitenOutput.Start.
func (d *EbitenDisplay) Start() error {
	if d.started {
		return nil
	}
	d.started = true
	ebiten.SetWindowSize(d.width*2, d.height*2)
	ebiten.SetWindowTitle("geniemu")
	ebiten.SetWindowResizable(true)

	go func() {
		if err := ebiten.RunGame(d); err != nil {
			fmt.Printf("display: ebiten exited: %v\n", err)
		}
	}()

	<-d.vsyncChan
	return nil
}

// Submit copies frame.Pix, already RGBA8888 (vdp.Frame's documented
// layout), into the buffer the next Draw call presents.
func (d *EbitenDisplay) Submit(frame *vdp.Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(frame.Pix) != len(d.pix) {
		return fmt.Errorf("display: frame is %dx%d, want %dx%d", frame.Width, frame.Height, d.width, d.height)
	}
	copy(d.pix, frame.Pix)
	return nil
}

// Poll drains the key transitions accumulated since the last call.
func (d *EbitenDisplay) Poll() ([]machine.InputEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	events := d.events
	d.events = nil
	return events, nil
}

// Update satisfies ebiten.Game: for each mapped key that inpututil
// reports as just pressed or just released, it queues a KeyDown or
// KeyUp InputEvent for the next Poll.
func (d *EbitenDisplay) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for ek, ck := range keyMap {
		switch {
		case inpututil.IsKeyJustPressed(ek):
			d.events = append(d.events, machine.InputEvent{Kind: machine.KeyDown, Key: ck})
		case inpututil.IsKeyJustReleased(ek):
			d.events = append(d.events, machine.InputEvent{Kind: machine.KeyUp, Key: ck})
		}
	}
	return nil
}

// Draw satisfies ebiten.Game: it presents the most recently submitted
// frame and signals vsyncChan, the same handshake EbitenOutput.Draw
// uses to unblock Start.
func (d *EbitenDisplay) Draw(screen *ebiten.Image) {
	d.mu.Lock()
	if d.window == nil {
		d.window = ebiten.NewImage(d.width, d.height)
	}
	d.window.WritePixels(d.pix)
	d.mu.Unlock()

	screen.DrawImage(d.window, nil)

	select {
	case d.vsyncChan <- struct{}{}:
	default:
	}
}

// Layout satisfies ebiten.Game with the VDP's fixed logical resolution.
func (d *EbitenDisplay) Layout(_, _ int) (int, int) {
	return d.width, d.height
}
