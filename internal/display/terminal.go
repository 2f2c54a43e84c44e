package display

import (
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/intuitionamiga/geniemu/internal/controller"
	"github.com/intuitionamiga/geniemu/internal/machine"
)

// termKeyMap mirrors keyMap's WASD/JKL/Enter layout for a headless
// terminal session (no window, so no ebiten key events are available).
var termKeyMap = map[byte]controller.Key{
	'w': controller.Up,
	's': controller.Down,
	'a': controller.Left,
	'd': controller.Right,
	'j': controller.A,
	'k': controller.B,
	'l': controller.C,
	'\r': controller.Start,
	'\n': controller.Start,
}

// TerminalInput polls stdin in raw non-blocking mode, grounded on the
// teacher's TerminalHost: term.MakeRaw plus a background goroutine of
// 1-byte syscall.Read calls, sleeping on EAGAIN/EWOULDBLOCK. A terminal
// has no key-up signal, so each recognized byte is queued as an
// immediate KeyDown followed by a KeyUp — the console sees a tap, never
// a held key.
type TerminalInput struct {
	mu      sync.Mutex
	events  []machine.InputEvent
	fd      int
	oldTerm *term.State
	nonblk  bool
	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once
}

// NewTerminalInput constructs a TerminalInput reading from stdin.
func NewTerminalInput() *TerminalInput {
	return &TerminalInput{
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start puts stdin into raw, non-blocking mode and begins the read
// loop. Call Stop to restore the terminal.
func (t *TerminalInput) Start() error {
	t.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(t.fd)
	if err != nil {
		close(t.done)
		return err
	}
	t.oldTerm = oldState

	if err := syscall.SetNonblock(t.fd, true); err != nil {
		_ = term.Restore(t.fd, t.oldTerm)
		t.oldTerm = nil
		close(t.done)
		return err
	}
	t.nonblk = true

	go t.readLoop()
	return nil
}

func (t *TerminalInput) readLoop() {
	defer close(t.done)
	buf := make([]byte, 1)

	for {
		select {
		case <-t.stopCh:
			return
		default:
		}

		n, err := syscall.Read(t.fd, buf)
		if n > 0 {
			t.route(buf[0])
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func (t *TerminalInput) route(b byte) {
	key, ok := termKeyMap[b]
	if !ok {
		return
	}
	t.mu.Lock()
	t.events = append(t.events,
		machine.InputEvent{Kind: machine.KeyDown, Key: key},
		machine.InputEvent{Kind: machine.KeyUp, Key: key},
	)
	t.mu.Unlock()
}

// Poll drains the key taps accumulated since the last call.
func (t *TerminalInput) Poll() ([]machine.InputEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	events := t.events
	t.events = nil
	return events, nil
}

// Stop terminates the read goroutine and restores the terminal state.
func (t *TerminalInput) Stop() {
	t.stopped.Do(func() {
		close(t.stopCh)
	})
	<-t.done
	if t.nonblk {
		_ = syscall.SetNonblock(t.fd, false)
		t.nonblk = false
	}
	if t.oldTerm != nil {
		_ = term.Restore(t.fd, t.oldTerm)
		t.oldTerm = nil
	}
}
