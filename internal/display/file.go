package display

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"

	"github.com/intuitionamiga/geniemu/internal/vdp"
)

// FileDisplay dumps each submitted frame to its own numbered image
// file, grounded on `original_source/heaven_ice/display_pnm.cpp`'s
// DisplayPnmImpl: an output directory created once, a per-call
// counter, one file per frame. The original writes PNM; this package
// writes BMP via x/image/bmp since nothing in this corpus's dependency
// set implements PNM encoding.
type FileDisplay struct {
	dir     string
	counter int
}

// NewFileDisplay creates dir (if it does not already exist) and
// returns a display that writes one BMP per Submit call into it.
func NewFileDisplay(dir string) (*FileDisplay, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("display: creating %s: %w", dir, err)
	}
	return &FileDisplay{dir: dir}, nil
}

// Submit encodes frame as a BMP named screenshot_NNNNNN.bmp.
func (d *FileDisplay) Submit(frame *vdp.Frame) error {
	d.counter++
	path := filepath.Join(d.dir, fmt.Sprintf("screenshot_%06d.bmp", d.counter))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("display: creating %s: %w", path, err)
	}
	defer f.Close()

	img := &image.RGBA{
		Pix:    frame.Pix,
		Stride: frame.Width * 4,
		Rect:   image.Rect(0, 0, frame.Width, frame.Height),
	}
	if err := bmp.Encode(f, img); err != nil {
		return fmt.Errorf("display: encoding %s: %w", path, err)
	}
	return nil
}
