package display

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/intuitionamiga/geniemu/internal/vdp"
)

// HashDisplay replaces the window with a running checksum of every
// submitted frame, grounded on
// `original_source/heaven_ice/display_hash.cpp`'s DisplayHashImpl
// (`bee::SimpleChecksum` over the raw pixel bytes, printed per frame).
// Intended for deterministic regression tests and CI, where comparing
// a short digest is cheaper than diffing pixel buffers.
type HashDisplay struct {
	Digests []string
}

// NewHashDisplay returns an empty HashDisplay.
func NewHashDisplay() *HashDisplay {
	return &HashDisplay{}
}

// Submit appends the hex SHA-256 digest of frame.Pix to Digests.
func (d *HashDisplay) Submit(frame *vdp.Frame) error {
	sum := sha256.Sum256(frame.Pix)
	d.Digests = append(d.Digests, hex.EncodeToString(sum[:]))
	return nil
}

// Last returns the most recently recorded digest, or "" if Submit has
// never been called.
func (d *HashDisplay) Last() string {
	if len(d.Digests) == 0 {
		return ""
	}
	return d.Digests[len(d.Digests)-1]
}

// String renders the digest count for debugging/logging.
func (d *HashDisplay) String() string {
	return fmt.Sprintf("HashDisplay{%d frames}", len(d.Digests))
}
