// Package cmdqueue is the deferred command store behind the rasterizer: a
// bump arena that bounds how much can be queued per frame, typed record
// pools, and one FIFO list per stripe.
package cmdqueue

import (
	"errors"
	"fmt"
)

// Align is the arena allocation granularity in bytes.
const Align = 4

var ErrArenaFull = errors.New("cmdqueue: arena full")

// AlignUp rounds n up to a multiple of Align.
func AlignUp(n int) int {
	return (n + Align - 1) &^ (Align - 1)
}

// Arena is a fixed-capacity bump allocator. Allocations are only released
// all at once by Reset.
type Arena struct {
	buf  []byte
	used int
}

func NewArena(capacity int) *Arena {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena{buf: make([]byte, capacity&^(Align-1))}
}

// Alloc reserves size bytes and returns their offset. On failure the
// watermark does not move.
func (a *Arena) Alloc(size int) (int, error) {
	if size < 0 {
		return 0, fmt.Errorf("cmdqueue: negative allocation %d", size)
	}
	n := AlignUp(size)
	if n > a.Remaining() {
		return 0, fmt.Errorf("%w: need %d bytes, %d left", ErrArenaFull, n, a.Remaining())
	}
	off := a.used
	a.used += n
	return off, nil
}

// Fits reports whether allocations of the given sizes would all succeed.
func (a *Arena) Fits(sizes ...int) bool {
	total := 0
	for _, s := range sizes {
		if s < 0 {
			return false
		}
		total += AlignUp(s)
	}
	return total <= a.Remaining()
}

// Bytes returns the n bytes at off. The slice aliases the arena.
func (a *Arena) Bytes(off, n int) []byte {
	return a.buf[off : off+n : off+n]
}

func (a *Arena) Used() int { return a.used }

func (a *Arena) Cap() int { return len(a.buf) }

func (a *Arena) Remaining() int { return len(a.buf) - a.used }

func (a *Arena) Reset() { a.used = 0 }
