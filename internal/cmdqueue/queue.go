package cmdqueue

import (
	"errors"
	"fmt"
)

// Arena cost of each record kind. Every command pays a header plus its
// payload.
const (
	HeaderSize = 8
	ClearSize  = 8
	BlitSize   = 24
	TextSize   = 16

	ClearRecord = HeaderSize + ClearSize
	BlitRecord  = HeaderSize + BlitSize
	TextRecord  = HeaderSize + TextSize
)

var (
	ErrStaleHandle   = errors.New("cmdqueue: stale handle")
	ErrStripeRange   = errors.New("cmdqueue: stripe out of range")
	ErrAlreadyQueued = errors.New("cmdqueue: command already queued")
)

type Op uint8

const (
	OpClear Op = iota + 1
	OpBlit
	OpText
)

func (o Op) String() string {
	switch o {
	case OpClear:
		return "clear"
	case OpBlit:
		return "blit"
	case OpText:
		return "text"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Clear fills a whole stripe.
type Clear struct {
	Colour uint16
}

// Blit copies Rows rows of a 4bpp tile into a stripe. Pixels starts at the
// first source row drawn; SrcX is the first source pixel of each row.
type Blit struct {
	Pixels  []byte
	Stride  int // source row length in pixels, even
	SrcX    int
	DstX    int
	DstRow  int
	Width   int
	Rows    int
	Palette *[16]uint16

	// Transparent is the palette index left undrawn, or 0xFF for none. It
	// is captured when the blit is recorded.
	Transparent uint8
}

// Text draws a run of characters whose codes are already remapped to glyph
// indices. Chars/NumChars locate them in the arena.
type Text struct {
	Font     uint8
	X        int
	DstRow   int
	GlyphRow int
	Rows     int
	Colour   uint16
	Chars    int
	NumChars int
}

// Command is a queued record: its kind and an index into that kind's pool.
type Command struct {
	Op    Op
	Index int

	next   int32
	queued bool
}

// Handle names an allocated command for the current generation only.
type Handle struct {
	index int32
	gen   uint32
}

type stripeList struct {
	head, tail int32
}

// Queue holds the commands of one frame.
type Queue struct {
	arena   *Arena
	gen     uint32
	cmds    []Command
	clears  []Clear
	blits   []Blit
	texts   []Text
	stripes []stripeList
}

// New returns a queue with arenaBytes of capacity and the given number of
// stripes.
func New(arenaBytes, stripes int) *Queue {
	if stripes < 1 {
		stripes = 1
	}
	maxCmds := arenaBytes / ClearRecord
	if maxCmds < 0 {
		maxCmds = 0
	}
	q := &Queue{
		arena:   NewArena(arenaBytes),
		cmds:    make([]Command, 0, maxCmds),
		stripes: make([]stripeList, stripes),
	}
	q.clearLists()
	return q
}

func (q *Queue) clearLists() {
	for i := range q.stripes {
		q.stripes[i] = stripeList{head: -1, tail: -1}
	}
}

func (q *Queue) Arena() *Arena { return q.arena }

func (q *Queue) Stripes() int { return len(q.stripes) }

// Len is the number of commands allocated this generation.
func (q *Queue) Len() int { return len(q.cmds) }

// Reserve fails with ErrArenaFull unless allocations of all sizes would
// succeed. Nothing is allocated either way.
func (q *Queue) Reserve(sizes ...int) error {
	if !q.arena.Fits(sizes...) {
		return fmt.Errorf("%w: %d bytes left", ErrArenaFull, q.arena.Remaining())
	}
	return nil
}

// Reset empties every stripe, releases the arena and invalidates all
// outstanding handles.
func (q *Queue) Reset() {
	q.arena.Reset()
	q.cmds = q.cmds[:0]
	q.clears = q.clears[:0]
	q.blits = q.blits[:0]
	q.texts = q.texts[:0]
	q.clearLists()
	q.gen++
}

func (q *Queue) alloc(op Op, size, index int) (Handle, error) {
	if _, err := q.arena.Alloc(size); err != nil {
		return Handle{}, err
	}
	q.cmds = append(q.cmds, Command{Op: op, Index: index, next: -1})
	return Handle{index: int32(len(q.cmds) - 1), gen: q.gen}, nil
}

func (q *Queue) AllocClear(c Clear) (Handle, error) {
	h, err := q.alloc(OpClear, ClearRecord, len(q.clears))
	if err != nil {
		return Handle{}, err
	}
	q.clears = append(q.clears, c)
	return h, nil
}

func (q *Queue) AllocBlit(b Blit) (Handle, error) {
	h, err := q.alloc(OpBlit, BlitRecord, len(q.blits))
	if err != nil {
		return Handle{}, err
	}
	q.blits = append(q.blits, b)
	return h, nil
}

func (q *Queue) AllocText(t Text) (Handle, error) {
	h, err := q.alloc(OpText, TextRecord, len(q.texts))
	if err != nil {
		return Handle{}, err
	}
	q.texts = append(q.texts, t)
	return h, nil
}

// AllocChars reserves n bytes of character storage and returns the offset
// and the writable bytes.
func (q *Queue) AllocChars(n int) (int, []byte, error) {
	off, err := q.arena.Alloc(n)
	if err != nil {
		return 0, nil, err
	}
	return off, q.arena.Bytes(off, n), nil
}

// SetChars points an unqueued text record at n character bytes at off.
func (q *Queue) SetChars(h Handle, off, n int) error {
	if h.gen != q.gen || h.index < 0 || int(h.index) >= len(q.cmds) {
		return ErrStaleHandle
	}
	c := q.cmds[h.index]
	if c.Op != OpText {
		return fmt.Errorf("cmdqueue: %v command has no characters", c.Op)
	}
	if c.queued {
		return ErrAlreadyQueued
	}
	t := &q.texts[c.Index]
	t.Chars, t.NumChars = off, n
	return nil
}

// Chars returns the character codes of a text record.
func (q *Queue) Chars(t Text) []byte {
	return q.arena.Bytes(t.Chars, t.NumChars)
}

// Enqueue appends the command to the tail of stripe's list. A command can
// be queued on at most one stripe.
func (q *Queue) Enqueue(h Handle, stripe int) error {
	if h.gen != q.gen || h.index < 0 || int(h.index) >= len(q.cmds) {
		return ErrStaleHandle
	}
	if stripe < 0 || stripe >= len(q.stripes) {
		return fmt.Errorf("%w: %d", ErrStripeRange, stripe)
	}
	c := &q.cmds[h.index]
	if c.queued {
		return ErrAlreadyQueued
	}
	c.queued = true
	l := &q.stripes[stripe]
	if l.tail < 0 {
		l.head = h.index
	} else {
		q.cmds[l.tail].next = h.index
	}
	l.tail = h.index
	return nil
}

// Walk calls fn for each command queued on stripe, oldest first.
func (q *Queue) Walk(stripe int, fn func(Command)) error {
	if stripe < 0 || stripe >= len(q.stripes) {
		return fmt.Errorf("%w: %d", ErrStripeRange, stripe)
	}
	for i := q.stripes[stripe].head; i >= 0; i = q.cmds[i].next {
		fn(q.cmds[i])
	}
	return nil
}

// Depth counts the commands queued on stripe, or 0 for a stripe out of
// range.
func (q *Queue) Depth(stripe int) int {
	if stripe < 0 || stripe >= len(q.stripes) {
		return 0
	}
	n := 0
	for i := q.stripes[stripe].head; i >= 0; i = q.cmds[i].next {
		n++
	}
	return n
}

// The accessors return copies so replay never mutates queued state.

func (q *Queue) ClearAt(c Command) Clear { return q.clears[c.Index] }

func (q *Queue) BlitAt(c Command) Blit { return q.blits[c.Index] }

func (q *Queue) TextAt(c Command) Text { return q.texts[c.Index] }
