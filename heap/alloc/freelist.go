package alloc

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/joshuapare/heapkit/heap/region"
	"github.com/joshuapare/heapkit/internal/format"
)

const headerSize = format.HeaderSize

// heapIDs hands out instance ids so handles cannot cross allocators.
var heapIDs atomic.Uint32

// Allocator is a free-list allocator over a single growable region.
//
// Every block ever carved from the region stays in one address-ordered chain.
// Alloc reuses a free block chosen by the active SearchMode, splitting off the
// surplus when it is large enough to stand as its own block, and grows the
// region only when nothing fits. Free marks the block free and eagerly merges
// it with free neighbours.
//
// Block records live in an arena and are linked by index; handles carry the
// slot generation so stale or foreign handles are rejected instead of
// corrupting the chain.
//
// Allocator is not safe for concurrent use. Callers sharing one across
// goroutines must hold a single lock around every call, since split and
// coalesce rewrite links shared by neighbouring blocks.
type Allocator struct {
	r   region.Region
	log *slog.Logger

	id       uint32
	epoch    uint32
	mode     SearchMode
	minSplit uint64

	blocks []block
	spare  []int32 // arena slots freed by coalescing
	head   int32
	tail   int32
	cursor int32 // last NextFit hit, nilIdx when unset
	live   int

	stats Stats
}

// New creates an allocator over r and initializes it with the configured
// search mode, resetting r.
func New(r region.Region, opts ...Option) (*Allocator, error) {
	o := buildOptions(opts)
	a := &Allocator{
		r:        r,
		log:      o.Logger,
		id:       heapIDs.Add(1),
		minSplit: o.MinSplit,
		head:     nilIdx,
		tail:     nilIdx,
		cursor:   nilIdx,
	}
	if err := a.Init(o.Mode); err != nil {
		return nil, err
	}
	return a, nil
}

// Init resets the region, empties the chain, clears the NextFit cursor and
// installs mode. Every handle issued before the call becomes invalid.
func (a *Allocator) Init(mode SearchMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown search mode %d", ErrInvalidArgument, uint8(mode))
	}
	a.r.Reset()
	a.blocks = a.blocks[:0]
	a.spare = a.spare[:0]
	a.head, a.tail, a.cursor = nilIdx, nilIdx, nilIdx
	a.live = 0
	a.mode = mode
	a.epoch++
	a.stats = Stats{Inits: a.stats.Inits + 1}
	a.log.Debug("init", "heap", a.id, "epoch", a.epoch, "mode", mode)
	return nil
}

// Mode returns the active search strategy.
func (a *Allocator) Mode() SearchMode { return a.mode }

// Region returns the backing region.
func (a *Allocator) Region() region.Region { return a.r }

// Alloc returns a handle and payload slice for at least size bytes. The
// payload is size rounded up to the word size. A zero size is rejected.
//
// The payload slice aliases the region and stays valid until the block is
// freed or the allocator is re-initialized.
func (a *Allocator) Alloc(size uint64) (Handle, []byte, error) {
	a.stats.AllocCalls++

	if size == 0 {
		return Handle{}, nil, fmt.Errorf("%w: zero-size allocation", ErrInvalidArgument)
	}
	need, err := format.AlignUp(size)
	if err != nil {
		return Handle{}, nil, fmt.Errorf("%w: align %d: %w", ErrInvalidArgument, size, err)
	}
	footprint, err := format.Footprint(need)
	if err != nil || footprint > math.MaxInt {
		return Handle{}, nil, fmt.Errorf("%w: footprint of %d bytes overflows", ErrInvalidArgument, size)
	}

	if idx := a.find(need); idx != nilIdx {
		a.takeFree(idx, need)
		a.stats.AllocReused++
		return a.handle(idx), a.payload(idx), nil
	}

	idx, err := a.grow(need, footprint)
	if err != nil {
		a.stats.OutOfMemory++
		return Handle{}, nil, err
	}
	a.stats.AllocGrown++
	return a.handle(idx), a.payload(idx), nil
}

// Free releases the block behind h and merges it with free neighbours.
func (a *Allocator) Free(h Handle) error {
	a.stats.FreeCalls++

	idx, err := a.resolve(h)
	if err != nil {
		return err
	}
	b := &a.blocks[idx]
	if !b.live || !b.used {
		a.stats.DoubleFrees++
		return fmt.Errorf("%w: %s", ErrDoubleFree, h)
	}

	b.used = false
	a.writeHeader(idx)
	a.log.Debug("free", "off", b.off, "size", b.size)

	a.coalesce(idx)
	return nil
}

// Info describes the block behind h.
func (a *Allocator) Info(h Handle) (BlockInfo, error) {
	idx, err := a.resolve(h)
	if err != nil {
		return BlockInfo{}, err
	}
	if !a.blocks[idx].live {
		return BlockInfo{}, fmt.Errorf("%w: %s was merged into a neighbour", ErrInvalidHandle, h)
	}
	return a.blocks[idx].info(), nil
}

// Payload returns the payload slice of a live allocation.
func (a *Allocator) Payload(h Handle) ([]byte, error) {
	idx, err := a.resolve(h)
	if err != nil {
		return nil, err
	}
	if b := &a.blocks[idx]; !b.live || !b.used {
		return nil, fmt.Errorf("%w: %s is not allocated", ErrInvalidHandle, h)
	}
	return a.payload(idx), nil
}

// Cursor returns the block NextFit will resume from, if any.
func (a *Allocator) Cursor() (BlockInfo, bool) {
	if a.cursor == nilIdx || !a.blocks[a.cursor].live {
		return BlockInfo{}, false
	}
	return a.blocks[a.cursor].info(), true
}

// Blocks returns the chain in address order.
func (a *Allocator) Blocks() []BlockInfo {
	out := make([]BlockInfo, 0, a.live)
	for i := a.head; i != nilIdx; i = a.blocks[i].next {
		out = append(out, a.blocks[i].info())
	}
	return out
}

// Len returns the number of blocks in the chain.
func (a *Allocator) Len() int { return a.live }

// ============================================================================
// Internal helpers
// ============================================================================

func (a *Allocator) find(need uint64) int32 {
	c := chain{blocks: a.blocks, head: a.head}
	switch a.mode {
	case FirstFit:
		return firstFit(c, need)
	case NextFit:
		idx := nextFit(c, a.cursor, need)
		if idx != nilIdx {
			a.cursor = idx
		}
		return idx
	case BestFit:
		return bestFit(c, need)
	}
	return nilIdx
}

// takeFree marks a free block used, carving the surplus off first when it
// is large enough to host its own header and at least one word.
func (a *Allocator) takeFree(idx int32, need uint64) {
	if a.blocks[idx].size-need >= a.minSplit {
		a.split(idx, need)
	}
	b := &a.blocks[idx]
	b.used = true
	b.gen++
	a.writeHeader(idx)
	a.log.Debug("reuse", "off", b.off, "size", b.size, "need", need, "mode", a.mode)
}

// split shrinks idx to need bytes and splices a free remainder right after
// it. The remainder header sits where the shrunken payload ends, so chain
// order stays address order.
func (a *Allocator) split(idx int32, need uint64) {
	r := a.newSlot()
	b := &a.blocks[idx]
	rem := &a.blocks[r]

	rem.off = b.off + headerSize + int(need)
	rem.size = b.size - need - headerSize
	rem.used = false
	rem.live = true
	rem.prev = idx
	rem.next = b.next

	if b.next != nilIdx {
		a.blocks[b.next].prev = r
	} else {
		a.tail = r
	}
	b.next = r
	b.size = need
	a.live++
	a.stats.Splits++

	a.writeHeader(r)
	a.writeHeader(idx)
	a.log.Debug("split", "off", b.off, "size", need, "remainder_off", rem.off, "remainder", rem.size)
}

// coalesce merges idx with a free successor and then into a free
// predecessor. Returns the index of the surviving block.
func (a *Allocator) coalesce(idx int32) int32 {
	if n := a.blocks[idx].next; n != nilIdx && !a.blocks[n].used {
		a.absorb(idx, n)
	}
	if p := a.blocks[idx].prev; p != nilIdx && !a.blocks[p].used {
		a.absorb(p, idx)
		idx = p
	}
	return idx
}

// absorb folds victim, the chain successor of into, into into. The victim's
// header overhead is returned to the payload of into.
func (a *Allocator) absorb(into, victim int32) {
	dst := &a.blocks[into]
	v := &a.blocks[victim]

	dst.size += headerSize + v.size
	dst.next = v.next
	if v.next != nilIdx {
		a.blocks[v.next].prev = into
	} else {
		a.tail = into
	}

	v.live = false
	v.next, v.prev = nilIdx, nilIdx
	a.spare = append(a.spare, victim)
	a.live--
	if a.cursor == victim {
		a.cursor = nilIdx
	}
	a.stats.Coalesces++

	a.writeHeader(into)
	a.log.Debug("coalesce", "off", dst.off, "size", dst.size, "absorbed_off", v.off)
}

// grow carves a fresh used block from new region space and appends it.
// Nothing is mutated unless the region grows.
func (a *Allocator) grow(need, footprint uint64) (int32, error) {
	off, err := a.r.Grow(footprint)
	if err != nil {
		a.log.Debug("grow denied", "need", need, "footprint", footprint, "err", err)
		return nilIdx, fmt.Errorf("%w: grow by %d bytes: %w", ErrOutOfMemory, footprint, err)
	}
	a.stats.GrowCalls++
	a.stats.GrowBytes += footprint

	idx := a.newSlot()
	b := &a.blocks[idx]
	b.off = off
	b.size = need
	b.used = true
	b.live = true
	b.prev = a.tail
	b.next = nilIdx

	if a.tail != nilIdx {
		a.blocks[a.tail].next = idx
		a.writeHeader(a.tail)
	} else {
		a.head = idx
	}
	a.tail = idx
	a.live++
	a.writeHeader(idx)

	a.log.Debug("grow", "off", off, "size", need, "footprint", footprint, "region", a.r.Len())
	return idx, nil
}

// newSlot returns an arena slot with a fresh generation, recycling slots
// released by coalescing first.
func (a *Allocator) newSlot() int32 {
	if n := len(a.spare); n > 0 {
		idx := a.spare[n-1]
		a.spare = a.spare[:n-1]
		a.blocks[idx].gen++
		return idx
	}
	a.blocks = append(a.blocks, block{gen: 1, next: nilIdx, prev: nilIdx})
	return int32(len(a.blocks) - 1)
}

func (a *Allocator) handle(idx int32) Handle {
	return Handle{heap: a.id, epoch: a.epoch, index: idx, gen: a.blocks[idx].gen}
}

// resolve maps h to an arena index, rejecting foreign, outdated and reused
// handles. The returned slot may be dead (absorbed while free).
func (a *Allocator) resolve(h Handle) (int32, error) {
	switch {
	case h.IsZero():
		return nilIdx, fmt.Errorf("%w: zero handle", ErrInvalidHandle)
	case h.heap != a.id:
		return nilIdx, fmt.Errorf("%w: %s belongs to another allocator", ErrInvalidHandle, h)
	case h.epoch != a.epoch:
		return nilIdx, fmt.Errorf("%w: %s predates the last Init", ErrInvalidHandle, h)
	case h.index < 0 || int(h.index) >= len(a.blocks):
		return nilIdx, fmt.Errorf("%w: %s outside the arena", ErrInvalidHandle, h)
	case a.blocks[h.index].gen != h.gen:
		return nilIdx, fmt.Errorf("%w: %s has been reused", ErrInvalidHandle, h)
	}
	return h.index, nil
}

func (a *Allocator) payload(idx int32) []byte {
	b := &a.blocks[idx]
	start := b.off + headerSize
	end := start + int(b.size)
	return a.r.Bytes()[start:end:end]
}

// writeHeader mirrors the arena record into the region.
func (a *Allocator) writeHeader(idx int32) {
	b := &a.blocks[idx]
	next := format.NoBlock
	if b.next != nilIdx {
		next = uint64(a.blocks[b.next].off)
	}
	// The record was carved from this region, so the header always fits.
	_ = format.PutHeader(a.r.Bytes(), b.off, format.Header{Size: b.size, Used: b.used, Next: next})
}
