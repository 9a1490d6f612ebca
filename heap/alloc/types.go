package alloc

import (
	"fmt"
	"strings"
)

// SearchMode selects how a reusable free block is located in the chain.
type SearchMode uint8

const (
	// FirstFit returns the first free block, from the head, that is large enough.
	FirstFit SearchMode = iota
	// NextFit resumes scanning after the previous hit and wraps around once.
	NextFit
	// BestFit returns the smallest free block that is large enough.
	BestFit
)

var modeNames = [...]string{
	FirstFit: "first-fit",
	NextFit:  "next-fit",
	BestFit:  "best-fit",
}

func (m SearchMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("SearchMode(%d)", uint8(m))
}

// Valid reports whether m names a known strategy.
func (m SearchMode) Valid() bool { return int(m) < len(modeNames) }

// ParseSearchMode accepts "first-fit", "next-fit", "best-fit" and the
// compact spellings "firstfit", "first", etc.
func ParseSearchMode(s string) (SearchMode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	key = strings.TrimSuffix(key, "fit")
	switch key {
	case "first":
		return FirstFit, nil
	case "next":
		return NextFit, nil
	case "best":
		return BestFit, nil
	}
	return 0, fmt.Errorf("%w: unknown search mode %q", ErrInvalidArgument, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m SearchMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: unknown search mode %d", ErrInvalidArgument, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SearchMode) UnmarshalText(b []byte) error {
	v, err := ParseSearchMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Handle identifies one allocation. It pairs the arena slot with the
// generation the slot had when the allocation was made, plus the allocator
// instance and epoch, so Free can reject anything it did not hand out.
// The zero Handle is never valid.
type Handle struct {
	heap  uint32
	epoch uint32
	index int32
	gen   uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h == Handle{} }

func (h Handle) String() string {
	if h.IsZero() {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(heap=%d epoch=%d slot=%d gen=%d)", h.heap, h.epoch, h.index, h.gen)
}

// BlockInfo is a read-only snapshot of one block in the chain.
type BlockInfo struct {
	Offset int    // region offset of the header
	Size   uint64 // payload bytes
	Used   bool
}

// PayloadOffset returns the region offset of the first payload byte.
func (b BlockInfo) PayloadOffset() int { return b.Offset + headerSize }

// End returns the region offset just past the payload.
func (b BlockInfo) End() int { return b.PayloadOffset() + int(b.Size) }

// nilIdx marks the absence of a block link.
const nilIdx int32 = -1

// block is the arena record for one chain node. The same fields are mirrored
// into the region at off so the region bytes always describe the chain.
type block struct {
	off  int
	size uint64
	used bool
	next int32
	prev int32
	gen  uint32
	live bool // false once absorbed by coalescing
}

func (b *block) info() BlockInfo {
	return BlockInfo{Offset: b.off, Size: b.size, Used: b.used}
}
