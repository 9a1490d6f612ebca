package alloc

import (
	"fmt"
	"strings"

	"github.com/joshuapare/heapkit/internal/format"
)

// String renders the chain as [[size, used], ...], e.g. [[8, 1], [16, 0]].
func (a *Allocator) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := a.head; i != nilIdx; i = a.blocks[i].next {
		if i != a.head {
			sb.WriteString(", ")
		}
		b := &a.blocks[i]
		used := 0
		if b.used {
			used = 1
		}
		fmt.Fprintf(&sb, "[%d, %d]", b.size, used)
	}
	sb.WriteByte(']')
	return sb.String()
}

// Verify checks the chain against the region:
//   - blocks tile the region from offset 0 to its end with no gaps
//   - every size is a positive multiple of the word size
//   - prev/next links agree and the tail is the last block
//   - header bytes in the region match the arena records
//   - no two neighbouring blocks are both free
func (a *Allocator) Verify() error {
	data := a.r.Bytes()
	want := 0
	count := 0
	prev := nilIdx
	prevFree := false

	for i := a.head; i != nilIdx; i = a.blocks[i].next {
		b := &a.blocks[i]
		count++
		if count > len(a.blocks) {
			return fmt.Errorf("%w: cycle at slot %d", ErrCorrupt, i)
		}
		if !b.live {
			return fmt.Errorf("%w: dead slot %d linked at offset %d", ErrCorrupt, i, b.off)
		}
		if b.prev != prev {
			return fmt.Errorf("%w: block at %d has prev %d, want %d", ErrCorrupt, b.off, b.prev, prev)
		}
		if b.off != want {
			return fmt.Errorf("%w: block at %d, expected %d", ErrCorrupt, b.off, want)
		}
		if b.size == 0 || !format.IsAligned(b.size) {
			return fmt.Errorf("%w: block at %d has size %d", ErrCorrupt, b.off, b.size)
		}
		if !b.used && prevFree {
			return fmt.Errorf("%w: uncoalesced free neighbours at %d", ErrCorrupt, b.off)
		}

		hdr, err := format.ReadHeader(data, b.off)
		if err != nil {
			return fmt.Errorf("%w: header at %d: %w", ErrCorrupt, b.off, err)
		}
		next := format.NoBlock
		if b.next != nilIdx {
			next = uint64(a.blocks[b.next].off)
		}
		if hdr.Size != b.size || hdr.Used != b.used || hdr.Next != next {
			return fmt.Errorf("%w: header at %d is %+v, record is size=%d used=%v next=%d",
				ErrCorrupt, b.off, hdr, b.size, b.used, next)
		}

		want = b.off + headerSize + int(b.size)
		prevFree = !b.used
		prev = i
	}

	if prev != a.tail {
		return fmt.Errorf("%w: tail is slot %d, chain ends at %d", ErrCorrupt, a.tail, prev)
	}
	if count != a.live {
		return fmt.Errorf("%w: chain has %d blocks, %d recorded", ErrCorrupt, count, a.live)
	}
	if want != len(data) {
		return fmt.Errorf("%w: chain ends at %d, region is %d bytes", ErrCorrupt, want, len(data))
	}
	return nil
}
