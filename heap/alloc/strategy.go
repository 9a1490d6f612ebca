package alloc

// Search strategies. Each one scans the chain read-only and returns the arena
// index of a free block whose payload is at least need bytes, or nilIdx.
// None of them mutate the chain; NextFit's cursor is owned by the Allocator.

// chain is the read-only view a strategy scans.
type chain struct {
	blocks []block
	head   int32
}

func (c chain) fits(i int32, need uint64) bool {
	b := &c.blocks[i]
	return !b.used && b.size >= need
}

// firstFit returns the first fitting block from the head.
// O(n); leaves small fragments clustered at the front of the region.
func firstFit(c chain, need uint64) int32 {
	for i := c.head; i != nilIdx; i = c.blocks[i].next {
		if c.fits(i, need) {
			return i
		}
	}
	return nilIdx
}

// nextFit scans circularly from start and gives up once the scan is back
// where it began. A start that no longer names a live block falls back to
// the head so a stale cursor can never trap the scan.
func nextFit(c chain, start int32, need uint64) int32 {
	if c.head == nilIdx {
		return nilIdx
	}
	if start < 0 || int(start) >= len(c.blocks) || !c.blocks[start].live {
		start = c.head
	}

	i := start
	for {
		if c.fits(i, need) {
			return i
		}
		i = c.blocks[i].next
		if i == nilIdx {
			i = c.head
		}
		if i == start {
			return nilIdx
		}
	}
}

// bestFit returns the smallest fitting block. An exact match ends the scan
// early; among equal sizes the lowest address wins.
func bestFit(c chain, need uint64) int32 {
	best := nilIdx
	for i := c.head; i != nilIdx; i = c.blocks[i].next {
		if !c.fits(i, need) {
			continue
		}
		size := c.blocks[i].size
		if size == need {
			return i
		}
		if best == nilIdx || size < c.blocks[best].size {
			best = i
		}
	}
	return best
}
