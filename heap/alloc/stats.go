package alloc

// Stats counts allocator activity since the last Init.
type Stats struct {
	Inits       int    // Init calls over the allocator's lifetime
	AllocCalls  int    // Total Alloc() calls
	AllocReused int    // Allocations served from a free block
	AllocGrown  int    // Allocations that grew the region
	OutOfMemory int    // Allocations refused because the region could not grow
	FreeCalls   int    // Total Free() calls
	DoubleFrees int    // Free() calls rejected as double frees
	GrowCalls   int    // Successful region growths
	GrowBytes   uint64 // Total bytes added to the region
	Splits      int    // Free blocks split on reuse
	Coalesces   int    // Adjacent free blocks merged
}

// Usage summarizes the current chain.
type Usage struct {
	RegionBytes int    // current region extent
	Blocks      int    // blocks in the chain
	UsedBlocks  int
	FreeBlocks  int
	UsedBytes   uint64 // payload bytes in used blocks
	FreeBytes   uint64 // payload bytes in free blocks
	LargestFree uint64 // largest free payload
	Overhead    uint64 // header bytes across all blocks
}

// Fragmentation returns 1 - LargestFree/FreeBytes: 0 when all free space is
// one block, approaching 1 as it splinters. Zero when nothing is free.
func (u Usage) Fragmentation() float64 {
	if u.FreeBytes == 0 {
		return 0
	}
	return 1 - float64(u.LargestFree)/float64(u.FreeBytes)
}

// Stats returns the activity counters.
func (a *Allocator) Stats() Stats { return a.stats }

// Usage walks the chain and totals used and free space.
func (a *Allocator) Usage() Usage {
	u := Usage{RegionBytes: a.r.Len()}
	for i := a.head; i != nilIdx; i = a.blocks[i].next {
		b := &a.blocks[i]
		u.Blocks++
		u.Overhead += headerSize
		if b.used {
			u.UsedBlocks++
			u.UsedBytes += b.size
			continue
		}
		u.FreeBlocks++
		u.FreeBytes += b.size
		u.LargestFree = max(u.LargestFree, b.size)
	}
	return u
}
