// Package alloc implements a free-list heap allocator over a growable region.
//
// # Overview
//
// The allocator hands out blocks carved from a region.Region. Each block is a
// fixed 24-byte header followed by a word-aligned payload. All blocks form one
// chain in address order; freed blocks stay in the chain and are found again
// by scanning it.
//
// # Allocation
//
//	r := region.NewMemory(1 << 20)
//	a, err := alloc.New(r, alloc.WithMode(alloc.BestFit))
//	if err != nil {
//	    return err
//	}
//
//	h, buf, err := a.Alloc(100) // 104-byte payload
//	if err != nil {
//	    return err
//	}
//	copy(buf, data)
//
//	err = a.Free(h)
//
// Alloc consults the active search mode:
//
//	FirstFit: first free block from the head that fits
//	NextFit:  like FirstFit but resumes after the previous hit, wrapping once
//	BestFit:  smallest free block that fits, exact matches win immediately
//
// A reused block is split when the surplus can hold a header plus at least
// one word; otherwise the whole block is handed out. When nothing fits the
// region grows by exactly header + payload and the new block is appended.
//
// # Freeing
//
// Free marks the block free and merges it with a free successor and a free
// predecessor, so the chain never holds two neighbouring free blocks.
//
// # Handles
//
// A Handle names an arena slot plus the slot generation, allocator instance
// and Init epoch. Freeing twice yields ErrDoubleFree; a handle from another
// allocator, from before the last Init, or whose slot has been handed out
// again yields ErrInvalidHandle.
//
// # Errors
//
//	ErrOutOfMemory      region growth denied
//	ErrInvalidArgument  zero size, overflow, unknown search mode
//	ErrDoubleFree       block already free
//	ErrInvalidHandle    handle not valid for this allocator
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must serialize every call
// on one instance behind a single lock.
//
// # Logging
//
// Growth, splits and merges are logged at debug level through log/slog.
// Set HEAP_LOG_ALLOC=1 to send them to stderr, or pass WithLogger.
package alloc
