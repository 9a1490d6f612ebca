package alloc

import "errors"

var (
	// ErrOutOfMemory indicates the region refused to grow and no free block fit.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrInvalidArgument indicates a zero-size request, an unknown search mode,
	// or size arithmetic that would overflow.
	ErrInvalidArgument = errors.New("alloc: invalid argument")

	// ErrDoubleFree indicates Free was called on a block that is already free.
	ErrDoubleFree = errors.New("alloc: double free")

	// ErrInvalidHandle indicates a handle this allocator did not issue, one
	// issued before the last Init, or one whose block has since been reused.
	ErrInvalidHandle = errors.New("alloc: invalid handle")

	// ErrCorrupt indicates Verify found the chain and region out of sync.
	ErrCorrupt = errors.New("alloc: chain corrupt")
)
