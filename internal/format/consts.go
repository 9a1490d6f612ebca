package format

// Block header layout. Every block in a region starts with a fixed header
// followed immediately by its payload:
//
//	+0x00  size   uint64  payload bytes (multiple of WordSize)
//	+0x08  flags  uint64  bit 0 = used
//	+0x10  next   uint64  region offset of the next block, NoBlock if last
//	+0x18  payload...
const (
	// WordSize is the machine word used for payload alignment.
	WordSize = 8

	// WordMask is WordSize-1, used by AlignUp.
	WordMask = WordSize - 1

	// HeaderSize is the fixed per-block overhead preceding the payload.
	HeaderSize = 24

	// MinSplit is the smallest surplus worth carving into a free remainder:
	// a header plus one word of payload.
	MinSplit = HeaderSize + WordSize

	HeaderSizeOffset  = 0x00
	HeaderFlagsOffset = 0x08
	HeaderNextOffset  = 0x10

	// FlagUsed marks an allocated block.
	FlagUsed = 1 << 0

	// NoBlock is written into the next field of the chain tail.
	NoBlock = ^uint64(0)
)
