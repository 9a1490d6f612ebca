package format

// Header is the decoded form of a block header.
type Header struct {
	Size uint64
	Used bool
	Next uint64 // region offset of the next block, NoBlock for the tail
}

// PutHeader encodes h at off. The buffer must hold HeaderSize bytes from off.
func PutHeader(b []byte, off int, h Header) error {
	if off < 0 || off+HeaderSize > len(b) {
		return ErrTruncated
	}
	var flags uint64
	if h.Used {
		flags |= FlagUsed
	}
	PutU64(b, off+HeaderSizeOffset, h.Size)
	PutU64(b, off+HeaderFlagsOffset, flags)
	PutU64(b, off+HeaderNextOffset, h.Next)
	return nil
}

// ReadHeader decodes the header at off.
func ReadHeader(b []byte, off int) (Header, error) {
	if off < 0 || off+HeaderSize > len(b) {
		return Header{}, ErrTruncated
	}
	return Header{
		Size: ReadU64(b, off+HeaderSizeOffset),
		Used: ReadU64(b, off+HeaderFlagsOffset)&FlagUsed != 0,
		Next: ReadU64(b, off+HeaderNextOffset),
	}, nil
}
