package format

import "errors"

var (
	// ErrOverflow indicates size arithmetic exceeded the representable range.
	ErrOverflow = errors.New("format: size overflow")
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
)
