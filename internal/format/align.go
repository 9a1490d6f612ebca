package format

import "math"

// Alignment and footprint math for block sizes. All arithmetic is checked:
// a request that would wrap around is reported with ErrOverflow instead of
// silently producing a tiny size.

// AlignUp returns n rounded up to the next multiple of WordSize.
// Already aligned values are returned unchanged.
//
// Example:
//
//	AlignUp(1)  = 8
//	AlignUp(8)  = 8
//	AlignUp(9)  = 16
//	AlignUp(16) = 16
func AlignUp(n uint64) (uint64, error) {
	if n > math.MaxUint64-WordMask {
		return 0, ErrOverflow
	}
	return (n + WordMask) &^ WordMask, nil
}

// Footprint returns the total bytes a block with the given payload occupies
// in the region, header included.
func Footprint(payload uint64) (uint64, error) {
	aligned, err := AlignUp(payload)
	if err != nil {
		return 0, err
	}
	if aligned > math.MaxUint64-HeaderSize {
		return 0, ErrOverflow
	}
	return aligned + HeaderSize, nil
}

// IsAligned reports whether n is a multiple of WordSize.
func IsAligned(n uint64) bool {
	return n&WordMask == 0
}
