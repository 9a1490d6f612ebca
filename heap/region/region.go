package region

import (
	"errors"
	"fmt"
	"math"
)

// ErrGrowDenied indicates the underlying primitive refused to extend the region.
var ErrGrowDenied = errors.New("region: grow denied")

// Region is a monotonically growable memory area.
type Region interface {
	// Grow extends the region by exactly n bytes and returns the offset of
	// the first new byte.
	Grow(n uint64) (int, error)

	// Reset rolls the region back to its initial (empty) extent.
	// Every offset and slice obtained before the call becomes invalid.
	Reset()

	// Bytes returns the current extent.
	Bytes() []byte

	// Len returns the current extent in bytes.
	Len() int
}

// Memory is a Region over a Go byte slice with a fixed reservation.
type Memory struct {
	buf []byte
}

// NewMemory reserves reserve bytes. The region starts empty.
func NewMemory(reserve int) *Memory {
	if reserve < 0 {
		reserve = 0
	}
	return &Memory{buf: make([]byte, 0, reserve)}
}

// Grow moves the break forward by n bytes.
func (m *Memory) Grow(n uint64) (int, error) {
	off := len(m.buf)
	if n > uint64(cap(m.buf)-off) {
		return 0, fmt.Errorf("%w: need %d bytes, %d of %d reserved bytes left",
			ErrGrowDenied, n, cap(m.buf)-off, cap(m.buf))
	}
	m.buf = m.buf[:off+int(n)]
	return off, nil
}

// Reset zeroes the used span and moves the break back to zero.
func (m *Memory) Reset() {
	clear(m.buf)
	m.buf = m.buf[:0]
}

func (m *Memory) Bytes() []byte { return m.buf }

func (m *Memory) Len() int { return len(m.buf) }

// Reserved returns the reservation size.
func (m *Memory) Reserved() int { return cap(m.buf) }

// Limited wraps a Region and denies growth past MaxBytes (0 means no limit)
// or whenever OnGrow returns an error.
type Limited struct {
	Region

	// MaxBytes caps the total extent of the wrapped region.
	MaxBytes uint64

	// OnGrow is consulted before every growth with the requested size.
	// A non-nil error denies the request.
	OnGrow func(n uint64) error

	grows  int
	denied int
}

// NewLimited wraps r with a byte budget.
func NewLimited(r Region, maxBytes uint64) *Limited {
	return &Limited{Region: r, MaxBytes: maxBytes}
}

// FailAfter returns a hook that allows n growths and denies every one after.
func FailAfter(n int) func(uint64) error {
	calls := 0
	return func(uint64) error {
		calls++
		if calls > n {
			return ErrGrowDenied
		}
		return nil
	}
}

// Grow applies the budget and hook, then delegates.
func (l *Limited) Grow(n uint64) (int, error) {
	if l.OnGrow != nil {
		if err := l.OnGrow(n); err != nil {
			l.denied++
			if !errors.Is(err, ErrGrowDenied) {
				err = fmt.Errorf("%w: %w", ErrGrowDenied, err)
			}
			return 0, err
		}
	}
	if l.MaxBytes > 0 {
		used := uint64(l.Region.Len())
		if n > math.MaxUint64-used || used+n > l.MaxBytes {
			l.denied++
			return 0, fmt.Errorf("%w: limit %d bytes, in use %d, need %d",
				ErrGrowDenied, l.MaxBytes, used, n)
		}
	}
	off, err := l.Region.Grow(n)
	if err != nil {
		l.denied++
		return 0, err
	}
	l.grows++
	return off, nil
}

// Grows returns the number of successful growths.
func (l *Limited) Grows() int { return l.grows }

// Denied returns the number of refused growths.
func (l *Limited) Denied() int { return l.denied }

var (
	_ Region = (*Memory)(nil)
	_ Region = (*Limited)(nil)
)
