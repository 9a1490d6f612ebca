//go:build linux || darwin

package region

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Mapped is a Region backed by an anonymous private mapping. The whole
// reservation is mapped up front with MAP_NORESERVE, so pages are only
// committed when the break reaches them.
type Mapped struct {
	data []byte // full reservation
	brk  int
}

// NewMapped reserves reserve bytes of address space.
func NewMapped(reserve int) (*Mapped, error) {
	if reserve <= 0 {
		return nil, fmt.Errorf("region: reservation must be positive, got %d", reserve)
	}
	data, err := unix.Mmap(
		-1,
		0,
		reserve,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE|unix.MAP_NORESERVE,
	)
	if err != nil {
		return nil, fmt.Errorf("region: mmap %d bytes: %w", reserve, err)
	}
	return &Mapped{data: data}, nil
}

// Grow moves the break forward by n bytes.
func (m *Mapped) Grow(n uint64) (int, error) {
	if m.data == nil {
		return 0, fmt.Errorf("%w: region closed", ErrGrowDenied)
	}
	off := m.brk
	if n > uint64(len(m.data)-off) {
		return 0, fmt.Errorf("%w: need %d bytes, %d of %d reserved bytes left",
			ErrGrowDenied, n, len(m.data)-off, len(m.data))
	}
	m.brk += int(n)
	return off, nil
}

// Reset moves the break back to zero and hands the touched pages back to
// the OS. The next touch sees zero-filled pages: linux guarantees that for
// private anonymous mappings after MADV_DONTNEED, elsewhere the span is cleared.
func (m *Mapped) Reset() {
	if m.data == nil || m.brk == 0 {
		m.brk = 0
		return
	}
	err := unix.Madvise(m.data[:pageCeil(m.brk, len(m.data))], unix.MADV_DONTNEED)
	if err != nil || runtime.GOOS != "linux" {
		clear(m.data[:m.brk])
	}
	m.brk = 0
}

func (m *Mapped) Bytes() []byte {
	if m.data == nil {
		return nil
	}
	return m.data[:m.brk:m.brk]
}

func (m *Mapped) Len() int { return m.brk }

// Reserved returns the size of the reservation.
func (m *Mapped) Reserved() int { return len(m.data) }

// Close unmaps the reservation. The region cannot grow afterwards.
func (m *Mapped) Close() error {
	if m.data == nil {
		return errors.New("region: already closed")
	}
	err := unix.Munmap(m.data)
	m.data = nil
	m.brk = 0
	return err
}

// pageCeil rounds n up to the OS page size, capped at limit.
func pageCeil(n, limit int) int {
	ps := unix.Getpagesize()
	n = (n + ps - 1) &^ (ps - 1)
	return min(n, limit)
}

var _ Region = (*Mapped)(nil)
