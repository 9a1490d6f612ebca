//go:build !(linux || darwin)

package region

import (
	"errors"
	"fmt"
	"runtime"
)

// Mapped is unavailable on this platform; use Memory instead.
type Mapped struct{ Memory }

// NewMapped always fails on platforms without anonymous mmap support.
func NewMapped(reserve int) (*Mapped, error) {
	return nil, fmt.Errorf("region: mapped regions unsupported on %s", runtime.GOOS)
}

// Reserved returns the reservation size.
func (m *Mapped) Reserved() int { return m.Memory.Reserved() }

// Close is a no-op.
func (m *Mapped) Close() error { return errors.New("region: already closed") }
