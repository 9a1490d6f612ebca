package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/region"
)

// testReserve is large enough for every deterministic test in this package.
const testReserve = 1 << 16

// newTestAllocator creates an allocator over a fresh memory region.
func newTestAllocator(t testing.TB, mode SearchMode, opts ...Option) *Allocator {
	t.Helper()
	a, err := New(region.NewMemory(testReserve), append([]Option{WithMode(mode)}, opts...)...)
	require.NoError(t, err)
	return a
}

func mustAlloc(t testing.TB, a *Allocator, size uint64) Handle {
	t.Helper()
	h, buf, err := a.Alloc(size)
	require.NoError(t, err, "Alloc(%d)", size)
	require.False(t, h.IsZero())
	require.NotNil(t, buf)
	return h
}

func mustFree(t testing.TB, a *Allocator, h Handle) {
	t.Helper()
	require.NoError(t, a.Free(h), "Free(%s)", h)
}

func offsetOf(t testing.TB, a *Allocator, h Handle) int {
	t.Helper()
	info, err := a.Info(h)
	require.NoError(t, err)
	return info.Offset
}

// assertInvariants verifies the chain against the region bytes.
func assertInvariants(t testing.TB, a *Allocator) {
	t.Helper()
	require.NoError(t, a.Verify())
}
