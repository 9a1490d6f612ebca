package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// holes allocates the given sizes with an 8-byte used guard after each, then
// frees the non-guard blocks. Guards keep the holes from coalescing.
func holes(t testing.TB, a *Allocator, sizes ...uint64) []int {
	t.Helper()
	hs := make([]Handle, len(sizes))
	offs := make([]int, len(sizes))
	for i, sz := range sizes {
		hs[i] = mustAlloc(t, a, sz)
		offs[i] = offsetOf(t, a, hs[i])
		mustAlloc(t, a, 8)
	}
	for _, h := range hs {
		mustFree(t, a, h)
	}
	return offs
}

func TestFirstFit_PicksFirstFitting(t *testing.T) {
	a := newTestAllocator(t, FirstFit)
	offs := holes(t, a, 64, 16)

	h := mustAlloc(t, a, 16)
	assert.Equal(t, offs[0], offsetOf(t, a, h), "first fit takes the 64-byte hole at the front")
	assert.Equal(t, "[[16, 1], [24, 0], [8, 1], [16, 0], [8, 1]]", a.String())
	assertInvariants(t, a)
}

func TestFirstFit_SkipsTooSmall(t *testing.T) {
	a := newTestAllocator(t, FirstFit)
	offs := holes(t, a, 8, 16, 32)

	h := mustAlloc(t, a, 24)
	assert.Equal(t, offs[2], offsetOf(t, a, h))
	assertInvariants(t, a)
}

func TestNextFit_ResumesFromCursor(t *testing.T) {
	a := newTestAllocator(t, NextFit)

	// [[8, 1], [8, 1], [8, 1], [16, 1], [16, 1]]
	mustAlloc(t, a, 8)
	mustAlloc(t, a, 8)
	mustAlloc(t, a, 8)
	o1 := mustAlloc(t, a, 16)
	o2 := mustAlloc(t, a, 16)
	o1Off, o2Off := offsetOf(t, a, o1), offsetOf(t, a, o2)

	// o2 merges into o1: [[8, 1], [8, 1], [8, 1], [56, 0]]
	mustFree(t, a, o1)
	mustFree(t, a, o2)
	assert.Equal(t, "[[8, 1], [8, 1], [8, 1], [56, 0]]", a.String())

	o3 := mustAlloc(t, a, 16)
	assert.Equal(t, o1Off, offsetOf(t, a, o3))
	cur, ok := a.Cursor()
	require.True(t, ok)
	assert.Equal(t, o1Off, cur.Offset, "cursor must rest on the last hit")

	// The split remainder sits exactly where o2's header was.
	o4 := mustAlloc(t, a, 16)
	assert.Equal(t, o2Off, offsetOf(t, a, o4))
	cur, ok = a.Cursor()
	require.True(t, ok)
	assert.Equal(t, o2Off, cur.Offset)

	assert.Equal(t, 5, a.Stats().GrowCalls, "both reuses must avoid growth")
	assertInvariants(t, a)
}

func TestNextFit_DoesNotRestartAtHead(t *testing.T) {
	a := newTestAllocator(t, NextFit)
	offs := holes(t, a, 16, 16, 16)

	x := mustAlloc(t, a, 16)
	y := mustAlloc(t, a, 16)
	assert.Equal(t, offs[0], offsetOf(t, a, x))
	assert.Equal(t, offs[1], offsetOf(t, a, y))

	// The head hole opens up again, but the scan continues past the cursor.
	mustFree(t, a, x)
	z := mustAlloc(t, a, 16)
	assert.Equal(t, offs[2], offsetOf(t, a, z), "next fit must not restart at the head")

	// Nothing left after the cursor: the scan wraps to the head.
	w := mustAlloc(t, a, 16)
	assert.Equal(t, offs[0], offsetOf(t, a, w))
	assertInvariants(t, a)
}

func TestNextFit_StaleCursorFallsBackToHead(t *testing.T) {
	a := newTestAllocator(t, NextFit)
	p := mustAlloc(t, a, 16)
	q := mustAlloc(t, a, 16)
	mustAlloc(t, a, 8)

	mustFree(t, a, q)
	x := mustAlloc(t, a, 16) // cursor -> q's block
	assert.Equal(t, 40, offsetOf(t, a, x))
	mustFree(t, a, x)
	mustFree(t, a, p) // absorbs the cursor block

	_, ok := a.Cursor()
	assert.False(t, ok, "cursor on an absorbed block must be dropped")

	h := mustAlloc(t, a, 16)
	assert.Equal(t, 0, offsetOf(t, a, h))
	assertInvariants(t, a)
}

func TestNextFit_FullCircleWithoutMatchGrows(t *testing.T) {
	a := newTestAllocator(t, NextFit)
	holes(t, a, 8, 16)

	before := a.Region().Len()
	mustAlloc(t, a, 32)
	assert.Equal(t, before+32+headerSize, a.Region().Len())
	_, ok := a.Cursor()
	assert.False(t, ok, "a miss must not move the cursor")
}

func TestBestFit_PicksExactMatch(t *testing.T) {
	a := newTestAllocator(t, BestFit)

	// [[8, 1], [64, 1], [8, 1], [16, 1]]
	mustAlloc(t, a, 8)
	z1 := mustAlloc(t, a, 64)
	mustAlloc(t, a, 8)
	z2 := mustAlloc(t, a, 16)
	z1Off, z2Off := offsetOf(t, a, z1), offsetOf(t, a, z2)

	mustFree(t, a, z2)
	mustFree(t, a, z1)

	z3 := mustAlloc(t, a, 16)
	assert.Equal(t, z2Off, offsetOf(t, a, z3), "exact 16 beats the 64 hole")

	z4 := mustAlloc(t, a, 16)
	assert.Equal(t, z1Off, offsetOf(t, a, z4))
	assert.Equal(t, "[[8, 1], [16, 1], [24, 0], [8, 1], [16, 1]]", a.String())
	assertInvariants(t, a)
}

func TestBestFit_SmallestSufficient(t *testing.T) {
	a := newTestAllocator(t, BestFit)
	offs := holes(t, a, 64, 32, 48)

	h := mustAlloc(t, a, 24)
	assert.Equal(t, offs[1], offsetOf(t, a, h))
	info, err := a.Info(h)
	require.NoError(t, err)
	assert.Equal(t, uint64(32), info.Size, "an 8-byte surplus is too small to split")
}

func TestBestFit_TieBreaksByAddress(t *testing.T) {
	a := newTestAllocator(t, BestFit)
	offs := holes(t, a, 64, 32, 32)

	h := mustAlloc(t, a, 24)
	assert.Equal(t, offs[1], offsetOf(t, a, h))
}

func TestBestFit_LargerHoleWhenNoExactMatch(t *testing.T) {
	a := newTestAllocator(t, BestFit)
	offs := holes(t, a, 64, 16)

	h := mustAlloc(t, a, 20)
	assert.Equal(t, offs[0], offsetOf(t, a, h), "24 bytes only fit the 64 hole")
	assert.Equal(t, 1, a.Stats().Splits)
}

func TestBestFit_FallsThroughToGrowth(t *testing.T) {
	a := newTestAllocator(t, BestFit)
	holes(t, a, 16, 8)
	grows := a.Stats().GrowCalls
	before := a.Region().Len()

	h := mustAlloc(t, a, 20)
	assert.Equal(t, before, offsetOf(t, a, h), "new block goes at the old region end")
	assert.Equal(t, grows+1, a.Stats().GrowCalls)
	assertInvariants(t, a)
}

func TestStrategies_EmptyChain(t *testing.T) {
	c := chain{head: nilIdx}
	assert.Equal(t, nilIdx, firstFit(c, 8))
	assert.Equal(t, nilIdx, nextFit(c, nilIdx, 8))
	assert.Equal(t, nilIdx, bestFit(c, 8))
}

func TestStrategies_Table(t *testing.T) {
	// free 32, used 8, free 16, used 8, free 24
	c := chain{
		head: 0,
		blocks: []block{
			{size: 32, next: 1, prev: nilIdx, live: true},
			{size: 8, used: true, next: 2, prev: 0, live: true},
			{size: 16, next: 3, prev: 1, live: true},
			{size: 8, used: true, next: 4, prev: 2, live: true},
			{size: 24, next: nilIdx, prev: 3, live: true},
		},
	}

	cases := []struct {
		name string
		find func(uint64) int32
		need uint64
		want int32
	}{
		{"first/16", func(n uint64) int32 { return firstFit(c, n) }, 16, 0},
		{"first/40", func(n uint64) int32 { return firstFit(c, n) }, 40, nilIdx},
		{"best/16", func(n uint64) int32 { return bestFit(c, n) }, 16, 2},
		{"best/20", func(n uint64) int32 { return bestFit(c, n) }, 20, 4},
		{"best/8", func(n uint64) int32 { return bestFit(c, n) }, 8, 2},
		{"next/from2", func(n uint64) int32 { return nextFit(c, 2, n) }, 16, 2},
		{"next/from3", func(n uint64) int32 { return nextFit(c, 3, n) }, 16, 4},
		{"next/wrap", func(n uint64) int32 { return nextFit(c, 3, n) }, 32, 0},
		{"next/stale", func(n uint64) int32 { return nextFit(c, 99, n) }, 8, 0},
		{"next/none", func(n uint64) int32 { return nextFit(c, 1, n) }, 64, nilIdx},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.find(tc.need))
		})
	}
}

func TestSearchMode_Parse(t *testing.T) {
	cases := map[string]SearchMode{
		"first-fit": FirstFit,
		"FirstFit":  FirstFit,
		"first":     FirstFit,
		"next_fit":  NextFit,
		"nextfit":   NextFit,
		" best-fit": BestFit,
		"BEST":      BestFit,
	}
	for in, want := range cases {
		got, err := ParseSearchMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSearchMode("worst-fit")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSearchMode_Text(t *testing.T) {
	for _, m := range []SearchMode{FirstFit, NextFit, BestFit} {
		b, err := m.MarshalText()
		require.NoError(t, err)

		var back SearchMode
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, m, back)
	}
	assert.Equal(t, "SearchMode(5)", SearchMode(5).String())
	_, err := SearchMode(5).MarshalText()
	require.ErrorIs(t, err, ErrInvalidArgument)
}
