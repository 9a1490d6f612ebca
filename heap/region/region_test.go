package region

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GrowIsMonotonic(t *testing.T) {
	m := NewMemory(128)

	off, err := m.Grow(40)
	require.NoError(t, err)
	assert.Equal(t, 0, off)

	off, err = m.Grow(24)
	require.NoError(t, err)
	assert.Equal(t, 40, off, "second span starts where the first ended")
	assert.Equal(t, 64, m.Len())
	assert.Len(t, m.Bytes(), 64)
}

func TestMemory_SlicesSurviveGrowth(t *testing.T) {
	m := NewMemory(64)
	off, err := m.Grow(8)
	require.NoError(t, err)

	view := m.Bytes()[off : off+8]
	view[0] = 0xAB

	_, err = m.Grow(32)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), m.Bytes()[off], "growth must not move existing bytes")

	view[1] = 0xCD
	assert.Equal(t, byte(0xCD), m.Bytes()[off+1], "old slice still aliases the region")
}

func TestMemory_GrowDenied(t *testing.T) {
	m := NewMemory(32)
	_, err := m.Grow(24)
	require.NoError(t, err)

	_, err = m.Grow(16)
	require.ErrorIs(t, err, ErrGrowDenied)
	assert.Equal(t, 24, m.Len(), "failed growth leaves the extent unchanged")
}

func TestMemory_Reset(t *testing.T) {
	m := NewMemory(32)
	off, err := m.Grow(16)
	require.NoError(t, err)
	m.Bytes()[off] = 1

	m.Reset()
	assert.Equal(t, 0, m.Len())

	off, err = m.Grow(16)
	require.NoError(t, err)
	assert.Equal(t, 0, off)
	assert.Equal(t, byte(0), m.Bytes()[0], "reset zeroes the old span")
	assert.Equal(t, 32, m.Reserved())
}

func TestLimited_Budget(t *testing.T) {
	l := NewLimited(NewMemory(1024), 64)

	_, err := l.Grow(48)
	require.NoError(t, err)
	_, err = l.Grow(24)
	require.ErrorIs(t, err, ErrGrowDenied)
	_, err = l.Grow(16)
	require.NoError(t, err)

	assert.Equal(t, 2, l.Grows())
	assert.Equal(t, 1, l.Denied())
	assert.Equal(t, 64, l.Len())
}

func TestLimited_FailAfter(t *testing.T) {
	l := &Limited{Region: NewMemory(1024), OnGrow: FailAfter(2)}

	for range 2 {
		_, err := l.Grow(8)
		require.NoError(t, err)
	}
	_, err := l.Grow(8)
	require.ErrorIs(t, err, ErrGrowDenied)
	assert.Equal(t, 16, l.Len())
}

func TestLimited_HookErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	l := &Limited{Region: NewMemory(64), OnGrow: func(uint64) error { return boom }}

	_, err := l.Grow(8)
	require.ErrorIs(t, err, ErrGrowDenied)
	require.ErrorIs(t, err, boom)
}
