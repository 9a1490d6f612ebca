package format

import (
	"errors"
	"math"
	"testing"
)

func TestAlignUp(t *testing.T) {
	cases := map[uint64]uint64{
		0:  0,
		1:  8,
		7:  8,
		8:  8,
		9:  16,
		15: 16,
		16: 16,
		17: 24,
	}
	for in, want := range cases {
		got, err := AlignUp(in)
		if err != nil {
			t.Fatalf("AlignUp(%d): %v", in, err)
		}
		if got != want {
			t.Fatalf("AlignUp(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestAlignUpOverflow(t *testing.T) {
	if _, err := AlignUp(math.MaxUint64); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := AlignUp(math.MaxUint64 - 6); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	// Largest aligned value still passes through unchanged.
	top := uint64(math.MaxUint64) &^ WordMask
	got, err := AlignUp(top)
	if err != nil || got != top {
		t.Fatalf("AlignUp(%d) = %d, %v", top, got, err)
	}
}

func TestFootprint(t *testing.T) {
	got, err := Footprint(16)
	if err != nil {
		t.Fatalf("Footprint: %v", err)
	}
	if got != 16+HeaderSize {
		t.Fatalf("Footprint(16) = %d", got)
	}
	got, err = Footprint(13)
	if err != nil || got != 16+HeaderSize {
		t.Fatalf("Footprint(13) = %d, %v", got, err)
	}
	top := uint64(math.MaxUint64) &^ WordMask
	if _, err := Footprint(top); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestIsAligned(t *testing.T) {
	if !IsAligned(24) || IsAligned(25) {
		t.Fatalf("IsAligned mismatch")
	}
}
