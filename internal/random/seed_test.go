package random

import "testing"

func TestFixedCountsUp(t *testing.T) {
	src := Fixed(41)
	for _, want := range []int64{41, 42, 43} {
		got, err := src()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestNewSeedVaries(t *testing.T) {
	a, err := NewSeed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	b, err := NewSeed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct seeds, got %d twice", a)
	}
}
