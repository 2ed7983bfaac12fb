package quadrant

import (
	"math/rand"
	"testing"
)

func TestPredicates(t *testing.T) {
	tests := []struct {
		q      Quadrant
		isLeft bool
		isTop  bool
	}{
		{TopLeft, true, true},
		{TopRight, false, true},
		{BottomLeft, true, false},
		{BottomRight, false, false},
	}

	for _, tt := range tests {
		if tt.q.IsLeft() != tt.isLeft {
			t.Errorf("%s: IsLeft = %v, want %v", tt.q, tt.q.IsLeft(), tt.isLeft)
		}
		if tt.q.IsTop() != tt.isTop {
			t.Errorf("%s: IsTop = %v, want %v", tt.q, tt.q.IsTop(), tt.isTop)
		}
	}
}

func TestMixedPairsCoverAllQuadrants(t *testing.T) {
	a := NewAllocator(rand.New(rand.NewSource(1)))

	for i := 0; i < 100; i++ {
		pairs := a.MixedPairs()

		seen := make(map[Quadrant]bool)
		for _, p := range pairs {
			if !p.Left.IsLeft() {
				t.Fatalf("pairing left slot holds %s", p.Left)
			}
			if p.Right.IsLeft() {
				t.Fatalf("pairing right slot holds %s", p.Right)
			}
			seen[p.Left] = true
			seen[p.Right] = true
		}
		if len(seen) != 4 {
			t.Fatalf("pairings cover %d quadrants, want 4", len(seen))
		}
	}
}

func TestMixedPairsVary(t *testing.T) {
	a := NewAllocator(rand.New(rand.NewSource(2)))

	first := a.MixedPairs()
	for i := 0; i < 50; i++ {
		if a.MixedPairs() != first {
			return
		}
	}
	t.Errorf("allocator returned the same pairing 50 times in a row")
}
