// Package quadrant models the four screen quadrants and allocates
// mixed-side quadrant pairings for target placement.
package quadrant

import "math/rand"

// Quadrant is one of the four screen quadrants.
type Quadrant int

const (
	TopLeft Quadrant = iota
	TopRight
	BottomLeft
	BottomRight
)

// IsLeft returns true for the left-side quadrants.
func (q Quadrant) IsLeft() bool {
	return q == TopLeft || q == BottomLeft
}

// IsTop returns true for the top quadrants.
func (q Quadrant) IsTop() bool {
	return q == TopLeft || q == TopRight
}

func (q Quadrant) String() string {
	switch q {
	case TopLeft:
		return "top_left"
	case TopRight:
		return "top_right"
	case BottomLeft:
		return "bottom_left"
	case BottomRight:
		return "bottom_right"
	}
	return "unknown"
}

// Pairing is a pair of quadrants for one target pair. Left is always a
// left-side quadrant, Right a right-side one.
type Pairing struct {
	Left  Quadrant
	Right Quadrant
}

// Allocator hands out quadrant pairings with the mixed-side guarantee:
// every pairing spans the left/right screen halves.
type Allocator struct {
	rng *rand.Rand
}

// NewAllocator creates an allocator drawing from the given source.
func NewAllocator(rng *rand.Rand) *Allocator {
	return &Allocator{rng: rng}
}

// MixedPairs returns two pairings that together cover all four quadrants
// exactly once. Each pairing spans left/right, so neither target pair
// ever sits entirely on one side.
func (a *Allocator) MixedPairs() [2]Pairing {
	lefts := [2]Quadrant{TopLeft, BottomLeft}
	rights := [2]Quadrant{TopRight, BottomRight}

	li := a.rng.Intn(2)
	ri := a.rng.Intn(2)

	return [2]Pairing{
		{Left: lefts[li], Right: rights[ri]},
		{Left: lefts[1-li], Right: rights[1-ri]},
	}
}
