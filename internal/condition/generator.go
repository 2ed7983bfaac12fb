package condition

import (
	"math/rand"

	"github.com/perceptlab/toj-engine/internal/colorspace"
	"github.com/perceptlab/toj-engine/internal/quadrant"
)

// Rotation steps: 0, 10, ..., 170 degrees.
const (
	rotationSteps  = 18
	rotationStride = 10
)

// maxSampleAttempts bounds the anti-repetition rejection loops so a
// degenerate single-valued domain cannot stall generation.
const maxSampleAttempts = 100

// Params holds the fixed design parameters for condition generation.
type Params struct {
	// Alpha is the secondary-color perturbation angle in degrees.
	Alpha float64
	// SOASet is the canonical SOA choice set in milliseconds.
	SOASet []float64
	// FixationMin and FixationMax bound the per-pair fixation time
	// in milliseconds (inclusive).
	FixationMin int
	FixationMax int
}

// Memory is the generator's anti-repetition state: the previous rotation
// and the previous grid position per slot key. It forbids immediate
// repetition only, not full history.
type Memory struct {
	lastRotation int
	lastGridPos  map[string][2]int
}

func newMemory() Memory {
	return Memory{
		lastRotation: -1,
		lastGridPos:  make(map[string][2]int),
	}
}

// Generator produces one fully-specified trial condition per call.
// It is not safe for concurrent use; trials are strictly sequential.
type Generator struct {
	params Params
	alloc  *quadrant.Allocator
	rng    *rand.Rand
	mem    Memory
}

// NewGenerator creates a generator with the given parameters, drawing
// all randomness from rng.
func NewGenerator(params Params, rng *rand.Rand) *Generator {
	return &Generator{
		params: params,
		alloc:  quadrant.NewAllocator(rng),
		rng:    rng,
		mem:    newMemory(),
	}
}

// Generate materializes the visual condition for one trial. probeLeft
// selects the screen side of the task-relevant probe target.
//
// All operations are total: there is no error path given valid Params.
// Generation mutates the anti-repetition memory as a deliberate
// statistical-balance mechanism.
func (g *Generator) Generate(probeLeft bool) Condition {
	pairings := g.alloc.MixedPairs()

	// The relevant pair's primary hue is one of the two canonical hues;
	// the distractor pair always carries the complementary hue.
	primary0 := colorspace.New(float64(g.rng.Intn(2)) * 180)
	primary1 := primary0.Rotated(180)

	var cond Condition
	cond.Pairs[0] = g.buildPair(0, pairings[0], primary0, probeLeft)
	cond.Pairs[1] = g.buildPair(1, pairings[1], primary1, !probeLeft)

	cond.Rotation = g.sampleRotation()
	cond.DistractorSOA = g.params.SOASet[g.rng.Intn(len(g.params.SOASet))]

	return cond
}

// buildPair places one target pair across its quadrant pairing. The
// primary target takes the left quadrant; probeOnPrimary marks whether
// the probe flag lands on it.
func (g *Generator) buildPair(index int, p quadrant.Pairing, primary colorspace.Color, probeOnPrimary bool) TargetPair {
	secondary := primary.Rotated(g.signedAlpha())

	return TargetPair{
		PairIndex: index,
		Primary: Target{
			Color:    primary,
			Quadrant: p.Left,
			IsProbe:  probeOnPrimary,
			GridPos:  g.sampleGridPos("left"),
		},
		Secondary: Target{
			Color:    secondary,
			Quadrant: p.Right,
			IsProbe:  !probeOnPrimary,
			GridPos:  g.sampleGridPos("right"),
		},
		FixationTime: g.sampleFixation(),
	}
}

// signedAlpha returns +alpha or -alpha with equal probability.
func (g *Generator) signedAlpha() float64 {
	if g.rng.Intn(2) == 0 {
		return g.params.Alpha
	}
	return -g.params.Alpha
}

// sampleGridPos draws a grid position near the visual midline: x in
// [2,5) for left quadrants, [1,4) for right ones, y always 1. The draw
// is rejected while it equals the previous position for the same slot.
func (g *Generator) sampleGridPos(slot string) [2]int {
	xmin := 1
	if slot == "left" {
		xmin = 2
	}

	last, seen := g.mem.lastGridPos[slot]
	var pos [2]int
	for attempt := 0; attempt < maxSampleAttempts; attempt++ {
		pos = [2]int{xmin + g.rng.Intn(3), 1}
		if !seen || pos != last {
			break
		}
	}
	g.mem.lastGridPos[slot] = pos
	return pos
}

// sampleRotation draws a fresh orientation, rejecting the previous
// call's value.
func (g *Generator) sampleRotation() int {
	var rot int
	for attempt := 0; attempt < maxSampleAttempts; attempt++ {
		rot = g.rng.Intn(rotationSteps) * rotationStride
		if rot != g.mem.lastRotation {
			break
		}
	}
	g.mem.lastRotation = rot
	return rot
}

func (g *Generator) sampleFixation() int {
	span := g.params.FixationMax - g.params.FixationMin
	if span <= 0 {
		return g.params.FixationMin
	}
	return g.params.FixationMin + g.rng.Intn(span+1)
}
