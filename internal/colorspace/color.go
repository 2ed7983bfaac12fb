// Package colorspace holds the perceptual color values used for TOJ
// targets. Colors live on the canonical hue wheel; the actual conversion
// to display triples and color names is done by an external service and
// consumed through the Display interface.
package colorspace

import "math"

// Color is a hue angle in degrees on the perceptual wheel, normalized
// to [0, 360).
type Color struct {
	Hue float64
}

// New creates a color from a hue angle in degrees.
func New(hue float64) Color {
	return Color{Hue: normalize(hue)}
}

// Rotated returns the color offset by the given angle in degrees.
func (c Color) Rotated(offset float64) Color {
	return New(c.Hue + offset)
}

// AngleTo returns the absolute angular distance to another color,
// in [0, 180].
func (c Color) AngleTo(o Color) float64 {
	d := math.Abs(c.Hue - o.Hue)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Display converts colors for presentation. Implemented by the rendering
// collaborator; the engine never does the conversion math itself.
type Display interface {
	// RGB returns the display triple for a color.
	RGB(c Color) [3]uint8
	// Name returns a human-readable name for a color.
	Name(c Color) string
}
