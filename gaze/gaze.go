// Package gaze provides foveation descriptor sources. A source turns
// the current point of regard, a gaze or pointer position, into a
// per-frame region-of-interest hint. Eye tracking hardware stays
// behind the Func adapter, the package itself never blocks.
package gaze

import "pipelined.dev/fovea/media"

// Policy constants for the non-eye-tracking fallback mode.
const (
	DefaultSpread = 1.0
	DefaultOffset = 10.0
)

// Limits bound descriptor values to what an encoder profile accepts.
type Limits struct {
	SpreadMin float64
	SpreadMax float64
	OffsetMin float64
	OffsetMax float64
}

// X264Limits returns the value ranges accepted by the libx264 profile:
// the offset is a QP delta.
func X264Limits() Limits {
	return Limits{
		SpreadMin: 0,
		SpreadMax: 2,
		OffsetMin: 0,
		OffsetMax: 51,
	}
}

// Clamp bounds d to the limits. X and Y are always clamped to [0,1].
func (l Limits) Clamp(d media.FoveationDescriptor) media.FoveationDescriptor {
	d.X = clamp(d.X, 0, 1)
	d.Y = clamp(d.Y, 0, 1)
	d.Spread = clamp(d.Spread, l.SpreadMin, l.SpreadMax)
	d.Offset = clamp(d.Offset, l.OffsetMin, l.OffsetMax)
	return d
}

// Static is a fixed descriptor source. X and Y are already normalized.
type Static struct {
	X      float64
	Y      float64
	Spread float64
	Offset float64
}

// Sample returns the fixed descriptor regardless of frame size.
func (s Static) Sample(width, height int) media.FoveationDescriptor {
	return media.FoveationDescriptor{
		X:      clamp(s.X, 0, 1),
		Y:      clamp(s.Y, 0, 1),
		Spread: s.Spread,
		Offset: s.Offset,
	}
}

// Pointer samples a live pointer-of-regard position in pixels of the
// reference frame and normalizes it. Position is typically backed by
// the windowing system's mouse state or an eye tracker gaze average.
type Pointer struct {
	Position func() (x, y int)
	Spread   float64
	Offset   float64
}

// Sample normalizes the current position to [0,1] relative to the
// frame size. Spread and Offset fall back to the policy constants when
// unset.
func (p Pointer) Sample(width, height int) media.FoveationDescriptor {
	x, y := p.Position()
	d := media.FoveationDescriptor{
		Spread: p.Spread,
		Offset: p.Offset,
	}
	if d.Spread == 0 {
		d.Spread = DefaultSpread
	}
	if d.Offset == 0 {
		d.Offset = DefaultOffset
	}
	if width > 0 {
		d.X = clamp(float64(x)/float64(width), 0, 1)
	}
	if height > 0 {
		d.Y = clamp(float64(y)/float64(height), 0, 1)
	}
	return d
}

// Func adapts a plain function to a descriptor source.
type Func func(width, height int) media.FoveationDescriptor

// Sample calls the function.
func (fn Func) Sample(width, height int) media.FoveationDescriptor {
	return fn(width, height)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
