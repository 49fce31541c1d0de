package framing

// Bounds is a normalized rectangle (coordinates in [0,1]) describing the
// actual visual content area of a source frame.
type Bounds struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Anchor is a normalized point deciding which part of oversized scaled
// content stays visible: (0,0) biases top-left, (1,1) bottom-right.
type Anchor struct {
	X float64
	Y float64
}

// DefaultBounds covers the full frame, used when analysis is unavailable.
func DefaultBounds() Bounds {
	return Bounds{X: 0, Y: 0, Width: 1, Height: 1}
}

// DefaultAnchor favors talking-head framing: horizontally centered, biased
// toward the top of the content.
func DefaultAnchor() Anchor {
	return Anchor{X: 0.5, Y: 0.15}
}

// Valid reports whether the bounds describe a usable region.
func (b Bounds) Valid() bool {
	return b.Width > 0 && b.Height > 0 &&
		b.X >= 0 && b.Y >= 0 &&
		b.X+b.Width <= 1+1e-9 && b.Y+b.Height <= 1+1e-9
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamped returns the anchor with both coordinates clamped to [0,1].
func (a Anchor) Clamped() Anchor {
	return Anchor{X: clamp01(a.X), Y: clamp01(a.Y)}
}
