package framing

import "math"

// Placement maps the content sub-rectangle of a source frame onto the target
// region. Destination coordinates are relative to the region origin; the
// compositor clips drawing to the region.
type Placement struct {
	// Content sub-rectangle of the source frame, in source pixels.
	SrcX int
	SrcY int
	SrcW int
	SrcH int
	// Scaled content rectangle, relative to the region origin.
	DstX float64
	DstY float64
	DstW float64
	DstH float64
}

// ComputePlacement derives the deterministic crop for a bounds/anchor pair.
//
// Scale is chosen so the content region (not the raw frame) covers the target
// region on its shorter axis; the per-axis offset is -overflow*anchor, which
// keeps the anchored part of the content visible. Fit modes:
//   - cover: uniform scale, overflow cropped per anchor
//   - contain: uniform scale, content letterboxed inside the region
//   - fill: non-uniform scale, content stretched to the region exactly
func ComputePlacement(srcW, srcH int, bounds Bounds, anchor Anchor, regionW, regionH int, fit string) Placement {
	if !bounds.Valid() {
		bounds = DefaultBounds()
	}
	anchor = anchor.Clamped()

	contentW := bounds.Width * float64(srcW)
	contentH := bounds.Height * float64(srcH)
	if contentW <= 0 || contentH <= 0 || regionW <= 0 || regionH <= 0 {
		return Placement{SrcW: srcW, SrcH: srcH, DstW: float64(regionW), DstH: float64(regionH)}
	}

	var scaleX, scaleY float64
	switch fit {
	case "contain":
		scale := math.Min(float64(regionW)/contentW, float64(regionH)/contentH)
		scaleX, scaleY = scale, scale
	case "fill":
		scaleX = float64(regionW) / contentW
		scaleY = float64(regionH) / contentH
	default: // cover
		scale := math.Max(float64(regionW)/contentW, float64(regionH)/contentH)
		scaleX, scaleY = scale, scale
	}

	dstW := contentW * scaleX
	dstH := contentH * scaleY
	overflowX := dstW - float64(regionW)
	overflowY := dstH - float64(regionH)

	return Placement{
		SrcX: int(math.Round(bounds.X * float64(srcW))),
		SrcY: int(math.Round(bounds.Y * float64(srcH))),
		SrcW: int(math.Round(contentW)),
		SrcH: int(math.Round(contentH)),
		DstX: -overflowX * anchor.X,
		DstY: -overflowY * anchor.Y,
		DstW: dstW,
		DstH: dstH,
	}
}
