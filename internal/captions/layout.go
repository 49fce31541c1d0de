package captions

// Vertical inset from the region edge for top and bottom styles, in pixels.
const edgeMargin = 70

// Layout is the anchor point for drawing one caption line. CenterX is the
// horizontal midpoint of the line; Y is the vertical draw position.
type Layout struct {
	CenterX int
	Y       int
}

// LayoutFor positions the caption line relative to the target region bounds,
// not the full canvas.
func LayoutFor(style Style, regionX, regionY, regionW, regionH int) Layout {
	layout := Layout{CenterX: regionX + regionW/2}
	switch normalizeStyle(style) {
	case StyleTop:
		layout.Y = regionY + edgeMargin
	case StyleCenter:
		layout.Y = regionY + regionH/2
	default:
		layout.Y = regionY + regionH - edgeMargin
	}
	return layout
}
