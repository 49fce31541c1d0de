package compositor

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"clipforge/internal/captions"
	"clipforge/internal/framing"
)

// Neutral fill for the target region, drawn before the first video frame so
// the template's placeholder background never flashes through.
var neutralFill = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}

// Compositor draws output frames for one job. Not safe for concurrent use;
// jobs composite strictly sequentially.
type Compositor struct {
	template  *Template
	placement framing.Placement
	track     *captions.Track
	watermark string

	canvas *image.RGBA
	scaled *image.RGBA
	scaler xdraw.Scaler
}

// Options fixes the per-job compositing inputs.
type Options struct {
	Template  *Template
	Placement framing.Placement
	// Track enables caption overlay when non-nil and non-empty.
	Track     *captions.Track
	Watermark string
}

// New prepares a compositor with a reusable canvas sized to the template's
// native dimensions.
func New(opts Options) *Compositor {
	return &Compositor{
		template:  opts.Template,
		placement: opts.Placement,
		track:     opts.Track,
		watermark: opts.Watermark,
		canvas:    image.NewRGBA(opts.Template.Art.Bounds()),
		scaler:    xdraw.ApproxBiLinear,
	}
}

// Track returns the caption track overlaid on frames, nil when captions are
// disabled for the job.
func (c *Compositor) Track() *captions.Track { return c.track }

// ComposeFrame renders the composite for one source frame at playback time t.
// The returned image is reused across calls; the caller must consume it
// before the next ComposeFrame.
func (c *Compositor) ComposeFrame(frame *image.RGBA, t float64) *image.RGBA {
	region := c.template.Region

	xdraw.Draw(c.canvas, region, image.NewUniform(neutralFill), image.Point{}, xdraw.Src)
	c.drawVideo(frame)
	xdraw.Draw(c.canvas, c.canvas.Bounds(), c.template.Art, image.Point{}, xdraw.Over)
	c.drawVideo(frame)

	if c.track != nil && c.track.Len() > 0 {
		if window, ok := c.track.WindowAt(t); ok {
			drawCaptionWindow(c.canvas, window, c.track.Style(), region)
		}
	}
	if c.watermark != "" {
		drawWatermark(c.canvas, c.watermark)
	}
	return c.canvas
}

// drawVideo scales the content sub-rectangle of the source frame into the
// target region per the placement, clipped to the region.
func (c *Compositor) drawVideo(frame *image.RGBA) {
	p := c.placement
	region := c.template.Region

	srcRect := image.Rect(p.SrcX, p.SrcY, p.SrcX+p.SrcW, p.SrcY+p.SrcH).Intersect(frame.Bounds())
	if srcRect.Empty() {
		return
	}

	dstW := int(p.DstW + 0.5)
	dstH := int(p.DstH + 0.5)
	if dstW <= 0 || dstH <= 0 {
		return
	}
	if c.scaled == nil || c.scaled.Bounds().Dx() != dstW || c.scaled.Bounds().Dy() != dstH {
		c.scaled = image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	}
	c.scaler.Scale(c.scaled, c.scaled.Bounds(), frame, srcRect, xdraw.Src, nil)

	dstX := region.Min.X + int(p.DstX)
	dstY := region.Min.Y + int(p.DstY)
	target := image.Rect(dstX, dstY, dstX+dstW, dstY+dstH).Intersect(region)
	if target.Empty() {
		return
	}
	offset := image.Pt(target.Min.X-dstX, target.Min.Y-dstY)
	xdraw.Draw(c.canvas, target, c.scaled, offset, xdraw.Src)
}
