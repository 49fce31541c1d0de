package compositor

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"clipforge/internal/captions"
)

var (
	captionFace = basicfont.Face7x13

	captionColor   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	highlightColor = color.RGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}
	watermarkColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xb4}
	shadowColor    = color.RGBA{A: 0xc8}
)

const watermarkMargin = 24

// drawCaptionWindow renders the context window as one centered line relative
// to the target region, highlighting only the current word.
func drawCaptionWindow(dst *image.RGBA, window captions.Window, style captions.Style, region image.Rectangle) {
	texts := make([]string, len(window.Words))
	for i, w := range window.Words {
		texts[i] = w.Text
	}
	line := strings.Join(texts, " ")

	layout := captions.LayoutFor(style, region.Min.X, region.Min.Y, region.Dx(), region.Dy())
	lineWidth := font.MeasureString(captionFace, line).Ceil()
	x := layout.CenterX - lineWidth/2
	y := layout.Y

	space := font.MeasureString(captionFace, " ").Ceil()
	for i, text := range texts {
		col := captionColor
		if i == window.Current {
			col = highlightColor
		}
		drawShadowedString(dst, text, x, y, col)
		x += font.MeasureString(captionFace, text).Ceil() + space
	}
}

// drawWatermark renders the watermark right-aligned near the bottom margin of
// the full canvas.
func drawWatermark(dst *image.RGBA, text string) {
	bounds := dst.Bounds()
	width := font.MeasureString(captionFace, text).Ceil()
	x := bounds.Max.X - width - watermarkMargin
	y := bounds.Max.Y - watermarkMargin
	drawShadowedString(dst, text, x, y, watermarkColor)
}

func drawShadowedString(dst *image.RGBA, text string, x, y int, col color.RGBA) {
	drawString(dst, text, x+1, y+1, shadowColor)
	drawString(dst, text, x, y, col)
}

func drawString(dst *image.RGBA, text string, x, y int, col color.RGBA) {
	drawer := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: captionFace,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
