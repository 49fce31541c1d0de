package compositor

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/captions"
	"clipforge/internal/framing"
	"clipforge/internal/services/aikit"
)

// placeholderColor stands in for the template's art inside the target region;
// it must never survive compositing.
var placeholderColor = color.RGBA{R: 0x00, G: 0xff, B: 0x00, A: 0xff}

func writeTemplateImage(t *testing.T, w, h int, region image.Rectangle) string {
	t.Helper()
	art := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if image.Pt(x, y).In(region) {
				art.SetRGBA(x, y, placeholderColor)
			} else {
				art.SetRGBA(x, y, color.RGBA{R: 0x20, G: 0x20, B: 0x80, A: 0xff})
			}
		}
	}
	path := filepath.Join(t.TempDir(), "template.png")
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := png.Encode(file, art); err != nil {
		t.Fatal(err)
	}
	return path
}

func solidFrame(w, h int, col color.RGBA) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			frame.SetRGBA(x, y, col)
		}
	}
	return frame
}

func TestLoadTemplateRejectsRegionOutsideArt(t *testing.T) {
	path := writeTemplateImage(t, 100, 100, image.Rect(10, 10, 50, 50))
	if _, err := LoadTemplate(path, 50, 50, 100, 100); err == nil {
		t.Fatal("expected error for region exceeding template bounds")
	}
}

func TestLoadTemplateFixesCanvasDimensions(t *testing.T) {
	path := writeTemplateImage(t, 120, 200, image.Rect(10, 10, 110, 190))
	tpl, err := LoadTemplate(path, 10, 10, 100, 180)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	if tpl.Width() != 120 || tpl.Height() != 200 {
		t.Fatalf("canvas = %dx%d, want 120x200", tpl.Width(), tpl.Height())
	}
}

func TestComposeFrameCoversPlaceholder(t *testing.T) {
	region := image.Rect(20, 20, 100, 180)
	path := writeTemplateImage(t, 120, 200, region)
	tpl, err := LoadTemplate(path, 20, 20, 80, 160)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}

	videoColor := color.RGBA{R: 0xc0, G: 0x40, B: 0x40, A: 0xff}
	frame := solidFrame(320, 180, videoColor)
	placement := framing.ComputePlacement(320, 180, framing.DefaultBounds(), framing.DefaultAnchor(), 80, 160, "cover")

	c := New(Options{Template: tpl, Placement: placement})
	out := c.ComposeFrame(frame, 0)

	// The template's placeholder color inside the region must be fully
	// replaced by video pixels.
	for _, pt := range []image.Point{{21, 21}, {60, 100}, {99, 179}} {
		got := out.RGBAAt(pt.X, pt.Y)
		if got == placeholderColor {
			t.Fatalf("placeholder visible at %v", pt)
		}
		if got != videoColor {
			t.Fatalf("pixel at %v = %v, want video color %v", pt, got, videoColor)
		}
	}
	// Outside the region the template chrome is untouched.
	if got := out.RGBAAt(5, 5); got != (color.RGBA{R: 0x20, G: 0x20, B: 0x80, A: 0xff}) {
		t.Fatalf("template chrome overwritten at (5,5): %v", got)
	}
}

func TestComposeFrameDrawsCaptions(t *testing.T) {
	region := image.Rect(0, 0, 400, 600)
	path := writeTemplateImage(t, 400, 600, region)
	tpl, err := LoadTemplate(path, 0, 0, 400, 600)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}

	track := captions.NewTrack(aikit.Transcription{Words: []aikit.Word{
		{Text: "hello", Start: 0.0, End: 2.0},
	}}, captions.StyleBottom)

	dark := color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
	frame := solidFrame(400, 600, dark)
	placement := framing.ComputePlacement(400, 600, framing.DefaultBounds(), framing.DefaultAnchor(), 400, 600, "cover")

	c := New(Options{Template: tpl, Placement: placement, Track: track})
	out := c.ComposeFrame(frame, 1.0)

	// The highlighted word leaves non-background pixels near the bottom
	// caption line (y = regionH - 70).
	found := false
	for y := 520; y < 540 && !found; y++ {
		for x := 0; x < 400; x++ {
			if out.RGBAAt(x, y) != dark {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatal("no caption pixels drawn near the bottom caption line")
	}
}

func TestComposeFrameDrawsWatermark(t *testing.T) {
	region := image.Rect(0, 0, 100, 100)
	path := writeTemplateImage(t, 400, 600, region)
	tpl, err := LoadTemplate(path, 0, 0, 100, 100)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}

	frame := solidFrame(100, 100, color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff})
	placement := framing.ComputePlacement(100, 100, framing.DefaultBounds(), framing.DefaultAnchor(), 100, 100, "cover")

	chrome := color.RGBA{R: 0x20, G: 0x20, B: 0x80, A: 0xff}
	c := New(Options{Template: tpl, Placement: placement, Watermark: "clipforge"})
	out := c.ComposeFrame(frame, 0)

	// Watermark pixels appear right-aligned near the bottom of the full
	// canvas, outside the small target region.
	found := false
	for y := 560; y < 600 && !found; y++ {
		for x := 200; x < 400; x++ {
			if out.RGBAAt(x, y) != chrome {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatal("no watermark pixels drawn near the bottom-right margin")
	}
}

func TestComposeFrameReusesCanvas(t *testing.T) {
	region := image.Rect(0, 0, 80, 80)
	path := writeTemplateImage(t, 100, 100, region)
	tpl, err := LoadTemplate(path, 0, 0, 80, 80)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	frame := solidFrame(160, 90, color.RGBA{R: 0x55, A: 0xff})
	placement := framing.ComputePlacement(160, 90, framing.DefaultBounds(), framing.DefaultAnchor(), 80, 80, "cover")

	c := New(Options{Template: tpl, Placement: placement})
	first := c.ComposeFrame(frame, 0)
	second := c.ComposeFrame(frame, 0.1)
	if first != second {
		t.Fatal("canvas should be reused across frames")
	}
}
