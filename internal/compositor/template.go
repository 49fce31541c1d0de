package compositor

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"clipforge/internal/services"
)

// Template is the decoded template asset plus its target region. Read-only
// after creation and safely shared across the sequential jobs of a batch.
type Template struct {
	Art    *image.RGBA
	Region image.Rectangle
}

// LoadTemplate decodes the template image and fixes the target region in
// template pixel coordinates. The region must sit inside the art.
func LoadTemplate(path string, regionX, regionY, regionW, regionH int) (*Template, error) {
	const stage = "loading"
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stage, "open template", "", err)
	}
	defer file.Close()

	decoded, _, err := image.Decode(file)
	if err != nil {
		return nil, services.Wrap(services.ErrMedia, stage, "decode template", "unsupported template image", err)
	}

	art := image.NewRGBA(image.Rect(0, 0, decoded.Bounds().Dx(), decoded.Bounds().Dy()))
	xdraw.Draw(art, art.Bounds(), decoded, decoded.Bounds().Min, xdraw.Src)

	region := image.Rect(regionX, regionY, regionX+regionW, regionY+regionH)
	if region.Empty() || !region.In(art.Bounds()) {
		return nil, services.Wrap(services.ErrConfiguration, stage, "validate template",
			"target region falls outside the template art", nil)
	}

	return &Template{Art: art, Region: region}, nil
}

// Width reports the output canvas width in pixels.
func (t *Template) Width() int { return t.Art.Bounds().Dx() }

// Height reports the output canvas height in pixels.
func (t *Template) Height() int { return t.Art.Bounds().Dy() }
