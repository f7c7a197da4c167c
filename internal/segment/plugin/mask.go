package plugin

import (
	"fmt"
	"image"

	"github.com/jmylchreest/swatch/internal/segment"
)

// applyOutput combines a plugin result with the image that was sent to it.
// Greyscale and alpha-only results are masks over input, where white keeps
// a pixel and black clears it. Any other result is the segmented image.
func applyOutput(input, out image.Image) (image.Image, error) {
	mask, ok := asMask(out)
	if !ok {
		return out, nil
	}

	masked, err := segment.ApplyMask(input, mask)
	if err != nil {
		return nil, fmt.Errorf("plugin returned an unusable mask: %w", err)
	}
	return masked, nil
}

// asMask converts single-channel images to an alpha mask.
func asMask(img image.Image) (*image.Alpha, bool) {
	switch img.(type) {
	case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16:
	default:
		return nil, false
	}

	b := img.Bounds()
	mask := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		for x := range b.Dx() {
			// Grey reports its level in r; alpha-only colours report a in r.
			r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			mask.Pix[mask.PixOffset(x, y)] = uint8(r >> 8)
		}
	}
	return mask, true
}
