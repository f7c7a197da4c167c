// Package segment defines the background removal step that may run before
// quantization. Implementations return a copy of the image with background
// pixels made fully transparent.
package segment

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"

	swimage "github.com/jmylchreest/swatch/internal/image"
)

// MaxInputDimension is the largest side handed to a segmenter. Larger
// images are scaled down first.
const MaxInputDimension = 1024

// Segmenter removes the background from an image.
type Segmenter interface {
	// Segment returns img with background pixels at alpha 0.
	Segment(ctx context.Context, img image.Image) (image.Image, error)
}

// SegmenterFunc adapts a function to the Segmenter interface.
type SegmenterFunc func(ctx context.Context, img image.Image) (image.Image, error)

// Segment implements Segmenter.
func (f SegmenterFunc) Segment(ctx context.Context, img image.Image) (image.Image, error) {
	return f(ctx, img)
}

// SegmentationError reports a failed background removal.
type SegmentationError struct {
	Segmenter string
	Err       error
}

func (e *SegmentationError) Error() string {
	if e.Segmenter != "" {
		return fmt.Sprintf("background removal failed (%s): %v", e.Segmenter, e.Err)
	}
	return fmt.Sprintf("background removal failed: %v", e.Err)
}

func (e *SegmentationError) Unwrap() error { return e.Err }

// RemoveBackground scales img to fit MaxInputDimension and runs seg on it.
// Every failure, including cancellation, is returned as a *SegmentationError.
func RemoveBackground(ctx context.Context, seg Segmenter, name string, img image.Image) (image.Image, error) {
	if seg == nil {
		return nil, &SegmentationError{Segmenter: name, Err: errors.New("no segmenter configured")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &SegmentationError{Segmenter: name, Err: err}
	}

	input, _ := swimage.ResizeToFit(img, MaxInputDimension)

	out, err := seg.Segment(ctx, input)
	if err != nil {
		var segErr *SegmentationError
		if errors.As(err, &segErr) {
			return nil, err
		}
		return nil, &SegmentationError{Segmenter: name, Err: err}
	}
	if out == nil {
		return nil, &SegmentationError{Segmenter: name, Err: errors.New("segmenter returned no image")}
	}

	return out, nil
}

// ApplyMask returns a copy of img whose alpha is scaled by mask.
// A zero mask value makes the pixel fully transparent.
func ApplyMask(img image.Image, mask *image.Alpha) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if mask == nil || mask.Bounds().Dx() != bounds.Dx() || mask.Bounds().Dy() != bounds.Dy() {
		return nil, fmt.Errorf("mask size does not match image size %dx%d", bounds.Dx(), bounds.Dy())
	}

	out := toNRGBA(img)
	mb := mask.Bounds()
	for y := range bounds.Dy() {
		for x := range bounds.Dx() {
			m := mask.AlphaAt(mb.Min.X+x, mb.Min.Y+y).A
			i := out.PixOffset(x, y) + 3
			out.Pix[i] = uint8(uint16(out.Pix[i]) * uint16(m) / 255)
		}
	}

	return out, nil
}

// toNRGBA copies img onto a zero-origin NRGBA image.
func toNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}
