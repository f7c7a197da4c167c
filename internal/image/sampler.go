// Package image provides utilities for loading images and sampling their pixels.
package image

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"math"

	_ "github.com/gen2brain/avif" // Register AVIF format
	_ "golang.org/x/image/bmp"    // Register BMP format
	_ "golang.org/x/image/tiff"   // Register TIFF format
	_ "golang.org/x/image/webp"   // Register WebP format

	xdraw "golang.org/x/image/draw"
)

// DecodeError reports an image blob that could not be decoded.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("failed to decode image (format: %s): %v", e.Format, e.Err)
	}
	return fmt.Sprintf("failed to decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Sample is a read-only view over decoded pixel data: sequential
// non-premultiplied (R, G, B, A) quadruplets, row-major, Width*Height in extent.
type Sample struct {
	Pix    []uint8
	Width  int
	Height int
}

// Len returns the number of pixels in the sample.
func (s *Sample) Len() int {
	return s.Width * s.Height
}

// Valid reports whether the buffer length matches the sample extent.
func (s *Sample) Valid() bool {
	return s != nil && s.Width >= 0 && s.Height >= 0 && len(s.Pix) == s.Width*s.Height*4
}

// Sampler decodes image blobs and turns them into pixel samples.
type Sampler struct {
	// MaxDimension bounds the longest side of the sample. Zero samples at native resolution.
	MaxDimension int
}

// NewSampler creates a Sampler that samples at native resolution.
func NewSampler() *Sampler {
	return &Sampler{}
}

// Decode decodes an image from r.
// Supported formats: JPEG, PNG, GIF, WebP, BMP, TIFF, AVIF.
func (s *Sampler) Decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	return img, nil
}

// SampleBytes decodes blob and samples it.
func (s *Sampler) SampleBytes(blob []byte) (*Sample, error) {
	return s.SampleReader(bytes.NewReader(blob))
}

// SampleReader decodes an image from r and samples it.
func (s *Sampler) SampleReader(r io.Reader) (*Sample, error) {
	img, err := s.Decode(r)
	if err != nil {
		return nil, err
	}
	return s.Sample(img)
}

// Sample renders img onto a temporary NRGBA surface and returns its pixels.
// When MaxDimension is set and the image exceeds it, the surface is scaled
// down to fit, preserving aspect ratio. The surface does not outlive the call.
func (s *Sampler) Sample(img image.Image) (*Sample, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if s.MaxDimension > 0 {
		width, height = fitWithin(width, height, s.MaxDimension)
	}

	surface := image.NewNRGBA(image.Rect(0, 0, width, height))
	if width == bounds.Dx() && height == bounds.Dy() {
		draw.Draw(surface, surface.Bounds(), img, bounds.Min, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(surface, surface.Bounds(), img, bounds, xdraw.Src, nil)
	}

	return &Sample{
		Pix:    surface.Pix,
		Width:  width,
		Height: height,
	}, nil
}

// ResizeToFit scales img down so neither side exceeds maxDimension.
// It returns the original image and false when no resize was needed.
func ResizeToFit(img image.Image, maxDimension int) (image.Image, bool) {
	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxDimension)
	if width == bounds.Dx() && height == bounds.Dy() {
		return img, false
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst, true
}

// fitWithin returns dimensions no larger than maxDimension on either side,
// scaling the longer side to maxDimension and rounding the other.
func fitWithin(width, height, maxDimension int) (int, int) {
	if maxDimension <= 0 || (width <= maxDimension && height <= maxDimension) {
		return width, height
	}

	if width > height {
		height = int(math.Round(float64(height) * float64(maxDimension) / float64(width)))
		width = maxDimension
	} else {
		width = int(math.Round(float64(width) * float64(maxDimension) / float64(height)))
		height = maxDimension
	}

	return max(width, 1), max(height, 1)
}
