package segment

import (
	"context"
	"errors"
	"image"
)

// EdgeSegmenter removes backgrounds by keying on the colours found in the
// image corners. Pixels connected to the border that sit within Tolerance of
// a corner colour are treated as background.
type EdgeSegmenter struct {
	// SamplePercent is the size of each corner sample as a percentage of
	// the shorter image side (1-50).
	SamplePercent int

	// Tolerance is the maximum RGB distance from a corner colour.
	Tolerance float64
}

// NewEdgeSegmenter creates an EdgeSegmenter with default settings.
func NewEdgeSegmenter() *EdgeSegmenter {
	return &EdgeSegmenter{
		SamplePercent: 5,
		Tolerance:     48,
	}
}

type rgbf struct {
	R, G, B float64
}

// Segment implements Segmenter.
func (s *EdgeSegmenter) Segment(ctx context.Context, img image.Image) (image.Image, error) {
	out := toNRGBA(img)
	width, height := out.Rect.Dx(), out.Rect.Dy()
	if width == 0 || height == 0 {
		return nil, errors.New("image is empty")
	}

	refs := s.cornerColours(out)
	tol2 := s.Tolerance * s.Tolerance

	isBackground := func(x, y int) bool {
		i := out.PixOffset(x, y)
		p := rgbf{float64(out.Pix[i]), float64(out.Pix[i+1]), float64(out.Pix[i+2])}
		for _, ref := range refs {
			dr, dg, db := p.R-ref.R, p.G-ref.G, p.B-ref.B
			if dr*dr+dg*dg+db*db <= tol2 {
				return true
			}
		}
		return false
	}

	visited := make([]bool, width*height)
	queue := make([]int, 0, 2*(width+height))
	push := func(x, y int) {
		idx := y*width + x
		if visited[idx] {
			return
		}
		visited[idx] = true
		if isBackground(x, y) {
			queue = append(queue, idx)
		}
	}

	for x := range width {
		push(x, 0)
		push(x, height-1)
	}
	for y := range height {
		push(0, y)
		push(width-1, y)
	}

	removed := 0
	for head := 0; head < len(queue); head++ {
		if head%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		idx := queue[head]
		x, y := idx%width, idx/width
		out.Pix[out.PixOffset(x, y)+3] = 0
		removed++

		if x > 0 {
			push(x-1, y)
		}
		if x < width-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < height-1 {
			push(x, y+1)
		}
	}

	if removed == width*height {
		return nil, errors.New("no foreground found")
	}

	return out, nil
}

// cornerColours averages a square sample from each corner.
func (s *EdgeSegmenter) cornerColours(img *image.NRGBA) []rgbf {
	width, height := img.Rect.Dx(), img.Rect.Dy()

	percent := s.SamplePercent
	if percent < 1 || percent > 50 {
		percent = 5
	}
	size := max(min(width, height)*percent/100, 1)

	corners := []image.Rectangle{
		image.Rect(0, 0, size, size),
		image.Rect(width-size, 0, width, size),
		image.Rect(0, height-size, size, height),
		image.Rect(width-size, height-size, width, height),
	}

	refs := make([]rgbf, 0, len(corners))
	for _, rect := range corners {
		refs = append(refs, averageRegion(img, rect))
	}
	return refs
}

// averageRegion returns the mean colour of rect.
func averageRegion(img *image.NRGBA, rect image.Rectangle) rgbf {
	var sum rgbf
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			i := img.PixOffset(x, y)
			sum.R += float64(img.Pix[i])
			sum.G += float64(img.Pix[i+1])
			sum.B += float64(img.Pix[i+2])
			n++
		}
	}
	if n == 0 {
		return sum
	}
	return rgbf{sum.R / float64(n), sum.G / float64(n), sum.B / float64(n)}
}
