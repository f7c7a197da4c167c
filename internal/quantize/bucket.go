package quantize

import (
	"sort"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/image"
)

const (
	// bucketShift coarsens each channel to 16 levels.
	bucketShift = 4
	bucketCount = 1 << (3 * bucketShift)
)

// Bucket quantizes by counting coarsened colours and keeping the most frequent.
// Each channel is reduced to 16 levels and rebuilt as level*16, so a bucket
// covering 240-255 always reconstructs to 240.
type Bucket struct {
	// SkipTransparent ignores fully transparent pixels, such as background
	// removed by segmentation.
	SkipTransparent bool
}

// NewBucket creates a Bucket quantizer that counts every sampled pixel.
func NewBucket() *Bucket {
	return &Bucket{}
}

// Quantize implements Quantizer.
func (b *Bucket) Quantize(s *image.Sample, count int) (colour.Palette, error) {
	if err := checkInput(s, count); err != nil {
		return colour.Palette{}, err
	}

	var counts [bucketCount]int
	order := make([]uint16, 0, 64)
	sampled := 0

	for i := 0; i+3 < len(s.Pix); i += SampleStride * 4 {
		if b.SkipTransparent && s.Pix[i+3] == 0 {
			continue
		}
		key := bucketKey(s.Pix[i], s.Pix[i+1], s.Pix[i+2])
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
		sampled++
	}

	if sampled == 0 {
		return colour.Palette{}, nil
	}

	// order is in first-seen order; the stable sort keeps it for ties.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	n := min(count, len(order))
	colours := make([]colour.RGB, n)
	weights := make([]float64, n)
	for i, key := range order[:n] {
		colours[i] = bucketColour(key)
		weights[i] = float64(counts[key]) / float64(sampled)
	}

	return colour.NewPaletteWithWeights(colours, weights), nil
}

func bucketKey(r, g, b uint8) uint16 {
	return uint16(r>>bucketShift)<<(2*bucketShift) | uint16(g>>bucketShift)<<bucketShift | uint16(b>>bucketShift)
}

func bucketColour(key uint16) colour.RGB {
	const mask = 1<<bucketShift - 1
	return colour.RGB{
		R: uint8(key>>(2*bucketShift)&mask) << bucketShift,
		G: uint8(key>>bucketShift&mask) << bucketShift,
		B: uint8(key&mask) << bucketShift,
	}
}
