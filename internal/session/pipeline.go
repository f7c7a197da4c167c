package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/image"
	"github.com/jmylchreest/swatch/internal/quantize"
	"github.com/jmylchreest/swatch/internal/segment"
)

// Request identifies one extraction. Any change to a field requires a new
// extraction. Image must not be modified after submission.
type Request struct {
	// Image is the encoded image blob.
	Image []byte

	// Name labels the image in logs and notifications.
	Name string

	// ColourCount is the maximum palette length.
	ColourCount int

	// RemoveBackground runs the segmenter before quantization.
	RemoveBackground bool
}

// Pipeline turns a Request into a palette: decode, optional background
// removal, sample, quantize.
type Pipeline struct {
	Sampler   *image.Sampler
	Quantizer quantize.Quantizer

	// Segmenter is required only for requests with RemoveBackground set.
	Segmenter     segment.Segmenter
	SegmenterName string
}

// NewPipeline returns a pipeline using the default sampler and bucket quantizer.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Sampler:   image.NewSampler(),
		Quantizer: quantize.NewBucket(),
	}
}

// Run executes req. onStage, when non-nil, is called on entering
// RemovingBackground and Extracting.
func (p *Pipeline) Run(ctx context.Context, req Request, onStage func(State)) (colour.Palette, error) {
	stage := func(s State) {
		if onStage != nil {
			onStage(s)
		}
	}

	if req.ColourCount < 1 {
		return colour.Palette{}, fmt.Errorf("%w, got %d", quantize.ErrInvalidColourCount, req.ColourCount)
	}

	sampler := p.Sampler
	if sampler == nil {
		sampler = image.NewSampler()
	}
	quantizer := p.Quantizer
	if quantizer == nil {
		quantizer = quantize.NewBucket()
	}

	if req.RemoveBackground {
		stage(RemovingBackground)
	} else {
		stage(Extracting)
	}

	img, err := sampler.Decode(bytes.NewReader(req.Image))
	if err != nil {
		return colour.Palette{}, err
	}

	if req.RemoveBackground {
		img, err = segment.RemoveBackground(ctx, p.Segmenter, p.SegmenterName, img)
		if err != nil {
			return colour.Palette{}, err
		}
		quantizer = quantize.SkippingTransparent(quantizer)
		stage(Extracting)
	}

	if err := ctx.Err(); err != nil {
		return colour.Palette{}, err
	}

	sample, err := sampler.Sample(img)
	if err != nil {
		return colour.Palette{}, &quantize.ExtractionError{Reason: "pixel buffer unavailable", Err: err}
	}

	if err := ctx.Err(); err != nil {
		return colour.Palette{}, err
	}

	return quantizer.Quantize(sample, req.ColourCount)
}

// Kind classifies a session failure.
type Kind int

const (
	// KindNone means no error.
	KindNone Kind = iota
	// KindDecode means the image blob could not be decoded.
	KindDecode
	// KindExtraction means the pixel buffer could not be quantized.
	KindExtraction
	// KindSegmentation means background removal failed.
	KindSegmentation
	// KindCancelled means the extraction was cancelled before completing.
	KindCancelled
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDecode:
		return "decode"
	case KindExtraction:
		return "extraction"
	case KindSegmentation:
		return "segmentation"
	case KindCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Classify maps an error returned by Pipeline.Run to its Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var decodeErr *image.DecodeError
	var segErr *segment.SegmentationError
	switch {
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &segErr):
		return KindSegmentation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindExtraction
	}
}
