// Package quantize reduces a pixel sample to a small palette of representative colours.
package quantize

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/image"
)

// SampleStride is the pixel stride used when scanning a sample: one pixel in eight.
const SampleStride = 8

// ErrInvalidColourCount is returned when fewer than one colour is requested.
var ErrInvalidColourCount = errors.New("colour count must be at least 1")

// ExtractionError reports a pixel buffer that could not be read.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to extract colours: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to extract colours: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Quantizer reduces a pixel sample to at most count colours.
type Quantizer interface {
	// Quantize returns a palette of at most count colours ordered by
	// descending frequency. It never mutates the sample.
	Quantize(s *image.Sample, count int) (colour.Palette, error)
}

// Algorithm represents the quantization strategy.
type Algorithm string

const (
	// AlgorithmBucket counts coarsened colour buckets and keeps the most frequent.
	AlgorithmBucket Algorithm = "bucket"

	// AlgorithmKMeans clusters sampled pixels with k-means++.
	AlgorithmKMeans Algorithm = "kmeans"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmBucket,
		AlgorithmKMeans,
	}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	return slices.Contains(ValidAlgorithms(), alg)
}

// New creates a Quantizer for the specified algorithm.
func New(alg Algorithm) (Quantizer, error) {
	switch alg {
	case AlgorithmBucket, "":
		return NewBucket(), nil
	case AlgorithmKMeans:
		return NewKMeans(), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

// Config holds configuration for quantization.
type Config struct {
	Algorithm   Algorithm
	ColourCount int
}

// DefaultConfig returns the default quantizer configuration.
func DefaultConfig() Config {
	return Config{
		Algorithm:   AlgorithmBucket,
		ColourCount: 8,
	}
}

// Validate validates the quantizer configuration.
func (c Config) Validate() error {
	if !IsValidAlgorithm(c.Algorithm) {
		return fmt.Errorf("invalid algorithm: %s", c.Algorithm)
	}
	if c.ColourCount < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidColourCount, c.ColourCount)
	}
	if c.ColourCount > 256 {
		return fmt.Errorf("colour count too large: %d (maximum: 256)", c.ColourCount)
	}
	return nil
}

// checkInput validates the arguments shared by every quantizer.
func checkInput(s *image.Sample, count int) error {
	if count < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidColourCount, count)
	}
	if s == nil {
		return &ExtractionError{Reason: "no pixel buffer"}
	}
	if !s.Valid() {
		return &ExtractionError{
			Reason: fmt.Sprintf("pixel buffer holds %d bytes, want %d for %dx%d", len(s.Pix), s.Width*s.Height*4, s.Width, s.Height),
		}
	}
	return nil
}

// SkippingTransparent returns a copy of q that ignores fully transparent
// pixels, or q itself when it has no such option.
func SkippingTransparent(q Quantizer) Quantizer {
	switch v := q.(type) {
	case *Bucket:
		c := *v
		c.SkipTransparent = true
		return &c
	case *KMeans:
		c := *v
		c.SkipTransparent = true
		return &c
	default:
		return q
	}
}
