package colour

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Palette is an ordered list of representative colours produced by one
// extraction, most frequent first. A palette is never mutated once returned;
// a new extraction produces a new palette.
type Palette struct {
	Colours []RGB
	// Weights holds each colour's share of the sampled pixels (0-1), parallel to Colours.
	// Nil when the producer does not track frequencies.
	Weights []float64
}

// NewPalette creates a new Palette with the given colours.
func NewPalette(colours []RGB) Palette {
	return Palette{
		Colours: colours,
	}
}

// NewPaletteWithWeights creates a new Palette with colours and their relative weights.
func NewPaletteWithWeights(colours []RGB, weights []float64) Palette {
	return Palette{
		Colours: colours,
		Weights: weights,
	}
}

// Len returns the number of colours in the palette.
func (p Palette) Len() int {
	return len(p.Colours)
}

// Clone returns a deep copy of the palette.
func (p Palette) Clone() Palette {
	return Palette{
		Colours: slices.Clone(p.Colours),
		Weights: slices.Clone(p.Weights),
	}
}

// ToHex converts the palette colours to hex strings.
// Returns a slice of hex colour codes (e.g., ["#1a2b3c", "#4d5e6f"]).
func (p Palette) ToHex() []string {
	hexColours := make([]string, len(p.Colours))
	for i, c := range p.Colours {
		hexColours[i] = c.Hex()
	}
	return hexColours
}

// Swatch is the external form of a palette entry.
type Swatch struct {
	Hex string `json:"hex"`
	RGB string `json:"rgb"`
}

// Swatches returns the palette as {hex, rgb} pairs, rgb formatted as "rgb(R,G,B)".
func (p Palette) Swatches() []Swatch {
	swatches := make([]Swatch, len(p.Colours))
	for i, c := range p.Colours {
		swatches[i] = Swatch{Hex: c.Hex(), RGB: c.CSS()}
	}
	return swatches
}

// MarshalJSON encodes the palette as its ordered list of swatches.
func (p Palette) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Swatches())
}

// ToJSON encodes the palette like MarshalJSON, indented for display.
func (p Palette) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p.Swatches(), "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p Palette) String() string {
	if len(p.Colours) == 0 {
		return "Empty palette"
	}

	result := fmt.Sprintf("Palette with %d colours:\n", len(p.Colours))
	for i, c := range p.Colours {
		result += fmt.Sprintf("  %2d: %s (%s)\n", i+1, c.Hex(), c.CSS())
	}
	return result
}

// All returns an iterator over all colours in the palette.
func (p Palette) All() func(func(int, RGB) bool) {
	return func(yield func(int, RGB) bool) {
		for i, c := range p.Colours {
			if !yield(i, c) {
				return
			}
		}
	}
}
