// Package palette holds user-curated colour lists and their JSON exchange format.
package palette

import (
	"errors"
	"slices"

	"github.com/jmylchreest/swatch/internal/colour"
)

// MaxColours is the capacity of a curated palette.
const MaxColours = 12

var (
	// ErrDuplicate is returned when adding a colour already in the palette.
	ErrDuplicate = errors.New("colour already in palette")

	// ErrFull is returned when adding to a palette holding MaxColours.
	ErrFull = errors.New("palette is full")

	// ErrInvalidColour is returned for entries that are not hex colours.
	ErrInvalidColour = errors.New("invalid hex colour")
)

// Curated is an ordered set of hex colours, newest first.
type Curated struct {
	colours []string
}

// NewCurated returns a curated palette seeded with hexes, oldest first.
// Invalid, duplicate, and overflow entries are skipped.
func NewCurated(hexes ...string) *Curated {
	c := &Curated{}
	for _, hex := range hexes {
		_ = c.Add(hex)
	}
	return c
}

// Add canonicalises hex and places it at the front.
func (c *Curated) Add(hex string) error {
	canonical, err := canonicalise(hex)
	if err != nil {
		return err
	}
	if slices.Contains(c.colours, canonical) {
		return ErrDuplicate
	}
	if len(c.colours) >= MaxColours {
		return ErrFull
	}
	c.colours = slices.Insert(c.colours, 0, canonical)
	return nil
}

// Remove deletes hex from the palette and reports whether it was present.
func (c *Curated) Remove(hex string) bool {
	canonical, err := canonicalise(hex)
	if err != nil {
		return false
	}
	i := slices.Index(c.colours, canonical)
	if i < 0 {
		return false
	}
	c.colours = slices.Delete(c.colours, i, i+1)
	return true
}

// Contains reports whether hex is in the palette.
func (c *Curated) Contains(hex string) bool {
	canonical, err := canonicalise(hex)
	return err == nil && slices.Contains(c.colours, canonical)
}

// Colours returns a copy of the palette, newest first.
func (c *Curated) Colours() []string {
	return slices.Clone(c.colours)
}

// Len returns the number of colours.
func (c *Curated) Len() int {
	return len(c.colours)
}

// canonicalise returns hex as lowercase #rrggbb.
func canonicalise(hex string) (string, error) {
	rgb, ok := colour.ParseHexLoose(hex)
	if !ok {
		return "", ErrInvalidColour
	}
	return rgb.Hex(), nil
}
