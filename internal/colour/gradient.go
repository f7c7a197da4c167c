package colour

import (
	"fmt"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// BlendSpace selects the colour space used to interpolate gradient steps.
type BlendSpace string

const (
	// BlendRGB interpolates each sRGB channel linearly and rounds (default).
	BlendRGB BlendSpace = "rgb"

	// BlendLab interpolates in CIE L*a*b*.
	BlendLab BlendSpace = "lab"

	// BlendHCL interpolates in polar L*a*b* (hue, chroma, lightness).
	BlendHCL BlendSpace = "hcl"

	// BlendLuv interpolates in CIE L*u*v*.
	BlendLuv BlendSpace = "luv"
)

// DefaultDirection is the CSS direction used when a gradient has none.
const DefaultDirection = "to right"

// ValidBlendSpaces returns all supported blend spaces.
func ValidBlendSpaces() []BlendSpace {
	return []BlendSpace{BlendRGB, BlendLab, BlendHCL, BlendLuv}
}

// ValidDirections returns the CSS linear-gradient directions accepted by Gradient.
func ValidDirections() []string {
	return []string{
		"to right", "to left", "to bottom", "to top",
		"to bottom right", "to bottom left", "to top right", "to top left",
	}
}

// Gradient describes a two-stop linear gradient.
type Gradient struct {
	From      RGB
	To        RGB
	Steps     int
	Direction string
	Space     BlendSpace
}

// Validate checks the gradient parameters.
func (g Gradient) Validate() error {
	if g.Steps < 2 {
		return fmt.Errorf("gradient needs at least 2 steps, got %d", g.Steps)
	}
	if g.Direction != "" && !slices.Contains(ValidDirections(), g.Direction) {
		return fmt.Errorf("invalid direction: %s (valid directions: %v)", g.Direction, ValidDirections())
	}
	if g.Space != "" && !slices.Contains(ValidBlendSpaces(), g.Space) {
		return fmt.Errorf("invalid blend space: %s (valid spaces: %v)", g.Space, ValidBlendSpaces())
	}
	return nil
}

// Colours returns Steps evenly spaced colours from From to To inclusive.
func (g Gradient) Colours() ([]RGB, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	colours := make([]RGB, g.Steps)
	for i := range g.Steps {
		ratio := float64(i) / float64(g.Steps-1)
		colours[i] = g.at(ratio)
	}
	return colours, nil
}

// at returns the interpolated colour at ratio t in [0, 1].
func (g Gradient) at(t float64) RGB {
	space := g.Space
	if space == "" {
		space = BlendRGB
	}

	if space == BlendRGB {
		lerp := func(a, b uint8) uint8 {
			return clampChannel(math.Round(float64(a) + (float64(b)-float64(a))*t))
		}
		return RGB{
			R: lerp(g.From.R, g.To.R),
			G: lerp(g.From.G, g.To.G),
			B: lerp(g.From.B, g.To.B),
		}
	}

	c1 := toColorful(g.From)
	c2 := toColorful(g.To)

	var blended colorful.Color
	switch space {
	case BlendLab:
		blended = c1.BlendLab(c2, t)
	case BlendHCL:
		blended = c1.BlendHcl(c2, t)
	case BlendLuv:
		blended = c1.BlendLuv(c2, t)
	}

	r, gr, b := blended.Clamped().RGB255()
	return RGB{R: r, G: gr, B: b}
}

// CSS returns the gradient as a CSS linear-gradient value.
func (g Gradient) CSS() string {
	direction := g.Direction
	if direction == "" {
		direction = DefaultDirection
	}
	return fmt.Sprintf("linear-gradient(%s, %s, %s)", direction, g.From.Hex(), g.To.Hex())
}

// toColorful converts RGB to a go-colorful colour.
func toColorful(c RGB) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}
