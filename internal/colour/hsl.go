package colour

import (
	"fmt"
	"math"
)

// HSL is a colour in hue/saturation/lightness form with integer components.
// H is in degrees [0, 360), S and L are percentages [0, 100].
type HSL struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

// Hex renders the HSL colour as "#rrggbb".
func (c HSL) Hex() string {
	return HSLToHex(float64(c.H), float64(c.S), float64(c.L))
}

// RGB renders the HSL colour as an RGB triple.
func (c HSL) RGB() RGB {
	rgb, _ := ParseHex(c.Hex())
	return rgb
}

// String returns the colour in CSS notation, "hsl(h, s%, l%)".
func (c HSL) String() string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", c.H, c.S, c.L)
}

// RGBToHSL converts 8-bit channels to HSL, rounding every component to the
// nearest integer. Achromatic colours (max == min) yield h=0 and s=0.
func RGBToHSL(r, g, b uint8) HSL {
	h, s, l := rgbToHSL(RGB{R: r, G: g, B: b})
	hue := int(math.Round(h)) % 360
	return HSL{
		H: hue,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}

// rgbToHSL converts RGB to HSL colour space.
// Returns hue (0-360), saturation (0-1), lightness (0-1).
func rgbToHSL(rgb RGB) (h, s, l float64) {
	r := float64(rgb.R) / 255.0
	g := float64(rgb.G) / 255.0
	b := float64(rgb.B) / 255.0

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	delta := maxVal - minVal

	// Lightness.
	l = (maxVal + minVal) / 2.0

	// Saturation.
	if delta == 0 {
		s = 0
		h = 0
		return
	}

	if l > 0.5 {
		s = delta / (2.0 - maxVal - minVal)
	} else {
		s = delta / (maxVal + minVal)
	}

	// Hue.
	switch maxVal {
	case r:
		h = (g - b) / delta
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/delta + 2
	case b:
		h = (r-g)/delta + 4
	}

	h *= 60
	return
}

// HSLToHex converts HSL (h in degrees, s and l in percent) to "#rrggbb".
// The hue is taken modulo 360, so negative and oversized hues wrap.
// Saturation and lightness are expected in [0, 100]; output channels are clamped.
func HSLToHex(h, s, l float64) string {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	l /= 100
	a := s * math.Min(l, 1-l) / 100

	f := func(n float64) uint8 {
		k := math.Mod(n+h/30, 12)
		v := l - a*math.Max(math.Min(math.Min(k-3, 9-k), 1), -1)
		return clampChannel(math.Round(255 * v))
	}

	return RGBToHex(f(0), f(8), f(4))
}

// clampChannel clamps a rounded channel value to [0, 255].
func clampChannel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
