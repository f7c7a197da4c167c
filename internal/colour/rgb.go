// Package colour provides the colorimetry primitives used by palette extraction:
// hex, RGB and HSL conversion, WCAG luminance and contrast, hue harmonies and
// gradient interpolation.
package colour

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	hexPattern      = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)
	looseHexPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// RGB represents a colour as a 24-bit RGB triple.
// There is no alpha channel; images with transparency are treated as already composited.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the colour as a lowercase hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return RGBToHex(rgb.R, rgb.G, rgb.B)
}

// CSS returns the colour in compact CSS functional notation, "rgb(r,g,b)".
func (rgb RGB) CSS() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", rgb.R, rgb.G, rgb.B)
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// HSL returns the colour in rounded HSL form.
func (rgb RGB) HSL() HSL {
	return RGBToHSL(rgb.R, rgb.G, rgb.B)
}

// RGBToHex formats three channels as "#rrggbb".
func RGBToHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// ParseHex parses a strict 6-digit hex colour with an optional leading '#'.
// Any other input, including 3-digit short hex, returns false. A false result
// means "no colour yet" and is not an error.
func ParseHex(s string) (RGB, bool) {
	m := hexPattern.FindStringSubmatch(s)
	if m == nil {
		return RGB{}, false
	}
	return parseHexDigits(m[1]), true
}

// ParseHexLoose parses a 3- or 6-digit hex colour with an optional leading '#'.
// Short forms are expanded ("abc" becomes "aabbcc").
func ParseHexLoose(s string) (RGB, bool) {
	m := looseHexPattern.FindStringSubmatch(s)
	if m == nil {
		return RGB{}, false
	}
	digits := m[1]
	if len(digits) == 3 {
		var b strings.Builder
		for _, c := range digits {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		digits = b.String()
	}
	return parseHexDigits(digits), true
}

// parseHexDigits converts six already-validated hex digits to RGB.
func parseHexDigits(digits string) RGB {
	v, _ := strconv.ParseUint(digits, 16, 32)
	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}
