package colour

import (
	"math"
)

// WCAG contrast thresholds.
const (
	ContrastAAA     = 7.0
	ContrastAA      = 4.5
	ContrastAALarge = 3.0
)

var (
	// Black is pure black, the dark label colour.
	Black = RGB{R: 0, G: 0, B: 0}

	// White is pure white, the light label colour.
	White = RGB{R: 255, G: 255, B: 255}
)

// RelativeLuminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func RelativeLuminance(c RGB) float64 {
	rf := gammaCorrect(float64(c.R) / 255.0)
	gf := gammaCorrect(float64(c.G) / 255.0)
	bf := gammaCorrect(float64(c.B) / 255.0)

	return 0.2126*rf + 0.7152*gf + 0.0722*bf
}

// gammaCorrect expands a gamma-encoded sRGB component to linear light.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio calculates the contrast ratio between two colours according to WCAG 2.0.
// Returns a value between 1 and 21, where 21 is maximum contrast (black vs white).
// The result is symmetric in its arguments.
// https://www.w3.org/TR/WCAG20/#contrast-ratiodef.
func ContrastRatio(c1, c2 RGB) float64 {
	l1 := RelativeLuminance(c1)
	l2 := RelativeLuminance(c2)

	// Ensure l1 is the lighter colour.
	if l1 < l2 {
		l1, l2 = l2, l1
	}

	return (l1 + 0.05) / (l2 + 0.05)
}

// ContrastLevel is the WCAG conformance level reached by a contrast ratio.
type ContrastLevel string

const (
	LevelAAA     ContrastLevel = "AAA"
	LevelAA      ContrastLevel = "AA"
	LevelAALarge ContrastLevel = "AA Large"
	LevelFail    ContrastLevel = "Fail"
)

// WCAGLevel returns the highest WCAG level met by ratio for normal text,
// falling back to the large-text level.
func WCAGLevel(ratio float64) ContrastLevel {
	switch {
	case ratio >= ContrastAAA:
		return LevelAAA
	case ratio >= ContrastAA:
		return LevelAA
	case ratio >= ContrastAALarge:
		return LevelAALarge
	default:
		return LevelFail
	}
}

// BestTextColour picks "#000000" or "#ffffff" as a label colour for bg.
//
// This is the YIQ brightness heuristic ((299R + 587G + 114B) / 1000 >= 128),
// a cheap legibility proxy for UI labels. It is intentionally a different
// algorithm from ContrastRatio and does not certify accessibility; callers
// that need WCAG compliance must compare ContrastRatio against Black and White.
func BestTextColour(bg RGB) string {
	yiq := (int(bg.R)*299 + int(bg.G)*587 + int(bg.B)*114) / 1000
	if yiq >= 128 {
		return Black.Hex()
	}
	return White.Hex()
}

// ContrastColour returns the label colour for a 3- or 6-digit hex background.
// Empty or unparsable input falls back to "#000000".
func ContrastColour(hex string) string {
	rgb, ok := ParseHexLoose(hex)
	if !ok {
		return Black.Hex()
	}
	return BestTextColour(rgb)
}
