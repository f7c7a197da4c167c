package colour

import "fmt"

// Harmony is a fixed angular relationship between hues on the colour wheel.
type Harmony string

const (
	// HarmonyComplementary is the hue opposite the base (+180°).
	HarmonyComplementary Harmony = "complementary"

	// HarmonyAnalogous are the neighbouring hues (-30°, +30°).
	HarmonyAnalogous Harmony = "analogous"

	// HarmonyTriadic are the hues evenly spaced around the wheel (+120°, +240°).
	HarmonyTriadic Harmony = "triadic"

	// HarmonySplitComplementary are the two hues either side of the complement (+150°, +210°).
	HarmonySplitComplementary Harmony = "split-complementary"
)

// ValidHarmonies returns all supported harmonies.
func ValidHarmonies() []Harmony {
	return []Harmony{
		HarmonyComplementary,
		HarmonyAnalogous,
		HarmonyTriadic,
		HarmonySplitComplementary,
	}
}

// ParseHarmony converts a name to a Harmony.
func ParseHarmony(s string) (Harmony, error) {
	for _, h := range ValidHarmonies() {
		if string(h) == s {
			return h, nil
		}
	}
	return "", fmt.Errorf("unknown harmony: %s (valid harmonies: %v)", s, ValidHarmonies())
}

// Offsets returns the hue offsets in degrees for the harmony.
func (h Harmony) Offsets() []int {
	switch h {
	case HarmonyComplementary:
		return []int{180}
	case HarmonyAnalogous:
		return []int{-30, 30}
	case HarmonyTriadic:
		return []int{120, 240}
	case HarmonySplitComplementary:
		return []int{150, 210}
	default:
		return nil
	}
}

// RotateHue returns (h + offset) mod 360, always in [0, 360).
func RotateHue(h, offset int) int {
	return ((h+offset)%360 + 360) % 360
}

// Complementary returns the hue opposite h.
func Complementary(h int) int {
	return RotateHue(h, 180)
}

// Harmonize returns the harmony variants of base, each keeping the base
// saturation and lightness.
func Harmonize(base HSL, kind Harmony) []HSL {
	offsets := kind.Offsets()
	variants := make([]HSL, len(offsets))
	for i, off := range offsets {
		variants[i] = HSL{H: RotateHue(base.H, off), S: base.S, L: base.L}
	}
	return variants
}
