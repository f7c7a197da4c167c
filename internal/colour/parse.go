package colour

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	rgbFuncPattern = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)
	hslFuncPattern = regexp.MustCompile(`^hsl\(\s*(-?\d{1,4})\s*,\s*(\d{1,3})%?\s*,\s*(\d{1,3})%?\s*\)$`)
)

// ParseColour parses a colour written as hex (3 or 6 digits, '#' optional),
// "rgb(r, g, b)" or "hsl(h, s%, l%)".
func ParseColour(s string) (RGB, error) {
	in := strings.ToLower(strings.TrimSpace(s))

	if rgb, ok := ParseHexLoose(in); ok {
		return rgb, nil
	}

	if m := rgbFuncPattern.FindStringSubmatch(in); m != nil {
		var ch [3]uint8
		for i := range ch {
			v, _ := strconv.Atoi(m[i+1])
			if v > 255 {
				return RGB{}, fmt.Errorf("rgb channel out of range: %d", v)
			}
			ch[i] = uint8(v)
		}
		return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
	}

	if m := hslFuncPattern.FindStringSubmatch(in); m != nil {
		h, _ := strconv.Atoi(m[1])
		sat, _ := strconv.Atoi(m[2])
		light, _ := strconv.Atoi(m[3])
		if sat > 100 || light > 100 {
			return RGB{}, fmt.Errorf("hsl saturation and lightness must be 0-100")
		}
		rgb, _ := ParseHex(HSLToHex(float64(h), float64(sat), float64(light)))
		return rgb, nil
	}

	return RGB{}, fmt.Errorf("unrecognised colour %q (expected #rrggbb, rgb(r,g,b) or hsl(h,s%%,l%%))", s)
}
