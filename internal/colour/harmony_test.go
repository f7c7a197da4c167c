package colour

import (
	"slices"
	"testing"
)

func TestComplementaryClosure(t *testing.T) {
	for h := range 360 {
		if got := Complementary(Complementary(h)); got != h {
			t.Fatalf("Complementary(Complementary(%d)) = %d", h, got)
		}
	}
}

func TestRotateHue(t *testing.T) {
	tests := []struct {
		h, offset, want int
	}{
		{h: 10, offset: -30, want: 340},
		{h: 350, offset: 30, want: 20},
		{h: 0, offset: 180, want: 180},
		{h: 200, offset: 240, want: 80},
		{h: 0, offset: -720, want: 0},
	}

	for _, tt := range tests {
		if got := RotateHue(tt.h, tt.offset); got != tt.want {
			t.Errorf("RotateHue(%d, %d) = %d, want %d", tt.h, tt.offset, got, tt.want)
		}
	}
}

func TestHarmonize(t *testing.T) {
	base := HSL{H: 258, S: 90, L: 66}

	tests := []struct {
		kind Harmony
		want []int
	}{
		{kind: HarmonyComplementary, want: []int{78}},
		{kind: HarmonyAnalogous, want: []int{228, 288}},
		{kind: HarmonyTriadic, want: []int{18, 138}},
		{kind: HarmonySplitComplementary, want: []int{48, 108}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			variants := Harmonize(base, tt.kind)
			if len(variants) != len(tt.want) {
				t.Fatalf("Harmonize() returned %d variants, want %d", len(variants), len(tt.want))
			}
			for i, v := range variants {
				if v.H != tt.want[i] {
					t.Errorf("variant %d hue = %d, want %d", i, v.H, tt.want[i])
				}
				if v.S != base.S || v.L != base.L {
					t.Errorf("variant %d changed saturation/lightness: %+v", i, v)
				}
			}
		})
	}
}

func TestHarmonizeComplementaryHex(t *testing.T) {
	variants := Harmonize(HSL{H: 258, S: 90, L: 66}, HarmonyComplementary)
	if got := variants[0].Hex(); got != "#c8f65a" {
		t.Errorf("complement hex = %s, want #c8f65a", got)
	}
}

func TestParseHarmony(t *testing.T) {
	for _, h := range ValidHarmonies() {
		got, err := ParseHarmony(string(h))
		if err != nil || got != h {
			t.Errorf("ParseHarmony(%q) = %q, %v", h, got, err)
		}
	}

	if _, err := ParseHarmony("tetradic"); err == nil {
		t.Error("ParseHarmony(tetradic) should fail")
	}
}

func TestHarmonyOffsets(t *testing.T) {
	if got := HarmonyAnalogous.Offsets(); !slices.Equal(got, []int{-30, 30}) {
		t.Errorf("analogous offsets = %v", got)
	}
	if got := Harmony("unknown").Offsets(); got != nil {
		t.Errorf("unknown harmony offsets = %v, want nil", got)
	}
}
