package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestSampleBytes(t *testing.T) {
	blob := solidPNG(t, 100, 100, color.NRGBA{R: 255, A: 255})

	sample, err := NewSampler().SampleBytes(blob)
	if err != nil {
		t.Fatalf("SampleBytes() error = %v", err)
	}

	if sample.Width != 100 || sample.Height != 100 {
		t.Errorf("sample size = %dx%d, want 100x100", sample.Width, sample.Height)
	}
	if sample.Len() != 10000 {
		t.Errorf("Len() = %d, want 10000", sample.Len())
	}
	if !sample.Valid() {
		t.Fatal("Valid() = false")
	}
	for i := 0; i < len(sample.Pix); i += 4 {
		if sample.Pix[i] != 255 || sample.Pix[i+1] != 0 || sample.Pix[i+2] != 0 || sample.Pix[i+3] != 255 {
			t.Fatalf("pixel %d = %v, want opaque red", i/4, sample.Pix[i:i+4])
		}
	}
}

func TestSampleKeepsAlphaUnpremultiplied(t *testing.T) {
	blob := solidPNG(t, 4, 4, color.NRGBA{R: 200, G: 100, B: 50, A: 128})

	sample, err := NewSampler().SampleBytes(blob)
	if err != nil {
		t.Fatalf("SampleBytes() error = %v", err)
	}

	got := sample.Pix[:4]
	if got[0] != 200 || got[1] != 100 || got[2] != 50 || got[3] != 128 {
		t.Errorf("pixel = %v, want [200 100 50 128]", got)
	}
}

func TestSampleBytesDecodeError(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{name: "empty", blob: nil},
		{name: "garbage", blob: []byte("definitely not an image")},
		{name: "truncated png", blob: solidPNG(t, 10, 10, color.White)[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSampler().SampleBytes(tt.blob)
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("SampleBytes() error = %v, want *DecodeError", err)
			}
		})
	}
}

func TestDecodeRecognisesAVIF(t *testing.T) {
	// A bare ftyp box is enough for format sniffing but not for decoding.
	blob := append([]byte("\x00\x00\x00\x18ftypavif\x00\x00\x00\x00avifmif1"), make([]byte, 32)...)

	_, err := NewSampler().SampleBytes(blob)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("SampleBytes() error = %v, want *DecodeError", err)
	}
	if decodeErr.Format != "avif" {
		t.Errorf("DecodeError.Format = %q, want avif", decodeErr.Format)
	}
}

func TestSampleMaxDimension(t *testing.T) {
	blob := solidPNG(t, 400, 100, color.NRGBA{B: 255, A: 255})

	sampler := &Sampler{MaxDimension: 200}
	sample, err := sampler.SampleBytes(blob)
	if err != nil {
		t.Fatalf("SampleBytes() error = %v", err)
	}

	if sample.Width != 200 || sample.Height != 50 {
		t.Errorf("sample size = %dx%d, want 200x50", sample.Width, sample.Height)
	}
	if !sample.Valid() {
		t.Error("Valid() = false")
	}
	if sample.Pix[2] != 255 {
		t.Errorf("blue channel = %d, want 255", sample.Pix[2])
	}
}

func TestSampleNil(t *testing.T) {
	if _, err := NewSampler().Sample(nil); err == nil {
		t.Error("Sample(nil) expected error")
	}
}

func TestSampleValid(t *testing.T) {
	tests := []struct {
		name   string
		sample *Sample
		want   bool
	}{
		{name: "nil", sample: nil, want: false},
		{name: "empty", sample: &Sample{}, want: true},
		{name: "matching", sample: &Sample{Pix: make([]uint8, 16), Width: 2, Height: 2}, want: true},
		{name: "short buffer", sample: &Sample{Pix: make([]uint8, 15), Width: 2, Height: 2}, want: false},
		{name: "negative", sample: &Sample{Width: -1, Height: 0}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sample.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{w: 100, h: 50, max: 1024, wantW: 100, wantH: 50},
		{w: 2048, h: 1024, max: 1024, wantW: 1024, wantH: 512},
		{w: 1000, h: 3000, max: 1024, wantW: 341, wantH: 1024},
		{w: 5000, h: 1, max: 100, wantW: 100, wantH: 1},
		{w: 300, h: 300, max: 0, wantW: 300, wantH: 300},
	}

	for _, tt := range tests {
		gotW, gotH := fitWithin(tt.w, tt.h, tt.max)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("fitWithin(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.max, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

func TestResizeToFit(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2000, 500))

	resized, changed := ResizeToFit(img, 1024)
	if !changed {
		t.Fatal("ResizeToFit() reported no change")
	}
	if b := resized.Bounds(); b.Dx() != 1024 || b.Dy() != 256 {
		t.Errorf("resized bounds = %v, want 1024x256", b)
	}

	small := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	same, changed := ResizeToFit(small, 1024)
	if changed || same != image.Image(small) {
		t.Error("ResizeToFit() should return small images untouched")
	}
}
