package image

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadSourceFile(t *testing.T) {
	dir := t.TempDir()
	blob := solidPNG(t, 3, 3, color.White)
	path := filepath.Join(dir, "white.png")
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSource(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadSource() error = %v", err)
	}
	if len(got) != len(blob) {
		t.Errorf("ReadSource() returned %d bytes, want %d", len(got), len(blob))
	}

	if _, err := ReadSource(context.Background(), dir); err == nil {
		t.Error("ReadSource(dir) expected error")
	}
	if _, err := ReadSource(context.Background(), filepath.Join(dir, "missing.png")); err == nil {
		t.Error("ReadSource(missing) expected error")
	}
	if _, err := ReadSource(context.Background(), ""); err == nil {
		t.Error("ReadSource(\"\") expected error")
	}
}

func TestReadSourceURL(t *testing.T) {
	blob := solidPNG(t, 5, 7, color.Black)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(blob)
	}))
	defer srv.Close()

	data, err := ReadSource(context.Background(), srv.URL+"/img.png")
	if err != nil {
		t.Fatalf("ReadSource() error = %v", err)
	}
	img, err := NewSampler().SampleBytes(data)
	if err != nil {
		t.Fatalf("SampleBytes() error = %v", err)
	}
	if img.Width != 5 || img.Height != 7 {
		t.Errorf("sample = %dx%d, want 5x7", img.Width, img.Height)
	}
}

func TestValidateImagePath(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(good, solidPNG(t, 2, 2, color.White), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("nope"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "valid png", path: good},
		{name: "url", path: "https://example.com/a.png"},
		{name: "empty", path: "", wantErr: true},
		{name: "directory", path: dir, wantErr: true},
		{name: "missing", path: filepath.Join(dir, "nope.png"), wantErr: true},
		{name: "not an image", path: bad, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImagePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImagePath() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateImagePathListsFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain text"), 0o600); err != nil {
		t.Fatal(err)
	}

	err := ValidateImagePath(path)
	if err == nil {
		t.Fatal("ValidateImagePath() expected error for a text file")
	}
	for _, ext := range []string{".png", ".webp", ".avif"} {
		if !strings.Contains(err.Error(), ext) {
			t.Errorf("error %q does not list %s", err, ext)
		}
	}
}
