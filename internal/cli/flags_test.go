package cli

import (
	"bytes"
	"testing"
)

func TestValidateColourCount(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{n: 1, wantErr: true},
		{n: 2, wantErr: false},
		{n: 8, wantErr: false},
		{n: 16, wantErr: false},
		{n: 17, wantErr: true},
	}

	for _, tt := range tests {
		err := validateColourCount(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateColourCount(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
	}
}

func TestShowPreview(t *testing.T) {
	var buf bytes.Buffer

	tests := []struct {
		mode    string
		want    bool
		wantErr bool
	}{
		{mode: previewAlways, want: true},
		{mode: previewNever, want: false},
		{mode: previewAuto, want: false},
		{mode: "", want: false},
		{mode: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got, err := showPreview(tt.mode, &buf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("showPreview(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("showPreview(%q) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestPreviewAlwaysEmitsSwatches(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "gradient", "--preview", "always", "-n", "2", "#000", "#fff")
	if err != nil {
		t.Fatalf("gradient error = %v", err)
	}
	if !bytes.Contains([]byte(stdout), []byte("\x1b[48;2;0;0;0m")) {
		t.Errorf("preview output has no swatch escape: %q", stdout)
	}
}
