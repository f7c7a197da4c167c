package security

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestValidateHTTPURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		allowPrivate bool
		wantErr      bool
	}{
		{name: "https", url: "https://example.com/image.jpg", wantErr: false},
		{name: "http", url: "http://example.com/image.png", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "file scheme", url: "file:///etc/passwd", wantErr: true},
		{name: "ftp scheme", url: "ftp://example.com/a.png", wantErr: true},
		{name: "no host", url: "https:///image.jpg", wantErr: true},
		{name: "localhost", url: "http://localhost:8080/a.png", wantErr: true},
		{name: "loopback", url: "http://127.0.0.1/a.png", wantErr: true},
		{name: "private v4", url: "http://192.168.1.10/a.png", wantErr: true},
		{name: "private 172", url: "http://172.20.0.1/a.png", wantErr: true},
		{name: "public 172", url: "http://172.32.0.1/a.png", wantErr: false},
		{name: "link local", url: "http://169.254.169.254/latest", wantErr: true},
		{name: "ipv6 loopback", url: "http://[::1]/a.png", wantErr: true},
		{name: "ipv6 unique local", url: "http://[fd00::1]/a.png", wantErr: true},
		{name: "loopback allowed", url: "http://127.0.0.1:9000/a.png", allowPrivate: true, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHTTPURL(tt.url, tt.allowPrivate)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHTTPURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePluginPath(t *testing.T) {
	dir := t.TempDir()

	executable := filepath.Join(dir, "segmenter")
	if err := os.WriteFile(executable, []byte("#!/bin/sh\n"), 0o755); err != nil { // #nosec G306 -- test plugin must be executable
		t.Fatalf("os.WriteFile() error = %v", err)
	}
	plain := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(plain, []byte("text"), 0o600); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "executable", path: executable, wantErr: false},
		{name: "empty", path: "", wantErr: true},
		{name: "missing", path: filepath.Join(dir, "missing"), wantErr: true},
		{name: "directory", path: dir, wantErr: true},
		{name: "not executable", path: plain, wantErr: runtime.GOOS != "windows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePluginPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePluginPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
