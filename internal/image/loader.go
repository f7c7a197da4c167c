package image

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	httputil "github.com/jmylchreest/swatch/internal/util/http"
)

// ReadSource returns the raw bytes of an image from a local path or HTTP(S) URL
// without decoding them.
func ReadSource(ctx context.Context, path string) ([]byte, error) {
	if isURL(path) {
		data, err := httputil.Fetch(ctx, path, httputil.FetchOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
		}
		return data, nil
	}
	return readFile(path)
}

// readFile reads an image file after checking it is a regular file.
func readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	return data, nil
}

// ValidateImagePath checks if the given path is valid and points to a supported image file.
// For local files, it verifies the file exists and its header can be decoded.
// For HTTP(S) URLs, it only validates the scheme (actual fetching happens later).
func ValidateImagePath(path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}

	if isURL(path) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file not found: %s", path)
		}
		return fmt.Errorf("failed to access image path: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	if _, _, err := image.DecodeConfig(file); err != nil {
		return fmt.Errorf("unsupported or invalid image format (supported: %s): %w",
			strings.Join(SupportedImageExtensions(), ", "), err)
	}

	return nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff", ".avif"}
}

// isURL checks if a path is an HTTP/HTTPS URL.
func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
