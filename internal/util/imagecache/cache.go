// Package imagecache keeps downloaded images on disk so repeated extractions
// of the same URL do not refetch it.
package imagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	neturl "net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	httputil "github.com/jmylchreest/swatch/internal/util/http"
)

// Options configures image caching behaviour.
type Options struct {
	// Dir is the cache directory. Defaults to DefaultDir().
	Dir string

	// Refresh refetches the image even when a cached copy exists.
	Refresh bool

	// Fetch overrides the download options.
	Fetch httputil.FetchOptions
}

// DefaultDir returns the default cache directory, ~/.cache/swatch/images on Linux.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "swatch", "images"), nil
	}
	return filepath.Join(cacheDir, "swatch", "images"), nil
}

// Filename returns the deterministic cache filename for url: a hash of the
// URL plus the extension of its path.
func Filename(url string) string {
	sum := sha256.Sum256([]byte(url))
	name := hex.EncodeToString(sum[:16])

	ext := ""
	if u, err := neturl.Parse(url); err == nil {
		ext = path.Ext(u.Path)
	}
	if ext == "" || len(ext) > 5 {
		ext = ".img"
	}

	return name + strings.ToLower(ext)
}

// Load returns the image bytes for url, from the cache when present and
// otherwise by downloading and storing them.
func Load(ctx context.Context, url string, opts Options) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	dir := opts.Dir
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	cached := filepath.Join(dir, Filename(url))

	if !opts.Refresh {
		data, err := os.ReadFile(cached) // #nosec G304 -- path is derived from a hash inside the cache dir
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read cached image: %w", err)
		}
	}

	data, err := httputil.Fetch(ctx, url, opts.Fetch)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(cached, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write cached image: %w", err)
	}

	return data, nil
}
