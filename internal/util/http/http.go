// Package http fetches remote images for the extraction pipeline.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jmylchreest/swatch/internal/version"
)

const (
	// UserAgentName is the application name used in the User-Agent header.
	UserAgentName = "swatch"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBytes caps the size of a fetched image.
	DefaultMaxBytes int64 = 50 << 20
)

// ErrTooLarge is returned when a response body exceeds the configured limit.
var ErrTooLarge = errors.New("response body exceeds size limit")

// FetchOptions configures HTTP fetch behavior.
type FetchOptions struct {
	// Timeout specifies the HTTP request timeout.
	// If zero, DefaultTimeout is used.
	Timeout time.Duration

	// MaxBytes limits the response body size. If zero, DefaultMaxBytes is used.
	MaxBytes int64

	// Headers specifies additional HTTP headers to send with the request.
	Headers map[string]string

	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client
}

// Fetch retrieves an image blob from url.
func Fetch(ctx context.Context, url string, opts FetchOptions) ([]byte, error) {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	limit := opts.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent())
	req.Header.Set("Accept", "image/*")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, limit)
	}

	return data, nil
}

// UserAgent returns the User-Agent header value sent with every request.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", UserAgentName, version.Version)
}
