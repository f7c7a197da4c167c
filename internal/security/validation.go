// Package security provides input validation for remote sources and plugin binaries.
package security

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"runtime"
	"strings"
)

// ValidateHTTPURL validates an image URL before it is fetched. Only http and
// https are accepted. Unless allowPrivate is set, loopback, private and
// link-local hosts are rejected.
func ValidateHTTPURL(urlStr string, allowPrivate bool) error {
	if urlStr == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("only HTTP(S) URLs are allowed (got %s)", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must have a hostname")
	}

	host := strings.ToLower(parsed.Hostname())
	if !allowPrivate && isLocalOrPrivateHost(host) {
		return fmt.Errorf("URL cannot point to local or private hosts: %s", host)
	}

	return nil
}

// ValidatePluginPath checks that pluginPath names an executable regular file.
func ValidatePluginPath(pluginPath string) error {
	if pluginPath == "" {
		return fmt.Errorf("empty plugin path")
	}

	info, err := os.Stat(pluginPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("plugin not found: %s", pluginPath)
		}
		return fmt.Errorf("failed to access plugin: %w", err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("plugin is not a regular file: %s", pluginPath)
	}

	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("plugin is not executable: %s", pluginPath)
	}

	return nil
}

// isLocalOrPrivateHost checks if a hostname is localhost or a private IP.
func isLocalOrPrivateHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}

	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
