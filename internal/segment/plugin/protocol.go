// Package plugin runs background removal out of process, either as a
// go-plugin RPC server or as a raw stdin/stdout filter.
package plugin

import (
	"fmt"
	"strconv"
	"strings"

	goplugin "github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current segmenter plugin API version.
	// Format: MAJOR.MINOR.PATCH.
	ProtocolVersion = "1.0.0"

	// MinCompatibleVersion is the oldest protocol version swatch can work with.
	MinCompatibleVersion = "1.0.0"

	// PluginName is the name the segmenter is dispensed under.
	PluginName = "segmenter"

	// InfoFlag asks a plugin binary to print its PluginInfo as JSON and exit.
	InfoFlag = "--plugin-info"
)

// Handshake is the handshake configuration for go-plugin protocol.
// The go-plugin ProtocolVersion is the major version of ProtocolVersion.
var Handshake = goplugin.HandshakeConfig{
	ProtocolVersion:  uint(GetCurrentVersion().Major), // #nosec G115 -- constant, non-negative
	MagicCookieKey:   "SWATCH_PLUGIN",
	MagicCookieValue: "swatch_segmenter",
}

// PluginType defines the type of plugin communication protocol.
type PluginType string

const (
	// PluginTypeGoPlugin indicates the plugin uses HashiCorp go-plugin RPC protocol.
	PluginTypeGoPlugin PluginType = "go-plugin"

	// PluginTypeStdio indicates the plugin reads an image on stdin and
	// writes the segmented PNG, or a greyscale mask PNG, to stdout.
	PluginTypeStdio PluginType = "stdio"
)

// PluginInfo is the metadata a plugin prints in response to InfoFlag.
type PluginInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	PluginProtocol  string `json:"plugin_protocol"` // "stdio" or "go-plugin"
}

// Version represents a parsed protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a version string in "MAJOR.MINOR.PATCH" format.
func Parse(version string) (Version, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: %s (expected MAJOR.MINOR.PATCH)", version)
	}

	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version component %q in %s", part, version)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the string representation of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// less reports whether v sorts before o.
func (v Version) less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// IsCompatible checks if a plugin protocol version can be used by this host.
// The major version must match and the version must not be older than
// MinCompatibleVersion.
func IsCompatible(pluginVersionStr string) (bool, error) {
	pluginVersion, err := Parse(pluginVersionStr)
	if err != nil {
		return false, fmt.Errorf("failed to parse plugin version: %w", err)
	}

	current := GetCurrentVersion()
	if pluginVersion.Major != current.Major {
		return false, fmt.Errorf(
			"incompatible major version: plugin is %s, swatch requires %d.x.x",
			pluginVersion, current.Major,
		)
	}

	minVersion, err := Parse(MinCompatibleVersion)
	if err != nil {
		return false, fmt.Errorf("failed to parse minimum compatible version: %w", err)
	}
	if pluginVersion.less(minVersion) {
		return false, fmt.Errorf("plugin version %s is too old, minimum required is %s", pluginVersion, MinCompatibleVersion)
	}

	return true, nil
}

// GetCurrentVersion returns the current protocol version as a Version struct.
func GetCurrentVersion() Version {
	v, err := Parse(ProtocolVersion)
	if err != nil {
		panic(fmt.Sprintf("invalid ProtocolVersion constant: %v", err))
	}
	return v
}
