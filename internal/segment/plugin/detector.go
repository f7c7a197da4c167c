package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DetectTimeout bounds the InfoFlag query.
const DetectTimeout = 5 * time.Second

// DetectorResult contains information about a detected plugin protocol.
type DetectorResult struct {
	// Type indicates which protocol the plugin uses.
	Type PluginType

	// Info contains metadata from InfoFlag.
	Info PluginInfo
}

// DetectProtocol queries a plugin binary with InfoFlag and reports which
// protocol it speaks. An empty plugin_protocol means stdio.
func DetectProtocol(ctx context.Context, runner ProcessRunner, path string, args []string) (*DetectorResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DetectTimeout)
	defer cancel()

	query := append(append([]string(nil), args...), InfoFlag)
	stdout, stderr, err := runner.Run(ctx, path, query, nil)
	if err != nil {
		if len(stderr) > 0 {
			return nil, fmt.Errorf("failed to query plugin: %w: %s", err, stderr)
		}
		return nil, fmt.Errorf("failed to query plugin: %w", err)
	}

	var info PluginInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, fmt.Errorf("failed to parse plugin info: %w", err)
	}

	if info.ProtocolVersion != "" {
		if _, err := IsCompatible(info.ProtocolVersion); err != nil {
			return nil, err
		}
	}

	result := &DetectorResult{Info: info}
	switch PluginType(info.PluginProtocol) {
	case PluginTypeGoPlugin:
		result.Type = PluginTypeGoPlugin
	case PluginTypeStdio, "":
		result.Type = PluginTypeStdio
	default:
		return nil, fmt.Errorf("unknown plugin_protocol: %s", info.PluginProtocol)
	}

	return result, nil
}
