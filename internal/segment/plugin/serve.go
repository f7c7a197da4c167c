package plugin

import (
	"encoding/json"
	"io"

	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/swatch/internal/segment"
)

// Serve runs impl as a go-plugin segmenter. It blocks until the host
// disconnects.
func Serve(impl segment.Segmenter) {
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]goplugin.Plugin{
			PluginName: &SegmenterRPC{Impl: impl},
		},
	})
}

// WriteInfo writes info as the InfoFlag response, filling in the protocol
// version when unset.
func WriteInfo(w io.Writer, info PluginInfo) error {
	if info.ProtocolVersion == "" {
		info.ProtocolVersion = ProtocolVersion
	}
	if info.PluginProtocol == "" {
		info.PluginProtocol = string(PluginTypeGoPlugin)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
