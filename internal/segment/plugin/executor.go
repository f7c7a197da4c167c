package plugin

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"
)

// EnvPluginPath names the environment variable holding the default
// segmenter plugin path.
const EnvPluginPath = "SWATCH_SEGMENTER_PLUGIN"

// Config configures an Executor.
type Config struct {
	// Path is the plugin binary.
	Path string

	// Args are passed to the plugin on every invocation.
	Args []string

	// Verbose forwards plugin logs to stderr.
	Verbose bool

	// Runner runs stdio plugins and the protocol query. Defaults to RealProcessRunner.
	Runner ProcessRunner
}

// Executor runs an external segmenter. It satisfies segment.Segmenter.
type Executor struct {
	path         string
	args         []string
	protocolType PluginType
	info         PluginInfo
	runner       ProcessRunner
	logger       hclog.Logger

	mu        sync.Mutex
	client    *goplugin.Client
	rpcClient *SegmenterRPCClient
}

// New detects the plugin's protocol and returns an Executor for it.
// go-plugin processes are started lazily on the first Segment call.
func New(ctx context.Context, cfg Config) (*Executor, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("plugin path cannot be empty")
	}

	runner := cfg.Runner
	if runner == nil {
		runner = NewRealProcessRunner()
	}

	result, err := DetectProtocol(ctx, runner, cfg.Path, cfg.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to detect plugin protocol: %w", err)
	}

	return &Executor{
		path:         cfg.Path,
		args:         cfg.Args,
		protocolType: result.Type,
		info:         result.Info,
		runner:       runner,
		logger:       NewLogger(cfg.Verbose),
	}, nil
}

// NewLogger returns the hclog logger used for plugin processes.
func NewLogger(verbose bool) hclog.Logger {
	if verbose {
		return hclog.New(&hclog.LoggerOptions{
			Name:   "plugin",
			Output: os.Stderr,
			Level:  hclog.Debug,
		})
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "plugin",
		Output: io.Discard,
		Level:  hclog.Off,
	})
}

// Name returns the plugin's reported name, or its path.
func (e *Executor) Name() string {
	if e.info.Name != "" {
		return e.info.Name
	}
	return e.path
}

// Protocol returns the detected protocol.
func (e *Executor) Protocol() PluginType {
	return e.protocolType
}

// Segment runs the plugin on img.
func (e *Executor) Segment(ctx context.Context, img image.Image) (image.Image, error) {
	switch e.protocolType {
	case PluginTypeGoPlugin:
		client, err := e.rpc()
		if err != nil {
			return nil, err
		}
		return client.Segment(ctx, img)
	case PluginTypeStdio:
		return e.segmentStdio(ctx, img)
	default:
		return nil, fmt.Errorf("unsupported protocol type: %s", e.protocolType)
	}
}

// Close stops any running plugin process.
func (e *Executor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		e.client.Kill()
		e.client = nil
		e.rpcClient = nil
	}
}

func (e *Executor) rpc() (*SegmenterRPCClient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rpcClient != nil {
		return e.rpcClient, nil
	}

	e.client = goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]goplugin.Plugin{
			PluginName: &SegmenterRPC{},
		},
		Cmd:              exec.Command(e.path, e.args...), // #nosec G204 -- plugin path is user configured
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           e.logger,
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(PluginName)
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	client, ok := raw.(*SegmenterRPCClient)
	if !ok {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("plugin dispensed unexpected type %T", raw)
	}
	e.rpcClient = client

	return client, nil
}

func (e *Executor) segmentStdio(ctx context.Context, img image.Image) (image.Image, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("running stdio segmenter", "path", e.path, "bytes", len(data))

	stdout, stderr, err := e.runner.Run(ctx, e.path, e.args, bytes.NewReader(data))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			return nil, fmt.Errorf("plugin execution failed: %w", err)
		}
		return nil, fmt.Errorf("plugin execution failed: %w: %s", err, msg)
	}

	out, err := DecodePNG(stdout)
	if err != nil {
		return nil, err
	}
	return applyOutput(img, out)
}
