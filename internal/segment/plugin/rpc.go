package plugin

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/rpc"

	goplugin "github.com/hashicorp/go-plugin"

	swimage "github.com/jmylchreest/swatch/internal/image"
	"github.com/jmylchreest/swatch/internal/segment"
)

// SegmentRequest carries an encoded image to the plugin.
type SegmentRequest struct {
	Image []byte
}

// SegmentResponse carries the PNG-encoded segmented image, or a greyscale
// mask over the request image, back to the host.
type SegmentResponse struct {
	Image []byte
}

// SegmenterRPC implements the go-plugin Plugin interface for segmenters.
type SegmenterRPC struct {
	goplugin.Plugin
	Impl segment.Segmenter
}

// Server returns an RPC server for this plugin.
func (p *SegmenterRPC) Server(*goplugin.MuxBroker) (interface{}, error) {
	return &SegmenterRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *SegmenterRPC) Client(_ *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &SegmenterRPCClient{client: c}, nil
}

// SegmenterRPCServer is the RPC server implementation for segmenters.
type SegmenterRPCServer struct {
	Impl segment.Segmenter
}

// Segment implements the RPC method for background removal.
func (s *SegmenterRPCServer) Segment(req SegmentRequest, resp *SegmentResponse) error {
	img, err := swimage.NewSampler().Decode(bytes.NewReader(req.Image))
	if err != nil {
		return err
	}

	out, err := s.Impl.Segment(context.Background(), img)
	if err != nil {
		return err
	}

	data, err := EncodePNG(out)
	if err != nil {
		return err
	}

	resp.Image = data
	return nil
}

// SegmenterRPCClient is the RPC client implementation for segmenters.
// It satisfies segment.Segmenter.
type SegmenterRPCClient struct {
	client *rpc.Client
}

// Segment calls the remote Segment method. Cancelling ctx abandons the call.
func (c *SegmenterRPCClient) Segment(ctx context.Context, img image.Image) (image.Image, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}

	var resp SegmentResponse
	call := c.client.Go("Plugin.Segment", SegmentRequest{Image: data}, &resp, make(chan *rpc.Call, 1))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-call.Done:
	}
	if call.Error != nil {
		return nil, call.Error
	}

	out, err := DecodePNG(resp.Image)
	if err != nil {
		return nil, err
	}
	return applyOutput(img, out)
}

// EncodePNG encodes img as PNG, preserving alpha.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG decodes a segmented image returned by a plugin.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("plugin returned an invalid PNG: %w", err)
	}
	return img, nil
}
