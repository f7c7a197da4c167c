package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/image"
	"github.com/jmylchreest/swatch/internal/quantize"
	"github.com/jmylchreest/swatch/internal/security"
	"github.com/jmylchreest/swatch/internal/segment"
	"github.com/jmylchreest/swatch/internal/segment/plugin"
	"github.com/jmylchreest/swatch/internal/session"
	"github.com/jmylchreest/swatch/internal/util/imagecache"
	"github.com/jmylchreest/swatch/internal/watch"
)

type extractOptions struct {
	*globalOptions

	colours          int
	algorithm        string
	format           string
	output           string
	preview          string
	maxDimension     int
	timeout          time.Duration
	removeBackground bool
	segmenter        string
	segmenterArgs    []string
	cache            bool
	refreshCache     bool
	allowPrivate     bool
	watch            bool
}

func newExtractCmd(global *globalOptions) *cobra.Command {
	opts := &extractOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "extract <image|url>",
		Short: "Extract a colour palette from an image",
		Long: `Extract a colour palette from an image file or HTTP(S) URL.

Pixels are sampled on a fixed stride, grouped into coarse colour buckets and
ranked by how often each bucket occurs. The result is deterministic: the same
image and colour count always produce the same palette.

With --remove-background the subject is isolated first and only its pixels
are considered. The built-in segmenter flood-fills the border colour; an
external segmenter plugin can be chosen with --segmenter or the
` + plugin.EnvPluginPath + ` environment variable.

Supported image formats: JPEG, PNG, GIF, WebP, BMP, TIFF, AVIF

Examples:
  # Extract 8 colours (default) from an image
  swatch extract wallpaper.jpg

  # Extract 5 colours as JSON
  swatch extract -c 5 -f json wallpaper.jpg

  # Ignore the background of a product shot
  swatch extract --remove-background product.png

  # Use k-means clustering and save to a file
  swatch extract -a kmeans -o palette.txt https://example.com/photo.jpg

  # Print a new palette every time the file is saved
  swatch extract --watch artwork.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	addColourCountFlag(flags, &opts.colours)
	addPreviewFlag(flags, &opts.preview)
	flags.StringVarP(&opts.algorithm, "algorithm", "a", string(quantize.DefaultConfig().Algorithm), "extraction algorithm (bucket, kmeans)")
	flags.StringVarP(&opts.format, "format", "f", formatHex, "output format (hex, rgb, json, table)")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	flags.IntVar(&opts.maxDimension, "max-dimension", 0, "downscale images larger than this before sampling (0 = native size)")
	flags.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "maximum time for the whole extraction")
	flags.BoolVar(&opts.removeBackground, "remove-background", false, "remove the image background before extracting")
	flags.StringVar(&opts.segmenter, "segmenter", os.Getenv(plugin.EnvPluginPath), "path to a segmenter plugin (default: built-in edge segmenter)")
	flags.StringArrayVar(&opts.segmenterArgs, "segmenter-arg", nil, "argument passed to the segmenter plugin (repeatable)")
	flags.BoolVar(&opts.cache, "cache", false, "cache downloaded images on disk")
	flags.BoolVar(&opts.refreshCache, "refresh-cache", false, "redownload a cached image")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "re-extract whenever the image file changes")
	flags.BoolVar(&opts.allowPrivate, "allow-private-hosts", false, "allow image URLs on localhost or private networks")

	return cmd
}

func runExtract(cmd *cobra.Command, opts *extractOptions, source string) error {
	if err := validateColourCount(opts.colours); err != nil {
		return err
	}
	if err := validateChoice("format", opts.format, validFormats()); err != nil {
		return err
	}
	if opts.maxDimension < 0 {
		return fmt.Errorf("--max-dimension cannot be negative")
	}
	if opts.watch && isURL(source) {
		return fmt.Errorf("--watch needs a local file, not a URL")
	}
	withPreview, err := showPreview(opts.preview, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if opts.output != "" || opts.format == formatJSON {
		withPreview = false
	}

	cfg := quantize.Config{
		Algorithm:   quantize.Algorithm(opts.algorithm),
		ColourCount: opts.colours,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	quantizer, err := quantize.New(cfg.Algorithm)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := cmd.Context()
	if opts.watch {
		// Palettes are printed from the session worker while the watcher
		// reports from this goroutine.
		cmd.SetOut(&syncWriter{w: cmd.OutOrStdout()})
		cmd.SetErr(&syncWriter{w: cmd.ErrOrStderr()})

		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
	} else {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	verbosef(cmd, opts.globalOptions, "Loading image: %s", source)
	data, err := loadSource(ctx, opts, source)
	if err != nil {
		return err
	}

	logger := opts.newLogger(cmd.ErrOrStderr())

	pipeline := session.NewPipeline()
	pipeline.Sampler.MaxDimension = opts.maxDimension
	pipeline.Quantizer = quantizer

	if opts.removeBackground {
		seg, name, closeSeg, err := newSegmenter(ctx, opts, logger)
		if err != nil {
			return err
		}
		defer closeSeg()
		pipeline.Segmenter = seg
		pipeline.SegmenterName = name
	}

	notifier := session.NotifierFuncs{
		StateChange: func(state session.State) {
			switch state {
			case session.RemovingBackground:
				verbosef(cmd, opts.globalOptions, "Removing background using %s...", pipeline.SegmenterName)
			case session.Extracting:
				verbosef(cmd, opts.globalOptions, "Extracting %d colours using %s algorithm...", opts.colours, opts.algorithm)
			}
		},
	}
	if opts.watch {
		notifier.Palette = func(_ session.Request, palette colour.Palette) {
			if err := emitPalette(cmd, opts, palette, withPreview); err != nil {
				infof(cmd, opts.globalOptions, "Warning: %v", err)
			}
		}
		notifier.Error = func(kind session.Kind, err error) {
			infof(cmd, opts.globalOptions, "Extraction failed (%s): %v", kind, err)
		}
	}

	sess := session.New(pipeline, session.WithLogger(logger), session.WithNotifier(notifier))
	defer sess.Close()

	request := func(data []byte) session.Request {
		return session.Request{
			Image:            data,
			Name:             source,
			ColourCount:      cfg.ColourCount,
			RemoveBackground: opts.removeBackground,
		}
	}

	if err := sess.Submit(request(data)); err != nil {
		return err
	}

	if opts.watch {
		return watchSource(ctx, cmd, opts, source, func(data []byte) {
			if err := sess.Submit(request(data)); err != nil {
				infof(cmd, opts.globalOptions, "Warning: %v", err)
			}
		})
	}

	snap, err := sess.Wait(ctx)
	if err != nil {
		return fmt.Errorf("extraction did not finish: %w", err)
	}
	if snap.State == session.Failed {
		return fmt.Errorf("%s error: %w", snap.Kind, snap.Err)
	}

	return emitPalette(cmd, opts, snap.Palette, withPreview)
}

// emitPalette formats palette and writes it to the configured output.
func emitPalette(cmd *cobra.Command, opts *extractOptions, palette colour.Palette, showPreview bool) error {
	verbosef(cmd, opts.globalOptions, "Successfully extracted %d colours", palette.Len())
	if palette.Len() < opts.colours {
		infof(cmd, opts.globalOptions, "Image has only %d distinct colour groups", palette.Len())
	}

	out, err := formatPalette(palette, opts.format, showPreview)
	if err != nil {
		return err
	}

	if opts.output != "" {
		verbosef(cmd, opts.globalOptions, "Writing output to: %s", opts.output)
	}
	return writeOutput(cmd, opts.output, out)
}

// watchSource rereads source after every change and hands it to submit
// until ctx ends.
func watchSource(ctx context.Context, cmd *cobra.Command, opts *extractOptions, source string, submit func([]byte)) error {
	w, err := watch.New(source, watch.DefaultDebounce)
	if err != nil {
		return err
	}

	infof(cmd, opts.globalOptions, "Watching %s for changes (Ctrl+C to stop)", source)
	return w.Run(ctx, func() {
		data, err := image.ReadSource(ctx, source)
		if err != nil {
			infof(cmd, opts.globalOptions, "Warning: %v", err)
			return
		}
		verbosef(cmd, opts.globalOptions, "%s changed, extracting again", source)
		submit(data)
	})
}

// loadSource reads the image bytes for a local path or URL.
func loadSource(ctx context.Context, opts *extractOptions, source string) ([]byte, error) {
	if !isURL(source) {
		if err := image.ValidateImagePath(source); err != nil {
			return nil, fmt.Errorf("invalid image path: %w", err)
		}
		data, err := image.ReadSource(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to load image: %w", err)
		}
		return data, nil
	}

	if err := security.ValidateHTTPURL(source, opts.allowPrivate); err != nil {
		return nil, fmt.Errorf("invalid image URL: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if opts.cache || opts.refreshCache {
		data, err = imagecache.Load(ctx, source, imagecache.Options{Refresh: opts.refreshCache})
	} else {
		data, err = image.ReadSource(ctx, source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return data, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// newSegmenter returns the plugin segmenter when one is configured, or the
// built-in edge segmenter.
func newSegmenter(ctx context.Context, opts *extractOptions, logger hclog.Logger) (segment.Segmenter, string, func(), error) {
	path := strings.TrimSpace(opts.segmenter)
	if path == "" {
		return segment.NewEdgeSegmenter(), "edge", func() {}, nil
	}
	if err := security.ValidatePluginPath(path); err != nil {
		return nil, "", nil, fmt.Errorf("invalid segmenter plugin: %w", err)
	}

	executor, err := plugin.New(ctx, plugin.Config{
		Path:    path,
		Args:    opts.segmenterArgs,
		Verbose: opts.verbose,
	})
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to load segmenter plugin: %w", err)
	}
	logger.Debug("segmenter plugin loaded", "name", executor.Name(), "protocol", executor.Protocol())

	return executor, executor.Name(), executor.Close, nil
}
