// Package cli provides the command-line interface for swatch.
package cli

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/version"
)

// globalOptions holds flags shared by every command.
type globalOptions struct {
	verbose bool
	quiet   bool
}

// NewRootCmd builds the swatch command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "swatch",
		Short: "Extract colour palettes from images",
		Long: `swatch extracts a small palette of representative colours from an image
and provides the colour maths around it: hex/RGB/HSL conversion, WCAG
contrast, colour harmonies and gradients.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(
		newVersionCmd(),
		newExtractCmd(opts),
		newConvertCmd(opts),
		newContrastCmd(opts),
		newHarmonyCmd(opts),
		newGradientCmd(opts),
		newPaletteCmd(opts),
		newSegmenterCmd(),
	)

	return rootCmd
}

// newLogger returns the structured logger for a command run.
func (o *globalOptions) newLogger(w io.Writer) hclog.Logger {
	level := hclog.Warn
	switch {
	case o.verbose:
		level = hclog.Debug
	case o.quiet:
		level = hclog.Error
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "swatch",
		Output: w,
		Level:  level,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
