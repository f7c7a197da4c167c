package cli

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/segment"
	"github.com/jmylchreest/swatch/internal/segment/plugin"
	"github.com/jmylchreest/swatch/internal/version"
)

func newSegmenterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "segmenter",
		Short:  "Background segmenter plugin commands",
		Hidden: true,
	}

	cmd.AddCommand(newSegmenterServeCmd())

	return cmd
}

func newSegmenterServeCmd() *cobra.Command {
	var info bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built-in edge segmenter as a plugin",
		Long: `Run the built-in edge segmenter as a go-plugin server. This is started by
swatch itself when --segmenter points at the swatch binary with the
"segmenter serve" arguments, and is mainly useful for testing plugin hosts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if info {
				return plugin.WriteInfo(cmd.OutOrStdout(), plugin.PluginInfo{
					Name:        "edge",
					Version:     version.Short(),
					Description: "Flood-fills the border colour to isolate the subject",
				})
			}
			plugin.Serve(segment.NewEdgeSegmenter())
			return nil
		},
	}

	cmd.Flags().BoolVar(&info, "plugin-info", false, "print plugin metadata as JSON and exit")

	return cmd
}
