package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/colour"
)

func newGradientCmd(global *globalOptions) *cobra.Command {
	var (
		steps     int
		direction string
		space     string
		css       bool
		preview   string
	)

	cmd := &cobra.Command{
		Use:   "gradient <from> <to>",
		Short: "Interpolate a gradient between two colours",
		Long: `Produce evenly spaced colours between two endpoints, inclusive.

Blending defaults to linear sRGB. The perceptual spaces lab, hcl and luv give
smoother transitions between very different hues.

Examples:
  swatch gradient '#8b5cf6' '#ec4899' --steps 5
  swatch gradient '#f00' '#00f' --space lab
  swatch gradient '#000' '#fff' --css --direction 'to bottom'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := colour.ParseColour(args[0])
			if err != nil {
				return fmt.Errorf("invalid start colour: %w", err)
			}
			to, err := colour.ParseColour(args[1])
			if err != nil {
				return fmt.Errorf("invalid end colour: %w", err)
			}

			g := colour.Gradient{
				From:      from,
				To:        to,
				Steps:     steps,
				Direction: direction,
				Space:     colour.BlendSpace(space),
			}
			if err := g.Validate(); err != nil {
				return err
			}

			if css {
				return writeOutput(cmd, "", g.CSS()+"\n")
			}

			colours, err := g.Colours()
			if err != nil {
				return err
			}
			verbosef(cmd, global, "Blending %d steps in %s space", steps, space)

			show, err := showPreview(preview, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", formatHexList(colour.NewPalette(colours), show))
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 5, "number of colours including both endpoints")
	cmd.Flags().StringVarP(&direction, "direction", "d", colour.DefaultDirection, "CSS gradient direction ("+strings.Join(colour.ValidDirections(), ", ")+")")
	cmd.Flags().StringVarP(&space, "space", "s", string(colour.BlendRGB), "blend space (rgb, lab, hcl, luv)")
	cmd.Flags().BoolVar(&css, "css", false, "print a CSS linear-gradient instead of the colour steps")
	addPreviewFlag(cmd.Flags(), &preview)

	return cmd
}
