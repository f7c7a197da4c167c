package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/colour"
)

// colourInfo is the JSON form of the convert command.
type colourInfo struct {
	Hex      string             `json:"hex"`
	RGB      string             `json:"rgb"`
	HSL      colour.HSL         `json:"hsl"`
	Text     string             `json:"text"`
	Contrast map[string]float64 `json:"contrast"`
}

func newConvertCmd(global *globalOptions) *cobra.Command {
	var (
		format  string
		preview string
	)

	cmd := &cobra.Command{
		Use:   "convert <colour>",
		Short: "Show a colour as hex, RGB and HSL",
		Long: `Convert a colour between notations and report its contrast against
black and white text.

The colour may be given as hex (#rgb or #rrggbb, '#' optional),
rgb(r,g,b) or hsl(h,s%,l%).

Examples:
  swatch convert '#8b5cf6'
  swatch convert 'hsl(258, 90%, 66%)' -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := colour.ParseColour(args[0])
			if err != nil {
				return err
			}

			info := colourInfo{
				Hex:  c.Hex(),
				RGB:  c.CSS(),
				HSL:  c.HSL(),
				Text: colour.BestTextColour(c),
				Contrast: map[string]float64{
					"white": round2(colour.ContrastRatio(c, colour.White)),
					"black": round2(colour.ContrastRatio(c, colour.Black)),
				},
			}

			switch format {
			case formatJSON:
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to convert to JSON: %w", err)
				}
				return writeOutput(cmd, "", string(data)+"\n")
			case "text":
				show, err := showPreview(preview, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				verbosef(cmd, global, "Parsed %q as %s", args[0], info.Hex)
				return writeOutput(cmd, "", formatColourInfo(c, info, show))
			default:
				return fmt.Errorf("unsupported format: %s (supported: text, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	addPreviewFlag(cmd.Flags(), &preview)

	return cmd
}

func formatColourInfo(c colour.RGB, info colourInfo, showPreview bool) string {
	var b strings.Builder
	if showPreview {
		fmt.Fprintf(&b, "%s\n", colour.ColourPreviewWithText(c, info.Hex, 16))
	}
	fmt.Fprintf(&b, "Hex:   %s\n", info.Hex)
	fmt.Fprintf(&b, "RGB:   %s\n", info.RGB)
	fmt.Fprintf(&b, "HSL:   %s\n", info.HSL)
	fmt.Fprintf(&b, "Text:  %s\n", info.Text)
	fmt.Fprintf(&b, "Contrast vs white:  %.2f:1 (%s)\n", info.Contrast["white"], colour.WCAGLevel(colour.ContrastRatio(c, colour.White)))
	fmt.Fprintf(&b, "Contrast vs black:  %.2f:1 (%s)\n", info.Contrast["black"], colour.WCAGLevel(colour.ContrastRatio(c, colour.Black)))
	return b.String()
}

// round2 rounds v to two decimal places.
func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
