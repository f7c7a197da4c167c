package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/colour"
)

// harmonyEntry is one row of harmony output.
type harmonyEntry struct {
	Harmony string     `json:"harmony"`
	HSL     colour.HSL `json:"hsl"`
	Hex     string     `json:"hex"`
}

func newHarmonyCmd(global *globalOptions) *cobra.Command {
	var (
		kind    string
		format  string
		preview string
	)

	cmd := &cobra.Command{
		Use:   "harmony <colour>",
		Short: "Generate colour harmonies from a base colour",
		Long: `Rotate the hue of a base colour to produce its complementary, analogous,
triadic and split-complementary variants. Saturation and lightness are kept.

Examples:
  swatch harmony '#ff0000'
  swatch harmony --type triadic 'hsl(258, 90%, 66%)'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := colour.ParseColour(args[0])
			if err != nil {
				return err
			}

			kinds := colour.ValidHarmonies()
			if kind != "" {
				h, err := colour.ParseHarmony(kind)
				if err != nil {
					return err
				}
				kinds = []colour.Harmony{h}
			}

			entries := harmonies(base.HSL(), kinds)
			verbosef(cmd, global, "Generated %d variants of %s", len(entries)-1, base.Hex())

			switch format {
			case formatJSON:
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to convert to JSON: %w", err)
				}
				return writeOutput(cmd, "", string(data)+"\n")
			case formatTable:
				show, err := showPreview(preview, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				return writeOutput(cmd, "", formatHarmonyTable(entries, show))
			default:
				return fmt.Errorf("unsupported format: %s (supported: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", "", "only this harmony (complementary, analogous, triadic, split-complementary)")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table, json)")
	addPreviewFlag(cmd.Flags(), &preview)

	return cmd
}

// harmonies returns the base colour followed by the variants of each kind.
func harmonies(base colour.HSL, kinds []colour.Harmony) []harmonyEntry {
	entries := []harmonyEntry{{Harmony: "base", HSL: base, Hex: base.Hex()}}
	for _, k := range kinds {
		for _, v := range colour.Harmonize(base, k) {
			entries = append(entries, harmonyEntry{Harmony: string(k), HSL: v, Hex: v.Hex()})
		}
	}
	return entries
}

func formatHarmonyTable(entries []harmonyEntry, showPreview bool) string {
	headers := []string{"Harmony", "Hue", "Hex", "HSL"}
	if showPreview {
		headers = append(headers, "Swatch")
	}

	table := NewTable(headers...)
	for _, e := range entries {
		row := []string{e.Harmony, strconv.Itoa(e.HSL.H), e.Hex, e.HSL.String()}
		if showPreview {
			row = append(row, colour.ColourPreview(e.HSL.RGB(), previewWidth))
		}
		table.AddRow(row...)
	}
	return table.Render()
}
