package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/palette"
)

func newPaletteCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Build, export and import curated palettes",
		Long: fmt.Sprintf(`Curated palettes are ordered lists of up to %d hex colours, newest first,
exchanged as JSON. A bare JSON array of hex strings and a named object
({"name": ..., "colors": [...]}) are both accepted on import.

Named palettes can also be kept in a local library with save, list, show
and delete.`, palette.MaxColours),
	}

	var dbPath string
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "palette library file (default: $"+palette.EnvStorePath+" or the user config dir)")

	cmd.AddCommand(
		newPaletteExportCmd(global),
		newPaletteImportCmd(global),
		newPaletteSaveCmd(global, &dbPath),
		newPaletteListCmd(global, &dbPath),
		newPaletteShowCmd(global, &dbPath),
		newPaletteDeleteCmd(global, &dbPath),
	)

	return cmd
}

func newPaletteExportCmd(global *globalOptions) *cobra.Command {
	var (
		name   string
		id     string
		output string
		remove []string
	)

	cmd := &cobra.Command{
		Use:   "export <colour>...",
		Short: "Write colours as a palette JSON file",
		Long: `Collect colours into a curated palette and write it as JSON.

Colours are added in the order given, so the last one ends up first.
Duplicates and colours beyond the palette capacity are skipped with a warning.

Examples:
  swatch palette export '#8b5cf6' '#ec4899' '#f59e0b'
  swatch palette export --name sunset -o sunset.json '#ff5e3a' '#ff9500'
  swatch palette export --remove '#ec4899' '#8b5cf6' '#ec4899' '#f59e0b'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			curated, err := curate(cmd, global, args, remove)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if name != "" || id != "" {
				err = palette.ExportNamed(&buf, palette.Saved{ID: id, Name: name, Colours: curated.Colours()})
			} else {
				err = palette.Export(&buf, curated.Colours())
			}
			if err != nil {
				return err
			}

			if output != "" {
				verbosef(cmd, global, "Writing %d colours to: %s", curated.Len(), output)
			}
			return writeOutput(cmd, output, buf.String())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "palette name (writes a named palette object)")
	cmd.Flags().StringVar(&id, "id", "", "palette identifier (writes a named palette object)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringArrayVar(&remove, "remove", nil, "colour to drop from the palette after adding (repeatable)")

	return cmd
}

// curate adds args to a new curated palette, then drops every colour in
// remove. Skipped entries are reported as warnings.
func curate(cmd *cobra.Command, global *globalOptions, args, remove []string) (*palette.Curated, error) {
	curated := palette.NewCurated()
	for _, arg := range args {
		c, err := colour.ParseColour(arg)
		if err != nil {
			return nil, err
		}

		switch err := curated.Add(c.Hex()); {
		case err == nil:
		case errors.Is(err, palette.ErrDuplicate):
			infof(cmd, global, "Warning: %s is already in the palette, skipping", c.Hex())
		case errors.Is(err, palette.ErrFull):
			infof(cmd, global, "Warning: palette is full (%d colours), skipping %s", palette.MaxColours, c.Hex())
		default:
			return nil, err
		}
	}

	for _, arg := range remove {
		c, err := colour.ParseColour(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid --remove: %w", err)
		}
		if !curated.Contains(c.Hex()) {
			infof(cmd, global, "Warning: %s is not in the palette, nothing to remove", c.Hex())
			continue
		}
		curated.Remove(c.Hex())
		verbosef(cmd, global, "Removed %s", c.Hex())
	}
	return curated, nil
}

func newPaletteImportCmd(global *globalOptions) *cobra.Command {
	var (
		format  string
		preview string
	)

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Read and validate a palette JSON file",
		Long: `Read a palette file, validate every entry and print its colours.
Use '-' to read from stdin.

Examples:
  swatch palette import sunset.json
  cat sunset.json | swatch palette import - -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			saved, err := palette.Import(r)
			if err != nil {
				return fmt.Errorf("invalid palette %s: %w", args[0], err)
			}
			if len(saved.Colours) > palette.MaxColours {
				infof(cmd, global, "Warning: palette has %d colours, more than the curated limit of %d", len(saved.Colours), palette.MaxColours)
			}

			switch format {
			case formatJSON:
				var buf bytes.Buffer
				if err := palette.ExportNamed(&buf, saved); err != nil {
					return err
				}
				return writeOutput(cmd, "", buf.String())
			case formatHex:
				show, err := showPreview(preview, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if saved.Name != "" {
					verbosef(cmd, global, "Palette: %s", saved.Name)
				}
				colours := make([]colour.RGB, 0, len(saved.Colours))
				for _, hex := range saved.Colours {
					c, _ := colour.ParseHex(hex)
					colours = append(colours, c)
				}
				return writeOutput(cmd, "", formatHexList(colour.NewPalette(colours), show))
			default:
				return fmt.Errorf("unsupported format: %s (supported: hex, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatHex, "output format (hex, json)")
	addPreviewFlag(cmd.Flags(), &preview)

	return cmd
}

// openInput opens path for reading, treating "-" as the command's stdin.
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path) // #nosec G304 -- user-specified palette file
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open palette: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// openStore opens the palette library at path or the default location.
func openStore(cmd *cobra.Command, global *globalOptions, path string) (*palette.Store, error) {
	if path == "" {
		p, err := palette.DefaultStorePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	verbosef(cmd, global, "Using palette library: %s", path)

	store, err := palette.OpenStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open palette library: %w", err)
	}
	return store, nil
}

func newPaletteSaveCmd(global *globalOptions, dbPath *string) *cobra.Command {
	var (
		name string
		from string
	)

	cmd := &cobra.Command{
		Use:   "save --name <name> [colour...]",
		Short: "Save a named palette to the library",
		Long: `Save colours to the palette library under a unique name. Colours come from
the arguments, or from a palette file with --from.

Examples:
  swatch palette save --name sunset '#ff5e3a' '#ff9500'
  swatch palette save --name brand --from brand.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var colours []string
			switch {
			case from != "" && len(args) > 0:
				return fmt.Errorf("give colours as arguments or --from, not both")
			case from != "":
				r, closeFn, err := openInput(cmd, from)
				if err != nil {
					return err
				}
				defer closeFn()
				imported, err := palette.Import(r)
				if err != nil {
					return fmt.Errorf("invalid palette %s: %w", from, err)
				}
				colours = imported.Colours
			case len(args) > 0:
				curated, err := curate(cmd, global, args, nil)
				if err != nil {
					return err
				}
				colours = curated.Colours()
			default:
				return fmt.Errorf("no colours given")
			}

			store, err := openStore(cmd, global, *dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			saved, err := store.Save(cmd.Context(), palette.Saved{Name: name, Colours: colours})
			if err != nil {
				return err
			}
			infof(cmd, global, "Saved palette %q (id %s, %d colours)", saved.Name, saved.ID, len(saved.Colours))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "palette name (required)")
	cmd.Flags().StringVar(&from, "from", "", "read colours from a palette JSON file ('-' for stdin)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPaletteListCmd(global *globalOptions, dbPath *string) *cobra.Command {
	var preview string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd, global, *dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			saved, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(saved) == 0 {
				infof(cmd, global, "No saved palettes")
				return nil
			}

			show, err := showPreview(preview, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			table := NewTable("ID", "Name", "Colours")
			for _, p := range saved {
				table.AddRow(p.ID, p.Name, formatSwatchRow(p.Colours, show))
			}
			return writeOutput(cmd, "", table.Render())
		},
	}

	addPreviewFlag(cmd.Flags(), &preview)

	return cmd
}

// formatSwatchRow joins hexes, or renders them as adjacent swatches.
func formatSwatchRow(hexes []string, showPreview bool) string {
	if !showPreview {
		return strings.Join(hexes, " ")
	}
	var b strings.Builder
	for _, hex := range hexes {
		c, _ := colour.ParseHex(hex)
		b.WriteString(colour.ColourPreview(c, 3))
	}
	return b.String()
}

func newPaletteShowCmd(global *globalOptions, dbPath *string) *cobra.Command {
	var (
		format  string
		preview string
	)

	cmd := &cobra.Command{
		Use:   "show <id|name>",
		Short: "Print a saved palette",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd, global, *dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			saved, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			switch format {
			case formatJSON:
				var buf bytes.Buffer
				if err := palette.ExportNamed(&buf, saved); err != nil {
					return err
				}
				return writeOutput(cmd, "", buf.String())
			case formatHex:
				show, err := showPreview(preview, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				colours := make([]colour.RGB, 0, len(saved.Colours))
				for _, hex := range saved.Colours {
					c, _ := colour.ParseHex(hex)
					colours = append(colours, c)
				}
				return writeOutput(cmd, "", formatHexList(colour.NewPalette(colours), show))
			default:
				return fmt.Errorf("unsupported format: %s (supported: hex, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatHex, "output format (hex, json)")
	addPreviewFlag(cmd.Flags(), &preview)

	return cmd
}

func newPaletteDeleteCmd(global *globalOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a saved palette",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd, global, *dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			infof(cmd, global, "Deleted palette %s", args[0])
			return nil
		},
	}
}
