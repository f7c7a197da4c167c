package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/colour"
)

// Output formats for the extract command.
const (
	formatHex   = "hex"
	formatRGB   = "rgb"
	formatJSON  = "json"
	formatTable = "table"
)

func validFormats() []string {
	return []string{formatHex, formatRGB, formatJSON, formatTable}
}

// previewWidth is the swatch width used in terminal output.
const previewWidth = 8

// writeOutput writes content to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// formatPalette formats the palette according to the specified format.
func formatPalette(palette colour.Palette, format string, showPreview bool) (string, error) {
	switch format {
	case formatHex:
		return formatHexList(palette, showPreview), nil
	case formatRGB:
		return formatRGBList(palette, showPreview), nil
	case formatJSON:
		data, err := palette.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(data) + "\n", nil
	case formatTable:
		return formatPaletteTable(palette, showPreview), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(validFormats(), ", "))
	}
}

func formatHexList(palette colour.Palette, showPreview bool) string {
	var b strings.Builder
	for _, c := range palette.All() {
		if showPreview {
			b.WriteString(colour.FormatColourWithPreview(c, previewWidth))
		} else {
			b.WriteString(c.Hex())
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatRGBList(palette colour.Palette, showPreview bool) string {
	var b strings.Builder
	for _, c := range palette.All() {
		if showPreview {
			b.WriteString(colour.ColourPreview(c, previewWidth))
			b.WriteString(" ")
		}
		b.WriteString(c.CSS())
		b.WriteString("\n")
	}
	return b.String()
}

func formatPaletteTable(palette colour.Palette, showPreview bool) string {
	headers := []string{"#", "Hex", "RGB", "Weight", "Text"}
	if showPreview {
		headers = append([]string{"Swatch"}, headers...)
	}

	table := NewTable(headers...)
	for i, c := range palette.All() {
		weight := ""
		if i < len(palette.Weights) {
			weight = fmt.Sprintf("%.1f%%", palette.Weights[i]*100)
		}
		row := []string{fmt.Sprintf("%d", i+1), c.Hex(), c.CSS(), weight, colour.BestTextColour(c)}
		if showPreview {
			row = append([]string{colour.ColourPreviewWithText(c, c.Hex(), previewWidth+2)}, row...)
		}
		table.AddRow(row...)
	}
	return table.Render()
}

// verbosef writes a progress message to stderr when verbose output is on.
func verbosef(cmd *cobra.Command, opts *globalOptions, format string, args ...any) {
	if opts.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
	}
}

// infof writes an informational message to stderr unless quiet.
func infof(cmd *cobra.Command, opts *globalOptions, format string, args ...any) {
	if !opts.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
	}
}

// syncWriter serialises writes from concurrent goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
