package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/colour"
)

func newContrastCmd(global *globalOptions) *cobra.Command {
	var require string

	cmd := &cobra.Command{
		Use:   "contrast <foreground> <background>",
		Short: "Check the WCAG contrast ratio between two colours",
		Long: `Compute the WCAG 2.0 contrast ratio between two colours and report which
conformance levels it meets.

With --require the command fails when the pair does not reach the given
level for normal text, which makes it usable in scripts.

Examples:
  swatch contrast '#ffffff' '#8b5cf6'
  swatch contrast --require AA '#333' '#f5f5f5'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fg, err := colour.ParseColour(args[0])
			if err != nil {
				return fmt.Errorf("invalid foreground: %w", err)
			}
			bg, err := colour.ParseColour(args[1])
			if err != nil {
				return fmt.Errorf("invalid background: %w", err)
			}

			ratio := colour.ContrastRatio(fg, bg)
			level := colour.WCAGLevel(ratio)

			if !global.quiet {
				if err := writeOutput(cmd, "", formatContrast(fg, bg, ratio, level)); err != nil {
					return err
				}
			}

			return checkRequiredLevel(require, ratio)
		},
	}

	cmd.Flags().StringVar(&require, "require", "", "fail unless normal text meets this level (AA, AAA)")

	return cmd
}

func formatContrast(fg, bg colour.RGB, ratio float64, level colour.ContrastLevel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Foreground:  %s\n", fg.Hex())
	fmt.Fprintf(&b, "Background:  %s\n", bg.Hex())
	fmt.Fprintf(&b, "Ratio:       %.2f:1\n", ratio)
	fmt.Fprintf(&b, "Level:       %s\n\n", level)

	table := NewTable("Text", "AA", "AAA")
	table.AddRow("normal", passFail(ratio >= colour.ContrastAA), passFail(ratio >= colour.ContrastAAA))
	table.AddRow("large", passFail(ratio >= colour.ContrastAALarge), passFail(ratio >= colour.ContrastAA))
	b.WriteString(table.Render())

	return b.String()
}

func checkRequiredLevel(require string, ratio float64) error {
	var threshold float64
	switch strings.ToUpper(require) {
	case "":
		return nil
	case "AA":
		threshold = colour.ContrastAA
	case "AAA":
		threshold = colour.ContrastAAA
	default:
		return fmt.Errorf("invalid --require %q (valid: AA, AAA)", require)
	}

	if ratio < threshold {
		return fmt.Errorf("contrast %.2f:1 is below %s (%.1f:1)", ratio, strings.ToUpper(require), threshold)
	}
	return nil
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}
