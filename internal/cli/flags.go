package cli

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/jmylchreest/swatch/internal/quantize"
)

const (
	// minColourCount and maxColourCount bound the --colours flag.
	minColourCount = 2
	maxColourCount = 16
)

// Preview modes for --preview.
const (
	previewAuto   = "auto"
	previewAlways = "always"
	previewNever  = "never"
)

// addColourCountFlag registers --colours/-c on fs.
func addColourCountFlag(fs *pflag.FlagSet, p *int) {
	fs.IntVarP(p, "colours", "c", quantize.DefaultConfig().ColourCount,
		fmt.Sprintf("number of colours to extract (%d-%d)", minColourCount, maxColourCount))
}

// addPreviewFlag registers --preview on fs.
func addPreviewFlag(fs *pflag.FlagSet, p *string) {
	fs.StringVar(p, "preview", previewAuto, "show colour swatches in the terminal (auto, always, never)")
}

// validateColourCount checks n against the supported range.
func validateColourCount(n int) error {
	if n < minColourCount || n > maxColourCount {
		return fmt.Errorf("colour count must be between %d and %d, got %d", minColourCount, maxColourCount, n)
	}
	return nil
}

// validateChoice checks that value is one of valid.
func validateChoice(flag, value string, valid []string) error {
	if !slices.Contains(valid, value) {
		return fmt.Errorf("invalid --%s %q (valid: %v)", flag, value, valid)
	}
	return nil
}

// showPreview resolves a --preview mode for w. In auto mode previews are
// shown only when w is a terminal.
func showPreview(mode string, w io.Writer) (bool, error) {
	switch mode {
	case previewAlways:
		return true, nil
	case previewNever:
		return false, nil
	case previewAuto, "":
		return isTerminal(w), nil
	default:
		return false, fmt.Errorf("invalid --preview %q (valid: auto, always, never)", mode)
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
