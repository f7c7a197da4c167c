package palette

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Saved is a named palette as exchanged in JSON files.
type Saved struct {
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name"`
	Colours []string `json:"colors"`
}

// Export writes hexes as an indented JSON array.
func Export(w io.Writer, hexes []string) error {
	return writeJSON(w, nonNil(hexes))
}

// ExportNamed writes a named palette as a JSON object.
func ExportNamed(w io.Writer, p Saved) error {
	p.Colours = nonNil(p.Colours)
	return writeJSON(w, p)
}

// Import reads a palette written by Export or ExportNamed. Every entry is
// re-validated and canonicalised to #rrggbb; 3-digit forms are expanded.
func Import(r io.Reader) (Saved, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Saved{}, fmt.Errorf("failed to read palette: %w", err)
	}

	var saved Saved
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		if err := json.Unmarshal(trimmed, &saved.Colours); err != nil {
			return Saved{}, fmt.Errorf("failed to parse palette: %w", err)
		}
	case bytes.HasPrefix(trimmed, []byte("{")):
		if err := json.Unmarshal(trimmed, &saved); err != nil {
			return Saved{}, fmt.Errorf("failed to parse palette: %w", err)
		}
	default:
		return Saved{}, fmt.Errorf("failed to parse palette: expected a JSON array or object")
	}

	for i, hex := range saved.Colours {
		canonical, err := canonicalise(hex)
		if err != nil {
			return Saved{}, fmt.Errorf("entry %d (%q): %w", i, hex, err)
		}
		saved.Colours[i] = canonical
	}
	saved.Colours = nonNil(saved.Colours)

	return saved, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write palette: %w", err)
	}
	return nil
}

func nonNil(hexes []string) []string {
	if hexes == nil {
		return []string{}
	}
	return hexes
}
