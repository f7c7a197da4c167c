package palette

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func TestCuratedAdd(t *testing.T) {
	c := &Curated{}

	steps := []struct {
		hex     string
		wantErr error
		want    []string
	}{
		{hex: "#8B5CF6", want: []string{"#8b5cf6"}},
		{hex: "ec4899", want: []string{"#ec4899", "#8b5cf6"}},
		{hex: "#8b5cf6", wantErr: ErrDuplicate, want: []string{"#ec4899", "#8b5cf6"}},
		{hex: "#fff", want: []string{"#ffffff", "#ec4899", "#8b5cf6"}},
		{hex: "#ffffff", wantErr: ErrDuplicate, want: []string{"#ffffff", "#ec4899", "#8b5cf6"}},
		{hex: "purple", wantErr: ErrInvalidColour, want: []string{"#ffffff", "#ec4899", "#8b5cf6"}},
	}

	for _, step := range steps {
		err := c.Add(step.hex)
		if !errors.Is(err, step.wantErr) {
			t.Errorf("Add(%q) error = %v, want %v", step.hex, err, step.wantErr)
		}
		if got := c.Colours(); !slices.Equal(got, step.want) {
			t.Errorf("after Add(%q) = %v, want %v", step.hex, got, step.want)
		}
	}
}

func TestCuratedFull(t *testing.T) {
	c := &Curated{}
	for i := range MaxColours {
		if err := c.Add(fmt.Sprintf("#0000%02x", i)); err != nil {
			t.Fatalf("Add(%d) error = %v", i, err)
		}
	}

	if err := c.Add("#ff0000"); !errors.Is(err, ErrFull) {
		t.Errorf("Add() on full palette error = %v, want ErrFull", err)
	}
	if err := c.Add("#000000"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Add(duplicate) on full palette error = %v, want ErrDuplicate", err)
	}
	if c.Len() != MaxColours {
		t.Errorf("Len() = %d, want %d", c.Len(), MaxColours)
	}
	if c.Colours()[0] != "#00000b" {
		t.Errorf("newest colour = %s, want #00000b", c.Colours()[0])
	}
}

func TestCuratedRemove(t *testing.T) {
	c := NewCurated("#111111", "#222222", "#333333")

	if !c.Remove("#222") {
		t.Fatal("Remove(#222) = false")
	}
	if got := c.Colours(); !slices.Equal(got, []string{"#333333", "#111111"}) {
		t.Errorf("Colours() = %v", got)
	}
	if c.Remove("#222222") {
		t.Error("Remove() of absent colour = true")
	}
	if c.Remove("bogus") {
		t.Error("Remove(bogus) = true")
	}
	if !c.Contains("#333") {
		t.Error("Contains(#333) = false")
	}
}

func TestCuratedColoursIsCopy(t *testing.T) {
	c := NewCurated("#abcdef")
	got := c.Colours()
	got[0] = "#000000"
	if c.Colours()[0] != "#abcdef" {
		t.Error("Colours() exposed internal state")
	}
}

func TestNewCuratedSkipsInvalid(t *testing.T) {
	c := NewCurated("#abc", "nope", "#aabbcc", "#123456")
	if got := c.Colours(); !slices.Equal(got, []string{"#123456", "#aabbcc"}) {
		t.Errorf("NewCurated() = %v", got)
	}
}
