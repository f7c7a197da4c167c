package palette

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "nested", "palettes.db"))
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, Saved{Name: " sunset ", Colours: []string{"#FF5E3A", "f90"}})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID == "" || saved.Name != "sunset" {
		t.Errorf("Save() = %+v", saved)
	}
	want := []string{"#ff5e3a", "#ff9900"}
	if !slices.Equal(saved.Colours, want) {
		t.Errorf("Save() colours = %v, want %v", saved.Colours, want)
	}

	for _, ref := range []string{saved.ID, "sunset"} {
		got, err := s.Get(ctx, ref)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", ref, err)
		}
		if got.ID != saved.ID || !slices.Equal(got.Colours, want) {
			t.Errorf("Get(%q) = %+v", ref, got)
		}
	}
}

func TestStoreSaveErrors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Save(ctx, Saved{Name: "ok", Colours: []string{"#000"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	tests := []struct {
		name    string
		p       Saved
		wantErr error
	}{
		{name: "duplicate name", p: Saved{Name: "ok"}, wantErr: ErrNameTaken},
		{name: "invalid colour", p: Saved{Name: "bad", Colours: []string{"nope"}}, wantErr: ErrInvalidColour},
		{name: "empty name", p: Saved{Name: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Save(ctx, tt.p)
			if err == nil {
				t.Fatal("Save() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Save() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStoreListAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	empty, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("List() on a new store = %v", empty)
	}

	for _, name := range []string{"first", "second", "third"} {
		if _, err := s.Save(ctx, Saved{Name: name, Colours: []string{"#123456"}}); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
	}

	if err := s.Delete(ctx, "second"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "second"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, "second"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var names []string
	for _, p := range all {
		names = append(names, p.Name)
	}
	if !slices.Equal(names, []string{"first", "third"}) {
		t.Errorf("List() names = %v", names)
	}
}

func TestStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palettes.db")
	ctx := context.Background()

	s, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	if _, err := s.Save(ctx, Saved{Name: "kept", Colours: []string{"#abcdef"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	_ = s.Close()

	s, err = OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore() again error = %v", err)
	}
	defer s.Close()

	got, err := s.Get(ctx, "kept")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !slices.Equal(got.Colours, []string{"#abcdef"}) {
		t.Errorf("Get() = %+v", got)
	}
}

func TestDefaultStorePathEnv(t *testing.T) {
	t.Setenv(EnvStorePath, "/tmp/custom.db")
	got, err := DefaultStorePath()
	if err != nil || got != "/tmp/custom.db" {
		t.Errorf("DefaultStorePath() = %q, %v", got, err)
	}
}
