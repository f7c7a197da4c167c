package palette

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Register the sqlite driver
)

// EnvStorePath names the environment variable overriding the palette library location.
const EnvStorePath = "SWATCH_PALETTE_DB"

var (
	// ErrNotFound is returned when no saved palette matches.
	ErrNotFound = errors.New("palette not found")

	// ErrNameTaken is returned when saving under a name already in use.
	ErrNameTaken = errors.New("palette name already in use")
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a library of named palettes backed by sqlite.
type Store struct {
	db *sql.DB
}

// DefaultStorePath returns the palette library path, honouring EnvStorePath.
func DefaultStorePath() (string, error) {
	if p := os.Getenv(EnvStorePath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	return filepath.Join(dir, "swatch", "palettes.db"), nil
}

// OpenStore opens or creates the palette library at path and applies migrations.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", pragma, err)
		}
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores p under its name and returns it with the assigned ID.
// Colours are re-validated and canonicalised.
func (s *Store) Save(ctx context.Context, p Saved) (Saved, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Saved{}, fmt.Errorf("palette name cannot be empty")
	}

	colours := make([]string, len(p.Colours))
	for i, hex := range p.Colours {
		canonical, err := canonicalise(hex)
		if err != nil {
			return Saved{}, fmt.Errorf("entry %d (%q): %w", i, hex, err)
		}
		colours[i] = canonical
	}
	p.Colours = colours

	encoded, err := json.Marshal(p.Colours)
	if err != nil {
		return Saved{}, fmt.Errorf("encode colours: %w", err)
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM palettes WHERE name = ?", p.Name).Scan(&exists); err != nil {
		return Saved{}, fmt.Errorf("check palette name: %w", err)
	}
	if exists > 0 {
		return Saved{}, fmt.Errorf("%w: %s", ErrNameTaken, p.Name)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO palettes(name, colors, created_at) VALUES (?, ?, ?)",
		p.Name, string(encoded), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return Saved{}, fmt.Errorf("insert palette: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Saved{}, fmt.Errorf("read palette id: %w", err)
	}
	p.ID = strconv.FormatInt(id, 10)

	return p, nil
}

// List returns every saved palette, oldest first.
func (s *Store) List(ctx context.Context) ([]Saved, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, colors FROM palettes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list palettes: %w", err)
	}
	defer rows.Close()

	var out []Saved
	for rows.Next() {
		p, err := scanSaved(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list palettes: %w", err)
	}
	return out, nil
}

// Get returns the palette whose ID or name is ref.
func (s *Store) Get(ctx context.Context, ref string) (Saved, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, colors FROM palettes WHERE CAST(id AS TEXT) = ? OR name = ? ORDER BY id LIMIT 1",
		ref, ref,
	)
	p, err := scanSaved(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Saved{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return p, err
}

// Delete removes the palette whose ID or name is ref.
func (s *Store) Delete(ctx context.Context, ref string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM palettes WHERE CAST(id AS TEXT) = ? OR name = ?", ref, ref)
	if err != nil {
		return fmt.Errorf("delete palette: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete palette: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSaved(row scanner) (Saved, error) {
	var (
		id      int64
		p       Saved
		encoded string
	)
	if err := row.Scan(&id, &p.Name, &encoded); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Saved{}, err
		}
		return Saved{}, fmt.Errorf("read palette: %w", err)
	}
	if err := json.Unmarshal([]byte(encoded), &p.Colours); err != nil {
		return Saved{}, fmt.Errorf("decode colours of %s: %w", p.Name, err)
	}
	p.ID = strconv.FormatInt(id, 10)
	p.Colours = nonNil(p.Colours)
	return p, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(entries)

	for _, name := range entries {
		var applied int
		if err := db.QueryRow("SELECT COUNT(1) FROM schema_migrations WHERE name = ?", name).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied > 0 {
			continue
		}

		body, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("start migration tx %s: %w", name, err)
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations(name, applied_at) VALUES (?, ?)",
			name, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}

	return nil
}
