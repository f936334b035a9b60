// Package prefs persists per-user image generation preferences in a local
// SQLite database.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// Defaults applied when a user has never saved preferences.
const (
	DefaultStyle   = "renaissance"
	DefaultQuality = "low"
)

var validStyles = map[string]bool{"renaissance": true, "abstract": true, "modern": true}
var validQualities = map[string]bool{"low": true, "medium": true, "high": true}

// ErrInvalidPreference is returned for styles or qualities outside the
// supported sets.
var ErrInvalidPreference = errors.New("invalid preference")

// Preferences are the stored image settings for one user.
type Preferences struct {
	Style   string `json:"style"`
	Quality string `json:"quality"`
}

// Store reads and writes preferences.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the preferences database at path. An empty path
// uses a shared in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open prefs db: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS image_prefs (
            email   TEXT PRIMARY KEY,
            style   TEXT NOT NULL,
            quality TEXT NOT NULL
        )
    `)
	return err
}

// Get returns the user's preferences, falling back to defaults when unset.
func (s *Store) Get(ctx context.Context, email string) (Preferences, error) {
	p := Preferences{Style: DefaultStyle, Quality: DefaultQuality}
	row := s.db.QueryRowContext(ctx, `SELECT style, quality FROM image_prefs WHERE email=?`, email)
	err := row.Scan(&p.Style, &p.Quality)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return p, err
	}
	return p, nil
}

// SetStyle validates and stores the user's image style.
func (s *Store) SetStyle(ctx context.Context, email, style string) error {
	if !validStyles[style] {
		return fmt.Errorf("%w: style %q", ErrInvalidPreference, style)
	}
	return s.upsert(ctx, email, func(p *Preferences) { p.Style = style })
}

// SetQuality validates and stores the user's image quality.
func (s *Store) SetQuality(ctx context.Context, email, quality string) error {
	if !validQualities[quality] {
		return fmt.Errorf("%w: quality %q", ErrInvalidPreference, quality)
	}
	return s.upsert(ctx, email, func(p *Preferences) { p.Quality = quality })
}

func (s *Store) upsert(ctx context.Context, email string, apply func(*Preferences)) error {
	p, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	apply(&p)
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO image_prefs (email, style, quality) VALUES (?,?,?)
        ON CONFLICT(email) DO UPDATE SET style=excluded.style, quality=excluded.quality
    `, email, p.Style, p.Quality)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error { return s.db.PingContext(ctx) }
