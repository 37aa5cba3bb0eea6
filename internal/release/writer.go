package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"repackhub/pkg/models"
)

// tagTables drives the dimension upsert + association insert per tag flavor.
var tagTables = []struct {
	dimension   string
	association string
	column      string
}{
	{"genres", "release_genre", "genre"},
	{"companies", "release_company", "company"},
	{"languages", "release_language", "language"},
}

// Insert persists one parsed release and its tag associations as a single
// transaction: dimension rows are created if absent, the release row is
// inserted with a fresh id, association rows link the two. Any failure rolls
// the whole release back. Returns the assigned id.
func (r *Repo) Insert(ctx context.Context, p *models.Parsed) (string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	tags := [][]string{p.Genres, p.Companies, p.Languages}

	for i, tt := range tagTables {
		stmt, err := tx.PrepareContext(ctx,
			fmt.Sprintf(`INSERT OR IGNORE INTO %s (value) VALUES (?)`, tt.dimension))
		if err != nil {
			return "", fmt.Errorf("prepare %s: %w", tt.dimension, err)
		}
		for _, v := range tags[i] {
			if _, err := stmt.ExecContext(ctx, v); err != nil {
				stmt.Close()
				return "", fmt.Errorf("upsert %s %q: %w", tt.dimension, v, err)
			}
		}
		stmt.Close()
	}

	id := uuid.NewString()

	mirrorsJSON, err := marshalList(p.Release.Mirrors)
	if err != nil {
		return "", fmt.Errorf("marshal mirrors: %w", err)
	}
	screenshotsJSON, err := marshalList(p.Release.Screenshots)
	if err != nil {
		return "", fmt.Errorf("marshal screenshots: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO releases (`+releaseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		p.Release.Title,
		p.Release.Link,
		p.Release.Published.UTC().Format(PublishedLayout),
		p.Release.CoverSrc,
		p.Release.OriginalSize,
		p.Release.RepackSize,
		mirrorsJSON,
		screenshotsJSON,
		p.Release.RepackDescription,
		p.Release.GameDescription,
	); err != nil {
		return "", fmt.Errorf("insert release %q: %w", p.Release.Title, err)
	}

	for i, tt := range tagTables {
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
			`INSERT OR IGNORE INTO %s (release_id, %s) VALUES (?, ?)`,
			tt.association, tt.column))
		if err != nil {
			return "", fmt.Errorf("prepare %s: %w", tt.association, err)
		}
		for _, v := range tags[i] {
			if _, err := stmt.ExecContext(ctx, id, v); err != nil {
				stmt.Close()
				return "", fmt.Errorf("link %s %q: %w", tt.association, v, err)
			}
		}
		stmt.Close()
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit release %q: %w", p.Release.Title, err)
	}
	return id, nil
}

// IsDuplicateLink reports whether err is the UNIQUE(link) constraint firing,
// i.e. the release is already cataloged under the same canonical link.
func IsDuplicateLink(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// marshalList serializes a slice column, storing [] rather than null for
// empty collections.
func marshalList(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	s := string(b)
	if s == "null" {
		s = "[]"
	}
	return s, nil
}
