package release

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"repackhub/pkg/models"
)

// PublishedLayout is the stored timestamp pattern. The catalog predates this
// code; existing rows use the literal .000Z suffix, so writes must keep it
// for round-trip parseability.
const PublishedLayout = "2006-01-02T15:04:05.000Z"

const pageSize = 30

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type SearchQuery struct {
	Title string
	Genre string
	Page  int // 1-based
}

const releaseColumns = `id, title, link, published, coverSrc, originalSize, repackSize,
		mirrors, screenshots, repackDescription, gameDescription`

// GetByID returns the release with its tag lists, or nil when absent.
func (r *Repo) GetByID(ctx context.Context, id string) (*models.ReleaseWithTags, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+releaseColumns+`
		FROM releases
		WHERE id = ?
	`, id)

	rel, err := scanRelease(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get release %s: %w", id, err)
	}

	out := &models.ReleaseWithTags{Release: *rel}
	if out.Genres, err = r.tagsFor(ctx, "release_genre", "genre", id); err != nil {
		return nil, err
	}
	if out.Companies, err = r.tagsFor(ctx, "release_company", "company", id); err != nil {
		return nil, err
	}
	if out.Languages, err = r.tagsFor(ctx, "release_language", "language", id); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) tagsFor(ctx context.Context, table, column, releaseID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE release_id = ? ORDER BY %s`, column, table, column),
		releaseID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		tags = append(tags, v)
	}
	return tags, rows.Err()
}

// Search returns one page of cards plus the total match count.
func (r *Repo) Search(ctx context.Context, q SearchQuery) ([]models.ReleaseCard, int, error) {
	sqlStr, args := buildSearchSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("search count: %w", err)
	}

	sqlStr, args = buildSearchSQL(q, false)
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// buildSearchSQL builds either the COUNT or the page query. The genre filter
// joins the association table; the title filter is a case-insensitive
// substring match.
func buildSearchSQL(q SearchQuery, countOnly bool) (string, []any) {
	sel := `SELECT r.id, r.title, r.coverSrc, r.published FROM releases r`
	if countOnly {
		sel = `SELECT COUNT(DISTINCT r.id) FROM releases r`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Genre) != "" {
		sel += ` INNER JOIN release_genre rg ON r.id = rg.release_id`
		where = append(where, "rg.genre = ?")
		args = append(args, strings.TrimSpace(q.Genre))
	}
	if strings.TrimSpace(q.Title) != "" {
		where = append(where, "LOWER(r.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(q.Title))+"%")
	}

	if len(where) > 0 {
		sel += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		page := q.Page
		if page < 1 {
			page = 1
		}
		sel += " GROUP BY r.id ORDER BY r.published DESC LIMIT ? OFFSET ?"
		args = append(args, pageSize, (page-1)*pageSize)
	}
	return sel, args
}

// LastReleases returns the most recently published cards for the home page.
func (r *Repo) LastReleases(ctx context.Context, limit int) ([]models.ReleaseCard, error) {
	if limit <= 0 {
		limit = pageSize
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, coverSrc, published
		FROM releases
		ORDER BY published DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("last releases: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

// LatestTitle returns the title of the most recently published release, or
// "" for an empty catalog (which makes the whole feed frontier "new").
func (r *Repo) LatestTitle(ctx context.Context) (string, error) {
	var title string
	err := r.DB.QueryRowContext(ctx, `
		SELECT title FROM releases ORDER BY published DESC LIMIT 1
	`).Scan(&title)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest title: %w", err)
	}
	return title, nil
}

// ExistingTitles loads every stored title for the full-crawl set difference.
func (r *Repo) ExistingTitles(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT title FROM releases`)
	if err != nil {
		return nil, fmt.Errorf("existing titles: %w", err)
	}
	defer rows.Close()

	titles := make(map[string]struct{})
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles[t] = struct{}{}
	}
	return titles, rows.Err()
}

// Genres lists the genre dimension for the search UI.
func (r *Repo) Genres(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT value FROM genres ORDER BY value`)
	if err != nil {
		return nil, fmt.Errorf("genres: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRelease(row rowScanner) (*models.Release, error) {
	var (
		rel             models.Release
		published       string
		mirrorsJSON     string
		screenshotsJSON string
	)
	if err := row.Scan(
		&rel.ID, &rel.Title, &rel.Link, &published, &rel.CoverSrc,
		&rel.OriginalSize, &rel.RepackSize, &mirrorsJSON, &screenshotsJSON,
		&rel.RepackDescription, &rel.GameDescription,
	); err != nil {
		return nil, err
	}

	t, err := time.Parse(PublishedLayout, published)
	if err != nil {
		return nil, fmt.Errorf("parse published %q: %w", published, err)
	}
	rel.Published = t

	rel.Mirrors = []models.Mirror{}
	if err := json.Unmarshal([]byte(mirrorsJSON), &rel.Mirrors); err != nil {
		return nil, fmt.Errorf("parse mirrors: %w", err)
	}
	rel.Screenshots = []string{}
	if err := json.Unmarshal([]byte(screenshotsJSON), &rel.Screenshots); err != nil {
		return nil, fmt.Errorf("parse screenshots: %w", err)
	}
	return &rel, nil
}

func scanCards(rows *sql.Rows) ([]models.ReleaseCard, error) {
	cards := []models.ReleaseCard{}
	for rows.Next() {
		var (
			c         models.ReleaseCard
			published string
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.CoverSrc, &published); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		t, err := time.Parse(PublishedLayout, published)
		if err != nil {
			return nil, fmt.Errorf("parse published %q: %w", published, err)
		}
		c.Published = t
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
