package release

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repackhub/pkg/database"
	"repackhub/pkg/models"
)

func testRepo(t *testing.T) *Repo {
	t.Helper()

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return NewRepo(db)
}

func parsedRelease(title, link string, published time.Time) *models.Parsed {
	return &models.Parsed{
		Release: models.Release{
			Title:     title,
			Link:      link,
			Published: published,
		},
	}
}

func TestInsertRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := parsedRelease("Sample Game – v1.0", "https://repacks.example/sample-game/",
		time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC))
	p.Release.CoverSrc = "https://img.example/cover.jpg"
	p.Release.OriginalSize = "52.8 GB"
	p.Release.RepackSize = "from 24.9 GB"
	p.Release.Screenshots = []string{"https://s.example/1.jpg", "https://s.example/2.jpg"}
	p.Release.Mirrors = []models.Mirror{
		{Name: "Filehoster A", Links: []models.Link{
			{Name: "Filehoster A", URL: "magnet:?xt=1"},
			{Name: "Part 2", URL: "https://m.example/p2"},
		}},
	}
	p.Release.RepackDescription = "<li>100% lossless</li>"
	p.Release.GameDescription = "A long description."
	p.Genres = []string{"Action", "RPG"}
	p.Companies = []string{"Foo Studio"}
	p.Languages = []string{"ENG", "RUS"}

	id, err := repo.Insert(ctx, p)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, p.Release.Title, got.Title)
	assert.Equal(t, p.Release.Link, got.Link)
	assert.WithinDuration(t, p.Release.Published, got.Published, 0)
	assert.Equal(t, p.Release.CoverSrc, got.CoverSrc)
	assert.Equal(t, p.Release.OriginalSize, got.OriginalSize)
	assert.Equal(t, p.Release.RepackSize, got.RepackSize)
	assert.Equal(t, p.Release.Screenshots, got.Screenshots)
	assert.Equal(t, p.Release.Mirrors, got.Mirrors)
	assert.Equal(t, p.Release.RepackDescription, got.RepackDescription)
	assert.Equal(t, p.Release.GameDescription, got.GameDescription)

	assert.Equal(t, []string{"Action", "RPG"}, got.Genres)
	assert.Equal(t, []string{"Foo Studio"}, got.Companies)
	assert.Equal(t, []string{"ENG", "RUS"}, got.Languages)
}

func TestInsertEmptyCollections(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := parsedRelease("Bare Game", "https://repacks.example/bare/", time.Now().UTC())
	id, err := repo.Insert(ctx, p)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.NotNil(t, got.Mirrors)
	assert.Empty(t, got.Mirrors)
	assert.NotNil(t, got.Screenshots)
	assert.Empty(t, got.Screenshots)
	assert.NotNil(t, got.Genres)
	assert.Empty(t, got.Genres)

	var mirrors, screenshots string
	err = repo.DB.QueryRowContext(ctx,
		`SELECT mirrors, screenshots FROM releases WHERE id = ?`, id).
		Scan(&mirrors, &screenshots)
	require.NoError(t, err)
	assert.Equal(t, "[]", mirrors)
	assert.Equal(t, "[]", screenshots)
}

func TestInsertDuplicateLinkRollsBack(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	first := parsedRelease("Game A", "https://repacks.example/game/", time.Now().UTC())
	first.Genres = []string{"Action"}
	_, err := repo.Insert(ctx, first)
	require.NoError(t, err)

	second := parsedRelease("Game A – Updated", "https://repacks.example/game/", time.Now().UTC())
	second.Genres = []string{"Puzzle"}
	_, err = repo.Insert(ctx, second)
	require.Error(t, err)
	assert.True(t, IsDuplicateLink(err))

	// The failed insert must leave nothing behind, its dimension rows included.
	genres, err := repo.Genres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Action"}, genres)

	var count int
	require.NoError(t, repo.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM releases`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestInsertSharedTagDimension(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	a := parsedRelease("Game A", "https://repacks.example/a/", time.Now().UTC())
	a.Genres = []string{"Action"}
	b := parsedRelease("Game B", "https://repacks.example/b/", time.Now().UTC())
	b.Genres = []string{"Action", "Indie"}

	_, err := repo.Insert(ctx, a)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, b)
	require.NoError(t, err)

	genres, err := repo.Genres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Action", "Indie"}, genres)

	var links int
	require.NoError(t, repo.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM release_genre WHERE genre = 'Action'`).Scan(&links))
	assert.Equal(t, 2, links)
}

func TestGetByIDCorruptSerializedColumn(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, parsedRelease("Game A", "https://repacks.example/a/", time.Now().UTC()))
	require.NoError(t, err)

	_, err = repo.DB.ExecContext(ctx,
		`UPDATE releases SET mirrors = 'not json' WHERE id = ?`, id)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse mirrors")
}

func TestGetByIDMissing(t *testing.T) {
	repo := testRepo(t)

	got, err := repo.GetByID(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSearch(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	older := parsedRelease("Shadow Tactics", "https://repacks.example/shadow/", base)
	older.Genres = []string{"Stealth"}
	newer := parsedRelease("Shadow Warrior", "https://repacks.example/warrior/", base.Add(time.Hour))
	newer.Genres = []string{"Action"}
	other := parsedRelease("Puzzle Quest", "https://repacks.example/puzzle/", base.Add(2*time.Hour))
	other.Genres = []string{"Puzzle"}

	for _, p := range []*models.Parsed{older, newer, other} {
		_, err := repo.Insert(ctx, p)
		require.NoError(t, err)
	}

	t.Run("title substring is case-insensitive", func(t *testing.T) {
		cards, total, err := repo.Search(ctx, SearchQuery{Title: "shadow"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, cards, 2)
		assert.Equal(t, "Shadow Warrior", cards[0].Title)
		assert.Equal(t, "Shadow Tactics", cards[1].Title)
	})

	t.Run("genre filter", func(t *testing.T) {
		cards, total, err := repo.Search(ctx, SearchQuery{Genre: "Puzzle"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, cards, 1)
		assert.Equal(t, "Puzzle Quest", cards[0].Title)
	})

	t.Run("combined filters", func(t *testing.T) {
		_, total, err := repo.Search(ctx, SearchQuery{Title: "shadow", Genre: "Puzzle"})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
	})

	t.Run("no filters lists everything newest first", func(t *testing.T) {
		cards, total, err := repo.Search(ctx, SearchQuery{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, cards, 3)
		assert.Equal(t, "Puzzle Quest", cards[0].Title)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		cards, total, err := repo.Search(ctx, SearchQuery{Page: 9})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Empty(t, cards)
	})
}

func TestLastReleases(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, title := range []string{"Game A", "Game B", "Game C"} {
		p := parsedRelease(title, "https://repacks.example/"+title, base.Add(time.Duration(i)*time.Hour))
		_, err := repo.Insert(ctx, p)
		require.NoError(t, err)
	}

	cards, err := repo.LastReleases(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Game C", cards[0].Title)
	assert.Equal(t, "Game B", cards[1].Title)
}

func TestLatestTitle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	title, err := repo.LatestTitle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", title)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, err = repo.Insert(ctx, parsedRelease("Older", "https://repacks.example/older/", base))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, parsedRelease("Newer", "https://repacks.example/newer/", base.Add(time.Hour)))
	require.NoError(t, err)

	title, err = repo.LatestTitle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Newer", title)
}

func TestExistingTitles(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, parsedRelease("Game A", "https://repacks.example/a/", time.Now().UTC()))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, parsedRelease("Game B", "https://repacks.example/b/", time.Now().UTC()))
	require.NoError(t, err)

	titles, err := repo.ExistingTitles(ctx)
	require.NoError(t, err)
	assert.Len(t, titles, 2)
	assert.Contains(t, titles, "Game A")
	assert.Contains(t, titles, "Game B")
}
