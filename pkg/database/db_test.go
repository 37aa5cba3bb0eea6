package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "nested", "catalog.db")})
	require.NoError(t, err)
	defer db.Close()

	// Migrate is idempotent.
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	for _, table := range []string{
		"releases", "genres", "companies", "languages",
		"release_genre", "release_company", "release_language", "users",
	} {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).
			Scan(&name)
		require.NoError(t, err, "table %s", table)
		assert.Equal(t, table, name)
	}
}

func TestOpenEnforcesForeignKeys(t *testing.T) {
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	_, err = db.Exec(`INSERT INTO release_genre (release_id, genre) VALUES ('ghost', 'Action')`)
	assert.Error(t, err)
}

func TestDefaultConfigEnvOverride(t *testing.T) {
	t.Setenv("REPACKHUB_DB_PATH", "/tmp/custom.db")
	assert.Equal(t, "/tmp/custom.db", DefaultConfig().Path)
}
