package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"repackhub/pkg/database"
)

func main() {
	var (
		releasesOut = flag.String("releases", "data/releases.csv", "output CSV path for releases")
		tagsOut     = flag.String("tags", "data/tags.csv", "output CSV path for tag dimensions")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportReleases(ctx, db, *releasesOut); err != nil {
		log.Fatalf("export releases failed: %v", err)
	}
	if err := exportTags(ctx, db, *tagsOut); err != nil {
		log.Fatalf("export tags failed: %v", err)
	}

	log.Printf("exported releases to %s and tags to %s", *releasesOut, *tagsOut)
}

func exportReleases(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "title", "link", "published", "coverSrc", "originalSize",
		"repackSize", "mirrors", "screenshots", "repackDescription", "gameDescription",
	}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, title, link, published, coverSrc, originalSize, repackSize,
               mirrors, screenshots, repackDescription, gameDescription
        FROM releases
        ORDER BY published DESC
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, title, link, published         string
			coverSrc, originalSize, repackSize sql.NullString
			mirrors, screenshots               sql.NullString
			repackDescription, gameDescription sql.NullString
		)

		if err := rows.Scan(
			&id, &title, &link, &published, &coverSrc, &originalSize,
			&repackSize, &mirrors, &screenshots, &repackDescription, &gameDescription,
		); err != nil {
			return err
		}

		if err := w.Write([]string{
			id,
			title,
			link,
			published,
			coverSrc.String,
			originalSize.String,
			repackSize.String,
			mirrors.String,
			screenshots.String,
			repackDescription.String,
			gameDescription.String,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportTags(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"kind", "value"}); err != nil {
		return err
	}

	for _, table := range []string{"genres", "companies", "languages"} {
		rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT value FROM %s ORDER BY value`, table))
		if err != nil {
			return err
		}

		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return err
			}
			if err := w.Write([]string{table, v}); err != nil {
				rows.Close()
				return err
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}

	w.Flush()
	return w.Error()
}
