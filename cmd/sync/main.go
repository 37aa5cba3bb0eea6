package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"repackhub/internal/fetch"
	"repackhub/internal/ingest"
	"repackhub/internal/release"
	"repackhub/pkg/database"
	"repackhub/pkg/utils"
)

func main() {
	mode := flag.String("mode", "rss", "sync mode: rss (incremental) or all (full crawl)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	repo := release.NewRepo(db)
	fetcher := fetch.New(utils.LoadSourceConfig())
	svc := ingest.NewService(repo, fetcher, nil)

	var (
		added []string
		err   error
	)
	switch *mode {
	case "rss":
		added, err = svc.SyncFeed(ctx)
	case "all":
		added, err = svc.SyncAll(ctx)
	default:
		log.Fatalf("unknown mode %q (want rss or all)", *mode)
	}
	if err != nil {
		log.Fatalf("sync failed: %v", err)
	}

	log.Printf("sync complete: %d releases added", len(added))
	for _, title := range added {
		log.Printf("  %s", title)
	}
}
