package ingest

import (
	"context"
	"errors"
	"sync"

	"repackhub/internal/fetch"
	"repackhub/internal/release"
)

// ErrSyncRunning is returned when a sync is triggered while another run is
// still in flight. Runs are sequential on purpose: two concurrent crawls
// would hammer the external site and race each other's frontier.
var ErrSyncRunning = errors.New("sync already running")

// Service is the ingestion entry point for the HTTP triggers and the CLI.
type Service struct {
	Repo     *release.Repo
	Fetcher  *fetch.Fetcher
	Notifier Notifier

	mu sync.Mutex
}

func NewService(repo *release.Repo, fetcher *fetch.Fetcher, notifier Notifier) *Service {
	return &Service{Repo: repo, Fetcher: fetcher, Notifier: notifier}
}

// SyncFeed runs the incremental feed-mode sync and returns ingested titles.
func (s *Service) SyncFeed(ctx context.Context) ([]string, error) {
	return s.run(ctx, &FeedSource{Fetcher: s.Fetcher, Repo: s.Repo})
}

// SyncAll runs the exhaustive full-crawl sync and returns ingested titles.
func (s *Service) SyncAll(ctx context.Context) ([]string, error) {
	return s.run(ctx, &CrawlSource{Fetcher: s.Fetcher, Repo: s.Repo})
}

func (s *Service) run(ctx context.Context, src Source) ([]string, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncRunning
	}
	defer s.mu.Unlock()

	p := &Pipeline{Repo: s.Repo, Notifier: s.Notifier}
	return p.Run(ctx, src)
}
