package ingest

import (
	"context"
	"fmt"

	"repackhub/internal/extract"
	"repackhub/internal/fetch"
	"repackhub/internal/release"
	"repackhub/pkg/models"
)

// FeedSource discovers new releases from the RSS feed. The feed is a bounded
// ordered source, so the frontier is the prefix before the stored latest
// title; each item's body is extracted directly, no secondary fetch.
type FeedSource struct {
	Fetcher *fetch.Fetcher
	Repo    *release.Repo
}

func (s *FeedSource) Name() string { return "feed" }

func (s *FeedSource) Discover(ctx context.Context) ([]Candidate, error) {
	feed, err := s.Fetcher.Feed(ctx)
	if err != nil {
		return nil, err
	}

	lastTitle, err := s.Repo.LatestTitle(ctx)
	if err != nil {
		return nil, fmt.Errorf("load frontier: %w", err)
	}

	fresh := FeedFrontier(feed.Items, lastTitle)
	out := make([]Candidate, 0, len(fresh))
	for _, item := range fresh {
		out = append(out, Candidate{
			Title:   item.Title,
			Link:    item.Link,
			PubDate: item.Published,
			Body:    item.Content,
		})
	}
	return out, nil
}

func (s *FeedSource) Extract(_ context.Context, c Candidate) (*models.Parsed, error) {
	return extract.FromFeedItem(c.Title, c.Link, c.PubDate, c.Body)
}
