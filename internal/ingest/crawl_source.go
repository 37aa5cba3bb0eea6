package ingest

import (
	"context"
	"fmt"
	"log"

	"repackhub/internal/extract"
	"repackhub/internal/fetch"
	"repackhub/internal/release"
	"repackhub/pkg/models"
)

// CrawlSource discovers releases by walking the complete A–Z listing. The
// listing has no chronological guarantee, so dedup is a set difference
// against every stored title; each new pair needs a secondary detail fetch.
type CrawlSource struct {
	Fetcher *fetch.Fetcher
	Repo    *release.Repo
}

func (s *CrawlSource) Name() string { return "crawl" }

func (s *CrawlSource) Discover(ctx context.Context) ([]Candidate, error) {
	var all []fetch.Pair
	for page := 1; ; page++ {
		pairs, err := s.Fetcher.ListingPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(pairs) == 0 {
			break
		}
		log.Printf("[ingest] crawl: page %d, %d entries", page, len(pairs))
		all = append(all, pairs...)
	}
	log.Printf("[ingest] crawl: %d entries on site", len(all))

	existing, err := s.Repo.ExistingTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load existing titles: %w", err)
	}
	log.Printf("[ingest] crawl: %d entries in catalog", len(existing))

	fresh := NewPairs(all, existing)
	out := make([]Candidate, 0, len(fresh))
	for _, p := range fresh {
		out = append(out, Candidate{Title: p.Title, Link: p.Link})
	}
	return out, nil
}

func (s *CrawlSource) Extract(ctx context.Context, c Candidate) (*models.Parsed, error) {
	html, err := s.Fetcher.DetailPage(ctx, c.Link)
	if err != nil {
		return nil, err
	}
	return extract.FromPage(html)
}
