package ingest

import (
	"github.com/mmcdole/gofeed"

	"repackhub/internal/extract"
	"repackhub/internal/fetch"
)

// FeedFrontier returns the feed items strictly newer than the stored latest
// title. The feed is newest-first; the first item is a pinned entry and is
// skipped. The walk stops at the item matching lastTitle, at an untitled
// item, or at feed end. An empty lastTitle (empty catalog) makes everything
// after the pin new. Titles are normalized before comparison because stored
// titles pass through extract.Clean on the way in. Assumes titles are unique
// and the feed is time-ordered; that is a precondition of the source, not
// verified here.
func FeedFrontier(items []*gofeed.Item, lastTitle string) []*gofeed.Item {
	if len(items) == 0 {
		return nil
	}

	var out []*gofeed.Item
	for _, item := range items[1:] {
		title := extract.Clean(item.Title)
		if title == "" {
			break
		}
		if lastTitle != "" && title == lastTitle {
			break
		}
		out = append(out, item)
	}
	return out
}

// NewPairs returns the crawled pairs whose titles are not yet stored. The
// crawl has no chronological guarantee, so this is a full set difference.
func NewPairs(pairs []fetch.Pair, existing map[string]struct{}) []fetch.Pair {
	var out []fetch.Pair
	for _, p := range pairs {
		if _, ok := existing[p.Title]; !ok {
			out = append(out, p)
		}
	}
	return out
}
