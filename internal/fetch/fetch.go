package fetch

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"repackhub/internal/extract"
	"repackhub/pkg/utils"
)

const listingPath = "/all-my-repacks-a-z/"

// Pair is one (title, detail-page URL) entry discovered on the A–Z listing.
type Pair struct {
	Title string
	Link  string
}

// Fetcher retrieves the RSS feed, the paginated listing and article pages.
// It does no field extraction; raw content goes to the extract package.
type Fetcher struct {
	Client  *Client
	BaseURL string
	FeedURL string
}

func New(cfg utils.SourceConfig) *Fetcher {
	return &Fetcher{
		Client:  NewClient(),
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		FeedURL: cfg.FeedURL,
	}
}

// Feed fetches and parses the RSS feed.
func (f *Fetcher) Feed(ctx context.Context) (*gofeed.Feed, error) {
	b, err := f.Client.Get(ctx, f.FeedURL, "")
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// ListingPage fetches one page of the A–Z listing and returns its entries.
// A page with no entries is the end-of-listing sentinel, not an error.
func (f *Fetcher) ListingPage(ctx context.Context, page int) ([]Pair, error) {
	url := fmt.Sprintf("%s%s?lcp_page0=%d", f.BaseURL, listingPath, page)
	b, err := f.Client.Get(ctx, url, "")
	if err != nil {
		return nil, fmt.Errorf("fetch listing page %d: %w", page, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parse listing page %d: %w", page, err)
	}

	var pairs []Pair
	doc.Find(".lcp_catlist li a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		title := extract.Clean(a.Text())
		if title == "" {
			return
		}
		pairs = append(pairs, Pair{Title: title, Link: href})
	})
	return pairs, nil
}

// DetailPage fetches one article page. The listing URL rides along as the
// referer, matching how a browser would arrive there.
func (f *Fetcher) DetailPage(ctx context.Context, url string) (string, error) {
	b, err := f.Client.Get(ctx, url, f.BaseURL+listingPath)
	if err != nil {
		return "", fmt.Errorf("fetch detail page: %w", err)
	}
	return string(b), nil
}
