package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repackhub/internal/fetch"
	"repackhub/pkg/utils"
)

func articlePage(title, link, published string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head>
  <link rel="canonical" href="%s">
  <meta property="article:published_time" content="%s">
</head><body>
  <h1 class="entry-title">%s</h1>
  <div class="entry-content">
    <h3>%s</h3>
    <p>Genres/Tags: Action<br>
Original Size: 10 GB</p>
  </div>
</body></html>`, link, published, title, title)
}

func feedXML(srvURL string) string {
	item := func(title, path, pubDate string) string {
		return fmt.Sprintf(`<item>
  <title>%s</title>
  <link>%s%s</link>
  <pubDate>%s</pubDate>
  <content:encoded><![CDATA[<div><h3>%s</h3><p>Original Size: 10 GB</p></div>]]></content:encoded>
</item>`, title, srvURL, path, pubDate, title)
	}

	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel><title>Repacks</title>
` + item("Upcoming repacks", "/upcoming/", "Fri, 03 May 2024 09:00:00 +0000") + `
` + item("Game A", "/game-a/", "Thu, 02 May 2024 10:00:00 +0000") + `
` + item("Game B", "/game-b/", "Wed, 01 May 2024 10:00:00 +0000") + `
</channel></rss>`
}

// siteServer fakes the blog: a two-page listing, article pages and the feed.
func siteServer(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/all-my-repacks-a-z/":
			if r.URL.Query().Get("lcp_page0") != "1" {
				fmt.Fprint(w, `<html><body></body></html>`)
				return
			}
			fmt.Fprintf(w, `<html><body><ul class="lcp_catlist">
				<li><a href="%s/game-a/">Game A</a></li>
				<li><a href="%s/game-b/">Game B</a></li>
			</ul></body></html>`, srv.URL, srv.URL)
		case "/game-a/":
			fmt.Fprint(w, articlePage("Game A", srv.URL+"/game-a/", "2024-05-02T10:00:00+00:00"))
		case "/game-b/":
			fmt.Fprint(w, articlePage("Game B", srv.URL+"/game-b/", "2024-05-01T10:00:00+00:00"))
		case "/feed/":
			fmt.Fprint(w, feedXML(srv.URL))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testService(t *testing.T, srvURL string, n Notifier) *Service {
	t.Helper()
	f := fetch.New(utils.SourceConfig{BaseURL: srvURL, FeedURL: srvURL + "/feed/"})
	f.Client.Backoff = time.Millisecond
	return NewService(testRepo(t), f, n)
}

func TestSyncAllEndToEnd(t *testing.T) {
	srv := siteServer(t)
	svc := testService(t, srv.URL, nil)
	ctx := context.Background()

	added, err := svc.SyncAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Game A", "Game B"}, added)

	got, err := svc.Repo.LatestTitle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Game A", got)

	// A second run discovers nothing new.
	added, err = svc.SyncAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, added)
}

func TestSyncFeedEndToEnd(t *testing.T) {
	srv := siteServer(t)
	rec := newRecorder()
	svc := testService(t, srv.URL, rec)
	ctx := context.Background()

	// Empty catalog: everything after the pinned first item is new.
	added, err := svc.SyncFeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Game A", "Game B"}, added)

	assert.Equal(t, []string{"feed"}, rec.started)
	assert.Equal(t, map[string]int{"feed": 2}, rec.finished)

	// The stored latest title now bounds the frontier.
	added, err = svc.SyncFeed(ctx)
	require.NoError(t, err)
	assert.Empty(t, added)
}

func TestFeedThenCrawlStaysDeduplicated(t *testing.T) {
	srv := siteServer(t)
	svc := testService(t, srv.URL, nil)
	ctx := context.Background()

	added, err := svc.SyncFeed(ctx)
	require.NoError(t, err)
	require.Len(t, added, 2)

	added, err = svc.SyncAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, added)
}

func TestSyncRejectsConcurrentRuns(t *testing.T) {
	srv := siteServer(t)
	svc := testService(t, srv.URL, nil)

	svc.mu.Lock()
	defer svc.mu.Unlock()

	_, err := svc.SyncFeed(context.Background())
	assert.ErrorIs(t, err, ErrSyncRunning)

	_, err = svc.SyncAll(context.Background())
	assert.ErrorIs(t, err, ErrSyncRunning)
}
