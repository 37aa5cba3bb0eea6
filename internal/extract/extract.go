package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"repackhub/pkg/models"
)

// The blog publishes each release as a sequence of <h3> captions, each
// introducing the sibling block that follows it. sectionRules maps caption
// text (substring match) to the field that block fills, so a markup drift
// fix is a table change, not a new walk.
type sectionRule struct {
	caption string
	apply   func(section *goquery.Selection, p *models.Parsed)
}

var sectionRules = []sectionRule{
	{"Screenshots", applyScreenshots},
	{"Repack", applyRepackDescription},
	{"Mirrors", applyMirrors},
}

// infoRules match the `key: value` lines of the info paragraph by lowercase
// key substring ("compan" covers both "Company" and "Companies").
type infoRule struct {
	key   string
	apply func(value string, p *models.Parsed)
}

var infoRules = []infoRule{
	{"genre", func(v string, p *models.Parsed) { p.Genres = splitValues(v) }},
	{"compan", func(v string, p *models.Parsed) { p.Companies = splitValues(v) }},
	{"language", func(v string, p *models.Parsed) { p.Languages = splitValues(v) }},
	{"original", func(v string, p *models.Parsed) { p.Release.OriginalSize = Clean(v) }},
	{"repack", func(v string, p *models.Parsed) { p.Release.RepackSize = Clean(v) }},
}

// FromPage extracts a release from a full article page. Title comes from the
// page title element, the canonical link tag is the release link, and the
// publish timestamp is the article:published_time meta tag (RFC 3339).
func FromPage(html string) (*models.Parsed, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	content := doc.Find(".entry-content").First()
	if content.Length() == 0 {
		return nil, errors.New("content block missing")
	}

	title := Clean(doc.Find(".entry-title").First().Text())
	if title == "" {
		return nil, errors.New("title missing")
	}

	link, _ := doc.Find("link[rel='canonical']").First().Attr("href")
	if strings.TrimSpace(link) == "" {
		return nil, errors.New("canonical link missing")
	}

	raw, ok := doc.Find("meta[property='article:published_time']").First().Attr("content")
	if !ok {
		return nil, errors.New("published time missing")
	}
	published, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("published time: %w", err)
	}

	p := &models.Parsed{Release: models.Release{
		Title:     title,
		Link:      strings.TrimSpace(link),
		Published: published.UTC(),
	}}
	parseContent(content, p)
	return p, nil
}

// FromFeedItem extracts a release from one RSS item. Title, link and publish
// date come from the item's own fields (RFC 2822 date); contentHTML is the
// item body, which carries the same caption-then-block markup as the page.
func FromFeedItem(title, link, pubDate, contentHTML string) (*models.Parsed, error) {
	title = Clean(title)
	if title == "" {
		return nil, errors.New("title missing")
	}
	if strings.TrimSpace(link) == "" {
		return nil, errors.New("link missing")
	}

	published, err := parseRFC2822(pubDate)
	if err != nil {
		return nil, fmt.Errorf("publish date: %w", err)
	}

	if strings.TrimSpace(contentHTML) == "" {
		return nil, errors.New("content block missing")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return nil, fmt.Errorf("parse item content: %w", err)
	}

	p := &models.Parsed{Release: models.Release{
		Title:     title,
		Link:      strings.TrimSpace(link),
		Published: published.UTC(),
	}}
	parseContent(doc.Selection, p)
	return p, nil
}

func parseRFC2822(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC1123Z, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC1123, s)
}

// parseContent fills the optional fields from the caption/block structure.
// Missing sections leave their fields empty; nothing here fails extraction.
func parseContent(content *goquery.Selection, p *models.Parsed) {
	if src, ok := content.Find("h3 + p > a > img").First().Attr("src"); ok {
		p.Release.CoverSrc = src
	}

	content.Find("h3 + *").Each(func(_ int, section *goquery.Selection) {
		caption := section.Prev().Text()
		for _, rule := range sectionRules {
			if strings.Contains(caption, rule.caption) {
				rule.apply(section, p)
				break
			}
		}
	})

	// Info paragraph right after the primary heading: `key: value` lines.
	info := content.Find("h3 + p").First()
	for _, line := range strings.Split(info.Text(), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(key)
		for _, rule := range infoRules {
			if strings.Contains(key, rule.key) {
				rule.apply(value, p)
				break
			}
		}
	}

	if desc := content.Find("h3+ul+.su-spoiler .su-spoiler-content").First(); desc.Length() > 0 {
		if html, err := desc.Html(); err == nil {
			p.Release.GameDescription = strings.TrimSpace(html)
		}
	}
}

func applyScreenshots(section *goquery.Selection, p *models.Parsed) {
	section.Find("a > img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			p.Release.Screenshots = append(p.Release.Screenshots, src)
		}
	})
}

func applyRepackDescription(section *goquery.Selection, p *models.Parsed) {
	if html, err := section.Html(); err == nil {
		p.Release.RepackDescription = strings.TrimSpace(html)
	}
}

// applyMirrors: each list item is one mirror; its first anchor names the
// mirror and becomes the first link, every further anchor is appended.
func applyMirrors(section *goquery.Selection, p *models.Parsed) {
	section.Find("li").Each(func(_ int, li *goquery.Selection) {
		var m models.Mirror
		li.Find("a").Each(func(i int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			l := models.Link{Name: Clean(a.Text()), URL: href}
			if i == 0 {
				m.Name = l.Name
			}
			m.Links = append(m.Links, l)
		})
		if len(m.Links) > 0 {
			p.Release.Mirrors = append(p.Release.Mirrors, m)
		}
	})
}

// Clean trims and normalizes the curly apostrophe the blog uses in titles.
// Stored titles are always cleaned, so anything compared against them must
// pass through here as well.
func Clean(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "’", "'")
}

// splitValues splits a multi-value info field on ',' and '/', trimming each
// part and dropping empties.
func splitValues(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '/' })
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := Clean(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
