package models

import "time"

// Link is one named download URL inside a mirror.
type Link struct {
	Name string `json:"name"`
	URL  string `json:"link"`
}

// Mirror is a named group of download links for one release. The name comes
// from the first anchor in the source list item.
type Mirror struct {
	Name  string `json:"name"`
	Links []Link `json:"links"`
}

// Release is one cataloged repack entry, exactly as stored. Mirrors and
// screenshots live in serialized columns; they have no identity of their own.
type Release struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Link              string    `json:"link"`
	Published         time.Time `json:"published"`
	CoverSrc          string    `json:"cover_src,omitempty"`
	OriginalSize      string    `json:"original_size,omitempty"`
	RepackSize        string    `json:"repack_size,omitempty"`
	Mirrors           []Mirror  `json:"mirrors"`
	Screenshots       []string  `json:"screenshots"`
	RepackDescription string    `json:"repack_description,omitempty"`
	GameDescription   string    `json:"game_description,omitempty"`
}

// ReleaseWithTags is the detail-page view: the release plus its tag lists.
type ReleaseWithTags struct {
	Release
	Genres    []string `json:"genres"`
	Companies []string `json:"companies"`
	Languages []string `json:"languages"`
}

// ReleaseCard is the list/search row: just enough for a card in the UI.
type ReleaseCard struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CoverSrc  string    `json:"cover_src,omitempty"`
	Published time.Time `json:"published"`
}

// Parsed is the extractor's output for one source item. The tag lists ride
// next to the release because they are written to different tables.
type Parsed struct {
	Release   Release
	Genres    []string
	Companies []string
	Languages []string
}
