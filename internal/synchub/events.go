package synchub

import "time"

const (
	EventSyncStarted     = "sync.started"
	EventReleaseIngested = "release.ingested"
	EventSyncFinished    = "sync.finished"
)

type Event struct {
	Type   string    `json:"type"`
	Source string    `json:"source,omitempty"` // "feed" or "crawl"
	Title  string    `json:"title,omitempty"`
	Count  int       `json:"count,omitempty"`
	At     time.Time `json:"at"`
}
