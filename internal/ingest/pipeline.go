package ingest

import (
	"context"
	"fmt"
	"log"

	"repackhub/internal/release"
	"repackhub/pkg/models"
)

// Candidate is one discovered source item awaiting extraction.
type Candidate struct {
	Title   string
	Link    string
	PubDate string // RFC 2822, feed mode only
	Body    string // item content already in hand, feed mode only
}

// Source discovers not-yet-cataloged candidates and turns one candidate into
// a parsed release. Each source owns its discovery and frontier strategy;
// the pipeline is the same for all of them.
type Source interface {
	Name() string
	Discover(ctx context.Context) ([]Candidate, error)
	Extract(ctx context.Context, c Candidate) (*models.Parsed, error)
}

// Notifier receives run progress events. A nil Notifier disables them.
type Notifier interface {
	SyncStarted(source string)
	ReleaseIngested(title string)
	SyncFinished(source string, count int)
}

// Pipeline runs discover -> extract -> write for one source. Discovery
// failure is fatal to the run; a single item failing extraction or write is
// logged and skipped.
type Pipeline struct {
	Repo     *release.Repo
	Notifier Notifier
}

func (p *Pipeline) Run(ctx context.Context, src Source) ([]string, error) {
	candidates, err := src.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s discover: %w", src.Name(), err)
	}
	log.Printf("[ingest] %s: %d new candidates", src.Name(), len(candidates))

	if p.Notifier != nil {
		p.Notifier.SyncStarted(src.Name())
	}

	added := []string{}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return added, err
		}

		parsed, err := src.Extract(ctx, c)
		if err != nil {
			log.Printf("[ingest] %s: skip %q: %v", src.Name(), c.Title, err)
			continue
		}

		if _, err := p.Repo.Insert(ctx, parsed); err != nil {
			if release.IsDuplicateLink(err) {
				log.Printf("[ingest] %s: %q already cataloged under %s", src.Name(), parsed.Release.Title, parsed.Release.Link)
			} else {
				log.Printf("[ingest] %s: write %q failed: %v", src.Name(), parsed.Release.Title, err)
			}
			continue
		}

		log.Printf("[ingest] %s: inserted %q", src.Name(), parsed.Release.Title)
		added = append(added, parsed.Release.Title)
		if p.Notifier != nil {
			p.Notifier.ReleaseIngested(parsed.Release.Title)
		}
	}

	if p.Notifier != nil {
		p.Notifier.SyncFinished(src.Name(), len(added))
	}
	return added, nil
}
