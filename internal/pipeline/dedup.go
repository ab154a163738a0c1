package pipeline

import (
	"context"
	"fmt"
	"net/url"

	gocache "github.com/patrickmn/go-cache"

	"kbqa/internal/zendesk"
)

// DedupIndex answers "has a QA ticket with this exact subject already been
// created this period". It is loaded once per run, before any filtering; a
// load failure aborts the run.
type DedupIndex struct {
	subjects *gocache.Cache
}

// NewDedupIndex creates an empty index
func NewDedupIndex() *DedupIndex {
	return &DedupIndex{
		subjects: gocache.New(gocache.NoExpiration, 0),
	}
}

type searchPage struct {
	Results []struct {
		Subject string `json:"subject"`
	} `json:"results"`
	NextPage string `json:"next_page"`
}

// Load fetches every ticket tagged for the current period and records its
// subject for exact-string membership tests.
func (d *DedupIndex) Load(ctx context.Context, client *zendesk.Client, periodTag string) error {
	query := url.QueryEscape("type:ticket tags:" + periodTag)
	next := fmt.Sprintf("%s/api/v2/search.json?query=%s", client.BaseURL(), query)

	for next != "" {
		var page searchPage
		if err := client.Get(ctx, next, &page); err != nil {
			return fmt.Errorf("search tickets tagged %s: %w", periodTag, err)
		}
		for _, result := range page.Results {
			d.subjects.Set(result.Subject, struct{}{}, gocache.NoExpiration)
		}
		next = page.NextPage
	}
	return nil
}

// Seen reports whether a ticket with this subject exists this period
func (d *DedupIndex) Seen(subject string) bool {
	_, found := d.subjects.Get(subject)
	return found
}

// Count returns the number of known subjects
func (d *DedupIndex) Count() int {
	return d.subjects.ItemCount()
}
