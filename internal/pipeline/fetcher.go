package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"kbqa/internal/model"
	"kbqa/internal/timewin"
	"kbqa/internal/zendesk"
)

// Fetcher walks every active, non-excluded brand and accumulates eligible
// article/author pairs into a candidate set. Brands are processed
// sequentially; one brand's pagination completes before the next starts.
type Fetcher struct {
	client         *zendesk.Client
	window         timewin.Info
	filter         Eligibility
	apiUserID      int64
	excludedBrands map[string]struct{}
	authorMemo     *gocache.Cache
	verbose        bool
}

// NewFetcher builds a fetcher for one run
func NewFetcher(client *zendesk.Client, cfg *model.Config, window timewin.Info, filter Eligibility) *Fetcher {
	excluded := make(map[string]struct{}, len(cfg.Exclusions.BrandNames))
	for _, name := range cfg.Exclusions.BrandNames {
		excluded[name] = struct{}{}
	}
	return &Fetcher{
		client:         client,
		window:         window,
		filter:         filter,
		apiUserID:      cfg.Zendesk.APIUserID,
		excludedBrands: excluded,
		authorMemo:     gocache.New(gocache.NoExpiration, 0),
		verbose:        cfg.Output.Verbose,
	}
}

type brandsPage struct {
	Brands   []model.Brand `json:"brands"`
	NextPage string        `json:"next_page"`
}

// Brands lists all brands on the instance. A failure here aborts the run;
// without the brand list there is nothing to fetch.
func (f *Fetcher) Brands(ctx context.Context) ([]model.Brand, error) {
	next := f.client.BaseURL() + "/api/v2/brands.json"
	var brands []model.Brand
	for next != "" {
		var page brandsPage
		if err := f.client.Get(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("list brands: %w", err)
		}
		brands = append(brands, page.Brands...)
		next = page.NextPage
	}
	return brands, nil
}

// Collect gathers the candidate set across all eligible brands. Per-brand
// failures, including pagination-follow failures, are logged and
// suppressed so one bad brand cannot abort the run.
func (f *Fetcher) Collect(ctx context.Context, brands []model.Brand) model.CandidateSet {
	candidates := make(model.CandidateSet)
	for _, brand := range brands {
		if !brand.Active {
			continue
		}
		if _, excluded := f.excludedBrands[brand.Name]; excluded {
			if f.verbose {
				fmt.Fprintf(os.Stderr, "  skipping excluded brand %s\n", brand.Name)
			}
			continue
		}

		before := candidates.Total()
		if err := f.collectBrand(ctx, brand, candidates); err != nil {
			fmt.Fprintf(os.Stderr, "✗ brand %s: %v\n", brand.Name, err)
			continue
		}
		if f.verbose {
			fmt.Fprintf(os.Stderr, "✓ brand %s: %d candidate articles\n", brand.Name, candidates.Total()-before)
		}
	}
	return candidates
}

type articlesPage struct {
	Articles    []model.Article `json:"articles"`
	Users       []model.User    `json:"users"`
	NextPage    string          `json:"next_page"`
	EndOfStream bool            `json:"end_of_stream"`
}

// collectBrand paginates the brand's incremental article export, scoped to
// the brand's own host and filtered server-side by the window cutoff.
func (f *Fetcher) collectBrand(ctx context.Context, brand model.Brand, candidates model.CandidateSet) error {
	next := fmt.Sprintf(
		"%s/api/v2/help_center/incremental/articles.json?start_time=%d&include=users,translations",
		brand.BrandURL, f.window.Cutoff.Unix(),
	)

	for next != "" {
		var page articlesPage
		if err := f.client.Get(ctx, next, &page); err != nil {
			return fmt.Errorf("fetch articles page: %w", err)
		}

		for _, article := range page.Articles {
			tr, ok := article.Primary()
			if !ok {
				continue
			}
			author := f.resolveAuthor(brand, tr.UpdatedByID, page.Users)
			if f.filter.Eligible(author, tr) {
				candidates.Add(author, model.Candidate{Title: tr.Title, HTMLURL: tr.HTMLURL})
			}
		}

		if page.EndOfStream || page.NextPage == "" {
			break
		}
		next = RepairPageLink(page.NextPage)
	}
	return nil
}

// resolveAuthor memoizes author resolution per brand and editor id for the
// duration of the run.
func (f *Fetcher) resolveAuthor(brand model.Brand, editorID int64, users []model.User) model.Author {
	key := fmt.Sprintf("%s/%d", brand.Subdomain, editorID)
	if cached, found := f.authorMemo.Get(key); found {
		return cached.(model.Author)
	}
	author := ResolveAuthor(editorID, users, f.apiUserID)
	f.authorMemo.Set(key, author, gocache.NoExpiration)
	return author
}

// RepairPageLink corrects the known malformations in pagination links
// returned by the incremental article export: the help_center path segment
// comes back missing or as a literal "hc" segment, and the comma in the
// include parameter comes back percent-encoded. Links must be repaired
// before the next fetch.
func RepairPageLink(link string) string {
	link = strings.Replace(link, "/api/v2/hc/incremental/", "/api/v2/help_center/incremental/", 1)
	if !strings.Contains(link, "/api/v2/help_center/incremental/") {
		link = strings.Replace(link, "/api/v2/incremental/", "/api/v2/help_center/incremental/", 1)
	}
	return strings.ReplaceAll(link, "%2C", ",")
}
