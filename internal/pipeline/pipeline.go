// Package pipeline implements the QA review run: dedup-set load, brand and
// article fetching, eligibility filtering, per-author sampling, and ticket
// submission.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"kbqa/internal/model"
	"kbqa/internal/timewin"
	"kbqa/internal/zendesk"
)

// Pipeline orchestrates a complete QA review run
type Pipeline struct {
	cfg    *model.Config
	client *zendesk.Client
	rng    *rand.Rand
	now    func() time.Time
}

// New creates a pipeline from validated configuration
func New(cfg *model.Config) *Pipeline {
	return NewWithClient(cfg, zendesk.NewClient(cfg.Zendesk, cfg.HTTP))
}

// NewWithClient creates a pipeline with a caller-supplied transport. Used
// by tests to point the run at a fake API.
func NewWithClient(cfg *model.Config, client *zendesk.Client) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		client: client,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
}

// Run executes the whole pipeline in order: time window, dedup set,
// brand/article fetch, sampling, submission. Fatal window or dedup errors
// abort before any filtering; per-brand and per-article failures degrade
// the run without stopping it.
func (p *Pipeline) Run(ctx context.Context) (*model.RunReport, error) {
	window, err := timewin.Compute(p.now(), p.cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("compute time window: %w", err)
	}
	if p.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Period tag: %s\n", window.PeriodTag)
		fmt.Fprintf(os.Stderr, "Cutoff:     %s\n", window.Cutoff.Format(time.RFC3339))
	}

	// The dedup set is a precondition for filtering, not best-effort.
	dedup := NewDedupIndex()
	if err := dedup.Load(ctx, p.client, window.PeriodTag); err != nil {
		return nil, fmt.Errorf("load existing QA tickets: %w", err)
	}
	if p.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ %d existing QA tickets this period\n", dedup.Count())
	}

	filter := NewEligibility(p.cfg.Exclusions.AuthorNames, window.Cutoff, dedup.Seen)
	fetcher := NewFetcher(p.client, p.cfg, window, filter)

	brands, err := fetcher.Brands(ctx)
	if err != nil {
		return nil, err
	}
	if p.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ %d brands\n", len(brands))
	}

	candidates := fetcher.Collect(ctx, brands)
	selected := Sample(candidates, p.cfg.Tickets.PerAuthorCap, p.rng)

	submitter := NewSubmitter(p.client, p.cfg, window)
	results := submitter.SubmitAll(ctx, selected)

	return &model.RunReport{
		PeriodTag:  window.PeriodTag,
		Candidates: candidates,
		Results:    results,
		DryRun:     p.cfg.Tickets.ReadOnly,
	}, nil
}
