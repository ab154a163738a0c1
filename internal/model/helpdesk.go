package model

import "time"

// Brand is a helpdesk brand, fetched once per run
type Brand struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
	BrandURL  string `json:"brand_url"`
	Active    bool   `json:"active"`
}

// Article is a knowledge-base article as returned by the incremental
// export, with its translations embedded
type Article struct {
	ID           int64         `json:"id"`
	Translations []Translation `json:"translations"`
}

// Primary returns the article's primary translation, or false when the
// article carries none (skipped by the fetcher).
func (a Article) Primary() (Translation, bool) {
	if len(a.Translations) == 0 {
		return Translation{}, false
	}
	return a.Translations[0], true
}

// Translation carries the per-locale content and edit metadata
type Translation struct {
	Title       string    `json:"title"`
	HTMLURL     string    `json:"html_url"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedByID int64     `json:"updated_by_id"`
}

// User is an entry from the embedded user sideload
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ContentBlockEditorID is the sentinel last-editor reference the platform
// emits when an article was touched by a content-block edit rather than a
// person.
const ContentBlockEditorID int64 = -1

// AuthorKind distinguishes a genuinely resolved author from the two
// placeholder identities. Both placeholders carry the configured API-user
// id, so Kind is what keeps them apart from each other and from a real
// author with the same display name.
type AuthorKind int

const (
	AuthorResolved AuthorKind = iota
	AuthorContentBlock
	AuthorUnresolved
)

// Placeholder display names. These render in summaries and as ticket
// requesters; Kind carries the real distinction.
const (
	ContentBlockAuthorName = "Content Block Edit"
	UnresolvedAuthorName   = "Error getting author name"
)

// Author is the comparable identity a candidate article is filed under
type Author struct {
	Name string
	ID   int64
	Kind AuthorKind
}

// Candidate is an article that passed eligibility, keyed under its author
type Candidate struct {
	Title   string
	HTMLURL string
}

// CandidateSet accumulates eligible articles per author during a run.
// Mutated only by the fetcher; consumed by the sampler.
type CandidateSet map[Author][]Candidate

// Add appends a candidate to the author's ordered list
func (s CandidateSet) Add(author Author, c Candidate) {
	s[author] = append(s[author], c)
}

// Total counts candidates across all authors
func (s CandidateSet) Total() int {
	n := 0
	for _, list := range s {
		n += len(list)
	}
	return n
}

// Sentinel ticket ids recorded instead of a created-ticket id
const (
	DryRunTicketID = "dry-run"
	FailedTicketID = "failed"
)

// TicketResult records the outcome of one submission attempt
type TicketResult struct {
	TicketID string // created id, or a sentinel
	Title    string
}

// RunReport is the end-of-run summary
type RunReport struct {
	PeriodTag  string
	Candidates CandidateSet
	Results    map[Author][]TicketResult
	DryRun     bool
}

// TicketsCreated counts results that are neither failed nor dry-run
func (r *RunReport) TicketsCreated() int {
	n := 0
	for _, results := range r.Results {
		for _, res := range results {
			if res.TicketID != FailedTicketID && res.TicketID != DryRunTicketID {
				n++
			}
		}
	}
	return n
}
