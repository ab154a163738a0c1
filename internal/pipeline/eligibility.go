package pipeline

import (
	"time"

	"kbqa/internal/model"
)

// subjectPrefix is the fixed ticket subject template. The full subject is
// the period's dedup key, so the format must stay exact-match stable.
const subjectPrefix = "Quality Assessment: "

// Subject builds the ticket subject for an article title
func Subject(title string) string {
	return subjectPrefix + title
}

// Eligibility is the pure per-article predicate
type Eligibility struct {
	excludedAuthors map[string]struct{}
	cutoff          time.Time
	seen            func(subject string) bool
}

// NewEligibility builds the predicate from the exclusion list, the window
// cutoff, and the dedup membership test.
func NewEligibility(excludedAuthors []string, cutoff time.Time, seen func(string) bool) Eligibility {
	excluded := make(map[string]struct{}, len(excludedAuthors))
	for _, name := range excludedAuthors {
		excluded[name] = struct{}{}
	}
	return Eligibility{excludedAuthors: excluded, cutoff: cutoff, seen: seen}
}

// Eligible reports whether the article/author pair qualifies for a QA
// ticket this period. Edits at exactly the cutoff instant do not qualify.
func (e Eligibility) Eligible(author model.Author, tr model.Translation) bool {
	if _, excluded := e.excludedAuthors[author.Name]; excluded {
		return false
	}
	if !tr.UpdatedAt.After(e.cutoff) {
		return false
	}
	return !e.seen(Subject(tr.Title))
}
