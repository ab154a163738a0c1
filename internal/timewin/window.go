// Package timewin computes the QA period identifier and the edit cutoff
// for a run.
package timewin

import (
	"fmt"
	"time"

	"kbqa/internal/model"
)

// Info is the computed time context passed through the whole run
type Info struct {
	// PeriodTag identifies the current calendar-month QA cycle, used for
	// ticket tagging and the dedup search (e.g. "qa_review_2026_08").
	PeriodTag string
	// CurrentDate is the human-readable run date for ticket body text.
	CurrentDate string
	// Cutoff is the earliest edit timestamp still eligible this cycle.
	// Eligibility is strictly-after, so an edit at exactly Cutoff is out.
	Cutoff time.Time
}

// Compute derives the period tag and cutoff from the wall clock and the
// configured relative range. An unrecognized unit is a fatal configuration
// error: the caller must abort the run.
func Compute(now time.Time, w model.Window) (Info, error) {
	now = now.UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var cutoff time.Time
	switch w.Unit {
	case "months":
		// Month arithmetic first, then truncate to the first of that month
		// so a mid-month run covers the whole boundary month.
		back := now.AddDate(0, -w.Value, 0)
		cutoff = time.Date(back.Year(), back.Month(), 1, 0, 0, 0, 0, time.UTC)
	case "weeks":
		cutoff = now.AddDate(0, 0, -7*w.Value)
	case "days":
		cutoff = now.AddDate(0, 0, -w.Value)
	default:
		return Info{}, fmt.Errorf("unrecognized window unit %q (want months, weeks or days)", w.Unit)
	}

	return Info{
		PeriodTag:   fmt.Sprintf("qa_review_%d_%02d", firstOfMonth.Year(), int(firstOfMonth.Month())),
		CurrentDate: now.Format("January 2, 2006"),
		Cutoff:      cutoff,
	}, nil
}
