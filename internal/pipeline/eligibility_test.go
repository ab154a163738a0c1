package pipeline

import (
	"testing"
	"time"

	"kbqa/internal/model"
)

func TestEligible(t *testing.T) {
	cutoff := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	seen := map[string]bool{"Quality Assessment: Already Ticketed": true}
	filter := NewEligibility([]string{"API User"}, cutoff, func(s string) bool { return seen[s] })

	alice := model.Author{Name: "Alice", ID: 101, Kind: model.AuthorResolved}
	apiUser := model.Author{Name: "API User", ID: 999, Kind: model.AuthorResolved}

	tests := []struct {
		name   string
		author model.Author
		tr     model.Translation
		want   bool
	}{
		{
			name:   "eligible",
			author: alice,
			tr:     model.Translation{Title: "Fresh", UpdatedAt: cutoff.Add(time.Hour)},
			want:   true,
		},
		{
			name:   "excluded author name",
			author: apiUser,
			tr:     model.Translation{Title: "Fresh", UpdatedAt: cutoff.Add(time.Hour)},
			want:   false,
		},
		{
			name:   "updated exactly at cutoff is out",
			author: alice,
			tr:     model.Translation{Title: "Boundary", UpdatedAt: cutoff},
			want:   false,
		},
		{
			name:   "updated before cutoff",
			author: alice,
			tr:     model.Translation{Title: "Stale", UpdatedAt: cutoff.Add(-time.Second)},
			want:   false,
		},
		{
			name:   "already ticketed this period",
			author: alice,
			tr:     model.Translation{Title: "Already Ticketed", UpdatedAt: cutoff.Add(time.Hour)},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.Eligible(tt.author, tt.tr); got != tt.want {
				t.Errorf("Eligible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubject(t *testing.T) {
	if got := Subject("How to reset your password"); got != "Quality Assessment: How to reset your password" {
		t.Errorf("Subject = %q", got)
	}
}
