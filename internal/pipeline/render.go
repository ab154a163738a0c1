package pipeline

import (
	"fmt"
	"io"
	"sort"

	"kbqa/internal/model"
)

// RenderSummary prints the end-of-run report. Console output only, not a
// machine-readable contract.
func RenderSummary(w io.Writer, report *model.RunReport) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  QA Review Run Complete (%s)\n", report.PeriodTag)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")

	authors := make([]model.Author, 0, len(report.Results))
	for author := range report.Results {
		authors = append(authors, author)
	}
	sort.Slice(authors, func(i, j int) bool {
		if authors[i].Name != authors[j].Name {
			return authors[i].Name < authors[j].Name
		}
		return authors[i].Kind < authors[j].Kind
	})

	for _, author := range authors {
		results := report.Results[author]
		fmt.Fprintf(w, "  %s (%d candidate articles, %d selected)\n",
			author.Name, len(report.Candidates[author]), len(results))
		for _, res := range results {
			marker := "✓"
			if res.TicketID == model.FailedTicketID {
				marker = "✗"
			}
			fmt.Fprintf(w, "    %s [%s] %s\n", marker, res.TicketID, res.Title)
		}
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Candidate articles: %d\n", report.Candidates.Total())
	if report.DryRun {
		fmt.Fprintf(w, "  Tickets created:    0 (read-only mode)\n")
	} else {
		fmt.Fprintf(w, "  Tickets created:    %d\n", report.TicketsCreated())
	}
	fmt.Fprintf(w, "\n")
}
