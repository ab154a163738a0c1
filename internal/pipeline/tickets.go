package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"kbqa/internal/model"
	"kbqa/internal/timewin"
	"kbqa/internal/zendesk"
)

// maxSubmitWorkers bounds concurrent ticket submissions
const maxSubmitWorkers = 10

// Submitter builds QA review ticket payloads and files them on behalf of
// the configured API user.
type Submitter struct {
	client   *zendesk.Client
	tickets  model.TicketConfig
	window   timewin.Info
	apiUser  int64
	readOnly bool
}

// NewSubmitter builds a submitter for one run
func NewSubmitter(client *zendesk.Client, cfg *model.Config, window timewin.Info) *Submitter {
	return &Submitter{
		client:   client,
		tickets:  cfg.Tickets,
		window:   window,
		apiUser:  cfg.Zendesk.APIUserID,
		readOnly: cfg.Tickets.ReadOnly,
	}
}

type ticketPayload struct {
	Ticket ticketBody `json:"ticket"`
}

type ticketBody struct {
	RequesterID  int64         `json:"requester_id"`
	Subject      string        `json:"subject"`
	Comment      ticketComment `json:"comment"`
	Tags         []string      `json:"tags"`
	BrandID      int64         `json:"brand_id,omitempty"`
	TicketFormID int64         `json:"ticket_form_id,omitempty"`
	Priority     string        `json:"priority,omitempty"`
	GroupID      int64         `json:"group_id,omitempty"`
}

type ticketComment struct {
	HTMLBody string `json:"html_body"`
	Public   bool   `json:"public"`
	AuthorID int64  `json:"author_id"`
}

type createdTicket struct {
	Ticket struct {
		ID int64 `json:"id"`
	} `json:"ticket"`
}

// BuildTicket assembles the payload for one selected article: static
// routing fields, the author as requester, and an internal comment linking
// the article.
func (s *Submitter) BuildTicket(author model.Author, candidate model.Candidate) ticketPayload {
	body := fmt.Sprintf(
		`<p>Please review <a href="%s">%s</a> for quality assessment on %s.</p>`,
		candidate.HTMLURL, candidate.Title, s.window.CurrentDate,
	)
	return ticketPayload{
		Ticket: ticketBody{
			RequesterID: author.ID,
			Subject:     Subject(candidate.Title),
			Comment: ticketComment{
				HTMLBody: body,
				Public:   false,
				AuthorID: s.apiUser,
			},
			Tags:         []string{s.window.PeriodTag},
			BrandID:      s.tickets.BrandID,
			TicketFormID: s.tickets.FormID,
			Priority:     s.tickets.Priority,
			GroupID:      s.tickets.GroupID,
		},
	}
}

// SubmitAll files one ticket per selected article. Submissions run
// concurrently and are joined once; a failure for one article never blocks
// the others. In read-only mode no network write occurs and every result
// carries the dry-run sentinel id.
func (s *Submitter) SubmitAll(ctx context.Context, selected model.CandidateSet) map[model.Author][]model.TicketResult {
	results := make(map[model.Author][]model.TicketResult, len(selected))
	for author, list := range selected {
		results[author] = make([]model.TicketResult, len(list))
	}

	if s.readOnly {
		for author, list := range selected {
			for i, candidate := range list {
				results[author][i] = model.TicketResult{
					TicketID: model.DryRunTicketID,
					Title:    candidate.Title,
				}
			}
		}
		return results
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxSubmitWorkers)

	for author, list := range selected {
		for i, candidate := range list {
			wg.Add(1)
			go func(author model.Author, idx int, candidate model.Candidate) {
				defer wg.Done()

				semaphore <- struct{}{}
				defer func() { <-semaphore }()

				// Each goroutine writes only its own preallocated slot.
				results[author][idx] = s.submitOne(ctx, author, candidate)
			}(author, i, candidate)
		}
	}
	wg.Wait()

	return results
}

// submitOne files a single ticket, impersonating the API user
func (s *Submitter) submitOne(ctx context.Context, author model.Author, candidate model.Candidate) model.TicketResult {
	payload := s.BuildTicket(author, candidate)
	url := s.client.BaseURL() + "/api/v2/tickets.json"

	var created createdTicket
	onBehalfOf := strconv.FormatInt(s.apiUser, 10)
	if err := s.client.Post(ctx, url, payload, &created, onBehalfOf); err != nil {
		fmt.Printf("✗ ticket for %q (%s): %v\n", candidate.Title, author.Name, err)
		return model.TicketResult{TicketID: model.FailedTicketID, Title: candidate.Title}
	}

	return model.TicketResult{
		TicketID: strconv.FormatInt(created.Ticket.ID, 10),
		Title:    candidate.Title,
	}
}
