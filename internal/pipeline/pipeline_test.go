package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"kbqa/internal/model"
	"kbqa/internal/zendesk"
)

// fakeHelpdesk is an httptest-backed stand-in for the whole REST surface
// the pipeline touches: search, brands, incremental articles, tickets.
type fakeHelpdesk struct {
	mu             sync.Mutex
	server         *httptest.Server
	articleCalls   int
	createdSubject []string
}

func newFakeHelpdesk(t *testing.T) *fakeHelpdesk {
	t.Helper()
	f := &fakeHelpdesk{}
	now := time.Now().UTC()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/search.json", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{{"subject": "Quality Assessment: Old Guide"}},
		})
	})
	mux.HandleFunc("/api/v2/brands.json", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"brands": []model.Brand{
				{ID: 1, Name: "Main", Subdomain: "main", BrandURL: f.server.URL, Active: true},
				{ID: 2, Name: "Legacy", Subdomain: "legacy", BrandURL: f.server.URL, Active: true},
				{ID: 3, Name: "Archive", Subdomain: "archive", BrandURL: f.server.URL, Active: true},
			},
		})
	})
	mux.HandleFunc("/api/v2/help_center/incremental/articles.json", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.articleCalls++
		f.mu.Unlock()
		article := func(id int64, title string, editor int64) model.Article {
			return model.Article{ID: id, Translations: []model.Translation{{
				Title:       title,
				HTMLURL:     f.server.URL + "/hc/articles/" + title,
				UpdatedAt:   now,
				UpdatedByID: editor,
			}}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"articles": []model.Article{
				article(1, "Guide One", 101),
				article(2, "Guide Two", 101),
				article(3, "Guide Three", 101),
				article(4, "Old Guide", 101),   // already ticketed this period
				article(5, "Bot Notes", 202),   // authored by the excluded name
			},
			"users": []model.User{
				{ID: 101, Name: "Alice"},
				{ID: 202, Name: "API User"},
			},
			"end_of_stream": true,
		})
	})
	mux.HandleFunc("/api/v2/tickets.json", func(w http.ResponseWriter, r *http.Request) {
		var payload ticketPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.createdSubject = append(f.createdSubject, payload.Ticket.Subject)
		id := int64(5000 + len(f.createdSubject))
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"ticket": map[string]int64{"id": id}})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func e2eConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Zendesk = model.ZendeskConfig{Subdomain: "test", Token: "t", APIUserID: 999}
	cfg.Exclusions.AuthorNames = []string{"API User"}
	cfg.Exclusions.BrandNames = []string{"Legacy", "Archive"}
	cfg.HTTP.RequestsPerSecond = 1000
	cfg.HTTP.Burst = 100
	return cfg
}

func e2ePipeline(cfg *model.Config, baseURL string) *Pipeline {
	client := zendesk.NewClient(cfg.Zendesk, cfg.HTTP).WithBaseURL(baseURL)
	return NewWithClient(cfg, client)
}

func TestRun_EndToEnd(t *testing.T) {
	fake := newFakeHelpdesk(t)
	cfg := e2eConfig()

	report, err := e2ePipeline(cfg, fake.server.URL).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Only the one non-excluded brand is fetched
	if fake.articleCalls != 1 {
		t.Errorf("articles fetched for %d brands, want 1", fake.articleCalls)
	}

	// Alice's 3 in-window, un-ticketed articles are the whole candidate set
	alice := model.Author{Name: "Alice", ID: 101, Kind: model.AuthorResolved}
	if len(report.Candidates[alice]) != 3 {
		t.Errorf("Alice candidates = %d, want 3", len(report.Candidates[alice]))
	}
	if report.Candidates.Total() != 3 {
		t.Errorf("total candidates = %d, want 3", report.Candidates.Total())
	}

	// Cap 2: exactly 2 tickets filed for Alice, 1 article unused
	if len(fake.createdSubject) != 2 {
		t.Fatalf("created %d tickets, want 2: %v", len(fake.createdSubject), fake.createdSubject)
	}
	for _, subject := range fake.createdSubject {
		if !strings.HasPrefix(subject, "Quality Assessment: Guide") {
			t.Errorf("unexpected ticket subject %q", subject)
		}
	}
	if report.TicketsCreated() != 2 {
		t.Errorf("TicketsCreated = %d, want 2", report.TicketsCreated())
	}

	// Zero tickets for the excluded author, regardless of window
	for author := range report.Results {
		if author.Name == "API User" {
			t.Errorf("tickets filed for excluded author: %v", report.Results[author])
		}
	}
}

func TestRun_ReadOnly(t *testing.T) {
	fake := newFakeHelpdesk(t)
	cfg := e2eConfig()
	cfg.Tickets.ReadOnly = true

	report, err := e2ePipeline(cfg, fake.server.URL).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(fake.createdSubject) != 0 {
		t.Errorf("read-only run created tickets: %v", fake.createdSubject)
	}
	alice := model.Author{Name: "Alice", ID: 101, Kind: model.AuthorResolved}
	if len(report.Results[alice]) != 2 {
		t.Fatalf("expected 2 selections for Alice, got %d", len(report.Results[alice]))
	}
	for _, res := range report.Results[alice] {
		if res.TicketID != model.DryRunTicketID {
			t.Errorf("TicketID = %q, want dry-run sentinel", res.TicketID)
		}
	}
}

func TestRun_AbortsWhenDedupFails(t *testing.T) {
	var brandCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/search.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/v2/brands.json", func(w http.ResponseWriter, r *http.Request) {
		brandCalls++
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := e2ePipeline(e2eConfig(), server.URL).Run(context.Background())
	if err == nil {
		t.Fatal("expected error when the dedup fetch fails")
	}
	if brandCalls != 0 {
		t.Error("run must abort before any brand fetching")
	}
}

func TestRun_AbortsOnBadWindowUnit(t *testing.T) {
	cfg := e2eConfig()
	cfg.Window.Unit = "fortnights"

	_, err := e2ePipeline(cfg, "http://unused").Run(context.Background())
	if err == nil {
		t.Fatal("expected error for unrecognized window unit")
	}
}
