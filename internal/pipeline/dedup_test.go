package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kbqa/internal/model"
	"kbqa/internal/zendesk"
)

func dedupClient(baseURL string) *zendesk.Client {
	return zendesk.NewClient(
		model.ZendeskConfig{Subdomain: "test", Token: "t"},
		model.HTTPConfig{Timeout: 5 * time.Second, RequestsPerSecond: 1000, Burst: 10},
	).WithBaseURL(baseURL)
}

func TestDedupIndex_LoadAndSeen(t *testing.T) {
	var mux http.ServeMux
	var server *httptest.Server
	var gotQuery string
	mux.HandleFunc("/api/v2/search.json", func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("query"); q != "" {
			gotQuery = q
		}
		if r.URL.Query().Get("page") == "2" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]string{{"subject": "Quality Assessment: Second"}},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results":   []map[string]string{{"subject": "Quality Assessment: First"}},
			"next_page": server.URL + "/api/v2/search.json?page=2",
		})
	})
	server = httptest.NewServer(&mux)
	defer server.Close()

	index := NewDedupIndex()
	if err := index.Load(context.Background(), dedupClient(server.URL), "qa_review_2026_08"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if gotQuery != "type:ticket tags:qa_review_2026_08" {
		t.Errorf("unexpected search query: %q", gotQuery)
	}
	if index.Count() != 2 {
		t.Errorf("Count = %d, want 2", index.Count())
	}
	if !index.Seen("Quality Assessment: First") || !index.Seen("Quality Assessment: Second") {
		t.Error("loaded subjects not found")
	}
	// Exact-string matching, not fuzzy
	if index.Seen("Quality Assessment: Firs") || index.Seen("quality assessment: First") {
		t.Error("matching must be exact")
	}
}

func TestDedupIndex_LoadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	index := NewDedupIndex()
	if err := index.Load(context.Background(), dedupClient(server.URL), "qa_review_2026_08"); err == nil {
		t.Fatal("expected error when search fails")
	}
}
