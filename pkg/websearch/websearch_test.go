package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "golang" || r.URL.Query().Get("format") != "json" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"title": "Go", "url": "https://go.dev", "content": "the Go programming language"},
				{"title": "Tour", "url": "https://go.dev/tour", "content": "a tour of Go"},
			},
		})
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	results, err := client.Search(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 || results[0].Title != "Go" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestSearchCapsResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		results := make([]map[string]string, 10)
		for i := range results {
			results[i] = map[string]string{"title": "r", "url": "https://example.com"}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, MaxResults: 3})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	results, err := client.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
}

func TestSearchUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.Search(context.Background(), "anything"); err == nil {
		t.Fatal("expected an error for non-200 status")
	} else if !strings.Contains(err.Error(), "status=429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{URL: "http://localhost:1"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Search(context.Background(), "   "); err == nil {
		t.Fatal("expected an error for empty query")
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected an error for missing url")
	}
	if _, err := NewClient(Config{URL: "not a url"}); err == nil {
		t.Fatal("expected an error for invalid url")
	}
}
