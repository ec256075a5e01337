package readability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func noSleep(time.Duration) {}

func TestClean_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Cleaned{Title: "t", TextContent: "body", Length: 4})
	}))
	defer srv.Close()

	c := NewClient(Options{URL: srv.URL})
	got, err := c.Clean(context.Background(), "<html></html>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "t" || got.TextContent != "body" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestClean_FourXXDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(Options{URL: srv.URL, MaxRetries: 2})
	c.sleep = noSleep
	_, err := c.Clean(context.Background(), "<html></html>")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt on 4xx, got %d", calls)
	}
}

func TestClean_DecodesDocumentedWireShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"t","content":"<p>body</p>","textContent":"body","length":4,"byline":"an author"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{URL: srv.URL})
	got, err := c.Clean(context.Background(), "<html></html>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TextContent != "body" {
		t.Fatalf("expected textContent to decode into TextContent, got %+v", got)
	}
	if got.Title != "t" || got.Byline != "an author" || got.Length != 4 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestClean_RetriesOn5xxThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(Cleaned{Title: "t", TextContent: "body"})
	}))
	defer srv.Close()

	c := NewClient(Options{URL: srv.URL, MaxRetries: 2})
	c.sleep = noSleep
	got, err := c.Clean(context.Background(), "<html></html>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a retry, got %d calls", calls)
	}
	if got.TextContent != "body" {
		t.Fatalf("unexpected result: %+v", got)
	}
}
