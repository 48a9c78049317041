package tle

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

const (
	issLine1 = "1 25544U 98067A   25045.18032407  .00016717  00000+0  30099-3 0  9993"
	issLine2 = "2 25544  51.6412 193.5765 0003457 126.2851 233.8519 15.49874301495058"
	issTLE   = "ISS (ZARYA)\n" + issLine1 + "\n" + issLine2 + "\n"
)

// TestFetcherBodyLimit verifies that responses over the byte limit are
// rejected instead of consuming unbounded memory.
func TestFetcherBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		chunk := strings.Repeat("A", 64*1024)
		for i := 0; i < 20; i++ {
			if _, err := w.Write([]byte(chunk)); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL+"/?NAME=%s", 0, testLogger)
	_, err := fetcher.Fetch(context.Background(), "ISS")
	if err == nil {
		t.Fatal("expected error for oversized response, got nil")
	}
	if !strings.Contains(err.Error(), "byte limit") {
		t.Errorf("expected body limit error, got: %v", err)
	}
}

func TestFetcherSuccess(t *testing.T) {
	var gotName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotName = r.URL.Query().Get("NAME")
		w.Write([]byte(issTLE))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL+"/gp.php?NAME=%s&FORMAT=TLE", 0, testLogger)
	data, err := fetcher.Fetch(context.Background(), "ISS (ZARYA)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != issTLE {
		t.Errorf("body mismatch: got %d bytes, want %d", len(data), len(issTLE))
	}
	if gotName != "ISS (ZARYA)" {
		t.Errorf("server saw NAME=%q", gotName)
	}
}

func TestFetcherHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, 0, testLogger)
	if _, err := fetcher.Fetch(context.Background(), "ISS"); err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
}

// TestFetcherBreakerOpens verifies that after repeated failures the source
// is no longer contacted.
func TestFetcherBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, 0, testLogger)
	for i := 0; i < 6; i++ {
		if _, err := fetcher.Fetch(context.Background(), "SAT"); err == nil {
			t.Fatalf("fetch %d: expected error", i)
		}
	}
	if n := hits.Load(); n != 3 {
		t.Errorf("server hit %d times, want 3 before the breaker opens", n)
	}

	_, err := fetcher.Fetch(context.Background(), "SAT")
	if err == nil || !strings.Contains(err.Error(), "unavailable") {
		t.Errorf("expected open-breaker error, got %v", err)
	}
}
