package tle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// DefaultSourceURL queries CelesTrak for one satellite by name. %s is
// replaced by the query-escaped name.
const DefaultSourceURL = "https://celestrak.org/NORAD/elements/gp.php?NAME=%s&FORMAT=TLE"

// MaxBodyBytes caps a single fetch response.
const MaxBodyBytes = 1 << 20

// Fetcher retrieves element sets for single satellites from a remote source.
// All requests share one circuit breaker, so once the source fails repeatedly
// the remaining satellites fail fast instead of each waiting out the timeout.
type Fetcher struct {
	sourceURL  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher for the given URL template.
func NewFetcher(sourceURL string, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if sourceURL == "" {
		sourceURL = DefaultSourceURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	f := &Fetcher{
		sourceURL:  sourceURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	f.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tle-source",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.logger.Warn("tle source circuit state changed",
				"component", "tle",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return f
}

// URL returns the request URL for a satellite name.
func (f *Fetcher) URL(name string) string {
	if !strings.Contains(f.sourceURL, "%s") {
		return f.sourceURL
	}
	return fmt.Sprintf(f.sourceURL, url.QueryEscape(name))
}

// Fetch performs an HTTP GET for one satellite's element set.
func (f *Fetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	u := f.URL(name)
	result, err := f.breaker.Execute(func() (interface{}, error) {
		return f.get(ctx, u)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("fetching %s: source unavailable: %w", name, err)
		}
		return nil, fmt.Errorf("fetching %s: %w", name, err)
	}
	return result.([]byte), nil
}

func (f *Fetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, u)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > MaxBodyBytes {
		return nil, fmt.Errorf("response exceeds %d byte limit", MaxBodyBytes)
	}
	return body, nil
}
