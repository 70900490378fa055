// Package checkers provides health.Check implementations for dependencies.
package checkers

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPChecker probes an HTTP endpoint. Only 5xx responses and transport errors
// count as unhealthy, so an index answering 401 to an anonymous probe is still up.
type HTTPChecker struct {
	url    string
	name   string
	client *http.Client
}

// NewHTTPChecker returns a checker for url with a 10 second client timeout.
// An empty name defaults to the URL.
func NewHTTPChecker(url, name string) *HTTPChecker {
	return NewHTTPCheckerWithClient(url, name, &http.Client{Timeout: 10 * time.Second})
}

// NewHTTPCheckerWithClient returns a checker using client.
func NewHTTPCheckerWithClient(url, name string, client *http.Client) *HTTPChecker {
	if name == "" {
		name = url
	}
	return &HTTPChecker{url: url, name: name, client: client}
}

func (h *HTTPChecker) Name() string {
	return h.name
}

// Check issues a GET to the endpoint.
func (h *HTTPChecker) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("unhealthy status code: %d", resp.StatusCode)
	}
	return nil
}
