// Package search queries the restaurant index with an Elasticsearch URI search.
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// maxErrorBody bounds how much of a failed response is kept in StatusError
const maxErrorBody = 1024

// Config holds the index connection settings
type Config struct {
	BaseURL  string
	Index    string
	Username string
	Password string
	Timeout  time.Duration
}

// StatusError is returned when the index answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search index returned status %d: %s", e.Code, e.Body)
}

// Client searches one index.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a Client using a dedicated http.Client bounded by cfg.Timeout.
func NewClient(cfg Config) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewClientWithHTTP returns a Client using the given http.Client.
func NewClientWithHTTP(cfg Config, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, http: httpClient}
}

// SearchIDs returns the ids of the documents matching term, in index order,
// at most limit of them.
func (c *Client) SearchIDs(ctx context.Context, term string, limit int) ([]string, error) {
	reqURL, err := c.buildRequestURL(term, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("failed to parse search response: invalid JSON")
	}

	var ids []string
	for _, id := range gjson.GetBytes(body, "hits.hits.#._id").Array() {
		if len(ids) == limit {
			break
		}
		ids = append(ids, id.String())
	}
	return ids, nil
}

func (c *Client) buildRequestURL(term string, limit int) (string, error) {
	u, err := url.Parse(strings.TrimRight(c.cfg.BaseURL, "/") + "/" + url.PathEscape(c.cfg.Index) + "/_search")
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("q", term)
	if limit > 0 {
		q.Set("size", strconv.Itoa(limit))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query search index: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
