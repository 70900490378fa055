package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fiveHits = `{"took":3,"hits":{"total":{"value":5},"hits":[
	{"_index":"restaurants","_id":"r1","_source":{"cuisine":"italian"}},
	{"_index":"restaurants","_id":"r2","_source":{"cuisine":"italian"}},
	{"_index":"restaurants","_id":"r3","_source":{"cuisine":"italian"}},
	{"_index":"restaurants","_id":"r4","_source":{"cuisine":"italian"}},
	{"_index":"restaurants","_id":"r5","_source":{"cuisine":"italian"}}]}}`

func newTestClient(url string) *Client {
	return NewClient(Config{BaseURL: url, Index: "restaurants", Username: "elastic", Password: "secret", Timeout: time.Second})
}

func TestSearchIDs(t *testing.T) {
	var gotPath, gotQuery, gotSize string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "elastic" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotSize = r.URL.Query().Get("size")
		_, _ = w.Write([]byte(fiveHits))
	}))
	defer server.Close()

	ids, err := newTestClient(server.URL+"/").SearchIDs(context.Background(), "italian food", 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"r1", "r2", "r3", "r4", "r5"}, ids)
	assert.Equal(t, "/restaurants/_search", gotPath)
	assert.Equal(t, "italian food", gotQuery)
	assert.Equal(t, "5", gotSize)
}

func TestSearchIDsTruncatesToLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fiveHits))
	}))
	defer server.Close()

	ids, err := newTestClient(server.URL).SearchIDs(context.Background(), "italian", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, ids)
}

func TestSearchIDsNoHits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":0},"hits":[]}}`))
	}))
	defer server.Close()

	ids, err := newTestClient(server.URL).SearchIDs(context.Background(), "thai", 5)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearchIDsErrors(t *testing.T) {
	t.Run("status error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"cluster_block_exception"}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).SearchIDs(context.Background(), "thai", 5)
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
		assert.Contains(t, statusErr.Body, "cluster_block_exception")
	})

	t.Run("invalid json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).SearchIDs(context.Background(), "thai", 5)
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := newTestClient(url).SearchIDs(context.Background(), "thai", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query search index")
	})
}
