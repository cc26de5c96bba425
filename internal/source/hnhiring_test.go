package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHNHiringPaginatesAllPages(t *testing.T) {
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		requested = append(requested, page)
		require.Equal(t, "job", r.URL.Query().Get("tags"))
		fmt.Fprintf(w, `{
			"hits": [{
				"objectID": "%s00",
				"title": "Acme (YC W26) Is Hiring Go Engineers",
				"story_text": "remote ok",
				"created_at": "2026-08-01T00:00:00Z"
			}],
			"nbPages": 2,
			"page": %s
		}`, page, page)
	}))
	defer server.Close()

	src := NewHNHiringSource(server.Client(), 5, 0)
	src.baseURL = server.URL

	jobs, err := src.Fetch(context.Background(), "golang", "")
	require.NoError(t, err)
	require.Equal(t, []string{"0", "1"}, requested)
	require.Len(t, jobs, 2)
	// story without an external URL falls back to the HN item link
	require.Equal(t, "https://news.ycombinator.com/item?id=000", jobs[0].URL)
}

func TestHNHiringStopsAtMaxPages(t *testing.T) {
	pages := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		fmt.Fprint(w, `{"hits":[],"nbPages":100,"page":0}`)
	}))
	defer server.Close()

	src := NewHNHiringSource(server.Client(), 2, 0)
	src.baseURL = server.URL

	_, err := src.Fetch(context.Background(), "golang", "")
	require.NoError(t, err)
	require.Equal(t, 2, pages)
}

func TestHNHiringPropagatesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	src := NewHNHiringSource(server.Client(), 2, 0)
	src.baseURL = server.URL

	_, err := src.Fetch(context.Background(), "golang", "")
	require.Error(t, err)
}
