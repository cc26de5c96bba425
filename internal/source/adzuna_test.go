package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdzunaFetchSkipsWithoutCredentials(t *testing.T) {
	src := NewAdzunaSource("", "", "us", http.DefaultClient)
	jobs, err := src.Fetch(context.Background(), "golang", "")
	require.NoError(t, err)
	require.Empty(t, jobs)
}

func TestAdzunaFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "id", r.URL.Query().Get("app_id"))
		require.Equal(t, "key", r.URL.Query().Get("app_key"))
		require.Equal(t, "golang", r.URL.Query().Get("what"))
		fmt.Fprint(w, `{"results":[{
			"title":"Go Developer",
			"description":"writing services",
			"company":{"display_name":"Acme"},
			"location":{"display_name":"Remote"},
			"salary_min":90000,
			"salary_max":120000,
			"redirect_url":"https://adzuna.example/j/1",
			"created":"2026-08-01T00:00:00Z"
		}]}`)
	}))
	defer server.Close()

	src := NewAdzunaSource("id", "key", "us", server.Client())
	src.baseURL = server.URL

	jobs, err := src.Fetch(context.Background(), "golang", "Berlin")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "Go Developer", jobs[0].Title)
	require.Equal(t, "Acme", jobs[0].Company)
	require.Equal(t, "90000-120000", jobs[0].Salary)
	require.Equal(t, "https://adzuna.example/j/1", jobs[0].URL)
}

func TestAdzunaFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	src := NewAdzunaSource("id", "key", "us", server.Client())
	src.baseURL = server.URL

	_, err := src.Fetch(context.Background(), "golang", "")
	require.Error(t, err)
}

func TestFormatSalaryRange(t *testing.T) {
	require.Equal(t, "90000-120000", formatSalaryRange(90000, 120000))
	require.Equal(t, "90000", formatSalaryRange(90000, 0))
	require.Equal(t, "120000", formatSalaryRange(0, 120000))
	require.Equal(t, "", formatSalaryRange(0, 0))
}
