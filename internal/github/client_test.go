package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mrJackie7/coderdev-hub/internal/cache"
	"github.com/mrJackie7/coderdev-hub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reposJSON(n int) string {
	out := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"id":%d,"name":"repo-%d","html_url":"https://github.com/ana/repo-%d","description":null,"stargazers_count":%d,"created_at":"2024-01-0%dT00:00:00Z"}`, i+1, i, i, i, i+1)
	}
	return out + "]"
}

func TestClient_Repos(t *testing.T) {
	var gotPath, gotQuery, gotAuth, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reposJSON(7)))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, Token: "secret"})
	repos, err := client.Repos(context.Background(), "ana")
	require.NoError(t, err)

	assert.Equal(t, "/users/ana/repos", gotPath)
	assert.Contains(t, gotQuery, "per_page=5")
	assert.Contains(t, gotQuery, "sort=created")
	assert.Equal(t, "token secret", gotAuth)
	assert.NotEmpty(t, gotUA)

	require.Len(t, repos, RepoLimit)
	assert.Equal(t, "repo-0", repos[0].Name)
	assert.Empty(t, repos[0].Description)
}

func TestClient_ReposFailuresAreUniform(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"Not Found", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
		}},
		{"Rate Limited", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"message":"API rate limit exceeded"}`, http.StatusForbidden)
		}},
		{"Malformed Body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(Options{BaseURL: srv.URL}).Repos(context.Background(), "ana")
			require.Error(t, err)
			assert.True(t, models.HasCode(err, models.CodeUpstreamUnavailable))
			assert.Equal(t, http.StatusNotFound, models.StatusFor(err))
		})
	}
}

func TestClient_ReposTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}).Repos(context.Background(), "ana")
	assert.True(t, models.HasCode(err, models.CodeUpstreamUnavailable))
}

func TestClient_ReposNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewClient(Options{BaseURL: addr}).Repos(context.Background(), "ana")
	assert.True(t, models.HasCode(err, models.CodeUpstreamUnavailable))
}

func TestClient_ReposCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(reposJSON(2)))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, CacheTTL: time.Minute})
	for i := 0; i < 3; i++ {
		repos, err := client.Repos(context.Background(), "Ana")
		require.NoError(t, err)
		assert.Len(t, repos, 2)
	}
	assert.EqualValues(t, 1, calls.Load())
	assert.True(t, mr.Exists(cache.GithubReposKey("ana")))
}
