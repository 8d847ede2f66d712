// Package github looks up a developer's most recent public repositories.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mrJackie7/coderdev-hub/internal/cache"
	"github.com/mrJackie7/coderdev-hub/internal/middleware"
	"github.com/mrJackie7/coderdev-hub/internal/models"
	"github.com/mrJackie7/coderdev-hub/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultAPIURL is the public GitHub REST endpoint.
	DefaultAPIURL = "https://api.github.com"
	// RepoLimit is how many repositories a lookup returns.
	RepoLimit = 5

	userAgent = "devhub-api"
)

// Repo is the subset of a GitHub repository shown on profiles.
type Repo struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	HTMLURL         string    `json:"html_url"`
	Description     string    `json:"description"`
	Language        string    `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	WatchersCount   int       `json:"watchers_count"`
	ForksCount      int       `json:"forks_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client fetches repositories from the GitHub REST API, cache-aside in Redis.
type Client struct {
	baseURL  string
	token    string
	cacheTTL time.Duration
	http     *http.Client
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultAPIURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimSuffix(opts.BaseURL, "/"),
		token:    opts.Token,
		cacheTTL: opts.CacheTTL,
		http:     &http.Client{Timeout: opts.Timeout},
	}
}

// Repos returns the newest repositories of username. Every failure, whether
// network, a missing user or rate limiting, is reported as UPSTREAM_UNAVAILABLE.
func (c *Client) Repos(ctx context.Context, username string) ([]Repo, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewUpstreamUnavailableError(errors.New("empty username"))
	}

	var repos []Repo
	fetched := false
	err := cache.Aside(ctx, cache.GithubReposKey(username), &repos, c.cacheTTL, func() error {
		fetched = true
		var ferr error
		repos, ferr = c.fetch(ctx, username)
		return ferr
	})
	if err != nil {
		observability.GithubLookups.WithLabelValues("failed").Inc()
		middleware.Logger.WarnContext(ctx, "github lookup failed", "username", username, "error", err)
		return nil, models.NewUpstreamUnavailableError(err)
	}

	if fetched {
		observability.GithubLookups.WithLabelValues("fetched").Inc()
	} else {
		observability.GithubLookups.WithLabelValues("hit").Inc()
	}
	return repos, nil
}

func (c *Client) fetch(ctx context.Context, username string) (repos []Repo, err error) {
	ctx, span := observability.StartGithubLookup(ctx, username)
	defer func() { observability.EndSpan(span, err) }()

	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=%d&sort=created&direction=desc",
		c.baseURL, url.PathEscape(username), RepoLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("github returned status %d: %s", resp.StatusCode, string(body))
	}

	repos = []Repo{}
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(repos) > RepoLimit {
		repos = repos[:RepoLimit]
	}
	return repos, nil
}
