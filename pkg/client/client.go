// Package client is a Go client for the DevHub API together with a small
// state store that folds API responses into auth, profile and post state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultBaseURL is where a locally started server listens.
const DefaultBaseURL = "http://localhost:5000"

// Message is one entry of an API error body.
type Message struct {
	Msg   string `json:"msg"`
	Param string `json:"param,omitempty"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status int       `json:"-"`
	Code   string    `json:"code"`
	Errors []Message `json:"errors"`
}

func (e *APIError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, m := range e.Errors {
		msgs = append(msgs, m.Msg)
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("devhub: status %d", e.Status)
	}
	return fmt.Sprintf("devhub: status %d: %s", e.Status, strings.Join(msgs, "; "))
}

// Client calls the DevHub REST API. It keeps no credentials; every call
// takes the Session to act as.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, sess Session, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("devhub request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, apiErr) != nil || len(apiErr.Errors) == 0 {
			apiErr.Errors = []Message{{Msg: http.StatusText(resp.StatusCode)}}
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type tokenResponse struct {
	Token string `json:"token"`
}

type msgResponse struct {
	Msg string `json:"msg"`
}

type textRequest struct {
	Text string `json:"text"`
}

func seg(s string) string { return url.PathEscape(s) }

// Register creates an account and returns its session.
func (c *Client) Register(ctx context.Context, sess Session, in RegisterInput) (Session, error) {
	var out tokenResponse
	if err := c.do(ctx, sess, http.MethodPost, "/users", in, &out); err != nil {
		return Session{}, err
	}
	return Session{Token: out.Token}, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, sess Session, in LoginInput) (Session, error) {
	var out tokenResponse
	if err := c.do(ctx, sess, http.MethodPost, "/auth", in, &out); err != nil {
		return Session{}, err
	}
	return Session{Token: out.Token}, nil
}

// LoadUser returns the account behind sess.
func (c *Client) LoadUser(ctx context.Context, sess Session) (*User, error) {
	var out User
	if err := c.do(ctx, sess, http.MethodGet, "/auth", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the session's token on the server.
func (c *Client) Logout(ctx context.Context, sess Session) error {
	return c.do(ctx, sess, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) MyProfile(ctx context.Context, sess Session) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, sess, http.MethodGet, "/profile/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profiles(ctx context.Context, sess Session) ([]Profile, error) {
	var out []Profile
	if err := c.do(ctx, sess, http.MethodGet, "/profile", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ProfileByUser(ctx context.Context, sess Session, userID string) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, sess, http.MethodGet, "/profile/user/"+seg(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveProfile creates or replaces the caller's profile.
func (c *Client) SaveProfile(ctx context.Context, sess Session, in ProfileInput) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, sess, http.MethodPost, "/profile", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddExperience(ctx context.Context, sess Session, in ExperienceInput) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, sess, http.MethodPut, "/profile/experience", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveExperience(ctx context.Context, sess Session, expID string) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, sess, http.MethodDelete, "/profile/experience/"+seg(expID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddEducation(ctx context.Context, sess Session, in EducationInput) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, sess, http.MethodPut, "/profile/education", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveEducation(ctx context.Context, sess Session, eduID string) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, sess, http.MethodDelete, "/profile/education/"+seg(eduID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GithubRepos(ctx context.Context, sess Session, username string) ([]Repo, error) {
	var out []Repo
	if err := c.do(ctx, sess, http.MethodGet, "/profile/github/"+seg(username), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAccount removes the caller's posts, profile and account.
func (c *Client) DeleteAccount(ctx context.Context, sess Session) error {
	return c.do(ctx, sess, http.MethodDelete, "/profile", nil, &msgResponse{})
}

func (c *Client) Posts(ctx context.Context, sess Session) ([]Post, error) {
	var out []Post
	if err := c.do(ctx, sess, http.MethodGet, "/posts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Post(ctx context.Context, sess Session, postID string) (*Post, error) {
	var out Post
	if err := c.do(ctx, sess, http.MethodGet, "/posts/"+seg(postID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePost(ctx context.Context, sess Session, text string) (*Post, error) {
	var out Post
	if err := c.do(ctx, sess, http.MethodPost, "/posts", textRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, sess Session, postID string) error {
	return c.do(ctx, sess, http.MethodDelete, "/posts/"+seg(postID), nil, &msgResponse{})
}

// Like returns the post's like set after adding the caller.
func (c *Client) Like(ctx context.Context, sess Session, postID string) ([]Like, error) {
	var out []Like
	if err := c.do(ctx, sess, http.MethodPut, "/posts/like/"+seg(postID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Unlike returns the post's like set after removing the caller.
func (c *Client) Unlike(ctx context.Context, sess Session, postID string) ([]Like, error) {
	var out []Like
	if err := c.do(ctx, sess, http.MethodPut, "/posts/unlike/"+seg(postID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddComment(ctx context.Context, sess Session, postID, text string) ([]Comment, error) {
	var out []Comment
	if err := c.do(ctx, sess, http.MethodPost, "/posts/comment/"+seg(postID), textRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RemoveComment(ctx context.Context, sess Session, postID, commentID string) ([]Comment, error) {
	var out []Comment
	path := "/posts/comment/" + seg(postID) + "/" + seg(commentID)
	if err := c.do(ctx, sess, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Feed streams realtime events until ctx is done or the server closes the
// connection. The returned channel is closed when the stream ends.
func (c *Client) Feed(ctx context.Context, sess Session) (<-chan Event, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/ws"
	header := http.Header{}
	if sess.Authenticated() {
		header.Set("Authorization", "Bearer "+sess.Token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			apiErr := &APIError{Status: resp.StatusCode}
			if json.NewDecoder(resp.Body).Decode(apiErr) != nil || len(apiErr.Errors) == 0 {
				apiErr.Errors = []Message{{Msg: http.StatusText(resp.StatusCode)}}
			}
			return nil, apiErr
		}
		return nil, fmt.Errorf("devhub feed dial failed: %w", err)
	}

	events := make(chan Event, 16)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go func() {
		defer close(events)
		defer conn.Close()
		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
