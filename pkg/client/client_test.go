package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory stand-in for the DevHub API.
type fakeAPI struct {
	mu       sync.Mutex
	token    string
	profile  *Profile
	posts    []Post
	requests []string
	revoked  bool
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code string, msgs ...string) {
	body := APIError{Code: code}
	for _, m := range msgs {
		body.Errors = append(body.Errors, Message{Msg: m})
	}
	writeJSON(w, status, body)
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{token: "tok-ana"}
	mux := http.NewServeMux()

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			ok := !f.revoked && r.Header.Get("Authorization") == "Bearer "+f.token
			f.mu.Unlock()
			if !ok {
				writeErr(w, http.StatusUnauthorized, "UNAUTHORIZED", "No token, authorization denied")
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("POST /api/users", func(w http.ResponseWriter, r *http.Request) {
		var in RegisterInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Email == "taken@devhub.test" {
			writeErr(w, http.StatusBadRequest, "DUPLICATE_EMAIL", "User already exists")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": f.token})
	})
	mux.HandleFunc("POST /api/auth", func(w http.ResponseWriter, r *http.Request) {
		var in LoginInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "secret1" {
			writeErr(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid Credentials")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": f.token})
	})
	mux.HandleFunc("GET /api/auth", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, User{ID: "u1", Name: "Ana", Email: "ana@devhub.test"})
	}))
	mux.HandleFunc("POST /api/auth/logout", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.revoked = true
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"msg": "Logged out"})
	}))
	mux.HandleFunc("GET /api/profile/me", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.profile == nil {
			writeErr(w, http.StatusBadRequest, "NOT_FOUND", "There is no profile for this user")
			return
		}
		writeJSON(w, http.StatusOK, f.profile)
	}))
	mux.HandleFunc("POST /api/profile", authed(func(w http.ResponseWriter, r *http.Request) {
		var in ProfileInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Status == "" {
			writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "Status is required", "Skills is required")
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		var skills []string
		for _, s := range strings.Split(in.Skills, ",") {
			skills = append(skills, strings.TrimSpace(s))
		}
		f.profile = &Profile{ID: "p1", Status: in.Status, Skills: skills, User: &UserSummary{ID: "u1", Name: "Ana"}}
		writeJSON(w, http.StatusOK, f.profile)
	}))
	mux.HandleFunc("PUT /api/profile/experience", authed(func(w http.ResponseWriter, r *http.Request) {
		var in ExperienceInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.profile.Experience = append([]Experience{{ID: "e1", Title: in.Title, Company: in.Company, From: in.From}}, f.profile.Experience...)
		writeJSON(w, http.StatusOK, f.profile)
	}))
	mux.HandleFunc("DELETE /api/profile", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.profile = nil
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"msg": "User deleted"})
	}))
	mux.HandleFunc("GET /api/profile/github/{username}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("username") != "octocat" {
			writeErr(w, http.StatusNotFound, "UPSTREAM_UNAVAILABLE", "No Github profile found")
			return
		}
		writeJSON(w, http.StatusOK, []Repo{{ID: 1, Name: "hello-world", StargazersCount: 3}})
	})
	mux.HandleFunc("GET /api/posts", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.posts)
	}))
	mux.HandleFunc("POST /api/posts", authed(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Text == "" {
			writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "Text is required")
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		post := Post{ID: "post-" + string(rune('a'+len(f.posts))), UserID: "u1", Text: in.Text, Name: "Ana"}
		f.posts = append([]Post{post}, f.posts...)
		writeJSON(w, http.StatusOK, post)
	}))
	mux.HandleFunc("DELETE /api/posts/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := r.PathValue("id")
		for i, p := range f.posts {
			if p.ID == id {
				f.posts = append(f.posts[:i], f.posts[i+1:]...)
				writeJSON(w, http.StatusOK, map[string]string{"msg": "Post removed"})
				return
			}
		}
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
	}))
	mux.HandleFunc("PUT /api/posts/like/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Like{{ID: "l1", UserID: "u1"}})
	}))
	mux.HandleFunc("PUT /api/posts/unlike/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusBadRequest, "NOT_LIKED", "Post has not yet been liked")
	}))
	mux.HandleFunc("POST /api/posts/comment/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Comment{{ID: "c1", UserID: "u1", Text: "nice"}})
	}))
	mux.HandleFunc("DELETE /api/posts/comment/{id}/{comment_id}", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Comment{})
	}))
	mux.HandleFunc("GET /api/oops", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.EscapedPath())
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func TestClient_AuthFlow(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := New(srv.URL + "/")
	ctx := context.Background()

	_, err := c.Login(ctx, Session{}, LoginInput{Email: "ana@devhub.test", Password: "wrong"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	assert.Equal(t, "devhub: status 400: Invalid Credentials", apiErr.Error())

	sess, err := c.Login(ctx, Session{}, LoginInput{Email: "ana@devhub.test", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, sess.Authenticated())

	_, err = c.LoadUser(ctx, Session{})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	user, err := c.LoadUser(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)

	require.NoError(t, c.Logout(ctx, sess))
	_, err = c.LoadUser(ctx, sess)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestClient_ValidationMessages(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := New(srv.URL)

	_, err := c.SaveProfile(context.Background(), Session{Token: "tok-ana"}, ProfileInput{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Len(t, apiErr.Errors, 2)
	assert.Equal(t, "Status is required", apiErr.Errors[0].Msg)
	assert.Equal(t, "Skills is required", apiErr.Errors[1].Msg)
}

func TestClient_NonJSONErrorFallsBackToStatusText(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := New(srv.URL)

	err := c.do(context.Background(), Session{}, http.MethodGet, "/oops", nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, []Message{{Msg: "Bad Gateway"}}, apiErr.Errors)
}

func TestClient_EscapesPathSegments(t *testing.T) {
	f, srv := newFakeAPI(t)
	c := New(srv.URL)

	_, err := c.GithubRepos(context.Background(), Session{}, "a/b")
	require.Error(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Contains(t, f.requests, "GET /api/profile/github/a%2Fb")
}

func TestClient_Feed(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ws" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok-ana" {
			writeErr(w, http.StatusUnauthorized, "UNAUTHORIZED", "No token, authorization denied")
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(map[string]any{"type": "post_created", "payload": map[string]string{"id": "p1"}})
		_ = conn.WriteJSON(map[string]any{"type": "post_deleted", "payload": map[string]string{"post_id": "p1"}})
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.Feed(ctx, Session{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "No token, authorization denied", apiErr.Errors[0].Msg)

	events, err := c.Feed(ctx, Session{Token: "tok-ana"})
	require.NoError(t, err)

	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "post_created", got[0].Type)
	assert.JSONEq(t, `{"id":"p1"}`, string(got[0].Payload))
	assert.Equal(t, "post_deleted", got[1].Type)
}
