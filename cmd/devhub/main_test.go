package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrJackie7/coderdev-hub/pkg/client"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	authed := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer tok-cli"
	}
	unauthorized := map[string]any{"errors": []map[string]string{{"msg": "No token, authorization denied"}}}

	mux.HandleFunc("POST /api/auth", func(w http.ResponseWriter, r *http.Request) {
		var in client.LoginInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "secret1" {
			reply(w, http.StatusBadRequest, map[string]any{"errors": []map[string]string{{"msg": "Invalid Credentials"}}})
			return
		}
		reply(w, http.StatusOK, map[string]string{"token": "tok-cli"})
	})
	mux.HandleFunc("GET /api/auth", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			reply(w, http.StatusUnauthorized, unauthorized)
			return
		}
		reply(w, http.StatusOK, client.User{ID: "u1", Name: "Ana", Email: "ana@devhub.test"})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]string{"msg": "Logged out"})
	})
	mux.HandleFunc("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			reply(w, http.StatusUnauthorized, unauthorized)
			return
		}
		reply(w, http.StatusOK, []client.Post{{ID: "p1", Name: "Ana", Text: "hello devs"}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	srv := newTestAPI(t)
	session := filepath.Join(t.TempDir(), "nested", "session.yml")
	common := []string{"--api", srv.URL, "--session", session}

	_, stderr, err := execute(t, append([]string{"login", "--email", "ana@devhub.test", "--password", "nope"}, common...)...)
	if err == nil {
		t.Fatal("expected login with a wrong password to fail")
	}
	if !strings.Contains(stderr, "Invalid Credentials") {
		t.Fatalf("expected the API message on stderr, got %q", stderr)
	}
	if _, err := os.Stat(session); !os.IsNotExist(err) {
		t.Fatal("expected no session file after a failed login")
	}

	out, _, err := execute(t, append([]string{"login", "--email", "ana@devhub.test", "--password", "secret1"}, common...)...)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !strings.Contains(out, "Welcome Ana") {
		t.Fatalf("unexpected login output %q", out)
	}
	saved, err := loadSession(session)
	if err != nil || saved.Token != "tok-cli" {
		t.Fatalf("expected the token to be saved, got %+v (%v)", saved, err)
	}

	out, _, err = execute(t, append([]string{"whoami"}, common...)...)
	if err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	if !strings.Contains(out, "Ana <ana@devhub.test>") {
		t.Fatalf("unexpected whoami output %q", out)
	}

	out, _, err = execute(t, append([]string{"posts", "list"}, common...)...)
	if err != nil {
		t.Fatalf("posts list failed: %v", err)
	}
	if !strings.Contains(out, "hello devs") {
		t.Fatalf("unexpected posts output %q", out)
	}

	if _, _, err := execute(t, append([]string{"logout"}, common...)...); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := os.Stat(session); !os.IsNotExist(err) {
		t.Fatal("expected logout to remove the session file")
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	srv := newTestAPI(t)
	session := filepath.Join(t.TempDir(), "session.yml")

	for _, args := range [][]string{{"whoami"}, {"posts", "list"}, {"profile", "me"}} {
		_, _, err := execute(t, append(args, "--api", srv.URL, "--session", session)...)
		if err == nil || !strings.Contains(err.Error(), "not logged in") {
			t.Fatalf("%v: expected a login error, got %v", args, err)
		}
	}
}

func TestRejectedSessionIsDropped(t *testing.T) {
	srv := newTestAPI(t)
	session := filepath.Join(t.TempDir(), "session.yml")
	if err := saveSession(session, client.Session{Token: "stale"}); err != nil {
		t.Fatalf("save session: %v", err)
	}

	if _, _, err := execute(t, "whoami", "--api", srv.URL, "--session", session); err == nil {
		t.Fatal("expected whoami with a stale token to fail")
	}
	if _, err := os.Stat(session); !os.IsNotExist(err) {
		t.Fatal("expected the stale session to be removed")
	}
}

func TestDeleteAccountNeedsConfirmation(t *testing.T) {
	_, _, err := execute(t, "profile", "delete-account", "--session", filepath.Join(t.TempDir(), "s.yml"))
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("expected a confirmation error, got %v", err)
	}
}

func TestSessionFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yml")
	if err := saveSession(path, client.Session{Token: "abc"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.TrimSpace(string(data)) != "token: abc" {
		t.Fatalf("unexpected file contents %q", data)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}
