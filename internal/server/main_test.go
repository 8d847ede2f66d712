package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/mrJackie7/coderdev-hub/internal/cache"
	"github.com/mrJackie7/coderdev-hub/internal/config"
	"github.com/mrJackie7/coderdev-hub/internal/database"
	"github.com/mrJackie7/coderdev-hub/internal/models"
	"github.com/mrJackie7/coderdev-hub/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestMain(m *testing.M) {
	// disables the Redis-backed register and login limits
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

type testServer struct {
	*Server
	app *fiber.App
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            testSecret,
		TokenTTLHours:        120,
		Port:                 "0",
		Env:                  "test",
		AllowedOrigins:       "http://localhost:3000",
		StoreDriver:          config.DriverSQLite,
		GithubAPIURL:         "http://127.0.0.1:1",
		GithubTimeoutSeconds: 2,
	}
}

// newTestServer serves the full API over a private in-memory database.
// rdb may be nil to run without Redis.
func newTestServer(t *testing.T, rdb *redis.Client, opts ...func(*config.Config)) *testServer {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	cfg := testConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	srv, err := NewServerWithDeps(cfg, repository.NewGormStores(db), rdb)
	require.NoError(t, err)
	srv.authService.WithBcryptCost(bcrypt.MinCost)

	t.Cleanup(func() {
		srv.shutdownFn()
		_ = srv.hub.Shutdown(context.Background())
		_ = sqlDB.Close()
	})

	return &testServer{Server: srv, app: srv.App()}
}

// newTestRedis starts miniredis and installs it as the shared cache client.
func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})
	return mr, rdb
}

// do sends a JSON request through the app and returns the status and body.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (ts *testServer) register(t *testing.T, name, email, password string) string {
	t.Helper()
	status, body := ts.do(t, fiber.MethodPost, "/api/users", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	return decode[tokenResponse](t, body).Token
}

// me returns the account behind token.
func (ts *testServer) me(t *testing.T, token string) models.User {
	t.Helper()
	status, body := ts.do(t, fiber.MethodGet, "/api/auth", token, nil)
	require.Equal(t, fiber.StatusOK, status, string(body))
	return decode[models.User](t, body)
}

func (ts *testServer) createPost(t *testing.T, token, text string) models.Post {
	t.Helper()
	status, body := ts.do(t, fiber.MethodPost, "/api/posts", token, map[string]string{"text": text})
	require.Equal(t, fiber.StatusOK, status, string(body))
	return decode[models.Post](t, body)
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

// errorMsgs returns the msg of every entry of an error body.
func errorMsgs(t *testing.T, data []byte) []string {
	t.Helper()
	resp := decode[models.ErrorResponse](t, data)
	msgs := make([]string, 0, len(resp.Errors))
	for _, e := range resp.Errors {
		msgs = append(msgs, e.Msg)
	}
	return msgs
}
