package server

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mrJackie7/coderdev-hub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsgs   []string
	}{
		{
			name:       "not found",
			err:        models.NewNotFoundMessage("Post not found"),
			wantStatus: fiber.StatusNotFound,
			wantCode:   models.CodeNotFound,
			wantMsgs:   []string{"Post not found"},
		},
		{
			name:       "forbidden",
			err:        models.NewForbiddenError("User not authorized"),
			wantStatus: fiber.StatusForbidden,
			wantCode:   models.CodeForbidden,
			wantMsgs:   []string{"User not authorized"},
		},
		{
			name: "field errors keep their order",
			err: models.NewFieldErrors(
				models.ErrorMessage{Msg: "Status is required", Param: "status"},
				models.ErrorMessage{Msg: "Skills is required", Param: "skills"},
			),
			wantStatus: fiber.StatusBadRequest,
			wantCode:   models.CodeValidation,
			wantMsgs:   []string{"Status is required", "Skills is required"},
		},
		{
			name:       "upstream failures look like a missing profile",
			err:        models.NewUpstreamUnavailableError(errors.New("status 403")),
			wantStatus: fiber.StatusNotFound,
			wantCode:   models.CodeUpstreamUnavailable,
			wantMsgs:   []string{"No Github profile found"},
		},
		{
			name:       "unexpected errors hide their cause",
			err:        errors.New("connection reset by peer"),
			wantStatus: fiber.StatusInternalServerError,
			wantCode:   models.CodeInternal,
			wantMsgs:   []string{"Server Error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return respondError(c, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			got := decode[models.ErrorResponse](t, body)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMsgs, errorMsgs(t, body))
			assert.NotContains(t, string(body), "connection reset")
		})
	}
}

func TestParseBody(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var req textRequest
		if err := parseBody(c, &req); err != nil {
			return nil
		}
		return c.SendString("text=" + req.Text)
	})

	send := func(t *testing.T, body string) (int, string) {
		t.Helper()
		req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(data)
	}

	t.Run("valid", func(t *testing.T) {
		status, body := send(t, `{"text":"hello"}`)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "text=hello", body)
	})

	t.Run("empty body leaves the zero value", func(t *testing.T) {
		status, body := send(t, "")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "text=", body)
	})

	t.Run("malformed", func(t *testing.T) {
		status, body := send(t, `{"text":`)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, []string{"Invalid request body"}, errorMsgs(t, []byte(body)))
	})
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil)

	status, body := ts.do(t, fiber.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Len(t, errorMsgs(t, body), 1)
}
