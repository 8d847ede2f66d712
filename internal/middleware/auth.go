// Package middleware provides request-scoped middleware: authentication, logging, metrics, rate limiting and tracing.
package middleware

import (
	"context"
	"strings"

	"github.com/mrJackie7/coderdev-hub/internal/auth"
	"github.com/mrJackie7/coderdev-hub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier resolves a raw bearer token to its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// Locals keys set by AuthRequired.
const (
	LocalUserID = "userID"
	LocalClaims = "claims"
)

// BearerToken extracts the token from "Authorization: Bearer <t>" or the legacy x-auth-token header.
func BearerToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return strings.TrimSpace(c.Get("x-auth-token"))
}

// AuthRequired rejects requests without a valid token and stores the caller's id in locals.
func AuthRequired(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := BearerToken(c)
		if raw == "" {
			err := models.NewUnauthorizedError("No token, authorization denied")
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		claims, err := tokens.Verify(c.UserContext(), raw)
		if err != nil {
			return models.RespondWithError(c, models.StatusFor(err), err)
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalClaims, claims)
		c.SetUserContext(WithUserID(c.UserContext(), claims.UserID))

		return c.Next()
	}
}

// UserID returns the authenticated caller id set by AuthRequired.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// ClaimsFrom returns the verified token claims set by AuthRequired.
func ClaimsFrom(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(LocalClaims).(*auth.Claims)
	return claims
}
