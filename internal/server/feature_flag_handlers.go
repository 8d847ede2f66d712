package server

import (
	"github.com/mrJackie7/coderdev-hub/internal/middleware"
	"github.com/mrJackie7/coderdev-hub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/feature-flags
// @Summary Feature flags
// @Description Configured flags and their evaluated state for the caller
// @Tags meta
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.flags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.flags.Raw(),
		"evaluated": s.flags.Snapshot(middleware.UserID(c)),
	})
}

// featureGate answers 404 when the named flag is switched off for the caller.
// Unconfigured flags stay on.
func (s *Server) featureGate(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s.flags.EnabledOr(name, middleware.UserID(c), true) {
			return c.Next()
		}
		return respondError(c, models.NewNotFoundMessage("Not found"))
	}
}
