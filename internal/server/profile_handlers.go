package server

import (
	"github.com/mrJackie7/coderdev-hub/internal/middleware"
	"github.com/mrJackie7/coderdev-hub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profile/me
// @Summary Current user's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetMine(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetProfiles handles GET /api/profile
// @Summary List profiles
// @Tags profile
// @Produce json
// @Success 200 {array} models.Profile
// @Router /profile [get]
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileService.GetAll(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profiles)
}

// GetProfileByUser handles GET /api/profile/user/:user_id
// @Summary Profile by user
// @Tags profile
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/user/{user_id} [get]
func (s *Server) GetProfileByUser(c *fiber.Ctx) error {
	profile, err := s.profileService.GetByUser(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// UpsertProfile handles POST /api/profile
// @Summary Create or update profile
// @Description Skills may be a comma separated string or an array. Links are normalized to https.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ProfileInput true "Profile"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile [post]
func (s *Server) UpsertProfile(c *fiber.Ctx) error {
	var req service.ProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	profile, err := s.profileService.Upsert(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// DeleteAccount handles DELETE /api/profile
// @Summary Delete account
// @Description Removes the caller's posts, profile and user, in that order
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} msgResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /profile [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := s.profileService.DeleteCascade(ctx, middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}

	// the account is gone; its token should not outlive it
	if err := s.authService.Logout(ctx, middleware.ClaimsFrom(c)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke token of deleted account", "error", err)
	}
	return c.JSON(msgResponse{Msg: "User deleted"})
}

// AddExperience handles PUT /api/profile/experience
// @Summary Add experience
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ExperienceInput true "Experience"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/experience [put]
func (s *Server) AddExperience(c *fiber.Ctx) error {
	var req service.ExperienceInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	profile, err := s.profileService.AddExperience(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// RemoveExperience handles DELETE /api/profile/experience/:exp_id
// @Summary Remove experience
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param exp_id path string true "Experience ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/experience/{exp_id} [delete]
func (s *Server) RemoveExperience(c *fiber.Ctx) error {
	profile, err := s.profileService.RemoveExperience(c.UserContext(), middleware.UserID(c), c.Params("exp_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// AddEducation handles PUT /api/profile/education
// @Summary Add education
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.EducationInput true "Education"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/education [put]
func (s *Server) AddEducation(c *fiber.Ctx) error {
	var req service.EducationInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	profile, err := s.profileService.AddEducation(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// RemoveEducation handles DELETE /api/profile/education/:edu_id
// @Summary Remove education
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param edu_id path string true "Education ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/education/{edu_id} [delete]
func (s *Server) RemoveEducation(c *fiber.Ctx) error {
	profile, err := s.profileService.RemoveEducation(c.UserContext(), middleware.UserID(c), c.Params("edu_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetGithubRepos handles GET /api/profile/github/:username
// @Summary GitHub repositories
// @Description The five newest public repositories of a GitHub user
// @Tags profile
// @Produce json
// @Param username path string true "GitHub username"
// @Success 200 {array} github.Repo
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/github/{username} [get]
func (s *Server) GetGithubRepos(c *fiber.Ctx) error {
	repos, err := s.github.Repos(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(repos)
}
