package service

import (
	"context"
	"strings"

	"github.com/mrJackie7/coderdev-hub/internal/middleware"
	"github.com/mrJackie7/coderdev-hub/internal/models"
	"github.com/mrJackie7/coderdev-hub/internal/observability"
	"github.com/mrJackie7/coderdev-hub/internal/repository"
	"github.com/mrJackie7/coderdev-hub/internal/validation"
)

// Cascade steps, in execution order.
const (
	StepDeletePosts   = "posts"
	StepDeleteProfile = "profile"
	StepDeleteUser    = "user"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
}

func NewProfileService(
	profileRepo repository.ProfileRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
	}
}

func (s *ProfileService) GetMine(ctx context.Context, userID string) (*models.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

func (s *ProfileService) GetAll(ctx context.Context) ([]*models.Profile, error) {
	return s.profileRepo.List(ctx)
}

// GetByUser looks up another user's profile. Ids that cannot exist are
// reported as a missing profile.
func (s *ProfileService) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, models.NewNotFoundMessage("Profile not found")
	}
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if models.HasCode(err, models.CodeNotFound) {
		return nil, models.NewNotFoundMessage("Profile not found")
	}
	return profile, err
}

// Upsert creates the caller's profile or replaces its scalar fields.
func (s *ProfileService) Upsert(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error) {
	skills := in.Skills.clean()

	var check validation.Checker
	check.Required("status", in.Status, "Status is required")
	if len(skills) == 0 {
		check.Required("skills", "", "Skills is required")
	}
	if err := check.Err(); err != nil {
		return nil, err
	}

	profile := &models.Profile{
		UserID:         userID,
		Company:        strings.TrimSpace(in.Company),
		Website:        NormalizeURL(in.Website),
		Location:       strings.TrimSpace(in.Location),
		Status:         strings.TrimSpace(in.Status),
		Skills:         skills,
		Bio:            strings.TrimSpace(in.Bio),
		GithubUsername: strings.TrimSpace(in.GithubUsername),
		Social: models.Social{
			YouTube:   NormalizeURL(in.YouTube),
			Twitter:   NormalizeURL(in.Twitter),
			Facebook:  NormalizeURL(in.Facebook),
			LinkedIn:  NormalizeURL(in.LinkedIn),
			Instagram: NormalizeURL(in.Instagram),
		},
	}
	return s.profileRepo.Upsert(ctx, profile)
}

func (s *ProfileService) AddExperience(ctx context.Context, userID string, in ExperienceInput) (*models.Profile, error) {
	var check validation.Checker
	check.Required("title", in.Title, "Title is required")
	check.Required("company", in.Company, "Company is required")
	check.Required("from", in.From, "From date is required")
	if err := check.Err(); err != nil {
		return nil, err
	}

	return s.profileRepo.AddExperience(ctx, userID, &models.Experience{
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Location:    strings.TrimSpace(in.Location),
		From:        strings.TrimSpace(in.From),
		To:          strings.TrimSpace(in.To),
		Current:     in.Current,
		Description: in.Description,
	})
}

func (s *ProfileService) RemoveExperience(ctx context.Context, userID, expID string) (*models.Profile, error) {
	return s.profileRepo.RemoveExperience(ctx, userID, expID)
}

func (s *ProfileService) AddEducation(ctx context.Context, userID string, in EducationInput) (*models.Profile, error) {
	var check validation.Checker
	check.Required("school", in.School, "School is required")
	check.Required("degree", in.Degree, "Degree is required")
	check.Required("fieldofstudy", in.FieldOfStudy, "Field of study is required")
	check.Required("from", in.From, "From date is required")
	if err := check.Err(); err != nil {
		return nil, err
	}

	return s.profileRepo.AddEducation(ctx, userID, &models.Education{
		School:       strings.TrimSpace(in.School),
		Degree:       strings.TrimSpace(in.Degree),
		FieldOfStudy: strings.TrimSpace(in.FieldOfStudy),
		From:         strings.TrimSpace(in.From),
		To:           strings.TrimSpace(in.To),
		Current:      in.Current,
		Description:  in.Description,
	})
}

func (s *ProfileService) RemoveEducation(ctx context.Context, userID, eduID string) (*models.Profile, error) {
	return s.profileRepo.RemoveEducation(ctx, userID, eduID)
}

// DeleteCascade removes the user's posts, then the profile, then the account.
// The steps are independent writes: a failure part way leaves the earlier
// steps applied, is logged with the completed steps, and is returned.
func (s *ProfileService) DeleteCascade(ctx context.Context, userID string) error {
	var completed []string
	fail := func(step string, err error) error {
		observability.CascadeDeleteFailures.WithLabelValues(step).Inc()
		middleware.Logger.ErrorContext(ctx, "account deletion stopped part way",
			"user_id", userID,
			"failed_step", step,
			"completed_steps", completed,
			"error", err,
		)
		return err
	}

	var removed int64
	err := s.cascadeStep(ctx, userID, StepDeletePosts, func(ctx context.Context) error {
		var err error
		removed, err = s.postRepo.DeleteByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return fail(StepDeletePosts, err)
	}
	completed = append(completed, StepDeletePosts)

	if err := s.cascadeStep(ctx, userID, StepDeleteProfile, func(ctx context.Context) error {
		return s.profileRepo.DeleteByUserID(ctx, userID)
	}); err != nil {
		return fail(StepDeleteProfile, err)
	}
	completed = append(completed, StepDeleteProfile)

	if err := s.cascadeStep(ctx, userID, StepDeleteUser, func(ctx context.Context) error {
		return s.userRepo.Delete(ctx, userID)
	}); err != nil {
		return fail(StepDeleteUser, err)
	}

	middleware.Logger.InfoContext(ctx, "account deleted", "user_id", userID, "posts_removed", removed)
	return nil
}

func (s *ProfileService) cascadeStep(ctx context.Context, userID, step string, run func(context.Context) error) error {
	ctx, span := observability.StartCascadeStep(ctx, userID, step)
	err := run(ctx)
	observability.EndSpan(span, err)
	return err
}
