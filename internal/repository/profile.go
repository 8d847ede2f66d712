package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrJackie7/coderdev-hub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// profileReplaceColumns are overwritten when a profile already exists.
var profileReplaceColumns = []string{
	"company", "website", "location", "status", "skills", "bio", "github_username",
	"social_youtube", "social_twitter", "social_facebook", "social_linkedin", "social_instagram",
	"updated_at",
}

var errNoProfile = models.NewNotFoundMessage("There is no profile for this user")

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository instance.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "avatar")
		}).
		Preload("Experience", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Education", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		})
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.withRelations(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFoundOr(err, errNoProfile)
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	var profiles []*models.Profile
	if err := r.withRelations(ctx).Order("created_at ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(profileReplaceColumns),
		}).
		Create(profile).Error
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return r.GetByUserID(ctx, profile.UserID)
}

func (r *profileRepository) profileID(ctx context.Context, userID string) (string, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Select("id").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return "", notFoundOr(err, errNoProfile)
	}
	return profile.ID, nil
}

func (r *profileRepository) AddExperience(ctx context.Context, userID string, exp *models.Experience) (*models.Profile, error) {
	profileID, err := r.profileID(ctx, userID)
	if err != nil {
		return nil, err
	}
	exp.ProfileID = profileID
	if err := r.db.WithContext(ctx).Create(exp).Error; err != nil {
		return nil, fmt.Errorf("add experience: %w", err)
	}
	return r.GetByUserID(ctx, userID)
}

func (r *profileRepository) RemoveExperience(ctx context.Context, userID, expID string) (*models.Profile, error) {
	if err := r.removeEntry(ctx, userID, expID, &models.Experience{}); err != nil {
		return nil, notFoundOr(err, models.NewNotFoundMessage("Experience not found"))
	}
	return r.GetByUserID(ctx, userID)
}

func (r *profileRepository) AddEducation(ctx context.Context, userID string, edu *models.Education) (*models.Profile, error) {
	profileID, err := r.profileID(ctx, userID)
	if err != nil {
		return nil, err
	}
	edu.ProfileID = profileID
	if err := r.db.WithContext(ctx).Create(edu).Error; err != nil {
		return nil, fmt.Errorf("add education: %w", err)
	}
	return r.GetByUserID(ctx, userID)
}

func (r *profileRepository) RemoveEducation(ctx context.Context, userID, eduID string) (*models.Profile, error) {
	if err := r.removeEntry(ctx, userID, eduID, &models.Education{}); err != nil {
		return nil, notFoundOr(err, models.NewNotFoundMessage("Education not found"))
	}
	return r.GetByUserID(ctx, userID)
}

// removeEntry deletes one owned list entry; a missing entry yields gorm.ErrRecordNotFound.
func (r *profileRepository) removeEntry(ctx context.Context, userID, entryID string, model any) error {
	profileID, err := r.profileID(ctx, userID)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Where("id = ? AND profile_id = ?", entryID, profileID).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("remove profile entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *profileRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		err := tx.Select("id").Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", profile.ID).Delete(&models.Experience{}).Error; err != nil {
			return fmt.Errorf("delete experience: %w", err)
		}
		if err := tx.Where("profile_id = ?", profile.ID).Delete(&models.Education{}).Error; err != nil {
			return fmt.Errorf("delete education: %w", err)
		}
		if err := tx.Delete(&models.Profile{}, "id = ?", profile.ID).Error; err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		return nil
	})
}
