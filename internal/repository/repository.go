// Package repository defines the persistence contracts and their GORM implementations.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/mrJackie7/coderdev-hub/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// UserRepository persists credential records.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail returns nil, nil when no user has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// ProfileRepository persists profiles and their experience and education lists.
// Every mutation is a single conditional write; callers never read-modify-write.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	// Upsert creates the profile for profile.UserID or replaces its scalar fields.
	Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	AddExperience(ctx context.Context, userID string, exp *models.Experience) (*models.Profile, error)
	RemoveExperience(ctx context.Context, userID, expID string) (*models.Profile, error)
	AddEducation(ctx context.Context, userID string, edu *models.Education) (*models.Profile, error)
	RemoveEducation(ctx context.Context, userID, eduID string) (*models.Profile, error)
	// DeleteByUserID is a no-op when the user has no profile.
	DeleteByUserID(ctx context.Context, userID string) error
}

// PostRepository persists posts with their likes and comments.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]*models.Post, error)
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	// AddLike fails with ALREADY_LIKED when userID already likes the post.
	AddLike(ctx context.Context, postID, userID string) ([]models.Like, error)
	// RemoveLike fails with NOT_LIKED when userID does not like the post.
	RemoveLike(ctx context.Context, postID, userID string) ([]models.Like, error)
	AddComment(ctx context.Context, postID string, comment *models.Comment) ([]models.Comment, error)
	RemoveComment(ctx context.Context, postID, commentID string) ([]models.Comment, error)
}

// Stores bundles one implementation of every repository with its lifecycle hooks.
type Stores struct {
	Users    UserRepository
	Profiles ProfileRepository
	Posts    PostRepository
	// Ping reports store health for readiness checks.
	Ping func(ctx context.Context) error
	// Close releases the underlying connections.
	Close func(ctx context.Context) error
}

// NewGormStores wires the relational implementations around db.
func NewGormStores(db *gorm.DB) *Stores {
	return &Stores{
		Users:    NewUserRepository(db),
		Profiles: NewProfileRepository(db),
		Posts:    NewPostRepository(db),
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// isUniqueConstraintError recognizes unique violations from every supported driver,
// with or without GORM error translation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "23505")
}

func notFoundOr(err error, notFound *models.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
