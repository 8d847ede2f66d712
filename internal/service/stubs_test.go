package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mrJackie7/coderdev-hub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memUserRepo is an in-memory repository.UserRepository.
type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	deleted []string
	failDel error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*models.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return models.NewDuplicateEmailError()
		}
	}
	if user.ID == "" {
		user.ID = models.NewID()
	}
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, models.NewNotFoundMessage("User not found")
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	if r.failDel != nil {
		return r.failDel
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByUserIDFn      func(context.Context, string) (*models.Profile, error)
	listFn             func(context.Context) ([]*models.Profile, error)
	upsertFn           func(context.Context, *models.Profile) (*models.Profile, error)
	addExperienceFn    func(context.Context, string, *models.Experience) (*models.Profile, error)
	removeExperienceFn func(context.Context, string, string) (*models.Profile, error)
	addEducationFn     func(context.Context, string, *models.Education) (*models.Profile, error)
	removeEducationFn  func(context.Context, string, string) (*models.Profile, error)
	deleteByUserIDFn   func(context.Context, string) error
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *profileRepoStub) List(ctx context.Context) ([]*models.Profile, error) {
	return s.listFn(ctx)
}
func (s *profileRepoStub) Upsert(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	return s.upsertFn(ctx, p)
}
func (s *profileRepoStub) AddExperience(ctx context.Context, userID string, e *models.Experience) (*models.Profile, error) {
	return s.addExperienceFn(ctx, userID, e)
}
func (s *profileRepoStub) RemoveExperience(ctx context.Context, userID, id string) (*models.Profile, error) {
	return s.removeExperienceFn(ctx, userID, id)
}
func (s *profileRepoStub) AddEducation(ctx context.Context, userID string, e *models.Education) (*models.Profile, error) {
	return s.addEducationFn(ctx, userID, e)
}
func (s *profileRepoStub) RemoveEducation(ctx context.Context, userID, id string) (*models.Profile, error) {
	return s.removeEducationFn(ctx, userID, id)
}
func (s *profileRepoStub) DeleteByUserID(ctx context.Context, userID string) error {
	return s.deleteByUserIDFn(ctx, userID)
}

func noopProfileRepo() *profileRepoStub {
	echo := func(_ context.Context, p *models.Profile) (*models.Profile, error) { return p, nil }
	return &profileRepoStub{
		getByUserIDFn: func(_ context.Context, _ string) (*models.Profile, error) { return &models.Profile{}, nil },
		listFn:        func(_ context.Context) ([]*models.Profile, error) { return nil, nil },
		upsertFn:      echo,
		addExperienceFn: func(_ context.Context, _ string, e *models.Experience) (*models.Profile, error) {
			return &models.Profile{Experience: []models.Experience{*e}}, nil
		},
		removeExperienceFn: func(_ context.Context, _, _ string) (*models.Profile, error) { return &models.Profile{}, nil },
		addEducationFn: func(_ context.Context, _ string, e *models.Education) (*models.Profile, error) {
			return &models.Profile{Education: []models.Education{*e}}, nil
		},
		removeEducationFn: func(_ context.Context, _, _ string) (*models.Profile, error) { return &models.Profile{}, nil },
		deleteByUserIDFn:  func(_ context.Context, _ string) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, string) (*models.Post, error)
	listFn           func(context.Context) ([]*models.Post, error)
	deleteFn         func(context.Context, string) error
	deleteByUserIDFn func(context.Context, string) (int64, error)
	addLikeFn        func(context.Context, string, string) ([]models.Like, error)
	removeLikeFn     func(context.Context, string, string) ([]models.Like, error)
	addCommentFn     func(context.Context, string, *models.Comment) ([]models.Comment, error)
	removeCommentFn  func(context.Context, string, string) ([]models.Comment, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context) ([]*models.Post, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	return s.deleteByUserIDFn(ctx, userID)
}
func (s *postRepoStub) AddLike(ctx context.Context, postID, userID string) ([]models.Like, error) {
	return s.addLikeFn(ctx, postID, userID)
}
func (s *postRepoStub) RemoveLike(ctx context.Context, postID, userID string) ([]models.Like, error) {
	return s.removeLikeFn(ctx, postID, userID)
}
func (s *postRepoStub) AddComment(ctx context.Context, postID string, c *models.Comment) ([]models.Comment, error) {
	return s.addCommentFn(ctx, postID, c)
}
func (s *postRepoStub) RemoveComment(ctx context.Context, postID, commentID string) ([]models.Comment, error) {
	return s.removeCommentFn(ctx, postID, commentID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:         func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:        func(_ context.Context, _ string) (*models.Post, error) { return &models.Post{}, nil },
		listFn:           func(_ context.Context) ([]*models.Post, error) { return nil, nil },
		deleteFn:         func(_ context.Context, _ string) error { return nil },
		deleteByUserIDFn: func(_ context.Context, _ string) (int64, error) { return 0, nil },
		addLikeFn:        func(_ context.Context, _, _ string) ([]models.Like, error) { return nil, nil },
		removeLikeFn:     func(_ context.Context, _, _ string) ([]models.Like, error) { return nil, nil },
		addCommentFn: func(_ context.Context, _ string, c *models.Comment) ([]models.Comment, error) {
			return []models.Comment{*c}, nil
		},
		removeCommentFn: func(_ context.Context, _, _ string) ([]models.Comment, error) { return nil, nil },
	}
}

// assertCode asserts that err is an AppError with the given code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}
