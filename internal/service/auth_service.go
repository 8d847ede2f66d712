package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mrJackie7/coderdev-hub/internal/auth"
	"github.com/mrJackie7/coderdev-hub/internal/models"
	"github.com/mrJackie7/coderdev-hub/internal/repository"
	"github.com/mrJackie7/coderdev-hub/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs and revokes session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Revoke(ctx context.Context, claims *auth.Claims) error
}

type AuthService struct {
	userRepo   repository.UserRepository
	tokens     TokenIssuer
	bcryptCost int
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost overrides the hashing cost, for tests and seeding.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

// GravatarURL returns the avatar for email: 200px, pg rated, mystery-man fallback.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(normalizeEmail(email)))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	var check validation.Checker
	check.Required("name", in.Name, "Name is required")
	check.Email("email", strings.TrimSpace(in.Email), "Please include a valid email")
	check.Password("password", in.Password, "Please enter a password with 6 or more characters")
	if err := check.Err(); err != nil {
		return "", err
	}

	email := normalizeEmail(in.Email)
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", models.NewDuplicateEmailError()
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hashed),
		Avatar:   GravatarURL(email),
	}
	// a concurrent registration loses here on the unique email index
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", err
	}

	return s.issue(user.ID)
}

// Authenticate returns a token for valid credentials. Unknown emails and
// wrong passwords fail with the same error.
func (s *AuthService) Authenticate(ctx context.Context, in LoginInput) (string, error) {
	var check validation.Checker
	check.Email("email", strings.TrimSpace(in.Email), "Please include a valid email")
	check.Required("password", in.Password, "Password is required")
	if err := check.Err(); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", models.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return "", models.NewInvalidCredentialsError()
	}

	return s.issue(user.ID)
}

// LoadCurrent returns the caller's account without its password hash.
func (s *AuthService) LoadCurrent(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// Logout revokes the presented token until it expires.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	return s.tokens.Revoke(ctx, claims)
}

func (s *AuthService) issue(userID string) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return token, nil
}
