package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mrJackie7/coderdev-hub/internal/auth"
	"github.com/mrJackie7/coderdev-hub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*AuthService, *memUserRepo, *auth.Tokens) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := auth.NewTokens("test-secret-at-least-32-characters-long", 120*time.Hour, rdb)
	users := newMemUserRepo()
	return NewAuthService(users, tokens).WithBcryptCost(bcrypt.MinCost), users, tokens
}

func TestAuthService_Register(t *testing.T) {
	svc, users, tokens := newAuthService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: " Ana@X.com ", Password: "secret1"})
	require.NoError(t, err)

	claims, err := tokens.Verify(ctx, token)
	require.NoError(t, err)

	user, err := users.GetByID(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "ana@x.com", user.Email)
	assert.Equal(t, GravatarURL("ana@x.com"), user.Avatar)
	assert.NotEqual(t, "secret1", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")))
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Ana 2", Email: "ANA@x.com", Password: "secret2"})
	assertCode(t, err, models.CodeDuplicateEmail)
	assert.Equal(t, "User already exists", err.Error())
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "", Email: "bad", Password: "123"})
	assertValidationError(t, err)

	appErr := err.(*models.AppError)
	msgs := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		msgs = append(msgs, f.Msg)
	}
	assert.Equal(t, []string{
		"Name is required",
		"Please include a valid email",
		"Please enter a password with 6 or more characters",
	}, msgs)
}

func TestAuthService_RegisterPasswordOverBcryptLimit(t *testing.T) {
	svc, users, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.com", Password: strings.Repeat("p", 73)})
	assertValidationError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, models.StatusFor(err))

	existing, err := users.GetByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.Nil(t, existing)

	_, err = svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.com", Password: strings.Repeat("p", 72)})
	require.NoError(t, err)
}

func TestAuthService_AuthenticateIsUniform(t *testing.T) {
	svc, _, tokens := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)

	token, err := svc.Authenticate(ctx, LoginInput{Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = tokens.Verify(ctx, token)
	require.NoError(t, err)

	_, unknownErr := svc.Authenticate(ctx, LoginInput{Email: "nobody@x.com", Password: "secret1"})
	_, wrongErr := svc.Authenticate(ctx, LoginInput{Email: "ana@x.com", Password: "wrong-password"})

	assertCode(t, unknownErr, models.CodeInvalidCredentials)
	assertCode(t, wrongErr, models.CodeInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestAuthService_AuthenticateValidation(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.Authenticate(context.Background(), LoginInput{Email: "ana@x.com"})
	assertValidationError(t, err)
	assert.Equal(t, "Password is required", err.Error())
}

func TestAuthService_LoadCurrent(t *testing.T) {
	svc, _, tokens := newAuthService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := tokens.Verify(ctx, token)
	require.NoError(t, err)

	user, err := svc.LoadCurrent(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.Empty(t, user.Password)

	_, err = svc.LoadCurrent(ctx, models.NewID())
	assertCode(t, err, models.CodeNotFound)
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, tokens := newAuthService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := tokens.Verify(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))

	_, err = tokens.Verify(ctx, token)
	assertCode(t, err, models.CodeInvalidToken)
}

func TestGravatarURL(t *testing.T) {
	t.Parallel()
	url := GravatarURL("  ANA@x.com ")
	assert.Equal(t, GravatarURL("ana@x.com"), url)
	assert.Regexp(t, `^https://www\.gravatar\.com/avatar/[0-9a-f]{32}\?s=200&r=pg&d=mm$`, url)
}
