package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mrJackie7/coderdev-hub/internal/auth"
	"github.com/mrJackie7/coderdev-hub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) Revoke(ctx context.Context, claims *auth.Claims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func TestAuthService_IssueFailureIsInternal(t *testing.T) {
	issuer := new(MockTokenIssuer)
	issuer.On("Issue", mock.AnythingOfType("string")).Return("", errors.New("signing key unavailable"))

	svc := NewAuthService(newMemUserRepo(), issuer).WithBcryptCost(bcrypt.MinCost)
	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"})

	assertCode(t, err, models.CodeInternal)
	issuer.AssertExpectations(t)
}

func TestAuthService_LoginIssuesForStoredUser(t *testing.T) {
	users := newMemUserRepo()
	issuer := new(MockTokenIssuer)
	svc := NewAuthService(users, issuer).WithBcryptCost(bcrypt.MinCost)
	ctx := context.Background()

	issuer.On("Issue", mock.AnythingOfType("string")).Return("tok", nil).Twice()
	_, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)

	token, err := svc.Authenticate(ctx, LoginInput{Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	stored, err := users.GetByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	issuer.AssertCalled(t, "Issue", stored.ID)
	issuer.AssertNumberOfCalls(t, "Issue", 2)
}

func TestAuthService_LogoutPassesRevokeError(t *testing.T) {
	issuer := new(MockTokenIssuer)
	claims := &auth.Claims{UserID: "u1", ID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}
	issuer.On("Revoke", mock.Anything, claims).Return(errors.New("redis down"))

	svc := NewAuthService(newMemUserRepo(), issuer)
	err := svc.Logout(context.Background(), claims)

	require.Error(t, err)
	assert.Equal(t, "redis down", err.Error())
	issuer.AssertExpectations(t)
}
