// Package auth issues and verifies the signed bearer tokens used by the API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrJackie7/coderdev-hub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Issuer is the iss claim of every token.
	Issuer = "devhub-api"
	// Audience is the aud claim of every token.
	Audience = "devhub-client"

	blacklistPrefix = "blacklist:"
)

// Claims is the verified content of a token.
type Claims struct {
	UserID    string
	ID        string
	ExpiresAt time.Time
}

// Tokens signs, verifies and revokes tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
	now    func() time.Time
}

// NewTokens builds a token service. rdb may be nil, which disables revocation.
func NewTokens(secret string, ttl time.Duration, rdb *redis.Client) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		rdb:    rdb,
		now:    time.Now,
	}
}

// Issue returns a signed token whose subject is userID.
func (t *Tokens) Issue(userID string) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": Issuer,
		"aud": Audience,
		"exp": now.Add(t.ttl).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": generateJTI(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry, issuer, audience and revocation.
// Any failure is reported as INVALID_TOKEN.
func (t *Tokens) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewInvalidTokenError(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewInvalidTokenError(errors.New("invalid claims"))
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, models.NewInvalidTokenError(errors.New("missing subject"))
	}

	out := &Claims{UserID: sub}
	if jti, ok := claims["jti"].(string); ok {
		out.ID = jti
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	if out.ID != "" && t.rdb != nil {
		revoked, err := t.rdb.Exists(ctx, blacklistPrefix+out.ID).Result()
		if err == nil && revoked > 0 {
			return nil, models.NewInvalidTokenError(errors.New("token has been revoked"))
		}
	}

	return out, nil
}

// Revoke blacklists the token id until the token would have expired anyway.
func (t *Tokens) Revoke(ctx context.Context, claims *Claims) error {
	if t.rdb == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(t.now())
	if ttl <= 0 {
		return nil
	}
	if err := t.rdb.Set(ctx, blacklistPrefix+claims.ID, claims.UserID, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()[:8])
}
