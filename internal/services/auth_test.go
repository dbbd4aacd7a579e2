package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/creatorcoach-backend/internal/platform/ctxutil"
)

const testSecret = "test-signing-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestSetContextFromToken(t *testing.T) {
	svc, err := NewAuthService(testLog, AuthConfig{JWTSecret: testSecret, Issuer: "https://auth.example.com"})
	require.NoError(t, err)
	userID := uuid.New()
	now := time.Now()

	valid := sign(t, jwt.SigningMethodHS256, []byte(testSecret), &hostedClaims{
		Email: "me@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "https://auth.example.com",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	ctx, err := svc.SetContextFromToken(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, userID, ctxutil.UserID(ctx))
	assert.Equal(t, "me@example.com", ctxutil.GetRequestData(ctx).Email)

	bad := map[string]string{
		"expired": sign(t, jwt.SigningMethodHS256, []byte(testSecret), &jwt.RegisteredClaims{
			Subject: userID.String(), Issuer: "https://auth.example.com", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		}),
		"no expiry": sign(t, jwt.SigningMethodHS256, []byte(testSecret), &jwt.RegisteredClaims{
			Subject: userID.String(), Issuer: "https://auth.example.com",
		}),
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("other"), &jwt.RegisteredClaims{
			Subject: userID.String(), Issuer: "https://auth.example.com", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}),
		"wrong issuer": sign(t, jwt.SigningMethodHS256, []byte(testSecret), &jwt.RegisteredClaims{
			Subject: userID.String(), Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}),
		"wrong alg": sign(t, jwt.SigningMethodHS512, []byte(testSecret), &jwt.RegisteredClaims{
			Subject: userID.String(), Issuer: "https://auth.example.com", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}),
		"subject not uuid": sign(t, jwt.SigningMethodHS256, []byte(testSecret), &jwt.RegisteredClaims{
			Subject: "user-42", Issuer: "https://auth.example.com", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}),
		"garbage": "not.a.token",
	}
	for name, tok := range bad {
		t.Run(name, func(t *testing.T) {
			ctx, err := svc.SetContextFromToken(context.Background(), tok)
			assert.Error(t, err)
			assert.Equal(t, uuid.Nil, ctxutil.UserID(ctx))
		})
	}
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	_, err := NewAuthService(testLog, AuthConfig{})
	assert.Error(t, err)
}
