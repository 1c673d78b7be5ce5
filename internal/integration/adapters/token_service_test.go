package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerror "github.com/media-shelf/backend/internal/domain/error"
)

const testSecret = "test-jwt-secret-key-for-testing-purposes"

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	ctx := context.Background()
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(ctx, userID, "reader@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService(testSecret, 0)
	ctx := context.Background()
	now := time.Now().UTC()

	sign := func(t *testing.T, secret string, claims CustomClaims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	registered := func(expiresAt time.Time) jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			Issuer:    tokenIssuer,
		}
	}

	tests := []struct {
		name  string
		token string
		err   error
	}{
		{name: "garbage", token: "not-a-jwt", err: domainerror.ErrInvalidToken},
		{
			name:  "wrong secret",
			token: sign(t, "other-secret", CustomClaims{UserID: uuid.NewString(), TokenType: tokenTypeAccess, RegisteredClaims: registered(now.Add(time.Hour))}),
			err:   domainerror.ErrInvalidToken,
		},
		{
			name:  "expired",
			token: sign(t, testSecret, CustomClaims{UserID: uuid.NewString(), TokenType: tokenTypeAccess, RegisteredClaims: registered(now.Add(-time.Hour))}),
			err:   domainerror.ErrInvalidToken,
		},
		{
			name:  "refresh token",
			token: sign(t, testSecret, CustomClaims{UserID: uuid.NewString(), TokenType: "refresh", RegisteredClaims: registered(now.Add(time.Hour))}),
			err:   domainerror.ErrWrongTokenType,
		},
		{
			name:  "bad user id",
			token: sign(t, testSecret, CustomClaims{UserID: "nope", TokenType: tokenTypeAccess, RegisteredClaims: registered(now.Add(time.Hour))}),
			err:   domainerror.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(ctx, tt.token)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
