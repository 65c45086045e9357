package auth

import (
	"testing"
	"time"

	"github.com/atelier/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "atelier-test",
	})
}

func newTestSubject() Subject {
	return Subject{UserID: uuid.New(), Email: "anna@example.com", Role: "DESIGNER"}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})
	assert.Equal(t, []byte("test-secret"), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.GenerateTokenPair(newTestSubject())
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	sub := newTestSubject()
	pair, err := svc.GenerateTokenPair(sub)
	require.NoError(t, err)

	t.Run("returns claims", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		id, err := claims.GetUserUUID()
		require.NoError(t, err)
		assert.Equal(t, sub.UserID, id)
		assert.Equal(t, sub.Email, claims.Email)
		assert.Equal(t, "DESIGNER", claims.Role)
		assert.NotEmpty(t, claims.ID)
		assert.Greater(t, claims.GetRemainingTTL(), 14*time.Minute)
	})

	t.Run("rejects refresh token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects other secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-at-least-32-chars", Issuer: "atelier-test", AccessTokenExpiration: time.Minute})
		_, err := other.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects other issuer", func(t *testing.T) {
		other := newTestJWTService()
		other.issuer = "someone-else"
		_, err := other.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := newTestJWTService()
	past := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return past }
	pair, err := svc.GenerateTokenPair(newTestSubject())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)

	// the refresh token outlives the access token
	_, err = svc.ValidateRefreshToken(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestValidateRefreshToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                 "same-secret-for-both-token-types!",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "atelier-test",
	})
	pair, err := svc.GenerateTokenPair(newTestSubject())
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Empty(t, claims.Role)

	// same secret: the type claim is what tells them apart
	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestJWTService()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "atelier-test", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           uuid.NewString(),
		TokenType:        TokenTypeAccess,
	})
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_MissingUserID(t *testing.T) {
	svc := newTestJWTService()
	s, err := svc.sign(&Claims{
		RegisteredClaims: svc.registered(uuid.New(), time.Now(), time.Now().Add(time.Minute)),
		TokenType:        TokenTypeAccess,
	}, svc.accessSecret)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(s)
	assert.ErrorIs(t, err, ErrMissingUserID)
}
