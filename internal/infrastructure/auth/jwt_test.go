package auth

import (
	"testing"
	"time"

	"github.com/farmadist/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                "test-secret-key-that-is-long-enough-for-hs256",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "farmadist-test",
	}
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(testConfig())

	token, err := svc.GenerateToken(TokenInput{UserID: "op-17", Username: "mquispe", Roles: []string{"warehouse"}})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "op-17", claims.UserID)
	assert.Equal(t, "op-17", claims.Subject)
	assert.Equal(t, "mquispe", claims.Username)
	assert.True(t, claims.HasRole("warehouse"))
	assert.False(t, claims.HasRole("auditor"))
	assert.WithinDuration(t, token.ExpiresAt, claims.ExpiresAtTime(), time.Second)
}

func TestJWTService_GenerateToken_Errors(t *testing.T) {
	_, err := NewJWTService(testConfig()).GenerateToken(TokenInput{})
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = NewJWTService(config.JWTConfig{}).GenerateToken(TokenInput{UserID: "op-1"})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestJWTService_ValidateToken_Failures(t *testing.T) {
	svc := NewJWTService(testConfig())
	valid, err := svc.GenerateToken(TokenInput{UserID: "op-1"})
	require.NoError(t, err)

	otherCfg := testConfig()
	otherCfg.Secret = "a-completely-different-secret-of-enough-length"
	foreign, err := NewJWTService(otherCfg).GenerateToken(TokenInput{UserID: "op-1"})
	require.NoError(t, err)

	otherIssuer := testConfig()
	otherIssuer.Issuer = "someone-else"
	wrongIssuer, err := NewJWTService(otherIssuer).GenerateToken(TokenInput{UserID: "op-1"})
	require.NoError(t, err)

	noneSigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "op-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not.a.jwt", ErrInvalidToken},
		{"wrong secret", foreign.AccessToken, ErrInvalidToken},
		{"wrong issuer", wrongIssuer.AccessToken, ErrInvalidToken},
		{"unsigned", noneSigned, ErrInvalidToken},
		{"tampered", valid.AccessToken + "x", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestJWTService_ValidateToken_TimeWindow(t *testing.T) {
	svc := NewJWTService(testConfig())
	issuedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.GenerateToken(TokenInput{UserID: "op-1"})
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(20 * time.Minute) }
	_, err = svc.ValidateToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)

	svc.now = func() time.Time { return issuedAt.Add(-time.Hour) }
	_, err = svc.ValidateToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestJWTService_ValidateToken_MissingUserID(t *testing.T) {
	cfg := testConfig()
	svc := NewJWTService(cfg)

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrMissingUserID)
}
