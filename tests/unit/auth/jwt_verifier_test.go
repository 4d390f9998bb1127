package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"bookingflow/internal/auth"
	"bookingflow/internal/config"
	"bookingflow/internal/domain"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "bookingflow"}
}

func signToken(t *testing.T, cfg config.JWTConfig, claims *auth.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(cfg.Secret))
	assert.NoError(t, err)
	return s
}

func validClaims(cfg config.JWTConfig) *auth.Claims {
	now := time.Now()
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Email:    "user@example.com",
		Role:     domain.RoleReviewer,
	}
}

func TestJWTVerifier_ValidToken(t *testing.T) {
	cfg := testJWTConfig()
	v := auth.NewJWTVerifier(cfg)
	claims := validClaims(cfg)

	identity, err := v.Verify(signToken(t, cfg, claims))

	assert.NoError(t, err)
	assert.Equal(t, claims.TenantID, identity.TenantID)
	assert.Equal(t, claims.UserID, identity.UserID)
	assert.Equal(t, "user@example.com", identity.Email)
	assert.Equal(t, domain.RoleReviewer, identity.Role)
}

func TestJWTVerifier_ExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	v := auth.NewJWTVerifier(cfg)
	claims := validClaims(cfg)
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	_, err := v.Verify(signToken(t, cfg, claims))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	other := config.JWTConfig{Secret: "other-secret", Issuer: cfg.Issuer}
	v := auth.NewJWTVerifier(cfg)

	_, err := v.Verify(signToken(t, other, validClaims(cfg)))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTVerifier_WrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	v := auth.NewJWTVerifier(cfg)
	claims := validClaims(cfg)
	claims.Issuer = "someone-else"

	_, err := v.Verify(signToken(t, cfg, claims))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTVerifier_MissingTenant(t *testing.T) {
	cfg := testJWTConfig()
	v := auth.NewJWTVerifier(cfg)
	claims := validClaims(cfg)
	claims.TenantID = uuid.Nil

	_, err := v.Verify(signToken(t, cfg, claims))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTVerifier_Garbage(t *testing.T) {
	v := auth.NewJWTVerifier(testJWTConfig())
	_, err := v.Verify("not.a.jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
