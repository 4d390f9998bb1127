package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bookingflow/internal/config"
	"bookingflow/internal/domain"
	"bookingflow/internal/port"
)

// Claims represents the JWT claims with tenant context. Tokens are issued by
// the identity platform; this service only verifies them.
type Claims struct {
	jwt.RegisteredClaims
	TenantID uuid.UUID       `json:"tenant_id"`
	UserID   uuid.UUID       `json:"user_id"`
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
}

type jwtVerifier struct {
	cfg config.JWTConfig
}

// NewJWTVerifier creates a TokenVerifier for HMAC-signed bearer tokens.
func NewJWTVerifier(cfg config.JWTConfig) port.TokenVerifier {
	return &jwtVerifier{cfg: cfg}
}

func (v *jwtVerifier) Verify(tokenString string) (*port.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	if v.cfg.Issuer != "" {
		iss, _ := claims.GetIssuer()
		if iss != v.cfg.Issuer {
			return nil, domain.ErrUnauthorized
		}
	}
	if claims.TenantID == uuid.Nil || claims.UserID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}

	return &port.Identity{
		TenantID: claims.TenantID,
		UserID:   claims.UserID,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}
