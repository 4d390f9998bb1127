package port

import (
	"github.com/google/uuid"

	"bookingflow/internal/domain"
)

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Email    string
	Role     domain.UserRole
}

// TokenVerifier abstracts the external authentication layer. The core only
// ever consumes a verified Identity; token issuance and user management live
// elsewhere.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}
