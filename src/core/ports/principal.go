package ports

import (
	"github.com/google/uuid"

	"gussgame/src/core/domain"
)

// Principal is the authenticated caller as supplied by the auth boundary.
// Core services trust it without re-checking credentials.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Role     domain.Role
}

// IsAdmin reports whether the caller may create rounds.
func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}
