package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role in the game.
type Role string

const (
	RoleAdmin Role = "admin"
	// RoleNikita taps like everyone else but never earns or contributes points.
	RoleNikita   Role = "nikita"
	RoleSurvivor Role = "survivor"
)

// IsSpecial reports whether taps by this role are excluded from scoring.
func (r Role) IsSpecial() bool {
	return r == RoleNikita
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleNikita, RoleSurvivor:
		return true
	}
	return false
}

// RoleForUsername derives the role assigned to a newly registered user.
func RoleForUsername(username string) Role {
	switch strings.ToLower(strings.TrimSpace(username)) {
	case "admin":
		return RoleAdmin
	case "nikita", "никита":
		return RoleNikita
	default:
		return RoleSurvivor
	}
}

// User represents a registered player or administrator.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Round is a time-boxed game session.
type Round struct {
	ID          uuid.UUID
	StartAt     time.Time
	EndAt       time.Time
	TotalPoints int64
	CreatedAt   time.Time
}

// StatusAt returns the lifecycle state of the round at now.
func (r Round) StatusAt(now time.Time) RoundStatus {
	return StatusAt(r.StartAt, r.EndAt, now)
}

// PlayerRoundStats tracks one player's taps and points in one round.
// At most one row exists per (UserID, RoundID).
type PlayerRoundStats struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	RoundID uuid.UUID
	Taps    int64
	Points  int64
}

// ParticipantStats is a stats row joined with its player's public identity.
type ParticipantStats struct {
	PlayerRoundStats
	Username string
	Role     Role
}

// Winner is the best-scoring eligible participant of a finished round.
type Winner struct {
	Username string
	Points   int64
}

// SelectWinner returns the first participant that is not a special role.
// participants must already be ordered by points descending.
func SelectWinner(participants []ParticipantStats) (Winner, bool) {
	for _, p := range participants {
		if p.Role.IsSpecial() {
			continue
		}
		return Winner{Username: p.Username, Points: p.Points}, true
	}
	return Winner{}, false
}
