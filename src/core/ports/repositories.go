// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra/repo. This ensures the core has no dependency on infrastructure.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gussgame/src/core/domain"
)

// Repository is the base interface for all repositories.
// Concrete repositories should embed this and add entity-specific methods.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// RoundWithStats bundles a round with its participants ordered by points descending.
type RoundWithStats struct {
	Round        domain.Round
	Participants []domain.ParticipantStats
}

// RoundTx exposes the round operations that must run inside one transaction.
// It is only valid for the lifetime of the RunInTx callback that received it.
type RoundTx interface {
	FindRound(ctx context.Context, roundID uuid.UUID) (*domain.Round, error)
	// GetOrCreatePlayerStats returns the existing row for (userID, roundID) or
	// creates one with zero taps and points. It never creates a duplicate.
	GetOrCreatePlayerStats(ctx context.Context, userID, roundID uuid.UUID) (*domain.PlayerRoundStats, error)
	// IncrementPlayerStats adds the deltas in place and returns the updated row.
	IncrementPlayerStats(ctx context.Context, statsID uuid.UUID, tapsDelta, pointsDelta int64) (*domain.PlayerRoundStats, error)
	IncrementRoundTotalPoints(ctx context.Context, roundID uuid.UUID, delta int64) error
}

// RoundRepository persists rounds and per-player round statistics.
type RoundRepository interface {
	Repository

	CreateRound(ctx context.Context, startAt, endAt time.Time) (*domain.Round, error)
	// FindRound returns a not found domain error when no round has the id.
	FindRound(ctx context.Context, roundID uuid.UUID) (*domain.Round, error)
	// ListRounds returns rounds with endAt >= notEndedBefore, ascending by startAt.
	ListRounds(ctx context.Context, notEndedBefore time.Time) ([]domain.Round, error)
	FindRoundWithStats(ctx context.Context, roundID uuid.UUID) (*RoundWithStats, error)

	// RunInTx executes fn in a single atomic transaction. Any error returned
	// by fn rolls back every write made through tx.
	RunInTx(ctx context.Context, fn func(tx RoundTx) error) error
}

// UserRepository persists registered users.
type UserRepository interface {
	Repository

	// CreateUser returns a conflict domain error when the username is taken.
	CreateUser(ctx context.Context, username, passwordHash string, role domain.Role) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// GameRepository is a composite repository covering all domain operations.
type GameRepository interface {
	RoundRepository
	UserRepository
}
