package ports

import "time"

// TapOutcome labels the result of a tap attempt for metrics.
type TapOutcome string

const (
	TapAccepted       TapOutcome = "accepted"
	TapRoundNotFound  TapOutcome = "round_not_found"
	TapRoundNotActive TapOutcome = "round_not_active"
	TapFailed         TapOutcome = "error"
)

// GameMetrics records gameplay counters. Implementations must be safe for concurrent use.
type GameMetrics interface {
	RoundCreated()
	TapRecorded(outcome TapOutcome, special bool, points int64, elapsed time.Duration)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) RoundCreated() {}

func (NoopMetrics) TapRecorded(TapOutcome, bool, int64, time.Duration) {}

// TokenIssuer signs and verifies session tokens for authenticated callers.
type TokenIssuer interface {
	Issue(principal Principal) (string, error)
	Verify(token string) (*Principal, error)
}

// PasswordHasher hashes and checks user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash.
	Compare(hash, password string) error
}
