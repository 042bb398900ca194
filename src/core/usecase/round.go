package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gussgame/src/core/domain"
	"gussgame/src/core/ports"
)

// RoundTiming carries the configured durations used to place a new round.
// The zero value means the game defaults.
type RoundTiming struct {
	Cooldown time.Duration
	Duration time.Duration
}

// DefaultRoundTiming is a 30s cooldown followed by a 60s round.
var DefaultRoundTiming = RoundTiming{
	Cooldown: domain.DefaultCooldownDuration,
	Duration: domain.DefaultRoundDuration,
}

// RoundService handles round creation, listing and detail views.
type RoundService struct {
	repo    ports.RoundRepository
	timing  RoundTiming
	log     *slog.Logger
	metrics ports.GameMetrics
	now     func() time.Time
}

func NewRoundService(repo ports.RoundRepository, timing RoundTiming, log *slog.Logger, metrics ports.GameMetrics, now func() time.Time) *RoundService {
	if now == nil {
		now = time.Now
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if timing == (RoundTiming{}) {
		timing = DefaultRoundTiming
	}
	return &RoundService{repo: repo, timing: timing, log: log, metrics: metrics, now: now}
}

// RoundSummary is a listed round with its derived status.
type RoundSummary struct {
	Round  domain.Round
	Status domain.RoundStatus
}

// RoundDetails is the caller-specific view of one round.
type RoundDetails struct {
	Round    domain.Round
	Status   domain.RoundStatus
	MyPoints int64
	MyTaps   int64

	winner *domain.Winner
}

// Winner returns the round winner. ok is false until the round has finished
// or when no eligible player took part.
func (d RoundDetails) Winner() (w domain.Winner, ok bool) {
	if d.winner == nil {
		return domain.Winner{}, false
	}
	return *d.winner, true
}

// CreateRound schedules a new round starting after the cooldown.
// Callers are expected to have been authorized as admin already.
func (s *RoundService) CreateRound(ctx context.Context) (*domain.Round, error) {
	startAt := s.now().Add(s.timing.Cooldown)
	endAt := startAt.Add(s.timing.Duration)

	round, err := s.repo.CreateRound(ctx, startAt, endAt)
	if err != nil {
		return nil, err
	}
	s.metrics.RoundCreated()
	s.log.Info("round created",
		"round_id", round.ID,
		"start_at", round.StartAt,
		"end_at", round.EndAt,
	)
	return round, nil
}

// ListRounds returns rounds that have not ended yet, earliest start first.
func (s *RoundService) ListRounds(ctx context.Context) ([]RoundSummary, error) {
	now := s.now()
	rounds, err := s.repo.ListRounds(ctx, now)
	if err != nil {
		return nil, err
	}

	out := make([]RoundSummary, 0, len(rounds))
	for _, rd := range rounds {
		out = append(out, RoundSummary{Round: rd, Status: rd.StatusAt(now)})
	}
	return out, nil
}

// GetRoundDetails assembles the round view for callerID, including the winner
// once the round has finished.
func (s *RoundService) GetRoundDetails(ctx context.Context, roundID, callerID uuid.UUID) (*RoundDetails, error) {
	res, err := s.repo.FindRoundWithStats(ctx, roundID)
	if err != nil {
		return nil, err
	}

	details := &RoundDetails{
		Round:  res.Round,
		Status: res.Round.StatusAt(s.now()),
	}
	for _, p := range res.Participants {
		if p.UserID == callerID {
			details.MyPoints = p.Points
			details.MyTaps = p.Taps
			break
		}
	}

	if details.Status == domain.RoundFinished && len(res.Participants) > 0 {
		if w, ok := domain.SelectWinner(res.Participants); ok {
			details.winner = &w
		}
	}
	return details, nil
}
