package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gussgame/src/core/domain"
	"gussgame/src/core/ports"
)

// TapService records taps. Every call is one storage transaction.
type TapService struct {
	repo    ports.RoundRepository
	log     *slog.Logger
	metrics ports.GameMetrics
	now     func() time.Time
}

func NewTapService(repo ports.RoundRepository, log *slog.Logger, metrics ports.GameMetrics, now func() time.Time) *TapService {
	if now == nil {
		now = time.Now
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &TapService{repo: repo, log: log, metrics: metrics, now: now}
}

// TapResult is the caller's standing after a tap.
type TapResult struct {
	Points int64
	Taps   int64
}

// Tap records one tap by userID in roundID. Special-role players only have
// their tap counted and always get 0 points back.
func (s *TapService) Tap(ctx context.Context, roundID, userID uuid.UUID, special bool) (*TapResult, error) {
	started := time.Now()

	var result TapResult
	var earned int64
	err := s.repo.RunInTx(ctx, func(tx ports.RoundTx) error {
		round, err := tx.FindRound(ctx, roundID)
		if err != nil {
			return err
		}

		if status := round.StatusAt(s.now()); status != domain.RoundActive {
			return domain.NewRoundNotActiveError(status)
		}

		stats, err := tx.GetOrCreatePlayerStats(ctx, userID, roundID)
		if err != nil {
			return err
		}

		earned = domain.PointsForTap(stats.Taps)

		if special {
			updated, err := tx.IncrementPlayerStats(ctx, stats.ID, 1, 0)
			if err != nil {
				return err
			}
			earned = 0
			result = TapResult{Points: 0, Taps: updated.Taps}
			return nil
		}

		updated, err := tx.IncrementPlayerStats(ctx, stats.ID, 1, earned)
		if err != nil {
			return err
		}
		if err := tx.IncrementRoundTotalPoints(ctx, roundID, earned); err != nil {
			return err
		}
		result = TapResult{Points: updated.Points, Taps: updated.Taps}
		return nil
	})
	elapsed := time.Since(started)

	if err != nil {
		outcome := ports.TapFailed
		switch {
		case domain.IsRoundNotActive(err):
			outcome = ports.TapRoundNotActive
			s.log.Debug("tap rejected", "round_id", roundID, "user_id", userID, "reason", err.Error())
		case domain.IsNotFound(err):
			outcome = ports.TapRoundNotFound
		default:
			s.log.Error("tap failed", "round_id", roundID, "user_id", userID, "error", err)
		}
		s.metrics.TapRecorded(outcome, special, 0, elapsed)
		return nil, err
	}

	s.metrics.TapRecorded(ports.TapAccepted, special, earned, elapsed)
	s.log.Debug("tap recorded",
		"round_id", roundID,
		"user_id", userID,
		"taps", result.Taps,
		"points", result.Points,
	)
	return &result, nil
}
