package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gussgame/src/core/domain"
	"gussgame/src/core/ports"
	"gussgame/src/core/usecase"
	"gussgame/src/infra/logger"
)

func TestTapService_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round, err := f.rounds.CreateRound(ctx)
	require.NoError(t, err)
	alice := f.user(t, "alice")

	f.clock.Set(round.StartAt.Add(-time.Second))
	_, err = f.taps.Tap(ctx, round.ID, alice.ID, false)
	assert.True(t, domain.IsRoundNotActive(err))

	f.clock.Set(round.StartAt)
	res, err := f.taps.Tap(ctx, round.ID, alice.ID, false)
	require.NoError(t, err)
	assert.Equal(t, usecase.TapResult{Points: 1, Taps: 1}, *res)

	var expected int64 = 1
	for i := 2; i <= 11; i++ {
		expected += domain.PointsForTap(int64(i - 1))
		res, err = f.taps.Tap(ctx, round.ID, alice.ID, false)
		require.NoError(t, err)
		assert.Equal(t, int64(i), res.Taps)
		assert.Equal(t, expected, res.Points)
	}
	assert.Equal(t, usecase.TapResult{Points: 20, Taps: 11}, *res)

	got, err := f.repo.FindRound(ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.TotalPoints)
}

func TestTapService_SpecialRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round, err := f.rounds.CreateRound(ctx)
	require.NoError(t, err)
	nikita := f.user(t, "nikita")

	f.clock.Set(round.StartAt.Add(time.Second))
	for i := 1; i <= 25; i++ {
		res, err := f.taps.Tap(ctx, round.ID, nikita.ID, true)
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.Points)
		assert.Equal(t, int64(i), res.Taps)
	}

	stats, err := f.repo.FindRoundWithStats(ctx, round.ID)
	require.NoError(t, err)
	require.Len(t, stats.Participants, 1)
	assert.Equal(t, int64(25), stats.Participants[0].Taps)
	assert.Zero(t, stats.Participants[0].Points)
	assert.Zero(t, stats.Round.TotalPoints)
}

func TestTapService_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown round", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.taps.Tap(ctx, uuid.New(), uuid.New(), false)
		assert.True(t, domain.IsNotFound(err))
	})

	for _, tc := range []struct {
		name   string
		offset func(round *domain.Round) time.Time
	}{
		{"during cooldown", func(r *domain.Round) time.Time { return r.StartAt.Add(-time.Nanosecond) }},
		{"exactly at end", func(r *domain.Round) time.Time { return r.EndAt }},
		{"long after end", func(r *domain.Round) time.Time { return r.EndAt.Add(time.Hour) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			round, err := f.rounds.CreateRound(ctx)
			require.NoError(t, err)
			alice := f.user(t, "alice")

			f.clock.Set(tc.offset(round))
			_, err = f.taps.Tap(ctx, round.ID, alice.ID, false)
			require.Error(t, err)
			assert.True(t, domain.IsRoundNotActive(err))

			stats, err := f.repo.FindRoundWithStats(ctx, round.ID)
			require.NoError(t, err)
			assert.Empty(t, stats.Participants, "rejected tap must not create a stats row")
		})
	}
}

func TestTapService_ConcurrentTapsKeepTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round, err := f.rounds.CreateRound(ctx)
	require.NoError(t, err)
	f.clock.Set(round.StartAt)

	players := []*domain.User{f.user(t, "alice"), f.user(t, "bob"), f.user(t, "nikita")}
	const tapsEach = 57

	var wg sync.WaitGroup
	for _, p := range players {
		for i := 0; i < tapsEach; i++ {
			wg.Add(1)
			go func(p *domain.User) {
				defer wg.Done()
				_, err := f.taps.Tap(ctx, round.ID, p.ID, p.Role.IsSpecial())
				assert.NoError(t, err)
			}(p)
		}
	}
	wg.Wait()

	var perPlayer int64
	for i := 0; i < tapsEach; i++ {
		perPlayer += domain.PointsForTap(int64(i))
	}

	stats, err := f.repo.FindRoundWithStats(ctx, round.ID)
	require.NoError(t, err)
	require.Len(t, stats.Participants, 3)

	var sum int64
	for _, p := range stats.Participants {
		assert.Equal(t, int64(tapsEach), p.Taps)
		if p.Role.IsSpecial() {
			assert.Zero(t, p.Points)
			continue
		}
		assert.Equal(t, perPlayer, p.Points)
		sum += p.Points
	}
	assert.Equal(t, sum, stats.Round.TotalPoints)
}

// failingRepo breaks the round total update to prove the tap rolls back as a whole.
type failingRepo struct {
	ports.RoundRepository
}

func (r failingRepo) RunInTx(ctx context.Context, fn func(tx ports.RoundTx) error) error {
	return r.RoundRepository.RunInTx(ctx, func(tx ports.RoundTx) error {
		return fn(failingTx{tx})
	})
}

type failingTx struct {
	ports.RoundTx
}

func (failingTx) IncrementRoundTotalPoints(context.Context, uuid.UUID, int64) error {
	return errors.New("connection reset")
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []ports.TapOutcome
	points   int64
}

func (m *recordingMetrics) RoundCreated() {}

func (m *recordingMetrics) TapRecorded(outcome ports.TapOutcome, _ bool, points int64, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
	m.points += points
}

func TestTapService_StorageFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round, err := f.rounds.CreateRound(ctx)
	require.NoError(t, err)
	alice := f.user(t, "alice")
	f.clock.Set(round.StartAt)

	metrics := &recordingMetrics{}
	taps := usecase.NewTapService(failingRepo{f.repo}, logger.Discard(), metrics, f.clock.Now)

	_, err = taps.Tap(ctx, round.ID, alice.ID, false)
	require.Error(t, err)
	assert.False(t, domain.IsRoundNotActive(err))

	stats, err := f.repo.FindRoundWithStats(ctx, round.ID)
	require.NoError(t, err)
	assert.Empty(t, stats.Participants)
	assert.Zero(t, stats.Round.TotalPoints)
	assert.Equal(t, []ports.TapOutcome{ports.TapFailed}, metrics.outcomes)
}

func TestTapService_RecordsMetrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round, err := f.rounds.CreateRound(ctx)
	require.NoError(t, err)
	alice := f.user(t, "alice")

	metrics := &recordingMetrics{}
	taps := usecase.NewTapService(f.repo, logger.Discard(), metrics, f.clock.Now)

	_, _ = taps.Tap(ctx, round.ID, alice.ID, false)
	f.clock.Set(round.StartAt)
	for i := 0; i < 11; i++ {
		_, err := taps.Tap(ctx, round.ID, alice.ID, false)
		require.NoError(t, err)
	}
	_, _ = taps.Tap(ctx, uuid.New(), alice.ID, false)

	require.Len(t, metrics.outcomes, 13)
	assert.Equal(t, ports.TapRoundNotActive, metrics.outcomes[0])
	assert.Equal(t, ports.TapAccepted, metrics.outcomes[1])
	assert.Equal(t, ports.TapRoundNotFound, metrics.outcomes[12])
	assert.Equal(t, int64(20), metrics.points)
}
