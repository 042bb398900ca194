//go:build integration

package repo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"gussgame/src/core/domain"
	"gussgame/src/core/ports"
	"gussgame/src/core/usecase"
	"gussgame/src/infra/db"
	"gussgame/src/infra/logger"
	"gussgame/src/infra/repo"
)

// setupPostgres starts a disposable PostgreSQL, applies migrations and
// returns a repository bound to it.
func setupPostgres(t *testing.T) *repo.PostgresRepository {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("gussgame"),
		postgres.WithUsername("guss"),
		postgres.WithPassword("guss"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := logger.Discard()
	pg, err := db.Connect(ctx, dsn, nil, log)
	require.NoError(t, err)
	t.Cleanup(pg.Close)

	require.NoError(t, pg.Migrate(ctx))
	return repo.NewPostgresRepository(pg, log)
}

func createPlayer(t *testing.T, r *repo.PostgresRepository, role domain.Role) *domain.User {
	t.Helper()
	u, err := r.CreateUser(context.Background(), gofakeit.Username()+uuid.NewString()[:8], "hash", role)
	require.NoError(t, err)
	return u
}

func TestPostgresRepository(t *testing.T) {
	r := setupPostgres(t)
	ctx := context.Background()

	t.Run("users are unique by username", func(t *testing.T) {
		u := createPlayer(t, r, domain.RoleSurvivor)
		_, err := r.CreateUser(ctx, u.Username, "other", domain.RoleSurvivor)
		assert.True(t, domain.IsConflict(err))

		got, err := r.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Username, got.Username)
	})

	t.Run("missing round is not found", func(t *testing.T) {
		_, err := r.FindRound(ctx, uuid.New())
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("list excludes ended rounds", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		ended, err := r.CreateRound(ctx, now.Add(-2*time.Hour), now.Add(-time.Hour))
		require.NoError(t, err)
		upcoming, err := r.CreateRound(ctx, now.Add(time.Hour), now.Add(2*time.Hour))
		require.NoError(t, err)

		rounds, err := r.ListRounds(ctx, now)
		require.NoError(t, err)
		ids := make([]uuid.UUID, 0, len(rounds))
		for _, rd := range rounds {
			ids = append(ids, rd.ID)
		}
		assert.Contains(t, ids, upcoming.ID)
		assert.NotContains(t, ids, ended.ID)
	})

	t.Run("concurrent first taps create one stats row", func(t *testing.T) {
		now := time.Now()
		rd, err := r.CreateRound(ctx, now.Add(-time.Minute), now.Add(time.Minute))
		require.NoError(t, err)
		u := createPlayer(t, r, domain.RoleSurvivor)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, r.RunInTx(ctx, func(tx ports.RoundTx) error {
					_, err := tx.GetOrCreatePlayerStats(ctx, u.ID, rd.ID)
					return err
				}))
			}()
		}
		wg.Wait()

		got, err := r.FindRoundWithStats(ctx, rd.ID)
		require.NoError(t, err)
		assert.Len(t, got.Participants, 1)
	})
}

func TestPostgresRepository_ConcurrentTapsKeepTotals(t *testing.T) {
	r := setupPostgres(t)
	ctx := context.Background()
	timing := usecase.RoundTiming{Cooldown: 0, Duration: time.Minute}

	taps := usecase.NewTapService(r, logger.Discard(), ports.NoopMetrics{}, time.Now)
	rounds := usecase.NewRoundService(r, timing, logger.Discard(), ports.NoopMetrics{}, time.Now)

	rd, err := rounds.CreateRound(ctx)
	require.NoError(t, err)

	players := []*domain.User{
		createPlayer(t, r, domain.RoleSurvivor),
		createPlayer(t, r, domain.RoleSurvivor),
		createPlayer(t, r, domain.RoleNikita),
	}

	const tapsPerPlayer = 40
	var wg sync.WaitGroup
	for _, p := range players {
		for i := 0; i < tapsPerPlayer; i++ {
			wg.Add(1)
			go func(p *domain.User) {
				defer wg.Done()
				_, err := taps.Tap(ctx, rd.ID, p.ID, p.Role.IsSpecial())
				assert.NoError(t, err)
			}(p)
		}
	}
	wg.Wait()

	got, err := r.FindRoundWithStats(ctx, rd.ID)
	require.NoError(t, err)

	var want int64
	for i := 0; i < tapsPerPlayer; i++ {
		want += domain.PointsForTap(int64(i))
	}

	var sum int64
	for _, p := range got.Participants {
		assert.Equal(t, int64(tapsPerPlayer), p.Taps)
		if p.Role.IsSpecial() {
			assert.Zero(t, p.Points)
			continue
		}
		assert.Equal(t, want, p.Points)
		sum += p.Points
	}
	assert.Equal(t, sum, got.Round.TotalPoints)
}

func TestPostgresRepository_StatsSnapshotConsistentDuringTaps(t *testing.T) {
	r := setupPostgres(t)
	ctx := context.Background()
	require.NoError(t, r.Health(ctx))

	taps := usecase.NewTapService(r, logger.Discard(), ports.NoopMetrics{}, time.Now)
	now := time.Now()
	rd, err := r.CreateRound(ctx, now.Add(-time.Minute), now.Add(time.Hour))
	require.NoError(t, err)

	players := []*domain.User{
		createPlayer(t, r, domain.RoleSurvivor),
		createPlayer(t, r, domain.RoleSurvivor),
	}

	var wg sync.WaitGroup
	for _, p := range players {
		wg.Add(1)
		go func(p *domain.User) {
			defer wg.Done()
			for i := 0; i < 60; i++ {
				_, err := taps.Tap(ctx, rd.ID, p.ID, false)
				assert.NoError(t, err)
			}
		}(p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for reading := true; reading; {
		select {
		case <-done:
			reading = false
		default:
		}
		got, err := r.FindRoundWithStats(ctx, rd.ID)
		require.NoError(t, err)
		var sum int64
		for _, p := range got.Participants {
			sum += p.Points
		}
		require.Equal(t, got.Round.TotalPoints, sum)
	}
}
