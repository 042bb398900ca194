package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gussgame/src/core/domain"
	"gussgame/src/core/usecase"
	"gussgame/src/infra/logger"
	"gussgame/src/infra/repo"
)

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock { return &clock{now: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var testTiming = usecase.RoundTiming{Cooldown: 30 * time.Second, Duration: 60 * time.Second}

type fixture struct {
	clock  *clock
	repo   *repo.MemoryRepository
	rounds *usecase.RoundService
	taps   *usecase.TapService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := newClock(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	r := repo.NewMemoryRepository(c.Now)
	log := logger.Discard()
	return &fixture{
		clock:  c,
		repo:   r,
		rounds: usecase.NewRoundService(r, testTiming, log, nil, c.Now),
		taps:   usecase.NewTapService(r, log, nil, c.Now),
	}
}

func (f *fixture) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := f.repo.CreateUser(context.Background(), name, "hash", domain.RoleForUsername(name))
	require.NoError(t, err)
	return u
}
