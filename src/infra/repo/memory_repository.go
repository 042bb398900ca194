package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gussgame/src/core/domain"
	"gussgame/src/core/ports"
)

var _ ports.GameRepository = (*MemoryRepository)(nil)

type statsKey struct {
	userID  uuid.UUID
	roundID uuid.UUID
}

// MemoryRepository keeps all game state in process memory.
// A single mutex is held for the whole of a RunInTx callback, so transactions
// are serial and readers only ever observe committed state.
type MemoryRepository struct {
	mu  sync.Mutex
	now func() time.Time

	users       map[uuid.UUID]domain.User
	usersByName map[string]uuid.UUID
	rounds      map[uuid.UUID]domain.Round
	stats       map[uuid.UUID]domain.PlayerRoundStats
	statsByKey  map[statsKey]uuid.UUID
}

// NewMemoryRepository creates an empty store. now stamps CreatedAt; nil means time.Now.
func NewMemoryRepository(now func() time.Time) *MemoryRepository {
	if now == nil {
		now = time.Now
	}
	return &MemoryRepository{
		now:         now,
		users:       make(map[uuid.UUID]domain.User),
		usersByName: make(map[string]uuid.UUID),
		rounds:      make(map[uuid.UUID]domain.Round),
		stats:       make(map[uuid.UUID]domain.PlayerRoundStats),
		statsByKey:  make(map[statsKey]uuid.UUID),
	}
}

func (r *MemoryRepository) Health(ctx context.Context) error {
	return ctx.Err()
}

// Users

func (r *MemoryRepository) CreateUser(ctx context.Context, username, passwordHash string, role domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.usersByName[username]; taken {
		return nil, domain.NewConflictError("username already taken")
	}
	u := domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    r.now(),
	}
	r.users[u.ID] = u
	r.usersByName[username] = u.ID
	return &u, nil
}

func (r *MemoryRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.usersByName[username]
	if !ok {
		return nil, domain.NewNotFoundError("user")
	}
	u := r.users[id]
	return &u, nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, domain.NewNotFoundError("user")
	}
	return &u, nil
}

// Rounds

func (r *MemoryRepository) CreateRound(ctx context.Context, startAt, endAt time.Time) (*domain.Round, error) {
	if !startAt.Before(endAt) {
		return nil, domain.NewValidationError("end_at", "must be after start_at")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rd := domain.Round{
		ID:        uuid.New(),
		StartAt:   startAt,
		EndAt:     endAt,
		CreatedAt: r.now(),
	}
	r.rounds[rd.ID] = rd
	return &rd, nil
}

func (r *MemoryRepository) FindRound(ctx context.Context, roundID uuid.UUID) (*domain.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rd, ok := r.rounds[roundID]
	if !ok {
		return nil, domain.NewRoundNotFoundError()
	}
	return &rd, nil
}

func (r *MemoryRepository) ListRounds(ctx context.Context, notEndedBefore time.Time) ([]domain.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rounds := []domain.Round{}
	for _, rd := range r.rounds {
		if !rd.EndAt.Before(notEndedBefore) {
			rounds = append(rounds, rd)
		}
	}
	sort.Slice(rounds, func(i, j int) bool {
		if rounds[i].StartAt.Equal(rounds[j].StartAt) {
			return rounds[i].CreatedAt.Before(rounds[j].CreatedAt)
		}
		return rounds[i].StartAt.Before(rounds[j].StartAt)
	})
	return rounds, nil
}

func (r *MemoryRepository) FindRoundWithStats(ctx context.Context, roundID uuid.UUID) (*ports.RoundWithStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rd, ok := r.rounds[roundID]
	if !ok {
		return nil, domain.NewRoundNotFoundError()
	}

	res := &ports.RoundWithStats{Round: rd}
	for _, s := range r.stats {
		if s.RoundID != roundID {
			continue
		}
		u := r.users[s.UserID]
		res.Participants = append(res.Participants, domain.ParticipantStats{
			PlayerRoundStats: s,
			Username:         u.Username,
			Role:             u.Role,
		})
	}
	sort.Slice(res.Participants, func(i, j int) bool {
		a, b := res.Participants[i], res.Participants[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Taps != b.Taps {
			return a.Taps > b.Taps
		}
		return strings.Compare(a.Username, b.Username) < 0
	})
	return res, nil
}

// RunInTx applies fn's writes only when fn returns nil.
func (r *MemoryRepository) RunInTx(ctx context.Context, fn func(tx ports.RoundTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &memoryRoundTx{
		repo:   r,
		rounds: make(map[uuid.UUID]domain.Round),
		stats:  make(map[uuid.UUID]domain.PlayerRoundStats),
		keys:   make(map[statsKey]uuid.UUID),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// memoryRoundTx stages writes on top of the committed maps. The repository
// mutex is held by RunInTx for its whole lifetime.
type memoryRoundTx struct {
	repo   *MemoryRepository
	rounds map[uuid.UUID]domain.Round
	stats  map[uuid.UUID]domain.PlayerRoundStats
	keys   map[statsKey]uuid.UUID
}

func (t *memoryRoundTx) round(id uuid.UUID) (domain.Round, bool) {
	if rd, ok := t.rounds[id]; ok {
		return rd, true
	}
	rd, ok := t.repo.rounds[id]
	return rd, ok
}

func (t *memoryRoundTx) statsRow(id uuid.UUID) (domain.PlayerRoundStats, bool) {
	if s, ok := t.stats[id]; ok {
		return s, true
	}
	s, ok := t.repo.stats[id]
	return s, ok
}

func (t *memoryRoundTx) FindRound(ctx context.Context, roundID uuid.UUID) (*domain.Round, error) {
	rd, ok := t.round(roundID)
	if !ok {
		return nil, domain.NewRoundNotFoundError()
	}
	return &rd, nil
}

func (t *memoryRoundTx) GetOrCreatePlayerStats(ctx context.Context, userID, roundID uuid.UUID) (*domain.PlayerRoundStats, error) {
	if _, ok := t.round(roundID); !ok {
		return nil, domain.NewRoundNotFoundError()
	}

	key := statsKey{userID: userID, roundID: roundID}
	id, ok := t.keys[key]
	if !ok {
		id, ok = t.repo.statsByKey[key]
	}
	if ok {
		s, _ := t.statsRow(id)
		return &s, nil
	}

	s := domain.PlayerRoundStats{ID: uuid.New(), UserID: userID, RoundID: roundID}
	t.keys[key] = s.ID
	t.stats[s.ID] = s
	return &s, nil
}

func (t *memoryRoundTx) IncrementPlayerStats(ctx context.Context, statsID uuid.UUID, tapsDelta, pointsDelta int64) (*domain.PlayerRoundStats, error) {
	s, ok := t.statsRow(statsID)
	if !ok {
		return nil, domain.NewNotFoundError("player stats")
	}
	s.Taps += tapsDelta
	s.Points += pointsDelta
	t.stats[statsID] = s
	return &s, nil
}

func (t *memoryRoundTx) IncrementRoundTotalPoints(ctx context.Context, roundID uuid.UUID, delta int64) error {
	rd, ok := t.round(roundID)
	if !ok {
		return domain.NewRoundNotFoundError()
	}
	rd.TotalPoints += delta
	t.rounds[roundID] = rd
	return nil
}

func (t *memoryRoundTx) commit() {
	for id, rd := range t.rounds {
		t.repo.rounds[id] = rd
	}
	for id, s := range t.stats {
		t.repo.stats[id] = s
	}
	for k, id := range t.keys {
		t.repo.statsByKey[k] = id
	}
}
