package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"gussgame/src/core/domain"
	"gussgame/src/core/ports"
	"gussgame/src/infra/db"
)

// PostgreSQL error codes the repository reacts to.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

var _ ports.GameRepository = (*PostgresRepository)(nil)

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements GameRepository using pgx.
type PostgresRepository struct {
	pg   *db.Postgres
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgresRepository constructs a repository backed by Postgres.
func NewPostgresRepository(pg *db.Postgres, log *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		pg:   pg,
		pool: pg.Pool,
		log:  log,
	}
}

func (r *PostgresRepository) Health(ctx context.Context) error {
	return r.pg.Health(ctx)
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == codeUniqueViolation
}

func isRetryable(err error) bool {
	switch pgErrorCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

// Users

const userColumns = `id, username, password_hash, role, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("user")
		}
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, username, passwordHash string, role domain.Role) (*domain.User, error) {
	const q = `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns
	u, err := scanUser(r.pool.QueryRow(ctx, q, username, passwordHash, role))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewConflictError("username already taken")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, q, username))
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, userID))
}

// Rounds

const roundColumns = `id, start_at, end_at, total_points, created_at`

func scanRound(row pgx.Row) (*domain.Round, error) {
	var rd domain.Round
	if err := row.Scan(&rd.ID, &rd.StartAt, &rd.EndAt, &rd.TotalPoints, &rd.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewRoundNotFoundError()
		}
		return nil, err
	}
	return &rd, nil
}

func findRound(ctx context.Context, q querier, roundID uuid.UUID) (*domain.Round, error) {
	const sql = `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`
	return scanRound(q.QueryRow(ctx, sql, roundID))
}

func (r *PostgresRepository) CreateRound(ctx context.Context, startAt, endAt time.Time) (*domain.Round, error) {
	const q = `
		INSERT INTO rounds (start_at, end_at)
		VALUES ($1, $2)
		RETURNING ` + roundColumns
	rd, err := scanRound(r.pool.QueryRow(ctx, q, startAt, endAt))
	if err != nil {
		return nil, fmt.Errorf("create round: %w", err)
	}
	return rd, nil
}

func (r *PostgresRepository) FindRound(ctx context.Context, roundID uuid.UUID) (*domain.Round, error) {
	return findRound(ctx, r.pool, roundID)
}

func (r *PostgresRepository) ListRounds(ctx context.Context, notEndedBefore time.Time) ([]domain.Round, error) {
	const q = `
		SELECT ` + roundColumns + `
		FROM rounds
		WHERE end_at >= $1
		ORDER BY start_at ASC
	`
	rows, err := r.pool.Query(ctx, q, notEndedBefore)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	rounds := []domain.Round{}
	for rows.Next() {
		var rd domain.Round
		if err := rows.Scan(&rd.ID, &rd.StartAt, &rd.EndAt, &rd.TotalPoints, &rd.CreatedAt); err != nil {
			return nil, err
		}
		rounds = append(rounds, rd)
	}
	return rounds, rows.Err()
}

// FindRoundWithStats reads the round and its stats from one REPEATABLE READ
// snapshot, so totalPoints always equals the sum of the listed points.
func (r *PostgresRepository) FindRoundWithStats(ctx context.Context, roundID uuid.UUID) (*ports.RoundWithStats, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	rd, err := findRound(ctx, tx, roundID)
	if err != nil {
		return nil, err
	}

	const q = `
		SELECT s.id, s.user_id, s.round_id, s.taps, s.points, u.username, u.role
		FROM player_round_stats s
		JOIN users u ON u.id = s.user_id
		WHERE s.round_id = $1
		ORDER BY s.points DESC, s.taps DESC, u.username ASC
	`
	rows, err := tx.Query(ctx, q, roundID)
	if err != nil {
		return nil, fmt.Errorf("list round stats: %w", err)
	}
	defer rows.Close()

	res := &ports.RoundWithStats{Round: *rd}
	for rows.Next() {
		var p domain.ParticipantStats
		if err := rows.Scan(&p.ID, &p.UserID, &p.RoundID, &p.Taps, &p.Points, &p.Username, &p.Role); err != nil {
			return nil, err
		}
		res.Participants = append(res.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}
	return res, nil
}

// RunInTx runs fn in one READ COMMITTED transaction. A serialization failure
// or deadlock is retried once; nothing is visible before commit.
func (r *PostgresRepository) RunInTx(ctx context.Context, fn func(tx ports.RoundTx) error) error {
	err := r.runInTx(ctx, fn)
	if isRetryable(err) {
		r.log.Warn("retrying transaction", "error", err)
		err = r.runInTx(ctx, fn)
	}
	return err
}

func (r *PostgresRepository) runInTx(ctx context.Context, fn func(tx ports.RoundTx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&postgresRoundTx{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// postgresRoundTx runs the tap-path statements on an open transaction.
type postgresRoundTx struct {
	q querier
}

func (t *postgresRoundTx) FindRound(ctx context.Context, roundID uuid.UUID) (*domain.Round, error) {
	return findRound(ctx, t.q, roundID)
}

func (t *postgresRoundTx) GetOrCreatePlayerStats(ctx context.Context, userID, roundID uuid.UUID) (*domain.PlayerRoundStats, error) {
	const insertQ = `
		INSERT INTO player_round_stats (user_id, round_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, round_id) DO NOTHING
	`
	if _, err := t.q.Exec(ctx, insertQ, userID, roundID); err != nil {
		return nil, fmt.Errorf("ensure player stats: %w", err)
	}

	// The row lock serialises concurrent taps of one player, so the tap count
	// read here is the one the score is computed from.
	const selectQ = `
		SELECT id, user_id, round_id, taps, points
		FROM player_round_stats
		WHERE user_id = $1 AND round_id = $2
		FOR UPDATE
	`
	var s domain.PlayerRoundStats
	if err := t.q.QueryRow(ctx, selectQ, userID, roundID).Scan(&s.ID, &s.UserID, &s.RoundID, &s.Taps, &s.Points); err != nil {
		return nil, fmt.Errorf("load player stats: %w", err)
	}
	return &s, nil
}

func (t *postgresRoundTx) IncrementPlayerStats(ctx context.Context, statsID uuid.UUID, tapsDelta, pointsDelta int64) (*domain.PlayerRoundStats, error) {
	const q = `
		UPDATE player_round_stats
		SET taps = taps + $2, points = points + $3
		WHERE id = $1
		RETURNING id, user_id, round_id, taps, points
	`
	var s domain.PlayerRoundStats
	if err := t.q.QueryRow(ctx, q, statsID, tapsDelta, pointsDelta).Scan(&s.ID, &s.UserID, &s.RoundID, &s.Taps, &s.Points); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("player stats")
		}
		return nil, fmt.Errorf("increment player stats: %w", err)
	}
	return &s, nil
}

func (t *postgresRoundTx) IncrementRoundTotalPoints(ctx context.Context, roundID uuid.UUID, delta int64) error {
	const q = `UPDATE rounds SET total_points = total_points + $2 WHERE id = $1`
	res, err := t.q.Exec(ctx, q, roundID, delta)
	if err != nil {
		return fmt.Errorf("increment round total: %w", err)
	}
	if res.RowsAffected() == 0 {
		return domain.NewRoundNotFoundError()
	}
	return nil
}
