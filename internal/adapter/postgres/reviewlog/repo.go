// Package reviewlog implements the review log repository using PostgreSQL.
// The pre-review scheduling snapshot is stored as JSONB in prev_state;
// CountIntroducedSince depends on its "status" key.
package reviewlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/flashdeck/flashdeck-backend/internal/adapter/postgres"
	"github.com/flashdeck/flashdeck-backend/internal/domain"
)

// Repo provides review log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new review log repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const reviewLogColumns = `id, user_id, card_id, session_id, outcome, prev_state, duration_ms, reviewed_at`

const createReviewLogSQL = `
INSERT INTO review_logs (id, user_id, card_id, session_id, outcome, prev_state, duration_ms, reviewed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + reviewLogColumns

const getByPeriodSQL = `
SELECT ` + reviewLogColumns + `
FROM review_logs
WHERE user_id = $1 AND reviewed_at >= $2 AND reviewed_at <= $3
ORDER BY reviewed_at DESC`

const countSinceSQL = `
SELECT count(*) FROM review_logs
WHERE user_id = $1 AND reviewed_at >= $2`

// countIntroducedSinceSQL counts reviews whose pre-review snapshot was NEW,
// i.e. first-ever exposures of a card. Depends on the "status" JSON key
// written by marshalPrevState.
const countIntroducedSinceSQL = `
SELECT count(*) FROM review_logs
WHERE user_id = $1 AND reviewed_at >= $2
AND prev_state IS NOT NULL
AND prev_state->>'status' = 'NEW'`

// recentByTierSQL returns the latest graded outcomes at a difficulty tier,
// newest first. Skips carry no accuracy signal and are excluded.
const recentByTierSQL = `
SELECT rl.outcome
FROM review_logs rl
JOIN flashcards f ON rl.card_id = f.id
WHERE rl.user_id = $1
AND f.difficulty = $2
AND rl.outcome IN ('CORRECT', 'INCORRECT')
ORDER BY rl.reviewed_at DESC
LIMIT $3`

const tiersReviewedSQL = `
SELECT DISTINCT f.difficulty
FROM review_logs rl
JOIN flashcards f ON rl.card_id = f.id
WHERE rl.user_id = $1
AND rl.outcome IN ('CORRECT', 'INCORRECT')`

// Create inserts a new review log and returns the persisted copy.
func (r *Repo) Create(ctx context.Context, rl *domain.ReviewLog) (*domain.ReviewLog, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	prevState, err := marshalPrevState(rl.PrevState)
	if err != nil {
		return nil, fmt.Errorf("review_log marshal prev_state: %w", err)
	}

	var durationMs pgtype.Int4
	if rl.DurationMs != nil {
		durationMs = pgtype.Int4{Int32: int32(*rl.DurationMs), Valid: true}
	}

	row := querier.QueryRow(ctx, createReviewLogSQL,
		rl.ID, rl.UserID, rl.CardID, rl.SessionID, rl.Outcome, prevState, durationMs, rl.ReviewedAt,
	)

	created, err := scanReviewLog(row)
	if err != nil {
		return nil, mapError(err, "review_log", rl.ID)
	}

	return created, nil
}

// GetByPeriod returns a user's review logs within [from, to], newest first.
func (r *Repo) GetByPeriod(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.ReviewLog, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, getByPeriodSQL, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get review_logs by period: %w", err)
	}
	defer rows.Close()

	var logs []*domain.ReviewLog
	for rows.Next() {
		rl, err := scanReviewLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review_log: %w", err)
		}
		logs = append(logs, rl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review_logs: %w", err)
	}

	if logs == nil {
		logs = []*domain.ReviewLog{}
	}

	return logs, nil
}

// CountSince returns the number of reviews for a user since the given time.
func (r *Repo) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countSinceSQL, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reviews since: %w", err)
	}

	return count, nil
}

// CountIntroducedSince returns how many previously unseen cards the user
// first reviewed since the given time.
func (r *Repo) CountIntroducedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countIntroducedSinceSQL, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count introduced since: %w", err)
	}

	return count, nil
}

// RecentByTier returns up to limit of the user's most recent graded outcomes
// for cards at the given difficulty tier, newest first.
func (r *Repo) RecentByTier(ctx context.Context, userID uuid.UUID, tier domain.DifficultyLevel, limit int) ([]domain.ReviewOutcome, error) {
	if limit <= 0 {
		return []domain.ReviewOutcome{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, recentByTierSQL, userID, tier, limit)
	if err != nil {
		return nil, fmt.Errorf("recent reviews by tier: %w", err)
	}
	defer rows.Close()

	var outcomes []domain.ReviewOutcome
	for rows.Next() {
		var outcome string
		if err := rows.Scan(&outcome); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcomes = append(outcomes, domain.ReviewOutcome(outcome))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}

	if outcomes == nil {
		outcomes = []domain.ReviewOutcome{}
	}

	return outcomes, nil
}

// TiersReviewed returns the difficulty tiers the user has graded history at.
func (r *Repo) TiersReviewed(ctx context.Context, userID uuid.UUID) ([]domain.DifficultyLevel, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, tiersReviewedSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("tiers reviewed: %w", err)
	}
	defer rows.Close()

	var tiers []domain.DifficultyLevel
	for rows.Next() {
		var tier string
		if err := rows.Scan(&tier); err != nil {
			return nil, fmt.Errorf("scan tier: %w", err)
		}
		tiers = append(tiers, domain.DifficultyLevel(tier))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tiers: %w", err)
	}

	if tiers == nil {
		tiers = []domain.DifficultyLevel{}
	}

	return tiers, nil
}

// ---------------------------------------------------------------------------
// JSONB serialization for the pre-review snapshot (prev_state)
// ---------------------------------------------------------------------------

// marshalPrevState converts a snapshot to JSON bytes for JSONB storage.
// Returns nil for nil input (stored as NULL).
func marshalPrevState(ps *domain.ProgressSnapshot) ([]byte, error) {
	if ps == nil {
		return nil, nil
	}
	return json.Marshal(ps)
}

// unmarshalPrevState converts JSONB bytes back to a snapshot.
// Returns nil for nil/empty input (NULL in DB).
func unmarshalPrevState(data []byte) (*domain.ProgressSnapshot, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var ps domain.ProgressSnapshot
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("unmarshal prev_state: %w", err)
	}

	return &ps, nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanReviewLog(row pgx.Row) (*domain.ReviewLog, error) {
	var rl domain.ReviewLog
	var (
		outcome    string
		prevState  []byte
		durationMs pgtype.Int4
	)

	err := row.Scan(
		&rl.ID, &rl.UserID, &rl.CardID, &rl.SessionID,
		&outcome, &prevState, &durationMs, &rl.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}

	rl.Outcome = domain.ReviewOutcome(outcome)

	if durationMs.Valid {
		d := int(durationMs.Int32)
		rl.DurationMs = &d
	}

	ps, err := unmarshalPrevState(prevState)
	if err != nil {
		return nil, fmt.Errorf("review_log %s: %w", rl.ID, err)
	}
	rl.PrevState = ps

	return &rl, nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
