// Package progress implements the ProgressRecord repository using PostgreSQL.
// Update is compare-and-swap on the version column: a stale version means a
// concurrent review won, and the caller gets domain.ErrConflict.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/flashdeck/flashdeck-backend/internal/adapter/postgres"
	"github.com/flashdeck/flashdeck-backend/internal/domain"
)

// Repo provides progress record persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new progress record repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const progressColumns = `id, user_id, card_id, status, ease_factor, interval_days,
last_reviewed, next_review_at, correct_count, incorrect_count, version, created_at, updated_at`

const getByCardSQL = `
SELECT ` + progressColumns + `
FROM progress_records
WHERE user_id = $1 AND card_id = $2`

const listByUserSQL = `
SELECT ` + progressColumns + `
FROM progress_records
WHERE user_id = $1
ORDER BY created_at, id`

const createProgressSQL = `
INSERT INTO progress_records (
    id, user_id, card_id, status, ease_factor, interval_days,
    last_reviewed, next_review_at, correct_count, incorrect_count,
    version, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + progressColumns

// updateProgressSQL only matches when the stored version equals the expected
// one. Zero rows back means either the record is gone or someone else bumped
// the version first; Update disambiguates with a follow-up read.
const updateProgressSQL = `
UPDATE progress_records SET
    status = $4,
    ease_factor = $5,
    interval_days = $6,
    last_reviewed = $7,
    next_review_at = $8,
    correct_count = $9,
    incorrect_count = $10,
    version = version + 1,
    updated_at = now()
WHERE user_id = $1 AND card_id = $2 AND version = $3
RETURNING ` + progressColumns

const countByStatusSQL = `
SELECT
    count(*) FILTER (WHERE status = 'NEW') AS new_count,
    count(*) FILTER (WHERE status = 'LEARNING') AS learning_count,
    count(*) FILTER (WHERE status = 'REVIEW') AS review_count,
    count(*) FILTER (WHERE status = 'MASTERED') AS mastered_count,
    count(*) AS total
FROM progress_records
WHERE user_id = $1`

const countDueSQL = `
SELECT count(*)
FROM progress_records
WHERE user_id = $1
AND (status = 'NEW' OR next_review_at IS NULL OR next_review_at <= $2)`

// GetByCard returns the progress record for a (user, card) pair.
// Returns domain.ErrNotFound when the user has never reviewed the card.
func (r *Repo) GetByCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.ProgressRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rec, err := scanProgress(querier.QueryRow(ctx, getByCardSQL, userID, cardID))
	if err != nil {
		return nil, mapError(err, "progress_record", cardID)
	}

	return rec, nil
}

// ListByUser returns all progress records for a user.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ProgressRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress_records: %w", err)
	}
	defer rows.Close()

	var records []domain.ProgressRecord
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress_record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress_records: %w", err)
	}

	if records == nil {
		records = []domain.ProgressRecord{}
	}

	return records, nil
}

// Create inserts a new progress record and returns the persisted copy.
// Returns domain.ErrAlreadyExists when a record for the (user, card) pair
// already exists.
func (r *Repo) Create(ctx context.Context, rec *domain.ProgressRecord) (*domain.ProgressRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, createProgressSQL,
		rec.ID, rec.UserID, rec.CardID, rec.Status, rec.EaseFactor, rec.IntervalDays,
		rec.LastReviewed, rec.NextReviewAt, rec.CorrectCount, rec.IncorrectCount,
		rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)

	created, err := scanProgress(row)
	if err != nil {
		return nil, mapError(err, "progress_record", rec.CardID)
	}

	return created, nil
}

// Update applies params only if the stored version still equals version.
// Returns domain.ErrConflict when a concurrent update bumped the version
// first, and domain.ErrNotFound when the record does not exist at all.
func (r *Repo) Update(ctx context.Context, userID, cardID uuid.UUID, version int, params domain.ProgressUpdateParams) (*domain.ProgressRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, updateProgressSQL,
		userID, cardID, version,
		params.Status, params.EaseFactor, params.IntervalDays,
		params.LastReviewed, params.NextReviewAt,
		params.CorrectCount, params.IncorrectCount,
	)

	updated, err := scanProgress(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapError(err, "progress_record", cardID)
	}

	// No row matched: distinguish "record gone" from "version stale".
	var exists bool
	checkErr := querier.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM progress_records WHERE user_id = $1 AND card_id = $2)`,
		userID, cardID,
	).Scan(&exists)
	if checkErr != nil {
		return nil, fmt.Errorf("progress_record %s: %w", cardID, checkErr)
	}
	if !exists {
		return nil, fmt.Errorf("progress_record %s: %w", cardID, domain.ErrNotFound)
	}

	return nil, fmt.Errorf("progress_record %s: stale version %d: %w", cardID, version, domain.ErrConflict)
}

// CountByStatus returns per-status record counts for a user in one query.
func (r *Repo) CountByStatus(ctx context.Context, userID uuid.UUID) (domain.StatusCounts, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var counts domain.StatusCounts
	err := querier.QueryRow(ctx, countByStatusSQL, userID).Scan(
		&counts.New, &counts.Learning, &counts.Review, &counts.Mastered, &counts.Total,
	)
	if err != nil {
		return domain.StatusCounts{}, fmt.Errorf("count progress_records by status: %w", err)
	}

	return counts, nil
}

// CountDue returns how many of a user's records are due at the given time.
// NEW records always count as due.
func (r *Repo) CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countDueSQL, userID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("count due progress_records: %w", err)
	}

	return count, nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanProgress(row pgx.Row) (*domain.ProgressRecord, error) {
	var rec domain.ProgressRecord
	var status string

	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.CardID, &status, &rec.EaseFactor, &rec.IntervalDays,
		&rec.LastReviewed, &rec.NextReviewAt, &rec.CorrectCount, &rec.IncorrectCount,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Status = domain.LearningStatus(status)

	return &rec, nil
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
