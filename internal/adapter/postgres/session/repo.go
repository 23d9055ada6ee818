// Package session implements the study session repository using PostgreSQL.
// A partial unique index keeps at most one ACTIVE session per user; Create
// surfaces a violation as domain.ErrAlreadyExists so the service can fall
// back to the already-running session.
package session

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

// Repo provides study session persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new study session repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const sessionColumns = `id, user_id, status, started_at, finished_at,
total_cards, correct_count, incorrect_count, skipped_count,
reviewed_cards, duration_ms, accuracy, created_at`

const createSessionSQL = `
INSERT INTO study_sessions (id, user_id, status, started_at, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + sessionColumns

const getByIDSQL = `
SELECT ` + sessionColumns + `
FROM study_sessions
WHERE user_id = $1 AND id = $2`

const getActiveSQL = `
SELECT ` + sessionColumns + `
FROM study_sessions
WHERE user_id = $1 AND status = 'ACTIVE'`

const finishSessionSQL = `
UPDATE study_sessions SET
    status = 'FINISHED',
    finished_at = $3,
    total_cards = $4,
    correct_count = $5,
    incorrect_count = $6,
    skipped_count = $7,
    reviewed_cards = $8,
    duration_ms = $9,
    accuracy = $10
WHERE user_id = $1 AND id = $2
RETURNING ` + sessionColumns

const abandonSessionSQL = `
UPDATE study_sessions SET status = 'ABANDONED', finished_at = now()
WHERE user_id = $1 AND id = $2 AND status = 'ACTIVE'`

const listByUserSQL = `
SELECT ` + sessionColumns + `
FROM study_sessions
WHERE user_id = $1
ORDER BY started_at DESC
LIMIT $2 OFFSET $3`

const countByUserSQL = `SELECT count(*) FROM study_sessions WHERE user_id = $1`

// Create inserts a new session and returns the persisted copy.
// Returns domain.ErrAlreadyExists when the user already has an ACTIVE session.
func (r *Repo) Create(ctx context.Context, s *domain.StudySession) (*domain.StudySession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, createSessionSQL,
		s.ID, s.UserID, s.Status, s.StartedAt, s.CreatedAt,
	)

	created, err := scanSession(row)
	if err != nil {
		return nil, mapError(err, "study_session", s.ID)
	}

	return created, nil
}

// GetByID returns a user's session by ID.
// Returns domain.ErrNotFound if it does not exist or belongs to another user.
func (r *Repo) GetByID(ctx context.Context, userID, sessionID uuid.UUID) (*domain.StudySession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	s, err := scanSession(querier.QueryRow(ctx, getByIDSQL, userID, sessionID))
	if err != nil {
		return nil, mapError(err, "study_session", sessionID)
	}

	return s, nil
}

// GetActive returns the user's ACTIVE session.
// Returns domain.ErrNotFound when no session is running.
func (r *Repo) GetActive(ctx context.Context, userID uuid.UUID) (*domain.StudySession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	s, err := scanSession(querier.QueryRow(ctx, getActiveSQL, userID))
	if err != nil {
		return nil, mapError(err, "study_session", userID)
	}

	return s, nil
}

// Finish marks a session FINISHED and stores its aggregated result.
func (r *Repo) Finish(ctx context.Context, userID, sessionID uuid.UUID, stats domain.SessionStats) (*domain.StudySession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	finishedAt := stats.StartedAt.Add(time.Duration(stats.DurationMs) * time.Millisecond)

	row := querier.QueryRow(ctx, finishSessionSQL,
		userID, sessionID, finishedAt,
		stats.TotalCards, stats.CorrectCount, stats.IncorrectCount, stats.SkippedCount,
		stats.ReviewedCards, stats.DurationMs, stats.Accuracy,
	)

	finished, err := scanSession(row)
	if err != nil {
		return nil, mapError(err, "study_session", sessionID)
	}

	return finished, nil
}

// Abandon marks an ACTIVE session ABANDONED.
// Returns domain.ErrNotFound when the session is missing or not active.
func (r *Repo) Abandon(ctx context.Context, userID, sessionID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, abandonSessionSQL, userID, sessionID)
	if err != nil {
		return mapError(err, "study_session", sessionID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("study_session %s: %w", sessionID, domain.ErrNotFound)
	}

	return nil
}

// ListByUser returns a page of the user's sessions, newest first, plus the
// total session count.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.StudySession, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	if err := querier.QueryRow(ctx, countByUserSQL, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count study_sessions: %w", err)
	}

	effectiveLimit := limit
	if effectiveLimit <= 0 {
		effectiveLimit = 2147483647
	}

	rows, err := querier.Query(ctx, listByUserSQL, userID, effectiveLimit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list study_sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.StudySession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan study_session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate study_sessions: %w", err)
	}

	if sessions == nil {
		sessions = []*domain.StudySession{}
	}

	return sessions, total, nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanSession(row pgx.Row) (*domain.StudySession, error) {
	var s domain.StudySession
	var status string
	var (
		totalCards     *int
		correctCount   *int
		incorrectCount *int
		skippedCount   *int
		reviewedCards  []uuid.UUID
		durationMs     *int64
		accuracy       *float64
	)

	err := row.Scan(
		&s.ID, &s.UserID, &status, &s.StartedAt, &s.FinishedAt,
		&totalCards, &correctCount, &incorrectCount, &skippedCount,
		&reviewedCards, &durationMs, &accuracy, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Status = domain.SessionStatus(status)

	// The result columns are NULL until the session finishes.
	if totalCards != nil {
		result := domain.SessionStats{
			TotalCards: *totalCards,
			StartedAt:  s.StartedAt,
		}
		if correctCount != nil {
			result.CorrectCount = *correctCount
		}
		if incorrectCount != nil {
			result.IncorrectCount = *incorrectCount
		}
		if skippedCount != nil {
			result.SkippedCount = *skippedCount
		}
		result.ReviewedCards = reviewedCards
		if durationMs != nil {
			result.DurationMs = *durationMs
		}
		if accuracy != nil {
			result.Accuracy = *accuracy
		}
		s.Result = &result
	}

	return &s, nil
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
