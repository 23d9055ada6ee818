package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedFlashcard creates a flashcard with the given difficulty.
func SeedFlashcard(t *testing.T, pool *pgxpool.Pool, difficulty domain.DifficultyLevel) domain.Flashcard {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	card := domain.Flashcard{
		ID:         uuid.New(),
		Question:   "question " + suffix,
		Answer:     "answer " + suffix,
		Category:   "general",
		Difficulty: difficulty,
		Tags:       []string{"seed"},
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO flashcards (id, question, answer, category, difficulty, tags, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		card.ID, card.Question, card.Answer, card.Category, string(card.Difficulty), card.Tags, card.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedFlashcard insert: %v", err)
	}

	return card
}

// SeedProgress creates a progress record for a (user, card) pair. The record
// starts at version 1 with the given status; nextReviewAt may be nil.
func SeedProgress(t *testing.T, pool *pgxpool.Pool, userID, cardID uuid.UUID, status domain.LearningStatus, nextReviewAt *time.Time) domain.ProgressRecord {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	record := domain.ProgressRecord{
		ID:           uuid.New(),
		UserID:       userID,
		CardID:       cardID,
		Status:       status,
		EaseFactor:   domain.DefaultEaseFactor,
		NextReviewAt: nextReviewAt,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if status != domain.LearningStatusNew {
		record.IntervalDays = 1
		record.LastReviewed = &now
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO progress_records
		     (id, user_id, card_id, status, ease_factor, interval_days,
		      last_reviewed, next_review_at, correct_count, incorrect_count,
		      version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		record.ID, record.UserID, record.CardID, string(record.Status),
		record.EaseFactor, record.IntervalDays, record.LastReviewed, record.NextReviewAt,
		record.CorrectCount, record.IncorrectCount, record.Version,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedProgress insert: %v", err)
	}

	return record
}

// SeedReviewLog creates a review log for a (user, card) pair at the given time.
func SeedReviewLog(t *testing.T, pool *pgxpool.Pool, userID, cardID uuid.UUID, outcome domain.ReviewOutcome, reviewedAt time.Time) domain.ReviewLog {
	t.Helper()
	ctx := context.Background()

	log := domain.ReviewLog{
		ID:         uuid.New(),
		UserID:     userID,
		CardID:     cardID,
		Outcome:    outcome,
		ReviewedAt: reviewedAt.UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO review_logs (id, user_id, card_id, session_id, outcome, prev_state, duration_ms, reviewed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		log.ID, log.UserID, log.CardID, log.SessionID, string(log.Outcome), nil, log.DurationMs, log.ReviewedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedReviewLog insert: %v", err)
	}

	return log
}

// SeedSession creates a study session in the given status.
func SeedSession(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, status domain.SessionStatus) domain.StudySession {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	session := domain.StudySession{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    status,
		StartedAt: now,
		CreatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO study_sessions (id, user_id, status, started_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.UserID, string(session.Status), session.StartedAt, session.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSession insert: %v", err)
	}

	return session
}
