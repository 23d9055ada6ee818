package domain

import (
	"time"

	"github.com/google/uuid"
)

// SRSConfig holds spaced-repetition scheduling parameters (pure domain type).
type SRSConfig struct {
	MasteryIntervalDays int
	LearningInterval    int
	GraduatingInterval  int
	EasePenalty         float64
	EaseReward          float64
	MaxSessionSize      int
	NewCardsPerDay      int
	AdaptiveWindow      int
	PromotionThreshold  float64
}

// ReviewLog records a single reported outcome for a card.
type ReviewLog struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CardID     uuid.UUID
	SessionID  *uuid.UUID
	Outcome    ReviewOutcome
	PrevState  *ProgressSnapshot
	DurationMs *int
	ReviewedAt time.Time
}

// StudySession tracks a user's study session from start to finish.
type StudySession struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Status     SessionStatus
	StartedAt  time.Time
	FinishedAt *time.Time
	Result     *SessionStats
	CreatedAt  time.Time
}

// SessionStats holds aggregated statistics for a study session.
// Accuracy counts only graded outcomes; skips are tracked separately.
type SessionStats struct {
	TotalCards     int
	CorrectCount   int
	IncorrectCount int
	SkippedCount   int
	ReviewedCards  []uuid.UUID
	StartedAt      time.Time
	DurationMs     int64
	Accuracy       float64
}

// ComputeAccuracy returns correct/(correct+incorrect), or 0 when nothing
// was graded. Never NaN.
func ComputeAccuracy(correct, incorrect int) float64 {
	graded := correct + incorrect
	if graded == 0 {
		return 0
	}
	return float64(correct) / float64(graded)
}

// StatusCounts holds the count of progress records per learning status.
type StatusCounts struct {
	New      int
	Learning int
	Review   int
	Mastered int
	Total    int
}

// Dashboard holds aggregated study statistics for the user.
type Dashboard struct {
	DueCount      int
	NewCount      int
	ReviewedToday int
	StatusCounts  StatusCounts
	Accuracy      float64
	ActiveSession *StudySession
}
