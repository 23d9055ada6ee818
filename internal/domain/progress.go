package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ease factor bounds. Records loaded from storage are clamped into these
// bounds rather than rejected: stale or corrupted persisted state must never
// block study.
const (
	MinEaseFactor     = 1.3
	DefaultEaseFactor = 2.5
)

// ProgressRecord is the per-(user, card) learning state. It is owned and
// mutated exclusively by the scheduling core; the persistence layer stores it
// with a version column for optimistic concurrency.
type ProgressRecord struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	CardID         uuid.UUID
	Status         LearningStatus
	EaseFactor     float64
	IntervalDays   int
	LastReviewed   *time.Time
	NextReviewAt   *time.Time
	CorrectCount   int
	IncorrectCount int

	// Version guards concurrent review submissions for the same (user, card):
	// updates are compare-and-swap on this field. Last-writer-wins would
	// silently drop a grading event.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProgressRecord returns the lazily-created initial state for a card the
// user has never reviewed.
func NewProgressRecord(userID, cardID uuid.UUID, now time.Time) ProgressRecord {
	return ProgressRecord{
		ID:         uuid.New(),
		UserID:     userID,
		CardID:     cardID,
		Status:     LearningStatusNew,
		EaseFactor: DefaultEaseFactor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsDue reports whether the card needs review at the given time.
//   - NEW cards are always due.
//   - Other cards are due when NextReviewAt <= now.
func (p *ProgressRecord) IsDue(now time.Time) bool {
	if p.Status == LearningStatusNew {
		return true
	}
	if p.NextReviewAt == nil {
		return true
	}
	return !p.NextReviewAt.After(now)
}

// Overdue returns how far past its next review date the record is at the
// given time. NEW cards (and records without a next review date) count as
// exactly zero overdue.
func (p *ProgressRecord) Overdue(now time.Time) time.Duration {
	if p.Status == LearningStatusNew || p.NextReviewAt == nil {
		return 0
	}
	d := now.Sub(*p.NextReviewAt)
	if d < 0 {
		return 0
	}
	return d
}

// Normalize clamps a record's fields back into their invariant bounds and
// reports whether anything had to change. Malformed persisted state is
// recovered silently; scheduling never fails on it.
func (p *ProgressRecord) Normalize() bool {
	changed := false

	if !p.Status.IsValid() {
		p.Status = LearningStatusNew
		changed = true
	}
	if p.EaseFactor < MinEaseFactor {
		p.EaseFactor = MinEaseFactor
		changed = true
	}
	if p.IntervalDays < 0 {
		p.IntervalDays = 0
		changed = true
	}
	if p.Status != LearningStatusNew && p.IntervalDays < 1 {
		p.IntervalDays = 1
		changed = true
	}
	if p.CorrectCount < 0 {
		p.CorrectCount = 0
		changed = true
	}
	if p.IncorrectCount < 0 {
		p.IncorrectCount = 0
		changed = true
	}
	if p.NextReviewAt != nil && p.LastReviewed != nil && p.NextReviewAt.Before(*p.LastReviewed) {
		t := *p.LastReviewed
		p.NextReviewAt = &t
		changed = true
	}

	return changed
}

// ProgressSnapshot captures the scheduling state of a record before a review.
// Stored with each review log so sessions can be audited.
type ProgressSnapshot struct {
	Status         LearningStatus `json:"status"`
	EaseFactor     float64        `json:"ease_factor"`
	IntervalDays   int            `json:"interval_days"`
	LastReviewed   *time.Time     `json:"last_reviewed,omitempty"`
	NextReviewAt   *time.Time     `json:"next_review_at,omitempty"`
	CorrectCount   int            `json:"correct_count"`
	IncorrectCount int            `json:"incorrect_count"`
}

// Snapshot returns the record's current scheduling state.
func (p *ProgressRecord) Snapshot() *ProgressSnapshot {
	return &ProgressSnapshot{
		Status:         p.Status,
		EaseFactor:     p.EaseFactor,
		IntervalDays:   p.IntervalDays,
		LastReviewed:   p.LastReviewed,
		NextReviewAt:   p.NextReviewAt,
		CorrectCount:   p.CorrectCount,
		IncorrectCount: p.IncorrectCount,
	}
}

// ProgressUpdateParams holds the fields to persist on a record after the
// scheduler has computed a new state.
type ProgressUpdateParams struct {
	Status         LearningStatus
	EaseFactor     float64
	IntervalDays   int
	LastReviewed   *time.Time
	NextReviewAt   *time.Time
	CorrectCount   int
	IncorrectCount int
}
