package study

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
)

// PlanSession bounds a priority-sorted due set into a session list: each
// card id appears at most once (first occurrence wins) and the list never
// exceeds maxSize. A maxSize below 1 is a configuration error, rejected
// before any work is done.
func PlanSession(dueSorted []domain.ProgressRecord, maxSize int, startedAt time.Time) (*SessionRun, error) {
	if maxSize < 1 {
		return nil, domain.NewConfigurationError("max_size", "must be >= 1")
	}

	seen := make(map[uuid.UUID]struct{}, len(dueSorted))
	cards := make([]uuid.UUID, 0, min(maxSize, len(dueSorted)))
	for _, r := range dueSorted {
		if _, dup := seen[r.CardID]; dup {
			continue
		}
		seen[r.CardID] = struct{}{}
		cards = append(cards, r.CardID)
		if len(cards) == maxSize {
			break
		}
	}

	return &SessionRun{cards: cards, startedAt: startedAt}, nil
}

// SessionRun walks a planned card list one card at a time. Each card waits
// for exactly one outcome; reporting advances to the next card and there is
// no way back, so a card can never be graded twice in the same run.
type SessionRun struct {
	cards     []uuid.UUID
	pos       int
	correct   int
	incorrect int
	skipped   int
	reviewed  []uuid.UUID
	startedAt time.Time
}

// Current returns the card awaiting an outcome, or false when the run is
// complete.
func (r *SessionRun) Current() (uuid.UUID, bool) {
	if r.Done() {
		return uuid.Nil, false
	}
	return r.cards[r.pos], true
}

// Report applies an outcome to the current card and advances. Skips count
// in the statistics but must not be fed to the scheduler by the caller.
func (r *SessionRun) Report(outcome domain.ReviewOutcome) error {
	if r.Done() {
		return fmt.Errorf("session already complete: %w", domain.ErrConflict)
	}
	if !outcome.IsValid() {
		return domain.NewValidationError("outcome", "must be CORRECT, INCORRECT, or SKIPPED")
	}

	switch outcome {
	case domain.ReviewOutcomeCorrect:
		r.correct++
	case domain.ReviewOutcomeIncorrect:
		r.incorrect++
	case domain.ReviewOutcomeSkipped:
		r.skipped++
	}
	r.reviewed = append(r.reviewed, r.cards[r.pos])
	r.pos++
	return nil
}

// Cards returns the planned card list in study order.
func (r *SessionRun) Cards() []uuid.UUID {
	out := make([]uuid.UUID, len(r.cards))
	copy(out, r.cards)
	return out
}

// Done reports whether every planned card has received an outcome.
func (r *SessionRun) Done() bool { return r.pos >= len(r.cards) }

// Size returns the number of planned cards.
func (r *SessionRun) Size() int { return len(r.cards) }

// Remaining returns how many cards still await an outcome.
func (r *SessionRun) Remaining() int { return len(r.cards) - r.pos }

// Stats aggregates the run so far. Valid at any point, including early
// abandonment; duration is measured against the given time.
func (r *SessionRun) Stats(now time.Time) domain.SessionStats {
	reviewed := make([]uuid.UUID, len(r.reviewed))
	copy(reviewed, r.reviewed)

	return domain.SessionStats{
		TotalCards:     len(r.cards),
		CorrectCount:   r.correct,
		IncorrectCount: r.incorrect,
		SkippedCount:   r.skipped,
		ReviewedCards:  reviewed,
		StartedAt:      r.startedAt,
		DurationMs:     now.Sub(r.startedAt).Milliseconds(),
		Accuracy:       domain.ComputeAccuracy(r.correct, r.incorrect),
	}
}
