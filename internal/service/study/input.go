package study

import (
	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
)

// GetQueueInput holds the parameters for fetching the study queue.
type GetQueueInput struct {
	Limit int
}

// Validate checks all fields and collects all errors.
func (i *GetQueueInput) Validate() error {
	var errs []domain.FieldError

	if i.Limit < 0 || i.Limit > 200 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ReviewCardInput holds the parameters for grading a card.
type ReviewCardInput struct {
	CardID     uuid.UUID
	Outcome    domain.ReviewOutcome
	DurationMs *int
	SessionID  *uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i *ReviewCardInput) Validate() error {
	var errs []domain.FieldError

	if i.CardID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "card_id", Message: "required"})
	}
	if !i.Outcome.IsGraded() {
		errs = append(errs, domain.FieldError{Field: "outcome", Message: "must be CORRECT or INCORRECT"})
	}
	if i.DurationMs != nil && *i.DurationMs < 0 {
		errs = append(errs, domain.FieldError{Field: "duration_ms", Message: "must be non-negative"})
	}
	if i.DurationMs != nil && *i.DurationMs > 600_000 {
		errs = append(errs, domain.FieldError{Field: "duration_ms", Message: "max 10 minutes"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SkipCardInput holds the parameters for skipping a card.
type SkipCardInput struct {
	CardID    uuid.UUID
	SessionID *uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i *SkipCardInput) Validate() error {
	var errs []domain.FieldError

	if i.CardID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "card_id", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// FinishSessionInput holds the parameters for finishing a study session.
type FinishSessionInput struct {
	SessionID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i *FinishSessionInput) Validate() error {
	var errs []domain.FieldError

	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SessionHistoryInput holds the parameters for listing past sessions.
type SessionHistoryInput struct {
	Limit  int
	Offset int
}

// Validate checks all fields and collects all errors.
func (i *SessionHistoryInput) Validate() error {
	var errs []domain.FieldError

	if i.Limit < 0 || i.Limit > 200 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// AdaptiveQueueInput holds the parameters for the adaptive card selection.
type AdaptiveQueueInput struct {
	Limit int
}

// Validate checks all fields and collects all errors.
func (i *AdaptiveQueueInput) Validate() error {
	var errs []domain.FieldError

	if i.Limit < 0 || i.Limit > 200 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
