package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
	"github.com/flashdeck/flashdeck-backend/internal/service/study/sm2"
	"github.com/flashdeck/flashdeck-backend/pkg/ctxutil"
)

// casRetries bounds how many times a review is recomputed when another
// device graded the same card concurrently.
const casRetries = 3

// ReviewCard records a graded outcome and advances the card's scheduling
// state. Concurrent submissions for the same (user, card) are serialized by
// compare-and-swap on the record version: on conflict the state is reloaded
// and the outcome recomputed, so no grading event is ever silently dropped.
func (s *Service) ReviewCard(ctx context.Context, input ReviewCardInput) (*domain.ProgressRecord, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	// Validate card existence before touching progress.
	if _, err := s.cards.GetByID(ctx, input.CardID); err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}

	var updated *domain.ProgressRecord
	var err error
	for attempt := 0; attempt <= casRetries; attempt++ {
		updated, err = s.applyReview(ctx, userID, input)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		s.log.WarnContext(ctx, "concurrent review detected, retrying",
			slog.String("user_id", userID.String()),
			slog.String("card_id", input.CardID.String()),
			slog.Int("attempt", attempt+1),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("review card: %w", err)
	}

	s.log.InfoContext(ctx, "card reviewed",
		slog.String("user_id", userID.String()),
		slog.String("card_id", input.CardID.String()),
		slog.String("outcome", string(input.Outcome)),
		slog.String("status", string(updated.Status)),
		slog.Int("interval_days", updated.IntervalDays),
	)

	return updated, nil
}

// applyReview runs one load-compute-store cycle. Returns domain.ErrConflict
// when the stored version moved underneath us.
func (s *Service) applyReview(ctx context.Context, userID uuid.UUID, input ReviewCardInput) (*domain.ProgressRecord, error) {
	now := s.clock.Now()

	record, err := s.loadOrCreateProgress(ctx, userID, input.CardID, now)
	if err != nil {
		return nil, err
	}

	snapshot := record.Snapshot()
	next := sm2.Update(s.params, *record, input.Outcome, now)

	var updated *domain.ProgressRecord
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		updated, updateErr = s.progress.Update(txCtx, userID, input.CardID, record.Version, domain.ProgressUpdateParams{
			Status:         next.Status,
			EaseFactor:     next.EaseFactor,
			IntervalDays:   next.IntervalDays,
			LastReviewed:   next.LastReviewed,
			NextReviewAt:   next.NextReviewAt,
			CorrectCount:   next.CorrectCount,
			IncorrectCount: next.IncorrectCount,
		})
		if updateErr != nil {
			return fmt.Errorf("update progress: %w", updateErr)
		}

		_, logErr := s.reviews.Create(txCtx, &domain.ReviewLog{
			ID:         uuid.New(),
			UserID:     userID,
			CardID:     input.CardID,
			SessionID:  input.SessionID,
			Outcome:    input.Outcome,
			PrevState:  snapshot,
			DurationMs: input.DurationMs,
			ReviewedAt: now,
		})
		if logErr != nil {
			return fmt.Errorf("create review log: %w", logErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// SkipCard records a skip without touching scheduling state. The review log
// keeps the session statistics honest; the progress record is unchanged.
func (s *Service) SkipCard(ctx context.Context, input SkipCardInput) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return err
	}

	if _, err := s.cards.GetByID(ctx, input.CardID); err != nil {
		return fmt.Errorf("get card: %w", err)
	}

	now := s.clock.Now()

	record, err := s.loadOrCreateProgress(ctx, userID, input.CardID, now)
	if err != nil {
		return err
	}

	_, err = s.reviews.Create(ctx, &domain.ReviewLog{
		ID:         uuid.New(),
		UserID:     userID,
		CardID:     input.CardID,
		SessionID:  input.SessionID,
		Outcome:    domain.ReviewOutcomeSkipped,
		PrevState:  record.Snapshot(),
		ReviewedAt: now,
	})
	if err != nil {
		return fmt.Errorf("create review log: %w", err)
	}

	s.log.InfoContext(ctx, "card skipped",
		slog.String("user_id", userID.String()),
		slog.String("card_id", input.CardID.String()),
	)

	return nil
}

// loadOrCreateProgress fetches the progress record for a card, lazily
// creating the initial NEW state on first encounter. A create race with
// another request falls back to reading the winner's record.
func (s *Service) loadOrCreateProgress(ctx context.Context, userID, cardID uuid.UUID, now time.Time) (*domain.ProgressRecord, error) {
	record, err := s.progress.GetByCard(ctx, userID, cardID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	fresh := domain.NewProgressRecord(userID, cardID, now)
	created, err := s.progress.Create(ctx, &fresh)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return s.progress.GetByCard(ctx, userID, cardID)
		}
		return nil, fmt.Errorf("create progress: %w", err)
	}
	return created, nil
}
