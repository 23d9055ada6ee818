package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
	"github.com/flashdeck/flashdeck-backend/pkg/ctxutil"
)

// GetActiveSession returns the user's active study session, or nil if none.
func (s *Service) GetActiveSession(ctx context.Context) (*domain.StudySession, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	session, err := s.sessions.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return session, nil
}

// StartSession starts a new study session or returns the existing ACTIVE one
// (idempotent).
func (s *Service) StartSession(ctx context.Context) (*domain.StudySession, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	existing, err := s.sessions.GetActive(ctx, userID)
	if err == nil {
		s.log.InfoContext(ctx, "returning existing session",
			slog.String("user_id", userID.String()),
			slog.String("session_id", existing.ID.String()),
		)
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check active session: %w", err)
	}

	session := &domain.StudySession{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    domain.SessionStatusActive,
		StartedAt: s.clock.Now(),
	}

	created, err := s.sessions.Create(ctx, session)
	if err != nil {
		// Race: another request created a session between check and create.
		if errors.Is(err, domain.ErrAlreadyExists) {
			existing, getErr := s.sessions.GetActive(ctx, userID)
			if getErr != nil {
				return nil, fmt.Errorf("get active after race: %w", getErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.InfoContext(ctx, "session started",
		slog.String("user_id", userID.String()),
		slog.String("session_id", created.ID.String()),
	)

	return created, nil
}

// FinishActiveSession finishes the user's current ACTIVE session.
func (s *Service) FinishActiveSession(ctx context.Context) (*domain.StudySession, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	session, err := s.sessions.GetActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}

	return s.finishSession(ctx, userID, session)
}

// FinishSession finishes a specific session by ID.
func (s *Service) FinishSession(ctx context.Context, input FinishSessionInput) (*domain.StudySession, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, userID, input.SessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return s.finishSession(ctx, userID, session)
}

// finishSession aggregates the session's review logs into statistics and
// closes it.
func (s *Service) finishSession(ctx context.Context, userID uuid.UUID, session *domain.StudySession) (*domain.StudySession, error) {
	if session.Status != domain.SessionStatusActive {
		return nil, domain.NewValidationError("session", "session already finished")
	}

	now := s.clock.Now()
	var finished *domain.StudySession

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		logs, logErr := s.reviews.GetByPeriod(txCtx, userID, session.StartedAt, now)
		if logErr != nil {
			return fmt.Errorf("get review logs: %w", logErr)
		}

		stats := aggregateStats(logsForSession(logs, session.ID), session.StartedAt, now)

		var finErr error
		finished, finErr = s.sessions.Finish(txCtx, userID, session.ID, stats)
		return finErr
	})
	if err != nil {
		return nil, fmt.Errorf("finish session: %w", err)
	}

	s.log.InfoContext(ctx, "session finished",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
		slog.Int("total_cards", finished.Result.TotalCards),
		slog.Float64("accuracy", finished.Result.Accuracy),
	)

	return finished, nil
}

// AbandonSession abandons the current ACTIVE session. A missing active
// session is an idempotent no-op.
func (s *Service) AbandonSession(ctx context.Context) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	session, err := s.sessions.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get active session: %w", err)
	}

	if err := s.sessions.Abandon(ctx, userID, session.ID); err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}

	s.log.InfoContext(ctx, "session abandoned",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
	)

	return nil
}

// GetSessionHistory returns past sessions, most recent first.
func (s *Service) GetSessionHistory(ctx context.Context, input SessionHistoryInput) ([]*domain.StudySession, int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, 0, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, 0, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = defaultQueueLimit
	}

	sessions, total, err := s.sessions.ListByUser(ctx, userID, limit, input.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, total, nil
}

// logsForSession keeps only logs recorded against the given session.
// Reviews submitted outside the session share the time window but must not
// count toward its statistics.
func logsForSession(logs []*domain.ReviewLog, sessionID uuid.UUID) []*domain.ReviewLog {
	out := make([]*domain.ReviewLog, 0, len(logs))
	for _, l := range logs {
		if l.SessionID != nil && *l.SessionID == sessionID {
			out = append(out, l)
		}
	}
	return out
}

// aggregateStats folds review logs from a session window into statistics.
// Every log counts toward the card list; only graded ones count toward
// accuracy.
func aggregateStats(logs []*domain.ReviewLog, startedAt, finishedAt time.Time) domain.SessionStats {
	stats := domain.SessionStats{
		StartedAt:  startedAt,
		DurationMs: finishedAt.Sub(startedAt).Milliseconds(),
	}

	seen := make(map[uuid.UUID]struct{}, len(logs))
	for _, l := range logs {
		switch l.Outcome {
		case domain.ReviewOutcomeCorrect:
			stats.CorrectCount++
		case domain.ReviewOutcomeIncorrect:
			stats.IncorrectCount++
		case domain.ReviewOutcomeSkipped:
			stats.SkippedCount++
		}
		if _, dup := seen[l.CardID]; !dup {
			seen[l.CardID] = struct{}{}
			stats.ReviewedCards = append(stats.ReviewedCards, l.CardID)
		}
	}

	stats.TotalCards = len(stats.ReviewedCards)
	stats.Accuracy = domain.ComputeAccuracy(stats.CorrectCount, stats.IncorrectCount)
	return stats
}
