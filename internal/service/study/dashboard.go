package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
	"github.com/flashdeck/flashdeck-backend/pkg/ctxutil"
)

// GetDashboard returns aggregated study statistics for the user.
func (s *Service) GetDashboard(ctx context.Context) (domain.Dashboard, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.Dashboard{}, domain.ErrUnauthorized
	}

	now := s.clock.Now()
	dayStart := now.UTC().Truncate(24 * time.Hour)

	dueCount, err := s.progress.CountDue(ctx, userID, now)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("count due: %w", err)
	}

	statusCounts, err := s.progress.CountByStatus(ctx, userID)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("count by status: %w", err)
	}

	reviewedToday, err := s.reviews.CountSince(ctx, userID, dayStart)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("count reviewed today: %w", err)
	}

	// Accuracy across the whole history, from the lifetime counters.
	correct, incorrect := 0, 0
	records, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("list progress: %w", err)
	}
	for _, r := range records {
		correct += r.CorrectCount
		incorrect += r.IncorrectCount
	}

	var active *domain.StudySession
	session, err := s.sessions.GetActive(ctx, userID)
	if err == nil {
		active = session
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Dashboard{}, fmt.Errorf("get active session: %w", err)
	}

	dashboard := domain.Dashboard{
		DueCount:      dueCount,
		NewCount:      statusCounts.New,
		ReviewedToday: reviewedToday,
		StatusCounts:  statusCounts,
		Accuracy:      domain.ComputeAccuracy(correct, incorrect),
		ActiveSession: active,
	}

	s.log.InfoContext(ctx, "dashboard loaded",
		slog.String("user_id", userID.String()),
		slog.Int("due_count", dueCount),
		slog.Int("reviewed_today", reviewedToday),
	)

	return dashboard, nil
}
