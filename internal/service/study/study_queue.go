package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
	"github.com/flashdeck/flashdeck-backend/pkg/ctxutil"
)

const defaultQueueLimit = 50

// QueueItem pairs a flashcard with the user's scheduling state for it.
// Unseen cards carry the lazily-created initial state, not yet persisted.
type QueueItem struct {
	Card     domain.Flashcard
	Progress domain.ProgressRecord
}

// GetStudyQueue returns cards ready for review: the priority-sorted due set
// first, then unseen cards up to the daily new-card limit.
func (s *Service) GetStudyQueue(ctx context.Context, input GetQueueInput) ([]QueueItem, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = defaultQueueLimit
	}
	if limit > s.cfg.MaxSessionSize {
		limit = s.cfg.MaxSessionSize
	}

	now := s.clock.Now()

	records, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	due := BuildQueue(records, now)

	// The planner bounds the due set to one session's worth of cards,
	// deduplicated in priority order.
	plan, err := PlanSession(due, limit, now)
	if err != nil {
		return nil, fmt.Errorf("plan session: %w", err)
	}
	byCard := make(map[uuid.UUID]domain.ProgressRecord, len(due))
	for _, r := range due {
		if _, dup := byCard[r.CardID]; !dup {
			byCard[r.CardID] = r
		}
	}
	due = due[:0]
	for _, id := range plan.Cards() {
		due = append(due, byCard[id])
	}

	items, err := s.resolveCards(ctx, due)
	if err != nil {
		return nil, err
	}

	// Fill remaining slots with never-studied cards, bounded by the daily
	// new-card budget.
	if len(items) < limit && s.cfg.NewCardsPerDay > 0 {
		fresh, freshErr := s.unseenCards(ctx, userID, limit-len(items), now)
		if freshErr != nil {
			return nil, freshErr
		}
		items = append(items, fresh...)
	}

	s.log.InfoContext(ctx, "study queue generated",
		slog.String("user_id", userID.String()),
		slog.Int("due_count", len(due)),
		slog.Int("new_count", len(items)-len(due)),
		slog.Int("total", len(items)),
	)

	return items, nil
}

// resolveCards joins progress records with their flashcards. Records whose
// card has been removed from the catalog are dropped with a warning instead
// of failing the whole queue.
func (s *Service) resolveCards(ctx context.Context, records []domain.ProgressRecord) ([]QueueItem, error) {
	if len(records) == 0 {
		return []QueueItem{}, nil
	}

	ids := make([]uuid.UUID, len(records))
	for i, r := range records {
		ids[i] = r.CardID
	}

	cards, err := s.cards.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get cards: %w", err)
	}

	byID := make(map[uuid.UUID]domain.Flashcard, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	items := make([]QueueItem, 0, len(records))
	for _, r := range records {
		card, found := byID[r.CardID]
		if !found {
			s.log.WarnContext(ctx, "progress references missing card",
				slog.String("card_id", r.CardID.String()),
			)
			continue
		}
		items = append(items, QueueItem{Card: card, Progress: r})
	}
	return items, nil
}

// unseenCards returns up to want never-studied cards, respecting the daily
// new-card budget counted from midnight UTC.
func (s *Service) unseenCards(ctx context.Context, userID uuid.UUID, want int, now time.Time) ([]QueueItem, error) {
	dayStart := now.UTC().Truncate(24 * time.Hour)

	introduced, err := s.reviews.CountIntroducedSince(ctx, userID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("count introduced today: %w", err)
	}

	budget := s.cfg.NewCardsPerDay - introduced
	if budget <= 0 {
		return nil, nil
	}
	if want > budget {
		want = budget
	}

	cards, err := s.cards.ListUnseen(ctx, userID, want)
	if err != nil {
		return nil, fmt.Errorf("list unseen cards: %w", err)
	}

	items := make([]QueueItem, 0, len(cards))
	for _, c := range cards {
		items = append(items, QueueItem{
			Card:     c,
			Progress: domain.NewProgressRecord(userID, c.ID, now),
		})
	}
	return items, nil
}
