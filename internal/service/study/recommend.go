package study

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
	"github.com/flashdeck/flashdeck-backend/pkg/ctxutil"
)

// RecommendDifficulty returns the tier the user should study next, based on
// their recent accuracy at the highest tier they have attempted.
func (s *Service) RecommendDifficulty(ctx context.Context) (domain.DifficultyLevel, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return "", domain.ErrUnauthorized
	}

	recommended, err := s.recommendTier(ctx, userID)
	if err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "difficulty recommended",
		slog.String("user_id", userID.String()),
		slog.String("tier", string(recommended)),
	)

	return recommended, nil
}

// AdaptiveQueue returns up to limit cards picked for adaptive study: the
// due queue re-weighted toward the recommended tier, topped up with catalog
// cards on that tier. Mastered cards never appear.
func (s *Service) AdaptiveQueue(ctx context.Context, input AdaptiveQueueInput) ([]domain.Flashcard, error) {
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

	recommended, err := s.recommendTier(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	records, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	queue := BuildQueue(records, now)

	queued, err := s.resolveCards(ctx, queue)
	if err != nil {
		return nil, err
	}

	tierCards, err := s.cards.ListByDifficulty(ctx, recommended, limit)
	if err != nil {
		return nil, fmt.Errorf("list by difficulty: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(queued)+len(tierCards))
	candidates := make([]domain.Flashcard, 0, len(queued)+len(tierCards))
	for _, item := range queued {
		seen[item.Card.ID] = struct{}{}
		candidates = append(candidates, item.Card)
	}
	for _, c := range tierCards {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		candidates = append(candidates, c)
	}

	picked := AdaptiveFlashcards(candidates, records, queue, recommended, limit)

	s.log.InfoContext(ctx, "adaptive queue generated",
		slog.String("user_id", userID.String()),
		slog.String("tier", string(recommended)),
		slog.Int("total", len(picked)),
	)

	return picked, nil
}

// recommendTier finds the highest tier with graded history and runs the
// promotion rule over its recent outcomes.
func (s *Service) recommendTier(ctx context.Context, userID uuid.UUID) (domain.DifficultyLevel, error) {
	tiers, err := s.reviews.TiersReviewed(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("tiers reviewed: %w", err)
	}

	current := domain.DifficultyBeginner
	for _, t := range tiers {
		if t.Rank() > current.Rank() {
			current = t
		}
	}

	outcomes, err := s.reviews.RecentByTier(ctx, userID, current, s.cfg.AdaptiveWindow)
	if err != nil {
		return "", fmt.Errorf("recent outcomes: %w", err)
	}

	samples := make([]TierSample, 0, len(outcomes))
	for _, o := range outcomes {
		samples = append(samples, TierSample{Tier: current, Outcome: o})
	}

	rec := Recommender{Window: s.cfg.AdaptiveWindow, Threshold: s.cfg.PromotionThreshold}
	return rec.RecommendDifficulty(samples), nil
}
