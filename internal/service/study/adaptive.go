package study

import (
	"sort"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
)

// TierSample is one graded review at a known difficulty tier, used as
// evidence for promotion decisions.
type TierSample struct {
	Tier    domain.DifficultyLevel
	Outcome domain.ReviewOutcome
}

// Recommender decides which difficulty tier a user should study next.
type Recommender struct {
	// Window is how many recent graded reviews per tier count as evidence.
	Window int
	// Threshold is the accuracy at or above which the next tier is
	// recommended.
	Threshold float64
}

// RecommendDifficulty derives the next tier from recent graded reviews,
// newest first. The current tier is the highest one with any evidence;
// promotion requires a full window of samples at that tier with accuracy at
// or above the threshold. Recommendations move one tier at a time, and a
// user with no history starts at the lowest tier.
func (r Recommender) RecommendDifficulty(samples []TierSample) domain.DifficultyLevel {
	current := domain.DifficultyBeginner
	for _, s := range samples {
		if s.Outcome.IsGraded() && s.Tier.Rank() > current.Rank() {
			current = s.Tier
		}
	}

	correct, graded := 0, 0
	for _, s := range samples {
		if s.Tier != current || !s.Outcome.IsGraded() {
			continue
		}
		graded++
		if s.Outcome == domain.ReviewOutcomeCorrect {
			correct++
		}
		if graded == r.Window {
			break
		}
	}

	if graded < r.Window {
		return current
	}
	if domain.ComputeAccuracy(correct, graded-correct) >= r.Threshold {
		return current.Next()
	}
	return current
}

// AdaptiveFlashcards picks up to limit cards for adaptive study. Mastered
// cards are dropped, cards on the recommended tier are surfaced ahead of the
// rest, and within each group the queue's priority order is preserved.
// records is the user's full progress set; a card mastered long ago is still
// mastered even when it is not due, so the status check must not be limited
// to the due queue. The queue must already be sorted by priority; candidates
// not present in the queue keep their input order after all queued cards.
func AdaptiveFlashcards(candidates []domain.Flashcard, records, queue []domain.ProgressRecord, recommended domain.DifficultyLevel, limit int) []domain.Flashcard {
	if limit <= 0 {
		return []domain.Flashcard{}
	}

	status := make(map[uuid.UUID]domain.LearningStatus, len(records))
	for _, r := range records {
		status[r.CardID] = r.Status
	}
	rank := make(map[uuid.UUID]int, len(queue))
	for i, r := range queue {
		rank[r.CardID] = i
	}

	// Base order: queue position first, then input order for unseen cards.
	ordered := make([]domain.Flashcard, 0, len(candidates))
	var unseen []domain.Flashcard
	for _, c := range candidates {
		if status[c.ID] == domain.LearningStatusMastered {
			continue
		}
		if _, queued := rank[c.ID]; queued {
			ordered = append(ordered, c)
		} else {
			unseen = append(unseen, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank[ordered[i].ID] < rank[ordered[j].ID]
	})
	ordered = append(ordered, unseen...)

	// Re-weight: matching tier floats to the front, both halves stable.
	matched := make([]domain.Flashcard, 0, len(ordered))
	var rest []domain.Flashcard
	for _, c := range ordered {
		if c.Difficulty == recommended {
			matched = append(matched, c)
		} else {
			rest = append(rest, c)
		}
	}
	matched = append(matched, rest...)

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}
