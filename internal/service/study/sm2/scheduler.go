// Package sm2 implements the SM-2 derived review scheduler.
//
// Update is a pure function over a progress record: no I/O, no access to
// other cards, no hidden state. Callers persist the returned record however
// they like (the service layer uses compare-and-swap on a version column).
package sm2

import (
	"math"
	"time"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
)

// Parameters holds the scheduler's tunable constants.
type Parameters struct {
	// LearningInterval is the interval (days) assigned on the first correct
	// answer and on every incorrect answer.
	LearningInterval int
	// GraduatingInterval is the interval (days) assigned when a card moves
	// from LEARNING to REVIEW.
	GraduatingInterval int
	// MasteryInterval is the interval (days) at or past which a REVIEW card
	// is promoted to MASTERED.
	MasteryInterval int
	// EasePenalty is subtracted from the ease factor on an incorrect answer.
	EasePenalty float64
	// EaseReward is added to the ease factor on a correct REVIEW answer.
	EaseReward float64
}

// DefaultParameters returns the classic SM-2 constants.
func DefaultParameters() Parameters {
	return Parameters{
		LearningInterval:   1,
		GraduatingInterval: 6,
		MasteryInterval:    21,
		EasePenalty:        0.2,
		EaseReward:         0.1,
	}
}

// Update computes the next progress record from the current one and a review
// outcome. The input is taken by value and never mutated; the returned record
// is the new state.
//
// Malformed input (ease below floor, negative interval) is clamped to the
// nearest valid value before computing; corrupted persisted state must never
// make scheduling fail. A SKIPPED outcome returns the record unchanged.
func Update(params Parameters, p domain.ProgressRecord, outcome domain.ReviewOutcome, now time.Time) domain.ProgressRecord {
	if !outcome.IsGraded() {
		return p
	}

	p.Normalize()

	if outcome == domain.ReviewOutcomeIncorrect {
		return updateIncorrect(params, p, now)
	}
	return updateCorrect(params, p, now)
}

// updateIncorrect demotes any card back to LEARNING with a one-day interval.
func updateIncorrect(params Parameters, p domain.ProgressRecord, now time.Time) domain.ProgressRecord {
	p.Status = domain.LearningStatusLearning
	p.IntervalDays = params.LearningInterval
	p.EaseFactor = math.Max(domain.MinEaseFactor, p.EaseFactor-params.EasePenalty)
	p.IncorrectCount++
	return reschedule(p, now)
}

func updateCorrect(params Parameters, p domain.ProgressRecord, now time.Time) domain.ProgressRecord {
	switch p.Status {
	case domain.LearningStatusNew:
		p.Status = domain.LearningStatusLearning
		p.IntervalDays = params.LearningInterval

	case domain.LearningStatusLearning:
		p.Status = domain.LearningStatusReview
		p.IntervalDays = params.GraduatingInterval

	case domain.LearningStatusReview:
		p.IntervalDays = roundHalfUp(float64(p.IntervalDays) * p.EaseFactor)
		p.EaseFactor += params.EaseReward
		if p.IntervalDays >= params.MasteryInterval {
			p.Status = domain.LearningStatusMastered
		}

	case domain.LearningStatusMastered:
		// Terminal in practice, but an incorrect answer still demotes.
		p.IntervalDays = roundHalfUp(float64(p.IntervalDays) * p.EaseFactor)
		p.EaseFactor += params.EaseReward
	}

	p.CorrectCount++
	return reschedule(p, now)
}

// reschedule stamps the review time and derives the next due date from the
// interval. Applies to every graded outcome.
func reschedule(p domain.ProgressRecord, now time.Time) domain.ProgressRecord {
	next := now.Add(time.Duration(p.IntervalDays) * 24 * time.Hour)
	p.LastReviewed = &now
	p.NextReviewAt = &next
	return p
}

// roundHalfUp rounds to the nearest integer with .5 going up.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
