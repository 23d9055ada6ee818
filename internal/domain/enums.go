package domain

// LearningStatus represents the scheduling state of a progress record.
type LearningStatus string

const (
	LearningStatusNew      LearningStatus = "NEW"
	LearningStatusLearning LearningStatus = "LEARNING"
	LearningStatusReview   LearningStatus = "REVIEW"
	LearningStatusMastered LearningStatus = "MASTERED"
)

func (s LearningStatus) String() string { return string(s) }

func (s LearningStatus) IsValid() bool {
	switch s {
	case LearningStatusNew, LearningStatusLearning, LearningStatusReview, LearningStatusMastered:
		return true
	}
	return false
}

// ReviewOutcome represents the result the user reported for a card.
type ReviewOutcome string

const (
	ReviewOutcomeCorrect   ReviewOutcome = "CORRECT"
	ReviewOutcomeIncorrect ReviewOutcome = "INCORRECT"
	ReviewOutcomeSkipped   ReviewOutcome = "SKIPPED"
)

func (o ReviewOutcome) String() string { return string(o) }

func (o ReviewOutcome) IsValid() bool {
	switch o {
	case ReviewOutcomeCorrect, ReviewOutcomeIncorrect, ReviewOutcomeSkipped:
		return true
	}
	return false
}

// IsGraded reports whether the outcome changes scheduling state.
// Skips are recorded in session statistics but never reach the scheduler.
func (o ReviewOutcome) IsGraded() bool {
	return o == ReviewOutcomeCorrect || o == ReviewOutcomeIncorrect
}

// DifficultyLevel is the fixed difficulty tier of a flashcard.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "BEGINNER"
	DifficultyIntermediate DifficultyLevel = "INTERMEDIATE"
	DifficultyAdvanced     DifficultyLevel = "ADVANCED"
	DifficultyExpert       DifficultyLevel = "EXPERT"
)

// difficultyOrder is the fixed tier progression, lowest first.
var difficultyOrder = []DifficultyLevel{
	DifficultyBeginner,
	DifficultyIntermediate,
	DifficultyAdvanced,
	DifficultyExpert,
}

func (d DifficultyLevel) String() string { return string(d) }

func (d DifficultyLevel) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert:
		return true
	}
	return false
}

// Rank returns the position of the tier in the fixed order (BEGINNER = 0).
// Invalid tiers rank as -1 and sort below every valid tier.
func (d DifficultyLevel) Rank() int {
	for i, lvl := range difficultyOrder {
		if lvl == d {
			return i
		}
	}
	return -1
}

// Next returns the tier one step up, or the same tier if already EXPERT
// (or invalid). Recommendations never skip a tier.
func (d DifficultyLevel) Next() DifficultyLevel {
	r := d.Rank()
	if r < 0 || r >= len(difficultyOrder)-1 {
		return d
	}
	return difficultyOrder[r+1]
}

// DifficultyLevels returns all tiers in ascending order.
func DifficultyLevels() []DifficultyLevel {
	out := make([]DifficultyLevel, len(difficultyOrder))
	copy(out, difficultyOrder)
	return out
}

// SessionStatus represents the state of a study session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusFinished  SessionStatus = "FINISHED"
	SessionStatusAbandoned SessionStatus = "ABANDONED"
)

func (s SessionStatus) String() string { return string(s) }

func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusActive, SessionStatusFinished, SessionStatusAbandoned:
		return true
	}
	return false
}
