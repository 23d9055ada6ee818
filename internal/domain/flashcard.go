package domain

import (
	"time"

	"github.com/google/uuid"
)

// Flashcard is a single question/answer card from the content catalog.
// The catalog owns flashcards; the scheduling core only references them
// by ID and never mutates them.
type Flashcard struct {
	ID         uuid.UUID
	Question   string
	Answer     string
	Category   string
	Difficulty DifficultyLevel
	Tags       []string
	CreatedAt  time.Time
}

// HasTag reports whether the card carries the given tag.
func (f *Flashcard) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
