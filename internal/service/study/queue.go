package study

import (
	"sort"
	"time"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
)

// statusPriority orders records by how urgently they need attention.
// Review cards come first (an established memory about to decay), then
// learning, then new, then mastered.
var statusPriority = map[domain.LearningStatus]int{
	domain.LearningStatusReview:   0,
	domain.LearningStatusLearning: 1,
	domain.LearningStatusNew:      2,
	domain.LearningStatusMastered: 3,
}

// DueRecords returns the subset of records due for review at now,
// preserving the input order. The input slice is not modified.
func DueRecords(records []domain.ProgressRecord, now time.Time) []domain.ProgressRecord {
	due := make([]domain.ProgressRecord, 0, len(records))
	for _, r := range records {
		if r.IsDue(now) {
			due = append(due, r)
		}
	}
	return due
}

// SortByPriority orders records in place by review urgency:
// more overdue first, then by status priority, then by incorrect count
// descending, with the card ID as the final tiebreaker. The order is a
// strict total order, so equal inputs always produce equal queues.
func SortByPriority(records []domain.ProgressRecord, now time.Time) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]

		oa, ob := a.Overdue(now), b.Overdue(now)
		if oa != ob {
			return oa > ob
		}
		if pa, pb := statusPriority[a.Status], statusPriority[b.Status]; pa != pb {
			return pa < pb
		}
		if a.IncorrectCount != b.IncorrectCount {
			return a.IncorrectCount > b.IncorrectCount
		}
		return a.CardID.String() < b.CardID.String()
	})
}

// BuildQueue filters records down to the due set and sorts it by
// priority. The result is a fresh slice.
func BuildQueue(records []domain.ProgressRecord, now time.Time) []domain.ProgressRecord {
	queue := DueRecords(records, now)
	SortByPriority(queue, now)
	return queue
}
