package domain

import "time"

// Review step sizes.
const (
	// KnownHPLoss is subtracted when the learner reports knowing the word.
	KnownHPLoss = 1

	// UnknownHPGain is added when the learner reports not knowing the word.
	UnknownHPGain = 2
)

// ReviewOutcome is the machine-readable result of a review.
type ReviewOutcome string

// Possible review outcomes
const (
	OutcomeHPDecreased ReviewOutcome = "hp_decreased"
	OutcomeHPIncreased ReviewOutcome = "hp_increased"
	OutcomePromoted    ReviewOutcome = "promoted"
)

// ReviewKnown applies a "known" review. When HP reaches zero the entry is left
// untouched and OutcomePromoted is returned; the caller moves it to the
// mastered registry instead of persisting a non-positive HP.
func (e *Entry) ReviewKnown(now time.Time) ReviewOutcome {
	if e.HP-KnownHPLoss <= 0 {
		return OutcomePromoted
	}
	e.HP -= KnownHPLoss
	e.markReviewed(now)
	return OutcomeHPDecreased
}

// ReviewUnknown applies an "unknown" review. It never promotes.
func (e *Entry) ReviewUnknown(now time.Time) ReviewOutcome {
	e.HP += UnknownHPGain
	e.markReviewed(now)
	return OutcomeHPIncreased
}

func (e *Entry) markReviewed(now time.Time) {
	t := now.UTC()
	e.LastReviewedAt = &t
}
