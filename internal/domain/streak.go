package domain

import (
	"progression-engine/internal/period"
	"slices"
	"time"
)

const (
	MaxStreak   = 50
	CycleLength = 10
)

// StreakState is one streak type of a user's game state. Earned holds the
// streak lengths that already produced a completion badge.
type StreakState struct {
	Count         int
	LastKey       string
	LastAt        *time.Time
	Earned        []int
	Highest       int
	LastMilestone int
	Milestones    int
}

type Transition int

const (
	TransitionNone Transition = iota
	TransitionStarted
	TransitionExtended
	TransitionReset
)

func (t Transition) String() string {
	switch t {
	case TransitionStarted:
		return "started"
	case TransitionExtended:
		return "extended"
	case TransitionReset:
		return "reset"
	default:
		return "none"
	}
}

// Advance applies a completion of the period key. previousKey is the key of
// the window right before key. A completion older than the last recorded one
// returns ErrInvalidPeriodTransition and leaves the state untouched.
func (s *StreakState) Advance(key, previousKey string, at time.Time) (Transition, error) {
	var t Transition
	switch {
	case s.LastKey == "":
		s.Count = 1
		t = TransitionStarted
	case s.LastKey == key:
		return TransitionNone, nil
	case period.Before(key, s.LastKey):
		return TransitionNone, ErrInvalidPeriodTransition
	case s.LastKey == previousKey:
		s.Count = min(s.Count+1, MaxStreak)
		t = TransitionExtended
	default:
		s.Count = 1
		s.LastMilestone = 0
		t = TransitionReset
	}

	at = at.UTC()
	s.LastKey = key
	s.LastAt = &at
	return t, nil
}

func (s *StreakState) HasEarned(count int) bool {
	return slices.Contains(s.Earned, count)
}

func (s *StreakState) RecordEarned(count int) {
	if s.HasEarned(count) {
		return
	}
	s.Earned = append(s.Earned, count)
	if count > s.Highest {
		s.Highest = count
	}
}

// CyclePosition maps a streak count onto the reusable badge slots 1..10.
func CyclePosition(count int) int {
	if count < 1 {
		return 1
	}
	return (count-1)%CycleLength + 1
}

func IsMilestone(count int) bool {
	return count > 0 && count <= MaxStreak && count%CycleLength == 0
}
