package progression

import "time"

// StreakState is the mutable part of a daily streak.
type StreakState struct {
	Current      int       `json:"current_streak"`
	Highest      int       `json:"highest_streak"`
	LastActivity time.Time `json:"last_activity_date"`
}

// StreakOutcome says which branch AdvanceStreak took.
type StreakOutcome string

const (
	StreakStarted   StreakOutcome = "started"
	StreakUnchanged StreakOutcome = "unchanged"
	StreakExtended  StreakOutcome = "extended"
	StreakReset     StreakOutcome = "reset"
)

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewStreak is the state after the first recorded activity.
func NewStreak(today time.Time) StreakState {
	return StreakState{Current: 1, Highest: 1, LastActivity: Day(today)}
}

// AdvanceStreak records activity on today. Repeating a day is a no-op, the day
// after the last activity extends the streak, anything later restarts it at 1.
// Highest never decreases. A today earlier than the last activity is treated as
// a repeat.
func AdvanceStreak(s StreakState, today time.Time) (StreakState, StreakOutcome) {
	today = Day(today)
	last := Day(s.LastActivity)

	switch {
	case !today.After(last):
		return s, StreakUnchanged
	case today.Equal(last.AddDate(0, 0, 1)):
		s.Current++
		if s.Current > s.Highest {
			s.Highest = s.Current
		}
		s.LastActivity = today
		return s, StreakExtended
	default:
		s.Current = 1
		if s.Highest < 1 {
			s.Highest = 1
		}
		s.LastActivity = today
		return s, StreakReset
	}
}

// Advanced reports whether the outcome moved the streak forward by a day.
func (o StreakOutcome) Advanced() bool {
	return o == StreakStarted || o == StreakExtended
}
