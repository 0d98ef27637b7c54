package progression

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdvanceStreak(t *testing.T) {
	last := date(2025, time.March, 10)
	start := StreakState{Current: 4, Highest: 5, LastActivity: last}

	tests := []struct {
		name        string
		today       time.Time
		wantCurrent int
		wantHighest int
		wantLast    time.Time
		wantOutcome StreakOutcome
	}{
		{"same day is a no-op", last.Add(15 * time.Hour), 4, 5, last, StreakUnchanged},
		{"next day extends", date(2025, time.March, 11), 5, 5, date(2025, time.March, 11), StreakExtended},
		{"two days later resets", date(2025, time.March, 12), 1, 5, date(2025, time.March, 12), StreakReset},
		{"a month later resets", date(2025, time.April, 10), 1, 5, date(2025, time.April, 10), StreakReset},
		{"earlier date is ignored", date(2025, time.March, 1), 4, 5, last, StreakUnchanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := AdvanceStreak(start, tt.today)
			if got.Current != tt.wantCurrent || got.Highest != tt.wantHighest {
				t.Errorf("got current=%d highest=%d, want %d/%d", got.Current, got.Highest, tt.wantCurrent, tt.wantHighest)
			}
			if !got.LastActivity.Equal(tt.wantLast) {
				t.Errorf("last activity = %v, want %v", got.LastActivity, tt.wantLast)
			}
			if outcome != tt.wantOutcome {
				t.Errorf("outcome = %s, want %s", outcome, tt.wantOutcome)
			}
		})
	}
}

func TestAdvanceStreakRaisesHighest(t *testing.T) {
	s := StreakState{Current: 5, Highest: 5, LastActivity: date(2025, time.March, 10)}
	s, _ = AdvanceStreak(s, date(2025, time.March, 11))
	if s.Current != 6 || s.Highest != 6 {
		t.Fatalf("got %d/%d, want 6/6", s.Current, s.Highest)
	}
}

func TestHighestNeverDecreases(t *testing.T) {
	s := NewStreak(date(2025, time.January, 1))
	highest := s.Highest
	day := date(2025, time.January, 1)
	gaps := []int{1, 1, 1, 3, 1, 0, 1, 7, 1, 1, 1, 1, 2}
	for _, gap := range gaps {
		day = day.AddDate(0, 0, gap)
		s, _ = AdvanceStreak(s, day)
		if s.Highest < highest {
			t.Fatalf("highest dropped from %d to %d", highest, s.Highest)
		}
		if s.Highest < s.Current {
			t.Fatalf("highest %d below current %d", s.Highest, s.Current)
		}
		highest = s.Highest
	}
}

func TestNewStreak(t *testing.T) {
	s := NewStreak(time.Date(2025, time.May, 2, 22, 30, 0, 0, time.UTC))
	if s.Current != 1 || s.Highest != 1 || !s.LastActivity.Equal(date(2025, time.May, 2)) {
		t.Fatalf("unexpected first streak %+v", s)
	}
}
