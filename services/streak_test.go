package services

import (
	"context"
	"testing"

	"gamification-service/models"
	"gamification-service/progression"
)

func TestRecordStreakActivityExtendsFromYesterday(t *testing.T) {
	f := newFixture(t)
	today := progression.Day(fixedNow)
	f.store.SetStreak(models.Streak{
		UserID:           "u1",
		Category:         models.OverallCategory,
		CurrentStreak:    4,
		HighestStreak:    5,
		LastActivityDate: today.AddDate(0, 0, -1),
	})

	res, err := f.streaks.RecordStreakActivity(context.Background(), "u1", "")
	if err != nil {
		t.Fatal(err)
	}
	o := res.Overall
	if o.CurrentStreak != 5 || o.HighestStreak != 5 || !o.LastActivityDate.Equal(today) {
		t.Errorf("overall = %+v, want 5/5 on %v", o, today)
	}
	if o.Outcome != progression.StreakExtended {
		t.Errorf("outcome = %s", o.Outcome)
	}
	if res.Category != nil {
		t.Error("no category streak was requested")
	}
}

func TestRecordStreakActivityTransitions(t *testing.T) {
	today := progression.Day(fixedNow)
	tests := []struct {
		name        string
		last        int // days before today
		wantCurrent int
		wantHighest int
	}{
		{"same day", 0, 3, 6},
		{"yesterday", 1, 4, 6},
		{"two days ago", 2, 1, 6},
		{"long gap", 30, 1, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.store.SetStreak(models.Streak{
				UserID:           "u1",
				CurrentStreak:    3,
				HighestStreak:    6,
				LastActivityDate: today.AddDate(0, 0, -tt.last),
			})
			res, err := f.streaks.RecordStreakActivity(context.Background(), "u1", "")
			if err != nil {
				t.Fatal(err)
			}
			if res.Overall.CurrentStreak != tt.wantCurrent || res.Overall.HighestStreak != tt.wantHighest {
				t.Errorf("streak = %d/%d, want %d/%d", res.Overall.CurrentStreak, res.Overall.HighestStreak,
					tt.wantCurrent, tt.wantHighest)
			}
		})
	}
}

func TestRecordStreakActivityWithCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.streaks.RecordStreakActivity(ctx, "u1", "science")
	if err != nil {
		t.Fatal(err)
	}
	if res.Category == nil || res.Category.Category != "science" || res.Category.CurrentStreak != 1 {
		t.Fatalf("category streak = %+v", res.Category)
	}
	if res.Overall.Outcome != progression.StreakStarted {
		t.Errorf("overall outcome = %s, want started", res.Overall.Outcome)
	}

	list, err := f.streaks.ListStreaks(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Category != models.OverallCategory {
		t.Errorf("streaks = %+v, want overall first then science", list)
	}
}
