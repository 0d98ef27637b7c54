package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"gamification-service/models"
)

func challengeBundle() *Bundle {
	expiredStart := fixedNow.AddDate(0, 0, -10)
	expiredEnd := fixedNow.AddDate(0, 0, -3)
	futureStart := fixedNow.AddDate(0, 0, 2)
	futureEnd := fixedNow.AddDate(0, 0, 9)

	b := DefaultBundle()
	b.Challenges = append(b.Challenges,
		ChallengeSeed{Title: "Weekly Sprint", DurationDays: 7, XPReward: 300},
		ChallengeSeed{Title: "Night Owl", DurationDays: 1, XPReward: 50},
		ChallengeSeed{Title: "Last Week", StartDate: &expiredStart, EndDate: &expiredEnd, XPReward: 10},
		ChallengeSeed{Title: "Next Week", StartDate: &futureStart, EndDate: &futureEnd, XPReward: 10},
	)
	return b
}

func TestListActiveChallenges(t *testing.T) {
	f := newFixtureWith(t, challengeBundle())

	var got []string
	for _, ch := range f.challenges.ListActive() {
		got = append(got, ch.Title)
	}
	for _, want := range []string{"Daily Quiz Master", "Perfect Score Challenge", "Weekly Sprint", "Night Owl"} {
		if !slices.Contains(got, want) {
			t.Errorf("missing active challenge %s in %v", want, got)
		}
	}
	if slices.Contains(got, "Last Week") || slices.Contains(got, "Next Week") {
		t.Errorf("inactive challenges listed: %v", got)
	}
}

func TestTrackChallengeLimit(t *testing.T) {
	f := newFixtureWith(t, challengeBundle())
	ctx := context.Background()

	for _, title := range []string{"Daily Quiz Master", "Perfect Score Challenge", "Weekly Sprint"} {
		if err := f.challenges.TrackChallenge(ctx, "u1", challengeID(title)); err != nil {
			t.Fatalf("track %s: %v", title, err)
		}
	}
	if err := f.challenges.TrackChallenge(ctx, "u1", challengeID("Night Owl")); !errors.Is(err, ErrMaxTrackedExceeded) {
		t.Errorf("fourth track err = %v, want ErrMaxTrackedExceeded", err)
	}
	if err := f.challenges.TrackChallenge(ctx, "u1", challengeID("Weekly Sprint")); !errors.Is(err, ErrAlreadyTracked) {
		t.Errorf("duplicate track err = %v, want ErrAlreadyTracked", err)
	}
	if got := len(f.player(t, "u1").TrackedChallenges); got != models.MaxTrackedChallenges {
		t.Errorf("tracked = %d, want %d", got, models.MaxTrackedChallenges)
	}
}

func TestTrackChallengePreconditions(t *testing.T) {
	f := newFixtureWith(t, challengeBundle())
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
		want error
	}{
		{"unknown", "nope", ErrChallengeNotFound},
		{"expired", challengeID("Last Week"), ErrChallengeInactive},
		{"not started", challengeID("Next Week"), ErrChallengeInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.challenges.TrackChallenge(ctx, "u1", tt.id); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTrackChallengeConcurrentLimit(t *testing.T) {
	f := newFixtureWith(t, challengeBundle())
	ctx := context.Background()
	if _, err := f.players.EnsurePlayer(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	names := []string{"Daily Quiz Master", "Perfect Score Challenge", "Weekly Sprint", "Night Owl"}
	errs := make([]error, len(names))
	var wg sync.WaitGroup
	for i, title := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.challenges.TrackChallenge(ctx, "u1", challengeID(title))
		}()
	}
	wg.Wait()

	rejected := 0
	for _, err := range errs {
		if errors.Is(err, ErrMaxTrackedExceeded) {
			rejected++
		} else if err != nil {
			t.Errorf("unexpected err %v", err)
		}
	}
	if rejected != 1 || len(f.player(t, "u1").TrackedChallenges) != 3 {
		t.Errorf("rejected = %d tracked = %v", rejected, f.player(t, "u1").TrackedChallenges)
	}
}

func TestUntrackChallenge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := challengeID("Daily Quiz Master")

	if err := f.challenges.UntrackChallenge(ctx, "u1", id); !errors.Is(err, ErrNotTracked) {
		t.Errorf("untrack before track err = %v", err)
	}
	if err := f.challenges.TrackChallenge(ctx, "u1", id); err != nil {
		t.Fatal(err)
	}
	if err := f.challenges.UntrackChallenge(ctx, "u1", id); err != nil {
		t.Fatal(err)
	}
	if f.player(t, "u1").Has(models.SetTrackedChallenges, id) {
		t.Error("challenge still tracked")
	}
}

func TestCompleteChallenge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := challengeID("Perfect Score Challenge")

	if err := f.challenges.TrackChallenge(ctx, "u1", id); err != nil {
		t.Fatal(err)
	}
	if _, err := f.challenges.CompleteChallenge(ctx, "u1", id); !errors.Is(err, ErrRequirementUnmet) {
		t.Fatalf("completion before a perfect score err = %v, want ErrRequirementUnmet", err)
	}
	if _, err := f.challenges.AdvanceFromActivity(ctx, "u1", ActivitySignal{Event: ActivityEvent{PerfectScore: true}}); err != nil {
		t.Fatal(err)
	}

	res, err := f.challenges.CompleteChallenge(ctx, "u1", id)
	if err != nil {
		t.Fatal(err)
	}
	if res.XPEarned != 200 || !slices.Equal(badgeNames(res.Badges), []string{"Perfect Score"}) {
		t.Errorf("completion = %+v", res)
	}
	p := f.player(t, "u1")
	if p.Has(models.SetTrackedChallenges, id) || !p.Has(models.SetCompletedChallenges, id) || p.XP != 200 {
		t.Errorf("player = tracked %v completed %v xp %d", p.TrackedChallenges, p.CompletedChallenges, p.XP)
	}

	if _, err := f.challenges.CompleteChallenge(ctx, "u1", id); !errors.Is(err, ErrChallengeCompleted) {
		t.Errorf("second completion err = %v", err)
	}
	if err := f.challenges.TrackChallenge(ctx, "u1", id); !errors.Is(err, ErrChallengeCompleted) {
		t.Errorf("tracking a completed challenge err = %v", err)
	}
}

func requirementBundle() *Bundle {
	b := DefaultBundle()
	b.Challenges = append(b.Challenges,
		ChallengeSeed{Title: "Open Door", DurationDays: 7, XPReward: 10},
		ChallengeSeed{Title: "Level Climber", DurationDays: 7, XPReward: 10, Requirement: map[string]any{"level": 2}},
		ChallengeSeed{Title: "Speed Run", DurationDays: 7, XPReward: 10, Requirement: map[string]any{"time_under": 30}},
		ChallengeSeed{Title: "Mystery", DurationDays: 7, XPReward: 10, Requirement: map[string]any{"moon_phase": 3}},
	)
	return b
}

func TestCompleteChallengeRequirement(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		prepare func(t *testing.T, f *fixture)
		wantErr error
	}{
		{"no requirement", "Open Door", nil, nil},
		{"quiz count short", "Daily Quiz Master", func(t *testing.T, f *fixture) {
			advance(t, f, ActivitySignal{Event: ActivityEvent{QuizCompleted: true}}, 2)
		}, ErrRequirementUnmet},
		{"quiz count met", "Daily Quiz Master", func(t *testing.T, f *fixture) {
			advance(t, f, ActivitySignal{Event: ActivityEvent{QuizCompleted: true}}, 3)
		}, nil},
		{"slow quiz does not count", "Speed Run", func(t *testing.T, f *fixture) {
			advance(t, f, ActivitySignal{Event: ActivityEvent{QuizCompleted: true, CompletionTime: ptr(45.0)}}, 1)
		}, ErrRequirementUnmet},
		{"fast quiz counts", "Speed Run", func(t *testing.T, f *fixture) {
			advance(t, f, ActivitySignal{Event: ActivityEvent{QuizCompleted: true, CompletionTime: ptr(12.0)}}, 1)
		}, nil},
		{"level too low", "Level Climber", nil, ErrRequirementUnmet},
		{"level reached", "Level Climber", func(t *testing.T, f *fixture) {
			if _, err := f.store.ApplyXP(context.Background(), "u1", 500); err != nil {
				t.Fatal(err)
			}
		}, nil},
		{"unknown requirement", "Mystery", nil, ErrRequirementUnmet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtureWith(t, requirementBundle())
			ctx := context.Background()
			id := challengeID(tt.title)
			if err := f.challenges.TrackChallenge(ctx, "u1", id); err != nil {
				t.Fatal(err)
			}
			if tt.prepare != nil {
				tt.prepare(t, f)
			}

			_, err := f.challenges.CompleteChallenge(ctx, "u1", id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CompleteChallenge err = %v, want %v", err, tt.wantErr)
			}
			if completed := f.player(t, "u1").Has(models.SetCompletedChallenges, id); completed != (tt.wantErr == nil) {
				t.Errorf("completed = %v", completed)
			}
		})
	}
}

func advance(t *testing.T, f *fixture, sig ActivitySignal, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		if _, err := f.challenges.AdvanceFromActivity(context.Background(), "u1", sig); err != nil {
			t.Fatal(err)
		}
	}
}

func TestChallengeAdvanceFromActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	daily := challengeID("Daily Quiz Master")
	perfect := challengeID("Perfect Score Challenge")

	if err := f.challenges.TrackChallenge(ctx, "u1", daily); err != nil {
		t.Fatal(err)
	}
	quiz := ActivitySignal{Event: ActivityEvent{QuizCompleted: true}}
	for i := 0; i < 5; i++ {
		got, err := f.challenges.AdvanceFromActivity(ctx, "u1", quiz)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ChallengeID != daily {
			t.Fatalf("advance %d = %+v", i, got)
		}
	}

	st, err := f.challenges.Status(ctx, "u1", daily)
	if err != nil {
		t.Fatal(err)
	}
	if st.Progress != 3 || st.Target != 3 || !st.Met || !st.Tracked {
		t.Errorf("daily status = %+v, want capped at 3 and met", st)
	}

	// Untracked challenges do not collect progress.
	if _, err := f.challenges.AdvanceFromActivity(ctx, "u1", ActivitySignal{Event: ActivityEvent{PerfectScore: true}}); err != nil {
		t.Fatal(err)
	}
	st, err = f.challenges.Status(ctx, "u1", perfect)
	if err != nil {
		t.Fatal(err)
	}
	if st.Progress != 0 || st.Met || st.Tracked {
		t.Errorf("perfect status = %+v, want untouched", st)
	}

	if _, err := f.challenges.Status(ctx, "u1", "nope"); !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("unknown status err = %v", err)
	}
}

func TestPruneExpired(t *testing.T) {
	f := newFixtureWith(t, challengeBundle())
	ctx := context.Background()
	daily := challengeID("Daily Quiz Master")
	weekly := challengeID("Weekly Sprint")

	for _, u := range []string{"u1", "u2"} {
		for _, id := range []string{daily, weekly} {
			if err := f.challenges.TrackChallenge(ctx, u, id); err != nil {
				t.Fatal(err)
			}
		}
	}

	// Two days later the daily window has closed.
	later := NewChallengeService(f.store, f.store, f.store, f.catalog, func() time.Time { return fixedNow.AddDate(0, 0, 2) })
	n, err := later.PruneExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("pruned = %d, want 2", n)
	}
	for _, u := range []string{"u1", "u2"} {
		p := f.player(t, u)
		if p.Has(models.SetTrackedChallenges, daily) || !p.Has(models.SetTrackedChallenges, weekly) {
			t.Errorf("%s tracked = %v", u, p.TrackedChallenges)
		}
	}
}
