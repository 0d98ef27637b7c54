package services

import (
	"context"
	"slices"
	"testing"
)

func TestIngestRunsFullPipeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	camp := campaignID("Trivia Champion")

	p, err := f.players.EnsurePlayer(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	p.Level = 3
	f.store.SetPlayer(p)
	if _, err := f.campaigns.ActivateCampaign(ctx, "u1", camp); err != nil {
		t.Fatal(err)
	}

	res, err := f.activity.Ingest(ctx, "u1", ActivityEvent{QuizCompleted: true, Category: "geography", ScorePercentage: ptr(75.0)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Streak == nil || res.Streak.Overall.CurrentStreak != 1 || res.Streak.Category == nil {
		t.Errorf("streak = %+v", res.Streak)
	}
	if !slices.Contains(titles(res.Rewards.AwardedAchievements), "First Steps") {
		t.Errorf("rewards = %v", titles(res.Rewards.AwardedAchievements))
	}
	if res.Campaign == nil || res.Campaign.Progress.Objectives[0].Current != 1 {
		t.Errorf("campaign = %+v", res.Campaign)
	}
	if res.Rewards.UpdatedStats.CurrentStreak != 1 {
		t.Errorf("stats streak = %d, want 1", res.Rewards.UpdatedStats.CurrentStreak)
	}

	// Same category again: counted as a quiz, not as a new category.
	res, err = f.activity.Ingest(ctx, "u1", ActivityEvent{QuizCompleted: true, Category: "geography"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Campaign != nil {
		t.Errorf("repeat category advanced the quest: %+v", res.Campaign)
	}
}

func TestIngestEmptyEvent(t *testing.T) {
	f := newFixture(t)
	res, err := f.activity.Ingest(context.Background(), "u1", ActivityEvent{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Streak != nil || res.Campaign != nil || len(res.Rewards.AwardedAchievements) != 0 {
		t.Errorf("empty ingest = %+v", res)
	}
}

func TestIngestAdvancesTrackedChallenges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	daily := challengeID("Daily Quiz Master")
	if err := f.challenges.TrackChallenge(ctx, "u1", daily); err != nil {
		t.Fatal(err)
	}

	var res *IngestResult
	for i := 0; i < 3; i++ {
		var err error
		if res, err = f.activity.Ingest(ctx, "u1", ActivityEvent{QuizCompleted: true}); err != nil {
			t.Fatal(err)
		}
	}
	if len(res.Challenges) != 1 || res.Challenges[0].Progress != 3 || !res.Challenges[0].Met {
		t.Fatalf("challenges = %+v, want daily met at 3", res.Challenges)
	}
	if _, err := f.challenges.CompleteChallenge(ctx, "u1", daily); err != nil {
		t.Errorf("CompleteChallenge err = %v", err)
	}
}
