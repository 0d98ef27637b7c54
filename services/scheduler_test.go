package services

import (
	"context"
	"testing"
	"time"

	"gamification-service/models"
)

func TestSweepChallenges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	daily := challengeID("Daily Quiz Master")
	if err := f.challenges.TrackChallenge(ctx, "u1", daily); err != nil {
		t.Fatal(err)
	}

	later := NewChallengeService(f.store, f.store, f.store, f.catalog, func() time.Time { return fixedNow.AddDate(0, 0, 1) })
	s, err := NewScheduler(later, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	s.SweepChallenges()
	if f.player(t, "u1").Has(models.SetTrackedChallenges, daily) {
		t.Error("expired challenge is still tracked after the sweep")
	}
}
