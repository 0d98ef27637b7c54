package services

import (
	"context"
	"testing"
	"time"

	"gamification-service/database"
	"gamification-service/models"

	"github.com/gosimple/slug"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store      *database.MemoryStore
	catalog    *Catalog
	now        func() time.Time
	rewards    *RewardService
	streaks    *StreakService
	campaigns  *CampaignService
	challenges *ChallengeService
	players    *PlayerService
	activity   *ActivityService
}

// newFixture seeds the default catalog into a fresh memory store.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, DefaultBundle())
}

func newFixtureWith(t *testing.T, bundle *Bundle) *fixture {
	t.Helper()
	ctx := context.Background()
	now := func() time.Time { return fixedNow }

	store := database.NewMemoryStore()
	if _, err := NewSeeder(store, now).Seed(ctx, bundle); err != nil {
		t.Fatalf("seed: %v", err)
	}
	catalog, err := LoadCatalog(ctx, store)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	f := &fixture{store: store, catalog: catalog, now: now}
	f.rewards = NewRewardService(store, store, catalog)
	f.streaks = NewStreakService(store, now)
	f.campaigns = NewCampaignService(store, store, catalog, now)
	f.challenges = NewChallengeService(store, store, store, catalog, now)
	f.players = NewPlayerService(store, store)
	f.activity = NewActivityService(f.streaks, f.rewards, f.campaigns, f.challenges)
	return f
}

func (f *fixture) player(t *testing.T, userID string) *models.Player {
	t.Helper()
	p, err := f.store.GetPlayer(context.Background(), userID)
	if err != nil {
		t.Fatalf("get player %s: %v", userID, err)
	}
	return p
}

func achievementID(title string) string { return CatalogID("achievement", slug.Make(title)) }
func badgeID(name string) string        { return CatalogID("badge", slug.Make(name)) }
func campaignID(title string) string    { return CatalogID("campaign", slug.Make(title)) }
func challengeID(title string) string   { return CatalogID("challenge", slug.Make(title)) }

func questID(campaign, quest string) string {
	return CatalogID("quest", slug.Make(campaign+" "+quest))
}

func titles(awarded []AwardedAchievement) []string {
	out := make([]string, 0, len(awarded))
	for _, a := range awarded {
		out = append(out, a.Title)
	}
	return out
}

func badgeNames(awarded []AwardedBadge) []string {
	out := make([]string, 0, len(awarded))
	for _, b := range awarded {
		out = append(out, b.Name)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
