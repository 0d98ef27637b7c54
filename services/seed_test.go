package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gamification-service/database"
	"gamification-service/models"
)

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	seeder := NewSeeder(store, func() time.Time { return fixedNow })

	first, err := seeder.Seed(ctx, DefaultBundle())
	if err != nil {
		t.Fatal(err)
	}
	if first.Achievements != 15 || first.Badges != 8 || first.Challenges != 2 || first.Campaigns != 4 || first.Quests != 13 {
		t.Errorf("report = %+v", first)
	}
	if _, err := seeder.Seed(ctx, DefaultBundle()); err != nil {
		t.Fatal(err)
	}

	achievements, _ := store.ListAchievements(ctx)
	badges, _ := store.ListBadges(ctx)
	campaigns, _ := store.ListCampaigns(ctx)
	if len(achievements) != 15 || len(badges) != 8 || len(campaigns) != 4 {
		t.Errorf("after reseed: %d achievements, %d badges, %d campaigns", len(achievements), len(badges), len(campaigns))
	}
}

func TestSeedParsesConditions(t *testing.T) {
	f := newFixture(t)

	byTitle := map[string]models.Condition{}
	for _, a := range f.catalog.Achievements() {
		byTitle[a.Title] = a.Condition.Data()
	}
	tests := map[string]models.Condition{
		"First Steps":   models.QuizzesCompleted(1),
		"Perfect Score": models.PerfectScore(),
		"Speed Demon":   models.TimeUnder(120),
		"Well Rounded":  models.DiverseCategories(3, 2),
		"Challenger":    {Kind: models.ConditionUnknown},
	}
	for title, want := range tests {
		if got := byTitle[title]; got != want {
			t.Errorf("%s condition = %v, want %v", title, got, want)
		}
	}
}

func TestSeedChallengeWindow(t *testing.T) {
	f := newFixture(t)
	ch, ok := f.catalog.Challenge(challengeID("Daily Quiz Master"))
	if !ok {
		t.Fatal("daily challenge missing")
	}
	wantStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !ch.StartDate.Equal(wantStart) || !ch.EndDate.Equal(wantStart.AddDate(0, 0, 1)) {
		t.Errorf("window = %v..%v", ch.StartDate, ch.EndDate)
	}

	perfect, _ := f.catalog.Challenge(challengeID("Perfect Score Challenge"))
	if got := perfect.BadgeRewards.Data(); len(got) != 1 || got[0] != badgeID("Perfect Score") {
		t.Errorf("badge rewards = %v", got)
	}
	if got := ch.Requirement.Data(); got != models.QuizzesCompleted(3) {
		t.Errorf("daily requirement = %v", got)
	}

	bare := newFixtureWith(t, &Bundle{Challenges: []ChallengeSeed{{Title: "Open Door", DurationDays: 1}}})
	door, _ := bare.catalog.Challenge(challengeID("Open Door"))
	if got := door.Requirement.Data().Kind; got != models.ConditionNone {
		t.Errorf("missing requirement kind = %v, want none", got)
	}
}

func TestSeedRejectsQuestWithoutObjectives(t *testing.T) {
	b := &Bundle{Campaigns: []CampaignSeed{{
		Title:  "Hollow",
		Quests: []QuestSeed{{Title: "Nothing To Do", Order: 1}},
	}}}
	store := database.NewMemoryStore()
	_, err := NewSeeder(store, nil).Seed(context.Background(), b)
	if err == nil || !strings.Contains(err.Error(), "no objectives") {
		t.Fatalf("Seed err = %v, want a missing objectives error", err)
	}
	if camps, _ := store.ListCampaigns(context.Background()); len(camps) != 0 {
		t.Errorf("campaigns stored = %d, want 0", len(camps))
	}
}

func TestSeedRejectsUnknownBadgeReward(t *testing.T) {
	b := &Bundle{Challenges: []ChallengeSeed{{Title: "Broken", DurationDays: 1, BadgeRewards: []string{"Nope"}}}}
	_, err := NewSeeder(database.NewMemoryStore(), nil).Seed(context.Background(), b)
	if err == nil || !strings.Contains(err.Error(), "Nope") {
		t.Errorf("err = %v, want unknown badge error", err)
	}
}

func TestLoadBundleFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	doc := `{
		"achievements": [{"title": "Marathon", "xp_reward": 500, "condition": {"quizzes_completed": 100}}],
		"badges": [{"name": "History Buff", "subject_type": "history", "level_requirement": 3}]
	}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	b, err := LoadBundle(context.Background(), FileSource(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Achievements) != 1 || len(b.Badges) != 1 {
		t.Fatalf("bundle = %+v", b)
	}
	if got := models.ParseCondition(b.Achievements[0].Condition); got != models.QuizzesCompleted(100) {
		t.Errorf("condition = %v", got)
	}

	if _, err := LoadBundle(context.Background(), FileSource(filepath.Join(t.TempDir(), "missing.json"))); err == nil {
		t.Error("missing file must fail")
	}
}

func TestCatalogIDStable(t *testing.T) {
	if CatalogID("badge", "math-master") != CatalogID("badge", "math-master") {
		t.Error("CatalogID is not deterministic")
	}
	if CatalogID("badge", "x") == CatalogID("quest", "x") {
		t.Error("kinds must not collide")
	}
}
