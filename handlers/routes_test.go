package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gamification-service/database"
	"gamification-service/services"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	now := func() time.Time { return testNow }

	store := database.NewMemoryStore()
	if _, err := services.NewSeeder(store, now).Seed(ctx, services.DefaultBundle()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	catalog, err := services.LoadCatalog(ctx, store)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	streaks := services.NewStreakService(store, now)
	rewards := services.NewRewardService(store, store, catalog)
	campaigns := services.NewCampaignService(store, store, catalog, now)
	challenges := services.NewChallengeService(store, store, store, catalog, now)
	svc := Services{
		Catalog:    catalog,
		Players:    services.NewPlayerService(store, store),
		Rewards:    rewards,
		Streaks:    streaks,
		Campaigns:  campaigns,
		Challenges: challenges,
		Activity:   services.NewActivityService(streaks, rewards, campaigns, challenges),
	}

	app := fiber.New(fiber.Config{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal})
	SetupRoutes(app, svc)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, userID, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func TestSecuredRoutesRequireUser(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodGet, "/user/progress", "", "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if body["error"] == nil {
		t.Error("expected an error message")
	}

	if status, _ := do(t, app, http.MethodGet, "/health", "", ""); status != fiber.StatusOK {
		t.Errorf("health status = %d", status)
	}
}

func TestProgressCreatesPlayer(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodGet, "/user/progress", "u1", "")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["user_id"] != "u1" {
		t.Errorf("user_id = %v", body["user_id"])
	}

	if status, _ := do(t, app, http.MethodGet, "/players/u1/progress", "", ""); status != fiber.StatusOK {
		t.Errorf("lookup status = %d", status)
	}
	if status, _ := do(t, app, http.MethodGet, "/players/ghost/progress", "", ""); status != fiber.StatusNotFound {
		t.Errorf("unknown lookup status = %d, want 404", status)
	}
}

func TestActivityAwardsFirstSteps(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodPost, "/user/activity", "u1",
		`{"quizCompleted":true,"category":"science","scorePercentage":80}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d body=%v", status, body)
	}
	rewards, _ := body["rewards"].(map[string]any)
	awarded, _ := rewards["awardedAchievements"].([]any)
	found := false
	for _, a := range awarded {
		if m, ok := a.(map[string]any); ok && m["title"] == "First Steps" {
			found = true
		}
	}
	if !found {
		t.Errorf("First Steps not awarded: %v", awarded)
	}
	if body["streak"] == nil {
		t.Error("expected streak in response")
	}
}

func TestActivityRejectsOutOfRangeScore(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodPost, "/user/activity", "u1", `{"quizCompleted":true,"scorePercentage":140}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if body["error"] != "validation failed" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestCategoryXPValidation(t *testing.T) {
	app := newTestApp(t)

	if status, _ := do(t, app, http.MethodPost, "/user/category-xp", "u1", ""); status != fiber.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", status)
	}

	status, body := do(t, app, http.MethodPost, "/user/category-xp", "u1", `{"category":"science","amount":600}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d body=%v", status, body)
	}
	if body["level"] != float64(2) {
		t.Errorf("level = %v, want 2", body["level"])
	}
}

func TestCampaignRoutes(t *testing.T) {
	app := newTestApp(t)
	streakMaster := services.CatalogID("campaign", "streak-master")
	twoWeeks := services.CatalogID("quest", "streak-master-two-week-challenge")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown campaign", http.MethodPost, "/campaigns/nope/activate", "", fiber.StatusNotFound},
		{"progress before start", http.MethodGet, "/campaigns/" + streakMaster + "/progress", "", fiber.StatusConflict},
		{"activate", http.MethodPost, "/campaigns/" + streakMaster + "/activate", "", fiber.StatusOK},
		{"progress", http.MethodGet, "/campaigns/" + streakMaster + "/progress", "", fiber.StatusOK},
		{"not current quest", http.MethodPost, "/campaigns/" + streakMaster + "/quests/" + twoWeeks + "/progress",
			`{"objective_type":"maintain_streak"}`, fiber.StatusConflict},
		{"missing objective type", http.MethodPost, "/campaigns/" + streakMaster + "/quests/" + twoWeeks + "/progress",
			`{}`, fiber.StatusBadRequest},
		{"quests listing", http.MethodGet, "/campaigns/" + streakMaster + "/quests", "", fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, body := do(t, app, tt.method, tt.path, "u1", tt.body); status != tt.want {
				t.Errorf("status = %d, want %d (body %v)", status, tt.want, body)
			}
		})
	}
}

func TestChallengeRoutes(t *testing.T) {
	app := newTestApp(t)
	daily := services.CatalogID("challenge", "daily-quiz-master")
	path := "/challenges/" + daily
	quiz := `{"quizCompleted":true}`

	steps := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodPost, path + "/track", "", fiber.StatusOK},
		{http.MethodPost, path + "/track", "", fiber.StatusConflict},
		{http.MethodDelete, path + "/track", "", fiber.StatusOK},
		{http.MethodDelete, path + "/track", "", fiber.StatusConflict},
		{http.MethodPost, path + "/track", "", fiber.StatusOK},
		{http.MethodPost, path + "/complete", "", fiber.StatusConflict},
		{http.MethodPost, "/user/activity", quiz, fiber.StatusOK},
		{http.MethodPost, "/user/activity", quiz, fiber.StatusOK},
		{http.MethodPost, "/user/activity", quiz, fiber.StatusOK},
		{http.MethodGet, path + "/status", "", fiber.StatusOK},
		{http.MethodPost, path + "/complete", "", fiber.StatusOK},
		{http.MethodPost, path + "/complete", "", fiber.StatusConflict},
		{http.MethodPost, "/challenges/missing/track", "", fiber.StatusNotFound},
		{http.MethodGet, "/challenges/missing/status", "", fiber.StatusNotFound},
	}
	for i, s := range steps {
		if status, body := do(t, app, s.method, s.path, "u1", s.body); status != s.want {
			t.Fatalf("step %d %s %s: status = %d, want %d (body %v)", i, s.method, s.path, status, s.want, body)
		}
	}

	_, body := do(t, app, http.MethodGet, path+"/status", "u1", "")
	if body["completed"] != true || body["progress"] != float64(3) {
		t.Errorf("status = %v", body)
	}
}
