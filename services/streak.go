package services

import (
	"context"
	"fmt"
	"time"

	"gamification-service/logging"
	"gamification-service/models"
	"gamification-service/progression"
)

type StreakView struct {
	Category         string                    `json:"category,omitempty"`
	CurrentStreak    int                       `json:"current_streak"`
	HighestStreak    int                       `json:"highest_streak"`
	LastActivityDate time.Time                 `json:"last_activity_date"`
	Outcome          progression.StreakOutcome `json:"outcome,omitempty"`
}

func viewOf(s *models.Streak, outcome progression.StreakOutcome) StreakView {
	return StreakView{
		Category:         s.Category,
		CurrentStreak:    s.CurrentStreak,
		HighestStreak:    s.HighestStreak,
		LastActivityDate: s.LastActivityDate,
		Outcome:          outcome,
	}
}

// StreakResult carries the overall streak and, when requested, the category one.
type StreakResult struct {
	Overall  StreakView  `json:"overall"`
	Category *StreakView `json:"category,omitempty"`
}

type StreakService struct {
	streaks StreakRepository
	now     func() time.Time
}

func NewStreakService(streaks StreakRepository, now func() time.Time) *StreakService {
	if now == nil {
		now = time.Now
	}
	return &StreakService{streaks: streaks, now: now}
}

// RecordStreakActivity records activity for today on the overall streak and,
// when category is not empty, on that category's streak.
func (s *StreakService) RecordStreakActivity(ctx context.Context, userID, category string) (*StreakResult, error) {
	today := progression.Day(s.now())

	overall, outcome, err := s.streaks.RecordStreak(ctx, userID, models.OverallCategory, today)
	if err != nil {
		return nil, fmt.Errorf("failed to record overall streak: %w", err)
	}
	res := &StreakResult{Overall: viewOf(overall, outcome)}
	if outcome == progression.StreakExtended {
		logging.Info().Str("user_id", userID).Int("streak", overall.CurrentStreak).Msg("🔥 streak extended")
	}

	if category != "" {
		cs, outcome, err := s.streaks.RecordStreak(ctx, userID, category, today)
		if err != nil {
			return nil, fmt.Errorf("failed to record %s streak: %w", category, err)
		}
		v := viewOf(cs, outcome)
		res.Category = &v
	}
	return res, nil
}

// ListStreaks returns every streak of the player, overall first.
func (s *StreakService) ListStreaks(ctx context.Context, userID string) ([]StreakView, error) {
	streaks, err := s.streaks.ListStreaks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list streaks: %w", err)
	}
	out := make([]StreakView, 0, len(streaks))
	for i := range streaks {
		out = append(out, viewOf(&streaks[i], ""))
	}
	return out, nil
}
