package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamification-service/models"
	"gamification-service/progression"

	"gorm.io/gorm"
)

// ensurePlayer returns the player record, creating the default one on a miss.
func ensurePlayer(ctx context.Context, players PlayerRepository, userID string) (*models.Player, error) {
	p, err := players.GetPlayer(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load player %s: %w", userID, err)
	}
	// A concurrent create for the same user is absorbed by the repository.
	if err := players.CreatePlayer(ctx, models.NewPlayer(userID)); err != nil {
		return nil, fmt.Errorf("failed to create player %s: %w", userID, err)
	}
	p, err = players.GetPlayer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload player %s: %w", userID, err)
	}
	return p, nil
}

// overallStreak returns the player's current overall streak, 0 when none is recorded.
func overallStreak(ctx context.Context, streaks StreakRepository, userID string) (*models.Streak, error) {
	s, err := streaks.GetStreak(ctx, userID, models.OverallCategory)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Streak{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load streak of %s: %w", userID, err)
	}
	return s, nil
}

type CategoryStats struct {
	Level           int     `json:"level"`
	XP              int64   `json:"xp"`
	NextLevelXP     int64   `json:"next_level_xp"`
	ProgressPercent float64 `json:"progress_percent"`
}

// PlayerStats is the derived view returned after every mutation.
type PlayerStats struct {
	XP               int64                    `json:"xp"`
	Level            int                      `json:"level"`
	NextLevelXP      int64                    `json:"next_level_xp"`
	ProgressPercent  float64                  `json:"progress_percent"`
	QuizzesCompleted int64                    `json:"quizzes_completed"`
	PerfectScores    int64                    `json:"perfect_scores"`
	CurrentStreak    int                      `json:"current_streak"`
	HighestStreak    int                      `json:"highest_streak"`
	UniqueCategories int                      `json:"unique_categories"`
	Achievements     int                      `json:"achievements"`
	Badges           int                      `json:"badges"`
	Categories       map[string]CategoryStats `json:"categories"`
}

func statsOf(p *models.Player, streak *models.Streak) PlayerStats {
	st := PlayerStats{
		XP:               p.XP,
		Level:            p.Level,
		NextLevelXP:      progression.Threshold(p.Level, progression.GlobalBaseXP),
		ProgressPercent:  progression.ProgressPercent(p.XP, p.Level, progression.GlobalBaseXP),
		QuizzesCompleted: p.QuizzesCompleted,
		PerfectScores:    p.PerfectScores,
		UniqueCategories: len(p.CompletedCategories),
		Achievements:     len(p.Achievements),
		Badges:           len(p.Badges),
		Categories:       map[string]CategoryStats{},
	}
	if streak != nil {
		st.CurrentStreak = streak.CurrentStreak
		st.HighestStreak = streak.HighestStreak
	}
	for name, c := range p.Categories() {
		st.Categories[name] = CategoryStats{
			Level:           c.Level,
			XP:              c.XP,
			NextLevelXP:     progression.Threshold(c.Level, progression.CategoryBaseXP),
			ProgressPercent: progression.ProgressPercent(c.XP, c.Level, progression.CategoryBaseXP),
		}
	}
	return st
}

// PlayerProgress is the full read model of a player.
type PlayerProgress struct {
	UserID              string      `json:"user_id"`
	DisplayName         string      `json:"display_name"`
	Stats               PlayerStats `json:"stats"`
	Achievements        []string    `json:"achievements"`
	Badges              []string    `json:"badges"`
	CompletedCategories []string    `json:"completed_categories"`
	CompletedChallenges []string    `json:"completed_challenges"`
	TrackedChallenges   []string    `json:"tracked_challenges"`
	UnlockedRewards     []string    `json:"unlocked_rewards"`
	LastLevelUpAt       *time.Time  `json:"last_level_up_at,omitempty"`
}

type PlayerService struct {
	players PlayerRepository
	streaks StreakRepository
}

func NewPlayerService(players PlayerRepository, streaks StreakRepository) *PlayerService {
	return &PlayerService{players: players, streaks: streaks}
}

// EnsurePlayer returns-or-creates the player record.
func (s *PlayerService) EnsurePlayer(ctx context.Context, userID string) (*models.Player, error) {
	return ensurePlayer(ctx, s.players, userID)
}

// Progress returns-or-creates the player and builds the read model.
func (s *PlayerService) Progress(ctx context.Context, userID string) (*PlayerProgress, error) {
	p, err := ensurePlayer(ctx, s.players, userID)
	if err != nil {
		return nil, err
	}
	return s.progressOf(ctx, p)
}

// Lookup is Progress without the create: an unknown user is ErrPlayerNotFound.
func (s *PlayerService) Lookup(ctx context.Context, userID string) (*PlayerProgress, error) {
	p, err := s.players.GetPlayer(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", userID, err)
	}
	return s.progressOf(ctx, p)
}

func (s *PlayerService) progressOf(ctx context.Context, p *models.Player) (*PlayerProgress, error) {
	streak, err := overallStreak(ctx, s.streaks, p.UserID)
	if err != nil {
		return nil, err
	}
	return &PlayerProgress{
		UserID:              p.UserID,
		DisplayName:         p.DisplayName,
		Stats:               statsOf(p, streak),
		Achievements:        p.Achievements,
		Badges:              p.Badges,
		CompletedCategories: p.CompletedCategories,
		CompletedChallenges: p.CompletedChallenges,
		TrackedChallenges:   p.TrackedChallenges,
		UnlockedRewards:     p.UnlockedRewards,
		LastLevelUpAt:       p.LastLevelUpAt,
	}, nil
}

// SetCustomization replaces the opaque customization document of a player.
func (s *PlayerService) SetCustomization(ctx context.Context, userID string, doc map[string]any) error {
	if _, err := s.players.GetPlayer(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to load player %s: %w", userID, err)
	}
	if err := s.players.SetField(ctx, userID, models.FieldCustomization, doc); err != nil {
		return fmt.Errorf("failed to store customization for %s: %w", userID, err)
	}
	return nil
}
