package services

import (
	"context"
	"fmt"
	"math"

	"gamification-service/logging"
	"gamification-service/metrics"
	"gamification-service/models"
	"gamification-service/progression"
)

// PerfectScoreBadge is handed out on every perfect-score event until held.
const PerfectScoreBadge = "Perfect Score"

// ActivityEvent is one quiz activity reported by the quiz application.
// All fields are optional.
type ActivityEvent struct {
	QuizCompleted   bool     `json:"quizCompleted"`
	PerfectScore    bool     `json:"perfectScore"`
	Category        string   `json:"category,omitempty"`
	CompletionTime  *float64 `json:"completionTime,omitempty" validate:"omitempty,gte=0"`
	ScorePercentage *float64 `json:"scorePercentage,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// Empty reports an event that carries none of the recognised fields.
func (e ActivityEvent) Empty() bool {
	return !e.QuizCompleted && !e.PerfectScore && e.Category == "" && e.CompletionTime == nil && e.ScorePercentage == nil
}

func (e ActivityEvent) score() float64 {
	if e.ScorePercentage == nil {
		return 0
	}
	return *e.ScorePercentage
}

// CategoryXP is the category XP a completed quiz earns: 50 + floor(score/2).
func CategoryXP(scorePercentage float64) int64 {
	return 50 + int64(math.Floor(scorePercentage*0.5))
}

// CategoryXPResult is the outcome of crediting XP to one category track.
type CategoryXPResult struct {
	Category     string         `json:"category"`
	XPEarned     int64          `json:"xp_earned"`
	Level        int            `json:"level"`
	XP           int64          `json:"xp"`
	LeveledUp    bool           `json:"level_up"`
	LevelsGained int            `json:"levels_gained"`
	Badges       []AwardedBadge `json:"badges"`
}

// ActivityResult is what ProcessActivity reports back.
type ActivityResult struct {
	AwardedAchievements []AwardedAchievement `json:"awardedAchievements"`
	AwardedBadges       []AwardedBadge       `json:"awardedBadges"`
	CategoryProgress    *CategoryXPResult    `json:"categoryProgress,omitempty"`
	UpdatedStats        *PlayerStats         `json:"updatedStats,omitempty"`
	// CategoryAdded is true when the event's category entered the completed set.
	CategoryAdded bool `json:"categoryAdded"`
}

func emptyActivityResult() *ActivityResult {
	return &ActivityResult{AwardedAchievements: []AwardedAchievement{}, AwardedBadges: []AwardedBadge{}}
}

// RewardService resolves achievements, badges and category XP for activity events.
type RewardService struct {
	awarder
	streaks StreakRepository
}

func NewRewardService(players PlayerRepository, streaks StreakRepository, catalog *Catalog) *RewardService {
	return &RewardService{awarder: awarder{players: players, catalog: catalog}, streaks: streaks}
}

// ProcessActivity applies one activity event to the player, in order:
// perfect-score counter and perfect-score conditions, quiz counter,
// completed category, the full achievement pass, then category XP.
// Every step goes through an atomic repository primitive.
func (s *RewardService) ProcessActivity(ctx context.Context, userID string, ev ActivityEvent) (*ActivityResult, error) {
	res := emptyActivityResult()
	if ev.Empty() {
		return res, nil
	}

	player, err := ensurePlayer(ctx, s.players, userID)
	if err != nil {
		return nil, err
	}
	streak, err := overallStreak(ctx, s.streaks, userID)
	if err != nil {
		return nil, err
	}

	snap := snapshotOf(player, streak.CurrentStreak)
	snap.PerfectScore = ev.PerfectScore
	snap.CompletionTime = ev.CompletionTime

	matched := make(map[string]bool)

	if ev.PerfectScore {
		n, err := s.players.IncrementField(ctx, userID, models.CounterPerfectScores, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to count perfect score: %w", err)
		}
		snap.PerfectScores = n
		if err := s.matchAchievements(ctx, userID, player, &snap, matched, res, func(c models.Condition) bool {
			return c.Kind == models.ConditionPerfectScore
		}); err != nil {
			return nil, err
		}
		if b, ok := s.catalog.BadgeByName(PerfectScoreBadge); ok {
			awarded, err := s.awardBadge(ctx, userID, b)
			if err != nil {
				return nil, err
			}
			if awarded != nil {
				res.AwardedBadges = append(res.AwardedBadges, *awarded)
			}
		}
	}

	if ev.QuizCompleted {
		if _, err := s.players.IncrementField(ctx, userID, models.CounterQuizzesCompleted, 1); err != nil {
			return nil, fmt.Errorf("failed to count completed quiz: %w", err)
		}
	}

	if ev.Category != "" {
		added, err := s.players.AddToSet(ctx, userID, models.SetCompletedCategories, ev.Category)
		if err != nil {
			return nil, fmt.Errorf("failed to record category %s: %w", ev.Category, err)
		}
		res.CategoryAdded = added
	}

	// The full pass reads what the store holds now, so concurrent events for
	// the same player each see every increment committed before their reload.
	player, err = s.players.GetPlayer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload player %s: %w", userID, err)
	}
	snap = snapshotOf(player, streak.CurrentStreak)
	snap.PerfectScore = ev.PerfectScore
	snap.CompletionTime = ev.CompletionTime

	if err := s.matchAchievements(ctx, userID, player, &snap, matched, res, nil); err != nil {
		return nil, err
	}

	if ev.Category != "" && ev.QuizCompleted {
		cat, err := s.addCategoryXP(ctx, player, ev.Category, CategoryXP(ev.score()))
		if err != nil {
			return nil, err
		}
		res.CategoryProgress = cat
		res.AwardedBadges = append(res.AwardedBadges, cat.Badges...)
	}

	updated, err := s.players.GetPlayer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload player %s: %w", userID, err)
	}
	stats := statsOf(updated, streak)
	res.UpdatedStats = &stats

	logging.Debug().Str("user_id", userID).
		Int("achievements", len(res.AwardedAchievements)).
		Int("badges", len(res.AwardedBadges)).
		Msg("activity processed")
	return res, nil
}

// matchAchievements awards every unearned achievement the snapshot satisfies.
// The snapshot level follows the XP credited along the way.
func (s *RewardService) matchAchievements(ctx context.Context, userID string, player *models.Player, snap *Snapshot,
	matched map[string]bool, res *ActivityResult, only func(models.Condition) bool) error {
	achievements := s.catalog.Achievements()
	for i := range achievements {
		ach := &achievements[i]
		if matched[ach.ID] || player.Has(models.SetAchievements, ach.ID) {
			continue
		}
		cond := ach.Condition.Data()
		if only != nil && !only(cond) {
			continue
		}
		if !snap.Satisfies(cond) {
			continue
		}
		matched[ach.ID] = true

		award, err := s.awardAchievement(ctx, userID, ach)
		if err != nil {
			return err
		}
		if award == nil {
			continue
		}
		res.AwardedAchievements = append(res.AwardedAchievements, award.Achievement)
		if award.Badge != nil {
			res.AwardedBadges = append(res.AwardedBadges, *award.Badge)
		}
		snap.Level = award.XP.Level
	}
	return nil
}

// AddCategoryXP credits amount to a category track, starting it at level 1
// when the player has none, and awards the milestone badges of every level
// the credit passes through.
func (s *RewardService) AddCategoryXP(ctx context.Context, userID, category string, amount int64) (*CategoryXPResult, error) {
	player, err := ensurePlayer(ctx, s.players, userID)
	if err != nil {
		return nil, err
	}
	return s.addCategoryXP(ctx, player, category, amount)
}

// addCategoryXP rewrites the whole category map; it assumes one writer per
// player at a time.
func (s *RewardService) addCategoryXP(ctx context.Context, player *models.Player, category string, amount int64) (*CategoryXPResult, error) {
	cats := player.Categories()
	current, ok := cats[category]
	if !ok {
		current = models.CategoryProgress{Level: 1}
	}
	r := progression.ApplyXP(current.XP, current.Level, amount, progression.CategoryBaseXP)

	next := make(models.CategoryLevels, len(cats)+1)
	for k, v := range cats {
		next[k] = v
	}
	next[category] = models.CategoryProgress{Level: r.Level, XP: r.XP}
	if err := s.players.SetField(ctx, player.UserID, models.FieldCategoryLevels, next); err != nil {
		return nil, fmt.Errorf("failed to store category levels: %w", err)
	}
	metrics.RecordXP(metrics.TrackCategory, amount, r.LevelsGained)

	out := &CategoryXPResult{
		Category:     category,
		XPEarned:     amount,
		Level:        r.Level,
		XP:           r.XP,
		LeveledUp:    r.LeveledUp,
		LevelsGained: r.LevelsGained,
		Badges:       []AwardedBadge{},
	}
	if r.LeveledUp {
		logging.Info().Str("user_id", player.UserID).Str("category", category).Int("level", r.Level).Msg("📈 category level up")
		// Every level crossed counts as a level-up, so a large credit still
		// collects the milestones between the old and the new level.
		for lvl := current.Level + 1; lvl <= r.Level; lvl++ {
			badges, err := s.awardCategoryBadges(ctx, player.UserID, category, lvl)
			if err != nil {
				return nil, err
			}
			out.Badges = append(out.Badges, badges...)
		}
	}
	return out, nil
}
