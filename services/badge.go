package services

import (
	"context"
	"fmt"

	"gamification-service/logging"
	"gamification-service/metrics"
	"gamification-service/models"
	"gamification-service/progression"
)

// AwardedAchievement is emitted once per newly earned achievement.
type AwardedAchievement struct {
	ID          string `json:"achievement_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	XPEarned    int64  `json:"xp_earned"`
}

type AwardedBadge struct {
	ID          string `json:"badge_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Rarity      string `json:"rarity"`
}

// awarder applies rewards through the set and XP primitives of the player
// repository. Set-add decides whether a reward is new, so concurrent callers
// credit XP at most once.
type awarder struct {
	players PlayerRepository
	catalog *Catalog
}

func (a awarder) grantXP(ctx context.Context, userID string, amount int64, reason string) (progression.Result, error) {
	res, err := a.players.ApplyXP(ctx, userID, amount)
	if err != nil {
		return res, fmt.Errorf("failed to apply %d xp (%s): %w", amount, reason, err)
	}
	metrics.RecordXP(metrics.TrackGlobal, amount, res.LevelsGained)
	if res.LeveledUp {
		logging.Info().Str("user_id", userID).Int("level", res.Level).Str("reason", reason).Msg("🎮 level up")
	}
	return res, nil
}

// awardBadge returns nil when the player already holds b.
func (a awarder) awardBadge(ctx context.Context, userID string, b *models.Badge) (*AwardedBadge, error) {
	added, err := a.players.AddToSet(ctx, userID, models.SetBadges, b.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add badge %s: %w", b.ID, err)
	}
	if !added {
		return nil, nil
	}
	metrics.BadgesAwarded.Inc()
	logging.Info().Str("user_id", userID).Str("badge", b.Name).Msg("🎖️ badge awarded")
	return &AwardedBadge{ID: b.ID, Name: b.Name, Description: b.Description, Icon: b.Icon, Rarity: b.Rarity}, nil
}

// achievementAward is the outcome of awarding one achievement.
type achievementAward struct {
	Achievement AwardedAchievement
	XP          progression.Result
	Badge       *AwardedBadge
}

// awardAchievement returns nil when the achievement was already earned.
// A badge named like the achievement title comes with it.
func (a awarder) awardAchievement(ctx context.Context, userID string, ach *models.Achievement) (*achievementAward, error) {
	added, err := a.players.AddToSet(ctx, userID, models.SetAchievements, ach.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add achievement %s: %w", ach.ID, err)
	}
	if !added {
		return nil, nil
	}
	metrics.AchievementsAwarded.Inc()
	logging.Info().Str("user_id", userID).Str("achievement", ach.Title).Int64("xp", ach.XPReward).Msg("🏆 achievement unlocked")

	out := &achievementAward{
		Achievement: AwardedAchievement{ID: ach.ID, Title: ach.Title, Description: ach.Description, XPEarned: ach.XPReward},
	}
	if out.XP, err = a.grantXP(ctx, userID, ach.XPReward, "achievement:"+ach.Code); err != nil {
		return nil, err
	}
	if b, ok := a.catalog.BadgeByName(ach.Title); ok {
		if out.Badge, err = a.awardBadge(ctx, userID, b); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// awardCategoryBadges hands out the level milestone badges of a category.
func (a awarder) awardCategoryBadges(ctx context.Context, userID, category string, level int) ([]AwardedBadge, error) {
	var out []AwardedBadge
	for _, b := range a.catalog.BadgesForSubjectLevel(category, level) {
		awarded, err := a.awardBadge(ctx, userID, b)
		if err != nil {
			return out, err
		}
		if awarded != nil {
			out = append(out, *awarded)
		}
	}
	return out, nil
}

// unlockRewards appends customization rewards to the player's list.
func (a awarder) unlockRewards(ctx context.Context, userID string, rewards []models.CustomizationReward) error {
	for _, r := range rewards {
		if err := a.players.PushToList(ctx, userID, models.ListUnlockedRewards, r.Type+":"+r.ID); err != nil {
			return fmt.Errorf("failed to unlock reward %s: %w", r.ID, err)
		}
	}
	return nil
}
