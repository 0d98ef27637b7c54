package services

import (
	"context"
	"time"

	"gamification-service/models"
	"gamification-service/progression"
)

// Repositories report absence with gorm.ErrRecordNotFound; every mutation
// below is a single atomic step on the store side.

// PlayerRepository is the field-level view of the players table.
type PlayerRepository interface {
	GetPlayer(ctx context.Context, userID string) (*models.Player, error)
	// CreatePlayer inserts p unless a row for p.UserID already exists.
	CreatePlayer(ctx context.Context, p *models.Player) error
	// IncrementField returns the counter value after the increment.
	IncrementField(ctx context.Context, userID string, counter models.PlayerCounter, delta int64) (int64, error)
	// AddToSet reports whether value was newly added.
	AddToSet(ctx context.Context, userID string, set models.PlayerSet, value string) (bool, error)
	// AddToBoundedSet adds value only while the set holds fewer than limit members.
	AddToBoundedSet(ctx context.Context, userID string, set models.PlayerSet, value string, limit int) (bool, error)
	RemoveFromSet(ctx context.Context, userID string, set models.PlayerSet, value string) (bool, error)
	// PruneFromSet removes value from the set of every player and returns the rows touched.
	PruneFromSet(ctx context.Context, set models.PlayerSet, value string) (int64, error)
	PushToList(ctx context.Context, userID string, list models.PlayerList, value string) error
	SetField(ctx context.Context, userID string, field models.PlayerField, value any) error
	// ApplyXP adds delta to the global track and rolls levels under a row lock.
	ApplyXP(ctx context.Context, userID string, delta int64) (progression.Result, error)
}

// StreakRepository owns the streaks table.
type StreakRepository interface {
	GetStreak(ctx context.Context, userID, category string) (*models.Streak, error)
	ListStreaks(ctx context.Context, userID string) ([]models.Streak, error)
	// RecordStreak returns-or-creates the streak and advances it to today under a row lock.
	RecordStreak(ctx context.Context, userID, category string, today time.Time) (*models.Streak, progression.StreakOutcome, error)
}

// CatalogRepository holds the seeded definitions.
type CatalogRepository interface {
	ListAchievements(ctx context.Context) ([]models.Achievement, error)
	ListBadges(ctx context.Context) ([]models.Badge, error)
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	// ListQuests returns the quests of a campaign ordered by Order.
	ListQuests(ctx context.Context, campaignID string) ([]models.Quest, error)
	UpsertAchievement(ctx context.Context, a *models.Achievement) error
	UpsertBadge(ctx context.Context, b *models.Badge) error
	UpsertChallenge(ctx context.Context, c *models.Challenge) error
	UpsertCampaign(ctx context.Context, c *models.Campaign) error
	UpsertQuest(ctx context.Context, q *models.Quest) error
}

// CampaignRepository owns user_campaigns and objective_progresses.
type CampaignRepository interface {
	GetUserCampaign(ctx context.Context, userID, campaignID string) (*models.UserCampaign, error)
	GetActiveUserCampaign(ctx context.Context, userID string) (*models.UserCampaign, error)
	// ActivateUserCampaign deactivates every other campaign of the user and
	// activates this one, creating it at firstQuestID when absent.
	ActivateUserCampaign(ctx context.Context, userID, campaignID string, firstQuestID *string, now time.Time) (*models.UserCampaign, error)
	// IncrementObjective adds delta capped at required and returns the new count.
	IncrementObjective(ctx context.Context, key models.ObjectiveKey, delta, required int) (int, error)
	ListObjectiveProgress(ctx context.Context, userID, campaignID, questID string) ([]models.ObjectiveProgress, error)
	// CompleteQuest moves the current quest from questID to next (nil finishes
	// the campaign). It reports false when questID was no longer current.
	CompleteQuest(ctx context.Context, userID, campaignID, questID string, next *string, now time.Time) (bool, error)
}

// ChallengeProgressRepository owns challenge_progresses.
type ChallengeProgressRepository interface {
	GetChallengeProgress(ctx context.Context, userID, challengeID string) (*models.ChallengeProgress, error)
	// IncrementChallengeProgress adds delta capped at target and returns the new count.
	IncrementChallengeProgress(ctx context.Context, userID, challengeID string, delta, target int64) (int64, error)
}

// Store bundles the repositories one backend provides.
type Store interface {
	PlayerRepository
	StreakRepository
	CatalogRepository
	CampaignRepository
	ChallengeProgressRepository
}
