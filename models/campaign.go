package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// CustomizationReward is a cosmetic unlock (avatar frame, title, ...).
type CustomizationReward struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CampaignTheme struct {
	PrimaryColor    string `json:"primaryColor,omitempty"`
	SecondaryColor  string `json:"secondaryColor,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
}

// Campaign: ordered sequence of quests with a completion reward.
type Campaign struct {
	ID                   string                                    `gorm:"primaryKey;type:uuid" json:"id"`
	Code                 string                                    `gorm:"uniqueIndex;not null" json:"code"`
	Title                string                                    `gorm:"not null" json:"title"`
	Description          string                                    `json:"description"`
	Theme                datatypes.JSONType[CampaignTheme]         `json:"theme"`
	Category             string                                    `json:"category"`
	RequiredLevel        int                                       `gorm:"default:1" json:"required_level"`
	XPReward             int64                                     `json:"xp_reward"`
	CustomizationRewards datatypes.JSONType[[]CustomizationReward] `json:"customization_rewards"`
	QuestIDs             []string                                  `gorm:"-" json:"quests"`
	CreatedAt            time.Time                                 `gorm:"autoCreateTime" json:"created_at"`
}

// Objective types understood by activity routing. Other types are advanced
// only by explicit progress reports.
const (
	ObjectiveCompleteCategoryQuiz          = "complete_category_quiz"
	ObjectivePerfectCategoryQuiz           = "perfect_category_quiz"
	ObjectiveCompleteCategoryQuizWithScore = "complete_category_quiz_with_score"
	ObjectiveMaintainStreak                = "maintain_streak"
	ObjectiveUniqueCategories              = "unique_categories"
	ObjectiveTimedQuiz                     = "timed_quiz"
	ObjectiveHighScoreDifferentCategories  = "high_score_different_categories"
)

// Objective is a template; per-player counts live in ObjectiveProgress.
type Objective struct {
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Required    int     `json:"required"`
	MinScore    float64 `json:"min_score,omitempty"`
	TimeLimit   float64 `json:"time_limit,omitempty"` // seconds
}

// Quest: one campaign stage.
type Quest struct {
	ID                   string                                    `gorm:"primaryKey;type:uuid" json:"id"`
	CampaignID           string                                    `gorm:"index;not null" json:"campaign_id"`
	Code                 string                                    `gorm:"uniqueIndex;not null" json:"code"`
	Title                string                                    `gorm:"not null" json:"title"`
	Description          string                                    `json:"description"`
	Order                int                                       `gorm:"column:position;not null;default:0" json:"order"`
	Objectives           datatypes.JSONType[[]Objective]           `json:"objectives"`
	XPReward             int64                                     `json:"xp_reward"`
	CustomizationRewards datatypes.JSONType[[]CustomizationReward] `json:"customization_rewards"`
	CreatedAt            time.Time                                 `gorm:"autoCreateTime" json:"created_at"`
}

// UserCampaign joins a player to a campaign they have started.
type UserCampaign struct {
	ID              string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID          string         `gorm:"uniqueIndex:idx_user_campaign;not null" json:"user_id"`
	CampaignID      string         `gorm:"uniqueIndex:idx_user_campaign;not null" json:"campaign_id"`
	Active          bool           `gorm:"index;default:false" json:"active"`
	StartedAt       time.Time      `json:"started_at"`
	CompletedQuests pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"completed_quests"`
	CurrentQuestID  *string        `json:"current_quest_id"` // nil once the campaign is complete
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (uc *UserCampaign) IsComplete() bool {
	return uc.CurrentQuestID == nil
}

// ObjectiveProgress is a player's count on one objective of one quest.
type ObjectiveProgress struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID         string    `gorm:"uniqueIndex:idx_objective_progress;not null" json:"user_id"`
	CampaignID     string    `gorm:"uniqueIndex:idx_objective_progress;not null" json:"campaign_id"`
	QuestID        string    `gorm:"uniqueIndex:idx_objective_progress;not null" json:"quest_id"`
	ObjectiveIndex int       `gorm:"uniqueIndex:idx_objective_progress;not null" json:"objective_index"`
	Current        int       `gorm:"not null;default:0" json:"current"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ObjectiveKey addresses one objective counter.
type ObjectiveKey struct {
	UserID         string
	CampaignID     string
	QuestID        string
	ObjectiveIndex int
}
