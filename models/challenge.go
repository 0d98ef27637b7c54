package models

import (
	"time"

	"gorm.io/datatypes"
)

// Challenge: time-boxed goal players can track (at most MaxTrackedChallenges at once).
type Challenge struct {
	ID           string                        `gorm:"primaryKey;type:uuid" json:"id"`
	Code         string                        `gorm:"uniqueIndex;not null" json:"code"`
	Title        string                        `gorm:"not null" json:"title"`
	Description  string                        `json:"description"`
	Category     string                        `json:"category"` // daily, weekly, ...
	StartDate    time.Time                     `json:"start_date"`
	EndDate      time.Time                     `gorm:"index" json:"end_date"`
	XPReward     int64                         `json:"xp_reward"`
	BadgeRewards datatypes.JSONType[[]string]  `json:"badge_rewards"`
	Requirement  datatypes.JSONType[Condition] `json:"requirement"`
	CreatedAt    time.Time                     `gorm:"autoCreateTime" json:"created_at"`
}

// MaxTrackedChallenges bounds Player.TrackedChallenges.
const MaxTrackedChallenges = 3

// IsActive reports whether now falls in [StartDate, EndDate).
func (c *Challenge) IsActive(now time.Time) bool {
	return !now.Before(c.StartDate) && now.Before(c.EndDate)
}

// ChallengeProgress counts a player's qualifying activity toward one challenge.
type ChallengeProgress struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID      string    `gorm:"uniqueIndex:idx_challenge_progress;not null" json:"user_id"`
	ChallengeID string    `gorm:"uniqueIndex:idx_challenge_progress;not null" json:"challenge_id"`
	Progress    int64     `gorm:"not null;default:0" json:"progress"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"last_updated"`
}
