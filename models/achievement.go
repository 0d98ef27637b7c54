package models

import (
	"time"

	"gorm.io/datatypes"
)

// Achievement: static catalog entry, seeded once and read-only at runtime.
type Achievement struct {
	ID          string                        `gorm:"primaryKey;type:uuid" json:"id"`
	Code        string                        `gorm:"uniqueIndex;not null" json:"code"` // e.g. "quiz-novice"
	Title       string                        `gorm:"not null" json:"title"`
	Description string                        `json:"description"`
	Icon        string                        `json:"icon"`
	Category    string                        `gorm:"index" json:"category"`
	XPReward    int64                         `json:"xp_reward"`
	Condition   datatypes.JSONType[Condition] `json:"condition"`
	Hidden      bool                          `json:"hidden"`
	CreatedAt   time.Time                     `gorm:"autoCreateTime" json:"created_at"`
}
