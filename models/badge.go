package models

import "time"

// Rarity tiers, lowest first.
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Badge: static catalog entry. Awarded by achievement-title match, by a
// subject level milestone (SubjectType + LevelRequirement) or by a special trigger.
type Badge struct {
	ID               string    `gorm:"primaryKey;type:uuid" json:"id"`
	Code             string    `gorm:"uniqueIndex;not null" json:"code"`
	Name             string    `gorm:"not null;index" json:"name"`
	Description      string    `json:"description"`
	Icon             string    `json:"icon"`
	Category         string    `json:"category"`
	SubjectType      string    `json:"subject_type,omitempty"` // e.g. "mathematics"
	Rarity           string    `gorm:"type:varchar(16);default:'common'" json:"rarity"`
	LevelRequirement int       `json:"level_requirement,omitempty"` // 0 = not a level milestone
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}
