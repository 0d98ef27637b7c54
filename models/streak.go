package models

import (
	"time"

	"gamification-service/progression"
)

// OverallCategory is the category key of a player's overall streak.
const OverallCategory = ""

// Streak is a per-player daily streak, overall (empty category) or per category.
type Streak struct {
	ID               string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID           string    `gorm:"uniqueIndex:idx_streak_user_category;not null" json:"user_id"`
	Category         string    `gorm:"uniqueIndex:idx_streak_user_category;not null;default:''" json:"category,omitempty"`
	CurrentStreak    int       `json:"current_streak" gorm:"default:0"`
	HighestStreak    int       `json:"highest_streak" gorm:"default:0"`
	LastActivityDate time.Time `json:"last_activity_date" gorm:"type:date"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (s *Streak) State() progression.StreakState {
	return progression.StreakState{
		Current:      s.CurrentStreak,
		Highest:      s.HighestStreak,
		LastActivity: s.LastActivityDate,
	}
}

func (s *Streak) SetState(st progression.StreakState) {
	s.CurrentStreak = st.Current
	s.HighestStreak = st.Highest
	s.LastActivityDate = st.LastActivity
}
