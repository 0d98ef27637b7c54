package models

import (
	"slices"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CategoryProgress is the level track of a single quiz category.
type CategoryProgress struct {
	Level int   `json:"level"`
	XP    int64 `json:"xp"`
}

// CategoryLevels maps category name → progress.
type CategoryLevels map[string]CategoryProgress

// MaxLevel returns the highest level across all categories (0 when empty).
func (c CategoryLevels) MaxLevel() int {
	highest := 0
	for _, p := range c {
		if p.Level > highest {
			highest = p.Level
		}
	}
	return highest
}

// CountAtLevel counts the categories at or above level.
func (c CategoryLevels) CountAtLevel(level int) int {
	n := 0
	for _, p := range c {
		if p.Level >= level {
			n++
		}
	}
	return n
}

// Player is the gamification record of one external user (denormalized, one row per user).
type Player struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID      string `gorm:"uniqueIndex;not null" json:"user_id"` // links to the quiz app's user
	DisplayName string `json:"display_name"`

	// Core progression
	XP             int64                              `json:"xp" gorm:"default:0"`
	Level          int                                `json:"level" gorm:"default:1"`
	CategoryLevels datatypes.JSONType[CategoryLevels] `json:"category_levels"`

	// Earned sets, stored as text[] so membership can be changed atomically.
	// UnlockedRewards is a plain list of "type:id" customization rewards.
	Achievements        pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"achievements"`
	Badges              pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"badges"`
	CompletedCategories pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"completed_categories"`
	CompletedChallenges pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"completed_challenges"`
	TrackedChallenges   pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tracked_challenges"`
	UnlockedRewards     pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"unlocked_rewards"`

	// Activity counters
	QuizzesCompleted int64 `json:"quizzes_completed" gorm:"default:0"`
	PerfectScores    int64 `json:"perfect_scores" gorm:"default:0"`

	Customization datatypes.JSONMap `json:"customization"`

	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// PlayerCounter names an integer column that only moves by increments.
type PlayerCounter string

const (
	CounterQuizzesCompleted PlayerCounter = "quizzes_completed"
	CounterPerfectScores    PlayerCounter = "perfect_scores"
)

// PlayerSet names a text[] column with set semantics.
type PlayerSet string

const (
	SetAchievements        PlayerSet = "achievements"
	SetBadges              PlayerSet = "badges"
	SetCompletedCategories PlayerSet = "completed_categories"
	SetCompletedChallenges PlayerSet = "completed_challenges"
	SetTrackedChallenges   PlayerSet = "tracked_challenges"
)

// PlayerList names a text[] column with append-only list semantics.
type PlayerList string

const (
	ListUnlockedRewards PlayerList = "unlocked_rewards"
)

// PlayerField names a column that is overwritten as a whole.
type PlayerField string

const (
	FieldDisplayName    PlayerField = "display_name"
	FieldCategoryLevels PlayerField = "category_levels"
	FieldCustomization  PlayerField = "customization"
)

// NewPlayer is the default record created on first lookup.
func NewPlayer(userID string) *Player {
	return &Player{
		UserID:              userID,
		DisplayName:         userID,
		Level:               1,
		CategoryLevels:      datatypes.NewJSONType(CategoryLevels{}),
		Achievements:        pq.StringArray{},
		Badges:              pq.StringArray{},
		CompletedCategories: pq.StringArray{},
		CompletedChallenges: pq.StringArray{},
		TrackedChallenges:   pq.StringArray{},
		UnlockedRewards:     pq.StringArray{},
		Customization:       datatypes.JSONMap{},
	}
}

// Members returns the slice backing the named set.
func (p *Player) Members(set PlayerSet) *pq.StringArray {
	switch set {
	case SetAchievements:
		return &p.Achievements
	case SetBadges:
		return &p.Badges
	case SetCompletedCategories:
		return &p.CompletedCategories
	case SetCompletedChallenges:
		return &p.CompletedChallenges
	case SetTrackedChallenges:
		return &p.TrackedChallenges
	}
	return nil
}

// Items returns the slice backing the named list.
func (p *Player) Items(list PlayerList) *pq.StringArray {
	if list == ListUnlockedRewards {
		return &p.UnlockedRewards
	}
	return nil
}

// Has reports set membership.
func (p *Player) Has(set PlayerSet, value string) bool {
	m := p.Members(set)
	return m != nil && slices.Contains(*m, value)
}

// Counter returns the current value of a counter column.
func (p *Player) Counter(c PlayerCounter) int64 {
	switch c {
	case CounterQuizzesCompleted:
		return p.QuizzesCompleted
	case CounterPerfectScores:
		return p.PerfectScores
	}
	return 0
}

// Categories returns the category progression map, never nil.
func (p *Player) Categories() CategoryLevels {
	c := p.CategoryLevels.Data()
	if c == nil {
		return CategoryLevels{}
	}
	return c
}
