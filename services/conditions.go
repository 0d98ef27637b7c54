package services

import (
	"gamification-service/models"
)

// Snapshot is the derived player state a condition is evaluated against.
// The event fields describe the activity being processed.
type Snapshot struct {
	QuizzesCompleted int64
	PerfectScores    int64
	StreakDays       int
	Level            int
	UniqueCategories int
	Categories       models.CategoryLevels

	PerfectScore   bool
	CompletionTime *float64 // seconds
}

func snapshotOf(p *models.Player, streakDays int) Snapshot {
	return Snapshot{
		QuizzesCompleted: p.QuizzesCompleted,
		PerfectScores:    p.PerfectScores,
		StreakDays:       streakDays,
		Level:            p.Level,
		UniqueCategories: len(p.CompletedCategories),
		Categories:       p.Categories(),
	}
}

// Satisfies evaluates exactly one condition kind. Unknown kinds never match.
func (s Snapshot) Satisfies(c models.Condition) bool {
	switch c.Kind {
	case models.ConditionQuizzesCompleted:
		return s.QuizzesCompleted >= c.Threshold
	case models.ConditionPerfectScore:
		return s.PerfectScore
	case models.ConditionPerfectScores:
		return s.PerfectScores >= c.Threshold
	case models.ConditionStreakDays:
		return int64(s.StreakDays) >= c.Threshold
	case models.ConditionLevel:
		return int64(s.Level) >= c.Threshold
	case models.ConditionTimeUnder:
		return s.CompletionTime != nil && *s.CompletionTime < float64(c.Threshold)
	case models.ConditionUniqueCategories:
		return int64(s.UniqueCategories) >= c.Threshold
	case models.ConditionCategoryLevel:
		return int64(s.Categories.MaxLevel()) >= c.Threshold
	case models.ConditionDiverseCategories:
		return c.Count > 0 && s.Categories.CountAtLevel(c.Level) >= c.Count
	}
	return false
}
