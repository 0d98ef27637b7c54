package models

import "fmt"

// ConditionKind tags which player stat an achievement condition reads.
type ConditionKind string

const (
	ConditionQuizzesCompleted  ConditionKind = "quizzes_completed"
	ConditionPerfectScore      ConditionKind = "perfect_score"
	ConditionPerfectScores     ConditionKind = "perfect_scores"
	ConditionStreakDays        ConditionKind = "streak_days"
	ConditionLevel             ConditionKind = "level"
	ConditionTimeUnder         ConditionKind = "time_under"
	ConditionUniqueCategories  ConditionKind = "unique_categories"
	ConditionCategoryLevel     ConditionKind = "category_level"
	ConditionDiverseCategories ConditionKind = "diverse_categories"
	ConditionUnknown           ConditionKind = "unknown"
	// ConditionNone marks a challenge without a requirement.
	ConditionNone              ConditionKind = "none"
)

// ConditionPriority is the order in which keys of a loosely shaped condition
// map are tried. The first key present decides the kind.
var ConditionPriority = []ConditionKind{
	ConditionQuizzesCompleted,
	ConditionPerfectScore,
	ConditionPerfectScores,
	ConditionStreakDays,
	ConditionLevel,
	ConditionTimeUnder,
	ConditionUniqueCategories,
	ConditionCategoryLevel,
	ConditionDiverseCategories,
}

// Condition is a single unlock rule. Threshold carries the payload of every
// kind except perfect_score (no payload) and diverse_categories (Count categories
// at Level or above).
type Condition struct {
	Kind      ConditionKind `json:"kind"`
	Threshold int64         `json:"threshold,omitempty"`
	Level     int           `json:"level,omitempty"`
	Count     int           `json:"count,omitempty"`
}

func QuizzesCompleted(n int64) Condition { return Condition{Kind: ConditionQuizzesCompleted, Threshold: n} }
func PerfectScore() Condition             { return Condition{Kind: ConditionPerfectScore} }
func PerfectScores(n int64) Condition     { return Condition{Kind: ConditionPerfectScores, Threshold: n} }
func StreakDays(n int64) Condition        { return Condition{Kind: ConditionStreakDays, Threshold: n} }
func LevelAtLeast(n int64) Condition      { return Condition{Kind: ConditionLevel, Threshold: n} }
func TimeUnder(seconds int64) Condition   { return Condition{Kind: ConditionTimeUnder, Threshold: seconds} }
func UniqueCategories(n int64) Condition  { return Condition{Kind: ConditionUniqueCategories, Threshold: n} }
func CategoryLevel(n int64) Condition     { return Condition{Kind: ConditionCategoryLevel, Threshold: n} }

func DiverseCategories(count, level int) Condition {
	return Condition{Kind: ConditionDiverseCategories, Count: count, Level: level}
}

func (c Condition) String() string {
	switch c.Kind {
	case ConditionPerfectScore, ConditionUnknown, ConditionNone:
		return string(c.Kind)
	case ConditionDiverseCategories:
		return fmt.Sprintf("%s(%d@%d)", c.Kind, c.Count, c.Level)
	}
	return fmt.Sprintf("%s(%d)", c.Kind, c.Threshold)
}

// ParseCondition converts a seed-style condition map such as
// {"quizzes_completed": 10} into a Condition. Keys are tried in
// ConditionPriority order and the first usable one wins; anything else
// yields ConditionUnknown, which never unlocks.
func ParseCondition(raw map[string]any) Condition {
	for _, kind := range ConditionPriority {
		v, ok := raw[string(kind)]
		if !ok {
			continue
		}
		switch kind {
		case ConditionPerfectScore:
			if b, ok := v.(bool); ok && b {
				return PerfectScore()
			}
		case ConditionDiverseCategories:
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			count, okCount := toInt64(m["count"])
			level, okLevel := toInt64(m["level"])
			if okCount && okLevel {
				return DiverseCategories(int(count), int(level))
			}
		default:
			if n, ok := toInt64(v); ok {
				return Condition{Kind: kind, Threshold: n}
			}
		}
	}
	return Condition{Kind: ConditionUnknown}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
