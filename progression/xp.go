// Package progression holds the pure level and streak arithmetic used by the
// services. Nothing in here touches storage.
package progression

// Base units for the two level tracks.
const (
	GlobalBaseXP   int64 = 1000
	CategoryBaseXP int64 = 500
)

// Result is the outcome of applying an XP delta to a (xp, level) pair.
type Result struct {
	XP           int64 `json:"xp"`
	Level        int   `json:"level"`
	LeveledUp    bool  `json:"leveled_up"`
	LevelsGained int   `json:"levels_gained"`
}

// Threshold returns the XP needed to leave the given level:
// base * (level * 0.5). Level 1 on the global track needs 500.
func Threshold(level int, base int64) int64 {
	if level < 1 {
		level = 1
	}
	return base * int64(level) / 2
}

// ApplyXP adds delta to xp and rolls over as many levels as the result pays for.
// Each level-up subtracts the threshold of the level being left, so the returned
// XP is always below Threshold(Level). Zero and negative deltas never enter the loop.
func ApplyXP(xp int64, level int, delta int64, base int64) Result {
	if level < 1 {
		level = 1
	}
	res := Result{XP: xp + delta, Level: level}
	if delta <= 0 {
		return res
	}

	for res.XP >= Threshold(res.Level, base) {
		res.XP -= Threshold(res.Level, base)
		res.Level++
		res.LevelsGained++
	}
	res.LeveledUp = res.LevelsGained > 0
	return res
}

// ProgressPercent reports how far xp sits between the previous and the current
// level threshold. The previous threshold is 0 on level 1, and a zero-width
// range reports 0.
func ProgressPercent(xp int64, level int, base int64) float64 {
	next := Threshold(level, base)
	var prev int64
	if level > 1 {
		prev = Threshold(level-1, base)
	}
	span := next - prev
	if span <= 0 {
		return 0
	}
	return float64(xp-prev) / float64(span) * 100
}
