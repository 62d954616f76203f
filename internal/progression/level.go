package progression

import "math"

// XPForNextLevel is the XP needed to go from level to level+1.
func XPForNextLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(math.Floor(100 * math.Pow(float64(level), 1.2)))
}

// LevelForXP walks the curve from level 1. It is the only place a level is
// derived from XP, so the stored level always equals LevelForXP(xp).
func LevelForXP(xp int64) int {
	level := 1
	for need := XPForNextLevel(level); xp >= need; need = XPForNextLevel(level) {
		xp -= need
		level++
	}
	return level
}

type LevelProgress struct {
	Level     int   `json:"level"`
	IntoLevel int64 `json:"into_level"`
	ForNext   int64 `json:"for_next"`
}

func Progress(xp int64) LevelProgress {
	level := 1
	need := XPForNextLevel(level)
	for xp >= need {
		xp -= need
		level++
		need = XPForNextLevel(level)
	}
	return LevelProgress{Level: level, IntoLevel: xp, ForNext: need}
}
