package domain

import (
	"fmt"
	"strings"
)

// levelThresholds are the cumulative XP marks for levels 2..7. Past the
// table, every additional extrapolationStep XP is one more level.
var levelThresholds = []int{50, 150, 300, 500, 800, 1200}

const extrapolationStep = 500

// Badge tiers, checked highest first.
const (
	BadgeLegend       = "Legend"
	BadgeMaster       = "Master"
	BadgeExpert       = "Expert"
	BadgeIntermediate = "Intermediate"
	BadgeBeginner     = "Beginner"
)

// ComputeProgress derives (xp, level, totalCorrect, totalWrong) from the
// per-pool scores. A correct answer is worth 10 XP, a wrong one still
// earns 2 for participation.
func ComputeProgress(scoresByPool map[string]Score) (xp, level, totalCorrect, totalWrong int) {
	for _, s := range scoresByPool {
		totalCorrect += s.Correct
		totalWrong += s.Wrong
	}
	xp = totalCorrect*10 + totalWrong*2
	level = LevelForXP(xp)
	return xp, level, totalCorrect, totalWrong
}

// LevelForXP maps XP onto a level, starting at 1. Within the threshold
// table the level is one plus the number of thresholds cleared; beyond it
// the level keeps growing linearly so more XP never means a lower level.
func LevelForXP(xp int) int {
	last := levelThresholds[len(levelThresholds)-1]
	if xp >= last {
		return len(levelThresholds) + 1 + (xp-last)/extrapolationStep
	}
	level := 1
	for _, t := range levelThresholds {
		if xp >= t {
			level++
		}
	}
	return level
}

// Badge returns the skill tier for a total-correct count.
func Badge(totalCorrect int) string {
	switch {
	case totalCorrect >= 100:
		return BadgeLegend
	case totalCorrect >= 50:
		return BadgeMaster
	case totalCorrect >= 25:
		return BadgeExpert
	case totalCorrect >= 10:
		return BadgeIntermediate
	default:
		return BadgeBeginner
	}
}

// ProgressBar renders the XP position inside the current level as
// "[████░░░░] 2/100 XP (2%)" with width filled/empty slots.
func ProgressBar(xp, level, width int) string {
	var levelMin, nextLevelXP int
	if level-1 < len(levelThresholds) {
		if level > 1 {
			levelMin = levelThresholds[level-2]
		}
		nextLevelXP = levelThresholds[level-1]
	} else {
		last := levelThresholds[len(levelThresholds)-1]
		levelMin = last + (level-len(levelThresholds)-1)*extrapolationStep
		nextLevelXP = levelMin + extrapolationStep
	}

	progress := xp - levelMin
	required := nextLevelXP - levelMin
	filled := width * progress / required
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	percent := 100 * progress / required
	return fmt.Sprintf("[%s%s] %d/%d XP (%d%%)",
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled),
		progress, required, percent)
}
