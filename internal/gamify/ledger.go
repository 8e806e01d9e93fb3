// Package gamify holds the pure arithmetic of the gamification engine:
// the XP ledger, the trust-score curve, and season codes. Nothing in this
// package performs I/O.
package gamify

import "math"

const (
	// MaxXP is a hard ceiling; additions beyond it saturate rather than
	// overflow or wrap.
	MaxXP int64 = 999_999_999

	// Fixed emission table. XPPerChapterRead deliberately does not scale
	// with input size; a bulk import of 500 chapters is worth 500 distinct
	// reads, not a multiplied grant.
	XPPerChapterRead  int64 = 1
	XPSeriesCompleted int64 = 100
)

// AddXP returns current+delta clamped to [0, MaxXP].
func AddXP(current, delta int64) int64 {
	sum := current + delta
	if sum < 0 {
		return 0
	}
	if sum > MaxXP {
		return MaxXP
	}
	return sum
}

// CalculateLevel derives a level from lifetime XP using
// floor(sqrt(xp/100)) + 1. Negative XP is treated as 0.
func CalculateLevel(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	lvl := int(math.Sqrt(float64(xp)/100.0)) + 1
	// Settle float rounding at exact boundaries so that
	// CalculateLevel(XPForLevel(L)) == L holds for every L.
	for XPForLevel(lvl+1) <= xp {
		lvl++
	}
	for lvl > 1 && XPForLevel(lvl) > xp {
		lvl--
	}
	return lvl
}

// XPForLevel is the exact inverse boundary of CalculateLevel: the minimum
// lifetime XP at which a user holds the given level.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return 100 * n * n
}

// LevelProgress reports how far into the current level the given XP sits,
// in [0, 1). It is exactly 0 the instant XP crosses a level boundary.
func LevelProgress(xp int64) float64 {
	if xp < 0 {
		xp = 0
	}
	lvl := CalculateLevel(xp)
	lo := XPForLevel(lvl)
	hi := XPForLevel(lvl + 1)
	if hi <= lo {
		return 0
	}
	return float64(xp-lo) / float64(hi-lo)
}
