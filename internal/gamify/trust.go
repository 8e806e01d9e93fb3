package gamify

import "math"

const (
	// TrustFloor keeps flagged accounts at minimal participation instead of
	// locking them out; false positives stay recoverable.
	TrustFloor = 0.5
	TrustMax   = 1.0

	// RecoveryRatePerDay is the passive trust recovery for users who stop
	// triggering violations.
	RecoveryRatePerDay = 0.02

	// TrustScoreMinForLeaderboard excludes the most-penalized accounts from
	// ranking visibility entirely. Above the absolute floor on purpose.
	TrustScoreMinForLeaderboard = 0.7
)

const defaultViolationPenalty = 0.02

// violationPenalties maps violation types to trust-score deductions.
var violationPenalties = map[string]float64{
	"speed_read":           0.02,
	"bulk_speed_read":      0.05,
	"rapid_completion":     0.05,
	"duplicate_submission": 0.03,
}

// ViolationPenalty returns the trust deduction for a violation type.
// Unknown types cost the minimum penalty so a new detector can ship before
// its tuning does.
func ViolationPenalty(violationType string) float64 {
	if p, ok := violationPenalties[violationType]; ok {
		return p
	}
	return defaultViolationPenalty
}

// ClampTrust bounds a score to [TrustFloor, TrustMax].
func ClampTrust(score float64) float64 {
	if score < TrustFloor {
		return TrustFloor
	}
	if score > TrustMax {
		return TrustMax
	}
	return score
}

// ApplyDecay returns the score after daysElapsed of passive recovery,
// capped at TrustMax. Negative elapsed time recovers nothing.
func ApplyDecay(score float64, daysElapsed float64) float64 {
	if daysElapsed < 0 {
		daysElapsed = 0
	}
	return ClampTrust(score + daysElapsed*RecoveryRatePerDay)
}

// DaysUntilFullTrust projects how many whole days of clean behavior are
// needed to recover to TrustMax at the passive rate.
func DaysUntilFullTrust(score float64) int {
	if score >= TrustMax {
		return 0
	}
	return int(math.Ceil((TrustMax - score) / RecoveryRatePerDay))
}
