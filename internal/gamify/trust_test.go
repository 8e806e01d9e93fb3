package gamify

import (
	"math"
	"testing"
)

func TestClampTrust(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1.5, TrustMax},
		{1.0, 1.0},
		{0.73, 0.73},
		{0.5, 0.5},
		{0.3, TrustFloor},
		{-1, TrustFloor},
	}
	for _, tc := range cases {
		if got := ClampTrust(tc.in); got != tc.want {
			t.Errorf("ClampTrust(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestViolationPenalties(t *testing.T) {
	if p := ViolationPenalty("speed_read"); p != 0.02 {
		t.Errorf("speed_read penalty = %v, want 0.02", p)
	}
	if p := ViolationPenalty("bulk_speed_read"); p != 0.05 {
		t.Errorf("bulk_speed_read penalty = %v, want 0.05", p)
	}
	if p := ViolationPenalty("unknown_detector"); p != defaultViolationPenalty {
		t.Errorf("unknown penalty = %v, want default %v", p, defaultViolationPenalty)
	}
}

func TestPenaltiesNeverBreakFloor(t *testing.T) {
	score := TrustMax
	for i := 0; i < 100; i++ {
		score = ClampTrust(score - ViolationPenalty("bulk_speed_read"))
		if score < TrustFloor || score > TrustMax {
			t.Fatalf("score %v escaped [%v, %v] after %d violations", score, TrustFloor, TrustMax, i+1)
		}
	}
	if score != TrustFloor {
		t.Fatalf("sustained violations should pin score at the floor, got %v", score)
	}
}

func TestApplyDecay(t *testing.T) {
	if got := ApplyDecay(0.9, 2); math.Abs(got-0.94) > 1e-9 {
		t.Errorf("ApplyDecay(0.9, 2) = %v, want 0.94", got)
	}
	if got := ApplyDecay(0.98, 10); got != TrustMax {
		t.Errorf("ApplyDecay(0.98, 10) = %v, want capped at %v", got, TrustMax)
	}
	if got := ApplyDecay(0.8, -3); got != 0.8 {
		t.Errorf("ApplyDecay with negative elapsed = %v, want unchanged 0.8", got)
	}
	if got := ApplyDecay(TrustMax, 100); got != TrustMax {
		t.Errorf("ApplyDecay at max = %v, want %v", got, TrustMax)
	}
}

func TestDaysUntilFullTrust(t *testing.T) {
	if got := DaysUntilFullTrust(TrustMax); got != 0 {
		t.Errorf("DaysUntilFullTrust(max) = %d, want 0", got)
	}
	if got := DaysUntilFullTrust(0.9); got != 5 {
		t.Errorf("DaysUntilFullTrust(0.9) = %d, want 5", got)
	}
	// From the floor: (1.0-0.5)/0.02 = 25 days.
	if got := DaysUntilFullTrust(TrustFloor); got != 25 {
		t.Errorf("DaysUntilFullTrust(floor) = %d, want 25", got)
	}
}
