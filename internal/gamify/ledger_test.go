package gamify

import (
	"math"
	"testing"
)

func TestAddXPClamps(t *testing.T) {
	cases := []struct {
		name    string
		current int64
		delta   int64
		want    int64
	}{
		{"simple add", 10, 5, 15},
		{"zero delta", 10, 0, 10},
		{"saturates at ceiling", MaxXP - 5, 100, MaxXP},
		{"exact ceiling", MaxXP - 100, 100, MaxXP},
		{"never below zero", 10, -100, 0},
		{"negative current recovers to zero", -50, 10, 0},
		{"at ceiling stays", MaxXP, 1, MaxXP},
	}
	for _, tc := range cases {
		if got := AddXP(tc.current, tc.delta); got != tc.want {
			t.Errorf("%s: AddXP(%d, %d) = %d, want %d", tc.name, tc.current, tc.delta, got, tc.want)
		}
	}
}

func TestCalculateLevelBasics(t *testing.T) {
	if got := CalculateLevel(0); got != 1 {
		t.Fatalf("CalculateLevel(0) = %d, want 1", got)
	}
	if got := CalculateLevel(-10); got != 1 {
		t.Fatalf("CalculateLevel(-10) = %d, want 1", got)
	}
	if got := CalculateLevel(99); got != 1 {
		t.Fatalf("CalculateLevel(99) = %d, want 1", got)
	}
	if got := CalculateLevel(100); got != 2 {
		t.Fatalf("CalculateLevel(100) = %d, want 2", got)
	}
}

func TestLevelBoundariesAreExactInverses(t *testing.T) {
	for level := 1; level <= 50; level++ {
		boundary := XPForLevel(level)
		if got := CalculateLevel(boundary); got != level {
			t.Errorf("CalculateLevel(XPForLevel(%d)=%d) = %d, want %d", level, boundary, got, level)
		}
		if level >= 2 {
			if got := CalculateLevel(boundary - 1); got != level-1 {
				t.Errorf("CalculateLevel(XPForLevel(%d)-1) = %d, want %d", level, got, level-1)
			}
		}
	}
}

func TestLevelProgress(t *testing.T) {
	for level := 1; level <= 50; level++ {
		boundary := XPForLevel(level)
		if got := LevelProgress(boundary); got != 0 {
			t.Errorf("LevelProgress at level %d boundary = %v, want 0", level, got)
		}
	}

	// One XP short of a boundary approaches 1 as levels grow.
	prev := 0.0
	for _, level := range []int{2, 5, 10, 25, 50} {
		got := LevelProgress(XPForLevel(level) - 1)
		if got < prev {
			t.Errorf("LevelProgress before level %d = %v, expected monotonic approach to 1 (prev %v)", level, got, prev)
		}
		if got >= 1 {
			t.Errorf("LevelProgress before level %d = %v, must stay below 1", level, got)
		}
		prev = got
	}
	if prev < 0.95 {
		t.Errorf("LevelProgress just below level 50 = %v, expected close to 1", prev)
	}

	// Midpoint of level 1 is halfway.
	if got := LevelProgress(50); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("LevelProgress(50) = %v, want 0.5", got)
	}
}

func TestLevelProgressNegativeXP(t *testing.T) {
	if got := LevelProgress(-1); got != 0 {
		t.Fatalf("LevelProgress(-1) = %v, want 0", got)
	}
}
