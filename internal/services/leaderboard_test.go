package services

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yomikata/yomikata-backend/internal/data/repos"
)

func lbRow(username string, xp int64, trust float64, createdAt time.Time) *repos.LeaderboardRow {
	return &repos.LeaderboardRow{
		ID:         uuid.New(),
		Username:   username,
		XP:         xp,
		SeasonXP:   xp / 2,
		TrustScore: trust,
		ActiveDays: 10,
		CreatedAt:  createdAt,
	}
}

func TestBuildLeaderboardTrustWeighting(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []*repos.LeaderboardRow{
		lbRow("halved", 1000, 0.5, base),
		lbRow("full", 1000, 1.0, base),
	}

	board := buildLeaderboard(LeaderboardQuery{Category: "xp", Period: "all-time"}, rows)
	if board.Users[0].Username != "full" {
		t.Fatalf("full-trust user must outrank the penalized one at equal raw XP, got %q first", board.Users[0].Username)
	}
	// The payload carries the raw metric, never the weighted one.
	if board.Users[0].Value != 1000 || board.Users[1].Value != 1000 {
		t.Fatalf("payload must show raw XP: %+v", board.Users)
	}
}

func TestBuildLeaderboardPayloadHasNoTrustFields(t *testing.T) {
	rows := []*repos.LeaderboardRow{lbRow("a", 100, 0.8, time.Now())}
	board := buildLeaderboard(LeaderboardQuery{Category: "xp", Period: "all-time"}, rows)

	raw, err := json.Marshal(board)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	payload := strings.ToLower(string(raw))
	for _, forbidden := range []string{"trust", "effective"} {
		if strings.Contains(payload, forbidden) {
			t.Fatalf("payload leaks %q: %s", forbidden, payload)
		}
	}
}

func TestBuildLeaderboardDenseRankWithTies(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []*repos.LeaderboardRow{
		lbRow("first", 1000, 1.0, base),
		lbRow("tied-older", 500, 1.0, base),
		lbRow("tied-newer", 500, 1.0, base.Add(time.Hour)),
		lbRow("third", 100, 1.0, base),
	}

	board := buildLeaderboard(LeaderboardQuery{Category: "xp", Period: "all-time"}, rows)

	ranks := make(map[string]int, len(board.Users))
	for _, u := range board.Users {
		ranks[u.Username] = u.Rank
	}
	if ranks["first"] != 1 || ranks["tied-older"] != 2 || ranks["tied-newer"] != 2 || ranks["third"] != 3 {
		t.Fatalf("dense rank mismatch: %v", ranks)
	}
	// Within a tie, earlier account creation orders first.
	if board.Users[1].Username != "tied-older" || board.Users[2].Username != "tied-newer" {
		t.Fatalf("tie-break by created_at violated: %+v", board.Users)
	}
}

func TestBuildLeaderboardEfficiencyNormalizes(t *testing.T) {
	base := time.Now()
	grinder := lbRow("grinder", 1000, 1.0, base)
	grinder.ActiveDays = 100
	sprinter := lbRow("sprinter", 500, 1.0, base)
	sprinter.ActiveDays = 10

	board := buildLeaderboard(LeaderboardQuery{Category: "efficiency", Period: "all-time"},
		[]*repos.LeaderboardRow{grinder, sprinter})

	// 500/10 = 50 xp/day beats 1000/100 = 10 xp/day.
	if board.Users[0].Username != "sprinter" {
		t.Fatalf("efficiency must normalize by active days, got %q first", board.Users[0].Username)
	}
	if board.Users[0].Value != 50 {
		t.Fatalf("expected raw efficiency 50, got %g", board.Users[0].Value)
	}
}

func TestBuildLeaderboardStreakIgnoresTrustWeight(t *testing.T) {
	base := time.Now()
	a := lbRow("steady", 0, 0.75, base)
	a.StreakDays = 30
	b := lbRow("spotty", 0, 1.0, base)
	b.StreakDays = 10

	board := buildLeaderboard(LeaderboardQuery{Category: "streak", Period: "all-time"},
		[]*repos.LeaderboardRow{a, b})
	if board.Users[0].Username != "steady" {
		t.Fatalf("streak ranks on the raw counter, got %q first", board.Users[0].Username)
	}
}
