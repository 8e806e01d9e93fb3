package user

import (
	"context"
	"testing"

	"github.com/yomikata/yomikata-backend/internal/data/repos/testutil"
)

func TestLeaderboardCandidatesTrustWeighting(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewUserRepo(db, testutil.Logger(t))

	a := testutil.SeedUser(t, ctx, tx, "lb-trusted")
	a.XP = 1000
	a.TrustScore = 1.0
	if err := repo.Save(ctx, tx, a); err != nil {
		t.Fatalf("save a: %v", err)
	}

	b := testutil.SeedUser(t, ctx, tx, "lb-penalized")
	b.XP = 1000
	b.TrustScore = 0.75
	if err := repo.Save(ctx, tx, b); err != nil {
		t.Fatalf("save b: %v", err)
	}

	c := testutil.SeedUser(t, ctx, tx, "lb-excluded")
	c.XP = 5000
	c.TrustScore = 0.5
	if err := repo.Save(ctx, tx, c); err != nil {
		t.Fatalf("save c: %v", err)
	}

	rows, err := repo.ListLeaderboardCandidates(ctx, tx, "xp", nil, 0.7, 10)
	if err != nil {
		t.Fatalf("ListLeaderboardCandidates: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 eligible rows, got %d", len(rows))
	}
	if rows[0].Username != "lb-trusted" || rows[1].Username != "lb-penalized" {
		t.Fatalf("trust weighting should rank equal raw XP by trust: got %q then %q", rows[0].Username, rows[1].Username)
	}
}

func TestLeaderboardCandidatesSeasonFilter(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewUserRepo(db, testutil.Logger(t))

	cur := testutil.SeedUser(t, ctx, tx, "lb-current")
	cur.SeasonXP = 50
	cur.CurrentSeason = "2026-Q3"
	if err := repo.Save(ctx, tx, cur); err != nil {
		t.Fatalf("save cur: %v", err)
	}

	legacy := testutil.SeedUser(t, ctx, tx, "lb-legacy")
	legacy.SeasonXP = 80
	legacy.CurrentSeason = "2026q3" // legacy spelling, still this season
	if err := repo.Save(ctx, tx, legacy); err != nil {
		t.Fatalf("save legacy: %v", err)
	}

	stale := testutil.SeedUser(t, ctx, tx, "lb-stale")
	stale.SeasonXP = 500
	stale.CurrentSeason = "2026-Q2"
	if err := repo.Save(ctx, tx, stale); err != nil {
		t.Fatalf("save stale: %v", err)
	}

	rows, err := repo.ListLeaderboardCandidates(ctx, tx, "season", []string{"2026-Q3", "2026Q3", "2026-3", "Q3-2026"}, 0.7, 10)
	if err != nil {
		t.Fatalf("ListLeaderboardCandidates: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows for the season, got %d", len(rows))
	}
	if rows[0].Username != "lb-legacy" {
		t.Fatalf("legacy season spelling should still rank, got %q first", rows[0].Username)
	}
}

func TestLeaderboardCandidatesUnknownCategory(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	if _, err := repo.ListLeaderboardCandidates(context.Background(), nil, "bogus", nil, 0.7, 10); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}
