package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/yomikata/yomikata-backend/internal/clients/redis"
	"github.com/yomikata/yomikata-backend/internal/data/repos"
	"github.com/yomikata/yomikata-backend/internal/data/repos/testutil"
	types "github.com/yomikata/yomikata-backend/internal/domain"
)

type harness struct {
	db           *gorm.DB
	userRepo     repos.UserRepo
	violations   repos.TrustViolationRepo
	achievements AchievementService
	trust        TrustService
	progress     ProgressService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(db, log)
	achievementRepo := repos.NewAchievementRepo(db, log)
	userAchievementRepo := repos.NewUserAchievementRepo(db, log)
	violationRepo := repos.NewTrustViolationRepo(db, log)
	seriesRepo := repos.NewSeriesRepo(db, log)
	libraryEntryRepo := repos.NewLibraryEntryRepo(db, log)
	followRepo := repos.NewFollowRepo(db, log)

	achievementService := NewAchievementService(db, log, userRepo, achievementRepo, userAchievementRepo, libraryEntryRepo, followRepo)
	trustService := NewTrustService(db, log, userRepo, violationRepo)
	abuseService := NewAbuseService(log, redisclient.NewMemoryWindowStore())
	progressService := NewProgressService(db, log, userRepo, seriesRepo, libraryEntryRepo, followRepo, achievementService, trustService, abuseService)

	return &harness{
		db:           db,
		userRepo:     userRepo,
		violations:   violationRepo,
		achievements: achievementService,
		trust:        trustService,
		progress:     progressService,
	}
}

func (h *harness) cleanupUser(t *testing.T, u *types.User) {
	t.Cleanup(func() {
		h.db.Where("user_id = ?", u.ID).Delete(&types.TrustViolation{})
		h.db.Where("user_id = ?", u.ID).Delete(&types.UserAchievement{})
		h.db.Where("user_id = ?", u.ID).Delete(&types.LibraryEntry{})
		h.db.Where("user_id = ?", u.ID).Delete(&types.Follow{})
		h.db.Unscoped().Where("id = ?", u.ID).Delete(&types.User{})
	})
}

func (h *harness) cleanupSeries(t *testing.T, s *types.Series) {
	t.Cleanup(func() {
		h.db.Where("id = ?", s.ID).Delete(&types.Series{})
	})
}

func (h *harness) cleanupAchievement(t *testing.T, a *types.Achievement) {
	t.Cleanup(func() {
		h.db.Where("achievement_id = ?", a.ID).Delete(&types.UserAchievement{})
		h.db.Where("id = ?", a.ID).Delete(&types.Achievement{})
	})
}

func (h *harness) loadUser(t *testing.T, id uuid.UUID) *types.User {
	t.Helper()
	users, err := h.userRepo.GetByIDs(context.Background(), nil, []uuid.UUID{id})
	if err != nil || len(users) == 0 {
		t.Fatalf("reload user: %v", err)
	}
	return users[0]
}

func hasUnlock(unlocks []UnlockedAchievement, code string) bool {
	for _, u := range unlocks {
		if u.Code == code {
			return true
		}
	}
	return false
}

func TestRecordChapterReadGrantsAndUnlocksOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, h.db, "pg-read-once")
	h.cleanupUser(t, u)
	s := testutil.SeedSeries(t, ctx, h.db, "One Chapter Wonder", 100)
	h.cleanupSeries(t, s)
	a := testutil.SeedAchievement(t, ctx, h.db, "pg-first-read", types.CriteriaChapterCount, 1, 10)
	h.cleanupAchievement(t, a)

	res, err := h.progress.RecordChapterRead(ctx, u.ID, ChapterReadInput{
		SeriesID: s.ID, Chapter: 1, SecondsSpent: 120, PageCount: 20,
	})
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if res.XPGranted < 11 {
		t.Fatalf("first read should grant chapter XP plus the unlock reward, got %d", res.XPGranted)
	}
	if !hasUnlock(res.NewAchievements, "pg-first-read") {
		t.Fatalf("first read should unlock pg-first-read: %+v", res.NewAchievements)
	}
	if res.ChaptersRead != 1 || res.StreakDays != 1 {
		t.Fatalf("counters not updated: %+v", res)
	}

	res, err = h.progress.RecordChapterRead(ctx, u.ID, ChapterReadInput{
		SeriesID: s.ID, Chapter: 2, SecondsSpent: 120, PageCount: 20,
	})
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if hasUnlock(res.NewAchievements, "pg-first-read") {
		t.Fatalf("second read must not re-unlock: %+v", res.NewAchievements)
	}
	if len(res.NewAchievements) == 0 && res.XPGranted != 1 {
		t.Fatalf("second read should grant exactly the chapter XP, got %d", res.XPGranted)
	}
}

func TestAchievementThresholdCrossing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, h.db, "pg-threshold")
	h.cleanupUser(t, u)
	s := testutil.SeedSeries(t, ctx, h.db, "Slow Burn", 50)
	h.cleanupSeries(t, s)
	a := testutil.SeedAchievement(t, ctx, h.db, "pg-ten-chapters", types.CriteriaChapterCount, 10, 25)
	h.cleanupAchievement(t, a)

	u.ChaptersRead = 7
	if err := h.userRepo.Save(ctx, nil, u); err != nil {
		t.Fatalf("prime chapters_read: %v", err)
	}

	for i := 1; i <= 3; i++ {
		res, err := h.progress.RecordChapterRead(ctx, u.ID, ChapterReadInput{
			SeriesID: s.ID, Chapter: float64(i), SecondsSpent: 120, PageCount: 20,
		})
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		crossed := hasUnlock(res.NewAchievements, "pg-ten-chapters")
		if i < 3 && crossed {
			t.Fatalf("read %d (chapters_read=%d) unlocked early", i, res.ChaptersRead)
		}
		if i == 3 {
			if !crossed {
				t.Fatalf("read 3 (chapters_read=%d) should cross the threshold", res.ChaptersRead)
			}
			if res.ChaptersRead != 10 {
				t.Fatalf("expected chapters_read=10, got %d", res.ChaptersRead)
			}
		}
	}
}

func TestFastReadsPenalizeTrustButGrantXP(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, h.db, "pg-speedster")
	h.cleanupUser(t, u)
	s := testutil.SeedSeries(t, ctx, h.db, "Blitz", 50)
	h.cleanupSeries(t, s)

	prevTrust := 1.0
	for i := 1; i <= 3; i++ {
		res, err := h.progress.RecordChapterRead(ctx, u.ID, ChapterReadInput{
			SeriesID: s.ID, Chapter: float64(i), SecondsSpent: 2, PageCount: 20,
		})
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if res.XPGranted < 1 {
			t.Fatalf("read %d: soft tier must never block XP, granted=%d", i, res.XPGranted)
		}
		cur := h.loadUser(t, u.ID)
		if cur.TrustScore >= prevTrust {
			t.Fatalf("read %d: trust should strictly decrease, was %g now %g", i, prevTrust, cur.TrustScore)
		}
		prevTrust = cur.TrustScore
	}

	status, err := h.trust.GetTrustStatus(ctx, u.ID)
	if err != nil {
		t.Fatalf("trust status: %v", err)
	}
	if status.RecentViolationCount < 3 {
		t.Fatalf("expected at least 3 recent violations, got %d", status.RecentViolationCount)
	}
	if status.DaysUntilRecovery <= 0 {
		t.Fatalf("penalized user should have a recovery projection, got %d", status.DaysUntilRecovery)
	}
}

func TestChapterJumpIsExemptAndClean(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, h.db, "pg-backfill")
	h.cleanupUser(t, u)
	s := testutil.SeedSeries(t, ctx, h.db, "Caught Up", 60)
	h.cleanupSeries(t, s)

	res, err := h.progress.RecordChapterRead(ctx, u.ID, ChapterReadInput{
		SeriesID: s.ID, Chapter: 50, SecondsSpent: 1, PageCount: 20,
	})
	if err != nil {
		t.Fatalf("backfill read: %v", err)
	}
	if res.XPGranted < 1 {
		t.Fatalf("backfill read still earns XP, got %d", res.XPGranted)
	}

	cur := h.loadUser(t, u.ID)
	if cur.TrustScore != 1.0 {
		t.Fatalf("jump > 2 must not touch trust, got %g", cur.TrustScore)
	}
	violations, err := h.violations.ListByUserID(ctx, nil, u.ID, 10)
	if err != nil {
		t.Fatalf("list violations: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("jump > 2 must record no violations, got %d", len(violations))
	}
}

func TestCompleteSeriesIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, h.db, "pg-finisher")
	h.cleanupUser(t, u)
	s := testutil.SeedSeries(t, ctx, h.db, "Finished Tale", 5)
	h.cleanupSeries(t, s)
	a := testutil.SeedAchievement(t, ctx, h.db, "pg-first-finish", types.CriteriaCompletedCount, 1, 50)
	h.cleanupAchievement(t, a)

	if _, err := h.progress.AddToLibrary(ctx, u.ID, s.ID, types.StatusReading); err != nil {
		t.Fatalf("add to library: %v", err)
	}

	before := h.loadUser(t, u.ID)
	res, err := h.progress.CompleteSeries(ctx, u.ID, s.ID)
	if err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if res.XPGranted != 150 {
		t.Fatalf("first completion should grant 100 + 50 reward, got %d", res.XPGranted)
	}
	if !hasUnlock(res.NewAchievements, "pg-first-finish") {
		t.Fatalf("first completion should unlock pg-first-finish: %+v", res.NewAchievements)
	}
	if res.XP != before.XP+150 {
		t.Fatalf("xp ledger off: before=%d after=%d", before.XP, res.XP)
	}

	res, err = h.progress.CompleteSeries(ctx, u.ID, s.ID)
	if err != nil {
		t.Fatalf("repeat completion: %v", err)
	}
	if res.XPGranted != 0 || len(res.NewAchievements) != 0 {
		t.Fatalf("repeat completion must grant nothing, got %+v", res)
	}
}

func TestCheckAchievementsRepeatStable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, h.db, "pg-repeat")
	h.cleanupUser(t, u)
	a := testutil.SeedAchievement(t, ctx, h.db, "pg-repeat-5", types.CriteriaChapterCount, 5, 40)
	h.cleanupAchievement(t, a)

	u.ChaptersRead = 8
	if err := h.userRepo.Save(ctx, nil, u); err != nil {
		t.Fatalf("prime chapters_read: %v", err)
	}

	unlockedTimes := 0
	for i := 0; i < 5; i++ {
		err := h.db.Transaction(func(tx *gorm.DB) error {
			unlocks, err := h.achievements.CheckAchievements(ctx, tx, u.ID, types.TriggerChapterRead)
			if err != nil {
				return err
			}
			if hasUnlock(unlocks, "pg-repeat-5") {
				unlockedTimes++
			}
			return nil
		})
		if err != nil {
			t.Fatalf("check %d: %v", i+1, err)
		}
	}
	if unlockedTimes != 1 {
		t.Fatalf("achievement unlocked %d times across 5 checks", unlockedTimes)
	}

	var count int64
	if err := h.db.Model(&types.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", u.ID, a.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count unlocks: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unlock row, got %d", count)
	}
}

func TestConcurrentCheckAchievementsSingleReward(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, h.db, "pg-race")
	h.cleanupUser(t, u)
	a := testutil.SeedAchievement(t, ctx, h.db, "pg-race-3", types.CriteriaChapterCount, 3, 60)
	h.cleanupAchievement(t, a)

	u.ChaptersRead = 5
	if err := h.userRepo.Save(ctx, nil, u); err != nil {
		t.Fatalf("prime chapters_read: %v", err)
	}
	before := h.loadUser(t, u.ID)

	var wg sync.WaitGroup
	wins := make([]bool, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = h.db.Transaction(func(tx *gorm.DB) error {
				unlocks, err := h.achievements.CheckAchievements(ctx, tx, u.ID, types.TriggerChapterRead)
				if err != nil {
					return err
				}
				wins[i] = hasUnlock(unlocks, "pg-race-3")
				return nil
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}
		if wins[i] {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning unlock, got %d", winners)
	}

	after := h.loadUser(t, u.ID)
	if after.XP < before.XP+60 {
		t.Fatalf("reward missing: before=%d after=%d", before.XP, after.XP)
	}
	var count int64
	if err := h.db.Model(&types.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", u.ID, a.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count unlocks: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 unlock row, got %d", count)
	}
}

func TestAddToLibraryTwiceIsNoOp(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, h.db, "pg-readd")
	h.cleanupUser(t, u)
	s := testutil.SeedSeries(t, ctx, h.db, "Shelf Regular", 30)
	h.cleanupSeries(t, s)
	a := testutil.SeedAchievement(t, ctx, h.db, "pg-first-shelf", types.CriteriaLibraryCount, 1, 40)
	h.cleanupAchievement(t, a)

	res, err := h.progress.AddToLibrary(ctx, u.ID, s.ID, types.StatusReading)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if !hasUnlock(res.NewAchievements, "pg-first-shelf") {
		t.Fatalf("first add should unlock pg-first-shelf: %+v", res.NewAchievements)
	}

	before := h.loadUser(t, u.ID)
	res, err = h.progress.AddToLibrary(ctx, u.ID, s.ID, types.StatusPlanToRead)
	if err != nil {
		t.Fatalf("re-adding an owned series must be a no-op, got %v", err)
	}
	if res.XPGranted != 0 || len(res.NewAchievements) != 0 {
		t.Fatalf("re-add must grant nothing, got %+v", res)
	}
	if res.XP != before.XP {
		t.Fatalf("re-add changed xp: before=%d after=%d", before.XP, res.XP)
	}

	var count int64
	if err := h.db.Model(&types.LibraryEntry{}).
		Where("user_id = ? AND series_id = ?", u.ID, s.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single entry, got %d", count)
	}
	var entry types.LibraryEntry
	if err := h.db.Where("user_id = ? AND series_id = ?", u.ID, s.ID).First(&entry).Error; err != nil {
		t.Fatalf("reload entry: %v", err)
	}
	if entry.Status != types.StatusReading {
		t.Fatalf("re-add must not touch the existing entry, status=%q", entry.Status)
	}
}

func TestFollowSeriesTwiceIsNoOp(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, h.db, "pg-refollow")
	h.cleanupUser(t, u)
	s := testutil.SeedSeries(t, ctx, h.db, "Weekly Favorite", 12)
	h.cleanupSeries(t, s)
	a := testutil.SeedAchievement(t, ctx, h.db, "pg-first-follow", types.CriteriaFollowCount, 1, 30)
	h.cleanupAchievement(t, a)

	res, err := h.progress.FollowSeries(ctx, u.ID, s.ID)
	if err != nil {
		t.Fatalf("first follow: %v", err)
	}
	if !hasUnlock(res.NewAchievements, "pg-first-follow") {
		t.Fatalf("first follow should unlock pg-first-follow: %+v", res.NewAchievements)
	}

	before := h.loadUser(t, u.ID)
	res, err = h.progress.FollowSeries(ctx, u.ID, s.ID)
	if err != nil {
		t.Fatalf("following twice must be a no-op, got %v", err)
	}
	if res.XPGranted != 0 || len(res.NewAchievements) != 0 {
		t.Fatalf("repeat follow must grant nothing, got %+v", res)
	}
	if res.XP != before.XP {
		t.Fatalf("repeat follow changed xp: before=%d after=%d", before.XP, res.XP)
	}

	var count int64
	if err := h.db.Model(&types.Follow{}).
		Where("user_id = ? AND series_id = ?", u.ID, s.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count follows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single follow row, got %d", count)
	}
}
