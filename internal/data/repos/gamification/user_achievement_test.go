package gamification

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yomikata/yomikata-backend/internal/data/repos/testutil"
	types "github.com/yomikata/yomikata-backend/internal/domain"
)

func TestUserAchievementInsertDuplicateIsNoOp(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "ua-dup")
	a := testutil.SeedAchievement(t, ctx, tx, "first-steps", types.CriteriaChapterCount, 1, 10)

	repo := NewUserAchievementRepo(db, testutil.Logger(t))

	created, err := repo.Insert(ctx, tx, &types.UserAchievement{
		ID:            uuid.New(),
		UserID:        u.ID,
		AchievementID: a.ID,
	})
	if err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	if !created {
		t.Fatalf("first Insert: expected created=true")
	}

	created, err = repo.Insert(ctx, tx, &types.UserAchievement{
		ID:            uuid.New(),
		UserID:        u.ID,
		AchievementID: a.ID,
	})
	if err != nil {
		t.Fatalf("second Insert: unexpected error %v", err)
	}
	if created {
		t.Fatalf("second Insert: expected created=false (silent no-op)")
	}

	unlocked, err := repo.UnlockedSet(ctx, tx, u.ID, []uuid.UUID{a.ID})
	if err != nil {
		t.Fatalf("UnlockedSet: %v", err)
	}
	if !unlocked[a.ID] {
		t.Fatalf("UnlockedSet: expected achievement present")
	}
}

// The unique index is the concurrency primitive: N racing transactions
// produce exactly one unlock row.
func TestUserAchievementConcurrentInsert(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "ua-race")
	a := testutil.SeedAchievement(t, ctx, db, "race-cond", types.CriteriaChapterCount, 1, 25)
	t.Cleanup(func() {
		db.Where("user_id = ?", u.ID).Delete(&types.UserAchievement{})
		db.Unscoped().Where("id = ?", u.ID).Delete(&types.User{})
		db.Where("id = ?", a.ID).Delete(&types.Achievement{})
	})

	repo := NewUserAchievementRepo(db, testutil.Logger(t))

	const attempts = 4
	var wg sync.WaitGroup
	results := make([]bool, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = db.Transaction(func(tx *gorm.DB) error {
				created, err := repo.Insert(ctx, tx, &types.UserAchievement{
					ID:            uuid.New(),
					UserID:        u.ID,
					AchievementID: a.ID,
				})
				results[i] = created
				return err
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < attempts; i++ {
		if errs[i] != nil {
			t.Fatalf("attempt %d: %v", i, errs[i])
		}
		if results[i] {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winning insert, got %d", winners)
	}

	var count int64
	if err := db.Model(&types.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", u.ID, a.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 unlock row, got %d", count)
	}
}
