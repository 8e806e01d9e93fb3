package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yomikata/yomikata-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:            uuid.New(),
		Username:      username,
		Email:         fmt.Sprintf("%s@example.com", username),
		Password:      "pw",
		TrustScore:    1.0,
		Level:         1,
		CurrentSeason: "2026-Q3",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSeries(tb testing.TB, ctx context.Context, tx *gorm.DB, title string, totalChapters int) *types.Series {
	tb.Helper()
	s := &types.Series{
		ID:            uuid.New(),
		Title:         title,
		TotalChapters: totalChapters,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed series: %v", err)
	}
	return s
}

func SeedAchievement(tb testing.TB, ctx context.Context, tx *gorm.DB, code, criteriaType string, threshold, xpReward int64) *types.Achievement {
	tb.Helper()
	a := &types.Achievement{
		ID:           uuid.New(),
		Code:         code,
		Name:         code,
		CriteriaType: criteriaType,
		Threshold:    threshold,
		XPReward:     xpReward,
		Rarity:       "common",
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed achievement: %v", err)
	}
	return a
}

func SeedLibraryEntry(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, seriesID uuid.UUID, status string) *types.LibraryEntry {
	tb.Helper()
	e := &types.LibraryEntry{
		ID:       uuid.New(),
		UserID:   userID,
		SeriesID: seriesID,
		Status:   status,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed library entry: %v", err)
	}
	return e
}
