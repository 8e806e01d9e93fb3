package db

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yomikata/yomikata-backend/internal/data/repos"
	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/platform/envutil"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type achievementCatalog struct {
	Achievements []catalogEntry `yaml:"achievements"`
}

type catalogEntry struct {
	Code         string `yaml:"code"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	CriteriaType string `yaml:"criteria_type"`
	Threshold    int64  `yaml:"threshold"`
	XPReward     int64  `yaml:"xp_reward"`
	Rarity       string `yaml:"rarity"`
	Hidden       bool   `yaml:"hidden"`
	Seasonal     bool   `yaml:"seasonal"`
}

// SeedAchievements loads the achievement catalog from disk and inserts any
// rows not already present. Re-running against a seeded database is a no-op,
// so it is safe to call on every boot.
func SeedAchievements(ctx context.Context, pg *PostgresService, achievementRepo repos.AchievementRepo, log *logger.Logger) error {
	path := envutil.GetEnv("ACHIEVEMENT_CATALOG_PATH", "configs/achievements.yaml", log)

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read achievement catalog %s: %w", path, err)
	}

	var catalog achievementCatalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("failed to parse achievement catalog %s: %w", path, err)
	}

	achievements := make([]*types.Achievement, 0, len(catalog.Achievements))
	for _, entry := range catalog.Achievements {
		if entry.Code == "" {
			return fmt.Errorf("achievement catalog entry missing code")
		}
		if !types.ValidCriteriaType(entry.CriteriaType) {
			return fmt.Errorf("achievement %q has unknown criteria type %q", entry.Code, entry.CriteriaType)
		}
		if entry.Threshold <= 0 {
			return fmt.Errorf("achievement %q has non-positive threshold %d", entry.Code, entry.Threshold)
		}
		rarity := entry.Rarity
		if rarity == "" {
			rarity = "common"
		}
		achievements = append(achievements, &types.Achievement{
			ID:           uuid.New(),
			Code:         entry.Code,
			Name:         entry.Name,
			Description:  entry.Description,
			CriteriaType: entry.CriteriaType,
			Threshold:    entry.Threshold,
			XPReward:     entry.XPReward,
			Rarity:       rarity,
			IsHidden:     entry.Hidden,
			IsSeasonal:   entry.Seasonal,
		})
	}

	if err := achievementRepo.CreateIgnoreDuplicates(ctx, pg.DB(), achievements); err != nil {
		return fmt.Errorf("failed to seed achievements: %w", err)
	}
	log.Info("Achievement catalog seeded", "count", len(achievements))
	return nil
}
