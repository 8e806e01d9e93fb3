package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/platform/envutil"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := envutil.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := envutil.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := envutil.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := envutil.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := envutil.GetEnv("POSTGRES_NAME", "yomikata", log)
	postgresSSLMode := envutil.GetEnv("POSTGRES_SSLMODE", "disable", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		postgresUser, postgresPassword, postgresHost, postgresPort, postgresName, postgresSSLMode)

	log.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},

		&types.Achievement{},
		&types.UserAchievement{},
		&types.TrustViolation{},

		&types.Series{},
		&types.LibraryEntry{},
		&types.Follow{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	for _, fk := range []struct {
		name string
		stmt string
	}{
		{"fk_user_achievement_user_id", `
			ALTER TABLE "user_achievement"
			ADD CONSTRAINT "fk_user_achievement_user_id"
			FOREIGN KEY ("user_id")
			REFERENCES "user"("id")
			ON DELETE CASCADE`},
		{"fk_user_achievement_achievement_id", `
			ALTER TABLE "user_achievement"
			ADD CONSTRAINT "fk_user_achievement_achievement_id"
			FOREIGN KEY ("achievement_id")
			REFERENCES "achievement"("id")
			ON DELETE CASCADE`},
		{"fk_trust_violation_user_id", `
			ALTER TABLE "trust_violation"
			ADD CONSTRAINT "fk_trust_violation_user_id"
			FOREIGN KEY ("user_id")
			REFERENCES "user"("id")
			ON DELETE CASCADE`},
		{"fk_library_entry_user_id", `
			ALTER TABLE "library_entry"
			ADD CONSTRAINT "fk_library_entry_user_id"
			FOREIGN KEY ("user_id")
			REFERENCES "user"("id")
			ON DELETE CASCADE`},
		{"fk_library_entry_series_id", `
			ALTER TABLE "library_entry"
			ADD CONSTRAINT "fk_library_entry_series_id"
			FOREIGN KEY ("series_id")
			REFERENCES "series"("id")
			ON DELETE CASCADE`},
		{"fk_follow_user_id", `
			ALTER TABLE "follow"
			ADD CONSTRAINT "fk_follow_user_id"
			FOREIGN KEY ("user_id")
			REFERENCES "user"("id")
			ON DELETE CASCADE`},
		{"fk_follow_series_id", `
			ALTER TABLE "follow"
			ADD CONSTRAINT "fk_follow_series_id"
			FOREIGN KEY ("series_id")
			REFERENCES "series"("id")
			ON DELETE CASCADE`},
	} {
		var exists bool
		if err := s.db.Raw(
			`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, fk.name,
		).Scan(&exists).Error; err != nil {
			return fmt.Errorf("failed to check constraint %s: %w", fk.name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(fk.stmt).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", fk.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
