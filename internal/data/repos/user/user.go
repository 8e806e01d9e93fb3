package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/gamify"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

// LeaderboardRow carries the raw columns the ranker weights and sorts.
// TrustScore never leaves the service layer.
type LeaderboardRow struct {
	ID            uuid.UUID
	Username      string
	XP            int64
	SeasonXP      int64
	ChaptersRead  int64
	StreakDays    int
	ActiveDays    int
	TrustScore    float64
	CurrentSeason string
	CreatedAt     time.Time
}

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error)
	GetByUsernames(ctx context.Context, tx *gorm.DB, usernames []string) ([]*types.User, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error)
	// GetByIDForUpdate locks the user row for the remainder of tx. Ledger
	// writes read-modify-write through this lock.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
	Save(ctx context.Context, tx *gorm.DB, user *types.User) error
	UpdateTrust(ctx context.Context, tx *gorm.DB, userID uuid.UUID, score float64, lastViolationAt time.Time) error
	// ListLeaderboardCandidates returns the top rows for a category ordered
	// by the trust-weighted metric, filtered to trust_score >= minTrust.
	// seasonCodes optionally restricts to users whose current_season is one
	// of the given (uppercased) spellings.
	ListLeaderboardCandidates(ctx context.Context, tx *gorm.DB, category string, seasonCodes []string, minTrust float64, limit int) ([]*LeaderboardRow, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(users) == 0 {
		return []*types.User{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userRepo) GetByUsernames(ctx context.Context, tx *gorm.DB, usernames []string) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.User
	if len(usernames) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("username IN ?", usernames).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userRepo) GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.User
	if len(userEmails) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("email IN ?", userEmails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.User
	if err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userRepo) Save(ctx context.Context, tx *gorm.DB, user *types.User) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("save user: missing id")
	}
	return transaction.WithContext(ctx).Save(user).Error
}

func (r *userRepo) UpdateTrust(ctx context.Context, tx *gorm.DB, userID uuid.UUID, score float64, lastViolationAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"trust_score":       score,
			"last_violation_at": lastViolationAt,
		}).Error
}

// effectiveTrustExpr mirrors gamify.ApplyDecay in SQL: the stored score
// plus passive recovery accrued since the last violation, capped at
// TrustMax. Stored scores only change on violations, so ranking has to
// account for recovery here.
var effectiveTrustExpr = fmt.Sprintf(
	"LEAST(%g, trust_score + GREATEST(COALESCE(EXTRACT(EPOCH FROM (now() - last_violation_at)), 0) / 86400.0, 0) * %g)",
	gamify.TrustMax, gamify.RecoveryRatePerDay,
)

// metricExprs maps leaderboard categories to the SQL ordering expression.
// XP-bearing categories weight by effective trust; streak and chapters rank
// on the raw counter. Values here are the only expressions ever
// interpolated into the query.
var metricExprs = map[string]string{
	"xp":         "xp * " + effectiveTrustExpr,
	"season":     "season_xp * " + effectiveTrustExpr,
	"efficiency": "(xp::float8 / GREATEST(active_days, 1)) * " + effectiveTrustExpr,
	"streak":     "streak_days",
	"chapters":   "chapters_read",
}

func (r *userRepo) ListLeaderboardCandidates(ctx context.Context, tx *gorm.DB, category string, seasonCodes []string, minTrust float64, limit int) ([]*LeaderboardRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	expr, ok := metricExprs[category]
	if !ok {
		return nil, fmt.Errorf("unknown leaderboard category %q", category)
	}
	if limit <= 0 {
		return []*LeaderboardRow{}, nil
	}

	q := transaction.WithContext(ctx).
		Model(&types.User{}).
		Select("id, username, xp, season_xp, chapters_read, streak_days, active_days, "+effectiveTrustExpr+" AS trust_score, current_season, created_at").
		Where(effectiveTrustExpr+" >= ?", minTrust)
	if len(seasonCodes) > 0 {
		q = q.Where("UPPER(current_season) IN ?", seasonCodes)
	}

	var rows []*LeaderboardRow
	if err := q.
		Order(expr + " DESC, created_at ASC, id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
