package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	redisclient "github.com/yomikata/yomikata-backend/internal/clients/redis"
	"github.com/yomikata/yomikata-backend/internal/data/repos"
	"github.com/yomikata/yomikata-backend/internal/gamify"
	"github.com/yomikata/yomikata-backend/internal/pkg/errors"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

const (
	leaderboardDefaultLimit = 50
	leaderboardMaxLimit     = 100
	leaderboardCacheTTL     = 30 * time.Second
)

var leaderboardCategories = map[string]bool{
	"xp":         true,
	"season":     true,
	"efficiency": true,
	"streak":     true,
	"chapters":   true,
}

type LeaderboardQuery struct {
	Category string
	Period   string
	Season   string
	Limit    int
}

// RankedUser is a public row. Trust and effective scores shape the order
// but are deliberately absent from the type.
type RankedUser struct {
	Rank     int       `json:"rank"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Value    float64   `json:"value"`
}

type Leaderboard struct {
	Category string       `json:"category"`
	Period   string       `json:"period"`
	Season   string       `json:"season,omitempty"`
	Total    int          `json:"total"`
	Users    []RankedUser `json:"users"`
}

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, q LeaderboardQuery) (*Leaderboard, error)
}

type leaderboardService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	windows  redisclient.WindowStore
	flight   singleflight.Group
}

func NewLeaderboardService(log *logger.Logger, userRepo repos.UserRepo, windows redisclient.WindowStore) LeaderboardService {
	serviceLog := log.With("service", "LeaderboardService")
	return &leaderboardService{
		log:      serviceLog,
		userRepo: userRepo,
		windows:  windows,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, q LeaderboardQuery) (*Leaderboard, error) {
	if !leaderboardCategories[q.Category] {
		return nil, fmt.Errorf("unknown leaderboard category %q: %w", q.Category, errors.ErrInvalidArgument)
	}
	if q.Period == "" {
		q.Period = "all-time"
	}
	if q.Limit <= 0 {
		q.Limit = leaderboardDefaultLimit
	}
	if q.Limit > leaderboardMaxLimit {
		q.Limit = leaderboardMaxLimit
	}

	var seasonVariants []string
	if q.Category == "season" {
		season := q.Season
		if season == "" {
			season = gamify.SeasonCode(time.Now())
		}
		normalized, ok := gamify.NormalizeSeason(season)
		if !ok {
			return nil, fmt.Errorf("invalid season %q: %w", q.Season, errors.ErrInvalidArgument)
		}
		q.Season = normalized
		seasonVariants = gamify.SeasonVariants(normalized)
	} else {
		q.Season = ""
	}

	cacheKey := fmt.Sprintf("lb:%s:%s:%s:%d", q.Category, q.Period, q.Season, q.Limit)
	if raw, ok, err := s.windows.GetBytes(ctx, cacheKey); err != nil {
		s.log.Warn("Leaderboard cache read failed", "error", err)
	} else if ok {
		var cached Leaderboard
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		s.log.Warn("Leaderboard cache entry corrupt, recomputing", "key", cacheKey)
	}

	// Coalesce concurrent misses for the same key into one query.
	v, err, _ := s.flight.Do(cacheKey, func() (interface{}, error) {
		rows, err := s.userRepo.ListLeaderboardCandidates(ctx, nil, q.Category, seasonVariants, gamify.TrustScoreMinForLeaderboard, q.Limit)
		if err != nil {
			return nil, fmt.Errorf("leaderboard query: %w", err)
		}
		board := buildLeaderboard(q, rows)
		if raw, err := json.Marshal(board); err == nil {
			if err := s.windows.SetBytes(ctx, cacheKey, raw, leaderboardCacheTTL); err != nil {
				s.log.Warn("Leaderboard cache write failed", "error", err)
			}
		}
		return board, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Leaderboard), nil
}

// buildLeaderboard turns candidate rows into the public payload: weight,
// sort, dense-rank, strip. Pure so the ranking rules are unit-testable
// without a database.
func buildLeaderboard(q LeaderboardQuery, rows []*repos.LeaderboardRow) *Leaderboard {
	type scored struct {
		row       *repos.LeaderboardRow
		effective float64
		raw       float64
	}

	scoredRows := make([]scored, 0, len(rows))
	for _, row := range rows {
		raw, effective := metricValues(q.Category, row)
		scoredRows = append(scoredRows, scored{row: row, effective: effective, raw: raw})
	}

	sort.SliceStable(scoredRows, func(i, j int) bool {
		a, b := scoredRows[i], scoredRows[j]
		if a.effective != b.effective {
			return a.effective > b.effective
		}
		if !a.row.CreatedAt.Equal(b.row.CreatedAt) {
			return a.row.CreatedAt.Before(b.row.CreatedAt)
		}
		return a.row.ID.String() < b.row.ID.String()
	})

	users := make([]RankedUser, 0, len(scoredRows))
	rank := 0
	var prev float64
	for i, sr := range scoredRows {
		// Dense rank: ties share a rank, the next distinct value takes the
		// following integer.
		if i == 0 || sr.effective != prev {
			rank++
			prev = sr.effective
		}
		users = append(users, RankedUser{
			Rank:     rank,
			UserID:   sr.row.ID,
			Username: sr.row.Username,
			Value:    sr.raw,
		})
	}

	return &Leaderboard{
		Category: q.Category,
		Period:   q.Period,
		Season:   q.Season,
		Total:    len(users),
		Users:    users,
	}
}

// metricValues returns the public raw metric and the trust-weighted
// effective value used for ordering only.
func metricValues(category string, row *repos.LeaderboardRow) (raw, effective float64) {
	trust := gamify.ClampTrust(row.TrustScore)
	switch category {
	case "xp":
		raw = float64(row.XP)
		return raw, raw * trust
	case "season":
		raw = float64(row.SeasonXP)
		return raw, raw * trust
	case "efficiency":
		days := row.ActiveDays
		if days < 1 {
			days = 1
		}
		raw = float64(row.XP) / float64(days)
		return raw, raw * trust
	case "streak":
		raw = float64(row.StreakDays)
		return raw, raw
	case "chapters":
		raw = float64(row.ChaptersRead)
		return raw, raw
	default:
		return 0, 0
	}
}
