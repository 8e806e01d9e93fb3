package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/yomikata/yomikata-backend/internal/clients/redis"
	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

const (
	// Soft-tier read-pace floor: secondsPerPage per page with a hard
	// minimum, pages defaulted when the client sends nothing usable.
	defaultPageCount = 18
	secondsPerPage   = 3
	minFloorSeconds  = 15

	// Chapter jumps beyond this are backfill (marking history as read),
	// exempt from pace evaluation entirely.
	softJumpExempt = 2.0

	suspiciousReadWindow = 5 * time.Minute
	bulkReadThreshold    = 3

	// Hard tier.
	duplicateWindow    = 10 * time.Minute
	duplicateThreshold = 3
	hardJumpCeiling    = 100.0
	toggleWindow       = 10 * time.Minute
	toggleThreshold    = 5

	// A completion this soon after the entry was created cannot be an
	// organic read of a series this long.
	rapidCompletionWindow     = 10 * time.Minute
	rapidCompletionMinChapter = 10
)

const (
	BotPatternDuplicateSubmission = "duplicate_submission"
	BotPatternChapterJump         = "excessive_chapter_jump"
	BotPatternStatusToggleBurst   = "status_toggle_burst"
)

// ReadEvent is the abuse-relevant slice of a chapter-read request.
type ReadEvent struct {
	UserID       uuid.UUID
	SeriesID     uuid.UUID
	Chapter      float64
	PrevChapter  float64
	SecondsSpent int
	PageCount    int
}

// ReadTimeVerdict is the soft-tier outcome. Suspicious reads cost trust,
// never XP.
type ReadTimeVerdict struct {
	IsSuspicious  bool
	ViolationType string
	FloorSeconds  int
}

// BotVerdict is the hard-tier outcome. A bot verdict gates the XP portion
// of the triggering request only; it is never a ledger effect.
type BotVerdict struct {
	IsBot   bool
	Pattern string
}

type AbuseService interface {
	// ValidateReadTime runs the soft read-pace heuristic. Malformed input
	// and window-store failures fail open.
	ValidateReadTime(ctx context.Context, ev ReadEvent) ReadTimeVerdict
	// DetectBotPatterns runs the hard-tier detectors for a read submission.
	DetectBotPatterns(ctx context.Context, ev ReadEvent) BotVerdict
	// NoteStatusToggle counts a status change and reports whether the user
	// crossed the toggle-burst threshold.
	NoteStatusToggle(ctx context.Context, userID, seriesID uuid.UUID) BotVerdict
	// IsRapidCompletion flags completions that land implausibly soon after
	// the library entry was created.
	IsRapidCompletion(entryCreatedAt time.Time, totalChapters int, now time.Time) bool
}

type abuseService struct {
	log     *logger.Logger
	windows redisclient.WindowStore
}

func NewAbuseService(log *logger.Logger, windows redisclient.WindowStore) AbuseService {
	serviceLog := log.With("service", "AbuseService")
	return &abuseService{log: serviceLog, windows: windows}
}

func (s *abuseService) ValidateReadTime(ctx context.Context, ev ReadEvent) ReadTimeVerdict {
	if ev.Chapter-ev.PrevChapter > softJumpExempt {
		return ReadTimeVerdict{}
	}
	if ev.SecondsSpent <= 0 {
		// No usable timing signal.
		return ReadTimeVerdict{}
	}

	pages := ev.PageCount
	if pages <= 0 {
		pages = defaultPageCount
	}
	floor := pages * secondsPerPage
	if floor < minFloorSeconds {
		floor = minFloorSeconds
	}
	if ev.SecondsSpent >= floor {
		return ReadTimeVerdict{FloorSeconds: floor}
	}

	verdict := ReadTimeVerdict{
		IsSuspicious:  true,
		ViolationType: types.ViolationSpeedRead,
		FloorSeconds:  floor,
	}
	key := fmt.Sprintf("abuse:fastread:%s", ev.UserID)
	n, err := s.windows.Incr(ctx, key, suspiciousReadWindow)
	if err != nil {
		s.log.Warn("Fast-read window unavailable", "error", err)
		return verdict
	}
	if n >= bulkReadThreshold {
		verdict.ViolationType = types.ViolationBulkSpeedRead
	}
	return verdict
}

func (s *abuseService) DetectBotPatterns(ctx context.Context, ev ReadEvent) BotVerdict {
	if ev.Chapter-ev.PrevChapter > hardJumpCeiling {
		return BotVerdict{IsBot: true, Pattern: BotPatternChapterJump}
	}

	key := fmt.Sprintf("abuse:dup:%s:%s:%g", ev.UserID, ev.SeriesID, ev.Chapter)
	n, err := s.windows.Incr(ctx, key, duplicateWindow)
	if err != nil {
		s.log.Warn("Duplicate-submission window unavailable", "error", err)
		return BotVerdict{}
	}
	if n >= duplicateThreshold {
		return BotVerdict{IsBot: true, Pattern: BotPatternDuplicateSubmission}
	}
	return BotVerdict{}
}

func (s *abuseService) NoteStatusToggle(ctx context.Context, userID, seriesID uuid.UUID) BotVerdict {
	key := fmt.Sprintf("abuse:toggle:%s:%s", userID, seriesID)
	n, err := s.windows.Incr(ctx, key, toggleWindow)
	if err != nil {
		s.log.Warn("Status-toggle window unavailable", "error", err)
		return BotVerdict{}
	}
	if n >= toggleThreshold {
		return BotVerdict{IsBot: true, Pattern: BotPatternStatusToggleBurst}
	}
	return BotVerdict{}
}

func (s *abuseService) IsRapidCompletion(entryCreatedAt time.Time, totalChapters int, now time.Time) bool {
	if totalChapters < rapidCompletionMinChapter {
		return false
	}
	return now.Sub(entryCreatedAt) < rapidCompletionWindow
}
