package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/yomikata/yomikata-backend/internal/clients/redis"
	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

func newAbuseService(t *testing.T) AbuseService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewAbuseService(log, redisclient.NewMemoryWindowStore())
}

func TestValidateReadTimeFlagsFastRead(t *testing.T) {
	s := newAbuseService(t)
	ctx := context.Background()

	ev := ReadEvent{
		UserID:       uuid.New(),
		SeriesID:     uuid.New(),
		Chapter:      5,
		PrevChapter:  4,
		SecondsSpent: 3,
		PageCount:    20,
	}
	v := s.ValidateReadTime(ctx, ev)
	if !v.IsSuspicious {
		t.Fatalf("3s for 20 pages should be suspicious")
	}
	if v.ViolationType != types.ViolationSpeedRead {
		t.Fatalf("first fast read should be speed_read, got %q", v.ViolationType)
	}
	if v.FloorSeconds != 60 {
		t.Fatalf("expected 60s floor for 20 pages, got %d", v.FloorSeconds)
	}
}

func TestValidateReadTimeEscalatesToBulk(t *testing.T) {
	s := newAbuseService(t)
	ctx := context.Background()
	userID := uuid.New()

	var last ReadTimeVerdict
	for i := 0; i < 3; i++ {
		last = s.ValidateReadTime(ctx, ReadEvent{
			UserID:       userID,
			SeriesID:     uuid.New(),
			Chapter:      float64(i + 1),
			PrevChapter:  float64(i),
			SecondsSpent: 2,
			PageCount:    18,
		})
		if !last.IsSuspicious {
			t.Fatalf("read %d: expected suspicious", i+1)
		}
	}
	if last.ViolationType != types.ViolationBulkSpeedRead {
		t.Fatalf("third fast read in window should escalate to bulk_speed_read, got %q", last.ViolationType)
	}
}

func TestValidateReadTimeJumpExempt(t *testing.T) {
	s := newAbuseService(t)

	// 0 -> 50 is backfill: pace is not evaluated at all.
	v := s.ValidateReadTime(context.Background(), ReadEvent{
		UserID:       uuid.New(),
		SeriesID:     uuid.New(),
		Chapter:      50,
		PrevChapter:  0,
		SecondsSpent: 1,
		PageCount:    20,
	})
	if v.IsSuspicious {
		t.Fatalf("jump > 2 must be exempt from pace validation")
	}
}

func TestValidateReadTimeFailsOpen(t *testing.T) {
	s := newAbuseService(t)

	cases := []ReadEvent{
		{UserID: uuid.New(), Chapter: 2, PrevChapter: 1, SecondsSpent: 0, PageCount: 20},
		{UserID: uuid.New(), Chapter: 2, PrevChapter: 1, SecondsSpent: -5, PageCount: 20},
	}
	for i, ev := range cases {
		if v := s.ValidateReadTime(context.Background(), ev); v.IsSuspicious {
			t.Fatalf("case %d: malformed timing must fail open", i)
		}
	}
}

func TestValidateReadTimeDefaultPageCount(t *testing.T) {
	s := newAbuseService(t)

	// Missing page count defaults to 18 pages -> 54s floor.
	v := s.ValidateReadTime(context.Background(), ReadEvent{
		UserID:       uuid.New(),
		SeriesID:     uuid.New(),
		Chapter:      2,
		PrevChapter:  1,
		SecondsSpent: 30,
		PageCount:    0,
	})
	if !v.IsSuspicious {
		t.Fatalf("30s against the default 54s floor should be suspicious")
	}
	if v.FloorSeconds != 54 {
		t.Fatalf("expected default floor 54, got %d", v.FloorSeconds)
	}
}

func TestDetectBotPatternsChapterJump(t *testing.T) {
	s := newAbuseService(t)

	v := s.DetectBotPatterns(context.Background(), ReadEvent{
		UserID:      uuid.New(),
		SeriesID:    uuid.New(),
		Chapter:     150,
		PrevChapter: 1,
	})
	if !v.IsBot || v.Pattern != BotPatternChapterJump {
		t.Fatalf("jump of 149 chapters should trip the hard gate, got %+v", v)
	}

	v = s.DetectBotPatterns(context.Background(), ReadEvent{
		UserID:      uuid.New(),
		SeriesID:    uuid.New(),
		Chapter:     90,
		PrevChapter: 1,
	})
	if v.IsBot {
		t.Fatalf("jump of 89 chapters is below the ceiling, got %+v", v)
	}
}

func TestDetectBotPatternsDuplicateSubmission(t *testing.T) {
	s := newAbuseService(t)
	ctx := context.Background()

	ev := ReadEvent{
		UserID:      uuid.New(),
		SeriesID:    uuid.New(),
		Chapter:     7,
		PrevChapter: 7,
	}
	for i := 0; i < 2; i++ {
		if v := s.DetectBotPatterns(ctx, ev); v.IsBot {
			t.Fatalf("submission %d should not trip the gate yet", i+1)
		}
	}
	if v := s.DetectBotPatterns(ctx, ev); !v.IsBot || v.Pattern != BotPatternDuplicateSubmission {
		t.Fatalf("third identical submission should trip the gate, got %+v", v)
	}

	// A different chapter is a fresh window.
	other := ev
	other.Chapter = 8
	if v := s.DetectBotPatterns(ctx, other); v.IsBot {
		t.Fatalf("different chapter must not inherit the duplicate window")
	}
}

func TestNoteStatusToggleBurst(t *testing.T) {
	s := newAbuseService(t)
	ctx := context.Background()
	userID, seriesID := uuid.New(), uuid.New()

	for i := 0; i < 4; i++ {
		if v := s.NoteStatusToggle(ctx, userID, seriesID); v.IsBot {
			t.Fatalf("toggle %d should not trip the gate yet", i+1)
		}
	}
	if v := s.NoteStatusToggle(ctx, userID, seriesID); !v.IsBot || v.Pattern != BotPatternStatusToggleBurst {
		t.Fatalf("fifth toggle in window should trip the gate, got %+v", v)
	}
}

func TestIsRapidCompletion(t *testing.T) {
	s := newAbuseService(t)
	now := time.Now().UTC()

	if !s.IsRapidCompletion(now.Add(-2*time.Minute), 50, now) {
		t.Fatalf("50 chapters completed 2 minutes after adding should flag")
	}
	if s.IsRapidCompletion(now.Add(-2*time.Hour), 50, now) {
		t.Fatalf("completion hours after adding should not flag")
	}
	if s.IsRapidCompletion(now.Add(-1*time.Minute), 3, now) {
		t.Fatalf("short series are never rapid completions")
	}
}
