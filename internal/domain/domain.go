package domain

import (
	"github.com/yomikata/yomikata-backend/internal/domain/gamification"
	"github.com/yomikata/yomikata-backend/internal/domain/library"
	"github.com/yomikata/yomikata-backend/internal/domain/user"
)

type User = user.User

type Achievement = gamification.Achievement
type UserAchievement = gamification.UserAchievement
type TrustViolation = gamification.TrustViolation

type Series = library.Series
type LibraryEntry = library.LibraryEntry
type Follow = library.Follow

const (
	CriteriaChapterCount   = gamification.CriteriaChapterCount
	CriteriaCompletedCount = gamification.CriteriaCompletedCount
	CriteriaLibraryCount   = gamification.CriteriaLibraryCount
	CriteriaFollowCount    = gamification.CriteriaFollowCount
	CriteriaStreakCount    = gamification.CriteriaStreakCount

	TriggerChapterRead     = gamification.TriggerChapterRead
	TriggerSeriesCompleted = gamification.TriggerSeriesCompleted
	TriggerSeriesAdded     = gamification.TriggerSeriesAdded
	TriggerFollowAdded     = gamification.TriggerFollowAdded

	ViolationSpeedRead           = gamification.ViolationSpeedRead
	ViolationBulkSpeedRead       = gamification.ViolationBulkSpeedRead
	ViolationRapidCompletion     = gamification.ViolationRapidCompletion
	ViolationDuplicateSubmission = gamification.ViolationDuplicateSubmission

	StatusReading    = library.StatusReading
	StatusCompleted  = library.StatusCompleted
	StatusPlanToRead = library.StatusPlanToRead
	StatusDropped    = library.StatusDropped
)

func ValidCriteriaType(t string) bool { return gamification.ValidCriteriaType(t) }

func ValidStatus(s string) bool { return library.ValidStatus(s) }
