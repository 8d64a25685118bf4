package models

import (
	"time"
)

// UserCourseOutlineData is the outline one user actually sees at one point in
// time. It carries the trimmed course structure plus the set of sequences the
// user may open. It is derived fresh on every evaluation and never persisted.
type UserCourseOutlineData struct {
	CourseOutlineData

	// BaseOutline is the untrimmed outline this view was derived from.
	BaseOutline         CourseOutlineData `json:"-"`
	User                User              `json:"user"`
	AtTime              time.Time         `json:"at_time"`
	AccessibleSequences UsageKeySet       `json:"accessible_sequences"`
}

// NewUserCourseOutline builds the user view from an already-trimmed outline.
// Field copying is explicit here so that adding a field to CourseOutlineData
// is a compile-visible change, not a runtime surprise.
func NewUserCourseOutline(
	trimmed CourseOutlineData,
	base CourseOutlineData,
	user User,
	atTime time.Time,
	accessible UsageKeySet,
) UserCourseOutlineData {
	return UserCourseOutlineData{
		CourseOutlineData: CourseOutlineData{
			CourseKey:        trimmed.CourseKey,
			Title:            trimmed.Title,
			PublishedAt:      trimmed.PublishedAt,
			PublishedVersion: trimmed.PublishedVersion,
			EntranceExamID:   trimmed.EntranceExamID,
			DaysEarlyForBeta: trimmed.DaysEarlyForBeta,
			Sections:         trimmed.Sections,
			SelfPaced:        trimmed.SelfPaced,
			CourseVisibility: trimmed.CourseVisibility,
		},
		BaseOutline:         base,
		User:                user,
		AtTime:              atTime,
		AccessibleSequences: accessible,
	}
}

// UserCourseOutlineDetailsData adds named supplementary payloads that
// individual processors contribute ("schedule", "special_exam_attempts", ...).
// The set of names is open-ended: the pipeline does not know which processors
// have something to say.
type UserCourseOutlineDetailsData struct {
	Outline     UserCourseOutlineData `json:"outline"`
	Supplements map[string]any        `json:"supplements"`
}

// ScheduleItemData is the per-sequence payload of the schedule supplement.
type ScheduleItemData struct {
	UsageKey       UsageKey   `json:"usage_key"`
	Start          *time.Time `json:"start,omitempty"`
	EffectiveStart *time.Time `json:"effective_start,omitempty"`
	Due            *time.Time `json:"due,omitempty"`
}

type ScheduleData struct {
	CourseStart *time.Time                    `json:"course_start,omitempty"`
	CourseEnd   *time.Time                    `json:"course_end,omitempty"`
	Sequences   map[UsageKey]ScheduleItemData `json:"sequences"`
}

// ExamAttemptData is the per-sequence payload of the special-exam supplement.
type ExamAttemptData struct {
	UsageKey    UsageKey   `json:"usage_key"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
