package outline

import (
	"context"
	"time"

	"LearnScope/internal/models"
)

// OutlineProcessor is one independent visibility rule. The pipeline treats
// every processor as an opaque filter: it calls LoadData exactly once, then
// asks which sequences must disappear entirely and which stay listed but
// cannot be opened. Processors never mutate the outline they are given.
type OutlineProcessor interface {
	// LoadData performs whatever reads the processor needs for its
	// (course, user, time) context. It may hit external collaborators.
	LoadData(ctx context.Context) error

	// UsageKeysToRemove returns sections and sequences to exclude from the
	// user's outline entirely.
	UsageKeysToRemove(fullOutline models.CourseOutlineData) models.UsageKeySet

	// InaccessibleSequences returns sequences that remain visible in the
	// outline but are not actionable for this user.
	InaccessibleSequences(fullOutline models.CourseOutlineData) models.UsageKeySet
}

// SupplementProvider is optionally implemented by processors that contribute a
// named payload to UserCourseOutlineDetailsData ("schedule",
// "special_exam_attempts", ...). Only the detail-assembly step looks for it.
type SupplementProvider interface {
	SupplementName() string
	Supplement(userOutline models.UserCourseOutlineData) any
}

// ProcessorFactory builds a processor bound to one evaluation context.
type ProcessorFactory func(courseKey models.CourseKey, user models.User, atTime time.Time) OutlineProcessor

// ProcessorRegistration names a factory. The pipeline runs registrations in
// slice order; results are combined by set union, so ordering only matters
// for observability, never for the outcome.
type ProcessorRegistration struct {
	Name string
	New  ProcessorFactory
}
