package processors

import (
	"context"
	"time"

	"LearnScope/internal/models"
	"LearnScope/internal/service/outline"
)

// EnrollmentRepo is the external enrollment collaborator.
type EnrollmentRepo interface {
	IsEnrolled(ctx context.Context, courseKey models.CourseKey, user models.User) (bool, error)
}

// EnrollmentProcessor lets unenrolled users browse the structure of publicly
// visible courses without opening anything: unless the user is enrolled,
// every sequence is inaccessible, and for fully private courses the whole
// outline is removed.
type EnrollmentProcessor struct {
	courseKey models.CourseKey
	user      models.User
	repo      EnrollmentRepo

	enrolled bool
}

func NewEnrollmentProcessor(repo EnrollmentRepo) outline.ProcessorFactory {
	return func(courseKey models.CourseKey, user models.User, _ time.Time) outline.OutlineProcessor {
		return &EnrollmentProcessor{
			courseKey: courseKey,
			user:      user,
			repo:      repo,
		}
	}
}

func (p *EnrollmentProcessor) LoadData(ctx context.Context) error {
	if p.user.IsAnonymous() {
		p.enrolled = false
		return nil
	}
	enrolled, err := p.repo.IsEnrolled(ctx, p.courseKey, p.user)
	if err != nil {
		return err
	}
	p.enrolled = enrolled
	return nil
}

func (p *EnrollmentProcessor) UsageKeysToRemove(fullOutline models.CourseOutlineData) models.UsageKeySet {
	toRemove := models.UsageKeySet{}
	if p.enrolled {
		return toRemove
	}
	if fullOutline.CourseVisibility == models.CourseVisibilityPrivate {
		for _, section := range fullOutline.Sections {
			toRemove.Add(section.UsageKey)
		}
	}
	return toRemove
}

func (p *EnrollmentProcessor) InaccessibleSequences(fullOutline models.CourseOutlineData) models.UsageKeySet {
	inaccessible := models.UsageKeySet{}
	if p.enrolled {
		return inaccessible
	}
	for usageKey := range fullOutline.Sequences() {
		inaccessible.Add(usageKey)
	}
	return inaccessible
}
