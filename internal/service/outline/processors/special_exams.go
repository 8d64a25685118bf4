package processors

import (
	"context"
	"time"

	"LearnScope/internal/models"
	"LearnScope/internal/service/outline"
)

// ExamAttemptRepo is the external special-exams collaborator.
type ExamAttemptRepo interface {
	// ExamsEnabled reports whether proctored/timed exams are enabled for the
	// course at all.
	ExamsEnabled(ctx context.Context, courseKey models.CourseKey) (bool, error)
	// UserAttempts returns the user's attempts keyed by exam sequence.
	UserAttempts(ctx context.Context, courseKey models.CourseKey, user models.User) (map[models.UsageKey]models.ExamAttemptData, error)
}

// SpecialExamsProcessor removes proctored and timed exam sequences when the
// exams feature is off for the course, and contributes the user's exam
// attempts as a detail supplement. Practice exams are never removed.
type SpecialExamsProcessor struct {
	courseKey models.CourseKey
	user      models.User
	atTime    time.Time
	repo      ExamAttemptRepo

	enabled  bool
	attempts map[models.UsageKey]models.ExamAttemptData
}

func NewSpecialExamsProcessor(repo ExamAttemptRepo) outline.ProcessorFactory {
	return func(courseKey models.CourseKey, user models.User, atTime time.Time) outline.OutlineProcessor {
		return &SpecialExamsProcessor{
			courseKey: courseKey,
			user:      user,
			atTime:    atTime,
			repo:      repo,
		}
	}
}

func (p *SpecialExamsProcessor) LoadData(ctx context.Context) error {
	enabled, err := p.repo.ExamsEnabled(ctx, p.courseKey)
	if err != nil {
		return err
	}
	p.enabled = enabled

	attempts, err := p.repo.UserAttempts(ctx, p.courseKey, p.user)
	if err != nil {
		return err
	}
	p.attempts = attempts
	return nil
}

func (p *SpecialExamsProcessor) UsageKeysToRemove(fullOutline models.CourseOutlineData) models.UsageKeySet {
	toRemove := models.UsageKeySet{}
	if p.enabled {
		return toRemove
	}
	for usageKey, seq := range fullOutline.Sequences() {
		if !seq.Exam.IsExam() || seq.Exam.IsPracticeExam {
			continue
		}
		if seq.Exam.IsProctoredEnabled || seq.Exam.IsTimeLimited {
			toRemove.Add(usageKey)
		}
	}
	return toRemove
}

func (p *SpecialExamsProcessor) InaccessibleSequences(_ models.CourseOutlineData) models.UsageKeySet {
	return models.UsageKeySet{}
}

func (p *SpecialExamsProcessor) SupplementName() string {
	return "special_exam_attempts"
}

func (p *SpecialExamsProcessor) Supplement(userOutline models.UserCourseOutlineData) any {
	visible := userOutline.Sequences()
	attempts := make([]models.ExamAttemptData, 0)
	for usageKey, attempt := range p.attempts {
		if _, ok := visible[usageKey]; ok {
			attempts = append(attempts, attempt)
		}
	}
	return attempts
}
