package processors

import (
	"context"
	"time"

	"LearnScope/internal/models"
	"LearnScope/internal/service/outline"
)

// ScheduleRepo is the external collaborator that knows per-user release and
// due dates for a course's sequences.
type ScheduleRepo interface {
	CourseSchedule(ctx context.Context, courseKey models.CourseKey, user models.User) (models.ScheduleData, error)
}

// ScheduleProcessor keeps unreleased sequences out of reach and, for
// sequences flagged inaccessible_after_due, closes them once their due date
// has passed. Both cases leave the sequence listed in the outline; only
// self-paced courses never hide by date.
type ScheduleProcessor struct {
	courseKey models.CourseKey
	user      models.User
	atTime    time.Time
	repo      ScheduleRepo

	schedule models.ScheduleData
}

func NewScheduleProcessor(repo ScheduleRepo) outline.ProcessorFactory {
	return func(courseKey models.CourseKey, user models.User, atTime time.Time) outline.OutlineProcessor {
		return &ScheduleProcessor{
			courseKey: courseKey,
			user:      user,
			atTime:    atTime,
			repo:      repo,
		}
	}
}

func (p *ScheduleProcessor) LoadData(ctx context.Context) error {
	schedule, err := p.repo.CourseSchedule(ctx, p.courseKey, p.user)
	if err != nil {
		return err
	}
	p.schedule = schedule
	return nil
}

func (p *ScheduleProcessor) UsageKeysToRemove(_ models.CourseOutlineData) models.UsageKeySet {
	return models.UsageKeySet{}
}

func (p *ScheduleProcessor) InaccessibleSequences(fullOutline models.CourseOutlineData) models.UsageKeySet {
	inaccessible := models.UsageKeySet{}
	for usageKey, seq := range fullOutline.Sequences() {
		item, ok := p.schedule.Sequences[usageKey]
		if !ok {
			continue
		}
		start := item.EffectiveStart
		if start == nil {
			start = item.Start
		}
		if start != nil && p.atTime.Before(*start) {
			inaccessible.Add(usageKey)
			continue
		}
		if seq.InaccessibleAfterDue && !fullOutline.SelfPaced &&
			item.Due != nil && p.atTime.After(*item.Due) {
			inaccessible.Add(usageKey)
		}
	}
	return inaccessible
}

func (p *ScheduleProcessor) SupplementName() string {
	return "schedule"
}

func (p *ScheduleProcessor) Supplement(userOutline models.UserCourseOutlineData) any {
	// Only report dates for sequences that survived trimming.
	visible := userOutline.Sequences()
	items := make(map[models.UsageKey]models.ScheduleItemData, len(visible))
	for usageKey, item := range p.schedule.Sequences {
		if _, ok := visible[usageKey]; ok {
			items[usageKey] = item
		}
	}
	return models.ScheduleData{
		CourseStart: p.schedule.CourseStart,
		CourseEnd:   p.schedule.CourseEnd,
		Sequences:   items,
	}
}
