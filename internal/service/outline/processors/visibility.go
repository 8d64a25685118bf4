package processors

import (
	"context"
	"time"

	"LearnScope/internal/models"
	"LearnScope/internal/service/outline"
)

// VisibilityProcessor removes content marked visible_to_staff_only. It is the
// only processor that needs nothing beyond the outline itself.
type VisibilityProcessor struct{}

func NewVisibilityProcessor(_ models.CourseKey, _ models.User, _ time.Time) outline.OutlineProcessor {
	return &VisibilityProcessor{}
}

func (p *VisibilityProcessor) LoadData(_ context.Context) error {
	return nil
}

func (p *VisibilityProcessor) UsageKeysToRemove(fullOutline models.CourseOutlineData) models.UsageKeySet {
	toRemove := models.UsageKeySet{}
	for _, section := range fullOutline.Sections {
		if section.Visibility.VisibleToStaffOnly {
			toRemove.Add(section.UsageKey)
			continue
		}
		for _, seq := range section.Sequences {
			if seq.Visibility.VisibleToStaffOnly {
				toRemove.Add(seq.UsageKey)
			}
		}
	}
	return toRemove
}

func (p *VisibilityProcessor) InaccessibleSequences(_ models.CourseOutlineData) models.UsageKeySet {
	return models.UsageKeySet{}
}
