package models

import (
	"time"
)

type CourseVisibility string

const (
	CourseVisibilityPrivate       CourseVisibility = "private"
	CourseVisibilityPublicOutline CourseVisibility = "public_outline"
	CourseVisibilityPublic        CourseVisibility = "public"
)

// VisibilityData applies to sections and to learning sequences alike.
type VisibilityData struct {
	HideFromTOC        bool `json:"hide_from_toc"`
	VisibleToStaffOnly bool `json:"visible_to_staff_only"`
}

// ExamData with all flags false means "this sequence is not an exam".
type ExamData struct {
	IsPracticeExam     bool `json:"is_practice_exam"`
	IsProctoredEnabled bool `json:"is_proctored_enabled"`
	IsTimeLimited      bool `json:"is_time_limited"`
}

func (e ExamData) IsExam() bool {
	return e.IsPracticeExam || e.IsProctoredEnabled || e.IsTimeLimited
}

type CourseLearningSequenceData struct {
	UsageKey             UsageKey       `json:"usage_key"`
	Title                string         `json:"title"`
	InaccessibleAfterDue bool           `json:"inaccessible_after_due"`
	Visibility           VisibilityData `json:"visibility"`
	Exam                 ExamData       `json:"exam"`
}

type CourseSectionData struct {
	UsageKey   UsageKey                     `json:"usage_key"`
	Title      string                       `json:"title"`
	Sequences  []CourseLearningSequenceData `json:"sequences"`
	Visibility VisibilityData               `json:"visibility"`
}

// CourseOutlineData is the full, user-independent outline of one course run.
// It is treated as an immutable value: nothing in this package or its
// consumers modifies an outline after construction. (course key,
// published version) uniquely identifies the content.
type CourseOutlineData struct {
	CourseKey        CourseKey           `json:"course_key"`
	Title            string              `json:"title"`
	PublishedAt      time.Time           `json:"published_at"`
	PublishedVersion string              `json:"published_version"`
	EntranceExamID   string              `json:"entrance_exam_id,omitempty"`
	DaysEarlyForBeta *int                `json:"days_early_for_beta,omitempty"`
	Sections         []CourseSectionData `json:"sections"`
	SelfPaced        bool                `json:"self_paced"`
	CourseVisibility CourseVisibility    `json:"course_visibility"`
}

// Sequences returns every learning sequence in the outline, keyed by usage
// key. The map is built fresh on each call.
func (o CourseOutlineData) Sequences() map[UsageKey]CourseLearningSequenceData {
	seqs := make(map[UsageKey]CourseLearningSequenceData)
	for _, section := range o.Sections {
		for _, seq := range section.Sequences {
			seqs[seq.UsageKey] = seq
		}
	}
	return seqs
}

// SequenceCount counts sequences across all sections.
func (o CourseOutlineData) SequenceCount() int {
	n := 0
	for _, section := range o.Sections {
		n += len(section.Sequences)
	}
	return n
}

// Remove produces a new outline without the given sections and sequences.
// Removing a section removes all of its sequences with it. A section left
// with zero sequences is kept: empty sections are valid outline content.
// The receiver is never modified.
func (o CourseOutlineData) Remove(usageKeys UsageKeySet) CourseOutlineData {
	trimmed := o
	trimmed.Sections = make([]CourseSectionData, 0, len(o.Sections))
	for _, section := range o.Sections {
		if usageKeys.Contains(section.UsageKey) {
			continue
		}
		kept := section
		kept.Sequences = make([]CourseLearningSequenceData, 0, len(section.Sequences))
		for _, seq := range section.Sequences {
			if usageKeys.Contains(seq.UsageKey) {
				continue
			}
			kept.Sequences = append(kept.Sequences, seq)
		}
		trimmed.Sections = append(trimmed.Sections, kept)
	}
	return trimmed
}
