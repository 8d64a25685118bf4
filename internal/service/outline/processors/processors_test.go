package processors

import (
	"context"
	"testing"
	"time"

	"LearnScope/internal/models"

	"github.com/google/uuid"
)

func mustCourseKey(t *testing.T, raw string) models.CourseKey {
	t.Helper()
	key, err := models.ParseCourseKey(raw)
	if err != nil {
		t.Fatalf("bad course key %q: %v", raw, err)
	}
	return key
}

func mustUsageKey(t *testing.T, raw string) models.UsageKey {
	t.Helper()
	key, err := models.ParseUsageKey(raw)
	if err != nil {
		t.Fatalf("bad usage key %q: %v", raw, err)
	}
	return key
}

func seqKey(t *testing.T, id string) models.UsageKey {
	return mustUsageKey(t, "block-v1:LSx+Go101+2026_T1+type@sequential+block@"+id)
}

func chapterKey(t *testing.T, id string) models.UsageKey {
	return mustUsageKey(t, "block-v1:LSx+Go101+2026_T1+type@chapter+block@"+id)
}

func outlineFixture(t *testing.T, sections ...models.CourseSectionData) models.CourseOutlineData {
	t.Helper()
	return models.CourseOutlineData{
		CourseKey:        mustCourseKey(t, "course-v1:LSx+Go101+2026_T1"),
		Title:            "Intro to Go",
		PublishedVersion: "v1",
		Sections:         sections,
		CourseVisibility: models.CourseVisibilityPublic,
	}
}

func learner() models.User {
	return models.User{ID: uuid.New(), Username: "sam", Roles: []string{models.StudentRole}}
}

func timePtr(v time.Time) *time.Time { return &v }

func TestVisibilityProcessor(t *testing.T) {
	fullOutline := outlineFixture(t,
		models.CourseSectionData{
			UsageKey: chapterKey(t, "open"),
			Sequences: []models.CourseLearningSequenceData{
				{UsageKey: seqKey(t, "seq1")},
				{UsageKey: seqKey(t, "staffseq"), Visibility: models.VisibilityData{VisibleToStaffOnly: true}},
			},
		},
		models.CourseSectionData{
			UsageKey:   chapterKey(t, "staffonly"),
			Visibility: models.VisibilityData{VisibleToStaffOnly: true},
			Sequences: []models.CourseLearningSequenceData{
				{UsageKey: seqKey(t, "hiddenseq")},
			},
		},
	)

	p := NewVisibilityProcessor(fullOutline.CourseKey, learner(), time.Now())
	if err := p.LoadData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	toRemove := p.UsageKeysToRemove(fullOutline)
	if !toRemove.Contains(seqKey(t, "staffseq")) {
		t.Error("staff-only sequence must be removed")
	}
	if !toRemove.Contains(chapterKey(t, "staffonly")) {
		t.Error("staff-only section must be removed")
	}
	if toRemove.Contains(seqKey(t, "hiddenseq")) {
		t.Error("removing the section already covers its sequences")
	}
	if toRemove.Contains(seqKey(t, "seq1")) {
		t.Error("visible sequence must stay")
	}
	if got := len(p.InaccessibleSequences(fullOutline)); got != 0 {
		t.Errorf("visibility never gates accessibility, got %d keys", got)
	}
}

type fakeScheduleRepo struct {
	schedule models.ScheduleData
}

func (r fakeScheduleRepo) CourseSchedule(context.Context, models.CourseKey, models.User) (models.ScheduleData, error) {
	return r.schedule, nil
}

func TestScheduleProcessorReleaseAndDueDates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fullOutline := outlineFixture(t, models.CourseSectionData{
		UsageKey: chapterKey(t, "ch1"),
		Sequences: []models.CourseLearningSequenceData{
			{UsageKey: seqKey(t, "released")},
			{UsageKey: seqKey(t, "future")},
			{UsageKey: seqKey(t, "pastdue"), InaccessibleAfterDue: true},
			{UsageKey: seqKey(t, "pastdueopen")},
			{UsageKey: seqKey(t, "unscheduled")},
		},
	})

	repo := fakeScheduleRepo{schedule: models.ScheduleData{
		Sequences: map[models.UsageKey]models.ScheduleItemData{
			seqKey(t, "released"): {Start: timePtr(now.Add(-24 * time.Hour))},
			seqKey(t, "future"):   {Start: timePtr(now.Add(24 * time.Hour))},
			seqKey(t, "pastdue"): {
				Start: timePtr(now.Add(-48 * time.Hour)),
				Due:   timePtr(now.Add(-time.Hour)),
			},
			seqKey(t, "pastdueopen"): {
				Start: timePtr(now.Add(-48 * time.Hour)),
				Due:   timePtr(now.Add(-time.Hour)),
			},
		},
	}}

	p := NewScheduleProcessor(repo)(fullOutline.CourseKey, learner(), now)
	if err := p.LoadData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inaccessible := p.InaccessibleSequences(fullOutline)
	if !inaccessible.Contains(seqKey(t, "future")) {
		t.Error("unreleased sequence must be inaccessible")
	}
	if !inaccessible.Contains(seqKey(t, "pastdue")) {
		t.Error("past-due sequence with inaccessible_after_due must be closed")
	}
	for _, id := range []string{"released", "pastdueopen", "unscheduled"} {
		if inaccessible.Contains(seqKey(t, id)) {
			t.Errorf("sequence %s must stay accessible", id)
		}
	}
	if got := len(p.UsageKeysToRemove(fullOutline)); got != 0 {
		t.Errorf("schedule gating never removes content from the outline, got %d keys", got)
	}
}

func TestScheduleProcessorSelfPacedIgnoresDueDates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fullOutline := outlineFixture(t, models.CourseSectionData{
		UsageKey: chapterKey(t, "ch1"),
		Sequences: []models.CourseLearningSequenceData{
			{UsageKey: seqKey(t, "pastdue"), InaccessibleAfterDue: true},
		},
	})
	fullOutline.SelfPaced = true

	repo := fakeScheduleRepo{schedule: models.ScheduleData{
		Sequences: map[models.UsageKey]models.ScheduleItemData{
			seqKey(t, "pastdue"): {
				Start: timePtr(now.Add(-48 * time.Hour)),
				Due:   timePtr(now.Add(-time.Hour)),
			},
		},
	}}

	p := NewScheduleProcessor(repo)(fullOutline.CourseKey, learner(), now)
	if err := p.LoadData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.InaccessibleSequences(fullOutline).Contains(seqKey(t, "pastdue")) {
		t.Error("self-paced courses never close content by due date")
	}
}

func TestScheduleProcessorEffectiveStartWins(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fullOutline := outlineFixture(t, models.CourseSectionData{
		UsageKey: chapterKey(t, "ch1"),
		Sequences: []models.CourseLearningSequenceData{
			{UsageKey: seqKey(t, "shifted")},
		},
	})

	// Nominal start has passed but the user's effective start has not.
	repo := fakeScheduleRepo{schedule: models.ScheduleData{
		Sequences: map[models.UsageKey]models.ScheduleItemData{
			seqKey(t, "shifted"): {
				Start:          timePtr(now.Add(-24 * time.Hour)),
				EffectiveStart: timePtr(now.Add(24 * time.Hour)),
			},
		},
	}}

	p := NewScheduleProcessor(repo)(fullOutline.CourseKey, learner(), now)
	if err := p.LoadData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.InaccessibleSequences(fullOutline).Contains(seqKey(t, "shifted")) {
		t.Error("effective start takes precedence over nominal start")
	}
}

type fakeExamRepo struct {
	enabled  bool
	attempts map[models.UsageKey]models.ExamAttemptData
}

func (r fakeExamRepo) ExamsEnabled(context.Context, models.CourseKey) (bool, error) {
	return r.enabled, nil
}

func (r fakeExamRepo) UserAttempts(context.Context, models.CourseKey, models.User) (map[models.UsageKey]models.ExamAttemptData, error) {
	return r.attempts, nil
}

func examOutline(t *testing.T) models.CourseOutlineData {
	return outlineFixture(t, models.CourseSectionData{
		UsageKey: chapterKey(t, "exams"),
		Sequences: []models.CourseLearningSequenceData{
			{UsageKey: seqKey(t, "plain")},
			{UsageKey: seqKey(t, "proctored"), Exam: models.ExamData{IsProctoredEnabled: true}},
			{UsageKey: seqKey(t, "timed"), Exam: models.ExamData{IsTimeLimited: true}},
			{UsageKey: seqKey(t, "practice"), Exam: models.ExamData{IsPracticeExam: true}},
		},
	})
}

func TestSpecialExamsProcessorDisabled(t *testing.T) {
	fullOutline := examOutline(t)
	p := NewSpecialExamsProcessor(fakeExamRepo{enabled: false})(fullOutline.CourseKey, learner(), time.Now())
	if err := p.LoadData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	toRemove := p.UsageKeysToRemove(fullOutline)
	if !toRemove.Contains(seqKey(t, "proctored")) {
		t.Error("proctored exam must be removed when exams are off")
	}
	if !toRemove.Contains(seqKey(t, "timed")) {
		t.Error("timed exam must be removed when exams are off")
	}
	if toRemove.Contains(seqKey(t, "practice")) {
		t.Error("practice exams are never removed")
	}
	if toRemove.Contains(seqKey(t, "plain")) {
		t.Error("non-exam sequences are never removed")
	}
}

func TestSpecialExamsProcessorEnabled(t *testing.T) {
	fullOutline := examOutline(t)
	p := NewSpecialExamsProcessor(fakeExamRepo{enabled: true})(fullOutline.CourseKey, learner(), time.Now())
	if err := p.LoadData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(p.UsageKeysToRemove(fullOutline)); got != 0 {
		t.Errorf("nothing is removed while exams are enabled, got %d keys", got)
	}
}

func TestSpecialExamsSupplementOnlyVisibleAttempts(t *testing.T) {
	fullOutline := examOutline(t)
	attempts := map[models.UsageKey]models.ExamAttemptData{
		seqKey(t, "timed"):   {UsageKey: seqKey(t, "timed"), Status: "submitted"},
		seqKey(t, "removed"): {UsageKey: seqKey(t, "removed"), Status: "started"},
	}
	p := NewSpecialExamsProcessor(fakeExamRepo{enabled: true, attempts: attempts})(fullOutline.CourseKey, learner(), time.Now())
	if err := p.LoadData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := models.NewUserCourseOutline(fullOutline, fullOutline, learner(), time.Now(), models.UsageKeySet{})
	supplement, ok := p.(*SpecialExamsProcessor).Supplement(user).([]models.ExamAttemptData)
	if !ok {
		t.Fatal("supplement must be a slice of exam attempts")
	}
	if len(supplement) != 1 || supplement[0].Status != "submitted" {
		t.Errorf("only attempts for listed sequences are reported, got %v", supplement)
	}
}

type fakeEnrollmentRepo struct {
	enrolled bool
	calls    int
}

func (r *fakeEnrollmentRepo) IsEnrolled(context.Context, models.CourseKey, models.User) (bool, error) {
	r.calls++
	return r.enrolled, nil
}

func TestEnrollmentProcessorUnenrolledBrowsing(t *testing.T) {
	fullOutline := outlineFixture(t, models.CourseSectionData{
		UsageKey: chapterKey(t, "ch1"),
		Sequences: []models.CourseLearningSequenceData{
			{UsageKey: seqKey(t, "seq1")},
			{UsageKey: seqKey(t, "seq2")},
		},
	})

	repo := &fakeEnrollmentRepo{enrolled: false}
	p := NewEnrollmentProcessor(repo)(fullOutline.CourseKey, learner(), time.Now())
	if err := p.LoadData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(p.UsageKeysToRemove(fullOutline)); got != 0 {
		t.Errorf("public course structure stays browsable, got %d removals", got)
	}
	inaccessible := p.InaccessibleSequences(fullOutline)
	if len(inaccessible) != 2 {
		t.Errorf("every sequence is closed to unenrolled users, got %d", len(inaccessible))
	}
}

func TestEnrollmentProcessorPrivateCourseHidden(t *testing.T) {
	fullOutline := outlineFixture(t, models.CourseSectionData{
		UsageKey: chapterKey(t, "ch1"),
		Sequences: []models.CourseLearningSequenceData{
			{UsageKey: seqKey(t, "seq1")},
		},
	})
	fullOutline.CourseVisibility = models.CourseVisibilityPrivate

	p := NewEnrollmentProcessor(&fakeEnrollmentRepo{enrolled: false})(fullOutline.CourseKey, learner(), time.Now())
	if err := p.LoadData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.UsageKeysToRemove(fullOutline).Contains(chapterKey(t, "ch1")) {
		t.Error("private course sections must be removed for unenrolled users")
	}
}

func TestEnrollmentProcessorEnrolledUser(t *testing.T) {
	fullOutline := outlineFixture(t, models.CourseSectionData{
		UsageKey: chapterKey(t, "ch1"),
		Sequences: []models.CourseLearningSequenceData{
			{UsageKey: seqKey(t, "seq1")},
		},
	})
	fullOutline.CourseVisibility = models.CourseVisibilityPrivate

	p := NewEnrollmentProcessor(&fakeEnrollmentRepo{enrolled: true})(fullOutline.CourseKey, learner(), time.Now())
	if err := p.LoadData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(p.UsageKeysToRemove(fullOutline)); got != 0 {
		t.Errorf("enrolled users keep everything, got %d removals", got)
	}
	if got := len(p.InaccessibleSequences(fullOutline)); got != 0 {
		t.Errorf("enrolled users open everything, got %d inaccessible", got)
	}
}

func TestEnrollmentProcessorAnonymousSkipsLookup(t *testing.T) {
	fullOutline := outlineFixture(t, models.CourseSectionData{
		UsageKey: chapterKey(t, "ch1"),
		Sequences: []models.CourseLearningSequenceData{
			{UsageKey: seqKey(t, "seq1")},
		},
	})

	repo := &fakeEnrollmentRepo{enrolled: true}
	p := NewEnrollmentProcessor(repo)(fullOutline.CourseKey, models.Anonymous(), time.Now())
	if err := p.LoadData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.calls != 0 {
		t.Errorf("anonymous users never hit the enrollment store, got %d calls", repo.calls)
	}
	if !p.InaccessibleSequences(fullOutline).Contains(seqKey(t, "seq1")) {
		t.Error("anonymous users cannot open sequences")
	}
}
