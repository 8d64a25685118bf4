package processors

import (
	"LearnScope/internal/service/outline"
)

// DefaultRegistry wires the built-in processors in their conventional order.
// New rules slot in by appending a registration; the pipeline itself never
// changes.
func DefaultRegistry(schedules ScheduleRepo, exams ExamAttemptRepo, enrollments EnrollmentRepo) []outline.ProcessorRegistration {
	return []outline.ProcessorRegistration{
		{Name: "schedule", New: NewScheduleProcessor(schedules)},
		{Name: "special_exams", New: NewSpecialExamsProcessor(exams)},
		{Name: "visibility", New: NewVisibilityProcessor},
		{Name: "enrollment", New: NewEnrollmentProcessor(enrollments)},
	}
}
