package service

import (
	"LearnScope/internal/service/enrollment"
	"LearnScope/internal/service/outline"
)

type Collection struct {
	*outline.OutlineService
	*enrollment.EnrollmentService
}
