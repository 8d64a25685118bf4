package enrollment

import (
	"context"

	"LearnScope/internal/app_errors"
	"LearnScope/internal/models"
	"LearnScope/pkg/logger"
)

type enrollmentRepo interface {
	IsEnrolled(ctx context.Context, courseKey models.CourseKey, user models.User) (bool, error)
	Enroll(ctx context.Context, courseKey models.CourseKey, user models.User) error
}

// EnrollmentService handles learner self-enrollment. Access rules for
// enrolled content live in the outline pipeline, not here.
type EnrollmentService struct {
	log  logger.Log
	repo enrollmentRepo
}

func NewEnrollmentService(log logger.Log, repo enrollmentRepo) *EnrollmentService {
	return &EnrollmentService{
		log:  log,
		repo: repo,
	}
}

// Enroll activates the user's enrollment. It is idempotent.
func (s *EnrollmentService) Enroll(ctx context.Context, courseKey models.CourseKey, user models.User) error {
	if !courseKey.SupportsOutlines() {
		return app_errors.ErrUnsupportedKey
	}
	if user.IsAnonymous() {
		return app_errors.ErrForbidden
	}

	if err := s.repo.Enroll(ctx, courseKey, user); err != nil {
		return err
	}
	s.log.Info("user enrolled",
		"course_key", courseKey.String(),
		"username", user.Username,
	)
	return nil
}

func (s *EnrollmentService) IsEnrolled(ctx context.Context, courseKey models.CourseKey, user models.User) (bool, error) {
	if user.IsAnonymous() {
		return false, nil
	}
	return s.repo.IsEnrolled(ctx, courseKey, user)
}
