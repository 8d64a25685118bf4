package postgres

import (
	"context"
	"fmt"

	"LearnScope/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentPostgres struct {
	db *pgxpool.Pool
}

func NewEnrollmentPostgres(db *pgxpool.Pool) *EnrollmentPostgres {
	return &EnrollmentPostgres{db: db}
}

func (r *EnrollmentPostgres) IsEnrolled(ctx context.Context, courseKey models.CourseKey, user models.User) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM course_enrollments
             WHERE course_key = $1 AND user_id = $2 AND active
        )
    `
	var enrolled bool
	err := r.db.QueryRow(ctx, query, courseKey.String(), user.ID).Scan(&enrolled)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return enrolled, nil
}

func (r *EnrollmentPostgres) Enroll(ctx context.Context, courseKey models.CourseKey, user models.User) error {
	const query = `
        INSERT INTO course_enrollments (course_key, user_id, active)
        VALUES ($1, $2, TRUE)
        ON CONFLICT (course_key, user_id) DO UPDATE SET active = TRUE
    `
	if _, err := r.db.Exec(ctx, query, courseKey.String(), user.ID); err != nil {
		return fmt.Errorf("enroll: %w", err)
	}
	return nil
}
