package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"LearnScope/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExamAttemptsPostgres struct {
	db *pgxpool.Pool
}

func NewExamAttemptsPostgres(db *pgxpool.Pool) *ExamAttemptsPostgres {
	return &ExamAttemptsPostgres{db: db}
}

// ExamsEnabled defaults to true when a course has no explicit setting row.
func (r *ExamAttemptsPostgres) ExamsEnabled(ctx context.Context, courseKey models.CourseKey) (bool, error) {
	const query = `SELECT exams_enabled FROM course_exam_settings WHERE course_key = $1`
	var enabled bool
	err := r.db.QueryRow(ctx, query, courseKey.String()).Scan(&enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, nil
		}
		return false, fmt.Errorf("read exam settings: %w", err)
	}
	return enabled, nil
}

func (r *ExamAttemptsPostgres) UserAttempts(ctx context.Context, courseKey models.CourseKey, user models.User) (map[models.UsageKey]models.ExamAttemptData, error) {
	const query = `
        SELECT usage_key, status, started_at, completed_at
          FROM exam_attempts
         WHERE course_key = $1 AND user_id = $2
    `
	rows, err := r.db.Query(ctx, query, courseKey.String(), user.ID)
	if err != nil {
		return nil, fmt.Errorf("read exam attempts: %w", err)
	}
	defer rows.Close()

	attempts := make(map[models.UsageKey]models.ExamAttemptData)
	for rows.Next() {
		var rawKey string
		var attempt models.ExamAttemptData
		var startedAt, completedAt *time.Time
		if err := rows.Scan(&rawKey, &attempt.Status, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan exam attempt: %w", err)
		}
		usageKey, err := models.ParseUsageKey(rawKey)
		if err != nil {
			return nil, fmt.Errorf("stored attempt key: %w", err)
		}
		attempt.UsageKey = usageKey
		attempt.StartedAt = startedAt
		attempt.CompletedAt = completedAt
		attempts[usageKey] = attempt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read exam attempts: %w", err)
	}
	return attempts, nil
}
