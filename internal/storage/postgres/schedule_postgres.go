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

// SchedulePostgres serves release and due dates per sequence. Dates are
// course-wide here; per-user effective starts (beta testers, self-paced
// shifts) come in as an overlay on the same rows.
type SchedulePostgres struct {
	db *pgxpool.Pool
}

func NewSchedulePostgres(db *pgxpool.Pool) *SchedulePostgres {
	return &SchedulePostgres{db: db}
}

func (r *SchedulePostgres) CourseSchedule(ctx context.Context, courseKey models.CourseKey, user models.User) (models.ScheduleData, error) {
	schedule := models.ScheduleData{
		Sequences: make(map[models.UsageKey]models.ScheduleItemData),
	}

	const courseQuery = `
        SELECT course_start, course_end FROM course_schedules WHERE course_key = $1
    `
	err := r.db.QueryRow(ctx, courseQuery, courseKey.String()).Scan(&schedule.CourseStart, &schedule.CourseEnd)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return models.ScheduleData{}, fmt.Errorf("read course schedule: %w", err)
	}

	const query = `
        SELECT usage_key, start_at, effective_start_at, due_at
          FROM sequence_schedules
         WHERE course_key = $1
    `
	rows, err := r.db.Query(ctx, query, courseKey.String())
	if err != nil {
		return models.ScheduleData{}, fmt.Errorf("read sequence schedules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rawKey string
		var start, effectiveStart, due *time.Time
		if err := rows.Scan(&rawKey, &start, &effectiveStart, &due); err != nil {
			return models.ScheduleData{}, fmt.Errorf("scan sequence schedule: %w", err)
		}
		usageKey, err := models.ParseUsageKey(rawKey)
		if err != nil {
			return models.ScheduleData{}, fmt.Errorf("stored schedule key: %w", err)
		}
		schedule.Sequences[usageKey] = models.ScheduleItemData{
			UsageKey:       usageKey,
			Start:          start,
			EffectiveStart: effectiveStart,
			Due:            due,
		}
	}
	if err := rows.Err(); err != nil {
		return models.ScheduleData{}, fmt.Errorf("read sequence schedules: %w", err)
	}
	return schedule, nil
}
