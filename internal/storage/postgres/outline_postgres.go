package postgres

import (
	"LearnScope/internal/app_errors"
	"LearnScope/internal/models"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutlinePostgres persists full course outlines. Reads reconstruct section and
// sequence order from explicit ordering columns; ReplaceFullOutline rewrites a
// course's rows in one transaction so readers only ever see an outline that is
// fully old or fully new.
type OutlinePostgres struct {
	db *pgxpool.Pool
}

func NewOutlinePostgres(db *pgxpool.Pool) *OutlinePostgres {
	return &OutlinePostgres{db: db}
}

// ReadPublishedVersion is the cheap probe that runs before the cache lookup:
// the published version is the only cache-invalidation signal, so it has to
// come from storage every time.
func (r *OutlinePostgres) ReadPublishedVersion(ctx context.Context, courseKey models.CourseKey) (string, error) {
	if !courseKey.SupportsOutlines() {
		return "", app_errors.ErrUnsupportedKey
	}

	const query = `SELECT published_version FROM course_contexts WHERE course_key = $1`
	var version string
	err := r.db.QueryRow(ctx, query, courseKey.String()).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", app_errors.ErrOutlineNotFound
		}
		return "", fmt.Errorf("read published version: %w", err)
	}
	return version, nil
}

func (r *OutlinePostgres) ReadFullOutline(ctx context.Context, courseKey models.CourseKey) (models.CourseOutlineData, error) {
	if !courseKey.SupportsOutlines() {
		return models.CourseOutlineData{}, app_errors.ErrUnsupportedKey
	}

	const contextQuery = `
        SELECT title, published_at, published_version,
               COALESCE(entrance_exam_id, ''), days_early_for_beta,
               self_paced, course_visibility
          FROM course_contexts
         WHERE course_key = $1
    `
	outline := models.CourseOutlineData{CourseKey: courseKey}
	var visibility string
	err := r.db.QueryRow(ctx, contextQuery, courseKey.String()).Scan(
		&outline.Title,
		&outline.PublishedAt,
		&outline.PublishedVersion,
		&outline.EntranceExamID,
		&outline.DaysEarlyForBeta,
		&outline.SelfPaced,
		&visibility,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CourseOutlineData{}, app_errors.ErrOutlineNotFound
		}
		return models.CourseOutlineData{}, fmt.Errorf("read course context: %w", err)
	}
	outline.CourseVisibility = models.CourseVisibility(visibility)
	outline.PublishedAt = outline.PublishedAt.UTC()

	sections, err := r.readSections(ctx, courseKey)
	if err != nil {
		return models.CourseOutlineData{}, err
	}
	if err := r.attachSequences(ctx, courseKey, sections); err != nil {
		return models.CourseOutlineData{}, err
	}

	outline.Sections = make([]models.CourseSectionData, 0, len(sections))
	for _, section := range sections {
		outline.Sections = append(outline.Sections, *section)
	}
	return outline, nil
}

// readSections queries course_sections directly so that sections without any
// sequences still come back.
func (r *OutlinePostgres) readSections(ctx context.Context, courseKey models.CourseKey) ([]*models.CourseSectionData, error) {
	const query = `
        SELECT usage_key, title, hide_from_toc, visible_to_staff_only
          FROM course_sections
         WHERE course_key = $1
         ORDER BY ordering
    `
	rows, err := r.db.Query(ctx, query, courseKey.String())
	if err != nil {
		return nil, fmt.Errorf("read sections: %w", err)
	}
	defer rows.Close()

	var sections []*models.CourseSectionData
	for rows.Next() {
		var rawKey string
		section := &models.CourseSectionData{Sequences: []models.CourseLearningSequenceData{}}
		if err := rows.Scan(&rawKey, &section.Title, &section.Visibility.HideFromTOC, &section.Visibility.VisibleToStaffOnly); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		section.UsageKey, err = models.ParseUsageKey(rawKey)
		if err != nil {
			return nil, fmt.Errorf("stored section key: %w", err)
		}
		sections = append(sections, section)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sections: %w", err)
	}
	return sections, nil
}

func (r *OutlinePostgres) attachSequences(ctx context.Context, courseKey models.CourseKey, sections []*models.CourseSectionData) error {
	const query = `
        SELECT ss.section_usage_key, ss.usage_key, ss.title,
               ss.inaccessible_after_due, ss.hide_from_toc, ss.visible_to_staff_only,
               COALESCE(e.is_practice_exam, false),
               COALESCE(e.is_proctored_enabled, false),
               COALESCE(e.is_time_limited, false)
          FROM course_section_sequences ss
          LEFT JOIN course_sequence_exams e
            ON e.course_key = ss.course_key AND e.usage_key = ss.usage_key
         WHERE ss.course_key = $1
         ORDER BY ss.ordering
    `
	rows, err := r.db.Query(ctx, query, courseKey.String())
	if err != nil {
		return fmt.Errorf("read sequences: %w", err)
	}
	defer rows.Close()

	bySection := make(map[models.UsageKey]*models.CourseSectionData, len(sections))
	for _, section := range sections {
		bySection[section.UsageKey] = section
	}

	for rows.Next() {
		var rawSectionKey, rawKey string
		var seq models.CourseLearningSequenceData
		err := rows.Scan(
			&rawSectionKey,
			&rawKey,
			&seq.Title,
			&seq.InaccessibleAfterDue,
			&seq.Visibility.HideFromTOC,
			&seq.Visibility.VisibleToStaffOnly,
			&seq.Exam.IsPracticeExam,
			&seq.Exam.IsProctoredEnabled,
			&seq.Exam.IsTimeLimited,
		)
		if err != nil {
			return fmt.Errorf("scan sequence: %w", err)
		}
		sectionKey, err := models.ParseUsageKey(rawSectionKey)
		if err != nil {
			return fmt.Errorf("stored section key: %w", err)
		}
		seq.UsageKey, err = models.ParseUsageKey(rawKey)
		if err != nil {
			return fmt.Errorf("stored sequence key: %w", err)
		}
		section, ok := bySection[sectionKey]
		if !ok {
			return fmt.Errorf("sequence %s references unknown section %s", seq.UsageKey, sectionKey)
		}
		section.Sequences = append(section.Sequences, seq)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read sequences: %w", err)
	}
	return nil
}

// ReplaceFullOutline atomically replaces everything stored for the outline's
// course. Rows for content still present are updated in place (matched by
// usage key), rows for content that disappeared are deleted, and exam metadata
// is dropped for sequences that stopped being exams. Calling it twice with the
// same outline leaves the same state as calling it once.
func (r *OutlinePostgres) ReplaceFullOutline(ctx context.Context, outline models.CourseOutlineData) error {
	if !outline.CourseKey.SupportsOutlines() {
		return app_errors.ErrUnsupportedKey
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertCourseContext(ctx, tx, outline); err != nil {
		return err
	}
	if err := replaceSections(ctx, tx, outline); err != nil {
		return err
	}
	if err := replaceSequences(ctx, tx, outline); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func upsertCourseContext(ctx context.Context, tx pgx.Tx, outline models.CourseOutlineData) error {
	const query = `
        INSERT INTO course_contexts (
            course_key, title, published_at, published_version,
            entrance_exam_id, days_early_for_beta, self_paced, course_visibility
        ) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
        ON CONFLICT (course_key) DO UPDATE SET
            title               = EXCLUDED.title,
            published_at        = EXCLUDED.published_at,
            published_version   = EXCLUDED.published_version,
            entrance_exam_id    = EXCLUDED.entrance_exam_id,
            days_early_for_beta = EXCLUDED.days_early_for_beta,
            self_paced          = EXCLUDED.self_paced,
            course_visibility   = EXCLUDED.course_visibility
    `
	_, err := tx.Exec(ctx, query,
		outline.CourseKey.String(),
		outline.Title,
		outline.PublishedAt.UTC(),
		outline.PublishedVersion,
		outline.EntranceExamID,
		outline.DaysEarlyForBeta,
		outline.SelfPaced,
		string(outline.CourseVisibility),
	)
	if err != nil {
		return fmt.Errorf("upsert course context: %w", err)
	}
	return nil
}

func replaceSections(ctx context.Context, tx pgx.Tx, outline models.CourseOutlineData) error {
	const upsert = `
        INSERT INTO course_sections (
            course_key, usage_key, title, ordering, hide_from_toc, visible_to_staff_only
        ) VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (course_key, usage_key) DO UPDATE SET
            title                 = EXCLUDED.title,
            ordering              = EXCLUDED.ordering,
            hide_from_toc         = EXCLUDED.hide_from_toc,
            visible_to_staff_only = EXCLUDED.visible_to_staff_only
    `
	// Non-nil even when empty, so ANY($2) matches nothing instead of NULL.
	keysToKeep := make([]string, 0, len(outline.Sections))
	for ordering, section := range outline.Sections {
		_, err := tx.Exec(ctx, upsert,
			outline.CourseKey.String(),
			section.UsageKey.String(),
			section.Title,
			ordering,
			section.Visibility.HideFromTOC,
			section.Visibility.VisibleToStaffOnly,
		)
		if err != nil {
			return fmt.Errorf("upsert section %s: %w", section.UsageKey, err)
		}
		keysToKeep = append(keysToKeep, section.UsageKey.String())
	}

	const deleteStale = `
        DELETE FROM course_sections
         WHERE course_key = $1 AND NOT (usage_key = ANY($2))
    `
	if _, err := tx.Exec(ctx, deleteStale, outline.CourseKey.String(), keysToKeep); err != nil {
		return fmt.Errorf("delete stale sections: %w", err)
	}
	return nil
}

func replaceSequences(ctx context.Context, tx pgx.Tx, outline models.CourseOutlineData) error {
	const upsert = `
        INSERT INTO course_section_sequences (
            course_key, section_usage_key, usage_key, title, ordering,
            inaccessible_after_due, hide_from_toc, visible_to_staff_only
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (course_key, usage_key) DO UPDATE SET
            section_usage_key      = EXCLUDED.section_usage_key,
            title                  = EXCLUDED.title,
            ordering               = EXCLUDED.ordering,
            inaccessible_after_due = EXCLUDED.inaccessible_after_due,
            hide_from_toc          = EXCLUDED.hide_from_toc,
            visible_to_staff_only  = EXCLUDED.visible_to_staff_only
    `
	const upsertExam = `
        INSERT INTO course_sequence_exams (
            course_key, usage_key, is_practice_exam, is_proctored_enabled, is_time_limited
        ) VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (course_key, usage_key) DO UPDATE SET
            is_practice_exam     = EXCLUDED.is_practice_exam,
            is_proctored_enabled = EXCLUDED.is_proctored_enabled,
            is_time_limited      = EXCLUDED.is_time_limited
    `

	var keysToKeep []string
	var examKeysToKeep []string
	ordering := 0
	for _, section := range outline.Sections {
		for _, seq := range section.Sequences {
			_, err := tx.Exec(ctx, upsert,
				outline.CourseKey.String(),
				section.UsageKey.String(),
				seq.UsageKey.String(),
				seq.Title,
				ordering,
				seq.InaccessibleAfterDue,
				seq.Visibility.HideFromTOC,
				seq.Visibility.VisibleToStaffOnly,
			)
			if err != nil {
				return fmt.Errorf("upsert sequence %s: %w", seq.UsageKey, err)
			}
			ordering++
			keysToKeep = append(keysToKeep, seq.UsageKey.String())

			if seq.Exam.IsExam() {
				_, err := tx.Exec(ctx, upsertExam,
					outline.CourseKey.String(),
					seq.UsageKey.String(),
					seq.Exam.IsPracticeExam,
					seq.Exam.IsProctoredEnabled,
					seq.Exam.IsTimeLimited,
				)
				if err != nil {
					return fmt.Errorf("upsert exam %s: %w", seq.UsageKey, err)
				}
				examKeysToKeep = append(examKeysToKeep, seq.UsageKey.String())
			}
		}
	}
	if keysToKeep == nil {
		keysToKeep = []string{}
	}
	if examKeysToKeep == nil {
		examKeysToKeep = []string{}
	}

	// Exams first: a sequence that stopped being an exam must not keep its
	// exam row even though the sequence row itself survives.
	const deleteStaleExams = `
        DELETE FROM course_sequence_exams
         WHERE course_key = $1 AND NOT (usage_key = ANY($2))
    `
	if _, err := tx.Exec(ctx, deleteStaleExams, outline.CourseKey.String(), examKeysToKeep); err != nil {
		return fmt.Errorf("delete stale exams: %w", err)
	}

	const deleteStale = `
        DELETE FROM course_section_sequences
         WHERE course_key = $1 AND NOT (usage_key = ANY($2))
    `
	if _, err := tx.Exec(ctx, deleteStale, outline.CourseKey.String(), keysToKeep); err != nil {
		return fmt.Errorf("delete stale sequences: %w", err)
	}
	return nil
}

// DeleteOutline removes everything stored for one course. Section, sequence
// and exam rows go with the context row via their foreign keys.
func (r *OutlinePostgres) DeleteOutline(ctx context.Context, courseKey models.CourseKey) error {
	if !courseKey.SupportsOutlines() {
		return app_errors.ErrUnsupportedKey
	}

	const query = `DELETE FROM course_contexts WHERE course_key = $1`
	tag, err := r.db.Exec(ctx, query, courseKey.String())
	if err != nil {
		return fmt.Errorf("delete outline: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrOutlineNotFound
	}
	return nil
}

// ListCourseKeys returns the key of every course that has a stored outline.
func (r *OutlinePostgres) ListCourseKeys(ctx context.Context) ([]models.CourseKey, error) {
	const query = `SELECT course_key FROM course_contexts ORDER BY course_key`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list course keys: %w", err)
	}
	defer rows.Close()

	var keys []models.CourseKey
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan course key: %w", err)
		}
		key, err := models.ParseCourseKey(raw)
		if err != nil {
			return nil, fmt.Errorf("stored course key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list course keys: %w", err)
	}
	return keys, nil
}
