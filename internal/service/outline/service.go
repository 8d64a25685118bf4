package outline

import (
	"context"
	"fmt"
	"time"

	"LearnScope/internal/app_errors"
	"LearnScope/internal/models"
	"LearnScope/pkg/logger"
)

type outlineRepo interface {
	ReadPublishedVersion(ctx context.Context, courseKey models.CourseKey) (string, error)
	ReadFullOutline(ctx context.Context, courseKey models.CourseKey) (models.CourseOutlineData, error)
	ReplaceFullOutline(ctx context.Context, outline models.CourseOutlineData) error
	DeleteOutline(ctx context.Context, courseKey models.CourseKey) error
	ListCourseKeys(ctx context.Context) ([]models.CourseKey, error)
}

type outlineCache interface {
	GetOrCompute(
		ctx context.Context,
		courseKey models.CourseKey,
		publishedVersion string,
		compute func(ctx context.Context) (models.CourseOutlineData, error),
	) (models.CourseOutlineData, error)
}

type permissionChecker interface {
	CanSeeAllContent(user models.User, courseKey models.CourseKey) bool
}

type archiveRepo interface {
	StoreSnapshot(ctx context.Context, outline models.CourseOutlineData) error
	Snapshot(ctx context.Context, courseKey models.CourseKey, publishedVersion string) (models.CourseOutlineData, error)
}

type searchRepo interface {
	Index(ctx context.Context, outline models.CourseOutlineData) error
	Delete(ctx context.Context, courseKey models.CourseKey) error
	Search(ctx context.Context, query string, size int) ([]models.CourseKey, error)
}

// OutlineService owns the outline read/replace surface and the per-user
// trimming pipeline. The archive and search repos are optional side channels:
// their failures are logged and never fail the operation that triggered them.
type OutlineService struct {
	log        logger.Log
	repo       outlineRepo
	cache      outlineCache
	perms      permissionChecker
	archive    archiveRepo
	search     searchRepo
	processors []ProcessorRegistration
}

func NewOutlineService(
	log logger.Log,
	repo outlineRepo,
	cache outlineCache,
	perms permissionChecker,
	archive archiveRepo,
	search searchRepo,
	processors []ProcessorRegistration,
) *OutlineService {
	return &OutlineService{
		log:        log,
		repo:       repo,
		cache:      cache,
		perms:      perms,
		archive:    archive,
		search:     search,
		processors: processors,
	}
}

// GetCourseOutline returns the full outline of a course run, with no
// user-specific rules applied. Reads go through the cache, keyed by the
// course's current published version.
func (s *OutlineService) GetCourseOutline(ctx context.Context, courseKey models.CourseKey) (models.CourseOutlineData, error) {
	if !courseKey.SupportsOutlines() {
		return models.CourseOutlineData{}, app_errors.ErrUnsupportedKey
	}

	publishedVersion, err := s.repo.ReadPublishedVersion(ctx, courseKey)
	if err != nil {
		return models.CourseOutlineData{}, err
	}
	return s.cache.GetOrCompute(ctx, courseKey, publishedVersion, func(ctx context.Context) (models.CourseOutlineData, error) {
		return s.repo.ReadFullOutline(ctx, courseKey)
	})
}

// GetUserCourseOutline returns the outline one user sees at one moment.
func (s *OutlineService) GetUserCourseOutline(ctx context.Context, courseKey models.CourseKey, user models.User, atTime time.Time) (models.UserCourseOutlineData, error) {
	userOutline, _, err := s.evaluate(ctx, courseKey, user, atTime)
	return userOutline, err
}

// GetUserCourseOutlineDetails additionally collects every named supplement
// the registered processors can contribute (schedule data, exam attempts, ...).
func (s *OutlineService) GetUserCourseOutlineDetails(ctx context.Context, courseKey models.CourseKey, user models.User, atTime time.Time) (models.UserCourseOutlineDetailsData, error) {
	userOutline, processors, err := s.evaluate(ctx, courseKey, user, atTime)
	if err != nil {
		return models.UserCourseOutlineDetailsData{}, err
	}

	supplements := make(map[string]any)
	for _, p := range processors {
		if provider, ok := p.(SupplementProvider); ok {
			supplements[provider.SupplementName()] = provider.Supplement(userOutline)
		}
	}
	return models.UserCourseOutlineDetailsData{
		Outline:     userOutline,
		Supplements: supplements,
	}, nil
}

// evaluate runs the trimming pipeline: load the full outline, short-circuit
// for privileged users, otherwise union every processor's removal and
// inaccessibility sets, trim, and materialize the user view. Any processor
// error aborts the whole evaluation; there are no partial results.
func (s *OutlineService) evaluate(ctx context.Context, courseKey models.CourseKey, user models.User, atTime time.Time) (models.UserCourseOutlineData, []OutlineProcessor, error) {
	fullOutline, err := s.GetCourseOutline(ctx, courseKey)
	if err != nil {
		return models.UserCourseOutlineData{}, nil, err
	}

	canSeeAllContent := s.perms.CanSeeAllContent(user, courseKey)

	usageKeysToRemove := models.UsageKeySet{}
	inaccessibleSequences := models.UsageKeySet{}
	processors := make([]OutlineProcessor, 0, len(s.processors))
	for _, registration := range s.processors {
		processor := registration.New(courseKey, user, atTime)
		processors = append(processors, processor)
		if err := processor.LoadData(ctx); err != nil {
			return models.UserCourseOutlineData{}, nil, fmt.Errorf("processor %s: %w", registration.Name, err)
		}
		if canSeeAllContent {
			// Privileged users see everything; processors still load
			// their data so supplements stay available.
			continue
		}
		usageKeysToRemove.Union(processor.UsageKeysToRemove(fullOutline))
		inaccessibleSequences.Union(processor.InaccessibleSequences(fullOutline))
	}

	trimmedOutline := fullOutline.Remove(usageKeysToRemove)

	accessible := models.UsageKeySet{}
	for usageKey := range trimmedOutline.Sequences() {
		if !canSeeAllContent && inaccessibleSequences.Contains(usageKey) {
			continue
		}
		accessible.Add(usageKey)
	}

	userOutline := models.NewUserCourseOutline(trimmedOutline, fullOutline, user, atTime, accessible)
	return userOutline, processors, nil
}

// GetArchivedOutline reads one historical outline version from the archive.
func (s *OutlineService) GetArchivedOutline(ctx context.Context, courseKey models.CourseKey, publishedVersion string) (models.CourseOutlineData, error) {
	if !courseKey.SupportsOutlines() {
		return models.CourseOutlineData{}, app_errors.ErrUnsupportedKey
	}
	if s.archive == nil {
		return models.CourseOutlineData{}, app_errors.ErrOutlineNotFound
	}
	return s.archive.Snapshot(ctx, courseKey, publishedVersion)
}

// GetCourseKeysWithOutlines lists every course that has a published outline.
func (s *OutlineService) GetCourseKeysWithOutlines(ctx context.Context) ([]models.CourseKey, error) {
	return s.repo.ListCourseKeys(ctx)
}

// SearchCourses answers free-text title queries from the search index.
func (s *OutlineService) SearchCourses(ctx context.Context, query string, size int) ([]models.CourseKey, error) {
	if s.search == nil {
		return nil, nil
	}
	keys, err := s.search.Search(ctx, query, size)
	if err != nil {
		return nil, fmt.Errorf("search courses: %w", err)
	}
	return keys, nil
}

// ReplaceCourseOutline atomically replaces the stored outline for the
// outline's course. Archival and search indexing happen after the replace
// commits and are best-effort.
func (s *OutlineService) ReplaceCourseOutline(ctx context.Context, outline models.CourseOutlineData) error {
	if !outline.CourseKey.SupportsOutlines() {
		return app_errors.ErrUnsupportedKey
	}

	s.log.Info("replacing course outline",
		"course_key", outline.CourseKey.String(),
		"published_version", outline.PublishedVersion,
		"sequence_count", outline.SequenceCount(),
	)
	if err := s.repo.ReplaceFullOutline(ctx, outline); err != nil {
		return err
	}

	if s.archive != nil {
		if err := s.archive.StoreSnapshot(ctx, outline); err != nil {
			s.log.ErrorErr("failed to archive outline snapshot", err,
				"course_key", outline.CourseKey.String(),
				"published_version", outline.PublishedVersion,
			)
		}
	}
	if s.search != nil {
		if err := s.search.Index(ctx, outline); err != nil {
			s.log.ErrorErr("failed to index outline", err,
				"course_key", outline.CourseKey.String(),
			)
		}
	}
	return nil
}

// DeleteCourseOutline unpublishes a course: its outline rows are removed and
// the search document dropped. Archived snapshots are kept.
func (s *OutlineService) DeleteCourseOutline(ctx context.Context, courseKey models.CourseKey) error {
	if !courseKey.SupportsOutlines() {
		return app_errors.ErrUnsupportedKey
	}

	s.log.Info("deleting course outline", "course_key", courseKey.String())
	if err := s.repo.DeleteOutline(ctx, courseKey); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.Delete(ctx, courseKey); err != nil {
			s.log.ErrorErr("failed to deindex outline", err,
				"course_key", courseKey.String(),
			)
		}
	}
	return nil
}
