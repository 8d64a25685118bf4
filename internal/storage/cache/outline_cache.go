package cache

import (
	"context"
	"fmt"
	"time"

	"LearnScope/internal/models"
)

// DefaultTTL keeps cached outlines around for a few minutes. Entries are keyed
// by published version, so a short TTL only bounds memory, not freshness.
const DefaultTTL = 5 * time.Minute

type ComputeFunc = func(ctx context.Context) (models.CourseOutlineData, error)

// OutlineCache sits in front of the store's read path. Concurrent misses for
// the same key may each run the compute function; last write wins.
type OutlineCache struct {
	backend Cache
	ttl     time.Duration
}

func NewOutlineCache(backend Cache, ttl time.Duration) *OutlineCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &OutlineCache{backend: backend, ttl: ttl}
}

// Key builds the cache slot for one (course key, published version) pair. Two
// versions of the same course never share a slot.
func Key(courseKey models.CourseKey, publishedVersion string) string {
	return fmt.Sprintf("outlines.full_course_outline.v1.%s.%s", courseKey, publishedVersion)
}

func (c *OutlineCache) GetOrCompute(
	ctx context.Context,
	courseKey models.CourseKey,
	publishedVersion string,
	compute ComputeFunc,
) (models.CourseOutlineData, error) {
	key := Key(courseKey, publishedVersion)
	if outline, found := c.backend.Get(key); found {
		return outline, nil
	}

	outline, err := compute(ctx)
	if err != nil {
		return models.CourseOutlineData{}, err
	}
	c.backend.Set(key, outline, c.ttl)
	return outline, nil
}
