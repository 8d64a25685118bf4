package cache

import (
	"time"

	"LearnScope/internal/models"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is the backend the outline cache is built on. Implementations are an
// optimization only: outline reads must stay correct with a backend that
// never returns a hit.
type Cache interface {
	Get(key string) (models.CourseOutlineData, bool)
	Set(key string, outline models.CourseOutlineData, ttl time.Duration)
}

// Memory is an in-process TTL cache backend.
type Memory struct {
	store *gocache.Cache
}

func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{store: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (m *Memory) Get(key string) (models.CourseOutlineData, bool) {
	v, found := m.store.Get(key)
	if !found {
		return models.CourseOutlineData{}, false
	}
	outline, ok := v.(models.CourseOutlineData)
	if !ok {
		return models.CourseOutlineData{}, false
	}
	return outline, true
}

func (m *Memory) Set(key string, outline models.CourseOutlineData, ttl time.Duration) {
	m.store.Set(key, outline, ttl)
}
