package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"LearnScope/internal/models"
)

func testCourseKey(t *testing.T) models.CourseKey {
	t.Helper()
	key, err := models.ParseCourseKey("course-v1:LSx+Go101+2026_T1")
	if err != nil {
		t.Fatalf("bad course key: %v", err)
	}
	return key
}

func countingCompute(calls *int, outline models.CourseOutlineData) ComputeFunc {
	return func(context.Context) (models.CourseOutlineData, error) {
		*calls++
		return outline, nil
	}
}

func TestGetOrComputeCachesByVersion(t *testing.T) {
	c := NewOutlineCache(NewMemory(DefaultTTL), DefaultTTL)
	courseKey := testCourseKey(t)
	outline := models.CourseOutlineData{CourseKey: courseKey, Title: "Intro to Go", PublishedVersion: "v1"}

	calls := 0
	for i := 0; i < 3; i++ {
		got, err := c.GetOrCompute(context.Background(), courseKey, "v1", countingCompute(&calls, outline))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Title != outline.Title {
			t.Errorf("read %d: got title %q, want %q", i, got.Title, outline.Title)
		}
	}
	if calls != 1 {
		t.Errorf("compute should run once for repeated reads of one version, ran %d times", calls)
	}
}

func TestGetOrComputeVersionChangeBypassesOldEntry(t *testing.T) {
	c := NewOutlineCache(NewMemory(DefaultTTL), DefaultTTL)
	courseKey := testCourseKey(t)

	v1 := models.CourseOutlineData{CourseKey: courseKey, Title: "old", PublishedVersion: "v1"}
	v2 := models.CourseOutlineData{CourseKey: courseKey, Title: "new", PublishedVersion: "v2"}

	calls := 0
	if _, err := c.GetOrCompute(context.Background(), courseKey, "v1", countingCompute(&calls, v1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := c.GetOrCompute(context.Background(), courseKey, "v2", countingCompute(&calls, v2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "new" {
		t.Errorf("new version must not be served from the old slot, got title %q", got.Title)
	}
	if calls != 2 {
		t.Errorf("each version computes once, got %d compute calls", calls)
	}
}

func TestGetOrComputeErrorIsNotCached(t *testing.T) {
	c := NewOutlineCache(NewMemory(DefaultTTL), DefaultTTL)
	courseKey := testCourseKey(t)

	boom := errors.New("db down")
	_, err := c.GetOrCompute(context.Background(), courseKey, "v1", func(context.Context) (models.CourseOutlineData, error) {
		return models.CourseOutlineData{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected compute error back, got %v", err)
	}

	calls := 0
	outline := models.CourseOutlineData{CourseKey: courseKey, PublishedVersion: "v1"}
	if _, err := c.GetOrCompute(context.Background(), courseKey, "v1", countingCompute(&calls, outline)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("a failed compute must leave the slot empty, got %d compute calls", calls)
	}
}

func TestExpiredEntryRecomputes(t *testing.T) {
	ttl := 10 * time.Millisecond
	c := NewOutlineCache(NewMemory(ttl), ttl)
	courseKey := testCourseKey(t)
	outline := models.CourseOutlineData{CourseKey: courseKey, PublishedVersion: "v1"}

	calls := 0
	if _, err := c.GetOrCompute(context.Background(), courseKey, "v1", countingCompute(&calls, outline)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(3 * ttl)
	if _, err := c.GetOrCompute(context.Background(), courseKey, "v1", countingCompute(&calls, outline)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expired entry should recompute, got %d compute calls", calls)
	}
}

func TestKeyIsVersionScoped(t *testing.T) {
	courseKey := testCourseKey(t)
	if Key(courseKey, "v1") == Key(courseKey, "v2") {
		t.Error("two published versions must never share a cache slot")
	}
	want := "outlines.full_course_outline.v1.course-v1:LSx+Go101+2026_T1.v1"
	if got := Key(courseKey, "v1"); got != want {
		t.Errorf("got key %q, want %q", got, want)
	}
}
