package models

import (
	"testing"
)

func TestParseCourseKeyModern(t *testing.T) {
	key, err := ParseCourseKey("course-v1:LSx+Go101+2026_T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.Org() != "LSx" {
		t.Errorf("expected org 'LSx', got %q", key.Org())
	}
	if key.Deprecated() {
		t.Error("modern key should not be deprecated")
	}
	if key.IsLibrary() {
		t.Error("course key should not be a library")
	}
	if !key.SupportsOutlines() {
		t.Error("modern course key should support outlines")
	}
	if key.String() != "course-v1:LSx+Go101+2026_T1" {
		t.Errorf("round-trip mismatch: %q", key.String())
	}
}

func TestParseCourseKeyCCX(t *testing.T) {
	key, err := ParseCourseKey("ccx-v1:LSx+Go101+2026_T1+ccx@7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !key.SupportsOutlines() {
		t.Error("ccx key should support outlines")
	}
	if key.String() != "ccx-v1:LSx+Go101+2026_T1+ccx@7" {
		t.Errorf("round-trip mismatch: %q", key.String())
	}
}

func TestParseCourseKeyLibrary(t *testing.T) {
	key, err := ParseCourseKey("library-v1:LSx+ProblemBank")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !key.IsLibrary() {
		t.Error("expected a library key")
	}
	if key.SupportsOutlines() {
		t.Error("library keys must not support outlines")
	}
}

func TestParseCourseKeyDeprecated(t *testing.T) {
	key, err := ParseCourseKey("LSx/Go101/2026_T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !key.Deprecated() {
		t.Error("slash-format key should be deprecated")
	}
	if key.SupportsOutlines() {
		t.Error("deprecated keys must not support outlines")
	}
	if key.String() != "LSx/Go101/2026_T1" {
		t.Errorf("round-trip mismatch: %q", key.String())
	}
}

func TestParseCourseKeyInvalid(t *testing.T) {
	invalid := []string{
		"",
		"nonsense",
		"course-v1:MissingParts",
		"course-v1:A+B",
		"course-v1:A+B+C+D",
		"block-v1:LSx+Go101+2026_T1+type@chapter+block@ch1",
		"ccx-v1:LSx+Go101+2026_T1+99",
		"Org/Course",
	}
	for _, raw := range invalid {
		if _, err := ParseCourseKey(raw); err == nil {
			t.Errorf("expected error for %q, got none", raw)
		}
	}
}

func TestParseUsageKey(t *testing.T) {
	key, err := ParseUsageKey("block-v1:LSx+Go101+2026_T1+type@sequential+block@week1_quiz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.BlockType() != "sequential" {
		t.Errorf("expected block type 'sequential', got %q", key.BlockType())
	}
	if key.BlockID() != "week1_quiz" {
		t.Errorf("expected block id 'week1_quiz', got %q", key.BlockID())
	}
	if key.String() != "block-v1:LSx+Go101+2026_T1+type@sequential+block@week1_quiz" {
		t.Errorf("round-trip mismatch: %q", key.String())
	}

	invalid := []string{
		"",
		"course-v1:LSx+Go101+2026_T1",
		"block-v1:LSx+Go101+2026_T1",
		"block-v1:LSx+Go101+2026_T1+chapter+ch1",
	}
	for _, raw := range invalid {
		if _, err := ParseUsageKey(raw); err == nil {
			t.Errorf("expected error for %q, got none", raw)
		}
	}
}

func TestUsageKeySetOperations(t *testing.T) {
	a := mustUsageKey(t, "block-v1:LSx+Go101+2026_T1+type@sequential+block@a")
	b := mustUsageKey(t, "block-v1:LSx+Go101+2026_T1+type@sequential+block@b")
	c := mustUsageKey(t, "block-v1:LSx+Go101+2026_T1+type@sequential+block@c")

	set := NewUsageKeySet(a)
	set.Union(NewUsageKeySet(b, c))

	if len(set) != 3 {
		t.Fatalf("expected union of 3 keys, got %d", len(set))
	}
	for _, k := range []UsageKey{a, b, c} {
		if !set.Contains(k) {
			t.Errorf("expected set to contain %s", k)
		}
	}

	sorted := set.Sorted()
	if len(sorted) != 3 || sorted[0] != a || sorted[1] != b || sorted[2] != c {
		t.Errorf("unexpected sorted order: %v", sorted)
	}
}

func mustUsageKey(t *testing.T, raw string) UsageKey {
	t.Helper()
	key, err := ParseUsageKey(raw)
	if err != nil {
		t.Fatalf("bad usage key %q: %v", raw, err)
	}
	return key
}
