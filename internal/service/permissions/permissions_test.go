package permissions

import (
	"testing"

	"LearnScope/internal/models"

	"github.com/google/uuid"
)

func courseKey(t *testing.T, raw string) models.CourseKey {
	t.Helper()
	key, err := models.ParseCourseKey(raw)
	if err != nil {
		t.Fatalf("bad course key %q: %v", raw, err)
	}
	return key
}

func TestCanSeeAllContent(t *testing.T) {
	checker := New()
	goCourse := courseKey(t, "course-v1:LSx+Go101+2026_T1")
	otherOrg := courseKey(t, "course-v1:Other+X+2026")

	cases := []struct {
		name string
		user models.User
		key  models.CourseKey
		want bool
	}{
		{"anonymous", models.Anonymous(), goCourse, false},
		{"student", models.User{ID: uuid.New(), Roles: []string{models.StudentRole}}, goCourse, false},
		{"global staff", models.User{ID: uuid.New(), Roles: []string{models.StaffRole}}, goCourse, true},
		{"org staff own org", models.User{ID: uuid.New(), Roles: []string{"staff:LSx"}}, goCourse, true},
		{"org staff other org", models.User{ID: uuid.New(), Roles: []string{"staff:LSx"}}, otherOrg, false},
	}
	for _, tc := range cases {
		if got := checker.CanSeeAllContent(tc.user, tc.key); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
