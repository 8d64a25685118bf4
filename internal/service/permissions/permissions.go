package permissions

import (
	"LearnScope/internal/models"
)

// Checker answers the one question the outline pipeline asks before running
// any processor: may this user see all content of this course?
type Checker struct{}

func New() *Checker {
	return &Checker{}
}

// CanSeeAllContent holds for global staff and for users carrying a
// "staff:<org>" role matching the course's org.
func (c *Checker) CanSeeAllContent(user models.User, courseKey models.CourseKey) bool {
	if user.IsAnonymous() {
		return false
	}
	if user.HasRole(models.StaffRole) {
		return true
	}
	return user.HasRole(models.StaffRole + ":" + courseKey.Org())
}
