package enrollment

import (
	"context"
	"errors"
	"net/http"

	"LearnScope/internal/app_errors"
	"LearnScope/internal/delivery/http/controllers/middleware"
	"LearnScope/internal/models"
	"LearnScope/pkg/logger"

	"github.com/gin-gonic/gin"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, courseKey models.CourseKey, user models.User) error
	IsEnrolled(ctx context.Context, courseKey models.CourseKey, user models.User) (bool, error)
}

type EnrollHandler struct {
	log     logger.Log
	service EnrollmentService
}

func NewEnrollHandler(log logger.Log, s EnrollmentService) *EnrollHandler {
	return &EnrollHandler{
		log:     log,
		service: s,
	}
}

// Enroll activates the caller's enrollment in the course.
func (h *EnrollHandler) Enroll(c *gin.Context) {
	courseKey, err := models.ParseCourseKey(c.Param("course_key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_key"})
		return
	}
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not resolved"})
		return
	}

	if err := h.service.Enroll(c.Request.Context(), courseKey, user); err != nil {
		switch {
		case errors.Is(err, app_errors.ErrUnsupportedKey):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			h.log.ErrorErr("Enroll failed", err, "course_key", courseKey.String())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not enroll"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// Status reports whether the caller is enrolled.
func (h *EnrollHandler) Status(c *gin.Context) {
	courseKey, err := models.ParseCourseKey(c.Param("course_key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_key"})
		return
	}
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not resolved"})
		return
	}

	enrolled, err := h.service.IsEnrolled(c.Request.Context(), courseKey, user)
	if err != nil {
		h.log.ErrorErr("enrollment status failed", err, "course_key", courseKey.String())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read enrollment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrolled": enrolled})
}
