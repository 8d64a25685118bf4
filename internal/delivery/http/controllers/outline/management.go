package outline

import (
	"context"
	"errors"
	"net/http"

	"LearnScope/internal/app_errors"
	"LearnScope/internal/models"
	"LearnScope/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ManagementService interface {
	ReplaceCourseOutline(ctx context.Context, outline models.CourseOutlineData) error
	DeleteCourseOutline(ctx context.Context, courseKey models.CourseKey) error
}

type ManagementHandler struct {
	log     logger.Log
	service ManagementService
}

func NewManagementHandler(log logger.Log, s ManagementService) *ManagementHandler {
	return &ManagementHandler{
		log:     log,
		service: s,
	}
}

// ReplaceOutline ingests a freshly published outline. The body is the full
// outline snapshot; the course key in the path must match it.
func (h *ManagementHandler) ReplaceOutline(c *gin.Context) {
	courseKey, ok := courseKeyParam(c)
	if !ok {
		return
	}

	var outlineData models.CourseOutlineData
	if err := c.ShouldBindJSON(&outlineData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid outline payload"})
		return
	}
	if outlineData.CourseKey != courseKey {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_key mismatch between path and payload"})
		return
	}
	if outlineData.PublishedVersion == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "published_version is required"})
		return
	}

	if err := h.service.ReplaceCourseOutline(c.Request.Context(), outlineData); err != nil {
		if errors.Is(err, app_errors.ErrUnsupportedKey) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("ReplaceOutline failed", err, "course_key", courseKey.String())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not replace outline"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteOutline unpublishes the course's outline.
func (h *ManagementHandler) DeleteOutline(c *gin.Context) {
	courseKey, ok := courseKeyParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCourseOutline(c.Request.Context(), courseKey); err != nil {
		switch {
		case errors.Is(err, app_errors.ErrUnsupportedKey):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrOutlineNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.log.ErrorErr("DeleteOutline failed", err, "course_key", courseKey.String())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete outline"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
