package outline

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"LearnScope/internal/app_errors"
	"LearnScope/internal/delivery/http/controllers/middleware"
	"LearnScope/internal/models"
	"LearnScope/pkg/logger"

	"github.com/gin-gonic/gin"
)

type QueryService interface {
	GetCourseOutline(ctx context.Context, courseKey models.CourseKey) (models.CourseOutlineData, error)
	GetUserCourseOutline(ctx context.Context, courseKey models.CourseKey, user models.User, atTime time.Time) (models.UserCourseOutlineData, error)
	GetUserCourseOutlineDetails(ctx context.Context, courseKey models.CourseKey, user models.User, atTime time.Time) (models.UserCourseOutlineDetailsData, error)
	GetArchivedOutline(ctx context.Context, courseKey models.CourseKey, publishedVersion string) (models.CourseOutlineData, error)
	GetCourseKeysWithOutlines(ctx context.Context) ([]models.CourseKey, error)
	SearchCourses(ctx context.Context, query string, size int) ([]models.CourseKey, error)
}

type QueryHandler struct {
	log     logger.Log
	service QueryService
}

func NewQueryHandler(log logger.Log, s QueryService) *QueryHandler {
	return &QueryHandler{
		log:     log,
		service: s,
	}
}

func courseKeyParam(c *gin.Context) (models.CourseKey, bool) {
	raw := c.Param("course_key")
	courseKey, err := models.ParseCourseKey(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_key"})
		return models.CourseKey{}, false
	}
	return courseKey, true
}

// atTimeParam reads the optional "at" query param (RFC 3339); absent means now.
func atTimeParam(c *gin.Context) (time.Time, bool) {
	raw := c.Query("at")
	if raw == "" {
		return time.Now().UTC(), true
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at must be an RFC 3339 timestamp"})
		return time.Time{}, false
	}
	return at.UTC(), true
}

func respondOutlineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app_errors.ErrUnsupportedKey):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrOutlineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load outline"})
	}
}

// GetCourseOutline returns the full, user-independent outline. Staff only.
func (h *QueryHandler) GetCourseOutline(c *gin.Context) {
	courseKey, ok := courseKeyParam(c)
	if !ok {
		return
	}

	outlineData, err := h.service.GetCourseOutline(c.Request.Context(), courseKey)
	if err != nil {
		if !errors.Is(err, app_errors.ErrUnsupportedKey) && !errors.Is(err, app_errors.ErrOutlineNotFound) {
			h.log.ErrorErr("GetCourseOutline failed", err, "course_key", courseKey.String())
		}
		respondOutlineError(c, err)
		return
	}
	c.JSON(http.StatusOK, outlineData)
}

// GetArchivedOutline returns one archived outline version. Staff only.
func (h *QueryHandler) GetArchivedOutline(c *gin.Context) {
	courseKey, ok := courseKeyParam(c)
	if !ok {
		return
	}
	version := c.Param("version")
	if version == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "version is required"})
		return
	}

	outlineData, err := h.service.GetArchivedOutline(c.Request.Context(), courseKey, version)
	if err != nil {
		if !errors.Is(err, app_errors.ErrUnsupportedKey) && !errors.Is(err, app_errors.ErrOutlineNotFound) {
			h.log.ErrorErr("GetArchivedOutline failed", err, "course_key", courseKey.String(), "version", version)
		}
		respondOutlineError(c, err)
		return
	}
	c.JSON(http.StatusOK, outlineData)
}

func (h *QueryHandler) GetUserCourseOutline(c *gin.Context) {
	courseKey, ok := courseKeyParam(c)
	if !ok {
		return
	}
	atTime, ok := atTimeParam(c)
	if !ok {
		return
	}
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not resolved"})
		return
	}

	userOutline, err := h.service.GetUserCourseOutline(c.Request.Context(), courseKey, user, atTime)
	if err != nil {
		if !errors.Is(err, app_errors.ErrUnsupportedKey) && !errors.Is(err, app_errors.ErrOutlineNotFound) {
			h.log.ErrorErr("GetUserCourseOutline failed", err, "course_key", courseKey.String())
		}
		respondOutlineError(c, err)
		return
	}
	c.JSON(http.StatusOK, userOutline)
}

func (h *QueryHandler) GetUserCourseOutlineDetails(c *gin.Context) {
	courseKey, ok := courseKeyParam(c)
	if !ok {
		return
	}
	atTime, ok := atTimeParam(c)
	if !ok {
		return
	}
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not resolved"})
		return
	}

	details, err := h.service.GetUserCourseOutlineDetails(c.Request.Context(), courseKey, user, atTime)
	if err != nil {
		if !errors.Is(err, app_errors.ErrUnsupportedKey) && !errors.Is(err, app_errors.ErrOutlineNotFound) {
			h.log.ErrorErr("GetUserCourseOutlineDetails failed", err, "course_key", courseKey.String())
		}
		respondOutlineError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// ListCourses returns every course key with a stored outline, or search
// results when a query is given.
func (h *QueryHandler) ListCourses(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 50
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = v
	}

	var keys []models.CourseKey
	var err error
	if q := c.Query("query"); q != "" {
		keys, err = h.service.SearchCourses(ctx, q, limit)
	} else {
		keys, err = h.service.GetCourseKeysWithOutlines(ctx)
	}
	if err != nil {
		h.log.ErrorErr("ListCourses failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list courses"})
		return
	}

	courseKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		courseKeys = append(courseKeys, key.String())
	}
	c.JSON(http.StatusOK, gin.H{"course_keys": courseKeys})
}
