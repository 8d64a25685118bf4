package middleware

import (
	"errors"
	"net/http"
	"strings"

	"LearnScope/internal/app_errors"
	"LearnScope/internal/models"
	"LearnScope/pkg/logger"

	"github.com/gin-gonic/gin"
)

const CurrentUserCtx = "current_user"

type TokenService interface {
	UserFromToken(token string) (models.User, error)
}

type AuthMiddlewareProvider struct {
	log     logger.Log
	service TokenService
}

func NewAuthMiddlewareProvider(log logger.Log, s TokenService) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:     log,
		service: s,
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if parts := strings.Split(authHeader, "Bearer "); len(parts) == 2 {
		return parts[1]
	}
	return ""
}

// AuthMiddleware rejects requests without a valid access token.
func (h *AuthMiddlewareProvider) AuthMiddleware(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	user, err := h.service.UserFromToken(token)
	if err != nil {
		h.log.Info("failed to parse token", logger.Err(err))
		if errors.Is(err, app_errors.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrTokenExpired.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "cant parse token"})
		return
	}

	c.Set(CurrentUserCtx, user)
	c.Next()
}

// OptionalAuthMiddleware resolves identity when a token is present and lets
// anonymous requests through. Outline visibility rules decide what anonymous
// users actually see.
func (h *AuthMiddlewareProvider) OptionalAuthMiddleware(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.Set(CurrentUserCtx, models.Anonymous())
		c.Next()
		return
	}

	user, err := h.service.UserFromToken(token)
	if err != nil {
		// A present-but-broken token is an error, not anonymity.
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "cant parse token"})
		return
	}
	c.Set(CurrentUserCtx, user)
	c.Next()
}

// CurrentUser pulls the authenticated (or anonymous) user off the context.
func CurrentUser(c *gin.Context) (models.User, bool) {
	raw, ok := c.Get(CurrentUserCtx)
	if !ok {
		return models.User{}, false
	}
	user, ok := raw.(models.User)
	return user, ok
}
