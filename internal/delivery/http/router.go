package http

import (
	"time"

	"LearnScope/internal/delivery/http/controllers"
	enrollmentcontrollers "LearnScope/internal/delivery/http/controllers/enrollment"
	"LearnScope/internal/delivery/http/controllers/middleware"
	outlinecontrollers "LearnScope/internal/delivery/http/controllers/outline"
	"LearnScope/internal/models"
	"LearnScope/internal/service"
	"LearnScope/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitRoutes(l logger.Log, u service.Collection, tokens middleware.TokenService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(cors.New(config))

	statusController := controllers.NewStatusHandler()
	authProvider := middleware.NewAuthMiddlewareProvider(l, tokens)
	queryController := outlinecontrollers.NewQueryHandler(l, u.OutlineService)
	managementController := outlinecontrollers.NewManagementHandler(l, u.OutlineService)
	enrollController := enrollmentcontrollers.NewEnrollHandler(l, u.EnrollmentService)

	v1 := r.Group("/v1", middleware.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)

		courses := v1.Group("/courses")
		{
			courses.GET("", queryController.ListCourses)

			learner := courses.Group("", authProvider.OptionalAuthMiddleware)
			{
				learner.GET("/:course_key/user-outline", queryController.GetUserCourseOutline)
				learner.GET("/:course_key/user-outline/details", queryController.GetUserCourseOutlineDetails)
			}

			enrolled := courses.Group("", authProvider.AuthMiddleware)
			{
				enrolled.POST("/:course_key/enroll", enrollController.Enroll)
				enrolled.GET("/:course_key/enrollment", enrollController.Status)
			}

			staff := courses.Group("", authProvider.AuthMiddleware, middleware.RequireRoles(models.StaffRole))
			{
				staff.GET("/:course_key/outline", queryController.GetCourseOutline)
				staff.GET("/:course_key/outline/versions/:version", queryController.GetArchivedOutline)
				staff.PUT("/:course_key/outline", managementController.ReplaceOutline)
				staff.DELETE("/:course_key/outline", managementController.DeleteOutline)
			}
		}
	}
	return r
}
