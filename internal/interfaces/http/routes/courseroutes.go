package routes

import (
	"github.com/gin-gonic/gin"

	"curriculum/internal/interfaces/http/handlers/contentimport"
	"curriculum/internal/interfaces/http/middleware"
)

type CourseRouteConfig struct {
	Handler         *contentimport.Handler
	ImportRateLimit *middleware.RateLimiter
}

func SetupCourseRoutes(engine *gin.Engine, config *CourseRouteConfig) {
	api := engine.Group("/api/v1")
	api.Use(middleware.APIVersion(), middleware.RequireOrganization())
	{
		// Register specific paths BEFORE parameterized paths
		api.POST("/courses/import",
			config.ImportRateLimit.Limit(),
			config.Handler.ImportCourse)
		api.GET("/audit",
			config.Handler.AuditOrganization)

		api.GET("/courses/:id/audit",
			config.Handler.AuditCourse)
		api.DELETE("/courses/:id",
			config.Handler.DeleteCourse)
	}
}
