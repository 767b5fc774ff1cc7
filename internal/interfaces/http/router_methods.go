package http

import (
	"curriculum/internal/interfaces/http/middleware"
	"curriculum/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.Logger(c.log))
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.CORS(c.core.Config.Server.AllowedOrigins))
	c.engine.Use(middleware.SecurityHeaders())

	c.engine.GET("/health", c.hdlrs.healthHandler.HealthCheck)

	routes.SetupCourseRoutes(c.engine, &routes.CourseRouteConfig{
		Handler:         c.hdlrs.contentImportHandler,
		ImportRateLimit: c.importRateLimiter,
	})
}
