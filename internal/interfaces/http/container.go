package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"curriculum/internal/infrastructure/ratelimit"
	"curriculum/internal/interfaces/bootstrap"
	"curriculum/internal/interfaces/http/middleware"
	"curriculum/internal/shared/logger"
)

// Container holds the gin engine plus the handlers and middlewares built on
// top of the shared engine components.
type Container struct {
	engine *gin.Engine
	core   *bootstrap.Container
	log    logger.Interface

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	importRateLimiter *middleware.RateLimiter
}

// NewContainer creates a new Container with all handlers wired together.
func NewContainer(core *bootstrap.Container) *Container {
	c := &Container{
		engine: gin.New(),
		core:   core,
		log:    core.Log.Named("http"),
	}

	// Section 1: Middlewares
	c.initMiddlewares()

	// Section 2: Handlers
	c.initHandlers()

	return c
}

func (c *Container) initMiddlewares() {
	limiter := ratelimit.New(c.core.Redis, ratelimit.Config{
		Limit:  c.core.Config.Server.ImportRateLimit,
		Window: time.Minute,
	})
	c.importRateLimiter = middleware.NewRateLimiter(limiter, "course-import", c.log)
}

// GetEngine returns the Gin engine
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}
