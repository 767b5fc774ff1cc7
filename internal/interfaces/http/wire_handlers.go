package http

import (
	"curriculum/internal/interfaces/http/handlers"
	"curriculum/internal/interfaces/http/handlers/contentimport"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	healthHandler        *handlers.HealthHandler
	contentImportHandler *contentimport.Handler
}

// ============================================================
// Section 2: Handlers
// ============================================================

func (c *Container) initHandlers() {
	ucs := c.core.UseCases

	c.hdlrs = &allHandlers{
		healthHandler: handlers.NewHealthHandler(c.core.DB, c.core.Redis),
		contentImportHandler: contentimport.NewHandler(
			ucs.Import,
			ucs.Preview,
			ucs.Audit,
			ucs.Delete,
			ucs.Markdown,
			c.core.Config.Server.MaxDocumentBytes,
			c.log.Named("contentimport"),
		),
	}
}
