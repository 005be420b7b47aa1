package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quercia-ai/docpilot/internal/api"
	"github.com/quercia-ai/docpilot/internal/api/handlers"
	"github.com/quercia-ai/docpilot/internal/api/middleware"
)

type RouterConfig struct {
	AskHandler   *handlers.AskHandler
	FilesHandler *handlers.FilesHandler
	SentryOn     bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Uploads carry whole documents; keep headroom above the multipart
	// framing overhead.
	const maxBodyBytes int64 = 32 * 1024 * 1024

	r.Use(middleware.RequestID)
	if cfg.SentryOn {
		r.Use(middleware.Sentry)
	}
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.TenantID)

		r.Post("/ask", cfg.AskHandler.Ask)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", cfg.FilesHandler.Upload)
			r.Get("/", cfg.FilesHandler.List)
			r.Delete("/", cfg.FilesHandler.DeleteByName)
			r.Delete("/{fileID}", cfg.FilesHandler.Delete)
		})
	})

	return r
}
