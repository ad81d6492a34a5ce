package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/pr-warden/internal/server/handler"
)

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	Agent   *handler.AgentHandler
	Review  *handler.ReviewHandler
	Webhook *handler.WebhookHandler
}

// NewRouter creates and configures the HTTP router with middleware and API
// routes. Review and webhook handlers may block for the duration of a
// provider call, so the request timeout has to stay above the provider
// timeout.
func NewRouter(h Handlers, requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/agent", func(r chi.Router) {
			r.Get("/files", h.Agent.ListFiles)
			r.Get("/file", h.Agent.GetFile)
			r.Post("/diff", h.Agent.Diff)
			r.Post("/edit", h.Agent.Edit)
			r.Delete("/edit", h.Agent.AbandonEdit)
			r.Post("/push", h.Agent.Push)
		})

		r.Route("/pr", func(r chi.Router) {
			r.Get("/models", h.Review.Models)
			r.Post("/review", h.Review.Review)
			r.Post("/review/recent", h.Review.ReviewRecent)
			r.Post("/webhook", h.Webhook.Handle)
		})
	})

	return r
}
