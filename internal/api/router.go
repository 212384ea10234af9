package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/meetscribe/meet-transcriber/internal/api/handlers"
	"github.com/meetscribe/meet-transcriber/internal/api/middleware"
	"github.com/meetscribe/meet-transcriber/internal/config"
	"github.com/meetscribe/meet-transcriber/internal/jobs"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

type Router struct {
	mux     *chi.Mux
	cfg     *config.Config
	jobsSvc *jobs.Service
	engines []handlers.Engine
	auth    *middleware.BearerAuth
}

// NewRouter wires the HTTP surface. Engines are passed in only for health
// reporting; the API side never invokes them.
func NewRouter(cfg *config.Config, jobsSvc *jobs.Service, engines ...handlers.Engine) *Router {
	return &Router{
		mux:     chi.NewRouter(),
		cfg:     cfg,
		jobsSvc: jobsSvc,
		engines: engines,
		auth:    middleware.NewBearerAuth(cfg.Auth.JWTSecret),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(float64(rt.cfg.Server.RateLimitRPS), rt.cfg.Server.RateLimitBurst)
	r.Use(rl.Limit)

	health := handlers.NewHealthHandler(rt.jobsSvc, Version, rt.engines...)
	r.Get("/health", health.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.auth.Authenticate)

		transcriptionH := handlers.NewTranscriptionHandler(rt.jobsSvc)
		r.Route("/transcribe", func(r chi.Router) {
			r.Post("/", transcriptionH.Create)
			r.Get("/{job_id}", transcriptionH.Get)
			r.Get("/{job_id}/download", transcriptionH.Download)
		})
	})

	return r
}
