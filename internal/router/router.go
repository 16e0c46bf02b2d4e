package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"bugtracker/internal/config"
	"bugtracker/internal/gateway"
	"bugtracker/internal/handlers"
	"bugtracker/internal/middleware"
	"bugtracker/internal/models"
	"bugtracker/internal/service"
)

// New builds the API. db may be nil (memory store); it only feeds /healthz.
func New(log zerolog.Logger, cfg config.Config, gw gateway.Gateway, db handlers.Pinger) http.Handler {
	r := chi.NewRouter()
	metrics := middleware.NewMetrics("bugtracker")

	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(metrics.Instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}

	// Health + metrics
	r.Get("/healthz", handlers.Health(db))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Services + handlers
	tickets := service.NewTicketService(gw, log)
	views := service.NewViews(gw, tickets)
	th := handlers.NewTicketHTTP(tickets)
	ph := handlers.NewProjectHTTP(service.NewProjectService(gw, log))
	ch := handlers.NewCommentHTTP(service.NewCommentService(gw))
	uh := handlers.NewUserHTTP(gw)
	rh := handlers.NewReportsHTTP(tickets, views)

	admin := middleware.RequireRoles(models.RoleAdmin)
	selfOrAdmin := middleware.RequireSelfOrRoles("userId", models.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.WithAuth(log, cfg.SessionSecret))
		r.Use(middleware.RequireAuth)

		r.Route("/users", func(r chi.Router) {
			r.With(admin).Get("/", uh.List())
			r.Get("/me", uh.Me())
			r.Get("/{id}", uh.Get())
		})

		r.Route("/projects", func(r chi.Router) {
			r.With(admin).Get("/", ph.List())
			r.Post("/", ph.Create())
			r.With(selfOrAdmin).Get("/user/{userId}", ph.ListForUser())
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", ph.Get())
				r.Put("/", ph.Update())
				r.With(admin).Delete("/", ph.Delete())
				r.With(admin).Post("/members/{userId}", ph.AddMember())
				r.With(admin).Delete("/members/{userId}", ph.RemoveMember())
			})
		})

		r.Route("/tickets", func(r chi.Router) {
			r.With(admin).Get("/", th.List())
			r.Post("/", th.Create())
			r.Get("/project/{projectId}", th.ListForProject())
			r.With(selfOrAdmin).Get("/user/{userId}", th.ListForUser())
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", th.Get())
				r.Put("/", th.Update())
				r.Patch("/", th.Update())
				r.With(admin).Delete("/", th.Delete())
				r.With(admin).Post("/assign/{userId}", th.Assign())
				r.With(admin).Delete("/assign/{userId}", th.Unassign())
				r.With(admin).Post("/close", th.Close())
				r.With(admin).Post("/reopen", th.Reopen())
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Post("/", ch.Create())
			r.Get("/ticket/{ticketId}", ch.ListForTicket())
			r.Get("/{id}", ch.Get())
			r.Put("/{id}", ch.Update())
			r.Delete("/{id}", ch.Delete())
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", rh.Summary())
			r.Get("/dashboard", rh.Dashboard())
			r.Get("/tickets", rh.Tickets())
		})
	})

	return r
}
