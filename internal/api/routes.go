package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/personalizeai/engine/internal/config"
)

// SetupRoutes configures the router and mounts every API route group.
func SetupRoutes(h *Handlers, cfg config.ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/subscribers", func(r chi.Router) {
			r.Get("/", h.ListSubscribers)
			r.Post("/", h.CreateSubscriber)
			r.Get("/{subscriberID}", h.GetSubscriber)
			r.Post("/{subscriberID}/events", h.RecordEvent)
			r.Get("/{subscriberID}/engagement", h.GetEngagement)
			r.Post("/{subscriberID}/profile/refresh", h.RefreshProfile)
			r.Get("/{subscriberID}/segment", h.GetSegment)
			r.Get("/{subscriberID}/churn", h.GetChurnRisk)
			r.Get("/{subscriberID}/send-time", h.GetSendTime)
			r.Post("/{subscriberID}/personalize-subject", h.PersonalizeSubject)
			r.Post("/{subscriberID}/personalize-content-order", h.PersonalizeContentOrder)
			r.Get("/{subscriberID}/revenue-impact", h.GetRevenueImpact)
		})

		r.Route("/personalization", func(r chi.Router) {
			r.Post("/variants", h.GenerateVariants)
		})

		r.Route("/predictions", func(r chi.Router) {
			r.Post("/content", h.PredictContent)
			r.Get("/feed", h.PredictFeed)
		})

		r.Route("/revenue", func(r chi.Router) {
			r.Post("/aggregate", h.AggregateRevenueImpact)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dashboard", h.GetDashboard)
			r.Get("/insights", h.GetInsights)
		})
	})

	return r
}
