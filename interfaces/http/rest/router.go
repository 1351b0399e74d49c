// Package rest wires the HTTP surface: public site endpoints, the admin
// dashboard API, and operational probes.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"teamsqa-backend/application/notify"
	"teamsqa-backend/application/ports"
	"teamsqa-backend/application/services"
	"teamsqa-backend/domain"
	"teamsqa-backend/infrastructure/cache"
	"teamsqa-backend/infrastructure/config"
	"teamsqa-backend/interfaces/http/rest/handlers"
	"teamsqa-backend/interfaces/http/rest/middleware"
	"teamsqa-backend/pkg/auth"
	"teamsqa-backend/pkg/common"
	"teamsqa-backend/pkg/observability"
)

// Public endpoints accept unauthenticated traffic; keep the per-IP budget
// tight enough that a single client cannot hammer the store through cache
// misses.
const publicWriteLimit = 10 // per IP per minute

// Router creates and configures the HTTP router.
type Router struct {
	cfg           *config.Config
	store         ports.DocumentStore
	cacheStore    *cache.Store
	registrations *services.RegistrationService
	courses       *services.CourseService
	posts         *services.PostService
	subscribers   *services.SubscriberService
	users         *services.UserService
	broadcaster   *notify.Broadcaster
	metrics       *observability.PrometheusMetrics
	validator     *auth.JWTValidator
	logger        *zap.Logger
}

// NewRouter creates a new router instance.
func NewRouter(
	cfg *config.Config,
	store ports.DocumentStore,
	cacheStore *cache.Store,
	registrations *services.RegistrationService,
	courses *services.CourseService,
	posts *services.PostService,
	subscribers *services.SubscriberService,
	users *services.UserService,
	broadcaster *notify.Broadcaster,
	metrics *observability.PrometheusMetrics,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:           cfg,
		store:         store,
		cacheStore:    cacheStore,
		registrations: registrations,
		courses:       courses,
		posts:         posts,
		subscribers:   subscribers,
		users:         users,
		broadcaster:   broadcaster,
		metrics:       metrics,
		validator:     validator,
		logger:        logger,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.teamsqa.com"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Operational probes
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.cfg.EnableMetrics && rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	publicLimiter := auth.NewSlidingWindowLimiter(publicWriteLimit, time.Minute)

	router.Route("/api/v1", func(r chi.Router) {
		// Public site endpoints
		r.Route("/courses", func(r chi.Router) {
			courseHandler := handlers.NewCourseHandler(rt.courses, rt.logger)
			r.Get("/", courseHandler.ListPublic)
			r.Get("/{slug}", courseHandler.GetBySlug)
		})
		r.Route("/posts", func(r chi.Router) {
			postHandler := handlers.NewPostHandler(rt.posts, rt.logger)
			r.Get("/", postHandler.ListPublic)
			r.Get("/{slug}", postHandler.GetBySlug)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.ThrottleByIP(publicLimiter))

			registrationHandler := handlers.NewRegistrationHandler(rt.registrations, rt.logger)
			r.Post("/registrations", registrationHandler.Create)

			newsletterHandler := handlers.NewNewsletterHandler(rt.subscribers, rt.logger)
			r.Post("/newsletter/subscribe", newsletterHandler.Subscribe)
			r.Post("/newsletter/unsubscribe", newsletterHandler.Unsubscribe)
		})

		// Admin dashboard endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.validator, rt.logger))
			r.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleEditor))

			r.Route("/registrations", func(r chi.Router) {
				registrationHandler := handlers.NewRegistrationHandler(rt.registrations, rt.logger)
				r.Get("/", registrationHandler.List)
				r.Get("/stats", registrationHandler.Stats)
				r.Get("/{registrationID}", registrationHandler.Get)
				r.Patch("/{registrationID}", registrationHandler.UpdateStatus)
				r.Delete("/{registrationID}", registrationHandler.Delete)
			})

			r.Route("/courses", func(r chi.Router) {
				courseHandler := handlers.NewCourseHandler(rt.courses, rt.logger)
				r.Get("/", courseHandler.ListAdmin)
				r.Post("/", courseHandler.Create)
				r.Get("/{courseID}", courseHandler.Get)
				r.Put("/{courseID}", courseHandler.Update)
				r.Delete("/{courseID}", courseHandler.Delete)
			})

			r.Route("/posts", func(r chi.Router) {
				postHandler := handlers.NewPostHandler(rt.posts, rt.logger)
				r.Get("/", postHandler.ListAdmin)
				r.Post("/", postHandler.Create)
				r.Get("/{postID}", postHandler.Get)
				r.Put("/{postID}", postHandler.Update)
				r.Delete("/{postID}", postHandler.Delete)
			})

			newsletterHandler := handlers.NewNewsletterHandler(rt.subscribers, rt.logger)
			r.Get("/subscribers", newsletterHandler.List)

			broadcastHandler := handlers.NewBroadcastHandler(rt.broadcaster, rt.logger)
			r.Post("/broadcasts", broadcastHandler.Send)

			// Account management is admin-only.
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				userHandler := handlers.NewUserHandler(rt.users, rt.logger)
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Get("/{userID}", userHandler.Get)
				r.Put("/{userID}", userHandler.Update)
				r.Delete("/{userID}", userHandler.Delete)
			})
		})
	})

	return router
}

// healthCheck reports process liveness.
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"cache":  rt.cacheStore.Stats(),
	})
}

// readinessCheck verifies the document store answers before the instance
// takes traffic.
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := rt.store.Count(ctx, domain.CollectionCourses, nil); err != nil {
		rt.logger.Warn("readiness probe failed", zap.Error(err))
		common.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
