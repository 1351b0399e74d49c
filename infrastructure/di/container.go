// Package di wires the application object graph with google/wire.
package di

import (
	"teamsqa-backend/application/notify"
	"teamsqa-backend/application/ports"
	"teamsqa-backend/application/query"
	"teamsqa-backend/application/services"
	"teamsqa-backend/infrastructure/cache"
	"teamsqa-backend/infrastructure/config"
	"teamsqa-backend/interfaces/http/rest"
	"teamsqa-backend/pkg/auth"
	"teamsqa-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies.
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Store         ports.DocumentStore
	Cache         *cache.Store
	Metrics       *observability.PrometheusMetrics
	Tracer        *observability.Tracer
	CacheStats    *observability.CacheStatsReporter
	Queries       *query.Executor
	Invalidator   *query.Invalidator
	EventBus      ports.EventBus
	Registrations *services.RegistrationService
	Courses       *services.CourseService
	Posts         *services.PostService
	Subscribers   *services.SubscriberService
	Users         *services.UserService
	Broadcaster   *notify.Broadcaster
	Validator     *auth.JWTValidator
	Router        *rest.Router
}
