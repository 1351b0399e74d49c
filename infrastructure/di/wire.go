//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"teamsqa-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideCloudWatchClient,
	ProvideTracer,
	ProvideDocumentStore,
	ProvideCacheStore,
	ProvideMetrics,
	ProvideCacheStatsReporter,
	ProvideQueryExecutor,
	ProvideInvalidator,
	ProvideEventBus,
	ProvideRegistrationService,
	ProvideCourseService,
	ProvidePostService,
	ProvideSubscriberService,
	ProvideUserService,
	ProvideEmailSender,
	ProvidePushSender,
	ProvideBroadcaster,
	ProvideJWTValidator,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
