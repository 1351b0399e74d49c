package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"teamsqa-backend/application/notify"
	"teamsqa-backend/application/ports"
	"teamsqa-backend/application/query"
	"teamsqa-backend/application/services"
	"teamsqa-backend/infrastructure/cache"
	"teamsqa-backend/infrastructure/config"
	"teamsqa-backend/infrastructure/messaging/eventbridge"
	"teamsqa-backend/infrastructure/persistence/dynamodb"
	infranotify "teamsqa-backend/infrastructure/notify"
	"teamsqa-backend/interfaces/http/rest"
	"teamsqa-backend/pkg/auth"
	"teamsqa-backend/pkg/observability"
)

// ProvideLogger creates the application logger. Production gets JSON output,
// everything else the development console encoder.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideAWSConfig loads the AWS SDK configuration.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client.
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client.
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideTracer creates the X-Ray tracer.
func ProvideTracer() *observability.Tracer {
	return observability.NewTracer("teamsqa-backend")
}

// ProvideDocumentStore builds the store chain: the DynamoDB store wrapped in
// a circuit breaker, plus X-Ray tracing when enabled.
func ProvideDocumentStore(
	client *awsdynamodb.Client,
	cfg *config.Config,
	tracer *observability.Tracer,
	logger *zap.Logger,
) ports.DocumentStore {
	var store ports.DocumentStore = dynamodb.NewStore(client, cfg.DynamoDBTable, logger)
	store = dynamodb.NewBreakerStore(store, logger)
	if cfg.EnableTracing {
		store = dynamodb.NewTracedStore(store, tracer)
	}
	return store
}

// ProvideCacheStore creates the in-process query cache.
func ProvideCacheStore(logger *zap.Logger) *cache.Store {
	return cache.NewStore(logger)
}

// ProvideMetrics creates the Prometheus metrics set.
func ProvideMetrics() *observability.PrometheusMetrics {
	return observability.NewPrometheusMetrics()
}

// ProvideCacheStatsReporter creates the periodic CloudWatch cache reporter.
func ProvideCacheStatsReporter(
	client *awscloudwatch.Client,
	store *cache.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *observability.CacheStatsReporter {
	return observability.NewCacheStatsReporter(client, store, cfg.Environment, logger)
}

// ProvideQueryExecutor creates the cached query executor. TTL defaults come
// from configuration.
func ProvideQueryExecutor(
	store ports.DocumentStore,
	cacheStore *cache.Store,
	metrics *observability.PrometheusMetrics,
	cfg *config.Config,
	logger *zap.Logger,
) *query.Executor {
	query.Tune(cfg.CacheListTTL, cfg.CacheCountTTL, cfg.CacheDuplicateTTL)
	return query.NewExecutor(store, cacheStore, metrics, logger)
}

// ProvideInvalidator creates the write-side cache invalidator.
func ProvideInvalidator(
	cacheStore *cache.Store,
	metrics *observability.PrometheusMetrics,
	logger *zap.Logger,
) *query.Invalidator {
	return query.NewInvalidator(cacheStore, metrics, logger)
}

// ProvideEventBus creates the EventBridge publisher, or nil when event
// publishing is disabled. Services treat a nil bus as "do not publish".
func ProvideEventBus(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	if !cfg.EnableEvents {
		return nil
	}
	return eventbridge.NewPublisher(
		awseventbridge.NewFromConfig(awsCfg),
		cfg.EventBusName,
		logger,
	)
}

// ProvideRegistrationService creates the registration service.
func ProvideRegistrationService(
	store ports.DocumentStore,
	queries *query.Executor,
	invalidator *query.Invalidator,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *services.RegistrationService {
	return services.NewRegistrationService(store, queries, invalidator, eventBus, logger)
}

// ProvideCourseService creates the course service.
func ProvideCourseService(
	store ports.DocumentStore,
	queries *query.Executor,
	invalidator *query.Invalidator,
	logger *zap.Logger,
) *services.CourseService {
	return services.NewCourseService(store, queries, invalidator, logger)
}

// ProvidePostService creates the post service.
func ProvidePostService(
	store ports.DocumentStore,
	queries *query.Executor,
	invalidator *query.Invalidator,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *services.PostService {
	return services.NewPostService(store, queries, invalidator, eventBus, logger)
}

// ProvideSubscriberService creates the subscriber service.
func ProvideSubscriberService(
	store ports.DocumentStore,
	queries *query.Executor,
	invalidator *query.Invalidator,
	logger *zap.Logger,
) *services.SubscriberService {
	return services.NewSubscriberService(store, queries, invalidator, logger)
}

// ProvideUserService creates the user service.
func ProvideUserService(
	store ports.DocumentStore,
	queries *query.Executor,
	invalidator *query.Invalidator,
	logger *zap.Logger,
) *services.UserService {
	return services.NewUserService(store, queries, invalidator, logger)
}

// ProvideEmailSender creates the email sender. Only the logging sender ships
// today; SES lives behind the same interface when it lands.
func ProvideEmailSender(logger *zap.Logger) notify.EmailSender {
	return infranotify.NewLogEmailSender(logger)
}

// ProvidePushSender creates the WebSocket push sender, or nil when no
// management API endpoint is configured.
func ProvidePushSender(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) notify.PushSender {
	if cfg.WebSocketEndpoint == "" {
		return nil
	}
	client := apigatewaymanagementapi.NewFromConfig(awsCfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(cfg.WebSocketEndpoint)
	})
	return infranotify.NewPushSender(client, logger)
}

// ProvideBroadcaster creates the broadcaster.
func ProvideBroadcaster(
	subscribers *services.SubscriberService,
	email notify.EmailSender,
	push notify.PushSender,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *notify.Broadcaster {
	return notify.NewBroadcaster(subscribers, email, push, eventBus, logger)
}

// ProvideJWTValidator creates the token validator.
func ProvideJWTValidator(cfg *config.Config) *auth.JWTValidator {
	return auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
}

// ProvideRouter creates the HTTP router.
func ProvideRouter(
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
) *rest.Router {
	return rest.NewRouter(cfg, store, cacheStore,
		registrations, courses, posts, subscribers, users,
		broadcaster, metrics, validator, logger)
}
