package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"teamsqa-backend/infrastructure/cache"
)

const metricNamespace = "TeamsQA/Backend"

// CacheStatsReporter pushes cache statistics to CloudWatch on an interval.
// Prometheus covers scrape-based setups; this feeds the CloudWatch alarms
// used in the Lambda deployment, where nothing scrapes.
type CacheStatsReporter struct {
	client      *cloudwatch.Client
	store       *cache.Store
	environment string
	interval    time.Duration
	logger      *zap.Logger
}

// NewCacheStatsReporter creates a reporter. Call Run to start it.
func NewCacheStatsReporter(client *cloudwatch.Client, store *cache.Store, environment string, logger *zap.Logger) *CacheStatsReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheStatsReporter{
		client:      client,
		store:       store,
		environment: environment,
		interval:    time.Minute,
		logger:      logger,
	}
}

// Run publishes stats until the context is cancelled.
func (r *CacheStatsReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.publish(ctx); err != nil {
				r.logger.Warn("cloudwatch publish failed", zap.Error(err))
			}
		}
	}
}

func (r *CacheStatsReporter) publish(ctx context.Context) error {
	stats := r.store.Stats()
	now := time.Now()
	dims := []types.Dimension{{
		Name:  aws.String("Environment"),
		Value: aws.String(r.environment),
	}}

	datum := func(name string, value float64, unit types.StandardUnit) types.MetricDatum {
		return types.MetricDatum{
			MetricName: aws.String(name),
			Value:      aws.Float64(value),
			Unit:       unit,
			Timestamp:  aws.Time(now),
			Dimensions: dims,
		}
	}

	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(metricNamespace),
		MetricData: []types.MetricDatum{
			datum("CacheHits", float64(stats.Hits), types.StandardUnitCount),
			datum("CacheMisses", float64(stats.Misses), types.StandardUnitCount),
			datum("CacheEvictions", float64(stats.Evictions), types.StandardUnitCount),
			datum("CacheItems", float64(stats.Items), types.StandardUnitCount),
			datum("CacheHitRate", stats.HitRate*100, types.StandardUnitPercent),
		},
	})
	return err
}
