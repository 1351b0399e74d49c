// Package eventbridge publishes domain events to an EventBridge bus.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"teamsqa-backend/domain/events"
	apperrors "teamsqa-backend/pkg/errors"
)

// PutEvents accepts at most 10 entries per call.
const maxBatchSize = 10

// Publisher implements the EventBus on EventBridge.
type Publisher struct {
	client  *eventbridge.Client
	busName string
	logger  *zap.Logger
}

// NewPublisher creates an EventBridge publisher for the named bus.
func NewPublisher(client *eventbridge.Client, busName string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		client:  client,
		busName: busName,
		logger:  logger,
	}
}

// Publish sends a single event.
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends events in chunks of at most ten entries. Entries
// EventBridge rejects are logged and reported as one error; callers treat
// publishing as best-effort.
func (p *Publisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	if len(batch) == 0 {
		return nil
	}

	failed := 0
	for start := 0; start < len(batch); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(batch) {
			end = len(batch)
		}

		entries := make([]types.PutEventsRequestEntry, 0, end-start)
		for _, event := range batch[start:end] {
			detail, err := json.Marshal(event)
			if err != nil {
				p.logger.Error("event marshal failed",
					zap.String("event_type", event.GetEventType()),
					zap.Error(err),
				)
				failed++
				continue
			}
			entries = append(entries, types.PutEventsRequestEntry{
				EventBusName: aws.String(p.busName),
				Source:       aws.String(events.SourceTeamsQA),
				DetailType:   aws.String(event.GetEventType()),
				Detail:       aws.String(string(detail)),
			})
		}
		if len(entries) == 0 {
			continue
		}

		out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
		if err != nil {
			return apperrors.NewExternal("eventbridge", err)
		}
		if out.FailedEntryCount > 0 {
			failed += int(out.FailedEntryCount)
			for _, entry := range out.Entries {
				if entry.ErrorCode != nil {
					p.logger.Warn("event entry rejected",
						zap.String("error_code", aws.ToString(entry.ErrorCode)),
						zap.String("error_message", aws.ToString(entry.ErrorMessage)),
					)
				}
			}
		}
	}

	if failed > 0 {
		return apperrors.NewExternal("eventbridge", fmt.Errorf("%d of %d events failed", failed, len(batch)))
	}
	return nil
}
