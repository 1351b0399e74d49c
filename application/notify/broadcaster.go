// Package notify implements outbound broadcasts to subscribers over their
// opted-in channels.
package notify

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"teamsqa-backend/application/ports"
	"teamsqa-backend/domain"
	"teamsqa-backend/domain/events"
	apperrors "teamsqa-backend/pkg/errors"
)

// Delivery tuning. Batches keep provider calls bounded; the concurrency limit
// keeps a large subscriber list from saturating outbound connections.
const (
	batchSize      = 25
	maxConcurrency = 4
)

// EmailSender delivers one message to one email recipient. The concrete
// provider is wired at startup.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// PushSender delivers one message to one push connection.
type PushSender interface {
	SendPush(ctx context.Context, connectionID string, payload []byte) error
}

// RecipientSource lists the subscribers opted into a channel, read fresh at
// send time.
type RecipientSource interface {
	Recipients(ctx context.Context, channel string) ([]domain.Subscriber, error)
}

// BroadcastRequest is the admin broadcast payload.
type BroadcastRequest struct {
	Subject  string   `json:"subject" validate:"required,max=300"`
	Body     string   `json:"body" validate:"required"`
	Channels []string `json:"channels" validate:"required,min=1,dive,oneof=email push"`
}

// DeliveryFailure records one recipient that could not be reached.
type DeliveryFailure struct {
	Email   string `json:"email,omitempty"`
	Channel string `json:"channel"`
	Reason  string `json:"reason"`
}

// BroadcastReport summarizes one broadcast. A broadcast with failures is
// still a success overall; per-recipient errors are collected, not fatal.
type BroadcastReport struct {
	BroadcastID string            `json:"broadcast_id"`
	Attempted   int               `json:"attempted"`
	Delivered   int               `json:"delivered"`
	Failures    []DeliveryFailure `json:"failures,omitempty"`
}

// Broadcaster fans a message out to every opted-in subscriber.
type Broadcaster struct {
	recipients RecipientSource
	email      EmailSender
	push       PushSender
	events     ports.EventBus
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewBroadcaster creates a broadcaster. email, push, and events may each be
// nil; a channel without a sender reports every recipient as failed.
func NewBroadcaster(
	recipients RecipientSource,
	email EmailSender,
	push PushSender,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		recipients: recipients,
		email:      email,
		push:       push,
		events:     eventBus,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Send delivers the message to every subscriber of the requested channels.
// Recipients are read from the store at send time. Delivery runs in batches
// with bounded concurrency; the returned report carries every failure.
func (b *Broadcaster) Send(ctx context.Context, req BroadcastRequest) (*BroadcastReport, error) {
	if err := b.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	report := &BroadcastReport{BroadcastID: uuid.NewString()}
	var mu sync.Mutex

	for _, channel := range req.Channels {
		subs, err := b.recipients.Recipients(ctx, channel)
		if err != nil {
			return nil, err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrency)
		for start := 0; start < len(subs); start += batchSize {
			end := start + batchSize
			if end > len(subs) {
				end = len(subs)
			}
			batch := subs[start:end]
			g.Go(func() error {
				for _, sub := range batch {
					if err := gctx.Err(); err != nil {
						return err
					}
					failure := b.deliver(gctx, channel, sub, req)
					mu.Lock()
					report.Attempted++
					if failure != nil {
						report.Failures = append(report.Failures, *failure)
					} else {
						report.Delivered++
					}
					mu.Unlock()
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	b.logger.Info("broadcast finished",
		zap.String("broadcast_id", report.BroadcastID),
		zap.Int("attempted", report.Attempted),
		zap.Int("delivered", report.Delivered),
		zap.Int("failed", len(report.Failures)),
	)
	if b.events != nil {
		event := events.NewBroadcastSent(report.BroadcastID, report.Attempted, report.Delivered, len(report.Failures))
		if err := b.events.Publish(ctx, event); err != nil {
			b.logger.Warn("event publish failed", zap.Error(err))
		}
	}
	return report, nil
}

// deliver sends to one recipient and returns the failure, if any.
func (b *Broadcaster) deliver(ctx context.Context, channel string, sub domain.Subscriber, req BroadcastRequest) *DeliveryFailure {
	switch channel {
	case domain.ChannelEmail:
		if b.email == nil {
			return &DeliveryFailure{Email: sub.Email, Channel: channel, Reason: "no email sender configured"}
		}
		if err := b.email.SendEmail(ctx, sub.Email, req.Subject, req.Body); err != nil {
			b.logger.Warn("email delivery failed", zap.String("email", sub.Email), zap.Error(err))
			return &DeliveryFailure{Email: sub.Email, Channel: channel, Reason: err.Error()}
		}
	case domain.ChannelPush:
		if b.push == nil {
			return &DeliveryFailure{Email: sub.Email, Channel: channel, Reason: "no push sender configured"}
		}
		if sub.ConnectionID == "" {
			return &DeliveryFailure{Email: sub.Email, Channel: channel, Reason: "subscriber has no active connection"}
		}
		payload := pushPayload(req.Subject, req.Body)
		if err := b.push.SendPush(ctx, sub.ConnectionID, payload); err != nil {
			b.logger.Warn("push delivery failed", zap.String("connection_id", sub.ConnectionID), zap.Error(err))
			return &DeliveryFailure{Email: sub.Email, Channel: channel, Reason: err.Error()}
		}
	default:
		return &DeliveryFailure{Email: sub.Email, Channel: channel, Reason: "unknown channel"}
	}
	return nil
}
